package main

import (
	"context"
	"errors"
	"langbridge/backend/internal/api/handler"
	"langbridge/backend/internal/chathub"
	"langbridge/backend/internal/config"
	"langbridge/backend/internal/llm"
	"langbridge/backend/internal/localization"
	"langbridge/backend/internal/storage"
	"langbridge/backend/internal/translate"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupDependencies connects the optional backends. A backend that is not
// configured stays nil; one that is configured but unreachable is fatal.
func setupDependencies(ctx context.Context, cfg config.Config) (*gorm.DB, *redis.Client) {
	var db *gorm.DB
	if cfg.DatabaseDSN != "" {
		var err error
		db, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
		if err != nil {
			log.Fatalf("Failed to connect PostgreSQL: %v", err)
		}
		if err := storage.NewStorageService(db, nil).AutoMigrate(); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
		log.Println("PostgreSQL connected, migrations complete.")
	} else {
		log.Println("WARNING: DATABASE_DSN not set, translation history disabled.")
	}

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if _, err := rdb.Ping(ctx).Result(); err != nil {
			log.Fatalf("Failed to connect Redis: %v", err)
		}
		log.Println("Redis connected.")
	} else {
		log.Println("WARNING: REDIS_ADDR not set, translation cache disabled.")
	}

	return db, rdb
}

func newTranslator(cfg config.Config, s *storage.Service) *translate.Service {
	opts := translate.Options{
		Completer:   llm.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMTimeout),
		Model:       cfg.LLMModel,
		Temperature: cfg.LLMTemperature,
		CacheTTL:    cfg.CacheTTL,
		MaxChars:    cfg.MaxTranslateChars,
	}
	if s.Redis != nil {
		opts.Cache = s
	}
	if s.DB != nil {
		opts.History = s
	}
	if cfg.LLMAPIKey == "" {
		log.Println("WARNING: LLM_API_KEY not set, translation requests will likely be rejected upstream.")
	}
	return translate.NewService(opts)
}

func main() {
	log.Println("Starting LangBridge Backend...")

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file")
	}
	cfg := config.FromEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Dependencies
	db, rdb := setupDependencies(ctx, cfg)
	s := storage.NewStorageService(db, rdb)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// 2. Relay hub
	localizer := localization.Bundled()
	if lang, ok := localizer.Resolve(cfg.Language); !ok {
		log.Printf("WARNING: No locale for RELAY_LANG=%q (available: %s), using %q", cfg.Language, strings.Join(localizer.Languages(), ", "), lang)
		cfg.Language = lang
	}
	hub := chathub.NewManagerService(chathub.Options{
		Localizer: localizer,
		Language:  cfg.Language,
		Metrics:   chathub.NewMetrics(registry),
	})
	hubCtx, stopHub := context.WithCancel(context.Background())
	go hub.Run(hubCtx)

	// 3. HTTP
	r := gin.Default()
	h := handler.NewHandler(handler.Options{
		Hub:        hub,
		Translator: newTranslator(cfg, s),
		Pinger:     s,
		Gatherer:   registry,
		Config:     cfg,
	})
	h.Register(r)

	server := &http.Server{
		Addr:           cfg.Port,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   cfg.LLMTimeout + 10*time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		log.Printf("Listening on %s (relay language %q)", cfg.Port, cfg.Language)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	// Relay first: hijacked WebSocket connections are not tracked by Shutdown.
	stopHub()
	select {
	case <-hub.Done():
	case <-shutdownCtx.Done():
		log.Println("WARNING: Relay hub did not stop in time")
	}

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("ERROR: HTTP server shutdown: %v", err)
	}
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			log.Printf("ERROR: Closing Redis: %v", err)
		}
	}
	if db != nil {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}
	log.Println("Shutdown complete.")
}
