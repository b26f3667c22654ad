package main

import (
	"context"
	"fmt"
	"langbridge/backend/internal/config"
	"langbridge/backend/internal/storage"
	"log"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const usage = `Usage: admin <command> [args]

Commands:
  history [limit]   print the most recent translations (default 20)
  purge-cache       delete every cached translation from Redis`

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file")
	}
	cfg := config.FromEnv()

	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch os.Args[1] {
	case "history":
		limit := 20
		if len(os.Args) > 2 {
			n, err := strconv.Atoi(os.Args[2])
			if err != nil || n <= 0 {
				fmt.Println("Invalid limit. Please provide a positive integer.")
				os.Exit(1)
			}
			limit = n
		}
		if cfg.DatabaseDSN == "" {
			log.Fatal("DATABASE_DSN is not set")
		}
		db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to connect database: %v", err)
		}
		if err := printHistory(ctx, storage.NewStorageService(db, nil), limit); err != nil {
			log.Fatalf("Error loading history: %v", err)
		}

	case "purge-cache":
		if cfg.RedisAddr == "" {
			log.Fatal("REDIS_ADDR is not set")
		}
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		defer rdb.Close()
		deleted, err := storage.NewStorageService(nil, rdb).PurgeTranslationCache(ctx)
		if err != nil {
			log.Fatalf("Error purging cache: %v", err)
		}
		fmt.Printf("Deleted %d cached translations.\n", deleted)

	default:
		fmt.Printf("Unknown command: %s\n\n%s\n", os.Args[1], usage)
		os.Exit(1)
	}
}

func printHistory(ctx context.Context, s storage.Storage, limit int) error {
	records, err := s.RecentTranslations(ctx, limit)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CREATED\tDIRECTION\tINPUT\tOUTPUT")
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.CreatedAt.Format(time.DateTime), r.Direction, shorten(r.Input, 40), shorten(r.Output, 60))
	}
	return w.Flush()
}

func shorten(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
