package handler

import (
	"context"
	"langbridge/backend/internal/chathub"
	"langbridge/backend/internal/config"
	"langbridge/backend/internal/models"
	"langbridge/backend/internal/translate"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Translator is the translation service as seen by the HTTP layer.
type Translator interface {
	Translate(ctx context.Context, req translate.Request) (translate.Result, error)
	History(ctx context.Context, limit int) ([]models.TranslationRecord, error)
	HasHistory() bool
}

// Pinger reports the health of external backends, keyed by backend name.
type Pinger interface {
	Ping(ctx context.Context) map[string]error
}

// Options wires a Handler. Translator, Pinger and Gatherer may be nil.
type Options struct {
	Hub        *chathub.ManagerService
	Translator Translator
	Pinger     Pinger
	Gatherer   prometheus.Gatherer
	Config     config.Config
}

// Handler holds the dependencies of every HTTP route.
type Handler struct {
	Hub        *chathub.ManagerService
	Translator Translator
	Pinger     Pinger
	Gatherer   prometheus.Gatherer

	cfg      config.Config
	upgrader websocket.Upgrader
}

func NewHandler(opts Options) *Handler {
	return &Handler{
		Hub:        opts.Hub,
		Translator: opts.Translator,
		Pinger:     opts.Pinger,
		Gatherer:   opts.Gatherer,
		cfg:        opts.Config,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(opts.Config.AllowedOrigins),
		},
	}
}

// Register mounts every route on r.
func (h *Handler) Register(r gin.IRouter) {
	r.GET("/ws", h.ServeWebSocket)
	r.GET("/health", h.Health)

	api := r.Group("/api")
	api.GET("/stats", h.Stats)
	api.POST("/translate", h.Translate)
	api.GET("/history", h.History)

	if h.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(h.Gatherer, promhttp.HandlerOpts{})))
	}
}

func errorJSON(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

func unavailable(c *gin.Context, msg string) {
	errorJSON(c, http.StatusServiceUnavailable, msg)
}
