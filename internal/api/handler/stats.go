package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const healthTimeout = 2 * time.Second

// Stats returns the relay's rooms and sessions.
func (h *Handler) Stats(c *gin.Context) {
	if h.Hub == nil {
		unavailable(c, "relay is not running")
		return
	}
	stats, err := h.Hub.Stats()
	if err != nil {
		unavailable(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Health reports liveness plus the status of every configured backend. Any
// failing backend turns the answer into a 503.
func (h *Handler) Health(c *gin.Context) {
	body := gin.H{"status": "ok", "time": time.Now().UTC()}
	healthy := true

	if h.Hub != nil {
		stats, err := h.Hub.Stats()
		if err != nil {
			healthy = false
			body["relay"] = err.Error()
		} else {
			body["connections"] = stats.TotalUsers
			body["rooms"] = stats.TotalRooms
		}
	}

	if h.Pinger != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
		defer cancel()
		for name, err := range h.Pinger.Ping(ctx) {
			if err != nil {
				healthy = false
				body[name] = err.Error()
			} else {
				body[name] = "ok"
			}
		}
	}

	if !healthy {
		body["status"] = "degraded"
		c.JSON(http.StatusServiceUnavailable, body)
		return
	}
	c.JSON(http.StatusOK, body)
}
