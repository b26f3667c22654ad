package handler

import (
	"langbridge/backend/internal/chathub"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// originChecker allows requests whose Origin is listed. "*" or an empty list
// allows everything; a request without an Origin header is always allowed.
func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		if o != "" {
			set[o] = true
		}
	}
	if len(set) == 0 {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || set[strings.TrimRight(origin, "/")]
	}
}

// ServeWebSocket upgrades the request and hands the connection to the hub.
func (h *Handler) ServeWebSocket(c *gin.Context) {
	if h.Hub == nil {
		unavailable(c, "relay is not running")
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		log.Printf("WARNING: WebSocket upgrade from %s failed: %v", c.ClientIP(), err)
		return
	}

	client := chathub.NewWebSocketClient(conn, h.Hub, h.cfg.SendBuffer, h.cfg.MaxMessageSize)
	if _, err := h.Hub.Register(client); err != nil {
		log.Printf("WARNING: Rejecting connection from %s: %v", c.ClientIP(), err)
		conn.Close()
		return
	}

	client.Run()
}
