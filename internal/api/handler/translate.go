package handler

import (
	"errors"
	"langbridge/backend/internal/translate"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// Translate handles POST /api/translate.
func (h *Handler) Translate(c *gin.Context) {
	if h.Translator == nil {
		unavailable(c, "translation is not configured")
		return
	}

	var req translate.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "text and direction (pm_to_dev or dev_to_pm) are required")
		return
	}

	result, err := h.Translator.Translate(c.Request.Context(), req)
	if err != nil {
		var vErr *translate.ValidationError
		var cErr *translate.CompletionError
		switch {
		case errors.As(err, &vErr):
			errorJSON(c, http.StatusBadRequest, vErr.Error())
		case errors.As(err, &cErr):
			log.Printf("ERROR: Translation (%s) failed: %v", req.Direction, err)
			errorJSON(c, http.StatusBadGateway, "language model request failed")
		default:
			log.Printf("ERROR: Translation (%s) failed: %v", req.Direction, err)
			errorJSON(c, http.StatusInternalServerError, "translation failed")
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

// History handles GET /api/history?limit=N.
func (h *Handler) History(c *gin.Context) {
	if h.Translator == nil || !h.Translator.HasHistory() {
		unavailable(c, "translation history is not configured")
		return
	}

	limit := defaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			errorJSON(c, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	records, err := h.Translator.History(c.Request.Context(), limit)
	if err != nil {
		log.Printf("ERROR: Loading translation history: %v", err)
		errorJSON(c, http.StatusInternalServerError, "could not load history")
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": records, "count": len(records)})
}
