// Package translate rewrites text between product and engineering language
// using a language model, with a Redis cache in front and a Postgres history
// behind it.
package translate

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"langbridge/backend/internal/config"
	"langbridge/backend/internal/llm"
	"langbridge/backend/internal/models"
	"log"
	"strings"
	"time"
	"unicode/utf8"
)

// CacheKeyPrefix namespaces every cached translation.
const CacheKeyPrefix = "translate:"

// ErrHistoryUnavailable is returned by History when no store is configured.
var ErrHistoryUnavailable = errors.New("translation history is not configured")

// ValidationError reports a rejected request.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// CompletionError wraps a failed language model call.
type CompletionError struct {
	Err error
}

func (e *CompletionError) Error() string { return "translation failed: " + e.Err.Error() }
func (e *CompletionError) Unwrap() error { return e.Err }

// Completer produces chat completions.
type Completer interface {
	Complete(ctx context.Context, req llm.Request) (llm.Completion, error)
}

// Cache stores translated text by key.
type Cache interface {
	GetCachedTranslation(ctx context.Context, key string) (string, bool, error)
	CacheTranslation(ctx context.Context, key, value string, ttl time.Duration) error
}

// History persists translation records.
type History interface {
	SaveTranslation(ctx context.Context, record *models.TranslationRecord) error
	RecentTranslations(ctx context.Context, limit int) ([]models.TranslationRecord, error)
}

// Request is one translation request.
type Request struct {
	Text      string `json:"text" binding:"required"`
	Direction string `json:"direction" binding:"required,oneof=pm_to_dev dev_to_pm"`
}

// Result is the outcome of a translation.
type Result struct {
	ID        string    `json:"id,omitempty"`
	Direction string    `json:"direction"`
	Input     string    `json:"input"`
	Output    string    `json:"output"`
	Cached    bool      `json:"cached"`
	CreatedAt time.Time `json:"createdAt"`
}

// Options configures a Service. Cache and History may be nil.
type Options struct {
	Completer   Completer
	Cache       Cache
	History     History
	Model       string
	Temperature float64
	CacheTTL    time.Duration
	MaxChars    int
}

// Service runs translations.
type Service struct {
	completer   Completer
	cache       Cache
	history     History
	model       string
	temperature float64
	cacheTTL    time.Duration
	maxChars    int
	now         func() time.Time
}

// NewService builds a Service, filling unset options with the defaults in config.
func NewService(opts Options) *Service {
	if opts.Model == "" {
		opts.Model = config.DefaultLLMModel
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = config.DefaultCacheTTL
	}
	if opts.MaxChars <= 0 {
		opts.MaxChars = config.DefaultMaxTranslateChars
	}
	return &Service{
		completer:   opts.Completer,
		cache:       opts.Cache,
		history:     opts.History,
		model:       opts.Model,
		temperature: opts.Temperature,
		cacheTTL:    opts.CacheTTL,
		maxChars:    opts.MaxChars,
		now:         time.Now,
	}
}

// CacheKey returns the cache key for text translated in direction.
func CacheKey(direction, text string) string {
	sum := sha256.Sum256([]byte(direction + "\x00" + text))
	return CacheKeyPrefix + hex.EncodeToString(sum[:])
}

// Translate validates req, answers from the cache when it can and otherwise
// asks the language model. Successful model answers are cached and recorded.
func (s *Service) Translate(ctx context.Context, req Request) (Result, error) {
	text := strings.TrimSpace(req.Text)
	if err := s.validate(text, req.Direction); err != nil {
		return Result{}, err
	}

	key := CacheKey(req.Direction, text)
	if s.cache != nil {
		cached, ok, err := s.cache.GetCachedTranslation(ctx, key)
		if err != nil {
			log.Printf("WARNING: Translation cache lookup failed: %v", err)
		} else if ok {
			return Result{Direction: req.Direction, Input: text, Output: cached, Cached: true, CreatedAt: s.now()}, nil
		}
	}

	completion, err := s.completer.Complete(ctx, llm.Request{
		Model:       s.model,
		Temperature: s.temperature,
		Messages: []llm.Message{
			{Role: "system", Content: systemPrompt(req.Direction)},
			{Role: "user", Content: text},
		},
	})
	if err != nil {
		return Result{}, &CompletionError{Err: err}
	}
	if completion.Content == "" {
		return Result{}, &CompletionError{Err: llm.ErrEmptyCompletion}
	}

	result := Result{Direction: req.Direction, Input: text, Output: completion.Content, CreatedAt: s.now()}

	if s.cache != nil {
		if err := s.cache.CacheTranslation(ctx, key, completion.Content, s.cacheTTL); err != nil {
			log.Printf("WARNING: Caching translation failed: %v", err)
		}
	}

	if s.history != nil {
		record := &models.TranslationRecord{
			Direction: req.Direction,
			Input:     text,
			Output:    completion.Content,
			Model:     completion.Model,
		}
		if err := s.history.SaveTranslation(ctx, record); err != nil {
			log.Printf("ERROR: Saving translation history: %v", err)
		} else {
			result.ID = record.ID
			if !record.CreatedAt.IsZero() {
				result.CreatedAt = record.CreatedAt
			}
		}
	}

	return result, nil
}

// History returns the most recent translations, newest first.
func (s *Service) History(ctx context.Context, limit int) ([]models.TranslationRecord, error) {
	if s.history == nil {
		return nil, ErrHistoryUnavailable
	}
	return s.history.RecentTranslations(ctx, limit)
}

// HasHistory reports whether a history store is configured.
func (s *Service) HasHistory() bool {
	return s.history != nil
}

func (s *Service) validate(text, direction string) error {
	if text == "" {
		return &ValidationError{Field: "text", Message: "must not be empty"}
	}
	if n := utf8.RuneCountInString(text); n > s.maxChars {
		return &ValidationError{Field: "text", Message: fmt.Sprintf("must be at most %d characters, got %d", s.maxChars, n)}
	}
	if !models.ValidDirection(direction) {
		return &ValidationError{Field: "direction", Message: fmt.Sprintf("must be %q or %q", models.DirectionProductToDev, models.DirectionDevToProduct)}
	}
	return nil
}
