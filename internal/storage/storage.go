package storage

import (
	"context"
	"errors"
	"fmt"
	"langbridge/backend/internal/models"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// TranslationCachePattern matches every cached translation key.
const TranslationCachePattern = "translate:*"

// MaxHistoryLimit caps RecentTranslations.
const MaxHistoryLimit = 100

// ErrNotConfigured is returned when the backing store for an operation is nil.
var ErrNotConfigured = errors.New("storage backend not configured")

type Storage interface {
	SaveTranslation(ctx context.Context, record *models.TranslationRecord) error
	RecentTranslations(ctx context.Context, limit int) ([]models.TranslationRecord, error)

	GetCachedTranslation(ctx context.Context, key string) (string, bool, error)
	CacheTranslation(ctx context.Context, key, value string, ttl time.Duration) error
	PurgeTranslationCache(ctx context.Context) (int, error)
}

// Service keeps translation history in PostgreSQL and translated text in
// Redis. Either client may be nil.
type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
}

// NewStorageService Constructor
func NewStorageService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
	}
}

// AutoMigrate creates or updates the history table.
func (s *Service) AutoMigrate() error {
	if s.DB == nil {
		return ErrNotConfigured
	}
	return s.DB.AutoMigrate(&models.TranslationRecord{})
}

// SaveTranslation inserts record. ID and CreatedAt are filled on success.
func (s *Service) SaveTranslation(ctx context.Context, record *models.TranslationRecord) error {
	if s.DB == nil {
		return ErrNotConfigured
	}
	if err := s.DB.WithContext(ctx).Create(record).Error; err != nil {
		log.Printf("ERROR: Failed to save translation (%s): %v", record.Direction, err)
		return err
	}
	return nil
}

// RecentTranslations returns up to limit records, newest first.
func (s *Service) RecentTranslations(ctx context.Context, limit int) ([]models.TranslationRecord, error) {
	if s.DB == nil {
		return nil, ErrNotConfigured
	}
	if limit <= 0 || limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}

	var records []models.TranslationRecord
	if err := s.DB.WithContext(ctx).Order("created_at desc").Limit(limit).Find(&records).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return records, nil
		}
		log.Printf("ERROR: Failed to load translation history: %v", err)
		return nil, err
	}
	return records, nil
}

// GetCachedTranslation looks key up. A missing key is a miss, not an error.
func (s *Service) GetCachedTranslation(ctx context.Context, key string) (string, bool, error) {
	if s.Redis == nil {
		return "", false, ErrNotConfigured
	}
	value, err := s.Redis.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("cache get %s: %w", key, err)
	}
	return value, true, nil
}

// CacheTranslation stores value under key for ttl.
func (s *Service) CacheTranslation(ctx context.Context, key, value string, ttl time.Duration) error {
	if s.Redis == nil {
		return ErrNotConfigured
	}
	if err := s.Redis.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

// PurgeTranslationCache deletes every cached translation and returns how many
// keys were removed.
func (s *Service) PurgeTranslationCache(ctx context.Context) (int, error) {
	if s.Redis == nil {
		return 0, ErrNotConfigured
	}

	deleted := 0
	var cursor uint64
	for {
		keys, next, err := s.Redis.Scan(ctx, cursor, TranslationCachePattern, 100).Result()
		if err != nil {
			return deleted, fmt.Errorf("cache scan: %w", err)
		}
		if len(keys) > 0 {
			n, err := s.Redis.Del(ctx, keys...).Result()
			if err != nil {
				return deleted, fmt.Errorf("cache delete: %w", err)
			}
			deleted += int(n)
		}
		cursor = next
		if cursor == 0 {
			return deleted, nil
		}
	}
}

// Ping checks every configured backend. The map holds one entry per backend:
// nil means healthy.
func (s *Service) Ping(ctx context.Context) map[string]error {
	status := make(map[string]error)
	if s.DB != nil {
		sqlDB, err := s.DB.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		status["database"] = err
	}
	if s.Redis != nil {
		status["redis"] = s.Redis.Ping(ctx).Err()
	}
	return status
}
