// Package directory maintains the list of coupon codes known to still be
// redeemable, with a redis read-through cache over the coupon table.
package directory

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/sena-tools/coupon-relay/internal/models"
	"github.com/sena-tools/coupon-relay/internal/settings"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// CacheKey holds the cached ordered list of active coupon codes.
const CacheKey = "coupons:active"

// Service reads and mutates the coupon directory. A nil redis client
// disables caching; every read then goes straight to the database.
type Service struct {
	db    *gorm.DB
	redis redis.UniversalClient
}

// NewService constructs a directory service.
func NewService(db *gorm.DB, redisClient redis.UniversalClient) *Service {
	return &Service{db: db, redis: redisClient}
}

// NormalizeCode trims and uppercases a coupon code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// List returns the active coupon codes, newest first. The cache is advisory:
// any cache failure falls back to the database and is logged only.
func (s *Service) List(ctx context.Context) ([]string, error) {
	if cached, ok := s.cachedList(ctx); ok {
		return cached, nil
	}

	var rows []models.Coupon
	if errFind := s.db.WithContext(ctx).
		Where("active = ?", true).
		Order("created_at DESC").
		Select("code").
		Find(&rows).Error; errFind != nil {
		return nil, errFind
	}

	codes := make([]string, 0, len(rows))
	for _, row := range rows {
		codes = append(codes, row.Code)
	}

	s.storeList(ctx, codes)
	return codes, nil
}

// CachedCodes returns the directory list currently in the cache, without
// touching the database. Used for the upsert-avoidance check during
// redemption; a miss or cache failure returns false.
func (s *Service) CachedCodes(ctx context.Context) ([]string, bool) {
	return s.cachedList(ctx)
}

// Add creates a coupon row for the normalized code and invalidates the
// cache. Adding a code that already exists returns the unique-index error
// from the database.
func (s *Service) Add(ctx context.Context, code string) (*models.Coupon, error) {
	coupon := models.Coupon{Code: NormalizeCode(code)}
	if errCreate := s.db.WithContext(ctx).Create(&coupon).Error; errCreate != nil {
		return nil, errCreate
	}
	s.Invalidate(ctx)
	return &coupon, nil
}

// Deactivate marks the coupon row inactive and invalidates the cache. A
// missing row is not an error; nothing changes.
func (s *Service) Deactivate(ctx context.Context, code string) error {
	result := s.db.WithContext(ctx).
		Model(&models.Coupon{}).
		Where("code = ?", NormalizeCode(code)).
		Update("active", false)
	if result.Error != nil {
		return result.Error
	}
	s.Invalidate(ctx)
	return nil
}

// Invalidate deletes the cached directory list. Safe to call concurrently;
// deletes are commutative and the next reader repopulates lazily.
func (s *Service) Invalidate(ctx context.Context) {
	if s.redis == nil {
		return
	}
	if errDel := s.redis.Del(ctx, CacheKey).Err(); errDel != nil {
		log.WithError(errDel).Warn("directory: cache invalidate failed")
	}
}

func (s *Service) cachedList(ctx context.Context) ([]string, bool) {
	if s.redis == nil {
		return nil, false
	}
	raw, errGet := s.redis.Get(ctx, CacheKey).Bytes()
	if errGet == redis.Nil {
		return nil, false
	}
	if errGet != nil {
		log.WithError(errGet).Warn("directory: cache read failed, falling back to database")
		return nil, false
	}
	var codes []string
	if errUnmarshal := json.Unmarshal(raw, &codes); errUnmarshal != nil {
		log.WithError(errUnmarshal).Warn("directory: malformed cache entry, falling back to database")
		return nil, false
	}
	return codes, true
}

func (s *Service) storeList(ctx context.Context, codes []string) {
	if s.redis == nil {
		return
	}
	encoded, errMarshal := json.Marshal(codes)
	if errMarshal != nil {
		return
	}
	if errSet := s.redis.Set(ctx, CacheKey, encoded, settings.CouponCacheTTL()).Err(); errSet != nil {
		log.WithError(errSet).Warn("directory: cache populate failed")
	}
}
