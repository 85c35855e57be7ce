package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"github.com/sena-tools/coupon-relay/internal/models"
	"gorm.io/gorm"
)

func setupDirectoryTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:directory_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, errOpen := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if errOpen != nil {
		t.Fatalf("open db: %v", errOpen)
	}
	if errMigrate := db.AutoMigrate(&models.Coupon{}); errMigrate != nil {
		t.Fatalf("migrate db: %v", errMigrate)
	}
	return db
}

func setupDirectoryRedis(t *testing.T) (*miniredis.Miniredis, redis.UniversalClient) {
	t.Helper()
	mini := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mini.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mini, client
}

func seedCoupon(t *testing.T, db *gorm.DB, code string, active bool, createdAt time.Time) {
	t.Helper()
	coupon := models.Coupon{Code: code, Active: active, CreatedAt: createdAt}
	if errCreate := db.Create(&coupon).Error; errCreate != nil {
		t.Fatalf("seed coupon %s: %v", code, errCreate)
	}
}

func TestListPopulatesCacheOnMiss(t *testing.T) {
	t.Parallel()

	db := setupDirectoryTestDB(t)
	mini, client := setupDirectoryRedis(t)
	svc := NewService(db, client)

	base := time.Now().UTC()
	seedCoupon(t, db, "OLDCODE", true, base.Add(-2*time.Hour))
	seedCoupon(t, db, "NEWCODE", true, base)
	seedCoupon(t, db, "DEADCODE", false, base.Add(-time.Hour))

	codes, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(codes) != 2 || codes[0] != "NEWCODE" || codes[1] != "OLDCODE" {
		t.Fatalf("codes = %v, want [NEWCODE OLDCODE]", codes)
	}

	cached, errGet := mini.Get(CacheKey)
	if errGet != nil {
		t.Fatalf("cache entry missing: %v", errGet)
	}
	var fromCache []string
	if errUnmarshal := json.Unmarshal([]byte(cached), &fromCache); errUnmarshal != nil {
		t.Fatalf("cache not json: %v", errUnmarshal)
	}
	if len(fromCache) != 2 {
		t.Fatalf("cached codes = %v", fromCache)
	}
}

func TestListServesFromCacheWithoutDB(t *testing.T) {
	t.Parallel()

	db := setupDirectoryTestDB(t)
	mini, client := setupDirectoryRedis(t)
	svc := NewService(db, client)

	if errSet := mini.Set(CacheKey, `["CACHED1","CACHED2"]`); errSet != nil {
		t.Fatalf("prime cache: %v", errSet)
	}

	codes, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(codes) != 2 || codes[0] != "CACHED1" {
		t.Fatalf("codes = %v, want cached list", codes)
	}
}

func TestListFallsBackWhenCacheDown(t *testing.T) {
	t.Parallel()

	db := setupDirectoryTestDB(t)
	mini, client := setupDirectoryRedis(t)
	svc := NewService(db, client)

	seedCoupon(t, db, "SURVIVOR", true, time.Now().UTC())
	mini.Close()

	codes, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("list with cache down: %v", err)
	}
	if len(codes) != 1 || codes[0] != "SURVIVOR" {
		t.Fatalf("codes = %v, want [SURVIVOR]", codes)
	}
}

func TestListWorksWithoutRedis(t *testing.T) {
	t.Parallel()

	db := setupDirectoryTestDB(t)
	svc := NewService(db, nil)

	seedCoupon(t, db, "NOCACHE", true, time.Now().UTC())

	codes, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(codes) != 1 || codes[0] != "NOCACHE" {
		t.Fatalf("codes = %v", codes)
	}
}

func TestAddNormalizesAndInvalidates(t *testing.T) {
	t.Parallel()

	db := setupDirectoryTestDB(t)
	mini, client := setupDirectoryRedis(t)
	svc := NewService(db, client)

	if errSet := mini.Set(CacheKey, `["STALE"]`); errSet != nil {
		t.Fatalf("prime cache: %v", errSet)
	}

	coupon, err := svc.Add(context.Background(), "  fresh77 ")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if coupon.Code != "FRESH77" {
		t.Fatalf("code = %q, want FRESH77", coupon.Code)
	}
	if mini.Exists(CacheKey) {
		t.Fatalf("cache entry should be deleted after add")
	}

	// unique index: second insert of the same normalized code must fail
	if _, errDup := svc.Add(context.Background(), "fresh77"); errDup == nil {
		t.Fatalf("expected unique violation for duplicate code")
	}
}

func TestDeactivateExcludesCodeAfterInvalidation(t *testing.T) {
	t.Parallel()

	db := setupDirectoryTestDB(t)
	mini, client := setupDirectoryRedis(t)
	svc := NewService(db, client)

	seedCoupon(t, db, "EXPIRES", true, time.Now().UTC())

	if _, err := svc.List(context.Background()); err != nil {
		t.Fatalf("warm list: %v", err)
	}
	if !mini.Exists(CacheKey) {
		t.Fatalf("cache should be warm")
	}

	if err := svc.Deactivate(context.Background(), "expires"); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if mini.Exists(CacheKey) {
		t.Fatalf("cache entry should be deleted after deactivate")
	}

	codes, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("list after deactivate: %v", err)
	}
	if len(codes) != 0 {
		t.Fatalf("codes = %v, want empty", codes)
	}

	var row models.Coupon
	if errFind := db.Where("code = ?", "EXPIRES").First(&row).Error; errFind != nil {
		t.Fatalf("row should survive deactivation: %v", errFind)
	}
	if row.Active {
		t.Fatalf("row still active")
	}
}

func TestDeactivateMissingRowIsNoError(t *testing.T) {
	t.Parallel()

	db := setupDirectoryTestDB(t)
	svc := NewService(db, nil)

	if err := svc.Deactivate(context.Background(), "GHOST"); err != nil {
		t.Fatalf("deactivate missing row: %v", err)
	}
}
