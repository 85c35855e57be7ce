// Package app wires configuration, storage, cache, and HTTP together for
// the coupon-relay subcommands.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sena-tools/coupon-relay/internal/batch"
	"github.com/sena-tools/coupon-relay/internal/config"
	"github.com/sena-tools/coupon-relay/internal/db"
	"github.com/sena-tools/coupon-relay/internal/directory"
	"github.com/sena-tools/coupon-relay/internal/history"
	"github.com/sena-tools/coupon-relay/internal/httpapi"
	"github.com/sena-tools/coupon-relay/internal/publisher"
	"github.com/sena-tools/coupon-relay/internal/redeem"
	"github.com/sena-tools/coupon-relay/internal/relayclient"
	"github.com/sena-tools/coupon-relay/internal/seed"
	"github.com/sena-tools/coupon-relay/internal/settings"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// RunServer boots the relay HTTP server and blocks until ctx is cancelled.
func RunServer(ctx context.Context, cfg config.Config) error {
	conn, errOpen := openAndMigrate(cfg)
	if errOpen != nil {
		return errOpen
	}
	log.Infof("database ready (dialect=%s)", db.DialectName(conn))

	redisClient := newRedisClient(ctx, cfg)

	if errRefresh := settings.Refresh(ctx, conn); errRefresh != nil {
		return fmt.Errorf("app: load settings: %w", errRefresh)
	}
	if updated := settings.UpdatedAt(); !updated.IsZero() {
		log.Debugf("settings snapshot as of %s", updated.Format(time.RFC3339))
	}

	pubCfg := cfg.Publisher
	if lang := settings.PublisherLanguage(); lang != settings.DefaultPublisherLanguage {
		pubCfg.Language = lang
	}

	dir := directory.NewService(conn, redisClient)
	redeemSvc := redeem.NewService(publisher.NewClient(pubCfg), dir, conn)
	engine := httpapi.NewRouter(dir, redeemSvc)

	server := &http.Server{
		Addr:         cfg.Listen,
		Handler:      engine,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if errShutdown := server.Shutdown(shutdownCtx); errShutdown != nil {
			log.WithError(errShutdown).Warn("server shutdown")
		}
	}()

	log.Infof("coupon relay listening on %s", cfg.Listen)
	if errServe := server.ListenAndServe(); errServe != nil && !errors.Is(errServe, http.ErrServerClosed) {
		return errServe
	}
	<-shutdownDone
	log.Info("server stopped")
	return nil
}

// Migrate opens the database and runs schema migration.
func Migrate(_ context.Context, cfg config.Config) error {
	_, err := openAndMigrate(cfg)
	return err
}

// Seed migrates and loads the known coupon list.
func Seed(ctx context.Context, cfg config.Config) error {
	conn, errOpen := openAndMigrate(cfg)
	if errOpen != nil {
		return errOpen
	}
	dir := directory.NewService(conn, newRedisClient(ctx, cfg))
	return seed.Run(ctx, conn, dir)
}

// BatchParams holds inputs for a client-side batch run.
type BatchParams struct {
	AccountID    string
	Input        string // free-form coupon codes; ignored when Auto is set
	Auto         bool   // redeem every directory code not yet in history
	ClearHistory bool   // drop the account's history instead of redeeming
	DeleteCodes  string // codes to remove from history instead of redeeming
}

// RunBatch runs a batch redemption against a relay server, keeping the
// per-account ledger on local disk.
func RunBatch(ctx context.Context, cfg config.Config, params BatchParams) error {
	repo := history.NewFileRepository(cfg.HistoryPath)

	accountID := params.AccountID
	if accountID == "" {
		last, ok := repo.LastAccountID()
		if !ok {
			return fmt.Errorf("app: no account id given and none remembered; pass -uid")
		}
		accountID = last
		log.Infof("using remembered account id %s", accountID)
	}

	client := relayclient.New(cfg.RelayURL)
	driver := batch.NewDriver(client, repo, consoleReporter{})

	if params.ClearHistory {
		if errClear := driver.ClearHistory(accountID); errClear != nil {
			return fmt.Errorf("app: clear history: %w", errClear)
		}
		log.Infof("cleared history for account %s", accountID)
		return nil
	}

	if params.DeleteCodes != "" {
		codes := batch.ParseCodes(params.DeleteCodes)
		if len(codes) == 0 {
			return fmt.Errorf("app: no coupon codes to delete")
		}
		for _, code := range codes {
			if errDelete := driver.DeleteEntry(accountID, code); errDelete != nil {
				return fmt.Errorf("app: delete %s from history: %w", code, errDelete)
			}
			log.Infof("removed %s from history for account %s", code, accountID)
		}
		return nil
	}

	var codes []string
	if params.Auto {
		fetched, errFetch := client.Coupons(ctx)
		if errFetch != nil {
			return fmt.Errorf("app: fetch directory: %w", errFetch)
		}
		codes = fetched
	} else {
		codes = batch.ParseCodes(params.Input)
	}
	if len(codes) == 0 {
		return fmt.Errorf("app: no coupon codes to redeem")
	}

	summary, errRun := driver.Run(ctx, accountID, codes)
	if errRun != nil {
		return errRun
	}
	log.Infof("batch done: %d redeemed, %d failed, %d skipped",
		summary.Succeeded, summary.Failed, summary.Skipped)
	return nil
}

func openAndMigrate(cfg config.Config) (*gorm.DB, error) {
	conn, errOpen := db.Open(cfg.DatabaseDSN)
	if errOpen != nil {
		return nil, errOpen
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		return nil, errMigrate
	}
	return conn, nil
}

// newRedisClient connects the directory cache. Cache trouble never blocks
// startup; the directory falls back to the database.
func newRedisClient(ctx context.Context, cfg config.Config) redis.UniversalClient {
	if cfg.RedisAddr == "" {
		log.Info("no redis address configured, directory cache disabled")
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if errPing := client.Ping(pingCtx).Err(); errPing != nil {
		log.WithError(errPing).Warn("redis unreachable, directory cache degraded")
	}
	return client
}
