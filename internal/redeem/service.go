// Package redeem runs a single coupon redemption: one publisher call,
// classification, and the persistence side effects the outcome demands.
package redeem

import (
	"context"
	"encoding/json"

	"github.com/sena-tools/coupon-relay/internal/directory"
	"github.com/sena-tools/coupon-relay/internal/models"
	"github.com/sena-tools/coupon-relay/internal/publisher"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PublisherClient issues one redemption call against the publisher.
type PublisherClient interface {
	Redeem(ctx context.Context, accountID, code string) (*publisher.Response, []byte, error)
}

// Outcome is the application-level result returned to callers.
type Outcome struct {
	Success   bool            `json:"success"`
	Message   string          `json:"message"`
	Reward    string          `json:"reward,omitempty"`
	ErrorCode int             `json:"errorCode,omitempty"`
	Raw       json.RawMessage `json:"raw,omitempty"`
}

// Service owns the redemption workflow.
type Service struct {
	client    PublisherClient
	directory *directory.Service
	db        *gorm.DB
}

// NewService constructs a redemption service.
func NewService(client PublisherClient, dir *directory.Service, db *gorm.DB) *Service {
	return &Service{client: client, directory: dir, db: db}
}

// Redeem performs one redemption for the account and code. The returned
// error is non-nil only when the publisher call itself failed to complete;
// classified publisher failures come back as a non-success Outcome.
// Persistence side effects never fail the redemption.
func (s *Service) Redeem(ctx context.Context, accountID, code string) (Outcome, error) {
	resp, raw, errCall := s.client.Redeem(ctx, accountID, code)
	if errCall != nil {
		return Outcome{}, errCall
	}

	result := publisher.Interpret(resp)
	s.applySideEffects(ctx, code, result)

	return Outcome{
		Success:   result.Success,
		Message:   result.Message,
		Reward:    result.Reward,
		ErrorCode: result.ErrorCode,
		Raw:       raw,
	}, nil
}

// applySideEffects records the directory consequences of a classified
// outcome. Failures here are logged, never surfaced; the redemption already
// happened on the publisher side.
func (s *Service) applySideEffects(ctx context.Context, code string, result publisher.Result) {
	switch result.Outcome {
	case publisher.OutcomeSuccess, publisher.OutcomeAlreadyRedeemed:
		normalized := directory.NormalizeCode(code)
		// A cache hit implies the row already exists; skip the redundant write.
		if cached, ok := s.directory.CachedCodes(ctx); ok && containsCode(cached, normalized) {
			return
		}
		if errUpsert := s.upsertCoupon(ctx, normalized); errUpsert != nil {
			log.WithError(errUpsert).WithField("code", normalized).Warn("redeem: coupon upsert failed")
			return
		}
		s.directory.Invalidate(ctx)
	case publisher.OutcomeExpired:
		if errDeactivate := s.directory.Deactivate(ctx, code); errDeactivate != nil {
			log.WithError(errDeactivate).WithField("code", code).Warn("redeem: coupon deactivate failed")
		}
	}
}

func (s *Service) upsertCoupon(ctx context.Context, normalized string) error {
	coupon := models.Coupon{Code: normalized}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "code"}},
			DoNothing: true,
		}).
		Create(&coupon).Error
}

func containsCode(codes []string, code string) bool {
	for _, c := range codes {
		if c == code {
			return true
		}
	}
	return false
}
