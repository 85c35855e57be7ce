// Package seed loads the known coupon list into the directory.
package seed

import (
	"context"
	"fmt"

	"github.com/sena-tools/coupon-relay/internal/directory"
	"github.com/sena-tools/coupon-relay/internal/models"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// knownCoupons is the published coupon list at the time of writing. Seeding
// is idempotent; rerunning after new codes are appended only adds the new
// ones.
var knownCoupons = []string{
	"OBLIVION",
	"TARGETWISH",
	"DELLONSVSKRIS",
	"HALFGOODHALFEVIL",
	"GOLDENKINGPEPE",
	"LETSGO7K",
	"POOKIFIVEKINDS",
	"KEYKEYKEY",
	"100MILLIONHEARTS",
	"77EVENT77",
	"CHAOSESSENCE",
	"SENAHAJASENA",
	"GRACEOFCHAOS",
	"BRANZEBRANSEL",
	"DANCINGPOOKI",
	"7S7E7V7E7N7",
	"HAPPYNEWYEAR2026",
	"SENASTARCRYSTAL",
	"SENA77MEMORY",
}

// Run upserts the known coupon codes and invalidates the directory cache.
func Run(ctx context.Context, db *gorm.DB, dir *directory.Service) error {
	if db == nil {
		return fmt.Errorf("seed: nil db")
	}

	for _, code := range knownCoupons {
		coupon := models.Coupon{Code: directory.NormalizeCode(code)}
		if errUpsert := db.WithContext(ctx).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "code"}},
				DoNothing: true,
			}).
			Create(&coupon).Error; errUpsert != nil {
			return fmt.Errorf("seed: upsert %s: %w", code, errUpsert)
		}
		log.Debugf("seeded coupon %s", coupon.Code)
	}

	if dir != nil {
		dir.Invalidate(ctx)
	}
	log.Infof("seeded %d coupons", len(knownCoupons))
	return nil
}
