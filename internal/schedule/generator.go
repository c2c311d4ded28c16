// Package schedule generates per-day delivery rows for subscriptions.
package schedule

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/milkoapp/milko-backend/pkg/db/models"
	"github.com/milkoapp/milko-backend/pkg/enums"
	pkgerrors "github.com/milkoapp/milko-backend/pkg/errors"
)

// Generator materializes a subscription's delivery calendar.
type Generator struct{}

// NewGenerator builds a schedule generator.
func NewGenerator() *Generator {
	return &Generator{}
}

// GenerateForSubscription inserts one pending delivery per calendar day in
// [StartDate, EndDate], skipping the subscription's paused dates. Insertion
// is keyed on (subscription_id, delivery_date) with conflicts ignored, so a
// rerun never duplicates a day. Only the rows inserted by this call are
// returned. Runs entirely on the caller's transaction.
func (g *Generator) GenerateForSubscription(ctx context.Context, tx *gorm.DB, sub *models.Subscription) ([]models.DeliverySchedule, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction required")
	}
	if sub == nil {
		return nil, fmt.Errorf("subscription required")
	}

	start := DateOnly(sub.StartDate)
	end := DateOnly(sub.EndDate)
	if end.Before(start) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "subscription end date precedes start date")
	}

	paused, err := pausedDateSet(ctx, tx, sub.ID)
	if err != nil {
		return nil, err
	}

	var inserted []models.DeliverySchedule
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		if _, skip := paused[DateKey(day)]; skip {
			continue
		}

		row := models.DeliverySchedule{
			ID:             uuid.New(),
			SubscriptionID: sub.ID,
			DeliveryDate:   day,
			Status:         enums.DeliveryStatusPending,
		}
		res := tx.WithContext(ctx).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "subscription_id"}, {Name: "delivery_date"}},
				DoNothing: true,
			}).
			Create(&row)
		if res.Error != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, res.Error, "insert delivery day")
		}
		if res.RowsAffected > 0 {
			inserted = append(inserted, row)
		}
	}

	return inserted, nil
}

func pausedDateSet(ctx context.Context, tx *gorm.DB, subscriptionID uuid.UUID) (map[string]struct{}, error) {
	var rows []models.PausedDate
	if err := tx.WithContext(ctx).
		Where("subscription_id = ?", subscriptionID).
		Find(&rows).
		Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load paused dates")
	}

	set := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		set[DateKey(row.Date)] = struct{}{}
	}
	return set, nil
}
