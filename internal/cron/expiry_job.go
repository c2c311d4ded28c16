package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/milkoapp/milko-backend/internal/schedule"
	"github.com/milkoapp/milko-backend/pkg/db/models"
	"github.com/milkoapp/milko-backend/pkg/enums"
	"github.com/milkoapp/milko-backend/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type expiredSubscriptionStore interface {
	ListExpired(ctx context.Context, before time.Time) ([]models.Subscription, error)
	UpdateStatusWithTx(tx *gorm.DB, id uuid.UUID, status enums.SubscriptionStatus) error
}

// SubscriptionExpiryJobParams configure the expiry job.
type SubscriptionExpiryJobParams struct {
	Logger        *logger.Logger
	DB            txRunner
	Subscriptions expiredSubscriptionStore
}

// NewSubscriptionExpiryJob closes out subscriptions whose end date has
// passed. Active and paused subscriptions past their end date flip to the
// terminal cancelled status so they no longer appear on day sheets or
// accept pause/resume calls.
func NewSubscriptionExpiryJob(params SubscriptionExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Subscriptions == nil {
		return nil, fmt.Errorf("subscription repository required")
	}
	return &subscriptionExpiryJob{
		logg: params.Logger,
		db:   params.DB,
		subs: params.Subscriptions,
		now:  time.Now,
	}, nil
}

type subscriptionExpiryJob struct {
	logg *logger.Logger
	db   txRunner
	subs expiredSubscriptionStore
	now  func() time.Time
}

func (j *subscriptionExpiryJob) Name() string { return "subscription-expiry" }

func (j *subscriptionExpiryJob) Run(ctx context.Context) error {
	today := schedule.DateOnly(j.now())
	expired, err := j.subs.ListExpired(ctx, today)
	if err != nil {
		return fmt.Errorf("list expired subscriptions: %w", err)
	}
	if len(expired) == 0 {
		j.logg.Info(ctx, "no expired subscriptions")
		return nil
	}

	var closed int
	err = j.db.WithTx(ctx, func(tx *gorm.DB) error {
		for _, sub := range expired {
			if err := j.subs.UpdateStatusWithTx(tx, sub.ID, enums.SubscriptionStatusCancelled); err != nil {
				return fmt.Errorf("expire subscription %s: %w", sub.ID, err)
			}
			closed++
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("subscription expiry: %w", err)
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff": today,
		"closed": closed,
	})
	j.logg.Info(logCtx, "expired subscriptions closed")
	return nil
}
