package subscriptions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/milkoapp/milko-backend/internal/pricing"
	"github.com/milkoapp/milko-backend/internal/schedule"
	"github.com/milkoapp/milko-backend/pkg/db/models"
	"github.com/milkoapp/milko-backend/pkg/enums"
	pkgerrors "github.com/milkoapp/milko-backend/pkg/errors"
	"github.com/milkoapp/milko-backend/pkg/pagination"
	"github.com/milkoapp/milko-backend/pkg/razorpay"
	"github.com/shopspring/decimal"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type productReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type scheduleGenerator interface {
	GenerateForSubscription(ctx context.Context, tx *gorm.DB, sub *models.Subscription) ([]models.DeliverySchedule, error)
}

type deliveryMarker interface {
	MarkStatusByDateWithTx(tx *gorm.DB, subscriptionID uuid.UUID, date time.Time, from, to enums.DeliveryStatus) (int64, error)
	CancelPendingFromWithTx(tx *gorm.DB, subscriptionID uuid.UUID, from time.Time) error
}

// Service defines the subscription lifecycle surface.
type Service interface {
	Create(ctx context.Context, userID uuid.UUID, input CreateSubscriptionInput) (*CreateResult, error)
	Get(ctx context.Context, actor Actor, id uuid.UUID) (*models.Subscription, error)
	ListByUser(ctx context.Context, actor Actor, userID uuid.UUID) ([]models.Subscription, error)
	ListAll(ctx context.Context, params pagination.Params) (*Page, error)
	Activate(ctx context.Context, id uuid.UUID) (*ActivationResult, error)
	ActivateByOrderRef(ctx context.Context, orderRef string) (*ActivationResult, error)
	Pause(ctx context.Context, actor Actor, id uuid.UUID) error
	Resume(ctx context.Context, actor Actor, id uuid.UUID) error
	Cancel(ctx context.Context, actor Actor, id uuid.UUID) error
	ForceCancelByOrderRef(ctx context.Context, orderRef string) error
	AddPausedDate(ctx context.Context, actor Actor, id uuid.UUID, date time.Time) error
	RemovePausedDate(ctx context.Context, actor Actor, id uuid.UUID, date time.Time) error
	ListPausedDates(ctx context.Context, actor Actor, id uuid.UUID) ([]models.PausedDate, error)
}

// CreateSubscriptionInput captures the data required to start a subscription.
type CreateSubscriptionInput struct {
	ProductID      uuid.UUID
	LitresPerDay   decimal.Decimal
	DurationMonths int
	DeliveryTime   string
	StartDate      time.Time
}

// CreateResult bundles the pending subscription with its gateway order.
type CreateResult struct {
	Subscription *models.Subscription
	Quote        *pricing.Quote
	OrderID      string
	Currency     string
}

// ActivationResult reports an activation and any newly scheduled deliveries.
type ActivationResult struct {
	Subscription  *models.Subscription
	NewDeliveries []models.DeliverySchedule
}

// Page is one page of subscriptions with the cursor for the next page.
type Page struct {
	Items      []models.Subscription
	NextCursor string
}

// ServiceParams groups dependencies for the subscription service.
type ServiceParams struct {
	Repo              *Repository
	Products          productReader
	Gateway           razorpay.OrderCreator
	Generator         scheduleGenerator
	Deliveries        deliveryMarker
	TransactionRunner txRunner
	Now               func() time.Time
}

type service struct {
	repo       *Repository
	products   productReader
	gateway    razorpay.OrderCreator
	generator  scheduleGenerator
	deliveries deliveryMarker
	txRunner   txRunner
	now        func() time.Time
}

// NewService builds a subscription service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("subscription repository required")
	}
	if params.Products == nil {
		return nil, fmt.Errorf("product reader required")
	}
	if params.Gateway == nil {
		return nil, fmt.Errorf("payment gateway required")
	}
	if params.Generator == nil {
		return nil, fmt.Errorf("schedule generator required")
	}
	if params.Deliveries == nil {
		return nil, fmt.Errorf("delivery marker required")
	}
	if params.TransactionRunner == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:       params.Repo,
		products:   params.Products,
		gateway:    params.Gateway,
		generator:  params.Generator,
		deliveries: params.Deliveries,
		txRunner:   params.TransactionRunner,
		now:        now,
	}, nil
}

// Create prices the subscription, opens a gateway order, and persists the
// subscription in pending state awaiting payment capture.
func (s *service) Create(ctx context.Context, userID uuid.UUID, input CreateSubscriptionInput) (*CreateResult, error) {
	if strings.TrimSpace(input.DeliveryTime) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery time is required")
	}
	if input.StartDate.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "start date is required")
	}

	product, err := s.products.FindByID(ctx, input.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product is not available for subscription")
	}

	quote, err := pricing.ComputeQuote(product.PricePerLitre, input.LitresPerDay, input.DurationMonths)
	if err != nil {
		return nil, err
	}

	start := schedule.DateOnly(input.StartDate)
	end := start.AddDate(0, input.DurationMonths, 0)

	receipt := fmt.Sprintf("milko_sub_%s_%d", userID, s.now().UnixMilli())
	order, err := s.gateway.CreateOrder(ctx, razorpay.OrderCreateParams{
		AmountPaise: quote.AmountPaise,
		Currency:    string(enums.CurrencyINR),
		Receipt:     receipt,
		Notes: map[string]string{
			"user_id":    userID.String(),
			"product_id": product.ID.String(),
		},
	})
	if err != nil {
		return nil, err
	}

	sub := &models.Subscription{
		ID:              uuid.New(),
		UserID:          userID,
		ProductID:       product.ID,
		LitresPerDay:    input.LitresPerDay,
		DurationMonths:  input.DurationMonths,
		DeliveryTime:    strings.TrimSpace(input.DeliveryTime),
		Status:          enums.SubscriptionStatusPending,
		StartDate:       start,
		EndDate:         end,
		RazorpayOrderID: order.ID,
	}
	created, err := s.repo.Create(ctx, sub)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create subscription")
	}
	created.Product = product

	return &CreateResult{
		Subscription: created,
		Quote:        quote,
		OrderID:      order.ID,
		Currency:     order.Currency,
	}, nil
}

func (s *service) Get(ctx context.Context, actor Actor, id uuid.UUID) (*models.Subscription, error) {
	sub, err := s.loadSubscription(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccess(sub.UserID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "subscription belongs to another user")
	}
	return sub, nil
}

func (s *service) ListByUser(ctx context.Context, actor Actor, userID uuid.UUID) ([]models.Subscription, error) {
	if !actor.CanAccess(userID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cannot list another user's subscriptions")
	}
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list subscriptions")
	}
	return rows, nil
}

func (s *service) ListAll(ctx context.Context, params pagination.Params) (*Page, error) {
	params.Limit = pagination.NormalizeLimit(params.Limit)
	rows, err := s.repo.ListAll(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list subscriptions")
	}

	page := &Page{Items: rows}
	if len(rows) > params.Limit {
		page.Items = rows[:params.Limit]
		last := page.Items[len(page.Items)-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return page, nil
}

// Activate marks a pending subscription active and materializes its
// delivery calendar. Re-activating an already active subscription only
// re-runs generation, which is a no-op for days already scheduled.
func (s *service) Activate(ctx context.Context, id uuid.UUID) (*ActivationResult, error) {
	var result *ActivationResult
	err := s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		sub, err := s.loadSubscription(ctx, txRepo, id)
		if err != nil {
			return err
		}
		activated, err := s.activateWithTx(ctx, tx, txRepo, sub)
		if err != nil {
			return err
		}
		result = activated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ActivateByOrderRef activates the subscription tied to a gateway order.
func (s *service) ActivateByOrderRef(ctx context.Context, orderRef string) (*ActivationResult, error) {
	if strings.TrimSpace(orderRef) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order reference is required")
	}

	var result *ActivationResult
	err := s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		sub, err := txRepo.FindByOrderRef(ctx, orderRef)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "no subscription for order reference")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load subscription by order")
		}
		activated, err := s.activateWithTx(ctx, tx, txRepo, sub)
		if err != nil {
			return err
		}
		result = activated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) activateWithTx(ctx context.Context, tx *gorm.DB, txRepo *Repository, sub *models.Subscription) (*ActivationResult, error) {
	switch sub.Status {
	case enums.SubscriptionStatusPending:
		if err := txRepo.UpdateStatus(ctx, sub.ID, enums.SubscriptionStatusActive); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "activate subscription")
		}
		sub.Status = enums.SubscriptionStatusActive
	case enums.SubscriptionStatusActive:
		// already active: fall through to generation, which fills any gaps
	default:
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot activate %s subscription", sub.Status))
	}

	deliveries, err := s.generator.GenerateForSubscription(ctx, tx, sub)
	if err != nil {
		return nil, err
	}
	return &ActivationResult{Subscription: sub, NewDeliveries: deliveries}, nil
}

// Pause suspends an active subscription.
func (s *service) Pause(ctx context.Context, actor Actor, id uuid.UUID) error {
	return s.transition(ctx, actor, id, enums.SubscriptionStatusActive, enums.SubscriptionStatusPaused,
		"only active subscriptions can be paused")
}

// Resume reactivates a paused subscription.
func (s *service) Resume(ctx context.Context, actor Actor, id uuid.UUID) error {
	return s.transition(ctx, actor, id, enums.SubscriptionStatusPaused, enums.SubscriptionStatusActive,
		"only paused subscriptions can be resumed")
}

func (s *service) transition(ctx context.Context, actor Actor, id uuid.UUID, from, to enums.SubscriptionStatus, guardMsg string) error {
	sub, err := s.loadSubscription(ctx, s.repo, id)
	if err != nil {
		return err
	}
	if !actor.CanAccess(sub.UserID) {
		return pkgerrors.New(pkgerrors.CodeForbidden, "subscription belongs to another user")
	}
	if sub.Status != from {
		return pkgerrors.New(pkgerrors.CodeValidation, guardMsg)
	}
	if err := s.repo.UpdateStatus(ctx, id, to); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update subscription status")
	}
	return nil
}

// Cancel terminates a subscription from any state. Cancelling an already
// cancelled subscription is a no-op. Remaining pending deliveries from
// today onward are cancelled with it.
func (s *service) Cancel(ctx context.Context, actor Actor, id uuid.UUID) error {
	return s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		sub, err := s.loadSubscription(ctx, txRepo, id)
		if err != nil {
			return err
		}
		if !actor.CanAccess(sub.UserID) {
			return pkgerrors.New(pkgerrors.CodeForbidden, "subscription belongs to another user")
		}
		return s.cancelWithTx(ctx, tx, txRepo, sub)
	})
}

// ForceCancelByOrderRef cancels the subscription tied to a gateway order,
// bypassing ownership checks. Used by webhook reconciliation.
func (s *service) ForceCancelByOrderRef(ctx context.Context, orderRef string) error {
	if strings.TrimSpace(orderRef) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "order reference is required")
	}
	return s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		sub, err := txRepo.FindByOrderRef(ctx, orderRef)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "no subscription for order reference")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load subscription by order")
		}
		return s.cancelWithTx(ctx, tx, txRepo, sub)
	})
}

func (s *service) cancelWithTx(ctx context.Context, tx *gorm.DB, txRepo *Repository, sub *models.Subscription) error {
	if sub.Status == enums.SubscriptionStatusCancelled {
		return nil
	}
	if err := txRepo.UpdateStatus(ctx, sub.ID, enums.SubscriptionStatusCancelled); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "cancel subscription")
	}
	today := schedule.DateOnly(s.now())
	if err := s.deliveries.CancelPendingFromWithTx(tx, sub.ID, today); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "cancel remaining deliveries")
	}
	return nil
}

// AddPausedDate marks one calendar date as skipped. An already scheduled
// pending delivery on that date flips to skipped in the same transaction.
func (s *service) AddPausedDate(ctx context.Context, actor Actor, id uuid.UUID, date time.Time) error {
	day := schedule.DateOnly(date)
	return s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		sub, err := s.authorizedSubscription(ctx, txRepo, actor, id)
		if err != nil {
			return err
		}
		if sub.Status.IsTerminal() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "subscription is cancelled")
		}
		if day.Before(schedule.DateOnly(sub.StartDate)) || day.After(schedule.DateOnly(sub.EndDate)) {
			return pkgerrors.New(pkgerrors.CodeValidation, "date is outside the subscription period")
		}

		if err := txRepo.AddPausedDate(ctx, sub.ID, day); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "add paused date")
		}
		if _, err := s.deliveries.MarkStatusByDateWithTx(tx, sub.ID, day,
			enums.DeliveryStatusPending, enums.DeliveryStatusSkipped); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "skip scheduled delivery")
		}
		return nil
	})
}

// RemovePausedDate clears a paused date. A delivery previously skipped for
// that date flips back to pending.
func (s *service) RemovePausedDate(ctx context.Context, actor Actor, id uuid.UUID, date time.Time) error {
	day := schedule.DateOnly(date)
	return s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		sub, err := s.authorizedSubscription(ctx, txRepo, actor, id)
		if err != nil {
			return err
		}
		if sub.Status.IsTerminal() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "subscription is cancelled")
		}

		if err := txRepo.RemovePausedDate(ctx, sub.ID, day); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "remove paused date")
		}
		if _, err := s.deliveries.MarkStatusByDateWithTx(tx, sub.ID, day,
			enums.DeliveryStatusSkipped, enums.DeliveryStatusPending); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "restore scheduled delivery")
		}
		return nil
	})
}

func (s *service) ListPausedDates(ctx context.Context, actor Actor, id uuid.UUID) ([]models.PausedDate, error) {
	if _, err := s.authorizedSubscription(ctx, s.repo, actor, id); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListPausedDates(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list paused dates")
	}
	return rows, nil
}

func (s *service) authorizedSubscription(ctx context.Context, repo *Repository, actor Actor, id uuid.UUID) (*models.Subscription, error) {
	sub, err := s.loadSubscription(ctx, repo, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccess(sub.UserID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "subscription belongs to another user")
	}
	return sub, nil
}

func (s *service) loadSubscription(ctx context.Context, repo *Repository, id uuid.UUID) (*models.Subscription, error) {
	sub, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "subscription not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load subscription")
	}
	return sub, nil
}
