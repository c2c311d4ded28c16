package subscriptions

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/milkoapp/milko-backend/pkg/db/models"
	"github.com/milkoapp/milko-backend/pkg/enums"
	"github.com/milkoapp/milko-backend/pkg/pagination"
)

// Repository provides persistence for subscriptions and their paused dates.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create inserts a new subscription row.
func (r *Repository) Create(ctx context.Context, sub *models.Subscription) (*models.Subscription, error) {
	if err := r.db.WithContext(ctx).Create(sub).Error; err != nil {
		return nil, err
	}
	return sub, nil
}

// Save persists the full subscription row.
func (r *Repository) Save(ctx context.Context, sub *models.Subscription) error {
	return r.db.WithContext(ctx).Save(sub).Error
}

// FindByID loads a subscription with its product.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Subscription, error) {
	var sub models.Subscription
	if err := r.db.WithContext(ctx).Preload("Product").First(&sub, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

// FindByOrderRef loads a subscription by its gateway order reference.
func (r *Repository) FindByOrderRef(ctx context.Context, orderRef string) (*models.Subscription, error) {
	var sub models.Subscription
	if err := r.db.WithContext(ctx).First(&sub, "razorpay_order_id = ?", orderRef).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

// UpdateStatus sets the subscription status.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.SubscriptionStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Subscription{}).
		Where("id = ?", id).
		Update("status", status).
		Error
}

// UpdateStatusWithTx sets the subscription status inside the caller's
// transaction.
func (r *Repository) UpdateStatusWithTx(tx *gorm.DB, id uuid.UUID, status enums.SubscriptionStatus) error {
	return tx.
		Model(&models.Subscription{}).
		Where("id = ?", id).
		Update("status", status).
		Error
}

// ListByUser lists a user's subscriptions, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Subscription, error) {
	var rows []models.Subscription
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).
		Error
	return rows, err
}

// ListAll pages through every subscription ordered by (created_at, id).
func (r *Repository) ListAll(ctx context.Context, params pagination.Params) ([]models.Subscription, error) {
	query := r.db.WithContext(ctx).
		Preload("Product").
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit))
	if params.Cursor != nil {
		query = query.Where(
			"(created_at, id) < (?, ?)",
			params.Cursor.CreatedAt, params.Cursor.ID,
		)
	}

	var rows []models.Subscription
	err := query.Find(&rows).Error
	return rows, err
}

// AddPausedDate records a paused date; duplicates are ignored.
func (r *Repository) AddPausedDate(ctx context.Context, subscriptionID uuid.UUID, date time.Time) error {
	row := models.PausedDate{SubscriptionID: subscriptionID, Date: date}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&row).
		Error
}

// RemovePausedDate deletes a paused date row.
func (r *Repository) RemovePausedDate(ctx context.Context, subscriptionID uuid.UUID, date time.Time) error {
	return r.db.WithContext(ctx).
		Where("subscription_id = ? AND date = ?", subscriptionID, date).
		Delete(&models.PausedDate{}).
		Error
}

// ListPausedDates returns the paused dates for a subscription in ascending order.
func (r *Repository) ListPausedDates(ctx context.Context, subscriptionID uuid.UUID) ([]models.PausedDate, error) {
	var rows []models.PausedDate
	err := r.db.WithContext(ctx).
		Where("subscription_id = ?", subscriptionID).
		Order("date ASC").
		Find(&rows).
		Error
	return rows, err
}

// ListExpired returns active or paused subscriptions whose end date is
// strictly before the given date.
func (r *Repository) ListExpired(ctx context.Context, before time.Time) ([]models.Subscription, error) {
	var rows []models.Subscription
	err := r.db.WithContext(ctx).
		Where("status IN ?", []enums.SubscriptionStatus{
			enums.SubscriptionStatusActive,
			enums.SubscriptionStatusPaused,
		}).
		Where("end_date < ?", before).
		Find(&rows).
		Error
	return rows, err
}
