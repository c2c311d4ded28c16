package deliveries

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/milkoapp/milko-backend/pkg/db/models"
	"github.com/milkoapp/milko-backend/pkg/enums"
)

// DaySheetRow is one delivery on the daily run sheet, joined with the
// subscription, customer, and product it serves.
type DaySheetRow struct {
	DeliveryID     uuid.UUID            `gorm:"column:delivery_id"`
	SubscriptionID uuid.UUID            `gorm:"column:subscription_id"`
	DeliveryDate   time.Time            `gorm:"column:delivery_date"`
	Status         enums.DeliveryStatus `gorm:"column:status"`
	DeliveryTime   string               `gorm:"column:delivery_time"`
	LitresPerDay   decimal.Decimal      `gorm:"column:litres_per_day"`
	CustomerName   string               `gorm:"column:customer_name"`
	CustomerPhone  *string              `gorm:"column:customer_phone"`
	Address        *string              `gorm:"column:address"`
	ProductName    string               `gorm:"column:product_name"`
}

const daySheetQuery = `
SELECT ds.id AS delivery_id,
       ds.subscription_id,
       ds.delivery_date,
       ds.status,
       s.delivery_time,
       s.litres_per_day,
       u.name AS customer_name,
       u.phone AS customer_phone,
       u.address,
       p.name AS product_name
FROM delivery_schedules ds
JOIN subscriptions s ON s.id = ds.subscription_id
JOIN users u ON u.id = s.user_id
JOIN products p ON p.id = s.product_id
WHERE ds.delivery_date = ?
ORDER BY s.delivery_time ASC, u.name ASC
`

// Repository provides persistence for scheduled deliveries.
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

// FindByID loads one delivery row.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.DeliverySchedule, error) {
	var row models.DeliverySchedule
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// ListByDate returns the joined run sheet for one calendar date.
func (r *Repository) ListByDate(ctx context.Context, date time.Time) ([]DaySheetRow, error) {
	var rows []DaySheetRow
	if err := r.db.WithContext(ctx).Raw(daySheetQuery, date).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListBySubscription returns a subscription's deliveries in date order.
func (r *Repository) ListBySubscription(ctx context.Context, subscriptionID uuid.UUID) ([]models.DeliverySchedule, error) {
	var rows []models.DeliverySchedule
	err := r.db.WithContext(ctx).
		Where("subscription_id = ?", subscriptionID).
		Order("delivery_date ASC").
		Find(&rows).
		Error
	return rows, err
}

// UpdateStatus sets the status of one delivery row.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.DeliveryStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.DeliverySchedule{}).
		Where("id = ?", id).
		Update("status", status).
		Error
}

// MarkStatusByDateWithTx flips a subscription's delivery on one date from
// one status to another, returning how many rows changed.
func (r *Repository) MarkStatusByDateWithTx(tx *gorm.DB, subscriptionID uuid.UUID, date time.Time, from, to enums.DeliveryStatus) (int64, error) {
	res := tx.
		Model(&models.DeliverySchedule{}).
		Where("subscription_id = ? AND delivery_date = ? AND status = ?", subscriptionID, date, from).
		Update("status", to)
	return res.RowsAffected, res.Error
}

// CancelPendingFromWithTx cancels every pending delivery dated on or after
// the given date.
func (r *Repository) CancelPendingFromWithTx(tx *gorm.DB, subscriptionID uuid.UUID, from time.Time) error {
	return tx.
		Model(&models.DeliverySchedule{}).
		Where("subscription_id = ? AND delivery_date >= ? AND status = ?",
			subscriptionID, from, enums.DeliveryStatusPending).
		Update("status", enums.DeliveryStatusCancelled).
		Error
}
