package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/milkoapp/milko-backend/pkg/enums"
)

// DeliverySchedule is one day's planned delivery for a subscription.
// The (subscription, delivery date) pair is unique at the storage layer so
// repeated schedule generation can never double-book a day.
type DeliverySchedule struct {
	ID             uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SubscriptionID uuid.UUID            `gorm:"column:subscription_id;type:uuid;not null;uniqueIndex:idx_delivery_schedules_subscription_date"`
	DeliveryDate   time.Time            `gorm:"column:delivery_date;type:date;not null;uniqueIndex:idx_delivery_schedules_subscription_date"`
	Status         enums.DeliveryStatus `gorm:"column:status;not null;default:'pending'"`
	CreatedAt      time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
