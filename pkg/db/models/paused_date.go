package models

import (
	"time"

	"github.com/google/uuid"
)

// PausedDate marks a calendar date on which a subscription must not deliver.
// The (subscription, date) pair is the primary key.
type PausedDate struct {
	SubscriptionID uuid.UUID `gorm:"column:subscription_id;type:uuid;primaryKey"`
	Date           time.Time `gorm:"column:date;type:date;primaryKey"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
}
