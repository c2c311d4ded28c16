package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/milkoapp/milko-backend/pkg/enums"
)

// Subscription is a customer's recurring order for a product over a fixed
// date range. StartDate and EndDate are calendar dates (UTC midnight).
type Subscription struct {
	ID              uuid.UUID                `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID          uuid.UUID                `gorm:"column:user_id;type:uuid;not null;index"`
	ProductID       uuid.UUID                `gorm:"column:product_id;type:uuid;not null"`
	LitresPerDay    decimal.Decimal          `gorm:"column:litres_per_day;type:numeric(6,2);not null"`
	DurationMonths  int                      `gorm:"column:duration_months;not null"`
	DeliveryTime    string                   `gorm:"column:delivery_time;not null"`
	Status          enums.SubscriptionStatus `gorm:"column:status;not null;default:'pending'"`
	StartDate       time.Time                `gorm:"column:start_date;type:date;not null"`
	EndDate         time.Time                `gorm:"column:end_date;type:date;not null"`
	RazorpayOrderID string                   `gorm:"column:razorpay_order_id;not null;unique"`
	Product         *Product                 `gorm:"foreignKey:ProductID"`
	CreatedAt       time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}
