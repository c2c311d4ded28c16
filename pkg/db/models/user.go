package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/milkoapp/milko-backend/pkg/enums"
)

// User is a registered customer or back-office admin.
type User struct {
	ID           uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name         string         `gorm:"column:name;not null"`
	Email        string         `gorm:"column:email;not null;unique"`
	Phone        *string        `gorm:"column:phone"`
	PasswordHash string         `gorm:"column:password_hash;not null"`
	Role         enums.UserRole `gorm:"column:role;not null;default:'customer'"`
	Address      *string        `gorm:"column:address"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
