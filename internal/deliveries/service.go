// Package deliveries serves the back-office delivery run sheet.
package deliveries

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/milkoapp/milko-backend/internal/schedule"
	"github.com/milkoapp/milko-backend/pkg/enums"
	pkgerrors "github.com/milkoapp/milko-backend/pkg/errors"
)

// Service exposes delivery run sheet operations for back-office staff.
type Service interface {
	DaySheet(ctx context.Context, date time.Time) ([]DaySheetRow, error)
	UpdateStatus(ctx context.Context, deliveryID uuid.UUID, status enums.DeliveryStatus) error
}

type service struct {
	repo *Repository
}

// NewService constructs the deliveries service.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("deliveries repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) DaySheet(ctx context.Context, date time.Time) ([]DaySheetRow, error) {
	rows, err := s.repo.ListByDate(ctx, schedule.DateOnly(date))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load day sheet")
	}
	return rows, nil
}

// UpdateStatus moves a delivery out of pending. Settled rows (delivered or
// cancelled) stay settled.
func (s *service) UpdateStatus(ctx context.Context, deliveryID uuid.UUID, status enums.DeliveryStatus) error {
	if !status.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid delivery status %q", status))
	}

	row, err := s.repo.FindByID(ctx, deliveryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "delivery not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load delivery")
	}

	if row.Status == status {
		return nil
	}
	if row.Status == enums.DeliveryStatusDelivered || row.Status == enums.DeliveryStatusCancelled {
		return pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("delivery is already %s", row.Status))
	}

	if err := s.repo.UpdateStatus(ctx, deliveryID, status); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update delivery status")
	}
	return nil
}
