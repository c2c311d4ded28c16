package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/milkoapp/milko-backend/pkg/db/models"
	"github.com/milkoapp/milko-backend/pkg/enums"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	ddl := []string{
		`CREATE TABLE IF NOT EXISTS paused_dates (
  subscription_id TEXT NOT NULL,
  date DATE NOT NULL,
  created_at DATETIME,
  PRIMARY KEY (subscription_id, date)
);`,
		`CREATE TABLE IF NOT EXISTS delivery_schedules (
  id TEXT PRIMARY KEY,
  subscription_id TEXT NOT NULL,
  delivery_date DATE NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (subscription_id, delivery_date)
);`,
	}
	for _, stmt := range ddl {
		if err := conn.Exec(stmt).Error; err != nil {
			t.Fatalf("create table: %v", err)
		}
	}
	return conn
}

func testSubscription(start, end time.Time) *models.Subscription {
	return &models.Subscription{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		ProductID: uuid.New(),
		Status:    enums.SubscriptionStatusActive,
		StartDate: start,
		EndDate:   end,
	}
}

func countRows(t *testing.T, db *gorm.DB, subscriptionID uuid.UUID) int64 {
	t.Helper()
	var count int64
	if err := db.Model(&models.DeliverySchedule{}).
		Where("subscription_id = ?", subscriptionID).
		Count(&count).Error; err != nil {
		t.Fatalf("count rows: %v", err)
	}
	return count
}

func TestGenerateFullRange(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	gen := NewGenerator()

	start := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	sub := testSubscription(start, start.AddDate(0, 0, 29))

	inserted, err := gen.GenerateForSubscription(ctx, db, sub)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(inserted) != 30 {
		t.Fatalf("expected 30 inserted rows, got %d", len(inserted))
	}
	if got := countRows(t, db, sub.ID); got != 30 {
		t.Fatalf("expected 30 stored rows, got %d", got)
	}
	for _, row := range inserted {
		if row.Status != enums.DeliveryStatusPending {
			t.Fatalf("expected pending status, got %s", row.Status)
		}
	}
}

func TestGenerateSkipsPausedDates(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	gen := NewGenerator()

	start := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	sub := testSubscription(start, start.AddDate(0, 0, 29))

	for _, offset := range []int{3, 10, 17} {
		row := models.PausedDate{SubscriptionID: sub.ID, Date: start.AddDate(0, 0, offset)}
		if err := db.Create(&row).Error; err != nil {
			t.Fatalf("seed paused date: %v", err)
		}
	}

	inserted, err := gen.GenerateForSubscription(ctx, db, sub)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(inserted) != 27 {
		t.Fatalf("expected 27 inserted rows, got %d", len(inserted))
	}

	var onPaused int64
	if err := db.Model(&models.DeliverySchedule{}).
		Where("subscription_id = ? AND delivery_date = ?", sub.ID, start.AddDate(0, 0, 10)).
		Count(&onPaused).Error; err != nil {
		t.Fatalf("count paused day: %v", err)
	}
	if onPaused != 0 {
		t.Fatal("expected no delivery on a paused date")
	}
}

func TestGenerateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	gen := NewGenerator()

	start := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	sub := testSubscription(start, start.AddDate(0, 0, 29))

	if _, err := gen.GenerateForSubscription(ctx, db, sub); err != nil {
		t.Fatalf("first generate: %v", err)
	}

	again, err := gen.GenerateForSubscription(ctx, db, sub)
	if err != nil {
		t.Fatalf("second generate: %v", err)
	}
	if len(again) != 0 {
		t.Fatalf("expected rerun to insert nothing, got %d rows", len(again))
	}
	if got := countRows(t, db, sub.ID); got != 30 {
		t.Fatalf("expected 30 stored rows after rerun, got %d", got)
	}
}

func TestGenerateFillsOnlyMissingDays(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	gen := NewGenerator()

	start := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	sub := testSubscription(start, start.AddDate(0, 0, 9))

	existing := models.DeliverySchedule{
		ID:             uuid.New(),
		SubscriptionID: sub.ID,
		DeliveryDate:   start.AddDate(0, 0, 4),
		Status:         enums.DeliveryStatusDelivered,
	}
	if err := db.Create(&existing).Error; err != nil {
		t.Fatalf("seed existing row: %v", err)
	}

	inserted, err := gen.GenerateForSubscription(ctx, db, sub)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(inserted) != 9 {
		t.Fatalf("expected 9 inserted rows, got %d", len(inserted))
	}

	var kept models.DeliverySchedule
	if err := db.First(&kept, "id = ?", existing.ID).Error; err != nil {
		t.Fatalf("reload existing row: %v", err)
	}
	if kept.Status != enums.DeliveryStatusDelivered {
		t.Fatalf("existing row must not be overwritten, got status %s", kept.Status)
	}
}

func TestGenerateSingleDayRange(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	gen := NewGenerator()

	day := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	sub := testSubscription(day, day)

	inserted, err := gen.GenerateForSubscription(ctx, db, sub)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(inserted) != 1 {
		t.Fatalf("expected 1 inserted row, got %d", len(inserted))
	}
}

func TestGenerateRejectsInvertedRange(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	gen := NewGenerator()

	day := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	sub := testSubscription(day, day.AddDate(0, 0, -1))

	if _, err := gen.GenerateForSubscription(ctx, db, sub); err == nil {
		t.Fatal("expected error for inverted range")
	}
}

func TestDateOnlyNormalizesToUTCMidnight(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	stamp := time.Date(2026, 9, 1, 2, 30, 0, 0, ist) // 2026-08-31T21:00Z

	got := DateOnly(stamp)
	want := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}
