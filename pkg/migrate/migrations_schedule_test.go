package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/milkoapp/milko-backend/pkg/migrate"
)

func TestDeliverySchedulesMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_delivery_schedules.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no delivery schedules migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS delivery_schedules",
		"UNIQUE (subscription_id, delivery_date)",
		"FOREIGN KEY (subscription_id) REFERENCES subscriptions(id) ON DELETE CASCADE",
		"CHECK (status IN ('pending', 'delivered', 'skipped', 'cancelled'))",
		"DROP TABLE IF EXISTS delivery_schedules",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestSubscriptionsMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_subscriptions.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no subscriptions migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS subscriptions",
		"CHECK (status IN ('pending', 'active', 'paused', 'cancelled'))",
		"CHECK (litres_per_day > 0)",
		"CHECK (duration_months > 0)",
		"CHECK (end_date >= start_date)",
		"idx_subscriptions_razorpay_order_id",
		"DROP TABLE IF EXISTS subscriptions",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestMigrationDirValidates(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("migrations dir failed validation: %v", err)
	}
}
