package products

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	pkgerrors "github.com/milkoapp/milko-backend/pkg/errors"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	ddl := `
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  description TEXT,
  price_per_litre NUMERIC NOT NULL,
  image_url TEXT,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`
	if err := conn.Exec(ddl).Error; err != nil {
		t.Fatalf("create products table: %v", err)
	}
	return conn
}

func newTestService(t *testing.T) Service {
	t.Helper()
	svc, err := NewService(NewRepository(openTestDB(t)))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestCreateAndGetProduct(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	created, err := svc.CreateProduct(ctx, CreateProductInput{
		Name:          "Full Cream Milk",
		PricePerLitre: decimal.NewFromInt(60),
		IsActive:      true,
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	got, err := svc.GetProduct(ctx, created.ID)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if got.Name != "Full Cream Milk" {
		t.Fatalf("unexpected name %s", got.Name)
	}
	if !got.PricePerLitre.Equal(decimal.NewFromInt(60)) {
		t.Fatalf("unexpected price %s", got.PricePerLitre)
	}
}

func TestCreateProductValidation(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	if _, err := svc.CreateProduct(ctx, CreateProductInput{Name: "  ", PricePerLitre: decimal.NewFromInt(1)}); err == nil {
		t.Fatal("expected error for blank name")
	}
	_, err := svc.CreateProduct(ctx, CreateProductInput{Name: "Toned Milk", PricePerLitre: decimal.Zero})
	if err == nil {
		t.Fatal("expected error for non-positive price")
	}
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdateProduct(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	created, err := svc.CreateProduct(ctx, CreateProductInput{
		Name:          "Toned Milk",
		PricePerLitre: decimal.NewFromInt(48),
		IsActive:      true,
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	newPrice := decimal.RequireFromString("52.50")
	inactive := false
	updated, err := svc.UpdateProduct(ctx, created.ID, UpdateProductInput{
		PricePerLitre: &newPrice,
		IsActive:      &inactive,
	})
	if err != nil {
		t.Fatalf("update product: %v", err)
	}
	if !updated.PricePerLitre.Equal(newPrice) {
		t.Fatalf("unexpected price %s", updated.PricePerLitre)
	}
	if updated.IsActive {
		t.Fatal("expected product to be deactivated")
	}
}

func TestUpdateMissingProduct(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	_, err := svc.UpdateProduct(ctx, uuid.New(), UpdateProductInput{})
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestListProductsFiltersInactive(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	if _, err := svc.CreateProduct(ctx, CreateProductInput{Name: "Active", PricePerLitre: decimal.NewFromInt(50), IsActive: true}); err != nil {
		t.Fatalf("create active: %v", err)
	}
	if _, err := svc.CreateProduct(ctx, CreateProductInput{Name: "Retired", PricePerLitre: decimal.NewFromInt(44), IsActive: false}); err != nil {
		t.Fatalf("create inactive: %v", err)
	}

	active, err := svc.ListProducts(ctx, false)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(active) != 1 || active[0].Name != "Active" {
		t.Fatalf("unexpected active list %+v", active)
	}

	all, err := svc.ListProducts(ctx, true)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 products, got %d", len(all))
	}
}
