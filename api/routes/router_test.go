package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	authsvc "github.com/milkoapp/milko-backend/internal/auth"
	productsvc "github.com/milkoapp/milko-backend/internal/products"
	subscriptionsvc "github.com/milkoapp/milko-backend/internal/subscriptions"
	razorpaywebhook "github.com/milkoapp/milko-backend/internal/webhooks/razorpay"
	pkgauth "github.com/milkoapp/milko-backend/pkg/auth"
	"github.com/milkoapp/milko-backend/pkg/config"
	"github.com/milkoapp/milko-backend/pkg/db/models"
	"github.com/milkoapp/milko-backend/pkg/enums"
	pkgerrors "github.com/milkoapp/milko-backend/pkg/errors"
	"github.com/milkoapp/milko-backend/pkg/logger"
	"github.com/milkoapp/milko-backend/pkg/pagination"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error { return nil }

type stubVerifier struct{}

func (stubVerifier) VerifyWebhookSignature(body []byte, signature string) bool { return true }

type stubAuthService struct{}

func (stubAuthService) Register(ctx context.Context, input authsvc.RegisterInput) (*authsvc.AuthResult, error) {
	return nil, pkgerrors.New(pkgerrors.CodeConflict, "account already exists")
}

func (stubAuthService) Login(ctx context.Context, input authsvc.LoginInput) (*authsvc.AuthResult, error) {
	return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
}

type stubProductService struct{}

func (stubProductService) CreateProduct(ctx context.Context, input productsvc.CreateProductInput) (*models.Product, error) {
	return &models.Product{ID: uuid.New(), Name: input.Name, PricePerLitre: input.PricePerLitre, IsActive: input.IsActive}, nil
}

func (stubProductService) UpdateProduct(ctx context.Context, productID uuid.UUID, input productsvc.UpdateProductInput) (*models.Product, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
}

func (stubProductService) GetProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
}

func (stubProductService) ListProducts(ctx context.Context, includeInactive bool) ([]models.Product, error) {
	return []models.Product{{
		ID:            uuid.New(),
		Name:          "Full Cream Milk",
		PricePerLitre: decimal.RequireFromString("60"),
		IsActive:      true,
	}}, nil
}

type stubSubscriptionService struct{}

func (stubSubscriptionService) Create(ctx context.Context, userID uuid.UUID, input subscriptionsvc.CreateSubscriptionInput) (*subscriptionsvc.CreateResult, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
}

func (stubSubscriptionService) Get(ctx context.Context, actor subscriptionsvc.Actor, id uuid.UUID) (*models.Subscription, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "subscription not found")
}

func (stubSubscriptionService) ListByUser(ctx context.Context, actor subscriptionsvc.Actor, userID uuid.UUID) ([]models.Subscription, error) {
	return nil, nil
}

func (stubSubscriptionService) ListAll(ctx context.Context, params pagination.Params) (*subscriptionsvc.Page, error) {
	return &subscriptionsvc.Page{}, nil
}

func (stubSubscriptionService) Activate(ctx context.Context, id uuid.UUID) (*subscriptionsvc.ActivationResult, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "subscription not found")
}

func (stubSubscriptionService) ActivateByOrderRef(ctx context.Context, orderRef string) (*subscriptionsvc.ActivationResult, error) {
	return &subscriptionsvc.ActivationResult{Subscription: &models.Subscription{ID: uuid.New()}}, nil
}

func (stubSubscriptionService) Pause(ctx context.Context, actor subscriptionsvc.Actor, id uuid.UUID) error {
	return pkgerrors.New(pkgerrors.CodeNotFound, "subscription not found")
}

func (stubSubscriptionService) Resume(ctx context.Context, actor subscriptionsvc.Actor, id uuid.UUID) error {
	return pkgerrors.New(pkgerrors.CodeNotFound, "subscription not found")
}

func (stubSubscriptionService) Cancel(ctx context.Context, actor subscriptionsvc.Actor, id uuid.UUID) error {
	return pkgerrors.New(pkgerrors.CodeNotFound, "subscription not found")
}

func (stubSubscriptionService) ForceCancelByOrderRef(ctx context.Context, orderRef string) error {
	return nil
}

func (stubSubscriptionService) AddPausedDate(ctx context.Context, actor subscriptionsvc.Actor, id uuid.UUID, date time.Time) error {
	return pkgerrors.New(pkgerrors.CodeNotFound, "subscription not found")
}

func (stubSubscriptionService) RemovePausedDate(ctx context.Context, actor subscriptionsvc.Actor, id uuid.UUID, date time.Time) error {
	return pkgerrors.New(pkgerrors.CodeNotFound, "subscription not found")
}

func (stubSubscriptionService) ListPausedDates(ctx context.Context, actor subscriptionsvc.Actor, id uuid.UUID) ([]models.PausedDate, error) {
	return nil, nil
}

type stubIdemStore struct{}

func (stubIdemStore) Get(ctx context.Context, key string) (string, error) { return "", nil }

func (stubIdemStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	return true, nil
}

func (stubIdemStore) IdempotencyKey(scope, id string) string { return "milko:idempotency:" + scope + ":" + id }

func (stubIdemStore) Del(ctx context.Context, keys ...string) error { return nil }

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "8080"},
		JWT: config.JWTConfig{Secret: "router-test-secret", Issuer: "milko", ExpirationMinutes: 60},
	}
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled})

	webhookSvc, err := razorpaywebhook.NewService(razorpaywebhook.ServiceParams{
		Subscriptions: stubSubscriptionService{},
		Idempotency:   stubIdemStore{},
		Logger:        logg,
	})
	if err != nil {
		t.Fatalf("webhook service: %v", err)
	}

	return NewRouter(Deps{
		Config:        testConfig(),
		Logger:        logg,
		DB:            stubPinger{},
		Redis:         stubPinger{},
		Gateway:       stubVerifier{},
		Auth:          stubAuthService{},
		Products:      stubProductService{},
		Subscriptions: stubSubscriptionService{},
		Webhooks:      webhookSvc,
	})
}

func mintToken(t *testing.T, role enums.UserRole) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(testConfig().JWT, time.Now(), pkgauth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   role,
		JTI:    uuid.NewString(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthLive(t *testing.T) {
	router := newTestRouter(t)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestPublicProductsNeedNoAuth(t *testing.T) {
	router := newTestRouter(t)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/products", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "Full Cream Milk") {
		t.Fatalf("expected catalog in body, got %s", rec.Body.String())
	}
}

func TestSubscriptionRoutesRequireAuth(t *testing.T) {
	router := newTestRouter(t)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/subscriptions", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestSubscriptionRoutesAcceptBearerToken(t *testing.T) {
	router := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/subscriptions", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, enums.UserRoleCustomer))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAdminRoutesRejectCustomers(t *testing.T) {
	router := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/api/admin/v1/subscriptions", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, enums.UserRoleCustomer))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestAdminRoutesAcceptAdmins(t *testing.T) {
	router := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/api/admin/v1/subscriptions", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, enums.UserRoleAdmin))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestWebhookRouteIsPublic(t *testing.T) {
	router := newTestRouter(t)
	body := `{"event":"payment.captured","payload":{"payment":{"entity":{"id":"pay_1","order_id":"order_1"}}}}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/razorpay", strings.NewReader(body))
	req.Header.Set("X-Razorpay-Signature", "sig")
	req.Header.Set("X-Razorpay-Event-Id", "evt_1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}
