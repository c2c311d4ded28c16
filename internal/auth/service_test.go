package auth

import (
	"context"
	"testing"
	"time"

	"gorm.io/gorm"

	pkgauth "github.com/milkoapp/milko-backend/pkg/auth"
	"github.com/milkoapp/milko-backend/pkg/config"
	"github.com/milkoapp/milko-backend/pkg/db/models"
	"github.com/milkoapp/milko-backend/pkg/enums"
	pkgerrors "github.com/milkoapp/milko-backend/pkg/errors"
)

type stubUserStore struct {
	byEmail map[string]*models.User
	created []*models.User
}

func newStubUserStore() *stubUserStore {
	return &stubUserStore{byEmail: map[string]*models.User{}}
}

func (s *stubUserStore) Create(ctx context.Context, user *models.User) (*models.User, error) {
	s.created = append(s.created, user)
	s.byEmail[user.Email] = user
	return user, nil
}

func (s *stubUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if user, ok := s.byEmail[email]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type stubHasher struct{}

func (stubHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }

func (stubHasher) Verify(password, encoded string) (bool, error) {
	return encoded == "hashed:"+password, nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{Secret: "secret", Issuer: "milko", ExpirationMinutes: 30}
}

func newTestService(t *testing.T, store *stubUserStore) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Users:  store,
		Hasher: stubHasher{},
		JWT:    testJWTConfig(),
		Now:    func() time.Time { return time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC) },
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestRegisterIssuesToken(t *testing.T) {
	ctx := context.Background()
	store := newStubUserStore()
	svc := newTestService(t, store)

	result, err := svc.Register(ctx, RegisterInput{
		Name:     "Asha",
		Email:    " Asha@Example.com ",
		Password: "supersecret",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if result.User.Email != "asha@example.com" {
		t.Fatalf("expected normalized email, got %s", result.User.Email)
	}
	if result.User.Role != enums.UserRoleCustomer {
		t.Fatalf("expected customer role, got %s", result.User.Role)
	}

	claims, err := pkgauth.ParseAccessToken(testJWTConfig(), result.Token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.UserID != result.User.ID {
		t.Fatalf("token user mismatch")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	store := newStubUserStore()
	svc := newTestService(t, store)

	input := RegisterInput{Name: "Asha", Email: "asha@example.com", Password: "supersecret"}
	if _, err := svc.Register(ctx, input); err != nil {
		t.Fatalf("first register: %v", err)
	}

	_, err := svc.Register(ctx, input)
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, newStubUserStore())

	cases := []struct {
		name  string
		input RegisterInput
	}{
		{"blank name", RegisterInput{Email: "a@b.com", Password: "supersecret"}},
		{"blank email", RegisterInput{Name: "A", Password: "supersecret"}},
		{"short password", RegisterInput{Name: "A", Email: "a@b.com", Password: "short"}},
	}
	for _, tc := range cases {
		_, err := svc.Register(ctx, tc.input)
		if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
			t.Errorf("%s: expected validation error, got %v", tc.name, err)
		}
	}
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	store := newStubUserStore()
	svc := newTestService(t, store)

	if _, err := svc.Register(ctx, RegisterInput{Name: "Asha", Email: "asha@example.com", Password: "supersecret"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	result, err := svc.Login(ctx, LoginInput{Email: "asha@example.com", Password: "supersecret"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if result.Token == "" {
		t.Fatal("expected a token")
	}

	_, err = svc.Login(ctx, LoginInput{Email: "asha@example.com", Password: "wrong"})
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized for bad password, got %v", err)
	}

	_, err = svc.Login(ctx, LoginInput{Email: "ghost@example.com", Password: "supersecret"})
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized for unknown email, got %v", err)
	}
}
