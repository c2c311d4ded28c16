// Package auth implements account registration and login.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgauth "github.com/milkoapp/milko-backend/pkg/auth"
	"github.com/milkoapp/milko-backend/pkg/config"
	"github.com/milkoapp/milko-backend/pkg/db"
	"github.com/milkoapp/milko-backend/pkg/db/models"
	"github.com/milkoapp/milko-backend/pkg/enums"
	pkgerrors "github.com/milkoapp/milko-backend/pkg/errors"
)

// Service exposes account registration and login.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, input LoginInput) (*AuthResult, error)
}

// RegisterInput is the validated payload for account creation.
type RegisterInput struct {
	Name     string
	Email    string
	Phone    *string
	Password string
	Address  *string
}

// LoginInput carries login credentials.
type LoginInput struct {
	Email    string
	Password string
}

// AuthResult bundles the persisted user with a freshly minted token.
type AuthResult struct {
	User  *models.User
	Token string
}

type userStore interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

type passwordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encoded string) (bool, error)
}

// ServiceParams collects the dependencies for NewService.
type ServiceParams struct {
	Users  userStore
	Hasher passwordHasher
	JWT    config.JWTConfig
	Now    func() time.Time
}

type service struct {
	users  userStore
	hasher passwordHasher
	jwt    config.JWTConfig
	now    func() time.Time
}

// NewService constructs the auth service.
func NewService(params ServiceParams) (Service, error) {
	if params.Users == nil {
		return nil, fmt.Errorf("user store required")
	}
	if params.Hasher == nil {
		return nil, fmt.Errorf("password hasher required")
	}
	if params.JWT.Secret == "" {
		return nil, fmt.Errorf("jwt config required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		users:  params.Users,
		hasher: params.Hasher,
		jwt:    params.JWT,
		now:    now,
	}, nil
}

func (s *service) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	name := strings.TrimSpace(input.Name)
	email := normalizeEmail(input.Email)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if len(input.Password) < 8 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 8 characters")
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check existing email")
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user := &models.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		Phone:        input.Phone,
		PasswordHash: hash,
		Role:         enums.UserRoleCustomer,
		Address:      input.Address,
	}
	created, err := s.users.Create(ctx, user)
	if err != nil {
		// Concurrent registration can slip past the lookup above and hit
		// the unique index on email.
		if db.IsUniqueViolation(err, "idx_users_email") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
	}

	return s.withToken(created)
}

func (s *service) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	email := normalizeEmail(input.Email)
	if email == "" || input.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email and password are required")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}

	ok, err := s.hasher.Verify(input.Password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	return s.withToken(user)
}

func (s *service) withToken(user *models.User) (*AuthResult, error) {
	token, err := pkgauth.MintAccessToken(s.jwt, s.now(), pkgauth.AccessTokenPayload{
		UserID: user.ID,
		Role:   user.Role,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}
	return &AuthResult{User: user, Token: token}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
