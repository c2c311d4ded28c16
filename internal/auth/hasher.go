package auth

import (
	"github.com/milkoapp/milko-backend/pkg/config"
	"github.com/milkoapp/milko-backend/pkg/security"
)

// Argon2Hasher adapts the argon2id helpers to the hasher interface.
type Argon2Hasher struct {
	cfg config.PasswordConfig
}

// NewArgon2Hasher builds a hasher with the configured parameters.
func NewArgon2Hasher(cfg config.PasswordConfig) *Argon2Hasher {
	return &Argon2Hasher{cfg: cfg}
}

func (h *Argon2Hasher) Hash(password string) (string, error) {
	return security.HashPassword(password, h.cfg)
}

func (h *Argon2Hasher) Verify(password, encoded string) (bool, error) {
	return security.VerifyPassword(password, encoded)
}
