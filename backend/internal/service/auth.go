package service

import (
	"context"

	internal_errors "github.com/itchan-dev/nanashi/shared/errors"
	"github.com/itchan-dev/nanashi/shared/logger"
	"golang.org/x/crypto/bcrypt"
)

type Jwt interface {
	NewAdminToken() (string, error)
}

// Auth issues admin session tokens. There is one admin password, stored as
// a bcrypt hash in the private config.
type Auth struct {
	jwt          Jwt
	passwordHash []byte
}

func NewAuth(jwt Jwt, passwordHash string) *Auth {
	return &Auth{jwt: jwt, passwordHash: []byte(passwordHash)}
}

func (a *Auth) Login(ctx context.Context, password string) (string, error) {
	if len(a.passwordHash) == 0 {
		return "", internal_errors.Unauthorized("admin login is disabled")
	}
	if err := bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password)); err != nil {
		logger.FromContext(ctx).Warn("admin login failed")
		return "", internal_errors.Unauthorized("invalid credentials")
	}
	return a.jwt.NewAdminToken()
}

// HashPassword returns the bcrypt hash to put into admin_password_hash.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", internal_errors.Validation("password is required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
