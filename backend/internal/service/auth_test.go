package service

import (
	"context"
	"errors"
	"testing"

	internal_errors "github.com/itchan-dev/nanashi/shared/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type MockJwt struct {
	NewAdminTokenFunc func() (string, error)
}

func (m *MockJwt) NewAdminToken() (string, error) {
	if m.NewAdminTokenFunc != nil {
		return m.NewAdminTokenFunc()
	}
	return "token", nil
}

func TestLogin(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	require.NoError(t, err)

	t.Run("success", func(t *testing.T) {
		auth := NewAuth(&MockJwt{}, string(hash))
		token, err := auth.Login(context.Background(), "password")
		require.NoError(t, err)
		assert.Equal(t, "token", token)
	})

	t.Run("wrong password", func(t *testing.T) {
		auth := NewAuth(&MockJwt{}, string(hash))
		_, err := auth.Login(context.Background(), "nope")
		assert.ErrorIs(t, err, internal_errors.ErrUnauthorized)
	})

	t.Run("disabled without hash", func(t *testing.T) {
		auth := NewAuth(&MockJwt{}, "")
		_, err := auth.Login(context.Background(), "")
		assert.ErrorIs(t, err, internal_errors.ErrUnauthorized)
	})

	t.Run("token error", func(t *testing.T) {
		auth := NewAuth(&MockJwt{NewAdminTokenFunc: func() (string, error) { return "", errors.New("sign") }}, string(hash))
		_, err := auth.Login(context.Background(), "password")
		assert.Error(t, err)
	})
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("hunter2")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("hunter2")))

	_, err = HashPassword("")
	assert.Error(t, err)
}
