package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestDeriveSession(t *testing.T) {
	t.Parallel()

	now := time.Now()
	valid := signToken(t, jwt.MapClaims{
		"sub":   "user-1",
		"email": "a@b.c",
		"iat":   now.Add(-time.Minute).Unix(),
		"exp":   now.Add(time.Hour).Unix(),
	})
	expired := signToken(t, jwt.MapClaims{
		"sub": "user-1",
		"exp": now.Add(-time.Minute).Unix(),
	})
	noExpiry := signToken(t, jwt.MapClaims{
		"sub": "user-2",
	})

	tests := []struct {
		name       string
		token      string
		wantOK     bool
		wantUserID string
	}{
		{"valid token", valid, true, "user-1"},
		{"expired token", expired, false, ""},
		{"no expiry claim is non-expiring", noExpiry, true, "user-2"},
		{"empty token", "", false, ""},
		{"garbage token", "not-a-jwt", false, ""},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s, ok := deriveSession(tt.token, now)
			require.Equal(t, tt.wantOK, ok)
			require.Equal(t, tt.wantUserID, s.UserID)
		})
	}
}

func TestDeriveSessionIsPure(t *testing.T) {
	t.Parallel()

	now := time.Now()
	tok := signToken(t, jwt.MapClaims{
		"sub": "user-1",
		"exp": now.Add(time.Hour).Unix(),
	})
	a, okA := deriveSession(tok, now)
	b, okB := deriveSession(tok, now)
	require.True(t, okA)
	require.True(t, okB)
	require.Equal(t, a, b)
}

func TestLenientAuthCheck(t *testing.T) {
	t.Parallel()

	now := time.Now()
	tests := []struct {
		name  string
		token string
		want  bool
	}{
		{"empty", "", false},
		{"undecodable but present", "garbage", true},
		{"no expiry", signToken(t, jwt.MapClaims{"sub": "u"}), true},
		{"future expiry", signToken(t, jwt.MapClaims{"exp": now.Add(time.Hour).Unix()}), true},
		{"past expiry", signToken(t, jwt.MapClaims{"exp": now.Add(-time.Hour).Unix()}), false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, lenientAuthCheck(tt.token, now))
		})
	}
}
