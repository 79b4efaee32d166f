package errorx

import (
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestFromStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status int
		want   Kind
	}{
		{http.StatusUnauthorized, KindAuth},
		{http.StatusForbidden, KindAuth},
		{http.StatusNotFound, KindNotFound},
		{http.StatusBadRequest, KindValidation},
		{http.StatusUnprocessableEntity, KindValidation},
		{http.StatusInternalServerError, KindServer},
		{http.StatusBadGateway, KindServer},
		{http.StatusTeapot, KindServer},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, FromStatus(tt.status, "").Kind, "status %d", tt.status)
	}
}

func TestPredicatesSeeThroughWrapping(t *testing.T) {
	t.Parallel()

	err := errors.WithMessage(New(KindAuth, 401, "invalid credentials"), "login")
	require.True(t, IsAuth(err))
	require.False(t, IsNotFound(err))
	require.Equal(t, "invalid credentials", Detail(err, "fallback"))
}

func TestDetailFallback(t *testing.T) {
	t.Parallel()

	require.Equal(t, "fallback", Detail(errors.New("boom"), "fallback"))
	require.Equal(t, "fallback", Detail(New(KindServer, 500, ""), "fallback"))
}
