// Package auth manages the login session: register/login/logout against the
// backend and the identity derived from the stored access token.
package auth

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hatcher/taskpilot/pkg/errorx"
	"github.com/hatcher/taskpilot/pkg/httpx"
	"github.com/hatcher/taskpilot/pkg/logs"
	"github.com/hatcher/taskpilot/token"
)

type Service struct {
	api    *httpx.AuthClient
	tokens token.Store
	now    func() time.Time
}

func NewService(api *httpx.AuthClient, tokens token.Store) *Service {
	return &Service{
		api:    api,
		tokens: tokens,
		now:    time.Now,
	}
}

// Register creates an account and stores the returned token pair. A rejected
// payload (duplicate email, weak password) surfaces as a validation error
// carrying the backend's message.
func (s *Service) Register(ctx context.Context, email, password string) (User, error) {
	// Registration must not ride the refresh protocol: a 401 here is a
	// backend verdict, not a stale token.
	options := httpx.NewRequestOption(
		httpx.WithMethodPost(),
		httpx.WithPath("/auth/register"),
		httpx.WithBody(registerRequest{Email: email, Password: password}),
	)
	resp, err := s.api.Client.Do(ctx, options)
	if err != nil {
		return User{}, errorx.NewNetwork(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return User{}, httpx.ResponseError(resp)
	}

	var rr registerResponse
	if err := json.NewDecoder(resp.Body).Decode(&rr); err != nil {
		return User{}, errorx.New(errorx.KindServer, resp.StatusCode, "malformed register response")
	}
	if rr.AccessToken != "" {
		if err := s.tokens.Set(rr.AccessToken, rr.RefreshToken); err != nil {
			return User{}, err
		}
	}
	return User{ID: rr.ID, Email: rr.Email, CreatedAt: rr.CreatedAt, UpdatedAt: rr.UpdatedAt}, nil
}

// Login exchanges credentials for a token pair and stores it. Invalid
// credentials surface as an auth error with the backend's message.
func (s *Service) Login(ctx context.Context, email, password string) (User, error) {
	options := httpx.NewRequestOption(
		httpx.WithMethodPost(),
		httpx.WithPath("/auth/login"),
		httpx.WithBody(loginRequest{Email: email, Password: password}),
	)
	resp, err := s.api.Client.Do(ctx, options)
	if err != nil {
		return User{}, errorx.NewNetwork(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return User{}, httpx.ResponseError(resp)
	}

	var lr loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return User{}, errorx.New(errorx.KindServer, resp.StatusCode, "malformed login response")
	}
	if lr.AccessToken == "" {
		return User{}, errorx.New(errorx.KindAuth, resp.StatusCode, "login response missing access token")
	}
	if err := s.tokens.Set(lr.AccessToken, lr.RefreshToken); err != nil {
		return User{}, err
	}

	// Login only returns tokens; identity comes from the token claims.
	user := User{Email: email}
	if session, ok := s.CurrentSession(); ok {
		user.ID = session.UserID
		if session.Email != "" {
			user.Email = session.Email
		}
	}
	return user, nil
}

// Logout notifies the backend on a best-effort basis and unconditionally
// clears the local tokens: the local session ends even when the network is
// down or the backend rejects the call.
func (s *Service) Logout(ctx context.Context) error {
	if access := s.tokens.Access(); access != "" {
		options := httpx.NewRequestOption(
			httpx.WithMethodPost(),
			httpx.WithPath("/auth/logout"),
			httpx.WithHeader("Authorization", "Bearer "+access),
		)
		if _, err := s.api.Client.Do(ctx, options); err != nil {
			logs.Warnf("logout notification failed, clearing local session anyway: %v", err)
		}
	}
	return s.tokens.Clear()
}

// CurrentSession derives the session from the stored access token. It never
// caches: the token can change underneath it when the transport refreshes.
func (s *Service) CurrentSession() (Session, bool) {
	return deriveSession(s.tokens.Access(), s.now())
}

// IsAuthenticated is the lenient gating check; see lenientAuthCheck.
func (s *Service) IsAuthenticated() bool {
	return lenientAuthCheck(s.tokens.Access(), s.now())
}
