package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/sync/singleflight"

	"github.com/hatcher/taskpilot/pkg/errorx"
	"github.com/hatcher/taskpilot/pkg/logs"
	"github.com/hatcher/taskpilot/token"
)

const refreshPath = "/auth/refresh"

// AuthClient routes every backend call through the bearer-token protocol:
// attach the stored access token, intercept a 401, refresh the token once,
// and replay the original request with the new token.
//
// The refresh is single-flight: any number of requests failing with 401 while
// the access token is stale produce exactly one call to the refresh endpoint,
// and every blocked request observes the same resulting token or the same
// failure. A request is retried at most once; a second 401 is an auth error.
type AuthClient struct {
	*Client
	tokens token.Store
	group  singleflight.Group

	// onSessionTerminated fires when a refresh fails irrecoverably, after
	// the token store has been cleared. Optional.
	onSessionTerminated func()
}

func NewAuthClient(base *Client, tokens token.Store, onSessionTerminated func()) *AuthClient {
	return &AuthClient{
		Client:              base,
		tokens:              tokens,
		onSessionTerminated: onSessionTerminated,
	}
}

// Do sends the request with the current access token attached. Transport
// errors (no response) are never treated as 401 and are not retried here.
func (c *AuthClient) Do(ctx context.Context, options *RequestOption) (*http.Response, error) {
	stale := c.tokens.Access()
	if stale != "" {
		options.Headers["Authorization"] = "Bearer " + stale
	}
	resp, err := c.Client.Do(ctx, options)
	if err != nil {
		return nil, errorx.NewNetwork(err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}

	access, err := c.refreshAccessToken(ctx, stale)
	if err != nil {
		return nil, err
	}

	options.Headers["Authorization"] = "Bearer " + access
	resp, err = c.Client.Do(ctx, options)
	if err != nil {
		return nil, errorx.NewNetwork(err)
	}
	if resp.StatusCode == http.StatusUnauthorized {
		// Already retried once with a fresh token; give up rather than loop.
		return nil, errorx.New(errorx.KindAuth, http.StatusUnauthorized, "unauthorized after token refresh")
	}
	return resp, nil
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type refreshResponse struct {
	AccessToken string `json:"access_token"`
	// RefreshToken is set when the backend rotates refresh tokens.
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type"`
}

// refreshAccessToken exchanges the refresh token for a new access token.
// stale is the access token the failing request carried; if the store already
// holds a different token, another flight refreshed it in the meantime and no
// second backend call is made.
func (c *AuthClient) refreshAccessToken(ctx context.Context, stale string) (string, error) {
	v, err, _ := c.group.Do("refresh", func() (interface{}, error) {
		if current := c.tokens.Access(); current != "" && current != stale {
			return current, nil
		}
		refresh := c.tokens.Refresh()
		if refresh == "" {
			c.terminateSession()
			return nil, errorx.New(errorx.KindAuth, http.StatusUnauthorized, "no refresh token stored")
		}

		// The refresh call is shared by every request blocked on it, so it
		// must not die with whichever caller happened to start it.
		refreshCtx := context.WithoutCancel(ctx)
		options := NewRequestOption(
			WithMethodPost(),
			WithPath(refreshPath),
			WithBody(refreshRequest{RefreshToken: refresh}),
		)
		resp, err := c.Client.Do(refreshCtx, options)
		if err != nil {
			c.terminateSession()
			return nil, errorx.New(errorx.KindAuth, 0, fmt.Sprintf("token refresh failed: %v", err))
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			c.terminateSession()
			return nil, errorx.New(errorx.KindAuth, resp.StatusCode, "refresh token rejected")
		}

		var rr refreshResponse
		if err := json.NewDecoder(resp.Body).Decode(&rr); err != nil || rr.AccessToken == "" {
			c.terminateSession()
			return nil, errorx.New(errorx.KindAuth, resp.StatusCode, "malformed refresh response")
		}
		if rr.RefreshToken != "" {
			refresh = rr.RefreshToken
		}
		if err := c.tokens.Set(rr.AccessToken, refresh); err != nil {
			logs.Errorf("failed to persist refreshed tokens: %v", err)
		}
		return rr.AccessToken, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (c *AuthClient) terminateSession() {
	if err := c.tokens.Clear(); err != nil {
		logs.Errorf("failed to clear token store: %v", err)
	}
	if c.onSessionTerminated != nil {
		c.onSessionTerminated()
	}
}

// DoJSON sends the request, maps non-2xx statuses onto the error taxonomy,
// and decodes the response body into out when out is non-nil.
func (c *AuthClient) DoJSON(ctx context.Context, out interface{}, opts ...Option) error {
	options := NewRequestOption(opts...)
	resp, err := c.Do(ctx, options)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return ResponseError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errorx.New(errorx.KindServer, resp.StatusCode, fmt.Sprintf("failed to decode response: %v", err))
	}
	return nil
}
