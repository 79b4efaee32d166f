// Package errorx defines the error taxonomy for backend API failures.
package errorx

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

type Kind string

const (
	KindAuth       Kind = "auth"
	KindValidation Kind = "validation"
	KindNetwork    Kind = "network"
	KindNotFound   Kind = "not_found"
	KindChat       Kind = "chat"
	KindServer     Kind = "server"
)

// APIError is a failure reported by the backend, or the transport in front of
// it. Detail carries the backend's own message verbatim when one was present.
type APIError struct {
	Kind       Kind
	StatusCode int
	Detail     string
	// Fields holds per-field validation messages from a 422 response.
	Fields map[string]string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("api error: %s (status %d)", e.Kind, e.StatusCode)
	}
	return fmt.Sprintf("api error: %s (status %d): %s", e.Kind, e.StatusCode, e.Detail)
}

func New(kind Kind, statusCode int, detail string) *APIError {
	return &APIError{Kind: kind, StatusCode: statusCode, Detail: detail}
}

// NewNetwork wraps a transport failure that produced no HTTP response.
func NewNetwork(err error) *APIError {
	detail := ""
	if err != nil {
		detail = err.Error()
	}
	return &APIError{Kind: KindNetwork, Detail: detail}
}

// FromStatus maps a non-2xx response to an APIError.
func FromStatus(statusCode int, detail string) *APIError {
	switch {
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return New(KindAuth, statusCode, detail)
	case statusCode == http.StatusNotFound:
		return New(KindNotFound, statusCode, detail)
	case statusCode == http.StatusBadRequest || statusCode == http.StatusUnprocessableEntity:
		return New(KindValidation, statusCode, detail)
	case statusCode >= 500:
		return New(KindServer, statusCode, detail)
	default:
		return New(KindServer, statusCode, detail)
	}
}

func kindOf(err error) (Kind, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind, true
	}
	return "", false
}

func IsAuth(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindAuth
}

func IsValidation(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindValidation
}

func IsNetwork(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindNetwork
}

func IsNotFound(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindNotFound
}

func IsChat(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindChat
}

// Detail extracts the backend message from err, falling back to a generic one.
func Detail(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return fallback
}
