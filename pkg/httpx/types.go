package httpx

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"

	"github.com/hatcher/taskpilot/pkg/logs"
)

type HttpMethod string

const (
	GET    HttpMethod = "GET"
	POST   HttpMethod = "POST"
	PUT    HttpMethod = "PUT"
	DELETE HttpMethod = "DELETE"
	PATCH  HttpMethod = "PATCH"
)

func (m HttpMethod) String() string {
	return string(m)
}

type RequestOption struct {
	Method    HttpMethod
	Path      string
	Headers   map[string]string
	Body      interface{}
	Query     map[string]string
	PrintLog  bool
	RequestID string
}

type Option func(option *RequestOption)

func WithMethod(method HttpMethod) Option {
	return func(option *RequestOption) {
		option.Method = method
	}
}

func WithMethodGet() Option {
	return WithMethod(GET)
}

func WithMethodPost() Option {
	return WithMethod(POST)
}

func WithMethodPut() Option {
	return WithMethod(PUT)
}

func WithMethodDelete() Option {
	return WithMethod(DELETE)
}

func WithMethodPatch() Option {
	return WithMethod(PATCH)
}

func WithPath(path string) Option {
	return func(option *RequestOption) {
		option.Path = path
	}
}

func WithHeader(key, value string) Option {
	return func(option *RequestOption) {
		option.Headers[key] = value
	}
}

func WithBody(body interface{}) Option {
	return func(option *RequestOption) {
		option.Body = body
	}
}

func WithQuery(query map[string]string) Option {
	return func(option *RequestOption) {
		for k, v := range query {
			option.Query[k] = v
		}
	}
}

func WithQueryParam(key, value string) Option {
	return func(option *RequestOption) {
		option.Query[key] = value
	}
}

func WithPrintLog(printLog bool) Option {
	return func(option *RequestOption) {
		option.PrintLog = printLog
	}
}

func NewRequestOption(options ...Option) *RequestOption {
	option := &RequestOption{
		Headers:   make(map[string]string),
		Query:     make(map[string]string),
		RequestID: uuid.New().String(),
	}
	for _, opt := range options {
		opt(option)
	}
	return option
}

type RequestLog struct {
	Timestamp string            `json:"timestamp"`
	Method    string            `json:"method"`
	URL       string            `json:"url"`
	Headers   map[string]string `json:"headers,omitempty"`
	Body      interface{}       `json:"body,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

type ResponseLog struct {
	Timestamp  string `json:"timestamp"`
	StatusCode int    `json:"status_code"`
	Body       string `json:"body,omitempty"`
	RequestID  string `json:"request_id,omitempty"`
	DurationMs int64  `json:"duration_ms,omitempty"`
}

// LogRequestJSON logs a request as a single JSON line with credentials redacted.
func LogRequestJSON(req *RequestLog) {
	req.Headers = redactHeaders(req.Headers)
	if jsonStr, err := json.Marshal(req); err == nil {
		logs.Debugf("HTTP_REQUEST: %s", string(jsonStr))
	}
}

// LogResponseJSON logs a response as a single JSON line.
func LogResponseJSON(resp *ResponseLog) {
	if jsonStr, err := json.Marshal(resp); err == nil {
		logs.Debugf("HTTP_RESPONSE: %s", string(jsonStr))
	}
}

func redactHeaders(headers map[string]string) map[string]string {
	clean := make(map[string]string, len(headers))
	sensitive := []string{"authorization", "cookie", "token", "password", "secret"}

	for k, v := range headers {
		keyLower := strings.ToLower(k)
		redacted := false
		for _, s := range sensitive {
			if strings.Contains(keyLower, s) {
				redacted = true
				break
			}
		}
		if redacted {
			clean[k] = "***REDACTED***"
		} else {
			clean[k] = v
		}
	}

	return clean
}
