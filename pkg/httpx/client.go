// Package httpx is the HTTP layer in front of the backend REST API. Client is
// a plain request-option client; AuthClient adds the bearer-token and refresh
// protocol on top of it.
package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const DefaultTimeout = 60 * time.Second

type Client struct {
	Client  *http.Client
	BaseUrl string
}

func NewClient(baseUrl string, timeout time.Duration) *Client {
	return &Client{
		Client: &http.Client{
			Timeout: timeout,
		},
		BaseUrl: baseUrl,
	}
}

// NewDefaultClient creates a Client with the default timeout. The default is
// generous because some backend operations call a slow upstream AI service.
func NewDefaultClient(baseUrl string) *Client {
	return NewClient(baseUrl, DefaultTimeout)
}

func (c *Client) buildRequest(ctx context.Context, options *RequestOption) (*http.Request, error) {
	var body io.Reader
	if options.Body != nil {
		if raw, ok := options.Body.([]byte); ok {
			body = bytes.NewBuffer(raw)
		} else {
			jsonData, err := json.Marshal(options.Body)
			if err != nil {
				return nil, fmt.Errorf("failed to marshal request body: %v", err)
			}
			body = bytes.NewBuffer(jsonData)
		}
	}
	reqURL := c.BaseUrl + options.Path
	if len(options.Query) > 0 {
		params := url.Values{}
		for key, value := range options.Query {
			params.Add(key, value)
		}
		reqURL = fmt.Sprintf("%s?%s", reqURL, params.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, options.Method.String(), reqURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %v", err)
	}
	if options.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range options.Headers {
		req.Header.Set(key, value)
	}
	return req, nil
}

// Do sends the request and returns a response whose body has been read into
// memory, so callers can consume it without worrying about the connection.
func (c *Client) Do(ctx context.Context, options *RequestOption) (*http.Response, error) {
	requestTime := time.Now()
	request, err := c.buildRequest(ctx, options)
	if err != nil {
		return nil, err
	}
	if options.PrintLog {
		r := &RequestLog{
			Timestamp: requestTime.Format("2006-01-02 15:04:05.000"),
			Method:    options.Method.String(),
			URL:       request.URL.String(),
			Headers:   options.Headers,
			Body:      options.Body,
			RequestID: options.RequestID,
		}
		LogRequestJSON(r)
	}
	response, err := c.Client.Do(request)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	bodyBytes, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, err
	}
	response.Body = io.NopCloser(bytes.NewReader(bodyBytes))
	response.ContentLength = int64(len(bodyBytes))

	if options.PrintLog {
		responseTime := time.Now()
		r := &ResponseLog{
			Timestamp:  responseTime.Format("2006-01-02 15:04:05.000"),
			StatusCode: response.StatusCode,
			RequestID:  options.RequestID,
			DurationMs: responseTime.Sub(requestTime).Milliseconds(),
			Body:       string(bodyBytes),
		}
		LogResponseJSON(r)
	}
	return response, nil
}
