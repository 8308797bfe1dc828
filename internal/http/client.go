// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package http wraps the stdlib HTTP client for the JSON APIs the forecast and geocoding
// providers talk to.
package http

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"runtime"
	"time"

	"github.com/wneessen/weather-forecast/internal/logger"
)

const (
	// DefaultTimeout bounds a single request when the caller does not pass its own timeout.
	DefaultTimeout = time.Second * 10

	// MaxBodySize caps how much of a response body is decoded. A 5 day forecast is well
	// below 64 KiB.
	MaxBodySize = 4 << 20

	drainSize = 4096
)

var (
	version = "dev"

	// UserAgent is sent with every API request.
	UserAgent = fmt.Sprintf("weather-forecast/%s (%s/%s; +https://github.com/wneessen/weather-forecast/)",
		version, runtime.GOOS, runtime.GOARCH)

	// ErrNonPointerTarget is returned if the JSON target is not a non-nil pointer.
	ErrNonPointerTarget = errors.New("target must be a non-nil pointer")

	// ErrUnexpectedStatus is returned if the server answers with a non-2xx status code. The
	// response body is not decoded in that case.
	ErrUnexpectedStatus = errors.New("unexpected HTTP status code")

	// ErrDecode is returned if the response body is not valid JSON for the given target.
	ErrDecode = errors.New("failed to decode JSON")
)

// Client is a JSON-only GET client.
type Client struct {
	*http.Client
	logger *logger.Logger
}

func New(log *logger.Logger) *Client {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		TLSClientConfig:     &tls.Config{MinVersion: tls.VersionTLS12},
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     90 * time.Second,
	}
	return &Client{
		Client: &http.Client{Timeout: DefaultTimeout, Transport: transport},
		logger: log,
	}
}

// Get is GetWithTimeout with DefaultTimeout.
func (c *Client) Get(ctx context.Context, endpoint string, target any, query url.Values, headers map[string]string) (int, error) {
	return c.GetWithTimeout(ctx, endpoint, target, query, headers, DefaultTimeout)
}

// GetWithTimeout requests endpoint with the given query and decodes the JSON answer into
// target.
//
// The returned status code is 0 if no response was received at all. A non-2xx response returns
// the status code together with ErrUnexpectedStatus, a body that fails to decode returns the
// status code together with ErrDecode.
func (c *Client) GetWithTimeout(ctx context.Context, endpoint string, target any, query url.Values,
	headers map[string]string, timeout time.Duration,
) (int, error) {
	if rv := reflect.ValueOf(target); rv.Kind() != reflect.Pointer || rv.IsNil() {
		return 0, ErrNonPointerTarget
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	request, err := newRequest(ctx, endpoint, query, headers)
	if err != nil {
		return 0, err
	}
	response, err := c.Do(request)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return 0, err
		}
		return 0, fmt.Errorf("failed to perform HTTP request: %w", err)
	}
	if response == nil {
		return 0, errors.New("nil response received")
	}
	defer c.closeBody(response.Body)

	if response.StatusCode < 200 || response.StatusCode > 299 {
		// drain so the connection can be reused
		_, _ = io.CopyN(io.Discard, response.Body, drainSize)
		return response.StatusCode, fmt.Errorf("%w: %d", ErrUnexpectedStatus, response.StatusCode)
	}
	if err = json.NewDecoder(io.LimitReader(response.Body, MaxBodySize)).Decode(target); err != nil {
		return response.StatusCode, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return response.StatusCode, nil
}

func newRequest(ctx context.Context, endpoint string, query url.Values, headers map[string]string) (*http.Request, error) {
	reqURL, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	if len(query) > 0 {
		reqURL.RawQuery = query.Encode()
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	request.Header.Set("User-Agent", UserAgent)
	request.Header.Set("Accept", "application/json")
	for key, value := range headers {
		request.Header.Set(key, value)
	}
	return request, nil
}

func (c *Client) closeBody(body io.Closer) {
	if err := body.Close(); err != nil {
		c.logger.Warn("failed to close HTTP response body", logger.Err(err))
	}
}
