package httpclient

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"
)

// Doer executes a single HTTP exchange. Client and CircuitBreakerClient
// both satisfy it.
type Doer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// Config holds HTTP client configuration.
type Config struct {
	// Timeout bounds a whole exchange. Zero leaves it to the transport.
	Timeout         time.Duration
	MaxConnsPerHost int
}

// DefaultConfig returns the client defaults: no overall timeout and a small
// connection pool, which is all an interactive client needs.
func DefaultConfig() Config {
	return Config{
		Timeout:         0,
		MaxConnsPerHost: 10,
	}
}

// Client wraps http.Client with request metrics. It never retries: a failed
// exchange is returned to the caller as-is.
type Client struct {
	httpClient *http.Client
	config     Config
}

// New creates a new HTTP client with connection pooling.
func New(cfg Config) *Client {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          cfg.MaxConnsPerHost,
		MaxIdleConnsPerHost:   cfg.MaxConnsPerHost,
		MaxConnsPerHost:       cfg.MaxConnsPerHost,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return NewWithHTTPClient(&http.Client{
		Transport: transport,
		Timeout:   cfg.Timeout,
	}, cfg)
}

// NewWithHTTPClient wraps an existing *http.Client, e.g. one from httptest.
func NewWithHTTPClient(hc *http.Client, cfg Config) *Client {
	return &Client{httpClient: hc, config: cfg}
}

// Do executes the request once and records metrics for it. The route label
// comes from WithRoute; requests without one are labeled by URL path.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	req = req.WithContext(ctx)

	route := RouteFromContext(ctx)
	if route == "" {
		route = req.URL.Path
	}

	requestsInFlight.Inc()
	defer requestsInFlight.Dec()

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	status := "error"
	if err == nil {
		status = strconv.Itoa(resp.StatusCode)
	}
	observe(req.Method, route, status, time.Since(start))

	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, route, err)
	}
	return resp, nil
}
