package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sahithee-Vadali/Roxiler-Systems-client/pkg/httpclient"
	"github.com/Sahithee-Vadali/Roxiler-Systems-client/pkg/logger"
	"github.com/Sahithee-Vadali/Roxiler-Systems-client/pkg/tracing"
)

// RequestIDHeader carries a per-request id the server can log.
const RequestIDHeader = "X-Request-ID"

// TokenSource supplies the bearer token for authenticated calls. An empty
// token sends no Authorization header.
type TokenSource interface {
	Token() string
}

// Client talks to the store-rating REST API. It holds no state beyond its
// configuration and is safe for concurrent use.
type Client struct {
	baseURL string
	doer    httpclient.Doer
	tokens  TokenSource
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewClient creates an API client for baseURL. tokens may be nil for
// unauthenticated use.
func NewClient(baseURL string, doer httpclient.Doer, tokens TokenSource, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		doer:    doer,
		tokens:  tokens,
		logger:  logger,
		tracer:  tracing.Tracer("storerate/api"),
	}
}

// BaseURL returns the API root the client sends requests to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// do sends one request and decodes a 2xx JSON body into out. route is the
// path template used for metrics and span names; path is the concrete path
// with query.
func (c *Client) do(ctx context.Context, method, route, path string, body, out any) error {
	ctx = httpclient.WithRoute(ctx, route)
	ctx, span := c.tracer.Start(ctx, method+" "+route,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.path", route),
		),
	)
	defer span.End()

	requestID := uuid.NewString()
	ctx = logger.WithCorrelationID(ctx, requestID)
	log := logger.WithContext(ctx, c.logger)

	var reader io.Reader = http.NoBody
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s body: %w", method, route, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create %s %s request: %w", method, route, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(RequestIDHeader, requestID)
	if c.tokens != nil {
		if tok := c.tokens.Token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}
	tracing.InjectHeaders(ctx, req.Header)

	start := time.Now()
	resp, err := c.doer.Do(ctx, req)
	if err != nil {
		reqErr := transportError(method, route, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, string(reqErr.Kind))
		log.Debug("api request failed",
			slog.String("method", method),
			slog.String("route", route),
			slog.String("kind", string(reqErr.Kind)),
			slog.Duration("duration", time.Since(start)),
			slog.String("error", err.Error()),
		)
		return reqErr
	}

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	log.Debug("api request",
		slog.String("method", method),
		slog.String("route", route),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)),
	)

	if !httpclient.IsSuccess(resp.StatusCode) {
		reqErr := responseError(method, route, resp)
		span.SetStatus(codes.Error, reqErr.Message)
		return reqErr
	}
	defer func() { _ = resp.Body.Close() }()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &RequestError{
			Kind:    KindServer,
			Status:  resp.StatusCode,
			Message: "Unexpected response from server",
			Method:  method,
			Path:    route,
			Err:     fmt.Errorf("decode response: %w", err),
		}
	}
	return nil
}
