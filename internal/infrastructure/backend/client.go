// Package backend is the REST client for the catalog/commerce backend
// the storefront fronts. Calls carry the caller's bearer token, mutations
// are retried once on transport or server failures, and every failure is
// reported as *Error.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/autoparts/storefront/internal/infrastructure/config"
	"github.com/autoparts/storefront/internal/infrastructure/logger"
	"github.com/autoparts/storefront/internal/infrastructure/telemetry"
	"github.com/cenkalti/backoff/v5"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.uber.org/zap"
)

// maxResponseSize bounds how much of a response body is read
const maxResponseSize = 10 << 20

func init() {
	// the backend expects prices as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true
}

type tokenKey struct{}

// WithToken attaches the session token sent as the bearer credential
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// TokenFromContext returns the bearer token in ctx, if any
func TokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}

// Client talks to <backend.url><backend.api_prefix>
type Client struct {
	baseURL        string
	httpClient     *http.Client
	retries        int
	retryBackoff   time.Duration
	breaker        *gobreaker.CircuitBreaker
	metrics        *telemetry.Metrics
	logger         *zap.Logger
	onUnauthorized func(ctx context.Context)
}

// Option configures a Client
type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithMetrics(m *telemetry.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithUnauthorizedHandler registers fn to run whenever the backend answers 401
func WithUnauthorizedHandler(fn func(ctx context.Context)) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

func NewClient(cfg config.BackendConfig, opts ...Option) *Client {
	c := &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL(), "/"),
		httpClient:   &http.Client{Timeout: cfg.Timeout},
		retries:      cfg.MutationRetries,
		retryBackoff: cfg.RetryBackoff,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.Named("backend")
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "backend",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     15 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// only outages count against the breaker; 4xx answers are healthy
		IsSuccessful: func(err error) bool {
			be, ok := AsError(err)
			return err == nil || (ok && !be.Retryable())
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.Warn("Backend circuit breaker state changed",
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
	return c
}

// BaseURL returns the API root, e.g. https://api.example.com/api/v1
func (c *Client) BaseURL() string {
	return c.baseURL
}

type request struct {
	method      string
	resource    string // metric/span label, e.g. "spare-part"
	path        string
	query       url.Values
	body        []byte
	contentType string
}

func (c *Client) newJSONRequest(method, resource, path string, payload any) (request, error) {
	r := request{method: method, resource: resource, path: path}
	if payload != nil {
		body, err := json.Marshal(payload)
		if err != nil {
			return r, fmt.Errorf("failed to encode %s request: %w", resource, err)
		}
		r.body = body
		r.contentType = "application/json"
	}
	return r, nil
}

func (c *Client) get(ctx context.Context, resource, path string, query url.Values, out any) error {
	return c.do(ctx, request{method: http.MethodGet, resource: resource, path: path, query: query}, out)
}

func (c *Client) send(ctx context.Context, method, resource, path string, payload, out any) error {
	r, err := c.newJSONRequest(method, resource, path, payload)
	if err != nil {
		return err
	}
	return c.do(ctx, r, out)
}

// do runs r, retrying mutations on retryable failures
func (c *Client) do(ctx context.Context, r request, out any) error {
	attempts := uint(1)
	if r.method != http.MethodGet && c.retries > 0 {
		attempts += uint(c.retries)
	}

	tries := 0
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		tries++
		if tries > 1 {
			c.metrics.ObserveBackendRetry(r.method, r.resource)
			logger.L(ctx).Info("Retrying backend mutation",
				zap.String("method", r.method),
				zap.String("resource", r.resource),
				zap.Int("attempt", tries))
		}
		err := c.once(ctx, r, out)
		if be, ok := AsError(err); ok && be.Retryable() {
			return struct{}{}, err
		}
		if err != nil {
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, nil
	},
		backoff.WithMaxTries(attempts),
		backoff.WithBackOff(backoff.NewConstantBackOff(c.retryBackoff)),
	)
	if err == nil {
		return nil
	}

	// only a rejected session is torn down, not a failed anonymous call
	if IsUnauthorized(err) && c.onUnauthorized != nil && TokenFromContext(ctx) != "" {
		c.onUnauthorized(ctx)
	}
	if _, ok := AsError(err); !ok {
		// context cancellation and the like
		err = newTransportError(err)
	}
	return err
}

func (c *Client) once(ctx context.Context, r request, out any) error {
	ctx, span := telemetry.StartClientSpan(ctx, "backend "+r.method+" "+r.resource,
		attribute.String("http.request.method", r.method),
		attribute.String("url.path", r.path),
	)
	defer span.End()

	start := time.Now()
	status := 0
	_, err := c.breaker.Execute(func() (any, error) {
		var err error
		status, err = c.roundTrip(ctx, r, out)
		return nil, err
	})
	c.metrics.ObserveBackend(r.method, r.resource, status, time.Since(start))

	if err != nil {
		if _, ok := AsError(err); !ok {
			err = newTransportError(err)
		}
		telemetry.RecordError(span, err)
		span.SetAttributes(attribute.Int("http.response.status_code", status))
		logger.L(ctx).Warn("Backend call failed",
			zap.String("method", r.method),
			zap.String("resource", r.resource),
			zap.Int("status", status),
			zap.Error(err))
		return err
	}
	span.SetAttributes(attribute.Int("http.response.status_code", status))
	return nil
}

func (c *Client) roundTrip(ctx context.Context, r request, out any) (int, error) {
	target := c.baseURL + r.path
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}

	var body io.Reader
	if r.body != nil {
		body = bytes.NewReader(r.body)
	}
	req, err := http.NewRequestWithContext(ctx, r.method, target, body)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	if token := TokenFromContext(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if id := logger.GetRequestID(ctx); id != "" {
		req.Header.Set("X-Request-ID", id)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, newTransportError(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return resp.StatusCode, newTransportError(fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode >= 400 {
		return resp.StatusCode, newStatusError(resp.StatusCode, respBody)
	}

	if out != nil && len(bytes.TrimSpace(respBody)) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return resp.StatusCode, &Error{
				Kind:    KindServer,
				Status:  resp.StatusCode,
				Message: GenericMessage,
				Err:     fmt.Errorf("failed to decode %s response: %w", r.resource, err),
			}
		}
	}
	return resp.StatusCode, nil
}

func pathID(prefix, id string) string {
	return prefix + "/" + url.PathEscape(id)
}
