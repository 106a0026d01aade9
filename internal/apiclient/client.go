// Package apiclient wraps the recipe REST API, one resource per endpoint
// family. Clients hold no state beyond their configuration: every call is a
// fresh request, nothing is retried, and failures reach the caller as
// models.AppError values (NETWORK_ERROR or SERVER_REJECTION).
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"cookbook/internal/models"
	"cookbook/internal/observability"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
)

const (
	DefaultTimeout = 30 * time.Second
	// maxMessageLen bounds the server text copied into a rejection.
	maxMessageLen = 200
)

// Client provides methods to interact with the recipe REST API.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Metrics    *observability.ClientMetrics
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.HTTPClient = hc }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.HTTPClient.Timeout = d }
}

// WithMetrics records every call in m.
func WithMetrics(m *observability.ClientMetrics) Option {
	return func(c *Client) { c.Metrics = m }
}

// New creates a client for the API rooted at baseURL (the path under which
// /api/... is served).
func New(baseURL string, opts ...Option) *Client {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	c := &Client{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Recipes returns the /api/recipes resource.
func (c *Client) Recipes() *Resource[models.Recipe, models.RecipeInput] {
	return &Resource[models.Recipe, models.RecipeInput]{client: c, name: "recipes"}
}

// Ingredients returns the /api/ingredients resource.
func (c *Client) Ingredients() *Resource[models.Ingredient, models.IngredientInput] {
	return &Resource[models.Ingredient, models.IngredientInput]{client: c, name: "ingredients"}
}

// Steps returns the /api/recipesteps resource.
func (c *Client) Steps() *Resource[models.Step, models.StepInput] {
	return &Resource[models.Step, models.StepInput]{client: c, name: "recipesteps"}
}

// Comments returns the /api/comments resource.
func (c *Client) Comments() *Resource[models.Comment, models.CommentInput] {
	return &Resource[models.Comment, models.CommentInput]{client: c, name: "comments"}
}

// request describes one call to the API.
type request struct {
	method      string
	path        string // relative to /api/
	query       url.Values
	token       string
	body        io.Reader
	contentType string
}

// doJSON marshals body (if any), sends the request and decodes the response into out (if any).
func (c *Client) doJSON(ctx context.Context, method, path, token string, query url.Values, body, out any) error {
	req := request{method: method, path: path, query: query, token: token}
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		req.body = bytes.NewReader(payload)
		req.contentType = "application/json"
	}
	return c.do(ctx, req, out)
}

// do sends the request exactly once.
func (c *Client) do(ctx context.Context, r request, out any) error {
	endpoint := c.BaseURL + "api/" + r.path
	if len(r.query) > 0 {
		endpoint += "?" + r.query.Encode()
	}
	op := r.method + " /api/" + r.path
	resource, _, _ := strings.Cut(r.path, "/")

	span, ctx := observability.TraceAPICall(ctx, r.method, "/api/"+r.path)
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, r.method, endpoint, r.body)
	if err != nil {
		return models.NewNetworkError(op, err)
	}
	req.Header.Set("Accept", "application/json")
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	start := time.Now()
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		c.Metrics.Observe(resource, r.method, "network", time.Since(start))
		span.SetError(err)
		observability.Logger.DebugContext(ctx, "api call failed",
			slog.String("op", op),
			slog.String("error", err.Error()),
		)
		return models.NewNetworkError(op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	elapsed := time.Since(start)
	if err != nil {
		c.Metrics.Observe(resource, r.method, "network", elapsed)
		span.SetError(err)
		return models.NewNetworkError(op, fmt.Errorf("failed to read response: %w", err))
	}

	span.AddAttributes(attribute.Int("http.status_code", resp.StatusCode))
	observability.Logger.DebugContext(ctx, "api call",
		slog.String("op", op),
		slog.Int("status", resp.StatusCode),
		slog.Duration("latency", elapsed),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.Metrics.Observe(resource, r.method, "rejected", elapsed)
		rejection := models.NewServerRejection(resp.StatusCode, rejectionMessage(data))
		span.SetError(rejection)
		return rejection
	}
	c.Metrics.Observe(resource, r.method, "ok", elapsed)

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return models.NewServerRejection(resp.StatusCode, fmt.Sprintf("malformed response from %s: %v", op, err))
	}
	return nil
}

// rejectionMessage extracts the server's explanation from an error body.
// The reference server answers {"error": ...}; other backends use "message".
func rejectionMessage(body []byte) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > maxMessageLen {
		msg = msg[:maxMessageLen]
	}
	return msg
}
