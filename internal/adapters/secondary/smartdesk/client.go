package smartdesk

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/tidwall/gjson"

	"github.com/lorrc/smartdesk-web/internal/auth"
	"github.com/lorrc/smartdesk-web/internal/core/domain"
	apperrors "github.com/lorrc/smartdesk-web/internal/core/errors"
	"github.com/lorrc/smartdesk-web/internal/core/ports"
	"github.com/lorrc/smartdesk-web/internal/infrastructure/logging"
	"github.com/lorrc/smartdesk-web/internal/infrastructure/metrics"
)

const (
	maxResponseBytes = 4 << 20
	requestIDHeader  = "X-Request-ID"
)

// Ensure Client implements the port
var _ ports.Backend = (*Client)(nil)

// Client talks to the SmartDesk REST API on behalf of the browser.
// Browser cookies are taken from the request context (auth.WithBackendCookies).
type Client struct {
	baseURL string
	http    *http.Client
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client. Its timeout is kept as is.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithMetrics records every call on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// NewClient creates a client for baseURL. Every call is bounded by timeout.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		logger:  logger.With("adapter", "smartdesk"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// response is a completed 2xx exchange.
type response struct {
	body    []byte
	cookies []*http.Cookie
}

// do performs one request. endpoint is the low-cardinality name used in metrics and errors.
func (c *Client) do(ctx context.Context, method, path, endpoint string, in any) (*response, error) {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("encode %s request: %w", endpoint, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", endpoint, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if requestID := logging.GetRequestID(ctx); requestID != "" {
		req.Header.Set(requestIDHeader, requestID)
	}
	for _, cookie := range auth.BackendCookies(ctx) {
		req.AddCookie(cookie)
	}

	start := time.Now()
	res, err := c.http.Do(req)
	if err != nil {
		c.metrics.ObserveBackend(endpoint, 0, time.Since(start))
		c.logger.WarnContext(ctx, "backend request failed", "method", method, "endpoint", endpoint, "error", err)
		return nil, fmt.Errorf("%w: %s %s: %v", apperrors.ErrBackendUnavailable, method, endpoint, err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBytes))
	c.metrics.ObserveBackend(endpoint, res.StatusCode, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("%w: read %s response: %v", apperrors.ErrBackendUnavailable, endpoint, err)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, &apperrors.BackendError{
			StatusCode: res.StatusCode,
			Endpoint:   endpoint,
			Message:    errorMessage(raw),
		}
	}

	return &response{body: raw, cookies: res.Cookies()}, nil
}

// errorMessage extracts {"error": "..."} from a failure body, if present.
func errorMessage(body []byte) string {
	if !gjson.ValidBytes(body) {
		return ""
	}
	return gjson.GetBytes(body, "error").String()
}

func decode[T any](res *response, endpoint string) (T, error) {
	var out T
	if err := json.Unmarshal(res.body, &out); err != nil {
		return out, fmt.Errorf("%w: %s: %v", apperrors.ErrInvalidResponse, endpoint, err)
	}
	return out, nil
}

// Me returns the current backend session. A 401 is reported as ErrUnauthorized.
func (c *Client) Me(ctx context.Context) (*domain.Session, error) {
	res, err := c.do(ctx, http.MethodGet, "/api/me", "/api/me", nil)
	if err != nil {
		return nil, err
	}
	session, err := decode[domain.Session](res, "/api/me")
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// Login authenticates and returns the user plus the session cookies to relay.
func (c *Client) Login(ctx context.Context, creds domain.Credentials) (*domain.User, []*http.Cookie, error) {
	res, err := c.do(ctx, http.MethodPost, "/api/login", "/api/login", creds)
	if err != nil {
		return nil, nil, err
	}
	payload, err := decode[struct {
		User *domain.User `json:"user"`
	}](res, "/api/login")
	if err != nil {
		return nil, nil, err
	}
	if payload.User == nil {
		return nil, nil, fmt.Errorf("%w: /api/login: missing user", apperrors.ErrInvalidResponse)
	}
	return payload.User, res.cookies, nil
}

// Signup registers an account. The backend does not sign the new user in.
func (c *Client) Signup(ctx context.Context, params domain.SignupParams) ([]*http.Cookie, error) {
	res, err := c.do(ctx, http.MethodPost, "/api/signup", "/api/signup", params)
	if err != nil {
		return nil, err
	}
	return res.cookies, nil
}

// Logout clears the backend session and returns the cookies that expire it.
func (c *Client) Logout(ctx context.Context) ([]*http.Cookie, error) {
	res, err := c.do(ctx, http.MethodPost, "/api/logout", "/api/logout", nil)
	if err != nil {
		return nil, err
	}
	return res.cookies, nil
}

// Stats fetches the aggregate counters, scoped by the backend to the caller's role.
func (c *Client) Stats(ctx context.Context) (*domain.Stats, error) {
	res, err := c.do(ctx, http.MethodGet, "/api/stats", "/api/stats", nil)
	if err != nil {
		return nil, err
	}
	return parseStats(res.body)
}

// ListTickets fetches the caller's visible tickets in the given order.
func (c *Client) ListTickets(ctx context.Context, sort domain.TicketSort) ([]domain.Ticket, error) {
	path := "/api/tickets"
	if sort != "" {
		path += "?" + url.Values{"sort": {string(sort)}}.Encode()
	}
	res, err := c.do(ctx, http.MethodGet, path, "/api/tickets", nil)
	if err != nil {
		return nil, err
	}
	tickets, err := decode[[]domain.Ticket](res, "/api/tickets")
	if err != nil {
		return nil, err
	}
	if tickets == nil {
		tickets = []domain.Ticket{}
	}
	return tickets, nil
}

// UpdateTicket sends a partial update; nil fields are omitted from the body.
func (c *Client) UpdateTicket(ctx context.Context, id int64, params domain.UpdateTicketParams) error {
	_, err := c.do(ctx, http.MethodPatch, ticketPath(id), "/api/tickets/:id", params)
	return err
}

// DeleteTicket removes a ticket.
func (c *Client) DeleteTicket(ctx context.Context, id int64) error {
	_, err := c.do(ctx, http.MethodDelete, ticketPath(id), "/api/tickets/:id", nil)
	return err
}

// Analyze classifies a draft without storing it.
func (c *Client) Analyze(ctx context.Context, req domain.AnalysisRequest) (*domain.AnalysisResult, error) {
	return c.classify(ctx, "/api/analyze", req)
}

// Predict classifies and stores a ticket for the signed-in user.
func (c *Client) Predict(ctx context.Context, req domain.AnalysisRequest) (*domain.AnalysisResult, error) {
	return c.classify(ctx, "/api/predict", req)
}

func (c *Client) classify(ctx context.Context, path string, req domain.AnalysisRequest) (*domain.AnalysisResult, error) {
	res, err := c.do(ctx, http.MethodPost, path, path, req)
	if err != nil {
		return nil, err
	}
	result, err := decode[domain.AnalysisResult](res, path)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Ping reports whether the backend answers HTTP at all. Client errors such
// as an anonymous 401 still prove it is up.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, "/api/me", "/api/me", nil)
	var backendErr *apperrors.BackendError
	if errors.As(err, &backendErr) && backendErr.StatusCode < http.StatusInternalServerError {
		return nil
	}
	return err
}

func ticketPath(id int64) string {
	return "/api/tickets/" + strconv.FormatInt(id, 10)
}
