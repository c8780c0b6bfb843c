// Package gateway is the only code that talks to the remote expense API. It
// unwraps the API's response envelope and turns every kind of failure into
// an *OperationError, which is also shown to the user as an error
// notification.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"expensetracker/internal/core"
	"expensetracker/internal/log"
)

// BasePath is the API prefix every endpoint lives under.
const BasePath = "/api/expenses"

// RequestIDHeader carries a per-request correlation id.
const RequestIDHeader = "X-Request-ID"

// Operation names used in errors and logs.
const (
	OpList           = "list"
	OpListByCategory = "list by category"
	OpCreate         = "create"
	OpDelete         = "delete"
	OpInsights       = "insights"
	OpSearch         = "search"
	OpTotal          = "total"
	OpCount          = "count"
	OpHealth         = "health"
)

// Notifier receives the user-facing message of every failure.
// *notify.Queue satisfies it.
type Notifier interface {
	Error(message string) int64
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

func (e envelope) hasData() bool {
	return len(e.Data) > 0 && string(e.Data) != "null"
}

// Client calls the expense API. It does not retry.
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
	timeout    time.Duration
	notifier   Notifier
	logger     *log.Logger
	requests   *log.StructuredLogger
	newID      func() string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout bounds every request. Zero leaves the transport default.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithNotifier sets where failures are reported.
func WithNotifier(n Notifier) Option {
	return func(c *Client) { c.notifier = n }
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger.WithComponent(log.ComponentGateway)
		}
	}
}

// New creates a client for the API at baseURL, e.g. http://localhost:8080.
func New(baseURL string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("base URL is required")
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL %q: scheme must be http or https", baseURL)
	}

	c := &Client{
		httpClient: http.DefaultClient,
		baseURL:    u,
		logger:     log.Nop().WithComponent(log.ComponentGateway),
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.requests = log.NewStructuredLogger(c.logger)
	return c, nil
}

// BaseURL returns the configured API host.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// List fetches every expense.
func (c *Client) List(ctx context.Context) ([]core.Expense, error) {
	return c.expenses(ctx, OpList, BasePath, nil)
}

// ListByCategory fetches the expenses in one category.
func (c *Client) ListByCategory(ctx context.Context, category core.Category) ([]core.Expense, error) {
	return c.expenses(ctx, OpListByCategory, BasePath+"/category/"+category.String(), nil)
}

// Search fetches the expenses whose description matches q.
func (c *Client) Search(ctx context.Context, q string) ([]core.Expense, error) {
	return c.expenses(ctx, OpSearch, BasePath+"/search", url.Values{"q": {q}})
}

// Create sends draft and returns the stored record with its assigned id.
func (c *Client) Create(ctx context.Context, draft core.Draft) (core.Expense, error) {
	env, err := c.do(ctx, OpCreate, http.MethodPost, BasePath, nil, draft)
	if err != nil {
		return core.Expense{}, err
	}

	var created core.Expense
	if err := c.decodeData(ctx, OpCreate, env, &created); err != nil {
		return core.Expense{}, err
	}
	if created.ID == nil {
		return core.Expense{}, c.fail(ctx, clientError(OpCreate, errors.New("created expense has no id")))
	}

	c.requests.LogExpenseCreated(ctx, created.ID, created.Description, created.Amount.String(), created.Category.String())
	return created, nil
}

// Delete removes the expense with id on the server.
func (c *Client) Delete(ctx context.Context, id int64) error {
	_, err := c.do(ctx, OpDelete, http.MethodDelete, BasePath+"/"+strconv.FormatInt(id, 10), nil, nil)
	return err
}

// Insights requests AI generated text about the current expenses.
func (c *Client) Insights(ctx context.Context) (string, error) {
	env, err := c.do(ctx, OpInsights, http.MethodGet, BasePath+"/insights", nil, nil)
	if err != nil {
		return "", err
	}
	var text string
	if err := c.decodeData(ctx, OpInsights, env, &text); err != nil {
		return "", err
	}
	return text, nil
}

// TotalSpent returns the server-side sum of all amounts.
func (c *Client) TotalSpent(ctx context.Context) (decimal.Decimal, error) {
	env, err := c.do(ctx, OpTotal, http.MethodGet, BasePath+"/stats/total", nil, nil)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	if err := c.decodeData(ctx, OpTotal, env, &total); err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

// Count returns the server-side number of expenses.
func (c *Client) Count(ctx context.Context) (int64, error) {
	env, err := c.do(ctx, OpCount, http.MethodGet, BasePath+"/stats/count", nil, nil)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := c.decodeData(ctx, OpCount, env, &n); err != nil {
		return 0, err
	}
	return n, nil
}

// Health returns the backend's health message.
func (c *Client) Health(ctx context.Context) (string, error) {
	env, err := c.do(ctx, OpHealth, http.MethodGet, BasePath+"/health", nil, nil)
	if err != nil {
		return "", err
	}
	return env.Message, nil
}

func (c *Client) expenses(ctx context.Context, op, path string, query url.Values) ([]core.Expense, error) {
	env, err := c.do(ctx, op, http.MethodGet, path, query, nil)
	if err != nil {
		return nil, err
	}
	out := []core.Expense{}
	if err := c.decodeData(ctx, op, env, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// do performs one request and returns the decoded envelope of a successful
// response. Any failure has already been logged and reported.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body any) (envelope, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	u := *c.baseURL
	u.Path = c.baseURL.Path + path
	u.RawQuery = query.Encode()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return envelope{}, c.fail(ctx, clientError(op, fmt.Errorf("marshal request: %w", err)))
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return envelope{}, c.fail(ctx, clientError(op, fmt.Errorf("create request: %w", err)))
	}
	requestID := c.newID()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)

	c.requests.LogRequestStart(ctx, req, requestID)
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.requests.LogRequestEnd(ctx, req, requestID, 0, time.Since(start).Milliseconds())
		if ctx.Err() != nil {
			return envelope{}, c.fail(ctx, clientError(op, ctx.Err()))
		}
		return envelope{}, c.fail(ctx, connectionError(op, err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	c.requests.LogRequestEnd(ctx, req, requestID, resp.StatusCode, time.Since(start).Milliseconds())
	if err != nil {
		return envelope{}, c.fail(ctx, clientError(op, fmt.Errorf("read response: %w", err)))
	}

	var (
		env       envelope
		decodeErr error
	)
	if len(bytes.TrimSpace(raw)) > 0 {
		decodeErr = json.Unmarshal(raw, &env)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail := env.Error
		if decodeErr != nil {
			detail = ""
		}
		return envelope{}, c.fail(ctx, statusError(op, resp.StatusCode, detail))
	}
	if decodeErr != nil {
		return envelope{}, c.fail(ctx, clientError(op, fmt.Errorf("decode response: %w", decodeErr)))
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		// 204 and friends: nothing to unwrap
		env.Success = true
	}
	if !env.Success {
		return envelope{}, c.fail(ctx, envelopeError(op, resp.StatusCode, env.Error))
	}
	return env, nil
}

func (c *Client) decodeData(ctx context.Context, op string, env envelope, out any) error {
	if !env.hasData() {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return c.fail(ctx, clientError(op, fmt.Errorf("decode data: %w", err)))
	}
	return nil
}

// fail logs err and shows it as an error notification before handing it
// back to the caller. A request the caller cancelled is only logged.
func (c *Client) fail(ctx context.Context, err *OperationError) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		c.logger.DebugContext(ctx, "API operation cancelled",
			log.FieldOperation, err.Op,
			log.FieldError, err.Error())
		return err
	}

	fields := log.NewFields().WithErrorType(errorType(err.Kind))
	if err.StatusCode != 0 {
		fields[log.FieldStatusCode] = err.StatusCode
	}
	c.requests.LogError(ctx, "API operation failed", err, err.Op, fields)

	if c.notifier != nil {
		c.notifier.Error(err.Message)
	}
	return err
}
