// Package remote is the HTTP client of the expense REST API.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"expense-tracker-go/internal/ledger"
	"expense-tracker-go/internal/model"
)

const defaultTimeout = 10 * time.Second

type Client struct {
	baseURL string
	http    *http.Client
	token   string
	loc     *time.Location
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) { c.http = &http.Client{Timeout: timeout} }
}

// WithLocation sets the zone expense dates are converted to on arrival.
// The server answers in UTC; defaults to time.Local.
func WithLocation(loc *time.Location) Option {
	return func(c *Client) { c.loc = loc }
}

// New builds an anonymous client; baseURL is the server root without /api.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		loc:     time.Local,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithToken returns a copy of the client that authenticates as token.
func (c *Client) WithToken(token string) *Client {
	copied := *c
	copied.token = token
	return &copied
}

func (c *Client) Token() string {
	return c.token
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

type ExpenseUpdate struct {
	Amount      *float64   `json:"amount,omitempty"`
	Category    *string    `json:"category,omitempty"`
	Description *string    `json:"description,omitempty"`
	Date        *time.Time `json:"date,omitempty"`
}

type resetPasswordResponse struct {
	Message    string `json:"message"`
	ResetToken string `json:"resetToken"`
}

func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/api/health", nil, nil)
}

func (c *Client) Register(ctx context.Context, name, email, password string) (model.AuthSession, error) {
	var session model.AuthSession
	body := map[string]string{"name": name, "email": email, "password": password}
	err := c.do(ctx, http.MethodPost, "/api/auth/register", body, &session)
	return session, err
}

func (c *Client) Login(ctx context.Context, email, password string) (model.AuthSession, error) {
	var session model.AuthSession
	body := map[string]string{"email": email, "password": password}
	err := c.do(ctx, http.MethodPost, "/api/auth/login", body, &session)
	return session, err
}

func (c *Client) ResetPassword(ctx context.Context, email string) (string, error) {
	var resp resetPasswordResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/reset-password", map[string]string{"email": email}, &resp); err != nil {
		return "", err
	}
	return resp.ResetToken, nil
}

func (c *Client) Me(ctx context.Context) (model.User, error) {
	var user model.User
	err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &user)
	return user, err
}

func (c *Client) CreateExpense(ctx context.Context, input model.ExpenseInput) (model.Expense, error) {
	var created model.Expense
	if err := c.do(ctx, http.MethodPost, "/api/expenses", input, &created); err != nil {
		return model.Expense{}, err
	}
	c.adopt(&created)
	return created, nil
}

func (c *Client) ListExpenses(ctx context.Context) ([]model.Expense, error) {
	return c.list(ctx, "/api/expenses")
}

func (c *Client) ListExpensesInRange(ctx context.Context, start, end time.Time) ([]model.Expense, error) {
	query := url.Values{}
	query.Set("startDate", start.Format(time.RFC3339Nano))
	query.Set("endDate", end.Format(time.RFC3339Nano))
	return c.list(ctx, "/api/expenses/range?"+query.Encode())
}

func (c *Client) ListExpensesByCategory(ctx context.Context, category string) ([]model.Expense, error) {
	return c.list(ctx, "/api/expenses/category/"+url.PathEscape(category))
}

func (c *Client) UpdateExpense(ctx context.Context, id string, update ExpenseUpdate) (model.Expense, error) {
	var updated model.Expense
	if err := c.do(ctx, http.MethodPut, "/api/expenses/"+url.PathEscape(id), update, &updated); err != nil {
		return model.Expense{}, err
	}
	c.adopt(&updated)
	return updated, nil
}

func (c *Client) DeleteExpense(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/expenses/"+url.PathEscape(id), nil, nil)
}

func (c *Client) Summary(ctx context.Context, tf ledger.TimeFrame) (ledger.Summary, error) {
	var summary ledger.Summary
	path := "/api/expenses/summary"
	if tf != "" {
		path += "?timeFrame=" + url.QueryEscape(string(tf))
	}
	err := c.do(ctx, http.MethodGet, path, nil, &summary)
	return summary, err
}

func (c *Client) list(ctx context.Context, path string) ([]model.Expense, error) {
	var items []model.Expense
	if err := c.do(ctx, http.MethodGet, path, nil, &items); err != nil {
		return nil, err
	}
	for i := range items {
		c.adopt(&items[i])
	}
	if items == nil {
		items = []model.Expense{}
	}
	return items, nil
}

// adopt marks a server record as synced and moves its date into the
// client's zone so day and month buckets match what the user entered.
func (c *Client) adopt(e *model.Expense) {
	e.IsSynced = true
	if c.loc != nil {
		e.Date = e.Date.In(c.loc)
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}

	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(raw, &envelope); err == nil {
		apiErr.Code = envelope.Error.Code
		apiErr.Message = envelope.Error.Message
	}
	if apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(raw))
	}
	return apiErr
}

// IsRetryable reports whether err may succeed on a later attempt.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrUnavailable) || errors.Is(err, context.DeadlineExceeded)
}
