package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"expensio/internal/core"
)

// APIError is a non-2xx response decoded into its message and any per-field
// validation failures.
type APIError struct {
	Status  int
	Message string
	Fields  []core.FieldError
}

func (e *APIError) Error() string {
	if len(e.Fields) > 0 {
		parts := make([]string, 0, len(e.Fields))
		for _, f := range e.Fields {
			parts = append(parts, f.Message)
		}
		return strings.Join(parts, "; ")
	}
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

// User is the public user record returned by the API
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Transaction mirrors the API wire shape
type Transaction struct {
	ID       string    `json:"id"`
	UserID   string    `json:"userId"`
	Title    string    `json:"title"`
	Amount   float64   `json:"amount"`
	Category string    `json:"category"`
	Date     core.Date `json:"date"`
	Notes    string    `json:"notes"`
}

// Domain converts a wire transaction into the domain representation
func (t Transaction) Domain() core.Transaction {
	return core.Transaction{
		ID:       t.ID,
		UserID:   t.UserID,
		Title:    t.Title,
		Amount:   core.MoneyFromFloat(t.Amount),
		Category: t.Category,
		Date:     t.Date,
		Notes:    t.Notes,
	}
}

// TransactionInput is the payload for create and update calls
type TransactionInput struct {
	Title    string    `json:"title"`
	Amount   float64   `json:"amount"`
	Category string    `json:"category"`
	Date     core.Date `json:"date"`
	Notes    string    `json:"notes"`
}

// TransactionPage is one page of the paginated listing
type TransactionPage struct {
	Transactions []Transaction `json:"transactions"`
	Total        int           `json:"total"`
	HasMore      bool          `json:"hasMore"`
}

type sessionPayload struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// Client is a bearer-token HTTP client for the API
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// SetToken installs the bearer token used for authenticated calls
func (c *Client) SetToken(token string) { c.token = token }

// Token returns the current bearer token, empty when logged out
func (c *Client) Token() string { return c.token }

// Register creates an account and installs the returned token.
func (c *Client) Register(ctx context.Context, email, password string) (User, error) {
	return c.authenticate(ctx, "/api/auth/register", email, password)
}

// Login authenticates and installs the returned token.
func (c *Client) Login(ctx context.Context, email, password string) (User, error) {
	return c.authenticate(ctx, "/api/auth/login", email, password)
}

func (c *Client) authenticate(ctx context.Context, path, email, password string) (User, error) {
	body := map[string]string{"email": email, "password": password}
	var payload sessionPayload
	if err := c.do(ctx, http.MethodPost, path, body, &payload); err != nil {
		return User{}, err
	}
	c.token = payload.Token
	return payload.User, nil
}

// Me returns the user the current token belongs to
func (c *Client) Me(ctx context.Context) (User, error) {
	var user User
	err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &user)
	return user, err
}

// Transactions fetches one page of the caller's transactions
func (c *Client) Transactions(ctx context.Context, limit, offset int) (TransactionPage, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	}
	path := "/api/transactions"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var page TransactionPage
	err := c.do(ctx, http.MethodGet, path, nil, &page)
	return page, err
}

// AllTransactions fetches every transaction the caller owns, newest first
func (c *Client) AllTransactions(ctx context.Context) ([]Transaction, error) {
	var payload struct {
		Transactions []Transaction `json:"transactions"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/transactions/all", nil, &payload); err != nil {
		return nil, err
	}
	return payload.Transactions, nil
}

// Transaction fetches a single transaction by ID
func (c *Client) Transaction(ctx context.Context, id string) (Transaction, error) {
	var txn Transaction
	err := c.do(ctx, http.MethodGet, "/api/transactions/"+url.PathEscape(id), nil, &txn)
	return txn, err
}

// CreateTransaction stores a new transaction
func (c *Client) CreateTransaction(ctx context.Context, input TransactionInput) (Transaction, error) {
	var txn Transaction
	err := c.do(ctx, http.MethodPost, "/api/transactions", input, &txn)
	return txn, err
}

// UpdateTransaction replaces the fields of an existing transaction
func (c *Client) UpdateTransaction(ctx context.Context, id string, input TransactionInput) (Transaction, error) {
	var txn Transaction
	err := c.do(ctx, http.MethodPut, "/api/transactions/"+url.PathEscape(id), input, &txn)
	return txn, err
}

// DeleteTransaction removes a transaction
func (c *Client) DeleteTransaction(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/transactions/"+url.PathEscape(id), nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeAPIError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}

	var payload struct {
		Message string            `json:"message"`
		Errors  []core.FieldError `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil {
		apiErr.Message = payload.Message
		apiErr.Fields = payload.Errors
	}
	return apiErr
}
