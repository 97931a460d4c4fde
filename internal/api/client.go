// Package api implements the remote budget server protocol over HTTP.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Veraticus/spendsync/internal/common"
	"github.com/Veraticus/spendsync/internal/model"
)

// Endpoint paths.
const (
	pathData           = "/api/data"
	pathAddAccount     = "/api/add_account"
	pathDeleteAccount  = "/api/delete_account"
	pathToggleAccount  = "/api/toggle_account"
	pathAddTransaction = "/api/add_transaction"
	pathUpdateBudget   = "/api/update_budget"
)

// maxErrorBody bounds how much of a failed response is kept for the error message.
const maxErrorBody = 512

// Client implements service.Remote against the budget server.
type Client struct {
	httpClient *http.Client
	baseURL    string
	retry      common.RetryOptions
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithRetry sets the retry policy for snapshot fetches. Mutating requests are never retried.
func WithRetry(opts common.RetryOptions) Option {
	return func(c *Client) {
		c.retry = opts
	}
}

// NewClient creates a client for the server at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		retry: common.DefaultRetryOptions(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchSnapshot returns the full state. Transient failures are retried.
func (c *Client) FetchSnapshot(ctx context.Context) (model.Snapshot, error) {
	var snap model.Snapshot
	err := common.WithRetry(ctx, func() error {
		body, err := c.do(ctx, http.MethodGet, pathData, nil)
		if err != nil {
			return err
		}
		snap, err = decodeSnapshot(body)
		if err != nil {
			return &common.RemoteFailure{Op: "fetch snapshot", StatusCode: http.StatusOK, Err: err}
		}
		return nil
	}, c.retry)
	if err != nil {
		return model.Snapshot{}, err
	}

	slog.Debug("Fetched snapshot",
		"accounts", len(snap.Accounts),
		"transactions", len(snap.Transactions))
	return snap, nil
}

type addAccountRequest struct {
	Name    string      `json:"name"`
	Balance json.Number `json:"balance"`
	Type    string      `json:"type"`
}

// AddAccount creates an account and returns it as the server stored it.
func (c *Client) AddAccount(ctx context.Context, acc model.NewAccount) (model.Account, error) {
	body, err := c.do(ctx, http.MethodPost, pathAddAccount, addAccountRequest{
		Name:    acc.Name,
		Balance: number(acc.Balance),
		Type:    acc.Type,
	})
	if err != nil {
		return model.Account{}, err
	}

	var created model.Account
	if !decodeEntity(body, "account", &created) {
		slog.Warn("Add account response carried no account", "body", truncate(body))
	}
	return created, nil
}

type idRequest struct {
	ID model.ID `json:"id"`
}

// DeleteAccount deletes an account and its transactions.
func (c *Client) DeleteAccount(ctx context.Context, id model.ID) error {
	_, err := c.do(ctx, http.MethodPost, pathDeleteAccount, idRequest{ID: id})
	return err
}

// ToggleAccount makes id the only active account.
func (c *Client) ToggleAccount(ctx context.Context, id model.ID) error {
	_, err := c.do(ctx, http.MethodPost, pathToggleAccount, idRequest{ID: id})
	return err
}

type addTransactionRequest struct {
	Date      model.Date            `json:"date"`
	Title     string                `json:"title"`
	Category  string                `json:"category"`
	Amount    json.Number           `json:"amount"`
	Type      model.TransactionType `json:"type"`
	AccountID model.ID              `json:"account_id"`
}

// AddTransaction records a transaction and returns it as the server stored it.
func (c *Client) AddTransaction(ctx context.Context, txn model.NewTransaction) (model.Transaction, error) {
	body, err := c.do(ctx, http.MethodPost, pathAddTransaction, addTransactionRequest{
		Title:     txn.Title,
		Category:  txn.Category,
		Amount:    number(txn.Amount),
		Type:      txn.Type,
		Date:      txn.Date,
		AccountID: txn.AccountID,
	})
	if err != nil {
		return model.Transaction{}, err
	}

	var created model.Transaction
	if !decodeEntity(body, "transaction", &created) {
		slog.Warn("Add transaction response carried no transaction", "body", truncate(body))
	}
	return created, nil
}

type updateBudgetRequest struct {
	AccountID model.ID    `json:"account_id"`
	NewLimit  json.Number `json:"new_limit"`
}

// UpdateBudget sets the budget limit of an account.
func (c *Client) UpdateBudget(ctx context.Context, accountID model.ID, limit decimal.Decimal) error {
	_, err := c.do(ctx, http.MethodPost, pathUpdateBudget, updateBudgetRequest{
		AccountID: accountID,
		NewLimit:  number(limit),
	})
	return err
}

// do sends one request and returns the body of a 2xx response. Anything else
// becomes a *common.RemoteFailure.
func (c *Client) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	op := strings.TrimPrefix(path, "/api/")

	var reqBody io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s request: %w", op, err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &common.RemoteFailure{Op: op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &common.RemoteFailure{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	slog.Debug("Remote request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"request_id", requestID,
		"duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		failure := &common.RemoteFailure{Op: op, StatusCode: resp.StatusCode}
		if msg := strings.TrimSpace(truncate(body)); msg != "" {
			failure.Err = errors.New(msg)
		}
		return nil, failure
	}
	return body, nil
}

func number(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}

func truncate(body []byte) string {
	if len(body) > maxErrorBody {
		return string(body[:maxErrorBody]) + "..."
	}
	return string(body)
}
