package supabase

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

	"github.com/bobmcallan/finplan-portal/internal/common"
	"github.com/bobmcallan/finplan-portal/internal/finance/ledger"
	"github.com/bobmcallan/finplan-portal/internal/interfaces"
)

// Client implements interfaces.UserStore against a PostgREST endpoint such as
// a Supabase project's /rest/v1. Rows are fetched with an equality filter on
// email; each request is made once with no retry.
type Client struct {
	baseURL    string
	apiKey     string
	table      string
	httpClient *http.Client
	logger     *common.Logger
}

// NewClient creates a client for table at baseURL.
func NewClient(logger *common.Logger, baseURL, apiKey, table string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		table:      table,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

func key(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// rowsURL builds /{table}?email=eq.{email}&select={columns}.
func (c *Client) rowsURL(email, columns string) string {
	q := url.Values{}
	if email != "" {
		q.Set("email", "eq."+key(email))
	}
	if columns != "" {
		q.Set("select", columns)
	}
	u := c.baseURL + "/" + url.PathEscape(c.table)
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

func (c *Client) do(ctx context.Context, method, target string, payload any, prefer string) (int, []byte, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("apikey", c.apiKey)
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to reach data store: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read response: %w", err)
	}
	return resp.StatusCode, data, nil
}

// fetchRow returns the single row for email.
func (c *Client) fetchRow(ctx context.Context, email, columns string) (map[string]json.RawMessage, error) {
	status, body, err := c.do(ctx, http.MethodGet, c.rowsURL(email, columns), nil, "")
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("data store returned %d: %s", status, string(body))
	}

	var rows []map[string]json.RawMessage
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if len(rows) == 0 {
		return nil, interfaces.ErrNotFound
	}
	return rows[0], nil
}

// patchRow applies fields to the row for email.
func (c *Client) patchRow(ctx context.Context, email string, fields any) error {
	status, body, err := c.do(ctx, http.MethodPatch, c.rowsURL(email, "email"), fields, "return=representation")
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("data store returned %d: %s", status, string(body))
	}

	var rows []json.RawMessage
	if err := json.Unmarshal(body, &rows); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	if len(rows) == 0 {
		return interfaces.ErrNotFound
	}
	return nil
}

// ReadInvestments fetches the investments column for email.
func (c *Client) ReadInvestments(ctx context.Context, email string) (ledger.Ledger, error) {
	row, err := c.fetchRow(ctx, email, interfaces.InvestmentsColumn)
	if err != nil {
		return nil, err
	}
	raw := row[interfaces.InvestmentsColumn]
	if string(raw) == "null" {
		raw = nil
	}
	l, err := ledger.Decode(raw)
	if err != nil {
		// A malformed document reads as an empty portfolio.
		c.logger.Warn().Str("email", key(email)).Err(err).Msg("investments document is malformed")
		return ledger.Ledger{}, nil
	}
	return l, nil
}

// WriteInvestments overwrites the investments column for email.
func (c *Client) WriteInvestments(ctx context.Context, email string, l ledger.Ledger) error {
	return c.patchRow(ctx, email, map[string]any{interfaces.InvestmentsColumn: l})
}

// ReadUserRecord fetches every column for email.
func (c *Client) ReadUserRecord(ctx context.Context, email string) (interfaces.Record, error) {
	row, err := c.fetchRow(ctx, email, "*")
	if err != nil {
		return nil, err
	}

	rec := make(interfaces.Record, len(row))
	for k, raw := range row {
		if k == interfaces.InvestmentsColumn {
			rec[k] = raw
			continue
		}
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("failed to parse column %s: %w", k, err)
		}
		if v != nil {
			rec[k] = v
		}
	}
	return rec, nil
}

// UpdateUserRecord patches fields on the row for email.
func (c *Client) UpdateUserRecord(ctx context.Context, email string, fields interfaces.Record) error {
	patch := make(map[string]any, len(fields))
	for k, v := range fields {
		if k != "email" {
			patch[k] = v
		}
	}
	return c.patchRow(ctx, email, patch)
}

// CreateUserRecord inserts a row for email.
func (c *Client) CreateUserRecord(ctx context.Context, email string, fields interfaces.Record) error {
	row := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		if v != nil {
			row[k] = v
		}
	}
	row["email"] = key(email)

	status, body, err := c.do(ctx, http.MethodPost, c.rowsURL("", ""), row, "return=minimal")
	if err != nil {
		return err
	}
	switch status {
	case http.StatusCreated, http.StatusOK, http.StatusNoContent:
		return nil
	case http.StatusConflict:
		return interfaces.ErrAlreadyExists
	default:
		return fmt.Errorf("data store returned %d: %s", status, string(body))
	}
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}
