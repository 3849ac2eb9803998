package recordapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/timmy/hirelane/internal/config"
)

// ErrRecordNotFound is returned when the API reports no record for an id.
var ErrRecordNotFound = errors.New("record not found")

// Client talks to the hosted record storage API. Every table is addressed as
// /tables/<table>/records.
type Client struct {
	client  *resty.Client
	baseURL string
}

// NewClient creates a record API client from configuration.
// Parameters:
//   - cfg: record API settings (base URL, project, key, timeout).
//
// Returns:
//   - *Client: ready to use client.
//   - error: non-nil when the base URL or project id is missing.
func NewClient(cfg *config.RecordAPIConfig) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("record api base url is required")
	}
	if cfg.ProjectID == "" {
		return nil, errors.New("record api project id is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	client := resty.New()
	client.SetTimeout(timeout)
	client.SetHeader("Content-Type", "application/json")
	client.SetHeader("X-Project-ID", cfg.ProjectID)
	if cfg.PublicKey != "" {
		client.SetHeader("Authorization", "Bearer "+cfg.PublicKey)
	}

	return &Client{
		client:  client,
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
	}, nil
}

// FieldError is a per-field failure reported for one record.
type FieldError struct {
	FieldLabel string `json:"fieldLabel"`
	Message    string `json:"message"`
}

// Result is the outcome for one record of a bulk write.
type Result struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
	Errors  []FieldError    `json:"errors,omitempty"`
}

func (r *Result) err() error {
	if r.Success {
		return nil
	}
	if len(r.Errors) > 0 {
		parts := make([]string, len(r.Errors))
		for i, fe := range r.Errors {
			parts[i] = fe.FieldLabel + ": " + fe.Message
		}
		return errors.New(strings.Join(parts, "; "))
	}
	if r.Message != "" {
		return errors.New(r.Message)
	}
	return errors.New("record rejected")
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Total   int             `json:"total"`
	Results []Result        `json:"results"`
}

// Field selects one column. ReferenceField expands a lookup column.
type Field struct {
	Field          FieldName  `json:"field"`
	ReferenceField *FieldSpec `json:"referenceField,omitempty"`
}

type FieldName struct {
	Name string `json:"Name"`
}

type FieldSpec struct {
	Field FieldName `json:"field"`
}

// Condition is one where clause; conditions are combined with AND.
type Condition struct {
	FieldName string        `json:"FieldName"`
	Operator  string        `json:"Operator"`
	Values    []interface{} `json:"Values"`
}

type OrderBy struct {
	FieldName string `json:"fieldName"`
	SortType  string `json:"sorttype"`
}

type PagingInfo struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// Query describes a fetch request.
type Query struct {
	Fields     []Field     `json:"fields,omitempty"`
	Where      []Condition `json:"where,omitempty"`
	OrderBy    []OrderBy   `json:"orderBy,omitempty"`
	PagingInfo *PagingInfo `json:"pagingInfo,omitempty"`
}

// EqualTo builds an equality condition.
func EqualTo(field string, value interface{}) Condition {
	return Condition{FieldName: field, Operator: "EqualTo", Values: []interface{}{value}}
}

// Fetch returns the raw records of table matching q and the total number of
// matches reported by the server.
func (c *Client) Fetch(ctx context.Context, table string, q *Query) ([]json.RawMessage, int, error) {
	env, err := c.do(ctx, "POST", c.recordsURL(table)+"/fetch", q)
	if err != nil {
		return nil, 0, err
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return []json.RawMessage{}, env.Total, nil
	}
	var records []json.RawMessage
	if err := json.Unmarshal(env.Data, &records); err != nil {
		return nil, 0, fmt.Errorf("failed to decode %s records: %w", table, err)
	}
	return records, env.Total, nil
}

// Get returns one raw record, or ErrRecordNotFound.
func (c *Client) Get(ctx context.Context, table string, id int) (json.RawMessage, error) {
	env, err := c.do(ctx, "GET", fmt.Sprintf("%s/%d", c.recordsURL(table), id), nil)
	if err != nil {
		return nil, err
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil, ErrRecordNotFound
	}
	return env.Data, nil
}

// Create inserts records and returns the stored data of each.
func (c *Client) Create(ctx context.Context, table string, records ...interface{}) ([]json.RawMessage, error) {
	return c.write(ctx, "POST", table, map[string]interface{}{"records": records})
}

// Update patches records; each must carry its Id.
func (c *Client) Update(ctx context.Context, table string, records ...interface{}) ([]json.RawMessage, error) {
	return c.write(ctx, "PUT", table, map[string]interface{}{"records": records})
}

// Delete removes records by id.
func (c *Client) Delete(ctx context.Context, table string, ids ...int) error {
	_, err := c.write(ctx, "DELETE", table, map[string]interface{}{"RecordIds": ids})
	return err
}

func (c *Client) write(ctx context.Context, method, table string, body interface{}) ([]json.RawMessage, error) {
	env, err := c.do(ctx, method, c.recordsURL(table), body)
	if err != nil {
		return nil, err
	}
	data := make([]json.RawMessage, 0, len(env.Results))
	for i := range env.Results {
		if err := env.Results[i].err(); err != nil {
			return nil, fmt.Errorf("record api rejected %s record: %w", table, err)
		}
		data = append(data, env.Results[i].Data)
	}
	return data, nil
}

func (c *Client) recordsURL(table string) string {
	return c.baseURL + "/tables/" + table + "/records"
}

func (c *Client) do(ctx context.Context, method, url string, body interface{}) (*envelope, error) {
	var env envelope
	// some deployments answer without a JSON content type
	req := c.client.R().
		SetContext(ctx).
		ForceContentType("application/json").
		SetResult(&env).
		SetError(&env)
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, url)
	if err != nil {
		return nil, fmt.Errorf("failed to call record API: %w", err)
	}

	if resp.StatusCode() == 404 {
		return nil, ErrRecordNotFound
	}
	if resp.IsError() {
		msg := env.Message
		if msg == "" {
			msg = string(resp.Body())
		}
		return nil, fmt.Errorf("record API returned HTTP %d: %s", resp.StatusCode(), msg)
	}
	if !env.Success {
		msg := env.Message
		if msg == "" {
			msg = "request was not successful"
		}
		return nil, fmt.Errorf("record API error: %s", msg)
	}
	return &env, nil
}
