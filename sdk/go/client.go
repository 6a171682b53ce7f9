package planforgesdk

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
)

// Client is a minimal planforge HTTP API client.
type Client struct {
	BaseURL     string
	BasePath    string
	BearerToken string
	HTTPClient  *http.Client
	Timeout     time.Duration
}

// New creates a client with sane defaults.
func New(baseURL string) *Client {
	return &Client{
		BaseURL:  baseURL,
		BasePath: "/v1",
		Timeout:  10 * time.Second,
	}
}

// Collections accepted by the generic CRUD calls.
const (
	Projects   = "projects"
	Plans      = "plans"
	Phases     = "phases"
	Jobs       = "jobs"
	Teams      = "teams"
	Roles      = "roles"
	Agents     = "agents"
	Validators = "validators"
	Tasks      = "tasks"
	Actions    = "actions"
)

// APIError wraps non-2xx responses.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Details    map[string]any
	Body       string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error: status=%d code=%s: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("api error: status=%d body=%s", e.StatusCode, e.Body)
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.StatusCode == http.StatusNotFound
}

// Create posts body to collection and decodes the created record into out.
func (c *Client) Create(ctx context.Context, collection string, body, out any) error {
	return c.do(ctx, http.MethodPost, collection, body, out)
}

func (c *Client) Get(ctx context.Context, collection, id string, out any) error {
	return c.do(ctx, http.MethodGet, collection+"/"+url.PathEscape(id), nil, out)
}

func (c *Client) List(ctx context.Context, collection string, out any) error {
	return c.do(ctx, http.MethodGet, collection, nil, out)
}

// Update sends a partial update. Only keys present in fields change; a nil
// value clears the field.
func (c *Client) Update(ctx context.Context, collection, id string, fields map[string]any, out any) error {
	return c.do(ctx, http.MethodPatch, collection+"/"+url.PathEscape(id), fields, out)
}

func (c *Client) Delete(ctx context.Context, collection, id string) (bool, error) {
	var deleted bool
	err := c.do(ctx, http.MethodDelete, collection+"/"+url.PathEscape(id), nil, &deleted)
	return deleted, err
}

// Children reads a scoped collection such as phases/{id}/actions.
func (c *Client) Children(ctx context.Context, collection, id, child string, out any) error {
	return c.do(ctx, http.MethodGet, collection+"/"+url.PathEscape(id)+"/"+child, nil, out)
}

// TaskCounts returns task counts grouped by job and status.
func (c *Client) TaskCounts(ctx context.Context, jobID, status string) ([]TaskCount, error) {
	q := url.Values{}
	if jobID != "" {
		q.Set("jobId", jobID)
	}
	if status != "" {
		q.Set("status", status)
	}
	endpoint := "tasks/counts"
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}
	var out []TaskCount
	err := c.do(ctx, http.MethodGet, endpoint, nil, &out)
	return out, err
}

// Events lists audit events, newest first.
func (c *Client) Events(ctx context.Context, kind, entityID string, limit int) ([]Event, error) {
	q := url.Values{}
	if kind != "" {
		q.Set("kind", kind)
	}
	if entityID != "" {
		q.Set("entityId", entityID)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	endpoint := "events"
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}
	var out []Event
	err := c.do(ctx, http.MethodGet, endpoint, nil, &out)
	return out, err
}

func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "healthz", nil, nil)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
	Details map[string]any  `json:"details"`
}

func (c *Client) do(ctx context.Context, method, endpoint string, body any, out any) error {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: c.Timeout}
	}
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, c.url(endpoint), &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.BearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.BearerToken)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	var env envelope
	decodeErr := json.Unmarshal(raw, &env)
	if resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Body: string(raw)}
		if decodeErr == nil {
			apiErr.Code = env.Code
			apiErr.Message = env.Error
			apiErr.Details = env.Details
		}
		return apiErr
	}
	if decodeErr != nil {
		return fmt.Errorf("decode response: %w", decodeErr)
	}
	if out != nil && len(env.Data) > 0 {
		return json.Unmarshal(env.Data, out)
	}
	return nil
}

func (c *Client) url(endpoint string) string {
	base := strings.TrimRight(c.BaseURL, "/")
	prefix := "/" + strings.Trim(c.BasePath, "/")
	if prefix == "/" {
		prefix = ""
	}
	return base + prefix + "/" + strings.TrimLeft(endpoint, "/")
}
