// Package api implements a client for the automation controller's REST API.
//
// All methods issue a single HTTP request and decode the JSON response. The
// client holds no job state of its own; callers own pagination and caching.
package api

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// TokenProvider returns the API token to use for a request. It is called on
// every request so rotated tokens are picked up without rebuilding the client.
type TokenProvider func() string

// Client is an HTTP client for the controller's v2 REST API.
type Client struct {
	base  *url.URL
	http  *http.Client
	token TokenProvider
}

// ListParams controls job list requests.
type ListParams struct {
	Page     int
	PageSize int
	OrderBy  string
	Filters  url.Values // extra query parameters, passed through verbatim
}

// New creates a client for the controller at host (e.g. "https://awx.example.com").
// token is consulted per request. insecure disables TLS certificate verification.
func New(host string, token TokenProvider, insecure bool) (*Client, error) {
	base, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("invalid host %q: %w", host, err)
	}
	if base.Scheme == "" {
		base.Scheme = "https"
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if insecure {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return &Client{
		base: base,
		http: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		token: token,
	}, nil
}

// BaseURL returns the configured server URL.
func (c *Client) BaseURL() *url.URL {
	u := *c.base
	return &u
}

// WebsocketURL returns the URL of the server's event websocket.
func (c *Client) WebsocketURL() string {
	u := *c.base
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	default:
		u.Scheme = "wss"
	}
	u.Path = "/websocket/"
	return u.String()
}

// JobURL returns the browsable URL for a job, for display and clipboard use.
func (c *Client) JobURL(id int) string {
	u := *c.base
	u.Path = fmt.Sprintf("/#/jobs/playbook/%d/output", id)
	return u.String()
}

// ListJobs fetches one page of unified jobs.
func (c *Client) ListJobs(ctx context.Context, params ListParams) (*JobPage, error) {
	q := url.Values{}
	if params.Page > 0 {
		q.Set("page", strconv.Itoa(params.Page))
	}
	if params.PageSize > 0 {
		q.Set("page_size", strconv.Itoa(params.PageSize))
	}
	if params.OrderBy != "" {
		q.Set("order_by", params.OrderBy)
	}
	for k, vs := range params.Filters {
		for _, v := range vs {
			q.Add(k, v)
		}
	}

	var page JobPage
	if err := c.get(ctx, "/api/v2/unified_jobs/", q, &page); err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	return &page, nil
}

// JobsByID fetches the given jobs in one request. Unknown ids are simply
// absent from the result; the order of the result is not defined.
func (c *Client) JobsByID(ctx context.Context, ids []int) ([]Job, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	q := url.Values{}
	q.Set("id__in", strings.Join(parts, ","))
	q.Set("page_size", strconv.Itoa(len(ids)))

	var page JobPage
	if err := c.get(ctx, "/api/v2/unified_jobs/", q, &page); err != nil {
		return nil, fmt.Errorf("failed to fetch jobs by id: %w", err)
	}
	return page.Results, nil
}

// Job fetches a single job by id.
func (c *Client) Job(ctx context.Context, id int) (*Job, error) {
	var job Job
	if err := c.get(ctx, fmt.Sprintf("/api/v2/jobs/%d/", id), nil, &job); err != nil {
		return nil, fmt.Errorf("failed to fetch job %d: %w", id, err)
	}
	return &job, nil
}

// JobEvents fetches one page of a job's stdout events, ordered by counter.
func (c *Client) JobEvents(ctx context.Context, jobID, page, pageSize int) (*EventPage, error) {
	q := url.Values{}
	q.Set("order_by", "counter")
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if pageSize > 0 {
		q.Set("page_size", strconv.Itoa(pageSize))
	}

	var events EventPage
	if err := c.get(ctx, fmt.Sprintf("/api/v2/jobs/%d/job_events/", jobID), q, &events); err != nil {
		return nil, fmt.Errorf("failed to fetch events for job %d: %w", jobID, err)
	}
	return &events, nil
}

// CancelJob requests cancellation of a running job.
func (c *Client) CancelJob(ctx context.Context, id int) error {
	if err := c.post(ctx, fmt.Sprintf("/api/v2/jobs/%d/cancel/", id), nil, nil); err != nil {
		return fmt.Errorf("failed to cancel job %d: %w", id, err)
	}
	return nil
}

// RelaunchJob relaunches a job and returns the new job.
func (c *Client) RelaunchJob(ctx context.Context, id int) (*Job, error) {
	var job Job
	if err := c.post(ctx, fmt.Sprintf("/api/v2/jobs/%d/relaunch/", id), nil, &job); err != nil {
		return nil, fmt.Errorf("failed to relaunch job %d: %w", id, err)
	}
	return &job, nil
}

// DeleteJob deletes a job record.
func (c *Client) DeleteJob(ctx context.Context, id int) error {
	if err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/v2/jobs/%d/", id), nil, nil, nil); err != nil {
		return fmt.Errorf("failed to delete job %d: %w", id, err)
	}
	return nil
}

// Ping checks connectivity and authentication against the API root.
func (c *Client) Ping(ctx context.Context) error {
	var out map[string]any
	if err := c.get(ctx, "/api/v2/me/", nil, &out); err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, q, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) do(ctx context.Context, method, path string, q url.Values, body, out any) error {
	u := *c.base
	u.Path = path
	if q != nil {
		u.RawQuery = q.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// StatusError is returned for non-2xx API responses.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("server returned %d", e.Code)
	}
	return fmt.Sprintf("server returned %d: %s", e.Code, e.Body)
}
