package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultBaseURL is the Microsoft Graph v1.0 endpoint.
const DefaultBaseURL = "https://graph.microsoft.com/v1.0"

// FetchError is returned when a list or task retrieval fails. Any instance
// is fatal to the surrounding export; there is no partial-result recovery.
type FetchError struct {
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("graph: GET %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("graph: GET %s: unexpected status %d", e.URL, e.Status)
}

func (e *FetchError) Unwrap() error { return e.Err }

// envelope is the paginated collection wrapper Graph returns for every
// list endpoint. The nextLink is absent on the final page.
type envelope struct {
	Value    []json.RawMessage `json:"value"`
	NextLink string            `json:"@odata.nextLink"`
}

// Client issues authenticated, paginated reads against the To Do API.
type Client struct {
	http *resty.Client
}

// NewClient creates a client that authenticates every request with the
// given bearer token.
func NewClient(accessToken string) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(DefaultBaseURL).
			SetAuthToken(accessToken).
			SetHeader("Accept", "application/json").
			SetTimeout(30 * time.Second),
	}
}

// WithBaseURL points the client at a different Graph root, e.g. a test
// server.
func (c *Client) WithBaseURL(baseURL string) *Client {
	if baseURL != "" {
		c.http.SetBaseURL(baseURL)
	}
	return c
}

// Lists fetches every To Do list of the signed-in user.
func (c *Client) Lists(ctx context.Context) ([]TaskList, error) {
	items, err := c.fetchAll(ctx, "/me/todo/lists")
	if err != nil {
		return nil, err
	}
	lists := make([]TaskList, 0, len(items))
	for _, raw := range items {
		var l TaskList
		if err := json.Unmarshal(raw, &l); err != nil {
			return nil, fmt.Errorf("graph: decode task list: %w", err)
		}
		lists = append(lists, l)
	}
	return lists, nil
}

// Tasks fetches every task of the given list with its checklist items
// expanded.
func (c *Client) Tasks(ctx context.Context, listID string) ([]TodoTask, error) {
	path := fmt.Sprintf("/me/todo/lists/%s/tasks?$expand=checklistItems", url.PathEscape(listID))
	items, err := c.fetchAll(ctx, path)
	if err != nil {
		return nil, err
	}
	tasks := make([]TodoTask, 0, len(items))
	for _, raw := range items {
		var t TodoTask
		if err := json.Unmarshal(raw, &t); err != nil {
			return nil, fmt.Errorf("graph: decode task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

// fetchAll GETs the given URL and follows @odata.nextLink until the
// collection is exhausted, preserving arrival order across pages.
func (c *Client) fetchAll(ctx context.Context, u string) ([]json.RawMessage, error) {
	var items []json.RawMessage
	for u != "" {
		resp, err := c.http.R().SetContext(ctx).Get(u)
		if err != nil {
			return nil, &FetchError{URL: u, Err: err}
		}
		if !resp.IsSuccess() {
			return nil, &FetchError{URL: u, Status: resp.StatusCode()}
		}

		var page envelope
		if err := json.Unmarshal(resp.Body(), &page); err != nil {
			return nil, &FetchError{URL: u, Err: fmt.Errorf("decode response: %w", err)}
		}
		items = append(items, page.Value...)
		u = page.NextLink
	}
	return items, nil
}
