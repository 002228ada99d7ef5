// Package client talks to the task REST API. One method per endpoint, no
// retries: callers decide what to do with a failure.
package client

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
)

const DefaultBaseURL = "http://127.0.0.1:5000"

type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// WithToken returns a copy of c that sends token as a bearer credential.
// The copy shares the underlying http.Client.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.Token = token
	return &cp
}

func (c *Client) GetTasks(ctx context.Context, userID string) ([]Task, error) {
	q := url.Values{"userId": {userID}}
	var tasks []Task
	if err := c.do(ctx, http.MethodGet, "/api/tasks?"+q.Encode(), nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (c *Client) CreateTask(ctx context.Context, task NewTask) (*Task, error) {
	var created Task
	if err := c.do(ctx, http.MethodPost, "/api/tasks", task, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) UpdateTask(ctx context.Context, id ID, patch TaskPatch) (*Task, error) {
	var updated Task
	if err := c.do(ctx, http.MethodPut, taskPath(id), patch, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *Client) DeleteTask(ctx context.Context, id ID) error {
	return c.do(ctx, http.MethodDelete, taskPath(id), nil, nil)
}

func (c *Client) AddComment(ctx context.Context, taskID ID, text string) (*Task, error) {
	var task Task
	body := map[string]string{"text": text}
	if err := c.do(ctx, http.MethodPost, taskPath(taskID)+"/comments", body, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) UpdateComment(ctx context.Context, taskID, commentID ID, text string) (*Task, error) {
	var task Task
	body := map[string]string{"text": text}
	if err := c.do(ctx, http.MethodPut, commentPath(taskID, commentID), body, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) DeleteComment(ctx context.Context, taskID, commentID ID) (*Task, error) {
	var resp struct {
		Message string `json:"message"`
		Task    Task   `json:"task"`
	}
	if err := c.do(ctx, http.MethodDelete, commentPath(taskID, commentID), nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Task, nil
}

func (c *Client) Login(ctx context.Context, name string) (*LoginResult, error) {
	var res LoginResult
	if err := c.do(ctx, http.MethodPost, "/api/login", map[string]string{"name": name}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/check", nil, nil)
}

func taskPath(id ID) string {
	return "/api/tasks/" + url.PathEscape(string(id))
}

func commentPath(taskID, commentID ID) string {
	return taskPath(taskID) + "/comments/" + url.PathEscape(string(commentID))
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Status: resp.StatusCode, Message: errorMessage(raw)}
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}

// errorMessage pulls "message" or "error" out of an error body.
func errorMessage(raw []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return strings.TrimSpace(string(raw))
	}
	if body.Message != "" {
		return body.Message
	}
	return body.Error
}
