package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// RequestError is returned for any non-2xx admin API response. For 4xx
// responses with a structured error body, Message carries the
// server-supplied text; otherwise it falls back to the HTTP status.
type RequestError struct {
	Status  int
	Message string
}

func (e *RequestError) Error() string {
	return e.Message
}

// IsClientError reports whether the error is a 4xx admin API rejection,
// as opposed to a transport failure or a server-side 5xx.
func IsClientError(err error) bool {
	var re *RequestError
	return errors.As(err, &re) && re.Status >= 400 && re.Status < 500
}

// Client makes authenticated REST calls to the admin API.
type Client struct {
	baseURL  string
	username string
	password string
	client   *http.Client
}

// NewClient creates a client targeting the given API root
// (e.g. "http://127.0.0.1:27780/api").
func NewClient(baseURL, username, password string) *Client {
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		username: username,
		password: password,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) put(ctx context.Context, path string, body, out interface{}) error {
	return c.do(ctx, http.MethodPut, path, body, out)
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.statusError(resp)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

// statusError maps a non-2xx response to a RequestError, preferring the
// message field of a structured error body when one is present.
func (c *Client) statusError(resp *http.Response) error {
	msg := resp.Status
	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		var body struct {
			Message string `json:"message"`
		}
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if json.Unmarshal(data, &body) == nil && body.Message != "" {
			msg = body.Message
		}
	}
	return &RequestError{Status: resp.StatusCode, Message: msg}
}
