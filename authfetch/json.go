package authfetch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// StatusError is returned by the JSON helpers for non-2xx responses.
type StatusError struct {
	Method     string
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.Endpoint, e.StatusCode)
}

// GetJSON fetches endpoint and decodes the JSON response into T.
func GetJSON[T any](ctx context.Context, c *Client, endpoint string) (T, error) {
	return doJSON[T](ctx, c, http.MethodGet, endpoint, nil, nil)
}

// PostJSON encodes body (when non-nil) and decodes the JSON response into Resp.
func PostJSON[Req any, Resp any](ctx context.Context, c *Client, endpoint string, body *Req, headers http.Header) (Resp, error) {
	return sendJSON[Req, Resp](ctx, c, http.MethodPost, endpoint, body, headers)
}

func PatchJSON[Req any, Resp any](ctx context.Context, c *Client, endpoint string, body *Req) (Resp, error) {
	return sendJSON[Req, Resp](ctx, c, http.MethodPatch, endpoint, body, nil)
}

func PutJSON[Req any, Resp any](ctx context.Context, c *Client, endpoint string, body *Req) (Resp, error) {
	return sendJSON[Req, Resp](ctx, c, http.MethodPut, endpoint, body, nil)
}

func sendJSON[Req any, Resp any](ctx context.Context, c *Client, method, endpoint string, body *Req, headers http.Header) (Resp, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			var zero Resp
			return zero, fmt.Errorf("[authfetch %s] failed to encode body: %w", method, err)
		}
		reader = bytes.NewReader(payload)
	}
	return doJSON[Resp](ctx, c, method, endpoint, reader, headers)
}

func doJSON[T any](ctx context.Context, c *Client, method, endpoint string, body io.Reader, headers http.Header) (T, error) {
	var result T

	resp, err := c.Fetch(ctx, endpoint, RequestInit{Method: method, Body: body, Headers: headers})
	if err != nil {
		return result, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return result, fmt.Errorf("[authfetch %s] failed to read response: %w", method, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return result, &StatusError{
			Method:     method,
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Body:       string(data),
		}
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return result, nil
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return result, fmt.Errorf("[authfetch %s] failed to decode response: %w", method, err)
	}
	return result, nil
}
