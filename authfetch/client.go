// Package authfetch performs HTTP calls with a bearer token sourced from the
// auth bridge.
package authfetch

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/jrsteele09/go-patient-portal/authbridge"
	"github.com/rs/zerolog"
)

const (
	headerContentType   = "Content-Type"
	headerAuthorization = "Authorization"
	contentTypeJSON     = "application/json"
)

// TokenSource is satisfied by *authbridge.Bridge.
type TokenSource interface {
	GetAccessToken(ctx context.Context) (string, error)
}

// RequestInit carries the request options of a single Fetch call.
type RequestInit struct {
	Method  string
	Body    io.Reader
	Headers http.Header
}

type Client struct {
	tokens     TokenSource
	httpClient *http.Client
	logger     zerolog.Logger
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

func New(tokens TokenSource, options ...Option) *Client {
	c := &Client{
		tokens:     tokens,
		httpClient: http.DefaultClient,
		logger:     zerolog.Nop(),
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// Fetch performs one request. The response is returned as is; status handling
// and body decoding are up to the caller. Nothing is retried.
func (c *Client) Fetch(ctx context.Context, endpoint string, init RequestInit) (*http.Response, error) {
	token, err := c.tokens.GetAccessToken(ctx)
	if err != nil {
		return nil, err
	}

	method := init.Method
	if method == "" {
		method = http.MethodGet
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, init.Body)
	if err != nil {
		return nil, fmt.Errorf("[authfetch Fetch] failed to build request: %w", err)
	}

	req.Header.Set(headerContentType, contentTypeJSON)
	if token != "" {
		req.Header.Set(headerAuthorization, "Bearer "+token)
	}
	// Caller headers win.
	for key, values := range init.Headers {
		req.Header.Del(key)
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	c.logger.Debug().Str("method", method).Str("endpoint", endpoint).Bool("authenticated", token != "").Msg("fetch")
	return c.httpClient.Do(req)
}

// Fetch calls the remote endpoint with a token from authbridge.Default.
func Fetch(ctx context.Context, endpoint string, init RequestInit) (*http.Response, error) {
	return New(authbridge.Default).Fetch(ctx, endpoint, init)
}
