// Package iss is a minimal client for the Moscow Exchange Informational & Statistical Server.
package iss

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/rxtech-lab/iss-candles/pkg/errors"
	"go.uber.org/zap"
)

// DefaultBaseURL is the public ISS endpoint.
const DefaultBaseURL = "https://iss.moex.com/iss"

// Document is a decoded ISS JSON response: block name to raw block.
type Document map[string]json.RawMessage

// Querier issues ISS queries.
type Querier interface {
	// Query requests {base}/{method}.json with params as the query string.
	Query(ctx context.Context, method string, params map[string]string) (Document, error)
}

// Client implements Querier over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the ISS base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithHTTPClient injects a custom http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates an ISS client. Without options it talks to DefaultBaseURL
// using http.DefaultClient.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: http.DefaultClient,
		logger:     zap.NewNop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// BuildURL returns the request URL for method and params.
func (c *Client) BuildURL(method string, params map[string]string) string {
	u := c.baseURL + "/" + strings.TrimLeft(method, "/") + ".json"

	if len(params) > 0 {
		q := url.Values{}
		for k, v := range params {
			q.Set(k, v)
		}

		u += "?" + q.Encode()
	}

	return u
}

// Query performs a single GET and decodes the body as a JSON object.
// Transport failures and non-2xx statuses return ErrCodeMarketDataFetchFailed,
// undecodable bodies return ErrCodeMarketDataDecodeFailed. Both are logged.
func (c *Client) Query(ctx context.Context, method string, params map[string]string) (Document, error) {
	fullURL := c.BuildURL(method, params)

	doc, err := c.get(ctx, fullURL)
	if err != nil {
		c.logger.Error("ISS query failed",
			zap.String("url", fullURL),
			zap.Stringer("code", errors.GetCode(err)),
			zap.Error(err),
		)

		return nil, err
	}

	return doc, nil
}

func (c *Client) get(ctx context.Context, fullURL string) (Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeMarketDataFetchFailed, "failed to create request", err)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeMarketDataFetchFailed, "failed to send request", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeMarketDataFetchFailed, "failed to read response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.Newf(errors.ErrCodeMarketDataFetchFailed, "unexpected status %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	var doc Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeMarketDataDecodeFailed, err, "failed to decode response (%d bytes)", len(body))
	}

	if doc == nil {
		return nil, errors.New(errors.ErrCodeMarketDataDecodeFailed, "response is not a JSON object")
	}

	return doc, nil
}

// Block decodes block name of doc into dst using json.Number for numbers.
func (d Document) Block(name string, dst any) error {
	raw, ok := d[name]
	if !ok {
		return errors.Newf(errors.ErrCodeMarketDataSchemaMismatch, "unexpected schema: block %q not found", name)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	if err := dec.Decode(dst); err != nil {
		return errors.Wrapf(errors.ErrCodeMarketDataSchemaMismatch, err, "unexpected schema: block %q", name)
	}

	return nil
}

