package http

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/net/http2"
)

// maxResponseBody caps how much of an upstream body is read into memory
const maxResponseBody = 8 << 20

// ClientConfig holds configuration for the HTTP client
type ClientConfig struct {
	// Timeout is a ceiling for every request; per-call deadlines come from the context
	Timeout            time.Duration
	InsecureSkipVerify bool
	EnableHTTP2        bool
	UserAgent          string
}

// DefaultClientConfig returns the default HTTP client configuration
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Timeout:            300 * time.Second,
		InsecureSkipVerify: false, // Only set to true in development
		EnableHTTP2:        true,
		UserAgent:          "superset-embed",
	}
}

// Client provides a wrapper around http.Client with improved error handling
type Client struct {
	client *http.Client
	config ClientConfig
}

// NewClient creates a new HTTP client
func NewClient(config ClientConfig) (*Client, error) {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: config.InsecureSkipVerify,
		},
	}

	if config.EnableHTTP2 {
		if err := http2.ConfigureTransport(transport); err != nil {
			return nil, fmt.Errorf("failed to configure HTTP/2 transport: %w", err)
		}
	}

	client := &http.Client{
		Transport: transport,
		Timeout:   config.Timeout,
	}

	return &Client{
		client: client,
		config: config,
	}, nil
}

// Request makes an HTTP request and returns the response
func (c *Client) Request(ctx context.Context, method, url string, body []byte, headers map[string]string) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}

	// Set default Content-Type if not provided
	if _, exists := headers["Content-Type"]; !exists && body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}

	// Set headers
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send HTTP request: %w", err)
	}

	return resp, nil
}

// ReadResponseBody reads and closes the response body
func (c *Client) ReadResponseBody(resp *http.Response) ([]byte, error) {
	if resp == nil {
		return nil, fmt.Errorf("response is nil")
	}

	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return body, nil
}
