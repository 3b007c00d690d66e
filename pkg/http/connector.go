package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// maxErrorBody caps how much of a failed response body is kept in HTTPError.
const maxErrorBody = 512

type Connector struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

type ConnectorConfig struct {
	BaseURL string
	Logger  *zap.Logger
}

func NewConnector(config *ConnectorConfig, options ...HttpOpts) *Connector {
	return &Connector{
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		httpClient: newClient(options...),
		logger:     config.Logger,
	}
}

type RequestOpt func(*requestConfig)

type requestConfig struct {
	headers     map[string]string
	overrideURL string
	accept      string
}

func WithHeader(key, value string) RequestOpt {
	return func(c *requestConfig) {
		if c.headers == nil {
			c.headers = make(map[string]string)
		}
		c.headers[key] = value
	}
}

func WithURL(url string) RequestOpt {
	return func(c *requestConfig) {
		c.overrideURL = url
	}
}

// WithAccept replaces the default "application/json" Accept header.
func WithAccept(accept string) RequestOpt {
	return func(c *requestConfig) {
		c.accept = accept
	}
}

func (c *Connector) resolve(endpoint string, opts []RequestOpt) (string, *requestConfig) {
	cfg := &requestConfig{accept: "application/json"}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.overrideURL != "" {
		return cfg.overrideURL, cfg
	}
	return c.baseURL + endpoint, cfg
}

func (c *Connector) newJSONRequest(ctx context.Context, method, url string, reqBody any, cfg *requestConfig) (*http.Request, error) {
	var bodyReader io.Reader
	if reqBody != nil {
		jsonData, err := json.Marshal(reqBody)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
		// Attach payload to context for logging transport
		ctx = context.WithValue(ctx, payloadContextKey{}, jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", cfg.accept)
	for key, value := range cfg.headers {
		req.Header.Set(key, value)
	}

	return req, nil
}

// DoRequest sends a JSON request and decodes a JSON response into respBody.
func (c *Connector) DoRequest(ctx context.Context, method, endpoint string, reqBody, respBody any, opts ...RequestOpt) error {
	url, cfg := c.resolve(endpoint, opts)

	req, err := c.newJSONRequest(ctx, method, url, reqBody, cfg)
	if err != nil {
		return err
	}

	return c.execute(req, respBody)
}

// DoStream sends a JSON request and hands back the raw 2xx response without
// reading it. The caller owns resp.Body. Non-2xx responses are consumed and
// returned as *HTTPError.
func (c *Connector) DoStream(ctx context.Context, method, endpoint string, reqBody any, opts ...RequestOpt) (*http.Response, error) {
	url, cfg := c.resolve(endpoint, opts)

	req, err := c.newJSONRequest(ctx, method, url, reqBody, cfg)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}

	if !isSuccess(resp.StatusCode) {
		defer resp.Body.Close()
		return nil, newHTTPError(resp)
	}

	return resp, nil
}

// DoMultipartRequest performs a single multipart request
func (c *Connector) DoMultipartRequest(ctx context.Context, method, endpoint string, prepareBody func(*multipart.Writer) error, respBody any, opts ...RequestOpt) error {
	url, cfg := c.resolve(endpoint, opts)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	if err := prepareBody(writer); err != nil {
		return fmt.Errorf("prepare multipart body: %w", err)
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Accept", cfg.accept)
	for key, value := range cfg.headers {
		req.Header.Set(key, value)
	}

	return c.execute(req, respBody)
}

func (c *Connector) execute(req *http.Request, respBody any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return newHTTPError(resp)
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	if respBody != nil && len(bodyBytes) > 0 {
		if err := json.Unmarshal(bodyBytes, respBody); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}

	return nil
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

func newHTTPError(resp *http.Response) *HTTPError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &HTTPError{
		StatusCode: resp.StatusCode,
		Message:    strings.TrimSpace(string(body)),
	}
}

// HTTPError represents an HTTP error response
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// NetworkError represents a network-level error (connection, timeout, etc.)
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}
