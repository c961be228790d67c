package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"hrmportal/internal/platform/metrics"
	"hrmportal/internal/requestctx"
)

const (
	apiPrefix      = "/api"
	maxErrorBody   = 64 << 10
	defaultTimeout = 30 * time.Second
)

// Client sends JSON requests to the HRM REST API. It attaches the current
// bearer token, tags every request with an X-Request-ID and turns non-2xx
// responses into *Error. It never retries.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	metrics *metrics.Collector
	logger  *slog.Logger

	mu             sync.RWMutex
	tokens         func() string
	onUnauthorized func(token string, err error)
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http = &http.Client{Timeout: d, Transport: c.http.Transport}
		}
	}
}

// WithRateLimit throttles outbound requests to perSecond with the given burst.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Client) {
		if perSecond <= 0 {
			return
		}
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

func WithMetrics(collector *metrics.Collector) Option {
	return func(c *Client) { c.metrics = collector }
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func WithTokenSource(tokens func() string) Option {
	return func(c *Client) { c.tokens = tokens }
}

func New(baseURL string, opts ...Option) (*Client, error) {
	parsed, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("parse api url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("api url %q must be http or https", baseURL)
	}
	base := strings.TrimRight(parsed.String(), "/")
	if !strings.HasSuffix(base, apiPrefix) {
		base += apiPrefix
	}

	c := &Client{
		baseURL: base,
		http:    &http.Client{Timeout: defaultTimeout},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// SetTokenSource swaps the token provider. The session store is built on top
// of a client, so it registers itself after construction.
func (c *Client) SetTokenSource(tokens func() string) {
	c.mu.Lock()
	c.tokens = tokens
	c.mu.Unlock()
}

// OnUnauthorized registers the hook run when a request that carried a token
// comes back 401. The hook receives the token that was rejected.
func (c *Client) OnUnauthorized(fn func(token string, err error)) {
	c.mu.Lock()
	c.onUnauthorized = fn
	c.mu.Unlock()
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

type requestOptions struct {
	token     *string
	query     url.Values
	header    http.Header
	anonymous bool
}

type RequestOption func(*requestOptions)

// WithToken sends tok instead of the token source's current value.
func WithToken(tok string) RequestOption {
	return func(o *requestOptions) { o.token = &tok }
}

// Anonymous sends no Authorization header.
func Anonymous() RequestOption {
	return func(o *requestOptions) { o.anonymous = true }
}

func WithQuery(query url.Values) RequestOption {
	return func(o *requestOptions) {
		if o.query == nil {
			o.query = url.Values{}
		}
		for key, values := range query {
			for _, v := range values {
				if v != "" {
					o.query.Add(key, v)
				}
			}
		}
	}
}

func WithHeader(key, value string) RequestOption {
	return func(o *requestOptions) {
		if o.header == nil {
			o.header = http.Header{}
		}
		o.header.Set(key, value)
	}
}

func (c *Client) Get(ctx context.Context, path string, out any, opts ...RequestOption) error {
	return c.DoJSON(ctx, http.MethodGet, path, nil, out, opts...)
}

func (c *Client) Post(ctx context.Context, path string, body, out any, opts ...RequestOption) error {
	return c.DoJSON(ctx, http.MethodPost, path, body, out, opts...)
}

func (c *Client) Put(ctx context.Context, path string, body, out any, opts ...RequestOption) error {
	return c.DoJSON(ctx, http.MethodPut, path, body, out, opts...)
}

func (c *Client) Delete(ctx context.Context, path string, out any, opts ...RequestOption) error {
	return c.DoJSON(ctx, http.MethodDelete, path, nil, out, opts...)
}

// DoJSON encodes body as JSON (when non-nil) and decodes a 2xx response into
// out (when non-nil).
func (c *Client) DoJSON(ctx context.Context, method, path string, body, out any, opts ...RequestOption) error {
	var reader io.Reader
	contentType := ""
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
		contentType = "application/json"
	}

	resp, err := c.do(ctx, method, path, reader, contentType, opts...)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// Upload is one file part plus plain form fields.
type Upload struct {
	Field    string
	Filename string
	Content  io.Reader
	Fields   map[string]string
}

func (c *Client) Upload(ctx context.Context, path string, upload Upload, out any, opts ...RequestOption) error {
	if upload.Content == nil {
		return fmt.Errorf("upload %s: no content", path)
	}
	field := upload.Field
	if field == "" {
		field = "file"
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, value := range upload.Fields {
		if err := writer.WriteField(key, value); err != nil {
			return fmt.Errorf("upload %s: %w", path, err)
		}
	}
	part, err := writer.CreateFormFile(field, upload.Filename)
	if err != nil {
		return fmt.Errorf("upload %s: %w", path, err)
	}
	if _, err := io.Copy(part, upload.Content); err != nil {
		return fmt.Errorf("upload %s: %w", path, err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("upload %s: %w", path, err)
	}

	resp, err := c.do(ctx, http.MethodPost, path, &buf, writer.FormDataContentType(), opts...)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode upload %s: %w", path, err)
	}
	return nil
}

// File is a downloaded binary body.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

func (c *Client) Download(ctx context.Context, path string, opts ...RequestOption) (File, error) {
	resp, err := c.do(ctx, http.MethodGet, path, nil, "", opts...)
	if err != nil {
		return File{}, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return File{}, fmt.Errorf("download %s: %w", path, err)
	}
	file := File{ContentType: resp.Header.Get("Content-Type"), Data: data}
	if disposition := resp.Header.Get("Content-Disposition"); disposition != "" {
		if _, params, err := mime.ParseMediaType(disposition); err == nil {
			file.Name = params["filename"]
		}
	}
	return file, nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, opts ...RequestOption) (*http.Response, error) {
	var ro requestOptions
	for _, opt := range opts {
		opt(&ro)
	}

	target := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(ro.query) > 0 {
		target += "?" + ro.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", method, path, err)
	}
	_, requestID := requestctx.Ensure(ctx)
	req.Header.Set("X-Request-ID", requestID)
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for key, values := range ro.header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	token := ""
	if !ro.anonymous {
		if ro.token != nil {
			token = *ro.token
		} else {
			token = c.currentToken()
		}
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%s %s: %w", method, path, err)
		}
	}

	route := routeLabel(path)
	c.metrics.Start()
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.Record(method, route, 0, time.Since(start))
		c.logger.Debug("api request failed", "method", method, "path", path, "request_id", requestID, "err", err)
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	c.metrics.Record(method, route, resp.StatusCode, time.Since(start))
	c.logger.Debug("api request", "method", method, "path", path, "status", resp.StatusCode, "request_id", requestID)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}

	defer resp.Body.Close()
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if echoed := resp.Header.Get("X-Request-ID"); echoed != "" {
		requestID = echoed
	}
	apiErr := decodeError(resp.StatusCode, raw, requestID)

	if resp.StatusCode == http.StatusUnauthorized && token != "" {
		if hook := c.unauthorizedHook(); hook != nil {
			hook(token, apiErr)
		}
	}
	return nil, apiErr
}

func (c *Client) currentToken() string {
	c.mu.RLock()
	tokens := c.tokens
	c.mu.RUnlock()
	if tokens == nil {
		return ""
	}
	return tokens()
}

func (c *Client) unauthorizedHook() func(string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.onUnauthorized
}

// routeLabel keeps metric cardinality bounded: ids never reach the label.
func routeLabel(path string) string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return "/"
	}
	if i := strings.IndexByte(trimmed, '/'); i >= 0 {
		trimmed = trimmed[:i]
	}
	if i := strings.IndexByte(trimmed, '?'); i >= 0 {
		trimmed = trimmed[:i]
	}
	return "/" + trimmed
}
