package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"

	"github.com/fivetwenty-io/awhere-client/internal/constants"
	"github.com/fivetwenty-io/awhere-client/pkg/awhere"
)

// Response is a completed exchange. Body is never nil.
type Response struct {
	StatusCode    int
	StatusMessage string
	Headers       http.Header
	Body          []byte
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Observer receives per-request measurements.
type Observer interface {
	ObserveRequest(method string, statusCode int, duration time.Duration)
	ObserveRetry(method string)
}

// Client sends wire requests and buffers their responses.
type Client struct {
	httpClient  *retryablehttp.Client
	logger      Logger
	debug       bool
	userAgent   string
	maxBodySize int64
	limiter     *rate.Limiter
	observer    Observer
}

// Option configures the client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(logger Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug enables request and response logging.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithRetryConfig configures transport retries for 5xx, 429 and connection
// errors. Zero retries is the default.
func WithRetryConfig(retryMax int, retryWaitMin, retryWaitMax time.Duration) Option {
	return func(c *Client) {
		c.httpClient.RetryMax = retryMax
		c.httpClient.RetryWaitMin = retryWaitMin
		c.httpClient.RetryWaitMax = retryWaitMax
	}
}

// WithRateLimit limits outgoing requests to rps per second.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			return
		}

		if burst < 1 {
			burst = 1
		}

		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithMaxBodySize overrides the response size limit.
func WithMaxBodySize(size int64) Option {
	return func(c *Client) {
		if size > 0 {
			c.maxBodySize = size
		}
	}
}

// WithObserver reports request measurements to observer.
func WithObserver(observer Observer) Option {
	return func(c *Client) {
		c.observer = observer
	}
}

// WithHTTPClient replaces the underlying net/http client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient.HTTPClient = httpClient
		}
	}
}

// NewClient creates a new transport client.
func NewClient(opts ...Option) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.Logger = nil
	retryClient.RetryMax = constants.DefaultRetryMax
	retryClient.RetryWaitMin = constants.DefaultRetryWaitMin
	retryClient.RetryWaitMax = constants.DefaultRetryWaitMax
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	client := &Client{
		httpClient:  retryClient,
		userAgent:   constants.DefaultUserAgent,
		maxBodySize: constants.MaxResponseBodySize,
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.logger != nil {
		retryClient.Logger = leveledLogger{client.logger}
	}

	retryClient.RequestLogHook = func(_ retryablehttp.Logger, req *http.Request, attempt int) {
		if attempt > 0 && client.observer != nil {
			client.observer.ObserveRetry(req.Method)
		}
	}

	return client
}

// Do builds req with params and sends it.
func (c *Client) Do(ctx context.Context, req *Request, params awhere.Params) (*Response, error) {
	wire, err := Build(req, params)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	return c.Send(ctx, wire)
}

// Send performs the exchange and buffers the body up to the size limit.
// Connection failures return an empty response alongside a *TransportError.
func (c *Client) Send(ctx context.Context, wire *WireRequest) (*Response, error) {
	empty := &Response{Body: []byte{}}

	if c.limiter != nil {
		err := c.limiter.Wait(ctx)
		if err != nil {
			return empty, c.transportError(wire, 0, nil, err)
		}
	}

	httpReq, err := c.newRequest(ctx, wire)
	if err != nil {
		return empty, c.transportError(wire, 0, nil, err)
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Request", map[string]interface{}{
			"method": wire.Method,
			"url":    wire.URL,
			"bytes":  len(wire.Body),
		})
	}

	start := time.Now()

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.observe(wire.Method, 0, start)

		return empty, c.transportError(wire, 0, nil, err)
	}

	defer func() { _ = httpResp.Body.Close() }()

	resp := &Response{
		StatusCode:    httpResp.StatusCode,
		StatusMessage: statusMessage(httpResp),
		Headers:       httpResp.Header,
		Body:          []byte{},
	}

	body, err := c.readBody(httpResp.Body)
	resp.Body = body

	c.observe(wire.Method, httpResp.StatusCode, start)

	if err != nil {
		return resp, c.transportError(wire, httpResp.StatusCode, body, err)
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Response", map[string]interface{}{
			"status":   httpResp.StatusCode,
			"bytes":    len(body),
			"duration": time.Since(start).String(),
		})
	}

	return resp, nil
}

func (c *Client) newRequest(ctx context.Context, wire *WireRequest) (*retryablehttp.Request, error) {
	var body interface{}
	if wire.Body != nil {
		body = wire.Body
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, wire.Method, wire.URL, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	for key, value := range wire.Headers {
		if key == "Content-Length" {
			continue
		}

		httpReq.Header.Set(key, value)
	}

	if httpReq.Header.Get("User-Agent") == "" && c.userAgent != "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}

	if wire.Auth != "" {
		username, password, _ := strings.Cut(wire.Auth, ":")
		httpReq.SetBasicAuth(username, password)
	}

	return httpReq, nil
}

// readBody stops reading as soon as the limit is passed.
func (c *Client) readBody(body io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(body, c.maxBodySize+1))
	if err != nil {
		return data, fmt.Errorf("reading response body: %w", err)
	}

	if int64(len(data)) > c.maxBodySize {
		return data[:c.maxBodySize], awhere.ErrBodyTooLarge
	}

	return data, nil
}

func (c *Client) transportError(wire *WireRequest, status int, body []byte, err error) error {
	if c.logger != nil && !errors.Is(err, context.Canceled) {
		c.logger.Warn("HTTP request failed", map[string]interface{}{
			"method": wire.Method,
			"url":    wire.URL,
			"status": status,
			"error":  err.Error(),
		})
	}

	if body == nil {
		body = []byte{}
	}

	return &awhere.TransportError{
		Method:     wire.Method,
		URL:        wire.URL,
		StatusCode: status,
		Body:       bytes.Clone(body),
		Err:        err,
	}
}

func (c *Client) observe(method string, status int, start time.Time) {
	if c.observer != nil {
		c.observer.ObserveRequest(method, status, time.Since(start))
	}
}

func statusMessage(resp *http.Response) string {
	// Status is "200 OK"; the reason phrase is what follows the code.
	if _, message, ok := strings.Cut(resp.Status, " "); ok {
		return message
	}

	return http.StatusText(resp.StatusCode)
}

// leveledLogger adapts Logger to retryablehttp's key/value logger.
type leveledLogger struct {
	logger Logger
}

func (l leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, fieldsFrom(keysAndValues))
}

func (l leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Info(msg, fieldsFrom(keysAndValues))
}

func (l leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, fieldsFrom(keysAndValues))
}

func (l leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn(msg, fieldsFrom(keysAndValues))
}

func fieldsFrom(keysAndValues []interface{}) map[string]interface{} {
	fields := make(map[string]interface{}, len(keysAndValues)/2)

	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			key = fmt.Sprint(keysAndValues[i])
		}

		fields[key] = keysAndValues[i+1]
	}

	return fields
}
