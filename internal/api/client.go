package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// MaxResponseSize caps how much of a response body is read
const MaxResponseSize int64 = 1 << 20

// ErrResponseTooLarge is returned when a response body exceeds MaxResponseSize
var ErrResponseTooLarge = errors.New("response exceeds maximum allowed size")

const (
	maxAttempts  = 3
	retryBackoff = 50 * time.Millisecond
	tracerName   = "github.com/mark-chris/checklist/internal/api"
)

// Client handles communication with the checklist backend
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
	tracer     trace.Tracer
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger used for request diagnostics
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithTracerProvider sets where request spans are recorded
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Client) { c.tracer = tp.Tracer(tracerName) }
}

// NewClient creates a new API client
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: zap.NewNop(),
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend origin this client talks to
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// newRequest builds a request whose body can be replayed
func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body []byte, contentType string) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", contentType)
		req.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(body)), nil
		}
	}
	return req, nil
}

func (c *Client) newJSONRequest(ctx context.Context, method, path string, query url.Values, in any) (*http.Request, error) {
	var body []byte
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		body = data
	}
	return c.newRequest(ctx, method, path, query, body, "application/json")
}

// send issues req once (plus transport-level retries for idempotent
// methods), tracing and logging the exchange
func (c *Client) send(req *http.Request) (*http.Response, error) {
	ctx, span := c.tracer.Start(req.Context(), req.Method+" "+req.URL.Path,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", req.Method),
			attribute.String("url.path", req.URL.Path),
		),
	)
	defer span.End()

	req = req.WithContext(ctx)
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	fields := []zap.Field{
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.String("request_id", requestID),
	}

	resp, err := c.retryableRequest(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.Warn("request failed", append(fields, zap.Error(err))...)
		return nil, &NetworkError{Op: req.Method + " " + req.URL.Path, Err: err}
	}

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	if resp.StatusCode >= http.StatusBadRequest {
		span.SetStatus(codes.Error, http.StatusText(resp.StatusCode))
		c.logger.Debug("request returned error status", append(fields, zap.Int("status", resp.StatusCode))...)
	} else {
		c.logger.Debug("request completed", append(fields, zap.Int("status", resp.StatusCode))...)
	}
	return resp, nil
}

// retryableRequest retries idempotent requests on gateway errors.
// Mutating requests are sent exactly once.
func (c *Client) retryableRequest(req *http.Request) (*http.Response, error) {
	attempts := 1
	if isIdempotent(req.Method) {
		attempts = maxAttempts
	}

	var resp *http.Response
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			if req.GetBody != nil {
				body, bodyErr := req.GetBody()
				if bodyErr != nil {
					return nil, fmt.Errorf("failed to reset request body: %w", bodyErr)
				}
				req.Body = body
			}

			select {
			case <-req.Context().Done():
				return nil, req.Context().Err()
			case <-time.After(retryBackoff * time.Duration(1<<(attempt-2))):
			}
		}

		resp, err = c.httpClient.Do(req)
		if err != nil {
			if req.Context().Err() != nil || attempt == attempts {
				return nil, err
			}
			continue
		}

		if !isRetryableStatus(resp.StatusCode) || attempt == attempts {
			return resp, nil
		}
		drain(resp)
	}
	return resp, err
}

func isIdempotent(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

func isRetryableStatus(code int) bool {
	switch code {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, MaxResponseSize))
	_ = resp.Body.Close()
}

// readLimitedResponse reads at most maxSize bytes from r
func readLimitedResponse(r io.Reader, maxSize int64) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r, maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) > maxSize {
		return nil, ErrResponseTooLarge
	}
	return body, nil
}

// decodeResponse closes resp and decodes a 2xx body into out.
// Non-2xx responses become *Error.
func decodeResponse(resp *http.Response, out any) error {
	defer func() { _ = resp.Body.Close() }()

	body, err := readLimitedResponse(resp.Body, MaxResponseSize)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return parseError(resp.StatusCode, body)
	}

	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
