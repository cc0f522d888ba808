package apiclient

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// RequestSpec describes one HTTP request. It is immutable once built; the
// pagination engine copies it before attaching cursor parameters.
type RequestSpec struct {
	// Method is the HTTP method, GET when empty.
	Method string

	// Path is the endpoint path relative to the transport's base URL.
	Path string

	// Query holds the query parameters. Order is irrelevant.
	Query url.Values

	// Body is the raw request body, nil for body-less requests.
	Body []byte

	// Timeout overrides the transport's default per-request timeout when
	// positive.
	Timeout time.Duration
}

// ResponseEnvelope is the structured result of exactly one HTTP round trip.
type ResponseEnvelope struct {
	// StatusCode is the HTTP status code.
	StatusCode int

	// Header holds the response headers.
	Header http.Header

	// Body is the fully-read response body.
	Body []byte

	// Elapsed is the wall-clock duration of the round trip.
	Elapsed time.Duration
}

// Transport executes a single HTTP request. Implementations perform exactly
// one network call: no retries, no pagination awareness. Network-level
// failures are classified as KindNetwork, deadline expiry as KindTimeout;
// HTTP error statuses are returned inside the envelope for the caller to
// classify. This isolation keeps the retry policy and pagination engine
// testable against a fake Transport.
type Transport interface {
	Execute(ctx context.Context, spec RequestSpec, headers map[string]string) (*ResponseEnvelope, error)
}

// TransportFunc adapts a function to the Transport interface, mirroring
// http.HandlerFunc. Used by tests to fake upstream behavior.
type TransportFunc func(ctx context.Context, spec RequestSpec, headers map[string]string) (*ResponseEnvelope, error)

// Execute implements Transport.
func (f TransportFunc) Execute(ctx context.Context, spec RequestSpec, headers map[string]string) (*ResponseEnvelope, error) {
	return f(ctx, spec, headers)
}

// netTransport is the net/http-backed Transport implementation.
type netTransport struct {
	baseURL string
	timeout time.Duration
	client  *http.Client
}

// NewNetTransport returns a Transport backed by net/http. The timeout
// applies to the full round trip of each request unless the RequestSpec
// overrides it.
func NewNetTransport(baseURL string, timeout time.Duration) Transport {
	return &netTransport{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		timeout: timeout,
		client:  &http.Client{},
	}
}

func (t *netTransport) Execute(ctx context.Context, spec RequestSpec, headers map[string]string) (*ResponseEnvelope, error) {
	timeout := t.timeout
	if spec.Timeout > 0 {
		timeout = spec.Timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	method := spec.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if len(spec.Body) > 0 {
		body = bytes.NewReader(spec.Body)
	}

	req, err := http.NewRequestWithContext(ctx, method, joinURL(t.baseURL, spec.Path), body)
	if err != nil {
		return nil, NewError(KindValidation, "building request for %s: %v", spec.Path, err)
	}
	if len(spec.Query) > 0 {
		req.URL.RawQuery = spec.Query.Encode()
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	if len(spec.Body) > 0 && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := t.client.Do(req)
	if err != nil {
		return nil, classifyTransportError(spec.Path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifyTransportError(spec.Path, err)
	}

	return &ResponseEnvelope{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       raw,
		Elapsed:    time.Since(start),
	}, nil
}

// joinURL concatenates the base URL and a request path with exactly one
// separating slash.
func joinURL(base, path string) string {
	return base + "/" + strings.TrimPrefix(path, "/")
}

// classifyTransportError maps a failure below the HTTP layer to KindTimeout
// or KindNetwork.
func classifyTransportError(path string, err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return NewError(KindTimeout, "request to %s timed out", path)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return NewError(KindTimeout, "request to %s timed out", path)
	}
	if errors.Is(err, context.Canceled) {
		return NewError(KindNetwork, "request to %s canceled", path)
	}
	return NewError(KindNetwork, "request to %s failed: %v", path, err)
}
