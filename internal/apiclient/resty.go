package apiclient

import (
	"context"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// restyTransport is the resty-backed Transport implementation. Resty's own
// retry machinery stays disabled: retrying is the engine's job, and a
// Transport performs exactly one call.
type restyTransport struct {
	client  *resty.Client
	timeout time.Duration
}

// NewRestyTransport returns a Transport backed by go-resty. Behavior is
// identical to the net/http transport; the implementation is selected at
// client construction via configuration.
func NewRestyTransport(baseURL string, timeout time.Duration) Transport {
	client := resty.New().
		SetBaseURL(baseURL).
		SetRetryCount(0).
		SetHeader("User-Agent", "worklens")
	return &restyTransport{client: client, timeout: timeout}
}

func (t *restyTransport) Execute(ctx context.Context, spec RequestSpec, headers map[string]string) (*ResponseEnvelope, error) {
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

	req := t.client.R().
		SetContext(ctx).
		SetHeaders(headers)
	if len(spec.Query) > 0 {
		req.SetQueryParamsFromValues(spec.Query)
	}
	if len(spec.Body) > 0 {
		req.SetBody(spec.Body)
		if _, ok := headers["Content-Type"]; !ok {
			req.SetHeader("Content-Type", "application/json")
		}
	}

	resp, err := req.Execute(method, spec.Path)
	if err != nil {
		return nil, classifyTransportError(spec.Path, err)
	}

	return &ResponseEnvelope{
		StatusCode: resp.StatusCode(),
		Header:     resp.Header(),
		Body:       resp.Body(),
		Elapsed:    resp.Time(),
	}, nil
}
