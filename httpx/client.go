package httpx

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/code19m/errx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// ClientConfig tunes the net/http based client.
type ClientConfig struct {
	// Timeout bounds the wait for response headers once the request body has
	// been written. Streaming the response body is bound only by ctx, so slow
	// downloads are not cut off. Zero means no timeout.
	Timeout time.Duration `yaml:"timeout" default:"30s"`

	// DisableTracing skips the otelhttp transport wrapper.
	DisableTracing bool `yaml:"disable_tracing" default:"false"`
}

//nolint:gochecknoglobals // shared transport template, cloned per client
var defaultTransport = &http.Transport{
	Proxy:                 http.ProxyFromEnvironment,
	MaxIdleConns:          100,
	MaxIdleConnsPerHost:   16,
	IdleConnTimeout:       90 * time.Second,
	TLSHandshakeTimeout:   10 * time.Second,
	ExpectContinueTimeout: 1 * time.Second,
	ForceAttemptHTTP2:     true,
	DialContext: (&net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}).DialContext,
}

// HTTPClient implements Client on top of net/http.
type HTTPClient struct {
	client *http.Client
}

// NewClient returns a Client with its own clone of the shared transport.
func NewClient(cfg ClientConfig) *HTTPClient {
	base := defaultTransport.Clone()
	base.ResponseHeaderTimeout = cfg.Timeout

	var transport http.RoundTripper = base
	if !cfg.DisableTracing {
		transport = otelhttp.NewTransport(transport)
	}

	return &HTTPClient{
		client: &http.Client{Transport: transport},
	}
}

// NewClientFrom wraps an existing *http.Client, e.g. one built by httptest.
func NewClientFrom(client *http.Client) *HTTPClient {
	return &HTTPClient{client: client}
}

// Execute sends req and returns the raw response. Non-2xx statuses are not
// errors at this level; classification belongs to the caller.
func (c *HTTPClient) Execute(ctx context.Context, req *Request) (*Response, error) {
	body, size, err := req.OpenBody()
	if err != nil {
		return nil, errx.Wrap(err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		_ = body.Close()
		return nil, errx.Wrap(err)
	}

	for key, values := range req.Header {
		for _, value := range values {
			httpReq.Header.Add(key, value)
		}
	}
	if req.ContentType != "" {
		httpReq.Header.Set(HeaderContentType, req.ContentType)
	}
	if req.Body != nil && size >= 0 {
		httpReq.ContentLength = size
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, errx.Wrap(err)
	}

	return &Response{
		StatusCode:  resp.StatusCode,
		Body:        resp.Body,
		TotalSize:   resp.ContentLength,
		ContentType: resp.Header.Get(HeaderContentType),
	}, nil
}
