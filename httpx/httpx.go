// Package httpx defines the transport boundary used by the transfer layer.
//
// The transfer code never performs socket I/O itself. It builds a Request
// descriptor and hands it to a Client, which returns a Response descriptor or
// a transport-level error. The net/http based Client lives in client.go; the
// direct-storage backend provides another implementation in package filestore.
package httpx

import (
	"context"
	"io"
	"net/http"

	"github.com/code19m/errx"
)

const (
	MethodGet  = http.MethodGet
	MethodPost = http.MethodPost

	HeaderContentType = "Content-Type"

	ContentTypeJSON        = "application/json"
	ContentTypeOctetStream = "application/octet-stream"

	// UnknownSize is reported when the length of a body is not known.
	UnknownSize int64 = -1
)

// CodeBodyUnavailable is returned when the request body cannot be opened.
// The failure is local, so no bytes have been sent.
const CodeBodyUnavailable = "BODY_UNAVAILABLE"

// Client executes request descriptors.
// Implementations must honour ctx cancellation for in-flight requests when the
// underlying transport supports it, and must be safe for concurrent use.
type Client interface {
	Execute(ctx context.Context, req *Request) (*Response, error)
}

// ProgressFunc receives the cumulative number of bytes sent or received and
// the expected total (UnknownSize when not known).
type ProgressFunc func(done, total int64)

// Request describes one outbound call.
type Request struct {
	Method string
	URL    string

	// StorageKey addresses the object on the direct-storage backend.
	// It is empty for requests to the primary HTTP API.
	StorageKey string

	Header      http.Header
	Body        BodySource
	ContentType string

	// UploadProgress observes bytes of Body consumed by the transport.
	UploadProgress ProgressFunc
}

// OpenBody opens a fresh reader over the request body for one attempt.
// A request without a body yields http.NoBody.
func (r *Request) OpenBody() (io.ReadCloser, int64, error) {
	if r.Body == nil {
		return http.NoBody, 0, nil
	}

	rc, err := r.Body.Open()
	if err != nil {
		return nil, 0, errx.New("[httpx]: failed to open request body",
			errx.WithCode(CodeBodyUnavailable),
			errx.WithDetails(errx.D{"cause": err.Error()}),
		)
	}

	size := r.Body.Size()
	if r.UploadProgress != nil {
		rc = newProgressReader(rc, size, r.UploadProgress)
	}
	return rc, size, nil
}

// Response describes the reply to a Request.
// The caller owns Body and must close it.
type Response struct {
	StatusCode  int
	Body        io.ReadCloser
	TotalSize   int64
	ContentType string
}

// IsSuccess reports whether the status is in the 2xx class.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= http.StatusOK && r.StatusCode < http.StatusMultipleChoices
}

// Close releases the response body.
func (r *Response) Close() error {
	if r == nil || r.Body == nil {
		return nil
	}
	return r.Body.Close()
}

type progressReader struct {
	io.ReadCloser
	total int64
	done  int64
	fn    ProgressFunc
}

func newProgressReader(rc io.ReadCloser, total int64, fn ProgressFunc) *progressReader {
	return &progressReader{ReadCloser: rc, total: total, fn: fn}
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.ReadCloser.Read(b)
	if n > 0 {
		p.done += int64(n)
		p.fn(p.done, p.total)
	}
	return n, err
}
