package transfer_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/code19m/errx"
	"github.com/stretchr/testify/require"

	"github.com/rise-and-shine/filexfer/filestore"
	"github.com/rise-and-shine/filexfer/httpx"
	"github.com/rise-and-shine/filexfer/observability/logger"
	"github.com/rise-and-shine/filexfer/transfer"
)

const testServerURL = "https://api.example.com/1"

var errNetwork = errors.New("dial tcp: connection refused")

// fakeClient counts requests and answers them with handler.
type fakeClient struct {
	mu      sync.Mutex
	calls   int
	reqs    []*httpx.Request
	handler func(ctx context.Context, req *httpx.Request) (*httpx.Response, error)
}

func newFakeClient(handler func(ctx context.Context, req *httpx.Request) (*httpx.Response, error)) *fakeClient {
	return &fakeClient{handler: handler}
}

func (f *fakeClient) Execute(ctx context.Context, req *httpx.Request) (*httpx.Response, error) {
	f.mu.Lock()
	f.calls++
	f.reqs = append(f.reqs, req)
	f.mu.Unlock()

	if f.handler == nil {
		return nil, errNetwork
	}
	return f.handler(ctx, req)
}

func (f *fakeClient) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeClient) LastRequest() *httpx.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.reqs) == 0 {
		return nil
	}
	return f.reqs[len(f.reqs)-1]
}

func alwaysFail(context.Context, *httpx.Request) (*httpx.Response, error) {
	return nil, errNetwork
}

func respond(status int, body string) *httpx.Response {
	return &httpx.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		TotalSize:  int64(len(body)),
	}
}

// readBody drains the request body the way a transport would.
func readBody(t *testing.T, req *httpx.Request) []byte {
	t.Helper()
	rc, _, err := req.OpenBody()
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	return data
}

func fastRetry() transfer.RetryConfig {
	return transfer.RetryConfig{
		MaxAttempts:  5,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
	}
}

func newController(t *testing.T, client httpx.Client, root string, opts ...transfer.Option) *transfer.Controller {
	t.Helper()
	base := []transfer.Option{
		transfer.WithServerURL(testServerURL),
		transfer.WithRetry(fastRetry()),
		transfer.WithLogger(logger.Nop()),
	}
	c, err := transfer.New(client, root, append(base, opts...)...)
	require.NoError(t, err)
	return c
}

func requireEmptyDir(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func cancelledContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	return ctx
}

// memStore is an in-memory filestore.FileStore.
type memStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{objects: map[string][]byte{}}
}

func (m *memStore) Upload(
	_ context.Context,
	key string,
	r io.Reader,
	opts filestore.UploadOptions,
) (*filestore.FileInfo, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	return &filestore.FileInfo{Key: key, Size: int64(len(data)), ContentType: opts.ContentType}, nil
}

func (m *memStore) Get(_ context.Context, key string) (*filestore.File, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	if !ok {
		return nil, errx.New("file not found", errx.WithCode(filestore.CodeFileNotFound))
	}
	return &filestore.File{
		Content: io.NopCloser(bytes.NewReader(data)),
		Info:    filestore.FileInfo{Key: key, Size: int64(len(data))},
	}, nil
}

func (m *memStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *memStore) Exists(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[key]
	return ok, nil
}

func (m *memStore) URL(_ context.Context, key string) (string, error) {
	return "https://storage.example.com/bucket/" + key, nil
}
