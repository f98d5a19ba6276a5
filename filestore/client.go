package filestore

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/code19m/errx"

	"github.com/rise-and-shine/filexfer/httpx"
)

// Client adapts a FileStore to httpx.Client so direct-storage transfers go
// through the same retrying runner as the primary HTTP API.
//
// GET maps to Get, POST and PUT map to Upload followed by a JSON reply of the
// form {"name": ..., "url": ...}. Missing objects become 404 responses and
// unsupported methods 405 responses. Other store errors are returned as
// transport errors so the runner may retry them.
type Client struct {
	store FileStore
}

// NewClient wraps store.
func NewClient(store FileStore) *Client {
	return &Client{store: store}
}

type uploadReply struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Execute implements httpx.Client.
func (c *Client) Execute(ctx context.Context, req *httpx.Request) (*httpx.Response, error) {
	if req.StorageKey == "" {
		return statusResponse(http.StatusBadRequest, "storage key is required"), nil
	}

	switch req.Method {
	case http.MethodGet:
		return c.get(ctx, req.StorageKey)
	case http.MethodPost, http.MethodPut:
		return c.upload(ctx, req)
	default:
		return statusResponse(http.StatusMethodNotAllowed, CodeUnsupportedMethod), nil
	}
}

func (c *Client) get(ctx context.Context, key string) (*httpx.Response, error) {
	file, err := c.store.Get(ctx, key)
	if errx.IsCodeIn(err, CodeFileNotFound) {
		return statusResponse(http.StatusNotFound, CodeFileNotFound), nil
	}
	if err != nil {
		return nil, errx.Wrap(err)
	}

	return &httpx.Response{
		StatusCode:  http.StatusOK,
		Body:        file.Content,
		TotalSize:   file.Info.Size,
		ContentType: file.Info.ContentType,
	}, nil
}

func (c *Client) upload(ctx context.Context, req *httpx.Request) (*httpx.Response, error) {
	body, size, err := req.OpenBody()
	if err != nil {
		return nil, errx.Wrap(err)
	}
	defer body.Close()

	if req.Body == nil {
		size = 0
	}

	info, err := c.store.Upload(ctx, req.StorageKey, body, UploadOptions{
		Size:        size,
		ContentType: req.ContentType,
	})
	if err != nil {
		return nil, errx.Wrap(err)
	}

	url, err := c.store.URL(ctx, info.Key)
	if err != nil {
		return nil, errx.Wrap(err)
	}

	reply, err := json.Marshal(uploadReply{Name: path.Base(info.Key), URL: url})
	if err != nil {
		return nil, errx.Wrap(err)
	}

	return &httpx.Response{
		StatusCode:  http.StatusOK,
		Body:        io.NopCloser(bytes.NewReader(reply)),
		TotalSize:   int64(len(reply)),
		ContentType: httpx.ContentTypeJSON,
	}, nil
}

func statusResponse(status int, msg string) *httpx.Response {
	return &httpx.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(msg)),
		TotalSize:  int64(len(msg)),
	}
}
