package transfer_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rise-and-shine/filexfer/filestate"
	"github.com/rise-and-shine/filexfer/transfer"
)

func TestUploadRequest(t *testing.T) {
	tests := []struct {
		name      string
		state     filestate.State
		payload   []byte
		wantURL   string
		wantKey   string
		wantCType string
	}{
		{
			name:      "hosted with mime type",
			state:     filestate.NewBuilder().Name("report.pdf").MimeType("application/pdf").Build(),
			payload:   []byte("data"),
			wantURL:   "https://api.example.com/1/files/report.pdf",
			wantCType: "application/pdf",
		},
		{
			name:      "hosted without name",
			state:     filestate.NewBuilder().Build(),
			payload:   []byte("\x89PNG\r\n\x1a\n0000"),
			wantURL:   "https://api.example.com/1/files/file",
			wantCType: "image/png",
		},
		{
			name:      "hosted name is escaped",
			state:     filestate.NewBuilder().Name("my file.txt").MimeType("text/plain").Build(),
			payload:   []byte("data"),
			wantURL:   "https://api.example.com/1/files/my%20file.txt",
			wantCType: "text/plain",
		},
		{
			name:      "direct storage",
			state:     filestate.NewBuilder().Name("a.bin").StorageKey("bucket/a.bin").Build(),
			payload:   nil,
			wantKey:   "bucket/a.bin",
			wantCType: "application/octet-stream",
		},
	}

	builder := transfer.NewBuilder(testServerURL, func(h http.Header) {
		h.Set("Authorization", "Bearer token")
	})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := builder.UploadRequest(tt.state, transfer.BytesPayload(tt.payload))
			require.NoError(t, err)

			assert.Equal(t, http.MethodPost, req.Method)
			assert.Equal(t, tt.wantURL, req.URL)
			assert.Equal(t, tt.wantKey, req.StorageKey)
			assert.Equal(t, tt.wantCType, req.ContentType)
			assert.Equal(t, "Bearer token", req.Header.Get("Authorization"))
			assert.Equal(t, tt.payload, readBody(t, req))
		})
	}
}

func TestUploadRequestMissingFile(t *testing.T) {
	builder := transfer.NewBuilder(testServerURL, nil)
	state := filestate.NewBuilder().Name("missing").Build()

	_, err := builder.UploadRequest(state, transfer.FilePayload("/does/not/exist"))
	require.Error(t, err)
	assert.False(t, transfer.IsConnectionFailed(err))
}

func TestUploadRequestWithoutServerURL(t *testing.T) {
	builder := transfer.NewBuilder("", nil)
	state := filestate.NewBuilder().Name("a").MimeType("text/plain").Build()

	_, err := builder.UploadRequest(state, transfer.BytesPayload([]byte("a")))
	require.Error(t, err)
	assert.True(t, transfer.IsConnectionFailed(err))
}

func TestDownloadRequest(t *testing.T) {
	builder := transfer.NewBuilder(testServerURL, nil)

	hosted := filestate.NewBuilder().Name("a").URL("https://cdn.example.com/a").Build()
	req, err := builder.DownloadRequest(hosted)
	require.NoError(t, err)
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "https://cdn.example.com/a", req.URL)
	assert.Empty(t, req.StorageKey)
	assert.Nil(t, req.Body)

	direct := filestate.NewBuilder().Name("a").StorageKey("k/a").Build()
	req, err = builder.DownloadRequest(direct)
	require.NoError(t, err)
	assert.Equal(t, "k/a", req.StorageKey)

	_, err = builder.DownloadRequest(filestate.NewBuilder().Name("a").Build())
	require.Error(t, err)
	assert.True(t, transfer.IsConnectionFailed(err))
}
