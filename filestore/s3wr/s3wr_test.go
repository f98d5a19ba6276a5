package s3wr_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rise-and-shine/filexfer/filestore"
	"github.com/rise-and-shine/filexfer/filestore/s3wr"
)

var _ filestore.FileStore = (*s3wr.Client)(nil)

func TestURLIsPresigned(t *testing.T) {
	client, err := s3wr.New(t.Context(), s3wr.Config{
		Region:       "us-east-1",
		Endpoint:     "http://localhost:9000",
		AccessKey:    "access",
		SecretKey:    "secret",
		Bucket:       "files",
		UsePathStyle: true,
		URLExpiry:    15 * time.Minute,
	})
	require.NoError(t, err)

	url, err := client.URL(t.Context(), "users/1/photo.png")
	require.NoError(t, err)

	assert.Contains(t, url, "http://localhost:9000/files/users/1/photo.png")
	assert.Contains(t, url, "X-Amz-Signature=")
	assert.Contains(t, url, "X-Amz-Expires=900")
}
