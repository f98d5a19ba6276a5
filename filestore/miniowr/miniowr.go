// Package miniowr provides a MinIO implementation of the filestore.FileStore interface.
package miniowr

import (
	"bytes"
	"context"
	"io"
	"net/url"
	"time"

	"github.com/code19m/errx"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/rise-and-shine/filexfer/filestore"
)

// Client implements the filestore.FileStore interface using MinIO.
type Client struct {
	client    *minio.Client
	bucket    string
	urlExpiry time.Duration
}

// New creates a new MinIO filestore client.
func New(cfg Config) (*Client, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, errx.Wrap(err)
	}

	expiry := cfg.URLExpiry
	if expiry <= 0 {
		expiry = defaultURLExpiry
	}

	return &Client{
		client:    client,
		bucket:    cfg.Bucket,
		urlExpiry: expiry,
	}, nil
}

// Upload stores the reader under key.
// When no content type is given it is sniffed from the content, which
// requires buffering the whole object.
func (c *Client) Upload(
	ctx context.Context,
	key string,
	reader io.Reader,
	opts filestore.UploadOptions,
) (*filestore.FileInfo, error) {
	contentType := opts.ContentType
	size := opts.Size

	if contentType == "" {
		data, err := io.ReadAll(reader)
		if err != nil {
			return nil, errx.Wrap(err)
		}
		contentType = filestore.DetectContentType(data)
		size = int64(len(data))
		reader = bytes.NewReader(data)
	}

	info, err := c.client.PutObject(ctx, c.bucket, key, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return nil, errx.Wrap(err)
	}

	return &filestore.FileInfo{
		Key:          key,
		Size:         info.Size,
		ContentType:  contentType,
		ETag:         info.ETag,
		LastModified: info.LastModified,
	}, nil
}

// Get retrieves an object and its metadata.
func (c *Client) Get(ctx context.Context, key string) (*filestore.File, error) {
	obj, err := c.client.GetObject(ctx, c.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, errx.Wrap(c.wrapMinioError(err))
	}

	stat, err := obj.Stat()
	if err != nil {
		_ = obj.Close()
		return nil, errx.Wrap(c.wrapMinioError(err))
	}

	return &filestore.File{
		Content: obj,
		Info: filestore.FileInfo{
			Key:          key,
			Size:         stat.Size,
			ContentType:  stat.ContentType,
			ETag:         stat.ETag,
			LastModified: stat.LastModified,
		},
	}, nil
}

// Delete removes the object under key.
func (c *Client) Delete(ctx context.Context, key string) error {
	err := c.client.RemoveObject(ctx, c.bucket, key, minio.RemoveObjectOptions{})
	if err != nil {
		return errx.Wrap(c.wrapMinioError(err))
	}
	return nil
}

// Exists checks if an object exists under key.
func (c *Client) Exists(ctx context.Context, key string) (bool, error) {
	_, err := c.client.StatObject(ctx, c.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		errResp := minio.ToErrorResponse(err)
		if errResp.Code == codeNoSuchKey {
			return false, nil
		}
		return false, errx.Wrap(err)
	}
	return true, nil
}

// URL returns a presigned GET url valid for the configured expiry.
func (c *Client) URL(ctx context.Context, key string) (string, error) {
	u, err := c.client.PresignedGetObject(ctx, c.bucket, key, c.urlExpiry, url.Values{})
	if err != nil {
		return "", errx.Wrap(err)
	}
	return u.String(), nil
}

// wrapMinioError converts MinIO errors to filestore error codes.
func (c *Client) wrapMinioError(err error) error {
	errResp := minio.ToErrorResponse(err)
	if errResp.Code == codeNoSuchKey {
		return errx.New("file not found", errx.WithCode(filestore.CodeFileNotFound))
	}
	return errx.Wrap(err)
}

const (
	codeNoSuchKey    = "NoSuchKey"
	defaultURLExpiry = 24 * time.Hour
)
