// Package filestore provides an abstraction over object storage used as the
// alternate direct-storage backend.
//
// It defines a FileStore interface implemented by the MinIO (miniowr) and
// S3 (s3wr) subpackages, and a Client adapter that lets the transfer layer
// drive a FileStore through the same request/response descriptors it uses for
// the primary HTTP API.
package filestore

import (
	"context"
	"io"
	"time"
)

// FileStore defines the interface for object storage operations.
// Implementations must be safe for concurrent use.
type FileStore interface {
	// Upload stores the content of reader under key.
	// A negative opts.Size means the size is unknown.
	Upload(ctx context.Context, key string, reader io.Reader, opts UploadOptions) (*FileInfo, error)

	// Get retrieves an object and its metadata.
	// The caller is responsible for closing File.Content.
	// A missing object yields an error with CodeFileNotFound.
	Get(ctx context.Context, key string) (*File, error)

	// Delete removes the object under key.
	Delete(ctx context.Context, key string) error

	// Exists checks if an object exists under key.
	Exists(ctx context.Context, key string) (bool, error)

	// URL returns a location from which the object can be downloaded.
	URL(ctx context.Context, key string) (string, error)
}

// UploadOptions carries optional upload attributes.
type UploadOptions struct {
	Size        int64
	ContentType string
}

// File represents a stored object with its content and metadata.
type File struct {
	Content io.ReadCloser
	Info    FileInfo
}

// FileInfo contains metadata about a stored object.
type FileInfo struct {
	Key          string
	Size         int64
	ContentType  string
	ETag         string
	LastModified time.Time
}
