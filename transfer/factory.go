package transfer

import (
	"context"

	"github.com/code19m/errx"

	"github.com/rise-and-shine/filexfer/filestore"
	"github.com/rise-and-shine/filexfer/filestore/miniowr"
	"github.com/rise-and-shine/filexfer/filestore/s3wr"
	"github.com/rise-and-shine/filexfer/httpx"
)

// NewFromConfig builds a Controller with a net/http client for the primary
// API and the direct-storage backend selected by cfg.Storage.Driver.
// opts are applied after the ones derived from cfg.
func NewFromConfig(ctx context.Context, cfg Config, opts ...Option) (*Controller, error) {
	primary := httpx.NewClient(httpx.ClientConfig{
		Timeout:        cfg.RequestTimeout,
		DisableTracing: cfg.Tracing.Disable,
	})

	store, err := NewFileStore(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}

	base := []Option{
		WithServerURL(cfg.ServerURL),
		WithRetry(cfg.Retry),
	}
	if store != nil {
		base = append(base, WithStorageClient(filestore.NewClient(store)))
	}

	return New(primary, cfg.CacheDir, append(base, opts...)...)
}

// NewFileStore returns the FileStore selected by cfg.Driver, or nil for
// DriverNone.
func NewFileStore(ctx context.Context, cfg StorageConfig) (filestore.FileStore, error) {
	switch cfg.Driver {
	case "", DriverNone:
		return nil, nil //nolint:nilnil // no direct-storage backend
	case DriverMinio:
		if cfg.Minio == nil {
			return nil, errMissingStorageConfig(cfg.Driver)
		}
		store, err := miniowr.New(*cfg.Minio)
		if err != nil {
			return nil, errx.Wrap(err)
		}
		return store, nil
	case DriverS3:
		if cfg.S3 == nil {
			return nil, errMissingStorageConfig(cfg.Driver)
		}
		store, err := s3wr.New(ctx, *cfg.S3)
		if err != nil {
			return nil, errx.Wrap(err)
		}
		return store, nil
	default:
		return nil, errx.New("[transfer]: unknown storage driver",
			errx.WithType(errx.T_Validation),
			errx.WithDetails(errx.D{"driver": cfg.Driver}),
		)
	}
}

func errMissingStorageConfig(driver string) error {
	return errx.New("[transfer]: storage driver is not configured",
		errx.WithType(errx.T_Validation),
		errx.WithDetails(errx.D{"driver": driver}),
	)
}
