package transfer

import (
	"time"

	"github.com/creasty/defaults"

	"github.com/rise-and-shine/filexfer/filestore/miniowr"
	"github.com/rise-and-shine/filexfer/filestore/s3wr"
	"github.com/rise-and-shine/filexfer/observability/logger"
	"github.com/rise-and-shine/filexfer/observability/tracing"
)

// Storage drivers for the alternate direct-storage backend.
const (
	DriverNone  = "none"
	DriverMinio = "minio"
	DriverS3    = "s3"
)

// Config is the complete configuration of a file transfer client.
type Config struct {
	// ServerURL is the base url of the primary HTTP API.
	// Uploads are posted to <ServerURL>/files/<name>.
	ServerURL string `yaml:"server_url" validate:"required,url"`

	// CacheDir is the local cache root. Empty disables caching.
	CacheDir string `yaml:"cache_dir"`

	// RequestTimeout bounds the wait for response headers of a single attempt
	// against the primary API. Body streaming is not limited by it.
	RequestTimeout time.Duration `yaml:"request_timeout" default:"30s"`

	Retry   RetryConfig    `yaml:"retry"`
	Storage StorageConfig  `yaml:"storage"`
	Logger  logger.Config  `yaml:"logger"`
	Tracing tracing.Config `yaml:"tracing"`
}

// RetryConfig controls the retry loop of the request runner.
type RetryConfig struct {
	// MaxAttempts is the total number of attempts, including the first one.
	MaxAttempts uint `yaml:"max_attempts" default:"5" validate:"min=1"`

	// InitialDelay is the wait before the second attempt. It doubles on
	// every further attempt.
	InitialDelay time.Duration `yaml:"initial_delay" default:"1s"`

	// MaxDelay caps the backoff between two attempts.
	MaxDelay time.Duration `yaml:"max_delay" default:"30s"`

	// RetryClientErrors makes 4xx responses retriable.
	RetryClientErrors bool `yaml:"retry_client_errors" default:"false"`
}

// StorageConfig selects and configures the direct-storage backend.
type StorageConfig struct {
	Driver string          `yaml:"driver" default:"none" validate:"oneof=none minio s3"`
	Minio  *miniowr.Config `yaml:"minio"  validate:"required_if=Driver minio"`
	S3     *s3wr.Config    `yaml:"s3"     validate:"required_if=Driver s3"`
}

// DefaultConfig returns a Config with every default applied.
// ServerURL is left empty.
func DefaultConfig() Config {
	var cfg Config
	defaults.MustSet(&cfg)
	return cfg
}

// DefaultRetryConfig returns the default retry policy: 5 attempts starting
// at 1s and doubling up to 30s.
func DefaultRetryConfig() RetryConfig {
	return DefaultConfig().Retry
}
