package miniowr

import "time"

// Config defines the configuration options for MinIO client.
type Config struct {
	// Endpoint is the MinIO server endpoint (e.g., "localhost:9000").
	Endpoint string `yaml:"endpoint" validate:"required"`

	// AccessKey is the access key for authentication.
	AccessKey string `yaml:"access_key" validate:"required"`

	// SecretKey is the secret key for authentication.
	SecretKey string `yaml:"secret_key" validate:"required" mask:"true"`

	// Bucket is the bucket holding direct-storage files.
	Bucket string `yaml:"bucket" validate:"required"`

	// Region avoids a bucket location lookup before presigning.
	Region string `yaml:"region" default:"us-east-1"`

	// UseSSL enables HTTPS connection to MinIO server.
	UseSSL bool `yaml:"use_ssl" default:"false"`

	// URLExpiry is the lifetime of presigned download URLs handed back after upload.
	URLExpiry time.Duration `yaml:"url_expiry" default:"24h"`
}
