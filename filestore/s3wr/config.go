package s3wr

import "time"

// Config defines the configuration options for the S3 client.
type Config struct {
	// Region is the AWS region of the bucket.
	Region string `yaml:"region" default:"us-east-1"`

	// Endpoint overrides the service endpoint, e.g. for S3-compatible stores.
	Endpoint string `yaml:"endpoint"`

	AccessKey string `yaml:"access_key" validate:"required"`
	SecretKey string `yaml:"secret_key" validate:"required" mask:"true"`

	// Bucket is the bucket holding direct-storage files.
	Bucket string `yaml:"bucket" validate:"required"`

	// UsePathStyle addresses objects as endpoint/bucket/key instead of bucket.endpoint/key.
	UsePathStyle bool `yaml:"use_path_style" default:"false"`

	// URLExpiry is the lifetime of presigned download URLs handed back after upload.
	URLExpiry time.Duration `yaml:"url_expiry" default:"24h"`
}
