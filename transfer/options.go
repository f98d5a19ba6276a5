package transfer

import (
	"github.com/rise-and-shine/filexfer/httpx"
	"github.com/rise-and-shine/filexfer/observability/logger"
)

// Option is a functional option for customizing a Controller.
type Option func(*options)

type options struct {
	serverURL  string
	storage    httpx.Client
	retry      RetryConfig
	classifier Classifier
	headers    HeaderFunc
	logger     logger.Logger
}

func defaultOptions() options {
	return options{
		retry: DefaultRetryConfig(),
	}
}

// WithServerURL sets the base url of the primary HTTP API.
// Default: "" (hosted uploads fail until set).
func WithServerURL(serverURL string) Option {
	return func(o *options) {
		o.serverURL = serverURL
	}
}

// WithStorageClient sets the client serving direct-storage files,
// usually a filestore.Client.
// Default: nil.
func WithStorageClient(client httpx.Client) Option {
	return func(o *options) {
		o.storage = client
	}
}

// WithRetry sets the retry policy.
// Default: DefaultRetryConfig().
func WithRetry(cfg RetryConfig) Option {
	return func(o *options) {
		o.retry = cfg
	}
}

// WithClassifier overrides the attempt classification.
// Default: DefaultClassifier(retry.RetryClientErrors).
func WithClassifier(classify Classifier) Option {
	return func(o *options) {
		o.classifier = classify
	}
}

// WithHeaders sets a hook adding headers to every request.
// Default: nil.
func WithHeaders(fn HeaderFunc) Option {
	return func(o *options) {
		o.headers = fn
	}
}

// WithLogger sets the logger.
// Default: the global logger named "transfer".
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}
