package cfgloader

// Options holds configuration options for Load and MustLoad.
type Options struct {
	// Path is the YAML file to read. When empty it is derived from ENVIRONMENT.
	Path string

	// Silent disables printing the loaded (masked) config.
	Silent bool
}

// Option is a functional option for configuring Load behavior.
type Option func(*Options)

// WithPath reads the config from path instead of ./config/${ENVIRONMENT}.yaml.
func WithPath(path string) Option {
	return func(o *Options) {
		o.Path = path
	}
}

// WithSilent disables config logging to stdout.
func WithSilent() Option {
	return func(o *Options) {
		o.Silent = true
	}
}
