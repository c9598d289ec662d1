package upload

// OptionConfig holds configuration for a single upload via functional
// options.
type OptionConfig struct {
	// Region overrides the gateway's default region for this upload
	Region string

	// ContentType overrides content-type detection
	ContentType string

	// ProgressTracker receives transfer progress updates
	ProgressTracker ProgressTracker
}

// Option is a functional option for configuring a single upload.
type Option func(*OptionConfig)

// WithRegion overrides the gateway's default region for one upload.
func WithRegion(region string) Option {
	return func(c *OptionConfig) {
		if region != "" {
			c.Region = region
		}
	}
}

// WithContentType sets the content type for one upload, bypassing
// detection.
func WithContentType(contentType string) Option {
	return func(c *OptionConfig) {
		c.ContentType = contentType
	}
}

// WithProgress sets a progress tracker for one upload.
func WithProgress(tracker ProgressTracker) Option {
	return func(c *OptionConfig) {
		c.ProgressTracker = tracker
	}
}

func applyOptions(opts []Option) *OptionConfig {
	config := &OptionConfig{}
	for _, opt := range opts {
		opt(config)
	}
	return config
}
