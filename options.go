package tagfix

// Option configures behavior when opening audio files.
//
// Options use the functional options pattern for clean, extensible APIs.
//
// Example:
//
//	file, err := tagfix.Open("song.flac",
//	    tagfix.WithStrictParsing(),
//	)
type Option func(*openOptions)

// openOptions holds configuration for opening files.
type openOptions struct {
	strictParsing  bool // Fail on any warning
	ignoreWarnings bool // Suppress all warnings
}

// defaultOptions returns the default configuration.
func defaultOptions() *openOptions {
	return &openOptions{}
}

// WithStrictParsing treats any warning as a fatal error.
//
// By default, tagfix keeps going when it meets problems such as an
// undecodable frame, returning warnings alongside the tags it could read.
// With strict parsing enabled, the first warning fails Open.
func WithStrictParsing() Option {
	return func(o *openOptions) {
		o.strictParsing = true
	}
}

// WithIgnoreWarnings suppresses all warnings.
//
// File.Warnings will always be empty.
func WithIgnoreWarnings() Option {
	return func(o *openOptions) {
		o.ignoreWarnings = true
	}
}
