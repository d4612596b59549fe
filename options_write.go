package tagfix

// SaveOption configures behavior when saving audio files.
//
// Example:
//
//	err := file.Save(
//	    tagfix.WithPreserveModTime(),
//	    tagfix.WithValidation(),
//	)
type SaveOption func(*saveOptions)

// saveOptions holds configuration for saving files.
type saveOptions struct {
	validate        bool // Re-read after write to verify
	preserveModTime bool // Keep original modification time
}

// defaultSaveOptions returns the default configuration for saving.
func defaultSaveOptions() *saveOptions {
	return &saveOptions{}
}

// WithValidation re-reads the file after writing to verify integrity.
//
// After saving, the file is re-opened and its Title and Artist are compared
// with the values that were written.
func WithValidation() SaveOption {
	return func(o *saveOptions) {
		o.validate = true
	}
}

// WithPreserveModTime keeps the original file modification time.
//
// By default, saving updates the file's modification time to the current
// time. This option preserves the original modification time.
func WithPreserveModTime() SaveOption {
	return func(o *saveOptions) {
		o.preserveModTime = true
	}
}
