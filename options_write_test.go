package tagfix

import "testing"

func TestOptions(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		opts := defaultOptions()

		if opts.strictParsing || opts.ignoreWarnings {
			t.Errorf("expected all options off, got %+v", opts)
		}
	})

	t.Run("all options combined", func(t *testing.T) {
		opts := defaultOptions()
		for _, opt := range []Option{WithStrictParsing(), WithIgnoreWarnings()} {
			opt(opts)
		}

		if !opts.strictParsing || !opts.ignoreWarnings {
			t.Errorf("expected all options on, got %+v", opts)
		}
	})
}

func TestSaveOptions(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		opts := defaultSaveOptions()

		if opts.validate {
			t.Error("expected validate to be false")
		}
		if opts.preserveModTime {
			t.Error("expected preserveModTime to be false")
		}
	})

	t.Run("WithValidation", func(t *testing.T) {
		opts := defaultSaveOptions()
		WithValidation()(opts)

		if !opts.validate {
			t.Error("expected validate to be true")
		}
	})

	t.Run("WithPreserveModTime", func(t *testing.T) {
		opts := defaultSaveOptions()
		WithPreserveModTime()(opts)

		if !opts.preserveModTime {
			t.Error("expected preserveModTime to be true")
		}
	})
}
