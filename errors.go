package tagfix

import (
	"errors"

	"github.com/simonhull/tagfix/internal/types"
)

// OutOfBoundsError is an alias to types.OutOfBoundsError.
type OutOfBoundsError = types.OutOfBoundsError

// UnsupportedFormatError is an alias to types.UnsupportedFormatError.
type UnsupportedFormatError = types.UnsupportedFormatError

// CorruptedFileError is an alias to types.CorruptedFileError.
type CorruptedFileError = types.CorruptedFileError

// UnsupportedWriteError is an alias to types.UnsupportedWriteError.
type UnsupportedWriteError = types.UnsupportedWriteError

// Warning is an alias to types.Warning.
type Warning = types.Warning

// IsUnreadable reports whether err means the file could not be read as
// audio: an unknown container or a malformed one. Other errors (missing
// file, permissions, write failures) report false.
func IsUnreadable(err error) bool {
	var unsupported *UnsupportedFormatError
	var corrupted *CorruptedFileError
	var bounds *OutOfBoundsError
	return errors.As(err, &unsupported) || errors.As(err, &corrupted) || errors.As(err, &bounds)
}
