package atomicfile

import "errors"

var (
	// ErrInvalidPath is returned when a path is empty.
	ErrInvalidPath = errors.New("atomicfile: invalid path")

	// ErrInvalidBackupCount is returned when a negative backup count is configured.
	ErrInvalidBackupCount = errors.New("atomicfile: invalid backup count")

	// ErrEncode is returned when the codec cannot serialize a document.
	ErrEncode = errors.New("atomicfile: encode failed")

	// ErrDecode is returned when a file exists but the codec cannot parse it.
	ErrDecode = errors.New("atomicfile: decode failed")
)

// IsInvalidPath returns true if the error is or wraps ErrInvalidPath.
func IsInvalidPath(err error) bool {
	return errors.Is(err, ErrInvalidPath)
}

// IsInvalidBackupCount returns true if the error is or wraps ErrInvalidBackupCount.
func IsInvalidBackupCount(err error) bool {
	return errors.Is(err, ErrInvalidBackupCount)
}

// IsEncode returns true if the error is or wraps ErrEncode.
func IsEncode(err error) bool {
	return errors.Is(err, ErrEncode)
}

// IsDecode returns true if the error is or wraps ErrDecode.
func IsDecode(err error) bool {
	return errors.Is(err, ErrDecode)
}
