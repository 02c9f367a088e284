package format

import (
	"errors"
	"fmt"
)

var (
	// ErrSignatureMismatch indicates a structure had an unexpected magic.
	ErrSignatureMismatch = errors.New("format: signature mismatch")
	// ErrUnsupportedVersion indicates a version other than 1.
	ErrUnsupportedVersion = errors.New("format: unsupported version")
	// ErrInvalidHeader indicates a header field out of its legal range.
	ErrInvalidHeader = errors.New("format: invalid header field")
	// ErrInvalidGeometry indicates an inverted layer bounding box.
	ErrInvalidGeometry = errors.New("format: invalid layer geometry")
	// ErrLimit indicates a count or size from the file exceeds the configured limits.
	ErrLimit = errors.New("format: limit exceeded")
	// ErrUnsupported indicates the structure or feature is not supported.
	ErrUnsupported = errors.New("format: unsupported feature")
)

// DecodeError attaches the structure name and absolute offset to a
// decoding failure.
type DecodeError struct {
	Structure string
	Offset    int64
	Err       error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s at offset %d: %v", e.Structure, e.Offset, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func decodeErr(structure string, offset int64, err error, format string, args ...any) error {
	if format != "" {
		err = fmt.Errorf("%w: "+format, append([]any{err}, args...)...)
	}
	return &DecodeError{Structure: structure, Offset: offset, Err: err}
}

// within wraps cursor failures with the structure being decoded so the
// caller sees "layer record 3: read u32 at offset ...".
func within(structure string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", structure, err)
}
