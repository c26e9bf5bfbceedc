package sourcemapx

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

var (
	// ErrInvalidChar is a kind of DecodeError returned when a segment contains
	// a character outside of the base64 alphabet.
	ErrInvalidChar = errors.New("invalid base64 character")
	// ErrTruncated is a kind of DecodeError returned when a VLQ value ends
	// with the continuation bit still set.
	ErrTruncated = errors.New("truncated VLQ value")
	// ErrOverflow is a kind of DecodeError returned when the magnitude of a
	// VLQ value exceeds math.MaxInt32.
	ErrOverflow = errors.New("VLQ value overflows 32 bits")
	// ErrOffset is a kind of DecodeError returned when DecodeVLQ is asked to
	// start at a negative offset.
	ErrOffset = errors.New("negative offset")
	// ErrFieldCount is a kind of DecodeError returned when a segment has a
	// number of fields other than 1, 4 or 5.
	ErrFieldCount = errors.New("invalid number of segment fields")
)

// DecodeError describes a malformed segment in source map mappings.
type DecodeError struct {
	Line    int    // 0-based generated line of the segment.
	Segment string // Raw text of the offending segment.
	Offset  int    // Offset within Segment where decoding failed.
	Err     error  // One of the Err* kinds above.
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("mappings line %d, segment %q at offset %d: %s", e.Line, e.Segment, e.Offset, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
