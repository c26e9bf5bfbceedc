package istanbul

import (
	"fmt"

	"github.com/cockroachdb/errors"

	"github.com/canyon-project/istanbul-sourcemap/internal/remap"
	"github.com/canyon-project/istanbul-sourcemap/internal/sourcemapx"
)

// Kind classifies an Error.
type Kind int

const (
	// KindParse means the coverage JSON itself was malformed.
	KindParse Kind = iota + 1
	// KindDecode means an embedded source map had malformed mappings.
	KindDecode
	// KindBoundary means the data could not cross an I/O or foreign-call
	// boundary, e.g. it was not valid UTF-8 or could not be encoded.
	KindBoundary
)

func (k Kind) String() string {
	switch k {
	case KindParse:
		return "parse"
	case KindDecode:
		return "decode"
	case KindBoundary:
		return "boundary"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Error is the error type returned by this package.
type Error struct {
	Kind Kind
	// Path is the file the error is about: the coverage entry whose source
	// map failed to decode, or the input file that failed to parse.
	Path string
	// Segment is the raw mappings segment that failed to decode. Only set for
	// KindDecode.
	Segment string
	Err     error
}

func (e *Error) Error() string {
	if e.Path != "" && e.Kind != KindDecode {
		return fmt.Sprintf("%s error in %s: %s", e.Kind, e.Path, e.Err)
	}
	return fmt.Sprintf("%s error: %s", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// classify wraps err into an *Error of the matching kind. Errors that are
// not decode failures get the fallback kind.
func classify(err error, fallback Kind) error {
	if err == nil {
		return nil
	}
	var ierr *Error
	if errors.As(err, &ierr) {
		return ierr
	}
	var ferr *remap.FileError
	if errors.As(err, &ferr) {
		e := &Error{Kind: KindDecode, Path: ferr.Path, Err: err}
		var derr *sourcemapx.DecodeError
		if errors.As(err, &derr) {
			e.Segment = derr.Segment
		}
		return e
	}
	return &Error{Kind: fallback, Err: err}
}
