// Package errorList collects the per-file failures of a coverage run into a
// single error.
package errorList

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// ErrTooManyErrors is added to the ErrorList by the Trim method.
var ErrTooManyErrors = errors.New("too many errors")

// ErrorList wraps multiple errors as a single error.
type ErrorList []error

// Error joins the messages of all errors in the list, one per line.
func (errs ErrorList) Error() string {
	if len(errs) == 0 {
		return "<no errors>"
	}
	msgs := make([]string, len(errs))
	for i, err := range errs {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "\n")
}

// ErrOrNil returns nil if ErrorList is empty, or the error otherwise.
func (errs ErrorList) ErrOrNil() error {
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Append an error to the list.
//
// If err is an instance of ErrorList, the lists are concatenated together,
// otherwise err is appended at the end of the list. If err is nil, the list is
// returned unmodified.
func (errs ErrorList) Append(err error) ErrorList {
	if err == nil {
		return errs
	}
	var list ErrorList
	if errors.As(err, &list) {
		return append(errs, list...)
	}
	return append(errs, err)
}

// Is reports whether any error in the list matches target, so that
// errors.Is can see through the list.
func (errs ErrorList) Is(target error) bool {
	for _, err := range errs {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// Trim the error list if it has more than limit errors. If the list is trimmed,
// all extraneous errors are replaced with a single ErrTooManyErrors, making the
// returned ErrorList length of limit+1. A non-positive limit disables trimming.
func (errs ErrorList) Trim(limit int) ErrorList {
	if limit <= 0 || len(errs) <= limit {
		return errs
	}

	return append(errs[:limit:limit], ErrTooManyErrors)
}
