package remap

import "fmt"

// FileError reports a coverage file whose source map could not be decoded.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("failed to decode source map of %q: %s", e.Path, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }
