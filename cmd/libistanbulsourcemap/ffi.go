package main

/*
#include <stdlib.h>
*/
import "C"

import (
	"unsafe"

	istanbul "github.com/canyon-project/istanbul-sourcemap"
)

// version is allocated once and lives as long as the process.
var version = C.CString(istanbul.Version)

//export transform_coverage_ffi
func transform_coverage_ffi(input *C.char) *C.char {
	if input == nil {
		return nil
	}
	out, ok := transformBuffer(C.GoString(input))
	if !ok {
		return nil
	}
	return C.CString(out)
}

//export free_string
func free_string(ptr *C.char) {
	if ptr != nil {
		C.free(unsafe.Pointer(ptr))
	}
}

//export get_version
func get_version() *C.char {
	return version
}
