// Command libistanbulsourcemap is built with -buildmode=c-shared to expose
// the remapper to other languages:
//
//	char* transform_coverage_ffi(const char* input);
//	void free_string(char* ptr);
//	const char* get_version();
//
// transform_coverage_ffi returns NULL on any failure. Every non-NULL result
// must be released with free_string. The get_version result must not be.
package main

import (
	log "github.com/sirupsen/logrus"

	istanbul "github.com/canyon-project/istanbul-sourcemap"
)

// transformBuffer remaps coverage JSON. Failures are only logged: the C side
// just sees NULL.
func transformBuffer(input string) (string, bool) {
	out, err := istanbul.TransformJSON(input)
	if err != nil {
		log.WithError(err).Debug("transform_coverage_ffi failed.")
		return "", false
	}
	return out, true
}

func main() {}
