// Package istanbul rewrites Istanbul coverage collected on generated
// JavaScript into coverage of the original sources, using the source map
// embedded in each coverage record as inputSourceMap.
//
// Records that resolve into the same original file are merged, so coverage
// of several bundles built from one source combines into a single report.
// Records without a source map pass through untouched.
package istanbul

import (
	"fmt"
	"runtime"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
	log "github.com/sirupsen/logrus"

	"github.com/canyon-project/istanbul-sourcemap/coverage"
	"github.com/canyon-project/istanbul-sourcemap/internal/remap"
)

// Version of the library.
const Version = "0.1.0"

// defaultCacheSize bounds the decoded source maps a Remapper keeps around.
const defaultCacheSize = 64

// Transform remaps m with the default, strict settings: the first source map
// that fails to decode aborts the call with a KindDecode *Error.
func Transform(m coverage.CoverageMap) (coverage.CoverageMap, error) {
	s, err := remap.NewStore(remap.Options{})
	if err != nil {
		return nil, classify(err, KindBoundary)
	}
	res, err := s.Transform(m)
	if err != nil {
		return nil, classify(err, KindBoundary)
	}
	return res.Coverage, nil
}

// TransformJSON parses coverage JSON, remaps it and returns the result as
// indented JSON.
func TransformJSON(input string) (string, error) {
	return transformJSON(input, Transform)
}

func transformJSON(input string, transform func(coverage.CoverageMap) (coverage.CoverageMap, error)) (string, error) {
	if !utf8.ValidString(input) {
		return "", &Error{Kind: KindBoundary, Err: errors.New("input is not valid UTF-8")}
	}
	m, err := coverage.Parse([]byte(input))
	if err != nil {
		return "", classify(err, KindParse)
	}
	out, err := transform(m)
	if err != nil {
		return "", err
	}
	data, err := coverage.Marshal(out)
	if err != nil {
		return "", classify(err, KindBoundary)
	}
	return string(data), nil
}

// Options configure a Remapper.
type Options struct {
	// Lenient passes files whose source maps fail to decode through
	// unmapped, instead of failing the whole transform.
	Lenient bool
	// CacheSize is the number of decoded source maps kept for reuse between
	// calls. Zero disables caching.
	CacheSize int
	// Logger receives progress notices. Defaults to the logrus standard logger.
	Logger log.FieldLogger
}

// Result of Remapper.Transform.
type Result struct {
	Coverage coverage.CoverageMap
	// Skipped holds a KindDecode *Error for every file passed through in
	// lenient mode.
	Skipped []error
}

// Remapper transforms coverage, reusing decoded source maps between calls.
// A Remapper must not be used by several goroutines at once.
type Remapper struct {
	store *remap.Store
}

// New creates a Remapper with strict error handling and a small cache.
func New() *Remapper {
	r, err := NewWithOptions(Options{CacheSize: defaultCacheSize})
	if err != nil {
		panic(err)
	}
	return r
}

// NewWithOptions creates a Remapper.
func NewWithOptions(opts Options) (*Remapper, error) {
	if opts.CacheSize < 0 {
		return nil, &Error{Kind: KindBoundary, Err: errors.Newf("negative cache size %d", opts.CacheSize)}
	}
	s, err := remap.NewStore(remap.Options{
		Lenient:   opts.Lenient,
		CacheSize: opts.CacheSize,
		Logger:    opts.Logger,
	})
	if err != nil {
		return nil, classify(err, KindBoundary)
	}
	return &Remapper{store: s}, nil
}

// Transform remaps m. Unless the Remapper is lenient, the first source map
// that fails to decode aborts the call with a KindDecode *Error.
func (r *Remapper) Transform(m coverage.CoverageMap) (*Result, error) {
	res, err := r.store.Transform(m)
	if err != nil {
		return nil, classify(err, KindBoundary)
	}
	out := &Result{Coverage: res.Coverage}
	for _, err := range res.Skipped {
		out.Skipped = append(out.Skipped, classify(err, KindDecode))
	}
	return out, nil
}

// TransformCoverage is like TransformJSON.
func (r *Remapper) TransformCoverage(input string) (string, error) {
	return transformJSON(input, func(m coverage.CoverageMap) (coverage.CoverageMap, error) {
		res, err := r.Transform(m)
		if err != nil {
			return nil, err
		}
		return res.Coverage, nil
	})
}

// GetVersion returns the library version.
func (r *Remapper) GetVersion() string { return Version }

// GetPlatform returns the operating system and architecture the library was
// built for, as "GOOS/GOARCH".
func (r *Remapper) GetPlatform() string {
	return Platform()
}

// Platform returns "GOOS/GOARCH" of the running binary.
func Platform() string {
	return fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)
}
