// Package remap rewrites coverage recorded against generated files into
// coverage of the original sources named by their source maps.
package remap

import (
	"crypto/sha256"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	log "github.com/sirupsen/logrus"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/canyon-project/istanbul-sourcemap/coverage"
	"github.com/canyon-project/istanbul-sourcemap/internal/errorList"
	"github.com/canyon-project/istanbul-sourcemap/internal/sourcemapx"
)

// Options configure a Store.
type Options struct {
	// Lenient makes a file with an undecodable source map pass through
	// unmapped instead of failing the whole transform. The failures are
	// reported in Result.Skipped.
	Lenient bool
	// CacheSize is the number of decoded source maps kept for reuse by the
	// Store. Zero disables caching.
	CacheSize int
	// Logger receives progress notices. Defaults to the logrus standard logger.
	Logger log.FieldLogger
}

// Result of a transform.
type Result struct {
	Coverage coverage.CoverageMap
	// Skipped lists the files whose source maps failed to decode in lenient
	// mode. Always empty in strict mode.
	Skipped errorList.ErrorList
}

// Store transforms coverage maps. A Store holds no per-transform state, only
// the optional cache of decoded source maps, and must not be used by several
// goroutines at once.
type Store struct {
	opts  Options
	log   log.FieldLogger
	cache *lru.Cache[[sha256.Size]byte, *sourcemapx.Table]
}

// NewStore creates a Store.
func NewStore(opts Options) (*Store, error) {
	s := &Store{opts: opts, log: opts.Logger}
	if s.log == nil {
		s.log = log.StandardLogger()
	}
	if opts.CacheSize > 0 {
		cache, err := lru.New[[sha256.Size]byte, *sourcemapx.Table](opts.CacheSize)
		if err != nil {
			return nil, err
		}
		s.cache = cache
	}
	return s, nil
}

// Transform remaps every file in m that carries a source map, merging records
// that land in the same original file. Files without a source map, and files
// where nothing could be mapped, are passed through as they are.
//
// If no file carries a source map, m itself is returned.
func (s *Store) Transform(m coverage.CoverageMap) (*Result, error) {
	if !m.HasSourceMaps() {
		return &Result{Coverage: m}, nil
	}

	r := &run{files: map[string]*aggregator{}, log: s.log}
	var skipped errorList.ErrorList

	paths := maps.Keys(m)
	slices.Sort(paths)
	for _, path := range paths {
		fc := m[path]
		if fc == nil {
			continue
		}
		if fc.InputSourceMap == nil {
			r.passThrough(path, fc)
			continue
		}

		table, err := s.decode(fc.InputSourceMap)
		if err != nil {
			ferr := &FileError{Path: path, Err: err}
			if !s.opts.Lenient {
				return nil, ferr
			}
			s.log.WithField("file", path).Warnf("Skipped remapping: %s", err)
			skipped = skipped.Append(ferr)
			r.passThrough(path, fc)
			continue
		}

		if !processFile(fc, table, r) {
			s.log.WithField("file", path).Info("File ignored, nothing could be mapped.")
			r.passThrough(path, fc)
		}
	}

	return &Result{Coverage: r.output(), Skipped: skipped}, nil
}

// decode returns the decoded mappings of sm, from the cache if possible.
func (s *Store) decode(sm *coverage.SourceMap) (*sourcemapx.Table, error) {
	var key [sha256.Size]byte
	if s.cache != nil {
		key = cacheKey(sm)
		if t, ok := s.cache.Get(key); ok {
			return t, nil
		}
	}
	t, err := sourcemapx.DecodeMappings(sm.Mappings, sm.Sources, sm.Names, sourcemapx.Options{SourceRoot: sm.SourceRoot})
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Add(key, t)
	}
	return t, nil
}

// cacheKey hashes every source map field that affects decoding.
func cacheKey(sm *coverage.SourceMap) [sha256.Size]byte {
	h := sha256.New()
	for _, part := range []string{sm.SourceRoot, strings.Join(sm.Sources, "\x00"), strings.Join(sm.Names, "\x00"), sm.Mappings} {
		h.Write([]byte(part))
		h.Write([]byte{0xff})
	}
	var key [sha256.Size]byte
	copy(key[:], h.Sum(nil))
	return key
}

// run holds the aggregators of a single transform, keyed by normalized path.
type run struct {
	files map[string]*aggregator
	log   log.FieldLogger
}

// uniqueKey normalizes path separators so that Windows and POSIX spellings
// of a path share an aggregator.
func uniqueKey(path string) string {
	return strings.ReplaceAll(path, `\`, "/")
}

func (r *run) forSource(source string) *aggregator {
	key := uniqueKey(source)
	a, ok := r.files[key]
	if !ok {
		a = newAggregator(source)
		r.files[key] = a
	}
	return a
}

// output assembles the result keyed by each record's path. A passed-through
// record keyed by one name may carry the path of another destination; such
// records are merged rather than overwritten.
func (r *run) output() coverage.CoverageMap {
	keys := maps.Keys(r.files)
	slices.Sort(keys)

	owners := make(map[string]*aggregator, len(keys))
	out := make(coverage.CoverageMap, len(keys))
	for _, key := range keys {
		a := r.files[key]
		owner, ok := owners[a.fc.Path]
		if !ok {
			owners[a.fc.Path] = a
			out[a.fc.Path] = a.fc
			continue
		}
		r.log.WithField("file", key).Debugf("Merging into %s.", owner.fc.Path)
		owner.merge(a.fc)
	}
	return out
}

// passThrough adds an unmapped file to the output. If another file already
// claimed the same key, the records are merged into it.
func (r *run) passThrough(path string, fc *coverage.FileCoverage) {
	key := uniqueKey(path)
	a, ok := r.files[key]
	if !ok {
		r.files[key] = seededAggregator(fc)
		return
	}
	r.log.WithField("file", path).Debugf("Merging into %s.", a.fc.Path)
	a.merge(fc)
}
