package main

import (
	"io"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/klauspost/compress/gzip"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"golang.org/x/sync/errgroup"

	istanbul "github.com/canyon-project/istanbul-sourcemap"
	"github.com/canyon-project/istanbul-sourcemap/coverage"
)

// stdinPath names standard input among the input files.
const stdinPath = "-"

func isGzip(path string) bool {
	return strings.HasSuffix(path, ".gz")
}

// readCoverage reads one coverage JSON file. Files ending in .gz are
// decompressed.
func readCoverage(path string, stdin io.Reader) (coverage.CoverageMap, error) {
	r := stdin
	if path != stdinPath {
		f, err := os.Open(path)
		if err != nil {
			return nil, &istanbul.Error{Kind: istanbul.KindBoundary, Path: path, Err: err}
		}
		defer f.Close()
		r = f
	}
	if isGzip(path) {
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, &istanbul.Error{Kind: istanbul.KindBoundary, Path: path, Err: errors.Wrap(err, "could not create gzip reader")}
		}
		defer zr.Close()
		r = zr
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &istanbul.Error{Kind: istanbul.KindBoundary, Path: path, Err: err}
	}
	m, err := coverage.Parse(data)
	if err != nil {
		return nil, &istanbul.Error{Kind: istanbul.KindParse, Path: path, Err: err}
	}
	return m, nil
}

// loadInputs reads all input files concurrently and combines them into one
// coverage map. Without paths, standard input is read.
func (a *app) loadInputs(paths []string, stdin io.Reader) (coverage.CoverageMap, error) {
	if len(paths) == 0 {
		paths = []string{stdinPath}
	}
	if n := countOf(paths, stdinPath); n > 1 {
		return nil, errors.Newf("standard input given %d times", n)
	}

	inputs := make([]coverage.CoverageMap, len(paths))
	var g errgroup.Group
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			m, err := readCoverage(path, stdin)
			if err != nil {
				return err
			}
			inputs[i] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return a.combine(paths, inputs), nil
}

// combine merges the inputs in order. An entry seen in an earlier input wins
// over later ones.
func (a *app) combine(paths []string, inputs []coverage.CoverageMap) coverage.CoverageMap {
	out := coverage.CoverageMap{}
	for i, m := range inputs {
		keys := maps.Keys(m)
		slices.Sort(keys)
		for _, k := range keys {
			if _, ok := out[k]; ok {
				a.log.WithField("file", k).Warnf("Duplicate coverage entry in %s ignored.", paths[i])
				continue
			}
			out[k] = m[k]
		}
	}
	return out
}

// writeCoverage writes m as JSON to path, or to stdout if path is empty or
// "-". Paths ending in .gz are compressed.
func writeCoverage(path string, m coverage.CoverageMap, stdout io.Writer) error {
	data, err := coverage.Marshal(m)
	if err != nil {
		return &istanbul.Error{Kind: istanbul.KindBoundary, Path: path, Err: err}
	}
	data = append(data, '\n')

	if path == "" || path == stdinPath {
		_, err := stdout.Write(data)
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return &istanbul.Error{Kind: istanbul.KindBoundary, Path: path, Err: err}
	}
	var w io.Writer = f
	var zw *gzip.Writer
	if isGzip(path) {
		zw = gzip.NewWriter(f)
		w = zw
	}
	if _, err := w.Write(data); err != nil {
		f.Close()
		return &istanbul.Error{Kind: istanbul.KindBoundary, Path: path, Err: err}
	}
	if zw != nil {
		if err := zw.Close(); err != nil {
			f.Close()
			return &istanbul.Error{Kind: istanbul.KindBoundary, Path: path, Err: err}
		}
	}
	if err := f.Close(); err != nil {
		return &istanbul.Error{Kind: istanbul.KindBoundary, Path: path, Err: err}
	}
	return nil
}

func countOf(ss []string, s string) int {
	n := 0
	for _, x := range ss {
		if x == s {
			n++
		}
	}
	return n
}
