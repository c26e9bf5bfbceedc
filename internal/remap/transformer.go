package remap

import (
	"github.com/canyon-project/istanbul-sourcemap/coverage"
	"github.com/canyon-project/istanbul-sourcemap/internal/sourcemapx"
)

// resolver answers generated-to-original position queries. It is implemented
// by *sourcemapx.Table.
type resolver interface {
	OriginalPosition(line, column int) (sourcemapx.OriginalPosition, bool)
}

// mapping is a generated location translated into an original file.
type mapping struct {
	source string
	loc    coverage.Location
}

// mapLocation translates both ends of a generated location. It fails unless
// both ends resolve into the same original source.
func mapLocation(r resolver, loc coverage.Location) (mapping, bool) {
	start, ok := r.OriginalPosition(loc.Start.Line, loc.Start.Column)
	if !ok {
		return mapping{}, false
	}
	end, ok := r.OriginalPosition(loc.End.Line, loc.End.Column)
	if !ok {
		return mapping{}, false
	}
	if start.Source != end.Source {
		return mapping{}, false
	}
	return mapping{
		source: start.Source,
		loc: coverage.Location{
			Start: coverage.Position{Line: start.Line, Column: start.Column},
			End:   coverage.Position{Line: end.Line, Column: end.Column},
		},
	}, true
}

// destinations hands out the aggregator for a resolved source path, creating
// it on first use.
type destinations interface {
	forSource(source string) *aggregator
}

// processFile translates every record of fc through r and forwards the
// translated records to the aggregators of their original files. It reports
// whether anything was forwarded at all.
//
// Records that can't be placed in a single original file are dropped:
// statements whose ends resolve apart, functions whose declaration and body
// resolve apart, and branches whose alternatives span several files.
func processFile(fc *coverage.FileCoverage, r resolver, dst destinations) bool {
	changes := 0

	for id, loc := range fc.StatementMap {
		m, ok := mapLocation(r, loc)
		if !ok {
			continue
		}
		changes++
		dst.forSource(m.source).addStatement(m.loc, fc.S[id])
	}

	for id, fn := range fc.FnMap {
		decl, ok := mapLocation(r, fn.Decl)
		if !ok {
			continue
		}
		span, ok := mapLocation(r, fn.Loc)
		if !ok || span.source != decl.source {
			continue
		}
		changes++
		dst.forSource(decl.source).addFunction(fn.Name, decl.loc, span.loc, fc.F[id])
	}

	for id, b := range fc.BranchMap {
		if processBranch(b, fc.B[id], r, dst) {
			changes++
		}
	}

	return changes > 0
}

func processBranch(b coverage.BranchMeta, hits []int, r resolver, dst destinations) bool {
	var (
		source string
		locs   []coverage.Location
		mapped []int
	)
	for i, loc := range b.Locations {
		m, ok := mapLocation(r, loc)
		if !ok {
			continue
		}
		if len(locs) == 0 {
			source = m.source
		} else if m.source != source {
			return false
		}
		locs = append(locs, m.loc)
		h := 0
		if i < len(hits) {
			h = hits[i]
		}
		mapped = append(mapped, h)
	}
	if len(locs) == 0 {
		return false
	}

	summary := locs[0]
	if !b.Loc.Start.IsZero() {
		if m, ok := mapLocation(r, b.Loc); ok && m.source == source {
			summary = m.loc
		}
	}
	dst.forSource(source).addBranch(b.Type, summary, locs, mapped)
	return true
}
