package remap

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/canyon-project/istanbul-sourcemap/coverage"
)

// locKey identifies a location for deduplication.
type locKey struct {
	startLine, startCol, endLine, endCol int
}

func keyOf(loc coverage.Location) locKey {
	return locKey{loc.Start.Line, loc.Start.Column, loc.End.Line, loc.End.Column}
}

// branchKey identifies a branch by the concatenation of its alternatives.
func branchKey(locs []coverage.Location) string {
	var b strings.Builder
	for i, loc := range locs {
		if i > 0 {
			b.WriteByte('|')
		}
		fmt.Fprintf(&b, "%d:%d:%d:%d", loc.Start.Line, loc.Start.Column, loc.End.Line, loc.End.Column)
	}
	return b.String()
}

// aggregator accumulates coverage records that resolved into a single
// destination file. Records with an identical location are merged and their
// hit counts summed, which is what lets several generated files built from
// one original file combine into a single report.
type aggregator struct {
	fc *coverage.FileCoverage

	statements map[locKey]int
	functions  map[locKey]int
	branches   map[string]int

	nextStatement int
	nextFunction  int
	nextBranch    int
}

func newAggregator(path string) *aggregator {
	return &aggregator{
		fc:         coverage.NewFileCoverage(path),
		statements: map[locKey]int{},
		functions:  map[locKey]int{},
		branches:   map[string]int{},
	}
}

// seededAggregator wraps a copy of an existing report. Its records are
// indexed so that mapped records arriving later merge into them, and new ids
// start past the existing numeric ones.
func seededAggregator(fc *coverage.FileCoverage) *aggregator {
	a := &aggregator{
		fc:         fc.Clone(),
		statements: map[locKey]int{},
		functions:  map[locKey]int{},
		branches:   map[string]int{},
	}
	for id, loc := range a.fc.StatementMap {
		if n, ok := numericID(id); ok {
			a.statements[keyOf(loc)] = n
			a.nextStatement = max(a.nextStatement, n+1)
		}
	}
	for id, fn := range a.fc.FnMap {
		if n, ok := numericID(id); ok {
			a.functions[keyOf(fn.Decl)] = n
			a.nextFunction = max(a.nextFunction, n+1)
		}
	}
	for id, b := range a.fc.BranchMap {
		if n, ok := numericID(id); ok {
			a.branches[branchKey(b.Locations)] = n
			a.nextBranch = max(a.nextBranch, n+1)
		}
	}
	return a
}

// numericID parses ids in the canonical form this package assigns them.
func numericID(id string) (int, bool) {
	n, err := strconv.Atoi(id)
	if err != nil || n < 0 || strconv.Itoa(n) != id {
		return 0, false
	}
	return n, true
}

// addStatement records a statement and returns its id.
func (a *aggregator) addStatement(loc coverage.Location, hits int) int {
	key := keyOf(loc)
	if id, ok := a.statements[key]; ok {
		a.fc.S[strconv.Itoa(id)] += hits
		return id
	}
	id := a.nextStatement
	a.nextStatement++
	a.statements[key] = id

	sid := strconv.Itoa(id)
	a.fc.StatementMap[sid] = loc
	a.fc.S[sid] = hits
	return id
}

// addFunction records a function, keyed by its declaration, and returns its
// id. Anonymous functions get a placeholder name.
func (a *aggregator) addFunction(name string, decl, loc coverage.Location, hits int) int {
	key := keyOf(decl)
	if id, ok := a.functions[key]; ok {
		a.fc.F[strconv.Itoa(id)] += hits
		return id
	}
	id := a.nextFunction
	a.nextFunction++
	a.functions[key] = id

	if name == "" {
		name = fmt.Sprintf("(unknown_%d)", id)
	}
	fid := strconv.Itoa(id)
	a.fc.FnMap[fid] = coverage.FunctionMeta{Name: name, Decl: decl, Loc: loc}
	a.fc.F[fid] = hits
	return id
}

// addBranch records a branch and returns its id. Hits of a known branch are
// summed element-wise; counters past the known alternatives are dropped. The
// stored counters always match the alternatives in number, missing ones
// being zero.
func (a *aggregator) addBranch(kind string, loc coverage.Location, locs []coverage.Location, hits []int) int {
	key := branchKey(locs)
	if id, ok := a.branches[key]; ok {
		existing := a.fc.B[strconv.Itoa(id)]
		for i, h := range hits {
			if i < len(existing) {
				existing[i] += h
			}
		}
		return id
	}
	id := a.nextBranch
	a.nextBranch++
	a.branches[key] = id

	bid := strconv.Itoa(id)
	a.fc.BranchMap[bid] = coverage.BranchMeta{Type: kind, Loc: loc, Locations: locs}
	counts := make([]int, len(locs))
	copy(counts, hits)
	a.fc.B[bid] = counts
	return id
}

// merge adds every record of fc, deduplicating against the records already
// present.
func (a *aggregator) merge(fc *coverage.FileCoverage) {
	for id, loc := range fc.StatementMap {
		a.addStatement(loc, fc.S[id])
	}
	for id, fn := range fc.FnMap {
		a.addFunction(fn.Name, fn.Decl, fn.Loc, fc.F[id])
	}
	for id, b := range fc.BranchMap {
		locs := append([]coverage.Location(nil), b.Locations...)
		a.addBranch(b.Type, b.Loc, locs, fc.B[id])
	}
}
