// Package coverage defines the Istanbul coverage data model and its JSON
// exchange format.
//
// Positions follow Istanbul conventions: lines are 1-based, columns are
// 0-based. A FileCoverage may carry the source map of the generated file it
// was recorded against (InputSourceMap), which is what allows remapping the
// records back onto the original sources.
package coverage

// Position in a source file.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// IsZero reports whether the position is the zero (line 0, column 0) value,
// which Istanbul uses for "no position recorded".
func (p Position) IsZero() bool {
	return p.Line == 0 && p.Column == 0
}

// Location is a span between two positions.
type Location struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// FunctionMeta describes an instrumented function: Decl spans the declaration
// token, Loc spans the whole body.
type FunctionMeta struct {
	Name string   `json:"name"`
	Decl Location `json:"decl"`
	Loc  Location `json:"loc"`
}

// BranchMeta describes an instrumented branch point with one location per
// alternative.
type BranchMeta struct {
	Type      string     `json:"type"`
	Loc       Location   `json:"loc"`
	Locations []Location `json:"locations"`
}

// SourceMap is a version 3 source map as embedded by Istanbul instrumenters.
type SourceMap struct {
	Version        int      `json:"version"`
	Sources        []string `json:"sources"`
	Names          []string `json:"names"`
	Mappings       string   `json:"mappings"`
	File           string   `json:"file,omitempty"`
	SourceRoot     string   `json:"sourceRoot,omitempty"`
	SourcesContent []string `json:"sourcesContent,omitempty"`
}

// FileCoverage is the coverage report of a single file.
//
// Every key of S and F has a matching entry in StatementMap and FnMap, and
// each B entry has as many counters as the matching BranchMap entry has
// locations.
type FileCoverage struct {
	Path         string                  `json:"path"`
	StatementMap map[string]Location     `json:"statementMap"`
	FnMap        map[string]FunctionMeta `json:"fnMap"`
	BranchMap    map[string]BranchMeta   `json:"branchMap"`
	S            map[string]int          `json:"s"`
	F            map[string]int          `json:"f"`
	B            map[string][]int        `json:"b"`

	InputSourceMap *SourceMap `json:"inputSourceMap,omitempty"`
}

// NewFileCoverage returns an empty coverage record for the given path.
func NewFileCoverage(path string) *FileCoverage {
	return &FileCoverage{
		Path:         path,
		StatementMap: map[string]Location{},
		FnMap:        map[string]FunctionMeta{},
		BranchMap:    map[string]BranchMeta{},
		S:            map[string]int{},
		F:            map[string]int{},
		B:            map[string][]int{},
	}
}

// Clone returns a deep copy of the coverage record. The source map is shared,
// since nothing in this module modifies it.
func (fc *FileCoverage) Clone() *FileCoverage {
	c := NewFileCoverage(fc.Path)
	for k, v := range fc.StatementMap {
		c.StatementMap[k] = v
	}
	for k, v := range fc.FnMap {
		c.FnMap[k] = v
	}
	for k, v := range fc.BranchMap {
		v.Locations = append([]Location(nil), v.Locations...)
		c.BranchMap[k] = v
	}
	for k, v := range fc.S {
		c.S[k] = v
	}
	for k, v := range fc.F {
		c.F[k] = v
	}
	for k, v := range fc.B {
		c.B[k] = append([]int(nil), v...)
	}
	c.InputSourceMap = fc.InputSourceMap
	return c
}

// CoverageMap maps a file path to its coverage report.
type CoverageMap map[string]*FileCoverage

// HasSourceMaps reports whether any entry carries an input source map.
func (m CoverageMap) HasSourceMaps() bool {
	for _, fc := range m {
		if fc != nil && fc.InputSourceMap != nil {
			return true
		}
	}
	return false
}
