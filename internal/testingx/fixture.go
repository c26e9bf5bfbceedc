package testingx

import (
	"github.com/neelance/sourcemap"

	"github.com/canyon-project/istanbul-sourcemap/coverage"
)

// SourceMapBuilder assembles source maps for tests. Mappings are encoded by
// github.com/neelance/sourcemap, so fixtures don't depend on the decoder under
// test for their correctness.
//
// All lines are 1-based and all columns 0-based, the same convention Istanbul
// positions use.
type SourceMapBuilder struct {
	m          sourcemap.Map
	sourceRoot string
}

// NewSourceMap starts a source map for the named generated file.
func NewSourceMap(file string) *SourceMapBuilder {
	return &SourceMapBuilder{m: sourcemap.Map{File: file}}
}

// Map records that the generated position corresponds to the original one.
func (b *SourceMapBuilder) Map(genLine, genCol int, source string, origLine, origCol int) *SourceMapBuilder {
	return b.MapName(genLine, genCol, source, origLine, origCol, "")
}

// MapName is like Map, but also records the original identifier name.
func (b *SourceMapBuilder) MapName(genLine, genCol int, source string, origLine, origCol int, name string) *SourceMapBuilder {
	b.m.AddMapping(&sourcemap.Mapping{
		GeneratedLine:   genLine,
		GeneratedColumn: genCol,
		OriginalFile:    source,
		OriginalLine:    origLine,
		OriginalColumn:  origCol,
		OriginalName:    name,
	})
	return b
}

// Unmapped records a generated position without an original counterpart.
func (b *SourceMapBuilder) Unmapped(genLine, genCol int) *SourceMapBuilder {
	b.m.AddMapping(&sourcemap.Mapping{GeneratedLine: genLine, GeneratedColumn: genCol})
	return b
}

// SourceRoot sets the sourceRoot field of the built map.
func (b *SourceMapBuilder) SourceRoot(root string) *SourceMapBuilder {
	b.sourceRoot = root
	return b
}

// Build encodes the recorded mappings.
func (b *SourceMapBuilder) Build() *coverage.SourceMap {
	b.m.EncodeMappings()
	return &coverage.SourceMap{
		Version:    3,
		File:       b.m.File,
		SourceRoot: b.sourceRoot,
		Sources:    b.m.Sources,
		Names:      b.m.Names,
		Mappings:   b.m.Mappings,
	}
}

// Loc is a shorthand for a coverage.Location literal.
func Loc(startLine, startCol, endLine, endCol int) coverage.Location {
	return coverage.Location{
		Start: coverage.Position{Line: startLine, Column: startCol},
		End:   coverage.Position{Line: endLine, Column: endCol},
	}
}
