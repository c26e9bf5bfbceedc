package sourcemapx

import (
	"path"
	"sort"
	"strings"
)

// Segment is a single decoded mapping. All fields hold absolute values, the
// deltas from the encoded form have already been accumulated.
type Segment struct {
	GeneratedLine   int // 0-based.
	GeneratedColumn int // 0-based.

	// HasSource is false for generated-only segments and for segments whose
	// source index is out of range of the source list.
	HasSource      bool
	SourceIndex    int
	Source         string
	OriginalLine   int // 0-based.
	OriginalColumn int // 0-based.

	// HasName is false when the segment carries no name or the name index is
	// out of range of the name list.
	HasName   bool
	NameIndex int
	Name      string
}

// Table is the decoded form of source map mappings, indexed by 0-based
// generated line. Segments within a line are ordered by generated column.
type Table struct {
	Lines [][]Segment
}

// Len returns the total number of decoded segments.
func (t *Table) Len() int {
	n := 0
	for _, l := range t.Lines {
		n += len(l)
	}
	return n
}

// Options adjust how source and name indices are resolved.
type Options struct {
	// SourceRoot is prepended to every relative source path.
	SourceRoot string
}

// DecodeMappings decodes the mappings string of a source map. Source and name
// indices are resolved against the given lists.
//
// An index outside of its list doesn't fail decoding: the affected segment
// is kept without a source (or name). Malformed VLQ data does fail it, and
// the returned error is a *DecodeError pointing at the offending segment.
func DecodeMappings(mappings string, sources, names []string, opts Options) (*Table, error) {
	resolved := make([]string, len(sources))
	for i, s := range sources {
		resolved[i] = joinSourceRoot(opts.SourceRoot, s)
	}

	lines := strings.Split(mappings, ";")
	t := &Table{Lines: make([][]Segment, len(lines))}

	var (
		sourceIndex    int
		originalLine   int
		originalColumn int
		nameIndex      int
		fields         [5]int
	)

	for lineIdx, line := range lines {
		generatedColumn := 0
		var segments []Segment
		for _, raw := range strings.Split(line, ",") {
			if raw == "" {
				continue
			}

			n := 0
			for offset := 0; offset < len(raw); n++ {
				if n == len(fields) {
					return nil, &DecodeError{Line: lineIdx, Segment: raw, Offset: offset, Err: ErrFieldCount}
				}
				v, next, err := DecodeVLQ(raw, offset)
				if err != nil {
					de := err.(*DecodeError)
					de.Line, de.Segment = lineIdx, raw
					return nil, de
				}
				fields[n], offset = v, next
			}
			if n != 1 && n != 4 && n != 5 {
				return nil, &DecodeError{Line: lineIdx, Segment: raw, Offset: len(raw), Err: ErrFieldCount}
			}

			generatedColumn += fields[0]
			seg := Segment{GeneratedLine: lineIdx, GeneratedColumn: generatedColumn}
			if n >= 4 {
				sourceIndex += fields[1]
				originalLine += fields[2]
				originalColumn += fields[3]
				seg.SourceIndex = sourceIndex
				seg.OriginalLine = originalLine
				seg.OriginalColumn = originalColumn
				if sourceIndex >= 0 && sourceIndex < len(resolved) {
					seg.HasSource = true
					seg.Source = resolved[sourceIndex]
				}
			}
			if n == 5 {
				nameIndex += fields[4]
				seg.NameIndex = nameIndex
				if nameIndex >= 0 && nameIndex < len(names) {
					seg.HasName = true
					seg.Name = names[nameIndex]
				}
			}
			segments = append(segments, seg)
		}

		// Encoders emit segments in column order, but nothing in the format
		// guarantees it and the resolver relies on it.
		sort.SliceStable(segments, func(i, j int) bool {
			return segments[i].GeneratedColumn < segments[j].GeneratedColumn
		})
		t.Lines[lineIdx] = segments
	}
	return t, nil
}

// joinSourceRoot prefixes a relative source with the source root. Absolute
// paths and URLs are left alone.
func joinSourceRoot(root, source string) string {
	if root == "" || path.IsAbs(source) || strings.Contains(source, "://") {
		return source
	}
	if strings.Contains(root, "://") {
		return strings.TrimSuffix(root, "/") + "/" + source
	}
	return path.Join(root, source)
}
