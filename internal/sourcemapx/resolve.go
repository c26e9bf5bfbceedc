package sourcemapx

import "sort"

// OriginalPosition is the original source location a generated position maps
// to. Line is 1-based and Column is 0-based.
type OriginalPosition struct {
	Source  string
	Line    int
	Column  int
	Name    string
	HasName bool
}

// OriginalPosition returns the original position of the generated position at
// the 1-based line and 0-based column.
//
// The governing segment is the one on the same generated line with the
// greatest column not past the queried one. There is no fallback to other
// lines: if the line has no such segment, or the segment has no source, the
// position is unmapped.
func (t *Table) OriginalPosition(line, column int) (OriginalPosition, bool) {
	idx := line - 1
	if idx < 0 || idx >= len(t.Lines) {
		return OriginalPosition{}, false
	}
	segments := t.Lines[idx]
	// First segment past the column; the one before it governs.
	i := sort.Search(len(segments), func(i int) bool {
		return segments[i].GeneratedColumn > column
	})
	if i == 0 {
		return OriginalPosition{}, false
	}
	seg := segments[i-1]
	if !seg.HasSource {
		return OriginalPosition{}, false
	}
	return OriginalPosition{
		Source:  seg.Source,
		Line:    seg.OriginalLine + 1,
		Column:  seg.OriginalColumn,
		Name:    seg.Name,
		HasName: seg.HasName,
	}, true
}
