package coverage

import "fmt"

// Counter tallies covered versus total items of one kind.
type Counter struct {
	Covered int
	Total   int
}

// Percent returns the covered share in percent. An empty counter is reported
// as fully covered, matching Istanbul's text reporters.
func (c Counter) Percent() float64 {
	if c.Total == 0 {
		return 100
	}
	return float64(c.Covered) * 100 / float64(c.Total)
}

// String formats the counter as "covered/total (percent%)".
func (c Counter) String() string {
	return fmt.Sprintf("%d/%d (%.2f%%)", c.Covered, c.Total, c.Percent())
}

func (c *Counter) add(hits int) {
	c.Total++
	if hits > 0 {
		c.Covered++
	}
}

// Summary is a per-file rollup of hit counters.
type Summary struct {
	Statements Counter
	Functions  Counter
	Branches   Counter
}

// Add accumulates the counters of o into s.
func (s *Summary) Add(o Summary) {
	s.Statements.Covered += o.Statements.Covered
	s.Statements.Total += o.Statements.Total
	s.Functions.Covered += o.Functions.Covered
	s.Functions.Total += o.Functions.Total
	s.Branches.Covered += o.Branches.Covered
	s.Branches.Total += o.Branches.Total
}

// Summarize computes the coverage summary of the file. Every branch
// alternative counts as a separate item.
func (fc *FileCoverage) Summarize() Summary {
	var s Summary
	for id := range fc.StatementMap {
		s.Statements.add(fc.S[id])
	}
	for id := range fc.FnMap {
		s.Functions.add(fc.F[id])
	}
	for id, b := range fc.BranchMap {
		hits := fc.B[id]
		for i := range b.Locations {
			h := 0
			if i < len(hits) {
				h = hits[i]
			}
			s.Branches.add(h)
		}
	}
	return s
}
