package pipeline

// RunStats tracks aggregate counters and byte totals across a batch run.
type RunStats struct {
	Total            int
	Current          int
	Converted        int
	Skipped          int
	Failed           int
	TotalInputBytes  int64
	TotalOutputBytes int64
}

// OK reports whether the run completed without any failed conversion.
func (s *RunStats) OK() bool { return s.Failed == 0 }
