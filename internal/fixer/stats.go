package fixer

// Stats tracks aggregate counters across a run.
type Stats struct {
	Processed int
	Modified  int
	Unchanged int
	Skipped   int
	Failed    int
}

// Add counts one result.
func (s *Stats) Add(r Result) {
	s.Processed++
	switch r.Status {
	case Modified:
		s.Modified++
	case Unchanged:
		s.Unchanged++
	case Skipped:
		s.Skipped++
	case Failed:
		s.Failed++
	}
}

// OK reports whether no file failed.
func (s *Stats) OK() bool {
	return s.Failed == 0
}
