package types

import "time"

// Source tells where a reference was found in the document
type Source int

const (
	SourceImage Source = iota // <img> attribute
	SourceStyle               // url(...) in an inline style attribute
)

func (s Source) String() string {
	switch s {
	case SourceImage:
		return "img"
	case SourceStyle:
		return "style"
	default:
		return "unknown"
	}
}

// ResourceReference is a raw attribute value as it appeared in the page
type ResourceReference struct {
	Value  string
	Source Source
}

// Locator is an absolute, fetchable URL. Never a data: URI.
type Locator string

// Outcome tags the result of fetching one locator
type Outcome int

const (
	OutcomeSaved Outcome = iota
	OutcomeDuplicate
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSaved:
		return "saved"
	case OutcomeDuplicate:
		return "duplicate"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result is the per-resource diagnostic reported back to the coordinator
type Result struct {
	Locator  Locator
	Outcome  Outcome
	Path     string // set when Outcome is OutcomeSaved
	Reason   string // set when Outcome is OutcomeFailed
	Duration time.Duration
}

// Summary aggregates the results of one run
type Summary struct {
	PageURL     string
	BaseURL     string
	Destination string
	Discovered  int
	Saved       int
	Duplicates  int
	Failed      int
	Results     []Result
}

// Skipped counts everything that was not written to disk
func (s *Summary) Skipped() int {
	return s.Duplicates + s.Failed
}

// Add folds one result into the counters
func (s *Summary) Add(r Result) {
	switch r.Outcome {
	case OutcomeSaved:
		s.Saved++
	case OutcomeDuplicate:
		s.Duplicates++
	default:
		s.Failed++
	}
	s.Results = append(s.Results, r)
}
