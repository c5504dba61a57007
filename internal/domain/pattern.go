package domain

import "time"

// Pattern source types
const (
	PatternSourceText  = "text"
	PatternSourceQuote = "quote"
	PatternSourcePDF   = "pdf"
)

// MemoryPattern is one learned {features, box identifier} pair.
// Patterns live in a shared append-mostly log: a new quote either bumps the
// MatchCount of an equivalent existing pattern (similarity above threshold)
// or is appended as a new entry. There is no deletion path.
type MemoryPattern struct {
	ID            string        `json:"id"`
	Features      FeatureRecord `json:"features"`
	BoxIdentifier string        `json:"box_identifier"`
	SourceType    string        `json:"source_type"`
	Timestamp     time.Time     `json:"timestamp"`
	MatchCount    int           `json:"match_count"`
}
