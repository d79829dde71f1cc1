package model

import "strings"

// Query is the input handed to every source adapter.
type Query struct {
	CompanyName string `json:"company_name"`
	Website     string `json:"website,omitempty"`
}

// Domain returns the bare host of the query website, without scheme,
// path or a leading "www.".
func (q Query) Domain() string {
	d := strings.TrimSpace(strings.ToLower(q.Website))
	for _, p := range []string{"https://", "http://"} {
		d = strings.TrimPrefix(d, p)
	}
	if i := strings.IndexAny(d, "/?#"); i >= 0 {
		d = d[:i]
	}
	if i := strings.Index(d, ":"); i >= 0 {
		d = d[:i]
	}
	return strings.TrimPrefix(d, "www.")
}

// SourceResult is the output of one adapter call. Adapters never fail past
// their boundary, so errors are carried as strings.
type SourceResult struct {
	SourceID         string            `json:"source_id"`
	Candidates       []CandidateRecord `json:"candidates"`
	Documents        []Document        `json:"documents,omitempty"`
	SourcesUsed      []string          `json:"sources_used"`
	Errors           []string          `json:"errors,omitempty"`
	ProcessingTimeMS int64             `json:"processing_time_ms"`
	Cost             float64           `json:"cost"`
}

// Failed reports whether the adapter produced errors and nothing usable.
func (r SourceResult) Failed() bool {
	return len(r.Errors) > 0 && len(r.Candidates) == 0 && len(r.Documents) == 0
}
