package leads

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"

	"github.com/sells-group/exec-enrich/internal/model"
)

// Summary is one flat CSV line per enrichment result.
type Summary struct {
	CompanyName     string  `csv:"company_name"`
	Status          string  `csv:"status"`
	Tier            string  `csv:"tier"`
	Profiles        int     `csv:"profiles"`
	PrimaryName     string  `csv:"primary_name"`
	PrimaryTitle    string  `csv:"primary_title"`
	PrimaryEmail    string  `csv:"primary_email"`
	PrimaryPhone    string  `csv:"primary_phone"`
	PrimaryLinkedIn string  `csv:"primary_linkedin"`
	Confidence      float64 `csv:"confidence"`
	TotalCost       float64 `csv:"total_cost"`
	ProcessingMS    int64   `csv:"processing_time_ms"`
	SourcesFailed   string  `csv:"sources_failed"`
	ErrorMessage    string  `csv:"error_message"`
}

// Summarize flattens a result.
func Summarize(r *model.CompanyEnrichmentResult) Summary {
	s := Summary{
		CompanyName:   r.CompanyName,
		Status:        string(r.Status),
		Profiles:      len(r.ExecutiveProfiles),
		Confidence:    r.ConfidenceReport.OverallConfidence,
		TotalCost:     r.TotalCost,
		ProcessingMS:  r.ProcessingTimeMS,
		SourcesFailed: strings.Join(r.ConfidenceReport.SourcesFailed, ";"),
		ErrorMessage:  r.ErrorMessage,
	}
	if r.TierDecision != nil {
		s.Tier = string(r.TierDecision.Tier)
	}
	if p := r.PrimaryDecisionMaker; p != nil {
		s.PrimaryName = p.Director.FullName
		s.PrimaryTitle = p.Director.Title
		s.PrimaryEmail = p.Director.Email
		s.PrimaryPhone = p.Director.Phone
		s.PrimaryLinkedIn = p.Director.LinkedInURL
	}
	return s
}

// SummaryWriter streams summaries as CSV with a header line.
type SummaryWriter struct {
	w   *csv.Writer
	enc *csvutil.Encoder
}

// NewSummaryWriter creates a SummaryWriter on w.
func NewSummaryWriter(w io.Writer) *SummaryWriter {
	cw := csv.NewWriter(w)
	return &SummaryWriter{w: cw, enc: csvutil.NewEncoder(cw)}
}

// Write appends one result and flushes it.
func (s *SummaryWriter) Write(r *model.CompanyEnrichmentResult) error {
	if err := s.enc.Encode(Summarize(r)); err != nil {
		return eris.Wrap(err, "leads: encode summary")
	}
	s.w.Flush()
	return eris.Wrap(s.w.Error(), "leads: flush summary")
}
