package pipeline

import (
	"strings"
	"unicode"

	"github.com/sells-group/exec-enrich/internal/model"
)

// BusinessNameSource identifies candidates derived from the company name.
const BusinessNameSource = "business_name"

const businessNameConfidence = 0.4

var businessStopWords = map[string]bool{
	"ltd":      true,
	"limited":  true,
	"plc":      true,
	"llp":      true,
	"lp":       true,
	"cic":      true,
	"company":  true,
	"co":       true,
	"group":    true,
	"holdings": true,
	"services": true,
	"uk":       true,
	"and":      true,
	"&":        true,
}

// BusinessNameCandidates guesses an owner from company names that lead
// with a personal name, such as "John Smith Plumbing Ltd". The guess is the
// first two capitalised words and only survives if name validation accepts
// it.
func BusinessNameCandidates(company string) []model.CandidateRecord {
	fields := strings.Fields(company)
	if len(fields) > 0 && strings.EqualFold(fields[0], "the") {
		fields = fields[1:]
	}

	var run []string
	for _, f := range fields {
		f = strings.TrimRight(f, ",.")
		if businessStopWords[strings.ToLower(f)] || !alphaWord(f) {
			break
		}
		run = append(run, titleWord(f))
		if len(run) == 2 {
			break
		}
	}
	// a single word is a trade name more often than a person
	if len(run) < 2 {
		return nil
	}
	return []model.CandidateRecord{{
		Name:                 strings.Join(run, " "),
		Title:                "Owner",
		SourceID:             BusinessNameSource,
		ExtractionConfidence: businessNameConfidence,
		ContextSnippet:       company,
	}}
}

func alphaWord(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if i == 0 && !unicode.IsUpper(r) {
			return false
		}
		if !unicode.IsLetter(r) && r != '\'' && r != '-' {
			return false
		}
	}
	return true
}

func titleWord(s string) string {
	if strings.ToUpper(s) != s {
		return s
	}
	rs := []rune(strings.ToLower(s))
	rs[0] = unicode.ToUpper(rs[0])
	return string(rs)
}
