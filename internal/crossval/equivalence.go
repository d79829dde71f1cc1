package crossval

import (
	"strings"

	"github.com/sells-group/exec-enrich/internal/contact"
	"github.com/sells-group/exec-enrich/internal/fuzzy"
)

// Field names checked across sources.
const (
	FieldName     = "full_name"
	FieldTitle    = "title"
	FieldEmail    = "email"
	FieldPhone    = "phone"
	FieldLinkedIn = "linkedin_url"
)

const (
	nameOverlap  = 0.7
	titleOverlap = 0.5
)

var titleStopwords = map[string]bool{
	"of": true, "the": true, "and": true, "&": true, "for": true, "at": true,
	"to": true, "a": true, "in": true, "co": true, "joint": true,
}

var titleAcronyms = map[string]string{
	"ceo": "chief executive officer",
	"cfo": "chief financial officer",
	"coo": "chief operating officer",
	"cto": "chief technology officer",
	"cmo": "chief marketing officer",
	"cio": "chief information officer",
	"md":  "managing director",
	"gm":  "general manager",
	"vp":  "vice president",
	"hr":  "human resources",
	"ops": "operations",
}

func titleKeywords(title string) map[string]bool {
	raw := strings.Fields(strings.ToLower(strings.NewReplacer(",", " ", "/", " ", "-", " ", ".", "").Replace(title)))
	out := make(map[string]bool, len(raw))
	for _, w := range raw {
		if exp, ok := titleAcronyms[w]; ok {
			for _, e := range strings.Fields(exp) {
				out[e] = true
			}
			continue
		}
		if !titleStopwords[w] {
			out[w] = true
		}
	}
	return out
}

// titlesEquivalent compares keyword sets over the smaller set.
func titlesEquivalent(a, b string) bool {
	ka, kb := titleKeywords(a), titleKeywords(b)
	if len(ka) == 0 || len(kb) == 0 {
		return false
	}
	if len(ka) > len(kb) {
		ka, kb = kb, ka
	}
	hit := 0
	for w := range ka {
		if kb[w] {
			hit++
		}
	}
	return float64(hit)/float64(len(ka)) >= titleOverlap
}

// Equivalent applies the field-specific equivalence rule.
func Equivalent(field, a, b string) bool {
	switch field {
	case FieldName:
		return fuzzy.ContainmentOverlap(a, b) >= nameOverlap
	case FieldTitle:
		return titlesEquivalent(a, b)
	case FieldEmail:
		return contact.NormalizeEmail(a) == contact.NormalizeEmail(b)
	case FieldPhone:
		return contact.NormalizePhone(a) == contact.NormalizePhone(b)
	case FieldLinkedIn:
		return contact.NormalizeLinkedIn(a) == contact.NormalizeLinkedIn(b)
	default:
		return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
	}
}
