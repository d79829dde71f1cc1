// Package contact extracts and normalizes emails, UK phone numbers and
// LinkedIn profile URLs from free text.
package contact

import (
	"regexp"
	"sort"
	"strings"
)

// Kind is the type of a contact mention.
type Kind string

const (
	KindEmail    Kind = "email"
	KindPhone    Kind = "phone"
	KindLinkedIn Kind = "linkedin"
)

var (
	emailRe = regexp.MustCompile(`(?i)\b[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}\b`)

	// International (+44 / 0044), mobile (07xxx) and landline (01/02/03/08xxx).
	phoneRes = []*regexp.Regexp{
		regexp.MustCompile(`(?:\+44|0044)\s?\(?0?\)?\s?\d{2,4}[\s\-]?\d{3,4}[\s\-]?\d{3,4}`),
		regexp.MustCompile(`\b07\d{3}[\s\-]?\d{3}[\s\-]?\d{3}\b`),
		regexp.MustCompile(`\(?\b0[1-38]\d{1,3}\)?[\s\-]?\d{3,4}[\s\-]?\d{3,4}\b`),
	}

	linkedInRe = regexp.MustCompile(`(?i)(?:https?://)?(?:[a-z]{2,3}\.)?linkedin\.com/in/([a-z0-9\-_%]+)/?`)

	nonDigitRe = regexp.MustCompile(`\D`)
)

// Mention is one contact found in text. Start and End are byte offsets;
// Value is normalized for deduplication.
type Mention struct {
	Kind  Kind
	Raw   string
	Value string
	Start int
	End   int
}

// Extract returns every email, phone and LinkedIn mention in text ordered by
// position. Phone spans that overlap an earlier phone span are dropped.
func Extract(text string) []Mention {
	var out []Mention

	for _, loc := range emailRe.FindAllStringIndex(text, -1) {
		raw := text[loc[0]:loc[1]]
		out = append(out, Mention{Kind: KindEmail, Raw: raw, Value: NormalizeEmail(raw), Start: loc[0], End: loc[1]})
	}

	var phones []Mention
	for _, re := range phoneRes {
		for _, loc := range re.FindAllStringIndex(text, -1) {
			raw := strings.TrimSpace(text[loc[0]:loc[1]])
			norm := NormalizePhone(raw)
			if !validPhone(norm) || overlaps(phones, loc[0], loc[1]) {
				continue
			}
			phones = append(phones, Mention{Kind: KindPhone, Raw: raw, Value: norm, Start: loc[0], End: loc[1]})
		}
	}
	out = append(out, phones...)

	for _, loc := range linkedInRe.FindAllStringIndex(text, -1) {
		raw := text[loc[0]:loc[1]]
		out = append(out, Mention{Kind: KindLinkedIn, Raw: raw, Value: NormalizeLinkedIn(raw), Start: loc[0], End: loc[1]})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}

func overlaps(ms []Mention, start, end int) bool {
	for _, m := range ms {
		if start < m.End && m.Start < end {
			return true
		}
	}
	return false
}

// validPhone accepts UK national numbers of 10 or 11 digits.
func validPhone(norm string) bool {
	return strings.HasPrefix(norm, "0") && (len(norm) == 10 || len(norm) == 11)
}

// NormalizeEmail lowercases and trims an email address.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.Trim(strings.TrimSpace(s), ".,;:<>()"))
}

// NormalizePhone reduces a UK number to national digits, mapping +44/0044
// to a leading 0 and dropping a bracketed trunk zero.
func NormalizePhone(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "(0)", "")
	digits := nonDigitRe.ReplaceAllString(s, "")
	switch {
	case strings.HasPrefix(digits, "0044"):
		digits = "0" + digits[4:]
	case strings.HasPrefix(digits, "44") && strings.HasPrefix(strings.TrimSpace(s), "+"):
		digits = "0" + digits[2:]
	}
	return digits
}

// NormalizeLinkedIn returns the canonical https://www.linkedin.com/in/slug
// form, or "" when s is not a profile URL.
func NormalizeLinkedIn(s string) string {
	m := linkedInRe.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	return "https://www.linkedin.com/in/" + strings.ToLower(m[1])
}

// LinkedInSlug returns the profile slug of a LinkedIn URL.
func LinkedInSlug(s string) string {
	n := NormalizeLinkedIn(s)
	return strings.TrimPrefix(n, "https://www.linkedin.com/in/")
}

// EmailLocalPart returns the part of an email before "@".
func EmailLocalPart(email string) string {
	if i := strings.IndexByte(email, '@'); i >= 0 {
		return strings.ToLower(email[:i])
	}
	return ""
}

// EmailDomain returns the lowercased domain of an email.
func EmailDomain(email string) string {
	if i := strings.LastIndexByte(email, '@'); i >= 0 {
		return strings.ToLower(email[i+1:])
	}
	return ""
}

// HasContact reports whether text contains any email or phone.
func HasContact(text string) bool {
	if emailRe.MatchString(text) {
		return true
	}
	for _, re := range phoneRes {
		for _, raw := range re.FindAllString(text, -1) {
			if validPhone(NormalizePhone(raw)) {
				return true
			}
		}
	}
	return false
}

// Normalize normalizes a value of the given kind.
func Normalize(kind Kind, v string) string {
	switch kind {
	case KindEmail:
		return NormalizeEmail(v)
	case KindPhone:
		return NormalizePhone(v)
	case KindLinkedIn:
		return NormalizeLinkedIn(v)
	default:
		return strings.TrimSpace(v)
	}
}
