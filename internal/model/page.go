package model

import "strings"

// PageKind is a coarse classification of a fetched page.
type PageKind string

const (
	PageKindHome    PageKind = "home"
	PageKindAbout   PageKind = "about"
	PageKindTeam    PageKind = "team"
	PageKindContact PageKind = "contact"
	PageKindSearch  PageKind = "search_result"
	PageKindOther   PageKind = "other"
)

// ClassifyPath guesses the page kind from a URL path.
func ClassifyPath(path string) PageKind {
	p := strings.ToLower(strings.Trim(path, "/"))
	switch {
	case p == "" || p == "index.html" || p == "home":
		return PageKindHome
	case strings.Contains(p, "team") || strings.Contains(p, "people") ||
		strings.Contains(p, "leadership") || strings.Contains(p, "staff") ||
		strings.Contains(p, "director"):
		return PageKindTeam
	case strings.Contains(p, "contact"):
		return PageKindContact
	case strings.Contains(p, "about") || strings.Contains(p, "who-we-are"):
		return PageKindAbout
	default:
		return PageKindOther
	}
}

// Document is page-level content returned by a source. Contacts in it are
// not yet linked to any person.
type Document struct {
	SourceID string   `json:"source_id"`
	URL      string   `json:"url,omitempty"`
	Title    string   `json:"title,omitempty"`
	Kind     PageKind `json:"kind"`
	Text     string   `json:"text"`
}

// Unattributed holds contacts found in content that no name claimed.
type Unattributed struct {
	Emails   []string `json:"emails,omitempty"`
	Phones   []string `json:"phones,omitempty"`
	LinkedIn []string `json:"linkedin,omitempty"`
}

// Empty reports whether nothing was left unattributed.
func (u *Unattributed) Empty() bool {
	return u == nil || (len(u.Emails) == 0 && len(u.Phones) == 0 && len(u.LinkedIn) == 0)
}
