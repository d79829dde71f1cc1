package webpage

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
)

// Page is a fetched HTML page reduced to line-oriented text.
type Page struct {
	URL        string   `json:"url"`
	StatusCode int      `json:"status_code"`
	Title      string   `json:"title"`
	Text       string   `json:"text"`
	TeamText   []string `json:"team_text,omitempty"`
	Links      []string `json:"links,omitempty"`
}

const (
	blockSelector = "h1,h2,h3,h4,h5,h6,p,li,td,th,dt,dd,address,blockquote,figcaption,div,section,article,span.name,span.role"
	dropSelector  = "script,style,noscript,svg,iframe,template,nav"
)

var teamHeadings = []string{"team", "people", "leadership", "directors", "management", "meet the", "who we are", "our staff"}

// Parse turns an HTML document into a Page. Each block element becomes a
// line so that names stay close to the contacts printed beside them.
// mailto, tel and LinkedIn links have their targets written into the text.
func Parse(pageURL string, body []byte) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "webpage: parse html")
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, eris.Wrap(err, "webpage: parse url")
	}

	p := &Page{URL: pageURL, Title: title(doc)}
	doc.Find(dropSelector).Remove()
	p.Links = links(doc, base)
	inlineContacts(doc)
	p.Text = strings.Join(lines(doc.Find("body")), "\n")
	p.TeamText = teamSections(doc)
	return p, nil
}

func title(doc *goquery.Document) string {
	if t := strings.TrimSpace(doc.Find("title").First().Text()); t != "" {
		return collapse(t)
	}
	if og, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok {
		return collapse(og)
	}
	return ""
}

// inlineContacts appends link targets that the anchor text hides, such as
// an "Email me" link to a mailto address.
func inlineContacts(doc *goquery.Document) {
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		href = strings.TrimSpace(href)
		lower := strings.ToLower(href)

		var target string
		switch {
		case strings.HasPrefix(lower, "mailto:"):
			target = strings.SplitN(href[len("mailto:"):], "?", 2)[0]
		case strings.HasPrefix(lower, "tel:"):
			target = href[len("tel:"):]
		case strings.Contains(lower, "linkedin.com/in/"):
			target = href
		default:
			return
		}
		target, _ = url.PathUnescape(target)
		text := strings.TrimSpace(a.Text())
		if target == "" || strings.Contains(text, target) {
			return
		}
		a.SetText(strings.TrimSpace(text + " " + target))
	})
}

// lines returns the collapsed text of every leaf block under sel in
// document order.
func lines(sel *goquery.Selection) []string {
	var out []string
	sel.Find(blockSelector).Each(func(_ int, s *goquery.Selection) {
		if s.Find(blockSelector).Length() > 0 {
			return
		}
		line := collapse(s.Text())
		if line == "" || (len(out) > 0 && out[len(out)-1] == line) {
			return
		}
		out = append(out, line)
	})
	if len(out) == 0 {
		if t := collapse(sel.Text()); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// teamSections returns the text of containers headed by a team-like heading.
func teamSections(doc *goquery.Document) []string {
	var out []string
	seen := make(map[string]bool)
	doc.Find("h1,h2,h3,h4").Each(func(_ int, h *goquery.Selection) {
		heading := strings.ToLower(h.Text())
		if !containsAny(heading, teamHeadings) {
			return
		}
		// Climb out of wrappers that hold only the heading.
		var box []string
		for sel, depth := h.Parent(), 0; sel.Length() > 0 && !sel.Is("body") && depth < 3; sel, depth = sel.Parent(), depth+1 {
			if box = lines(sel); len(box) > 1 {
				break
			}
		}
		if len(box) < 2 {
			return
		}
		text := strings.Join(box, "\n")
		if seen[text] {
			return
		}
		seen[text] = true
		out = append(out, text)
	})
	return out
}

// links returns absolute same-site http(s) links without fragments.
func links(doc *goquery.Document, base *url.URL) []string {
	var out []string
	seen := make(map[string]bool)
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			return
		}
		u := base.ResolveReference(ref)
		if (u.Scheme != "http" && u.Scheme != "https") || !SameSite(u.Host, base.Host) {
			return
		}
		u.Fragment = ""
		s := u.String()
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	})
	return out
}

// SameSite compares hosts ignoring case and a leading "www.".
func SameSite(a, b string) bool {
	norm := func(h string) string {
		return strings.TrimPrefix(strings.ToLower(h), "www.")
	}
	return norm(a) == norm(b)
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
