package pipeline

import (
	"sort"
	"strings"

	"github.com/sells-group/exec-enrich/internal/attribution"
	"github.com/sells-group/exec-enrich/internal/contact"
	"github.com/sells-group/exec-enrich/internal/model"
)

// validateNames keeps candidates whose names validate and collects the
// documents of every source. Rejected names are returned for the report.
func (o *Orchestrator) validateNames(r *runState) []model.DiscardedName {
	var discarded []model.DiscardedName
	for _, res := range r.results {
		r.documents = append(r.documents, res.Documents...)
		for _, c := range res.Candidates {
			if c.SourceID == "" {
				c.SourceID = res.SourceID
			}
			v := o.names.Validate(c.Name, c.ContextSnippet)
			if !v.IsValid {
				discarded = append(discarded, model.DiscardedName{
					Name:     c.Name,
					SourceID: c.SourceID,
					NameType: v.NameType,
					Reasons:  v.Reasons,
				})
				continue
			}
			c.Name = v.Name
			c.Validation = &v
			r.candidates = append(r.candidates, c)
		}
	}
	return discarded
}

type contactKey struct {
	kind  contact.Kind
	value string
}

type docClaim struct {
	name     string
	nameConf float64
	a        attribution.Attribution
}

// beats orders competing claims on one contact: higher attribution score,
// then higher name confidence, then the lexically smaller name.
func (c docClaim) beats(o docClaim) bool {
	if c.a.Confidence != o.a.Confidence {
		return c.a.Confidence > o.a.Confidence
	}
	if c.nameConf != o.nameConf {
		return c.nameConf > o.nameConf
	}
	return c.name < o.name
}

type nameSlots struct {
	email, phone, linkedin *docClaim
}

func (s *nameSlots) slot(k contact.Kind) **docClaim {
	switch k {
	case contact.KindEmail:
		return &s.email
	case contact.KindPhone:
		return &s.phone
	default:
		return &s.linkedin
	}
}

// attribute links contacts found in source documents to validated names.
// Every contact gets at most one owner across all documents of the run,
// and a contact a source already tied to one person is never given to
// another. It returns the number of contacts assigned and the leftovers.
func (o *Orchestrator) attribute(r *runState) (int, model.Unattributed) {
	ranked := make([]attribution.RankedName, 0, len(r.candidates))
	nameConf := make(map[string]float64)
	for _, c := range r.candidates {
		conf := c.NameConfidence()
		ranked = append(ranked, attribution.RankedName{Name: c.Name, Confidence: conf})
		if k := strings.ToLower(c.Name); conf > nameConf[k] {
			nameConf[k] = conf
		}
	}

	// contacts sources already carry, by owner
	owner := make(map[contactKey]string)
	for _, c := range r.candidates {
		name := strings.ToLower(c.Name)
		for _, k := range []contactKey{
			{contact.KindEmail, contact.NormalizeEmail(c.Email)},
			{contact.KindPhone, contact.NormalizePhone(c.Phone)},
			{contact.KindLinkedIn, contact.NormalizeLinkedIn(c.LinkedInURL)},
		} {
			if k.value != "" {
				if _, taken := owner[k]; !taken {
					owner[k] = name
				}
			}
		}
	}

	var order []contactKey
	seen := make(map[contactKey]bool)
	note := func(k contactKey) {
		if !seen[k] {
			seen[k] = true
			order = append(order, k)
		}
	}

	best := make(map[contactKey]docClaim)
	for _, doc := range r.documents {
		res := o.attrib.AttributeRanked(doc.Text, ranked)

		names := make([]string, 0, len(res.PerName))
		for n := range res.PerName {
			names = append(names, n)
		}
		sort.Strings(names)

		for _, n := range names {
			nc := res.PerName[n]
			for _, a := range []*attribution.Attribution{nc.Email, nc.Phone, nc.LinkedIn} {
				if a == nil {
					continue
				}
				k := contactKey{a.Kind, a.Value}
				note(k)
				c := docClaim{name: n, nameConf: nameConf[strings.ToLower(n)], a: *a}
				if cur, ok := best[k]; !ok || c.beats(cur) {
					best[k] = c
				}
			}
		}
		for _, v := range res.Unattributed.Emails {
			note(contactKey{contact.KindEmail, v})
		}
		for _, v := range res.Unattributed.Phones {
			note(contactKey{contact.KindPhone, v})
		}
		for _, v := range res.Unattributed.LinkedIn {
			note(contactKey{contact.KindLinkedIn, v})
		}
	}

	// best contact of each kind per name
	perName := make(map[string]*nameSlots)
	for _, k := range order {
		c, ok := best[k]
		if !ok {
			continue
		}
		name := strings.ToLower(c.name)
		if who, taken := owner[k]; taken && who != name {
			continue
		}
		s := perName[name]
		if s == nil {
			s = &nameSlots{}
			perName[name] = s
		}
		slot := s.slot(k.kind)
		if *slot == nil || c.beats(**slot) {
			*slot = &c
		}
	}

	kept := make(map[contactKey]bool)
	for _, s := range perName {
		for _, c := range []*docClaim{s.email, s.phone, s.linkedin} {
			if c != nil {
				kept[contactKey{c.a.Kind, c.a.Value}] = true
			}
		}
	}

	for i := range r.candidates {
		c := &r.candidates[i]
		s := perName[strings.ToLower(c.Name)]
		if s == nil {
			continue
		}
		if s.email != nil && c.Email == "" {
			c.Email = s.email.a.Value
			c.EmailConfidence = s.email.a.Confidence
			c.AttributionMethod = s.email.a.Method
		}
		if s.phone != nil && c.Phone == "" {
			c.Phone = s.phone.a.Value
			c.PhoneConfidence = s.phone.a.Confidence
			if c.AttributionMethod == "" {
				c.AttributionMethod = s.phone.a.Method
			}
		}
		if s.linkedin != nil && c.LinkedInURL == "" {
			c.LinkedInURL = s.linkedin.a.Value
		}
	}

	var un model.Unattributed
	for _, k := range order {
		if kept[k] {
			continue
		}
		if _, taken := owner[k]; taken {
			continue
		}
		switch k.kind {
		case contact.KindEmail:
			un.Emails = append(un.Emails, k.value)
		case contact.KindPhone:
			un.Phones = append(un.Phones, k.value)
		case contact.KindLinkedIn:
			un.LinkedIn = append(un.LinkedIn, k.value)
		}
	}
	return len(kept), un
}

// classify attaches a seniority to every kept candidate and returns the
// number of decision makers.
func (o *Orchestrator) classify(r *runState) int {
	dms := 0
	for i := range r.candidates {
		c := &r.candidates[i]
		s := o.classifier.Classify(c.Title, c.Name, c.ContextSnippet)
		c.Seniority = &s
		if s.IsDecisionMaker {
			dms++
		}
	}
	return dms
}

// crossValidateProfiles checks every profile against the per-source
// records and returns the count of each validation status.
func (o *Orchestrator) crossValidateProfiles(r *runState) map[string]int {
	r.raw = make(map[string][]model.CandidateRecord)
	for _, c := range r.candidates {
		r.raw[c.SourceID] = append(r.raw[c.SourceID], c)
	}
	counts := make(map[string]int)
	for i, res := range o.crossval.Validate(r.profiles, r.raw) {
		r.profiles[i] = res.Profile
		counts[string(res.Status)]++
	}
	return counts
}
