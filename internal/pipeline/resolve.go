// Package pipeline contains the enrichment stages between scan and
// write-back: profile lookup, company resolution, bulk company
// collection, ad-count extraction, and the final merge.
package pipeline

import (
	"regexp"
	"strings"

	"github.com/sells-group/adwatch/internal/model"
)

const companyURLPrefix = "https://www.linkedin.com/company/"

const companyLinkMarker = "linkedin.com/company/"

var companyIDPattern = regexp.MustCompile(`/company/(\d+)`)

// ResolveCompanyURL inspects a profile's first employment entry and
// returns the canonical company page URL for collection, or empty when
// the profile carries no usable company reference. Never an error: a
// record without a company just proceeds with empty company data.
func ResolveCompanyURL(p model.Profile) string {
	link := firstCompanyLink(p)
	if link == "" {
		return ""
	}
	return NormalizeCompanyURL(link)
}

// NormalizeCompanyURL rewrites a raw company link into the canonical
// form the collection service expects: tracking parameters stripped,
// the slug after /company/ extracted, and the standard prefix applied.
// Links without a /company/ segment normalize to empty.
func NormalizeCompanyURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if i := strings.IndexByte(raw, '?'); i >= 0 {
		raw = raw[:i]
	}
	raw = strings.Trim(raw, "/")

	idx := strings.Index(raw, "/company/")
	if idx < 0 {
		return ""
	}
	slug := raw[idx+len("/company/"):]
	if i := strings.IndexByte(slug, '/'); i >= 0 {
		slug = slug[:i]
	}
	if slug == "" {
		return ""
	}
	return companyURLPrefix + slug
}

// CompanyID extracts the numeric company identifier from a company link,
// used to match collected company records back to profiles. Empty when
// the link has no numeric /company/ segment.
func CompanyID(link string) string {
	m := companyIDPattern.FindStringSubmatch(link)
	if m == nil {
		return ""
	}
	return m[1]
}

func firstCompanyLink(p model.Profile) string {
	if len(p.Experiences) == 0 {
		return ""
	}
	link := strings.TrimSpace(p.Experiences[0].CompanyLink)
	if link == "" || link == "N/A" || !strings.Contains(link, companyLinkMarker) {
		return ""
	}
	return link
}
