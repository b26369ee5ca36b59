package candidate

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Site is one entry of the closed set of locations a candidate can be
// associated with. The string value is the canonical name used as the
// relational column name and as the vector index "municipios" metadata value.
type Site string

// AllSites is the filter sentinel meaning "do not filter by location".
const AllSites = "Todos"

// sites is the closed enumeration in canonical display order.
var sites = []Site{
	"Manizales", "Chinchiná", "Villamaría", "Neira", "Palestina",
	"Risaralda", "Riosucio", "Anserma", "La_Dorada", "Supia",
	"Palestina_Arauca", "Arauca", "Viterbo", "Salamina", "Belalcazar",
	"Filadelfia", "Aguadas", "San_José", "Pacora", "Victoria",
	"Manzanares", "Norcasia", "Samaná",
}

// siteIndex maps a folded lookup key to its canonical Site.
var siteIndex = func() map[string]Site {
	m := make(map[string]Site, len(sites))
	for _, s := range sites {
		m[foldName(string(s))] = s
	}
	return m
}()

// Sites returns a copy of the closed site enumeration in canonical order.
func Sites() []Site {
	out := make([]Site, len(sites))
	copy(out, sites)
	return out
}

// SiteNames returns the canonical site names as plain strings.
func SiteNames() []string {
	out := make([]string, len(sites))
	for i, s := range sites {
		out[i] = string(s)
	}
	return out
}

// String returns the canonical name.
func (s Site) String() string { return string(s) }

// ParseSite resolves name to a canonical Site. Matching ignores case,
// diacritics and the space/underscore distinction, so "la dorada" and
// "Chinchina" resolve to "La_Dorada" and "Chinchiná". The AllSites sentinel,
// the empty string and any name outside the enumeration return false.
func ParseSite(name string) (Site, bool) {
	name = strings.TrimSpace(name)
	if name == "" || strings.EqualFold(name, AllSites) {
		return "", false
	}
	s, ok := siteIndex[foldName(name)]
	return s, ok
}

// foldName lower-cases, strips combining marks and normalises separators.
func foldName(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	folded = strings.ToLower(folded)
	return strings.Join(strings.FieldsFunc(folded, func(r rune) bool {
		return r == ' ' || r == '_' || r == '-'
	}), "_")
}

// SiteSet is a candidate's boolean membership over the closed site
// enumeration. The zero value is an empty set.
type SiteSet struct {
	members map[Site]bool
}

// NewSiteSet builds a SiteSet from a name → membership mapping. Names are
// resolved with ParseSite; names outside the enumeration are ignored.
func NewSiteSet(flags map[string]bool) SiteSet {
	set := SiteSet{members: make(map[Site]bool, len(flags))}
	for name, on := range flags {
		if !on {
			continue
		}
		if s, ok := ParseSite(name); ok {
			set.members[s] = true
		}
	}
	return set
}

// SiteSetOf builds a SiteSet containing exactly the given sites.
func SiteSetOf(members ...Site) SiteSet {
	set := SiteSet{members: make(map[Site]bool, len(members))}
	for _, s := range members {
		if canonical, ok := siteIndex[foldName(string(s))]; ok {
			set.members[canonical] = true
		}
	}
	return set
}

// Has reports whether site is an active member of the set.
func (s SiteSet) Has(site Site) bool {
	return s.members[site]
}

// Len returns the number of active sites.
func (s SiteSet) Len() int {
	return len(s.members)
}

// Active renders the active sites as names in canonical enumeration order.
// It never returns nil so JSON output is always an array.
func (s SiteSet) Active() []string {
	out := make([]string, 0, len(s.members))
	for _, site := range sites {
		if s.members[site] {
			out = append(out, string(site))
		}
	}
	return out
}
