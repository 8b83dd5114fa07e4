// Package reference holds the manual correction tables applied to source
// rows. Tables are built once and never mutated afterwards.
package reference

import (
	"sort"
	"strings"
)

// PartyOverride assigns a party to candidates whose rows omit it.
type PartyOverride struct {
	Candidate string `yaml:"candidate" validate:"required"`
	Party     string `yaml:"party" validate:"required"`
}

// Tables is the immutable set of name corrections and per-year party overrides.
type Tables struct {
	corrections map[string]string
	overrides   map[string][]PartyOverride
}

// DefaultCorrections are known formatting inconsistencies in the source files.
func DefaultCorrections() map[string]string {
	return map[string]string{
		"Jeremiah W Jay Nixon":    "Jay Nixon",
		"Jeremiah W. (Jay) Nixon": "Jay Nixon",
		"Jeremiah Nixon":          "Jay Nixon",
		"Christopher Bond":        "Kit Bond",
		"Christopher S. Bond":     "Kit Bond",
		"David Dave Spence":       "Dave Spence",
	}
}

// DefaultPartyOverrides fills parties missing from the source data.
func DefaultPartyOverrides() map[string][]PartyOverride {
	return map[string][]PartyOverride{
		"2018": {
			{Candidate: "Nicole Galloway", Party: "DEM"},
			{Candidate: "Saundra McDowell", Party: "REP"},
		},
	}
}

// Default returns the built-in tables.
func Default() *Tables {
	return New(DefaultCorrections(), DefaultPartyOverrides())
}

// New copies its inputs into a fresh Tables value.
func New(corrections map[string]string, overrides map[string][]PartyOverride) *Tables {
	t := &Tables{
		corrections: make(map[string]string, len(corrections)),
		overrides:   make(map[string][]PartyOverride, len(overrides)),
	}
	for k, v := range corrections {
		t.corrections[k] = v
	}
	for year, list := range overrides {
		t.overrides[year] = append([]PartyOverride(nil), list...)
	}
	return t
}

// Merge returns a new Tables with extra entries layered over t.
// Overrides for a year listed in extraOverrides replace that year entirely.
func (t *Tables) Merge(extraCorrections map[string]string, extraOverrides map[string][]PartyOverride) *Tables {
	corrections := make(map[string]string, len(t.corrections)+len(extraCorrections))
	for k, v := range t.corrections {
		corrections[k] = v
	}
	for k, v := range extraCorrections {
		corrections[k] = v
	}
	overrides := make(map[string][]PartyOverride, len(t.overrides)+len(extraOverrides))
	for k, v := range t.overrides {
		overrides[k] = v
	}
	for k, v := range extraOverrides {
		overrides[k] = v
	}
	return New(corrections, overrides)
}

// Correct returns the corrected display name, or name itself when no entry matches.
func (t *Tables) Correct(name string) string {
	if fixed, ok := t.corrections[name]; ok {
		return fixed
	}
	return name
}

// PartyFor looks up a party override for candidate in year. Matching is a
// case-insensitive substring test against the candidate name. Entries are
// tried in declaration order.
func (t *Tables) PartyFor(year, candidate string) (string, bool) {
	if candidate == "" {
		return "", false
	}
	lc := strings.ToLower(candidate)
	for _, o := range t.overrides[year] {
		if strings.Contains(lc, strings.ToLower(o.Candidate)) {
			return o.Party, true
		}
	}
	return "", false
}

// OverrideYears lists the years that carry party overrides, sorted.
func (t *Tables) OverrideYears() []string {
	years := make([]string, 0, len(t.overrides))
	for y := range t.overrides {
		years = append(years, y)
	}
	sort.Strings(years)
	return years
}

// CorrectionCount is the number of name corrections.
func (t *Tables) CorrectionCount() int {
	return len(t.corrections)
}
