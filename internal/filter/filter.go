package filter

import (
	"fmt"
	"strings"
)

// Stage names used by the pipeline.
const (
	StageAggregate = "aggregate"
	StageKCWeights = "kc_weights"
)

// Spec is a declarative office filter. Matching is a case-insensitive
// substring test; an exclusion always beats an inclusion and an empty
// include list matches every office.
type Spec struct {
	Include []string `yaml:"include"`
	Exclude []string `yaml:"exclude"`
}

// Match reports whether office passes the filter.
func (s Spec) Match(office string) bool {
	lo := strings.ToLower(office)
	for _, kw := range s.Exclude {
		if kw != "" && strings.Contains(lo, strings.ToLower(kw)) {
			return false
		}
	}
	if len(s.Include) == 0 {
		return true
	}
	for _, kw := range s.Include {
		if kw != "" && strings.Contains(lo, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// Set holds one Spec per named stage.
type Set map[string]Spec

// DefaultAggregate keeps federal and statewide executive races.
func DefaultAggregate() Spec {
	return Spec{
		Include: []string{
			"President", "Senator", "Senate", "Governor", "Attorney General",
			"Secretary of State", "Treasurer", "Auditor", "Lieutenant Governor",
		},
		Exclude: []string{
			"State Senator", "State Senate", "US House", "U.S. House",
			"State Representative", "State House", "Judge", "Circuit",
			"Supreme Court", "Court of Appeals", "Retain",
		},
	}
}

// Defaults returns the built-in stage filters.
func Defaults() Set {
	return Set{
		StageAggregate: DefaultAggregate(),
		StageKCWeights: {},
	}
}

// Get returns the spec for stage.
func (s Set) Get(stage string) (Spec, error) {
	spec, ok := s[stage]
	if !ok {
		return Spec{}, fmt.Errorf("no filter configured for stage %q", stage)
	}
	return spec, nil
}

// With returns a copy of s with stage replaced.
func (s Set) With(stage string, spec Spec) Set {
	out := make(Set, len(s)+1)
	for k, v := range s {
		out[k] = v
	}
	out[stage] = spec
	return out
}
