// Package kc handles the Kansas City pseudo-county, which reports results
// separately even though the city spans Jackson, Clay, Platte and Cass.
package kc

import (
	"fmt"
	"strings"

	"github.com/Tenjin25/openelections-data-mo/internal/models"
)

// KansasCity is the source label of the pseudo-county.
const KansasCity = "Kansas City"

// Policy selects how Kansas City rows are attributed to real counties.
type Policy string

const (
	// FoldIntoJackson relabels every Kansas City row as Jackson.
	FoldIntoJackson Policy = "fold_into_jackson"
	// EvenSplit divides Kansas City totals by four across the target counties.
	EvenSplit Policy = "even_split"
)

// ParsePolicy validates a configured policy name. Empty means fold_into_jackson.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case "", FoldIntoJackson:
		return FoldIntoJackson, nil
	case EvenSplit:
		return EvenSplit, nil
	default:
		return "", fmt.Errorf("invalid kansas city policy: %s", s)
	}
}

// Target is a real county overlapping Kansas City.
type Target struct {
	County string
	FIPS   string
}

// Targets lists the counties Kansas City overlaps.
var Targets = []Target{
	{County: "Jackson", FIPS: "095"},
	{County: "Clay", FIPS: "047"},
	{County: "Platte", FIPS: "165"},
	{County: "Cass", FIPS: "037"},
}

// IsKansasCity reports whether a county label refers to the pseudo-county.
func IsKansasCity(county string) bool {
	return strings.Contains(strings.ToUpper(county), "KANSAS CITY")
}

// Relabel returns the county label a loader should carry for county under policy.
func Relabel(policy Policy, county string) string {
	if !IsKansasCity(county) {
		return county
	}
	if policy == EvenSplit {
		return KansasCity
	}
	return Targets[0].County
}

// SplitEven removes Kansas City rows and returns one share per target county
// per removed row, each carrying a quarter of the votes. Shares are not rounded.
func SplitEven(rows []models.ElectionRecord) (kept, shares []models.ElectionRecord) {
	kept = make([]models.ElectionRecord, 0, len(rows))
	for _, rec := range rows {
		if !IsKansasCity(rec.County) {
			kept = append(kept, rec)
			continue
		}
		for _, t := range Targets {
			share := rec
			share.County = t.County
			share.Votes = rec.Votes / float64(len(Targets))
			shares = append(shares, share)
		}
	}
	return kept, shares
}

// Apply attributes Kansas City rows according to policy. Under even_split the
// shares are appended after the real county rows; otherwise rows are relabeled.
func Apply(policy Policy, rows []models.ElectionRecord) []models.ElectionRecord {
	if policy == EvenSplit {
		kept, shares := SplitEven(rows)
		return append(kept, shares...)
	}
	out := make([]models.ElectionRecord, len(rows))
	for i, rec := range rows {
		rec.County = Relabel(policy, rec.County)
		out[i] = rec
	}
	return out
}
