package kc

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/paulmach/orb/geojson"
	"github.com/spf13/cast"

	"github.com/Tenjin25/openelections-data-mo/internal/filter"
	"github.com/Tenjin25/openelections-data-mo/internal/models"
)

// Weight is the share of Kansas City results geographically inside one county.
type Weight struct {
	County        string  `json:"county"`
	FIPS          string  `json:"fips"`
	Precincts     int     `json:"precincts"`
	Votes         float64 `json:"votes"`
	PrecinctShare float64 `json:"precinct_share"`
	VoteShare     float64 `json:"vote_share"`
}

// Weights is the diagnostic output of ComputeWeights. It is not fed into
// aggregation.
type Weights struct {
	Entries        []Weight `json:"entries"`
	TotalPrecincts int      `json:"total_precincts"`
	TotalVotes     float64  `json:"total_votes"`
	Unmatched      int      `json:"unmatched_rows"`
}

// LoadPrecinctFIPS reads a VTD GeoJSON file and maps precinct name (or VTD id)
// to the three digit county FIPS code.
func LoadPrecinctFIPS(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read geojson: %w", err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode geojson %s: %w", path, err)
	}

	out := make(map[string]string, len(fc.Features))
	for _, f := range fc.Features {
		key := f.Properties.MustString("NAME00", "")
		if key == "" {
			key = cast.ToString(f.Properties["VTDIDFP00"])
		}
		fips := cast.ToString(f.Properties["COUNTYFP00"])
		key = precinctKey(key)
		if key == "" || fips == "" {
			continue
		}
		if len(fips) < 3 {
			fips = strings.Repeat("0", 3-len(fips)) + fips
		}
		out[key] = fips
	}
	log.Printf("kc: loaded %d precinct to county mappings from %s", len(out), path)
	return out, nil
}

func precinctKey(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// ComputeWeights measures how Kansas City precincts and votes fall across the
// target counties. Precincts are counted once each; votes are summed over
// every matching row. Rows whose office fails offices are ignored.
func ComputeWeights(precinctToFIPS map[string]string, rows []models.RawRow, offices filter.Spec) Weights {
	byFIPS := make(map[string]*Weight, len(Targets))
	for _, t := range Targets {
		byFIPS[t.FIPS] = &Weight{County: t.County, FIPS: t.FIPS}
	}
	seen := make(map[string]bool)

	var w Weights
	for _, row := range rows {
		if !IsKansasCity(row.Get("county")) || !offices.Match(row.Get("office")) {
			continue
		}
		precinct := precinctKey(row.Get("precinct"))
		entry, ok := byFIPS[precinctToFIPS[precinct]]
		if precinct == "" || !ok {
			w.Unmatched++
			continue
		}
		votes, _ := models.ParseVotes(row.Get("votes"))
		entry.Votes += votes
		w.TotalVotes += votes
		if !seen[precinct] {
			seen[precinct] = true
			entry.Precincts++
			w.TotalPrecincts++
		}
	}

	for _, t := range Targets {
		entry := *byFIPS[t.FIPS]
		if w.TotalPrecincts > 0 {
			entry.PrecinctShare = float64(entry.Precincts) / float64(w.TotalPrecincts)
		}
		if w.TotalVotes > 0 {
			entry.VoteShare = entry.Votes / w.TotalVotes
		}
		w.Entries = append(w.Entries, entry)
	}
	return w
}
