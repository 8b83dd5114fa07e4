package models

import (
	"math"
	"strings"

	"github.com/spf13/cast"
)

// RawRow is one parsed CSV line keyed by lowercased header name
type RawRow struct {
	Line   int
	Source string
	Fields map[string]string
}

// Get returns a trimmed field value or "" when the column is absent
func (r RawRow) Get(key string) string {
	if r.Fields == nil {
		return ""
	}
	return strings.TrimSpace(r.Fields[key])
}

// Has reports whether the column exists on this row
func (r RawRow) Has(key string) bool {
	_, ok := r.Fields[key]
	return ok
}

// ElectionRecord represents a normalized input row
type ElectionRecord struct {
	County    string
	Office    string
	District  string
	Party     string
	Candidate string
	Precinct  string
	Votes     float64
}

// GroupKey identifies rows that are summed together at county level
type GroupKey struct {
	County    string
	Office    string
	Party     string
	Candidate string
}

// Key returns the county-level grouping key for the record
func (r ElectionRecord) Key() GroupKey {
	return GroupKey{
		County:    r.County,
		Office:    r.Office,
		Party:     r.Party,
		Candidate: r.Candidate,
	}
}

// SumByKey merges records sharing a GroupKey, summing votes. Output keeps
// the first-seen order of keys and the first record's district and precinct.
func SumByKey(records []ElectionRecord) []ElectionRecord {
	index := make(map[GroupKey]int, len(records))
	out := make([]ElectionRecord, 0, len(records))
	for _, rec := range records {
		k := rec.Key()
		if i, ok := index[k]; ok {
			out[i].Votes += rec.Votes
			continue
		}
		index[k] = len(out)
		out = append(out, rec)
	}
	return out
}

// ParseVotes coerces a raw vote cell. Thousands separators are tolerated.
// Blank, non-numeric and negative values yield 0 and ok=false.
func ParseVotes(s string) (float64, bool) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return 0, false
	}
	v, err := cast.ToFloat64E(s)
	if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
