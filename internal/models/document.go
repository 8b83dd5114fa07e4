package models

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// CountyResults maps canonical county name to its result, in output order.
type CountyResults = orderedmap.OrderedMap[string, *ContestResult]

// OfficeResults maps office name to its county results, in output order.
type OfficeResults = orderedmap.OrderedMap[string, *CountyResults]

// YearResults maps election year to its office results, in output order.
type YearResults = orderedmap.OrderedMap[string, *OfficeResults]

// NewCountyResults returns an empty ordered county map.
func NewCountyResults() *CountyResults { return orderedmap.New[string, *ContestResult]() }

// NewOfficeResults returns an empty ordered office map.
func NewOfficeResults() *OfficeResults { return orderedmap.New[string, *CountyResults]() }

// NewYearResults returns an empty ordered year map.
func NewYearResults() *YearResults { return orderedmap.New[string, *OfficeResults]() }

// Document is the published mo_county_aggregated_results.json payload.
type Document struct {
	Focus                string               `json:"focus"`
	ProcessedDate        string               `json:"processed_date"`
	CategorizationSystem CategorizationSystem `json:"categorization_system"`
	Summary              Summary              `json:"summary"`
	ResultsByYear        *YearResults         `json:"results_by_year"`
}

// Summary counts what a run produced.
type Summary struct {
	TotalYears         int      `json:"total_years"`
	TotalContests      int      `json:"total_contests"`
	TotalCountyResults int      `json:"total_county_results"`
	YearsCovered       []string `json:"years_covered"`
}

// CategorizationSystem is the static legend shipped with every document.
type CategorizationSystem struct {
	CompetitivenessScale CompetitivenessScale `json:"competitiveness_scale"`
	OfficeTypes          []string             `json:"office_types"`
	EnhancedFeatures     []string             `json:"enhanced_features"`
}

// CompetitivenessScale lists the legend entries per side.
type CompetitivenessScale struct {
	Republican []ScaleEntry `json:"Republican"`
	Tossup     []ScaleEntry `json:"Tossup"`
	Democratic []ScaleEntry `json:"Democratic"`
}

// ScaleEntry is one legend row.
type ScaleEntry struct {
	Category string `json:"category"`
	Range    string `json:"range"`
	Color    string `json:"color"`
}

// Each walks every result in document order. Returning false stops the walk.
func (d *Document) Each(fn func(year, office, county string, r *ContestResult) bool) {
	if d == nil || d.ResultsByYear == nil {
		return
	}
	for y := d.ResultsByYear.Oldest(); y != nil; y = y.Next() {
		if y.Value == nil {
			continue
		}
		for o := y.Value.Oldest(); o != nil; o = o.Next() {
			if o.Value == nil {
				continue
			}
			for c := o.Value.Oldest(); c != nil; c = c.Next() {
				if c.Value == nil {
					continue
				}
				if !fn(y.Key, o.Key, c.Key, c.Value) {
					return
				}
			}
		}
	}
}
