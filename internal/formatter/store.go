package formatter

import (
	"sort"

	"github.com/Tenjin25/openelections-data-mo/internal/models"
)

// ResultStore accumulates results for one run: year -> office -> county.
// It has a single writer and is not safe for concurrent use.
type ResultStore struct {
	years    *models.YearResults
	covered  map[string]bool
	contests map[string]bool
	count    int
}

// NewResultStore creates an empty store.
func NewResultStore() *ResultStore {
	return &ResultStore{
		years:    models.NewYearResults(),
		covered:  make(map[string]bool),
		contests: make(map[string]bool),
	}
}

// AddYear records a processed year even when it yields no results.
func (s *ResultStore) AddYear(year string) {
	s.covered[year] = true
}

// Put stores r under its year, contest and county, replacing any earlier
// result for the same key. Offices keep first-seen order.
func (s *ResultStore) Put(r *models.ContestResult) {
	s.AddYear(r.Year)
	s.contests[r.Contest] = true

	offices, ok := s.years.Get(r.Year)
	if !ok {
		offices = models.NewOfficeResults()
		s.years.Set(r.Year, offices)
	}
	counties, ok := offices.Get(r.Contest)
	if !ok {
		counties = models.NewCountyResults()
		offices.Set(r.Contest, counties)
	}
	if _, exists := counties.Get(r.County); !exists {
		s.count++
	}
	counties.Set(r.County, r)
}

// Get returns a stored result.
func (s *ResultStore) Get(year, office, county string) (*models.ContestResult, bool) {
	offices, ok := s.years.Get(year)
	if !ok {
		return nil, false
	}
	counties, ok := offices.Get(office)
	if !ok {
		return nil, false
	}
	return counties.Get(county)
}

// Years lists covered years in ascending order.
func (s *ResultStore) Years() []string {
	years := make([]string, 0, len(s.covered))
	for y := range s.covered {
		years = append(years, y)
	}
	sort.Strings(years)
	return years
}

// Offices lists the offices of year in first-seen order.
func (s *ResultStore) Offices(year string) []string {
	offices, ok := s.years.Get(year)
	if !ok {
		return nil
	}
	out := make([]string, 0, offices.Len())
	for pair := offices.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Key)
	}
	return out
}

// Count is the number of stored county results.
func (s *ResultStore) Count() int {
	return s.count
}

// Contests is the number of distinct office names across all years.
func (s *ResultStore) Contests() int {
	return len(s.contests)
}

// Ordered returns the results in publication order: years ascending,
// offices first-seen, counties sorted by name.
func (s *ResultStore) Ordered() *models.YearResults {
	out := models.NewYearResults()
	years := make([]string, 0, s.years.Len())
	for pair := s.years.Oldest(); pair != nil; pair = pair.Next() {
		years = append(years, pair.Key)
	}
	sort.Strings(years)

	for _, year := range years {
		offices, _ := s.years.Get(year)
		outOffices := models.NewOfficeResults()
		for op := offices.Oldest(); op != nil; op = op.Next() {
			names := make([]string, 0, op.Value.Len())
			for cp := op.Value.Oldest(); cp != nil; cp = cp.Next() {
				names = append(names, cp.Key)
			}
			sort.Strings(names)

			outCounties := models.NewCountyResults()
			for _, name := range names {
				r, _ := op.Value.Get(name)
				outCounties.Set(name, r)
			}
			outOffices.Set(op.Key, outCounties)
		}
		out.Set(year, outOffices)
	}
	return out
}
