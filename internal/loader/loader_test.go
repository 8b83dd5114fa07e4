package loader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tenjin25/openelections-data-mo/internal/candidate"
	"github.com/Tenjin25/openelections-data-mo/internal/filter"
	"github.com/Tenjin25/openelections-data-mo/internal/kc"
	"github.com/Tenjin25/openelections-data-mo/internal/models"
)

func raw(fields map[string]string) models.RawRow {
	return models.RawRow{Source: "test.csv", Fields: fields}
}

func newLoader(year string, policy kc.Policy) *Loader {
	return New(Options{
		Year:       year,
		Policy:     policy,
		Offices:    filter.DefaultAggregate(),
		Normalizer: candidate.New(candidate.TicketTruncate, nil),
	})
}

func TestLoad_PrecinctRowsSummed(t *testing.T) {
	rows := []models.RawRow{
		raw(map[string]string{"county": "BOONE", "office": "President", "party": "DEM", "candidate": "Joe Biden", "votes": "10", "precinct": "1"}),
		raw(map[string]string{"county": "Boone", "office": "President", "party": "DEM", "candidate": "Joe Biden", "votes": "1,005", "precinct": "2"}),
		raw(map[string]string{"county": "Boone", "office": "President", "party": "REP", "candidate": "Donald Trump", "votes": "20", "precinct": "1"}),
		raw(map[string]string{"county": "Boone", "office": "State Senator", "party": "REP", "candidate": "X", "votes": "5", "precinct": "1"}),
		raw(map[string]string{"county": "", "office": "President", "party": "REP", "candidate": "Y", "votes": "5", "precinct": "1"}),
		raw(map[string]string{"county": "Boone", "office": "", "party": "REP", "candidate": "Y", "votes": "5", "precinct": "1"}),
	}

	recs, stats := newLoader("2020", kc.FoldIntoJackson).Load(rows)
	require.Len(t, recs, 2)
	assert.Equal(t, "Boone", recs[0].County)
	assert.Equal(t, 1015.0, recs[0].Votes)
	assert.Equal(t, 20.0, recs[1].Votes)

	assert.True(t, stats.PrecinctLevel)
	assert.Equal(t, 6, stats.RowsRead)
	assert.Equal(t, 2, stats.DroppedMissing)
	assert.Equal(t, 1, stats.DroppedOffice)
	assert.Equal(t, 2, stats.Records)
}

func TestLoad_CountyRowsPassThrough(t *testing.T) {
	rows := []models.RawRow{
		raw(map[string]string{"county": "Cole", "office": "Governor", "party": "REP", "candidate": "Mike Parson", "votes": "100"}),
		raw(map[string]string{"county": "Cole", "office": "Governor", "party": "REP", "candidate": "Mike Parson", "votes": "50"}),
	}
	recs, stats := newLoader("2022", kc.FoldIntoJackson).Load(rows)
	assert.False(t, stats.PrecinctLevel)
	assert.Len(t, recs, 2)
}

func TestLoad_VoteCoercion(t *testing.T) {
	rows := []models.RawRow{
		raw(map[string]string{"county": "Cole", "office": "Governor", "party": "REP", "candidate": "A", "votes": "n/a"}),
		raw(map[string]string{"county": "Cole", "office": "Governor", "party": "DEM", "candidate": "B", "votes": "-3"}),
		raw(map[string]string{"county": "Cole", "office": "Governor", "party": "LIB", "candidate": "C", "votes": ""}),
	}
	recs, stats := newLoader("2016", kc.FoldIntoJackson).Load(rows)
	require.Len(t, recs, 3, "coerced rows are kept")
	for _, r := range recs {
		assert.Equal(t, 0.0, r.Votes)
	}
	assert.Equal(t, 3, stats.CoercedVotes)
}

func TestLoad_KansasCityPolicy(t *testing.T) {
	rows := []models.RawRow{
		raw(map[string]string{"county": "KANSAS CITY", "office": "President", "party": "DEM", "candidate": "A", "votes": "40"}),
	}

	folded, _ := newLoader("2020", kc.FoldIntoJackson).Load(rows)
	require.Len(t, folded, 1)
	assert.Equal(t, "Jackson", folded[0].County)

	split, _ := newLoader("2020", kc.EvenSplit).Load(rows)
	require.Len(t, split, 1)
	assert.Equal(t, "Kansas City", split[0].County)
}

func TestLoad_CandidateDerivation(t *testing.T) {
	tests := []struct {
		name   string
		year   string
		fields map[string]string
		want   string
	}{
		{
			name:   "underscore columns",
			year:   "2016",
			fields: map[string]string{"first_name": "Roy", "last_name": "Blunt"},
			want:   "Roy Blunt",
		},
		{
			name:   "old presidential full name in last name",
			year:   "2000",
			fields: map[string]string{"first name": "Joe Lieberman", "last name": "Al Gore"},
			want:   "Al Gore",
		},
		{
			name:   "presidential after cutoff concatenates",
			year:   "2008",
			fields: map[string]string{"first name": "Barack", "last name": "Obama Jr"},
			want:   "Barack Obama Jr",
		},
		{
			name:   "candidate column wins",
			year:   "2000",
			fields: map[string]string{"candidate": "George W. Bush", "first name": "x", "last name": "y z"},
			want:   "George W. Bush",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := map[string]string{"county": "Adair", "office": "President", "party": "DEM", "votes": "1"}
			for k, v := range tt.fields {
				fields[k] = v
			}
			recs, _ := newLoader(tt.year, kc.FoldIntoJackson).Load([]models.RawRow{raw(fields)})
			require.Len(t, recs, 1)
			assert.Equal(t, tt.want, recs[0].Candidate)
		})
	}
}

func TestLoad_OverridesAndCorrections(t *testing.T) {
	rows := []models.RawRow{
		raw(map[string]string{"county": "Greene", "office": "State Auditor", "party": "", "candidate": "Nicole Galloway", "votes": "10"}),
		raw(map[string]string{"county": "Greene", "office": "U.S. Senate", "party": "REP", "candidate": "Christopher Bond", "votes": "10"}),
	}
	recs, stats := newLoader("2018", kc.FoldIntoJackson).Load(rows)
	require.Len(t, recs, 2)
	assert.Equal(t, "DEM", recs[0].Party)
	assert.Equal(t, "Kit Bond", recs[1].Candidate)
	assert.Equal(t, 1, stats.PartyOverrides)
	assert.Equal(t, 1, stats.Corrections)

	recs, _ = newLoader("2016", kc.FoldIntoJackson).Load(rows[:1])
	assert.Equal(t, "", recs[0].Party)
}

func TestLoad_TitleCase(t *testing.T) {
	rows := []models.RawRow{
		raw(map[string]string{"county": "ST. LOUIS CITY", "office": "Governor", "party": "DEM", "candidate": "A", "votes": "1"}),
	}
	recs, _ := newLoader("2020", kc.FoldIntoJackson).Load(rows)
	require.Len(t, recs, 1)
	assert.Equal(t, "St. Louis City", recs[0].County)
}
