package formatter

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tenjin25/openelections-data-mo/internal/kc"
	"github.com/Tenjin25/openelections-data-mo/internal/models"
)

func rec(county, party, cand string, votes float64) models.ElectionRecord {
	return models.ElectionRecord{County: county, Office: "President", Party: party, Candidate: cand, Votes: votes}
}

func TestAggregate(t *testing.T) {
	f := New(nil)
	rows := []models.ElectionRecord{
		rec("Boone", "DEM", "Joe Biden", 500),
		rec("Boone", "REP", "Donald Trump", 600),
		rec("Boone", "LIB", "Jo Jorgensen", 60),
		rec("Boone", "Green", "Howie Hawkins", 40),
		rec("Boone", "dem", "Joe Biden", 0.9),
	}

	r := f.Aggregate("2020", "President", models.County{Name: "Boone"}, rows)
	require.NoError(t, r.Validate())

	assert.Equal(t, 500, r.DemVotes)
	assert.Equal(t, 600, r.RepVotes)
	assert.Equal(t, 100, r.OtherVotes)
	assert.Equal(t, 1200, r.TotalVotes)
	assert.Equal(t, 1100, r.TwoPartyTotal)
	assert.Equal(t, 100, r.Margin)
	require.NotNil(t, r.MarginPct)
	assert.Equal(t, "9.09", *r.MarginPct)
	assert.Equal(t, 41.67, *r.DemPct)
	assert.Equal(t, 50.0, *r.RepPct)
	assert.Equal(t, models.WinnerREP, r.Winner)
	assert.Equal(t, "Joe Biden", r.DemCandidate)
	assert.Equal(t, "Donald Trump", r.RepCandidate)
	require.NotNil(t, r.Competitiveness)
	assert.Equal(t, "Likely", r.Competitiveness.Category)
	assert.Equal(t, map[string]int{"DEM": 500, "REP": 600, "LIB": 60, "GREEN": 40}, r.AllParties)
}

func TestAggregate_Tie(t *testing.T) {
	r := New(nil).Aggregate("2016", "Governor", models.County{Name: "Clay"}, []models.ElectionRecord{
		rec("Clay", "Democratic", "A", 10),
		rec("Clay", "Republican", "B", 10),
	})
	require.NoError(t, r.Validate())
	assert.Equal(t, models.WinnerTie, r.Winner)
	assert.Equal(t, "0.00", *r.MarginPct)
	require.NotNil(t, r.Competitiveness)
	assert.Equal(t, "Tossup", r.Competitiveness.Category)
}

func TestAggregate_NoTwoPartyVotes(t *testing.T) {
	r := New(nil).Aggregate("2016", "Governor", models.County{Name: "Clay"}, []models.ElectionRecord{
		rec("Clay", "LIB", "A", 10),
	})
	require.NoError(t, r.Validate())
	assert.Nil(t, r.MarginPct)
	assert.Nil(t, r.Competitiveness)
	assert.Equal(t, models.WinnerTie, r.Winner)
	assert.Equal(t, 0.0, *r.DemPct)

	empty := New(nil).Aggregate("2016", "Governor", models.County{Name: "Clay"}, nil)
	require.NoError(t, empty.Validate())
	assert.Nil(t, empty.DemPct)
	assert.Nil(t, empty.RepPct)
}

func TestAggregate_CandidateSelection(t *testing.T) {
	r := New(nil).Aggregate("2004", "President", models.County{Name: "Adair"}, []models.ElectionRecord{
		rec("Adair", "Democratic-Farmer", "Loose Winner", 900),
		rec("Adair", "DEM", "Kerry, John", 100),
		rec("Adair", "REPUBLICAN PARTY", "George W. Bush, Dick Cheney", 1000),
		rec("Adair", "REP", "", 5000),
	})
	assert.Equal(t, "John Kerry", r.DemCandidate, "clean party match wins over higher loose match")
	assert.Equal(t, "George W Bush", r.RepCandidate, "loose fallback when no clean match has a name")
	assert.Equal(t, 6000, r.RepVotes)
}

func TestAggregate_CorrectionsApplied(t *testing.T) {
	r := New(nil).Aggregate("2008", "Governor", models.County{Name: "Cole"}, []models.ElectionRecord{
		rec("Cole", "DEM", "Nixon, Jeremiah W. (Jay)", 10),
		rec("Cole", "REP", "Christopher Bond", 5),
	})
	assert.Equal(t, "Jay Nixon", r.DemCandidate)
	assert.Equal(t, "Kit Bond", r.RepCandidate)
}

func TestAggregate_KCEvenSplit(t *testing.T) {
	rows := kc.Apply(kc.EvenSplit, []models.ElectionRecord{
		rec("Kansas City", "DEM", "A", 400),
		rec("Kansas City", "REP", "B", 400),
	})
	byCounty := map[string][]models.ElectionRecord{}
	for _, r := range rows {
		byCounty[r.County] = append(byCounty[r.County], r)
	}

	f := New(nil)
	for _, target := range kc.Targets {
		r := f.Aggregate("2020", "President", models.County{Name: target.County}, byCounty[target.County])
		assert.Equal(t, 100, r.DemVotes, target.County)
		assert.Equal(t, 100, r.RepVotes, target.County)
		assert.Equal(t, models.WinnerTie, r.Winner)
	}
}

func TestAggregate_FractionalSharesTruncatedAtOutput(t *testing.T) {
	rows := kc.Apply(kc.EvenSplit, []models.ElectionRecord{
		rec("Kansas City", "DEM", "A", 7),
		rec("Jackson", "DEM", "A", 0.5),
	})
	var jackson []models.ElectionRecord
	for _, r := range rows {
		if r.County == "Jackson" {
			jackson = append(jackson, r)
		}
	}
	r := New(nil).Aggregate("2020", "President", models.County{Name: "Jackson"}, jackson)
	assert.Equal(t, 2, r.DemVotes, "0.5 + 1.75 truncates to 2")
}

func storeWith(t *testing.T) *ResultStore {
	t.Helper()
	f := New(nil)
	s := NewResultStore()
	put := func(year, office, county string, dem, rep float64) {
		s.Put(f.Aggregate(year, office, models.County{Name: county}, []models.ElectionRecord{
			{County: county, Office: office, Party: "DEM", Candidate: "D", Votes: dem},
			{County: county, Office: office, Party: "REP", Candidate: "R", Votes: rep},
		}))
	}
	put("2020", "President", "Clay", 10, 20)
	put("2020", "President", "Boone", 30, 20)
	put("2016", "U.S. Senate", "Adair", 1, 2)
	put("2016", "Governor", "Adair", 2, 1)
	put("2020", "President", "Clay", 11, 20)
	s.AddYear("2022")
	return s
}

func TestResultStore(t *testing.T) {
	s := storeWith(t)

	assert.Equal(t, 4, s.Count())
	assert.Equal(t, 3, s.Contests())
	assert.Equal(t, []string{"2016", "2020", "2022"}, s.Years())
	assert.Equal(t, []string{"U.S. Senate", "Governor"}, s.Offices("2016"))
	assert.Nil(t, s.Offices("1999"))

	r, ok := s.Get("2020", "President", "Clay")
	require.True(t, ok)
	assert.Equal(t, 11, r.DemVotes, "later put replaces")

	_, ok = s.Get("2020", "Governor", "Clay")
	assert.False(t, ok)

	ordered := s.Ordered()
	var keys []string
	(&models.Document{ResultsByYear: ordered}).Each(func(y, o, c string, _ *models.ContestResult) bool {
		keys = append(keys, y+"/"+o+"/"+c)
		return true
	})
	assert.Equal(t, []string{
		"2016/U.S. Senate/Adair",
		"2016/Governor/Adair",
		"2020/President/Boone",
		"2020/President/Clay",
	}, keys)
}

func TestBuildAndWriteDocument(t *testing.T) {
	doc := BuildDocument(storeWith(t), "2025-01-07")
	assert.Equal(t, Focus, doc.Focus)
	assert.Equal(t, models.Summary{
		TotalYears:         3,
		TotalContests:      3,
		TotalCountyResults: 4,
		YearsCovered:       []string{"2016", "2020", "2022"},
	}, doc.Summary)

	path := filepath.Join(t.TempDir(), "out", "mo_county_aggregated_results.json")
	require.NoError(t, WriteDocument(path, doc))

	first, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(first)
	assert.True(t, strings.HasPrefix(text, "{\n  \"focus\": \"Clean geographic political patterns\",\n  \"processed_date\""))
	assert.Less(t, strings.Index(text, `"categorization_system"`), strings.Index(text, `"summary"`))
	assert.Less(t, strings.Index(text, `"summary"`), strings.Index(text, `"results_by_year"`))
	assert.Less(t, strings.Index(text, `"2016": {`), strings.Index(text, `"2020": {`))
	assert.Contains(t, text, `"range": "±0.5%"`)

	back, err := ReadDocument(path)
	require.NoError(t, err)
	require.NoError(t, WriteDocument(path, back))
	second, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file removed")
}

func TestReadDocument_Errors(t *testing.T) {
	_, err := ReadDocument(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o644))
	_, err = ReadDocument(path)
	require.Error(t, err)
}
