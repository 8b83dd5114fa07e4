package storage

import (
	"testing"

	pbModels "github.com/pocketbase/pocketbase/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tenjin25/openelections-data-mo/internal/models"
)

func TestNewResultsCollection(t *testing.T) {
	c := newResultsCollection()
	assert.Equal(t, CollectionName, c.Name)
	for _, name := range []string{"run_id", "year", "contest", "county", "winner", "payload"} {
		assert.NotNil(t, c.Schema.GetFieldByName(name), name)
	}
	assert.Len(t, c.Indexes, 2)
}

func TestFillRecord(t *testing.T) {
	margin := "12.50"
	r := &models.ContestResult{
		County: "Boone", Contest: "Governor", Year: "2020",
		DemCandidate: "Nicole Galloway", RepCandidate: "Mike Parson",
		DemVotes: 100, RepVotes: 125, TotalVotes: 225, TwoPartyTotal: 225, Margin: 25,
		MarginPct: &margin, Winner: models.WinnerREP,
		Competitiveness: &models.Competitiveness{Category: "Likely", Party: "Republican", Code: "R_LIKELY", Color: "#fb6a4a"},
	}

	record := pbModels.NewRecord(newResultsCollection())
	require.NoError(t, fillRecord(record, "run-1", r))

	assert.Equal(t, "run-1", record.GetString("run_id"))
	assert.Equal(t, "Boone", record.GetString("county"))
	assert.Equal(t, 125, record.GetInt("rep_votes"))
	assert.Equal(t, "12.50", record.GetString("margin_pct"))
	assert.Equal(t, "REP", record.GetString("winner"))
	assert.Equal(t, "Likely", record.GetString("category"))

	var back models.ContestResult
	require.NoError(t, record.UnmarshalJSONField("payload", &back))
	assert.Equal(t, "Mike Parson", back.RepCandidate)
	assert.Equal(t, "12.50", *back.MarginPct)
}
