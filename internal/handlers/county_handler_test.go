package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tenjin25/openelections-data-mo/internal/county"
	"github.com/Tenjin25/openelections-data-mo/internal/formatter"
	"github.com/Tenjin25/openelections-data-mo/internal/models"
)

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	f := formatter.New(nil)
	store := formatter.NewResultStore()
	put := func(year, office, name string, dem, rep float64) {
		store.Put(f.Aggregate(year, office, models.County{Name: name}, []models.ElectionRecord{
			{County: name, Office: office, Party: "DEM", Candidate: "D", Votes: dem},
			{County: name, Office: office, Party: "REP", Candidate: "R", Votes: rep},
		}))
	}
	put("2020", "U.S. Senate", "St. Louis City", 80, 20)
	put("2020", "U.S. Senate", "Boone", 50, 60)
	put("2016", "Governor", "St. Louis City", 70, 30)

	resolver, err := county.NewResolver([]models.County{{Name: "Boone", FIPS: "019"}})
	require.NoError(t, err)

	mux := http.NewServeMux()
	NewResultsHandler(formatter.BuildDocument(store, "2025-01-07"), nil, resolver).Register(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, srv *httptest.Server, path string, out interface{}) int {
	t.Helper()
	resp, err := http.Get(srv.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusOK && out != nil {
		assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestResultsHandler_Summary(t *testing.T) {
	srv := testServer(t)

	var body struct {
		Focus   string         `json:"focus"`
		Summary models.Summary `json:"summary"`
	}
	require.Equal(t, http.StatusOK, getJSON(t, srv, "/api/summary", &body))
	assert.Equal(t, formatter.Focus, body.Focus)
	assert.Equal(t, 3, body.Summary.TotalCountyResults)
	assert.Equal(t, []string{"2016", "2020"}, body.Summary.YearsCovered)

	var legend models.CategorizationSystem
	require.Equal(t, http.StatusOK, getJSON(t, srv, "/api/legend", &legend))
	assert.NotEmpty(t, legend.CompetitivenessScale.Republican)
}

func TestResultsHandler_Results(t *testing.T) {
	srv := testServer(t)

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantTotal  int
	}{
		{name: "year", path: "/api/results/2020", wantStatus: http.StatusOK},
		{name: "unknown year", path: "/api/results/1999", wantStatus: http.StatusNotFound},
		{name: "contest", path: "/api/results/2020/" + url.PathEscape("U.S. Senate"), wantStatus: http.StatusOK, wantTotal: 2},
		{name: "unknown contest", path: "/api/results/2020/Auditor", wantStatus: http.StatusNotFound},
		{name: "county by alias", path: "/api/county-results/" + url.PathEscape("st louis city"), wantStatus: http.StatusOK, wantTotal: 2},
		{name: "county exact", path: "/api/county-results/Boone", wantStatus: http.StatusOK, wantTotal: 1},
		{name: "unknown county", path: "/api/county-results/Atlantis", wantStatus: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body map[string]interface{}
			status := getJSON(t, srv, tt.path, &body)
			require.Equal(t, tt.wantStatus, status)
			if tt.wantTotal > 0 {
				assert.EqualValues(t, tt.wantTotal, body["total"])
			}
		})
	}
}

func TestResultsHandler_MethodAndHealth(t *testing.T) {
	srv := testServer(t)

	resp, err := http.Post(srv.URL+"/api/summary", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
