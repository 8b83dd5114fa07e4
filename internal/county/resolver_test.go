package county

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tenjin25/openelections-data-mo/internal/models"
)

func testCounties() []models.County {
	return []models.County{
		{Name: "Jackson", FIPS: "095"},
		{Name: "Clay", FIPS: "047"},
		{Name: "Platte", FIPS: "165"},
		{Name: "Cass", FIPS: "037"},
		{Name: "St. Louis County", FIPS: "189"},
		{Name: "DeKalb", FIPS: "063"},
		{Name: "Ste. Genevieve", FIPS: "186"},
	}
}

func TestNormalizeKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"St. Louis City", "stlouiscity"},
		{"ST LOUIS", "stlouis"},
		{"De Kalb", "dekalb"},
		{"Ste. Geneviève", "stegenevieve"},
		{"  123 ", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeKey(tt.in), "input %q", tt.in)
	}
}

func TestResolver_Resolve(t *testing.T) {
	r, err := NewResolver(testCounties())
	require.NoError(t, err)

	tests := []struct {
		name   string
		raw    string
		want   string
		wantOK bool
	}{
		{"st louis county", "ST LOUIS", "St. Louis County", true},
		{"st louis city", "ST LOUIS CITY", "St. Louis City", true},
		{"st louis city dotted", "St. Louis City", "St. Louis City", true},
		{"case and spacing", "de kalb", "DeKalb", true},
		{"accented", "Ste. Geneviève", "Ste. Genevieve", true},
		{"unknown", "Nonexistent County", "", false},
		{"empty", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := r.Resolve(tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got.Name)
		})
	}
}

func TestNewResolver_Errors(t *testing.T) {
	_, err := NewResolver(nil)
	require.ErrorIs(t, err, ErrEmptyReference)

	_, err = NewResolver([]models.County{{Name: "Clay"}, {Name: "CLAY"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate county key")

	_, err = NewResolver([]models.County{{Name: " "}})
	require.Error(t, err)
}

func TestResolver_ByFIPS(t *testing.T) {
	r, err := NewResolver(testCounties())
	require.NoError(t, err)

	c, ok := r.ByFIPS("165")
	require.True(t, ok)
	assert.Equal(t, "Platte", c.Name)

	_, ok = r.ByFIPS("999")
	assert.False(t, ok)
	assert.Equal(t, len(testCounties())+1, r.Len())
}

func TestReadReference(t *testing.T) {
	data := "\ufeffCounty,FIPS Code\nJackson,29095\nClay,47\n,\n"
	counties, err := ReadReference(strings.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, []models.County{
		{Name: "Jackson", FIPS: "095"},
		{Name: "Clay", FIPS: "047"},
	}, counties)

	_, err = ReadReference(strings.NewReader("Name,FIPS\nJackson,095\n"))
	require.Error(t, err)

	_, err = ReadReference(strings.NewReader("County,FIPS\n"))
	require.ErrorIs(t, err, ErrEmptyReference)
}

func TestLoadReference_Missing(t *testing.T) {
	_, err := LoadReference(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "mo_county_fips.csv")
	require.NoError(t, os.WriteFile(path, []byte("County,FIPS\nCass,037\n"), 0o644))
	counties, err := LoadReference(path)
	require.NoError(t, err)
	assert.Len(t, counties, 1)
}
