package candidate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tenjin25/openelections-data-mo/internal/reference"
)

func TestNormalize(t *testing.T) {
	n := New(TicketTruncate, nil)

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"empty", "", ""},
		{"plain", "Claire McCaskill", "Claire McCaskill"},
		{"quotes and spacing", `  "Roy   Blunt" `, "Roy Blunt"},
		{"surname first", "Blunt, Roy", "Roy Blunt"},
		{"surname first with initial and nickname", "Nixon, Jeremiah W. (Jay)", "Jeremiah W Jay Nixon"},
		{"surname first with nickname", "Spence, David (Dave)", "David Dave Spence"},
		{"ticket truncated", "George W. Bush, Dick Cheney", "George W Bush"},
		{"ticket three names", "Barack Obama, Joe Biden, Extra", "Barack Obama"},
		{"periods stripped", "Christopher S. Bond", "Christopher S Bond"},
		{"parens stripped", "Jeremiah W. (Jay) Nixon", "Jeremiah W Jay Nixon"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := n.Normalize(tt.raw)
			assert.Equal(t, tt.want, got)
			assert.False(t, strings.ContainsAny(got, ".,()"))
		})
	}
}

func TestNormalize_KeepTicket(t *testing.T) {
	n := New(TicketKeep, nil)
	assert.Equal(t, "George W Bush / Dick Cheney", n.Normalize("George W. Bush, Dick Cheney"))
	assert.Equal(t, "Roy Blunt", n.Normalize("Blunt, Roy"))
}

func TestDisplay_AppliesCorrections(t *testing.T) {
	n := New(TicketTruncate, reference.Default())
	assert.Equal(t, "Jay Nixon", n.Display("Nixon, Jeremiah W. (Jay)"))
	assert.Equal(t, "Kit Bond", n.Display("Christopher Bond"))
	assert.Equal(t, "Dave Spence", n.Display("Spence, David (Dave)"))
	assert.Equal(t, "Josh Hawley", n.Display("Josh Hawley"))
}

func TestPartyOverride(t *testing.T) {
	n := New("", nil)
	party, ok := n.PartyOverride("2018", "Nicole Galloway")
	require.True(t, ok)
	assert.Equal(t, "DEM", party)
}

func TestParseTicketMode(t *testing.T) {
	mode, err := ParseTicketMode("")
	require.NoError(t, err)
	assert.Equal(t, TicketTruncate, mode)

	mode, err = ParseTicketMode(" KEEP ")
	require.NoError(t, err)
	assert.Equal(t, TicketKeep, mode)

	_, err = ParseTicketMode("split")
	require.Error(t, err)
}
