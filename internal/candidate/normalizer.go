package candidate

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Tenjin25/openelections-data-mo/internal/reference"
)

// TicketMode controls how comma-joined tickets such as "George W. Bush, Dick Cheney" are rendered.
type TicketMode string

const (
	// TicketTruncate keeps only the head of the ticket.
	TicketTruncate TicketMode = "truncate"
	// TicketKeep keeps every member, joined with " / ".
	TicketKeep TicketMode = "keep"
)

// ParseTicketMode validates a configured ticket mode. Empty means truncate.
func ParseTicketMode(s string) (TicketMode, error) {
	switch TicketMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", TicketTruncate:
		return TicketTruncate, nil
	case TicketKeep:
		return TicketKeep, nil
	default:
		return "", fmt.Errorf("invalid ticket mode: %s", s)
	}
}

var (
	// Last, First [M.] [(Nick)]
	surnameFirst = regexp.MustCompile(`^([\p{L}'\-]+),\s*([\p{L}'\-]+)(?:\s+(\p{L})\.?)?(?:\s*\(([^)]+)\))?\s*$`)
	spaces       = regexp.MustCompile(`\s+`)
	punctuation  = regexp.MustCompile(`[.,()]`)
)

// Normalizer turns raw candidate strings into display names.
type Normalizer struct {
	Mode   TicketMode
	Tables *reference.Tables
}

// New builds a Normalizer. A nil tables value uses the built-in corrections.
func New(mode TicketMode, tables *reference.Tables) *Normalizer {
	if tables == nil {
		tables = reference.Default()
	}
	if mode == "" {
		mode = TicketTruncate
	}
	return &Normalizer{Mode: mode, Tables: tables}
}

// Normalize cleans a raw candidate value. Surname-first names are flipped,
// tickets are rendered per Mode, and the final string carries no periods,
// commas or parentheses.
func (n *Normalizer) Normalize(raw string) string {
	name := strings.TrimSpace(strings.ReplaceAll(raw, `"`, ""))
	if name == "" {
		return ""
	}

	if strings.Contains(name, ",") {
		if m := surnameFirst.FindStringSubmatch(name); m != nil {
			parts := []string{m[2]}
			if m[3] != "" {
				parts = append(parts, m[3])
			}
			if m[4] != "" {
				parts = append(parts, m[4])
			}
			name = strings.Join(append(parts, m[1]), " ")
		} else {
			name = n.ticket(name)
		}
	}

	name = spaces.ReplaceAllString(name, " ")
	name = punctuation.ReplaceAllString(name, "")
	return strings.TrimSpace(spaces.ReplaceAllString(name, " "))
}

func (n *Normalizer) ticket(name string) string {
	members := strings.Split(name, ",")
	if n.Mode != TicketKeep {
		return strings.TrimSpace(members[0])
	}
	kept := make([]string, 0, len(members))
	for _, m := range members {
		if m = strings.TrimSpace(m); m != "" {
			kept = append(kept, m)
		}
	}
	return strings.Join(kept, " / ")
}

// ApplyCorrections maps a name through the exact-match correction table.
func (n *Normalizer) ApplyCorrections(name string) string {
	return n.Tables.Correct(name)
}

// Display normalizes raw and then applies corrections.
func (n *Normalizer) Display(raw string) string {
	return n.ApplyCorrections(n.Normalize(raw))
}

// PartyOverride returns the manual party for candidate in year, if any.
func (n *Normalizer) PartyOverride(year, candidate string) (string, bool) {
	return n.Tables.PartyFor(year, candidate)
}
