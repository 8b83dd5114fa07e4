package models

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidResult is returned when a ContestResult breaks its vote invariants.
var ErrInvalidResult = errors.New("invalid contest result")

// validate is the package-level validator instance used for struct validation.
var validate = validator.New(validator.WithRequiredStructEnabled())

// Winner is the two-party outcome of a county contest.
type Winner string

const (
	WinnerREP Winner = "REP"
	WinnerDEM Winner = "DEM"
	WinnerTie Winner = "TIE"
)

// IsValidWinner reports whether w is one of REP, DEM or TIE.
func IsValidWinner(w Winner) bool {
	switch w {
	case WinnerREP, WinnerDEM, WinnerTie:
		return true
	default:
		return false
	}
}

// Competitiveness is the bucketed margin label attached to each result.
type Competitiveness struct {
	Category string `json:"category"`
	Party    string `json:"party"`
	Code     string `json:"code"`
	Color    string `json:"color"`
}

// ContestResult is the canonical per-county, per-office, per-year record.
// Field order matches the published document.
type ContestResult struct {
	County          string           `json:"county" validate:"required"`
	Contest         string           `json:"contest" validate:"required"`
	Year            string           `json:"year" validate:"required,len=4,numeric"`
	DemCandidate    string           `json:"dem_candidate"`
	RepCandidate    string           `json:"rep_candidate"`
	DemVotes        int              `json:"dem_votes" validate:"min=0"`
	RepVotes        int              `json:"rep_votes" validate:"min=0"`
	DemPct          *float64         `json:"dem_pct"`
	RepPct          *float64         `json:"rep_pct"`
	OtherVotes      int              `json:"other_votes" validate:"min=0"`
	TotalVotes      int              `json:"total_votes" validate:"min=0"`
	TwoPartyTotal   int              `json:"two_party_total" validate:"min=0"`
	Margin          int              `json:"margin" validate:"min=0"`
	MarginPct       *string          `json:"margin_pct"`
	Winner          Winner           `json:"winner" validate:"required,oneof=REP DEM TIE"`
	Competitiveness *Competitiveness `json:"competitiveness"`
	AllParties      map[string]int   `json:"all_parties"`
}

// Validate checks struct tags and the vote arithmetic invariants.
func (r *ContestResult) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResult, err)
	}
	if r.DemVotes+r.RepVotes+r.OtherVotes != r.TotalVotes {
		return fmt.Errorf("%w: dem+rep+other=%d != total=%d", ErrInvalidResult,
			r.DemVotes+r.RepVotes+r.OtherVotes, r.TotalVotes)
	}
	if r.DemVotes+r.RepVotes != r.TwoPartyTotal {
		return fmt.Errorf("%w: two-party total %d does not match dem+rep", ErrInvalidResult, r.TwoPartyTotal)
	}
	if r.Margin != absInt(r.RepVotes-r.DemVotes) {
		return fmt.Errorf("%w: margin %d != |rep-dem|", ErrInvalidResult, r.Margin)
	}
	if r.Winner != WinnerFor(r.RepVotes, r.DemVotes) {
		return fmt.Errorf("%w: winner %s inconsistent with votes", ErrInvalidResult, r.Winner)
	}
	if r.TwoPartyTotal == 0 && r.MarginPct != nil {
		return fmt.Errorf("%w: margin_pct set without a two-party total", ErrInvalidResult)
	}
	return nil
}

// WinnerFor derives the winner from the sign of rep-dem.
func WinnerFor(rep, dem int) Winner {
	switch {
	case rep > dem:
		return WinnerREP
	case dem > rep:
		return WinnerDEM
	default:
		return WinnerTie
	}
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
