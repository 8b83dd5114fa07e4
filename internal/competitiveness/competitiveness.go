package competitiveness

import (
	"math"
	"strings"

	"github.com/Tenjin25/openelections-data-mo/internal/models"
)

// Categories, strongest first.
const (
	Annihilation = "Annihilation"
	Dominant     = "Dominant"
	Stronghold   = "Stronghold"
	Safe         = "Safe"
	Likely       = "Likely"
	Lean         = "Lean"
	Tilt         = "Tilt"
	Tossup       = "Tossup"
)

const (
	partyRepublican = "Republican"
	partyDemocratic = "Democratic"
	tossupCode      = "TOSSUP"
	tossupColor     = "#f7f7f7"
)

type band struct {
	category string
	min      float64
	rep      string
	dem      string
	repRange string
	demRange string
}

// bands is ordered by descending inclusive lower bound.
var bands = []band{
	{Annihilation, 40, "#67000d", "#08306b", "R+40%+", "D+40%+"},
	{Dominant, 30, "#a50f15", "#08519c", "R+30-40%", "D+30-40%"},
	{Stronghold, 20, "#cb181d", "#3182bd", "R+20-30%", "D+20-30%"},
	{Safe, 10, "#ef3b2c", "#6baed6", "R+10-20%", "D+10-20%"},
	{Likely, 5.5, "#fb6a4a", "#9ecae1", "R+5.5-10%", "D+5.5-10%"},
	{Lean, 1, "#fcae91", "#c6dbef", "R+1-5.5%", "D+1-5.5%"},
	{Tilt, 0.5, "#fee8c8", "#e1f5fe", "R+0.5-1%", "D+0.5-1%"},
}

// Category buckets an absolute margin percentage.
func Category(absMargin float64) string {
	m := math.Abs(absMargin)
	for _, b := range bands {
		if m >= b.min {
			return b.category
		}
	}
	return Tossup
}

// Color returns the legend color for a category won by winner.
// Tossup and TIE always map to the neutral color.
func Color(category string, winner models.Winner) string {
	if category == Tossup || winner == models.WinnerTie {
		return tossupColor
	}
	for _, b := range bands {
		if b.category != category {
			continue
		}
		if winner == models.WinnerDEM {
			return b.dem
		}
		return b.rep
	}
	return tossupColor
}

// Classify labels a contest from its two-party margin percentage.
// A nil margin means there was no two-party contest and yields nil.
// A TIE is always Tossup.
func Classify(marginPct *float64, winner models.Winner) *models.Competitiveness {
	if marginPct == nil {
		return nil
	}
	category := Category(*marginPct)
	if category == Tossup || winner == models.WinnerTie {
		return &models.Competitiveness{
			Category: Tossup,
			Party:    Tossup,
			Code:     tossupCode,
			Color:    tossupColor,
		}
	}

	party, prefix := partyRepublican, "R_"
	if winner == models.WinnerDEM {
		party, prefix = partyDemocratic, "D_"
	}
	return &models.Competitiveness{
		Category: category,
		Party:    party,
		Code:     prefix + strings.ToUpper(category),
		Color:    Color(category, winner),
	}
}

// Scale returns the static legend published with every document.
func Scale() models.CompetitivenessScale {
	scale := models.CompetitivenessScale{
		Tossup: []models.ScaleEntry{{Category: Tossup, Range: "±0.5%", Color: tossupColor}},
	}
	for _, b := range bands {
		scale.Republican = append(scale.Republican, models.ScaleEntry{Category: b.category, Range: b.repRange, Color: b.rep})
	}
	for i := len(bands) - 1; i >= 0; i-- {
		b := bands[i]
		scale.Democratic = append(scale.Democratic, models.ScaleEntry{Category: b.category, Range: b.demRange, Color: b.dem})
	}
	return scale
}

// System returns the full categorization_system block.
func System() models.CategorizationSystem {
	return models.CategorizationSystem{
		CompetitivenessScale: Scale(),
		OfficeTypes:          []string{"Federal", "State", "Judicial", "Other"},
		EnhancedFeatures: []string{
			"Competitiveness categorization for each county",
			"Contest type classification (Federal/State/Judicial)",
			"Office ranking system for analysis prioritization",
			"Color coding compatible with political geography visualization",
		},
	}
}
