// Package corrector recomputes competitiveness labels on an already written
// results document without re-running aggregation.
package corrector

import (
	"log"
	"math"
	"strings"

	"github.com/spf13/cast"

	"github.com/Tenjin25/openelections-data-mo/internal/competitiveness"
	"github.com/Tenjin25/openelections-data-mo/internal/formatter"
	"github.com/Tenjin25/openelections-data-mo/internal/models"
)

// Report summarizes one repair pass.
type Report struct {
	Checked     int `json:"checked"`
	Corrections int `json:"corrections"`
}

// Correct rewrites competitiveness.category and competitiveness.color in
// place wherever they disagree with margin_pct and winner. Results without a
// competitiveness block are left alone; no other field is touched.
func Correct(doc *models.Document) Report {
	var rep Report
	doc.Each(func(_, _, _ string, r *models.ContestResult) bool {
		rep.Checked++
		if r.Competitiveness == nil {
			return true
		}

		margin := parseMargin(r.MarginPct)
		winner := resolveWinner(string(r.Winner), margin)
		category := competitiveness.Category(math.Abs(margin))
		color := competitiveness.Color(category, winner)

		if r.Competitiveness.Color != color {
			r.Competitiveness.Color = color
			rep.Corrections++
		}
		if r.Competitiveness.Category != category {
			r.Competitiveness.Category = category
			rep.Corrections++
		}
		return true
	})
	return rep
}

// CorrectFile runs Correct over the document at path and writes it back.
func CorrectFile(path string) (Report, error) {
	doc, err := formatter.ReadDocument(path)
	if err != nil {
		return Report{}, err
	}
	rep := Correct(doc)
	if err := formatter.WriteDocument(path, doc); err != nil {
		return rep, err
	}
	log.Printf("corrector: checked=%d corrections=%d path=%s", rep.Checked, rep.Corrections, path)
	return rep, nil
}

func parseMargin(s *string) float64 {
	if s == nil {
		return 0
	}
	v, err := cast.ToFloat64E(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(*s), "%")))
	if err != nil {
		return 0
	}
	return v
}

// resolveWinner accepts REP/DEM/TIE and labels ending in (REP), (R), (DEM)
// or (D). Anything else is inferred from the sign of the margin.
func resolveWinner(w string, margin float64) models.Winner {
	w = strings.TrimSpace(w)
	switch {
	case w == string(models.WinnerREP) || strings.HasSuffix(w, "(REP)") || strings.HasSuffix(w, "(R)"):
		return models.WinnerREP
	case w == string(models.WinnerDEM) || strings.HasSuffix(w, "(DEM)") || strings.HasSuffix(w, "(D)"):
		return models.WinnerDEM
	case w == string(models.WinnerTie):
		return models.WinnerTie
	case margin > 0:
		return models.WinnerREP
	default:
		return models.WinnerDEM
	}
}
