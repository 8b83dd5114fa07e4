package formatter

import (
	"fmt"
	"math"
	"strings"

	"github.com/Tenjin25/openelections-data-mo/internal/candidate"
	"github.com/Tenjin25/openelections-data-mo/internal/competitiveness"
	"github.com/Tenjin25/openelections-data-mo/internal/models"
)

// ResultsFormatter turns grouped county records into ContestResults
type ResultsFormatter struct {
	names *candidate.Normalizer
}

// New creates a new ResultsFormatter
func New(names *candidate.Normalizer) *ResultsFormatter {
	if names == nil {
		names = candidate.New(candidate.TicketTruncate, nil)
	}
	return &ResultsFormatter{names: names}
}

type partition int

const (
	partOther partition = iota
	partDem
	partRep
)

// partyPartition buckets a party string. DEM is tested first so a row is
// counted in exactly one bucket.
func partyPartition(party string) partition {
	up := strings.ToUpper(party)
	switch {
	case strings.Contains(up, "DEM"):
		return partDem
	case strings.Contains(up, "REP"):
		return partRep
	default:
		return partOther
	}
}

func cleanMatch(party string, p partition) bool {
	switch strings.ToUpper(strings.TrimSpace(party)) {
	case "DEM", "DEMOCRATIC":
		return p == partDem
	case "REP", "REPUBLICAN":
		return p == partRep
	default:
		return false
	}
}

// Aggregate builds the result for one (year, office, county) group. Rows
// with the same party and candidate are merged first. Vote sums stay
// fractional until they are truncated for output.
func (f *ResultsFormatter) Aggregate(year, office string, county models.County, rows []models.ElectionRecord) *models.ContestResult {
	merged := models.SumByKey(rows)

	var demSum, repSum, otherSum float64
	parties := make(map[string]float64)
	for _, rec := range merged {
		switch partyPartition(rec.Party) {
		case partDem:
			demSum += rec.Votes
		case partRep:
			repSum += rec.Votes
		default:
			otherSum += rec.Votes
		}
		parties[strings.ToUpper(rec.Party)] += rec.Votes
	}

	dem, rep, other := int(demSum), int(repSum), int(otherSum)
	total := dem + rep + other
	twoParty := dem + rep
	margin := rep - dem
	if margin < 0 {
		margin = -margin
	}
	winner := models.WinnerFor(rep, dem)

	result := &models.ContestResult{
		County:        county.Name,
		Contest:       office,
		Year:          year,
		DemCandidate:  f.pickCandidate(merged, partDem),
		RepCandidate:  f.pickCandidate(merged, partRep),
		DemVotes:      dem,
		RepVotes:      rep,
		OtherVotes:    other,
		TotalVotes:    total,
		TwoPartyTotal: twoParty,
		Margin:        margin,
		Winner:        winner,
		AllParties:    make(map[string]int, len(parties)),
	}
	if total > 0 {
		result.DemPct = percent(dem, total)
		result.RepPct = percent(rep, total)
	}

	var marginPct *float64
	if twoParty > 0 {
		marginPct = percent(margin, twoParty)
		s := fmt.Sprintf("%.2f", *marginPct)
		result.MarginPct = &s
	}
	result.Competitiveness = competitiveness.Classify(marginPct, winner)

	for party, votes := range parties {
		result.AllParties[party] = int(votes)
	}
	return result
}

// pickCandidate returns the display name of the highest-vote candidate in
// partition p, preferring rows whose party is exactly the party code.
func (f *ResultsFormatter) pickCandidate(rows []models.ElectionRecord, p partition) string {
	best, bestClean := -1, -1
	for i, rec := range rows {
		if rec.Candidate == "" || partyPartition(rec.Party) != p {
			continue
		}
		if best < 0 || rec.Votes > rows[best].Votes {
			best = i
		}
		if cleanMatch(rec.Party, p) && (bestClean < 0 || rec.Votes > rows[bestClean].Votes) {
			bestClean = i
		}
	}
	if bestClean >= 0 {
		best = bestClean
	}
	if best < 0 {
		return ""
	}
	return f.names.Display(rows[best].Candidate)
}

func percent(part, whole int) *float64 {
	v := round2(float64(part) / float64(whole) * 100)
	return &v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
