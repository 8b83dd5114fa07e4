package loader

import (
	"log"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cast"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Tenjin25/openelections-data-mo/internal/candidate"
	"github.com/Tenjin25/openelections-data-mo/internal/filter"
	"github.com/Tenjin25/openelections-data-mo/internal/kc"
	"github.com/Tenjin25/openelections-data-mo/internal/models"
)

// DefaultPresidentialCutoff is the first year whose presidential rows carry
// the candidate split over first/last name columns.
const DefaultPresidentialCutoff = 2008

// Options configures one per-year load.
type Options struct {
	Year               string
	Policy             kc.Policy
	Offices            filter.Spec
	Normalizer         *candidate.Normalizer
	PresidentialCutoff int
}

// Stats counts what happened to the rows of one file.
type Stats struct {
	RowsRead       int
	DroppedMissing int
	DroppedOffice  int
	CoercedVotes   int
	PartyOverrides int
	Corrections    int
	Records        int
	PrecinctLevel  bool
}

// Loader turns one year's raw rows into normalized county-level records.
type Loader struct {
	opts   Options
	title  cases.Caser
	cutoff int
}

// New creates a Loader.
func New(opts Options) *Loader {
	if opts.Normalizer == nil {
		opts.Normalizer = candidate.New(candidate.TicketTruncate, nil)
	}
	cutoff := opts.PresidentialCutoff
	if cutoff == 0 {
		cutoff = DefaultPresidentialCutoff
	}
	return &Loader{
		opts:   opts,
		title:  cases.Title(language.English),
		cutoff: cutoff,
	}
}

// Load filters and normalizes rows. Precinct-level input is summed on
// (county, office, party, candidate); county-level input passes through.
func (l *Loader) Load(rows []models.RawRow) ([]models.ElectionRecord, Stats) {
	stats := Stats{RowsRead: len(rows)}
	records := make([]models.ElectionRecord, 0, len(rows))

	for _, row := range rows {
		if row.Has("precinct") {
			stats.PrecinctLevel = true
		}

		office := row.Get("office")
		county := row.Get("county")
		if office == "" || county == "" {
			stats.DroppedMissing++
			continue
		}
		if !l.opts.Offices.Match(office) {
			stats.DroppedOffice++
			continue
		}

		name := l.candidateName(row, office)
		party := row.Get("party")
		if override, ok := l.opts.Normalizer.PartyOverride(l.opts.Year, name); ok {
			party = override
			stats.PartyOverrides++
		}
		if fixed := l.opts.Normalizer.ApplyCorrections(name); fixed != name {
			name = fixed
			stats.Corrections++
		}

		raw := row.Get("votes")
		votes, ok := models.ParseVotes(raw)
		if !ok {
			stats.CoercedVotes++
			if raw != "" {
				log.Printf("loader: coerced votes to 0 source=%s line=%d value=%q", row.Source, row.Line, raw)
			}
		}

		records = append(records, models.ElectionRecord{
			County:    kc.Relabel(l.opts.Policy, l.title.String(county)),
			Office:    office,
			District:  row.Get("district"),
			Party:     party,
			Candidate: name,
			Precinct:  row.Get("precinct"),
			Votes:     votes,
		})
	}

	if stats.PrecinctLevel {
		records = models.SumByKey(records)
	}
	stats.Records = len(records)

	log.Printf("loader: year=%s rows=%s records=%s dropped_missing=%d dropped_office=%s coerced=%d",
		l.opts.Year, humanize.Comma(int64(stats.RowsRead)), humanize.Comma(int64(stats.Records)),
		stats.DroppedMissing, humanize.Comma(int64(stats.DroppedOffice)), stats.CoercedVotes)
	return records, stats
}

// candidateName uses the candidate column when filled, else rebuilds the
// name from separate first/last columns.
func (l *Loader) candidateName(row models.RawRow, office string) string {
	if name := row.Get("candidate"); name != "" {
		return name
	}
	if row.Has("first_name") || row.Has("last_name") {
		return joinName(row.Get("first_name"), row.Get("last_name"))
	}
	first, last := row.Get("first name"), row.Get("last name")
	if l.fullNameInLast(office) && strings.Contains(last, " ") {
		return last
	}
	return joinName(first, last)
}

// fullNameInLast reports whether older presidential files put the full
// presidential name in the last name column and the running mate in first name.
func (l *Loader) fullNameInLast(office string) bool {
	if !strings.Contains(strings.ToLower(office), "president") {
		return false
	}
	year, err := cast.ToIntE(l.opts.Year)
	return err == nil && year < l.cutoff
}

func joinName(first, last string) string {
	return strings.TrimSpace(first + " " + last)
}
