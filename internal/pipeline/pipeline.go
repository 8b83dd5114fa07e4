// Package pipeline runs one full aggregation: county reference, per-year
// files, aggregation, document write and optional publishing.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/Tenjin25/openelections-data-mo/internal/candidate"
	"github.com/Tenjin25/openelections-data-mo/internal/config"
	"github.com/Tenjin25/openelections-data-mo/internal/county"
	"github.com/Tenjin25/openelections-data-mo/internal/filter"
	"github.com/Tenjin25/openelections-data-mo/internal/formatter"
	"github.com/Tenjin25/openelections-data-mo/internal/kc"
	"github.com/Tenjin25/openelections-data-mo/internal/loader"
	"github.com/Tenjin25/openelections-data-mo/internal/models"
	"github.com/Tenjin25/openelections-data-mo/internal/parser"
)

// Sink receives the finished document after it has been written.
type Sink interface {
	Name() string
	Publish(ctx context.Context, runID string, doc *models.Document) (int, error)
}

// FileReport describes what happened to one configured input.
type FileReport struct {
	models.YearFile
	Skipped    bool
	Stats      loader.Stats
	Unresolved []string
	Results    int
}

// Result is the outcome of a run.
type Result struct {
	RunID     string
	Output    string
	Document  *models.Document
	Files     []FileReport
	Published map[string]int
}

type Pipeline struct {
	cfg     config.Config
	sinks   []Sink
	manager *parser.ParserManager
}

func New(cfg config.Config, sinks ...Sink) *Pipeline {
	return &Pipeline{
		cfg:     cfg,
		sinks:   sinks,
		manager: parser.NewParserManager(),
	}
}

// Run is shorthand for New(cfg, sinks...).Run(ctx).
func Run(ctx context.Context, cfg config.Config, sinks ...Sink) (*Result, error) {
	return New(cfg, sinks...).Run(ctx)
}

// Run executes the pipeline. Only a missing county reference, a broken
// configuration and a failed output write abort the run.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	runID := uuid.NewString()
	started := time.Now()

	counties, err := county.LoadReference(p.cfg.ReferenceFile())
	if err != nil {
		return nil, fmt.Errorf("failed to load county reference: %w", err)
	}
	resolver, err := county.NewResolver(counties)
	if err != nil {
		return nil, fmt.Errorf("failed to build county resolver: %w", err)
	}
	offices, err := p.cfg.Filters.Get(filter.StageAggregate)
	if err != nil {
		return nil, err
	}

	names := candidate.New(p.cfg.TicketMode, p.cfg.Tables)
	f := formatter.New(names)
	store := formatter.NewResultStore()
	log.Printf("pipeline: run_id=%s counties=%d inputs=%d kc_policy=%s corrections=%d override_years=%v",
		runID, resolver.Len(), len(p.cfg.Inputs), p.cfg.KCPolicy, p.cfg.Tables.CorrectionCount(), p.cfg.Tables.OverrideYears())

	res := &Result{RunID: runID, Output: p.cfg.Output, Published: map[string]int{}}
	for _, path := range p.cfg.InputPaths() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		report, err := p.processFile(ctx, path, offices, names, resolver, f, store)
		if err != nil {
			return nil, err
		}
		res.Files = append(res.Files, report)
	}

	processed := p.cfg.ProcessedDate
	if processed == "" {
		processed = started.Format("2006-01-02")
	}
	res.Document = formatter.BuildDocument(store, processed)
	if err := formatter.WriteDocument(p.cfg.Output, res.Document); err != nil {
		return nil, fmt.Errorf("failed to write output: %w", err)
	}
	log.Printf("pipeline: run_id=%s wrote %s years=%d contests=%d results=%s elapsed=%s",
		runID, p.cfg.Output, res.Document.Summary.TotalYears, res.Document.Summary.TotalContests,
		humanize.Comma(int64(res.Document.Summary.TotalCountyResults)), time.Since(started).Round(time.Millisecond))

	for _, sink := range p.sinks {
		n, err := sink.Publish(ctx, runID, res.Document)
		if err != nil {
			log.Printf("pipeline: run_id=%s sink=%s publish failed: %v", runID, sink.Name(), err)
			continue
		}
		res.Published[sink.Name()] = n
	}
	return res, nil
}

func (p *Pipeline) processFile(
	ctx context.Context,
	path string,
	offices filter.Spec,
	names *candidate.Normalizer,
	resolver *county.Resolver,
	f *formatter.ResultsFormatter,
	store *formatter.ResultStore,
) (FileReport, error) {
	report := FileReport{YearFile: models.YearFile{Path: path}}

	year, err := models.YearFromFileName(filepath.Base(path))
	if err != nil {
		log.Printf("pipeline: skipping %s: %v", path, err)
		report.Skipped = true
		return report, nil
	}
	report.Year = year

	if _, err := os.Stat(path); err != nil {
		log.Printf("pipeline: skipping year=%s missing file %s", year, path)
		report.Skipped = true
		return report, nil
	}

	rows, err := p.manager.ParseFile(ctx, path)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return report, err
		}
		log.Printf("pipeline: skipping year=%s unreadable file: %v", year, err)
		report.Skipped = true
		return report, nil
	}
	store.AddYear(year)

	records, stats := loader.New(loader.Options{
		Year:               year,
		Policy:             p.cfg.KCPolicy,
		Offices:            offices,
		Normalizer:         names,
		PresidentialCutoff: p.cfg.PresidentialCutoff,
	}).Load(rows)
	report.Stats = stats
	records = kc.Apply(p.cfg.KCPolicy, records)

	groups, unresolved := groupByContest(records, resolver, year)
	report.Unresolved = unresolved
	for _, g := range groups {
		store.Put(f.Aggregate(year, g.office, g.county, g.rows))
		report.Results++
	}

	level := "county"
	if stats.PrecinctLevel || models.IsPrecinctFile(path) {
		level = "precinct"
	}
	log.Printf("pipeline: year=%s file=%s level=%s results=%s unresolved=%d",
		year, filepath.Base(path), level, humanize.Comma(int64(report.Results)), len(unresolved))
	return report, nil
}

type contestGroup struct {
	office string
	county models.County
	rows   []models.ElectionRecord
}

// groupByContest buckets records by office and canonical county, keeping
// first-seen order. Labels the resolver does not know are dropped.
func groupByContest(records []models.ElectionRecord, resolver *county.Resolver, year string) ([]*contestGroup, []string) {
	type key struct{ office, county string }

	resolved := map[string]models.County{}
	missing := map[string]bool{}
	var unresolved []string
	index := map[key]*contestGroup{}
	var groups []*contestGroup

	for _, rec := range records {
		c, ok := resolved[rec.County]
		if !ok {
			if missing[rec.County] {
				continue
			}
			c, ok = resolver.ResolveOrLog(rec.County, "year="+year)
			if !ok {
				missing[rec.County] = true
				unresolved = append(unresolved, rec.County)
				continue
			}
			resolved[rec.County] = c
		}

		rec.County = c.Name
		k := key{rec.Office, c.Name}
		g, ok := index[k]
		if !ok {
			g = &contestGroup{office: rec.Office, county: c}
			index[k] = g
			groups = append(groups, g)
		}
		g.rows = append(g.rows, rec)
	}
	return groups, unresolved
}
