// Package export publishes a finished results document into relational
// databases. Each publish replaces the previous contents in one transaction.
package export

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/Tenjin25/openelections-data-mo/internal/models"
)

const (
	resultsTable = "contest_results"
	runsTable    = "publish_runs"
)

var schemaStmts = []string{
	`CREATE TABLE IF NOT EXISTS contest_results (
		year TEXT NOT NULL,
		contest TEXT NOT NULL,
		county TEXT NOT NULL,
		run_id TEXT NOT NULL,
		dem_candidate TEXT,
		rep_candidate TEXT,
		dem_votes INTEGER,
		rep_votes INTEGER,
		other_votes INTEGER,
		total_votes INTEGER,
		margin_pct TEXT,
		winner TEXT NOT NULL,
		category TEXT,
		color TEXT,
		payload TEXT NOT NULL,
		PRIMARY KEY (year, contest, county)
	);`,
	`CREATE INDEX IF NOT EXISTS idx_contest_results_county ON contest_results(county);`,
	`CREATE TABLE IF NOT EXISTS publish_runs (
		run_id TEXT PRIMARY KEY,
		results INTEGER NOT NULL,
		published_at TIMESTAMP NOT NULL
	);`,
}

// Run describes one completed publish.
type Run struct {
	ID          string    `json:"run_id"`
	Results     int       `json:"results"`
	PublishedAt time.Time `json:"published_at"`
}

// sqlExporter carries the dialect-independent publish and query logic.
type sqlExporter struct {
	name string
	db   *sql.DB
	sb   sq.StatementBuilderType
}

func newSQLExporter(name string, db *sql.DB, placeholders sq.PlaceholderFormat) *sqlExporter {
	return &sqlExporter{
		name: name,
		db:   db,
		sb:   sq.StatementBuilder.PlaceholderFormat(placeholders),
	}
}

func (e *sqlExporter) migrate(ctx context.Context) error {
	for _, stmt := range schemaStmts {
		if _, err := e.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to migrate %s: %w", e.name, err)
		}
	}
	return nil
}

// Name identifies the sink in logs.
func (e *sqlExporter) Name() string { return e.name }

// Publish replaces every stored result with the contents of doc.
func (e *sqlExporter) Publish(ctx context.Context, runID string, doc *models.Document) (int, error) {
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := e.sb.Delete(resultsTable).RunWith(tx).ExecContext(ctx); err != nil {
		return 0, fmt.Errorf("failed to clear previous results: %w", err)
	}

	saved := 0
	var insertErr error
	doc.Each(func(_, _, _ string, r *models.ContestResult) bool {
		if insertErr = e.insert(ctx, tx, runID, r); insertErr != nil {
			return false
		}
		saved++
		return true
	})
	if insertErr != nil {
		return 0, insertErr
	}

	_, err = e.sb.Insert(runsTable).
		Columns("run_id", "results", "published_at").
		Values(runID, saved, time.Now().UTC()).
		RunWith(tx).
		ExecContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to record run: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit results: %w", err)
	}
	log.Printf("export: sink=%s run_id=%s results=%d", e.name, runID, saved)
	return saved, nil
}

func (e *sqlExporter) insert(ctx context.Context, tx *sql.Tx, runID string, r *models.ContestResult) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	var category, color sql.NullString
	if r.Competitiveness != nil {
		category = sql.NullString{String: r.Competitiveness.Category, Valid: true}
		color = sql.NullString{String: r.Competitiveness.Color, Valid: true}
	}
	var margin sql.NullString
	if r.MarginPct != nil {
		margin = sql.NullString{String: *r.MarginPct, Valid: true}
	}

	_, err = e.sb.Insert(resultsTable).
		Columns(
			"year", "contest", "county", "run_id",
			"dem_candidate", "rep_candidate",
			"dem_votes", "rep_votes", "other_votes", "total_votes",
			"margin_pct", "winner", "category", "color", "payload",
		).
		Values(
			r.Year, r.Contest, r.County, runID,
			r.DemCandidate, r.RepCandidate,
			r.DemVotes, r.RepVotes, r.OtherVotes, r.TotalVotes,
			margin, string(r.Winner), category, color, string(payload),
		).
		RunWith(tx).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to insert %s/%s/%s: %w", r.Year, r.Contest, r.County, err)
	}
	return nil
}

// ListByCounty returns every stored result for a canonical county name.
func (e *sqlExporter) ListByCounty(ctx context.Context, county string) ([]*models.ContestResult, error) {
	return e.list(ctx, sq.Eq{"county": county})
}

// ListByYearOffice returns the county results of one contest.
func (e *sqlExporter) ListByYearOffice(ctx context.Context, year, office string) ([]*models.ContestResult, error) {
	return e.list(ctx, sq.Eq{"year": year, "contest": office})
}

func (e *sqlExporter) list(ctx context.Context, where sq.Eq) ([]*models.ContestResult, error) {
	rows, err := e.sb.Select("payload").
		From(resultsTable).
		Where(where).
		OrderBy("year", "contest", "county").
		RunWith(e.db).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer rows.Close()

	var results []*models.ContestResult
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		var r models.ContestResult
		if err := json.Unmarshal([]byte(payload), &r); err != nil {
			return nil, fmt.Errorf("failed to decode result: %w", err)
		}
		results = append(results, &r)
	}
	return results, rows.Err()
}

// LastRun returns the most recent publish, or false when nothing has been
// published yet.
func (e *sqlExporter) LastRun(ctx context.Context) (Run, bool, error) {
	var run Run
	err := e.sb.Select("run_id", "results", "published_at").
		From(runsTable).
		OrderBy("published_at DESC").
		Limit(1).
		RunWith(e.db).
		QueryRowContext(ctx).
		Scan(&run.ID, &run.Results, &run.PublishedAt)
	if err == sql.ErrNoRows {
		return Run{}, false, nil
	}
	if err != nil {
		return Run{}, false, fmt.Errorf("failed to read last run: %w", err)
	}
	return run, true, nil
}

// Close releases the database handle.
func (e *sqlExporter) Close() error { return e.db.Close() }
