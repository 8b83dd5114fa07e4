package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/daos"
	"github.com/pocketbase/pocketbase/migrations"
	"github.com/pocketbase/pocketbase/migrations/logs"
	pbModels "github.com/pocketbase/pocketbase/models"
	"github.com/pocketbase/pocketbase/models/schema"
	"github.com/pocketbase/pocketbase/tools/migrate"

	"github.com/Tenjin25/openelections-data-mo/internal/models"
)

// CollectionName is the PocketBase collection holding published results.
const CollectionName = "contest_results"

type PocketBaseStore struct {
	app *pocketbase.PocketBase
}

// NewPocketBaseStore opens (or creates) a PocketBase data directory and
// makes sure the results collection exists.
func NewPocketBaseStore(dataDir string) (*PocketBaseStore, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	app := pocketbase.NewWithConfig(pocketbase.Config{
		DefaultDataDir:  dataDir,
		HideStartBanner: true,
	})
	if err := app.Bootstrap(); err != nil {
		return nil, fmt.Errorf("failed to bootstrap PocketBase: %w", err)
	}
	if err := runMigrations(app); err != nil {
		return nil, fmt.Errorf("failed to migrate PocketBase: %w", err)
	}
	if err := ensureCollection(app); err != nil {
		return nil, fmt.Errorf("failed to ensure collection exists: %w", err)
	}

	return &PocketBaseStore{app: app}, nil
}

func runMigrations(app *pocketbase.PocketBase) error {
	runners := []struct {
		db   *dbx.DB
		list migrate.MigrationsList
	}{
		{db: app.DB(), list: migrations.AppMigrations},
		{db: app.LogsDB(), list: logs.LogsMigrations},
	}
	for _, r := range runners {
		runner, err := migrate.NewRunner(r.db, r.list)
		if err != nil {
			return err
		}
		if _, err := runner.Up(); err != nil {
			return err
		}
	}
	return nil
}

func ensureCollection(app *pocketbase.PocketBase) error {
	if _, err := app.Dao().FindCollectionByNameOrId(CollectionName); err == nil {
		return nil
	}

	collection := newResultsCollection()
	if err := app.Dao().SaveCollection(collection); err != nil {
		return fmt.Errorf("failed to save collection: %w", err)
	}
	log.Printf("storage: created collection %s", CollectionName)
	return nil
}

// newResultsCollection describes the contest_results collection.
func newResultsCollection() *pbModels.Collection {
	text := func(name string, required bool) *schema.SchemaField {
		return &schema.SchemaField{Name: name, Type: schema.FieldTypeText, Required: required}
	}
	number := func(name string) *schema.SchemaField {
		return &schema.SchemaField{Name: name, Type: schema.FieldTypeNumber}
	}

	collection := &pbModels.Collection{
		Name: CollectionName,
		Type: pbModels.CollectionTypeBase,
		Schema: schema.NewSchema(
			text("run_id", true),
			text("year", true),
			text("contest", true),
			text("county", true),
			text("dem_candidate", false),
			text("rep_candidate", false),
			number("dem_votes"),
			number("rep_votes"),
			number("other_votes"),
			number("total_votes"),
			text("margin_pct", false),
			&schema.SchemaField{
				Name:     "winner",
				Type:     schema.FieldTypeSelect,
				Required: true,
				Options: &schema.SelectOptions{
					MaxSelect: 1,
					Values:    []string{string(models.WinnerREP), string(models.WinnerDEM), string(models.WinnerTie)},
				},
			},
			text("category", false),
			text("color", false),
			&schema.SchemaField{
				Name:    "payload",
				Type:    schema.FieldTypeJson,
				Options: &schema.JsonOptions{MaxSize: 1 << 16},
			},
		),
	}
	collection.Indexes = []string{
		fmt.Sprintf("CREATE INDEX idx_%s_county ON %s (county)", CollectionName, CollectionName),
		fmt.Sprintf("CREATE INDEX idx_%s_year_contest ON %s (year, contest)", CollectionName, CollectionName),
	}

	return collection
}

// Name identifies the sink in logs.
func (s *PocketBaseStore) Name() string { return "pocketbase" }

// Publish replaces the stored results with every result in doc.
func (s *PocketBaseStore) Publish(ctx context.Context, runID string, doc *models.Document) (int, error) {
	collection, err := s.app.Dao().FindCollectionByNameOrId(CollectionName)
	if err != nil {
		return 0, fmt.Errorf("failed to find collection: %w", err)
	}

	saved := 0
	err = s.app.Dao().RunInTransaction(func(txDao *daos.Dao) error {
		if _, err := txDao.DB().Delete(collection.Name, nil).Execute(); err != nil {
			return fmt.Errorf("failed to clear previous results: %w", err)
		}

		var saveErr error
		doc.Each(func(_, _, _ string, r *models.ContestResult) bool {
			if saveErr = ctx.Err(); saveErr != nil {
				return false
			}
			record := pbModels.NewRecord(collection)
			if saveErr = fillRecord(record, runID, r); saveErr != nil {
				return false
			}
			if saveErr = txDao.SaveRecord(record); saveErr != nil {
				saveErr = fmt.Errorf("failed to save record %s/%s/%s: %w", r.Year, r.Contest, r.County, saveErr)
				return false
			}
			saved++
			return true
		})
		return saveErr
	})
	if err != nil {
		return 0, err
	}
	return saved, nil
}

func fillRecord(record *pbModels.Record, runID string, r *models.ContestResult) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	record.Set("run_id", runID)
	record.Set("year", r.Year)
	record.Set("contest", r.Contest)
	record.Set("county", r.County)
	record.Set("dem_candidate", r.DemCandidate)
	record.Set("rep_candidate", r.RepCandidate)
	record.Set("dem_votes", r.DemVotes)
	record.Set("rep_votes", r.RepVotes)
	record.Set("other_votes", r.OtherVotes)
	record.Set("total_votes", r.TotalVotes)
	if r.MarginPct != nil {
		record.Set("margin_pct", *r.MarginPct)
	}
	record.Set("winner", string(r.Winner))
	if r.Competitiveness != nil {
		record.Set("category", r.Competitiveness.Category)
		record.Set("color", r.Competitiveness.Color)
	}
	record.Set("payload", string(payload))
	return nil
}

// ListByCounty returns every stored result for a canonical county name.
func (s *PocketBaseStore) ListByCounty(ctx context.Context, county string) ([]*models.ContestResult, error) {
	return s.list(ctx, dbx.HashExp{"county": county})
}

// ListByYearOffice returns the county results of one contest.
func (s *PocketBaseStore) ListByYearOffice(ctx context.Context, year, office string) ([]*models.ContestResult, error) {
	return s.list(ctx, dbx.HashExp{"year": year, "contest": office})
}

func (s *PocketBaseStore) list(ctx context.Context, where dbx.HashExp) ([]*models.ContestResult, error) {
	collection, err := s.app.Dao().FindCollectionByNameOrId(CollectionName)
	if err != nil {
		return nil, fmt.Errorf("failed to find collection: %w", err)
	}

	var records []*pbModels.Record
	query := s.app.Dao().RecordQuery(collection).
		AndWhere(where).
		OrderBy("year ASC", "contest ASC", "county ASC").
		WithContext(ctx)
	if err := query.All(&records); err != nil {
		return nil, fmt.Errorf("failed to fetch results: %w", err)
	}

	results := make([]*models.ContestResult, 0, len(records))
	for _, record := range records {
		var r models.ContestResult
		if err := record.UnmarshalJSONField("payload", &r); err != nil {
			return nil, fmt.Errorf("failed to decode result %s: %w", record.Id, err)
		}
		results = append(results, &r)
	}
	return results, nil
}

// Close releases the PocketBase database handles.
func (s *PocketBaseStore) Close() error {
	return s.app.ResetBootstrapState()
}
