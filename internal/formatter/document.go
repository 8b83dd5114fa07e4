package formatter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Tenjin25/openelections-data-mo/internal/competitiveness"
	"github.com/Tenjin25/openelections-data-mo/internal/models"
)

// Focus is the fixed focus line of the published document.
const Focus = "Clean geographic political patterns"

// BuildDocument assembles the output document from a finished store.
func BuildDocument(store *ResultStore, processedDate string) *models.Document {
	years := store.Years()
	return &models.Document{
		Focus:                Focus,
		ProcessedDate:        processedDate,
		CategorizationSystem: competitiveness.System(),
		Summary: models.Summary{
			TotalYears:         len(years),
			TotalContests:      store.Contests(),
			TotalCountyResults: store.Count(),
			YearsCovered:       years,
		},
		ResultsByYear: store.Ordered(),
	}
}

// EncodeDocument renders doc as two-space indented JSON without HTML escaping.
func EncodeDocument(doc *models.Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteDocument writes doc to path in one step through a temp file and rename.
func WriteDocument(path string, doc *models.Document) error {
	data, err := EncodeDocument(doc)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move document into place: %w", err)
	}
	return nil
}

// ReadDocument loads a previously written document, keeping key order.
func ReadDocument(path string) (*models.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	var doc models.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode document %s: %w", path, err)
	}
	if doc.ResultsByYear == nil {
		doc.ResultsByYear = models.NewYearResults()
	}
	return &doc, nil
}
