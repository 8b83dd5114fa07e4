package parser

import (
	"archive/zip"
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/Tenjin25/openelections-data-mo/internal/models"
)

// ZIPParser implements Parser for local archives holding one or more CSV files
type ZIPParser struct{}

// NewZIPParser creates a new ZIP parser instance
func NewZIPParser() *ZIPParser {
	return &ZIPParser{}
}

// Method returns the parser type
func (p *ZIPParser) Method() string {
	return string(models.SourceFormatZIP)
}

// Parse implements the Parser interface
func (p *ZIPParser) Parse(ctx context.Context, path string) ([]models.RawRow, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, NewParseError("open", fmt.Errorf("failed to open ZIP: %w", err))
	}
	defer r.Close()

	files := make([]*zip.File, 0, len(r.File))
	files = append(files, r.File...)
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })

	var rows []models.RawRow
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		entryRows, err := p.processZIPEntry(ctx, path, f)
		if err != nil {
			return nil, NewParseError("process", fmt.Errorf("failed to process %s: %w", f.Name, err))
		}
		rows = append(rows, entryRows...)
	}
	return rows, nil
}

// processZIPEntry handles a single file from the ZIP archive
func (p *ZIPParser) processZIPEntry(ctx context.Context, archive string, f *zip.File) ([]models.RawRow, error) {
	if f.FileInfo().IsDir() || !strings.HasSuffix(strings.ToLower(f.Name), ".csv") {
		log.Printf("parser: skipping non-CSV entry %s in %s", f.Name, archive)
		return nil, nil
	}

	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file in ZIP: %w", err)
	}
	defer rc.Close()

	return readRows(ctx, rc, archive+":"+f.Name)
}
