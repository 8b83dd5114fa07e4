package parser

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/Tenjin25/openelections-data-mo/internal/models"
)

// CSVParser implements Parser for plain CSV results files
type CSVParser struct{}

// NewCSVParser creates a new CSV parser instance
func NewCSVParser() *CSVParser {
	return &CSVParser{}
}

// Method returns the parser type
func (p *CSVParser) Method() string {
	return string(models.SourceFormatCSV)
}

// Parse implements the Parser interface
func (p *CSVParser) Parse(ctx context.Context, path string) ([]models.RawRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, NewParseError("open", err)
	}
	defer f.Close()

	rows, err := readRows(ctx, f, path)
	if err != nil {
		return nil, NewParseError("read", err)
	}
	return rows, nil
}

// readRows turns CSV content into rows keyed by lowercased header.
// Malformed lines are logged and skipped; short lines are padded with "".
func readRows(ctx context.Context, r io.Reader, source string) ([]models.RawRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	headers, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read CSV headers: %w", err)
	}

	// Create header map for easier access
	keys := make([]string, len(headers))
	for i, header := range headers {
		if i == 0 {
			header = strings.TrimPrefix(header, "\ufeff")
		}
		keys[i] = strings.ToLower(strings.TrimSpace(header))
	}

	var rows []models.RawRow
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				log.Printf("parser: skipping malformed line source=%s line=%d: %v", source, perr.Line, perr.Err)
				continue
			}
			return nil, fmt.Errorf("failed to read CSV row: %w", err)
		}

		fields := make(map[string]string, len(keys))
		for i, key := range keys {
			if key == "" {
				continue
			}
			if i < len(record) {
				fields[key] = record[i]
			} else {
				fields[key] = ""
			}
		}
		line, _ := reader.FieldPos(0)
		rows = append(rows, models.RawRow{Line: line, Source: source, Fields: fields})
	}
	return rows, nil
}
