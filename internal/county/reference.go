package county

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Tenjin25/openelections-data-mo/internal/models"
)

// LoadReference reads the county FIPS CSV. It needs a County column and
// uses the first column whose header mentions fips for the code.
func LoadReference(path string) ([]models.County, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open county reference: %w", err)
	}
	defer f.Close()

	counties, err := ReadReference(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return counties, nil
}

// ReadReference parses county reference rows from r.
func ReadReference(r io.Reader) ([]models.County, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, ErrEmptyReference
		}
		return nil, fmt.Errorf("failed to read reference headers: %w", err)
	}

	nameIdx, fipsIdx := -1, -1
	for i, h := range headers {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		switch {
		case h == "county" && nameIdx < 0:
			nameIdx = i
		case strings.Contains(h, "fips") && fipsIdx < 0:
			fipsIdx = i
		}
	}
	if nameIdx < 0 {
		return nil, fmt.Errorf("county reference has no County column")
	}

	var counties []models.County
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read reference row: %w", err)
		}
		if nameIdx >= len(row) || strings.TrimSpace(row[nameIdx]) == "" {
			continue
		}
		c := models.County{Name: strings.TrimSpace(row[nameIdx])}
		if fipsIdx >= 0 && fipsIdx < len(row) {
			c.FIPS = countyFIPS(row[fipsIdx])
		}
		counties = append(counties, c)
	}
	if len(counties) == 0 {
		return nil, ErrEmptyReference
	}
	return counties, nil
}

// countyFIPS reduces a state+county code such as 29095 to its county part.
func countyFIPS(raw string) string {
	raw = strings.TrimSpace(raw)
	if len(raw) == 5 {
		return raw[2:]
	}
	if raw != "" && len(raw) < 3 {
		return strings.Repeat("0", 3-len(raw)) + raw
	}
	return raw
}
