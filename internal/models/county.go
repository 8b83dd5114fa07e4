package models

import (
	"fmt"
	"path/filepath"
	"strings"
)

// SourceFormat represents the container format of a per-year results file
type SourceFormat string

const (
	SourceFormatCSV SourceFormat = "csv"
	SourceFormatZIP SourceFormat = "zip"
)

// ValidateSourceFormat checks if the source format is supported
func ValidateSourceFormat(format SourceFormat) error {
	switch format {
	case SourceFormatCSV, SourceFormatZIP:
		return nil
	default:
		return fmt.Errorf("invalid source format: %s", format)
	}
}

// SourceFormatFromPath derives the format from a file extension
func SourceFormatFromPath(path string) SourceFormat {
	return SourceFormat(strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."))
}

// County is a canonical Missouri county (or independent city) from the FIPS reference list
type County struct {
	Name string `json:"county"`
	FIPS string `json:"fips,omitempty"`
}

// Validate ensures the county carries a name
func (c County) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("county name is required")
	}
	return nil
}

// YearFile is one configured per-year input file
type YearFile struct {
	Year string
	Path string
}

// YearFromFileName extracts the election year from names like 20181106__mo__general__precinct.csv
func YearFromFileName(name string) (string, error) {
	base := filepath.Base(name)
	if len(base) < 4 {
		return "", fmt.Errorf("file name %q too short to carry a year", base)
	}
	year := base[:4]
	for _, r := range year {
		if r < '0' || r > '9' {
			return "", fmt.Errorf("file name %q does not start with a year", base)
		}
	}
	return year, nil
}

// IsPrecinctFile reports whether a results file name denotes precinct-level rows
func IsPrecinctFile(name string) bool {
	return strings.Contains(strings.ToLower(filepath.Base(name)), "__precinct")
}
