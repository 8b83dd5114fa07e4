// internal/parser/parser.go
package parser

import (
	"context"
	"fmt"

	"github.com/Tenjin25/openelections-data-mo/internal/models"
)

// Parser defines the interface for different input container formats
type Parser interface {
	// Method returns the parser type (e.g., "csv", "zip")
	Method() string

	// Parse reads every results row from the file at path
	Parse(ctx context.Context, path string) ([]models.RawRow, error)
}

// ParseError represents a parsing error with a specific stage
type ParseError struct {
	Stage string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at %s stage: %v", e.Stage, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a new ParseError
func NewParseError(stage string, err error) *ParseError {
	return &ParseError{
		Stage: stage,
		Err:   err,
	}
}
