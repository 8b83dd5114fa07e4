package parser

import (
	"context"
	"fmt"
	"log"

	"github.com/Tenjin25/openelections-data-mo/internal/models"
)

// ParserManager manages different types of parsers
type ParserManager struct {
	parsers map[string]Parser
}

// NewParserManager creates a parser manager with the csv and zip parsers registered
func NewParserManager() *ParserManager {
	m := &ParserManager{
		parsers: make(map[string]Parser),
	}
	m.RegisterParser(NewCSVParser())
	m.RegisterParser(NewZIPParser())
	return m
}

// RegisterParser adds a new parser to the manager
func (m *ParserManager) RegisterParser(parser Parser) {
	m.parsers[parser.Method()] = parser
}

// GetParser retrieves a parser by method
func (m *ParserManager) GetParser(method string) (Parser, error) {
	parser, ok := m.parsers[method]
	if !ok {
		return nil, fmt.Errorf("no parser found for method: %s", method)
	}
	return parser, nil
}

// ParseFile parses a results file using the parser matching its extension
func (m *ParserManager) ParseFile(ctx context.Context, path string) ([]models.RawRow, error) {
	format := models.SourceFormatFromPath(path)
	if err := models.ValidateSourceFormat(format); err != nil {
		return nil, NewParseError("select", err)
	}

	parser, err := m.GetParser(string(format))
	if err != nil {
		return nil, NewParseError("select", err)
	}

	rows, err := parser.Parse(ctx, path)
	if err != nil {
		return nil, err
	}
	log.Printf("parser: method=%s file=%s rows=%d", parser.Method(), path, len(rows))
	return rows, nil
}
