package handlers

import (
	"context"

	"github.com/Tenjin25/openelections-data-mo/internal/models"
)

// ResultSource is the read side the API serves from. The PocketBase store
// and the SQL exporters satisfy it, as does DocumentSource.
type ResultSource interface {
	ListByCounty(ctx context.Context, county string) ([]*models.ContestResult, error)
	ListByYearOffice(ctx context.Context, year, office string) ([]*models.ContestResult, error)
}

// DocumentSource answers queries from an in-memory results document.
type DocumentSource struct {
	doc *models.Document
}

func NewDocumentSource(doc *models.Document) *DocumentSource {
	return &DocumentSource{doc: doc}
}

func (s *DocumentSource) ListByCounty(ctx context.Context, county string) ([]*models.ContestResult, error) {
	var out []*models.ContestResult
	s.doc.Each(func(_, _, c string, r *models.ContestResult) bool {
		if c == county {
			out = append(out, r)
		}
		return ctx.Err() == nil
	})
	return out, ctx.Err()
}

func (s *DocumentSource) ListByYearOffice(ctx context.Context, year, office string) ([]*models.ContestResult, error) {
	if s.doc == nil || s.doc.ResultsByYear == nil {
		return nil, nil
	}
	offices, ok := s.doc.ResultsByYear.Get(year)
	if !ok || offices == nil {
		return nil, nil
	}
	counties, ok := offices.Get(office)
	if !ok || counties == nil {
		return nil, nil
	}
	out := make([]*models.ContestResult, 0, counties.Len())
	for c := counties.Oldest(); c != nil; c = c.Next() {
		out = append(out, c.Value)
	}
	return out, ctx.Err()
}
