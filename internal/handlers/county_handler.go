package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/Tenjin25/openelections-data-mo/internal/county"
	"github.com/Tenjin25/openelections-data-mo/internal/models"
)

// ResultsHandler serves the published results read-only.
type ResultsHandler struct {
	doc      *models.Document
	source   ResultSource
	resolver *county.Resolver
}

// NewResultsHandler builds a handler over doc. Per-contest and per-county
// queries go to source when it is non-nil, otherwise to doc itself. A nil
// resolver disables county name normalization on lookups.
func NewResultsHandler(doc *models.Document, source ResultSource, resolver *county.Resolver) *ResultsHandler {
	if source == nil {
		source = NewDocumentSource(doc)
	}
	return &ResultsHandler{
		doc:      doc,
		source:   source,
		resolver: resolver,
	}
}

// Register wires every route onto mux.
func (h *ResultsHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/summary", h.HandleSummary)
	mux.HandleFunc("/api/legend", h.HandleLegend)
	mux.HandleFunc("/api/results/{year}", h.HandleYear)
	mux.HandleFunc("/api/results/{year}/{office}", h.HandleContest)
	mux.HandleFunc("/api/county-results/{county}", h.HandleCountyResults)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
}

func (h *ResultsHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, map[string]interface{}{
		"focus":          h.doc.Focus,
		"processed_date": h.doc.ProcessedDate,
		"summary":        h.doc.Summary,
	})
}

func (h *ResultsHandler) HandleLegend(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, h.doc.CategorizationSystem)
}

func (h *ResultsHandler) HandleYear(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	year := r.PathValue("year")
	if h.doc.ResultsByYear == nil {
		http.Error(w, "Year not found", http.StatusNotFound)
		return
	}
	offices, ok := h.doc.ResultsByYear.Get(year)
	if !ok {
		http.Error(w, "Year not found", http.StatusNotFound)
		return
	}
	writeJSON(w, offices)
}

func (h *ResultsHandler) HandleContest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	year, office := r.PathValue("year"), r.PathValue("office")
	results, err := h.source.ListByYearOffice(r.Context(), year, office)
	if err != nil {
		log.Printf("handlers: year=%s office=%q error=%v", year, office, err)
		http.Error(w, "Error fetching results", http.StatusInternalServerError)
		return
	}
	if len(results) == 0 {
		http.Error(w, "Contest not found", http.StatusNotFound)
		return
	}

	writeJSON(w, map[string]interface{}{
		"year":    year,
		"contest": office,
		"total":   len(results),
		"results": results,
	})
}

func (h *ResultsHandler) HandleCountyResults(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	name := r.PathValue("county")
	if name == "" {
		http.Error(w, "County is required", http.StatusBadRequest)
		return
	}
	if h.resolver != nil {
		c, ok := h.resolver.Resolve(name)
		if !ok {
			http.Error(w, "County not found", http.StatusNotFound)
			return
		}
		name = c.Name
	}

	results, err := h.source.ListByCounty(r.Context(), name)
	if err != nil {
		log.Printf("handlers: county=%q error=%v", name, err)
		http.Error(w, "Error fetching results", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]interface{}{
		"county":  name,
		"total":   len(results),
		"results": results,
	})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("handlers: encode error=%v", err)
	}
}
