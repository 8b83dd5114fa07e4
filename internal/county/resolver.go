package county

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/Tenjin25/openelections-data-mo/internal/models"
)

// ErrEmptyReference is returned when no canonical counties are available.
var ErrEmptyReference = errors.New("county reference table is empty")

const (
	StLouisCounty = "St. Louis County"
	StLouisCity   = "St. Louis City"
)

var (
	stLouisKey     = NormalizeKey("ST LOUIS")
	stLouisCityKey = NormalizeKey("ST LOUIS CITY")
)

// NormalizeKey folds a county name to its lookup key: accents stripped,
// lowercased, everything outside a-z dropped.
func NormalizeKey(name string) string {
	if name == "" {
		return ""
	}
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), name)
	if err != nil {
		folded = name
	}
	var b strings.Builder
	for _, r := range strings.ToLower(folded) {
		if r >= 'a' && r <= 'z' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Resolver maps raw county labels onto canonical counties. It is immutable
// once built and safe to share.
type Resolver struct {
	byKey  map[string]models.County
	byFIPS map[string]models.County
	names  []string
}

// NewResolver indexes the canonical county list. St. Louis City and
// St. Louis County are always present.
func NewResolver(counties []models.County) (*Resolver, error) {
	if len(counties) == 0 {
		return nil, ErrEmptyReference
	}

	r := &Resolver{
		byKey:  make(map[string]models.County, len(counties)+2),
		byFIPS: make(map[string]models.County, len(counties)),
	}
	for _, c := range counties {
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("invalid county reference entry: %w", err)
		}
		key := NormalizeKey(c.Name)
		if existing, ok := r.byKey[key]; ok {
			return nil, fmt.Errorf("duplicate county key %q for %q and %q", key, existing.Name, c.Name)
		}
		r.add(key, c)
	}
	for _, name := range []string{StLouisCounty, StLouisCity} {
		key := NormalizeKey(name)
		if _, ok := r.byKey[key]; !ok {
			r.add(key, models.County{Name: name})
		}
	}
	return r, nil
}

func (r *Resolver) add(key string, c models.County) {
	r.byKey[key] = c
	r.names = append(r.names, c.Name)
	if c.FIPS != "" {
		r.byFIPS[c.FIPS] = c
	}
}

// Resolve returns the canonical county for a raw label. Unknown labels are
// reported as unresolved, never guessed.
func (r *Resolver) Resolve(raw string) (models.County, bool) {
	key := NormalizeKey(raw)
	switch key {
	case "":
		return models.County{}, false
	case stLouisKey:
		key = NormalizeKey(StLouisCounty)
	case stLouisCityKey:
		key = NormalizeKey(StLouisCity)
	}
	c, ok := r.byKey[key]
	return c, ok
}

// ResolveOrLog resolves raw and logs a diagnostic when it cannot.
func (r *Resolver) ResolveOrLog(raw, where string) (models.County, bool) {
	c, ok := r.Resolve(raw)
	if !ok {
		log.Printf("county: unresolved county=%q %s", raw, where)
	}
	return c, ok
}

// ByFIPS looks a county up by its three digit FIPS code.
func (r *Resolver) ByFIPS(code string) (models.County, bool) {
	c, ok := r.byFIPS[code]
	return c, ok
}

// Len is the number of canonical counties.
func (r *Resolver) Len() int {
	return len(r.names)
}
