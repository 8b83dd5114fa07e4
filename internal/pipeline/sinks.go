package pipeline

import (
	"context"
	"io"
	"log"

	"github.com/Tenjin25/openelections-data-mo/internal/config"
	"github.com/Tenjin25/openelections-data-mo/internal/export"
	"github.com/Tenjin25/openelections-data-mo/internal/storage"
)

type closingSink interface {
	Sink
	io.Closer
}

// OpenSinks opens every sink named in cfg. A sink that cannot be opened is
// logged and left out. The returned func closes the opened sinks.
func OpenSinks(ctx context.Context, cfg config.Config) ([]Sink, func()) {
	var opened []closingSink

	if cfg.PocketBaseDir != "" {
		if s, err := storage.NewPocketBaseStore(cfg.PocketBaseDir); err != nil {
			log.Printf("pipeline: pocketbase sink unavailable: %v", err)
		} else {
			opened = append(opened, s)
		}
	}
	if cfg.SQLitePath != "" {
		if s, err := export.NewSQLiteExporter(ctx, cfg.SQLitePath); err != nil {
			log.Printf("pipeline: sqlite sink unavailable: %v", err)
		} else {
			opened = append(opened, s)
		}
	}
	if cfg.PostgresDSN != "" {
		if s, err := export.NewPostgresExporter(ctx, cfg.PostgresDSN); err != nil {
			log.Printf("pipeline: postgres sink unavailable: %v", err)
		} else {
			opened = append(opened, s)
		}
	}

	sinks := make([]Sink, 0, len(opened))
	for _, s := range opened {
		sinks = append(sinks, s)
	}
	return sinks, func() {
		for _, s := range opened {
			if err := s.Close(); err != nil {
				log.Printf("pipeline: closing sink %s: %v", s.Name(), err)
			}
		}
	}
}
