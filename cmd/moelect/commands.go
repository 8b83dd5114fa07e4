package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Tenjin25/openelections-data-mo/internal/config"
	"github.com/Tenjin25/openelections-data-mo/internal/corrector"
	"github.com/Tenjin25/openelections-data-mo/internal/county"
	"github.com/Tenjin25/openelections-data-mo/internal/export"
	"github.com/Tenjin25/openelections-data-mo/internal/filter"
	"github.com/Tenjin25/openelections-data-mo/internal/formatter"
	"github.com/Tenjin25/openelections-data-mo/internal/handlers"
	"github.com/Tenjin25/openelections-data-mo/internal/kc"
	"github.com/Tenjin25/openelections-data-mo/internal/parser"
	"github.com/Tenjin25/openelections-data-mo/internal/pipeline"
	"github.com/Tenjin25/openelections-data-mo/internal/storage"
)

func newAggregateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "aggregate",
		Short: "Build mo_county_aggregated_results.json from the per-year files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			sinks, closeSinks := pipeline.OpenSinks(ctx, cfg)
			defer closeSinks()

			res, err := pipeline.Run(ctx, cfg, sinks...)
			if err != nil {
				return err
			}

			for _, f := range res.Files {
				switch {
				case f.Skipped:
					warn("skipped %s", f.Path)
				case len(f.Unresolved) > 0:
					warn("%s: %d unresolved counties %v", f.Year, len(f.Unresolved), f.Unresolved)
				}
			}
			s := res.Document.Summary
			ok("wrote %s (%d years, %d contests, %s county results)",
				res.Output, s.TotalYears, s.TotalContests, humanize.Comma(int64(s.TotalCountyResults)))
			for _, name := range sortedKeys(res.Published) {
				ok("published %s rows to %s", humanize.Comma(int64(res.Published[name])), name)
			}
			return nil
		},
	}
}

func newCorrectCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "correct [path]",
		Short: "Recompute competitiveness colors on an existing results document",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			} else {
				cfg, err := config.Load(*configPath)
				if err != nil {
					return err
				}
				path = cfg.Output
			}

			rep, err := corrector.CorrectFile(path)
			if err != nil {
				return err
			}
			ok("checked %s results, %d corrections in %s",
				humanize.Comma(int64(rep.Checked)), rep.Corrections, path)
			return nil
		},
	}
}

func newKCWeightsCmd(configPath *string) *cobra.Command {
	var geojsonPath, csvPath string

	cmd := &cobra.Command{
		Use:   "kc-weights",
		Short: "Report how Kansas City precincts spread over Jackson, Clay, Platte and Cass",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if geojsonPath == "" {
				geojsonPath = cfg.GeoJSONPath
			}
			if geojsonPath == "" || csvPath == "" {
				return errors.New("both --geojson and --csv are required")
			}
			offices, err := cfg.Filters.Get(filter.StageKCWeights)
			if err != nil {
				return err
			}

			precincts, err := kc.LoadPrecinctFIPS(geojsonPath)
			if err != nil {
				return err
			}
			rows, err := parser.NewParserManager().ParseFile(cmd.Context(), csvPath)
			if err != nil {
				return err
			}

			if counties, err := county.LoadReference(cfg.ReferenceFile()); err == nil {
				if resolver, err := county.NewResolver(counties); err == nil {
					for _, t := range kc.Targets {
						if c, found := resolver.ByFIPS(t.FIPS); !found || c.Name != t.County {
							warn("county reference disagrees on %s (FIPS %s)", t.County, t.FIPS)
						}
					}
				}
			}

			w := kc.ComputeWeights(precincts, rows, offices)
			header("%-8s %-5s %10s %9s %14s %9s", "county", "fips", "precincts", "share", "votes", "share")
			for _, e := range w.Entries {
				fmt.Printf("%-8s %-5s %10s %8.2f%% %14s %8.2f%%\n",
					e.County, e.FIPS, humanize.Comma(int64(e.Precincts)), e.PrecinctShare*100,
					humanize.Comma(int64(e.Votes)), e.VoteShare*100)
			}
			if w.Unmatched > 0 {
				warn("%d Kansas City rows had no precinct match", w.Unmatched)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&geojsonPath, "geojson", "", "precinct VTD GeoJSON (NAME00, VTDIDFP00, COUNTYFP00)")
	cmd.Flags().StringVar(&csvPath, "csv", "", "precinct-level results CSV or ZIP")
	return cmd
}

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the results document over a read-only JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			doc, err := formatter.ReadDocument(cfg.Output)
			if err != nil {
				return err
			}

			var resolver *county.Resolver
			if counties, err := county.LoadReference(cfg.ReferenceFile()); err != nil {
				log.Printf("serve: county lookups without normalization: %v", err)
			} else if resolver, err = county.NewResolver(counties); err != nil {
				return err
			}

			source, closeSource, err := openSource(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer closeSource()

			mux := http.NewServeMux()
			handlers.NewResultsHandler(doc, source, resolver).Register(mux)
			srv := &http.Server{Addr: cfg.HTTPPort, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				srv.Shutdown(shutdownCtx)
			}()

			ok("serving %s on %s", cfg.Output, cfg.HTTPPort)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
}

// openSource prefers a published store over the in-memory document.
func openSource(ctx context.Context, cfg config.Config) (handlers.ResultSource, func(), error) {
	switch {
	case cfg.PocketBaseDir != "":
		s, err := storage.NewPocketBaseStore(cfg.PocketBaseDir)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { s.Close() }, nil
	case cfg.SQLitePath != "":
		s, err := export.NewSQLiteExporter(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		if run, found, err := s.LastRun(ctx); err == nil && found {
			log.Printf("serve: sqlite run_id=%s results=%d published=%s", run.ID, run.Results, run.PublishedAt.Format(time.RFC3339))
		}
		return s, func() { s.Close() }, nil
	default:
		return nil, func() {}, nil
	}
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
