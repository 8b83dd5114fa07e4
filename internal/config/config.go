// Package config resolves run settings from defaults, an optional YAML file,
// a .env file and MOELECT_* environment variables, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"

	"github.com/Tenjin25/openelections-data-mo/internal/candidate"
	"github.com/Tenjin25/openelections-data-mo/internal/filter"
	"github.com/Tenjin25/openelections-data-mo/internal/kc"
	"github.com/Tenjin25/openelections-data-mo/internal/loader"
	"github.com/Tenjin25/openelections-data-mo/internal/reference"
)

// ErrInvalid marks a configuration that failed validation.
var ErrInvalid = errors.New("invalid configuration")

var validate = validator.New(validator.WithRequiredStructEnabled())

const (
	DefaultPath      = "config/moelect.yaml"
	defaultDataDir   = "Data"
	defaultReference = "mo_county_fips.csv"
	defaultOutput    = "Data/mo_county_aggregated_results.json"
	defaultPort      = ":8080"
)

// DefaultInputs are the per-year general election files, oldest first.
func DefaultInputs() []string {
	return []string{
		"20001107__mo__general__precinct.csv",
		"20021105__mo__general__precinct.csv",
		"20041102__mo__general__precinct.csv",
		"20061107__mo__general__precinct.csv",
		"20081104__mo__general__precinct.csv",
		"20101102__mo__general__precinct.csv",
		"20121106__mo__general__precinct.csv",
		"20141104__mo__general__precinct.csv",
		"20161108__mo__general__precinct.csv",
		"20181106__mo__general__precinct.csv",
		"20201103__mo__general__precinct.csv",
		"20221108__mo__general__county.csv",
		"20241105__mo__general__precinct.csv",
	}
}

// Config is the resolved run configuration.
type Config struct {
	ConfigPath         string
	DataDir            string               `validate:"required"`
	ReferencePath      string               `validate:"required"`
	Inputs             []string             `validate:"min=1,dive,required"`
	Output             string               `validate:"required"`
	KCPolicy           kc.Policy            `validate:"oneof=fold_into_jackson even_split"`
	TicketMode         candidate.TicketMode `validate:"oneof=truncate keep"`
	PresidentialCutoff int                  `validate:"gte=1900,lte=2100"`
	ProcessedDate      string               `validate:"omitempty,datetime=2006-01-02"`
	GeoJSONPath        string
	HTTPPort           string `validate:"required"`
	PocketBaseDir      string
	SQLitePath         string
	PostgresDSN        string
	StrictConfig       bool
	Filters            filter.Set
	Tables             *reference.Tables
}

type fileConfig struct {
	DataDir            string                               `yaml:"data_dir"`
	Reference          string                               `yaml:"county_reference"`
	Inputs             []string                             `yaml:"inputs"`
	Output             string                               `yaml:"output"`
	KCPolicy           string                               `yaml:"kc_policy"`
	TicketMode         string                               `yaml:"ticket_mode"`
	PresidentialCutoff int                                  `yaml:"presidential_full_name_cutoff"`
	ProcessedDate      string                               `yaml:"processed_date"`
	GeoJSON            string                               `yaml:"precinct_geojson"`
	HTTPPort           string                               `yaml:"http_port"`
	Sinks              sinksFileConfig                      `yaml:"sinks"`
	Filters            map[string]filter.Spec               `yaml:"filters"`
	Corrections        map[string]string                    `yaml:"name_corrections"`
	PartyOverrides     map[string][]reference.PartyOverride `yaml:"party_overrides" validate:"dive,dive"`
}

type sinksFileConfig struct {
	PocketBaseDir string `yaml:"pocketbase_dir"`
	SQLitePath    string `yaml:"sqlite_path"`
	PostgresDSN   string `yaml:"postgres_dsn"`
}

// Load resolves the configuration. path may be empty, in which case
// MOELECT_CONFIG or the default location is used. An unreadable file is
// logged and ignored unless STRICT_CONFIG is set.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		StrictConfig: parseBoolEnv("STRICT_CONFIG"),
	}
	cfg.ConfigPath = firstNonEmpty(path, os.Getenv("MOELECT_CONFIG"), DefaultPath)

	fileCfg, fileErr := loadFileConfig(cfg.ConfigPath)
	if fileErr != nil {
		if cfg.StrictConfig {
			return cfg, fmt.Errorf("config load failed (%s): %w", cfg.ConfigPath, fileErr)
		}
		log.Printf("config: load failed (%s): %v (using defaults)", cfg.ConfigPath, fileErr)
		fileCfg = fileConfig{}
	}

	cfg.DataDir = firstNonEmpty(os.Getenv("MOELECT_DATA_DIR"), fileCfg.DataDir, defaultDataDir)
	cfg.ReferencePath = firstNonEmpty(os.Getenv("MOELECT_COUNTY_REFERENCE"), fileCfg.Reference, defaultReference)
	cfg.Output = firstNonEmpty(os.Getenv("MOELECT_OUTPUT"), fileCfg.Output, defaultOutput)
	cfg.ProcessedDate = firstNonEmpty(os.Getenv("MOELECT_PROCESSED_DATE"), fileCfg.ProcessedDate)
	cfg.GeoJSONPath = firstNonEmpty(os.Getenv("MOELECT_PRECINCT_GEOJSON"), fileCfg.GeoJSON)
	cfg.PocketBaseDir = firstNonEmpty(os.Getenv("MOELECT_POCKETBASE_DIR"), fileCfg.Sinks.PocketBaseDir)
	cfg.SQLitePath = firstNonEmpty(os.Getenv("MOELECT_SQLITE_PATH"), fileCfg.Sinks.SQLitePath)
	cfg.PostgresDSN = firstNonEmpty(os.Getenv("MOELECT_POSTGRES_DSN"), fileCfg.Sinks.PostgresDSN)

	cfg.Inputs = DefaultInputs()
	if len(fileCfg.Inputs) > 0 {
		cfg.Inputs = fileCfg.Inputs
	}
	if v := strings.TrimSpace(os.Getenv("MOELECT_INPUTS")); v != "" {
		cfg.Inputs = splitList(v)
	}

	cfg.HTTPPort = firstNonEmpty(os.Getenv("MOELECT_HTTP_PORT"), fileCfg.HTTPPort, defaultPort)
	if !strings.HasPrefix(cfg.HTTPPort, ":") {
		cfg.HTTPPort = ":" + cfg.HTTPPort
	}

	policy, err := kc.ParsePolicy(firstNonEmpty(os.Getenv("MOELECT_KC_POLICY"), fileCfg.KCPolicy))
	if err != nil {
		return cfg, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	cfg.KCPolicy = policy

	mode, err := candidate.ParseTicketMode(firstNonEmpty(os.Getenv("MOELECT_TICKET_MODE"), fileCfg.TicketMode))
	if err != nil {
		return cfg, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	cfg.TicketMode = mode

	cfg.PresidentialCutoff = loader.DefaultPresidentialCutoff
	if fileCfg.PresidentialCutoff != 0 {
		cfg.PresidentialCutoff = fileCfg.PresidentialCutoff
	}
	if v := strings.TrimSpace(os.Getenv("MOELECT_PRESIDENTIAL_CUTOFF")); v != "" {
		n, err := cast.ToIntE(v)
		if err != nil {
			if cfg.StrictConfig {
				return cfg, fmt.Errorf("invalid MOELECT_PRESIDENTIAL_CUTOFF: %w", err)
			}
			log.Printf("config: invalid MOELECT_PRESIDENTIAL_CUTOFF=%q (using %d)", v, cfg.PresidentialCutoff)
		} else {
			cfg.PresidentialCutoff = n
		}
	}

	cfg.Filters = filter.Defaults()
	for stage, spec := range fileCfg.Filters {
		cfg.Filters = cfg.Filters.With(stage, spec)
	}

	if err := validate.Struct(fileCfg); err != nil {
		return cfg, fmt.Errorf("%w: party_overrides: %v", ErrInvalid, err)
	}
	cfg.Tables = reference.Default().Merge(fileCfg.Corrections, fileCfg.PartyOverrides)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	log.Printf("config: path=%s data_dir=%s inputs=%d output=%s kc_policy=%s ticket_mode=%s",
		cfg.ConfigPath, cfg.DataDir, len(cfg.Inputs), cfg.Output, cfg.KCPolicy, cfg.TicketMode)
	return cfg, nil
}

// Validate checks field constraints and the presence of every pipeline stage filter.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	for _, stage := range []string{filter.StageAggregate, filter.StageKCWeights} {
		if _, err := c.Filters.Get(stage); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalid, err)
		}
	}
	if c.Tables == nil {
		return fmt.Errorf("%w: reference tables missing", ErrInvalid)
	}
	return nil
}

// InputPaths returns the configured input files resolved against DataDir.
func (c Config) InputPaths() []string {
	paths := make([]string, 0, len(c.Inputs))
	for _, in := range c.Inputs {
		paths = append(paths, c.resolve(in))
	}
	return paths
}

// ReferenceFile is the county FIPS CSV resolved against DataDir.
func (c Config) ReferenceFile() string {
	return c.resolve(c.ReferencePath)
}

func (c Config) resolve(p string) string {
	if filepath.IsAbs(p) || strings.ContainsRune(p, filepath.Separator) {
		return p
	}
	return filepath.Join(c.DataDir, p)
}

func loadFileConfig(path string) (fileConfig, error) {
	var cfg fileConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if len(data) == 0 {
		return cfg, errors.New("empty config file")
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func firstNonEmpty(values ...string) string {
	for _, val := range values {
		if strings.TrimSpace(val) != "" {
			return strings.TrimSpace(val)
		}
	}
	return ""
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseBoolEnv(key string) bool {
	v, err := cast.ToBoolE(strings.TrimSpace(os.Getenv(key)))
	return err == nil && v
}
