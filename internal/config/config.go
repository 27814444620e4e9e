// Package config gathers run settings from a .env file and the environment.
package config

import (
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/smacmullan/nws-property-ownership-analysis/internal/database"
	"github.com/smacmullan/nws-property-ownership-analysis/internal/observability"
	"github.com/smacmullan/nws-property-ownership-analysis/internal/occupancy"
	"github.com/smacmullan/nws-property-ownership-analysis/internal/socrata"
	"github.com/smacmullan/nws-property-ownership-analysis/internal/zoning"
)

// Input sources for the analysis.
const (
	SourceCSV = "csv"
	SourceSQL = "sql"
)

// Address parsers.
const (
	ParserUS        = "us"
	ParserLibpostal = "libpostal"
)

// Config holds everything a run needs.
type Config struct {
	DataDir   string
	OutputDir string

	Socrata SocrataConfig
	Query   socrata.QueryParams

	Threshold            float64
	HouseNumberTolerance int
	Workers              int
	Parser               string

	LogFormat string
	LogLevel  string

	Redis RedisConfig

	Source string
	DB     database.DBConfig

	ZoningLayers []zoning.Source

	SQLiteExport    string
	MetricsTextfile string
	PushgatewayURL  string
}

// SocrataConfig configures the open data portal client.
type SocrataConfig struct {
	BaseURL      string
	AppToken     string
	RPS          float64
	Timeout      time.Duration
	SkipExisting bool
}

// RedisConfig configures the download cache. An empty Addr disables it.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// Load reads .env (without overriding the environment) and then the
// environment. Invalid values are reported together.
func Load() (Config, error) {
	if err := LoadEnvFile(".env"); err != nil {
		return Config{}, fmt.Errorf("read .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() (Config, error) {
	e := &env{}
	q := socrata.DefaultQueryParams()

	cfg := Config{
		DataDir:   e.str("DATA_DIR", "data"),
		OutputDir: e.str("OUTPUT_DIR", "output"),

		Socrata: SocrataConfig{
			BaseURL:      e.str("SOCRATA_BASE_URL", socrata.DefaultBaseURL),
			AppToken:     e.str("SOCRATA_APP_TOKEN", ""),
			RPS:          e.number("SOCRATA_RPS", 2),
			Timeout:      e.duration("SOCRATA_TIMEOUT", 5*time.Minute),
			SkipExisting: e.boolean("SOCRATA_SKIP_EXISTING", false),
		},
		Query: socrata.QueryParams{
			Year:         e.integer("TAX_YEAR", q.Year),
			TownshipCode: e.str("TOWNSHIP_CODE", q.TownshipCode),
			TownshipName: e.str("TOWNSHIP_NAME", q.TownshipName),
			ZipCodes:     e.list("ZIP_CODES", q.ZipCodes),
		},

		Threshold:            e.number("SIMILARITY_THRESHOLD", occupancy.DefaultThreshold),
		HouseNumberTolerance: e.integer("HOUSE_NUMBER_TOLERANCE", occupancy.DefaultHouseNumberTolerance),
		Workers:              e.integer("WORKERS", runtime.NumCPU()),
		Parser:               e.str("ADDRESS_PARSER", ParserUS),

		LogFormat: e.str("LOG_FORMAT", observability.FormatAuto),
		LogLevel:  e.str("LOG_LEVEL", "info"),

		Redis: RedisConfig{
			Addr:     e.str("REDIS_ADDR", ""),
			Password: e.str("REDIS_PASSWORD", ""),
			DB:       e.integer("REDIS_DB", 0),
			TTL:      e.duration("CACHE_TTL", 24*time.Hour),
		},

		Source: e.str("SOURCE", SourceCSV),
		DB: database.DBConfig{
			Driver:         e.str("DB_DRIVER", database.DriverOracle),
			DSN:            e.str("DB_DSN", ""),
			Host:           e.str("DB_HOST", "localhost"),
			Port:           e.str("DB_PORT", "1521"),
			Service:        e.str("DB_SERVICE", "XE"),
			Username:       e.str("DB_USERNAME", ""),
			Password:       e.str("DB_PASSWORD", ""),
			WalletLocation: e.str("DB_WALLET_LOCATION", ""),
			Tables:         database.DefaultTables(),
		},

		SQLiteExport:    e.str("SQLITE_EXPORT", ""),
		MetricsTextfile: e.str("METRICS_TEXTFILE", ""),
		PushgatewayURL:  e.str("PUSHGATEWAY_URL", ""),
	}

	for _, s := range e.list("ZONING_LAYERS", nil) {
		src, err := zoning.ParseSource(s)
		if err != nil {
			e.errs = append(e.errs, fmt.Errorf("ZONING_LAYERS: %w", err))
			continue
		}
		cfg.ZoningLayers = append(cfg.ZoningLayers, src)
	}

	e.errs = append(e.errs, cfg.Validate())
	return cfg, errors.Join(e.errs...)
}

// Validate checks values that flags can also set.
func (c Config) Validate() error {
	var errs []error
	switch c.Source {
	case SourceCSV, SourceSQL:
	default:
		errs = append(errs, fmt.Errorf("source %q: want %s or %s", c.Source, SourceCSV, SourceSQL))
	}
	switch c.Parser {
	case ParserUS, ParserLibpostal:
	default:
		errs = append(errs, fmt.Errorf("parser %q: want %s or %s", c.Parser, ParserUS, ParserLibpostal))
	}
	switch c.LogFormat {
	case observability.FormatAuto, observability.FormatConsole, observability.FormatJSON:
	default:
		errs = append(errs, fmt.Errorf("log format %q: want auto, console or json", c.LogFormat))
	}
	if c.Threshold < 0 || c.Threshold > 100 {
		errs = append(errs, fmt.Errorf("similarity threshold %v outside 0-100", c.Threshold))
	}
	if c.HouseNumberTolerance < 0 {
		errs = append(errs, fmt.Errorf("house number tolerance %d is negative", c.HouseNumberTolerance))
	}
	if c.Socrata.RPS <= 0 {
		errs = append(errs, fmt.Errorf("socrata rps %v must be positive", c.Socrata.RPS))
	}
	return errors.Join(errs...)
}
