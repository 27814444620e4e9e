package database

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"github.com/smacmullan/nws-property-ownership-analysis/internal/types"

	_ "github.com/lib/pq"
	_ "github.com/sijms/go-ora/v2"
	_ "modernc.org/sqlite"
)

// Supported drivers, named as registered with database/sql.
const (
	DriverOracle   = "oracle"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
)

// Tables names the four source tables.
type Tables struct {
	Characteristics string
	Valuations      string
	Addresses       string
	Universe        string
}

// DefaultTables mirrors the CSV extract names.
func DefaultTables() Tables {
	return Tables{
		Characteristics: "multi_family_improvement_characteristics",
		Valuations:      "apartment_commercial_valuation_data",
		Addresses:       "parcel_addresses",
		Universe:        "parcel_universe",
	}
}

var reIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

func (t Tables) validate() error {
	for _, name := range []string{t.Characteristics, t.Valuations, t.Addresses, t.Universe} {
		if !reIdentifier.MatchString(name) {
			return fmt.Errorf("invalid table name %q", name)
		}
	}
	return nil
}

// DBConfig holds database connection configuration. DSN, when set, is passed
// to the driver unchanged; otherwise one is built from the other fields.
type DBConfig struct {
	Driver         string
	DSN            string
	Host           string
	Port           string
	Service        string
	Username       string
	Password       string
	WalletLocation string
	Tables         Tables
}

// oracleDSN builds a properly encoded connection string for Oracle Autonomous Database
func oracleDSN(username, password, host, port, service string, walletLocation string) string {
	if walletLocation != "" {
		// Use wallet-based mTLS connection
		return fmt.Sprintf(
			"oracle://%s:%s@%s:%s/%s?ssl=true&wallet_location=%s",
			url.PathEscape(username), url.PathEscape(password), host, port, service, url.PathEscape(walletLocation))
	}

	return (&url.URL{
		Scheme:   "oracle",
		User:     url.UserPassword(username, password),
		Host:     net.JoinHostPort(host, port),
		Path:     "/" + service,
		RawQuery: "ssl=true", // ADB requires TCPS on 1522
	}).String()
}

// dsn returns the driver connection string for config.
func dsn(config DBConfig) (string, error) {
	if config.DSN != "" {
		return config.DSN, nil
	}
	switch config.Driver {
	case DriverOracle:
		return oracleDSN(config.Username, config.Password, config.Host, config.Port, config.Service, config.WalletLocation), nil
	case DriverPostgres:
		return (&url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(config.Username, config.Password),
			Host:     net.JoinHostPort(config.Host, config.Port),
			Path:     "/" + config.Service,
			RawQuery: "sslmode=disable",
		}).String(), nil
	case DriverMySQL:
		mc := mysql.NewConfig()
		mc.User = config.Username
		mc.Passwd = config.Password
		mc.Net = "tcp"
		mc.Addr = net.JoinHostPort(config.Host, config.Port)
		mc.DBName = config.Service
		return mc.FormatDSN(), nil
	case DriverSQLite:
		if config.Service == "" {
			return "", fmt.Errorf("sqlite needs DB_DSN or DB_SERVICE set to a file path")
		}
		return config.Service, nil
	}
	return "", fmt.Errorf("unsupported database driver %q", config.Driver)
}

// Database holds the database connection and configuration
type Database struct {
	db     *sql.DB
	config DBConfig
}

// NewDatabase opens and pings a connection.
func NewDatabase(config DBConfig) (*Database, error) {
	if err := config.Tables.validate(); err != nil {
		return nil, err
	}
	connStr, err := dsn(config)
	if err != nil {
		return nil, err
	}

	log.Info().Str("driver", config.Driver).Str("host", config.Host).Msg("connecting to database")

	db, err := sql.Open(config.Driver, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	if config.Driver == DriverSQLite {
		// Each connection to ":memory:" is a separate database.
		db.SetMaxOpenConns(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Database{
		db:     db,
		config: config,
	}, nil
}

// DB exposes the pool, for schema setup in tests and tooling.
func (d *Database) DB() *sql.DB {
	return d.db
}

// Close closes the database connection
func (d *Database) Close() error {
	return d.db.Close()
}

// queryAll runs query and scans every row with scan.
func queryAll[T any](ctx context.Context, db *sql.DB, query string, scan func(*sql.Rows) (T, error)) ([]T, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		rec, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// key reads a nullable key column as a trimmed string.
func key(ns sql.NullString) string {
	return strings.TrimSpace(ns.String)
}

// blank turns empty strings into absent values, the same way the CSV reader
// treats empty cells.
func blank(ns sql.NullString) sql.NullString {
	if ns.Valid && strings.TrimSpace(ns.String) == "" {
		return sql.NullString{}
	}
	return ns
}

// QueryAddresses reads the parcel address table.
func (d *Database) QueryAddresses(ctx context.Context) ([]types.AddressRecord, error) {
	query := `
		SELECT
			pin, pin10, tax_year,
			property_address, property_city, property_state, property_zip,
			mailing_name, mailing_address, mailing_city, mailing_state, mailing_zip
		FROM ` + d.config.Tables.Addresses

	recs, err := queryAll(ctx, d.db, query, func(rows *sql.Rows) (types.AddressRecord, error) {
		var (
			rec        types.AddressRecord
			pin, pin10 sql.NullString
		)
		err := rows.Scan(
			&pin, &pin10, &rec.TaxYear,
			&rec.PropertyAddress, &rec.PropertyCity, &rec.PropertyState, &rec.PropertyZip,
			&rec.MailingName, &rec.MailingAddress, &rec.MailingCity, &rec.MailingState, &rec.MailingZip,
		)
		rec.PIN, rec.PIN10 = key(pin), key(pin10)
		for _, f := range []*sql.NullString{
			&rec.PropertyAddress, &rec.PropertyCity, &rec.PropertyState, &rec.PropertyZip,
			&rec.MailingName, &rec.MailingAddress, &rec.MailingCity, &rec.MailingState, &rec.MailingZip,
		} {
			*f = blank(*f)
		}
		return rec, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query addresses: %w", err)
	}
	return recs, nil
}

// QueryParcelUniverse reads the parcel universe table.
func (d *Database) QueryParcelUniverse(ctx context.Context) ([]types.ParcelUniverseRecord, error) {
	query := `
		SELECT
			pin, pin10, class, latitude, longitude, ward_num, chicago_community_area_name
		FROM ` + d.config.Tables.Universe

	recs, err := queryAll(ctx, d.db, query, func(rows *sql.Rows) (types.ParcelUniverseRecord, error) {
		var (
			rec               types.ParcelUniverseRecord
			pin, pin10, class sql.NullString
		)
		err := rows.Scan(&pin, &pin10, &class, &rec.Latitude, &rec.Longitude, &rec.WardNum, &rec.CommunityAreaName)
		rec.PIN, rec.PIN10, rec.Class = key(pin), key(pin10), key(class)
		rec.WardNum, rec.CommunityAreaName = blank(rec.WardNum), blank(rec.CommunityAreaName)
		return rec, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query parcel universe: %w", err)
	}
	return recs, nil
}

// QueryUnitCharacteristics reads the multi-family characteristics table.
func (d *Database) QueryUnitCharacteristics(ctx context.Context) ([]types.UnitCharacteristicsRecord, error) {
	query := `SELECT pin, num_apartments FROM ` + d.config.Tables.Characteristics

	recs, err := queryAll(ctx, d.db, query, func(rows *sql.Rows) (types.UnitCharacteristicsRecord, error) {
		var (
			rec types.UnitCharacteristicsRecord
			pin sql.NullString
		)
		err := rows.Scan(&pin, &rec.NumApartments)
		rec.PIN = key(pin)
		rec.NumApartments = blank(rec.NumApartments)
		return rec, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query unit characteristics: %w", err)
	}
	return recs, nil
}

// QueryValuations reads the commercial valuation table.
func (d *Database) QueryValuations(ctx context.Context) ([]types.ValuationRecord, error) {
	query := `SELECT keypin, year, tot_units FROM ` + d.config.Tables.Valuations

	recs, err := queryAll(ctx, d.db, query, func(rows *sql.Rows) (types.ValuationRecord, error) {
		var (
			rec    types.ValuationRecord
			keypin sql.NullString
		)
		err := rows.Scan(&keypin, &rec.Year, &rec.TotUnits)
		rec.KeyPIN = key(keypin)
		return rec, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query valuations: %w", err)
	}
	return recs, nil
}

// LoadBundle reads all four tables.
func (d *Database) LoadBundle(ctx context.Context) (*types.Bundle, error) {
	var (
		b   types.Bundle
		err error
	)
	if b.Characteristics, err = d.QueryUnitCharacteristics(ctx); err != nil {
		return nil, err
	}
	if b.Valuations, err = d.QueryValuations(ctx); err != nil {
		return nil, err
	}
	if b.Addresses, err = d.QueryAddresses(ctx); err != nil {
		return nil, err
	}
	if b.Universe, err = d.QueryParcelUniverse(ctx); err != nil {
		return nil, err
	}
	return &b, nil
}
