// Package rates stores ECB euro foreign exchange reference rates in SQLite
// and answers historical rate lookups with configurable date fallback.
package rates

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"github.com/shopspring/decimal"
)

// Schema defines the SQL statements to create database tables. Rates are
// stored as text to keep decimal exactness.
const Schema = `
CREATE TABLE IF NOT EXISTS currencies (
    code TEXT PRIMARY KEY,
    name TEXT
);

CREATE TABLE IF NOT EXISTS rates (
    date TEXT,                         -- YYYY-MM-DD
    base_currency TEXT,
    target_currency TEXT,
    rate TEXT NOT NULL,
    PRIMARY KEY (date, base_currency, target_currency)
);

CREATE TABLE IF NOT EXISTS metadata (
    key TEXT PRIMARY KEY,
    value TEXT
);

INSERT OR IGNORE INTO currencies (code, name) VALUES ('EUR', 'Euro');
`

// ErrNoRate is returned when no rate matches a lookup.
var ErrNoRate = errors.New("no exchange rate found")

// Strategy selects the fallback when no rate exists for the requested date.
type Strategy string

const (
	// StrategyNone fails the lookup when the exact date has no rate.
	StrategyNone Strategy = ""
	// StrategyBefore uses the nearest earlier date.
	StrategyBefore Strategy = "before"
	// StrategyAfter uses the nearest later date.
	StrategyAfter Strategy = "after"
	// StrategyClosest uses the nearest date on either side.
	StrategyClosest Strategy = "closest"
)

// ParseStrategy parses a fallback strategy name.
func ParseStrategy(value string) (Strategy, error) {
	switch Strategy(value) {
	case StrategyNone, StrategyBefore, StrategyAfter, StrategyClosest:
		return Strategy(value), nil
	default:
		return StrategyNone, fmt.Errorf("invalid rate strategy %q (valid: before, after, closest)", value)
	}
}

// Day is one publication day of EUR reference rates: currency code to the
// EUR-to-currency rate.
type Day struct {
	Date  string
	Rates map[string]decimal.Decimal
}

// Store manages the exchange rate database.
type Store struct {
	db     *sql.DB
	dbPath string
}

// Open opens the rate database, creating it and its schema as needed.
// It enables WAL mode for better concurrency and foreign key constraints.
func Open(dbPath string) (*Store, error) {
	// Ensure database file's parent directory exists
	dbDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	connStr := fmt.Sprintf("file:%s?_foreign_keys=on&_journal_mode=WAL", dbPath)
	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Store{db: db, dbPath: dbPath}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// GetPath returns the database file path.
func (s *Store) GetPath() string {
	return s.dbPath
}

// Transaction executes a function within a transaction.
// If the function returns an error, the transaction is rolled back.
// Otherwise, the transaction is committed.
func (s *Store) Transaction(fn func(*sql.Tx) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction error: %v, rollback error: %w", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// ImportDays stores reference rate days, both the published EUR-to-currency
// direction and the inverse. Days not after skipThrough are skipped; pass an
// empty string to import everything. Returns the number of rates written and
// the latest imported date.
func (s *Store) ImportDays(days []Day, skipThrough string) (int, string, error) {
	imported := 0
	latest := ""

	err := s.Transaction(func(tx *sql.Tx) error {
		for _, day := range days {
			if skipThrough != "" && day.Date <= skipThrough {
				continue
			}
			if day.Date > latest {
				latest = day.Date
			}

			for currency, rate := range day.Rates {
				if _, err := tx.Exec(
					`INSERT OR REPLACE INTO rates (date, base_currency, target_currency, rate) VALUES (?, 'EUR', ?, ?)`,
					day.Date, currency, rate.String(),
				); err != nil {
					return fmt.Errorf("failed to store rate EUR/%s on %s: %w", currency, day.Date, err)
				}

				inverse := decimal.NewFromInt(1).Div(rate)
				if _, err := tx.Exec(
					`INSERT OR REPLACE INTO rates (date, base_currency, target_currency, rate) VALUES (?, ?, 'EUR', ?)`,
					day.Date, currency, inverse.String(),
				); err != nil {
					return fmt.Errorf("failed to store rate %s/EUR on %s: %w", currency, day.Date, err)
				}

				if _, err := tx.Exec(
					`INSERT OR IGNORE INTO currencies (code) VALUES (?)`, currency,
				); err != nil {
					return fmt.Errorf("failed to store currency %s: %w", currency, err)
				}
				imported += 2
			}
		}

		if latest != "" {
			last, err := s.lastUpdate(tx)
			if err != nil {
				return err
			}
			if latest > last {
				if _, err := tx.Exec(
					`INSERT OR REPLACE INTO metadata (key, value) VALUES ('last_updated', ?)`, latest,
				); err != nil {
					return fmt.Errorf("failed to store last update date: %w", err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return 0, "", err
	}
	return imported, latest, nil
}

func (s *Store) lastUpdate(tx *sql.Tx) (string, error) {
	var value string
	err := tx.QueryRow(`SELECT value FROM metadata WHERE key = 'last_updated'`).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read last update date: %w", err)
	}
	return value, nil
}

// LastUpdate returns the most recent rate date, or an empty string when the
// store has never been filled.
func (s *Store) LastUpdate() (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM metadata WHERE key = 'last_updated'`).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read last update date: %w", err)
	}
	return value, nil
}

// GetRate returns the exchange rate from base to target and the rate's actual
// date. asOfDate is a YYYY-MM-DD date or "latest". Cross rates between two
// non-EUR currencies are derived through EUR at lookup time. Returns ErrNoRate
// when the store has no matching rate.
func (s *Store) GetRate(base, target, asOfDate string, strategy Strategy) (string, decimal.Decimal, error) {
	dateStr := asOfDate
	if asOfDate == "" || asOfDate == "latest" {
		last, err := s.LastUpdate()
		if err != nil {
			return "", decimal.Zero, err
		}
		if last == "" {
			return "", decimal.Zero, fmt.Errorf("rate store is empty, run an update first: %w", ErrNoRate)
		}
		dateStr = last
	}

	if date, rate, err := s.lookup(base, target, dateStr, strategy); err == nil {
		return date, rate, nil
	} else if !errors.Is(err, ErrNoRate) {
		return "", decimal.Zero, err
	}

	// No stored pair. Derive a cross rate through EUR: resolve the date via
	// the base leg, then read the target leg on that same date.
	if base == "EUR" || target == "EUR" {
		return "", decimal.Zero, fmt.Errorf("no %s/%s rate for %s: %w", base, target, dateStr, ErrNoRate)
	}
	date, eurBase, err := s.lookup("EUR", base, dateStr, strategy)
	if err != nil {
		return "", decimal.Zero, fmt.Errorf("no %s/%s rate for %s: %w", base, target, dateStr, ErrNoRate)
	}
	_, eurTarget, err := s.lookup("EUR", target, date, StrategyNone)
	if err != nil {
		return "", decimal.Zero, fmt.Errorf("no %s/%s rate for %s: %w", base, target, dateStr, ErrNoRate)
	}
	return date, eurTarget.Div(eurBase), nil
}

// lookup reads one stored rate, applying the date fallback strategy.
func (s *Store) lookup(base, target, dateStr string, strategy Strategy) (string, decimal.Decimal, error) {
	var (
		date string
		rate string
		err  error
	)

	row := s.db.QueryRow(
		`SELECT date, rate FROM rates WHERE date = ? AND base_currency = ? AND target_currency = ?`,
		dateStr, base, target,
	)
	err = row.Scan(&date, &rate)
	if err == nil {
		return parseStoredRate(date, rate)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", decimal.Zero, fmt.Errorf("failed to query rate: %w", err)
	}

	switch strategy {
	case StrategyBefore:
		row = s.db.QueryRow(
			`SELECT date, rate FROM rates
			 WHERE date <= ? AND base_currency = ? AND target_currency = ?
			 ORDER BY date DESC LIMIT 1`,
			dateStr, base, target,
		)
	case StrategyAfter:
		row = s.db.QueryRow(
			`SELECT date, rate FROM rates
			 WHERE date >= ? AND base_currency = ? AND target_currency = ?
			 ORDER BY date ASC LIMIT 1`,
			dateStr, base, target,
		)
	case StrategyClosest:
		row = s.db.QueryRow(
			`SELECT date, rate FROM rates
			 WHERE base_currency = ? AND target_currency = ?
			 ORDER BY ABS(julianday(date) - julianday(?)) ASC LIMIT 1`,
			base, target, dateStr,
		)
	default:
		return "", decimal.Zero, fmt.Errorf("no %s/%s rate for %s: %w", base, target, dateStr, ErrNoRate)
	}

	err = row.Scan(&date, &rate)
	if errors.Is(err, sql.ErrNoRows) {
		return "", decimal.Zero, fmt.Errorf("no %s/%s rate near %s: %w", base, target, dateStr, ErrNoRate)
	}
	if err != nil {
		return "", decimal.Zero, fmt.Errorf("failed to query rate: %w", err)
	}
	return parseStoredRate(date, rate)
}

func parseStoredRate(date, rate string) (string, decimal.Decimal, error) {
	value, err := decimal.NewFromString(rate)
	if err != nil {
		return "", decimal.Zero, fmt.Errorf("corrupt rate %q stored for %s: %w", rate, date, err)
	}
	return date, value, nil
}

// ListCurrencies returns all currency codes in the store, sorted.
func (s *Store) ListCurrencies() ([]string, error) {
	rows, err := s.db.Query(`SELECT DISTINCT code FROM currencies ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("failed to list currencies: %w", err)
	}
	defer rows.Close()

	var currencies []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, fmt.Errorf("failed to scan currency: %w", err)
		}
		currencies = append(currencies, code)
	}
	return currencies, rows.Err()
}

// Stats describes the store contents.
type Stats struct {
	LastUpdated   string
	CurrencyCount int
	RateCount     int
	MinDate       string
	MaxDate       string
}

// GetStats returns statistics about the store.
func (s *Store) GetStats() (*Stats, error) {
	stats := &Stats{}

	last, err := s.LastUpdate()
	if err != nil {
		return nil, err
	}
	stats.LastUpdated = last

	if err := s.db.QueryRow(`SELECT COUNT(DISTINCT code) FROM currencies`).Scan(&stats.CurrencyCount); err != nil {
		return nil, fmt.Errorf("failed to count currencies: %w", err)
	}
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM rates`).Scan(&stats.RateCount); err != nil {
		return nil, fmt.Errorf("failed to count rates: %w", err)
	}

	var minDate, maxDate sql.NullString
	if err := s.db.QueryRow(`SELECT MIN(date), MAX(date) FROM rates`).Scan(&minDate, &maxDate); err != nil {
		return nil, fmt.Errorf("failed to read date range: %w", err)
	}
	stats.MinDate = minDate.String
	stats.MaxDate = maxDate.String

	return stats, nil
}
