package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/levenlabs/go-lflag"
	_ "github.com/mattn/go-sqlite3"
	"github.com/solartrack/solartrack/pkg/types"
)

// defaultSettings are seeded on first run with INSERT OR IGNORE so existing
// values survive restarts. The pin hash is the sha256 of the documented
// default PIN "1234", a bootstrap convenience for a fresh database.
var defaultSettings = map[string]string{
	types.SettingPlantSizeKWP:        "4.84",
	types.SettingPricePerKWH:         "0.518",
	types.SettingExpectedYieldPerKWP: "950",
	types.SettingStartDate:           "2006-04-20",
	types.SettingInitialMeterReading: "2110.5",
	types.SettingAddress:             "Deutschland",
	types.SettingLatitude:            "48.1351",
	types.SettingLongitude:           "11.5820",
	types.SettingCurrency:            "EUR",
	types.SettingMeterChangeDate:     "2017-09-01",
	types.SettingMeterChangeOffset:   "60712.35",
	types.SettingPINHash:             "03ac674216f3e15c761ee1a5e255f067953623c8b388b4459e13f978d7c846f4",
}

const schema = `
CREATE TABLE IF NOT EXISTS settings (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE IF NOT EXISTS readings (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	date TEXT NOT NULL UNIQUE,
	meter_reading REAL NOT NULL,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
`

// SQLite is the Database implementation backed by a local sqlite file.
type SQLite struct {
	path string
	db   *sql.DB
}

func configuredSQLite() *SQLite {
	s := &SQLite{}
	path := lflag.String("sqlite-path", "solar_data.db", "Path to the sqlite database file")
	lflag.Do(func() {
		s.path = *path
	})
	return s
}

// NewSQLite returns an uninitialized store for the given path. Use ":memory:"
// for an ephemeral database in tests.
func NewSQLite(path string) *SQLite {
	return &SQLite{path: path}
}

// Init opens the database, creates the two tables and seeds the default
// settings that are missing.
func (s *SQLite) Init(ctx context.Context) error {
	db, err := sql.Open("sqlite3", s.dsn())
	if err != nil {
		return fmt.Errorf("sqlite open: %w", err)
	}
	// sqlite handles one writer at a time; a single connection avoids
	// "database is locked" surprises
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("sqlite ping: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return fmt.Errorf("sqlite schema: %w", err)
	}

	for key, value := range defaultSettings {
		if _, err := db.ExecContext(ctx, `INSERT OR IGNORE INTO settings (key, value) VALUES (?, ?)`, key, value); err != nil {
			_ = db.Close()
			return fmt.Errorf("sqlite seed %s: %w", key, err)
		}
	}

	s.db = db
	return nil
}

func (s *SQLite) dsn() string {
	if s.path == ":memory:" || strings.HasPrefix(s.path, "file:") {
		return s.path
	}
	return fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", s.path)
}

func (s *SQLite) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrSettingNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get setting %s: %w", key, err)
	}
	return value, nil
}

func (s *SQLite) GetAllSettings(ctx context.Context) (types.Settings, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM settings`)
	if err != nil {
		return nil, fmt.Errorf("get settings: %w", err)
	}
	defer rows.Close()

	settings := types.Settings{}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan setting: %w", err)
		}
		settings[key] = value
	}
	return settings, rows.Err()
}

func (s *SQLite) UpdateSetting(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, value)
	if err != nil {
		return fmt.Errorf("update setting %s: %w", key, err)
	}
	return nil
}

func (s *SQLite) GetAllReadings(ctx context.Context) ([]types.Reading, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, date, meter_reading FROM readings ORDER BY date ASC`)
	if err != nil {
		return nil, fmt.Errorf("get readings: %w", err)
	}
	defer rows.Close()

	var readings []types.Reading
	for rows.Next() {
		var r types.Reading
		if err := rows.Scan(&r.ID, &r.Date, &r.MeterReading); err != nil {
			return nil, fmt.Errorf("scan reading: %w", err)
		}
		readings = append(readings, r)
	}
	return readings, rows.Err()
}

func (s *SQLite) AddReading(ctx context.Context, date string, meterReading float64) (int64, error) {
	// INSERT OR REPLACE so re-entering a date corrects the stored value
	res, err := s.db.ExecContext(ctx, `INSERT OR REPLACE INTO readings (date, meter_reading) VALUES (?, ?)`, date, meterReading)
	if err != nil {
		return 0, fmt.Errorf("add reading: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("add reading id: %w", err)
	}
	return id, nil
}

func (s *SQLite) DeleteReading(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM readings WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete reading: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete reading: %w", err)
	}
	if n == 0 {
		return ErrReadingNotFound
	}
	return nil
}

func (s *SQLite) ImportReadings(ctx context.Context, readings []types.Reading) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("import begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO readings (date, meter_reading) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("import prepare: %w", err)
	}
	defer stmt.Close()

	for _, r := range readings {
		if _, err := stmt.ExecContext(ctx, r.Date, r.MeterReading); err != nil {
			return fmt.Errorf("import reading %s: %w", r.Date, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("import commit: %w", err)
	}
	return nil
}

func (s *SQLite) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
