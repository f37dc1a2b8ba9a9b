package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/levenlabs/go-lflag"
	"github.com/solartrack/solartrack/pkg/types"
)

var (
	ErrSettingNotFound = errors.New("setting not found")
	ErrReadingNotFound = errors.New("reading not found")
)

// Database defines the interface for persisting readings and settings.
type Database interface {
	// Settings
	GetSetting(ctx context.Context, key string) (string, error)
	GetAllSettings(ctx context.Context) (types.Settings, error)
	UpdateSetting(ctx context.Context, key, value string) error

	// Readings
	// GetAllReadings returns every reading ordered by date ascending.
	GetAllReadings(ctx context.Context) ([]types.Reading, error)
	// AddReading upserts by date and returns the stored reading's id.
	AddReading(ctx context.Context, date string, meterReading float64) (int64, error)
	DeleteReading(ctx context.Context, id int64) error
	// ImportReadings upserts a batch of readings in one transaction.
	ImportReadings(ctx context.Context, readings []types.Reading) error

	// Lifecycle
	Close() error
}

// Configured sets up the storage provider based on flags.
func Configured() Database {
	provider := lflag.String("storage-provider", "sqlite", "Storage provider to use (available: sqlite)")

	var p struct{ Database }

	sq := configuredSQLite()

	lflag.Do(func() {
		switch *provider {
		case "sqlite":
			if err := sq.Init(context.Background()); err != nil {
				panic(fmt.Sprintf("sqlite init failed: %v", err))
			}
			p.Database = sq
		default:
			panic(fmt.Sprintf("unknown storage provider: %s", *provider))
		}
	})

	return &p
}
