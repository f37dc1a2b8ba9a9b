package server

import (
	"context"
	"time"

	"github.com/solartrack/solartrack/pkg/common"
	"github.com/solartrack/solartrack/pkg/session"
	"github.com/solartrack/solartrack/pkg/types"
	"github.com/stretchr/testify/mock"
)

type mockStorage struct {
	mock.Mock
}

func (m *mockStorage) GetSetting(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *mockStorage) GetAllSettings(ctx context.Context) (types.Settings, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(types.Settings), args.Error(1)
}

func (m *mockStorage) UpdateSetting(ctx context.Context, key, value string) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *mockStorage) GetAllReadings(ctx context.Context) ([]types.Reading, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Reading), args.Error(1)
}

func (m *mockStorage) AddReading(ctx context.Context, date string, meterReading float64) (int64, error) {
	args := m.Called(ctx, date, meterReading)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockStorage) DeleteReading(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockStorage) ImportReadings(ctx context.Context, readings []types.Reading) error {
	args := m.Called(ctx, readings)
	return args.Error(0)
}

func (m *mockStorage) Close() error {
	args := m.Called()
	return args.Error(0)
}

// newTestServer wires a Server around the mock the way Configured would,
// minus the flags.
func newTestServer(db *mockStorage) *Server {
	return &Server{
		storage:    db,
		sessions:   session.New(24 * time.Hour),
		serverName: "solartrack",
		httpClient: common.HTTPClient(5 * time.Second),
	}
}

// pinHash1234 is sha256("1234"), the documented default PIN.
const pinHash1234 = "03ac674216f3e15c761ee1a5e255f067953623c8b388b4459e13f978d7c846f4"
