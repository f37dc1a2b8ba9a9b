package excel

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// buildWorkbook writes the given rows into an in-memory xlsx file.
func buildWorkbook(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		for j, cell := range row {
			axis, err := excelize.CoordinatesToCellName(j+1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, axis, cell))
		}
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return &buf
}

func TestParseReadings(t *testing.T) {
	t.Run("valid rows with header", func(t *testing.T) {
		buf := buildWorkbook(t, [][]interface{}{
			{"Datum", "Zählerstand"},
			{time.Date(2020, 1, 31, 0, 0, 0, 0, time.UTC), 100.5},
			{time.Date(2020, 2, 29, 0, 0, 0, 0, time.UTC), 250.0},
		})

		res, err := ParseReadings(buf)
		require.NoError(t, err)
		require.Len(t, res.Readings, 2)
		assert.Equal(t, 1, res.Skipped, "header row should be skipped")

		assert.Equal(t, "2020-01-31", res.Readings[0].Date)
		assert.Equal(t, 100.5, res.Readings[0].MeterReading)
		assert.Equal(t, "2020-02-29", res.Readings[1].Date)
	})

	t.Run("string dates", func(t *testing.T) {
		buf := buildWorkbook(t, [][]interface{}{
			{"2020-03-31", 300.0},
			{"30.04.2020", 400.0},
		})

		res, err := ParseReadings(buf)
		require.NoError(t, err)
		require.Len(t, res.Readings, 2)
		assert.Equal(t, "2020-03-31", res.Readings[0].Date)
		assert.Equal(t, "2020-04-30", res.Readings[1].Date)
	})

	t.Run("invalid rows are skipped not fatal", func(t *testing.T) {
		buf := buildWorkbook(t, [][]interface{}{
			{"2020-01-31", 100.0},
			{"not a date", 200.0},
			{"2020-02-29", "not a number"},
			{"2020-03-31", -5.0},
			{"2020-04-30", 0},
			{"2020-05-31", 500.0},
		})

		res, err := ParseReadings(buf)
		require.NoError(t, err)
		require.Len(t, res.Readings, 2)
		assert.Equal(t, 4, res.Skipped)
	})

	t.Run("empty workbook", func(t *testing.T) {
		buf := buildWorkbook(t, nil)
		res, err := ParseReadings(buf)
		require.NoError(t, err)
		assert.Empty(t, res.Readings)
		assert.Zero(t, res.Skipped)
	})

	t.Run("not a workbook", func(t *testing.T) {
		_, err := ParseReadings(strings.NewReader("definitely not xlsx"))
		assert.Error(t, err)
	})
}
