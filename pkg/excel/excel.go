// Package excel parses uploaded spreadsheets into meter readings. Column 0
// is the reading date and column 1 the cumulative meter value; anything that
// doesn't parse is skipped row by row instead of failing the batch.
package excel

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/solartrack/solartrack/pkg/types"
	"github.com/xuri/excelize/v2"
)

// dateLayouts are the formats we accept for textual date cells. Excel-native
// date cells arrive as serial numbers and are handled separately.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"02.01.2006",
}

// Result is the outcome of parsing one workbook.
type Result struct {
	Readings []types.Reading
	// Skipped counts the rows that had content but no usable date/value pair.
	Skipped int
}

// ParseReadings reads the first sheet of an xlsx workbook and collects every
// row with a parseable date and a positive meter value.
func ParseReadings(r io.Reader) (Result, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Result{}, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return Result{}, fmt.Errorf("workbook has no sheets")
	}

	// raw values so date cells come back as serial numbers regardless of
	// their display format
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return Result{}, fmt.Errorf("read rows: %w", err)
	}

	var res Result
	for _, row := range rows {
		reading, ok := parseRow(row)
		if !ok {
			if len(row) > 0 {
				res.Skipped++
			}
			continue
		}
		res.Readings = append(res.Readings, reading)
	}
	return res, nil
}

// parseRow converts one spreadsheet row into a reading. It reports false for
// header rows, empty rows and anything else that doesn't hold a date plus a
// positive number.
func parseRow(row []string) (types.Reading, bool) {
	if len(row) < 2 || row[0] == "" || row[1] == "" {
		return types.Reading{}, false
	}

	date, ok := parseDate(row[0])
	if !ok {
		return types.Reading{}, false
	}

	value, err := strconv.ParseFloat(row[1], 64)
	if err != nil || value <= 0 {
		return types.Reading{}, false
	}

	return types.Reading{Date: date, MeterReading: value}, true
}

func parseDate(cell string) (string, bool) {
	// Excel serial date
	if serial, err := strconv.ParseFloat(cell, 64); err == nil {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil || t.Year() < 1900 {
			return "", false
		}
		return t.Format("2006-01-02"), true
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, cell); err == nil {
			return t.Format("2006-01-02"), true
		}
	}
	return "", false
}
