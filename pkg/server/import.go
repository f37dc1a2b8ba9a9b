package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/solartrack/solartrack/pkg/excel"
	"github.com/solartrack/solartrack/pkg/log"
)

// maxUploadBytes bounds how much of an uploaded workbook we read into memory.
const maxUploadBytes = 10 << 20

func (s *Server) handleImportExcel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSONError(w, "missing file upload", http.StatusBadRequest)
		return
	}
	defer file.Close()

	name := strings.ToLower(header.Filename)
	if !strings.HasSuffix(name, ".xlsx") && !strings.HasSuffix(name, ".xls") {
		writeJSONError(w, "Only Excel files allowed", http.StatusBadRequest)
		return
	}

	res, err := excel.ParseReadings(file)
	if err != nil {
		log.Ctx(ctx).WarnContext(ctx, "failed to parse workbook", slog.String("filename", header.Filename), slog.Any("error", err))
		writeJSONError(w, "No valid readings found in file", http.StatusBadRequest)
		return
	}
	if len(res.Readings) == 0 {
		writeJSONError(w, "No valid readings found in file", http.StatusBadRequest)
		return
	}

	if err := s.storage.ImportReadings(ctx, res.Readings); err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to import readings", slog.Any("error", err))
		writeJSONError(w, "failed to import readings", http.StatusInternalServerError)
		return
	}

	log.Ctx(ctx).InfoContext(ctx, "imported readings",
		slog.Int("imported", len(res.Readings)),
		slog.Int("skipped", res.Skipped),
		slog.String("filename", header.Filename),
	)

	writeJSON(w, map[string]any{
		"imported": len(res.Readings),
		"message":  fmt.Sprintf("Successfully imported %d readings", len(res.Readings)),
	})
}
