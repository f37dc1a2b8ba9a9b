package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/solartrack/solartrack/pkg/log"
	"github.com/solartrack/solartrack/pkg/types"
)

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	settings, err := s.storage.GetAllSettings(ctx)
	if err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to get settings", slog.Any("error", err))
		writeJSONError(w, "failed to get settings", http.StatusInternalServerError)
		return
	}

	// the pin hash never leaves the server
	for key := range types.ProtectedSettings {
		delete(settings, key)
	}

	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, settings)
}

func (s *Server) handleUpdateSetting(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req struct {
		Key   string `json:"key"`
		Value string `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	if types.ProtectedSettings[req.Key] {
		log.Ctx(ctx).WarnContext(ctx, "attempt to update protected setting", slog.String("key", req.Key))
		writeJSONError(w, "Diese Einstellung kann hier nicht geändert werden", http.StatusForbidden)
		return
	}

	if err := s.storage.UpdateSetting(ctx, req.Key, req.Value); err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to update setting", slog.String("key", req.Key), slog.Any("error", err))
		writeJSONError(w, "failed to update setting", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]string{
		"message": "Setting updated",
		"key":     req.Key,
	})
}

func (s *Server) handleUpdateSettingsBulk(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req map[string]any
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	// protected keys are filtered silently rather than failing the batch
	count := 0
	for key, value := range req {
		if types.ProtectedSettings[key] {
			log.Ctx(ctx).WarnContext(ctx, "filtered protected setting from bulk update", slog.String("key", key))
			continue
		}
		if err := s.storage.UpdateSetting(ctx, key, fmt.Sprint(value)); err != nil {
			log.Ctx(ctx).ErrorContext(ctx, "failed to update setting", slog.String("key", key), slog.Any("error", err))
			writeJSONError(w, "failed to update settings", http.StatusInternalServerError)
			return
		}
		count++
	}

	writeJSON(w, map[string]any{
		"message": "Settings updated",
		"count":   count,
	})
}
