package server

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/solartrack/solartrack/pkg/log"
	"github.com/solartrack/solartrack/pkg/storage"
	"github.com/solartrack/solartrack/pkg/types"
)

// openPaths need no bearer token: login obviously, and health for probes.
var openPaths = map[string]bool{
	"/api/auth/login": true,
	"/api/health":     true,
}

// authMiddleware gates every /api path behind a valid session token except
// the open paths. User-facing messages stay German like the rest of the UI.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := log.With(r.Context(), log.Ctx(r.Context()).With(slog.String("reqPath", r.URL.Path)))
		r = r.WithContext(ctx)

		if openPaths[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}

		token, ok := bearerToken(r)
		if !ok {
			writeJSONError(w, "Nicht angemeldet", http.StatusUnauthorized)
			return
		}
		if !s.sessions.Verify(token) {
			log.Ctx(ctx).DebugContext(ctx, "rejected invalid or expired token")
			writeJSONError(w, "Sitzung abgelaufen", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return "", false
	}
	return strings.TrimPrefix(h, "Bearer "), true
}

func hashPIN(pin string) string {
	sum := sha256.Sum256([]byte(pin))
	return hex.EncodeToString(sum[:])
}

// checkPIN compares the PIN against the stored hash in constant time.
func (s *Server) checkPIN(r *http.Request, pin string) (bool, error) {
	stored, err := s.storage.GetSetting(r.Context(), types.SettingPINHash)
	if err != nil {
		return false, err
	}
	return subtle.ConstantTimeCompare([]byte(hashPIN(pin)), []byte(stored)) == 1, nil
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req struct {
		PIN string `json:"pin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	ok, err := s.checkPIN(r, req.PIN)
	if err != nil {
		// the hash is seeded at storage init, so a missing hash is a broken
		// database rather than a fresh one
		if errors.Is(err, storage.ErrSettingNotFound) {
			log.Ctx(ctx).ErrorContext(ctx, "pin hash missing from settings")
		} else {
			log.Ctx(ctx).ErrorContext(ctx, "failed to load pin hash", slog.Any("error", err))
		}
		writeJSONError(w, "Anmeldung fehlgeschlagen", http.StatusInternalServerError)
		return
	}
	if !ok {
		log.Ctx(ctx).WarnContext(ctx, "login with wrong pin")
		writeJSONError(w, "Falsche PIN", http.StatusUnauthorized)
		return
	}

	token, _ := s.sessions.Create()
	log.Ctx(ctx).InfoContext(ctx, "login successful")

	writeJSON(w, map[string]string{
		"token":   token,
		"message": "Angemeldet",
	})
}

func (s *Server) handleAuthStatus(w http.ResponseWriter, r *http.Request) {
	// reachable only through the middleware, so the token is already valid
	writeJSON(w, map[string]bool{"authenticated": true})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if token, ok := bearerToken(r); ok {
		s.sessions.Delete(token)
	}
	writeJSON(w, map[string]string{"message": "Abgemeldet"})
}

func (s *Server) handleChangePin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req struct {
		CurrentPIN string `json:"current_pin"`
		NewPIN     string `json:"new_pin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	ok, err := s.checkPIN(r, req.CurrentPIN)
	if err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to load pin hash", slog.Any("error", err))
		writeJSONError(w, "Anmeldung fehlgeschlagen", http.StatusInternalServerError)
		return
	}
	if !ok {
		writeJSONError(w, "Aktuelle PIN ist falsch", http.StatusUnauthorized)
		return
	}

	if len(req.NewPIN) < 4 {
		writeJSONError(w, "PIN muss mindestens 4 Zeichen haben", http.StatusBadRequest)
		return
	}

	if err := s.storage.UpdateSetting(ctx, types.SettingPINHash, hashPIN(req.NewPIN)); err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to store new pin hash", slog.Any("error", err))
		writeJSONError(w, "PIN konnte nicht geändert werden", http.StatusInternalServerError)
		return
	}

	// every session is invalidated, including the caller's
	s.sessions.Clear()
	log.Ctx(ctx).InfoContext(ctx, "pin changed, all sessions cleared")

	writeJSON(w, map[string]string{"message": "PIN geändert"})
}
