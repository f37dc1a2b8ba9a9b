package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/solartrack/solartrack/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestLogin(t *testing.T) {
	t.Run("correct pin issues token", func(t *testing.T) {
		mockS := &mockStorage{}
		mockS.On("GetSetting", mock.Anything, types.SettingPINHash).Return(pinHash1234, nil)
		srv := newTestServer(mockS)

		req := httptest.NewRequest("POST", "/api/auth/login", strings.NewReader(`{"pin":"1234"}`))
		w := httptest.NewRecorder()
		srv.handleLogin(w, req)

		assert.Equal(t, http.StatusOK, w.Result().StatusCode)
		assert.Contains(t, w.Body.String(), `"token"`)
		assert.Contains(t, w.Body.String(), "Angemeldet")
		assert.Equal(t, 1, srv.sessions.Len())
	})

	t.Run("wrong pin", func(t *testing.T) {
		mockS := &mockStorage{}
		mockS.On("GetSetting", mock.Anything, types.SettingPINHash).Return(pinHash1234, nil)
		srv := newTestServer(mockS)

		req := httptest.NewRequest("POST", "/api/auth/login", strings.NewReader(`{"pin":"9999"}`))
		w := httptest.NewRecorder()
		srv.handleLogin(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Result().StatusCode)
		assert.Contains(t, w.Body.String(), "Falsche PIN")
		assert.Equal(t, 0, srv.sessions.Len())
	})

	t.Run("garbage body", func(t *testing.T) {
		srv := newTestServer(&mockStorage{})

		req := httptest.NewRequest("POST", "/api/auth/login", strings.NewReader(`{`))
		w := httptest.NewRecorder()
		srv.handleLogin(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Result().StatusCode)
	})
}

func TestAuthMiddleware(t *testing.T) {
	mockS := &mockStorage{}
	mockS.On("GetSetting", mock.Anything, types.SettingPINHash).Return(pinHash1234, nil)
	srv := newTestServer(mockS)

	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := srv.authMiddleware(ok)

	t.Run("open paths need no token", func(t *testing.T) {
		for _, path := range []string{"/api/auth/login", "/api/health"} {
			req := httptest.NewRequest("POST", path, nil)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)
			assert.Equal(t, http.StatusOK, w.Result().StatusCode, path)
		}
	})

	t.Run("missing header", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/readings", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Result().StatusCode)
		assert.Contains(t, w.Body.String(), "Nicht angemeldet")
	})

	t.Run("invalid token", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/readings", nil)
		req.Header.Set("Authorization", "Bearer bogus")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Result().StatusCode)
		assert.Contains(t, w.Body.String(), "Sitzung abgelaufen")
	})

	t.Run("valid token", func(t *testing.T) {
		token, _ := srv.sessions.Create()
		req := httptest.NewRequest("GET", "/api/readings", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Result().StatusCode)
	})
}

func TestLogout(t *testing.T) {
	srv := newTestServer(&mockStorage{})
	token, _ := srv.sessions.Create()

	req := httptest.NewRequest("POST", "/api/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	srv.handleLogout(w, req)

	assert.Equal(t, http.StatusOK, w.Result().StatusCode)
	assert.Contains(t, w.Body.String(), "Abgemeldet")
	assert.False(t, srv.sessions.Verify(token))

	// no header is a no-op, not an error
	req = httptest.NewRequest("POST", "/api/auth/logout", nil)
	w = httptest.NewRecorder()
	srv.handleLogout(w, req)
	assert.Equal(t, http.StatusOK, w.Result().StatusCode)
}

func TestChangePin(t *testing.T) {
	t.Run("wrong current pin", func(t *testing.T) {
		mockS := &mockStorage{}
		mockS.On("GetSetting", mock.Anything, types.SettingPINHash).Return(pinHash1234, nil)
		srv := newTestServer(mockS)

		req := httptest.NewRequest("POST", "/api/auth/change-pin", strings.NewReader(`{"current_pin":"0000","new_pin":"567890"}`))
		w := httptest.NewRecorder()
		srv.handleChangePin(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Result().StatusCode)
		assert.Contains(t, w.Body.String(), "Aktuelle PIN ist falsch")
	})

	t.Run("new pin too short", func(t *testing.T) {
		mockS := &mockStorage{}
		mockS.On("GetSetting", mock.Anything, types.SettingPINHash).Return(pinHash1234, nil)
		srv := newTestServer(mockS)

		req := httptest.NewRequest("POST", "/api/auth/change-pin", strings.NewReader(`{"current_pin":"1234","new_pin":"12"}`))
		w := httptest.NewRecorder()
		srv.handleChangePin(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Result().StatusCode)
	})

	t.Run("success clears all sessions", func(t *testing.T) {
		mockS := &mockStorage{}
		mockS.On("GetSetting", mock.Anything, types.SettingPINHash).Return(pinHash1234, nil)
		mockS.On("UpdateSetting", mock.Anything, types.SettingPINHash, hashPIN("567890")).Return(nil)
		srv := newTestServer(mockS)

		t1, _ := srv.sessions.Create()
		t2, _ := srv.sessions.Create()

		req := httptest.NewRequest("POST", "/api/auth/change-pin", strings.NewReader(`{"current_pin":"1234","new_pin":"567890"}`))
		req.Header.Set("Authorization", "Bearer "+t1)
		w := httptest.NewRecorder()
		srv.handleChangePin(w, req)

		require.Equal(t, http.StatusOK, w.Result().StatusCode)
		assert.Contains(t, w.Body.String(), "PIN geändert")

		// everyone has to log in again, including the caller
		assert.False(t, srv.sessions.Verify(t1))
		assert.False(t, srv.sessions.Verify(t2))
		mockS.AssertExpectations(t)
	})
}

func TestAuthStatus(t *testing.T) {
	srv := newTestServer(&mockStorage{})
	req := httptest.NewRequest("GET", "/api/auth/status", nil)
	w := httptest.NewRecorder()
	srv.handleAuthStatus(w, req)

	assert.Equal(t, http.StatusOK, w.Result().StatusCode)
	assert.Contains(t, w.Body.String(), `"authenticated":true`)
}
