package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"socialgw/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postJSON(t *testing.T, r http.Handler, path string, body any, authenticated bool) *httptest.ResponseRecorder {
	t.Helper()
	encoded, err := json.Marshal(body)
	require.NoError(t, err)

	req, _ := http.NewRequest(http.MethodPost, path, bytes.NewReader(encoded))
	req.Header.Set("Content-Type", "application/json")
	if authenticated {
		withSession(req)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func findCookie(cookies []*http.Cookie, name string) *http.Cookie {
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestLoginSetsSessionCookies(t *testing.T) {
	backend := newFakeBackend(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/login", r.URL.Path)
		_, _ = w.Write([]byte(`{"message":"ok","data":{"token":"jwt-123","user":{"id":"u1","username":"ben10","email":"b@t.io","profilePic":""}}}`))
	})
	defer backend.Close()
	r := setupRouter(t, backend.server.URL)

	w := postJSON(t, r, "/api/auth", map[string]string{"email": "b@t.io", "password": "secret"}, false)
	require.Equal(t, http.StatusOK, w.Code)

	cookies := w.Result().Cookies()

	token := findCookie(cookies, services.CookieAuthToken)
	require.NotNil(t, token)
	assert.Equal(t, "jwt-123", token.Value)
	assert.True(t, token.HttpOnly)
	assert.Equal(t, services.SessionMaxAge, token.MaxAge)
	assert.Equal(t, "/", token.Path)

	username := findCookie(cookies, services.CookieUsername)
	require.NotNil(t, username)
	assert.False(t, username.HttpOnly)

	// profilePic пустой у бэкенда - в cookie уходит сентинел
	profilePic := findCookie(cookies, services.CookieProfilePic)
	require.NotNil(t, profilePic)
	assert.Equal(t, "default.jpg", profilePic.Value)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	// development-режим: токен дублируется в теле
	assert.Equal(t, "jwt-123", body["token"])
}

func TestLoginMissingCredentials(t *testing.T) {
	backend := newFakeBackend(func(w http.ResponseWriter, r *http.Request) {})
	defer backend.Close()
	r := setupRouter(t, backend.server.URL)

	w := postJSON(t, r, "/api/auth", map[string]string{"email": "", "password": ""}, false)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, backend.calls, "validation failure must not reach the backend")
}

func TestLoginRelaysInvalidCredentials(t *testing.T) {
	backend := newFakeBackend(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Invalid credentials"}`))
	})
	defer backend.Close()
	r := setupRouter(t, backend.server.URL)

	w := postJSON(t, r, "/api/auth", map[string]string{"email": "b@t.io", "password": "wrong"}, false)

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Invalid credentials", body["message"])

	// Никаких сессионных cookie при отказе
	assert.Nil(t, findCookie(w.Result().Cookies(), services.CookieAuthToken))
}

func TestLoginIncompleteBackendData(t *testing.T) {
	backend := newFakeBackend(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"message":"ok","data":{"user":{"id":"u1"}}}`))
	})
	defer backend.Close()
	r := setupRouter(t, backend.server.URL)

	w := postJSON(t, r, "/api/auth", map[string]string{"email": "b@t.io", "password": "x"}, false)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Nil(t, findCookie(w.Result().Cookies(), services.CookieAuthToken))
}

func TestRegisterValidation(t *testing.T) {
	backend := newFakeBackend(func(w http.ResponseWriter, r *http.Request) {})
	defer backend.Close()
	r := setupRouter(t, backend.server.URL)

	w := postJSON(t, r, "/api/register", map[string]string{
		"username": "ben10", "email": "b@t.io", "password": "short",
	}, false)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, backend.calls)
}

func TestRegisterSuccess(t *testing.T) {
	backend := newFakeBackend(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		_ = json.NewDecoder(r.Body).Decode(&payload)
		// Шлюз дополняет регистрацию дефолтами
		assert.Equal(t, "default.jpg", payload["profilePic"])
		assert.NotNil(t, payload["followersIds"])

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"message":"ok","data":{"token":"jwt-new","user":{"id":"u2","username":"newbie"}}}`))
	})
	defer backend.Close()
	r := setupRouter(t, backend.server.URL)

	w := postJSON(t, r, "/api/register", map[string]string{
		"username": "newbie", "email": "n@t.io", "password": "longenough",
	}, false)

	require.Equal(t, http.StatusCreated, w.Code)
	token := findCookie(w.Result().Cookies(), services.CookieAuthToken)
	require.NotNil(t, token)
	assert.Equal(t, "jwt-new", token.Value)
	assert.True(t, token.HttpOnly)
}

func TestLogoutClearsCookies(t *testing.T) {
	backend := newFakeBackend(func(w http.ResponseWriter, r *http.Request) {})
	defer backend.Close()
	r := setupRouter(t, backend.server.URL)

	w := postJSON(t, r, "/api/auth/logout", map[string]string{}, true)
	require.Equal(t, http.StatusOK, w.Code)

	token := findCookie(w.Result().Cookies(), services.CookieAuthToken)
	require.NotNil(t, token)
	assert.Empty(t, token.Value)
	assert.Negative(t, token.MaxAge)
}

func TestProtectedRouteWithoutSession(t *testing.T) {
	backend := newFakeBackend(func(w http.ResponseWriter, r *http.Request) {})
	defer backend.Close()
	r := setupRouter(t, backend.server.URL)

	req, _ := http.NewRequest(http.MethodGet, "/api/auth/postFeed", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, 0, backend.calls)
}
