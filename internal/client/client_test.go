package client

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenExpiringAt(t *testing.T, exp time.Time) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "u1",
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("the client never knows this secret"))
	require.NoError(t, err)
	return token
}

func newGuard(t *testing.T) (*Guard, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	return NewGuard(NewFileStore(path)), path
}

func TestGuardValidStrictlyBeforeExpiry(t *testing.T) {
	guard, path := newGuard(t)
	exp := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, guard.Store(&SessionData{Token: tokenExpiringAt(t, exp), User: map[string]any{"name": "Ed"}}))

	assert.True(t, guard.Valid(exp.Add(-time.Second)))
	assert.FileExists(t, path)

	assert.False(t, guard.Valid(exp), "a session is no longer valid at its expiry instant")
	assert.NoFileExists(t, path, "expired sessions are cleared")
	assert.False(t, guard.Valid(exp.Add(-time.Hour)), "cleared state stays cleared")
}

func TestGuardLoadsPersistedSession(t *testing.T) {
	guard, path := newGuard(t)
	exp := time.Now().Add(time.Hour)
	require.NoError(t, guard.Store(&SessionData{Token: tokenExpiringAt(t, exp)}))

	fresh := NewGuard(NewFileStore(path))
	data, ok := fresh.Session(time.Now())
	require.True(t, ok)
	assert.NotEmpty(t, data.Token)
}

func TestGuardClearsUnreadableSessions(t *testing.T) {
	guard, path := newGuard(t)
	require.NoError(t, guard.Store(&SessionData{Token: "not-a-jwt"}))
	assert.False(t, guard.Valid(time.Now()))
	assert.NoFileExists(t, path)

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o700))
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o600))
	fresh := NewGuard(NewFileStore(path))
	assert.False(t, fresh.Valid(time.Now()))
	assert.NoFileExists(t, path)
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Now().Add(time.Minute).Truncate(time.Second)
	got, err := TokenExpiry(tokenExpiringAt(t, exp))
	require.NoError(t, err)
	assert.True(t, exp.Equal(got))

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "u1"}).SignedString([]byte("x"))
	require.NoError(t, err)
	_, err = TokenExpiry(noExp)
	assert.Error(t, err)
}

func fakeServer(t *testing.T, token string, logouts *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.Method {
		case http.MethodPost:
			var body map[string]string
			_ = json.NewDecoder(r.Body).Decode(&body)
			if body["password"] != "correct-horse" {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"success":false,"message":"Invalid email or password"}`))
				return
			}
			raw, _ := json.Marshal(map[string]any{
				"success": true, "message": "Login successful",
				"data": map[string]any{"token": token, "user": map[string]any{"email": body["email"]}},
			})
			_, _ = w.Write(raw)
		case http.MethodDelete:
			atomic.AddInt32(logouts, 1)
			assert.Equal(t, "Bearer "+token, r.Header.Get("Authorization"))
			_, _ = w.Write([]byte(`{"success":true,"message":"Logged out successfully"}`))
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestAPILoginSessionLogout(t *testing.T) {
	token := tokenExpiringAt(t, time.Now().Add(time.Hour))
	var logouts int32
	srv := fakeServer(t, token, &logouts)
	guard, path := newGuard(t)
	api := NewAPI(srv.URL, guard, zerolog.Nop())

	_, err := api.Login("ed@example.com", "wrong")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "Invalid email or password", apiErr.Message)

	data, err := api.Login("ed@example.com", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, token, data.Token)
	assert.Equal(t, "ed@example.com", data.User["email"])

	current, err := api.Session()
	require.NoError(t, err)
	assert.Equal(t, token, current.Token)

	require.NoError(t, api.Logout())
	assert.Equal(t, int32(1), atomic.LoadInt32(&logouts))
	assert.NoFileExists(t, path)

	_, err = api.Session()
	assert.ErrorIs(t, err, ErrNotSignedIn)
}

func TestAPILogoutClearsEvenWhenServerIsDown(t *testing.T) {
	guard, path := newGuard(t)
	require.NoError(t, guard.Store(&SessionData{Token: tokenExpiringAt(t, time.Now().Add(time.Hour))}))

	api := NewAPI("http://127.0.0.1:1", guard, zerolog.Nop())
	require.NoError(t, api.Logout())
	assert.NoFileExists(t, path)
}
