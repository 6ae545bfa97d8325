// Package client is the dashboard side of authentication: a cached session and a small API client.
package client

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v5"
)

// SessionData is what the dashboard keeps after signing in.
type SessionData struct {
	Token string         `json:"token"`
	User  map[string]any `json:"user"`
}

// FileStore persists the session as JSON on local disk.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// DefaultSessionPath is the session file under the user's config directory.
func DefaultSessionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "consultcms", "session.json")
}

// Load returns nil without error when no session is stored.
func (f *FileStore) Load() (*SessionData, error) {
	raw, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	var data SessionData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &data, nil
}

func (f *FileStore) Save(data *SessionData) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return os.WriteFile(f.path, raw, 0o600)
}

func (f *FileStore) Clear() error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// TokenExpiry reads exp from a token without checking its signature. The server verifies
// every protected call; this is only used to decide whether to keep a cached session.
func TokenExpiry(token string) (time.Time, error) {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, err
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, errors.New("token has no expiry")
	}
	return claims.ExpiresAt.Time, nil
}

// Guard answers whether the cached session is still usable and drops it once it is not.
type Guard struct {
	mu     sync.Mutex
	store  *FileStore
	cached *SessionData
}

func NewGuard(store *FileStore) *Guard {
	return &Guard{store: store}
}

// Valid reports whether a session exists and now is strictly before its expiry. An expired or
// unreadable session is cleared.
func (g *Guard) Valid(now time.Time) bool {
	_, ok := g.Session(now)
	return ok
}

// Session returns the cached session when it is valid at now.
func (g *Guard) Session(now time.Time) (*SessionData, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.cached == nil {
		data, err := g.store.Load()
		if err != nil || data == nil {
			if err != nil {
				g.clearLocked()
			}
			return nil, false
		}
		g.cached = data
	}

	exp, err := TokenExpiry(g.cached.Token)
	if err != nil || !now.Before(exp) {
		g.clearLocked()
		return nil, false
	}
	return g.cached, true
}

// Store caches and persists a fresh session.
func (g *Guard) Store(data *SessionData) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.store.Save(data); err != nil {
		return err
	}
	g.cached = data
	return nil
}

// Clear drops the session unconditionally.
func (g *Guard) Clear() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.clearLocked()
}

func (g *Guard) clearLocked() error {
	g.cached = nil
	return g.store.Clear()
}
