package client

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

const requestTimeout = 15 * time.Second

// ErrNotSignedIn is returned when a call needs a session and none is valid.
var ErrNotSignedIn = errors.New("not signed in")

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// APIError carries the message of a failure envelope.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

// API talks to the CMS server on behalf of the dashboard.
type API struct {
	baseURL string
	guard   *Guard
	now     func() time.Time
	log     zerolog.Logger
}

func NewAPI(baseURL string, guard *Guard, log zerolog.Logger) *API {
	return &API{baseURL: strings.TrimRight(baseURL, "/"), guard: guard, now: time.Now, log: log}
}

// Login signs in and caches the session.
func (a *API) Login(email, password string) (*SessionData, error) {
	agent := fiber.Post(a.baseURL + "/api/auth").
		JSON(fiber.Map{"email": email, "password": password})

	var result struct {
		Token string         `json:"token"`
		User  map[string]any `json:"user"`
	}
	if err := a.send(agent, &result); err != nil {
		return nil, err
	}

	data := &SessionData{Token: result.Token, User: result.User}
	if err := a.guard.Store(data); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return data, nil
}

// Session returns the cached session, clearing it when expired.
func (a *API) Session() (*SessionData, error) {
	data, ok := a.guard.Session(a.now())
	if !ok {
		return nil, ErrNotSignedIn
	}
	return data, nil
}

// Logout clears the local session and asks the server to revoke the token. The server call is
// best effort; the local session is gone either way.
func (a *API) Logout() error {
	data, ok := a.guard.Session(a.now())
	if err := a.guard.Clear(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	if !ok {
		return nil
	}

	agent := fiber.Delete(a.baseURL+"/api/auth").Set(fiber.HeaderAuthorization, "Bearer "+data.Token)
	if err := a.send(agent, nil); err != nil {
		a.log.Warn().Err(err).Msg("server logout failed")
	}
	return nil
}

func (a *API) send(agent *fiber.Agent, out any) error {
	agent.Timeout(requestTimeout)
	agent.JSONDecoder(json.Unmarshal)
	if err := agent.Parse(); err != nil {
		return fmt.Errorf("invalid request: %w", err)
	}

	var env envelope
	status, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("request failed: %w", errors.Join(errs...))
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return &APIError{Status: status, Message: "unexpected response"}
	}
	if !env.Success {
		return &APIError{Status: status, Message: env.Message}
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
