package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/arzan03/ConsultCMS/internal/apperr"
	"github.com/arzan03/ConsultCMS/internal/models"
	"github.com/arzan03/ConsultCMS/internal/store"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// dummyHash is compared against when the email is unknown so both failure paths cost one bcrypt.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("consultcms-dummy-password"), bcrypt.DefaultCost)

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(hash), err
}

// VerifyPassword compares a plain password with a hashed password
func VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Claims is the payload of a session token.
type Claims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Name   string `json:"name"`
	jwt.RegisteredClaims
}

// Session is the verified identity attached to a request.
type Session struct {
	UserID    string    `json:"userId"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Name      string    `json:"name"`
	TokenID   string    `json:"tokenId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// IsAdmin reports whether the session carries the admin role.
func (s Session) IsAdmin() bool {
	return s.Role == models.RoleAdmin
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	User      store.Document `json:"user"`
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expiresAt"`
}

// AuthService verifies credentials and issues and checks session tokens.
type AuthService struct {
	store   store.Store
	secret  []byte
	ttl     time.Duration
	revoker Revoker
	now     func() time.Time
	log     zerolog.Logger
}

// NewAuthService creates an AuthService. revoker may be nil, which disables logout revocation.
func NewAuthService(st store.Store, secret string, ttl time.Duration, revoker Revoker, log zerolog.Logger) *AuthService {
	return &AuthService{
		store:   st,
		secret:  []byte(secret),
		ttl:     ttl,
		revoker: revoker,
		now:     time.Now,
		log:     log.With().Str("component", "auth").Logger(),
	}
}

// WithClock replaces the time source.
func (s *AuthService) WithClock(now func() time.Time) *AuthService {
	s.now = now
	return s
}

// Login authenticates a user. Unknown email and wrong password fail identically.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, apperr.Validation("email and password are required")
	}

	user, err := s.store.FindOne(ctx, models.UsersCollection, map[string]any{"email": email})
	if errors.Is(err, store.ErrNotFound) {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		s.log.Info().Msg("login failed")
		return nil, apperr.InvalidCredentials()
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	hash, _ := user["password"].(string)
	if !VerifyPassword(password, hash) {
		s.log.Info().Str("userId", user.ID()).Msg("login failed")
		return nil, apperr.InvalidCredentials()
	}

	token, session, err := s.IssueToken(user)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("userId", session.UserID).Str("role", session.Role).Msg("login succeeded")
	return &LoginResult{User: publicUser(user), Token: token, ExpiresAt: session.ExpiresAt}, nil
}

// IssueToken signs an HS256 token for user.
func (s *AuthService) IssueToken(user store.Document) (string, Session, error) {
	now := s.now().UTC().Truncate(time.Second)
	session := Session{
		UserID:    user.ID(),
		Email:     stringField(user, "email"),
		Role:      stringField(user, "role"),
		Name:      stringField(user, "name"),
		TokenID:   uuid.NewString(),
		ExpiresAt: now.Add(s.ttl),
	}

	claims := Claims{
		UserID: session.UserID,
		Email:  session.Email,
		Role:   session.Role,
		Name:   session.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   session.UserID,
			ID:        session.TokenID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", Session{}, fmt.Errorf("sign token: %w", err)
	}
	return token, session, nil
}

// Verify checks the signature, signing method, expiry and revocation of a token.
func (s *AuthService) Verify(ctx context.Context, tokenString string) (Session, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return Session{}, apperr.Unauthorized("Invalid or expired token")
	}
	if claims.Subject == "" {
		return Session{}, apperr.Unauthorized("Invalid token claims")
	}

	if s.revoker != nil && claims.ID != "" {
		revoked, err := s.revoker.IsRevoked(ctx, claims.ID)
		if err != nil {
			s.log.Warn().Err(err).Msg("revocation check failed")
		} else if revoked {
			return Session{}, apperr.Unauthorized("Token has been revoked")
		}
	}

	return Session{
		UserID:    claims.Subject,
		Email:     claims.Email,
		Role:      claims.Role,
		Name:      claims.Name,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time.UTC(),
	}, nil
}

// Logout revokes the session's token for the rest of its lifetime.
func (s *AuthService) Logout(ctx context.Context, session Session) error {
	if s.revoker == nil {
		s.log.Warn().Str("userId", session.UserID).Msg("logout without revocation store, token stays valid until expiry")
		return nil
	}

	ttl := session.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.revoker.Revoke(ctx, session.TokenID, ttl); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}

	s.log.Info().Str("userId", session.UserID).Msg("session revoked")
	return nil
}

func publicUser(user store.Document) store.Document {
	out := user.Clone()
	delete(out, "password")
	return out
}

func stringField(doc store.Document, name string) string {
	v, _ := doc[name].(string)
	return v
}
