package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"prcontacts-backend/models"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNoSession is returned by SessionStore.Load when nothing has been saved
var ErrNoSession = errors.New("no saved session")

// Session is the signed-in identity passed explicitly to the API client
type Session struct {
	BaseURL     string       `json:"baseUrl"`
	AccessToken string       `json:"accessToken"`
	TokenType   string       `json:"tokenType"`
	User        *models.User `json:"user,omitempty"`
}

// ExpiresAt reads the exp claim of the access token without verifying the signature
func (s *Session) ExpiresAt() (time.Time, error) {
	if s == nil || s.AccessToken == "" {
		return time.Time{}, ErrNoSession
	}
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(s.AccessToken, claims); err != nil {
		return time.Time{}, fmt.Errorf("failed to read token: %w", err)
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, nil
	}
	return claims.ExpiresAt.Time, nil
}

// Valid reports whether the session holds a token that has not expired at now
func (s *Session) Valid(now time.Time) bool {
	exp, err := s.ExpiresAt()
	if err != nil {
		return false
	}
	return exp.IsZero() || now.Before(exp)
}

// SessionStore persists a Session as a JSON file readable only by the owner
type SessionStore struct {
	path string
}

func NewSessionStore(path string) *SessionStore {
	return &SessionStore{path: path}
}

func (s *SessionStore) Load() (*Session, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	var session Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	if session.AccessToken == "" {
		return nil, ErrNoSession
	}
	return &session, nil
}

// Save replaces the session file atomically
func (s *SessionStore) Save(session *Session) error {
	if session == nil {
		return s.Clear()
	}
	raw, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".session-*")
	if err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write session: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	return os.Rename(tmp.Name(), s.path)
}

func (s *SessionStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
