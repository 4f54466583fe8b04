// Package auth drives the session lifecycle against the platform API:
// login, registration, logout and the session check, plus persistence of
// the access token between invocations.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"codeprep-cli/internal/api"
	"codeprep-cli/internal/session"
)

var (
	ErrNotSignedIn  = errors.New("not signed in")
	ErrInvalidToken = errors.New("invalid or expired token")
)

type Service struct {
	api       *api.Client
	sessions  *session.Store
	tokenFile string
	log       *slog.Logger

	mu    sync.Mutex
	token string
}

func NewService(client *api.Client, sessions *session.Store, tokenFile string) *Service {
	s := &Service{
		api:       client,
		sessions:  sessions,
		tokenFile: tokenFile,
		log:       slog.Default(),
	}
	client.SetTokenFunc(s.Token)
	return s
}

// Token returns the current access token, or "" when anonymous.
func (s *Service) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	User  session.User `json:"user"`
	Token string       `json:"token"`
}

func (s *Service) Login(ctx context.Context, input Credentials) (*session.User, error) {
	var resp authResponse
	if err := s.api.Post(ctx, "/api/auth/login", input, &resp); err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}
	s.establish(resp)
	return &resp.User, nil
}

func (s *Service) Register(ctx context.Context, input RegisterInput) (*session.User, error) {
	var resp authResponse
	if err := s.api.Post(ctx, "/api/auth/register", input, &resp); err != nil {
		return nil, fmt.Errorf("registration failed: %w", err)
	}
	s.establish(resp)
	return &resp.User, nil
}

// Logout ends the server session and always drops local state, even when
// the server call fails.
func (s *Service) Logout(ctx context.Context) error {
	err := s.api.Post(ctx, "/api/auth/logout", nil, nil)

	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
	s.sessions.Clear()
	if s.tokenFile != "" {
		if rmErr := os.Remove(s.tokenFile); rmErr != nil && !os.IsNotExist(rmErr) {
			s.log.Warn("failed to remove token file", "path", s.tokenFile, "error", rmErr)
		}
	}

	if err != nil {
		return fmt.Errorf("logout failed: %w", err)
	}
	return nil
}

// Check asks the server who the stored token belongs to and hydrates the
// session store on success.
func (s *Service) Check(ctx context.Context) (*session.User, error) {
	if s.Token() == "" {
		return nil, ErrNotSignedIn
	}
	var resp authResponse
	if err := s.api.Get(ctx, "/api/auth/check", nil, &resp); err != nil {
		return nil, fmt.Errorf("session check failed: %w", err)
	}
	s.sessions.SetUser(resp.User)
	return &resp.User, nil
}

func (s *Service) establish(resp authResponse) {
	if resp.Token != "" {
		s.mu.Lock()
		s.token = resp.Token
		s.mu.Unlock()
		if err := s.saveToken(resp.Token); err != nil {
			s.log.Warn("failed to persist token", "error", err)
		}
	}
	s.sessions.SetUser(resp.User)
}

// LoadToken restores a persisted access token. Expired tokens are ignored
// so the next command starts anonymous instead of failing every call.
func (s *Service) LoadToken() error {
	if s.tokenFile == "" {
		return nil
	}
	raw, err := os.ReadFile(s.tokenFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read token file: %w", err)
	}
	token := strings.TrimSpace(string(raw))
	if token == "" {
		return nil
	}
	claims, err := Peek(token)
	if err != nil || claims.Expired() {
		return nil
	}
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	return nil
}

func (s *Service) saveToken(token string) error {
	if s.tokenFile == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.tokenFile), 0o700); err != nil {
		return fmt.Errorf("failed to create token dir: %w", err)
	}
	if err := os.WriteFile(s.tokenFile, []byte(token), 0o600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}
