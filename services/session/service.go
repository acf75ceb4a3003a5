package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"showlog/models"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrStorageDirRequired = errors.New("storage directory not provided")
	ErrNotSignedIn        = errors.New("not signed in")
	ErrTokenExpired       = errors.New("session token expired")
)

// AuthClient is the slice of the remote API the session service needs.
type AuthClient interface {
	Login(ctx context.Context, email, password string) (models.User, string, error)
	Profile(ctx context.Context) (models.User, error)
}

// Service holds the process-wide sign-in state as an explicit object with a
// load/clear lifecycle. The token is persisted to a JSON file so a restart
// resumes the session; everything else about the session is transient.
type Service struct {
	mu      sync.RWMutex
	path    string
	api     AuthClient
	current *models.Session
}

// NewService creates a session service storing its token file inside the
// provided directory.
func NewService(storageDir string, api AuthClient) (*Service, error) {
	if strings.TrimSpace(storageDir) == "" {
		return nil, ErrStorageDirRequired
	}

	if err := os.MkdirAll(storageDir, 0o755); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}

	return &Service{
		path: filepath.Join(storageDir, "session.json"),
		api:  api,
	}, nil
}

// Token returns the current bearer token, or "" when signed out. Suitable as
// a backend.TokenSource.
func (s *Service) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return ""
	}
	return s.current.Token
}

// Current returns a copy of the active session.
func (s *Service) Current() (models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return models.Session{}, ErrNotSignedIn
	}
	return *s.current, nil
}

// Load restores a persisted session from disk. An expired or missing token
// leaves the service signed out. When a token is restored the profile is
// refreshed from the server; a profile failure keeps the stored one so the
// app still works offline-ish until the next call fails properly.
func (s *Service) Load(ctx context.Context) error {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read session: %w", err)
	}

	var stored models.Session
	if err := json.Unmarshal(data, &stored); err != nil {
		return fmt.Errorf("decode session: %w", err)
	}
	if strings.TrimSpace(stored.Token) == "" {
		return nil
	}

	if expiry := tokenExpiry(stored.Token); expiry != nil {
		stored.ExpiresAt = *expiry
		if expiry.Before(time.Now()) {
			_ = os.Remove(s.path)
			return ErrTokenExpired
		}
	}

	s.mu.Lock()
	s.current = &stored
	s.mu.Unlock()

	if s.api != nil {
		if user, err := s.api.Profile(ctx); err == nil {
			s.mu.Lock()
			s.current.User = user
			s.mu.Unlock()
		}
	}

	return nil
}

// SignIn exchanges credentials for a token and persists the session.
func (s *Service) SignIn(ctx context.Context, email, password string) (models.Session, error) {
	if s.api == nil {
		return models.Session{}, errors.New("auth client not configured")
	}

	user, token, err := s.api.Login(ctx, email, password)
	if err != nil {
		return models.Session{}, err
	}

	sess := models.Session{
		Token:   token,
		User:    user,
		SavedAt: time.Now().UTC(),
	}
	if expiry := tokenExpiry(token); expiry != nil {
		sess.ExpiresAt = *expiry
	}

	s.mu.Lock()
	s.current = &sess
	err = s.save(sess)
	s.mu.Unlock()
	if err != nil {
		return models.Session{}, err
	}

	return sess, nil
}

// Clear signs out: in-memory state is dropped and the token file removed.
func (s *Service) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = nil
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}

func (s *Service) save(sess models.Session) error {
	tmp := s.path + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create session temp file: %w", err)
	}

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(sess); err != nil {
		file.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("encode session: %w", err)
	}

	if err := file.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close session temp file: %w", err)
	}

	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace session file: %w", err)
	}
	return nil
}

// tokenExpiry reads the exp claim without verifying the signature. The
// backend owns verification; locally we only want to skip tokens that are
// obviously dead.
func tokenExpiry(token string) *time.Time {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil
	}
	return &exp.Time
}
