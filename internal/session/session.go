// Package session persists the authenticated user and bearer token between
// runs. The store is the single owner of the session record: it is written
// on login/registration, replaced on profile update and cleared on logout.
package session

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"smsbridge/internal/model"
)

type Store struct {
	mu    sync.Mutex
	path  string
	user  *model.User
	token string
}

type persistedSession struct {
	Version int         `json:"version"`
	User    *model.User `json:"user"`
	Token   string      `json:"token"`
	SavedAt int64       `json:"savedAt"`
}

// Open loads the session file at path if one exists. A missing file yields
// an empty, unauthenticated store.
func Open(path string) (*Store, error) {
	s := &Store{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, err
	}
	if len(data) == 0 {
		return s, nil
	}

	var file persistedSession
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	if file.Version != 1 {
		return nil, errors.New("unsupported session file version")
	}

	s.user = file.User
	s.token = file.Token
	return s, nil
}

func (s *Store) Save(user model.User, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := user
	s.user = &u
	s.token = token
	return s.persist()
}

func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.user = nil
	s.token = ""
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *Store) User() *model.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// Authenticated holds exactly when a token is present.
func (s *Store) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token != ""
}

// TokenExpired inspects the bearer token's exp claim without verifying the
// signature; verification is the server's job. Tokens that are absent,
// unparseable or carry no exp claim are not reported as expired.
func (s *Store) TokenExpired(now time.Time) bool {
	s.mu.Lock()
	token := s.token
	s.mu.Unlock()

	if token == "" {
		return false
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return now.After(exp.Time)
}

func (s *Store) persist() error {
	file := persistedSession{
		Version: 1,
		User:    s.user,
		Token:   s.token,
		SavedAt: time.Now().UnixMilli(),
	}
	data, err := json.Marshal(file)
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return err
		}
	}
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
