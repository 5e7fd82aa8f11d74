package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/businessecom2026-code/Safe360co-sub000/internal/client/models"
	"github.com/businessecom2026-code/Safe360co-sub000/internal/filex"
)

var ErrNotLoggedIn = errors.New("not logged in, run vaultadm login")

type savedSession struct {
	Server      string    `json:"server"`
	Email       string    `json:"email"`
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// TokenStore keeps the session token between invocations in a 0600 file.
type TokenStore struct {
	path string
	now  func() time.Time
}

func NewTokenStore(path string) *TokenStore {
	return &TokenStore{path: path, now: time.Now}
}

func (t *TokenStore) Save(server string, s *models.Session) error {
	data, err := json.Marshal(savedSession{
		Server:      server,
		Email:       s.Identity.Email,
		AccessToken: s.AccessToken,
		ExpiresAt:   s.ExpiresAt,
	})
	if err != nil {
		return err
	}
	return filex.WriteFileAtomic(t.path, data, 0o600)
}

// Load returns the token saved for server. A missing file, a token issued
// by another server and an expired token all yield ErrNotLoggedIn.
func (t *TokenStore) Load(server string) (string, error) {
	data, err := os.ReadFile(t.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", ErrNotLoggedIn
	}
	if err != nil {
		return "", fmt.Errorf("read token: %w", err)
	}

	var s savedSession
	if err := json.Unmarshal(data, &s); err != nil {
		return "", fmt.Errorf("token file %s is corrupt: %w", t.path, err)
	}
	if s.Server != server || s.AccessToken == "" || !t.now().Before(s.ExpiresAt) {
		return "", ErrNotLoggedIn
	}
	return s.AccessToken, nil
}

func (t *TokenStore) Clear() error {
	err := os.Remove(t.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
