package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
)

// Credentials are what survives between runs.
type Credentials struct {
	Username string    `json:"username"`
	Token    string    `json:"token"`
	SavedAt  time.Time `json:"saved_at"`
}

// Empty reports whether there is nothing to restore from.
func (c Credentials) Empty() bool {
	return c.Username == "" || c.Token == ""
}

// Store keeps Credentials in a small JSON file.
type Store struct {
	path string
}

// NewStore returns a store backed by the file at path. The file is created on first Save.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file.
func (s *Store) Path() string {
	return s.path
}

// Load reads the stored credentials. A missing file is not an error.
func (s *Store) Load() (Credentials, error) {
	file, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return Credentials{}, nil
	}
	if err != nil {
		return Credentials{}, fmt.Errorf("failed to open session file: %w", err)
	}
	defer file.Close()

	var creds Credentials
	if err := json.NewDecoder(file).Decode(&creds); err != nil {
		return Credentials{}, fmt.Errorf("failed to decode session file: %w", err)
	}

	return creds, nil
}

// Save replaces the stored credentials.
func (s *Store) Save(creds Credentials) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	if creds.SavedAt.IsZero() {
		creds.SavedAt = time.Now()
	}

	file, err := os.OpenFile(s.path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("failed to create session file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(creds); err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"username": creds.Username,
		"file":     s.path,
	}).Debug("Saved session")

	return nil
}

// Clear forgets the stored credentials.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	logrus.WithField("file", s.path).Debug("Cleared session")
	return nil
}
