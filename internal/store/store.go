// Package store persists user records as a single JSON document in the
// data directory. Every save rewrites the whole collection; there is no
// partial update and no file locking (single-process model).
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	usersFile    = "users.json"
	metadataFile = "metadata.json"
)

var (
	// ErrCorrupt means the file exists but does not parse as the expected shape.
	ErrCorrupt = errors.New("store: corrupt data file")
	// ErrWrite means the file could not be written (permissions, disk full).
	ErrWrite = errors.New("store: write failed")
)

// User is the persisted account record. Field names match the on-disk
// JSON shape, so renaming a field is a data migration.
type User struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	Password  string     `json:"password"` // stored in plaintext
	Country   string     `json:"country"`
	LoggedIn  bool       `json:"loggedIn"`
	Bookmarks []Bookmark `json:"bookmarks"`
}

// Bookmark is a saved search result. The ID mirrors the catalog id of
// the source book. Records are created and deleted, never edited.
type Bookmark struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	RatingAverage float64 `json:"ratingAverage"`
	RatingCount   int     `json:"ratingCount"`
	CoverID       string  `json:"coverID"`
}

type Store struct {
	dir string
}

func New(dataDir string) *Store {
	return &Store{dir: dataDir}
}

// LoadUsers reads the full user collection. A missing file is not an
// error and yields an empty collection.
func (s *Store) LoadUsers() ([]User, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, usersFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("store: read users: %w", err)
	}

	var users []User
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, usersFile, err)
	}
	return users, nil
}

// SaveUsers overwrites the full user collection atomically
// (write to temp file, then rename).
func (s *Store) SaveUsers(users []User) error {
	if users == nil {
		users = []User{}
	}
	data, err := json.MarshalIndent(users, "", "  ")
	if err != nil {
		return fmt.Errorf("store: encode users: %w", err)
	}
	return s.writeFile(usersFile, data)
}

// GetMetadata returns the stored value for key, or "" when the metadata
// file or the key does not exist.
func (s *Store) GetMetadata(key string) (string, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("store: read metadata: %w", err)
	}

	var meta map[string]string
	if err := json.Unmarshal(data, &meta); err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrCorrupt, metadataFile, err)
	}
	return meta[key], nil
}

// SetMetadata stores key=value. An empty value removes the key.
func (s *Store) SetMetadata(key, value string) error {
	meta := make(map[string]string)
	if data, err := os.ReadFile(filepath.Join(s.dir, metadataFile)); err == nil {
		// Best effort: a corrupt metadata file is replaced wholesale.
		_ = json.Unmarshal(data, &meta)
	}

	if value == "" {
		delete(meta, key)
	} else {
		meta[key] = value
	}

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("store: encode metadata: %w", err)
	}
	return s.writeFile(metadataFile, data)
}

func (s *Store) writeFile(name string, data []byte) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("%w: mkdir %s: %v", ErrWrite, s.dir, err)
	}

	path := filepath.Join(s.dir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrWrite, name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("%w: %s: %v", ErrWrite, name, err)
	}
	return nil
}
