// Package state persists the run records used to skip satisfied commands.
package state

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"go.trai.ch/chore/internal/core/domain"
	"go.trai.ch/zerr"
)

// Store implements ports.RunInfoStore using one JSON file per command.
type Store struct {
	dir string
}

// NewStore creates a new Store keeping its records in dir.
// The directory is created on the first write.
func NewStore(dir string) *Store {
	return &Store{dir: filepath.Clean(dir)}
}

// Dir returns the directory holding the records.
func (s *Store) Dir() string {
	return s.dir
}

// Get retrieves the run record for a given command name.
// It returns nil without an error when the command never succeeded.
func (s *Store) Get(commandName string) (*domain.RunInfo, error) {
	filename := s.filename(commandName)
	//nolint:gosec // Path is constructed from trusted directory and hashed filename
	data, err := os.ReadFile(filename)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreReadFailed.Error()), "file", filename)
	}

	var info domain.RunInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreUnmarshalFailed.Error()), "file", filename)
	}

	return &info, nil
}

// Put stores the run record, replacing the previous one.
func (s *Store) Put(info domain.RunInfo) error {
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return zerr.Wrap(err, domain.ErrStoreMarshalFailed.Error())
	}

	if err := os.MkdirAll(s.dir, domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrStoreCreateFailed.Error()), "dir", s.dir)
	}

	filename := s.filename(info.CommandName)
	//nolint:gosec // Path is constructed from trusted directory and hashed filename
	if err := os.WriteFile(filename, data, domain.FilePerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrStoreWriteFailed.Error()), "file", filename)
	}

	return nil
}

func (s *Store) filename(commandName string) string {
	hash := sha256.Sum256([]byte(commandName))
	return filepath.Join(s.dir, hex.EncodeToString(hash[:])+".json")
}
