package store

import (
	"errors"
	"os"
	"path/filepath"
	"sync"

	"shary/internal/domain"
)

const signatureFile = "auth_signature.json"

// SignatureFileStore persists the identity signature record as plain JSON.
// It is deliberately independent of the vault's encryption so corruption of
// one cannot silently validate the other.
type SignatureFileStore struct {
	dir string
	mu  sync.Mutex
}

func NewSignatureFileStore(dir string) *SignatureFileStore {
	return &SignatureFileStore{dir: dir}
}

var _ domain.SignatureStore = (*SignatureFileStore)(nil)

func (s *SignatureFileStore) Save(rec domain.SignatureRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return writeJSON(s.path(), rec, 0o600)
}

// Load returns the stored record; ok is false when no record exists yet.
func (s *SignatureFileStore) Load() (domain.SignatureRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rec domain.SignatureRecord
	found, err := readJSON(s.path(), &rec)
	if err != nil {
		return domain.SignatureRecord{}, false, err
	}
	return rec, found, nil
}

func (s *SignatureFileStore) Exists() bool {
	_, err := os.Stat(s.path())
	return err == nil
}

func (s *SignatureFileStore) Delete() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path())
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func (s *SignatureFileStore) path() string { return filepath.Join(s.dir, signatureFile) }
