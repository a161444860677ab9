package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"shary/internal/crypto"
	"shary/internal/domain"
)

const vaultFile = ".credentials"

// Vault stores the credential record as a single encrypted blob on disk.
// The plaintext record never touches the filesystem.
type Vault struct {
	dir string
	mu  sync.Mutex
}

func NewVault(dir string) *Vault { return &Vault{dir: dir} }

var _ domain.VaultStore = (*Vault)(nil)

// Store encrypts creds under key and writes the vault file. An existing vault
// is never overwritten: the call fails with ErrAlreadyExists and leaves the
// file untouched.
func (v *Vault) Store(key []byte, creds domain.Credentials) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	path := v.path()
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: %s", domain.ErrAlreadyExists, vaultFile)
	}

	raw, err := json.Marshal(creds)
	if err != nil {
		return err
	}
	blob, err := crypto.EncryptCBC(key, raw)
	if err != nil {
		return err
	}
	return os.WriteFile(path, blob, 0o600)
}

// Load decrypts and parses the vault file. Wrong keys and corrupted content
// surface as errors for the session layer to absorb.
func (v *Vault) Load(key []byte) (domain.Credentials, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	blob, err := os.ReadFile(v.path())
	if err != nil {
		return domain.Credentials{}, err
	}
	raw, err := crypto.DecryptCBC(key, blob)
	if err != nil {
		return domain.Credentials{}, err
	}
	var creds domain.Credentials
	if err := json.Unmarshal(raw, &creds); err != nil {
		return domain.Credentials{}, fmt.Errorf("%w: %v", domain.ErrMalformedStoredFile, err)
	}
	return creds, nil
}

// Delete removes the vault file. Deleting an absent vault is a no-op.
func (v *Vault) Delete() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	err := os.Remove(v.path())
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// Exists reports vault-file presence, not credential validity.
func (v *Vault) Exists() bool {
	_, err := os.Stat(v.path())
	return err == nil
}

func (v *Vault) path() string { return filepath.Join(v.dir, vaultFile) }
