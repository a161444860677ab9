package store_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shary/internal/crypto"
	"shary/internal/domain"
	"shary/internal/store"
)

func vaultKey(password, username string) []byte {
	salt := crypto.UserSalt(username)
	safe := crypto.StretchPassword([]byte(password), salt)
	return crypto.StretchPassword(safe, salt)
}

func TestVault_StoreLoad_OK(t *testing.T) {
	home := t.TempDir()
	v := store.NewVault(home)
	key := vaultKey("Pw1!aaaa", "alice")

	creds := domain.Credentials{Email: "a@x.com", Username: "alice", SafePassword: "ab12"}
	require.NoError(t, v.Store(key, creds))

	got, err := v.Load(key)
	require.NoError(t, err)
	assert.Equal(t, creds, got)
}

func TestVault_RefusesOverwrite(t *testing.T) {
	home := t.TempDir()
	v := store.NewVault(home)
	key := vaultKey("Pw1!aaaa", "alice")

	require.NoError(t, v.Store(key, domain.Credentials{Username: "alice"}))
	err := v.Store(key, domain.Credentials{Username: "mallory"})
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)

	// The original record survives.
	got, err := v.Load(key)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
}

func TestVault_WrongKey_Fails(t *testing.T) {
	home := t.TempDir()
	v := store.NewVault(home)

	require.NoError(t, v.Store(vaultKey("Pw1!aaaa", "alice"), domain.Credentials{Username: "alice"}))
	_, err := v.Load(vaultKey("wrong", "alice"))
	assert.Error(t, err)
}

func TestVault_PlaintextNeverOnDisk(t *testing.T) {
	home := t.TempDir()
	v := store.NewVault(home)
	key := vaultKey("Pw1!aaaa", "alice")

	require.NoError(t, v.Store(key, domain.Credentials{Email: "a@x.com", Username: "alice"}))

	entries, err := os.ReadDir(home)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	raw, err := os.ReadFile(filepath.Join(home, entries[0].Name()))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "alice")
	assert.NotContains(t, string(raw), "a@x.com")
}

func TestVault_ExistsAndDelete(t *testing.T) {
	home := t.TempDir()
	v := store.NewVault(home)

	assert.False(t, v.Exists())
	require.NoError(t, v.Delete()) // idempotent on absence

	require.NoError(t, v.Store(vaultKey("Pw1!aaaa", "alice"), domain.Credentials{Username: "alice"}))
	assert.True(t, v.Exists())

	require.NoError(t, v.Delete())
	assert.False(t, v.Exists())
	require.NoError(t, v.Delete())
}
