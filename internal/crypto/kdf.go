package crypto

import (
	"crypto/sha256"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// KeyBytes is the length of every derived symmetric key and seed.
	KeyBytes = 32
	// KDFIterations is the PBKDF2 iteration count for all password stretching.
	KDFIterations = 100_000

	saltPrefix = "shary_creds."
)

// StretchPassword runs PBKDF2-HMAC-SHA256 over password with salt. The same
// function covers the keypair seed, the vault safe-password and the vault
// encryption key; they differ only in their inputs.
func StretchPassword(password, salt []byte) []byte {
	return pbkdf2.Key(password, salt, KDFIterations, KeyBytes, sha256.New)
}

// UserSalt derives the per-user vault salt from the username.
func UserSalt(username string) []byte {
	return []byte(saltPrefix + username)
}
