package crypto

import (
	"crypto/rand"
	"encoding/hex"
)

// NonceBytes is the raw length of generated nonces; the string form is twice
// that in hex characters.
const NonceBytes = 16

// GenerateNonce returns a cryptographically secure random hex token.
func GenerateNonce() (string, error) {
	b := make([]byte, NonceBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
