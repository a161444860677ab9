package crypto

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hash returns the hex SHA-256 digest of message.
func Hash(message []byte) string {
	sum := sha256.Sum256(message)
	return hex.EncodeToString(sum[:])
}

// HashString is Hash over the UTF-8 bytes of message.
func HashString(message string) string {
	return Hash([]byte(message))
}

// HashExtended returns both the raw and the hex SHA-256 digest of message.
func HashExtended(message []byte) ([]byte, string) {
	sum := sha256.Sum256(message)
	return sum[:], hex.EncodeToString(sum[:])
}
