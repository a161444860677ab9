package crypto

import (
	stdcrypto "crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"fmt"

	"shary/internal/domain"
)

// Sign produces a PSS-SHA256 signature over message. The message is hashed
// first; signatures are over the digest, never the raw message.
func Sign(priv *rsa.PrivateKey, message []byte) ([]byte, error) {
	digest := sha256.Sum256(message)
	return rsa.SignPSS(rand.Reader, priv, stdcrypto.SHA256, digest[:], nil)
}

// Verify reports whether signature is a valid PSS-SHA256 signature over
// message under pub.
func Verify(pub *rsa.PublicKey, message, signature []byte) bool {
	digest := sha256.Sum256(message)
	return rsa.VerifyPSS(pub, stdcrypto.SHA256, digest[:], signature, nil) == nil
}

// EncryptOAEP encrypts plaintext under pub with OAEP-SHA256. The plaintext is
// bounded by the modulus size minus the padding overhead.
func EncryptOAEP(pub *rsa.PublicKey, plaintext []byte) ([]byte, error) {
	if len(plaintext) > maxOAEPPlaintext(pub) {
		return nil, fmt.Errorf("%w: %d bytes, key fits %d",
			domain.ErrPlaintextTooLarge, len(plaintext), maxOAEPPlaintext(pub))
	}
	return rsa.EncryptOAEP(sha256.New(), rand.Reader, pub, plaintext, nil)
}

// DecryptOAEP decrypts an OAEP-SHA256 ciphertext. A mismatched key or
// corrupted ciphertext comes back as ErrDecryptionFailure, never a panic.
func DecryptOAEP(priv *rsa.PrivateKey, ciphertext []byte) ([]byte, error) {
	pt, err := rsa.DecryptOAEP(sha256.New(), nil, priv, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDecryptionFailure, err)
	}
	return pt, nil
}

// MarshalPublicKey serializes pub as base64(DER, PKIX).
func MarshalPublicKey(pub *rsa.PublicKey) (string, error) {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return "", err
	}
	return B64(der), nil
}

// ParsePublicKey reverses MarshalPublicKey. Round-trips exactly.
func ParsePublicKey(s string) (*rsa.PublicKey, error) {
	der, err := B64Decode(s)
	if err != nil {
		return nil, err
	}
	key, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return nil, err
	}
	pub, ok := key.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("not an RSA public key: %T", key)
	}
	return pub, nil
}

func maxOAEPPlaintext(pub *rsa.PublicKey) int {
	return pub.Size() - 2*sha256.Size - 2
}
