package identity

import (
	"crypto/rsa"
	"sync"

	"shary/internal/crypto"
	"shary/internal/domain"
)

// Service holds the derived keypair for the current session. Every signing
// and decryption operation is gated: until Derive succeeds they fail with
// ErrKeyNotLoaded.
type Service struct {
	bits int

	mu   sync.Mutex
	priv *rsa.PrivateKey
}

// New returns a service deriving keys of the given modulus size. Sizes below
// the minimum are rejected at Derive time.
func New(bits int) *Service {
	if bits == 0 {
		bits = crypto.DefaultKeySize
	}
	return &Service{bits: bits}
}

var _ domain.IdentityService = (*Service)(nil)

// Derive (re)derives the keypair from password and identity. Identical
// inputs always load a bit-identical keypair.
func (s *Service) Derive(password, identity string) error {
	priv, err := crypto.DeriveKeyPair(password, identity, s.bits)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.priv = priv
	s.mu.Unlock()
	return nil
}

// Loaded reports whether a keypair is available.
func (s *Service) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.priv != nil
}

// Forget drops the keypair, returning the service to its gated state.
func (s *Service) Forget() {
	s.mu.Lock()
	s.priv = nil
	s.mu.Unlock()
}

// Sign produces a PSS-SHA256 signature over message with the loaded key.
func (s *Service) Sign(message []byte) ([]byte, error) {
	priv, err := s.key()
	if err != nil {
		return nil, err
	}
	return crypto.Sign(priv, message)
}

// Verify checks a signature under pub, or under the loaded public key when
// pub is nil.
func (s *Service) Verify(message, signature []byte, pub *rsa.PublicKey) bool {
	if pub == nil {
		priv, err := s.key()
		if err != nil {
			return false
		}
		pub = &priv.PublicKey
	}
	return crypto.Verify(pub, message, signature)
}

// Encrypt seals plaintext with OAEP-SHA256 under pub, or under the loaded
// public key when pub is nil.
func (s *Service) Encrypt(plaintext []byte, pub *rsa.PublicKey) ([]byte, error) {
	if pub == nil {
		priv, err := s.key()
		if err != nil {
			return nil, err
		}
		pub = &priv.PublicKey
	}
	return crypto.EncryptOAEP(pub, plaintext)
}

// Decrypt opens an OAEP-SHA256 ciphertext with the loaded private key.
func (s *Service) Decrypt(ciphertext []byte) ([]byte, error) {
	priv, err := s.key()
	if err != nil {
		return nil, err
	}
	return crypto.DecryptOAEP(priv, ciphertext)
}

// PublicKey returns the loaded public key.
func (s *Service) PublicKey() (*rsa.PublicKey, error) {
	priv, err := s.key()
	if err != nil {
		return nil, err
	}
	return &priv.PublicKey, nil
}

// PublicKeyString returns the loaded public key serialized for the relay.
func (s *Service) PublicKeyString() (string, error) {
	pub, err := s.PublicKey()
	if err != nil {
		return "", err
	}
	return crypto.MarshalPublicKey(pub)
}

func (s *Service) key() (*rsa.PrivateKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.priv == nil {
		return nil, domain.ErrKeyNotLoaded
	}
	return s.priv, nil
}
