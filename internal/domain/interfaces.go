package domain

import (
	"context"
	"crypto/rsa"
)

// IdentityService derives the deterministic keypair and performs every
// asymmetric operation with it. Sign, Decrypt and PublicKey fail with
// ErrKeyNotLoaded until Derive has succeeded.
type IdentityService interface {
	Derive(password, identity string) error
	Loaded() bool
	Forget()

	Sign(message []byte) ([]byte, error)
	Verify(message, signature []byte, pub *rsa.PublicKey) bool
	Encrypt(plaintext []byte, pub *rsa.PublicKey) ([]byte, error)
	Decrypt(ciphertext []byte) ([]byte, error)

	PublicKey() (*rsa.PublicKey, error)
	PublicKeyString() (string, error)
}

// VaultStore persists the encrypted credential record on disk.
type VaultStore interface {
	Store(key []byte, creds Credentials) error
	Load(key []byte) (Credentials, error)
	Delete() error
	Exists() bool
}

// SignatureStore persists the identity signature record.
type SignatureStore interface {
	Save(rec SignatureRecord) error
	Load() (SignatureRecord, bool, error)
	Exists() bool
	Delete() error
}

// NonceStore is the replay-protection ledger. Add is an atomic
// check-and-insert: false means the nonce was already seen and is still live.
type NonceStore interface {
	Add(nonce string) bool
	Generate() (string, error)
}

// RelayClient is how we talk to the relay server. Transport-level failures
// wrap ErrNetworkUnavailable; HTTP error codes are surfaced as values, not
// errors, where the protocol maps them to statuses.
type RelayClient interface {
	Ping(ctx context.Context) error
	StoreUser(ctx context.Context, rec UserRecord) (token string, err error)
	FetchPublicKey(ctx context.Context, ownerHash string) (string, error)
	StorePayload(ctx context.Context, env Envelope) (code int, err error)
	DeleteUser(ctx context.Context, ownerHash, signature string) error
	SetToken(token string)
}
