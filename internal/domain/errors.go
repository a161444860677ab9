package domain

import "errors"

var (
	// crypto-layer errors
	ErrKeyNotLoaded      = errors.New("key not loaded")
	ErrInvalidKeySize    = errors.New("invalid key size")
	ErrPlaintextTooLarge = errors.New("plaintext too large for key")
	ErrDecryptionFailure = errors.New("decryption failure")

	// store-layer errors
	ErrAlreadyExists       = errors.New("already exists")
	ErrMalformedStoredFile = errors.New("malformed stored file")

	// exchange-layer errors
	ErrReplayDetected     = errors.New("replay detected")
	ErrNetworkUnavailable = errors.New("network unavailable")
	ErrEnvelopeExpired    = errors.New("envelope expired")
	ErrVerificationFailed = errors.New("envelope verification failed")
)
