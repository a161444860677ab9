// Package crypto provides the low-level primitives for the identity core:
// canonical SHA-256 hashing, PBKDF2 password stretching, deterministic RSA
// keypair derivation, PSS signatures, OAEP encryption, the AES-CBC vault
// cipher, and secure nonce generation.
//
// One scheme per operation type, everywhere: PSS-SHA256 for signing,
// OAEP-SHA256 for asymmetric encryption, AES-256-CBC for the local vault.
package crypto
