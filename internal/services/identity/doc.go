// Package identity manages the deterministic keypair derived from a password
// and identity string, and performs all signing and asymmetric encryption
// with it. The private key is never persisted; it is re-derived on demand.
package identity
