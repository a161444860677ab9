// Package store provides file-based persistence for the identity core.
//
// It contains the concrete implementations of the domain storage interfaces:
// the credential vault (an AES-CBC encrypted blob, IV-prefixed) and the
// identity signature record (plain JSON). All methods are concurrency-safe
// via internal locking. Files live under the configured home directory.
package store
