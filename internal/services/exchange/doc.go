// Package exchange implements the secure exchange protocol against the
// relay: registration of the owner's public key, peer public-key lookup, and
// per-recipient encrypted field uploads.
//
// Every payload is a distinct envelope sealed under one recipient's public
// key; there is no shared secret across recipients. Network reachability is
// tracked by an explicit online state machine, and each envelope is guarded
// by a fresh nonce from the replay ledger.
package exchange
