// Package session orchestrates the credential vault and the identity
// signature record: caching credentials from the UI, storing them encrypted,
// verifying logins, and authenticating the local account.
//
// Wrong passwords, missing files and corrupted content are all absorbed into
// a boolean "not authenticated" outcome. Login failure never reveals which
// artifact rejected the attempt.
package session
