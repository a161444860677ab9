package session

import (
	"bytes"
	"context"
	"encoding/hex"

	"shary/internal/crypto"
	"shary/internal/domain"
	"shary/internal/logging"
	"shary/internal/util/memzero"
)

// Service holds the in-memory session state and drives the credential vault
// and the signature record. State is single-writer in the normal flow.
type Service struct {
	ids   domain.IdentityService
	vault domain.VaultStore
	sigs  domain.SignatureStore
	log   logging.Logger

	email          string
	username       string
	safePassword   string // hex of the stretched password
	cachedPassword string // raw, memory only, until StoreCached
}

func New(ids domain.IdentityService, vault domain.VaultStore, sigs domain.SignatureStore, log logging.Logger) *Service {
	if log == nil {
		log = logging.Discard()
	}
	return &Service{ids: ids, vault: vault, sigs: sigs, log: log}
}

// Cache holds raw credentials transiently in process memory. Nothing is
// written to disk in this form.
func (s *Service) Cache(email, username, password string) {
	s.email = email
	s.username = username
	s.cachedPassword = password
	s.log.Debug(context.Background(), "credentials cached", "username", username)
}

// StoreCached persists the credentials previously supplied to Cache.
func (s *Service) StoreCached() error {
	return s.StoreCredentials(s.email, s.username, s.cachedPassword)
}

// StoreCredentials derives the vault keys from the password and writes the
// encrypted credential record. An existing vault is left untouched and the
// call reports ErrAlreadyExists, which callers may treat as a no-op.
func (s *Service) StoreCredentials(email, username, password string) error {
	salt := crypto.UserSalt(username)
	safe := crypto.StretchPassword([]byte(password), salt)
	key := crypto.StretchPassword(safe, salt)
	defer memzero.Zero(safe)
	defer memzero.Zero(key)

	creds := domain.Credentials{
		Email:        email,
		Username:     username,
		SafePassword: hex.EncodeToString(safe),
	}
	return s.vault.Store(key, creds)
}

// TryLogin re-derives the candidate safe password, decrypts the vault with
// the key it implies, and succeeds only when the stored username and
// safe-password hash match the candidates byte-for-byte. Every failure mode
// is a plain false.
func (s *Service) TryLogin(username, password string) bool {
	salt := crypto.UserSalt(username)
	candidate := crypto.StretchPassword([]byte(password), salt)
	defer memzero.Zero(candidate)

	s.load(salt, candidate)

	return s.username == username &&
		s.safePassword != "" &&
		s.safePassword == hex.EncodeToString(candidate)
}

// load populates the session from the vault. Any failure is logged and
// swallowed; the session simply stays unauthenticated.
func (s *Service) load(salt, safePassword []byte) {
	key := crypto.StretchPassword(safePassword, salt)
	defer memzero.Zero(key)

	creds, err := s.vault.Load(key)
	if err != nil {
		s.log.Debug(context.Background(), "vault load failed", "err", err)
		return
	}
	s.email = creds.Email
	s.username = creds.Username
	s.safePassword = creds.SafePassword
}

// SaveSignature derives the keypair from (password, username), signs
// "<username>.<email>" and persists the record. Created once at registration.
func (s *Service) SaveSignature(username, email, password string) error {
	if err := s.ids.Derive(password, username); err != nil {
		return err
	}
	message := []byte(username + "." + email)
	signature, err := s.ids.Sign(message)
	if err != nil {
		return err
	}
	return s.sigs.Save(domain.SignatureRecord{
		Message:   crypto.B64(message),
		Signature: crypto.B64(signature),
	})
}

// VerifySignature re-derives the keypair from the candidate password and
// checks both that the stored signature verifies under it and that the
// stored message equals the freshly constructed one. A valid signature over
// a mismatched message fails.
func (s *Service) VerifySignature(username, email, password string) bool {
	if err := s.ids.Derive(password, username); err != nil {
		return false
	}
	rec, ok, err := s.sigs.Load()
	if err != nil || !ok {
		return false
	}
	message, err := crypto.B64Decode(rec.Message)
	if err != nil {
		return false
	}
	signature, err := crypto.B64Decode(rec.Signature)
	if err != nil {
		return false
	}
	if !s.ids.Verify(message, signature, nil) {
		return false
	}
	return bytes.Equal(message, []byte(username+"."+email))
}

// DeleteCredentials removes the vault and signature files and clears the
// in-memory state. Idempotent.
func (s *Service) DeleteCredentials() error {
	s.email = ""
	s.username = ""
	s.safePassword = ""
	s.cachedPassword = ""
	s.ids.Forget()
	if err := s.vault.Delete(); err != nil {
		return err
	}
	return s.sigs.Delete()
}

// HasCredentials reports vault-file presence.
func (s *Service) HasCredentials() bool { return s.vault.Exists() }

// HasSignature reports signature-record presence.
func (s *Service) HasSignature() bool { return s.sigs.Exists() }

// Authenticated reports whether a login has populated the session.
func (s *Service) Authenticated() bool {
	return s.email != "" && s.safePassword != ""
}

func (s *Service) Email() string    { return s.email }
func (s *Service) Username() string { return s.username }
