package exchange

import (
	"context"
	"crypto/rsa"
	"errors"
	"net/http"
	"sync"
	"time"

	"shary/internal/domain"
	"shary/internal/logging"
)

// Config carries the protocol knobs.
type Config struct {
	// PayloadTTL is how long uploaded documents stay valid on the relay.
	PayloadTTL time.Duration
	// ProbeInterval is how long an offline verdict is trusted before the
	// next call may re-probe.
	ProbeInterval time.Duration
}

// Service drives the exchange protocol. The bearer token captured at
// registration and the online flag are single-writer in the normal flow; the
// internal lock covers concurrent readers.
type Service struct {
	ids    domain.IdentityService
	relay  domain.RelayClient
	nonces domain.NonceStore
	log    logging.Logger

	ttl        time.Duration
	probeEvery time.Duration

	mu        sync.Mutex
	state     State
	lastProbe time.Time
	token     string
}

func New(ids domain.IdentityService, relay domain.RelayClient, nonces domain.NonceStore, cfg Config, log logging.Logger) *Service {
	if cfg.PayloadTTL == 0 {
		cfg.PayloadTTL = 24 * time.Hour
	}
	if cfg.ProbeInterval == 0 {
		cfg.ProbeInterval = 3 * time.Second
	}
	if log == nil {
		log = logging.Discard()
	}
	return &Service{
		ids:        ids,
		relay:      relay,
		nonces:     nonces,
		log:        log,
		ttl:        cfg.PayloadTTL,
		probeEvery: cfg.ProbeInterval,
	}
}

// Token returns the bearer token captured at registration, if any.
func (s *Service) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// Register publishes the owner's public key to the relay. A 409 means the
// owner is already registered and counts as success with no new token. Any
// other failure downgrades the online state.
func (s *Service) Register(ctx context.Context, owner string) bool {
	if !s.ensureOnline(ctx) {
		return false
	}

	rec, err := s.buildUserRecord(owner)
	if err != nil {
		s.log.Error(ctx, "build registration payload", "err", err)
		return false
	}

	token, err := s.relay.StoreUser(ctx, rec)
	switch {
	case err == nil:
		s.mu.Lock()
		s.token = token
		s.mu.Unlock()
		s.relay.SetToken(token)
		s.markOnline()
		s.log.Info(ctx, "registered with relay", "owner", rec.Owner)
		return true
	case errors.Is(err, domain.ErrAlreadyExists):
		s.log.Info(ctx, "already registered with relay", "owner", rec.Owner)
		return true
	default:
		s.markOffline(ctx, err)
		return false
	}
}

// LookupPublicKey fetches and deserializes a peer's public key. All failure
// causes collapse into the nil sentinel: an unknown peer looks the same
// whether the relay is down, the key is missing, or the blob is malformed.
func (s *Service) LookupPublicKey(ctx context.Context, ownerHash string) *rsa.PublicKey {
	raw, err := s.relay.FetchPublicKey(ctx, ownerHash)
	if err != nil {
		if errors.Is(err, domain.ErrNetworkUnavailable) {
			s.markOffline(ctx, err)
		}
		s.log.Debug(ctx, "public key lookup failed", "owner", ownerHash, "err", err)
		return nil
	}
	pub, err := parsePublicKey(raw)
	if err != nil {
		s.log.Debug(ctx, "malformed public key from relay", "owner", ownerHash, "err", err)
		return nil
	}
	return pub
}

// IsRegistered reports whether the identity has a public key on the relay,
// refreshing the online flag as a side effect of a successful lookup.
func (s *Service) IsRegistered(ctx context.Context, owner string) bool {
	if s.LookupPublicKey(ctx, hashIdentity(owner)) == nil {
		return false
	}
	s.markOnline()
	return true
}

// Upload serializes fields per mode and sends one envelope per recipient.
// Recipients are processed independently: a missing key or a failed POST is
// recorded in the result map and never aborts the batch. The returned map
// has one entry per recipient; it is nil when the relay is offline.
func (s *Service) Upload(
	ctx context.Context,
	fields []domain.Field,
	owner string,
	recipients []string,
	mode domain.UploadMode,
) map[string]domain.UploadStatus {
	if len(fields) == 0 || len(recipients) == 0 {
		s.log.Warn(ctx, "nothing to upload", "fields", len(fields), "recipients", len(recipients))
		return nil
	}
	if !s.ensureOnline(ctx) {
		return nil
	}

	plaintext, err := serializeFields(fields, owner, mode)
	if err != nil {
		s.log.Error(ctx, "serialize fields", "err", err)
		return nil
	}
	ownerHash := hashIdentity(owner)

	results := make(map[string]domain.UploadStatus, len(recipients))
	for _, recipient := range recipients {
		results[recipient] = s.uploadOne(ctx, ownerHash, recipient, plaintext)
	}
	return results
}

func (s *Service) uploadOne(ctx context.Context, ownerHash, recipient, plaintext string) domain.UploadStatus {
	recipientHash := hashIdentity(recipient)

	pub := s.LookupPublicKey(ctx, recipientHash)
	if pub == nil {
		return domain.StatusMissingRecipientKey
	}

	env, err := s.buildEnvelope(ownerHash, recipientHash, plaintext, pub)
	if err != nil {
		s.log.Error(ctx, "build envelope", "recipient", recipient, "err", err)
		return domain.StatusError
	}

	code, err := s.relay.StorePayload(ctx, env)
	if err != nil {
		s.markOffline(ctx, err)
		return domain.StatusError
	}
	return statusFromCode(code)
}

// DeleteUser removes the owner's registration from the relay, proving key
// ownership with a signature over the owner hash.
func (s *Service) DeleteUser(ctx context.Context, owner string) bool {
	if !s.ensureOnline(ctx) {
		return false
	}
	ownerHash := hashIdentity(owner)
	signature, _, err := s.credentials(ownerHash)
	if err != nil {
		s.log.Error(ctx, "sign delete request", "err", err)
		return false
	}
	if err := s.relay.DeleteUser(ctx, ownerHash, signature); err != nil {
		if errors.Is(err, domain.ErrNetworkUnavailable) {
			s.markOffline(ctx, err)
		}
		s.log.Error(ctx, "delete user", "err", err)
		return false
	}
	return true
}

func statusFromCode(code int) domain.UploadStatus {
	switch code {
	case http.StatusOK:
		return domain.StatusStored
	case http.StatusBadRequest:
		return domain.StatusMissingField
	case http.StatusConflict:
		return domain.StatusAlreadyExists
	default:
		return domain.StatusError
	}
}
