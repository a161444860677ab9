package exchange

import (
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"shary/internal/crypto"
	"shary/internal/domain"
)

// hashIdentity canonicalizes an identity string (the owner's email) into the
// hex digest used on the wire.
func hashIdentity(identity string) string {
	return crypto.HashString(identity)
}

func parsePublicKey(raw string) (*rsa.PublicKey, error) {
	return crypto.ParsePublicKey(raw)
}

// requestPayload is the request-mode wire form: the keys being asked for,
// plus who is asking.
type requestPayload struct {
	Keys   []string `json:"keys"`
	Mode   string   `json:"mode"`
	Sender string   `json:"sender"`
}

// serializeFields renders the field batch for a mode: send carries the
// key→value map, request carries the key list with the requester identity.
func serializeFields(fields []domain.Field, owner string, mode domain.UploadMode) (string, error) {
	switch mode {
	case domain.ModeSend:
		m := make(map[string]string, len(fields))
		for _, f := range fields {
			m[f.Key] = f.Value
		}
		b, err := json.Marshal(m)
		return string(b), err
	case domain.ModeRequest:
		p := requestPayload{Mode: string(domain.ModeRequest), Sender: owner}
		for _, f := range fields {
			p.Keys = append(p.Keys, f.Key)
		}
		b, err := json.Marshal(p)
		return string(b), err
	default:
		return "", fmt.Errorf("unknown upload mode %q", mode)
	}
}

// buildUserRecord assembles the registration payload: the owner hash, the
// serialized public key, a validity window, and the verification hash plus
// signature binding them together.
func (s *Service) buildUserRecord(owner string) (domain.UserRecord, error) {
	pubkey, err := s.ids.PublicKeyString()
	if err != nil {
		return domain.UserRecord{}, err
	}
	ownerHash := hashIdentity(owner)
	createdAt, expiresAt := s.validityWindow()

	signature, verification, err := s.credentials(ownerHash, pubkey)
	if err != nil {
		return domain.UserRecord{}, err
	}
	return domain.UserRecord{
		Owner:        ownerHash,
		CreatedAt:    createdAt,
		ExpiresAt:    expiresAt,
		PubKey:       pubkey,
		Verification: verification,
		Signature:    signature,
	}, nil
}

// buildEnvelope seals plaintext for one recipient. The verification hash is
// a digest over the dot-joined owner, consumer and plaintext hash;
// the signature covers the same bytes. A fresh nonce from the replay ledger
// guards the envelope before it leaves the process.
func (s *Service) buildEnvelope(ownerHash, consumerHash, plaintext string, pub *rsa.PublicKey) (domain.Envelope, error) {
	n, err := s.nonces.Generate()
	if err != nil {
		return domain.Envelope{}, err
	}
	if !s.nonces.Add(n) {
		return domain.Envelope{}, domain.ErrReplayDetected
	}

	ciphertext, err := s.ids.Encrypt([]byte(plaintext), pub)
	if err != nil {
		return domain.Envelope{}, err
	}

	dataHash := crypto.HashString(plaintext)
	signature, verification, err := s.credentials(ownerHash, consumerHash, dataHash)
	if err != nil {
		return domain.Envelope{}, err
	}

	createdAt, expiresAt := s.validityWindow()
	return domain.Envelope{
		Owner:        ownerHash,
		Consumer:     consumerHash,
		CreatedAt:    createdAt,
		ExpiresAt:    expiresAt,
		Data:         crypto.B64(ciphertext),
		Verification: verification,
		Signature:    signature,
	}, nil
}

// Open verifies and decrypts an inbound envelope addressed to us. It checks,
// in order: the validity window, the verification hash, the owner's
// signature, and finally the replay ledger. The verification hash doubles
// as the idempotency key, so a once-opened envelope is rejected on replay.
func (s *Service) Open(env domain.Envelope, ownerPub *rsa.PublicKey) ([]byte, error) {
	if expired(env.ExpiresAt) {
		return nil, domain.ErrEnvelopeExpired
	}

	ciphertext, err := crypto.B64Decode(env.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: bad data encoding", domain.ErrVerificationFailed)
	}
	plaintext, err := s.ids.Decrypt(ciphertext)
	if err != nil {
		return nil, err
	}

	dataHash := crypto.HashString(string(plaintext))
	digest, hexDigest := canonicalDigest(env.Owner, env.Consumer, dataHash)
	if hexDigest != env.Verification {
		return nil, fmt.Errorf("%w: verification hash mismatch", domain.ErrVerificationFailed)
	}

	signature, err := crypto.B64Decode(env.Signature)
	if err != nil {
		return nil, fmt.Errorf("%w: bad signature encoding", domain.ErrVerificationFailed)
	}
	if !s.ids.Verify(digest, signature, ownerPub) {
		return nil, fmt.Errorf("%w: signature rejected", domain.ErrVerificationFailed)
	}
	if !s.nonces.Add(env.Verification) {
		return nil, domain.ErrReplayDetected
	}
	return plaintext, nil
}

// credentials signs the canonical concatenation of fields and returns the
// base64 signature together with the hex verification hash.
func (s *Service) credentials(fields ...string) (signature, verification string, err error) {
	digest, hexDigest := canonicalDigest(fields...)
	sig, err := s.ids.Sign(digest)
	if err != nil {
		return "", "", err
	}
	return crypto.B64(sig), hexDigest, nil
}

// canonicalDigest hashes the ordered dot-joined fields.
func canonicalDigest(fields ...string) ([]byte, string) {
	return crypto.HashExtended([]byte(strings.Join(fields, ".")))
}

func (s *Service) validityWindow() (createdAt, expiresAt string) {
	now := time.Now().UTC()
	return strconv.FormatInt(now.Unix(), 10),
		strconv.FormatInt(now.Add(s.ttl).Unix(), 10)
}

func expired(expiresAt string) bool {
	ts, err := strconv.ParseInt(expiresAt, 10, 64)
	if err != nil {
		return true
	}
	return time.Now().UTC().Unix() > ts
}
