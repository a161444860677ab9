package exchange_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shary/internal/crypto"
	"shary/internal/domain"
	"shary/internal/nonce"
	"shary/internal/relay"
	"shary/internal/services/exchange"
	"shary/internal/services/identity"
)

// fakeRelay implements the relay wire contract in-process. Payloads are
// captured for inspection.
type fakeRelay struct {
	mu          sync.Mutex
	pubkeys     map[string]string
	payloads    []domain.Envelope
	payloadCode int
	users       map[string]bool
}

func newFakeRelay() *fakeRelay {
	return &fakeRelay{
		pubkeys: make(map[string]string),
		users:   make(map[string]bool),
	}
}

func (f *fakeRelay) registerKey(email, pubkey string) {
	f.mu.Lock()
	f.pubkeys[crypto.HashString(email)] = pubkey
	f.mu.Unlock()
}

func (f *fakeRelay) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ping", func(w http.ResponseWriter, r *http.Request) {})
	mux.HandleFunc("/store_user", func(w http.ResponseWriter, r *http.Request) {
		var rec domain.UserRecord
		if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.users[rec.Owner] {
			w.WriteHeader(http.StatusConflict)
			return
		}
		f.users[rec.Owner] = true
		f.pubkeys[rec.Owner] = rec.PubKey
		json.NewEncoder(w).Encode(map[string]string{"token": "tok-" + rec.Owner[:8]})
	})
	mux.HandleFunc("/get_pubkey", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		pub, ok := f.pubkeys[r.URL.Query().Get("owner")]
		f.mu.Unlock()
		if !ok {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"pubkey": pub})
	})
	mux.HandleFunc("/store_payload", func(w http.ResponseWriter, r *http.Request) {
		var env domain.Envelope
		if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.payloadCode != 0 {
			w.WriteHeader(f.payloadCode)
			return
		}
		f.payloads = append(f.payloads, env)
	})
	mux.HandleFunc("/delete_user", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body["signature"] == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.mu.Lock()
		delete(f.users, body["owner"])
		f.mu.Unlock()
	})
	return mux
}

// testPeer bundles one identity with an exchange service pointed at srv.
type testPeer struct {
	ids  *identity.Service
	exch *exchange.Service
}

func newPeer(t *testing.T, srv *httptest.Server, password, username string) testPeer {
	t.Helper()
	ids := identity.New(1024)
	require.NoError(t, ids.Derive(password, username))

	nonces := nonce.NewStore(time.Minute)
	t.Cleanup(nonces.Close)

	client := relay.New(srv.URL, srv.Client())
	exch := exchange.New(ids, client, nonces, exchange.Config{}, nil)
	return testPeer{ids: ids, exch: exch}
}

func TestRegister(t *testing.T) {
	fr := newFakeRelay()
	srv := httptest.NewServer(fr.handler())
	defer srv.Close()

	alice := newPeer(t, srv, "Str0ng!pass", "alice")

	require.True(t, alice.exch.Register(context.Background(), "alice@x.com"))
	assert.NotEmpty(t, alice.exch.Token())
	assert.Equal(t, exchange.StateOnline, alice.exch.Online())

	// Second registration hits the 409 path and still counts as success.
	token := alice.exch.Token()
	require.True(t, alice.exch.Register(context.Background(), "alice@x.com"))
	assert.Equal(t, token, alice.exch.Token())
}

func TestIsRegistered(t *testing.T) {
	fr := newFakeRelay()
	srv := httptest.NewServer(fr.handler())
	defer srv.Close()

	alice := newPeer(t, srv, "Str0ng!pass", "alice")

	assert.False(t, alice.exch.IsRegistered(context.Background(), "alice@x.com"))
	require.True(t, alice.exch.Register(context.Background(), "alice@x.com"))
	assert.True(t, alice.exch.IsRegistered(context.Background(), "alice@x.com"))
}

func TestOfflineShortCircuit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	alice := newPeer(t, srv, "Str0ng!pass", "alice")

	require.False(t, alice.exch.Ping(context.Background()))
	assert.Equal(t, exchange.StateOffline, alice.exch.Online())

	assert.False(t, alice.exch.Register(context.Background(), "alice@x.com"))
	assert.Nil(t, alice.exch.Upload(context.Background(),
		[]domain.Field{{Key: "k1", Value: "v1"}},
		"alice@x.com", []string{"bob@x.com"}, domain.ModeSend))
}

func TestUploadPartialFailure(t *testing.T) {
	fr := newFakeRelay()
	srv := httptest.NewServer(fr.handler())
	defer srv.Close()

	alice := newPeer(t, srv, "Str0ng!pass", "alice")
	r1 := newPeer(t, srv, "R1pass9$", "r1")
	r3 := newPeer(t, srv, "R3pass9$", "r3")

	p1, err := r1.ids.PublicKeyString()
	require.NoError(t, err)
	p3, err := r3.ids.PublicKeyString()
	require.NoError(t, err)
	fr.registerKey("r1@x.com", p1)
	fr.registerKey("r3@x.com", p3)

	results := alice.exch.Upload(context.Background(),
		[]domain.Field{{Key: "k1", Value: "v1"}},
		"alice@x.com",
		[]string{"r1@x.com", "r2@x.com", "r3@x.com"},
		domain.ModeSend)

	require.Len(t, results, 3)
	assert.Equal(t, domain.StatusStored, results["r1@x.com"])
	assert.Equal(t, domain.StatusMissingRecipientKey, results["r2@x.com"])
	assert.Equal(t, domain.StatusStored, results["r3@x.com"])

	fr.mu.Lock()
	defer fr.mu.Unlock()
	assert.Len(t, fr.payloads, 2)
}

func TestUploadStatusMapping(t *testing.T) {
	fr := newFakeRelay()
	srv := httptest.NewServer(fr.handler())
	defer srv.Close()

	alice := newPeer(t, srv, "Str0ng!pass", "alice")
	bob := newPeer(t, srv, "B0b!pass", "bob")
	pb, err := bob.ids.PublicKeyString()
	require.NoError(t, err)
	fr.registerKey("bob@x.com", pb)

	fields := []domain.Field{{Key: "k1", Value: "v1"}}
	for code, want := range map[int]domain.UploadStatus{
		http.StatusBadRequest:          domain.StatusMissingField,
		http.StatusConflict:            domain.StatusAlreadyExists,
		http.StatusInternalServerError: domain.StatusError,
	} {
		fr.mu.Lock()
		fr.payloadCode = code
		fr.mu.Unlock()

		results := alice.exch.Upload(context.Background(), fields,
			"alice@x.com", []string{"bob@x.com"}, domain.ModeSend)
		require.Len(t, results, 1)
		assert.Equal(t, want, results["bob@x.com"])
	}
}

func TestUploadEmptyInputs(t *testing.T) {
	fr := newFakeRelay()
	srv := httptest.NewServer(fr.handler())
	defer srv.Close()

	alice := newPeer(t, srv, "Str0ng!pass", "alice")

	assert.Nil(t, alice.exch.Upload(context.Background(), nil,
		"alice@x.com", []string{"bob@x.com"}, domain.ModeSend))
	assert.Nil(t, alice.exch.Upload(context.Background(),
		[]domain.Field{{Key: "k1", Value: "v1"}},
		"alice@x.com", nil, domain.ModeSend))
}

func TestOpenRoundTrip(t *testing.T) {
	fr := newFakeRelay()
	srv := httptest.NewServer(fr.handler())
	defer srv.Close()

	alice := newPeer(t, srv, "Str0ng!pass", "alice")
	bob := newPeer(t, srv, "B0b!pass", "bob")
	pb, err := bob.ids.PublicKeyString()
	require.NoError(t, err)
	fr.registerKey("bob@x.com", pb)

	results := alice.exch.Upload(context.Background(),
		[]domain.Field{{Key: "k1", Value: "v1"}, {Key: "k2", Value: "v2"}},
		"alice@x.com", []string{"bob@x.com"}, domain.ModeSend)
	require.Equal(t, domain.StatusStored, results["bob@x.com"])

	fr.mu.Lock()
	env := fr.payloads[0]
	fr.mu.Unlock()

	alicePub, err := alice.ids.PublicKey()
	require.NoError(t, err)

	plaintext, err := bob.exch.Open(env, alicePub)
	require.NoError(t, err)

	var fields map[string]string
	require.NoError(t, json.Unmarshal(plaintext, &fields))
	assert.Equal(t, map[string]string{"k1": "v1", "k2": "v2"}, fields)

	// A second open of the same envelope is a replay.
	_, err = bob.exch.Open(env, alicePub)
	assert.ErrorIs(t, err, domain.ErrReplayDetected)
}

func TestOpenRejectsTampering(t *testing.T) {
	fr := newFakeRelay()
	srv := httptest.NewServer(fr.handler())
	defer srv.Close()

	alice := newPeer(t, srv, "Str0ng!pass", "alice")
	bob := newPeer(t, srv, "B0b!pass", "bob")
	mallory := newPeer(t, srv, "Mal0ry!pw", "mallory")
	pb, err := bob.ids.PublicKeyString()
	require.NoError(t, err)
	fr.registerKey("bob@x.com", pb)

	results := alice.exch.Upload(context.Background(),
		[]domain.Field{{Key: "k1", Value: "v1"}},
		"alice@x.com", []string{"bob@x.com"}, domain.ModeSend)
	require.Equal(t, domain.StatusStored, results["bob@x.com"])

	fr.mu.Lock()
	env := fr.payloads[0]
	fr.mu.Unlock()

	alicePub, err := alice.ids.PublicKey()
	require.NoError(t, err)
	malloryPub, err := mallory.ids.PublicKey()
	require.NoError(t, err)

	// Signature checked under the wrong sender key.
	_, err = bob.exch.Open(env, malloryPub)
	assert.ErrorIs(t, err, domain.ErrVerificationFailed)

	// Altered verification hash.
	bad := env
	bad.Verification = crypto.HashString("something else")
	_, err = bob.exch.Open(bad, alicePub)
	assert.ErrorIs(t, err, domain.ErrVerificationFailed)

	// The envelope is still openable afterwards: failed attempts must not
	// consume the idempotency key.
	_, err = bob.exch.Open(env, alicePub)
	require.NoError(t, err)
}

func TestOpenRejectsExpired(t *testing.T) {
	fr := newFakeRelay()
	srv := httptest.NewServer(fr.handler())
	defer srv.Close()

	ids := identity.New(1024)
	require.NoError(t, ids.Derive("Str0ng!pass", "alice"))
	nonces := nonce.NewStore(time.Minute)
	defer nonces.Close()
	client := relay.New(srv.URL, srv.Client())
	alice := exchange.New(ids, client, nonces, exchange.Config{PayloadTTL: -time.Hour}, nil)

	bob := newPeer(t, srv, "B0b!pass", "bob")
	pb, err := bob.ids.PublicKeyString()
	require.NoError(t, err)
	fr.registerKey("bob@x.com", pb)

	results := alice.Upload(context.Background(),
		[]domain.Field{{Key: "k1", Value: "v1"}},
		"alice@x.com", []string{"bob@x.com"}, domain.ModeSend)
	require.Equal(t, domain.StatusStored, results["bob@x.com"])

	fr.mu.Lock()
	env := fr.payloads[0]
	fr.mu.Unlock()

	alicePub, err := ids.PublicKey()
	require.NoError(t, err)
	_, err = bob.exch.Open(env, alicePub)
	assert.ErrorIs(t, err, domain.ErrEnvelopeExpired)
}

func TestRequestModePayload(t *testing.T) {
	fr := newFakeRelay()
	srv := httptest.NewServer(fr.handler())
	defer srv.Close()

	alice := newPeer(t, srv, "Str0ng!pass", "alice")
	bob := newPeer(t, srv, "B0b!pass", "bob")
	pb, err := bob.ids.PublicKeyString()
	require.NoError(t, err)
	fr.registerKey("bob@x.com", pb)

	results := alice.exch.Upload(context.Background(),
		[]domain.Field{{Key: "k1"}, {Key: "k2"}},
		"alice@x.com", []string{"bob@x.com"}, domain.ModeRequest)
	require.Equal(t, domain.StatusStored, results["bob@x.com"])

	fr.mu.Lock()
	env := fr.payloads[0]
	fr.mu.Unlock()

	alicePub, err := alice.ids.PublicKey()
	require.NoError(t, err)
	plaintext, err := bob.exch.Open(env, alicePub)
	require.NoError(t, err)

	var req struct {
		Keys   []string `json:"keys"`
		Mode   string   `json:"mode"`
		Sender string   `json:"sender"`
	}
	require.NoError(t, json.Unmarshal(plaintext, &req))
	assert.Equal(t, []string{"k1", "k2"}, req.Keys)
	assert.Equal(t, "request", req.Mode)
	assert.Equal(t, "alice@x.com", req.Sender)
}

func TestDeleteUser(t *testing.T) {
	fr := newFakeRelay()
	srv := httptest.NewServer(fr.handler())
	defer srv.Close()

	alice := newPeer(t, srv, "Str0ng!pass", "alice")
	require.True(t, alice.exch.Register(context.Background(), "alice@x.com"))

	require.True(t, alice.exch.DeleteUser(context.Background(), "alice@x.com"))

	// A fresh registration succeeds again after deletion.
	require.True(t, alice.exch.Register(context.Background(), "alice@x.com"))
}
