// Package app builds the dependency graph for the CLI: one instance of each
// service constructed at startup and passed by reference to every
// collaborator. There are no package-level singletons.
package app

import (
	"net/http"

	"shary/internal/domain"
	"shary/internal/logging"
	"shary/internal/nonce"
	"shary/internal/relay"
	"shary/internal/services/exchange"
	"shary/internal/services/identity"
	"shary/internal/services/session"
	"shary/internal/store"
)

// Wire bundles all stores, services, and clients for the CLI.
type Wire struct {
	Identity *identity.Service
	Session  *session.Service
	Exchange *exchange.Service
	Relay    domain.RelayClient
	Nonces   *nonce.Store
	Log      logging.Logger
}

// NewWire constructs the dependency graph from cfg.
func NewWire(cfg Config, log logging.Logger) *Wire {
	if log == nil {
		log = logging.Discard()
	}
	httpClient := cfg.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	vault := store.NewVault(cfg.Home)
	sigs := store.NewSignatureFileStore(cfg.Home)
	nonces := nonce.NewStore(cfg.NonceWindow)

	ids := identity.New(cfg.KeySize)
	rc := relay.New(cfg.RelayURL, httpClient)

	sess := session.New(ids, vault, sigs, log)
	exch := exchange.New(ids, rc, nonces, exchange.Config{
		PayloadTTL:    cfg.PayloadTTL,
		ProbeInterval: cfg.ProbeInterval,
	}, log)

	return &Wire{
		Identity: ids,
		Session:  sess,
		Exchange: exch,
		Relay:    rc,
		Nonces:   nonces,
		Log:      log,
	}
}

// Close releases background resources.
func (w *Wire) Close() {
	w.Nonces.Close()
}
