package exchange

import (
	"context"
	"time"
)

// State is the reachability of the relay as last observed.
type State int

const (
	StateUnknown State = iota
	StateProbing
	StateOnline
	StateOffline
)

func (s State) String() string {
	switch s {
	case StateProbing:
		return "probing"
	case StateOnline:
		return "online"
	case StateOffline:
		return "offline"
	default:
		return "unknown"
	}
}

// Ping probes relay liveness and records the transition. It is the only
// operation that contacts the relay while offline.
func (s *Service) Ping(ctx context.Context) bool {
	s.mu.Lock()
	s.state = StateProbing
	s.mu.Unlock()

	err := s.relay.Ping(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastProbe = time.Now()
	if err != nil {
		s.state = StateOffline
		s.log.Info(ctx, "relay unreachable", "err", err)
		return false
	}
	s.state = StateOnline
	return true
}

// Online returns the current state without probing.
func (s *Service) Online() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ensureOnline gates network operations. Offline short-circuits until the
// last probe has gone stale; the state is never polled proactively.
func (s *Service) ensureOnline(ctx context.Context) bool {
	s.mu.Lock()
	state, last := s.state, s.lastProbe
	s.mu.Unlock()

	switch state {
	case StateOnline:
		return true
	case StateOffline:
		if time.Since(last) < s.probeEvery {
			return false
		}
	}
	return s.Ping(ctx)
}

// markOffline records a network-level failure observed mid-operation.
func (s *Service) markOffline(ctx context.Context, err error) {
	s.mu.Lock()
	s.state = StateOffline
	s.lastProbe = time.Now()
	s.mu.Unlock()
	s.log.Warn(ctx, "relay marked offline", "err", err)
}

func (s *Service) markOnline() {
	s.mu.Lock()
	s.state = StateOnline
	s.lastProbe = time.Now()
	s.mu.Unlock()
}
