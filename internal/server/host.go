// Package server exposes one engine instance over HTTP.
package server

import (
	"context"
	"sync"

	"enginehost/internal/engine"
	"enginehost/internal/exchange"
	"enginehost/internal/protocol"
)

// Host binds a single engine instance behind an exclusive lock. The lock is
// held for an entire exchange run, so no two engine calls for this instance
// ever interleave and requests are fully processed in lock-acquisition
// order. Engines are explicitly permitted to be non-reentrant.
type Host[S, I any] struct {
	mu   sync.Mutex
	eng  engine.Engine[S, I]
	seed exchange.SeedSource
}

func NewHost[S, I any](eng engine.Engine[S, I]) *Host[S, I] {
	return &Host[S, I]{eng: eng, seed: exchange.CryptoSeed}
}

// SetSeedSource overrides where server-generated seeds come from. For tests.
func (h *Host[S, I]) SetSeedSource(s exchange.SeedSource) {
	h.seed = s
}

// Exchange runs one request to completion under the lock. The run is never
// interrupted mid-flight: a caller that has gone away still gets its
// engine state fully observed before the lock releases, which is why the
// engine calls run under context.Background rather than the request context.
func (h *Host[S, I]) Exchange(req *protocol.MoveRequest[S]) (*protocol.MoveResponse[S, I], error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return exchange.Run(context.Background(), h.eng, req, h.seed)
}

// Info returns the engine's static metadata. Read-only; it does not touch
// the lock-protected exchange path.
func (h *Host[S, I]) Info() engine.Info[S] {
	return h.eng.Info()
}
