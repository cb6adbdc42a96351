// Package engine defines the contract a pluggable chess algorithm must
// satisfy to be driven by the exchange protocol.
package engine

import (
	"context"

	"github.com/notnil/chess"
)

// Info is an engine's static metadata. InitialState is the canonical
// default state; it must correspond to a game that has not started, with
// the standard initial position and white to move. Callers pass it on the
// first request of a game.
type Info[S any] struct {
	ID           string `json:"id"`
	Description  string `json:"description"`
	InitialState S      `json:"initial_state"`
}

// Engine is a move-generation strategy. S is the engine-defined state type
// and I its status-info type; both must be JSON-serializable. Failures use
// plain error values.
//
// Engines must be stateless in the protocol sense: everything needed to act
// lives in S, which is owned by the caller between calls and round-tripped
// on every request. Given the same state, position, and seed, an engine must
// produce the same result whether it is freshly constructed or long-running,
// and across process restarts.
//
// Every call receives a 64-bit seed; all randomness in the computation must
// derive from it. An engine that needs more entropy seeds a pseudo-random
// generator from it rather than reading any ambient entropy source.
//
// By convention, engine errors are retried by the caller a small bounded
// number of times; repeated failure counts as a forfeit by the engine. That
// policy binds the caller, not the implementation.
type Engine[S, I any] interface {
	// Info returns the engine's static metadata.
	Info() Info[S]

	// ProposeMove computes a move for the side to move in pos, along with
	// advisory status info describing the engine's reasoning. The status
	// info must not influence later protocol behavior. If state disagrees
	// with pos about game progress, the engine must return an error rather
	// than guess. The proposed move is not necessarily played; the engine
	// learns what was actually played through ObserveMove.
	ProposeMove(ctx context.Context, seed uint64, state S, pos *chess.Position) (*chess.Move, I, error)

	// ProposeMoveNoInfo is ProposeMove without the status-info computation.
	// Implementations with nothing to save forward to ProposeMove and
	// discard the info component.
	ProposeMoveNoInfo(ctx context.Context, seed uint64, state S, pos *chess.Position) (*chess.Move, error)

	// ObserveMove informs the engine that move has been played, producing
	// after; the engine updates state in place. It is called for the
	// opponent's moves and for the engine's own moves alike, and the engine
	// cannot tell from the call which side moved.
	ObserveMove(ctx context.Context, seed uint64, state *S, move *chess.Move, after *chess.Position) error
}
