// Package protocol defines the request, response, and error payloads of the
// engine exchange protocol. Positions travel as FEN strings and moves as UCI
// tokens. Each type exists in a generic form, parameterized by the engine's
// state and status-info types, and in a type-erased form for contexts that
// handle heterogeneous engines without compile-time knowledge of those types.
//
// Wire field names are fixed; they are part of the protocol.
package protocol

// MoveRequest asks the engine to take a move. S is the engine's state type.
//
// The seed fields override the randomness handed to the engine at each of
// the three decision points; any left unset is generated server-side.
// Setting all three lets a caller replaying a game force bit-exact behavior.
type MoveRequest[S any] struct {
	// Move is the move the caller took, as a UCI token. The null-move token
	// means the engine is making the first move of the game.
	Move string `json:"move"`

	// GameBefore is the position before Move was played, as FEN.
	GameBefore string `json:"game_before"`

	// EngineState is the engine's state after its last move.
	EngineState S `json:"engine_state"`

	// ObserveOpponentSeed seeds the engine's observation of Move.
	ObserveOpponentSeed *uint64 `json:"observe_mine_rand,omitempty"`

	// ProposeSeed seeds the production of the engine's reply.
	ProposeSeed *uint64 `json:"produce_rand,omitempty"`

	// ObserveOwnSeed seeds the engine's observation of its own reply.
	ObserveOwnSeed *uint64 `json:"observe_your_rand,omitempty"`

	// WithStatusInfo asks for the engine's reasoning in the response.
	// Omitted by default to save computation.
	WithStatusInfo bool `json:"with_status_info"`
}

// MoveResponse carries the engine's reply. The caller must retain GameAfter
// and EngineState to construct the next request; the service keeps nothing.
type MoveResponse[S, I any] struct {
	// Move is the move the engine chose, as a UCI token.
	Move string `json:"move"`

	// GameAfter is the position after Move was played, as FEN.
	GameAfter string `json:"game_after"`

	// StatusInfo is the engine's reasoning about Move. Nil when the request
	// did not ask for it.
	StatusInfo *I `json:"status_info"`

	// ObserveOpponentSeedUsed is the seed handed to the engine while it
	// observed the caller's move. Nil when the caller sent a null move and
	// there was nothing to observe.
	ObserveOpponentSeedUsed *uint64 `json:"observe_other_rand_used"`

	// ProposeSeedUsed is the seed handed to the engine while it produced Move.
	ProposeSeedUsed uint64 `json:"produce_rand_used"`

	// ObserveOwnSeedUsed is the seed handed to the engine while it observed Move.
	ObserveOwnSeedUsed uint64 `json:"observe_mine_rand_used"`

	// EngineState is the engine's updated state, to be passed on the next
	// request of this game.
	EngineState S `json:"engine_state"`
}
