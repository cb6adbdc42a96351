package protocol

import "encoding/json"

// Type-erased forms of the protocol payloads, with every engine-specific
// field carried as raw JSON. These are what transport and storage code uses
// when it must handle arbitrary engines: a client round-trips EngineState
// without ever decoding it.

// AnyMoveRequest is MoveRequest with the engine state erased. The validate
// tags drive the server's request validation; "ucimove" admits board moves
// and the null-move token, "fen" requires a parseable position.
type AnyMoveRequest struct {
	Move                string          `json:"move" validate:"required,ucimove"`
	GameBefore          string          `json:"game_before" validate:"required,fen"`
	EngineState         json.RawMessage `json:"engine_state"`
	ObserveOpponentSeed *uint64         `json:"observe_mine_rand,omitempty"`
	ProposeSeed         *uint64         `json:"produce_rand,omitempty"`
	ObserveOwnSeed      *uint64         `json:"observe_your_rand,omitempty"`
	WithStatusInfo      bool            `json:"with_status_info"`
}

// AnyMoveResponse is MoveResponse with the engine state and status info erased.
type AnyMoveResponse struct {
	Move                    string          `json:"move"`
	GameAfter               string          `json:"game_after"`
	StatusInfo              json.RawMessage `json:"status_info"`
	ObserveOpponentSeedUsed *uint64         `json:"observe_other_rand_used"`
	ProposeSeedUsed         uint64          `json:"produce_rand_used"`
	ObserveOwnSeedUsed      uint64          `json:"observe_mine_rand_used"`
	EngineState             json.RawMessage `json:"engine_state"`
}

// AnyInfo is engine.Info with the initial state erased.
type AnyInfo struct {
	ID           string          `json:"id"`
	Description  string          `json:"description"`
	InitialState json.RawMessage `json:"initial_state"`
}
