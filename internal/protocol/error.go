package protocol

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// Request-error kinds.
const (
	KindPositionMoveMismatch  = "PositionMoveMismatch"
	KindEngineSentIllegalMove = "EngineSentIllegalMove"
)

// RequestError is a failure of the request itself, independent of the
// engine's own error type. It is recoverable at the protocol level: the
// caller can retry with corrected input, or discard the engine instance if
// it recurs.
//
// The JSON form is externally tagged: PositionMoveMismatch serializes as the
// bare string "PositionMoveMismatch", EngineSentIllegalMove as
// {"EngineSentIllegalMove":{"move":"..."}}.
type RequestError struct {
	Kind string

	// Move is the offending UCI token. Set only for EngineSentIllegalMove,
	// where it identifies the illegal move the engine proposed, for
	// diagnostics; that case signals a bug in the engine, surfaced to the
	// caller rather than crashing the service.
	Move string
}

// PositionMoveMismatch reports that the caller's move is not legal in the
// provided position, or not a move at all.
func PositionMoveMismatch() *RequestError {
	return &RequestError{Kind: KindPositionMoveMismatch}
}

// EngineSentIllegalMove reports that the engine proposed move, which is not
// legal in the corresponding position.
func EngineSentIllegalMove(move string) *RequestError {
	return &RequestError{Kind: KindEngineSentIllegalMove, Move: move}
}

func (e *RequestError) Error() string {
	if e.Kind == KindEngineSentIllegalMove {
		return "engine sent illegal move " + e.Move
	}
	return "position/move mismatch"
}

type illegalMovePayload struct {
	Move string `json:"move"`
}

func (e *RequestError) MarshalJSON() ([]byte, error) {
	switch e.Kind {
	case KindPositionMoveMismatch:
		return json.Marshal(e.Kind)
	case KindEngineSentIllegalMove:
		return json.Marshal(map[string]illegalMovePayload{
			KindEngineSentIllegalMove: {Move: e.Move},
		})
	}
	return nil, errors.Errorf("unknown request error kind %q", e.Kind)
}

func (e *RequestError) UnmarshalJSON(data []byte) error {
	var kind string
	if err := json.Unmarshal(data, &kind); err == nil {
		if kind != KindPositionMoveMismatch {
			return errors.Errorf("unknown request error kind %q", kind)
		}
		*e = RequestError{Kind: kind}
		return nil
	}
	var tagged map[string]illegalMovePayload
	if err := json.Unmarshal(data, &tagged); err != nil {
		return errors.Wrap(err, "decode request error")
	}
	payload, ok := tagged[KindEngineSentIllegalMove]
	if !ok || len(tagged) != 1 {
		return errors.New("decode request error: unrecognized tag")
	}
	*e = RequestError{Kind: KindEngineSentIllegalMove, Move: payload.Move}
	return nil
}

// EngineInternalError is the wire form of an engine-level failure: the
// engine's own error, stringified and surfaced verbatim with a server-error
// status.
type EngineInternalError struct {
	ErrorText string `json:"error_text"`
}

func (e *EngineInternalError) Error() string {
	return e.ErrorText
}
