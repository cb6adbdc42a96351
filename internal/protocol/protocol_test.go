package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeState struct {
	Ply int `json:"ply"`
}

type fakeInfo struct {
	Note string `json:"note"`
}

func TestRequestErrorWireFormat(t *testing.T) {
	data, err := json.Marshal(PositionMoveMismatch())
	require.NoError(t, err)
	require.JSONEq(t, `"PositionMoveMismatch"`, string(data))

	data, err = json.Marshal(EngineSentIllegalMove("a1a2"))
	require.NoError(t, err)
	require.JSONEq(t, `{"EngineSentIllegalMove":{"move":"a1a2"}}`, string(data))
}

func TestRequestErrorDecode(t *testing.T) {
	e := &RequestError{}
	require.NoError(t, json.Unmarshal([]byte(`"PositionMoveMismatch"`), e))
	require.Equal(t, KindPositionMoveMismatch, e.Kind)

	e = &RequestError{}
	require.NoError(t, json.Unmarshal([]byte(`{"EngineSentIllegalMove":{"move":"e2e4"}}`), e))
	require.Equal(t, KindEngineSentIllegalMove, e.Kind)
	require.Equal(t, "e2e4", e.Move)

	require.Error(t, json.Unmarshal([]byte(`"SomethingElse"`), &RequestError{}))
	require.Error(t, json.Unmarshal([]byte(`{"SomethingElse":{}}`), &RequestError{}))
}

func TestMoveRequestDecode(t *testing.T) {
	body := `{
		"move": "e2e4",
		"game_before": "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
		"engine_state": {"ply": 0},
		"observe_mine_rand": 11,
		"produce_rand": 22,
		"with_status_info": true
	}`

	var req MoveRequest[fakeState]
	require.NoError(t, json.Unmarshal([]byte(body), &req))
	require.Equal(t, "e2e4", req.Move)
	require.Equal(t, 0, req.EngineState.Ply)
	require.Equal(t, uint64(11), *req.ObserveOpponentSeed)
	require.Equal(t, uint64(22), *req.ProposeSeed)
	require.Nil(t, req.ObserveOwnSeed)
	require.True(t, req.WithStatusInfo)

	// The erased form reads the same body, engine state kept raw.
	var any AnyMoveRequest
	require.NoError(t, json.Unmarshal([]byte(body), &any))
	require.JSONEq(t, `{"ply": 0}`, string(any.EngineState))
	require.Equal(t, uint64(11), *any.ObserveOpponentSeed)
}

func TestMoveResponseEncode(t *testing.T) {
	seed := uint64(5)
	resp := MoveResponse[fakeState, fakeInfo]{
		Move:                    "e7e5",
		GameAfter:               "rnbqkbnr/pppp1ppp/8/4p3/4P3/8/PPPP1PPP/RNBQKBNR w KQkq e6 0 2",
		ObserveOpponentSeedUsed: &seed,
		ProposeSeedUsed:         6,
		ObserveOwnSeedUsed:      7,
		EngineState:             fakeState{Ply: 2},
	}
	data, err := json.Marshal(resp)
	require.NoError(t, err)

	// Absent status info is an explicit null, and seeds-used are always
	// present; callers rely on both.
	require.Contains(t, string(data), `"status_info":null`)
	require.Contains(t, string(data), `"observe_other_rand_used":5`)
	require.Contains(t, string(data), `"produce_rand_used":6`)
	require.Contains(t, string(data), `"observe_mine_rand_used":7`)

	var erased AnyMoveResponse
	require.NoError(t, json.Unmarshal(data, &erased))
	require.Equal(t, "e7e5", erased.Move)
	require.JSONEq(t, `{"ply": 2}`, string(erased.EngineState))
}

func TestNullSeedEncodesAsNull(t *testing.T) {
	resp := MoveResponse[fakeState, fakeInfo]{Move: "e2e4"}
	data, err := json.Marshal(resp)
	require.NoError(t, err)
	require.Contains(t, string(data), `"observe_other_rand_used":null`)
}

func TestLargeSeedsSurviveRoundTrip(t *testing.T) {
	seed := uint64(1<<63 + 12345)
	req := MoveRequest[fakeState]{Move: "0000", GameBefore: "x", ProposeSeed: &seed}
	data, err := json.Marshal(req)
	require.NoError(t, err)
	var back MoveRequest[fakeState]
	require.NoError(t, json.Unmarshal(data, &back))
	require.Equal(t, seed, *back.ProposeSeed)
}
