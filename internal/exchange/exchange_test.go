package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"enginehost/internal/codec"
	"enginehost/internal/engine"
	"enginehost/internal/protocol"

	"github.com/notnil/chess"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

const fenAfterE4 = "rnbqkbnr/pppppppp/8/8/4P3/8/PPPPPPPP/RNBQKBNR b KQkq e3 0 1"

type doubleState struct {
	Observed []string `json:"observed"`
}

type doubleInfo struct {
	Note string `json:"note"`
}

// double is a scripted engine. Without a fixed reply it picks the legal move
// indexed by the seed, which makes it fully deterministic; with one it
// returns that token decoded against the current position, legal or not.
type double struct {
	fixed      string
	proposeErr error
	observeErr error
	calls      []string
}

func (d *double) Info() engine.Info[doubleState] {
	return engine.Info[doubleState]{ID: "double", Description: "test double", InitialState: doubleState{}}
}

func (d *double) ProposeMove(ctx context.Context, seed uint64, state doubleState, pos *chess.Position) (*chess.Move, doubleInfo, error) {
	d.calls = append(d.calls, "propose")
	if d.proposeErr != nil {
		return nil, doubleInfo{}, d.proposeErr
	}
	if d.fixed != "" {
		m, err := chess.UCINotation{}.Decode(pos, d.fixed)
		if err != nil {
			return nil, doubleInfo{}, err
		}
		return m, doubleInfo{Note: fmt.Sprintf("seed=%d", seed)}, nil
	}
	moves := pos.ValidMoves()
	m := moves[int(seed%uint64(len(moves)))]
	return m, doubleInfo{Note: fmt.Sprintf("seed=%d", seed)}, nil
}

func (d *double) ProposeMoveNoInfo(ctx context.Context, seed uint64, state doubleState, pos *chess.Position) (*chess.Move, error) {
	m, _, err := d.ProposeMove(ctx, seed, state, pos)
	return m, err
}

func (d *double) ObserveMove(ctx context.Context, seed uint64, state *doubleState, move *chess.Move, after *chess.Position) error {
	d.calls = append(d.calls, "observe")
	if d.observeErr != nil {
		return d.observeErr
	}
	state.Observed = append(state.Observed, move.String())
	return nil
}

func seedp(v uint64) *uint64 { return &v }

func TestNullMoveSkipsObserveOpponent(t *testing.T) {
	d := &double{}
	resp, err := Run[doubleState, doubleInfo](context.Background(), d, &protocol.MoveRequest[doubleState]{
		Move:        codec.NullMove,
		GameBefore:  codec.StartingFEN,
		ProposeSeed: seedp(4),
	}, nil)
	require.NoError(t, err)
	require.Nil(t, resp.ObserveOpponentSeedUsed)
	require.Equal(t, []string{"propose", "observe"}, d.calls)
	// Only the engine's own move was observed.
	require.Equal(t, []string{resp.Move}, resp.EngineState.Observed)
}

func TestIllegalOpponentMoveNeverReachesEngine(t *testing.T) {
	for _, move := range []string{"e2e5", "e7e5", "a1a1"} {
		d := &double{}
		resp, err := Run[doubleState, doubleInfo](context.Background(), d, &protocol.MoveRequest[doubleState]{
			Move:       move,
			GameBefore: codec.StartingFEN,
		}, nil)
		require.Nil(t, resp)
		var reqErr *protocol.RequestError
		require.ErrorAs(t, err, &reqErr)
		require.Equal(t, protocol.KindPositionMoveMismatch, reqErr.Kind)
		require.Empty(t, d.calls, "engine must not be called for move %q", move)
	}
}

func TestMalformedPositionIsRequestError(t *testing.T) {
	d := &double{}
	_, err := Run[doubleState, doubleInfo](context.Background(), d, &protocol.MoveRequest[doubleState]{
		Move:       "e2e4",
		GameBefore: "not a position",
	}, nil)
	var reqErr *protocol.RequestError
	require.ErrorAs(t, err, &reqErr)
	require.Equal(t, protocol.KindPositionMoveMismatch, reqErr.Kind)
	require.Empty(t, d.calls)
}

func TestEngineIllegalReply(t *testing.T) {
	// After 1.e4 the e2 square is empty, so replying e2e4 is an engine bug.
	d := &double{fixed: "e2e4"}
	resp, err := Run[doubleState, doubleInfo](context.Background(), d, &protocol.MoveRequest[doubleState]{
		Move:       "e2e4",
		GameBefore: codec.StartingFEN,
	}, nil)
	require.Nil(t, resp)
	var reqErr *protocol.RequestError
	require.ErrorAs(t, err, &reqErr)
	require.Equal(t, protocol.KindEngineSentIllegalMove, reqErr.Kind)
	require.Equal(t, "e2e4", reqErr.Move)
	// The reply was rejected before the engine could observe it.
	require.Equal(t, []string{"observe", "propose"}, d.calls)
}

func TestEngineErrorsPropagateVerbatim(t *testing.T) {
	boom := errors.New("wires crossed")

	d := &double{proposeErr: boom}
	_, err := Run[doubleState, doubleInfo](context.Background(), d, &protocol.MoveRequest[doubleState]{
		Move:       codec.NullMove,
		GameBefore: codec.StartingFEN,
	}, nil)
	require.ErrorIs(t, err, boom)
	var reqErr *protocol.RequestError
	require.False(t, errors.As(err, &reqErr))

	d = &double{observeErr: boom}
	_, err = Run[doubleState, doubleInfo](context.Background(), d, &protocol.MoveRequest[doubleState]{
		Move:       "e2e4",
		GameBefore: codec.StartingFEN,
	}, nil)
	require.ErrorIs(t, err, boom)
	require.Equal(t, []string{"observe"}, d.calls)
}

func TestSeedsEchoedAndDrawn(t *testing.T) {
	// Fixed seeds come back exactly.
	d := &double{}
	resp, err := Run[doubleState, doubleInfo](context.Background(), d, &protocol.MoveRequest[doubleState]{
		Move:                "e2e4",
		GameBefore:          codec.StartingFEN,
		ObserveOpponentSeed: seedp(11),
		ProposeSeed:         seedp(22),
		ObserveOwnSeed:      seedp(33),
	}, nil)
	require.NoError(t, err)
	require.NotNil(t, resp.ObserveOpponentSeedUsed)
	require.Equal(t, uint64(11), *resp.ObserveOpponentSeedUsed)
	require.Equal(t, uint64(22), resp.ProposeSeedUsed)
	require.Equal(t, uint64(33), resp.ObserveOwnSeedUsed)

	// Unset seeds are drawn from the source, in exchange order.
	var n uint64 = 100
	draw := func() uint64 { n++; return n }
	d = &double{}
	resp, err = Run[doubleState, doubleInfo](context.Background(), d, &protocol.MoveRequest[doubleState]{
		Move:       "e2e4",
		GameBefore: codec.StartingFEN,
	}, draw)
	require.NoError(t, err)
	require.Equal(t, uint64(101), *resp.ObserveOpponentSeedUsed)
	require.Equal(t, uint64(102), resp.ProposeSeedUsed)
	require.Equal(t, uint64(103), resp.ObserveOwnSeedUsed)
}

func TestDeterministicAcrossInstances(t *testing.T) {
	req := &protocol.MoveRequest[doubleState]{
		Move:                "e2e4",
		GameBefore:          codec.StartingFEN,
		ObserveOpponentSeed: seedp(7),
		ProposeSeed:         seedp(13),
		ObserveOwnSeed:      seedp(99),
		WithStatusInfo:      true,
	}

	first, err := Run[doubleState, doubleInfo](context.Background(), &double{}, req, nil)
	require.NoError(t, err)
	second, err := Run[doubleState, doubleInfo](context.Background(), &double{}, req, nil)
	require.NoError(t, err)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	require.Equal(t, string(a), string(b))
}

func TestStatusInfoOnlyWhenRequested(t *testing.T) {
	req := &protocol.MoveRequest[doubleState]{
		Move:        codec.NullMove,
		GameBefore:  codec.StartingFEN,
		ProposeSeed: seedp(5),
	}
	resp, err := Run[doubleState, doubleInfo](context.Background(), &double{}, req, nil)
	require.NoError(t, err)
	require.Nil(t, resp.StatusInfo)

	req.WithStatusInfo = true
	resp, err = Run[doubleState, doubleInfo](context.Background(), &double{}, req, nil)
	require.NoError(t, err)
	require.NotNil(t, resp.StatusInfo)
	require.Equal(t, "seed=5", resp.StatusInfo.Note)
}

func TestEndToEndFirstMove(t *testing.T) {
	d := &double{fixed: "e2e4"}
	resp, err := Run[doubleState, doubleInfo](context.Background(), d, &protocol.MoveRequest[doubleState]{
		Move:       codec.NullMove,
		GameBefore: codec.StartingFEN,
	}, nil)
	require.NoError(t, err)
	require.Equal(t, "e2e4", resp.Move)
	require.Equal(t, fenAfterE4, resp.GameAfter)
}
