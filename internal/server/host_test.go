package server

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"enginehost/internal/codec"
	"enginehost/internal/engine"
	"enginehost/internal/protocol"

	"github.com/notnil/chess"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

type guardState struct {
	N int `json:"n"`
}

type guardInfo struct{}

// guardEngine trips overlap if two of its calls ever run concurrently.
// It is deliberately slow so that overlapping exchanges would collide.
type guardEngine struct {
	inFlight int32
	overlap  int32
	err      error
}

func (g *guardEngine) enter() {
	if !atomic.CompareAndSwapInt32(&g.inFlight, 0, 1) {
		atomic.StoreInt32(&g.overlap, 1)
	}
	time.Sleep(2 * time.Millisecond)
}

func (g *guardEngine) exit() {
	atomic.StoreInt32(&g.inFlight, 0)
}

func (g *guardEngine) Info() engine.Info[guardState] {
	return engine.Info[guardState]{ID: "guard", Description: "reentrancy detector", InitialState: guardState{}}
}

func (g *guardEngine) ProposeMove(ctx context.Context, seed uint64, state guardState, pos *chess.Position) (*chess.Move, guardInfo, error) {
	g.enter()
	defer g.exit()
	if g.err != nil {
		return nil, guardInfo{}, g.err
	}
	return pos.ValidMoves()[0], guardInfo{}, nil
}

func (g *guardEngine) ProposeMoveNoInfo(ctx context.Context, seed uint64, state guardState, pos *chess.Position) (*chess.Move, error) {
	m, _, err := g.ProposeMove(ctx, seed, state, pos)
	return m, err
}

func (g *guardEngine) ObserveMove(ctx context.Context, seed uint64, state *guardState, move *chess.Move, after *chess.Position) error {
	g.enter()
	defer g.exit()
	if g.err != nil {
		return g.err
	}
	state.N++
	return nil
}

func TestHostSerializesEngineCalls(t *testing.T) {
	g := &guardEngine{}
	h := NewHost[guardState, guardInfo](g)

	const requests = 8
	errs := make(chan error, requests)
	var wg sync.WaitGroup
	for i := 0; i < requests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := h.Exchange(&protocol.MoveRequest[guardState]{
				Move:       "e2e4",
				GameBefore: codec.StartingFEN,
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	require.Zero(t, atomic.LoadInt32(&g.overlap), "engine calls from different requests interleaved")
}

func TestHostEngineErrorPassesThrough(t *testing.T) {
	g := &guardEngine{err: errors.New("search exploded")}
	h := NewHost[guardState, guardInfo](g)

	_, err := h.Exchange(&protocol.MoveRequest[guardState]{
		Move:       codec.NullMove,
		GameBefore: codec.StartingFEN,
	})
	require.EqualError(t, err, "search exploded")
}
