// Package randmover is the reference engine: it plays a uniformly random
// legal move, chosen deterministically from the seed it is handed.
package randmover

import (
	"context"
	"math/rand/v2"
	"strconv"
	"strings"

	"enginehost/internal/engine"

	"github.com/notnil/chess"
	"github.com/pkg/errors"
)

// State is the engine's externalized state. The engine needs nothing beyond
// how far the game has progressed, which it keeps as a ply count so it can
// detect a state handed to it for the wrong position.
type State struct {
	Ply int `json:"ply"`
}

// StatusInfo describes how a move was chosen.
type StatusInfo struct {
	// Considered is the number of legal moves in the position.
	Considered int `json:"considered"`

	// Picked is the chosen move as a UCI token.
	Picked string `json:"picked"`
}

type Engine struct{}

func New() *Engine {
	return &Engine{}
}

func (*Engine) Info() engine.Info[State] {
	return engine.Info[State]{
		ID:           "randmover",
		Description:  "plays a uniformly random legal move, derived deterministically from the provided seed",
		InitialState: State{},
	}
}

func (*Engine) ProposeMove(ctx context.Context, seed uint64, state State, pos *chess.Position) (*chess.Move, StatusInfo, error) {
	if ply := plyOf(pos); state.Ply != ply {
		return nil, StatusInfo{}, errors.Errorf("state is at ply %d but position is at ply %d", state.Ply, ply)
	}
	moves := pos.ValidMoves()
	if len(moves) == 0 {
		return nil, StatusInfo{}, errors.New("no legal moves in position")
	}
	m := moves[rng(seed).IntN(len(moves))]
	return m, StatusInfo{Considered: len(moves), Picked: m.String()}, nil
}

func (e *Engine) ProposeMoveNoInfo(ctx context.Context, seed uint64, state State, pos *chess.Position) (*chess.Move, error) {
	m, _, err := e.ProposeMove(ctx, seed, state, pos)
	return m, err
}

func (*Engine) ObserveMove(ctx context.Context, seed uint64, state *State, move *chess.Move, after *chess.Position) error {
	ply := plyOf(after)
	if ply != state.Ply+1 {
		return errors.Errorf("observed move leads to ply %d but state is at ply %d", ply, state.Ply)
	}
	state.Ply = ply
	return nil
}

// rng expands a 64-bit seed into a generator. The engine never touches any
// other entropy source.
func rng(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// plyOf derives the number of plies played from the position's move counters.
func plyOf(pos *chess.Position) int {
	fields := strings.Fields(pos.String())
	full, err := strconv.Atoi(fields[len(fields)-1])
	if err != nil {
		return 0
	}
	ply := (full - 1) * 2
	if pos.Turn() == chess.Black {
		ply++
	}
	return ply
}
