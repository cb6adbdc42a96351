// Package exchange drives one engine through a single move exchange: observe
// the caller's move, propose a reply, observe that reply, assemble the
// response. It is a pure procedure over an engine instance; serializing
// access to the instance is the caller's job.
package exchange

import (
	"context"
	crand "crypto/rand"
	"encoding/binary"

	"enginehost/internal/codec"
	"enginehost/internal/engine"
	"enginehost/internal/protocol"

	"github.com/notnil/chess"
)

// SeedSource supplies a seed for an engine call when the request leaves the
// corresponding field unset.
type SeedSource func() uint64

// CryptoSeed draws a seed from the operating system's entropy source. It is
// the SeedSource used when none is supplied.
func CryptoSeed() uint64 {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		panic(err)
	}
	return binary.LittleEndian.Uint64(b[:])
}

// Run executes one request against eng and returns the response, a
// *protocol.RequestError for failures of the request itself, or the engine's
// error verbatim. Every failure path terminates the run; nothing is
// swallowed. Seeds for the up-to-three engine calls come from the request
// where set and from draw otherwise, and the seeds actually used are echoed
// in the response.
//
// The engine's state travels with the request: Run works on a local copy and
// returns the updated value in the response, so two runs with identical
// request fields and seeds produce identical responses no matter which
// engine instance serves them.
func Run[S, I any](ctx context.Context, eng engine.Engine[S, I], req *protocol.MoveRequest[S], draw SeedSource) (*protocol.MoveResponse[S, I], error) {
	if draw == nil {
		draw = CryptoSeed
	}

	before, err := codec.ParsePosition(req.GameBefore)
	if err != nil {
		return nil, protocol.PositionMoveMismatch()
	}

	state := req.EngineState

	// A null move means the engine plays first: there is nothing to apply
	// and nothing to observe.
	after := before
	var observeOpponentUsed *uint64
	if req.Move != codec.NullMove {
		theirMove, err := codec.ParseMove(before, req.Move)
		if err != nil {
			return nil, protocol.PositionMoveMismatch()
		}
		after, err = codec.ApplyMove(before, theirMove)
		if err != nil {
			return nil, protocol.PositionMoveMismatch()
		}

		seed := resolveSeed(req.ObserveOpponentSeed, draw)
		observeOpponentUsed = &seed
		if err := eng.ObserveMove(ctx, seed, &state, theirMove, after); err != nil {
			return nil, err
		}
	}

	proposeSeed := resolveSeed(req.ProposeSeed, draw)
	var proposed *chess.Move
	var info *I
	if req.WithStatusInfo {
		m, si, err := eng.ProposeMove(ctx, proposeSeed, state, after)
		if err != nil {
			return nil, err
		}
		proposed, info = m, &si
	} else {
		m, err := eng.ProposeMoveNoInfo(ctx, proposeSeed, state, after)
		if err != nil {
			return nil, err
		}
		proposed = m
	}

	// The legality-checked application doubles as validation of the
	// engine's reply. An illegal reply is an engine bug, reported to the
	// caller with the offending move attached.
	afterOwn, err := codec.ApplyMove(after, proposed)
	if err != nil {
		return nil, protocol.EngineSentIllegalMove(codec.FormatMove(after, proposed))
	}

	observeOwnSeed := resolveSeed(req.ObserveOwnSeed, draw)
	if err := eng.ObserveMove(ctx, observeOwnSeed, &state, proposed, afterOwn); err != nil {
		return nil, err
	}

	return &protocol.MoveResponse[S, I]{
		Move:                    codec.FormatMove(after, proposed),
		GameAfter:               codec.FormatPosition(afterOwn),
		StatusInfo:              info,
		ObserveOpponentSeedUsed: observeOpponentUsed,
		ProposeSeedUsed:         proposeSeed,
		ObserveOwnSeedUsed:      observeOwnSeed,
		EngineState:             state,
	}, nil
}

func resolveSeed(requested *uint64, draw SeedSource) uint64 {
	if requested != nil {
		return *requested
	}
	return draw()
}
