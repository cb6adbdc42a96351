// Package codec converts chess positions and moves to and from their
// canonical wire formats: FEN for positions, UCI coordinate notation for
// moves. All legality checking is delegated to the underlying move
// generator; nothing in this package decides legality on its own.
package codec

import (
	"github.com/notnil/chess"
	"github.com/pkg/errors"
)

// NullMove is the UCI token for "no move was made". It is used when the
// engine must produce the very first move of a game. It never decodes to
// a board move.
const NullMove = "0000"

// StartingFEN is the standard initial position.
const StartingFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

var (
	// ErrMalformedPosition reports FEN text that does not describe a position.
	ErrMalformedPosition = errors.New("malformed position")

	// ErrMalformedMove reports text that is not a structurally valid UCI token.
	ErrMalformedMove = errors.New("malformed move token")

	// ErrIllegalMove reports a well-formed move that is not legal in the
	// position it was parsed or applied against.
	ErrIllegalMove = errors.New("move not legal in position")
)

var uci = chess.UCINotation{}

// ParsePosition decodes FEN text into a position.
func ParsePosition(fen string) (*chess.Position, error) {
	opt, err := chess.FEN(fen)
	if err != nil {
		return nil, errors.Wrapf(ErrMalformedPosition, "%q: %v", fen, err)
	}
	return chess.NewGame(opt).Position(), nil
}

// FormatPosition encodes a position as FEN text.
func FormatPosition(pos *chess.Position) string {
	return pos.String()
}

// IsMoveToken reports whether s has the shape of a UCI board move:
// [a-h][1-8][a-h][1-8] with an optional promotion piece. The null-move
// token is not a board move and is rejected here.
func IsMoveToken(s string) bool {
	if len(s) < 4 || len(s) > 5 {
		return false
	}
	if s[0] < 'a' || s[0] > 'h' ||
		s[1] < '1' || s[1] > '8' ||
		s[2] < 'a' || s[2] > 'h' ||
		s[3] < '1' || s[3] > '8' {
		return false
	}
	if len(s) == 5 {
		p := s[4]
		if p != 'q' && p != 'r' && p != 'b' && p != 'n' {
			return false
		}
	}
	return true
}

// ParseMove decodes a UCI token in the context of pos. The returned move is
// the generator's own representation of the matching legal move, so castles
// and en passant carry their proper tags. Fails with ErrMalformedMove for
// text that is not a move token (including the null-move token) and with
// ErrIllegalMove for a well-formed token with no legal counterpart in pos.
func ParseMove(pos *chess.Position, s string) (*chess.Move, error) {
	if s == NullMove {
		return nil, errors.Wrap(ErrMalformedMove, "null move has no board interpretation")
	}
	if !IsMoveToken(s) {
		return nil, errors.Wrapf(ErrMalformedMove, "%q", s)
	}
	m, err := uci.Decode(pos, s)
	if err != nil {
		return nil, errors.Wrapf(ErrMalformedMove, "%q: %v", s, err)
	}
	legal := matchLegal(pos, m)
	if legal == nil {
		return nil, errors.Wrapf(ErrIllegalMove, "%s in %s", s, pos)
	}
	return legal, nil
}

// FormatMove encodes a move as a UCI token.
func FormatMove(pos *chess.Position, m *chess.Move) string {
	return uci.Encode(pos, m)
}

// ApplyMove derives the position after m is played in pos. The move is
// checked against the legal move set first; an illegal move yields
// ErrIllegalMove and leaves pos untouched. Positions are never mutated:
// the result is always a fresh value.
func ApplyMove(pos *chess.Position, m *chess.Move) (*chess.Position, error) {
	legal := matchLegal(pos, m)
	if legal == nil {
		return nil, errors.Wrapf(ErrIllegalMove, "%s in %s", uci.Encode(pos, m), pos)
	}
	return pos.Update(legal), nil
}

// matchLegal finds the legal move in pos with the same coordinates and
// promotion as m, or nil if there is none.
func matchLegal(pos *chess.Position, m *chess.Move) *chess.Move {
	for _, v := range pos.ValidMoves() {
		if v.S1() == m.S1() && v.S2() == m.S2() && v.Promo() == m.Promo() {
			return v
		}
	}
	return nil
}
