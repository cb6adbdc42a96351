package display

import (
	"fmt"

	"enginehost/internal/codec"

	"github.com/notnil/chess"
)

// RenderFEN prints the board for a FEN position with a colored turn line.
func RenderFEN(fen string) {
	pos, err := codec.ParsePosition(fen)
	if err != nil {
		fmt.Printf("%sbad position: %v%s\n", Red, err, Reset)
		return
	}
	fmt.Print(pos.Board().Draw())
	fmt.Printf("%s to move\n", ColorForTurn(pos.Turn()))
	fmt.Printf("%s%s%s\n", Cyan, fen, Reset)
}

// ColorForTurn returns a colored side-to-move indicator
func ColorForTurn(turn chess.Color) string {
	if turn == chess.White {
		return Blue + "White" + Reset
	}
	return Red + "Black" + Reset
}
