package eval

import (
	"fmt"

	"github.com/Ingo60/frech/pkg/board"
)

// Score is a signed position score in centipawns. Positive favors White. Mate is
// signalled by the +/- 0x8000 sentinels; heuristic scores stay well within them.
type Score int32

const (
	// BlackIsMate is the score when Black is checkmated.
	BlackIsMate Score = 0x8000
	// WhiteIsMate is the score when White is checkmated.
	WhiteIsMate Score = -0x8000

	ZeroScore Score = 0

	// InfScore/NegInfScore bound every score, incl. mates. Search window limits.
	InfScore    Score = 0x10000
	NegInfScore Score = -0x10000
)

// MateScore returns the mate sentinel for the given mated color.
func MateScore(mated board.Color) Score {
	if mated == board.White {
		return WhiteIsMate
	}
	return BlackIsMate
}

// IsMate returns true iff the score is a mate sentinel.
func (s Score) IsMate() bool {
	return s == WhiteIsMate || s == BlackIsMate
}

// Negate returns the negated score.
func (s Score) Negate() Score {
	return -s
}

// Relative converts a White-positive score into one positive for the given color.
// Involutive: applying it twice restores the original.
func (s Score) Relative(c board.Color) Score {
	return s * Score(c.Unit())
}

func (s Score) String() string {
	switch s {
	case BlackIsMate:
		return "+mate"
	case WhiteIsMate:
		return "-mate"
	default:
		return fmt.Sprintf("%.2f", float64(s)/100)
	}
}

// PieceValue is the absolute nominal value of a piece in centipawns.
func PieceValue(p board.Piece) Score {
	switch p {
	case board.Pawn:
		return 100
	case board.Knight:
		return 300
	case board.Bishop:
		return 305
	case board.Rook:
		return 550
	case board.Queen:
		return 875
	case board.King:
		return 1000
	default:
		return 0
	}
}

// NominalValueGain is the nominal material gain for a move.
func NominalValueGain(m board.Move) Score {
	switch m.Type {
	case board.CapturePromotion:
		return PieceValue(m.Capture) + PieceValue(m.Promotion) - PieceValue(board.Pawn)
	case board.Promotion:
		return PieceValue(m.Promotion) - PieceValue(board.Pawn)
	case board.Capture:
		return PieceValue(m.Capture)
	case board.EnPassant:
		return PieceValue(board.Pawn)
	default:
		return 0
	}
}
