package eval

import (
	"sort"

	"github.com/Ingo60/frech/pkg/board"
)

// FindAttackers returns the pieces of the given color that directly target the square,
// cheapest first. Sliders are included only when the path to the square is open.
func FindAttackers(pos board.Position, side board.Color, sq board.Square) []board.Piece {
	var ret []board.Piece

	for tmp := board.PawnCaptureSources(side, sq) & pos.Piece(side, board.Pawn); tmp != 0; tmp = tmp.ClearLastPop() {
		ret = append(ret, board.Pawn)
	}
	for tmp := board.KnightAttackboard(sq) & pos.Piece(side, board.Knight); tmp != 0; tmp = tmp.ClearLastPop() {
		ret = append(ret, board.Knight)
	}
	if board.KingAttackboard(sq)&pos.Piece(side, board.King) != 0 {
		ret = append(ret, board.King)
	}

	occupied := pos.Occupied()
	diag := board.BishopAttackboard(sq) & (pos.Piece(side, board.Bishop) | pos.Piece(side, board.Queen))
	for tmp := diag; tmp != 0; tmp = tmp.ClearLastPop() {
		from := tmp.LastPopSquare()
		if board.BishopPath(sq, from)&occupied == 0 {
			_, piece, _ := pos.Square(from)
			ret = append(ret, piece)
		}
	}
	line := board.RookAttackboard(sq) & (pos.Piece(side, board.Rook) | pos.Piece(side, board.Queen))
	for tmp := line; tmp != 0; tmp = tmp.ClearLastPop() {
		from := tmp.LastPopSquare()
		if board.RookPath(sq, from)&occupied == 0 {
			_, piece, _ := pos.Square(from)
			ret = append(ret, piece)
		}
	}

	sort.SliceStable(ret, func(i, j int) bool {
		return PieceValue(ret[i]) < PieceValue(ret[j])
	})
	return ret
}

// hangingPenalty computes the hanging-piece penalty for the side to move, as a
// non-negative centipawn amount. A piece hangs if it is attacked while undefended, or
// attacked by a piece cheaper than itself. Multiple hanging pieces do not sum: the
// worst exchange counts at 70%, inflated by 10% for each additional threat.
func hangingPenalty(pos board.Position, mover board.Color) Score {
	opp := mover.Opponent()

	var threats []Score
	for _, piece := range board.QueenRookBishopKnightPawn {
		for tmp := pos.Piece(mover, piece); tmp != 0; tmp = tmp.ClearLastPop() {
			sq := tmp.LastPopSquare()

			attackers := FindAttackers(pos, opp, sq)
			if len(attackers) == 0 {
				continue
			}
			defenders := FindAttackers(pos, mover, sq)

			victim := PieceValue(piece)
			switch {
			case len(defenders) == 0:
				threats = append(threats, victim)
			case PieceValue(attackers[0]) < victim:
				threats = append(threats, victim-PieceValue(attackers[0]))
			}
		}
	}
	if len(threats) == 0 {
		return 0
	}

	sort.Slice(threats, func(i, j int) bool { return threats[i] > threats[j] })

	penalty := threats[0] * 7 / 10
	penalty += penalty * Score(len(threats)-1) / 10
	return penalty
}
