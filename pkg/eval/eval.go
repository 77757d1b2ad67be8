// Package eval contains position evaluation logic and utilities.
package eval

import (
	"context"

	"github.com/Ingo60/frech/pkg/board"
)

// Weights parameterize the asymmetric castling term. The original engine valued white
// castling at 25 and black castling at 50 centipawns; both policies remain testable.
type Weights struct {
	WhiteCastleUnit Score
	BlackCastleUnit Score
}

var DefaultWeights = Weights{
	WhiteCastleUnit: 25,
	BlackCastleUnit: 50,
}

// Evaluator is the static position evaluator. It returns a centipawn score, positive
// for White, with the mate sentinels for positions without legal moves and zero for
// stalemate or the fifty-move rule. The final heuristic score is forced even; the low
// bit is the transposition table's bound tag space.
type Evaluator struct {
	Weights Weights
}

func NewEvaluator() Evaluator {
	return Evaluator{Weights: DefaultWeights}
}

func (e Evaluator) Evaluate(ctx context.Context, pos board.Position) Score {
	mover := pos.Turn()

	moves := pos.LegalMoves()
	if len(moves) == 0 {
		if pos.IsChecked(mover) {
			return MateScore(mover)
		}
		return ZeroScore // stalemate
	}
	if pos.Counter() >= 100 {
		return ZeroScore // fifty-move rule
	}

	score := material(pos)
	score += hanging(pos, mover)
	score += mobility(pos, mover, len(moves))
	score += checkBonus(pos, mover)
	score += e.castling(pos)
	score += blockedBishopPawns(pos)
	score += trappedBishops(pos)
	score += lazyOfficers(pos)
	score += kingCover(pos)

	return crop(score) &^ 1
}

// crop keeps heuristic scores strictly inside the mate sentinels. Lopsided promotion
// endings can otherwise outscore a mate.
func crop(s Score) Score {
	const limit = 30000
	switch {
	case s > limit:
		return limit
	case s < -limit:
		return -limit
	default:
		return s
	}
}

// material sums nominal piece values plus an advancement bonus for pawns beyond the
// fourth rank. The delta is scaled up by the strong side's material ratio, which makes
// simplifying favorable when ahead.
func material(pos board.Position) Score {
	white := materialTotal(pos, board.White)
	black := materialTotal(pos, board.Black)

	max, min := white, black
	if max < min {
		max, min = min, max
	}
	return (white - black) * (max * 1000 / min) / 1000
}

func materialTotal(pos board.Position, c board.Color) Score {
	var total Score
	for p := board.ZeroPiece; p < board.NumPieces; p++ {
		total += PieceValue(p) * Score(pos.Piece(c, p).PopCount())
	}
	for tmp := pos.Piece(c, board.Pawn); tmp != 0; tmp = tmp.ClearLastPop() {
		advance := tmp.LastPopSquare().Rank().V() - 3
		if c == board.Black {
			advance = 4 - tmp.LastPopSquare().Rank().V()
		}
		if advance > 0 {
			total += Score(20 * advance)
		}
	}
	return total
}

func hanging(pos board.Position, mover board.Color) Score {
	return hangingPenalty(pos, mover).Relative(mover).Negate()
}

// mobility counts legal moves for both sides, endgame only. The opponent's moves are
// obtained by flipping the side-to-move bit.
func mobility(pos board.Position, mover board.Color, own int) Score {
	if pos.Occupied().PopCount() >= 11 && allPawns(pos).PopCount() >= 5 {
		return 0
	}
	opp := len(pos.FlipTurn().LegalMoves())
	return Score(4 * (own - opp)).Relative(mover)
}

// checkBonus favors the side that just moved if the opponent is now in check.
func checkBonus(pos board.Position, mover board.Color) Score {
	if pos.IsChecked(mover) {
		return Score(25).Relative(mover.Opponent())
	}
	return 0
}

func (e Evaluator) castling(pos board.Position) Score {
	white := castlingTerm(pos, board.White, e.Weights.WhiteCastleUnit)
	black := castlingTerm(pos, board.Black, e.Weights.BlackCastleUnit)
	return white - black
}

func castlingTerm(pos board.Position, c board.Color, unit Score) Score {
	if pos.HasCastled(c) {
		return unit
	}
	rights := Score(pos.Castling().Rights(c).Count())
	return rights*unit - 3*unit
}

var (
	whiteBishopPawns = [4]board.Square{board.B2, board.D2, board.E2, board.G2}
	blackBishopPawns = [4]board.Square{board.B7, board.D7, board.E7, board.G7}
)

// blockedBishopPawns penalizes own pawns on the bishop development squares that have a
// piece directly in front.
func blockedBishopPawns(pos board.Position) Score {
	var score Score
	occupied := pos.Occupied()

	for _, sq := range whiteBishopPawns {
		if pos.Piece(board.White, board.Pawn).IsSet(sq) && occupied.IsSet(sq+8) {
			score -= 21
		}
	}
	for _, sq := range blackBishopPawns {
		if pos.Piece(board.Black, board.Pawn).IsSet(sq) && occupied.IsSet(sq-8) {
			score += 21
		}
	}
	return score
}

// trappedBishops penalizes bishops whose adjacent diagonal squares are all occupied by
// own pieces.
func trappedBishops(pos board.Position) Score {
	var score Score
	for c := board.ZeroColor; c < board.NumColors; c++ {
		own := pos.Color(c)
		for tmp := pos.Piece(c, board.Bishop); tmp != 0; tmp = tmp.ClearLastPop() {
			sq := tmp.LastPopSquare()
			zone := board.KingAttackboard(sq) & board.BishopAttackboard(sq)
			if zone&^own == 0 {
				score -= Score(43).Relative(c)
			}
		}
	}
	return score
}

var (
	whiteHomeOfficers = [4]board.Square{board.B1, board.C1, board.F1, board.G1}
	blackHomeOfficers = [4]board.Square{board.B8, board.C8, board.F8, board.G8}
)

// lazyOfficers penalizes undeveloped minor pieces, in the opening only. The opening
// ends when pawns drop below twelve or either side runs out of castling rights.
func lazyOfficers(pos board.Position) Score {
	if allPawns(pos).PopCount() < 12 {
		return 0
	}
	rights := pos.Castling()
	if rights.Rights(board.White) == 0 || rights.Rights(board.Black) == 0 {
		return 0
	}

	var score Score
	minors := pos.Piece(board.White, board.Bishop) | pos.Piece(board.White, board.Knight)
	for _, sq := range whiteHomeOfficers {
		if minors.IsSet(sq) {
			score -= 15
		}
	}
	minors = pos.Piece(board.Black, board.Bishop) | pos.Piece(board.Black, board.Knight)
	for _, sq := range blackHomeOfficers {
		if minors.IsSet(sq) {
			score += 15
		}
	}
	return score
}

// kingCover credits pieces in the king's one-square neighborhood, offsetting the
// immobility penalties implicit in mobility.
func kingCover(pos board.Position) Score {
	var score Score
	for c := board.ZeroColor; c < board.NumColors; c++ {
		zone := board.KingAttackboard(pos.KingSquare(c))
		own := (zone & pos.Color(c)).PopCount()
		enemy := (zone & pos.Color(c.Opponent())).PopCount()
		score += Score(6*own + 5*enemy).Relative(c)
	}
	return score
}

func allPawns(pos board.Position) board.Bitboard {
	return pos.Piece(board.White, board.Pawn) | pos.Piece(board.Black, board.Pawn)
}
