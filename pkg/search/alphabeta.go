package search

import (
	"context"
	"errors"

	"github.com/Ingo60/frech/pkg/board"
	"github.com/Ingo60/frech/pkg/eval"
	"github.com/seekerror/stdlib/pkg/util/contextx"
)

// ErrHalted is an error indicating that the search was halted.
var ErrHalted = errors.New("search halted")

// AlphaBeta implements negamax alpha-beta pruning over legal moves, threaded with a
// transposition table, killer move ordering and a capture-only quiescence extension at
// the horizon. Pseudo-code:
//
//	function negamax(node, depth, α, β) is
//	    if depth = 0 or node is terminal then
//	        return the heuristic value of node for the player to move
//	    value := −∞
//	    for each child of node do
//	        value := max(value, −negamax(child, depth − 1, −β, −α))
//	        α := max(α, value)
//	        if α ≥ β then
//	            break (* cutoff *)
//	    return value
//
// See: https://en.wikipedia.org/wiki/Negamax.
type AlphaBeta struct {
	Eval eval.Evaluator
}

// Search searches the position to the given depth. Returns nodes searched, the score
// (positive for White) and the principal variation. The transposition table and killer
// tally are updated in place; seen holds the occurrence count of prior game positions
// for repetition scoring.
func (s AlphaBeta) Search(ctx context.Context, pos board.Position, depth int, tt TranspositionTable, killers Killers, seen map[board.ZobristHash]int) (uint64, eval.Score, []board.Move, error) {
	run := &runAlphaBeta{
		eval:    s.Eval,
		tt:      tt,
		killers: killers,
		seen:    seen,
		line:    map[board.ZobristHash]int{},
	}

	score, moves := run.search(ctx, pos, depth, eval.NegInfScore, eval.InfScore)
	if run.aborted {
		return 0, eval.ZeroScore, nil, ErrHalted
	}
	return run.nodes, score.Relative(pos.Turn()), moves, nil
}

type runAlphaBeta struct {
	eval    eval.Evaluator
	tt      TranspositionTable
	killers Killers
	seen    map[board.ZobristHash]int // game history occurrences
	line    map[board.ZobristHash]int // current search line occurrences

	nodes   uint64
	aborted bool
}

// search returns the score for the side to move, with the principal variation.
func (r *runAlphaBeta) search(ctx context.Context, pos board.Position, depth int, alpha, beta eval.Score) (eval.Score, []board.Move) {
	if r.halted(ctx) {
		return eval.ZeroScore, nil
	}

	hash := pos.Hash()
	alphaOrig, betaOrig := alpha, beta

	var pvMove board.Move
	if tr, ok := r.tt.Read(hash); ok {
		if len(tr.PV) > 0 {
			pvMove = tr.PV[0]
		}
		if tr.Depth >= depth {
			switch tr.Bound {
			case ExactBound:
				return tr.Score, tr.PV
			case LowerBound:
				if tr.Score > alpha {
					alpha = tr.Score
				}
			case UpperBound:
				if tr.Score < beta {
					beta = tr.Score
				}
			}
			if alpha >= beta {
				return tr.Score, tr.PV
			}
		}
	}

	if depth <= 0 {
		return r.quiesce(ctx, pos, alpha, beta), nil
	}

	r.nodes++

	moves := pos.LegalMoves()
	if len(moves) == 0 {
		if pos.IsChecked(pos.Turn()) {
			return eval.MateScore(pos.Turn()).Relative(pos.Turn()), nil
		}
		return eval.ZeroScore, nil
	}

	ml := NewMoveList(moves, r.priority(pvMove))
	best := eval.NegInfScore
	var pv []board.Move
	var explored []board.Move

	for {
		m, ok := ml.Next()
		if !ok {
			break
		}
		explored = append(explored, m)

		next := pos.Apply(m)

		var score eval.Score
		var rem []board.Move
		if next.Counter() >= 100 || r.occurred(next.Hash()) {
			score = eval.ZeroScore // draw: fifty-move rule or repetition
		} else {
			r.line[next.Hash()]++
			s, sub := r.search(ctx, next, depth-1, beta.Negate(), alpha.Negate())
			r.line[next.Hash()]--
			score, rem = s.Negate(), sub
		}
		if r.aborted {
			return eval.ZeroScore, nil
		}

		if score > best {
			best = score
			pv = append([]board.Move{m}, rem...)
		}
		if best > alpha {
			alpha = best
		}
		if alpha >= beta {
			r.killers.Register(m)
			break // cutoff
		}
	}

	bound := ExactBound
	switch {
	case best <= alphaOrig:
		bound = UpperBound
	case best >= betaOrig:
		bound = LowerBound
	}
	r.tt.Write(hash, Transposition{Depth: depth, Score: best, Bound: bound, PV: pv, Moves: explored})

	return best, pv
}

// quiesce iterates captures only, until quiet.
func (r *runAlphaBeta) quiesce(ctx context.Context, pos board.Position, alpha, beta eval.Score) eval.Score {
	if r.halted(ctx) {
		return eval.ZeroScore
	}

	r.nodes++

	stand := r.eval.Evaluate(ctx, pos).Relative(pos.Turn())
	if stand >= beta {
		return stand
	}
	if stand > alpha {
		alpha = stand
	}

	var captures []board.Move
	for _, m := range pos.LegalMoves() {
		if m.IsCapture() {
			captures = append(captures, m)
		}
	}

	ml := NewMoveList(captures, MVVLVA)
	for {
		m, ok := ml.Next()
		if !ok {
			break
		}

		score := r.quiesce(ctx, pos.Apply(m), beta.Negate(), alpha.Negate()).Negate()
		if r.aborted {
			return eval.ZeroScore
		}

		if score > alpha {
			alpha = score
		}
		if alpha >= beta {
			break // cutoff
		}
	}
	return alpha
}

// priority orders the stored pv move first, then captures by MVV-LVA, then killers,
// then the rest.
func (r *runAlphaBeta) priority(pvMove board.Move) MovePriorityFn {
	return First(pvMove, func(m board.Move) MovePriority {
		if p := MVVLVA(m); p > 0 {
			return p
		}
		if n := r.killers.Count(m); n > 0 {
			if n > 1000 {
				n = 1000
			}
			return MovePriority(n)
		}
		return 0
	})
}

func (r *runAlphaBeta) occurred(hash board.ZobristHash) bool {
	return r.seen[hash]+r.line[hash] > 0
}

func (r *runAlphaBeta) halted(ctx context.Context) bool {
	if r.aborted || contextx.IsCancelled(ctx) || Stopped() {
		r.aborted = true
	}
	return r.aborted
}
