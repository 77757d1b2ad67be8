package search

import (
	"github.com/Ingo60/frech/pkg/board"
	"github.com/Ingo60/frech/pkg/eval"
)

// Bound represents the bound of a -- possibly inexact -- search score.
type Bound uint8

const (
	ExactBound Bound = iota
	LowerBound
	UpperBound
)

func (b Bound) String() string {
	switch b {
	case ExactBound:
		return "Exact"
	case LowerBound:
		return "Lower"
	case UpperBound:
		return "Upper"
	default:
		return "?"
	}
}

// Transposition is a cached search result for a position. Scores are relative to the
// side to move of the keyed position.
type Transposition struct {
	Depth int
	Score eval.Score
	Bound Bound
	PV    []board.Move // principal continuation from the position
	Moves []board.Move // move order used at the position
}

// TranspositionTable caches search results keyed by position hash. The table is owned
// by a single worker and reused across that worker's iterations, so no synchronization
// is needed.
type TranspositionTable map[board.ZobristHash]Transposition

func NewTranspositionTable() TranspositionTable {
	return TranspositionTable{}
}

// Read returns the entry for the given position hash, if present.
func (t TranspositionTable) Read(hash board.ZobristHash) (Transposition, bool) {
	tr, ok := t[hash]
	return tr, ok
}

// Write stores the entry, keeping the deeper result on collision.
func (t TranspositionTable) Write(hash board.ZobristHash, tr Transposition) bool {
	if old, ok := t[hash]; ok && old.Depth > tr.Depth {
		return false
	}
	t[hash] = tr
	return true
}

// Prime seeds empty entries for the given line of play, so the moves are explored first
// in the next search. Never overwrites and never causes cutoffs.
func (t TranspositionTable) Prime(pos board.Position, moves []board.Move) {
	for _, m := range moves {
		if _, ok := t[pos.Hash()]; ok {
			return
		}
		t[pos.Hash()] = Transposition{Depth: -1, Bound: UpperBound, PV: []board.Move{m}}
		pos = pos.Apply(m)
	}
}
