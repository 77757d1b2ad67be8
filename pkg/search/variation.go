// Package search contains game-tree search functionality and utilities.
package search

import (
	"fmt"
	"time"

	"github.com/Ingo60/frech/pkg/board"
	"github.com/Ingo60/frech/pkg/eval"
)

// Variation is the principal variation for some search depth, along with the search
// state needed to seed the next deeper iteration or epoch.
type Variation struct {
	Depth int           // depth of search
	Moves []board.Move  // principal variation
	Score eval.Score    // evaluation at depth, positive for White
	Nodes uint64        // interior/leaf nodes searched
	Time  time.Duration // time taken by search

	TT      TranspositionTable // table fed forward between iterations
	Killers Killers            // cutoff counts fed forward between iterations
}

// First returns the first move of the variation, if any.
func (v Variation) First() (board.Move, bool) {
	if len(v.Moves) == 0 {
		return board.Move{}, false
	}
	return v.Moves[0], true
}

func (v Variation) String() string {
	return fmt.Sprintf("depth=%v score=%v nodes=%v time=%v pv=%v", v.Depth, v.Score, v.Nodes, v.Time, board.PrintMoves(v.Moves))
}
