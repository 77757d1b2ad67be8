package search

import "github.com/Ingo60/frech/pkg/board"

// Killers counts beta cutoffs caused by quiet moves, for move ordering. Keys are
// stripped of contextual metadata so the same from/to/promotion matches across
// positions.
type Killers map[board.Move]int

func NewKillers() Killers {
	return Killers{}
}

// Register records a cutoff for the move. Captures are not killers; they are already
// ordered by MVV-LVA.
func (k Killers) Register(m board.Move) {
	if m.IsCapture() {
		return
	}
	k[killerKey(m)]++
}

// Count returns the recorded cutoff count for the move.
func (k Killers) Count(m board.Move) int {
	return k[killerKey(m)]
}

// Fork returns a copy, so a worker can mutate its own tally.
func (k Killers) Fork() Killers {
	ret := make(Killers, len(k))
	for m, n := range k {
		ret[m] = n
	}
	return ret
}

func killerKey(m board.Move) board.Move {
	return board.Move{From: m.From, To: m.To, Promotion: m.Promotion}
}
