// Package engine contains the game state and supporting services shared by the
// protocol drivers.
package engine

import (
	"fmt"
	"time"

	"github.com/Ingo60/frech/pkg/board"
	"github.com/Ingo60/frech/pkg/board/fen"
	"github.com/Ingo60/frech/pkg/search"
	"github.com/seekerror/stdlib/pkg/lang"
)

// State is the driver state.
type State uint8

const (
	// Forced: analyzing user setup; the engine never moves on its own.
	Forced State = iota
	// Playing: normal game, not currently thinking.
	Playing
	// Thinking: a search worker is active.
	Thinking
	// Terminated: shutting down.
	Terminated
)

func (s State) String() string {
	switch s {
	case Forced:
		return "FORCED"
	case Playing:
		return "PLAYING"
	case Thinking:
		return "THINKING"
	case Terminated:
		return "TERMINATED"
	default:
		return "?"
	}
}

// Game holds the full game state. The driver exclusively owns it; workers only ever
// receive immutable snapshots of the relevant parts.
type Game struct {
	history       []board.Position // history[0] = root, last = current
	rootTurn      board.Color
	rootFullmoves int

	SelfColor  board.Color
	State      State
	ClockStart time.Time // when thinking began
	SID        uint64    // current worker epoch

	Best    lang.Optional[search.Variation]
	Plan    lang.Optional[search.Variation]
	Killers search.Killers

	TimeControl search.TimeControl
	Cores       int

	Book *Book
}

func NewGame(book *Book) *Game {
	g := &Game{Book: book, Killers: search.NewKillers()}
	_ = g.Reset()
	return g
}

// Reset resets to the standard start position.
func (g *Game) Reset() error {
	return g.SetBoard(fen.Initial)
}

// SetBoard replaces the history with the singleton position decoded from the FEN
// record. The prior history is retained on error.
func (g *Game) SetBoard(record string) error {
	pos, fullmoves, err := fen.Decode(record)
	if err != nil {
		return err
	}

	g.history = []board.Position{pos}
	g.rootTurn = pos.Turn()
	g.rootFullmoves = fullmoves
	g.Best = lang.Optional[search.Variation]{}
	g.Plan = lang.Optional[search.Variation]{}
	g.Killers = search.NewKillers()
	return nil
}

// Current returns the current position.
func (g *Game) Current() board.Position {
	return g.history[len(g.history)-1]
}

// Ply returns the number of moves played from the root.
func (g *Game) Ply() int {
	return len(g.history) - 1
}

// Push appends the position after the move to the history.
func (g *Game) Push(m board.Move) {
	g.history = append(g.history, g.Current().Apply(m))
}

// Undo drops the last position. Refuses to drop the root.
func (g *Game) Undo() bool {
	if len(g.history) <= 1 {
		return false
	}
	g.history = g.history[:len(g.history)-1]
	return true
}

// Remove drops the last two positions, i.e. a full move.
func (g *Game) Remove() bool {
	if len(g.history) <= 2 {
		return false
	}
	g.history = g.history[:len(g.history)-2]
	return true
}

// FindMove matches a move in coordinate notation against the legal moves of the
// current position.
func (g *Game) FindMove(alg string) (board.Move, bool) {
	candidate, err := board.ParseMove(alg)
	if err != nil {
		return board.Move{}, false
	}
	for _, m := range g.Current().LegalMoves() {
		if candidate.Equals(m) {
			return m, true
		}
	}
	return board.Move{}, false
}

// Repetitions returns how often the current position appears in the history. Positions
// beyond the last capture or pawn move are unreachable and not counted.
func (g *Game) Repetitions() int {
	cur := g.Current()
	n := 1
	for i := len(g.history) - 2; i >= 0; i-- {
		if g.history[i].Equals(cur) {
			n++
		}
		if g.history[i].Counter() == 0 {
			break
		}
	}
	return n
}

// Seen returns the occurrence counts of all positions in the history except the
// current one, for the worker snapshot.
func (g *Game) Seen() map[board.ZobristHash]int {
	ret := make(map[board.ZobristHash]int, len(g.history))
	for _, p := range g.history[:len(g.history)-1] {
		ret[p.Hash()]++
	}
	return ret
}

// Position returns the current position in FEN format.
func (g *Game) Position() string {
	return fen.Encode(g.Current(), g.fullmoves())
}

func (g *Game) fullmoves() int {
	plies := g.Ply()
	if g.rootTurn == board.Black {
		plies++
	}
	return g.rootFullmoves + plies/2
}

func (g *Game) String() string {
	return fmt.Sprintf("game{pos=%v, state=%v, self=%v, sid=%v, ply=%v, hash=%x}", g.Current(), g.State, g.SelfColor, g.SID, g.Ply(), g.Current().Hash())
}
