// Package xboard contains a driver for using the engine under the XBoard/CECP
// protocol.
//
// See: https://www.gnu.org/software/xboard/engine-intf.html
package xboard

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/Ingo60/frech/pkg/board"
	"github.com/Ingo60/frech/pkg/engine"
	"github.com/Ingo60/frech/pkg/eval"
	"github.com/Ingo60/frech/pkg/search"
	"github.com/seekerror/build"
	"github.com/seekerror/logw"
	"github.com/seekerror/stdlib/pkg/lang"
	"github.com/seekerror/stdlib/pkg/util/iox"
)

var version = build.NewVersion(0, 9, 2)

// Strategy selects how the engine chooses its moves.
type Strategy uint8

const (
	// Best searches for the best move.
	Best Strategy = iota
	// First plays the first legal move.
	First
	// Resign resigns every game.
	Resign
)

func ParseStrategy(str string) (Strategy, bool) {
	switch str {
	case "best", "":
		return Best, true
	case "first":
		return First, true
	case "resign":
		return Resign, true
	default:
		return 0, false
	}
}

func (s Strategy) String() string {
	switch s {
	case Best:
		return "best"
	case First:
		return "first"
	case Resign:
		return "resign"
	default:
		return "?"
	}
}

// Driver implements the XBoard/CECP protocol state machine. It owns the game state and
// stdout; the reader task and at most one search worker publish into its input queue.
type Driver struct {
	iox.AsyncCloser

	g        *engine.Game
	strategy Strategy

	out   chan<- string
	queue chan Input

	// One-slot command channel of the current worker epoch: true = continue,
	// false = stop. Replaced at every spawn; a cancelled worker drains the
	// buffered false at its next rendezvous.
	workerTok chan bool
	cancelled bool

	budget time.Duration
	rnd    *rand.Rand
}

func NewDriver(ctx context.Context, g *engine.Game, strategy Strategy, in io.Reader) (*Driver, <-chan string) {
	out := make(chan string, 100)
	d := &Driver{
		AsyncCloser: iox.NewAsyncCloser(),
		g:           g,
		strategy:    strategy,
		out:         out,
		queue:       make(chan Input, 16),
		rnd:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	readerTok := make(chan bool, 1)
	go readInput(ctx, in, d.queue, readerTok)
	go d.process(ctx, readerTok)

	return d, out
}

func (d *Driver) process(ctx context.Context, readerTok chan bool) {
	defer d.Close()
	defer close(d.out)

	logw.Infof(ctx, "XBoard protocol initialized: strategy=%v", d.strategy)
	d.out <- fmt.Sprintf("# frech %v (%v)", version, d.strategy)

	for {
		switch in := d.poll().(type) {
		case Line:
			cont := d.handleLine(ctx, strings.TrimSpace(in.Text))
			readerTok <- cont
			if !cont {
				return
			}

		case EOF:
			logw.Infof(ctx, "Input stream closed. Exiting")
			d.cancelThinking(engine.Terminated)
			return

		case MV:
			d.handleMV(ctx, in)

		case NoMore:
			d.handleNoMore(ctx, in)

		case Forget:
			if in.SID == d.g.SID && d.g.State == engine.Thinking {
				d.g.Best = lang.Optional[search.Variation]{}
			}

		case Remove:
			if in.SID == d.g.SID && d.g.State == engine.Thinking {
				if best, ok := d.g.Best.V(); ok {
					if bm, ok2 := best.First(); ok2 {
						if vm, ok3 := in.V.First(); ok3 && bm.Equals(vm) {
							d.g.Best = lang.Optional[search.Variation]{}
						}
					}
				}
			}

		case timeout:
			logw.Debugf(ctx, "Budget %v exhausted, committing", d.budget)
			d.commitBest(ctx)
		}
	}
}

// poll takes the next input. While thinking with a reported best move, it polls with a
// timeout equal to the remaining budget; with no move reported yet, it waits without
// timeout rather than resigning.
func (d *Driver) poll() Input {
	if _, ok := d.g.Best.V(); ok && d.g.State == engine.Thinking {
		remaining := d.budget - time.Since(d.g.ClockStart)
		if remaining <= 0 {
			return timeout{}
		}
		select {
		case in := <-d.queue:
			return in
		case <-time.After(remaining):
			return timeout{}
		}
	}
	return <-d.queue
}

// handleLine processes a command line. Returns false when the reader should stop.
func (d *Driver) handleLine(ctx context.Context, line string) bool {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return true
	}

	cmd := parts[0]
	args := parts[1:]

	switch cmd {
	case "xboard", "random", "hard", "easy", "post", "computer", "accepted", "rejected",
		"level", "st", "sd", "nps":
		// acknowledged, no state change

	case "protover":
		d.out <- fmt.Sprintf("feature myname=\"frech %v\" ping=0 setboard=1 playother=1 usermove=1 draw=0 sigint=0 analyze=1 variants=\"normal\" colors=0 nps=0 debug=1 memory=0 smp=1 done=1", version)

	case "new":
		d.cancelThinking(engine.Playing)
		if err := d.g.Reset(); err != nil {
			logw.Exitf(ctx, "Reset failed: %v", err)
		}
		d.g.SelfColor = board.Black
		logw.Infof(ctx, "New game: %v", d.g)

	case "quit":
		d.cancelThinking(engine.Terminated)
		logw.Infof(ctx, "Quit")
		return false

	case "force":
		d.cancelThinking(engine.Forced)

	case "result":
		d.cancelThinking(engine.Forced)
		logw.Infof(ctx, "Result: %v", strings.Join(args, " "))

	case "playother":
		if d.g.State == engine.Thinking {
			d.reject(line)
			break
		}
		d.g.State = engine.Playing
		d.g.SelfColor = d.g.Current().Turn().Opponent()

	case "go":
		if d.g.State == engine.Thinking {
			d.reject(line)
			break
		}
		d.g.State = engine.Playing
		d.g.SelfColor = d.g.Current().Turn()
		d.maybeThink(ctx)

	case "setboard":
		d.cancelThinking(engine.Forced)
		if err := d.g.SetBoard(strings.Join(args, " ")); err != nil {
			d.out <- fmt.Sprintf("Error (%v)", err)
			break
		}
		logw.Infof(ctx, "Set board: %v", d.g)

	case "usermove":
		if len(args) != 1 {
			d.out <- fmt.Sprintf("Error (unknown command): %v", line)
			break
		}
		d.userMove(ctx, args[0])

	case "undo":
		d.cancelThinking(engine.Forced)
		if !d.g.Undo() {
			d.reject(line)
		}

	case "remove":
		d.cancelThinking(engine.Forced)
		if !d.g.Remove() {
			d.reject(line)
		}

	case "time":
		if n, err := strconv.Atoi(firstOrEmpty(args)); err == nil {
			d.g.TimeControl.Mine = time.Duration(n) * 10 * time.Millisecond // centiseconds
		}

	case "otim":
		if n, err := strconv.Atoi(firstOrEmpty(args)); err == nil {
			d.g.TimeControl.Opponent = time.Duration(n) * 10 * time.Millisecond
		}

	case "cores":
		if n, err := strconv.Atoi(firstOrEmpty(args)); err == nil {
			d.g.Cores = n
		}

	case "?":
		if _, ok := d.g.Best.V(); ok && d.g.State == engine.Thinking {
			d.commitBest(ctx)
		}

	default:
		if d.g.State == engine.Thinking {
			d.out <- fmt.Sprintf("Error (command not legal now): %v", line)
			break
		}
		d.out <- fmt.Sprintf("Error (unknown command): %v", cmd)
	}
	return true
}

// userMove applies a user move, records it for the opening book, announces any result
// and starts thinking if it is now the engine's turn.
func (d *Driver) userMove(ctx context.Context, alg string) {
	if d.g.State == engine.Thinking {
		d.out <- fmt.Sprintf("Error (command not legal now): usermove %v", alg)
		return
	}

	m, ok := d.g.FindMove(alg)
	if !ok {
		d.out <- fmt.Sprintf("Illegal move: '%v'", alg)
		return
	}

	before := d.g.Current()
	d.g.Push(m)
	d.verifyHash(ctx)
	if plan, ok := d.g.Plan.V(); ok {
		d.g.Plan = trim(plan, m)
	}
	logw.Infof(ctx, "User move %v: %v", m, d.g)

	if d.g.Book != nil {
		d.g.Book.Record(ctx, before, m)
	}

	if d.g.State == engine.Playing {
		if d.announceResult() {
			return
		}
		d.maybeThink(ctx)
	}
}

// maybeThink spawns a search worker if the engine is to move, after consulting the
// opening moves known from user play.
func (d *Driver) maybeThink(ctx context.Context) {
	g := d.g
	if g.State != engine.Playing || g.Current().Turn() != g.SelfColor {
		return
	}

	if g.Book != nil {
		if moves := g.Book.Find(g.Current()); len(moves) > 0 {
			m := moves[d.rnd.Intn(len(moves))]
			logw.Infof(ctx, "Book move %v", m)
			d.commitMove(ctx, m)
			return
		}
	}

	switch d.strategy {
	case Resign:
		d.out <- "resign"
		g.State = engine.Forced
		return

	case First:
		moves := g.Current().LegalMoves()
		if len(moves) == 0 {
			d.announceResult()
			return
		}
		d.commitMove(ctx, moves[0])
		return
	}

	// Spawn a new worker epoch.

	g.SID++
	g.State = engine.Thinking
	g.ClockStart = time.Now()
	g.Best = lang.Optional[search.Variation]{}
	d.budget = g.TimeControl.Budget()
	d.workerTok = make(chan bool, 1)
	d.cancelled = false

	snap := search.Snapshot{
		Root:    g.Current(),
		Seen:    g.Seen(),
		Plan:    g.Plan,
		Killers: g.Killers,
	}

	sid := g.SID
	tok := d.workerTok
	search.BeginThinking()

	logw.Infof(ctx, "Thinking: sid=%v budget=%v %v", sid, d.budget, g)

	go func() {
		search.Think(ctx, snap, func(v search.Variation) bool {
			d.queue <- MV{SID: sid, V: v}
			return <-tok
		})
		d.queue <- NoMore{SID: sid}
	}()
}

// handleMV merges a reported variation into the best-so-far and either grants the
// worker continuation or cancels it when the budget is nearly spent.
func (d *Driver) handleMV(ctx context.Context, in MV) {
	if in.SID != d.g.SID || d.g.State != engine.Thinking {
		// Stale epoch: its token channel already holds false. Discard.
		logw.Debugf(ctx, "Discarding stale MV: sid=%v", in.SID)
		return
	}

	v := in.V
	v.Killers = v.Killers.Fork() // worker is parked at the rendezvous; copy while safe
	d.g.Best = lang.Some(d.merge(v))

	if best, ok := d.g.Best.V(); ok {
		d.postThinking(best)
	}

	if elapsed := time.Since(d.g.ClockStart); elapsed >= d.budget*9/10 {
		logw.Debugf(ctx, "Budget %v nearly exhausted after %v, committing", d.budget, elapsed)
		d.commitBest(ctx)
		return
	}
	d.workerTok <- true
}

// merge implements the PV selection tie-break: a deepening of the same first move
// replaces; a near-equal score flips a coin; otherwise the better score for the engine
// color wins.
func (d *Driver) merge(v search.Variation) search.Variation {
	best, ok := d.g.Best.V()
	if !ok {
		return v
	}

	bm, ok1 := best.First()
	vm, ok2 := v.First()
	switch {
	case !ok1 || !ok2 || bm.Equals(vm):
		return v
	case abs(v.Score-best.Score) <= 5:
		if d.rnd.Intn(2) == 0 {
			return v
		}
		return best
	case d.g.SelfColor == board.White && v.Score > best.Score:
		return v
	case d.g.SelfColor == board.Black && v.Score < best.Score:
		return v
	default:
		return best
	}
}

func (d *Driver) handleNoMore(ctx context.Context, in NoMore) {
	if in.SID != d.g.SID || d.g.State != engine.Thinking {
		logw.Debugf(ctx, "Discarding stale NoMore: sid=%v", in.SID)
		return
	}

	logw.Infof(ctx, "Search exhausted: sid=%v", in.SID)

	if _, ok := d.g.Best.V(); !ok {
		// No variation: checkmate, stalemate or a failed worker.

		d.g.State = engine.Playing
		search.FinishThinking()
		if !d.announceResult() {
			d.out <- "resign"
			d.g.State = engine.Forced
		}
		return
	}
	d.commitBest(ctx)
}

// commitBest commits the best-so-far variation and cancels the worker.
func (d *Driver) commitBest(ctx context.Context) {
	best, ok := d.g.Best.V()
	if !ok {
		return
	}
	m, ok := best.First()
	if !ok {
		return
	}

	d.cancelThinking(engine.Playing)

	d.g.Plan = trim(best, m)
	d.g.Killers = best.Killers
	d.commitMove(ctx, m)
}

// commitMove applies the engine move, emits it and announces any result.
func (d *Driver) commitMove(ctx context.Context, m board.Move) {
	d.g.Push(m)
	d.verifyHash(ctx)
	d.g.Best = lang.Optional[search.Variation]{}
	d.out <- fmt.Sprintf("move %v", m)

	logw.Infof(ctx, "Engine move %v: %v", m, d.g)
	d.announceResult()
}

// cancelThinking cancels the active worker, if any, and transitions to the given
// state. Pending MV/NoMore from the cancelled epoch are discarded by sid mismatch.
func (d *Driver) cancelThinking(next engine.State) {
	if d.g.State == engine.Thinking {
		search.FinishThinking()
		if !d.cancelled {
			d.workerTok <- false // silent cancellation; drained at the next rendezvous
			d.cancelled = true
		}
		d.g.SID++ // stale messages no longer match
		d.g.Best = lang.Optional[search.Variation]{}
	}
	d.g.State = next
}

// announceResult tests the current position for mate, stalemate, the fifty-move rule
// or repetition (the current position occurring more than once in the history).
// Announces the result and enters FORCED if the game is over.
func (d *Driver) announceResult() bool {
	cur := d.g.Current()

	result := ""
	switch {
	case !cur.HasLegalMove():
		if cur.IsChecked(cur.Turn()) {
			if cur.Turn() == board.Black {
				result = "1-0 {White mates}"
			} else {
				result = "0-1 {Black mates}"
			}
		} else {
			result = "1/2-1/2 {Stalemate}"
		}
	case cur.Counter() >= 100:
		result = "1/2-1/2 {50 moves}"
	case d.g.Repetitions() > 1:
		result = "1/2-1/2 {repetition}"
	default:
		return false
	}

	d.out <- result
	d.g.State = engine.Forced
	return true
}

// postThinking emits a thinking progress line: depth score centisec nodes pv.
func (d *Driver) postThinking(v search.Variation) {
	score := v.Score.Relative(d.g.SelfColor)
	centis := v.Time.Milliseconds() / 10
	d.out <- fmt.Sprintf("%d %d %d %d %v", v.Depth, score, centis, v.Nodes, board.PrintMoves(v.Moves))
}

// verifyHash cross-checks the incrementally maintained Zobrist hash. A mismatch is a
// bug; emit diagnostics but keep playing.
func (d *Driver) verifyHash(ctx context.Context) {
	cur := d.g.Current()
	if cur.Hash() == cur.RecomputedHash() {
		return
	}
	d.out <- "# ZOBRIST HASH FAILURE"
	d.out <- fmt.Sprintf("# incremental=%x recomputed=%x position=%v", cur.Hash(), cur.RecomputedHash(), cur)
	logw.Errorf(ctx, "Zobrist hash failure: %v", cur)
}

func (d *Driver) reject(line string) {
	d.out <- fmt.Sprintf("Error (command not legal now): %v", line)
}

// trim advances the plan past the played move, so its remainder still starts at the
// current position. A diverging move invalidates the plan.
func trim(plan search.Variation, played board.Move) lang.Optional[search.Variation] {
	if len(plan.Moves) == 0 || !plan.Moves[0].Equals(played) || len(plan.Moves) == 1 {
		return lang.Optional[search.Variation]{}
	}
	plan.Moves = plan.Moves[1:]
	return lang.Some(plan)
}

func abs(s eval.Score) eval.Score {
	if s < 0 {
		return -s
	}
	return s
}

func firstOrEmpty(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
