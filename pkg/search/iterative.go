package search

import (
	"context"
	"time"

	"github.com/Ingo60/frech/pkg/board"
	"github.com/Ingo60/frech/pkg/eval"
	"github.com/seekerror/logw"
	"github.com/seekerror/stdlib/pkg/lang"
	"go.uber.org/atomic"
)

// stopThinking is a process-wide hint that the active worker should stop. It is
// strictly a hint for deep recursion; correctness comes from the command channel
// rendezvous with the driver. Set and cleared at epoch boundaries only.
var stopThinking atomic.Bool

// BeginThinking clears the stop hint. Driver-only, at worker spawn.
func BeginThinking() {
	stopThinking.Store(false)
}

// FinishThinking raises the stop hint. Driver-only, at cancellation or commit.
func FinishThinking() {
	stopThinking.Store(true)
}

// Stopped returns true iff the stop hint is raised.
func Stopped() bool {
	return stopThinking.Load()
}

// Snapshot is the immutable search input captured at worker spawn. The maps are owned
// by the worker until it completes; the driver must not touch them while the worker
// can still publish.
type Snapshot struct {
	Root board.Position
	// Seen holds the occurrence counts of prior game positions, excluding Root, for
	// repetition scoring.
	Seen map[board.ZobristHash]int

	Plan    lang.Optional[Variation] // expected line from the previous epoch
	TT      TranspositionTable       // table to continue from; a fresh one if nil
	Killers Killers

	DepthLimit lang.Optional[uint]
}

// Emit publishes an improving variation to the driver and blocks on the reply token:
// true to continue searching, false to stop.
type Emit func(v Variation) bool

// Think runs iterative deepening until stopped, exhausted or mate. It publishes an
// improving Variation after each completed depth. A panic during search is logged and
// ends the epoch; the caller reports end-of-search either way.
func Think(ctx context.Context, snap Snapshot, emit Emit) {
	defer func() {
		if r := recover(); r != nil {
			logw.Errorf(ctx, "Worker panic on %v: %v", snap.Root, r)
		}
	}()

	tt := snap.TT
	if tt == nil {
		tt = NewTranspositionTable()
	}
	killers := snap.Killers.Fork()
	if plan, ok := snap.Plan.V(); ok {
		tt.Prime(snap.Root, plan.Moves)
	}

	ab := AlphaBeta{Eval: eval.NewEvaluator()}

	for depth := 1; ; depth++ {
		start := time.Now()

		nodes, score, moves, err := ab.Search(ctx, snap.Root, depth, tt, killers, snap.Seen)
		if err != nil {
			return // halted
		}
		if len(moves) == 0 {
			return // no legal moves: nothing to suggest
		}

		v := Variation{
			Depth:   depth,
			Moves:   moves,
			Score:   score,
			Nodes:   nodes,
			Time:    time.Since(start),
			TT:      tt,
			Killers: killers,
		}

		logw.Debugf(ctx, "Searched %v: %v", snap.Root, v)

		if !emit(v) {
			return // stopped by driver
		}
		if score.IsMate() {
			return // forced mate found. Exact result.
		}
		if limit, ok := snap.DepthLimit.V(); ok && uint(depth) >= limit {
			return // reached max depth
		}
	}
}
