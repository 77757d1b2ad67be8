// frech-eboard is an adaptor for using a DGT EBoard via LiveChess as an XBoard engine.
// The adaptor allows a physical board to play in chess programs by pretending to be an
// engine: whenever it is "thinking", it waits for the move made on the board.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"sync/atomic"

	"github.com/herohde/livechess-go/pkg/livechess"

	"github.com/Ingo60/frech/pkg/board"
	"github.com/Ingo60/frech/pkg/board/fen"
	"github.com/Ingo60/frech/pkg/engine"
	"github.com/seekerror/logw"
	"github.com/seekerror/stdlib/pkg/util/iox"
)

var (
	serial = flag.String("serial", "auto", "Board selection by serial number (default: auto)")
	flip   = flag.Bool("flip", false, "Flip board")
)

func main() {
	flag.Parse()
	ctx := context.Background()

	id := livechess.EBoardSerial(*serial)
	if id == "auto" {
		auto, err := livechess.AutoDetect(ctx, livechess.DefaultClient)
		if err != nil {
			logw.Exitf(ctx, "Failed to autodetect board: %v", err)
		}
		id = auto
	}

	client, events, err := livechess.NewFeed(ctx, id)
	if err != nil {
		logw.Exitf(ctx, "Feed for %v failed: %v", id, err)
	}
	if *flip {
		if err := client.Flip(ctx, true); err != nil {
			logw.Exitf(ctx, "Flip board %v failed: %v", id, err)
		}
	}
	if err := client.Setup(ctx, fen.Initial); err != nil {
		logw.Exitf(ctx, "Setup board %v failed: %v", id, err)
	}

	a := newAdaptor(ctx, events)
	g := engine.NewGame(nil)

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "protover":
			fmt.Println("feature myname=\"frech-eboard\" setboard=0 usermove=1 sigint=0 variants=\"normal\" done=1")

		case "new":
			_ = g.Reset()
			g.SelfColor = board.Black

		case "usermove":
			if len(parts) != 2 {
				continue
			}
			m, ok := g.FindMove(parts[1])
			if !ok {
				fmt.Printf("Illegal move: '%v'\n", parts[1])
				continue
			}
			g.Push(m)
			play(ctx, a, g)

		case "go":
			g.SelfColor = g.Current().Turn()
			play(ctx, a, g)

		case "quit":
			return
		}
	}
}

// play waits for the board to make one of the legal moves and emits it.
func play(ctx context.Context, a *adaptor, g *engine.Game) {
	if g.Current().Turn() != g.SelfColor {
		return
	}

	// (1) Generate possible next legal options, keyed by placement.

	candidates := map[string]board.Move{}
	for _, m := range g.Current().LegalMoves() {
		next := strings.Split(fen.Encode(g.Current().Apply(m), 1), " ")[0]
		candidates[next] = m
	}
	if len(candidates) == 0 {
		return // mate or stalemate: nothing to wait for
	}

	// (2) Wait for the board to match one of them.

	for {
		if last := a.last.Load(); last != nil {
			if m, ok := candidates[last.Board]; ok {
				g.Push(m)
				fmt.Printf("move %v\n", m)
				return
			}
		}

		select {
		case <-a.pulse.Chan():
			// ok: try again
		case <-ctx.Done():
			return
		}
	}
}

type adaptor struct {
	last  atomic.Pointer[livechess.EBoardEventResponse] // last with start and move list
	pulse *iox.Pulse
}

func newAdaptor(ctx context.Context, events <-chan livechess.EBoardEventResponse) *adaptor {
	ret := &adaptor{
		pulse: iox.NewPulse(),
	}
	go ret.process(ctx, events)
	return ret
}

func (a *adaptor) process(ctx context.Context, events <-chan livechess.EBoardEventResponse) {
	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}

			if len(event.San) > 0 {
				a.last.Store(&event)
				a.pulse.Emit()
			}

		case <-ctx.Done():
			return
		}
	}
}
