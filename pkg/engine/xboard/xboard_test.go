package xboard_test

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/Ingo60/frech/pkg/board"
	"github.com/Ingo60/frech/pkg/board/fen"
	"github.com/Ingo60/frech/pkg/engine"
	"github.com/Ingo60/frech/pkg/engine/xboard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDriver(t *testing.T, strategy xboard.Strategy) (io.Writer, <-chan string) {
	t.Helper()

	pr, pw := io.Pipe()
	g := engine.NewGame(nil)
	d, out := xboard.NewDriver(context.Background(), g, strategy, pr)

	t.Cleanup(func() {
		_, _ = fmt.Fprintln(pw, "quit")
		select {
		case <-d.Closed():
		case <-time.After(10 * time.Second):
		}
		_ = pw.Close()
	})
	return pw, out
}

func send(t *testing.T, w io.Writer, lines ...string) {
	t.Helper()
	for _, line := range lines {
		_, err := fmt.Fprintln(w, line)
		require.NoError(t, err)
	}
}

// expect drains the output until a line with the given prefix appears. Thinking
// progress and comment lines in between are skipped.
func expect(t *testing.T, out <-chan string, prefix string) string {
	t.Helper()

	deadline := time.After(30 * time.Second)
	for {
		select {
		case line, ok := <-out:
			if !ok {
				t.Fatalf("output closed awaiting '%v'", prefix)
			}
			if strings.HasPrefix(line, prefix) {
				return line
			}
		case <-deadline:
			t.Fatalf("timeout awaiting '%v'", prefix)
		}
	}
}

func legalMoves(t *testing.T, record string) []board.Move {
	t.Helper()
	pos, _, err := fen.Decode(record)
	require.NoError(t, err)
	return pos.LegalMoves()
}

func isLegal(moves []board.Move, alg string) bool {
	candidate, err := board.ParseMove(alg)
	if err != nil {
		return false
	}
	for _, m := range moves {
		if candidate.Equals(m) {
			return true
		}
	}
	return false
}

func TestDriver(t *testing.T) {

	t.Run("features", func(t *testing.T) {
		in, out := newDriver(t, xboard.Best)

		send(t, in, "xboard", "protover 2")
		line := expect(t, out, "feature")
		assert.Contains(t, line, "myname=\"frech")
		assert.Contains(t, line, "setboard=1")
		assert.Contains(t, line, "usermove=1")
		assert.Contains(t, line, "done=1")
	})

	t.Run("go", func(t *testing.T) {
		// After new+go the engine adopts White, the side to move, and moves.
		in, out := newDriver(t, xboard.Best)

		send(t, in, "new", "go")
		line := expect(t, out, "move ")
		alg := strings.TrimPrefix(line, "move ")
		assert.True(t, isLegal(legalMoves(t, fen.Initial), alg), "illegal reply %v", alg)
	})

	t.Run("usermove", func(t *testing.T) {
		// After new the engine plays Black and answers the user move.
		in, out := newDriver(t, xboard.Best)

		send(t, in, "new", "usermove e2e4")
		line := expect(t, out, "move ")
		alg := strings.TrimPrefix(line, "move ")
		assert.True(t, isLegal(legalMoves(t, "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1"), alg), "illegal reply %v", alg)
	})

	t.Run("castle", func(t *testing.T) {
		record := "8/8/8/8/8/3k4/8/R3K2R w KQ - 0 1"
		in, out := newDriver(t, xboard.Best)

		send(t, in, "setboard "+record, "go")
		line := expect(t, out, "move ")
		alg := strings.TrimPrefix(line, "move ")

		moves := legalMoves(t, record)
		assert.True(t, isLegal(moves, alg), "illegal reply %v", alg)
		assert.True(t, isLegal(moves, "e1g1"), "kingside castle must be legal")
	})

	t.Run("mate", func(t *testing.T) {
		in, out := newDriver(t, xboard.Best)

		send(t, in, "setboard 6k1/5ppp/8/8/8/8/5PPP/3R2K1 w - - 0 1", "go")
		assert.Equal(t, expect(t, out, "move "), "move d1d8")
		assert.Equal(t, expect(t, out, "1-0"), "1-0 {White mates}")
	})

	t.Run("usermate", func(t *testing.T) {
		in, out := newDriver(t, xboard.Best)

		send(t, in, "setboard 3r2k1/5ppp/8/8/8/8/5PPP/6K1 b - - 0 1", "playother", "usermove d8d1")
		assert.Equal(t, expect(t, out, "0-1"), "0-1 {Black mates}")
	})

	t.Run("first", func(t *testing.T) {
		in, out := newDriver(t, xboard.First)

		send(t, in, "new", "go")
		line := expect(t, out, "move ")
		assert.True(t, isLegal(legalMoves(t, fen.Initial), strings.TrimPrefix(line, "move ")))
	})

	t.Run("resign", func(t *testing.T) {
		in, out := newDriver(t, xboard.Resign)

		send(t, in, "new", "go")
		assert.Equal(t, expect(t, out, "resign"), "resign")
	})

	t.Run("illegalmove", func(t *testing.T) {
		in, out := newDriver(t, xboard.Best)

		send(t, in, "new", "usermove e2e5")
		assert.Equal(t, expect(t, out, "Illegal move"), "Illegal move: 'e2e5'")

		send(t, in, "usermove junk")
		assert.Equal(t, expect(t, out, "Illegal move"), "Illegal move: 'junk'")
	})

	t.Run("badfen", func(t *testing.T) {
		in, out := newDriver(t, xboard.Best)

		send(t, in, "setboard this is not chess")
		assert.True(t, strings.HasPrefix(expect(t, out, "Error ("), "Error ("))
	})

	t.Run("unknown", func(t *testing.T) {
		in, out := newDriver(t, xboard.Best)

		send(t, in, "frobnicate")
		assert.Equal(t, expect(t, out, "Error (unknown command)"), "Error (unknown command): frobnicate")
	})

	t.Run("undoatroot", func(t *testing.T) {
		in, out := newDriver(t, xboard.Best)

		send(t, in, "new", "undo")
		assert.Equal(t, expect(t, out, "Error (command not legal now)"), "Error (command not legal now): undo")
	})

	t.Run("force", func(t *testing.T) {
		// In force mode user moves for both sides are accepted without replies.
		in, out := newDriver(t, xboard.Best)

		send(t, in, "new", "force", "usermove e2e4", "usermove e7e5", "go")
		line := expect(t, out, "move ")
		alg := strings.TrimPrefix(line, "move ")
		assert.True(t, isLegal(legalMoves(t, "rnbqkbnr/pppp1ppp/8/4p3/4P3/8/PPPP1PPP/RNBQKBNR w KQkq - 0 2"), alg), "illegal reply %v", alg)
	})

	t.Run("commitnow", func(t *testing.T) {
		// '?' commits the best-so-far immediately.
		in, out := newDriver(t, xboard.Best)

		send(t, in, "new", "time 30000", "otim 30000", "go")
		time.Sleep(300 * time.Millisecond)
		send(t, in, "?")
		expect(t, out, "move ")
	})
}
