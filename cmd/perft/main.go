// perft counts move-generation nodes to a given depth, as ground truth for the
// move generator.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/Ingo60/frech/pkg/board"
	"github.com/Ingo60/frech/pkg/board/fen"
	"github.com/seekerror/logw"
)

var (
	position = flag.String("fen", fen.Initial, "Position to search in FEN format")
)

func init() {
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, `usage: perft [options] [depth]

PERFT counts the number of move paths of exactly the given depth (default: 5).
Options:
`)
		flag.PrintDefaults()
	}
}

func main() {
	flag.Parse()
	ctx := context.Background()

	depth := 5
	if flag.NArg() > 0 {
		n, err := strconv.Atoi(flag.Arg(0))
		if err != nil || n < 0 {
			flag.Usage()
			logw.Exitf(ctx, "Invalid depth: %v", flag.Arg(0))
		}
		depth = n
	}

	pos, _, err := fen.Decode(*position)
	if err != nil {
		logw.Exitf(ctx, "Invalid position: %v", err)
	}

	fmt.Printf("perft of %v\n", *position)
	for d := 1; d <= depth; d++ {
		start := time.Now()
		nodes := perft(pos, d)
		fmt.Printf("%2d: %12d (%v)\n", d, nodes, time.Since(start))
	}
}

func perft(pos board.Position, depth int) uint64 {
	if depth == 0 {
		return 1
	}

	var nodes uint64
	for _, m := range pos.LegalMoves() {
		nodes += perft(pos.Apply(m), depth-1)
	}
	return nodes
}
