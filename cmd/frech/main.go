// frech is a bitboard chess engine speaking the XBoard/CECP protocol on stdin/stdout.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/Ingo60/frech/pkg/engine"
	"github.com/Ingo60/frech/pkg/engine/xboard"
	"github.com/seekerror/logw"
)

var (
	bookDir = flag.String("book", "data", "Opening book directory")
)

func init() {
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, `usage: frech [options] [best|first|resign]

FRECH is a bitboard chess engine for the XBoard/CECP protocol. The optional
argument selects a strategy (default: best).
Options:
`)
		flag.PrintDefaults()
	}
}

func main() {
	flag.Parse()
	ctx := context.Background()

	strategy := xboard.Best
	if flag.NArg() > 0 {
		s, ok := xboard.ParseStrategy(flag.Arg(0))
		if !ok {
			flag.Usage()
			logw.Exitf(ctx, "Unknown strategy: %v", flag.Arg(0))
		}
		strategy = s
	}

	book := engine.OpenBook(ctx, *bookDir)
	g := engine.NewGame(book)

	driver, out := xboard.NewDriver(ctx, g, strategy, os.Stdin)
	go engine.WriteStdoutLines(ctx, out)

	<-driver.Closed()
}
