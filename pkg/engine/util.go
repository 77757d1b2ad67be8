package engine

import (
	"context"
	"fmt"
	"os"

	"github.com/seekerror/logw"
)

// WriteStdoutLines writes lines from the given chan to stdout. The driver is the only
// writer to the chan, so protocol output is never interleaved.
func WriteStdoutLines(ctx context.Context, out <-chan string) {
	for line := range out {
		logw.Debugf(ctx, ">> %v", line)
		_, _ = fmt.Fprintln(os.Stdout, line)
	}
}
