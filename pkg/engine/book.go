package engine

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Ingo60/frech/pkg/board"
	"github.com/Ingo60/frech/pkg/board/fen"
	"github.com/seekerror/logw"
)

// Book is an opening book learned from user play. Every user move not previously
// recorded is appended as "<algebraic> <FEN>" to a plain text file per user color,
// under the book directory: opening-white and opening-black.
type Book struct {
	dir string

	moves    map[board.ZobristHash][]board.Move
	recorded map[string]bool
}

// OpenBook loads the recorded opening files from the given directory. Missing files
// are an empty book, not an error.
func OpenBook(ctx context.Context, dir string) *Book {
	b := &Book{
		dir:      dir,
		moves:    map[board.ZobristHash][]board.Move{},
		recorded: map[string]bool{},
	}

	for _, c := range []board.Color{board.White, board.Black} {
		if err := b.load(ctx, b.filename(c)); err != nil {
			logw.Debugf(ctx, "No opening book %v: %v", b.filename(c), err)
		}
	}
	logw.Infof(ctx, "Opening book: %v positions", len(b.moves))
	return b
}

// Find returns the recorded moves for the position, if any. Moves that are not legal
// in the position are filtered out.
func (b *Book) Find(pos board.Position) []board.Move {
	var ret []board.Move
	for _, candidate := range b.moves[pos.Hash()] {
		for _, m := range pos.LegalMoves() {
			if candidate.Equals(m) {
				ret = append(ret, m)
				break
			}
		}
	}
	return ret
}

// Record appends the user move played in the given position, unless already known.
func (b *Book) Record(ctx context.Context, pos board.Position, m board.Move) {
	line := fmt.Sprintf("%v %v", m, fen.Encode(pos, 1))
	if b.recorded[line] {
		return
	}
	b.recorded[line] = true
	b.moves[pos.Hash()] = append(b.moves[pos.Hash()], m)

	mover := pos.Turn()
	if err := b.append(b.filename(mover), line); err != nil {
		logw.Errorf(ctx, "Failed to record opening move %v: %v", line, err)
	}
}

func (b *Book) filename(c board.Color) string {
	if c == board.White {
		return filepath.Join(b.dir, "opening-white")
	}
	return filepath.Join(b.dir, "opening-black")
}

func (b *Book) load(ctx context.Context, filename string) error {
	f, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.SplitN(line, " ", 2)
		if len(parts) != 2 {
			logw.Warningf(ctx, "Invalid book line '%v' in %v", line, filename)
			continue
		}
		m, err := board.ParseMove(parts[0])
		if err != nil {
			logw.Warningf(ctx, "Invalid book move '%v' in %v: %v", parts[0], filename, err)
			continue
		}
		pos, _, err := fen.Decode(parts[1])
		if err != nil {
			logw.Warningf(ctx, "Invalid book position '%v' in %v: %v", parts[1], filename, err)
			continue
		}

		b.recorded[line] = true
		b.moves[pos.Hash()] = append(b.moves[pos.Hash()], m)
	}
	return scanner.Err()
}

func (b *Book) append(filename string, line string) error {
	if err := os.MkdirAll(b.dir, 0755); err != nil {
		return err
	}
	f, err := os.OpenFile(filename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = fmt.Fprintf(f, "%v\n", line)
	return err
}
