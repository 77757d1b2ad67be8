// Package fen contains utilities for reading and writing positions in FEN notation.
package fen

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/Ingo60/frech/pkg/board"
)

const (
	Initial = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"
)

// Decode returns a new position and the fullmove number from a FEN description.
//
// Example:
//
//	"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"
func Decode(fen string) (board.Position, int, error) {
	// A FEN record contains six fields. The separator between fields is a
	// space. The fields are:

	parts := strings.Fields(strings.TrimSpace(fen))
	if len(parts) != 6 {
		return board.Position{}, 0, fmt.Errorf("invalid number of sections in FEN: '%v'", fen)
	}

	// (1) Piece placement (from white's perspective). Each rank is described,
	// starting with rank 8 and ending with rank 1; within each rank, the
	// contents of each square are described from file a through file h.

	var pieces []board.Placement

	rank, file := board.Rank8, board.FileA
	for _, r := range parts[0] {
		switch {
		case r == '/':
			// "/" separates ranks.

			if file != board.NumFiles || rank == board.Rank1 {
				return board.Position{}, 0, fmt.Errorf("invalid number of squares in FEN: '%v'", fen)
			}
			rank--
			file = board.FileA

		case unicode.IsDigit(r):
			// Blank squares are noted using digits 1 through 8 (the number of blank squares).

			n := int(r - '0')
			if n < 1 || n > 8 || file.V()+n > 8 {
				return board.Position{}, 0, fmt.Errorf("invalid blank run in FEN: '%v'", fen)
			}
			file += board.File(n)

		case unicode.IsLetter(r):
			// Each piece is identified by a single letter ("PNBRQK"); white pieces are
			// upper-case, black lower-case.

			if file == board.NumFiles {
				return board.Position{}, 0, fmt.Errorf("invalid number of squares in FEN: '%v'", fen)
			}
			color, piece, ok := parsePiece(r)
			if !ok {
				return board.Position{}, 0, fmt.Errorf("invalid piece '%v' in FEN: '%v'", string(r), fen)
			}
			pieces = append(pieces, board.Placement{Square: board.NewSquare(file, rank), Color: color, Piece: piece})
			file++

		default:
			return board.Position{}, 0, fmt.Errorf("invalid character in FEN: '%v'", fen)
		}
	}
	if rank != board.Rank1 || file != board.NumFiles {
		return board.Position{}, 0, fmt.Errorf("invalid number of squares in FEN: '%v'", fen)
	}

	// (2) Active color. "w" means white moves next, "b" means black.

	active, ok := parseColor(parts[1])
	if !ok {
		return board.Position{}, 0, fmt.Errorf("invalid active color in FEN: '%v'", fen)
	}

	// (3) Castling availability. "-" or one or more of "KQkq".

	castling, ok := board.ParseCastling(parts[2])
	if !ok {
		return board.Position{}, 0, fmt.Errorf("invalid castling in FEN: '%v'", fen)
	}

	// (4) En passant target square in algebraic notation, or "-". If a pawn has just
	// made a 2-square move, this is the position "behind" the pawn.

	var ep board.Square
	if parts[3] != "-" {
		sq, err := board.ParseSquareStr(parts[3])
		if err != nil {
			return board.Position{}, 0, fmt.Errorf("invalid en passant in FEN: '%v'", fen)
		}
		ep = sq
	}

	// (5) Halfmove clock: the number of halfmoves since the last pawn advance or
	// capture, for the fifty move rule.

	counter, err := strconv.Atoi(parts[4])
	if err != nil || counter < 0 {
		return board.Position{}, 0, fmt.Errorf("invalid halfmove in FEN: '%v'", fen)
	}

	// (6) Fullmove number: starts at 1, incremented after Black's move. Informational.

	fullmoves, err := strconv.Atoi(parts[5])
	if err != nil || fullmoves < 0 {
		return board.Position{}, 0, fmt.Errorf("invalid full moves in FEN: '%v'", fen)
	}

	pos, err := board.NewPosition(pieces, active, castling, ep, counter)
	if err != nil {
		return board.Position{}, 0, fmt.Errorf("invalid position in FEN '%v': %v", fen, err)
	}
	return pos, fullmoves, nil
}

// Encode encodes the position in FEN notation with the given fullmove number.
func Encode(pos board.Position, fullmoves int) string {
	var sb strings.Builder
	for r := board.NumRanks; r > 0; r-- {
		blanks := 0
		for f := board.ZeroFile; f < board.NumFiles; f++ {
			color, piece, ok := pos.Square(board.NewSquare(f, r-1))
			if !ok {
				blanks++
				continue
			}

			if blanks > 0 {
				sb.WriteString(strconv.Itoa(blanks))
				blanks = 0
			}
			sb.WriteRune(printPiece(color, piece))
		}

		if blanks > 0 {
			sb.WriteString(strconv.Itoa(blanks))
		}
		if r > 1 {
			sb.WriteString("/")
		}
	}

	ep := "-"
	if sq, ok := pos.EnPassant(); ok {
		ep = sq.String()
	}

	return fmt.Sprintf("%v %v %v %v %v %v", sb.String(), pos.Turn(), pos.Castling(), ep, pos.Counter(), fullmoves)
}

func parseColor(str string) (board.Color, bool) {
	switch str {
	case "w", "W":
		return board.White, true
	case "b", "B":
		return board.Black, true
	default:
		return 0, false
	}
}

func parsePiece(r rune) (board.Color, board.Piece, bool) {
	piece, ok := board.ParsePiece(r)
	if !ok {
		return 0, 0, false
	}
	if unicode.IsUpper(r) {
		return board.White, piece, true
	}
	return board.Black, piece, true
}

func printPiece(c board.Color, p board.Piece) rune {
	r := []rune(p.String())[0]
	if c == board.White {
		return unicode.ToUpper(r)
	}
	return r
}
