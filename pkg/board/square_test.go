package board_test

import (
	"testing"

	"github.com/Ingo60/frech/pkg/board"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSquare(t *testing.T) {

	t.Run("layout", func(t *testing.T) {
		assert.Equal(t, board.A1, board.Square(0))
		assert.Equal(t, board.H1, board.Square(7))
		assert.Equal(t, board.A2, board.Square(8))
		assert.Equal(t, board.E4, board.Square(28))
		assert.Equal(t, board.H8, board.Square(63))

		assert.Equal(t, board.E4.File(), board.FileE)
		assert.Equal(t, board.E4.Rank(), board.Rank4)
		assert.Equal(t, board.NewSquare(board.FileE, board.Rank4), board.E4)
	})

	t.Run("parse", func(t *testing.T) {
		tests := []struct {
			str      string
			expected board.Square
		}{
			{"a1", board.A1},
			{"e2", board.E2},
			{"h8", board.H8},
			{"C7", board.C7},
		}

		for _, tt := range tests {
			actual, err := board.ParseSquareStr(tt.str)
			require.NoError(t, err)
			assert.Equal(t, actual, tt.expected)
		}

		for _, bad := range []string{"", "a", "a0", "a9", "i1", "e22"} {
			_, err := board.ParseSquareStr(bad)
			assert.Error(t, err, "expected error for %v", bad)
		}
	})

	t.Run("mirror", func(t *testing.T) {
		assert.Equal(t, board.A1.Mirror(), board.A8)
		assert.Equal(t, board.C2.Mirror(), board.C7)
		assert.Equal(t, board.H8.Mirror(), board.H1)
	})

	t.Run("string", func(t *testing.T) {
		assert.Equal(t, board.A1.String(), "a1")
		assert.Equal(t, board.E4.String(), "e4")
		assert.Equal(t, board.H8.String(), "h8")
	})
}
