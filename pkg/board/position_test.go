package board_test

import (
	"testing"

	"github.com/Ingo60/frech/pkg/board"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kings(extra ...board.Placement) []board.Placement {
	ret := []board.Placement{
		{Square: board.E1, Color: board.White, Piece: board.King},
		{Square: board.E8, Color: board.Black, Piece: board.King},
	}
	return append(ret, extra...)
}

func TestPosition(t *testing.T) {

	t.Run("decode", func(t *testing.T) {
		placements := kings(
			board.Placement{Square: board.A2, Color: board.White, Piece: board.Pawn},
			board.Placement{Square: board.B1, Color: board.White, Piece: board.Knight},
			board.Placement{Square: board.C1, Color: board.White, Piece: board.Bishop},
			board.Placement{Square: board.A1, Color: board.White, Piece: board.Rook},
			board.Placement{Square: board.D8, Color: board.Black, Piece: board.Queen},
		)
		pos, err := board.NewPosition(placements, board.White, 0, board.ZeroSquare, 0)
		require.NoError(t, err)

		for _, p := range placements {
			c, piece, ok := pos.Square(p.Square)
			require.True(t, ok, "expected piece at %v", p.Square)
			assert.Equal(t, c, p.Color)
			assert.Equal(t, piece, p.Piece)
		}

		_, _, ok := pos.Square(board.E4)
		assert.False(t, ok)
		assert.True(t, pos.IsEmpty(board.E4))
		assert.Equal(t, pos.Occupied().PopCount(), len(placements))
	})

	t.Run("invalid", func(t *testing.T) {
		// No kings.
		_, err := board.NewPosition([]board.Placement{
			{Square: board.A2, Color: board.White, Piece: board.Pawn},
		}, board.White, 0, board.ZeroSquare, 0)
		assert.Error(t, err)

		// Duplicate placement.
		_, err = board.NewPosition(kings(
			board.Placement{Square: board.A2, Color: board.White, Piece: board.Pawn},
			board.Placement{Square: board.A2, Color: board.Black, Piece: board.Rook},
		), board.White, 0, board.ZeroSquare, 0)
		assert.Error(t, err)

		// Adjacent kings.
		_, err = board.NewPosition([]board.Placement{
			{Square: board.E4, Color: board.White, Piece: board.King},
			{Square: board.E5, Color: board.Black, Piece: board.King},
		}, board.White, 0, board.ZeroSquare, 0)
		assert.Error(t, err)

		// En passant square on a bad rank.
		_, err = board.NewPosition(kings(), board.White, 0, board.E4, 0)
		assert.Error(t, err)
	})

	t.Run("flags", func(t *testing.T) {
		pos, err := board.NewPosition(kings(
			board.Placement{Square: board.A1, Color: board.White, Piece: board.Rook},
			board.Placement{Square: board.H8, Color: board.Black, Piece: board.Rook},
		), board.Black, board.WhiteQueenSideCastle|board.BlackKingSideCastle, board.E3, 0)
		require.NoError(t, err)

		assert.Equal(t, pos.Turn(), board.Black)
		assert.Equal(t, pos.Castling(), board.WhiteQueenSideCastle|board.BlackKingSideCastle)
		ep, ok := pos.EnPassant()
		assert.True(t, ok)
		assert.Equal(t, ep, board.E3)
		assert.False(t, pos.HasCastled(board.White))
		assert.False(t, pos.HasCastled(board.Black))
	})

	t.Run("attacked", func(t *testing.T) {
		pos, err := board.NewPosition(kings(
			board.Placement{Square: board.D4, Color: board.White, Piece: board.Rook},
			board.Placement{Square: board.G7, Color: board.Black, Piece: board.Bishop},
			board.Placement{Square: board.E2, Color: board.White, Piece: board.Pawn},
		), board.White, 0, board.ZeroSquare, 0)
		require.NoError(t, err)

		assert.True(t, pos.IsAttacked(board.D8, board.White))  // rook up the file
		assert.False(t, pos.IsAttacked(board.C5, board.White)) // not a rook line
		assert.True(t, pos.IsAttacked(board.D4, board.Black))  // bishop g7-d4
		assert.True(t, pos.IsAttacked(board.F3, board.White))  // pawn capture
		assert.False(t, pos.IsAttacked(board.E3, board.White)) // pawns do not attack forward
		assert.True(t, pos.IsAttacked(board.E2, board.White))  // own king defends
	})

	t.Run("checked", func(t *testing.T) {
		pos, err := board.NewPosition(kings(
			board.Placement{Square: board.E5, Color: board.Black, Piece: board.Rook},
		), board.White, 0, board.ZeroSquare, 0)
		require.NoError(t, err)

		assert.True(t, pos.IsChecked(board.White))
		assert.False(t, pos.IsChecked(board.Black))
	})

	t.Run("equals", func(t *testing.T) {
		a, err := board.NewPosition(kings(), board.White, 0, board.ZeroSquare, 0)
		require.NoError(t, err)
		b, err := board.NewPosition(kings(), board.White, 0, board.ZeroSquare, 42)
		require.NoError(t, err)
		c, err := board.NewPosition(kings(), board.Black, 0, board.ZeroSquare, 0)
		require.NoError(t, err)

		assert.True(t, a.Equals(b)) // counter is excluded
		assert.False(t, a.Equals(c))
	})

	t.Run("flipturn", func(t *testing.T) {
		pos, err := board.NewPosition(kings(), board.White, 0, board.ZeroSquare, 0)
		require.NoError(t, err)

		flipped := pos.FlipTurn()
		assert.Equal(t, flipped.Turn(), board.Black)
		assert.Equal(t, flipped.Hash(), flipped.RecomputedHash())
		assert.NotEqual(t, flipped.Hash(), pos.Hash())
	})
}
