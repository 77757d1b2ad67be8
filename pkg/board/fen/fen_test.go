package fen_test

import (
	"testing"

	"github.com/Ingo60/frech/pkg/board"
	"github.com/Ingo60/frech/pkg/board/fen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {

	t.Run("initial", func(t *testing.T) {
		pos, fullmoves, err := fen.Decode(fen.Initial)
		require.NoError(t, err)

		assert.Equal(t, pos.Turn(), board.White)
		assert.Equal(t, pos.Castling(), board.FullCastlingRights)
		assert.Equal(t, pos.Counter(), 0)
		assert.Equal(t, fullmoves, 1)
		assert.Equal(t, pos.Occupied().PopCount(), 32)

		_, ok := pos.EnPassant()
		assert.False(t, ok)

		c, piece, ok := pos.Square(board.E1)
		require.True(t, ok)
		assert.Equal(t, c, board.White)
		assert.Equal(t, piece, board.King)

		c, piece, ok = pos.Square(board.D8)
		require.True(t, ok)
		assert.Equal(t, c, board.Black)
		assert.Equal(t, piece, board.Queen)
	})

	t.Run("fields", func(t *testing.T) {
		pos, fullmoves, err := fen.Decode("8/8/8/8/8/3k4/8/R3K2R b KQ e3 13 42")
		require.NoError(t, err)

		assert.Equal(t, pos.Turn(), board.Black)
		assert.Equal(t, pos.Castling(), board.WhiteKingSideCastle|board.WhiteQueenSideCastle)
		assert.Equal(t, pos.Counter(), 13)
		assert.Equal(t, fullmoves, 42)

		ep, ok := pos.EnPassant()
		require.True(t, ok)
		assert.Equal(t, ep, board.E3)
	})

	t.Run("invalid", func(t *testing.T) {
		tests := []string{
			"",
			"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq -", // missing fields
			"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBN w KQkq - 0 1",   // short rank
			"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNRR w KQkq - 0 1", // long rank
			"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR x KQkq - 0 1",  // bad color
			"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQxq - 0 1",  // bad castling
			"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq e9 0 1", // bad en passant
			"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - x 1",  // bad halfmove
			"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 x",  // bad fullmove
			"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNZ w KQkq - 0 1",  // bad piece
			"8/8/8/8/8/8/8/8 w - - 0 1",                                 // no kings
		}

		for _, tt := range tests {
			_, _, err := fen.Decode(tt)
			assert.Error(t, err, "expected error for '%v'", tt)
		}
	})
}

func TestEncode(t *testing.T) {

	t.Run("roundtrip", func(t *testing.T) {
		tests := []string{
			fen.Initial,
			"8/8/8/8/8/3k4/8/R3K2R w KQ - 0 1",
			"4k3/8/8/8/4P3/8/8/4K3 b - e3 0 1",
			"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 3 9",
			"8/4P1k1/8/8/8/8/4K3/8 w - - 11 61",
		}

		for _, tt := range tests {
			pos, fullmoves, err := fen.Decode(tt)
			require.NoError(t, err)
			assert.Equal(t, fen.Encode(pos, fullmoves), tt)
		}
	})

	t.Run("reachable", func(t *testing.T) {
		// decode(encode(P)) equals P for positions reached by play.
		pos, _, err := fen.Decode(fen.Initial)
		require.NoError(t, err)

		for _, str := range []string{"e2e4", "c7c5", "g1f3", "d7d6", "d2d4", "c5d4"} {
			candidate, err := board.ParseMove(str)
			require.NoError(t, err)
			for _, m := range pos.LegalMoves() {
				if candidate.Equals(m) {
					pos = pos.Apply(m)
					break
				}
			}

			again, _, err := fen.Decode(fen.Encode(pos, 1))
			require.NoError(t, err)
			assert.True(t, again.Equals(pos), "round trip diverged after %v", str)
			assert.Equal(t, again.Counter(), pos.Counter())
			assert.Equal(t, again.Hash(), pos.Hash())
		}
	})
}
