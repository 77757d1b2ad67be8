package search_test

import (
	"context"
	"testing"

	"github.com/Ingo60/frech/pkg/eval"
	"github.com/Ingo60/frech/pkg/search"
	"github.com/seekerror/stdlib/pkg/lang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThink(t *testing.T) {
	ctx := context.Background()

	t.Run("deepens", func(t *testing.T) {
		snap := search.Snapshot{
			Root:       decode(t, "4k3/8/8/8/8/8/8/4K2R w K - 0 1"),
			Killers:    search.NewKillers(),
			DepthLimit: lang.Some(uint(3)),
		}

		var depths []int
		search.Think(ctx, snap, func(v search.Variation) bool {
			depths = append(depths, v.Depth)
			assert.NotEmpty(t, v.Moves)
			return true
		})

		assert.Equal(t, depths, []int{1, 2, 3})
	})

	t.Run("stops", func(t *testing.T) {
		snap := search.Snapshot{
			Root:    decode(t, "4k3/8/8/8/8/8/8/4K2R w K - 0 1"),
			Killers: search.NewKillers(),
		}

		calls := 0
		search.Think(ctx, snap, func(v search.Variation) bool {
			calls++
			return false
		})

		assert.Equal(t, calls, 1)
	})

	t.Run("mate", func(t *testing.T) {
		snap := search.Snapshot{
			Root:       decode(t, "6k1/5ppp/8/8/8/8/5PPP/3R2K1 w - - 0 1"),
			Killers:    search.NewKillers(),
			DepthLimit: lang.Some(uint(10)),
		}

		var last search.Variation
		search.Think(ctx, snap, func(v search.Variation) bool {
			last = v
			return true
		})

		// The worker stops on its own once the forced mate is exact.
		assert.Equal(t, last.Score, eval.BlackIsMate)
		require.NotEmpty(t, last.Moves)
		assert.Equal(t, last.Moves[0].String(), "d1d8")
	})

	t.Run("nomoves", func(t *testing.T) {
		// Stalemate: the worker has nothing to suggest and returns at once.
		snap := search.Snapshot{
			Root:    decode(t, "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1"),
			Killers: search.NewKillers(),
		}

		search.Think(ctx, snap, func(v search.Variation) bool {
			t.Errorf("unexpected variation: %v", v)
			return false
		})
	})
}
