package minefield

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	t.Run("Places the requested number of mines", func(t *testing.T) {
		// Given: a seeded generator
		rng := rand.New(rand.NewSource(1))

		// When: a 9x9 field with 10 mines is generated
		grid := Generate(rng, 9, 9, 10)

		// Then: exactly 10 cells are mines and the count is recorded
		mines := 0
		for _, cell := range grid.Cells {
			if cell.IsMine {
				mines++
			}
		}

		require.Equal(t, 10, mines)
		require.Equal(t, 10, grid.MineCount)
	})

	t.Run("Every cell starts closed", func(t *testing.T) {
		rng := rand.New(rand.NewSource(2))

		grid := Generate(rng, 6, 6, 11)

		for _, cell := range grid.Cells {
			require.False(t, cell.IsOpen)
		}
		require.Zero(t, grid.OpenedMines)
	})

	t.Run("Adjacency counts are exact", func(t *testing.T) {
		// Given: a generated field
		rng := rand.New(rand.NewSource(3))
		grid := Generate(rng, 8, 8, 20)

		// Then: every cell's count matches a recount of its in-bounds neighbors
		for row := 0; row < grid.Height; row++ {
			for col := 0; col < grid.Width; col++ {
				expected := 0
				for dr := -1; dr <= 1; dr++ {
					for dc := -1; dc <= 1; dc++ {
						if dr == 0 && dc == 0 {
							continue
						}
						r, c := row+dr, col+dc
						if grid.Contains(r, c) && grid.Cells[grid.Index(r, c)].IsMine {
							expected++
						}
					}
				}

				assert.Equal(t, expected, grid.Cells[grid.Index(row, col)].AdjacentMines,
					"cell (%d, %d)", row, col)
			}
		}
	})

	t.Run("Mine count saturates at grid capacity", func(t *testing.T) {
		// Given: a request for more mines than the grid has cells
		rng := rand.New(rand.NewSource(4))

		// When: a 3x3 field with 100 mines is generated
		grid := Generate(rng, 3, 3, 100)

		// Then: only 9 mines are placed, without error
		require.Equal(t, 9, grid.MineCount)
		for _, cell := range grid.Cells {
			assert.True(t, cell.IsMine)
		}
	})
}
