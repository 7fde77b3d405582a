package minefield

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playmines/minesweeper-backend/internal/entity"
)

// gridWithMines builds a deterministic grid with mines at the given
// (row, col) positions and exact adjacency counts.
func gridWithMines(width, height int, mines ...[2]int) *entity.Grid {
	grid := entity.NewGrid(width, height)

	for _, mine := range mines {
		grid.Cells[grid.Index(mine[0], mine[1])].IsMine = true
		bumpNeighbors(grid, mine[0], mine[1])
	}

	grid.MineCount = len(mines)

	return grid
}

func TestOpen(t *testing.T) {
	t.Run("Outside coordinates mutate nothing", func(t *testing.T) {
		grid := gridWithMines(4, 4, [2]int{0, 0})

		result := Open(grid, -1, 2)

		require.Equal(t, Outside, result.Outcome)
		require.Empty(t, result.Opened)

		result = Open(grid, 2, 4)

		require.Equal(t, Outside, result.Outcome)
		for _, cell := range grid.Cells {
			require.False(t, cell.IsOpen)
		}
	})

	t.Run("Opening a mine never cascades", func(t *testing.T) {
		// Given: a mine in the middle of an otherwise empty field
		grid := gridWithMines(5, 5, [2]int{2, 2})

		// When: the mine is opened
		result := Open(grid, 2, 2)

		// Then: only that one cell opened and the mine counter moved
		require.Equal(t, HitMine, result.Outcome)
		require.Len(t, result.Opened, 1)
		require.Equal(t, 1, grid.OpenedMines)

		opened := 0
		for _, cell := range grid.Cells {
			if cell.IsOpen {
				opened++
			}
		}
		require.Equal(t, 1, opened)
	})

	t.Run("Numbered cell opens alone", func(t *testing.T) {
		// Given: a cell adjacent to a mine
		grid := gridWithMines(4, 4, [2]int{0, 0})

		// When: its neighbor is opened
		result := Open(grid, 0, 1)

		// Then: it opens without cascading
		require.Equal(t, Cleared, result.Outcome)
		require.Len(t, result.Opened, 1)
		require.Equal(t, 1, result.Opened[0].AdjacentMines)
	})

	t.Run("Zero-adjacency cell cascades", func(t *testing.T) {
		// Given: a single mine in the corner of a 5x5 field
		grid := gridWithMines(5, 5, [2]int{0, 0})

		// When: the far corner (zero adjacency) is opened
		result := Open(grid, 4, 4)

		// Then: everything except the mine opened in one call
		require.Equal(t, Cleared, result.Outcome)
		require.Len(t, result.Opened, 24)

		mine, err := grid.At(0, 0)
		require.NoError(t, err)
		assert.False(t, mine.IsOpen)
	})

	t.Run("Cascade visits each cell at most once", func(t *testing.T) {
		// Given: a mine-free field
		grid := gridWithMines(16, 16)

		// When: any cell is opened
		result := Open(grid, 7, 7)

		// Then: the diff holds every cell exactly once
		require.Len(t, result.Opened, 16*16)

		seen := make(map[int]bool, len(result.Opened))
		for _, cell := range result.Opened {
			index := grid.Index(cell.Row, cell.Col)
			require.False(t, seen[index], "cell (%d, %d) reported twice", cell.Row, cell.Col)
			seen[index] = true
		}
	})

	t.Run("Reopening is a no-op", func(t *testing.T) {
		// Given: an opened cell
		grid := gridWithMines(6, 6, [2]int{5, 5})
		first := Open(grid, 0, 0)
		require.Equal(t, Cleared, first.Outcome)
		require.NotEmpty(t, first.Opened)

		// When: the same coordinate is opened again
		second := Open(grid, 0, 0)

		// Then: nothing changes
		require.Equal(t, AlreadyOpen, second.Outcome)
		require.Empty(t, second.Opened)

		// Then: every cell of the first diff is equally a no-op
		for _, cell := range first.Opened {
			repeat := Open(grid, cell.Row, cell.Col)
			assert.Equal(t, AlreadyOpen, repeat.Outcome)
			assert.Empty(t, repeat.Opened)
		}
	})

	t.Run("Generated field end to end", func(t *testing.T) {
		// Given: a generated 6x6 field with 11 mines
		rng := rand.New(rand.NewSource(7))
		grid := Generate(rng, 6, 6, 11)

		// When: a closed cell is opened
		var row, col int
		for _, cell := range grid.Cells {
			if !cell.IsMine {
				row, col = cell.Row, cell.Col
				break
			}
		}
		result := Open(grid, row, col)

		// Then: the call reports a cleared diff and repeating it is a no-op
		require.Equal(t, Cleared, result.Outcome)
		require.NotEmpty(t, result.Opened)

		repeat := Open(grid, row, col)
		require.Equal(t, AlreadyOpen, repeat.Outcome)
		require.Empty(t, repeat.Opened)
	})
}
