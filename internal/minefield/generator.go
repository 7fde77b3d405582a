package minefield

import (
	"math/rand"

	"github.com/playmines/minesweeper-backend/internal/entity"
)

// Generate builds a fresh grid with mineCount mines placed uniformly at
// random. A request for more mines than the grid has cells saturates at
// width*height instead of failing.
func Generate(rng *rand.Rand, width, height, mineCount int) *entity.Grid {
	grid := entity.NewGrid(width, height)

	if max := width * height; mineCount > max {
		mineCount = max
	}

	placed := 0
	for placed < mineCount {
		row, col := rng.Intn(height), rng.Intn(width)

		cell := &grid.Cells[grid.Index(row, col)]
		if cell.IsMine {
			continue
		}

		cell.IsMine = true
		bumpNeighbors(grid, row, col)
		placed++
	}

	grid.MineCount = placed

	return grid
}

// bumpNeighbors increments the adjacency count of every in-bounds cell
// around a newly placed mine.
func bumpNeighbors(grid *entity.Grid, row, col int) {
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			if dr == 0 && dc == 0 {
				continue
			}

			r, c := row+dr, col+dc
			if !grid.Contains(r, c) {
				continue
			}

			grid.Cells[grid.Index(r, c)].AdjacentMines++
		}
	}
}
