package entity

import (
	"fmt"

	"github.com/playmines/minesweeper-backend/internal/apperror"
)

// Cell is a single grid position. IsMine and AdjacentMines are fixed at
// generation time; IsOpen only ever flips from false to true.
type Cell struct {
	Row           int  `json:"row"`
	Col           int  `json:"col"`
	IsMine        bool `json:"isMine"`
	AdjacentMines int  `json:"adjacentMineCount"`
	IsOpen        bool `json:"isOpen"`
}

// Grid is one live minefield. Cells are stored row-major, so the cell at
// (row, col) lives at index row*Width+col.
type Grid struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	MineCount   int    `json:"mineCount"`
	OpenedMines int    `json:"openedMines"`
	Cells       []Cell `json:"cells"`
}

// NewGrid returns a grid with every cell closed, mine-free and zero adjacency.
func NewGrid(width, height int) *Grid {
	cells := make([]Cell, width*height)
	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			cells[row*width+col] = Cell{Row: row, Col: col}
		}
	}

	return &Grid{
		Width:  width,
		Height: height,
		Cells:  cells,
	}
}

func (that *Grid) Contains(row, col int) bool {
	return row >= 0 && row < that.Height && col >= 0 && col < that.Width
}

func (that *Grid) Index(row, col int) int {
	return row*that.Width + col
}

// At returns a pointer into the grid, or ErrOutOfBounds when the coordinate
// falls outside [0,width)x[0,height).
func (that *Grid) At(row, col int) (*Cell, error) {
	if !that.Contains(row, col) {
		return nil, fmt.Errorf("%w: (%d, %d)", apperror.ErrOutOfBounds, row, col)
	}

	return &that.Cells[that.Index(row, col)], nil
}
