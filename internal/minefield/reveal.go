package minefield

import "github.com/playmines/minesweeper-backend/internal/entity"

type Outcome int

const (
	// Outside means the coordinate missed the grid entirely; nothing changed.
	Outside Outcome = iota
	// AlreadyOpen means the target cell was open before the call; nothing changed.
	AlreadyOpen
	// HitMine means the target was a closed mine. Only that one cell opens.
	HitMine
	// Cleared means a closed non-mine cell opened, possibly cascading.
	Cleared
)

func (that Outcome) String() string {
	switch that {
	case Outside:
		return "outside"
	case AlreadyOpen:
		return "alreadyOpen"
	case HitMine:
		return "hitMine"
	case Cleared:
		return "cleared"
	default:
		return "unknown"
	}
}

// RevealResult reports what a single Open call did. Opened holds every cell
// that transitioned from closed to open, so callers can broadcast a diff
// instead of the whole grid.
type RevealResult struct {
	Outcome Outcome
	Opened  []entity.Cell
}

// Open opens the cell at (row, col). Opening a mine never cascades. Opening
// a zero-adjacency cell floods outward through zero-adjacency neighbors via
// an explicit stack; numbered cells open but do not propagate. Each cell is
// visited at most once, so the walk is bounded by width*height.
func Open(grid *entity.Grid, row, col int) RevealResult {
	target, err := grid.At(row, col)
	if err != nil {
		return RevealResult{Outcome: Outside}
	}

	if target.IsOpen {
		return RevealResult{Outcome: AlreadyOpen}
	}

	target.IsOpen = true

	if target.IsMine {
		grid.OpenedMines++
		return RevealResult{Outcome: HitMine, Opened: []entity.Cell{*target}}
	}

	opened := []entity.Cell{*target}

	if target.AdjacentMines == 0 {
		opened = append(opened, cascade(grid, row, col)...)
	}

	return RevealResult{Outcome: Cleared, Opened: opened}
}

// cascade floods outward from an already-opened zero-adjacency cell.
func cascade(grid *entity.Grid, row, col int) []entity.Cell {
	var opened []entity.Cell

	frontier := [][2]int{{row, col}}
	for len(frontier) > 0 {
		r, c := frontier[len(frontier)-1][0], frontier[len(frontier)-1][1]
		frontier = frontier[:len(frontier)-1]

		for dr := -1; dr <= 1; dr++ {
			for dc := -1; dc <= 1; dc++ {
				if dr == 0 && dc == 0 {
					continue
				}

				nr, nc := r+dr, c+dc
				if !grid.Contains(nr, nc) {
					continue
				}

				cell := &grid.Cells[grid.Index(nr, nc)]
				if cell.IsOpen || cell.IsMine {
					continue
				}

				cell.IsOpen = true
				opened = append(opened, *cell)

				if cell.AdjacentMines == 0 {
					frontier = append(frontier, [2]int{nr, nc})
				}
			}
		}
	}

	return opened
}
