package round

import "github.com/vancomm/sweeper/internal/mines"

// CellView is what a renderer may know about a cell. Mine and Adjacent are
// only filled in once the cell is revealed.
type CellView struct {
	State    mines.CellState `json:"state"`
	Mine     bool            `json:"mine,omitempty"`
	Adjacent int             `json:"adjacent,omitempty"`
}

type View struct {
	Mode           string       `json:"mode"`
	Size           int          `json:"size"`
	Status         Status       `json:"status"`
	TotalMines     int          `json:"total_mines"`
	RemainingMines int          `json:"remaining_mines"`
	ElapsedTime    float64      `json:"elapsed_time"`
	Cells          [][]CellView `json:"cells"`
}

func (c *Controller) View() View {
	grid := c.game.Grid
	cells := make([][]CellView, grid.Size())
	for row := range cells {
		cells[row] = make([]CellView, grid.Size())
		for col := range cells[row] {
			cell, _ := grid.At(row, col)
			v := CellView{State: cell.State}
			if cell.State == mines.Revealed {
				v.Mine = cell.HasMine
				if !cell.HasMine {
					v.Adjacent = cell.AdjacentMines
				}
			}
			cells[row][col] = v
		}
	}
	return View{
		Mode:           c.mode.Name,
		Size:           grid.Size(),
		Status:         c.Status(),
		TotalMines:     c.game.MineCount,
		RemainingMines: c.remainingMines,
		ElapsedTime:    c.gameTime,
		Cells:          cells,
	}
}
