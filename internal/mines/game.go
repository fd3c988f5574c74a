package mines

import (
	"math/rand/v2"

	"github.com/gammazero/deque"
	"github.com/sirupsen/logrus"
)

type Outcome int

const (
	Continue Outcome = iota
	Win
	Loss
)

func (o Outcome) String() string {
	switch o {
	case Win:
		return "win"
	case Loss:
		return "loss"
	default:
		return "continue"
	}
}

// GameState is the reveal engine for a single round. RemainingCells counts
// hidden safe cells; it reaches zero exactly when the round is won.
type GameState struct {
	Grid              *Grid
	MineCount         int
	RemainingCells    int
	GameOver, GameWon bool
}

func NewGame(size int, r *rand.Rand) (*GameState, error) {
	grid, err := NewGrid(size)
	if err != nil {
		return nil, err
	}
	if err := grid.PlaceMines(MineCount(size), r); err != nil {
		return nil, err
	}
	state := NewGameFromGrid(grid)
	Log.WithFields(logrus.Fields{
		"size":  size,
		"mines": state.MineCount,
	}).Debug("new game")
	return state, nil
}

// NewGameFromGrid starts a round on a grid whose mines are already placed.
func NewGameFromGrid(grid *Grid) *GameState {
	grid.ComputeAdjacency()
	mineCount := grid.Mines()
	return &GameState{
		Grid:           grid,
		MineCount:      mineCount,
		RemainingCells: grid.Size()*grid.Size() - mineCount,
	}
}

func (s *GameState) FlaggedCount() int {
	return s.Grid.Flagged()
}

// RevealCell opens a hidden cell. Opening a zero cell floods outward through
// every connected zero cell and its numbered border.
func (s *GameState) RevealCell(row, col int) Outcome {
	if s.GameOver || !s.Grid.InBounds(row, col) {
		return Continue
	}
	p := Point{row, col}
	c := s.Grid.cell(p)
	if c.State != Hidden {
		return Continue
	}
	if c.HasMine {
		c.State = Revealed
		Log.WithFields(logrus.Fields{"row": row, "col": col}).Debug("stepped on a mine")
		s.RevealAllMines()
		return s.lose()
	}
	s.flood(p)
	return s.checkWin()
}

func (s *GameState) open(p Point) {
	s.Grid.cell(p).State = Revealed
	s.RemainingCells--
}

// Every cell is marked revealed before it is queued, so it is queued at most
// once and the walk is linear in the number of cells.
func (s *GameState) flood(start Point) {
	var todo deque.Deque[Point]
	s.open(start)
	todo.PushBack(start)
	for todo.Len() > 0 {
		p := todo.PopFront()
		if s.Grid.cell(p).AdjacentMines != 0 {
			continue
		}
		for n := range s.Grid.Neighbors(p.Row, p.Col) {
			if c := s.Grid.cell(n); c.State == Hidden && !c.HasMine {
				s.open(n)
				todo.PushBack(n)
			}
		}
	}
}

// ChordReveal opens every unflagged neighbour of a revealed number once the
// flags around it add up to exactly that number.
func (s *GameState) ChordReveal(row, col int) Outcome {
	if s.GameOver || !s.Grid.InBounds(row, col) {
		return Continue
	}
	c := s.Grid.cell(Point{row, col})
	if c.State != Revealed || c.HasMine || c.AdjacentMines == 0 {
		return Continue
	}

	var (
		flagged    int
		misflagged bool
		hidden     = make([]Point, 0, 8)
	)
	for n := range s.Grid.Neighbors(row, col) {
		switch nc := s.Grid.cell(n); nc.State {
		case Flagged:
			flagged++
			if !nc.HasMine {
				misflagged = true
			}
		case Hidden:
			hidden = append(hidden, n)
		}
	}
	if flagged != c.AdjacentMines {
		return Continue
	}

	if misflagged {
		Log.WithFields(logrus.Fields{"row": row, "col": col}).Debug("chord on a wrong flag")
		s.revealMinesAround(row, col)
		return s.lose()
	}
	for _, n := range hidden {
		if s.Grid.cell(n).HasMine {
			s.revealMinesAround(row, col)
			return s.lose()
		}
	}

	outcome := Continue
	for _, n := range hidden {
		if o := s.RevealCell(n.Row, n.Col); o != Continue {
			outcome = o
		}
	}
	return outcome
}

func (s *GameState) ToggleFlag(row, col int) {
	if s.GameOver || !s.Grid.InBounds(row, col) {
		return
	}
	c := s.Grid.cell(Point{row, col})
	switch c.State {
	case Hidden:
		c.State = Flagged
	case Flagged:
		c.State = Hidden
	}
}

// RevealAllMines exposes every mine, flagged ones included.
func (s *GameState) RevealAllMines() {
	for row := range s.Grid.size {
		for col := range s.Grid.size {
			if c := s.Grid.cell(Point{row, col}); c.HasMine {
				c.State = Revealed
			}
		}
	}
}

func (s *GameState) revealMinesAround(row, col int) {
	for n := range s.Grid.Neighbors(row, col) {
		if c := s.Grid.cell(n); c.HasMine {
			c.State = Revealed
		}
	}
}

func (s *GameState) lose() Outcome {
	s.GameOver = true
	s.GameWon = false
	return Loss
}

func (s *GameState) checkWin() Outcome {
	if s.RemainingCells != 0 {
		return Continue
	}
	s.GameOver = true
	s.GameWon = true
	Log.WithField("size", s.Grid.Size()).Debug("round won")
	return Win
}
