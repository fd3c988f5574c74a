package mines

import (
	"errors"
	"fmt"
	"iter"
	"math/rand/v2"
	"strconv"
	"strings"
)

const (
	MinSize = 3
	MaxSize = 30
)

var (
	ErrInvalidSize  = errors.New("invalid grid size")
	ErrTooManyMines = errors.New("too many mines for grid")
)

type CellState int32

const (
	Hidden CellState = iota
	Revealed
	Flagged
)

func (s CellState) Valid() bool {
	return Hidden <= s && s <= Flagged
}

func (s CellState) String() string {
	switch s {
	case Hidden:
		return "hidden"
	case Revealed:
		return "revealed"
	case Flagged:
		return "flagged"
	default:
		return "CellState(" + strconv.Itoa(int(s)) + ")"
	}
}

// [CellState] implements [encoding.TextMarshaler]
func (s CellState) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid cell state %d", int32(s))
	}
	return []byte(s.String()), nil
}

func (s *CellState) UnmarshalText(text []byte) error {
	for _, state := range []CellState{Hidden, Revealed, Flagged} {
		if string(text) == state.String() {
			*s = state
			return nil
		}
	}
	return fmt.Errorf("unknown cell state %q", text)
}

// AdjacentMines is only meaningful when HasMine is false.
type Cell struct {
	HasMine       bool
	State         CellState
	AdjacentMines int
}

func (c Cell) symbol() string {
	switch {
	case c.State == Flagged:
		return "F"
	case c.State == Hidden:
		return "."
	case c.HasMine:
		return "*"
	case c.AdjacentMines == 0:
		return " "
	default:
		return strconv.Itoa(c.AdjacentMines)
	}
}

type Point struct {
	Row, Col int
}

// Grid is a square field of cells indexed [row][col], row growing downward.
type Grid struct {
	size  int
	cells [][]Cell
}

// MineCount is max(1, floor(size*size*0.15)), computed in integers so that
// sizes like 10 or 20 do not lose a mine to float rounding.
func MineCount(size int) int {
	return max(1, size*size*15/100)
}

func NewGrid(size int) (*Grid, error) {
	if size < MinSize || size > MaxSize {
		return nil, fmt.Errorf(
			"%w: %d (want %d..%d)", ErrInvalidSize, size, MinSize, MaxSize,
		)
	}
	cells := make([][]Cell, size)
	for row := range cells {
		cells[row] = make([]Cell, size)
	}
	return &Grid{size: size, cells: cells}, nil
}

func (g *Grid) Size() int {
	return g.size
}

func (g *Grid) InBounds(row, col int) bool {
	return 0 <= row && row < g.size && 0 <= col && col < g.size
}

func (g *Grid) At(row, col int) (Cell, bool) {
	if !g.InBounds(row, col) {
		return Cell{}, false
	}
	return g.cells[row][col], true
}

// SetCell overwrites a cell verbatim. It is meant for restoring saved grids.
func (g *Grid) SetCell(row, col int, c Cell) bool {
	if !g.InBounds(row, col) {
		return false
	}
	g.cells[row][col] = c
	return true
}

func (g *Grid) cell(p Point) *Cell {
	return &g.cells[p.Row][p.Col]
}

func (g *Grid) isCorner(row, col int) bool {
	last := g.size - 1
	return (row == 0 || row == last) && (col == 0 || col == last)
}

// PlaceMines samples uniformly random cells until count distinct non-corner
// cells are mined. Clustering is allowed.
func (g *Grid) PlaceMines(count int, r *rand.Rand) error {
	if free := g.size*g.size - 4 - g.Mines(); count > free {
		return fmt.Errorf("%w: %d mines, %d free cells", ErrTooManyMines, count, free)
	}
	for placed := 0; placed < count; {
		if g.PlaceMineAt(r.IntN(g.size), r.IntN(g.size)) {
			placed++
		}
	}
	return nil
}

// PlaceMineAt mines a single cell. Corners, out-of-bounds and already mined
// cells are refused.
func (g *Grid) PlaceMineAt(row, col int) bool {
	if !g.InBounds(row, col) || g.isCorner(row, col) || g.cells[row][col].HasMine {
		return false
	}
	g.cells[row][col].HasMine = true
	return true
}

func (g *Grid) ComputeAdjacency() {
	for row := range g.size {
		for col := range g.size {
			c := &g.cells[row][col]
			if c.HasMine {
				continue
			}
			c.AdjacentMines = 0
			for n := range g.Neighbors(row, col) {
				if g.cell(n).HasMine {
					c.AdjacentMines++
				}
			}
		}
	}
}

// Neighbors yields the up to eight in-bounds cells at Chebyshev distance 1.
func (g *Grid) Neighbors(row, col int) iter.Seq[Point] {
	return func(yield func(Point) bool) {
		for dr := -1; dr <= 1; dr++ {
			for dc := -1; dc <= 1; dc++ {
				if dr == 0 && dc == 0 || !g.InBounds(row+dr, col+dc) {
					continue
				}
				if !yield(Point{row + dr, col + dc}) {
					return
				}
			}
		}
	}
}

func (g *Grid) count(pred func(Cell) bool) (n int) {
	for _, cells := range g.cells {
		for _, c := range cells {
			if pred(c) {
				n++
			}
		}
	}
	return
}

func (g *Grid) Mines() int {
	return g.count(func(c Cell) bool { return c.HasMine })
}

func (g *Grid) Flagged() int {
	return g.count(func(c Cell) bool { return c.State == Flagged })
}

func (g *Grid) Clone() *Grid {
	clone := &Grid{size: g.size, cells: make([][]Cell, g.size)}
	for row := range g.cells {
		clone.cells[row] = append([]Cell(nil), g.cells[row]...)
	}
	return clone
}

func (g *Grid) String() string {
	var b strings.Builder
	for _, cells := range g.cells {
		for col, c := range cells {
			if col > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(c.symbol())
		}
		b.WriteByte('\n')
	}
	return b.String()
}
