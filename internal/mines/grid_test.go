package mines

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMineCount(t *testing.T) {
	tests := []struct {
		size, want int
	}{
		{3, 1},
		{4, 2},
		{5, 3},
		{8, 9},
		{10, 15},
		{20, 60},
		{30, 135},
	}
	for _, test := range tests {
		assert.Equal(t, test.want, MineCount(test.size), "size %d", test.size)
	}
}

func TestNewGrid(t *testing.T) {
	for _, size := range []int{-1, 0, 2, 31} {
		_, err := NewGrid(size)
		assert.True(t, errors.Is(err, ErrInvalidSize), "size %d: %v", size, err)
	}

	g, err := NewGrid(4)
	require.NoError(t, err)
	assert.Equal(t, 4, g.Size())
	for row := range 4 {
		for col := range 4 {
			c, ok := g.At(row, col)
			assert.True(t, ok)
			assert.Equal(t, Cell{}, c)
		}
	}
}

func TestInBounds(t *testing.T) {
	g, err := NewGrid(3)
	require.NoError(t, err)

	assert.True(t, g.InBounds(0, 0))
	assert.True(t, g.InBounds(2, 2))
	assert.False(t, g.InBounds(-1, 0))
	assert.False(t, g.InBounds(0, 3))
	assert.False(t, g.InBounds(3, 0))

	_, ok := g.At(3, 3)
	assert.False(t, ok)
	assert.False(t, g.SetCell(-1, 0, Cell{HasMine: true}))
}

func TestPlaceMines(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	for size := MinSize; size <= MaxSize; size++ {
		for range 5 {
			g, err := NewGrid(size)
			require.NoError(t, err)
			require.NoError(t, g.PlaceMines(MineCount(size), r))

			assert.Equal(t, MineCount(size), g.Mines(), "size %d", size)
			last := size - 1
			for _, p := range []Point{{0, 0}, {0, last}, {last, 0}, {last, last}} {
				c, _ := g.At(p.Row, p.Col)
				assert.False(t, c.HasMine, "size %d: mine in corner %v", size, p)
			}
		}
	}
}

func TestPlaceMinesFillsEveryNonCorner(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	g, err := NewGrid(3)
	require.NoError(t, err)

	require.NoError(t, g.PlaceMines(5, r))
	assert.Equal(t, 5, g.Mines())

	err = g.PlaceMines(1, r)
	assert.True(t, errors.Is(err, ErrTooManyMines), "%v", err)
}

func TestPlaceMineAt(t *testing.T) {
	g, err := NewGrid(5)
	require.NoError(t, err)

	assert.False(t, g.PlaceMineAt(0, 0))
	assert.False(t, g.PlaceMineAt(4, 4))
	assert.False(t, g.PlaceMineAt(5, 2))
	assert.True(t, g.PlaceMineAt(2, 2))
	assert.False(t, g.PlaceMineAt(2, 2))
	assert.Equal(t, 1, g.Mines())
}

func TestComputeAdjacency(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 4))
	for _, size := range []int{3, 5, 8, 13, 30} {
		g, err := NewGrid(size)
		require.NoError(t, err)
		require.NoError(t, g.PlaceMines(MineCount(size), r))
		g.ComputeAdjacency()

		for row := range size {
			for col := range size {
				c, _ := g.At(row, col)
				if c.HasMine {
					continue
				}
				want := 0
				for dr := -1; dr <= 1; dr++ {
					for dc := -1; dc <= 1; dc++ {
						n, ok := g.At(row+dr, col+dc)
						if ok && n.HasMine {
							want++
						}
					}
				}
				assert.Equal(t, want, c.AdjacentMines, "size %d @ %d:%d", size, row, col)
			}
		}
	}
}

func TestNeighbors(t *testing.T) {
	g, err := NewGrid(4)
	require.NoError(t, err)

	count := func(row, col int) (n int) {
		for range g.Neighbors(row, col) {
			n++
		}
		return
	}
	assert.Equal(t, 3, count(0, 0))
	assert.Equal(t, 5, count(0, 1))
	assert.Equal(t, 8, count(1, 1))
	assert.Equal(t, 3, count(3, 3))
}

func TestCloneIsDeep(t *testing.T) {
	g, err := NewGrid(3)
	require.NoError(t, err)
	clone := g.Clone()
	clone.PlaceMineAt(1, 1)

	c, _ := g.At(1, 1)
	assert.False(t, c.HasMine)
}

func TestGridString(t *testing.T) {
	g, err := NewGrid(3)
	require.NoError(t, err)
	g.PlaceMineAt(1, 1)
	game := NewGameFromGrid(g)
	game.ToggleFlag(0, 1)
	game.RevealCell(0, 0)

	assert.Equal(t, "1 F .\n. . .\n. . .\n", g.String())
}

func TestCellStateText(t *testing.T) {
	b, err := Flagged.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "flagged", string(b))

	var state CellState
	require.NoError(t, state.UnmarshalText([]byte("revealed")))
	assert.Equal(t, Revealed, state)
	assert.Error(t, state.UnmarshalText([]byte("CellState(7)")))

	_, err = CellState(7).MarshalText()
	assert.Error(t, err)
	assert.False(t, CellState(-1).Valid())
	assert.Equal(t, "CellState(7)", CellState(7).String())
}
