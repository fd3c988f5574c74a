package main

import (
	"bytes"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vancomm/sweeper/internal/mines"
	"github.com/vancomm/sweeper/internal/round"
)

func TestMain(m *testing.M) {
	for _, l := range []*logrus.Logger{log, mines.Log, round.Log} {
		l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
		l.SetLevel(logrus.WarnLevel)
	}
	os.Exit(m.Run())
}

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func newTestDriver(t *testing.T) (*driver, *bytes.Buffer) {
	t.Helper()
	c, err := round.New(round.Desktop, rand.New(rand.NewPCG(1, 2)))
	require.NoError(t, err)
	var out bytes.Buffer
	clock := &fakeClock{}
	return newDriver(c, &out, clock.now), &out
}

func hiddenCell(c *round.Controller, mine bool) (int, int) {
	grid := c.Snapshot().Grid
	for row := range grid.Size() {
		for col := range grid.Size() {
			cell, _ := grid.At(row, col)
			if cell.HasMine == mine && cell.State == mines.Hidden {
				return row, col
			}
		}
	}
	return -1, -1
}

func TestRender(t *testing.T) {
	v := round.View{
		Mode:           "mobile",
		Size:           3,
		Status:         round.Lost,
		RemainingMines: 0,
		ElapsedTime:    2.5,
		Cells: [][]round.CellView{
			{{State: mines.Revealed, Adjacent: 1}, {State: mines.Flagged}, {State: mines.Hidden}},
			{{State: mines.Revealed}, {State: mines.Revealed, Mine: true}, {State: mines.Hidden}},
			{{State: mines.Hidden}, {State: mines.Hidden}, {State: mines.Hidden}},
		},
	}

	want := "mobile 3x3  mines left 0  time 2.5s  lost\n" +
		"     0  1  2\n" +
		"  0  1  F  .\n" +
		"  1     *  .\n" +
		"  2  .  .  .\n" +
		"boom. n to try again\n"
	assert.Equal(t, want, Render(v))
}

func TestDriverMoves(t *testing.T) {
	d, out := newTestDriver(t)
	row, col := hiddenCell(d.c, true)

	input := fmt.Sprintf("f %d %d\n\nbogus\nh\n", row, col)
	require.NoError(t, d.Run(strings.NewReader(input)))

	cell, _ := d.c.Snapshot().Grid.At(row, col)
	assert.Equal(t, mines.Flagged, cell.State)
	assert.Equal(t, d.c.TotalMines()-1, d.c.RemainingMines())
	assert.Contains(t, out.String(), "error: bad command")
	assert.Contains(t, out.String(), "toggle flag")
	assert.InDelta(t, 3, d.c.ElapsedTime(), 1e-9, "one second per command line")
}

func TestDriverQuit(t *testing.T) {
	d, out := newTestDriver(t)

	require.NoError(t, d.Run(strings.NewReader("q\nx\n")))
	assert.Equal(t, 1, strings.Count(out.String(), "desktop 5x5"), "nothing runs after q")
}

func TestDriverLossAndNext(t *testing.T) {
	d, out := newTestDriver(t)
	row, col := hiddenCell(d.c, true)

	input := fmt.Sprintf("o %d %d\nn\n", row, col)
	require.NoError(t, d.Run(strings.NewReader(input)))

	assert.Contains(t, out.String(), "boom")
	assert.Equal(t, round.InProgress, d.c.Status())
	assert.Equal(t, 5, d.c.Size())
}

func TestDriverSaveLoad(t *testing.T) {
	d, out := newTestDriver(t)
	path := filepath.Join(t.TempDir(), "round.sav")
	row, col := hiddenCell(d.c, false)

	input := fmt.Sprintf("f %d %d\ns %s\nx\nl %s\nl %s\ns\n",
		row, col, path, path, path+".missing")
	require.NoError(t, d.Run(strings.NewReader(input)))

	cell, _ := d.c.Snapshot().Grid.At(row, col)
	assert.Equal(t, mines.Flagged, cell.State, "the load undid the reset")
	assert.Contains(t, out.String(), "unable to read save file")
	assert.Contains(t, out.String(), `"s" needs a file name`)
}
