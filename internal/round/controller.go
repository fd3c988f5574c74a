package round

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/sirupsen/logrus"
	"github.com/vancomm/sweeper/internal/mines"
)

var Log = logrus.New()

var ErrNoGrid = errors.New("snapshot has no grid")

type Status int

const (
	InProgress Status = iota
	Won
	Lost
)

func (s Status) String() string {
	switch s {
	case Won:
		return "won"
	case Lost:
		return "lost"
	default:
		return "in_progress"
	}
}

// [Status] implements [encoding.TextMarshaler]
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(text []byte) error {
	for _, status := range []Status{InProgress, Won, Lost} {
		if string(text) == status.String() {
			*s = status
			return nil
		}
	}
	return fmt.Errorf("unknown status %q", text)
}

// Controller drives consecutive rounds. A won round makes the next grid one
// cell wider (up to the mode's cap), a lost one replays the same size.
type Controller struct {
	mode           Mode
	rnd            *rand.Rand
	game           *mines.GameState
	size           int
	gameTime       float64
	remainingMines int
}

func New(mode Mode, rnd *rand.Rand) (*Controller, error) {
	if err := mode.Validate(); err != nil {
		return nil, err
	}
	c := &Controller{mode: mode, rnd: rnd, size: mode.InitialSize}
	if err := c.build(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Controller) build() error {
	game, err := mines.NewGame(c.size, c.rnd)
	if err != nil {
		return fmt.Errorf("unable to build %dx%d grid: %w", c.size, c.size, err)
	}
	c.game = game
	c.gameTime = 0
	c.RecalculateRemainingMines()
	Log.WithFields(logrus.Fields{
		"mode":  c.mode.Name,
		"size":  c.size,
		"mines": game.MineCount,
	}).Info("round started")
	return nil
}

// NewRound replaces the current round. Only a win grows the grid.
func (c *Controller) NewRound(isWin bool) error {
	if isWin && c.size < c.mode.MaxSize {
		c.size++
	}
	return c.build()
}

// Advance starts the round that follows the current one, growing the grid
// if it was won.
func (c *Controller) Advance() error {
	return c.NewRound(c.Status() == Won)
}

// StartRound starts a round of an explicit size.
func (c *Controller) StartRound(size int) error {
	if !c.mode.Allows(size) {
		return fmt.Errorf(
			"%w: %d (%s allows %d..%d)",
			ErrInvalidSize, size, c.mode.Name, c.mode.InitialSize, c.mode.MaxSize,
		)
	}
	c.size = size
	return c.build()
}

func (c *Controller) ResetToInitialSize() error {
	c.size = c.mode.InitialSize
	return c.NewRound(false)
}

// Tick advances the round clock by dt seconds while the round is in
// progress.
func (c *Controller) Tick(dt float64) {
	if !c.game.GameOver && dt > 0 {
		c.gameTime += dt
	}
	c.RecalculateRemainingMines()
}

func (c *Controller) RecalculateRemainingMines() {
	c.remainingMines = c.game.MineCount - c.game.FlaggedCount()
}

func (c *Controller) RevealAt(row, col int) Status {
	return c.apply("reveal", row, col, c.game.RevealCell)
}

func (c *Controller) ChordRevealAt(row, col int) Status {
	return c.apply("chord", row, col, c.game.ChordReveal)
}

func (c *Controller) ToggleFlagAt(row, col int) Status {
	return c.apply("flag", row, col, func(row, col int) mines.Outcome {
		c.game.ToggleFlag(row, col)
		return mines.Continue
	})
}

func (c *Controller) apply(
	move string, row, col int, f func(row, col int) mines.Outcome,
) Status {
	outcome := f(row, col)
	c.RecalculateRemainingMines()
	if outcome != mines.Continue {
		Log.WithFields(logrus.Fields{
			"move":    move,
			"row":     row,
			"col":     col,
			"outcome": outcome,
			"time":    c.gameTime,
		}).Info("round over")
	}
	return c.Status()
}

func (c *Controller) Status() Status {
	switch {
	case !c.game.GameOver:
		return InProgress
	case c.game.GameWon:
		return Won
	default:
		return Lost
	}
}

func (c *Controller) Mode() Mode {
	return c.mode
}

func (c *Controller) Size() int {
	return c.size
}

func (c *Controller) TotalMines() int {
	return c.game.MineCount
}

func (c *Controller) RemainingMines() int {
	return c.remainingMines
}

func (c *Controller) RemainingCells() int {
	return c.game.RemainingCells
}

func (c *Controller) ElapsedTime() float64 {
	return c.gameTime
}

// Snapshot is everything the save format records about a round.
type Snapshot struct {
	Grid           *mines.Grid
	GameOver       bool
	GameWon        bool
	GameTime       float32
	RemainingCells int32
	RemainingMines int32
}

func (c *Controller) Snapshot() *Snapshot {
	return &Snapshot{
		Grid:           c.game.Grid.Clone(),
		GameOver:       c.game.GameOver,
		GameWon:        c.game.GameWon,
		GameTime:       float32(c.gameTime),
		RemainingCells: int32(c.game.RemainingCells),
		RemainingMines: int32(c.remainingMines),
	}
}

// Restore replaces the current round with a saved one. The saved counters
// are taken as they are. The mode stays, so a restored grid larger than the
// mode cap simply stops growing.
func (c *Controller) Restore(s *Snapshot) error {
	if s == nil || s.Grid == nil {
		return ErrNoGrid
	}
	grid := s.Grid.Clone()
	c.game = &mines.GameState{
		Grid:           grid,
		MineCount:      grid.Mines(),
		RemainingCells: int(s.RemainingCells),
		GameOver:       s.GameOver,
		GameWon:        s.GameWon,
	}
	c.size = grid.Size()
	c.gameTime = float64(s.GameTime)
	c.remainingMines = int(s.RemainingMines)
	Log.WithFields(logrus.Fields{
		"size":   c.size,
		"status": c.Status(),
	}).Debug("round restored")
	return nil
}
