// Package savefile reads and writes rounds in a fixed little-endian layout:
//
//	int32 size
//	size*size times, row-major: bool hasMine, int32 state, int32 adjacentMines
//	bool gameOver, bool gameWon, float32 gameTime,
//	int32 remainingCells, int32 remainingMines
//
// There is no header, version or checksum.
package savefile

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/vancomm/sweeper/internal/mines"
	"github.com/vancomm/sweeper/internal/round"
)

var Log = logrus.New()

var ErrCorrupt = errors.New("corrupt save data")

const (
	headerLen  = 4
	cellLen    = 1 + 4 + 4
	trailerLen = 1 + 1 + 4 + 4 + 4
)

// EncodedLen is the exact byte length of a saved round with the given grid
// size.
func EncodedLen(size int) int {
	return headerLen + size*size*cellLen + trailerLen
}

func appendBool(b []byte, v bool) []byte {
	if v {
		return append(b, 1)
	}
	return append(b, 0)
}

func appendInt32(b []byte, v int32) []byte {
	return binary.LittleEndian.AppendUint32(b, uint32(v))
}

func Marshal(s *round.Snapshot) ([]byte, error) {
	if s == nil || s.Grid == nil {
		return nil, round.ErrNoGrid
	}
	size := s.Grid.Size()
	b := make([]byte, 0, EncodedLen(size))
	b = appendInt32(b, int32(size))
	for row := range size {
		for col := range size {
			c, _ := s.Grid.At(row, col)
			b = appendBool(b, c.HasMine)
			b = appendInt32(b, int32(c.State))
			b = appendInt32(b, int32(c.AdjacentMines))
		}
	}
	b = appendBool(b, s.GameOver)
	b = appendBool(b, s.GameWon)
	b = binary.LittleEndian.AppendUint32(b, math.Float32bits(s.GameTime))
	b = appendInt32(b, s.RemainingCells)
	b = appendInt32(b, s.RemainingMines)
	return b, nil
}

type reader struct {
	b []byte
}

func (r *reader) bool() bool {
	v := r.b[0] != 0
	r.b = r.b[1:]
	return v
}

func (r *reader) uint32() uint32 {
	v := binary.LittleEndian.Uint32(r.b)
	r.b = r.b[4:]
	return v
}

func (r *reader) int32() int32 {
	return int32(r.uint32())
}

// Unmarshal checks the declared size and the total length before reading any
// cell, so a truncated or padded file is rejected instead of misread.
func Unmarshal(data []byte) (*round.Snapshot, error) {
	if len(data) < headerLen {
		return nil, fmt.Errorf("%w: %d bytes", ErrCorrupt, len(data))
	}
	r := &reader{data}
	size := int(r.int32())
	if size < mines.MinSize || size > mines.MaxSize {
		return nil, fmt.Errorf("%w: grid size %d", ErrCorrupt, size)
	}
	if want := EncodedLen(size); len(data) != want {
		return nil, fmt.Errorf(
			"%w: %d bytes for a %dx%d grid, want %d",
			ErrCorrupt, len(data), size, size, want,
		)
	}

	grid, err := mines.NewGrid(size)
	if err != nil {
		return nil, err
	}
	for row := range size {
		for col := range size {
			c := mines.Cell{
				HasMine:       r.bool(),
				State:         mines.CellState(r.int32()),
				AdjacentMines: int(r.int32()),
			}
			if !c.State.Valid() {
				return nil, fmt.Errorf(
					"%w: cell %d:%d has state %d", ErrCorrupt, row, col, c.State,
				)
			}
			grid.SetCell(row, col, c)
		}
	}

	s := &round.Snapshot{Grid: grid}
	s.GameOver = r.bool()
	s.GameWon = r.bool()
	s.GameTime = math.Float32frombits(r.uint32())
	s.RemainingCells = r.int32()
	s.RemainingMines = r.int32()
	return s, nil
}

// Save writes the controller's round to path, replacing any existing file.
func Save(path string, c *round.Controller) error {
	data, err := Marshal(c.Snapshot())
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("unable to write save file: %w", err)
	}
	Log.WithFields(logrus.Fields{
		"path":  path,
		"size":  c.Size(),
		"bytes": len(data),
	}).Debug("round saved")
	return nil
}

// Load replaces the controller's round with the one stored at path. On any
// error the controller is left as it was.
func Load(path string, c *round.Controller) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("unable to read save file: %w", err)
	}
	s, err := Unmarshal(data)
	if err != nil {
		return err
	}
	if err := c.Restore(s); err != nil {
		return err
	}
	Log.WithFields(logrus.Fields{
		"path": path,
		"size": c.Size(),
	}).Debug("round loaded")
	return nil
}
