package round

import (
	"errors"
	"fmt"
	"iter"
	"strconv"
	"strings"
)

var ErrBadCommand = errors.New("bad command")

// Maps known commands to number of arguments
var commandNargs = map[string]int{
	"g": 0, // get, no change
	"o": 2, // open (reveal) row col
	"f": 2, // toggle flag row col
	"c": 2, // chord row col
	"n": 0, // next round
	"x": 0, // reset to the initial size
}

type Command struct {
	Name     string
	Row, Col int
}

func parseRowCol(twoStrings []string) (row int, col int, err error) {
	if row, err = strconv.Atoi(twoStrings[0]); err != nil {
		return 0, 0, fmt.Errorf("%w: row must be an int", ErrBadCommand)
	}
	if col, err = strconv.Atoi(twoStrings[1]); err != nil {
		return 0, 0, fmt.Errorf("%w: col must be an int", ErrBadCommand)
	}
	return
}

func ParseCommand(line string) (cmd Command, err error) {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return cmd, fmt.Errorf("%w: empty", ErrBadCommand)
	}
	nargs, ok := commandNargs[parts[0]]
	if !ok {
		return cmd, fmt.Errorf("%w: unknown command %q", ErrBadCommand, parts[0])
	}
	if nargs != len(parts)-1 {
		return cmd, fmt.Errorf(
			"%w: %q takes %d arguments", ErrBadCommand, parts[0], nargs,
		)
	}
	cmd.Name = parts[0]
	if nargs == 2 {
		cmd.Row, cmd.Col, err = parseRowCol(parts[1:])
	}
	return cmd, err
}

// Apply runs the command. Cell moves after the round ended are ignored, like
// every other move the engine does not accept.
func (cmd Command) Apply(c *Controller) error {
	switch cmd.Name {
	case "g":
	case "o":
		c.RevealAt(cmd.Row, cmd.Col)
	case "f":
		c.ToggleFlagAt(cmd.Row, cmd.Col)
	case "c":
		c.ChordRevealAt(cmd.Row, cmd.Col)
	case "n":
		return c.Advance()
	case "x":
		return c.ResetToInitialSize()
	default:
		return fmt.Errorf("%w: %q", ErrBadCommand, cmd.Name)
	}
	return nil
}

func Execute(c *Controller, line string) error {
	cmd, err := ParseCommand(line)
	if err != nil {
		return err
	}
	return cmd.Apply(c)
}

// Lines splits a batch of newline separated commands, skipping blank ones.
func Lines(s string) iter.Seq2[int, string] {
	return func(yield func(int, string) bool) {
		i := 0
		found := true
		var piece string
		for found {
			piece, s, found = strings.Cut(s, "\n")
			if strings.TrimSpace(piece) == "" {
				continue
			}
			if !yield(i, piece) {
				return
			}
			i += 1
		}
	}
}
