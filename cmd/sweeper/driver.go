package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vancomm/sweeper/internal/mines"
	"github.com/vancomm/sweeper/internal/round"
	"github.com/vancomm/sweeper/internal/savefile"
)

const help = `commands:
  o ROW COL   reveal
  f ROW COL   toggle flag
  c ROW COL   chord
  n           next round
  x           back to the first size
  s FILE      save
  l FILE      load
  g           show the board
  h           this help
  q           quit
`

type driver struct {
	c        *round.Controller
	out      io.Writer
	now      func() time.Time
	lastTick time.Time
}

func newDriver(c *round.Controller, out io.Writer, now func() time.Time) *driver {
	return &driver{c: c, out: out, now: now, lastTick: now()}
}

// Run reads one command per line until q or end of input, printing the board
// after every command.
func (d *driver) Run(in io.Reader) error {
	d.render()
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		d.tick()
		quit, err := d.handle(line)
		if err != nil {
			fmt.Fprintln(d.out, "error:", err)
			continue
		}
		if quit {
			return nil
		}
		d.render()
	}
	return scanner.Err()
}

func (d *driver) tick() {
	now := d.now()
	d.c.Tick(now.Sub(d.lastTick).Seconds())
	d.lastTick = now
}

func (d *driver) handle(line string) (quit bool, err error) {
	name, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)
	switch name {
	case "q":
		return true, nil
	case "h":
		fmt.Fprint(d.out, help)
		return false, nil
	case "s", "l":
		if arg == "" {
			return false, fmt.Errorf("%q needs a file name", name)
		}
		if name == "s" {
			return false, savefile.Save(arg, d.c)
		}
		return false, savefile.Load(arg, d.c)
	}

	before := d.c.Status()
	if err := round.Execute(d.c, line); err != nil {
		return false, err
	}
	if status := d.c.Status(); status != before && status != round.InProgress {
		log.WithFields(logrus.Fields{
			"status":  status,
			"size":    d.c.Size(),
			"elapsed": d.c.ElapsedTime(),
		}).Info("round over")
	}
	return false, nil
}

func (d *driver) render() {
	fmt.Fprint(d.out, Render(d.c.View()))
}

func symbol(c round.CellView) string {
	switch {
	case c.State == mines.Flagged:
		return "F"
	case c.State == mines.Hidden:
		return "."
	case c.Mine:
		return "*"
	case c.Adjacent == 0:
		return " "
	default:
		return fmt.Sprint(c.Adjacent)
	}
}

// Render draws a view with column and row numbers.
func Render(v round.View) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %dx%d  mines left %d  time %.1fs  %s\n",
		v.Mode, v.Size, v.Size, v.RemainingMines, v.ElapsedTime, v.Status)

	b.WriteString("   ")
	for col := range v.Size {
		fmt.Fprintf(&b, "%3d", col)
	}
	b.WriteByte('\n')
	for row, cells := range v.Cells {
		fmt.Fprintf(&b, "%3d", row)
		for _, c := range cells {
			fmt.Fprintf(&b, "%3s", symbol(c))
		}
		b.WriteByte('\n')
	}

	switch v.Status {
	case round.Won:
		b.WriteString("cleared! n for a bigger grid\n")
	case round.Lost:
		b.WriteString("boom. n to try again\n")
	}
	return b.String()
}
