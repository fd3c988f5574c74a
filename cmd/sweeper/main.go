package main

import (
	"flag"
	"hash/maphash"
	"io"
	"math/rand/v2"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/snowzach/rotatefilehook"

	"github.com/vancomm/sweeper/internal/config"
	"github.com/vancomm/sweeper/internal/mines"
	"github.com/vancomm/sweeper/internal/round"
	"github.com/vancomm/sweeper/internal/savefile"
)

var log = logrus.New()

var (
	modeName string
	size     int
	seed     uint64
	loadPath string
)

func init() {
	flag.StringVar(&modeName, "mode", "", "desktop or mobile (default from GAME_MODE)")
	flag.IntVar(&size, "size", 0, "start at this grid size instead of the mode's initial one")
	flag.Uint64Var(&seed, "seed", 0, "random seed, 0 picks one")
	flag.StringVar(&loadPath, "load", "", "save file to resume from")
}

// setupLogging sends every package logger to the rotating LOG_FILE, if set.
// Without one only warnings reach stderr, to keep the board readable.
func setupLogging() {
	level := logrus.WarnLevel
	if config.Development() {
		level = logrus.DebugLevel
	}
	loggers := []*logrus.Logger{log, mines.Log, round.Log, savefile.Log}

	var hook logrus.Hook
	if path := config.LogFile(); path != "" {
		var err error
		hook, err = rotatefilehook.NewRotateFileHook(rotatefilehook.RotateFileConfig{
			Filename:   path,
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
			Level:      logrus.DebugLevel,
			Formatter:  &logrus.JSONFormatter{TimestampFormat: time.RFC3339},
		})
		if err != nil {
			log.Fatal("unable to open log file: ", err)
		}
		level = logrus.DebugLevel
	}

	for _, l := range loggers {
		l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
		l.SetLevel(level)
		if hook != nil {
			l.AddHook(hook)
			l.SetOutput(io.Discard)
		}
	}
}

func createRand() *rand.Rand {
	if seed != 0 {
		return rand.New(rand.NewPCG(seed, seed))
	}
	return rand.New(rand.NewPCG(
		new(maphash.Hash).Sum64(), new(maphash.Hash).Sum64(),
	))
}

func main() {
	flag.Parse()
	setupLogging()

	mode, err := config.GameMode()
	if modeName != "" {
		mode, err = round.ParseMode(modeName)
	}
	if err != nil {
		log.Fatal(err)
	}

	c, err := round.New(mode, createRand())
	if err != nil {
		log.Fatal(err)
	}
	if size != 0 {
		if err := c.StartRound(size); err != nil {
			log.Fatal(err)
		}
	}
	if loadPath != "" {
		if err := savefile.Load(loadPath, c); err != nil {
			log.Fatal(err)
		}
	}

	d := newDriver(c, os.Stdout, time.Now)
	if err := d.Run(os.Stdin); err != nil {
		log.Fatal(err)
	}
}
