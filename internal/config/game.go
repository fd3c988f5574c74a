package config

import (
	"fmt"
	"os"

	"github.com/vancomm/sweeper/internal/round"
)

const defaultSaveDB = "sweeper.db"

// GameMode reads GAME_MODE, defaulting to desktop.
func GameMode() (round.Mode, error) {
	mode, err := round.ParseMode(os.Getenv("GAME_MODE"))
	if err != nil {
		return round.Mode{}, fmt.Errorf("invalid GAME_MODE: %w", err)
	}
	return mode, nil
}

// SaveDB is the sqlite file holding save slots when no Postgres database is
// configured.
func SaveDB() string {
	if path, ok := os.LookupEnv("SAVE_DB"); ok && path != "" {
		return path
	}
	return defaultSaveDB
}

// LogFile is where the terminal driver writes its log. Empty means no file.
func LogFile() string {
	return os.Getenv("LOG_FILE")
}
