package app

import (
	"context"
	"log/slog"

	"github.com/vancomm/sweeper/internal/config"
	"github.com/vancomm/sweeper/internal/database"
	"github.com/vancomm/sweeper/internal/handlers"
	"github.com/vancomm/sweeper/internal/repository"
	"github.com/vancomm/sweeper/internal/store"
)

const slotTable = "saves"

// Storage is where a server keeps save slots and, with Postgres, results.
// Results is nil on sqlite.
type Storage struct {
	Slots   handlers.SaveSlots
	Results handlers.Results
	close   func()
}

func (s *Storage) Close() {
	if s.close != nil {
		s.close()
	}
}

// OpenStorage uses Postgres when it is configured and the sqlite file from
// SAVE_DB otherwise.
func OpenStorage(ctx context.Context, logger *slog.Logger) (*Storage, error) {
	if config.DatabaseConfigured() {
		pool, _, err := database.ConnectAndMigrate(ctx, database.Migrations)
		if err != nil {
			return nil, err
		}
		logger.Info("using postgres storage")
		q := repository.New(pool)
		return &Storage{
			Slots:   repository.Slots{Queries: q},
			Results: q,
			close:   pool.Close,
		}, nil
	}

	path := config.SaveDB()
	s, err := store.Open(ctx, path, slotTable)
	if err != nil {
		return nil, err
	}
	logger.Info("using sqlite storage", slog.String("path", path))
	return &Storage{
		Slots: s,
		close: func() { s.Close() },
	}, nil
}

// NewStorage wraps already opened slots and results.
func NewStorage(slots handlers.SaveSlots, results handlers.Results) *Storage {
	return &Storage{Slots: slots, Results: results}
}
