package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

type RoundSave struct {
	Slot      string
	Data      []byte
	CreatedAt pgtype.Timestamptz
	UpdatedAt pgtype.Timestamptz
}

func (q *Queries) FetchRoundSave(ctx context.Context, slot string) (*RoundSave, error) {
	rows, _ := q.db.Query(
		ctx, "SELECT * FROM round_save WHERE slot = $1", slot,
	)
	save, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[RoundSave])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return save, err
}

// CreateRoundSave fails with [ErrSlotTaken] if slot already holds a round.
func (q *Queries) CreateRoundSave(ctx context.Context, slot string, data []byte) (*RoundSave, error) {
	rows, _ := q.db.Query(
		ctx,
		`INSERT INTO round_save (slot, data) VALUES (@slot, @data) RETURNING *`,
		pgx.NamedArgs{"slot": slot, "data": data},
	)
	save, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[RoundSave])
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return nil, ErrSlotTaken
	}
	return save, err
}

func (q *Queries) UpsertRoundSave(ctx context.Context, slot string, data []byte) (*RoundSave, error) {
	rows, _ := q.db.Query(
		ctx,
		`INSERT INTO round_save (slot, data) VALUES (@slot, @data)
		ON CONFLICT (slot) DO UPDATE
			SET data = excluded.data, updated_at = now()
		RETURNING *`,
		pgx.NamedArgs{"slot": slot, "data": data},
	)
	return pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[RoundSave])
}

func (q *Queries) DeleteRoundSave(ctx context.Context, slot string) error {
	_, err := q.db.Exec(ctx, "DELETE FROM round_save WHERE slot = $1", slot)
	return err
}

// Slots adapts [Queries] to the byte-oriented slot interface the handlers
// share with the sqlite store.
type Slots struct {
	*Queries
}

func (s Slots) Get(ctx context.Context, slot string) ([]byte, error) {
	save, err := s.FetchRoundSave(ctx, slot)
	if err != nil {
		return nil, err
	}
	return save.Data, nil
}

func (s Slots) Put(ctx context.Context, slot string, data []byte) error {
	_, err := s.UpsertRoundSave(ctx, slot, data)
	return err
}

func (s Slots) Create(ctx context.Context, slot string, data []byte) error {
	_, err := s.CreateRoundSave(ctx, slot, data)
	return err
}
