// custom query
package repository

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type RoundResult struct {
	ResultId  int64              `json:"result_id"`
	Mode      string             `json:"mode"`
	Size      int32              `json:"size"`
	Won       bool               `json:"won"`
	ElapsedMs int64              `json:"elapsed_ms"`
	CreatedAt pgtype.Timestamptz `json:"-"`
}

type RecordResultParams struct {
	Mode      string
	Size      int32
	Won       bool
	ElapsedMs int64
}

func (q *Queries) RecordResult(ctx context.Context, p RecordResultParams) (*RoundResult, error) {
	rows, _ := q.db.Query(
		ctx,
		`INSERT INTO round_result (mode, size, won, elapsed_ms)
		VALUES (@mode, @size, @won, @elapsed_ms)
		RETURNING *`,
		pgx.NamedArgs{
			"mode":       p.Mode,
			"size":       p.Size,
			"won":        p.Won,
			"elapsed_ms": p.ElapsedMs,
		},
	)
	return pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[RoundResult])
}

type ResultFilter struct {
	Mode  *string
	Size  *int32
	Limit int
}

func (f ResultFilter) WhereClause() (string, pgx.NamedArgs) {
	clauses := make([]string, 0)
	args := pgx.NamedArgs{}
	if f.Mode != nil {
		clauses = append(clauses, "mode = @mode")
		args["mode"] = *f.Mode
	}
	if f.Size != nil {
		clauses = append(clauses, "size = @size")
		args["size"] = *f.Size
	}
	return strings.Join(clauses, " AND "), args
}

// BestTimes lists won rounds, fastest first.
func (q *Queries) BestTimes(ctx context.Context, filter ResultFilter) ([]RoundResult, error) {
	query := `
	SELECT *
	FROM round_result
	WHERE won = true`

	whereClause, args := filter.WhereClause()
	if whereClause != "" {
		query += " AND " + whereClause
	}

	query += " ORDER BY elapsed_ms, created_at"

	if filter.Limit > 0 {
		query += " LIMIT @limit"
		args["limit"] = filter.Limit
	}

	rows, err := q.db.Query(ctx, query, args)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[RoundResult])
}
