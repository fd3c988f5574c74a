package repository

import (
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
)

func TestResultFilterWhereClause(t *testing.T) {
	mode := "mobile"
	size := int32(7)

	tests := []struct {
		name   string
		filter ResultFilter
		clause string
		args   pgx.NamedArgs
	}{
		{"empty", ResultFilter{}, "", pgx.NamedArgs{}},
		{"mode", ResultFilter{Mode: &mode}, "mode = @mode", pgx.NamedArgs{"mode": "mobile"}},
		{"size", ResultFilter{Size: &size, Limit: 3}, "size = @size", pgx.NamedArgs{"size": size}},
		{
			"both",
			ResultFilter{Mode: &mode, Size: &size},
			"mode = @mode AND size = @size",
			pgx.NamedArgs{"mode": "mobile", "size": size},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			clause, args := test.filter.WhereClause()
			assert.Equal(t, test.clause, clause)
			assert.Equal(t, test.args, args)
		})
	}
}
