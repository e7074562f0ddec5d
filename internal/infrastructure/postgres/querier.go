package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier lo que comparten *pgxpool.Pool y pgx.Tx; los repositorios aceptan cualquiera de los dos.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// activeAt predicado de vigencia temporal sobre from_date/thru_date para el parámetro $n.
func activeAt(alias, param string) string {
	p := ""
	if alias != "" {
		p = alias + "."
	}
	return p + "from_date <= " + param + " AND (" + p + "thru_date IS NULL OR " + p + "thru_date > " + param + ")"
}
