package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const pgUndefinedTable = "42P01"

func isUndefinedTable(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUndefinedTable
}
