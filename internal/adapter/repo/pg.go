package repo

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres error codes we branch on.
const (
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
)

func isForeignKeyViolation(err error) bool {
	return isPgCode(err, pgForeignKeyViolation)
}

func isUniqueViolation(err error) bool {
	return isPgCode(err, pgUniqueViolation)
}

func isPgCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}
