package dberrors

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrSchemaMissing reports a query against a table the migrations have not created
var ErrSchemaMissing = errors.New("database schema missing, run the migrations or set database.migrate_on_start")

// IsUndefinedTable checks if the error is a PostgreSQL undefined_table error (42P01)
func IsUndefinedTable(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "42P01"
}

// Classify replaces driver errors that have a clearer meaning for operators
func Classify(err error) error {
	if IsUndefinedTable(err) {
		return errors.Join(ErrSchemaMissing, err)
	}
	return err
}
