package dberrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestClassify(t *testing.T) {
	undefined := fmt.Errorf("query: %w", &pgconn.PgError{Code: "42P01", Message: `relation "portal_sessions" does not exist`})
	if !IsUndefinedTable(undefined) {
		t.Fatal("IsUndefinedTable should see through wrapping")
	}
	got := Classify(undefined)
	if !errors.Is(got, ErrSchemaMissing) {
		t.Fatalf("Classify(%v) = %v, want ErrSchemaMissing", undefined, got)
	}
	var pgErr *pgconn.PgError
	if !errors.As(got, &pgErr) {
		t.Fatal("classified error lost the driver error")
	}

	other := &pgconn.PgError{Code: "23505"}
	if got := Classify(other); got != error(other) {
		t.Fatalf("Classify(unique violation) = %v, want it unchanged", got)
	}
	if Classify(nil) != nil {
		t.Fatal("Classify(nil) should be nil")
	}
}
