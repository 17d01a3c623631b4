package apperrors

import (
	"errors"
	"fmt"
	"testing"
)

func TestCategoryOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Category
	}{
		{"nil", nil, CategoryUnknown},
		{"plain", errors.New("x"), CategoryUnknown},
		{"unauthenticated", fmt.Errorf("me: %w", ErrUnauthenticated), CategoryAuth},
		{"validation", NewValidationError("bad", nil), CategoryValidation},
		{"mismatch", ErrPasswordMismatch, CategoryValidation},
		{"fetch", NewFetchError(ErrUpstream, "could not load seasons"), CategoryFetch},
		{"mutation", NewMutationError(ErrUpstream, "could not register"), CategoryMutation},
		{"explicit wins", NewCustomError(ErrUnauthenticated, "x").WithCategory(CategoryMutation), CategoryMutation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CategoryOf(tt.err); got != tt.want {
				t.Fatalf("CategoryOf = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCustomErrorUnwrap(t *testing.T) {
	err := NewMutationError(ErrUpstream, "could not register")
	if !errors.Is(err, ErrUpstream) {
		t.Fatal("mutation error should unwrap to ErrUpstream")
	}
	if err.Error() != "could not register" {
		t.Fatalf("Error() = %q", err.Error())
	}
	if NewCustomError(ErrConflict, "").Error() != ErrConflict.Error() {
		t.Fatal("empty message should fall back to the wrapped error")
	}
}
