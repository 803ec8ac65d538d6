package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func TestMapConflict(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"pg unique", &pgconn.PgError{Code: "23505"}, true},
		{"wrapped pg unique", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"}), true},
		{"pg fk", &pgconn.PgError{Code: "23503"}, false},
		{"gorm translated", gorm.ErrDuplicatedKey, true},
		{"sqlite text", errors.New("UNIQUE constraint failed: intervention_templates.name"), true},
		{"other", errors.New("boom"), false},
	}
	for _, tc := range cases {
		got := errors.Is(MapConflict(tc.err), ErrAlreadyExists)
		if got != tc.want {
			t.Fatalf("%s: want=%v got=%v", tc.name, tc.want, got)
		}
	}
	if MapConflict(nil) != nil {
		t.Fatalf("MapConflict(nil) should be nil")
	}
}
