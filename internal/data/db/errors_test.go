package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/DavidAtikpo/irata-sub002/internal/platform/logger"
)

func TestTranslateError(t *testing.T) {
	cases := []struct {
		name string
		in   error
		want error
	}{
		{"not found", gorm.ErrRecordNotFound, ErrNotFound},
		{"pg unique", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"}), ErrDuplicate},
		{"sqlite unique", errors.New("UNIQUE constraint failed: equipment_profile.code"), ErrDuplicate},
	}
	for _, tc := range cases {
		if got := TranslateError(tc.in); !errors.Is(got, tc.want) {
			t.Fatalf("%s: got=%v want %v", tc.name, got, tc.want)
		}
	}
	other := errors.New("boom")
	if got := TranslateError(other); got != other {
		t.Fatalf("unrelated error rewritten: %v", got)
	}
	if TranslateError(nil) != nil {
		t.Fatalf("nil should stay nil")
	}
}

func TestNewServiceSQLiteMigrates(t *testing.T) {
	svc, err := NewService(logger.Nop(), Config{Driver: DriverSQLite, SQLitePath: "file::memory:?cache=shared"})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	defer svc.Close()
	if err := AutoMigrateAll(svc.DB()); err != nil {
		t.Fatalf("AutoMigrateAll: %v", err)
	}
	if !svc.DB().Migrator().HasTable("inspection_record") || !svc.DB().Migrator().HasTable("equipment_profile") {
		t.Fatalf("tables missing after migrate")
	}
	if _, err := NewService(logger.Nop(), Config{Driver: "mysql"}); err == nil {
		t.Fatalf("expected unknown driver error")
	}
}
