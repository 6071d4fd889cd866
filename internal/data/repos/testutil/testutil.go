package testutil

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/DavidAtikpo/irata-sub002/internal/data/db"
	"github.com/DavidAtikpo/irata-sub002/internal/domain/inspection"
	"github.com/DavidAtikpo/irata-sub002/internal/platform/logger"
)

var (
	logOnce sync.Once
	logg    *logger.Logger
	logErr  error
)

func Logger(tb testing.TB) *logger.Logger {
	tb.Helper()
	logOnce.Do(func() {
		logg, logErr = logger.New("test")
	})
	if logErr != nil {
		tb.Fatalf("failed to init logger: %v", logErr)
	}
	return logg
}

// DB opens a private in-memory SQLite database with the schema migrated.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		tb.Fatalf("failed to open test db: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		tb.Fatalf("failed to get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	tb.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrateAll(conn); err != nil {
		tb.Fatalf("failed to migrate test db: %v", err)
	}
	return conn
}

func SeedRecord(tb testing.TB, ctx context.Context, tx *gorm.DB, equipmentType, batchID, reference string) *inspection.Record {
	tb.Helper()
	r := &inspection.Record{
		ID:               uuid.New(),
		EquipmentType:    equipmentType,
		BatchID:          batchID,
		ReferenceInterne: reference,
		Etat:             inspection.StateInvalid,
	}
	if err := tx.WithContext(ctx).Create(r).Error; err != nil {
		tb.Fatalf("seed record: %v", err)
	}
	return r
}

func SeedProfile(tb testing.TB, ctx context.Context, tx *gorm.DB, code string) *inspection.Profile {
	tb.Helper()
	p := &inspection.Profile{
		ID:               uuid.New(),
		Code:             code,
		ReferenceInterne: "H-001",
		NumeroSerie:      "SN9",
		Normes:           "EN361",
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed profile: %v", err)
	}
	return p
}
