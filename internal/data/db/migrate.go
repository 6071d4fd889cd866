package db

import (
	"gorm.io/gorm"

	"github.com/DavidAtikpo/irata-sub002/internal/domain/inspection"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		&inspection.Record{},
		&inspection.Profile{},
	)
}
