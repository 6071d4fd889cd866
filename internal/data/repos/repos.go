package repos

import (
	"gorm.io/gorm"

	"github.com/DavidAtikpo/irata-sub002/internal/data/repos/inspection"
	"github.com/DavidAtikpo/irata-sub002/internal/platform/logger"
)

type RecordRepo = inspection.RecordRepo
type ProfileRepo = inspection.ProfileRepo
type SiblingScope = inspection.SiblingScope

func NewRecordRepo(db *gorm.DB, baseLog *logger.Logger) RecordRepo {
	return inspection.NewRecordRepo(db, baseLog)
}

func NewProfileRepo(db *gorm.DB, baseLog *logger.Logger) ProfileRepo {
	return inspection.NewProfileRepo(db, baseLog)
}
