package app

import (
	"gorm.io/gorm"

	"github.com/DavidAtikpo/irata-sub002/internal/data/repos"
	"github.com/DavidAtikpo/irata-sub002/internal/platform/logger"
)

type Repos struct {
	Record  repos.RecordRepo
	Profile repos.ProfileRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Record:  repos.NewRecordRepo(db, log),
		Profile: repos.NewProfileRepo(db, log),
	}
}
