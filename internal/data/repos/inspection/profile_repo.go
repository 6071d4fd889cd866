package inspection

import (
	"strings"

	"gorm.io/gorm"

	"github.com/DavidAtikpo/irata-sub002/internal/data/db"
	types "github.com/DavidAtikpo/irata-sub002/internal/domain/inspection"
	"github.com/DavidAtikpo/irata-sub002/internal/platform/dbctx"
	"github.com/DavidAtikpo/irata-sub002/internal/platform/logger"
)

type ProfileRepo interface {
	Create(dbc dbctx.Context, p *types.Profile) (*types.Profile, error)
	GetByCode(dbc dbctx.Context, code string) (*types.Profile, error)
}

type profileRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProfileRepo(db *gorm.DB, baseLog *logger.Logger) ProfileRepo {
	repoLog := baseLog.With("repo", "ProfileRepo")
	return &profileRepo{db: db, log: repoLog}
}

func (pr *profileRepo) Create(dbc dbctx.Context, p *types.Profile) (*types.Profile, error) {
	p.Code = strings.TrimSpace(p.Code)
	if err := dbc.DB(pr.db).Create(p).Error; err != nil {
		return nil, db.TranslateError(err)
	}
	return p, nil
}

func (pr *profileRepo) GetByCode(dbc dbctx.Context, code string) (*types.Profile, error) {
	var out types.Profile
	if err := dbc.DB(pr.db).
		Where("code = ?", strings.TrimSpace(code)).
		First(&out).Error; err != nil {
		return nil, db.TranslateError(err)
	}
	return &out, nil
}
