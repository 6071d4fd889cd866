package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/DavidAtikpo/irata-sub002/internal/data/db"
	"github.com/DavidAtikpo/irata-sub002/internal/data/repos"
	"github.com/DavidAtikpo/irata-sub002/internal/domain/inspection"
	"github.com/DavidAtikpo/irata-sub002/internal/modules/qrcode"
	"github.com/DavidAtikpo/irata-sub002/internal/platform/apierr"
	"github.com/DavidAtikpo/irata-sub002/internal/platform/dbctx"
	"github.com/DavidAtikpo/irata-sub002/internal/platform/logger"
)

type ProfileService interface {
	qrcode.ProfileLookup
	Register(ctx context.Context, p *inspection.Profile) (*inspection.Profile, error)
}

type profileService struct {
	log   *logger.Logger
	repo  repos.ProfileRepo
	group singleflight.Group
}

func NewProfileService(baseLog *logger.Logger, repo repos.ProfileRepo) ProfileService {
	return &profileService{log: baseLog.With("service", "ProfileService"), repo: repo}
}

// LookupProfile resolves a code. Concurrent scans of the same code share one
// query.
func (s *profileService) LookupProfile(ctx context.Context, code string) (*inspection.Profile, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, qrcode.ErrProfileNotFound
	}
	v, err, _ := s.group.Do(code, func() (any, error) {
		return s.repo.GetByCode(dbctx.For(ctx), code)
	})
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", qrcode.ErrProfileNotFound, code)
		}
		return nil, err
	}
	p := *v.(*inspection.Profile)
	return &p, nil
}

func (s *profileService) Register(ctx context.Context, p *inspection.Profile) (*inspection.Profile, error) {
	if p == nil || strings.TrimSpace(p.Code) == "" {
		return nil, apierr.Validation("code_required", errors.New("equipment code is required"))
	}
	out, err := s.repo.Create(dbctx.For(ctx), p)
	if err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			return nil, apierr.New(409, "profile_exists", fmt.Errorf("equipment code %q already registered", p.Code))
		}
		return nil, apierr.Transfer(500, "persistence_failed", err)
	}
	s.log.Info("Equipment profile registered", "code", out.Code)
	return out, nil
}
