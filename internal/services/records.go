package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/DavidAtikpo/irata-sub002/internal/data/db"
	"github.com/DavidAtikpo/irata-sub002/internal/data/repos"
	"github.com/DavidAtikpo/irata-sub002/internal/domain/inspection"
	"github.com/DavidAtikpo/irata-sub002/internal/modules/checklist"
	"github.com/DavidAtikpo/irata-sub002/internal/modules/reconcile"
	"github.com/DavidAtikpo/irata-sub002/internal/platform/apierr"
	"github.com/DavidAtikpo/irata-sub002/internal/platform/dbctx"
	"github.com/DavidAtikpo/irata-sub002/internal/platform/logger"
)

var ErrRecordNotFound = errors.New("inspection record not found")

// RecordStore is the persistence collaborator. It stores and returns the full
// record, strike map included.
type RecordStore interface {
	Get(ctx context.Context, id uuid.UUID) (*inspection.Record, error)
	Create(ctx context.Context, rec *inspection.Record) (*inspection.Record, error)
	Update(ctx context.Context, rec *inspection.Record) (*inspection.Record, error)
}

type RecordService interface {
	RecordStore
	List(ctx context.Context, equipmentType string) ([]*inspection.Record, error)
}

type recordService struct {
	log  *logger.Logger
	repo repos.RecordRepo
	now  func() time.Time
}

func NewRecordService(baseLog *logger.Logger, repo repos.RecordRepo) RecordService {
	return &recordService{
		log:  baseLog.With("service", "RecordService"),
		repo: repo,
		now:  time.Now,
	}
}

func (s *recordService) Get(ctx context.Context, id uuid.UUID) (*inspection.Record, error) {
	rec, err := s.repo.GetByID(dbctx.For(ctx), id)
	if err != nil {
		return nil, mapStoreError(err, id)
	}
	return rec, nil
}

func (s *recordService) List(ctx context.Context, equipmentType string) ([]*inspection.Record, error) {
	if strings.TrimSpace(equipmentType) != "" {
		t, err := checklist.ParseEquipmentType(equipmentType)
		if err != nil {
			return nil, apierr.Validation("unknown_equipment_type", err)
		}
		equipmentType = string(t)
	}
	return s.repo.List(dbctx.For(ctx), equipmentType)
}

func (s *recordService) Create(ctx context.Context, rec *inspection.Record) (*inspection.Record, error) {
	if err := s.prepare(rec); err != nil {
		return nil, err
	}
	out, err := s.repo.Create(dbctx.For(ctx), rec)
	if err != nil {
		return nil, mapStoreError(err, rec.ID)
	}
	s.log.Info("Inspection record created", "record_id", out.ID, "equipment_type", out.EquipmentType)
	return out, nil
}

func (s *recordService) Update(ctx context.Context, rec *inspection.Record) (*inspection.Record, error) {
	if err := s.prepare(rec); err != nil {
		return nil, err
	}
	out, err := s.repo.Update(dbctx.For(ctx), rec)
	if err != nil {
		return nil, mapStoreError(err, rec.ID)
	}
	return out, nil
}

// prepare normalises a record the way every load does: the checklist is
// hydrated against its template and a missing state is derived.
func (s *recordService) prepare(rec *inspection.Record) error {
	t, err := checklist.ParseEquipmentType(rec.EquipmentType)
	if err != nil {
		return apierr.Validation("unknown_equipment_type", err)
	}
	rec.EquipmentType = string(t)
	if strings.TrimSpace(rec.ReferenceInterne) == "" {
		return apierr.Validation("reference_required", errors.New("referenceInterne is required"))
	}
	if rec.Etat != "" && !rec.Etat.Valid() {
		return apierr.Validation("invalid_state", fmt.Errorf("unknown state %q", rec.Etat))
	}
	tree := checklist.HydrateJSON(rec.InspectionData, checklist.MustTemplate(t))
	data, err := tree.MarshalJSON()
	if err != nil {
		return err
	}
	rec.InspectionData = data
	if len(rec.CrossedOutWords) == 0 {
		rec.CrossedOutWords = []byte("{}")
	}
	*rec = reconcile.Settle(*rec, *rec, s.now())
	return nil
}

func mapStoreError(err error, id uuid.UUID) error {
	switch {
	case errors.Is(err, db.ErrNotFound):
		return apierr.New(404, "record_not_found", fmt.Errorf("%w: %s", ErrRecordNotFound, id))
	case errors.Is(err, db.ErrDuplicate):
		return apierr.New(409, "record_exists", err)
	default:
		return apierr.Transfer(500, "persistence_failed", err)
	}
}
