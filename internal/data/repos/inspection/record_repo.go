package inspection

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/DavidAtikpo/irata-sub002/internal/data/db"
	types "github.com/DavidAtikpo/irata-sub002/internal/domain/inspection"
	"github.com/DavidAtikpo/irata-sub002/internal/platform/dbctx"
	"github.com/DavidAtikpo/irata-sub002/internal/platform/logger"
)

// SiblingScope selects the records that share an inspection lineage with a
// source record. An empty BatchID matches nothing.
type SiblingScope struct {
	EquipmentType string
	BatchID       string
	Exclude       uuid.UUID
}

func ScopeOf(r *types.Record) SiblingScope {
	return SiblingScope{EquipmentType: r.EquipmentType, BatchID: r.BatchID, Exclude: r.ID}
}

type RecordRepo interface {
	Create(dbc dbctx.Context, rec *types.Record) (*types.Record, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Record, error)
	List(dbc dbctx.Context, equipmentType string) ([]*types.Record, error)
	Update(dbc dbctx.Context, rec *types.Record) (*types.Record, error)
	Siblings(dbc dbctx.Context, scope SiblingScope) ([]*types.Record, error)
	PropagateCertificate(dbc dbctx.Context, scope SiblingScope, url string) ([]uuid.UUID, error)
	PropagateSignature(dbc dbctx.Context, scope SiblingScope, dataURI string, signedAt time.Time) ([]uuid.UUID, error)
}

type recordRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRecordRepo(db *gorm.DB, baseLog *logger.Logger) RecordRepo {
	repoLog := baseLog.With("repo", "RecordRepo")
	return &recordRepo{db: db, log: repoLog}
}

func (rr *recordRepo) tx(dbc dbctx.Context) *gorm.DB {
	return dbc.DB(rr.db)
}

func (rr *recordRepo) Create(dbc dbctx.Context, rec *types.Record) (*types.Record, error) {
	if err := rr.tx(dbc).Create(rec).Error; err != nil {
		return nil, db.TranslateError(err)
	}
	return rec, nil
}

func (rr *recordRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Record, error) {
	var out types.Record
	if err := rr.tx(dbc).Where("id = ?", id).First(&out).Error; err != nil {
		return nil, db.TranslateError(err)
	}
	return &out, nil
}

func (rr *recordRepo) List(dbc dbctx.Context, equipmentType string) ([]*types.Record, error) {
	var results []*types.Record
	q := rr.tx(dbc).Order("updated_at DESC")
	if t := strings.TrimSpace(equipmentType); t != "" {
		q = q.Where("equipment_type = ?", t)
	}
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// Update writes every column of rec. The caller owns the merge.
func (rr *recordRepo) Update(dbc dbctx.Context, rec *types.Record) (*types.Record, error) {
	if rec.ID == uuid.Nil {
		return nil, db.ErrNotFound
	}
	res := rr.tx(dbc).Model(&types.Record{}).Where("id = ?", rec.ID).Select("*").Omit("created_at").Updates(rec)
	if res.Error != nil {
		return nil, db.TranslateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, db.ErrNotFound
	}
	return rr.GetByID(dbc, rec.ID)
}

func (rr *recordRepo) scoped(dbc dbctx.Context, scope SiblingScope) *gorm.DB {
	return rr.tx(dbc).Model(&types.Record{}).
		Where("equipment_type = ? AND batch_id = ? AND id <> ?", scope.EquipmentType, scope.BatchID, scope.Exclude)
}

func (rr *recordRepo) Siblings(dbc dbctx.Context, scope SiblingScope) ([]*types.Record, error) {
	var results []*types.Record
	if strings.TrimSpace(scope.BatchID) == "" {
		return results, nil
	}
	if err := rr.scoped(dbc, scope).Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (rr *recordRepo) propagate(dbc dbctx.Context, scope SiblingScope, updates map[string]any) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if strings.TrimSpace(scope.BatchID) == "" {
		return ids, nil
	}
	err := rr.tx(dbc).Transaction(func(txx *gorm.DB) error {
		inner := dbc.InTx(txx)
		if err := rr.scoped(inner, scope).Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		updates["updated_at"] = time.Now().UTC()
		return txx.Model(&types.Record{}).Where("id IN ?", ids).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}
	rr.log.Debug("artifact propagated", "batch_id", scope.BatchID, "count", len(ids))
	return ids, nil
}

func (rr *recordRepo) PropagateCertificate(dbc dbctx.Context, scope SiblingScope, url string) ([]uuid.UUID, error) {
	return rr.propagate(dbc, scope, map[string]any{"certificate_url": url})
}

func (rr *recordRepo) PropagateSignature(dbc dbctx.Context, scope SiblingScope, dataURI string, signedAt time.Time) ([]uuid.UUID, error) {
	return rr.propagate(dbc, scope, map[string]any{
		"signature_data_uri": dataURI,
		"signed_at":          signedAt.UTC(),
	})
}
