package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/DavidAtikpo/irata-sub002/internal/data/repos"
	"github.com/DavidAtikpo/irata-sub002/internal/data/repos/inspection"
	"github.com/DavidAtikpo/irata-sub002/internal/modules/propagation"
	"github.com/DavidAtikpo/irata-sub002/internal/platform/apierr"
	"github.com/DavidAtikpo/irata-sub002/internal/platform/dbctx"
	"github.com/DavidAtikpo/irata-sub002/internal/platform/logger"
	"github.com/DavidAtikpo/irata-sub002/internal/realtime"
	"github.com/DavidAtikpo/irata-sub002/internal/realtime/bus"
)

// localPublisher fans an artifact out through the record repository and
// announces the touched ids on the event bus.
type localPublisher struct {
	log  *logger.Logger
	repo repos.RecordRepo
	bus  bus.Bus
}

func NewLocalPublisher(baseLog *logger.Logger, repo repos.RecordRepo, b bus.Bus) propagation.Publisher {
	return &localPublisher{log: baseLog.With("service", "LocalPublisher"), repo: repo, bus: b}
}

func (p *localPublisher) PublishArtifact(ctx context.Context, a propagation.Artifact) (int, error) {
	dbc := dbctx.For(ctx)
	src, err := p.repo.GetByID(dbc, a.SourceID)
	if err != nil {
		return 0, mapStoreError(err, a.SourceID)
	}
	scope := inspection.ScopeOf(src)

	var ids []uuid.UUID
	switch a.Kind {
	case propagation.KindCertificate:
		ids, err = p.repo.PropagateCertificate(dbc, scope, a.CertificateURL)
	case propagation.KindSignature:
		signedAt := time.Now()
		if a.SignedAt != nil {
			signedAt = *a.SignedAt
		}
		ids, err = p.repo.PropagateSignature(dbc, scope, a.SignatureDataURI, signedAt)
	default:
		return 0, apierr.Validation("unknown_artifact_kind", fmt.Errorf("unknown artifact kind %q", a.Kind))
	}
	if err != nil {
		return 0, mapStoreError(err, a.SourceID)
	}

	if p.bus != nil && len(ids) > 0 {
		if err := p.bus.Publish(ctx, realtime.Propagated(a.SourceID, string(a.Kind), ids)); err != nil {
			p.log.Warn("propagation event not published", "source_id", a.SourceID, "error", err)
		}
	}
	return len(ids), nil
}
