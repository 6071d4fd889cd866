package propagation

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/DavidAtikpo/irata-sub002/internal/platform/apierr"
	"github.com/DavidAtikpo/irata-sub002/internal/platform/logger"
)

type Kind string

const (
	KindCertificate Kind = "certificate"
	KindSignature   Kind = "signature"
)

// Artifact is what gets fanned out from one record to its siblings.
type Artifact struct {
	SourceID         uuid.UUID  `json:"sourceId"`
	Kind             Kind       `json:"kind"`
	CertificateURL   string     `json:"certificateUrl,omitempty"`
	SignatureDataURI string     `json:"digitalSignature,omitempty"`
	SignedAt         *time.Time `json:"signedAt,omitempty"`
}

// Publisher performs the broadcast call. Implementations must be idempotent.
type Publisher interface {
	PublishArtifact(ctx context.Context, a Artifact) (int, error)
}

type Broadcaster struct {
	pub     Publisher
	log     *logger.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewBroadcaster(pub Publisher, timeout time.Duration, log *logger.Logger) *Broadcaster {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Broadcaster{pub: pub, timeout: timeout, log: log.With("module", "PropagationBroadcaster")}
}

// Trigger starts one broadcast attempt and returns immediately. Call it only
// after the source record is saved. Failures are logged and dropped; there is
// no retry.
func (b *Broadcaster) Trigger(a Artifact) {
	if b == nil || b.pub == nil {
		return
	}
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
		defer cancel()
		n, err := b.pub.PublishArtifact(ctx, a)
		if err != nil {
			berr := apierr.Broadcast("broadcast_failed", err)
			b.log.Warn("Artifact broadcast failed",
				"source_id", a.SourceID,
				"kind", a.Kind,
				"error_kind", berr.Kind,
				"error", berr,
			)
			return
		}
		b.log.Info("Artifact broadcast", "source_id", a.SourceID, "kind", a.Kind, "updated", n)
	}()
}

// Wait blocks until every triggered broadcast has returned.
func (b *Broadcaster) Wait() {
	if b == nil {
		return
	}
	b.wg.Wait()
}
