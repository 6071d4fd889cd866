package propagation

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
)

type countingPublisher struct {
	calls atomic.Int32
	err   error
	block chan struct{}
}

func (p *countingPublisher) PublishArtifact(ctx context.Context, a Artifact) (int, error) {
	p.calls.Add(1)
	if p.block != nil {
		<-p.block
	}
	return 0, p.err
}

func TestTriggerCallsOnceAndSwallowsFailure(t *testing.T) {
	pub := &countingPublisher{err: errors.New("status 500")}
	b := NewBroadcaster(pub, time.Second, nil)

	b.Trigger(Artifact{SourceID: uuid.New(), Kind: KindCertificate, CertificateURL: "https://cert"})
	b.Wait()

	if got := pub.calls.Load(); got != 1 {
		t.Fatalf("publish calls: got=%d want=1", got)
	}
}

func TestTriggerDoesNotBlockCaller(t *testing.T) {
	pub := &countingPublisher{block: make(chan struct{})}
	b := NewBroadcaster(pub, time.Second, nil)

	done := make(chan struct{})
	go func() {
		b.Trigger(Artifact{SourceID: uuid.New(), Kind: KindSignature})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Trigger blocked on the publisher")
	}
	close(pub.block)
	b.Wait()
}

func TestNilBroadcasterIsNoop(t *testing.T) {
	var b *Broadcaster
	b.Trigger(Artifact{})
	b.Wait()
	NewBroadcaster(nil, 0, nil).Trigger(Artifact{})
}
