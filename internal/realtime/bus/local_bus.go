package bus

import (
	"context"
	"fmt"
	"sync"

	"github.com/DavidAtikpo/irata-sub002/internal/realtime"
)

// localBus delivers events to forwarders of the same process.
type localBus struct {
	mu   sync.RWMutex
	subs map[int]func(realtime.Event)
	next int
}

func NewLocalBus() Bus {
	return &localBus{subs: map[int]func(realtime.Event){}}
}

func (b *localBus) Publish(ctx context.Context, evt realtime.Event) error {
	b.mu.RLock()
	handlers := make([]func(realtime.Event), 0, len(b.subs))
	for _, fn := range b.subs {
		handlers = append(handlers, fn)
	}
	b.mu.RUnlock()
	for _, fn := range handlers {
		fn(evt)
	}
	return nil
}

func (b *localBus) StartForwarder(ctx context.Context, onEvt func(e realtime.Event)) error {
	if onEvt == nil {
		return fmt.Errorf("onEvt callback required")
	}
	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = onEvt
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}()
	return nil
}

func (b *localBus) Close() error {
	b.mu.Lock()
	b.subs = map[int]func(realtime.Event){}
	b.mu.Unlock()
	return nil
}
