package bus

import (
	"context"

	"github.com/DavidAtikpo/irata-sub002/internal/realtime"
)

type Bus interface {
	Publish(ctx context.Context, evt realtime.Event) error
	StartForwarder(ctx context.Context, onEvt func(e realtime.Event)) error
	Close() error
}
