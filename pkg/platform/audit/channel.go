package audit

import (
	"context"
	"errors"
)

// ErrInboxFull reports a dropped event. Audit delivery is advisory, so the
// emitting operation still succeeds; callers decide whether to log the drop.
var ErrInboxFull = errors.New("audit inbox full")

// ChannelPublisher forwards events into a channel drained by worker.Worker.
// Emit never blocks a registry operation on the audit pipeline.
type ChannelPublisher struct {
	C chan<- Event
}

func (p ChannelPublisher) Emit(_ context.Context, event Event) error {
	select {
	case p.C <- event:
		return nil
	default:
		return ErrInboxFull
	}
}
