package events

import (
	"context"

	"github.com/linekeeper/linekeeper/internal/logging"
)

// Emitter delivers events to observers. Emit must not block and must not
// fail the operation that produced the event.
type Emitter interface {
	Emit(ctx context.Context, ev Event)
}

// LogEmitter writes every event to the structured log.
type LogEmitter struct {
	logger logging.Logger
}

func NewLogEmitter(l logging.Logger) *LogEmitter {
	return &LogEmitter{logger: l.With("module", "events")}
}

func (e *LogEmitter) Emit(ctx context.Context, ev Event) {
	args := append([]any{"event", ev.EventType()}, ev.Fields()...)
	e.logger.Info(ctx, "event emitted", args...)
}

// ChannelEmitter buffers events on a channel for in-process observers.
// When the buffer is full the event is dropped rather than blocking a
// mutating operation.
type ChannelEmitter struct {
	ch chan Event
}

func NewChannelEmitter(buffer int) *ChannelEmitter {
	return &ChannelEmitter{ch: make(chan Event, buffer)}
}

func (e *ChannelEmitter) Emit(_ context.Context, ev Event) {
	select {
	case e.ch <- ev:
	default:
	}
}

// Events exposes the observer side of the channel.
func (e *ChannelEmitter) Events() <-chan Event {
	return e.ch
}

// MultiEmitter fans one event out to several emitters.
type MultiEmitter []Emitter

func (m MultiEmitter) Emit(ctx context.Context, ev Event) {
	for _, e := range m {
		e.Emit(ctx, ev)
	}
}
