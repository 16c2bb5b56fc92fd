// Package control carries parameter changes from control surfaces (panel, console, websocket
// clients) to the render thread. Producers may run on any goroutine; the pipeline is only
// mutated by Drain, which the render loop calls between frames.
package control

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"fxdemo/internal/pipeline"
)

var ErrBusFull = errors.New("control bus full")

type command struct {
	ev    pipeline.Event
	reply chan error // nil for fire-and-forget
}

// Bus is a bounded queue of pipeline events.
type Bus struct {
	ch  chan command
	log zerolog.Logger
}

// NewBus returns a Bus holding at most capacity pending events.
func NewBus(capacity int, log zerolog.Logger) *Bus {
	if capacity < 1 {
		capacity = 1
	}
	return &Bus{ch: make(chan command, capacity), log: log}
}

// Send queues ev without waiting. A rejected event is logged by Drain, not returned here.
func (b *Bus) Send(ev pipeline.Event) error {
	select {
	case b.ch <- command{ev: ev}:
		return nil
	default:
		return ErrBusFull
	}
}

// Submit queues ev and waits until the render thread has applied it, returning the result.
func (b *Bus) Submit(ctx context.Context, ev pipeline.Event) error {
	reply := make(chan error, 1)
	select {
	case b.ch <- command{ev: ev, reply: reply}:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Drain applies every pending event in arrival order and returns how many succeeded.
// Failures go back to the submitter, or to the log for fire-and-forget events.
func (b *Bus) Drain(apply func(pipeline.Event) error) int {
	applied := 0
	for {
		select {
		case cmd := <-b.ch:
			err := apply(cmd.ev)
			if err == nil {
				applied++
			}
			if cmd.reply != nil {
				cmd.reply <- err
			} else if err != nil {
				b.log.Warn().Err(err).Str("stage", cmd.ev.Stage).Str("param", cmd.ev.Param).Msg("control event rejected")
			}
		default:
			return applied
		}
	}
}

// Pending reports the number of queued events.
func (b *Bus) Pending() int { return len(b.ch) }
