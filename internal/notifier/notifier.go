// Package notifier implements the fire-and-forget notification dispatcher.
// Dispatch never fails the triggering operation: payloads are queued on a
// buffered channel and a background goroutine publishes them at-least-once,
// best-effort.
package notifier

import (
	"context"
	"encoding/json"
	"time"

	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"

	"registrations/internal/model"
)

// Publisher is the transport the dispatcher drains into.
type Publisher interface {
	Publish(message []byte) error
}

type Dispatcher struct {
	publisher Publisher
	queue     chan model.Notification
	done      chan struct{}
	cancel    context.CancelFunc
	strategy  retry.Strategy
}

const queueCapacity = 128

func NewDispatcher(publisher Publisher) *Dispatcher {
	return &Dispatcher{
		publisher: publisher,
		queue:     make(chan model.Notification, queueCapacity),
		done:      make(chan struct{}),
		strategy:  retry.Strategy{Attempts: 3, Delay: 500 * time.Millisecond, Backoff: 2},
	}
}

// Dispatch queues a notification without blocking the caller. When the
// queue is full the notification is dropped with a warning.
func (d *Dispatcher) Dispatch(n model.Notification) {
	select {
	case d.queue <- n:
	default:
		zlog.Logger.Warn().
			Int64("event_owner_id", n.EventOwnerID).
			Str("participant_email", n.ParticipantEmail).
			Msg("notification queue full, dropping notification")
	}
}

func (d *Dispatcher) Start(ctx context.Context) {
	cctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	zlog.Logger.Info().Msg("notification dispatcher started")

	go func() {
		defer close(d.done)

		for {
			select {
			case n := <-d.queue:
				d.publish(n)
			case <-cctx.Done():
				d.drain()
				zlog.Logger.Info().Msg("notification dispatcher stopped")
				return
			}
		}
	}()
}

func (d *Dispatcher) Stop() {
	if d.cancel != nil {
		d.cancel()
		<-d.done
	}
}

func (d *Dispatcher) drain() {
	for {
		select {
		case n := <-d.queue:
			d.publish(n)
		default:
			return
		}
	}
}

func (d *Dispatcher) publish(n model.Notification) {
	payload, err := json.Marshal(n)
	if err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to marshal notification")
		return
	}

	err = retry.Do(func() error {
		return d.publisher.Publish(payload)
	}, d.strategy)
	if err != nil {
		zlog.Logger.Warn().
			Err(err).
			Int64("event_owner_id", n.EventOwnerID).
			Str("event_name", n.EventName).
			Msg("failed to publish notification, dropping")
		return
	}

	zlog.Logger.Info().
		Int64("event_owner_id", n.EventOwnerID).
		Str("participant_email", n.ParticipantEmail).
		Msg("notification published")
}
