package audit

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/BruksfildServices01/hospital-device-booking/internal/metrics"
)

const writeTimeout = 5 * time.Second

type Dispatcher struct {
	sink  Sink
	queue chan Event
	done  chan struct{}

	mu     sync.RWMutex
	closed bool
}

func NewDispatcher(sink Sink, buffer int) *Dispatcher {
	if buffer <= 0 {
		buffer = 100
	}
	d := &Dispatcher{
		sink:  sink,
		queue: make(chan Event, buffer),
		done:  make(chan struct{}),
	}

	go d.worker()
	return d
}

func (d *Dispatcher) worker() {
	defer close(d.done)
	for ev := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		err := d.sink.Write(ctx, ev)
		cancel()
		if err != nil {
			metrics.AuditEvents.WithLabelValues("failed").Inc()
			log.Error().Err(err).
				Str("event_id", ev.ID).
				Str("action", ev.Action).
				Msg("audit write failed")
			continue
		}
		metrics.AuditEvents.WithLabelValues("written").Inc()
	}
}

// Record enqueues ev and returns immediately. A full queue or a closed
// dispatcher drops the event.
func (d *Dispatcher) Record(ev Event) {
	if !ev.valid() {
		log.Warn().Str("action", ev.Action).Msg("audit event missing action or message, skipped")
		return
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		metrics.AuditEvents.WithLabelValues("dropped").Inc()
		log.Warn().Str("action", ev.Action).Msg("audit dispatcher closed, dropping event")
		return
	}

	select {
	case d.queue <- ev:
	default:
		metrics.AuditEvents.WithLabelValues("dropped").Inc()
		log.Warn().Str("action", ev.Action).Msg("audit queue full, dropping event")
	}
}

// Close stops accepting events and waits for the queue to drain.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
