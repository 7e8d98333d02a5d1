package audit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type memorySink struct {
	mu      sync.Mutex
	events  []Event
	started chan struct{}
	release chan struct{}
	err     error
}

func (s *memorySink) Write(ctx context.Context, ev Event) error {
	if s.started != nil {
		select {
		case s.started <- struct{}{}:
		default:
		}
	}
	if s.release != nil {
		<-s.release
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	return s.err
}

func (s *memorySink) actions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.events))
	for _, ev := range s.events {
		out = append(out, ev.Action)
	}
	return out
}

func testEvent(action string) Event {
	return Prepare(Origin{}, action, "message for "+action, nil)
}

func TestDispatcher_DeliversAndDrainsOnClose(t *testing.T) {
	sink := &memorySink{}
	d := NewDispatcher(sink, 10)

	for _, a := range []string{"a", "b", "c"} {
		d.Record(testEvent(a))
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := d.Close(ctx); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	got := sink.actions()
	if len(got) != 3 || got[0] != "a" || got[2] != "c" {
		t.Errorf("delivered = %v, want [a b c]", got)
	}
}

func TestDispatcher_DropsWhenQueueFull(t *testing.T) {
	sink := &memorySink{
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	d := NewDispatcher(sink, 1)

	d.Record(testEvent("first"))
	<-sink.started

	done := make(chan struct{})
	go func() {
		d.Record(testEvent("second"))
		d.Record(testEvent("third"))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Record() blocked on a full queue")
	}

	close(sink.release)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := d.Close(ctx); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	got := sink.actions()
	if len(got) != 2 || got[0] != "first" || got[1] != "second" {
		t.Errorf("delivered = %v, want [first second]", got)
	}
}

func TestDispatcher_SinkErrorIsSwallowed(t *testing.T) {
	sink := &memorySink{err: errors.New("db down")}
	d := NewDispatcher(sink, 4)

	d.Record(testEvent("x"))
	d.Record(testEvent("y"))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := d.Close(ctx); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if got := sink.actions(); len(got) != 2 {
		t.Errorf("worker stopped after failure, delivered = %v", got)
	}
}

func TestDispatcher_RecordAfterCloseDoesNotPanic(t *testing.T) {
	d := NewDispatcher(&memorySink{}, 1)
	if err := d.Close(context.Background()); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	d.Record(testEvent("late"))
	if err := d.Close(context.Background()); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

func TestDispatcher_SkipsInvalidEvents(t *testing.T) {
	sink := &memorySink{}
	d := NewDispatcher(sink, 4)

	d.Record(Prepare(Origin{}, "", "no action", nil))
	d.Record(Prepare(Origin{}, "no_message", "", nil))

	_ = d.Close(context.Background())
	if got := sink.actions(); len(got) != 0 {
		t.Errorf("invalid events delivered: %v", got)
	}
}

func TestMultiSink_WritesToAll(t *testing.T) {
	ok := &memorySink{}
	failing := &memorySink{err: errors.New("broker unavailable")}
	m := MultiSink{failing, nil, ok}

	err := m.Write(context.Background(), testEvent("fanout"))
	if err == nil {
		t.Error("MultiSink.Write() should report the failing sink")
	}
	if len(ok.actions()) != 1 {
		t.Error("healthy sink did not receive the event")
	}
}
