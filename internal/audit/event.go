package audit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

const (
	unknownActorID   = "unknown"
	unknownActorName = "Anonymous"
	unknownActorRole = "N/A"
	unknownContext   = "UNKNOWN"
)

type Actor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

type RequestContext struct {
	Method    string `json:"method"`
	Endpoint  string `json:"endpoint"`
	Location  string `json:"location"`
	UserAgent string `json:"userAgent"`
}

// Origin identifies who triggered an action and from where.
type Origin struct {
	Actor   Actor
	Context RequestContext
}

type Event struct {
	ID         string         `json:"id"`
	Action     string         `json:"action"`
	Actor      Actor          `json:"actor"`
	Context    RequestContext `json:"context"`
	Message    string         `json:"message"`
	Detail     any            `json:"detail"`
	OccurredAt time.Time      `json:"occurredAt"`
}

// Recorder accepts events without blocking the caller.
type Recorder interface {
	Record(ev Event)
}

// Sink persists or forwards a single event.
type Sink interface {
	Write(ctx context.Context, ev Event) error
}

// Prepare builds an event from the request origin, filling the blanks with
// the placeholder actor and context values.
func Prepare(origin Origin, action, message string, detail any) Event {
	a := origin.Actor
	if a.ID == "" {
		a.ID = unknownActorID
	}
	if a.Name == "" {
		a.Name = unknownActorName
	}
	if a.Role == "" {
		a.Role = unknownActorRole
	}

	rc := origin.Context
	rc.Method = orUnknown(rc.Method)
	rc.Endpoint = orUnknown(rc.Endpoint)
	rc.Location = orUnknown(rc.Location)
	rc.UserAgent = orUnknown(rc.UserAgent)

	if detail == nil {
		detail = map[string]any{}
	}

	return Event{
		ID:         uuid.NewString(),
		Action:     action,
		Actor:      a,
		Context:    rc,
		Message:    message,
		Detail:     detail,
		OccurredAt: time.Now().UTC(),
	}
}

func orUnknown(s string) string {
	if s == "" {
		return unknownContext
	}
	return s
}

func (ev Event) valid() bool {
	return ev.Action != "" && ev.Message != ""
}

// MultiSink writes every event to each sink; one failing sink does not
// stop the others.
type MultiSink []Sink

func (m MultiSink) Write(ctx context.Context, ev Event) error {
	var errs []error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Write(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type RecorderFunc func(ev Event)

func (f RecorderFunc) Record(ev Event) { f(ev) }

// Nop discards everything.
var Nop Recorder = RecorderFunc(func(Event) {})
