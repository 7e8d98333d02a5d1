package audit

import "testing"

func TestPrepare_Defaults(t *testing.T) {
	ev := Prepare(Origin{}, "booking_created", "created", nil)

	if ev.Actor.ID != "unknown" || ev.Actor.Name != "Anonymous" || ev.Actor.Role != "N/A" {
		t.Errorf("actor defaults = %+v", ev.Actor)
	}
	if ev.Context.Method != "UNKNOWN" || ev.Context.Endpoint != "UNKNOWN" ||
		ev.Context.Location != "UNKNOWN" || ev.Context.UserAgent != "UNKNOWN" {
		t.Errorf("context defaults = %+v", ev.Context)
	}
	if ev.ID == "" {
		t.Error("event id not generated")
	}
	if ev.Detail == nil {
		t.Error("nil detail should become an empty object")
	}
	if ev.OccurredAt.IsZero() {
		t.Error("OccurredAt not set")
	}
}

func TestPrepare_KeepsOrigin(t *testing.T) {
	origin := Origin{
		Actor:   Actor{ID: "7", Name: "Dr. Lan", Role: "approver"},
		Context: RequestContext{Method: "PUT", Endpoint: "/api/device-bookings/3/status", Location: "10.0.0.4", UserAgent: "curl/8"},
	}
	ev := Prepare(origin, "booking_approved", "approved", map[string]any{"k": "v"})

	if ev.Actor != origin.Actor {
		t.Errorf("actor = %+v, want %+v", ev.Actor, origin.Actor)
	}
	if ev.Context != origin.Context {
		t.Errorf("context = %+v, want %+v", ev.Context, origin.Context)
	}
	if a, b := Prepare(origin, "x", "y", nil).ID, Prepare(origin, "x", "y", nil).ID; a == b {
		t.Error("event ids should be unique")
	}
}
