package booking

import (
	"testing"

	"github.com/BruksfildServices01/hospital-device-booking/internal/httperr"
	"github.com/BruksfildServices01/hospital-device-booking/internal/models"
)

func TestCanDecide(t *testing.T) {
	tests := []struct {
		name    string
		current Status
		target  Status
		code    string
	}{
		{"approve pending", StatusPending, StatusApproved, ""},
		{"reject pending", StatusPending, StatusRejected, ""},
		{"back to pending", StatusPending, StatusPending, "invalid_status"},
		{"complete via decision", StatusPending, StatusCompleted, "invalid_status"},
		{"approve approved", StatusApproved, StatusApproved, "invalid_state"},
		{"approve rejected", StatusRejected, StatusApproved, "invalid_state"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanDecide(tt.current, tt.target)
			if tt.code == "" {
				if err != nil {
					t.Errorf("CanDecide() error = %v", err)
				}
				return
			}
			if !httperr.IsBusiness(err, tt.code) {
				t.Errorf("CanDecide() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestSlotPolicy(t *testing.T) {
	normal := models.DeviceBooking{ID: 1, Priority: string(PriorityNormal)}
	urgent := models.DeviceBooking{ID: 2, Priority: string(PriorityPriority)}

	tests := []struct {
		name     string
		override bool
		incoming Priority
		holders  []models.DeviceBooking
		wantErr  bool
	}{
		{"free slot", false, PriorityNormal, nil, false},
		{"held slot", false, PriorityNormal, []models.DeviceBooking{normal}, true},
		{"priority without override", false, PriorityPriority, []models.DeviceBooking{normal}, true},
		{"priority over normal", true, PriorityPriority, []models.DeviceBooking{normal}, false},
		{"priority over priority", true, PriorityPriority, []models.DeviceBooking{normal, urgent}, true},
		{"normal with override", true, PriorityNormal, []models.DeviceBooking{normal}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := SlotPolicy(tt.override, tt.incoming)(tt.holders)
			if (err != nil) != tt.wantErr {
				t.Fatalf("check error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !httperr.IsBusiness(err, "slot_taken") {
				t.Errorf("check error = %v, want slot_taken", err)
			}
		})
	}
}

func TestCanEdit(t *testing.T) {
	owner := &models.User{ID: 1, Role: "user"}
	stranger := &models.User{ID: 2, Role: "user"}
	approver := &models.User{ID: 3, Role: "approver"}

	pending := &models.DeviceBooking{UserID: 1, Status: string(StatusPending)}
	approved := &models.DeviceBooking{UserID: 1, Status: string(StatusApproved)}
	unlocked := &models.DeviceBooking{
		UserID:      1,
		Status:      string(StatusApproved),
		EditRequest: models.EditRequest{Status: string(EditAccepted)},
	}

	if err := CanEdit(pending, owner); err != nil {
		t.Errorf("owner on pending: %v", err)
	}
	if err := CanEdit(unlocked, owner); err != nil {
		t.Errorf("owner with accepted edit: %v", err)
	}
	if err := CanEdit(approved, owner); !httperr.IsBusiness(err, "invalid_state") {
		t.Errorf("owner on approved: %v, want invalid_state", err)
	}
	if err := CanEdit(pending, stranger); httperr.KindOf(err) != httperr.KindForbidden {
		t.Errorf("stranger: %v, want forbidden", err)
	}
	if err := CanEdit(approved, approver); err != nil {
		t.Errorf("approver: %v", err)
	}
}

func TestComplete(t *testing.T) {
	b := &models.DeviceBooking{Status: string(StatusPending), UsageDay: "2024-06-01"}
	if err := Complete(b, "2024-06-02"); !httperr.IsBusiness(err, "invalid_state") {
		t.Errorf("pending: %v, want invalid_state", err)
	}

	b.Status = string(StatusApproved)
	if err := Complete(b, "2024-05-31"); !httperr.IsBusiness(err, "too_early") {
		t.Errorf("before day: %v, want too_early", err)
	}
	if err := Complete(b, "2024-06-01"); err != nil {
		t.Fatalf("on day: %v", err)
	}
	if b.Status != string(StatusCompleted) {
		t.Errorf("status = %s, want completed", b.Status)
	}
}

func TestSchedule(t *testing.T) {
	got := Schedule([]models.DeviceBooking{
		{ID: 4, UsageTime: "09:00-10:00", Status: "pending", AccountName: "Bob"},
		{ID: 3, UsageTime: "08:00-09:00", Status: "rejected"},
		{ID: 2, UsageTime: "08:00-09:00", Status: "approved", AccountName: "Alice"},
		{ID: 5, UsageTime: "09:00-10:00", Status: "pending", AccountName: "Carol"},
	})

	if len(got) != 2 {
		t.Fatalf("Schedule() = %d slots, want 2", len(got))
	}
	if got[0].UsageTime != "08:00-09:00" || !got[0].Taken || len(got[0].Bookings) != 1 {
		t.Errorf("slot[0] = %+v", got[0])
	}
	if got[1].Taken || len(got[1].Bookings) != 2 || got[1].Bookings[0].ID != 4 {
		t.Errorf("slot[1] = %+v", got[1])
	}

	if empty := Schedule(nil); empty == nil || len(empty) != 0 {
		t.Errorf("Schedule(nil) = %#v, want empty slice", empty)
	}
}

func TestCascadeNote(t *testing.T) {
	note := CascadeNote(&models.DeviceBooking{ID: 7, DeviceName: "ECG", UsageDay: "2024-06-01", UsageTime: "08:00"})
	want := "Automatically rejected: booking #7 was approved for ECG on 2024-06-01 at 08:00"
	if note != want {
		t.Errorf("CascadeNote() = %q, want %q", note, want)
	}
}
