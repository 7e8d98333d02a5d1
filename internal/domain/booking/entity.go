package booking

import (
	"fmt"
	"time"

	"github.com/BruksfildServices01/hospital-device-booking/internal/audit"
	"github.com/BruksfildServices01/hospital-device-booking/internal/domain/user"
	"github.com/BruksfildServices01/hospital-device-booking/internal/httperr"
	"github.com/BruksfildServices01/hospital-device-booking/internal/models"
)

const Entity = "device_booking"

// UpdatableFields is the only set of fields compared when an update is
// audited.
var UpdatableFields = []string{
	"deviceId",
	"deviceName",
	"codeBA",
	"nameBA",
	"usageTime",
	"usageDay",
	"priority",
	"status",
}

type Slot struct {
	DeviceID  uint
	UsageDay  string
	UsageTime string
}

func SlotOf(b *models.DeviceBooking) Slot {
	return Slot{DeviceID: b.DeviceID, UsageDay: b.UsageDay, UsageTime: b.UsageTime}
}

func Snapshot(b *models.DeviceBooking) audit.Snapshot {
	return audit.Snapshot{
		{Name: "deviceId", Value: b.DeviceID},
		{Name: "deviceName", Value: b.DeviceName},
		{Name: "codeBA", Value: b.CodeBA},
		{Name: "nameBA", Value: b.NameBA},
		{Name: "usageTime", Value: b.UsageTime},
		{Name: "usageDay", Value: b.UsageDay},
		{Name: "priority", Value: b.Priority},
		{Name: "purpose", Value: b.Purpose},
		{Name: "status", Value: b.Status},
		{Name: "note", Value: b.Note},
	}
}

// ===============================
// Domain Actions
// ===============================

func Decide(b *models.DeviceBooking, target Status, note string) error {
	if err := CanDecide(Status(b.Status), target); err != nil {
		return err
	}
	b.Status = string(target)
	if note != "" {
		b.Note = note
	}
	return nil
}

func CascadeNote(approved *models.DeviceBooking) string {
	return fmt.Sprintf(
		"Automatically rejected: booking #%d was approved for %s on %s at %s",
		approved.ID, approved.DeviceName, approved.UsageDay, approved.UsageTime,
	)
}

func OpenEditRequest(b *models.DeviceBooking, requester *models.User, reason string, now time.Time) error {
	if b.UserID != requester.ID {
		return httperr.Forbidden("not_owner", "only the booking owner can request an edit")
	}
	if Status(b.Status) != StatusPending {
		return httperr.Validation("invalid_state", "edit requests are only allowed on pending bookings")
	}

	id := requester.ID
	b.EditRequest = models.EditRequest{
		RequesterID:   &id,
		RequesterName: requester.Name,
		Status:        string(EditPending),
		RequestedAt:   &now,
		Reason:        reason,
	}
	return nil
}

// ResolveEditRequest keeps the requester fields and only adds the
// approver's decision.
func ResolveEditRequest(b *models.DeviceBooking, approver *models.User, action EditAction, note string, now time.Time) error {
	result, ok := action.result()
	if !ok {
		return httperr.Validation("invalid_action", "action must be accept or reject")
	}
	if b.EditRequest.IsEmpty() {
		return httperr.NotFoundErr("edit_request_not_found", "this booking has no edit request")
	}
	if EditStatus(b.EditRequest.Status) != EditPending {
		return httperr.Validation("invalid_state", "edit request was already processed")
	}

	id := approver.ID
	b.EditRequest.Status = string(result)
	b.EditRequest.ApproverID = &id
	b.EditRequest.ApproverName = approver.Name
	b.EditRequest.ProcessedAt = &now
	b.EditRequest.ApproverNote = note
	return nil
}

// CanEdit decides whether editor may run the general update on b. Owners
// with the plain user role need the booking pending or an accepted edit
// request.
func CanEdit(b *models.DeviceBooking, editor *models.User) error {
	role := user.Role(editor.Role)
	if role.CanModerate() {
		return nil
	}
	if b.UserID != editor.ID {
		return httperr.Forbidden("not_owner", "only the booking owner can edit it")
	}
	if Status(b.Status) == StatusPending || EditStatus(b.EditRequest.Status) == EditAccepted {
		return nil
	}
	return httperr.Validation("invalid_state", "booking was already decided; request an edit first")
}

// SlotPolicy returns the check run against the bookings already holding a
// slot. Any holder blocks the new booking, unless override is on and a
// priority booking only meets normal holders.
func SlotPolicy(override bool, incoming Priority) SlotCheck {
	return func(holders []models.DeviceBooking) error {
		if len(holders) == 0 {
			return nil
		}
		if override && incoming == PriorityPriority {
			for _, h := range holders {
				if Priority(h.Priority) == PriorityPriority {
					return slotTaken()
				}
			}
			return nil
		}
		return slotTaken()
	}
}

func slotTaken() error {
	return httperr.Validation("slot_taken", "the device is already booked for this day and time")
}
