package booking

import (
	"sort"

	"github.com/BruksfildServices01/hospital-device-booking/internal/httperr"
	"github.com/BruksfildServices01/hospital-device-booking/internal/models"
)

// Complete closes an approved booking once its usage day has started.
// today is the canonical day in the hospital's timezone.
func Complete(b *models.DeviceBooking, today string) error {
	if err := CanComplete(Status(b.Status)); err != nil {
		return err
	}
	// canonical days compare as strings
	if b.UsageDay > today {
		return httperr.Validation("too_early", "a booking cannot be completed before its usage day")
	}
	b.Status = string(StatusCompleted)
	return nil
}

type ScheduleEntry struct {
	ID          uint   `json:"id"`
	UserID      uint   `json:"userId"`
	AccountName string `json:"accountName"`
	Priority    string `json:"priority"`
	Status      string `json:"status"`
}

// SlotUsage is one time slot of a device on a given day.
type SlotUsage struct {
	UsageTime string          `json:"usageTime"`
	Taken     bool            `json:"taken"`
	Bookings  []ScheduleEntry `json:"bookings"`
}

// Schedule groups the live bookings of one device and day by time slot.
// A slot is taken once an approved or completed booking holds it.
func Schedule(bookings []models.DeviceBooking) []SlotUsage {
	sorted := make([]models.DeviceBooking, 0, len(bookings))
	for _, b := range bookings {
		if Status(b.Status) != StatusRejected {
			sorted = append(sorted, b)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].UsageTime != sorted[j].UsageTime {
			return sorted[i].UsageTime < sorted[j].UsageTime
		}
		return sorted[i].ID < sorted[j].ID
	})

	out := []SlotUsage{}
	for _, b := range sorted {
		if len(out) == 0 || out[len(out)-1].UsageTime != b.UsageTime {
			out = append(out, SlotUsage{UsageTime: b.UsageTime})
		}
		slot := &out[len(out)-1]
		slot.Bookings = append(slot.Bookings, ScheduleEntry{
			ID:          b.ID,
			UserID:      b.UserID,
			AccountName: b.AccountName,
			Priority:    b.Priority,
			Status:      b.Status,
		})
		switch Status(b.Status) {
		case StatusApproved, StatusCompleted:
			slot.Taken = true
		}
	}
	return out
}
