package device

import (
	"github.com/BruksfildServices01/hospital-device-booking/internal/audit"
	"github.com/BruksfildServices01/hospital-device-booking/internal/domain/booking"
	"github.com/BruksfildServices01/hospital-device-booking/internal/models"
)

const Entity = "device"

var AuditedFields = []string{"code", "name", "location", "description"}

// BlockingStatuses are the booking statuses that keep a device from being
// deleted.
var BlockingStatuses = []string{
	string(booking.StatusPending),
	string(booking.StatusApproved),
}

func Snapshot(d *models.Device) audit.Snapshot {
	return audit.Snapshot{
		{Name: "code", Value: d.Code},
		{Name: "name", Value: d.Name},
		{Name: "location", Value: d.Location},
		{Name: "description", Value: d.Description},
	}
}
