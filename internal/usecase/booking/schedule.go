package booking

import (
	"context"

	domain "github.com/BruksfildServices01/hospital-device-booking/internal/domain/booking"
	"github.com/BruksfildServices01/hospital-device-booking/internal/httperr"
	"github.com/BruksfildServices01/hospital-device-booking/internal/timezone"
)

type DeviceScheduleOutput struct {
	DeviceID   uint               `json:"deviceId"`
	DeviceName string             `json:"deviceName"`
	UsageDay   string             `json:"usageDay"`
	Slots      []domain.SlotUsage `json:"slots"`
}

// DeviceSchedule shows which time slots of a device are held on a day.
type DeviceSchedule struct {
	repo domain.Repository
	tz   string
}

func NewDeviceSchedule(repo domain.Repository, tz string) *DeviceSchedule {
	return &DeviceSchedule{repo: repo, tz: tz}
}

func (uc *DeviceSchedule) Execute(
	ctx context.Context,
	deviceID uint,
	rawDay string,
) (*DeviceScheduleOutput, error) {

	day, err := timezone.CanonicalDay(rawDay, uc.tz)
	if err != nil {
		return nil, httperr.Validation("invalid_usage_day", "day must be YYYY-MM-DD or an ISO timestamp")
	}

	device, err := uc.repo.GetDevice(ctx, deviceID)
	if err != nil {
		return nil, deviceNotFound(err)
	}

	bookings, err := uc.repo.ListDay(ctx, deviceID, day)
	if err != nil {
		return nil, err
	}

	return &DeviceScheduleOutput{
		DeviceID:   device.ID,
		DeviceName: device.Name,
		UsageDay:   day,
		Slots:      domain.Schedule(bookings),
	}, nil
}
