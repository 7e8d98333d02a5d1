package booking

import (
	"errors"
	"fmt"

	"github.com/BruksfildServices01/hospital-device-booking/internal/audit"
	domain "github.com/BruksfildServices01/hospital-device-booking/internal/domain/booking"
	"github.com/BruksfildServices01/hospital-device-booking/internal/httperr"
	"github.com/BruksfildServices01/hospital-device-booking/internal/metrics"
	"github.com/BruksfildServices01/hospital-device-booking/internal/models"
)

const resourceLabel = "device booking"

func notFound(err error, code, message string) error {
	if errors.Is(err, domain.ErrNotFound) {
		return httperr.NotFoundErr(code, message)
	}
	return err
}

func bookingNotFound(err error) error {
	return notFound(err, "booking_not_found", "Booking not found")
}

func userNotFound(err error) error {
	return notFound(err, "user_not_found", "User not found")
}

func deviceNotFound(err error) error {
	return notFound(err, "device_not_found", "Device not found")
}

func actorName(origin audit.Origin) string {
	if origin.Actor.Name == "" {
		return "Anonymous"
	}
	return origin.Actor.Name
}

func siblingIDs(list []models.DeviceBooking) []uint {
	ids := make([]uint, 0, len(list))
	for _, s := range list {
		ids = append(ids, s.ID)
	}
	return ids
}

func countCascade(list []models.DeviceBooking) {
	if len(list) == 0 {
		return
	}
	metrics.BookingTransitions.
		WithLabelValues(string(domain.StatusRejected), "cascade").
		Add(float64(len(list)))
}

func decisionMessage(performedBy string, b *models.DeviceBooking) string {
	return fmt.Sprintf("%q %s %s #%d", performedBy, b.Status, resourceLabel, b.ID)
}
