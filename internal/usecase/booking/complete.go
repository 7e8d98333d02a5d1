package booking

import (
	"context"
	"time"

	"github.com/BruksfildServices01/hospital-device-booking/internal/audit"
	domain "github.com/BruksfildServices01/hospital-device-booking/internal/domain/booking"
	"github.com/BruksfildServices01/hospital-device-booking/internal/metrics"
	"github.com/BruksfildServices01/hospital-device-booking/internal/models"
	"github.com/BruksfildServices01/hospital-device-booking/internal/timezone"
)

type CompleteBookingInput struct {
	BookingID uint

	Origin audit.Origin
}

// CompleteBooking marks an approved booking as used. The device lock is
// taken like any other status change.
type CompleteBooking struct {
	repo   domain.Repository
	audit  audit.Recorder
	format *audit.Formatter
	tz     string
	now    func() time.Time
}

func NewCompleteBooking(
	repo domain.Repository,
	rec audit.Recorder,
	format *audit.Formatter,
	tz string,
) *CompleteBooking {
	return &CompleteBooking{
		repo:   repo,
		audit:  rec,
		format: format,
		tz:     tz,
		now:    time.Now,
	}
}

func (uc *CompleteBooking) Execute(
	ctx context.Context,
	in CompleteBookingInput,
) (*models.DeviceBooking, error) {

	today := uc.now().In(timezone.Location(uc.tz)).Format(timezone.DayLayout)

	var before audit.Snapshot
	b, _, err := uc.repo.Decide(ctx, in.BookingID, func(b *models.DeviceBooking) error {
		before = domain.Snapshot(b)
		return domain.Complete(b, today)
	}, nil)
	if err != nil {
		return nil, bookingNotFound(err)
	}

	metrics.BookingTransitions.WithLabelValues(b.Status, "completion").Inc()

	uc.audit.Record(audit.Prepare(
		in.Origin,
		"device_booking_completed",
		decisionMessage(actorName(in.Origin), b),
		audit.Detail{
			ResourceType: domain.Entity,
			ResourceID:   b.ID,
			Details: uc.format.Update(
				domain.Entity,
				audit.Diff(before, domain.Snapshot(b), []string{"status"}),
			),
		},
	))

	return b, nil
}
