package booking

import (
	"context"

	"github.com/BruksfildServices01/hospital-device-booking/internal/audit"
	domain "github.com/BruksfildServices01/hospital-device-booking/internal/domain/booking"
	"github.com/BruksfildServices01/hospital-device-booking/internal/metrics"
	"github.com/BruksfildServices01/hospital-device-booking/internal/models"
)

type DecideBookingInput struct {
	BookingID uint
	Status    string
	Note      string

	Origin audit.Origin
}

type DecideBookingOutput struct {
	Booking         *models.DeviceBooking
	CascadeRejected []uint
}

// DecideBooking approves or rejects a pending booking. Approving one
// booking rejects every other live booking on its slot in the same
// transaction.
type DecideBooking struct {
	repo   domain.Repository
	audit  audit.Recorder
	format *audit.Formatter
}

func NewDecideBooking(
	repo domain.Repository,
	rec audit.Recorder,
	format *audit.Formatter,
) *DecideBooking {
	return &DecideBooking{
		repo:   repo,
		audit:  rec,
		format: format,
	}
}

func (uc *DecideBooking) Execute(
	ctx context.Context,
	in DecideBookingInput,
) (*DecideBookingOutput, error) {

	target := domain.Status(in.Status)
	// reject a bad target before touching the row
	if err := domain.CanDecide(domain.StatusPending, target); err != nil {
		return nil, err
	}

	var before audit.Snapshot
	b, siblings, err := uc.repo.Decide(ctx, in.BookingID, func(b *models.DeviceBooking) error {
		before = domain.Snapshot(b)
		return domain.Decide(b, target, in.Note)
	}, domain.CascadeNote)
	if err != nil {
		return nil, bookingNotFound(err)
	}

	metrics.BookingTransitions.WithLabelValues(b.Status, "decision").Inc()
	countCascade(siblings)

	ids := siblingIDs(siblings)

	detail := audit.Detail{
		ResourceType: domain.Entity,
		ResourceID:   b.ID,
		Details: uc.format.Update(
			domain.Entity,
			audit.Diff(before, domain.Snapshot(b), []string{"status", "note"}),
		),
	}
	if len(ids) > 0 {
		detail.Extra = map[string]any{"cascadeRejected": ids}
	}

	uc.audit.Record(audit.Prepare(
		in.Origin,
		"device_booking_"+b.Status,
		decisionMessage(actorName(in.Origin), b),
		detail,
	))

	return &DecideBookingOutput{Booking: b, CascadeRejected: ids}, nil
}
