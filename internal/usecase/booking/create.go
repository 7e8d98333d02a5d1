package booking

import (
	"context"
	"strings"

	"github.com/BruksfildServices01/hospital-device-booking/internal/audit"
	domain "github.com/BruksfildServices01/hospital-device-booking/internal/domain/booking"
	"github.com/BruksfildServices01/hospital-device-booking/internal/httperr"
	"github.com/BruksfildServices01/hospital-device-booking/internal/metrics"
	"github.com/BruksfildServices01/hospital-device-booking/internal/models"
	"github.com/BruksfildServices01/hospital-device-booking/internal/timezone"
)

// ======================================================
// INPUT
// ======================================================

type CreateBookingInput struct {
	DeviceID uint
	UserID   uint

	CodeBA    string
	NameBA    string
	UsageTime string
	UsageDay  string
	Priority  string
	Purpose   string

	Origin audit.Origin
}

// ======================================================
// USE CASE
// ======================================================

type CreateBooking struct {
	repo     domain.Repository
	audit    audit.Recorder
	format   *audit.Formatter
	tz       string
	override bool
}

func NewCreateBooking(
	repo domain.Repository,
	rec audit.Recorder,
	format *audit.Formatter,
	tz string,
	priorityOverride bool,
) *CreateBooking {
	return &CreateBooking{
		repo:     repo,
		audit:    rec,
		format:   format,
		tz:       tz,
		override: priorityOverride,
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *CreateBooking) Execute(
	ctx context.Context,
	in CreateBookingInput,
) (*models.DeviceBooking, error) {

	// --------------------------------------------------
	// Required fields
	// --------------------------------------------------
	in.CodeBA = strings.TrimSpace(in.CodeBA)
	in.NameBA = strings.TrimSpace(in.NameBA)
	in.UsageTime = strings.TrimSpace(in.UsageTime)

	if in.DeviceID == 0 || in.CodeBA == "" || in.NameBA == "" || in.UsageTime == "" {
		return nil, httperr.Validation("missing_fields", "deviceId, codeBA, nameBA, usageTime and usageDay are required")
	}

	day, err := timezone.CanonicalDay(in.UsageDay, uc.tz)
	if err != nil {
		return nil, httperr.Validation("invalid_usage_day", "usageDay must be YYYY-MM-DD or an ISO-8601 timestamp")
	}

	priority, err := domain.ParsePriority(in.Priority)
	if err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// Requester and device
	// --------------------------------------------------
	user, err := uc.repo.GetUser(ctx, in.UserID)
	if err != nil {
		return nil, userNotFound(err)
	}
	if !user.IsActive {
		return nil, httperr.Forbidden("user_inactive", "Account is disabled")
	}

	device, err := uc.repo.GetDevice(ctx, in.DeviceID)
	if err != nil {
		return nil, deviceNotFound(err)
	}

	// --------------------------------------------------
	// Persist under the slot check
	// --------------------------------------------------
	b := &models.DeviceBooking{
		DeviceID:    device.ID,
		DeviceName:  device.Name,
		UserID:      user.ID,
		AccountName: user.Name,
		Group:       user.Group,
		CodeBA:      in.CodeBA,
		NameBA:      in.NameBA,
		UsageTime:   in.UsageTime,
		UsageDay:    day,
		Priority:    string(priority),
		Purpose:     strings.TrimSpace(in.Purpose),
		Status:      string(domain.InitialStatus()),
	}

	if err := uc.repo.CreateBooking(ctx, b, domain.SlotPolicy(uc.override, priority)); err != nil {
		return nil, err
	}

	metrics.BookingTransitions.WithLabelValues(b.Status, "created").Inc()

	// --------------------------------------------------
	// Audit
	// --------------------------------------------------
	uc.audit.Record(audit.Prepare(
		in.Origin,
		"device_booking_created",
		audit.CreatedMessage(actorName(in.Origin), resourceLabel),
		audit.Detail{
			ResourceType: domain.Entity,
			ResourceID:   b.ID,
			Details:      uc.format.Info(domain.Entity, domain.Snapshot(b)),
		},
	))

	return b, nil
}
