package booking

import (
	"context"
	"strings"

	"github.com/BruksfildServices01/hospital-device-booking/internal/audit"
	domain "github.com/BruksfildServices01/hospital-device-booking/internal/domain/booking"
	"github.com/BruksfildServices01/hospital-device-booking/internal/domain/user"
	"github.com/BruksfildServices01/hospital-device-booking/internal/httperr"
	"github.com/BruksfildServices01/hospital-device-booking/internal/metrics"
	"github.com/BruksfildServices01/hospital-device-booking/internal/models"
	"github.com/BruksfildServices01/hospital-device-booking/internal/timezone"
)

// UpdateFields holds the fields sent by the caller; nil means untouched.
// Status is the exception: leaving it out puts the booking back to pending.
type UpdateFields struct {
	DeviceID  *uint
	CodeBA    *string
	NameBA    *string
	UsageTime *string
	UsageDay  *string
	Priority  *string
	Purpose   *string
	Status    *string
	Note      *string
}

type UpdateBookingInput struct {
	BookingID uint
	EditorID  uint
	Fields    UpdateFields

	Origin audit.Origin
}

type UpdateBookingOutput struct {
	Booking         *models.DeviceBooking
	Changes         audit.Changes
	CascadeRejected []uint
}

type UpdateBooking struct {
	repo     domain.Repository
	audit    audit.Recorder
	format   *audit.Formatter
	tz       string
	override bool
}

func NewUpdateBooking(
	repo domain.Repository,
	rec audit.Recorder,
	format *audit.Formatter,
	tz string,
	priorityOverride bool,
) *UpdateBooking {
	return &UpdateBooking{
		repo:     repo,
		audit:    rec,
		format:   format,
		tz:       tz,
		override: priorityOverride,
	}
}

func (uc *UpdateBooking) Execute(
	ctx context.Context,
	in UpdateBookingInput,
) (*UpdateBookingOutput, error) {

	editor, err := uc.repo.GetUser(ctx, in.EditorID)
	if err != nil {
		return nil, userNotFound(err)
	}

	byOwner := !user.Role(editor.Role).CanModerate()
	if byOwner && (in.Fields.Status != nil || in.Fields.Note != nil) {
		return nil, httperr.Forbidden("forbidden_field", "status and note are set by approvers")
	}

	p, err := uc.prepare(ctx, in.Fields)
	if err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// Apply on the locked row
	// --------------------------------------------------
	var before audit.Snapshot
	opts := domain.UpdateOptions{
		SiblingNote: domain.CascadeNote,
		Apply: func(b *models.DeviceBooking) (domain.SlotCheck, error) {
			if err := domain.CanEdit(b, editor); err != nil {
				return nil, err
			}
			before = domain.Snapshot(b)
			oldSlot := domain.SlotOf(b)
			wasRejected := domain.Status(b.Status) == domain.StatusRejected

			p.applyTo(b)
			if byOwner {
				b.EditRequest = models.EditRequest{}
			}

			if domain.Status(b.Status) == domain.StatusRejected {
				return nil, nil
			}
			// a booking coming back from rejected must find its slot free
			if domain.SlotOf(b) != oldSlot || wasRejected {
				return domain.SlotPolicy(uc.override, domain.Priority(b.Priority)), nil
			}
			return nil, nil
		},
	}
	if p.device != nil {
		opts.MoveTo = &p.device.ID
	}

	b, siblings, err := uc.repo.UpdateBooking(ctx, in.BookingID, opts)
	if err != nil {
		return nil, bookingNotFound(err)
	}

	changes := audit.Diff(before, domain.Snapshot(b), domain.UpdatableFields)
	if _, ok := changes.Map()["status"]; ok {
		metrics.BookingTransitions.WithLabelValues(b.Status, "update").Inc()
	}
	countCascade(siblings)

	ids := siblingIDs(siblings)
	detail := audit.Detail{
		ResourceType: domain.Entity,
		ResourceID:   b.ID,
		Details:      uc.format.Update(domain.Entity, changes),
	}
	if len(ids) > 0 {
		detail.Extra = map[string]any{"cascadeRejected": ids}
	}

	uc.audit.Record(audit.Prepare(
		in.Origin,
		"device_booking_updated",
		audit.UpdatedMessage(actorName(in.Origin), resourceLabel),
		detail,
	))

	return &UpdateBookingOutput{Booking: b, Changes: changes, CascadeRejected: ids}, nil
}

// updatePatch is the validated form of UpdateFields.
type updatePatch struct {
	device   *models.Device
	codeBA   *string
	nameBA   *string
	time     *string
	day      *string
	priority *domain.Priority
	purpose  *string
	note     *string
	status   domain.Status
}

func (uc *UpdateBooking) prepare(ctx context.Context, f UpdateFields) (*updatePatch, error) {
	p := &updatePatch{status: domain.StatusPending}

	if f.DeviceID != nil {
		device, err := uc.repo.GetDevice(ctx, *f.DeviceID)
		if err != nil {
			return nil, deviceNotFound(err)
		}
		p.device = device
	}

	for _, s := range []struct {
		src  *string
		dst  **string
		name string
	}{
		{f.CodeBA, &p.codeBA, "codeBA"},
		{f.NameBA, &p.nameBA, "nameBA"},
		{f.UsageTime, &p.time, "usageTime"},
	} {
		if s.src == nil {
			continue
		}
		v := strings.TrimSpace(*s.src)
		if v == "" {
			return nil, httperr.Validation("missing_fields", s.name+" cannot be empty")
		}
		*s.dst = &v
	}

	if f.UsageDay != nil {
		day, err := timezone.CanonicalDay(*f.UsageDay, uc.tz)
		if err != nil {
			return nil, httperr.Validation("invalid_usage_day", "usageDay must be YYYY-MM-DD or an ISO-8601 timestamp")
		}
		p.day = &day
	}

	if f.Priority != nil {
		pr, err := domain.ParsePriority(*f.Priority)
		if err != nil {
			return nil, err
		}
		p.priority = &pr
	}

	if f.Purpose != nil {
		v := strings.TrimSpace(*f.Purpose)
		p.purpose = &v
	}
	if f.Note != nil {
		v := strings.TrimSpace(*f.Note)
		p.note = &v
	}

	if f.Status != nil {
		p.status = domain.Status(*f.Status)
		if !p.status.Valid() {
			return nil, httperr.Validation("invalid_status", "status must be pending, approved, rejected or completed")
		}
	}

	return p, nil
}

func (p *updatePatch) applyTo(b *models.DeviceBooking) {
	if p.device != nil {
		b.DeviceID = p.device.ID
		b.DeviceName = p.device.Name
	}
	for _, s := range []struct {
		src *string
		dst *string
	}{
		{p.codeBA, &b.CodeBA},
		{p.nameBA, &b.NameBA},
		{p.time, &b.UsageTime},
		{p.day, &b.UsageDay},
		{p.purpose, &b.Purpose},
		{p.note, &b.Note},
	} {
		if s.src != nil {
			*s.dst = *s.src
		}
	}
	if p.priority != nil {
		b.Priority = string(*p.priority)
	}
	b.Status = string(p.status)
}
