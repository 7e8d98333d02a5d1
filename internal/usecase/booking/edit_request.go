package booking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/BruksfildServices01/hospital-device-booking/internal/audit"
	domain "github.com/BruksfildServices01/hospital-device-booking/internal/domain/booking"
	"github.com/BruksfildServices01/hospital-device-booking/internal/httperr"
	"github.com/BruksfildServices01/hospital-device-booking/internal/models"
)

// ======================================================
// REQUEST EDIT
// ======================================================

type RequestEditInput struct {
	BookingID   uint
	RequesterID uint
	Reason      string

	Origin audit.Origin
}

type RequestEdit struct {
	repo  domain.Repository
	audit audit.Recorder
	now   func() time.Time
}

func NewRequestEdit(repo domain.Repository, rec audit.Recorder) *RequestEdit {
	return &RequestEdit{repo: repo, audit: rec, now: time.Now}
}

func (uc *RequestEdit) Execute(ctx context.Context, in RequestEditInput) (*models.DeviceBooking, error) {
	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		return nil, httperr.Validation("reason_required", "reason is required")
	}

	requester, err := uc.repo.GetUser(ctx, in.RequesterID)
	if err != nil {
		return nil, userNotFound(err)
	}

	b, err := uc.repo.MutateEditRequest(ctx, in.BookingID, func(b *models.DeviceBooking) error {
		return domain.OpenEditRequest(b, requester, reason, uc.now().UTC())
	})
	if err != nil {
		return nil, bookingNotFound(err)
	}

	uc.audit.Record(audit.Prepare(
		in.Origin,
		"device_booking_edit_requested",
		fmt.Sprintf("%q requested an edit of %s #%d", actorName(in.Origin), resourceLabel, b.ID),
		audit.Detail{
			ResourceType: domain.Entity,
			ResourceID:   b.ID,
			Details:      map[string]any{"reason": reason},
		},
	))

	return b, nil
}

// ======================================================
// RESOLVE EDIT REQUEST
// ======================================================

type ResolveEditRequestInput struct {
	BookingID  uint
	ApproverID uint
	Action     string
	Note       string

	Origin audit.Origin
}

// ResolveEditRequest records the approver's answer. Accepting only unlocks
// the general update for the owner; the booking itself is left as is.
type ResolveEditRequest struct {
	repo  domain.Repository
	audit audit.Recorder
	now   func() time.Time
}

func NewResolveEditRequest(repo domain.Repository, rec audit.Recorder) *ResolveEditRequest {
	return &ResolveEditRequest{repo: repo, audit: rec, now: time.Now}
}

func (uc *ResolveEditRequest) Execute(ctx context.Context, in ResolveEditRequestInput) (*models.DeviceBooking, error) {
	action := domain.EditAction(strings.ToLower(strings.TrimSpace(in.Action)))
	if action != domain.EditAccept && action != domain.EditReject {
		return nil, httperr.Validation("invalid_action", "action must be accept or reject")
	}

	approver, err := uc.repo.GetUser(ctx, in.ApproverID)
	if err != nil {
		return nil, userNotFound(err)
	}

	note := strings.TrimSpace(in.Note)
	b, err := uc.repo.MutateEditRequest(ctx, in.BookingID, func(b *models.DeviceBooking) error {
		return domain.ResolveEditRequest(b, approver, action, note, uc.now().UTC())
	})
	if err != nil {
		return nil, bookingNotFound(err)
	}

	uc.audit.Record(audit.Prepare(
		in.Origin,
		"device_booking_edit_"+b.EditRequest.Status,
		fmt.Sprintf("%q %s the edit request of %s #%d", actorName(in.Origin), b.EditRequest.Status, resourceLabel, b.ID),
		audit.Detail{
			ResourceType: domain.Entity,
			ResourceID:   b.ID,
			Details: map[string]any{
				"action": string(action),
				"note":   note,
			},
		},
	))

	return b, nil
}
