package booking

import "github.com/BruksfildServices01/hospital-device-booking/internal/httperr"

// ===============================
// Booking Status
// ===============================

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCompleted Status = "completed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusCompleted:
		return true
	}
	return false
}

func InitialStatus() Status {
	return StatusPending
}

// ===============================
// Priority
// ===============================

type Priority string

const (
	PriorityNormal   Priority = "normal"
	PriorityPriority Priority = "priority"
)

func ParsePriority(raw string) (Priority, error) {
	switch Priority(raw) {
	case "":
		return PriorityNormal, nil
	case PriorityNormal, PriorityPriority:
		return Priority(raw), nil
	}
	return "", httperr.Validation("invalid_priority", "priority must be normal or priority")
}

// ===============================
// Edit Request Status
// ===============================

type EditStatus string

const (
	EditPending  EditStatus = "pending"
	EditAccepted EditStatus = "accepted"
	EditRejected EditStatus = "rejected"
)

type EditAction string

const (
	EditAccept EditAction = "accept"
	EditReject EditAction = "reject"
)

func (a EditAction) result() (EditStatus, bool) {
	switch a {
	case EditAccept:
		return EditAccepted, true
	case EditReject:
		return EditRejected, true
	}
	return "", false
}

// ===============================
// Validations
// ===============================

// CanDecide only lets a pending booking become approved or rejected.
func CanDecide(current, target Status) error {
	if target != StatusApproved && target != StatusRejected {
		return httperr.Validation("invalid_status", "status must be approved or rejected")
	}
	if current != StatusPending {
		return httperr.Validation("invalid_state", "only pending bookings can be approved or rejected")
	}
	return nil
}

func CanComplete(current Status) error {
	if current != StatusApproved {
		return httperr.Validation("invalid_state", "only approved bookings can be completed")
	}
	return nil
}
