package booking

import (
	"context"
	"errors"
	"net/url"

	"github.com/BruksfildServices01/hospital-device-booking/internal/models"
	"github.com/BruksfildServices01/hospital-device-booking/internal/query"
)

var ErrNotFound = errors.New("record not found")

// SlotCheck inspects the non-rejected bookings currently holding a slot
// and vetoes the write by returning an error.
type SlotCheck func(holders []models.DeviceBooking) error

type ListFilter struct {
	DeviceID *uint
	UserID   *uint
	Params   url.Values
	BaseURL  string
}

type UpdateOptions struct {
	// MoveTo is the device the booking may be moved to. It is locked
	// together with the current one.
	MoveTo *uint
	// Apply edits the locked booking. The returned check, if any, runs
	// against the other holders of the resulting slot unless the booking
	// ends up approved.
	Apply func(b *models.DeviceBooking) (SlotCheck, error)
	// SiblingNote is written on bookings rejected because this one ends
	// up approved.
	SiblingNote func(approved *models.DeviceBooking) string
}

type Repository interface {
	// -------- Lookups --------
	GetUser(ctx context.Context, id uint) (*models.User, error)
	GetDevice(ctx context.Context, id uint) (*models.Device, error)
	GetBooking(ctx context.Context, id uint) (*models.DeviceBooking, error)

	// -------- Writes (serialized per device) --------
	CreateBooking(ctx context.Context, b *models.DeviceBooking, check SlotCheck) error

	// UpdateBooking locks the booking and its devices, runs opts.Apply on
	// the locked row and stores every column. When the booking ends up
	// approved the other bookings of its slot are rejected in the same
	// transaction.
	UpdateBooking(ctx context.Context, id uint, opts UpdateOptions) (*models.DeviceBooking, []models.DeviceBooking, error)

	// Decide locks the booking, lets apply change it and, if the result is
	// approved, rejects every other non-rejected booking on the slot. All
	// of it commits or none of it does.
	Decide(
		ctx context.Context,
		id uint,
		apply func(b *models.DeviceBooking) error,
		siblingNote func(approved *models.DeviceBooking) string,
	) (*models.DeviceBooking, []models.DeviceBooking, error)

	// MutateEditRequest locks the booking, runs apply and stores only the
	// edit request columns.
	MutateEditRequest(ctx context.Context, id uint, apply func(b *models.DeviceBooking) error) (*models.DeviceBooking, error)

	// -------- Reads --------
	ListBookings(ctx context.Context, f ListFilter) (*query.Result[models.DeviceBooking], error)

	// ListDay returns the non-rejected bookings of a device on day.
	ListDay(ctx context.Context, deviceID uint, day string) ([]models.DeviceBooking, error)
}
