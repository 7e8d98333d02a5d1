package booking

import (
	"context"

	domain "github.com/BruksfildServices01/hospital-device-booking/internal/domain/booking"
	"github.com/BruksfildServices01/hospital-device-booking/internal/domain/user"
	"github.com/BruksfildServices01/hospital-device-booking/internal/httperr"
	"github.com/BruksfildServices01/hospital-device-booking/internal/models"
)

type Viewer struct {
	ID   uint
	Role user.Role
}

type GetBooking struct {
	repo domain.Repository
}

func NewGetBooking(repo domain.Repository) *GetBooking {
	return &GetBooking{repo: repo}
}

// Execute returns the booking; plain users only see their own.
func (uc *GetBooking) Execute(ctx context.Context, id uint, viewer Viewer) (*models.DeviceBooking, error) {
	b, err := uc.repo.GetBooking(ctx, id)
	if err != nil {
		return nil, bookingNotFound(err)
	}
	if !viewer.Role.CanModerate() && b.UserID != viewer.ID {
		return nil, httperr.Forbidden("not_owner", "you can only view your own bookings")
	}
	return b, nil
}
