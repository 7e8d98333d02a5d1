package booking

import (
	"context"
	"net/url"

	domain "github.com/BruksfildServices01/hospital-device-booking/internal/domain/booking"
	"github.com/BruksfildServices01/hospital-device-booking/internal/models"
	"github.com/BruksfildServices01/hospital-device-booking/internal/query"
)

type ListInput struct {
	Params  url.Values
	BaseURL string
}

type ListBookings struct {
	repo domain.Repository
}

func NewListBookings(repo domain.Repository) *ListBookings {
	return &ListBookings{repo: repo}
}

func (uc *ListBookings) All(ctx context.Context, in ListInput) (*query.Result[models.DeviceBooking], error) {
	return uc.repo.ListBookings(ctx, domain.ListFilter{Params: in.Params, BaseURL: in.BaseURL})
}

func (uc *ListBookings) ForDevice(ctx context.Context, deviceID uint, in ListInput) (*query.Result[models.DeviceBooking], error) {
	if _, err := uc.repo.GetDevice(ctx, deviceID); err != nil {
		return nil, deviceNotFound(err)
	}
	return uc.repo.ListBookings(ctx, domain.ListFilter{
		DeviceID: &deviceID,
		Params:   in.Params,
		BaseURL:  in.BaseURL,
	})
}

func (uc *ListBookings) ForUser(ctx context.Context, userID uint, in ListInput) (*query.Result[models.DeviceBooking], error) {
	if _, err := uc.repo.GetUser(ctx, userID); err != nil {
		return nil, userNotFound(err)
	}
	return uc.repo.ListBookings(ctx, domain.ListFilter{
		UserID:  &userID,
		Params:  in.Params,
		BaseURL: in.BaseURL,
	})
}
