package repository

import (
	"testing"

	"github.com/BruksfildServices01/hospital-device-booking/internal/query"
)

func TestSchemas_DefaultSortNewestFirst(t *testing.T) {
	tests := []struct {
		name   string
		schema query.Schema
	}{
		{"bookings", BookingSchema},
		{"devices", DeviceSchema},
		{"users", UserSchema},
		{"audit", AuditSchema},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.schema.DefaultSort
			if len(got) != 1 || got[0].Field != "createdAt" || !got[0].Desc {
				t.Errorf("DefaultSort = %+v, want createdAt desc", got)
			}
			if _, ok := tt.schema.Fields["createdAt"]; !ok {
				t.Error("createdAt is not a listed field")
			}
		})
	}
}
