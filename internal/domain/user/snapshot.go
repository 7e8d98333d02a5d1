package user

import (
	"github.com/BruksfildServices01/hospital-device-booking/internal/audit"
	"github.com/BruksfildServices01/hospital-device-booking/internal/models"
)

const Entity = "user"

var AuditedFields = []string{"email", "name", "role", "group", "isActive"}

func Snapshot(u *models.User) audit.Snapshot {
	return audit.Snapshot{
		{Name: "email", Value: u.Email},
		{Name: "name", Value: u.Name},
		{Name: "role", Value: u.Role},
		{Name: "group", Value: u.Group},
		{Name: "isActive", Value: u.IsActive},
	}
}
