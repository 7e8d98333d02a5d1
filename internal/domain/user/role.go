package user

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleApprover Role = "approver"
	RoleUser     Role = "user"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleApprover, RoleUser:
		return true
	}
	return false
}

// CanModerate reports whether r may decide bookings and resolve edit requests.
func (r Role) CanModerate() bool {
	return r == RoleAdmin || r == RoleApprover
}
