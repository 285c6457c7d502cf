package models

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleAdmin        UserRole = "ADMIN"
	RoleCalendarTeam UserRole = "CALENDAR_TEAM"
	RoleSPOC         UserRole = "SPOC"
	RoleDataTeam     UserRole = "DATA_TEAM"
)

// Valid reports whether r is a known role.
func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleCalendarTeam, RoleSPOC, RoleDataTeam:
		return true
	}
	return false
}

// Associate is a staff member listed in the Associates sheet.
type Associate struct {
	Row          int      `json:"-"`
	Name         string   `json:"name"`
	Email        string   `json:"email"`
	Role         UserRole `json:"role"`
	PasswordHash string   `json:"-"`
}

