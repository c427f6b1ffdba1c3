package domain

import "time"

// Role enumerates the closed set of principal capabilities.
type Role string

const (
	RoleStandard   Role = "standard"
	RoleSupervisor Role = "supervisor"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	return r == RoleStandard || r == RoleSupervisor
}

// CanManageCatalog reports whether the role may mutate catalog entries.
func (r Role) CanManageCatalog() bool {
	return r == RoleSupervisor
}

// Principal mirrors the persisted representation in the users table.
type Principal struct {
	ID                   string
	Name                 string
	Email                string
	MobileNumber         *string
	PasswordHash         string
	Role                 Role
	DeviceToken          *string
	NotificationsEnabled bool
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// Notifiable reports whether the principal should receive push notifications.
func (p Principal) Notifiable() bool {
	return p.NotificationsEnabled && p.DeviceToken != nil && *p.DeviceToken != ""
}
