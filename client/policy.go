package client

// Role is the account role carried in the session. The set is closed;
// anything outside it gets no capabilities.
type Role string

const (
	RoleAdmin          Role = "admin"
	RoleCorporateAdmin Role = "corporate_admin"
	RoleEndUser        Role = "end_user"
)

// Capabilities are the boolean flags gating console actions. They are
// derived from the role on every query and never stored.
type Capabilities struct {
	CanCreate bool
	CanEdit   bool
	CanDelete bool
	CanExport bool
	CanImport bool
}

// Permissions maps a role to its capability set. Corporate Admin's edit
// capability is limited server-side to the job role field; the flag here
// only opens the edit surface.
func Permissions(role Role) Capabilities {
	switch role {
	case RoleAdmin:
		return Capabilities{
			CanCreate: true,
			CanEdit:   true,
			CanDelete: true,
			CanExport: true,
			CanImport: true,
		}
	case RoleCorporateAdmin:
		return Capabilities{CanEdit: true}
	case RoleEndUser:
		return Capabilities{}
	default:
		return Capabilities{}
	}
}
