package domain

// Role is the closed set of roles a user can hold
type Role string

const (
	RoleAdmin        Role = "admin"
	RoleReceptionist Role = "receptionist"
	RoleDoctor       Role = "doctor"
	RolePatient      Role = "patient"
)

// IsValid reports whether the role is one of the known roles
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleReceptionist, RoleDoctor, RolePatient:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

// Principal is the authenticated identity attached to a request.
// It is resolved once per request from the access token and the users table,
// so IsActive always reflects the current account state.
type Principal struct {
	UserID   uint
	Email    string
	Role     Role
	IsActive bool
}

// IsAdmin reports whether the principal holds the admin role
func (p *Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// IsStaff reports whether the principal is clinic staff (not a patient)
func (p *Principal) IsStaff() bool {
	return p.Role == RoleAdmin || p.Role == RoleReceptionist || p.Role == RoleDoctor
}
