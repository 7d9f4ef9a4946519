package auth

// Role is the coarse permission level of an account.
type Role string

const (
	RoleGuest Role = "GUEST"
	RoleOwner Role = "OWNER"
	RoleAdmin Role = "ADMIN"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleGuest, RoleOwner, RoleAdmin:
		return true
	}
	return false
}

// Principal identifies the caller of a request.
type Principal struct {
	UserID string
	Email  string
	Role   Role
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// CanManage reports whether the caller may modify resources owned by ownerID.
func (p Principal) CanManage(ownerID string) bool {
	if p.IsAdmin() {
		return true
	}
	return p.UserID != "" && p.UserID == ownerID
}
