package models

// Role tags a chat participant as one of the two sides of the conversation.
type Role string

const (
	RoleProductManager Role = "product_manager"
	RoleDeveloper      Role = "developer"
)

// Valid reports whether r is one of the enumerated roles.
func (r Role) Valid() bool {
	switch r {
	case RoleProductManager, RoleDeveloper:
		return true
	}
	return false
}

// MemberInfo is the public view of a room member.
type MemberInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role Role   `json:"role"`
}
