package domain

// UserRoleType is a role carried in the caller's token
type UserRoleType string

const (
	RoleSalesAgent UserRoleType = "sales_agent"
	RoleManager    UserRoleType = "manager"
	RoleAdmin      UserRoleType = "admin"
	RoleAPIService UserRoleType = "api_service"
)

// IsValid checks if the UserRoleType is a valid enum value
func (r UserRoleType) IsValid() bool {
	switch r {
	case RoleSalesAgent, RoleManager, RoleAdmin, RoleAPIService:
		return true
	}
	return false
}
