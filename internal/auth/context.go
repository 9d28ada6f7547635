package auth

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/straye-as/salesops-api/internal/domain"
)

// UserContext holds authenticated user information
type UserContext struct {
	UserID      uuid.UUID
	DisplayName string
	Email       string
	Roles       []domain.UserRoleType
	// TerritoryCode is the territory-manager code the agent reports under, e.g. "MNL-NORTH"
	TerritoryCode string
}

type contextKey string

const userContextKey contextKey = "userContext"

// WithUserContext adds user context to the context
func WithUserContext(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// FromContext extracts user context from the context
func FromContext(ctx context.Context) (*UserContext, bool) {
	user, ok := ctx.Value(userContextKey).(*UserContext)
	return user, ok
}

// HasRole checks if user has a specific role
func (u *UserContext) HasRole(role domain.UserRoleType) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// HasAnyRole checks if user has any of the specified roles
func (u *UserContext) HasAnyRole(roles ...domain.UserRoleType) bool {
	for _, role := range roles {
		if u.HasRole(role) {
			return true
		}
	}
	return false
}

// IsManager reports whether the user may approve or decline activities
func (u *UserContext) IsManager() bool {
	return u.HasAnyRole(domain.RoleManager, domain.RoleAdmin)
}

// IsAdmin reports whether the user has unrestricted access
func (u *UserContext) IsAdmin() bool {
	return u.HasAnyRole(domain.RoleAdmin, domain.RoleAPIService)
}

// TerritoryPrefix returns the first two characters of the territory code, upper-cased
func (u *UserContext) TerritoryPrefix() string {
	return TerritoryPrefix(u.TerritoryCode)
}

// TerritoryPrefix returns the first two characters of code, upper-cased
func TerritoryPrefix(code string) string {
	r := []rune(strings.TrimSpace(code))
	if len(r) > 2 {
		r = r[:2]
	}
	return strings.ToUpper(string(r))
}

// AgentFilter returns the agent id list queries are restricted to.
// Managers and admins see every activity and get nil.
func (u *UserContext) AgentFilter() *string {
	if u.IsManager() || u.IsAdmin() {
		return nil
	}
	id := u.UserID.String()
	return &id
}

// RolesAsStrings returns roles as a slice of strings
func (u *UserContext) RolesAsStrings() []string {
	result := make([]string, len(u.Roles))
	for i, role := range u.Roles {
		result[i] = string(role)
	}
	return result
}

// GetEffectiveAgentFilter returns the agent id repositories should filter by,
// or nil when the caller may see all agents' records
func GetEffectiveAgentFilter(ctx context.Context) *string {
	if userCtx, ok := FromContext(ctx); ok {
		return userCtx.AgentFilter()
	}
	return nil
}
