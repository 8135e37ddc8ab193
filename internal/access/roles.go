// Package access maps backend roles onto frontend roles and decides which
// dashboard views each role may open.
package access

import (
	"strings"

	"github.com/straye-as/crm-console/internal/domain"
)

// DefaultRole is assigned when the backend reports a role this client does not know
const DefaultRole = domain.RoleViewer

// backendRoles is the exhaustive mapping from normalized backend role names to
// frontend roles. Keys are lower case without any "role_" prefix.
var backendRoles = map[string]domain.Role{
	"super_admin":     domain.RoleSuperAdmin,
	"business_admin":  domain.RoleOwner,
	"owner":           domain.RoleOwner,
	"sales_manager":   domain.RoleSalesManager,
	"sales_agent":     domain.RoleSalesAgent,
	"support_manager": domain.RoleSupportManager,
	"support_agent":   domain.RoleSupportAgent,
	"finance":         domain.RoleFinance,
	"viewer":          domain.RoleViewer,
	"customer":        domain.RoleCustomer,
}

// ParseRole maps a backend role string to a frontend role, case-insensitively.
// The boolean is false when the role was not recognized and DefaultRole was
// substituted; callers are expected to log that case.
func ParseRole(raw string) (domain.Role, bool) {
	key := strings.TrimPrefix(domain.NormalizeEnum(raw), "role_")

	if role, ok := backendRoles[key]; ok {
		return role, true
	}
	return DefaultRole, false
}

// IsSalesRole reports whether the role works the sales pipeline
func IsSalesRole(role domain.Role) bool {
	switch role {
	case domain.RoleOwner, domain.RoleSalesManager, domain.RoleSalesAgent:
		return true
	}
	return false
}

// IsManagerRole reports whether the role manages a team
func IsManagerRole(role domain.Role) bool {
	switch role {
	case domain.RoleOwner, domain.RoleSalesManager, domain.RoleSupportManager:
		return true
	}
	return false
}

// IsTenantRole reports whether the role belongs to a tenant's staff.
// Super admins have no tenant and customers use the portal instead.
func IsTenantRole(role domain.Role) bool {
	switch role {
	case domain.RoleSuperAdmin, domain.RoleCustomer:
		return false
	}
	return true
}
