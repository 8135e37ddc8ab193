package repository

import (
	"strings"

	"github.com/straye-as/crm-console/internal/domain"
)

// Scope says which users may load a collection
type Scope int

const (
	// ScopeTenant collections belong to one tenant. Super admins skip them.
	ScopeTenant Scope = iota
	// ScopePlatform collections are visible to super admins only
	ScopePlatform
)

// tenantPlaceholder is replaced with the user's tenant id in collection paths
const tenantPlaceholder = "{tenantId}"

// Allows reports whether user may load a collection of this scope
func (s Scope) Allows(user *domain.User) bool {
	if user == nil {
		return false
	}
	if s == ScopePlatform {
		return user.IsSuperAdmin()
	}
	return !user.IsSuperAdmin()
}

// scoped is implemented by every cached record type
type scoped interface {
	Tenant() domain.ID
}

// applyTenantFilter drops records that belong to another tenant. Records
// without a tenant are kept, as are all records when the user has no tenant.
// The backend already scopes responses, so this only guards against leaks.
func applyTenantFilter[T scoped](items []T, user *domain.User) (kept []T, dropped int) {
	if user == nil || user.TenantID.IsZero() {
		return items, 0
	}

	kept = make([]T, 0, len(items))
	for _, item := range items {
		if MustHaveTenantAccess(user, item.Tenant()) {
			kept = append(kept, item)
		} else {
			dropped++
		}
	}
	return kept, dropped
}

// MustHaveTenantAccess checks whether user may see a record of recordTenant.
// An empty record tenant is treated as unscoped.
func MustHaveTenantAccess(user *domain.User, recordTenant domain.ID) bool {
	if user == nil {
		return false
	}
	if user.TenantID.IsZero() || recordTenant.IsZero() {
		return true
	}
	return user.TenantID == recordTenant
}

// resolvePath fills the tenant placeholder. It reports false when the path
// needs a tenant and the user has none.
func resolvePath(path string, user *domain.User) (string, bool) {
	if !strings.Contains(path, tenantPlaceholder) {
		return path, true
	}
	if user == nil || user.TenantID.IsZero() {
		return "", false
	}
	return strings.ReplaceAll(path, tenantPlaceholder, user.TenantID.String()), true
}
