package access_test

import (
	"testing"

	"github.com/straye-as/crm-console/internal/access"
	"github.com/straye-as/crm-console/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		raw   string
		want  domain.Role
		known bool
	}{
		{"SUPER_ADMIN", domain.RoleSuperAdmin, true},
		{"super_admin", domain.RoleSuperAdmin, true},
		{"BUSINESS_ADMIN", domain.RoleOwner, true},
		{"owner", domain.RoleOwner, true},
		{"ROLE_SALES_MANAGER", domain.RoleSalesManager, true},
		{" sales-agent ", domain.RoleSalesAgent, true},
		{"Support_Manager", domain.RoleSupportManager, true},
		{"SUPPORT_AGENT", domain.RoleSupportAgent, true},
		{"FINANCE", domain.RoleFinance, true},
		{"VIEWER", domain.RoleViewer, true},
		{"CUSTOMER", domain.RoleCustomer, true},
		{"JANITOR", domain.RoleViewer, false},
		{"", domain.RoleViewer, false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, known := access.ParseRole(tt.raw)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.known, known)
		})
	}
}

func TestInitialView(t *testing.T) {
	expected := map[domain.Role]access.View{
		domain.RoleSuperAdmin:     access.ViewSuperAdminDashboard,
		domain.RoleOwner:          access.ViewOwnerDashboard,
		domain.RoleSalesManager:   access.ViewSalesManagerDashboard,
		domain.RoleSalesAgent:     access.ViewSalesAgentDashboard,
		domain.RoleSupportManager: access.ViewSupportManagerDashboard,
		domain.RoleSupportAgent:   access.ViewSupportAgentDashboard,
		domain.RoleFinance:        access.ViewFinanceDashboard,
		domain.RoleViewer:         access.ViewViewerDashboard,
		domain.RoleCustomer:       access.ViewCustomerPortal,
	}

	for _, role := range domain.Roles {
		assert.Equal(t, expected[role], access.InitialView(role), "role %s", role)
	}

	assert.Equal(t, access.ViewCompanyDashboard, access.InitialView(domain.Role("unknown")))
}

func TestCanAccess(t *testing.T) {
	t.Run("super admin sees only platform views", func(t *testing.T) {
		assert.True(t, access.CanAccess(domain.RoleSuperAdmin, access.ViewTenants))
		assert.True(t, access.CanAccess(domain.RoleSuperAdmin, access.ViewSubscriptions))
		assert.True(t, access.CanAccess(domain.RoleSuperAdmin, access.ViewSuperAdminDashboard))
		assert.False(t, access.CanAccess(domain.RoleSuperAdmin, access.ViewLeads))
		assert.False(t, access.CanAccess(domain.RoleSuperAdmin, access.ViewCompanyDashboard))
	})

	t.Run("support agent cannot open tenants", func(t *testing.T) {
		assert.False(t, access.CanAccess(domain.RoleSupportAgent, access.ViewTenants))
		assert.False(t, access.CanAccess(domain.RoleSupportAgent, access.ViewAuditLogs))
		assert.False(t, access.CanAccess(domain.RoleSupportAgent, access.ViewAnalytics))
		assert.True(t, access.CanAccess(domain.RoleSupportAgent, access.ViewTickets))
		assert.True(t, access.CanAccess(domain.RoleSupportAgent, access.ViewSupportAgentDashboard))
	})

	t.Run("owner has every tenant view", func(t *testing.T) {
		for _, v := range []access.View{
			access.ViewOwnerDashboard, access.ViewCompanyDashboard, access.ViewDeals,
			access.ViewAIMatching, access.ViewAnalytics, access.ViewAuditLogs,
			access.ViewUsers, access.ViewSettings, access.ViewNotifications,
		} {
			assert.True(t, access.CanAccess(domain.RoleOwner, v), "view %s", v)
		}
		assert.False(t, access.CanAccess(domain.RoleOwner, access.ViewTenants))
	})

	t.Run("sales agent gets insights but not admin", func(t *testing.T) {
		assert.True(t, access.CanAccess(domain.RoleSalesAgent, access.ViewAnalytics))
		assert.False(t, access.CanAccess(domain.RoleSalesAgent, access.ViewUsers))
	})

	t.Run("support manager gets admin but not insights", func(t *testing.T) {
		assert.True(t, access.CanAccess(domain.RoleSupportManager, access.ViewAuditLogs))
		assert.True(t, access.CanAccess(domain.RoleSupportManager, access.ViewSettings))
		assert.False(t, access.CanAccess(domain.RoleSupportManager, access.ViewAIMatching))
	})

	t.Run("roles cannot open another role's dashboard", func(t *testing.T) {
		assert.False(t, access.CanAccess(domain.RoleViewer, access.ViewFinanceDashboard))
		assert.False(t, access.CanAccess(domain.RoleFinance, access.ViewOwnerDashboard))
	})

	t.Run("customer only reaches the portal", func(t *testing.T) {
		assert.Equal(t, []access.View{access.ViewCustomerPortal}, access.AccessibleViews(domain.RoleCustomer))
		assert.False(t, access.CanAccess(domain.RoleCustomer, access.ViewCompanyDashboard))
	})

	t.Run("every role can open its own landing view", func(t *testing.T) {
		for _, role := range domain.Roles {
			assert.True(t, access.CanAccess(role, access.InitialView(role)), "role %s", role)
		}
	})
}

func TestAccessibleViews_ReturnsCopy(t *testing.T) {
	views := access.AccessibleViews(domain.RoleSuperAdmin)
	views[0] = access.ViewLeads

	assert.Equal(t, access.ViewSuperAdminDashboard, access.AccessibleViews(domain.RoleSuperAdmin)[0])
}
