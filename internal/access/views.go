package access

import (
	"errors"
	"slices"

	"github.com/straye-as/crm-console/internal/domain"
)

// ErrViewNotAllowed is returned when a role asks for a view it may not open
var ErrViewNotAllowed = errors.New("view not accessible for role")

// View identifies a screen of the dashboard shell
type View string

const (
	ViewSuperAdminDashboard     View = "super-admin-dashboard"
	ViewOwnerDashboard          View = "owner-dashboard"
	ViewSalesManagerDashboard   View = "sales-manager-dashboard"
	ViewSalesAgentDashboard     View = "sales-agent-dashboard"
	ViewSupportManagerDashboard View = "support-manager-dashboard"
	ViewSupportAgentDashboard   View = "support-agent-dashboard"
	ViewFinanceDashboard        View = "finance-dashboard"
	ViewViewerDashboard         View = "viewer-dashboard"
	ViewCompanyDashboard        View = "company-dashboard"

	ViewCustomers    View = "customers"
	ViewLeads        View = "leads"
	ViewDeals        View = "deals"
	ViewTasks        View = "tasks"
	ViewAppointments View = "appointments"
	ViewProducts     View = "products"
	ViewInteractions View = "interactions"
	ViewTickets      View = "tickets"

	ViewAIMatching    View = "ai-matching"
	ViewAnalytics     View = "analytics"
	ViewNotifications View = "notifications"
	ViewAuditLogs     View = "audit-logs"
	ViewUsers         View = "users"
	ViewSettings      View = "settings"

	ViewTenants          View = "tenants"
	ViewSubscriptions    View = "subscriptions"
	ViewPlatformSettings View = "platform-settings"

	// ViewCustomerPortal is a separate entry point, never part of the shell
	ViewCustomerPortal View = "customer-portal"
)

// DefaultView is the view shown before login and after logout
const DefaultView = ViewCompanyDashboard

// initialViews maps each role to the view it lands on after login
var initialViews = map[domain.Role]View{
	domain.RoleSuperAdmin:     ViewSuperAdminDashboard,
	domain.RoleOwner:          ViewOwnerDashboard,
	domain.RoleSalesManager:   ViewSalesManagerDashboard,
	domain.RoleSalesAgent:     ViewSalesAgentDashboard,
	domain.RoleSupportManager: ViewSupportManagerDashboard,
	domain.RoleSupportAgent:   ViewSupportAgentDashboard,
	domain.RoleFinance:        ViewFinanceDashboard,
	domain.RoleViewer:         ViewViewerDashboard,
	domain.RoleCustomer:       ViewCustomerPortal,
}

// InitialView returns the landing view for a role.
// Roles without a dedicated dashboard land on the company dashboard.
func InitialView(role domain.Role) View {
	if v, ok := initialViews[role]; ok {
		return v
	}
	return ViewCompanyDashboard
}

var (
	platformViews = []View{
		ViewSuperAdminDashboard,
		ViewTenants,
		ViewSubscriptions,
		ViewPlatformSettings,
	}

	crmViews = []View{
		ViewCustomers,
		ViewLeads,
		ViewDeals,
		ViewTasks,
		ViewAppointments,
		ViewProducts,
		ViewInteractions,
		ViewTickets,
	}

	insightViews = []View{ViewAIMatching, ViewAnalytics}
	adminViews   = []View{ViewUsers, ViewSettings}
)

// AccessibleViews lists the views a role may switch to, in sidebar order
func AccessibleViews(role domain.Role) []View {
	switch role {
	case domain.RoleSuperAdmin:
		return slices.Clone(platformViews)
	case domain.RoleCustomer:
		return []View{ViewCustomerPortal}
	}

	views := []View{ViewCompanyDashboard}
	if own := InitialView(role); own != ViewCompanyDashboard {
		views = append(views, own)
	}
	views = append(views, crmViews...)
	if IsSalesRole(role) {
		views = append(views, insightViews...)
	}
	views = append(views, ViewNotifications)
	if IsManagerRole(role) {
		views = append(views, ViewAuditLogs)
		views = append(views, adminViews...)
	}
	return views
}

// CanAccess reports whether a role may open a view
func CanAccess(role domain.Role, view View) bool {
	return slices.Contains(AccessibleViews(role), view)
}
