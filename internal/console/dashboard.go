package console

import (
	"errors"
	"time"

	"github.com/straye-as/crm-console/internal/access"
	"github.com/straye-as/crm-console/internal/analytics"
	"github.com/straye-as/crm-console/internal/domain"
)

// ErrNoDashboard is returned for views that have no computed view-model
var ErrNoDashboard = errors.New("view has no dashboard")

// Dashboard computes the view-model of the current view, falling back to the
// role's landing dashboard when the current view has none
func (c *Console) Dashboard(now time.Time) (*Dashboard, error) {
	user := c.session.CurrentUser()
	if user == nil {
		return nil, domain.ErrNotAuthenticated
	}

	view := c.CurrentView()
	if !hasViewModel(view) || !access.CanAccess(user.Role, view) {
		view = access.InitialView(user.Role)
	}
	return c.build(user, view, now)
}

// DashboardFor computes the view-model of a specific view without switching to it
func (c *Console) DashboardFor(view access.View, now time.Time) (*Dashboard, error) {
	user := c.session.CurrentUser()
	if user == nil {
		return nil, domain.ErrNotAuthenticated
	}
	if !access.CanAccess(user.Role, view) {
		return nil, access.ErrViewNotAllowed
	}
	return c.build(user, view, now)
}

func (c *Console) build(user *domain.User, view access.View, now time.Time) (*Dashboard, error) {
	data, ok := viewModel(view, c.Snapshot(), user.ID, now)
	if !ok {
		return nil, ErrNoDashboard
	}
	return &Dashboard{
		View:        view,
		Role:        user.Role,
		GeneratedAt: now,
		Data:        data,
	}, nil
}

// dashboardViews are the views viewModel can compute
var dashboardViews = map[access.View]struct{}{
	access.ViewSuperAdminDashboard:     {},
	access.ViewTenants:                 {},
	access.ViewSubscriptions:           {},
	access.ViewOwnerDashboard:          {},
	access.ViewCompanyDashboard:        {},
	access.ViewSalesManagerDashboard:   {},
	access.ViewSalesAgentDashboard:     {},
	access.ViewSupportManagerDashboard: {},
	access.ViewSupportAgentDashboard:   {},
	access.ViewFinanceDashboard:        {},
	access.ViewViewerDashboard:         {},
	access.ViewAnalytics:               {},
	access.ViewDeals:                   {},
	access.ViewTasks:                   {},
}

func hasViewModel(view access.View) bool {
	_, ok := dashboardViews[view]
	return ok
}

func viewModel(view access.View, s analytics.Snapshot, userID domain.ID, now time.Time) (any, bool) {
	switch view {
	case access.ViewSuperAdminDashboard, access.ViewTenants, access.ViewSubscriptions:
		return analytics.NewPlatformDashboard(s, now), true
	case access.ViewOwnerDashboard:
		return analytics.NewOwnerDashboard(s), true
	case access.ViewCompanyDashboard:
		return analytics.NewCompanyDashboard(s), true
	case access.ViewSalesManagerDashboard:
		return analytics.NewSalesManagerDashboard(s), true
	case access.ViewSalesAgentDashboard:
		return analytics.NewSalesAgentDashboard(s, userID, now), true
	case access.ViewSupportManagerDashboard:
		return analytics.NewSupportManagerDashboard(s), true
	case access.ViewSupportAgentDashboard:
		return analytics.NewSupportAgentDashboard(s, userID), true
	case access.ViewFinanceDashboard:
		return analytics.NewFinanceDashboard(s), true
	case access.ViewViewerDashboard:
		return analytics.NewViewerDashboard(s), true
	case access.ViewAnalytics:
		return analytics.NewAnalyticsDashboard(s), true
	case access.ViewDeals:
		return analytics.DealPipeline(s.Deals), true
	case access.ViewTasks:
		return analytics.NewTaskSummary(s.Tasks, now), true
	default:
		return nil, false
	}
}
