package repository

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"slices"
	"strconv"

	"github.com/straye-as/crm-console/internal/access"
	"github.com/straye-as/crm-console/internal/domain"
	"github.com/straye-as/crm-console/internal/httpclient"
	"go.uber.org/zap"
)

// requireRole fails before any request is sent unless a user is signed in
// and allowed accepts their role
func (r *Repository) requireRole(allowed func(domain.Role) bool) error {
	user := r.deps.session.CurrentUser()
	if user == nil {
		return domain.ErrNotAuthenticated
	}
	if !allowed(user.Role) {
		return domain.ErrForbidden
	}
	return nil
}

func isRole(roles ...domain.Role) func(domain.Role) bool {
	return func(role domain.Role) bool {
		return slices.Contains(roles, role)
	}
}

// command posts a command and maps an explicit success=false to an error
func (r *Repository) command(ctx context.Context, req httpclient.Request, fallback string) (*domain.StatusResponse, error) {
	var resp domain.StatusResponse
	if err := r.deps.client.Do(ctx, req, &resp); err != nil {
		return nil, err
	}
	if resp.Failed() {
		if resp.Message != "" {
			return nil, errors.New(resp.Message)
		}
		return nil, errors.New(fallback)
	}
	return &resp, nil
}

// ConvertLeadToCustomer converts a lead into a customer, then refreshes
// leads and customers
func (r *Repository) ConvertLeadToCustomer(ctx context.Context, leadID domain.ID) (*domain.Customer, error) {
	if err := r.requireRole(access.IsSalesRole); err != nil {
		return nil, err
	}
	if leadID.IsZero() {
		return nil, errors.New("id is required")
	}

	var customer domain.Customer
	err := r.deps.client.Do(ctx, httpclient.Request{
		Method: http.MethodPost,
		Path:   "/api/leads/" + url.PathEscape(leadID.String()) + "/convert",
		Auth:   true,
	}, &customer)
	if err != nil {
		return nil, err
	}

	r.deps.logger.Info("Lead converted to customer",
		zap.String("lead_id", leadID.String()),
		zap.String("customer_id", customer.ID.String()),
	)

	_ = r.leads.refresh(ctx)
	_ = r.customers.refresh(ctx)
	return &customer, nil
}

// ============================================================================
// Platform administration
// ============================================================================

// CreateOwner creates a business owner account (super admin only), then
// refreshes tenants
func (r *Repository) CreateOwner(ctx context.Context, req domain.CreateOwnerRequest) (*domain.StatusResponse, error) {
	if err := r.requireRole(isRole(domain.RoleSuperAdmin)); err != nil {
		return nil, err
	}
	if err := domain.Validate(req); err != nil {
		return nil, err
	}

	resp, err := r.command(ctx, httpclient.Request{
		Method: http.MethodPost,
		Path:   "/api/admin/owners",
		Body:   req,
		Auth:   true,
	}, "failed to create owner")
	if err != nil {
		return nil, err
	}

	r.deps.logger.Info("Owner created",
		zap.String("email", req.Email),
		zap.String("business_id", resp.BusinessID.String()),
	)
	_ = r.tenants.refresh(ctx)
	return resp, nil
}

// SetBusinessActive activates or suspends a tenant (super admin only), then
// refreshes tenants
func (r *Repository) SetBusinessActive(ctx context.Context, businessID domain.ID, active bool) error {
	if err := r.requireRole(isRole(domain.RoleSuperAdmin)); err != nil {
		return err
	}
	if businessID.IsZero() {
		return errors.New("id is required")
	}

	err := r.deps.client.Do(ctx, httpclient.Request{
		Method: http.MethodPatch,
		Path:   "/api/admin/businesses/" + url.PathEscape(businessID.String()) + "/status",
		Query:  url.Values{"active": []string{strconv.FormatBool(active)}},
		Auth:   true,
	}, nil)
	if err != nil {
		return err
	}

	r.deps.logger.Info("Business status changed",
		zap.String("business_id", businessID.String()),
		zap.Bool("active", active),
	)
	_ = r.tenants.refresh(ctx)
	return nil
}

// PlatformStats fetches platform-wide totals (super admin only)
func (r *Repository) PlatformStats(ctx context.Context) (*domain.PlatformStats, error) {
	if err := r.requireRole(isRole(domain.RoleSuperAdmin)); err != nil {
		return nil, err
	}

	var stats domain.PlatformStats
	if err := r.deps.client.Do(ctx, httpclient.Request{
		Method: http.MethodGet,
		Path:   "/api/admin/stats",
		Auth:   true,
	}, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// ============================================================================
// Business administration
// ============================================================================

// CreateBusiness registers an additional business for the owner
func (r *Repository) CreateBusiness(ctx context.Context, req domain.CreateBusinessRequest) (*domain.StatusResponse, error) {
	if err := r.requireRole(isRole(domain.RoleOwner)); err != nil {
		return nil, err
	}
	if err := domain.Validate(req); err != nil {
		return nil, err
	}

	resp, err := r.command(ctx, httpclient.Request{
		Method: http.MethodPost,
		Path:   "/api/owner/create-business",
		Body:   req,
		Auth:   true,
	}, "failed to create business")
	if err != nil {
		return nil, err
	}

	r.deps.logger.Info("Business created",
		zap.String("name", req.Name),
		zap.String("business_id", resp.BusinessID.String()),
	)
	return resp, nil
}

// CreateStaff adds a staff member to a business (owner only), then
// refreshes users
func (r *Repository) CreateStaff(ctx context.Context, businessID domain.ID, req domain.CreateStaffRequest) (*domain.StatusResponse, error) {
	if err := r.requireRole(isRole(domain.RoleOwner)); err != nil {
		return nil, err
	}
	if businessID.IsZero() {
		return nil, errors.New("business id is required")
	}
	if err := domain.Validate(req); err != nil {
		return nil, err
	}

	resp, err := r.command(ctx, httpclient.Request{
		Method: http.MethodPost,
		Path:   "/api/business/" + url.PathEscape(businessID.String()) + "/staff",
		Body:   req,
		Auth:   true,
	}, "failed to create staff member")
	if err != nil {
		return nil, err
	}

	r.deps.logger.Info("Staff member created",
		zap.String("business_id", businessID.String()),
		zap.String("role", req.Role),
	)
	_ = r.users.refresh(ctx)
	return resp, nil
}
