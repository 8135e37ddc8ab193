package domain

// ============================================================================
// Auth
// ============================================================================

// LoginRequest is the body of POST /api/auth/login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is returned by POST /api/auth/login.
// Some failures come back as 2xx with Success=false.
type LoginResponse struct {
	Token   string `json:"token"`
	Success *bool  `json:"success,omitempty"`
	Message string `json:"message,omitempty"`
}

// MeResponse is the profile returned by GET /api/auth/me
type MeResponse struct {
	ID         ID     `json:"id"`
	Email      string `json:"email"`
	FullName   string `json:"fullName,omitempty"`
	Name       string `json:"name,omitempty"`
	Role       string `json:"role,omitempty"`
	BusinessID ID     `json:"businessId,omitempty"`
}

// RegisterCustomerRequest is the body of POST /api/auth/register/customer
type RegisterCustomerRequest struct {
	FullName string `json:"fullName" validate:"required,max=200"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Phone    string `json:"phone" validate:"required,max=50"`
}

// StatusResponse is the generic {success, message} envelope the backend
// returns from command endpoints
type StatusResponse struct {
	Success    *bool  `json:"success,omitempty"`
	Message    string `json:"message,omitempty"`
	BusinessID ID     `json:"businessId,omitempty"`
	UserID     ID     `json:"userId,omitempty"`
}

// Failed reports whether the backend explicitly signalled failure
func (r *StatusResponse) Failed() bool {
	return r != nil && r.Success != nil && !*r.Success
}

// ============================================================================
// Platform administration (super admin)
// ============================================================================

// CreateOwnerRequest is the body of POST /api/admin/owners
type CreateOwnerRequest struct {
	Name         string `json:"name" validate:"required,max=200"`
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required,min=6"`
	BusinessName string `json:"businessName,omitempty" validate:"max=200"`
}

// PlatformStats is returned by GET /api/admin/stats
type PlatformStats struct {
	TotalBusinesses  int64 `json:"totalBusinesses"`
	ActiveBusinesses int64 `json:"activeBusinesses"`
	TotalOwners      int64 `json:"totalOwners"`
	TotalUsers       int64 `json:"totalUsers"`
	TotalCustomers   int64 `json:"totalCustomers"`
	TotalLeads       int64 `json:"totalLeads"`
}

// ============================================================================
// Business administration (owner)
// ============================================================================

// CreateBusinessRequest is the body of POST /api/owner/create-business
type CreateBusinessRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description,omitempty" validate:"max=2000"`
	Industry    string `json:"industry,omitempty" validate:"max=100"`
}

// CreateStaffRequest is the body of POST /api/business/{id}/staff.
// Role is the backend role name of the new staff member.
type CreateStaffRequest struct {
	Name     string `json:"name" validate:"required,max=200"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Phone    string `json:"phone,omitempty" validate:"max=50"`
	Role     string `json:"role" validate:"required,oneof=SALES_MANAGER SALES_AGENT SUPPORT_MANAGER SUPPORT_AGENT FINANCE VIEWER"`
}
