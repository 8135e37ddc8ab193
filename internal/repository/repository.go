// Package repository caches the backend's CRM collections for the signed-in
// user. Every mutation is followed by a refresh of the affected collection,
// so the cache always mirrors what the backend returned last.
package repository

import (
	"context"

	"github.com/straye-as/crm-console/internal/domain"
	"github.com/straye-as/crm-console/internal/httpclient"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Doer sends a backend request. *httpclient.Client implements it.
type Doer interface {
	Do(ctx context.Context, req httpclient.Request, out any) error
}

// SessionState is the part of the session store the repository reads.
// *session.Store implements it.
type SessionState interface {
	CurrentUser() *domain.User
	Epoch() uint64
}

// Patch is a partial update sent as the JSON body of a PUT
type Patch map[string]any

type deps struct {
	client  Doer
	session SessionState
	logger  *zap.Logger
}

// Repository holds one cached collection per entity type
type Repository struct {
	deps *deps

	customers     *collection[domain.Customer]
	leads         *collection[domain.Lead]
	tickets       *collection[domain.Ticket]
	deals         *collection[domain.Deal]
	tasks         *collection[domain.Task]
	appointments  *collection[domain.Appointment]
	products      *collection[domain.Product]
	interactions  *collection[domain.Interaction]
	users         *collection[domain.User]
	notifications *collection[domain.Notification]
	auditLogs     *collection[domain.AuditLogEntry]
	tenants       *collection[domain.Tenant]
}

// New creates an empty repository
func New(client Doer, session SessionState, logger *zap.Logger) *Repository {
	d := &deps{client: client, session: session, logger: logger}
	return &Repository{
		deps:          d,
		customers:     newCollection[domain.Customer](d, "customers", "/api/customers", ScopeTenant),
		leads:         newCollection[domain.Lead](d, "leads", "/api/leads", ScopeTenant),
		tickets:       newCollection[domain.Ticket](d, "tickets", "/api/tickets", ScopeTenant),
		deals:         newCollection[domain.Deal](d, "deals", "/api/deals", ScopeTenant),
		tasks:         newCollection[domain.Task](d, "tasks", "/api/tasks", ScopeTenant),
		appointments:  newCollection[domain.Appointment](d, "appointments", "/api/appointments", ScopeTenant),
		products:      newCollection[domain.Product](d, "products", "/api/products", ScopeTenant),
		interactions:  newCollection[domain.Interaction](d, "interactions", "/api/interactions", ScopeTenant),
		users:         newCollection[domain.User](d, "users", "/api/users", ScopeTenant),
		notifications: newCollection[domain.Notification](d, "notifications", "/api/notifications", ScopeTenant),
		auditLogs:     newCollection[domain.AuditLogEntry](d, "audit logs", "/api/audit/business/"+tenantPlaceholder, ScopeTenant),
		tenants:       newCollection[domain.Tenant](d, "tenants", "/api/admin/businesses", ScopePlatform),
	}
}

// RefreshTenantData reloads the collections a tenant's dashboards read,
// concurrently. It returns the first failure; every failure is logged and
// leaves its collection's previous contents in place.
func (r *Repository) RefreshTenantData(ctx context.Context) error {
	return r.refreshConcurrently(ctx,
		r.customers.refresh,
		r.leads.refresh,
		r.tickets.refresh,
		r.deals.refresh,
		r.tasks.refresh,
		r.appointments.refresh,
		r.interactions.refresh,
	)
}

// RefreshAll reloads every collection the current user may see
func (r *Repository) RefreshAll(ctx context.Context) error {
	return r.refreshConcurrently(ctx,
		r.customers.refresh,
		r.leads.refresh,
		r.tickets.refresh,
		r.deals.refresh,
		r.tasks.refresh,
		r.appointments.refresh,
		r.interactions.refresh,
		r.products.refresh,
		r.users.refresh,
		r.notifications.refresh,
		r.auditLogs.refresh,
		r.tenants.refresh,
	)
}

func (r *Repository) refreshConcurrently(ctx context.Context, fns ...func(context.Context) error) error {
	// A plain group: one failing refresh must not cancel the others
	var g errgroup.Group
	for _, fn := range fns {
		fn := fn
		g.Go(func() error {
			return fn(ctx)
		})
	}
	return g.Wait()
}

// Clear empties every collection
func (r *Repository) Clear() {
	r.customers.clear()
	r.leads.clear()
	r.tickets.clear()
	r.deals.clear()
	r.tasks.clear()
	r.appointments.clear()
	r.products.clear()
	r.interactions.clear()
	r.users.clear()
	r.notifications.clear()
	r.auditLogs.clear()
	r.tenants.clear()
}

// Counts returns the number of cached records per collection
func (r *Repository) Counts() map[string]int {
	return map[string]int{
		r.customers.name:     r.customers.count(),
		r.leads.name:         r.leads.count(),
		r.tickets.name:       r.tickets.count(),
		r.deals.name:         r.deals.count(),
		r.tasks.name:         r.tasks.count(),
		r.appointments.name:  r.appointments.count(),
		r.products.name:      r.products.count(),
		r.interactions.name:  r.interactions.count(),
		r.users.name:         r.users.count(),
		r.notifications.name: r.notifications.count(),
		r.auditLogs.name:     r.auditLogs.count(),
		r.tenants.name:       r.tenants.count(),
	}
}
