package repository

import (
	"context"

	"github.com/straye-as/crm-console/internal/domain"
)

// ============================================================================
// Customers
// ============================================================================

// RefreshCustomers reloads customers from the backend. A failure keeps the cached list.
func (r *Repository) RefreshCustomers(ctx context.Context) error {
	return r.customers.refresh(ctx)
}

// Customers returns a copy of the cached customers
func (r *Repository) Customers() []domain.Customer {
	return r.customers.snapshot()
}

// Customer looks up a cached customer by id
func (r *Repository) Customer(id domain.ID) (domain.Customer, bool) {
	return r.customers.find(func(item domain.Customer) bool { return item.ID == id })
}

// AddCustomer creates a customer, then refreshes customers
func (r *Repository) AddCustomer(ctx context.Context, customer any) error {
	return r.customers.add(ctx, customer)
}

// UpdateCustomer sends patch for the customer with id, then refreshes customers
func (r *Repository) UpdateCustomer(ctx context.Context, id domain.ID, patch any) error {
	return r.customers.update(ctx, id, patch)
}

// DeleteCustomer deletes the customer with id, then refreshes customers
func (r *Repository) DeleteCustomer(ctx context.Context, id domain.ID) error {
	return r.customers.remove(ctx, id)
}

// ============================================================================
// Leads
// ============================================================================

// RefreshLeads reloads leads from the backend
func (r *Repository) RefreshLeads(ctx context.Context) error {
	return r.leads.refresh(ctx)
}

// Leads returns a copy of the cached leads
func (r *Repository) Leads() []domain.Lead {
	return r.leads.snapshot()
}

// Lead looks up a cached lead by id
func (r *Repository) Lead(id domain.ID) (domain.Lead, bool) {
	return r.leads.find(func(item domain.Lead) bool { return item.ID == id })
}

// AddLead creates a lead, then refreshes leads
func (r *Repository) AddLead(ctx context.Context, lead any) error {
	return r.leads.add(ctx, lead)
}

// UpdateLead sends patch for the lead with id, then refreshes leads
func (r *Repository) UpdateLead(ctx context.Context, id domain.ID, patch any) error {
	return r.leads.update(ctx, id, patch)
}

// DeleteLead deletes the lead with id, then refreshes leads
func (r *Repository) DeleteLead(ctx context.Context, id domain.ID) error {
	return r.leads.remove(ctx, id)
}

// ============================================================================
// Tickets
// ============================================================================

// RefreshTickets reloads tickets from the backend
func (r *Repository) RefreshTickets(ctx context.Context) error {
	return r.tickets.refresh(ctx)
}

// Tickets returns a copy of the cached tickets
func (r *Repository) Tickets() []domain.Ticket {
	return r.tickets.snapshot()
}

// Ticket looks up a cached ticket by id
func (r *Repository) Ticket(id domain.ID) (domain.Ticket, bool) {
	return r.tickets.find(func(item domain.Ticket) bool { return item.ID == id })
}

// AddTicket creates a ticket, then refreshes tickets
func (r *Repository) AddTicket(ctx context.Context, ticket any) error {
	return r.tickets.add(ctx, ticket)
}

// UpdateTicket sends patch for the ticket with id, then refreshes tickets
func (r *Repository) UpdateTicket(ctx context.Context, id domain.ID, patch any) error {
	return r.tickets.update(ctx, id, patch)
}

// DeleteTicket deletes the ticket with id, then refreshes tickets
func (r *Repository) DeleteTicket(ctx context.Context, id domain.ID) error {
	return r.tickets.remove(ctx, id)
}

// ============================================================================
// Deals
// ============================================================================

// RefreshDeals reloads deals from the backend
func (r *Repository) RefreshDeals(ctx context.Context) error {
	return r.deals.refresh(ctx)
}

// Deals returns a copy of the cached deals
func (r *Repository) Deals() []domain.Deal {
	return r.deals.snapshot()
}

// Deal looks up a cached deal by id
func (r *Repository) Deal(id domain.ID) (domain.Deal, bool) {
	return r.deals.find(func(item domain.Deal) bool { return item.ID == id })
}

// AddDeal creates a deal, then refreshes deals
func (r *Repository) AddDeal(ctx context.Context, deal any) error {
	return r.deals.add(ctx, deal)
}

// UpdateDeal sends patch for the deal with id, then refreshes deals
func (r *Repository) UpdateDeal(ctx context.Context, id domain.ID, patch any) error {
	return r.deals.update(ctx, id, patch)
}

// DeleteDeal deletes the deal with id, then refreshes deals
func (r *Repository) DeleteDeal(ctx context.Context, id domain.ID) error {
	return r.deals.remove(ctx, id)
}

// ============================================================================
// Tasks
// ============================================================================

// RefreshTasks reloads tasks from the backend
func (r *Repository) RefreshTasks(ctx context.Context) error {
	return r.tasks.refresh(ctx)
}

// Tasks returns a copy of the cached tasks
func (r *Repository) Tasks() []domain.Task {
	return r.tasks.snapshot()
}

// Task looks up a cached task by id
func (r *Repository) Task(id domain.ID) (domain.Task, bool) {
	return r.tasks.find(func(item domain.Task) bool { return item.ID == id })
}

// AddTask creates a task, then refreshes tasks
func (r *Repository) AddTask(ctx context.Context, task any) error {
	return r.tasks.add(ctx, task)
}

// UpdateTask sends patch for the task with id, then refreshes tasks
func (r *Repository) UpdateTask(ctx context.Context, id domain.ID, patch any) error {
	return r.tasks.update(ctx, id, patch)
}

// DeleteTask deletes the task with id, then refreshes tasks
func (r *Repository) DeleteTask(ctx context.Context, id domain.ID) error {
	return r.tasks.remove(ctx, id)
}

// ============================================================================
// Appointments
// ============================================================================

// RefreshAppointments reloads appointments from the backend
func (r *Repository) RefreshAppointments(ctx context.Context) error {
	return r.appointments.refresh(ctx)
}

// Appointments returns a copy of the cached appointments
func (r *Repository) Appointments() []domain.Appointment {
	return r.appointments.snapshot()
}

// Appointment looks up a cached appointment by id
func (r *Repository) Appointment(id domain.ID) (domain.Appointment, bool) {
	return r.appointments.find(func(item domain.Appointment) bool { return item.ID == id })
}

// AddAppointment creates a appointment, then refreshes appointments
func (r *Repository) AddAppointment(ctx context.Context, appointment any) error {
	return r.appointments.add(ctx, appointment)
}

// UpdateAppointment sends patch for the appointment with id, then refreshes appointments
func (r *Repository) UpdateAppointment(ctx context.Context, id domain.ID, patch any) error {
	return r.appointments.update(ctx, id, patch)
}

// DeleteAppointment deletes the appointment with id, then refreshes appointments
func (r *Repository) DeleteAppointment(ctx context.Context, id domain.ID) error {
	return r.appointments.remove(ctx, id)
}

// ============================================================================
// Products
// ============================================================================

// RefreshProducts reloads products from the backend
func (r *Repository) RefreshProducts(ctx context.Context) error {
	return r.products.refresh(ctx)
}

// Products returns a copy of the cached products
func (r *Repository) Products() []domain.Product {
	return r.products.snapshot()
}

// Product looks up a cached product by id
func (r *Repository) Product(id domain.ID) (domain.Product, bool) {
	return r.products.find(func(item domain.Product) bool { return item.ID == id })
}

// AddProduct creates a product, then refreshes products
func (r *Repository) AddProduct(ctx context.Context, product any) error {
	return r.products.add(ctx, product)
}

// UpdateProduct sends patch for the product with id, then refreshes products
func (r *Repository) UpdateProduct(ctx context.Context, id domain.ID, patch any) error {
	return r.products.update(ctx, id, patch)
}

// DeleteProduct deletes the product with id, then refreshes products
func (r *Repository) DeleteProduct(ctx context.Context, id domain.ID) error {
	return r.products.remove(ctx, id)
}

// ============================================================================
// Interactions
// ============================================================================

// RefreshInteractions reloads interactions from the backend
func (r *Repository) RefreshInteractions(ctx context.Context) error {
	return r.interactions.refresh(ctx)
}

// Interactions returns a copy of the cached interactions
func (r *Repository) Interactions() []domain.Interaction {
	return r.interactions.snapshot()
}

// Interaction looks up a cached interaction by id
func (r *Repository) Interaction(id domain.ID) (domain.Interaction, bool) {
	return r.interactions.find(func(item domain.Interaction) bool { return item.ID == id })
}

// AddInteraction creates a interaction, then refreshes interactions
func (r *Repository) AddInteraction(ctx context.Context, interaction any) error {
	return r.interactions.add(ctx, interaction)
}

// UpdateInteraction sends patch for the interaction with id, then refreshes interactions
func (r *Repository) UpdateInteraction(ctx context.Context, id domain.ID, patch any) error {
	return r.interactions.update(ctx, id, patch)
}

// DeleteInteraction deletes the interaction with id, then refreshes interactions
func (r *Repository) DeleteInteraction(ctx context.Context, id domain.ID) error {
	return r.interactions.remove(ctx, id)
}

// ============================================================================
// Users
// ============================================================================

// RefreshUsers reloads team members from the backend
func (r *Repository) RefreshUsers(ctx context.Context) error {
	return r.users.refresh(ctx)
}

// Users returns a copy of the cached team members
func (r *Repository) Users() []domain.User {
	return r.users.snapshot()
}

// User looks up a cached team member by id
func (r *Repository) User(id domain.ID) (domain.User, bool) {
	return r.users.find(func(item domain.User) bool { return item.ID == id })
}

// AddUser creates a team member, then refreshes team members
func (r *Repository) AddUser(ctx context.Context, user any) error {
	return r.users.add(ctx, user)
}

// UpdateUser sends patch for the team member with id, then refreshes team members
func (r *Repository) UpdateUser(ctx context.Context, id domain.ID, patch any) error {
	return r.users.update(ctx, id, patch)
}

// DeleteUser deletes the team member with id, then refreshes team members
func (r *Repository) DeleteUser(ctx context.Context, id domain.ID) error {
	return r.users.remove(ctx, id)
}

// ============================================================================
// Notifications
// ============================================================================

// RefreshNotifications reloads notifications from the backend
func (r *Repository) RefreshNotifications(ctx context.Context) error {
	return r.notifications.refresh(ctx)
}

// Notifications returns a copy of the cached notifications
func (r *Repository) Notifications() []domain.Notification {
	return r.notifications.snapshot()
}

// Notification looks up a cached notification by id
func (r *Repository) Notification(id domain.ID) (domain.Notification, bool) {
	return r.notifications.find(func(item domain.Notification) bool { return item.ID == id })
}

// AddNotification creates a notification, then refreshes notifications
func (r *Repository) AddNotification(ctx context.Context, notification any) error {
	return r.notifications.add(ctx, notification)
}

// UpdateNotification sends patch for the notification with id, then refreshes notifications
func (r *Repository) UpdateNotification(ctx context.Context, id domain.ID, patch any) error {
	return r.notifications.update(ctx, id, patch)
}

// DeleteNotification deletes the notification with id, then refreshes notifications
func (r *Repository) DeleteNotification(ctx context.Context, id domain.ID) error {
	return r.notifications.remove(ctx, id)
}

// ============================================================================
// Audit logs (read-only)
// ============================================================================

// RefreshAuditLogs reloads audit log entries from the backend
func (r *Repository) RefreshAuditLogs(ctx context.Context) error {
	return r.auditLogs.refresh(ctx)
}

// AuditLogs returns a copy of the cached audit log entries
func (r *Repository) AuditLogs() []domain.AuditLogEntry {
	return r.auditLogs.snapshot()
}

// AuditLog looks up a cached audit log entry by id
func (r *Repository) AuditLog(id domain.ID) (domain.AuditLogEntry, bool) {
	return r.auditLogs.find(func(item domain.AuditLogEntry) bool { return item.ID == id })
}

// ============================================================================
// Tenants
// ============================================================================

// RefreshTenants reloads tenants from the backend (super admin only)
func (r *Repository) RefreshTenants(ctx context.Context) error {
	return r.tenants.refresh(ctx)
}

// Tenants returns a copy of the cached tenants
func (r *Repository) Tenants() []domain.Tenant {
	return r.tenants.snapshot()
}

// Tenant looks up a cached tenant by id
func (r *Repository) Tenant(id domain.ID) (domain.Tenant, bool) {
	return r.tenants.find(func(item domain.Tenant) bool { return item.ID == id })
}
