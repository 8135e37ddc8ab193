package domain

import (
	"time"
)

// Role is the frontend permission class of an authenticated user
type Role string

const (
	RoleSuperAdmin     Role = "super_admin"
	RoleOwner          Role = "owner"
	RoleSalesManager   Role = "sales_manager"
	RoleSalesAgent     Role = "sales_agent"
	RoleSupportManager Role = "support_manager"
	RoleSupportAgent   Role = "support_agent"
	RoleFinance        Role = "finance"
	RoleViewer         Role = "viewer"
	RoleCustomer       Role = "customer"
)

// Roles lists every role in display order
var Roles = []Role{
	RoleSuperAdmin,
	RoleOwner,
	RoleSalesManager,
	RoleSalesAgent,
	RoleSupportManager,
	RoleSupportAgent,
	RoleFinance,
	RoleViewer,
	RoleCustomer,
}

// UserStatus represents whether a user account may sign in
type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
)

// User is the authenticated identity or a member of a tenant's team.
// TenantID is empty only for super admins.
type User struct {
	ID        ID         `json:"id,omitempty"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Role      Role       `json:"role"`
	Status    UserStatus `json:"status"`
	TenantID  ID         `json:"tenantId,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// IsSuperAdmin reports whether the user operates at platform level
func (u *User) IsSuperAdmin() bool {
	return u != nil && u.Role == RoleSuperAdmin
}

// TenantPlan is the subscription tier of a tenant
type TenantPlan string

const (
	PlanFree     TenantPlan = "free"
	PlanStandard TenantPlan = "standard"
	PlanPro      TenantPlan = "pro"
)

// TenantPlans is the canonical display order of plans
var TenantPlans = []TenantPlan{PlanFree, PlanStandard, PlanPro}

// TenantStatus represents the lifecycle state of a tenant
type TenantStatus string

const (
	TenantStatusActive    TenantStatus = "active"
	TenantStatusSuspended TenantStatus = "suspended"
	TenantStatusCancelled TenantStatus = "cancelled"
)

// TenantStatuses is the canonical display order of tenant statuses
var TenantStatuses = []TenantStatus{TenantStatusActive, TenantStatusSuspended, TenantStatusCancelled}

// Tenant is an isolated business account on the platform.
// Usage counters may exceed their limits; the limits are advisory on the client.
type Tenant struct {
	ID                ID           `json:"id,omitempty"`
	Name              string       `json:"name"`
	Plan              TenantPlan   `json:"plan"`
	Status            TenantStatus `json:"status"`
	UserLimit         int          `json:"userLimit"`
	LeadLimit         int          `json:"leadLimit"`
	StorageLimit      int          `json:"storageLimit"`
	CurrentUsers      int          `json:"currentUsers"`
	CurrentLeads      int          `json:"currentLeads"`
	CurrentStorage    int          `json:"currentStorage"`
	BillingAmount     float64      `json:"billingAmount"`
	SubscriptionStart *time.Time   `json:"subscriptionStart,omitempty"`
	SubscriptionEnd   *time.Time   `json:"subscriptionEnd,omitempty"`
	CreatedAt         time.Time    `json:"createdAt"`
}

// OverLimit reports whether any usage counter exceeds its plan limit
func (t *Tenant) OverLimit() bool {
	return (t.UserLimit > 0 && t.CurrentUsers > t.UserLimit) ||
		(t.LeadLimit > 0 && t.CurrentLeads > t.LeadLimit) ||
		(t.StorageLimit > 0 && t.CurrentStorage > t.StorageLimit)
}

// CustomerStatus represents the status of a customer
type CustomerStatus string

const (
	CustomerStatusActive   CustomerStatus = "active"
	CustomerStatusInactive CustomerStatus = "inactive"
)

// Customer is an organization or person the tenant sells to
type Customer struct {
	ID        ID             `json:"id,omitempty"`
	TenantID  ID             `json:"tenantId,omitempty"`
	Name      string         `json:"name"`
	Email     string         `json:"email"`
	Phone     string         `json:"phone,omitempty"`
	Company   string         `json:"company,omitempty"`
	Status    CustomerStatus `json:"status,omitempty"`
	Tags      []string       `json:"tags,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt *time.Time     `json:"updatedAt,omitempty"`
}

// IsActive treats a missing status as active, matching how the backend omits it
func (c Customer) IsActive() bool {
	return c.Status == "" || c.Status == CustomerStatusActive
}

// LeadStatus represents the position of a lead in the sales funnel
type LeadStatus string

const (
	LeadStatusNew         LeadStatus = "new"
	LeadStatusContacted   LeadStatus = "contacted"
	LeadStatusQualified   LeadStatus = "qualified"
	LeadStatusProposal    LeadStatus = "proposal"
	LeadStatusNegotiation LeadStatus = "negotiation"
	LeadStatusWon         LeadStatus = "won"
	LeadStatusLost        LeadStatus = "lost"
)

// LeadStatuses is the canonical display order of lead statuses
var LeadStatuses = []LeadStatus{
	LeadStatusNew,
	LeadStatusContacted,
	LeadStatusQualified,
	LeadStatusProposal,
	LeadStatusNegotiation,
	LeadStatusWon,
	LeadStatusLost,
}

// IsTerminal reports whether no further transition occurs from this status
func (s LeadStatus) IsTerminal() bool {
	return s == LeadStatusWon || s == LeadStatusLost
}

// Lead is a prospective sale prior to deal creation
type Lead struct {
	ID          ID         `json:"id,omitempty"`
	TenantID    ID         `json:"tenantId,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      LeadStatus `json:"status"`
	Score       int        `json:"score"`
	Value       float64    `json:"value"`
	Source      string     `json:"source,omitempty"`
	AssignedTo  ID         `json:"assignedTo,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}

// DealStage represents the stage of a deal in the sales pipeline
type DealStage string

const (
	DealStageProspecting   DealStage = "prospecting"
	DealStageQualification DealStage = "qualification"
	DealStageProposal      DealStage = "proposal"
	DealStageNegotiation   DealStage = "negotiation"
	DealStageClosedWon     DealStage = "closed_won"
	DealStageClosedLost    DealStage = "closed_lost"
)

// DealStages is the canonical display order of deal stages
var DealStages = []DealStage{
	DealStageProspecting,
	DealStageQualification,
	DealStageProposal,
	DealStageNegotiation,
	DealStageClosedWon,
	DealStageClosedLost,
}

// IsTerminal reports whether the deal is closed
func (s DealStage) IsTerminal() bool {
	return s == DealStageClosedWon || s == DealStageClosedLost
}

// Deal is a sales pipeline item with a probability-weighted amount.
// ClosedAt is set by the backend on the transition into a closed stage.
type Deal struct {
	ID                ID         `json:"id,omitempty"`
	TenantID          ID         `json:"tenantId,omitempty"`
	Title             string     `json:"title"`
	Stage             DealStage  `json:"stage"`
	Amount            float64    `json:"amount"`
	Probability       int        `json:"probability"`
	ExpectedCloseDate *time.Time `json:"expectedCloseDate,omitempty"`
	CustomerID        ID         `json:"customerId,omitempty"`
	LeadID            ID         `json:"leadId,omitempty"`
	AssignedTo        ID         `json:"assignedTo,omitempty"`
	Tags              []string   `json:"tags,omitempty"`
	ClosedAt          *time.Time `json:"closedAt,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         *time.Time `json:"updatedAt,omitempty"`
}

// WeightedAmount returns the amount scaled by the win probability
func (d Deal) WeightedAmount() float64 {
	return d.Amount * float64(d.Probability) / 100
}

// TicketPriority represents the urgency of a support ticket
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "low"
	TicketPriorityMedium TicketPriority = "medium"
	TicketPriorityHigh   TicketPriority = "high"
	TicketPriorityUrgent TicketPriority = "urgent"
)

// TicketPriorities is the canonical display order of priorities
var TicketPriorities = []TicketPriority{
	TicketPriorityLow,
	TicketPriorityMedium,
	TicketPriorityHigh,
	TicketPriorityUrgent,
}

// TicketStatus represents the lifecycle of a support ticket
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusWaiting    TicketStatus = "waiting"
	TicketStatusResolved   TicketStatus = "resolved"
	TicketStatusClosed     TicketStatus = "closed"
)

// TicketStatuses is the canonical display order of ticket statuses
var TicketStatuses = []TicketStatus{
	TicketStatusOpen,
	TicketStatusInProgress,
	TicketStatusWaiting,
	TicketStatusResolved,
	TicketStatusClosed,
}

// Ticket is a customer support request
type Ticket struct {
	ID          ID             `json:"id,omitempty"`
	TenantID    ID             `json:"tenantId,omitempty"`
	CustomerID  ID             `json:"customerId,omitempty"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Priority    TicketPriority `json:"priority,omitempty"`
	Status      TicketStatus   `json:"status"`
	AssignedTo  ID             `json:"assignedTo,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   *time.Time     `json:"updatedAt,omitempty"`
}

// IsOpen reports whether the ticket still needs work
func (t Ticket) IsOpen() bool {
	return t.Status == TicketStatusOpen || t.Status == TicketStatusInProgress
}

// TaskStatus represents the progress of a task
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusCancelled  TaskStatus = "cancelled"
)

// TaskStatuses is the canonical display order of task statuses
var TaskStatuses = []TaskStatus{
	TaskStatusPending,
	TaskStatusInProgress,
	TaskStatusCompleted,
	TaskStatusCancelled,
}

// TaskType classifies the work a task represents
type TaskType string

const (
	TaskTypeCall     TaskType = "call"
	TaskTypeFollowUp TaskType = "follow_up"
	TaskTypeMeeting  TaskType = "meeting"
	TaskTypeEmail    TaskType = "email"
)

// RelatedEntity points a task at the record it concerns
type RelatedEntity struct {
	Type string `json:"type"`
	ID   ID     `json:"id,omitempty"`
}

// Task is a unit of follow-up work for a team member
type Task struct {
	ID          ID             `json:"id,omitempty"`
	TenantID    ID             `json:"tenantId,omitempty"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Type        TaskType       `json:"type,omitempty"`
	Status      TaskStatus     `json:"status"`
	DueDate     *time.Time     `json:"dueDate,omitempty"`
	AssignedTo  ID             `json:"assignedTo,omitempty"`
	RelatedTo   *RelatedEntity `json:"relatedTo,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
}

// IsOverdue reports whether the task is unfinished past its due date
func (t Task) IsOverdue(now time.Time) bool {
	return t.Status != TaskStatusCompleted && t.Status != TaskStatusCancelled &&
		t.DueDate != nil && t.DueDate.Before(now)
}

// AppointmentStatus represents the state of a scheduled meeting
type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "scheduled"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

// AppointmentStatuses is the canonical display order of appointment statuses
var AppointmentStatuses = []AppointmentStatus{
	AppointmentStatusScheduled,
	AppointmentStatusCompleted,
	AppointmentStatusCancelled,
}

// Appointment is a scheduled meeting with a customer
type Appointment struct {
	ID         ID                `json:"id,omitempty"`
	TenantID   ID                `json:"tenantId,omitempty"`
	CustomerID ID                `json:"customerId,omitempty"`
	Title      string            `json:"title"`
	Location   string            `json:"location,omitempty"`
	StartTime  time.Time         `json:"startTime"`
	EndTime    *time.Time        `json:"endTime,omitempty"`
	Status     AppointmentStatus `json:"status"`
	AssignedTo ID                `json:"assignedTo,omitempty"`
	CreatedAt  time.Time         `json:"createdAt"`
}

// Product is an item in the tenant's catalog
type Product struct {
	ID          ID        `json:"id,omitempty"`
	TenantID    ID        `json:"tenantId,omitempty"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category,omitempty"`
	Price       float64   `json:"price"`
	SKU         string    `json:"sku,omitempty"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"createdAt"`
}

// InteractionType classifies a customer touchpoint
type InteractionType string

const (
	InteractionTypeCall    InteractionType = "call"
	InteractionTypeMeeting InteractionType = "meeting"
	InteractionTypeEmail   InteractionType = "email"
	InteractionTypeChat    InteractionType = "chat"
)

// InteractionTypes is the canonical display order of interaction types
var InteractionTypes = []InteractionType{
	InteractionTypeCall,
	InteractionTypeMeeting,
	InteractionTypeEmail,
	InteractionTypeChat,
}

// Sentiment is the perceived tone of an interaction
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// Sentiments is the canonical display order of sentiments
var Sentiments = []Sentiment{SentimentPositive, SentimentNeutral, SentimentNegative}

// Interaction is a logged touchpoint with a customer
type Interaction struct {
	ID         ID              `json:"id,omitempty"`
	TenantID   ID              `json:"tenantId,omitempty"`
	CustomerID ID              `json:"customerId,omitempty"`
	UserID     ID              `json:"userId,omitempty"`
	Type       InteractionType `json:"type"`
	Sentiment  Sentiment       `json:"sentiment,omitempty"`
	Summary    string          `json:"summary,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// NotificationType categorizes a notification
type NotificationType string

const (
	NotificationTypeInfo    NotificationType = "info"
	NotificationTypeSuccess NotificationType = "success"
	NotificationTypeWarning NotificationType = "warning"
	NotificationTypeError   NotificationType = "error"
)

// Notification is a message for a team member
type Notification struct {
	ID        ID               `json:"id,omitempty"`
	TenantID  ID               `json:"tenantId,omitempty"`
	UserID    ID               `json:"userId,omitempty"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message,omitempty"`
	Read      bool             `json:"read"`
	CreatedAt time.Time        `json:"createdAt"`
}

// AuditLogEntry records an action taken within a tenant
type AuditLogEntry struct {
	ID         ID        `json:"id,omitempty"`
	TenantID   ID        `json:"tenantId,omitempty"`
	UserID     ID        `json:"userId,omitempty"`
	Action     string    `json:"action"`
	EntityType string    `json:"entityType,omitempty"`
	EntityID   ID        `json:"entityId,omitempty"`
	Details    string    `json:"details,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Tenant scoping accessors used by the repository's tenant filter

func (c Customer) Tenant() ID      { return c.TenantID }
func (l Lead) Tenant() ID          { return l.TenantID }
func (d Deal) Tenant() ID          { return d.TenantID }
func (t Ticket) Tenant() ID        { return t.TenantID }
func (t Task) Tenant() ID          { return t.TenantID }
func (a Appointment) Tenant() ID   { return a.TenantID }
func (p Product) Tenant() ID       { return p.TenantID }
func (i Interaction) Tenant() ID   { return i.TenantID }
func (u User) Tenant() ID          { return u.TenantID }
func (n Notification) Tenant() ID  { return n.TenantID }
func (a AuditLogEntry) Tenant() ID { return a.TenantID }
func (t Tenant) Tenant() ID        { return t.ID }
