package analytics

import (
	"time"

	"github.com/straye-as/crm-console/internal/domain"
)

// renewalWindow is how far ahead a subscription end counts as an upcoming renewal
const renewalWindow = 30 * 24 * time.Hour

// Snapshot is the set of cached collections a dashboard is computed from
type Snapshot struct {
	Customers    []domain.Customer
	Leads        []domain.Lead
	Deals        []domain.Deal
	Tickets      []domain.Ticket
	Tasks        []domain.Task
	Appointments []domain.Appointment
	Interactions []domain.Interaction
	Users        []domain.User
	Tenants      []domain.Tenant
}

// assignedToOrUnassigned matches records owned by userID or by nobody
func assignedToOrUnassigned(assignee, userID domain.ID) bool {
	return assignee.IsZero() || assignee == userID
}

// ============================================================================
// Tenant dashboards
// ============================================================================

// CompanyDashboard is the overview every tenant role can open
type CompanyDashboard struct {
	TotalCustomers        int     `json:"totalCustomers"`
	TotalLeads            int     `json:"totalLeads"`
	TotalDeals            int     `json:"totalDeals"`
	PendingTasks          int     `json:"pendingTasks"`
	ScheduledAppointments int     `json:"scheduledAppointments"`
	OpenTickets           int     `json:"openTickets"`
	PipelineValue         float64 `json:"pipelineValue"`
	ConversionRate        float64 `json:"conversionRate"`
}

// NewCompanyDashboard builds the tenant overview
func NewCompanyDashboard(s Snapshot) CompanyDashboard {
	return CompanyDashboard{
		TotalCustomers:        len(s.Customers),
		TotalLeads:            len(s.Leads),
		TotalDeals:            len(s.Deals),
		PendingTasks:          CountWhere(s.Tasks, isPendingTask),
		ScheduledAppointments: CountWhere(s.Appointments, isScheduled),
		OpenTickets:           CountWhere(s.Tickets, isOpenTicket),
		PipelineValue:         DealOpenValue(s.Deals),
		ConversionRate:        ConversionRate(s.Leads),
	}
}

// OwnerDashboard extends the company overview with team and revenue figures
type OwnerDashboard struct {
	CompanyDashboard
	TeamSize   int                   `json:"teamSize"`
	TeamByRole []Bucket[domain.Role] `json:"teamByRole"`
	WonRevenue float64               `json:"wonRevenue"`
	WinRate    float64               `json:"winRate"`
	Pipeline   PipelineStats         `json:"pipeline"`
}

// NewOwnerDashboard builds the owner's view. Won revenue is the value of won leads.
func NewOwnerDashboard(s Snapshot) OwnerDashboard {
	return OwnerDashboard{
		CompanyDashboard: NewCompanyDashboard(s),
		TeamSize:         len(s.Users),
		TeamByRole:       CountBy(s.Users, func(u domain.User) domain.Role { return u.Role }, domain.Roles),
		WonRevenue:       Sum(Filter(s.Leads, isWonLead), leadValue),
		WinRate:          WinRate(s.Deals),
		Pipeline:         DealPipeline(s.Deals),
	}
}

// SalesManagerDashboard covers the whole team's leads and deals
type SalesManagerDashboard struct {
	TotalLeads      int                         `json:"totalLeads"`
	UnassignedLeads int                         `json:"unassignedLeads"`
	ActiveLeads     int                         `json:"activeLeads"`
	WonLeads        int                         `json:"wonLeads"`
	PipelineValue   float64                     `json:"pipelineValue"`
	ConversionRate  float64                     `json:"conversionRate"`
	LeadsByStatus   []Bucket[domain.LeadStatus] `json:"leadsByStatus"`
	Deals           PipelineStats               `json:"deals"`
	WinRate         float64                     `json:"winRate"`
}

// NewSalesManagerDashboard builds the sales manager's view
func NewSalesManagerDashboard(s Snapshot) SalesManagerDashboard {
	return SalesManagerDashboard{
		TotalLeads:      len(s.Leads),
		UnassignedLeads: CountWhere(s.Leads, func(l domain.Lead) bool { return l.AssignedTo.IsZero() }),
		ActiveLeads:     CountWhere(s.Leads, isActiveLead),
		WonLeads:        CountWhere(s.Leads, isWonLead),
		PipelineValue:   LeadPipelineValue(s.Leads),
		ConversionRate:  ConversionRate(s.Leads),
		LeadsByStatus:   LeadStatusBuckets(s.Leads),
		Deals:           DealPipeline(s.Deals),
		WinRate:         WinRate(s.Deals),
	}
}

// SalesAgentDashboard covers the agent's own leads, tasks and appointments.
// Unassigned leads count as the agent's, as they are free to pick up.
type SalesAgentDashboard struct {
	MyLeads               int     `json:"myLeads"`
	MyActiveLeads         int     `json:"myActiveLeads"`
	MyPipelineValue       float64 `json:"myPipelineValue"`
	MyConversionRate      float64 `json:"myConversionRate"`
	PendingTasks          int     `json:"pendingTasks"`
	OverdueTasks          int     `json:"overdueTasks"`
	ScheduledAppointments int     `json:"scheduledAppointments"`
}

// NewSalesAgentDashboard builds the view for the agent with userID. Tasks
// count only when assigned to the agent.
func NewSalesAgentDashboard(s Snapshot, userID domain.ID, now time.Time) SalesAgentDashboard {
	leads := Filter(s.Leads, func(l domain.Lead) bool { return assignedToOrUnassigned(l.AssignedTo, userID) })
	tasks := Filter(s.Tasks, func(t domain.Task) bool { return t.AssignedTo == userID })
	appointments := Filter(s.Appointments, func(a domain.Appointment) bool {
		return assignedToOrUnassigned(a.AssignedTo, userID)
	})

	return SalesAgentDashboard{
		MyLeads:               len(leads),
		MyActiveLeads:         CountWhere(leads, isActiveLead),
		MyPipelineValue:       LeadPipelineValue(leads),
		MyConversionRate:      ConversionRate(leads),
		PendingTasks:          CountWhere(tasks, isPendingTask),
		OverdueTasks:          CountWhere(tasks, func(t domain.Task) bool { return t.IsOverdue(now) }),
		ScheduledAppointments: CountWhere(appointments, isScheduled),
	}
}

// SupportManagerDashboard covers every ticket of the tenant. An SLA breach is
// an urgent ticket still open.
type SupportManagerDashboard struct {
	TotalTickets      int                             `json:"totalTickets"`
	OpenTickets       int                             `json:"openTickets"`
	HighPriority      int                             `json:"highPriority"`
	SLABreaches       int                             `json:"slaBreaches"`
	ResolutionRate    float64                         `json:"resolutionRate"`
	TicketsByStatus   []Bucket[domain.TicketStatus]   `json:"ticketsByStatus"`
	TicketsByPriority []Bucket[domain.TicketPriority] `json:"ticketsByPriority"`
}

// NewSupportManagerDashboard builds the support manager's view. Resolved and
// closed tickets count towards the resolution rate.
func NewSupportManagerDashboard(s Snapshot) SupportManagerDashboard {
	resolved := CountWhere(s.Tickets, func(t domain.Ticket) bool {
		return t.Status == domain.TicketStatusResolved || t.Status == domain.TicketStatusClosed
	})
	return SupportManagerDashboard{
		TotalTickets: len(s.Tickets),
		OpenTickets:  CountWhere(s.Tickets, isOpenTicket),
		HighPriority: CountWhere(s.Tickets, func(t domain.Ticket) bool {
			return t.Priority == domain.TicketPriorityHigh || t.Priority == domain.TicketPriorityUrgent
		}),
		SLABreaches: CountWhere(s.Tickets, func(t domain.Ticket) bool {
			return t.Status == domain.TicketStatusOpen && t.Priority == domain.TicketPriorityUrgent
		}),
		ResolutionRate:    Percent(resolved, len(s.Tickets)),
		TicketsByStatus:   TicketStatusBuckets(s.Tickets),
		TicketsByPriority: TicketPriorityBuckets(s.Tickets),
	}
}

// SupportAgentDashboard covers tickets assigned to the agent or to nobody
type SupportAgentDashboard struct {
	MyTickets         int                             `json:"myTickets"`
	OpenTickets       int                             `json:"openTickets"`
	ResolvedTickets   int                             `json:"resolvedTickets"`
	TicketsByPriority []Bucket[domain.TicketPriority] `json:"ticketsByPriority"`
}

// NewSupportAgentDashboard builds the view for the agent with userID
func NewSupportAgentDashboard(s Snapshot, userID domain.ID) SupportAgentDashboard {
	mine := Filter(s.Tickets, func(t domain.Ticket) bool { return assignedToOrUnassigned(t.AssignedTo, userID) })
	return SupportAgentDashboard{
		MyTickets:         len(mine),
		OpenTickets:       CountWhere(mine, isOpenTicket),
		ResolvedTickets:   CountWhere(mine, ticketStatusIs(domain.TicketStatusResolved)),
		TicketsByPriority: TicketPriorityBuckets(mine),
	}
}

// FinanceDashboard reports revenue and closed business
type FinanceDashboard struct {
	TotalSales       float64       `json:"totalSales"`
	ActiveCustomers  int           `json:"activeCustomers"`
	ClosedWonValue   float64       `json:"closedWonValue"`
	PipelineValue    float64       `json:"pipelineValue"`
	WeightedPipeline float64       `json:"weightedPipeline"`
	AverageDealSize  float64       `json:"averageDealSize"`
	WinLoss          WinRateResult `json:"winLoss"`
}

// NewFinanceDashboard builds the finance view. PipelineValue excludes lost deals.
func NewFinanceDashboard(s Snapshot) FinanceDashboard {
	winLoss := WinRateAnalysis(s.Deals)
	return FinanceDashboard{
		TotalSales:       Sum(Filter(s.Leads, isWonLead), leadValue),
		ActiveCustomers:  CountWhere(s.Customers, isActiveCustomer),
		ClosedWonValue:   winLoss.WonValue,
		PipelineValue:    DealTotalValue(s.Deals),
		WeightedPipeline: WeightedPipeline(s.Deals),
		AverageDealSize:  Ratio(Sum(s.Deals, dealAmount), float64(len(s.Deals))),
		WinLoss:          winLoss,
	}
}

// ViewerDashboard is a read-only headcount of the main collections
type ViewerDashboard struct {
	TotalCustomers int `json:"totalCustomers"`
	TotalLeads     int `json:"totalLeads"`
	TotalDeals     int `json:"totalDeals"`
	TotalTickets   int `json:"totalTickets"`
	ActiveLeads    int `json:"activeLeads"`
}

// NewViewerDashboard builds the viewer's counts
func NewViewerDashboard(s Snapshot) ViewerDashboard {
	return ViewerDashboard{
		TotalCustomers: len(s.Customers),
		TotalLeads:     len(s.Leads),
		TotalDeals:     len(s.Deals),
		TotalTickets:   len(s.Tickets),
		ActiveLeads:    CountWhere(s.Leads, isActiveLead),
	}
}

// ============================================================================
// Deals and tasks
// ============================================================================

// PipelineStats holds aggregated pipeline statistics
type PipelineStats struct {
	TotalCount    int          `json:"totalCount"`
	TotalValue    float64      `json:"totalValue"`
	WeightedValue float64      `json:"weightedValue"`
	ByStage       []StageStats `json:"byStage"`
}

// StageStats holds statistics for a single stage
type StageStats struct {
	Stage         domain.DealStage `json:"stage"`
	Count         int              `json:"count"`
	TotalValue    float64          `json:"totalValue"`
	WeightedValue float64          `json:"weightedValue"`
}

// DealPipeline breaks deals down per stage in canonical order. TotalValue
// and WeightedValue cover open deals only.
func DealPipeline(deals []domain.Deal) PipelineStats {
	stats := PipelineStats{
		TotalCount:    len(deals),
		TotalValue:    DealOpenValue(deals),
		WeightedValue: WeightedPipeline(deals),
	}
	for _, b := range DealStageBuckets(deals) {
		inStage := Filter(deals, func(d domain.Deal) bool { return d.Stage == b.Key })
		stats.ByStage = append(stats.ByStage, StageStats{
			Stage:         b.Key,
			Count:         b.Count,
			TotalValue:    Sum(inStage, dealAmount),
			WeightedValue: Sum(inStage, dealWeighted),
		})
	}
	return stats
}

// TaskSummary backs the tasks view
type TaskSummary struct {
	Total    int                         `json:"total"`
	ByStatus []Bucket[domain.TaskStatus] `json:"byStatus"`
	Overdue  int                         `json:"overdue"`
	DueToday int                         `json:"dueToday"`
}

// NewTaskSummary counts overdue and due-today tasks relative to now
func NewTaskSummary(tasks []domain.Task, now time.Time) TaskSummary {
	y, m, d := now.Date()
	startOfDay := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	endOfDay := startOfDay.AddDate(0, 0, 1)

	return TaskSummary{
		Total:    len(tasks),
		ByStatus: TaskStatusBuckets(tasks),
		Overdue:  CountWhere(tasks, func(t domain.Task) bool { return t.IsOverdue(now) }),
		DueToday: CountWhere(tasks, func(t domain.Task) bool {
			return t.DueDate != nil && !t.DueDate.Before(startOfDay) && t.DueDate.Before(endOfDay)
		}),
	}
}

// ============================================================================
// Analytics
// ============================================================================

// AnalyticsDashboard is the full breakdown shown on the analytics view
type AnalyticsDashboard struct {
	LeadsByStatus           []Bucket[domain.LeadStatus]        `json:"leadsByStatus"`
	DealsByStage            []Bucket[domain.DealStage]         `json:"dealsByStage"`
	TicketsByStatus         []Bucket[domain.TicketStatus]      `json:"ticketsByStatus"`
	TicketsByPriority       []Bucket[domain.TicketPriority]    `json:"ticketsByPriority"`
	TasksByStatus           []Bucket[domain.TaskStatus]        `json:"tasksByStatus"`
	AppointmentsByStatus    []Bucket[domain.AppointmentStatus] `json:"appointmentsByStatus"`
	InteractionsByType      []Bucket[domain.InteractionType]   `json:"interactionsByType"`
	InteractionsBySentiment []Bucket[domain.Sentiment]         `json:"interactionsBySentiment"`
	LeadSources             []Share                            `json:"leadSources"`
	TotalLeadValue          float64                            `json:"totalLeadValue"`
	TotalDealValue          float64                            `json:"totalDealValue"`
	WeightedPipeline        float64                            `json:"weightedPipeline"`
	AverageLeadScore        float64                            `json:"averageLeadScore"`
	ConversionRate          float64                            `json:"conversionRate"`
	WinRate                 float64                            `json:"winRate"`
}

// NewAnalyticsDashboard builds every breakdown of the analytics view
func NewAnalyticsDashboard(s Snapshot) AnalyticsDashboard {
	return AnalyticsDashboard{
		LeadsByStatus:           LeadStatusBuckets(s.Leads),
		DealsByStage:            DealStageBuckets(s.Deals),
		TicketsByStatus:         TicketStatusBuckets(s.Tickets),
		TicketsByPriority:       TicketPriorityBuckets(s.Tickets),
		TasksByStatus:           TaskStatusBuckets(s.Tasks),
		AppointmentsByStatus:    AppointmentStatusBuckets(s.Appointments),
		InteractionsByType:      InteractionTypeBuckets(s.Interactions),
		InteractionsBySentiment: InteractionSentimentBuckets(s.Interactions),
		LeadSources:             LeadSourceDistribution(s.Leads),
		TotalLeadValue:          Sum(s.Leads, leadValue),
		TotalDealValue:          DealTotalValue(s.Deals),
		WeightedPipeline:        WeightedPipeline(s.Deals),
		AverageLeadScore:        AverageScore(s.Leads),
		ConversionRate:          ConversionRate(s.Leads),
		WinRate:                 WinRate(s.Deals),
	}
}

// ============================================================================
// Platform
// ============================================================================

// PlanRevenue is the monthly revenue of active tenants on one plan
type PlanRevenue struct {
	Plan    domain.TenantPlan `json:"plan"`
	Tenants int               `json:"tenants"`
	Revenue float64           `json:"revenue"`
}

// UsageTotals sums tenant usage counters against their limits
type UsageTotals struct {
	Users        int `json:"users"`
	UserLimit    int `json:"userLimit"`
	Leads        int `json:"leads"`
	LeadLimit    int `json:"leadLimit"`
	Storage      int `json:"storage"`
	StorageLimit int `json:"storageLimit"`
}

// PlatformDashboard is the super admin's view over every tenant.
// TotalRevenue counts every tenant's billing amount; MRR counts active tenants only.
// TotalUsers sums the tenants' user counters.
type PlatformDashboard struct {
	TotalTenants     int                           `json:"totalTenants"`
	ActiveTenants    int                           `json:"activeTenants"`
	SuspendedTenants int                           `json:"suspendedTenants"`
	TotalUsers       int                           `json:"totalUsers"`
	TotalRevenue     float64                       `json:"totalRevenue"`
	MRR              float64                       `json:"mrr"`
	ARPU             float64                       `json:"arpu"`
	PlanDistribution []Bucket[domain.TenantPlan]   `json:"planDistribution"`
	TenantsByStatus  []Bucket[domain.TenantStatus] `json:"tenantsByStatus"`
	RevenueByPlan    []PlanRevenue                 `json:"revenueByPlan"`
	UpcomingRenewals []domain.Tenant               `json:"upcomingRenewals"`
	OverLimitTenants []domain.Tenant               `json:"overLimitTenants"`
	Usage            UsageTotals                   `json:"usage"`
}

// NewPlatformDashboard builds the platform view. Renewals are subscriptions
// ending within 30 days of now.
func NewPlatformDashboard(s Snapshot, now time.Time) PlatformDashboard {
	active := Filter(s.Tenants, isActiveTenant)
	mrr := Sum(active, tenantBilling)

	dash := PlatformDashboard{
		TotalTenants:     len(s.Tenants),
		ActiveTenants:    len(active),
		SuspendedTenants: CountWhere(s.Tenants, func(t domain.Tenant) bool { return t.Status == domain.TenantStatusSuspended }),
		TotalRevenue:     Sum(s.Tenants, tenantBilling),
		MRR:              mrr,
		ARPU:             Ratio(mrr, float64(len(active))),
		PlanDistribution: TenantPlanBuckets(s.Tenants),
		TenantsByStatus:  TenantStatusBuckets(s.Tenants),
		UpcomingRenewals: Filter(s.Tenants, func(t domain.Tenant) bool {
			if t.SubscriptionEnd == nil {
				return false
			}
			until := t.SubscriptionEnd.Sub(now)
			return until >= 0 && until <= renewalWindow
		}),
		OverLimitTenants: Filter(s.Tenants, func(t domain.Tenant) bool { return t.OverLimit() }),
	}

	for _, b := range TenantPlanBuckets(active) {
		onPlan := Filter(active, func(t domain.Tenant) bool { return t.Plan == b.Key })
		dash.RevenueByPlan = append(dash.RevenueByPlan, PlanRevenue{
			Plan:    b.Key,
			Tenants: b.Count,
			Revenue: Sum(onPlan, tenantBilling),
		})
	}

	for _, t := range s.Tenants {
		dash.Usage.Users += t.CurrentUsers
		dash.Usage.UserLimit += t.UserLimit
		dash.Usage.Leads += t.CurrentLeads
		dash.Usage.LeadLimit += t.LeadLimit
		dash.Usage.Storage += t.CurrentStorage
		dash.Usage.StorageLimit += t.StorageLimit
	}
	dash.TotalUsers = dash.Usage.Users
	return dash
}
