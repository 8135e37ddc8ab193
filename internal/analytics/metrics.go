package analytics

import (
	"github.com/straye-as/crm-console/internal/domain"
)

// ============================================================================
// Bucketing
// ============================================================================

// The *Buckets functions count records per status in the canonical display
// order of the domain package, zero counts included.

// LeadStatusBuckets counts leads per funnel status
func LeadStatusBuckets(leads []domain.Lead) []Bucket[domain.LeadStatus] {
	return CountBy(leads, func(l domain.Lead) domain.LeadStatus { return l.Status }, domain.LeadStatuses)
}

// DealStageBuckets counts deals per pipeline stage
func DealStageBuckets(deals []domain.Deal) []Bucket[domain.DealStage] {
	return CountBy(deals, func(d domain.Deal) domain.DealStage { return d.Stage }, domain.DealStages)
}

// TicketStatusBuckets counts tickets per lifecycle status
func TicketStatusBuckets(tickets []domain.Ticket) []Bucket[domain.TicketStatus] {
	return CountBy(tickets, func(t domain.Ticket) domain.TicketStatus { return t.Status }, domain.TicketStatuses)
}

// TicketPriorityBuckets counts tickets per priority, low to urgent
func TicketPriorityBuckets(tickets []domain.Ticket) []Bucket[domain.TicketPriority] {
	return CountBy(tickets, func(t domain.Ticket) domain.TicketPriority { return t.Priority }, domain.TicketPriorities)
}

// TaskStatusBuckets counts tasks per status
func TaskStatusBuckets(tasks []domain.Task) []Bucket[domain.TaskStatus] {
	return CountBy(tasks, func(t domain.Task) domain.TaskStatus { return t.Status }, domain.TaskStatuses)
}

// AppointmentStatusBuckets counts appointments per status
func AppointmentStatusBuckets(appointments []domain.Appointment) []Bucket[domain.AppointmentStatus] {
	return CountBy(appointments, func(a domain.Appointment) domain.AppointmentStatus { return a.Status }, domain.AppointmentStatuses)
}

// InteractionTypeBuckets counts interactions per channel
func InteractionTypeBuckets(interactions []domain.Interaction) []Bucket[domain.InteractionType] {
	return CountBy(interactions, func(i domain.Interaction) domain.InteractionType { return i.Type }, domain.InteractionTypes)
}

// InteractionSentimentBuckets counts interactions per sentiment; interactions
// without one are left out
func InteractionSentimentBuckets(interactions []domain.Interaction) []Bucket[domain.Sentiment] {
	return CountBy(interactions, func(i domain.Interaction) domain.Sentiment { return i.Sentiment }, domain.Sentiments)
}

// TenantPlanBuckets counts tenants per subscription plan
func TenantPlanBuckets(tenants []domain.Tenant) []Bucket[domain.TenantPlan] {
	return CountBy(tenants, func(t domain.Tenant) domain.TenantPlan { return t.Plan }, domain.TenantPlans)
}

// TenantStatusBuckets counts tenants per lifecycle status
func TenantStatusBuckets(tenants []domain.Tenant) []Bucket[domain.TenantStatus] {
	return CountBy(tenants, func(t domain.Tenant) domain.TenantStatus { return t.Status }, domain.TenantStatuses)
}

// ============================================================================
// Pipeline
// ============================================================================

func leadValue(l domain.Lead) float64 { return l.Value }
func leadStatus(l domain.Lead) domain.LeadStatus { return l.Status }
func dealAmount(d domain.Deal) float64 { return d.Amount }
func dealStage(d domain.Deal) domain.DealStage { return d.Stage }
func dealWeighted(d domain.Deal) float64 { return d.WeightedAmount() }
func tenantBilling(t domain.Tenant) float64 { return t.BillingAmount }
func isActiveLead(l domain.Lead) bool { return !l.Status.IsTerminal() }
func isActiveTenant(t domain.Tenant) bool { return t.Status == domain.TenantStatusActive }
func isPendingTask(t domain.Task) bool { return t.Status == domain.TaskStatusPending }
func isScheduled(a domain.Appointment) bool { return a.Status == domain.AppointmentStatusScheduled }
func isOpenTicket(t domain.Ticket) bool { return t.IsOpen() }
func isActiveCustomer(c domain.Customer) bool { return c.IsActive() }
func isWonLead(l domain.Lead) bool { return l.Status == domain.LeadStatusWon }

func ticketStatusIs(s domain.TicketStatus) func(domain.Ticket) bool {
	return func(t domain.Ticket) bool { return t.Status == s }
}

// LeadPipelineValue is the value of leads that are neither won nor lost
func LeadPipelineValue(leads []domain.Lead) float64 {
	return PipelineValue(leads, leadValue, leadStatus, domain.LeadStatusWon, domain.LeadStatusLost)
}

// DealTotalValue is the amount of every deal except closed_lost ones
func DealTotalValue(deals []domain.Deal) float64 {
	return PipelineValue(deals, dealAmount, dealStage, domain.DealStageClosedLost)
}

// DealOpenValue is the amount of deals that are still open
func DealOpenValue(deals []domain.Deal) float64 {
	return PipelineValue(deals, dealAmount, dealStage, domain.DealStageClosedWon, domain.DealStageClosedLost)
}

// WeightedPipeline sums amount*probability/100 over open deals
func WeightedPipeline(deals []domain.Deal) float64 {
	return PipelineValue(deals, dealWeighted, dealStage, domain.DealStageClosedWon, domain.DealStageClosedLost)
}

// ============================================================================
// Rates
// ============================================================================

// ConversionRate is the share of leads that were won, as a percentage
func ConversionRate(leads []domain.Lead) float64 {
	return Percent(CountWhere(leads, isWonLead), len(leads))
}

// WinRate is closed_won/(closed_won+closed_lost) as a percentage
func WinRate(deals []domain.Deal) float64 {
	return WinRateAnalysis(deals).WinRate
}

// AverageScore is the mean lead score
func AverageScore(leads []domain.Lead) float64 {
	scores := make([]float64, len(leads))
	for i, l := range leads {
		scores[i] = float64(l.Score)
	}
	return Mean(scores)
}

// WinRateResult holds win/loss analysis data
type WinRateResult struct {
	TotalClosed      int     `json:"totalClosed"`
	TotalWon         int     `json:"totalWon"`
	TotalLost        int     `json:"totalLost"`
	WinRate          float64 `json:"winRate"`
	WonValue         float64 `json:"wonValue"`
	LostValue        float64 `json:"lostValue"`
	AvgWonDealValue  float64 `json:"avgWonDealValue"`
	AvgLostDealValue float64 `json:"avgLostDealValue"`
}

// WinRateAnalysis returns win/loss statistics over closed deals
func WinRateAnalysis(deals []domain.Deal) WinRateResult {
	var result WinRateResult
	for _, d := range deals {
		switch d.Stage {
		case domain.DealStageClosedWon:
			result.TotalWon++
			result.WonValue += d.Amount
		case domain.DealStageClosedLost:
			result.TotalLost++
			result.LostValue += d.Amount
		}
	}

	result.TotalClosed = result.TotalWon + result.TotalLost
	result.WinRate = Percent(result.TotalWon, result.TotalClosed)
	result.AvgWonDealValue = Ratio(result.WonValue, float64(result.TotalWon))
	result.AvgLostDealValue = Ratio(result.LostValue, float64(result.TotalLost))
	return result
}

// LeadSourceDistribution groups leads by source
func LeadSourceDistribution(leads []domain.Lead) []Share {
	return Distribution(leads, func(l domain.Lead) string { return l.Source })
}
