package repository_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/straye-as/crm-console/internal/config"
	"github.com/straye-as/crm-console/internal/domain"
	"github.com/straye-as/crm-console/internal/httpclient"
	"github.com/straye-as/crm-console/internal/repository"
	"github.com/straye-as/crm-console/internal/session"
	"github.com/straye-as/crm-console/internal/storage"
	"github.com/straye-as/crm-console/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	backend *testutil.Backend
	session *session.Store
	repo    *repository.Repository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	backend := testutil.NewBackend(t)
	backend.AddAccount(testutil.Account{
		Email:    "agent@acme.test",
		Password: "secret",
		Me:       domain.MeResponse{ID: "7", Email: "agent@acme.test", Role: "SALES_AGENT", BusinessID: "100"},
	})
	backend.AddAccount(testutil.Account{
		Email:    "owner@acme.test",
		Password: "secret",
		Me:       domain.MeResponse{ID: "8", Email: "owner@acme.test", Role: "BUSINESS_ADMIN", BusinessID: "100"},
	})
	backend.AddAccount(testutil.Account{
		Email:    "root@platform.test",
		Password: "secret",
		Me:       domain.MeResponse{ID: "1", Email: "root@platform.test", Role: "SUPER_ADMIN"},
	})

	log := zap.NewNop()
	tokens := storage.NewMemoryTokenStore()
	client := httpclient.New(&config.APIConfig{BaseURL: backend.URL(), Timeout: 5, LoginPath: "/login"}, tokens, httpclient.NewMemoryNavigator("/"), log)
	store := session.New(client, tokens, log)
	t.Cleanup(store.Close)

	return &fixture{
		backend: backend,
		session: store,
		repo:    repository.New(client, store, log),
	}
}

func (f *fixture) login(t *testing.T, email string) {
	t.Helper()
	_, err := f.session.Login(context.Background(), email, "secret")
	require.NoError(t, err)
}

func seedTenantData(b *testutil.Backend) {
	b.Seed("leads",
		domain.Lead{ID: "11", TenantID: "100", Title: "Won", Status: domain.LeadStatusWon, Value: 100},
		domain.Lead{ID: "12", TenantID: "100", Title: "Lost", Status: domain.LeadStatusLost, Value: 50},
		domain.Lead{ID: "13", TenantID: "100", Title: "New", Status: domain.LeadStatusNew, Value: 200},
		domain.Lead{ID: "14", TenantID: "200", Title: "Other tenant", Status: domain.LeadStatusNew, Value: 999},
	)
	b.Seed("customers",
		domain.Customer{ID: "21", TenantID: "100", Name: "Acme"},
		domain.Customer{ID: "22", Name: "Unscoped"},
		domain.Customer{ID: "23", TenantID: "200", Name: "Globex"},
	)
	b.Seed("deals", domain.Deal{ID: "31", TenantID: "100", Title: "Big", Stage: domain.DealStageProposal, Amount: 1000, Probability: 50})
	b.Seed("tickets", domain.Ticket{ID: "41", TenantID: "100", Title: "Broken", Status: domain.TicketStatusOpen, Priority: domain.TicketPriorityHigh})
	b.Seed("audit",
		domain.AuditLogEntry{ID: "51", TenantID: "100", Action: "LEAD_CREATED"},
		domain.AuditLogEntry{ID: "52", TenantID: "200", Action: "LEAD_CREATED"},
	)
	b.Seed("businesses", domain.Tenant{ID: "100", Name: "Acme", Plan: domain.PlanPro, Status: domain.TenantStatusActive})
}

func ids[T interface{ Tenant() domain.ID }](items []T, id func(T) domain.ID) []domain.ID {
	out := make([]domain.ID, 0, len(items))
	for _, item := range items {
		out = append(out, id(item))
	}
	return out
}

func TestRefreshTenantData(t *testing.T) {
	f := newFixture(t)
	seedTenantData(f.backend)
	f.login(t, "agent@acme.test")

	require.NoError(t, f.repo.RefreshTenantData(context.Background()))

	leadIDs := ids(f.repo.Leads(), func(l domain.Lead) domain.ID { return l.ID })
	assert.ElementsMatch(t, []domain.ID{"11", "12", "13"}, leadIDs, "records of other tenants are dropped")

	customerIDs := ids(f.repo.Customers(), func(c domain.Customer) domain.ID { return c.ID })
	assert.ElementsMatch(t, []domain.ID{"21", "22"}, customerIDs, "records without a tenant are kept")

	assert.Len(t, f.repo.Deals(), 1)
	assert.Len(t, f.repo.Tickets(), 1)

	// Products, users and platform data are not part of the tenant refresh
	assert.Zero(t, f.backend.Count(http.MethodGet, "/api/products"))
	assert.Zero(t, f.backend.Count(http.MethodGet, "/api/admin/businesses"))
}

func TestRefreshAll(t *testing.T) {
	t.Run("tenant user", func(t *testing.T) {
		f := newFixture(t)
		seedTenantData(f.backend)
		f.login(t, "agent@acme.test")

		require.NoError(t, f.repo.RefreshAll(context.Background()))

		assert.Equal(t, 1, f.backend.Count(http.MethodGet, "/api/audit/business/100"))
		require.Len(t, f.repo.AuditLogs(), 1)
		assert.Equal(t, "LEAD_CREATED", f.repo.AuditLogs()[0].Action)
		assert.Zero(t, f.backend.Count(http.MethodGet, "/api/admin/businesses"), "tenants are super admin only")
		assert.Empty(t, f.repo.Tenants())
	})

	t.Run("super admin skips tenant scoped data", func(t *testing.T) {
		f := newFixture(t)
		seedTenantData(f.backend)
		f.login(t, "root@platform.test")

		require.NoError(t, f.repo.RefreshAll(context.Background()))

		assert.Zero(t, f.backend.Count(http.MethodGet, "/api/leads"))
		assert.Zero(t, f.backend.Count(http.MethodGet, "/api/customers"))
		require.Len(t, f.repo.Tenants(), 1)
		tenant, ok := f.repo.Tenant("100")
		require.True(t, ok)
		assert.Equal(t, domain.PlanPro, tenant.Plan)
	})

	t.Run("no user is a no-op", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.repo.RefreshAll(context.Background()))
		assert.Empty(t, f.backend.Requests())
	})
}

func TestUpdateLead_RoundTrip(t *testing.T) {
	f := newFixture(t)
	seedTenantData(f.backend)
	f.login(t, "agent@acme.test")
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		require.NoError(t, f.repo.UpdateLead(ctx, "13", repository.Patch{"status": "won"}))

		lead, ok := f.repo.Lead("13")
		require.True(t, ok)
		assert.Equal(t, domain.LeadStatusWon, lead.Status)
	}

	// The refresh is issued only after the mutation completed
	requests := f.backend.Requests()
	var tail []string
	for _, r := range requests {
		if r == "PUT /api/leads/13" || r == "GET /api/leads" {
			tail = append(tail, r)
		}
	}
	assert.Equal(t, []string{"PUT /api/leads/13", "GET /api/leads", "PUT /api/leads/13", "GET /api/leads"}, tail)
}

func TestAddAndDelete(t *testing.T) {
	f := newFixture(t)
	f.login(t, "agent@acme.test")
	ctx := context.Background()

	require.NoError(t, f.repo.AddTicket(ctx, domain.Ticket{Title: "Printer on fire", Status: domain.TicketStatusOpen, TenantID: "100"}))
	tickets := f.repo.Tickets()
	require.Len(t, tickets, 1)
	assert.Equal(t, "Printer on fire", tickets[0].Title)

	require.NoError(t, f.repo.DeleteTicket(ctx, tickets[0].ID))
	assert.Empty(t, f.repo.Tickets())

	t.Run("mutation errors are returned unmodified", func(t *testing.T) {
		err := f.repo.DeleteTicket(ctx, "999")
		var apiErr *domain.APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, http.StatusNotFound, apiErr.Status)
		assert.Equal(t, "Record not found", apiErr.Message)
	})

	t.Run("empty id", func(t *testing.T) {
		assert.Error(t, f.repo.UpdateTicket(ctx, "", repository.Patch{"status": "closed"}))
	})
}

func TestMutation_RequiresSession(t *testing.T) {
	f := newFixture(t)
	err := f.repo.AddLead(context.Background(), domain.Lead{Title: "Nope"})
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
	assert.Empty(t, f.backend.Requests())
}

func TestRefresh_FailureKeepsStaleCache(t *testing.T) {
	f := newFixture(t)
	seedTenantData(f.backend)
	f.login(t, "agent@acme.test")
	ctx := context.Background()

	require.NoError(t, f.repo.RefreshLeads(ctx))
	require.Len(t, f.repo.Leads(), 3)

	f.backend.Fail(http.MethodGet, "/api/leads", http.StatusInternalServerError)
	err := f.repo.RefreshLeads(ctx)
	require.Error(t, err)
	assert.Len(t, f.repo.Leads(), 3)

	t.Run("mutation succeeds even when its refresh fails", func(t *testing.T) {
		err := f.repo.UpdateLead(ctx, "13", repository.Patch{"score": 80})
		assert.NoError(t, err)
	})
}

func TestRefresh_UnauthorizedEndsSession(t *testing.T) {
	f := newFixture(t)
	seedTenantData(f.backend)
	f.login(t, "agent@acme.test")
	ctx := context.Background()

	f.backend.Fail(http.MethodGet, "/api/deals", http.StatusUnauthorized)
	err := f.repo.RefreshDeals(ctx)
	require.ErrorIs(t, err, domain.ErrSessionExpired)
	assert.False(t, f.session.IsAuthenticated())

	// No further authenticated request is attempted
	before := len(f.backend.Requests())
	require.NoError(t, f.repo.RefreshTenantData(ctx))
	assert.Len(t, f.backend.Requests(), before)
}

func TestRefresh_DiscardsResponseFromPreviousSession(t *testing.T) {
	f := newFixture(t)
	seedTenantData(f.backend)
	f.login(t, "agent@acme.test")
	ctx := context.Background()

	f.backend.OnRequest(http.MethodGet, "/api/leads", func() {
		f.session.Logout(context.Background())
	})

	err := f.repo.RefreshLeads(ctx)
	assert.ErrorIs(t, err, domain.ErrStaleSession)
	assert.Empty(t, f.repo.Leads())
}

func TestSnapshotsAreCopies(t *testing.T) {
	f := newFixture(t)
	seedTenantData(f.backend)
	f.login(t, "agent@acme.test")
	require.NoError(t, f.repo.RefreshLeads(context.Background()))

	leads := f.repo.Leads()
	leads[0].Title = "mutated"
	_ = append(leads[:0], leads[1:]...)

	assert.Len(t, f.repo.Leads(), 3)
	for _, l := range f.repo.Leads() {
		assert.NotEqual(t, "mutated", l.Title)
	}
}

func TestClear(t *testing.T) {
	f := newFixture(t)
	seedTenantData(f.backend)
	f.login(t, "agent@acme.test")
	require.NoError(t, f.repo.RefreshTenantData(context.Background()))
	require.NotZero(t, f.repo.Counts()["leads"])

	f.repo.Clear()
	for name, n := range f.repo.Counts() {
		assert.Zero(t, n, name)
	}
}

func TestConvertLeadToCustomer(t *testing.T) {
	f := newFixture(t)
	seedTenantData(f.backend)
	f.login(t, "agent@acme.test")
	ctx := context.Background()

	customer, err := f.repo.ConvertLeadToCustomer(ctx, "13")
	require.NoError(t, err)
	assert.Equal(t, "New", customer.Name)

	lead, ok := f.repo.Lead("13")
	require.True(t, ok)
	assert.Equal(t, domain.LeadStatusWon, lead.Status)

	_, ok = f.repo.Customer(customer.ID)
	assert.True(t, ok, "customers are refreshed after conversion")

	_, err = f.repo.ConvertLeadToCustomer(ctx, "13")
	assert.EqualError(t, err, "Lead already converted")
}

func TestOwnerOperations(t *testing.T) {
	staff := domain.CreateStaffRequest{
		Name:     "Sam Support",
		Email:    "sam@acme.test",
		Password: "secret1",
		Role:     "SUPPORT_AGENT",
	}

	t.Run("agent is forbidden before any request", func(t *testing.T) {
		f := newFixture(t)
		f.login(t, "agent@acme.test")
		before := len(f.backend.Requests())

		_, err := f.repo.CreateStaff(context.Background(), "100", staff)
		assert.ErrorIs(t, err, domain.ErrForbidden)
		_, err = f.repo.CreateBusiness(context.Background(), domain.CreateBusinessRequest{Name: "Side hustle"})
		assert.ErrorIs(t, err, domain.ErrForbidden)
		assert.Len(t, f.backend.Requests(), before)
	})

	t.Run("owner creates staff", func(t *testing.T) {
		f := newFixture(t)
		f.login(t, "owner@acme.test")

		resp, err := f.repo.CreateStaff(context.Background(), "100", staff)
		require.NoError(t, err)
		assert.False(t, resp.UserID.IsZero())

		users := f.repo.Users()
		require.Len(t, users, 1)
		assert.Equal(t, domain.RoleSupportAgent, users[0].Role)
		assert.Equal(t, domain.ID("100"), users[0].TenantID)
	})

	t.Run("owner creates business", func(t *testing.T) {
		f := newFixture(t)
		f.login(t, "owner@acme.test")

		resp, err := f.repo.CreateBusiness(context.Background(), domain.CreateBusinessRequest{Name: "Acme Nordic"})
		require.NoError(t, err)
		assert.False(t, resp.BusinessID.IsZero())
	})

	t.Run("invalid staff role", func(t *testing.T) {
		f := newFixture(t)
		f.login(t, "owner@acme.test")

		bad := staff
		bad.Role = "SUPER_ADMIN"
		_, err := f.repo.CreateStaff(context.Background(), "100", bad)
		var ve *domain.ValidationError
		assert.True(t, errors.As(err, &ve))
	})
}

func TestPlatformOperations(t *testing.T) {
	f := newFixture(t)
	seedTenantData(f.backend)
	f.backend.SetStats(domain.PlatformStats{TotalBusinesses: 1, ActiveBusinesses: 1, TotalUsers: 3})
	ctx := context.Background()

	t.Run("owner cannot use platform operations", func(t *testing.T) {
		f.login(t, "owner@acme.test")
		_, err := f.repo.PlatformStats(ctx)
		assert.ErrorIs(t, err, domain.ErrForbidden)
		assert.ErrorIs(t, f.repo.SetBusinessActive(ctx, "100", false), domain.ErrForbidden)
		f.session.Logout(ctx)
	})

	f.login(t, "root@platform.test")

	t.Run("stats", func(t *testing.T) {
		stats, err := f.repo.PlatformStats(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(3), stats.TotalUsers)
	})

	t.Run("suspend business", func(t *testing.T) {
		require.NoError(t, f.repo.SetBusinessActive(ctx, "100", false))
		tenant, ok := f.repo.Tenant("100")
		require.True(t, ok)
		assert.Equal(t, domain.TenantStatusSuspended, tenant.Status)
	})

	t.Run("create owner", func(t *testing.T) {
		resp, err := f.repo.CreateOwner(ctx, domain.CreateOwnerRequest{
			Name:         "Olivia Owner",
			Email:        "olivia@initech.test",
			Password:     "secret1",
			BusinessName: "Initech",
		})
		require.NoError(t, err)
		assert.False(t, resp.BusinessID.IsZero())
		assert.Len(t, f.repo.Tenants(), 2)

		_, err = f.repo.CreateOwner(ctx, domain.CreateOwnerRequest{
			Name:     "Olivia Owner",
			Email:    "olivia@initech.test",
			Password: "secret1",
		})
		assert.EqualError(t, err, "Email already in use")
	})

	t.Run("create owner validates input", func(t *testing.T) {
		_, err := f.repo.CreateOwner(ctx, domain.CreateOwnerRequest{Name: "x", Email: "bad"})
		var ve *domain.ValidationError
		assert.True(t, errors.As(err, &ve))
	})
}
