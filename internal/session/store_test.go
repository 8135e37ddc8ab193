package session_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/straye-as/crm-console/internal/config"
	"github.com/straye-as/crm-console/internal/domain"
	"github.com/straye-as/crm-console/internal/httpclient"
	"github.com/straye-as/crm-console/internal/session"
	"github.com/straye-as/crm-console/internal/storage"
	"github.com/straye-as/crm-console/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fixture struct {
	backend   *testutil.Backend
	client    *httpclient.Client
	tokens    *storage.MemoryTokenStore
	navigator *httpclient.MemoryNavigator
	store     *session.Store
	logs      *observer.ObservedLogs
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	backend := testutil.NewBackend(t)
	backend.AddAccount(testutil.Account{
		Email:    "agent@acme.test",
		Password: "secret",
		Me:       domain.MeResponse{ID: "7", Email: "agent@acme.test", FullName: "Alex Agent", Role: "SALES_AGENT", BusinessID: "100"},
	})
	backend.AddAccount(testutil.Account{
		Email:    "root@platform.test",
		Password: "secret",
		Me:       domain.MeResponse{ID: "1", Email: "root@platform.test", Role: "ROLE_SUPER_ADMIN"},
	})

	core, logs := observer.New(zapcore.InfoLevel)
	log := zap.New(core)

	tokens := storage.NewMemoryTokenStore()
	nav := httpclient.NewMemoryNavigator("/login")
	client := httpclient.New(&config.APIConfig{BaseURL: backend.URL(), Timeout: 5, LoginPath: "/login"}, tokens, nav, log)
	store := session.New(client, tokens, log)
	t.Cleanup(store.Close)

	return &fixture{backend: backend, client: client, tokens: tokens, navigator: nav, store: store, logs: logs}
}

func (f *fixture) storedToken(t *testing.T) string {
	t.Helper()
	token, err := f.tokens.Load(context.Background())
	require.NoError(t, err)
	return token
}

func TestLogin(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		f := newFixture(t)

		user, err := f.store.Login(context.Background(), "agent@acme.test", "secret")
		require.NoError(t, err)

		assert.Equal(t, domain.ID("7"), user.ID)
		assert.Equal(t, "Alex Agent", user.Name)
		assert.Equal(t, domain.RoleSalesAgent, user.Role)
		assert.Equal(t, domain.ID("100"), user.TenantID)
		assert.Equal(t, "token-agent@acme.test", f.storedToken(t))
		assert.True(t, f.store.IsAuthenticated())
		assert.Equal(t, uint64(1), f.store.Epoch())
	})

	t.Run("super admin has no tenant", func(t *testing.T) {
		f := newFixture(t)

		user, err := f.store.Login(context.Background(), "root@platform.test", "secret")
		require.NoError(t, err)
		assert.Equal(t, domain.RoleSuperAdmin, user.Role)
		assert.True(t, user.TenantID.IsZero())
		assert.Equal(t, "root@platform.test", user.Name)
	})

	t.Run("bad credentials leave no partial state", func(t *testing.T) {
		f := newFixture(t)

		user, err := f.store.Login(context.Background(), "bad@x.com", "wrong")
		require.Error(t, err)
		assert.Nil(t, user)
		assert.Equal(t, "Login failed: Bad credentials", err.Error())

		assert.Empty(t, f.storedToken(t))
		assert.Nil(t, f.store.CurrentUser())
		assert.Zero(t, f.backend.Count(http.MethodGet, "/api/auth/me"))
	})

	t.Run("soft failure", func(t *testing.T) {
		f := newFixture(t)
		f.backend.AddAccount(testutil.Account{Email: "off@acme.test", Password: "secret", SoftFail: true})

		_, err := f.store.Login(context.Background(), "off@acme.test", "secret")
		require.EqualError(t, err, "Account is disabled")
		assert.Empty(t, f.storedToken(t))
		assert.Nil(t, f.store.CurrentUser())
	})

	t.Run("profile failure stores no token", func(t *testing.T) {
		f := newFixture(t)
		f.backend.Fail(http.MethodGet, "/api/auth/me", http.StatusInternalServerError)

		_, err := f.store.Login(context.Background(), "agent@acme.test", "secret")
		require.Error(t, err)

		var apiErr *domain.APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
		assert.Empty(t, f.storedToken(t))
		assert.Nil(t, f.store.CurrentUser())
	})

	t.Run("invalid input is rejected before any request", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.store.Login(context.Background(), "not-an-email", "")
		var ve *domain.ValidationError
		require.True(t, errors.As(err, &ve))
		assert.Empty(t, f.backend.Requests())
	})

	t.Run("unknown role falls back to viewer and is logged", func(t *testing.T) {
		f := newFixture(t)
		f.backend.AddAccount(testutil.Account{
			Email:    "odd@acme.test",
			Password: "secret",
			Me:       domain.MeResponse{ID: "9", Email: "odd@acme.test", Role: "INTERN", BusinessID: "100"},
		})

		user, err := f.store.Login(context.Background(), "odd@acme.test", "secret")
		require.NoError(t, err)
		assert.Equal(t, domain.RoleViewer, user.Role)
		assert.Equal(t, 1, f.store.UnknownRoleCount())

		entries := f.logs.FilterMessage("Unrecognized backend role, using default").All()
		require.Len(t, entries, 1)
		assert.Equal(t, "INTERN", entries[0].ContextMap()["backend_role"])
	})
}

func TestLogout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.store.Login(ctx, "agent@acme.test", "secret")
	require.NoError(t, err)
	epoch := f.store.Epoch()

	f.store.Logout(ctx)
	assert.Nil(t, f.store.CurrentUser())
	assert.Empty(t, f.storedToken(t))
	assert.Greater(t, f.store.Epoch(), epoch)

	// Idempotent
	f.store.Logout(ctx)
	assert.Nil(t, f.store.CurrentUser())
	assert.Len(t, f.logs.FilterMessage("User logged out").All(), 1)
}

func TestSessionExpiry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.store.Login(ctx, "agent@acme.test", "secret")
	require.NoError(t, err)
	f.navigator.Redirect("/leads")

	// Any authenticated request that gets a 401 ends the session
	f.backend.Fail(http.MethodGet, "/api/leads", http.StatusUnauthorized)
	err = f.client.Get(ctx, "/api/leads", nil)
	require.ErrorIs(t, err, domain.ErrSessionExpired)

	assert.False(t, f.store.IsAuthenticated())
	assert.Empty(t, f.storedToken(t))
	assert.Equal(t, "/login", f.navigator.Location())
}

func TestRegister(t *testing.T) {
	t.Run("does not authenticate", func(t *testing.T) {
		f := newFixture(t)

		err := f.store.Register(context.Background(), domain.RegisterCustomerRequest{
			FullName: "Casey Customer",
			Email:    "casey@example.com",
			Password: "secret1",
			Phone:    "+4712345678",
		})
		require.NoError(t, err)
		assert.Nil(t, f.store.CurrentUser())
		assert.Empty(t, f.storedToken(t))

		user, err := f.store.Login(context.Background(), "casey@example.com", "secret1")
		require.NoError(t, err)
		assert.Equal(t, domain.RoleCustomer, user.Role)
	})

	t.Run("duplicate email", func(t *testing.T) {
		f := newFixture(t)

		err := f.store.Register(context.Background(), domain.RegisterCustomerRequest{
			FullName: "Alex",
			Email:    "agent@acme.test",
			Password: "secret1",
			Phone:    "1",
		})
		require.EqualError(t, err, "Registration failed: Email already in use")
	})
}

func TestRestore(t *testing.T) {
	t.Run("no token", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.store.Restore(context.Background())
		assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
	})

	t.Run("valid token", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.tokens.Save(context.Background(), "token-agent@acme.test"))

		user, err := f.store.Restore(context.Background())
		require.NoError(t, err)
		assert.Equal(t, domain.RoleSalesAgent, user.Role)
		assert.True(t, f.store.IsAuthenticated())
	})

	t.Run("revoked token is cleared", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.tokens.Save(context.Background(), "revoked"))

		_, err := f.store.Restore(context.Background())
		require.ErrorIs(t, err, domain.ErrSessionExpired)
		assert.Empty(t, f.storedToken(t))
		assert.False(t, f.store.IsAuthenticated())
	})
}

func TestCurrentUser_ReturnsCopy(t *testing.T) {
	f := newFixture(t)
	_, err := f.store.Login(context.Background(), "agent@acme.test", "secret")
	require.NoError(t, err)

	u := f.store.CurrentUser()
	u.Role = domain.RoleOwner
	assert.Equal(t, domain.RoleSalesAgent, f.store.CurrentUser().Role)
}
