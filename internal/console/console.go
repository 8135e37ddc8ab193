// Package console is the composition root of the CRM client. A Console
// wires the token store, HTTP client, session store and repository together
// and tracks which view the signed-in user is looking at.
package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/straye-as/crm-console/internal/access"
	"github.com/straye-as/crm-console/internal/analytics"
	"github.com/straye-as/crm-console/internal/config"
	"github.com/straye-as/crm-console/internal/domain"
	"github.com/straye-as/crm-console/internal/httpclient"
	"github.com/straye-as/crm-console/internal/logger"
	"github.com/straye-as/crm-console/internal/repository"
	"github.com/straye-as/crm-console/internal/session"
	"github.com/straye-as/crm-console/internal/storage"
	"go.uber.org/zap"
)

// Deps are the external dependencies of a Console. Tokens and Navigator
// are optional; they default to the configured token store and an
// in-memory navigator.
type Deps struct {
	Config        *config.Config
	Tokens        storage.TokenStore
	Navigator     httpclient.Navigator
	Logger        *zap.Logger
	ClientOptions []httpclient.Option
}

// Console is the top-level client object. Create it with New and release
// it with Close.
type Console struct {
	client  *httpclient.Client
	session *session.Store
	repo    *repository.Repository
	tokens  storage.TokenStore
	logger  *zap.Logger

	// closer is set when New opened the token store itself
	closer io.Closer

	mu   sync.RWMutex
	view access.View

	unsubscribe func()
}

// New builds the object graph. Nothing is fetched until Login or Restore.
func New(deps Deps) (*Console, error) {
	if deps.Config == nil {
		return nil, errors.New("config is required")
	}
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	c := &Console{
		logger: logger.WithComponent(log, logger.ComponentConsole),
		view:   access.DefaultView,
	}

	tokens := deps.Tokens
	if tokens == nil {
		opened, err := storage.NewTokenStore(&deps.Config.Session, log)
		if err != nil {
			return nil, fmt.Errorf("failed to open token store: %w", err)
		}
		tokens = opened
		if closer, ok := opened.(io.Closer); ok {
			c.closer = closer
		}
	}
	navigator := deps.Navigator
	if navigator == nil {
		navigator = httpclient.NewMemoryNavigator("/")
	}

	c.tokens = tokens
	c.client = httpclient.New(&deps.Config.API, tokens, navigator,
		logger.WithComponent(log, logger.ComponentHTTP), deps.ClientOptions...)
	// The session subscribes first, so it is already signed out when
	// onSessionExpired runs.
	c.session = session.New(c.client, tokens, logger.WithComponent(log, logger.ComponentSession))
	c.repo = repository.New(c.client, c.session, logger.WithComponent(log, logger.ComponentRepository))
	c.unsubscribe = c.client.OnSessionExpired(c.onSessionExpired)

	return c, nil
}

// Close stops listening for session expiry, empties the caches and closes
// a token store opened by New. The stored token survives so a later run can
// Restore it.
func (c *Console) Close() error {
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
	c.session.Close()
	c.repo.Clear()

	if c.closer != nil {
		err := c.closer.Close()
		c.closer = nil
		return err
	}
	return nil
}

// Login signs in, lands on the role's initial view and loads the data that
// view needs. A failed data load is logged; the login still succeeds.
func (c *Console) Login(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := c.session.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	c.enter(ctx, user)
	return user, nil
}

// Restore resumes the session held by the token store, if any
func (c *Console) Restore(ctx context.Context) (*domain.User, error) {
	user, err := c.session.Restore(ctx)
	if err != nil {
		return nil, err
	}
	c.enter(ctx, user)
	return user, nil
}

// enter lands on the role's initial view unless the session ended after
// sign-in returned, in which case the view stays at its reset value
func (c *Console) enter(ctx context.Context, user *domain.User) {
	c.mu.Lock()
	current := c.session.CurrentUser()
	active := current != nil && current.ID == user.ID
	if active {
		c.view = access.InitialView(user.Role)
	}
	c.mu.Unlock()

	if !active {
		c.logger.Info("Session ended before the console was entered",
			zap.String("user_id", user.ID.String()),
		)
		return
	}
	if err := c.Refresh(ctx); err != nil {
		c.logger.Warn("Initial data load incomplete",
			zap.String("user_id", user.ID.String()),
			zap.Error(err),
		)
	}
}

// Register creates a customer account. It does not sign in.
func (c *Console) Register(ctx context.Context, req domain.RegisterCustomerRequest) error {
	return c.session.Register(ctx, req)
}

// Logout ends the session, empties the caches and resets the view
func (c *Console) Logout(ctx context.Context) {
	c.session.Logout(ctx)
	c.repo.Clear()
	c.setView(access.DefaultView)
}

func (c *Console) onSessionExpired(ctx context.Context) {
	c.repo.Clear()
	c.setView(access.DefaultView)
	c.logger.Info("Console reset after session expiry")
}

// Refresh reloads what the current user's dashboards read: tenants for a
// super admin, the tenant's CRM collections for staff. Customers have no
// cached data.
func (c *Console) Refresh(ctx context.Context) error {
	user := c.session.CurrentUser()
	switch {
	case user == nil:
		return domain.ErrNotAuthenticated
	case user.IsSuperAdmin():
		return c.repo.RefreshTenants(ctx)
	case access.IsTenantRole(user.Role):
		return c.repo.RefreshTenantData(ctx)
	default:
		return nil
	}
}

// SwitchView changes the current view. A view the role may not open is
// rejected with access.ErrViewNotAllowed and the current view is kept.
func (c *Console) SwitchView(view access.View) error {
	user := c.session.CurrentUser()
	if user == nil {
		return domain.ErrNotAuthenticated
	}
	if !access.CanAccess(user.Role, view) {
		logger.WithView(c.logger, string(user.Role), string(view)).Warn("View switch rejected")
		return access.ErrViewNotAllowed
	}
	c.setView(view)
	return nil
}

// CurrentView returns the view the signed-in user is looking at, or
// access.DefaultView when no one is signed in
func (c *Console) CurrentView() access.View {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.view
}

func (c *Console) setView(view access.View) {
	c.mu.Lock()
	c.view = view
	c.mu.Unlock()
}

// CurrentUser returns a copy of the signed-in user, or nil
func (c *Console) CurrentUser() *domain.User {
	return c.session.CurrentUser()
}

// Session exposes the session store
func (c *Console) Session() *session.Store {
	return c.session
}

// Repository exposes the cached collections and named operations
func (c *Console) Repository() *repository.Repository {
	return c.repo
}

// Snapshot copies the cached collections for the analytics view-models
func (c *Console) Snapshot() analytics.Snapshot {
	return analytics.Snapshot{
		Customers:    c.repo.Customers(),
		Leads:        c.repo.Leads(),
		Deals:        c.repo.Deals(),
		Tickets:      c.repo.Tickets(),
		Tasks:        c.repo.Tasks(),
		Appointments: c.repo.Appointments(),
		Interactions: c.repo.Interactions(),
		Users:        c.repo.Users(),
		Tenants:      c.repo.Tenants(),
	}
}

// Dashboard is a computed view-model together with the view it belongs to
type Dashboard struct {
	View        access.View `json:"view"`
	Role        domain.Role `json:"role"`
	GeneratedAt time.Time   `json:"generatedAt"`
	Data        any         `json:"data"`
}
