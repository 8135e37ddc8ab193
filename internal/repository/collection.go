package repository

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"sync"

	"github.com/straye-as/crm-console/internal/domain"
	"github.com/straye-as/crm-console/internal/httpclient"
	"go.uber.org/zap"
)

// collection caches one backend list. Mutations are sent to the backend and
// followed by a full refresh; the cache is never patched locally.
type collection[T scoped] struct {
	name  string
	path  string
	scope Scope
	deps  *deps

	mu    sync.RWMutex
	items []T
}

func newCollection[T scoped](d *deps, name, path string, scope Scope) *collection[T] {
	return &collection[T]{
		name:  name,
		path:  path,
		scope: scope,
		deps:  d,
	}
}

// refresh replaces the cache with the backend's current list. On failure the
// cached list is kept and the error is logged and returned.
func (c *collection[T]) refresh(ctx context.Context) error {
	user := c.deps.session.CurrentUser()
	if user == nil || !c.scope.Allows(user) {
		return nil
	}
	path, ok := resolvePath(c.path, user)
	if !ok {
		return nil
	}

	epoch := c.deps.session.Epoch()
	log := c.deps.logger.With(zap.String("collection", c.name))

	var fetched []T
	err := c.deps.client.Do(ctx, httpclient.Request{
		Method: http.MethodGet,
		Path:   path,
		Auth:   true,
	}, &fetched)
	if err != nil {
		log.Warn("Failed to refresh collection, keeping cached data", zap.Error(err))
		return fmt.Errorf("failed to refresh %s: %w", c.name, err)
	}

	items, dropped := fetched, 0
	if c.scope == ScopeTenant {
		items, dropped = applyTenantFilter(fetched, user)
	}
	if dropped > 0 {
		log.Warn("Dropped records belonging to another tenant",
			zap.Int("dropped", dropped),
			zap.String("tenant_id", user.TenantID.String()),
		)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.deps.session.Epoch() != epoch {
		log.Debug("Discarding response from a previous session")
		return domain.ErrStaleSession
	}
	c.items = items

	log.Debug("Collection refreshed", zap.Int("count", len(items)))
	return nil
}

func (c *collection[T]) add(ctx context.Context, payload any) error {
	return c.mutate(ctx, http.MethodPost, c.path, payload)
}

func (c *collection[T]) update(ctx context.Context, id domain.ID, patch any) error {
	if id.IsZero() {
		return errors.New("id is required")
	}
	return c.mutate(ctx, http.MethodPut, c.itemPath(id), patch)
}

func (c *collection[T]) remove(ctx context.Context, id domain.ID) error {
	if id.IsZero() {
		return errors.New("id is required")
	}
	return c.mutate(ctx, http.MethodDelete, c.itemPath(id), nil)
}

// mutate sends the change, then refreshes. The refresh starts only after the
// mutation has completed.
func (c *collection[T]) mutate(ctx context.Context, method, path string, body any) error {
	if c.deps.session.CurrentUser() == nil {
		return domain.ErrNotAuthenticated
	}

	err := c.deps.client.Do(ctx, httpclient.Request{
		Method: method,
		Path:   path,
		Body:   body,
		Auth:   true,
	}, nil)
	if err != nil {
		return err
	}

	// Refresh failures are already logged; the mutation itself succeeded
	_ = c.refresh(ctx)
	return nil
}

func (c *collection[T]) itemPath(id domain.ID) string {
	return c.path + "/" + url.PathEscape(id.String())
}

// snapshot returns a copy of the cached list
func (c *collection[T]) snapshot() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.items == nil {
		return []T{}
	}
	return slices.Clone(c.items)
}

func (c *collection[T]) find(match func(T) bool) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, item := range c.items {
		if match(item) {
			return item, true
		}
	}
	var zero T
	return zero, false
}

func (c *collection[T]) count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (c *collection[T]) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
}
