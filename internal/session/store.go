// Package session holds the authenticated identity of the console.
//
// A Store owns the bearer token (through a storage.TokenStore) and the
// current user. The user is present only while a validated token is stored.
// Every sign-in and sign-out bumps an epoch counter so that callers can
// discard responses to requests issued under an earlier session.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/straye-as/crm-console/internal/access"
	"github.com/straye-as/crm-console/internal/domain"
	"github.com/straye-as/crm-console/internal/httpclient"
	"github.com/straye-as/crm-console/internal/logger"
	"github.com/straye-as/crm-console/internal/storage"
	"go.uber.org/zap"
)

const (
	loginPath    = "/api/auth/login"
	mePath       = "/api/auth/me"
	registerPath = "/api/auth/register/customer"
)

// Store is the session store. Create it with New and release it with Close.
type Store struct {
	client *httpclient.Client
	tokens storage.TokenStore
	logger *zap.Logger

	mu           sync.RWMutex
	user         *domain.User
	epoch        uint64
	unknownRoles int

	unsubscribe func()
}

// New creates a session store and subscribes it to session expiry
func New(client *httpclient.Client, tokens storage.TokenStore, log *zap.Logger) *Store {
	s := &Store{
		client: client,
		tokens: tokens,
		logger: log,
	}
	s.unsubscribe = client.OnSessionExpired(s.Expire)
	return s
}

// Close stops listening for session expiry. The stored token is kept.
func (s *Store) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
}

// Login authenticates and loads the user's profile. The token is persisted
// only after the profile was fetched, so a failed login leaves no partial
// session behind.
func (s *Store) Login(ctx context.Context, email, password string) (*domain.User, error) {
	req := domain.LoginRequest{Email: email, Password: password}
	if err := domain.Validate(req); err != nil {
		return nil, err
	}

	var resp domain.LoginResponse
	err := s.client.Do(ctx, httpclient.Request{
		Method: http.MethodPost,
		Path:   loginPath,
		Body:   req,
	}, &resp)
	if err != nil {
		s.logger.Info("Login rejected", zap.String("email", email), zap.Error(err))
		return nil, err
	}
	if resp.Success != nil && !*resp.Success {
		msg := resp.Message
		if msg == "" {
			msg = "login failed"
		}
		s.logger.Info("Login rejected", zap.String("email", email), zap.String("reason", msg))
		return nil, errors.New(msg)
	}
	if resp.Token == "" {
		return nil, errors.New("login response did not include a token")
	}

	user, err := s.fetchUser(ctx, resp.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	if err := s.tokens.Save(ctx, resp.Token); err != nil {
		return nil, fmt.Errorf("failed to store token: %w", err)
	}

	s.mu.Lock()
	s.user = user
	s.epoch++
	s.mu.Unlock()

	logger.WithUser(s.logger, user.ID.String(), user.Name).Info("User logged in",
		zap.String("role", string(user.Role)),
		zap.String("tenant_id", user.TenantID.String()),
	)

	return cloneUser(user), nil
}

// Register creates a customer account. It does not sign the customer in.
func (s *Store) Register(ctx context.Context, req domain.RegisterCustomerRequest) error {
	if err := domain.Validate(req); err != nil {
		return err
	}

	var resp domain.StatusResponse
	err := s.client.Do(ctx, httpclient.Request{
		Method: http.MethodPost,
		Path:   registerPath,
		Body:   req,
	}, &resp)
	if err != nil {
		return err
	}
	if resp.Failed() {
		if resp.Message != "" {
			return errors.New(resp.Message)
		}
		return errors.New("registration failed")
	}

	s.logger.Info("Customer registered", zap.String("email", req.Email))
	return nil
}

// Restore rebuilds the session from a token persisted by an earlier run.
// It returns domain.ErrNotAuthenticated when no token is stored. A token the
// backend no longer accepts is cleared.
func (s *Store) Restore(ctx context.Context) (*domain.User, error) {
	token, err := s.tokens.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load token: %w", err)
	}
	if token == "" {
		return nil, domain.ErrNotAuthenticated
	}

	user, err := s.fetchUser(ctx, "")
	if err != nil {
		if clearErr := s.tokens.Clear(ctx); clearErr != nil {
			s.logger.Warn("Failed to clear token", zap.Error(clearErr))
		}
		return nil, fmt.Errorf("failed to restore session: %w", err)
	}

	s.mu.Lock()
	s.user = user
	s.epoch++
	s.mu.Unlock()

	s.logger.Info("Session restored", zap.String("user_id", user.ID.String()))
	return cloneUser(user), nil
}

// Logout clears the token and the current user. Calling it without a
// session is a no-op.
func (s *Store) Logout(ctx context.Context) {
	if err := s.tokens.Clear(ctx); err != nil {
		s.logger.Warn("Failed to clear token", zap.Error(err))
	}
	if s.reset() {
		s.logger.Info("User logged out")
	}
}

// Expire drops the current user after the backend rejected the token.
// The HTTP client has already cleared the token when this runs.
func (s *Store) Expire(ctx context.Context) {
	if s.reset() {
		s.logger.Info("Session expired")
	}
}

// CurrentUser returns a copy of the signed-in user, or nil
func (s *Store) CurrentUser() *domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneUser(s.user)
}

// IsAuthenticated reports whether a user is signed in
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

// Epoch returns the session generation, bumped on every sign-in and sign-out
func (s *Store) Epoch() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.epoch
}

// UnknownRoleCount returns how many sign-ins fell back to access.DefaultRole
func (s *Store) UnknownRoleCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.unknownRoles
}

func (s *Store) reset() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	wasSignedIn := s.user != nil
	s.user = nil
	s.epoch++
	return wasSignedIn
}

// fetchUser loads the profile. An empty bearer uses the stored token.
func (s *Store) fetchUser(ctx context.Context, bearer string) (*domain.User, error) {
	var me domain.MeResponse
	err := s.client.Do(ctx, httpclient.Request{
		Method:      http.MethodGet,
		Path:        mePath,
		Auth:        true,
		BearerToken: bearer,
	}, &me)
	if err != nil {
		return nil, err
	}

	role, known := access.ParseRole(me.Role)
	if !known {
		s.mu.Lock()
		s.unknownRoles++
		s.mu.Unlock()
		s.logger.Warn("Unrecognized backend role, using default",
			zap.String("backend_role", me.Role),
			zap.String("role", string(role)),
			zap.String("user_id", me.ID.String()),
		)
	}

	user := &domain.User{
		ID:       me.ID,
		Name:     displayName(me),
		Email:    me.Email,
		Role:     role,
		Status:   domain.UserStatusActive,
		TenantID: me.BusinessID,
	}
	if role == domain.RoleSuperAdmin {
		user.TenantID = ""
	}
	return user, nil
}

func displayName(me domain.MeResponse) string {
	switch {
	case me.FullName != "":
		return me.FullName
	case me.Name != "":
		return me.Name
	default:
		return me.Email
	}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
