// Package testutil provides an in-process fake of the CRM backend for tests.
package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/straye-as/crm-console/internal/domain"
)

// Collections served with plain list/create/update/delete routes
var Collections = []string{
	"customers",
	"leads",
	"tickets",
	"deals",
	"tasks",
	"appointments",
	"products",
	"interactions",
	"users",
	"notifications",
}

const (
	auditCollection    = "audit"
	businessCollection = "businesses"
)

// Account is a user the fake backend can authenticate.
// Me.Role holds the backend role name, e.g. "SALES_AGENT".
type Account struct {
	Email    string
	Password string
	Token    string
	Me       domain.MeResponse
	// SoftFail makes login answer 200 with success=false
	SoftFail bool
}

type accountKey struct{}

// Backend is a chi router over in-memory collections, served by httptest
type Backend struct {
	Server *httptest.Server

	mu          sync.Mutex
	accounts    []*Account
	collections map[string][]map[string]any
	nextID      int
	requests    []string
	failures    map[string]int
	hooks       map[string]func()
	stats       domain.PlatformStats
}

// NewBackend starts a fake backend that is shut down when the test ends
func NewBackend(t testing.TB) *Backend {
	t.Helper()

	b := &Backend{
		collections: make(map[string][]map[string]any),
		failures:    make(map[string]int),
		hooks:       make(map[string]func()),
		nextID:      1,
	}
	b.Server = httptest.NewServer(b.routes())
	t.Cleanup(b.Server.Close)
	return b
}

// URL returns the base URL of the fake backend
func (b *Backend) URL() string {
	return b.Server.URL
}

func (b *Backend) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(b.record)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", b.login)
		r.Post("/auth/register/customer", b.registerCustomer)

		r.Group(func(r chi.Router) {
			r.Use(b.authenticate)

			r.Get("/auth/me", b.me)

			for _, name := range Collections {
				name := name
				r.Get("/"+name, b.list(name))
				r.Post("/"+name, b.create(name))
				r.Put("/"+name+"/{id}", b.update(name))
				r.Delete("/"+name+"/{id}", b.remove(name))
			}

			r.Post("/leads/{id}/convert", b.convertLead)
			r.Get("/audit/business/{tenantId}", b.auditLog)
			r.Post("/business/{id}/staff", b.createStaff)
			r.Post("/owner/create-business", b.createBusiness)

			r.Route("/admin", func(r chi.Router) {
				r.Use(requireRole("SUPER_ADMIN"))
				r.Get("/businesses", b.list(businessCollection))
				r.Patch("/businesses/{id}/status", b.setBusinessStatus)
				r.Post("/owners", b.createOwner)
				r.Get("/stats", b.platformStats)
			})
		})
	})

	return r
}

// ============================================================================
// Test controls
// ============================================================================

// AddAccount registers an account that can log in
func (b *Backend) AddAccount(a Account) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if a.Token == "" {
		a.Token = "token-" + a.Email
	}
	b.accounts = append(b.accounts, &a)
}

// Seed appends records to a collection. Records without an id get one.
// Use "audit" for audit log entries and "businesses" for tenants.
func (b *Backend) Seed(collection string, records ...any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, rec := range records {
		m := toMap(rec)
		if id, ok := m["id"]; !ok || id == "" || id == nil {
			m["id"] = b.newID()
		}
		b.collections[collection] = append(b.collections[collection], m)
	}
}

// Records returns the raw records of a collection
func (b *Backend) Records(collection string) []map[string]any {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]map[string]any, len(b.collections[collection]))
	copy(out, b.collections[collection])
	return out
}

// Fail makes every matching request answer with status until Recover is called
func (b *Backend) Fail(method, path string, status int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[method+" "+path] = status
}

// Recover removes a failure installed with Fail
func (b *Backend) Recover(method, path string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.failures, method+" "+path)
}

// OnRequest runs fn before a matching request is handled
func (b *Backend) OnRequest(method, path string, fn func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.hooks[method+" "+path] = fn
}

// SetStats sets the platform statistics payload
func (b *Backend) SetStats(stats domain.PlatformStats) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stats = stats
}

// Requests returns every request seen as "METHOD /path"
func (b *Backend) Requests() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.requests))
	copy(out, b.requests)
	return out
}

// Count returns how many times method and path were requested
func (b *Backend) Count(method, path string) int {
	n := 0
	for _, r := range b.Requests() {
		if r == method+" "+path {
			n++
		}
	}
	return n
}

// ============================================================================
// Middleware
// ============================================================================

func (b *Backend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path

		b.mu.Lock()
		b.requests = append(b.requests, key)
		status, failing := b.failures[key]
		hook := b.hooks[key]
		b.mu.Unlock()

		if hook != nil {
			hook()
		}
		if failing {
			respondWithError(w, status, fmt.Sprintf("injected failure for %s", key))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		acc := b.accountByToken(token)
		if token == "" || acc == nil {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), accountKey{}, acc)))
	})
}

func requireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			acc, _ := r.Context().Value(accountKey{}).(*Account)
			if acc == nil || !strings.EqualFold(acc.Me.Role, role) {
				respondWithError(w, http.StatusForbidden, "Access denied")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ============================================================================
// Handlers
// ============================================================================

func (b *Backend) login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	b.mu.Lock()
	var acc *Account
	for _, a := range b.accounts {
		if strings.EqualFold(a.Email, req.Email) && a.Password == req.Password {
			acc = a
		}
	}
	b.mu.Unlock()

	if acc == nil {
		respondWithError(w, http.StatusUnauthorized, "Login failed: Bad credentials")
		return
	}
	if acc.SoftFail {
		respondJSON(w, http.StatusOK, map[string]any{"success": false, "message": "Account is disabled"})
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"token": acc.Token, "success": true})
}

func (b *Backend) registerCustomer(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, a := range b.accounts {
		if strings.EqualFold(a.Email, req.Email) {
			respondWithError(w, http.StatusBadRequest, "Registration failed: Email already in use")
			return
		}
	}
	b.accounts = append(b.accounts, &Account{
		Email:    req.Email,
		Password: req.Password,
		Token:    "token-" + req.Email,
		Me: domain.MeResponse{
			ID:       domain.ID(strconv.Itoa(b.newID())),
			Email:    req.Email,
			FullName: req.FullName,
			Role:     "CUSTOMER",
		},
	})
	respondJSON(w, http.StatusCreated, map[string]any{"success": true, "message": "Registration successful"})
}

func (b *Backend) me(w http.ResponseWriter, r *http.Request) {
	acc := r.Context().Value(accountKey{}).(*Account)
	respondJSON(w, http.StatusOK, acc.Me)
}

func (b *Backend) list(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, b.Records(name))
	}
}

func (b *Backend) create(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var rec map[string]any
		if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		b.mu.Lock()
		rec["id"] = b.newID()
		b.collections[name] = append(b.collections[name], rec)
		b.mu.Unlock()

		respondJSON(w, http.StatusCreated, rec)
	}
}

func (b *Backend) update(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var patch map[string]any
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		b.mu.Lock()
		defer b.mu.Unlock()
		rec := b.find(name, chi.URLParam(r, "id"))
		if rec == nil {
			respondWithError(w, http.StatusNotFound, "Record not found")
			return
		}
		for k, v := range patch {
			if k != "id" {
				rec[k] = v
			}
		}
		respondJSON(w, http.StatusOK, rec)
	}
}

func (b *Backend) remove(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		b.mu.Lock()
		defer b.mu.Unlock()
		records := b.collections[name]
		for i, rec := range records {
			if fmt.Sprint(rec["id"]) == id {
				b.collections[name] = append(records[:i:i], records[i+1:]...)
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}
		respondWithError(w, http.StatusNotFound, "Record not found")
	}
}

func (b *Backend) convertLead(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	lead := b.find("leads", chi.URLParam(r, "id"))
	if lead == nil {
		respondWithError(w, http.StatusNotFound, "Lead not found")
		return
	}
	if lead["status"] == string(domain.LeadStatusWon) {
		respondWithError(w, http.StatusConflict, "Lead already converted")
		return
	}
	lead["status"] = string(domain.LeadStatusWon)

	customer := map[string]any{
		"id":       b.newID(),
		"name":     lead["title"],
		"tenantId": lead["tenantId"],
		"status":   string(domain.CustomerStatusActive),
	}
	b.collections["customers"] = append(b.collections["customers"], customer)
	respondJSON(w, http.StatusOK, customer)
}

func (b *Backend) auditLog(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantId")
	out := []map[string]any{}
	for _, rec := range b.Records(auditCollection) {
		if fmt.Sprint(rec["tenantId"]) == tenantID {
			out = append(out, rec)
		}
	}
	respondJSON(w, http.StatusOK, out)
}

func (b *Backend) createStaff(w http.ResponseWriter, r *http.Request) {
	acc := r.Context().Value(accountKey{}).(*Account)
	businessID := chi.URLParam(r, "id")
	if !strings.EqualFold(acc.Me.Role, "BUSINESS_ADMIN") && !strings.EqualFold(acc.Me.Role, "OWNER") {
		respondWithError(w, http.StatusForbidden, "Only owners can create staff")
		return
	}

	var req domain.CreateStaffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	b.mu.Lock()
	id := b.newID()
	b.collections["users"] = append(b.collections["users"], map[string]any{
		"id":       id,
		"name":     req.Name,
		"email":    req.Email,
		"role":     strings.ToUpper(req.Role),
		"status":   strings.ToUpper(string(domain.UserStatusActive)),
		"tenantId": businessID,
	})
	b.mu.Unlock()

	respondJSON(w, http.StatusCreated, map[string]any{"success": true, "userId": id, "businessId": businessID})
}

func (b *Backend) createBusiness(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateBusinessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	b.mu.Lock()
	id := b.newID()
	b.collections[businessCollection] = append(b.collections[businessCollection], map[string]any{
		"id":     id,
		"name":   req.Name,
		"plan":   string(domain.PlanFree),
		"status": string(domain.TenantStatusActive),
	})
	b.mu.Unlock()

	respondJSON(w, http.StatusCreated, map[string]any{"success": true, "businessId": id})
}

func (b *Backend) createOwner(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateOwnerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, a := range b.accounts {
		if strings.EqualFold(a.Email, req.Email) {
			respondWithError(w, http.StatusConflict, "Email already in use")
			return
		}
	}

	businessID := b.newID()
	name := req.BusinessName
	if name == "" {
		name = req.Name + "'s business"
	}
	b.collections[businessCollection] = append(b.collections[businessCollection], map[string]any{
		"id":     businessID,
		"name":   name,
		"plan":   string(domain.PlanFree),
		"status": string(domain.TenantStatusActive),
	})

	userID := b.newID()
	b.accounts = append(b.accounts, &Account{
		Email:    req.Email,
		Password: req.Password,
		Token:    "token-" + req.Email,
		Me: domain.MeResponse{
			ID:         domain.ID(strconv.Itoa(userID)),
			Email:      req.Email,
			FullName:   req.Name,
			Role:       "BUSINESS_ADMIN",
			BusinessID: domain.ID(strconv.Itoa(businessID)),
		},
	})

	respondJSON(w, http.StatusCreated, map[string]any{"success": true, "userId": userID, "businessId": businessID})
}

func (b *Backend) setBusinessStatus(w http.ResponseWriter, r *http.Request) {
	active, err := strconv.ParseBool(r.URL.Query().Get("active"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "active must be true or false")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	rec := b.find(businessCollection, chi.URLParam(r, "id"))
	if rec == nil {
		respondWithError(w, http.StatusNotFound, "Business not found")
		return
	}
	if active {
		rec["status"] = string(domain.TenantStatusActive)
	} else {
		rec["status"] = string(domain.TenantStatusSuspended)
	}
	respondJSON(w, http.StatusOK, rec)
}

func (b *Backend) platformStats(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	stats := b.stats
	b.mu.Unlock()
	respondJSON(w, http.StatusOK, stats)
}

// ============================================================================
// Helpers
// ============================================================================

func (b *Backend) accountByToken(token string) *Account {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, a := range b.accounts {
		if a.Token == token {
			return a
		}
	}
	return nil
}

// find must be called with b.mu held
func (b *Backend) find(collection, id string) map[string]any {
	for _, rec := range b.collections[collection] {
		if fmt.Sprint(rec["id"]) == id {
			return rec
		}
	}
	return nil
}

// newID must be called with b.mu held
func (b *Backend) newID() int {
	id := b.nextID
	b.nextID++
	return id
}

func toMap(v any) map[string]any {
	if m, ok := v.(map[string]any); ok {
		return m
	}
	data, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("testutil: cannot encode seed record: %v", err))
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		panic(fmt.Sprintf("testutil: seed record is not an object: %v", err))
	}
	return m
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

func respondWithError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]any{
		"success": false,
		"error":   http.StatusText(status),
		"message": message,
	})
}
