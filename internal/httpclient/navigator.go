package httpclient

import (
	"strings"
	"sync"
)

// Navigator is the client-side location the console redirects when the
// session expires. A UI shell implements it over its router.
type Navigator interface {
	Location() string
	Redirect(path string)
}

// MemoryNavigator is a Navigator that only records the current location.
// The CLI and tests use it.
type MemoryNavigator struct {
	mu        sync.RWMutex
	location  string
	redirects int
}

// NewMemoryNavigator creates a navigator positioned at location
func NewMemoryNavigator(location string) *MemoryNavigator {
	return &MemoryNavigator{location: location}
}

// Location returns the current path
func (n *MemoryNavigator) Location() string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.location
}

// Redirect moves to path
func (n *MemoryNavigator) Redirect(path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.location = path
	n.redirects++
}

// Redirects returns how many times Redirect was called
func (n *MemoryNavigator) Redirects() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.redirects
}

// atLogin reports whether location already is the login entry point
func atLogin(location, loginPath string) bool {
	return loginPath != "" && strings.Contains(location, loginPath)
}
