// Package focus holds the investigator-chosen target tokens (paths,
// hostnames, keywords) that the classifier and clustering engine correlate
// findings against.
package focus

import (
	"strings"
	"sync"
)

// Registry is an ordered, case-insensitively deduplicated token set.
// Safe for concurrent use.
type Registry struct {
	mu      sync.Mutex
	targets []string
}

// NewRegistry returns an empty focus registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// SetFocusTarget adds a token. Idempotent: a token already present (any
// case) is not inserted again. Blank tokens are ignored.
func (r *Registry) SetFocusTarget(token string) {
	token = strings.TrimSpace(token)
	if token == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.targets {
		if strings.EqualFold(t, token) {
			return
		}
	}
	r.targets = append(r.targets, token)
}

// GetFocusTargets returns a copy of the targets in insertion order.
func (r *Registry) GetFocusTargets() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.targets...)
}

// Remove deletes a token (case-insensitive). Returns true if it was present.
func (r *Registry) Remove(token string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, t := range r.targets {
		if strings.EqualFold(t, token) {
			r.targets = append(r.targets[:i], r.targets[i+1:]...)
			return true
		}
	}
	return false
}

// Matches reports whether s contains any focus target as a case-insensitive
// substring, returning the first matching target.
func (r *Registry) Matches(s string) (string, bool) {
	lower := strings.ToLower(s)
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.targets {
		if strings.Contains(lower, strings.ToLower(t)) {
			return t, true
		}
	}
	return "", false
}

// Len returns the number of registered targets.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.targets)
}
