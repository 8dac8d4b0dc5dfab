package resolver

import (
	"sync"
)

// EndpointResolver picks the base URL an outbound call should use.
type EndpointResolver interface {
	BaseURL() string
	ReportFailure(baseURL string)
}

// FailoverResolver walks an ordered endpoint list and sticks to the first one
// that has not failed since the last rotation.
type FailoverResolver struct {
	mu        sync.RWMutex
	endpoints []string
	current   int
}

func NewFailoverResolver(endpoints []string) *FailoverResolver {
	return &FailoverResolver{endpoints: endpoints}
}

func (r *FailoverResolver) BaseURL() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.endpoints) == 0 {
		return ""
	}
	return r.endpoints[r.current]
}

// ReportFailure advances to the next endpoint, but only if baseURL is still the
// active one, so concurrent failures against the same endpoint rotate once.
func (r *FailoverResolver) ReportFailure(baseURL string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.endpoints) < 2 || r.endpoints[r.current] != baseURL {
		return
	}
	r.current = (r.current + 1) % len(r.endpoints)
}

func (r *FailoverResolver) Endpoints() []string {
	return r.endpoints
}
