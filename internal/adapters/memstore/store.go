// Package memstore is an in-process tab-scoped session store for single
// instance deployments and tests.
package memstore

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/target/eventdesk/internal/ports"
)

// DefaultTTL bounds how long an idle scope is retained, as in the Redis store.
const DefaultTTL = 2*time.Hour + 15*time.Minute

type scope struct {
	fields  map[string]string
	expires time.Time
}

// Store holds one map of fields per scope. Every Set refreshes the scope's
// TTL and drops scopes whose TTL has passed.
type Store struct {
	mu     sync.RWMutex
	scopes map[string]*scope
	ttl    time.Duration
	clock  ports.TimeProvider
}

var _ ports.SessionStore = (*Store)(nil)

// New returns an empty Store with DefaultTTL and the system clock.
func New() *Store {
	return NewWithOptions(DefaultTTL, nil)
}

// NewWithOptions returns an empty Store. A non-positive ttl means DefaultTTL
// and a nil clock means the system clock.
func NewWithOptions(ttl time.Duration, clock ports.TimeProvider) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if clock == nil {
		clock = ports.RealTimeProvider{}
	}
	return &Store{scopes: map[string]*scope{}, ttl: ttl, clock: clock}
}

// Get returns the requested keys present in scope.
func (s *Store) Get(_ context.Context, name string, keys ...string) (map[string]string, error) {
	now := s.clock.Now()
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(keys))
	sc := s.scopes[name]
	if sc == nil || !now.Before(sc.expires) {
		return out, nil
	}
	for _, k := range keys {
		if v, ok := sc.fields[k]; ok {
			out[k] = v
		}
	}
	return out, nil
}

// Set writes fields under a single lock.
func (s *Store) Set(_ context.Context, name string, fields map[string]string) error {
	if name == "" {
		return errors.New("tab scope cannot be empty")
	}
	now := s.clock.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweep(now)
	sc := s.scopes[name]
	if sc == nil {
		sc = &scope{fields: make(map[string]string, len(fields))}
		s.scopes[name] = sc
	}
	for k, v := range fields {
		sc.fields[k] = v
	}
	sc.expires = now.Add(s.ttl)
	return nil
}

// Remove deletes keys from scope and drops the scope once it is empty.
func (s *Store) Remove(_ context.Context, name string, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sc := s.scopes[name]
	if sc == nil {
		return nil
	}
	for _, k := range keys {
		delete(sc.fields, k)
	}
	if len(sc.fields) == 0 {
		delete(s.scopes, name)
	}
	return nil
}

// Scopes returns the number of retained scopes.
func (s *Store) Scopes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.scopes)
}

// sweep must be called with mu held.
func (s *Store) sweep(now time.Time) {
	for name, sc := range s.scopes {
		if !now.Before(sc.expires) {
			delete(s.scopes, name)
		}
	}
}
