package authflowrepo

import (
	"sync"
	"time"

	"github.com/jrsteele09/go-patient-portal/internal/errors"
)

// InMemoryRepo is a thread-safe in-memory implementation of the Repo interface
type InMemoryRepo struct {
	mu     sync.Mutex
	states map[string]AuthFlowState
}

var _ Repo = (*InMemoryRepo)(nil)

// NewInMemoryRepo creates a new in-memory auth flow state repository
func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{
		states: make(map[string]AuthFlowState),
	}
}

// Upsert stores or updates an auth flow state
func (r *InMemoryRepo) Upsert(state string, authState *AuthFlowState) error {
	if state == "" {
		return errors.Wrapf(errors.ErrInvalidRequest, "state cannot be empty")
	}
	if authState == nil {
		return errors.Wrapf(errors.ErrInvalidRequest, "authState cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.states[state] = *authState
	return nil
}

// Take retrieves and deletes an auth flow state by state parameter
func (r *InMemoryRepo) Take(state string) (*AuthFlowState, error) {
	if state == "" {
		return nil, errors.ErrInvalidState
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	authState, exists := r.states[state]
	if !exists {
		return nil, errors.ErrInvalidState
	}
	delete(r.states, state)

	return &authState, nil
}

// Purge drops flows started before olderThan, e.g. abandoned logins.
func (r *InMemoryRepo) Purge(olderThan time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	purged := 0
	for state, authState := range r.states {
		if authState.CreatedAt.Before(olderThan) {
			delete(r.states, state)
			purged++
		}
	}
	return purged
}
