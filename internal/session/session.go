package session

import (
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"

	"github.com/roamline/travelcompanion-back/internal/service"
)

// ErrMissingState means a handler required session data that was never set
// for this client. Distinct from domain not-found errors: it is a contract
// violation in the request flow, not a failed lookup.
var ErrMissingState = errors.New("required session state is not set")

var (
	Module = fx.Provide(
		NewManager,
	)
)

type (
	// State is the typed per-client session: the authenticated user and the
	// transient trip-edit context written by the edit screen and consumed by
	// the edit submit. Within one session concurrent writes are
	// last-write-wins.
	State struct {
		mu              sync.RWMutex
		userID          *uint64
		editingTripID   *uint64
		candidateCities []service.CandidateCity
	}

	// Manager keeps session states in memory, keyed by the id carried in the
	// client's cookie. Nothing here survives a restart.
	Manager struct {
		mu     sync.RWMutex
		states map[string]*State
	}
)

func NewManager() *Manager {
	return &Manager{
		states: make(map[string]*State),
	}
}

func (m *Manager) Lookup(id string) (*State, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	state, ok := m.states[id]
	return state, ok
}

func (m *Manager) Create() (string, *State) {
	id := uuid.New().String()
	state := &State{}
	m.mu.Lock()
	m.states[id] = state
	m.mu.Unlock()
	return id, state
}

func (s *State) SetUserID(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userID = &id
}

// UserID fails with ErrMissingState when no user has logged in on this
// session.
func (s *State) UserID() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.userID == nil {
		return 0, ErrMissingState
	}
	return *s.userID, nil
}

// OptionalUserID is for flows that treat an absent login as "no rows" rather
// than an error.
func (s *State) OptionalUserID() (uint64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.userID == nil {
		return 0, false
	}
	return *s.userID, true
}

// SetEditContext stores the trip being edited together with the
// candidate-city snapshot computed at open-edit time.
func (s *State) SetEditContext(tripID uint64, candidates []service.CandidateCity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editingTripID = &tripID
	s.candidateCities = candidates
}

func (s *State) EditingTripID() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.editingTripID == nil {
		return 0, ErrMissingState
	}
	return *s.editingTripID, nil
}

func (s *State) CandidateCities() ([]service.CandidateCity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.candidateCities == nil {
		return nil, ErrMissingState
	}
	return s.candidateCities, nil
}
