package application

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/felixgeelhaar/chamai/pkg/domain"
	"github.com/felixgeelhaar/chamai/pkg/domain/response"
)

// ChangeKind names what a store mutation did.
type ChangeKind string

const (
	ChangeLoad     ChangeKind = "load"
	ChangeResponse ChangeKind = "response"
	ChangeRole     ChangeKind = "role"
	ChangeCommit   ChangeKind = "commit"
	ChangeReset    ChangeKind = "reset"
)

// ChangeEvent is delivered to subscribers after every mutation.
// Rebuild is set when the set of offered choices may have changed and views must be rebuilt,
// not just refreshed.
type ChangeEvent struct {
	Kind     ChangeKind
	ItemCode string
	Role     response.Role
	Sections []string
	Rebuild  bool
}

// Listener receives change events. It runs on the goroutine that made the change.
type Listener func(ChangeEvent)

// ResponseStore owns the response state and keeps it in sync with durable storage.
// Storage failures never escape: the in-memory state stays authoritative for the session.
type ResponseStore struct {
	mu        sync.Mutex
	storage   domain.KeyValueStorage
	key       string
	logger    *zap.Logger
	state     *response.State
	roles     *response.RoleMachine
	listeners map[int]Listener
	nextID    int
}

// NewResponseStore creates a store with the default empty state. Call Load to read persisted data.
func NewResponseStore(storage domain.KeyValueStorage, key string, logger *zap.Logger) (*ResponseStore, error) {
	if storage == nil {
		return nil, fmt.Errorf("response store requires storage")
	}
	if key == "" {
		return nil, fmt.Errorf("response store requires a storage key")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	roles, err := response.NewRoleMachine(response.DefaultRole)
	if err != nil {
		return nil, err
	}
	return &ResponseStore{
		storage:   storage,
		key:       key,
		logger:    logger,
		state:     response.NewState(),
		roles:     roles,
		listeners: make(map[int]Listener),
	}, nil
}

// Load reads the persisted state, falling back to the default state on absence or parse failure,
// migrates legacy entries, then resets the role to reviewer and persists.
func (s *ResponseStore) Load() {
	s.mu.Lock()
	s.state = s.read()
	s.migrateLocked()
	// Every session starts as reviewer, whatever was persisted.
	s.state.Role = s.roles.Select(string(response.DefaultRole))
	s.saveLocked()
	s.mu.Unlock()

	s.notify(ChangeEvent{Kind: ChangeLoad, Role: response.DefaultRole, Rebuild: true})
}

// Refresh re-reads the persisted state without writing it back or touching the role.
// It is used to follow changes made by another process.
func (s *ResponseStore) Refresh() {
	s.mu.Lock()
	state := s.read()
	response.MigrateLegacy(state)
	s.state = state
	role := s.roles.Select(string(state.CurrentRole()))
	s.mu.Unlock()

	s.notify(ChangeEvent{Kind: ChangeLoad, Role: role, Rebuild: true})
}

func (s *ResponseStore) read() *response.State {
	data, err := s.storage.Get(s.key)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Warn("State load error", zap.String("key", s.key), zap.Error(err))
		}
		return response.NewState()
	}
	state, err := response.Decode(data)
	if err != nil {
		s.logger.Warn("State load error", zap.String("key", s.key), zap.Error(err))
		return response.NewState()
	}
	return state
}

// MigrateLegacy upgrades bare-string entries and a missing role, persisting when anything changed.
// It reports whether a change was made.
func (s *ResponseStore) MigrateLegacy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.migrateLocked()
}

func (s *ResponseStore) migrateLocked() bool {
	if !response.MigrateLegacy(s.state) {
		return false
	}
	s.logger.Debug("Migrated legacy response state", zap.String("key", s.key))
	s.saveLocked()
	return true
}

// Save persists the full state. Write failures are logged and swallowed.
func (s *ResponseStore) Save() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveLocked()
}

func (s *ResponseStore) saveLocked() {
	data, err := s.state.Encode()
	if err != nil {
		s.logger.Warn("State save error", zap.String("key", s.key), zap.Error(err))
		return
	}
	if err := s.storage.Set(s.key, data); err != nil {
		s.logger.Warn("State save error", zap.String("key", s.key), zap.Error(err))
	}
}

// Clear resets to the default state and removes the persisted copy.
func (s *ResponseStore) Clear() {
	s.mu.Lock()
	s.state = response.NewState()
	s.roles.Select(string(response.DefaultRole))
	if err := s.storage.Remove(s.key); err != nil {
		s.logger.Warn("State clear error", zap.String("key", s.key), zap.Error(err))
	}
	s.mu.Unlock()

	s.notify(ChangeEvent{Kind: ChangeReset, Role: response.DefaultRole, Rebuild: true})
}

// SetResponse records choice for role on itemCode and keeps the other role's answer.
func (s *ResponseStore) SetResponse(itemCode string, role response.Role, choice response.Choice) {
	role = response.NormalizeRole(string(role))

	s.mu.Lock()
	s.state.SetResponse(itemCode, role, choice)
	s.saveLocked()
	s.mu.Unlock()

	s.notify(ChangeEvent{Kind: ChangeResponse, ItemCode: itemCode, Role: role})
}

// GetResponse returns role's answer for itemCode, or ChoiceNone.
func (s *ResponseStore) GetResponse(itemCode string, role response.Role) response.Choice {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Response(itemCode, response.NormalizeRole(string(role)))
}

// SetRole switches the active role. Anything other than "author" selects reviewer.
func (s *ResponseStore) SetRole(input string) response.Role {
	s.mu.Lock()
	role := s.roles.Select(input)
	s.state.Role = role
	s.saveLocked()
	s.mu.Unlock()

	s.notify(ChangeEvent{Kind: ChangeRole, Role: role, Rebuild: true})
	return role
}

// ToggleRole flips between author and reviewer.
func (s *ResponseStore) ToggleRole() response.Role {
	s.mu.Lock()
	role := s.roles.Toggle()
	s.state.Role = role
	s.saveLocked()
	s.mu.Unlock()

	s.notify(ChangeEvent{Kind: ChangeRole, Role: role, Rebuild: true})
	return role
}

// Role returns the active role.
func (s *ResponseStore) Role() response.Role {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.CurrentRole()
}

// CommitSections marks sections as finalized. Commit flags never affect scoring.
func (s *ResponseStore) CommitSections(sectionIDs ...string) {
	if len(sectionIDs) == 0 {
		return
	}
	s.mu.Lock()
	for _, id := range sectionIDs {
		s.state.Commit(id)
	}
	s.saveLocked()
	s.mu.Unlock()

	s.notify(ChangeEvent{Kind: ChangeCommit, Sections: append([]string(nil), sectionIDs...)})
}

// IsCommitted reports whether a section was committed.
func (s *ResponseStore) IsCommitted(sectionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.IsCommitted(sectionID)
}

// Snapshot returns a copy of the current state.
func (s *ResponseStore) Snapshot() *response.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Subscribe registers fn for change events and returns a function that removes it.
func (s *ResponseStore) Subscribe(fn Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

func (s *ResponseStore) notify(ev ChangeEvent) {
	s.mu.Lock()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(ev)
	}
}
