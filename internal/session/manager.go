package session

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"pricehawk/internal/display"
	"pricehawk/internal/history"
)

// Handle bundles everything owned by one client session: the lifecycle
// machine, its history store, and the review pagination flags. The
// pagination flags live here rather than on the machine so a new
// submission does not collapse review lists the user has expanded.
type Handle struct {
	ID        string
	Session   *Session
	History   *history.Store
	Toggles   *display.ReviewToggles
	CreatedAt time.Time
}

// Manager tracks live sessions by id. A default session serves callers
// that never ask for one, matching the original single-session client.
type Manager struct {
	backend      Comparer
	historyLimit int

	mu       sync.RWMutex
	sessions map[string]*Handle
	def      *Handle
}

func NewManager(backend Comparer, historyLimit int) (*Manager, error) {
	m := &Manager{
		backend:      backend,
		historyLimit: historyLimit,
		sessions:     make(map[string]*Handle),
	}

	def, err := m.newHandle()
	if err != nil {
		return nil, err
	}
	m.def = def

	return m, nil
}

func (m *Manager) newHandle() (*Handle, error) {
	store, err := history.NewStore(m.historyLimit)
	if err != nil {
		return nil, fmt.Errorf("creating history store: %w", err)
	}

	return &Handle{
		ID:        uuid.New().String(),
		Session:   New(m.backend, store),
		History:   store,
		Toggles:   display.NewReviewToggles(),
		CreatedAt: time.Now(),
	}, nil
}

// Create registers a new session with its own history and toggles.
func (m *Manager) Create() (*Handle, error) {
	handle, err := m.newHandle()
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.sessions[handle.ID] = handle
	m.mu.Unlock()

	log.Printf("[SESSION] Created session %s", handle.ID)
	return handle, nil
}

func (m *Manager) Get(id string) (*Handle, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	handle, exists := m.sessions[id]
	return handle, exists
}

// Default returns the shared session used by callers without a session id.
// It is not registered in the id map and cannot be removed.
func (m *Manager) Default() *Handle {
	return m.def
}

// Remove discards a session and releases its history store.
func (m *Manager) Remove(id string) error {
	m.mu.Lock()
	handle, exists := m.sessions[id]
	if exists {
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	if !exists {
		return fmt.Errorf("session not found")
	}

	if err := handle.History.Close(); err != nil {
		return fmt.Errorf("closing history store: %w", err)
	}

	log.Printf("[SESSION] Removed session %s", handle.ID)
	return nil
}

// Close releases every live session, the default one included.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, handle := range m.sessions {
		handle.History.Close()
		delete(m.sessions, id)
	}
	m.def.History.Close()
}
