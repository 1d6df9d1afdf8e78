package credentials

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/couchcryptid/flight-delay-service/internal/domain"
)

// Manager resolves keys for the command-line client. A key given for the
// current session wins over a stored one; keys reach the store only through
// an explicit Save with persistence enabled.
type Manager struct {
	store Store

	mu      sync.RWMutex
	session map[Slot]string
}

// NewManager wraps store. A nil store disables persistence.
func NewManager(store Store) *Manager {
	if store == nil {
		store = NewMemoryStore()
	}
	return &Manager{store: store, session: map[Slot]string{}}
}

// Credential implements Provider.
func (m *Manager) Credential(_ context.Context, slot Slot) (string, error) {
	m.mu.RLock()
	key := m.session[slot]
	m.mu.RUnlock()
	if key != "" {
		return key, nil
	}

	key, ok, err := m.store.Get(slot)
	if err != nil {
		return "", err
	}
	if !ok || key == "" {
		return "", missing(slot)
	}
	return key, nil
}

// Use sets a session-only key. An empty key clears the session value.
func (m *Manager) Use(slot Slot, key string) {
	key = strings.TrimSpace(key)
	m.mu.Lock()
	defer m.mu.Unlock()
	if key == "" {
		delete(m.session, slot)
		return
	}
	m.session[slot] = key
}

// Save makes key the session key and, when persist is set, writes it to the
// store. It reports whether the key was persisted.
func (m *Manager) Save(slot Slot, key string, persist bool) (bool, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return false, fmt.Errorf("%w: enter a key to save", domain.ErrInvalidInput)
	}
	m.Use(slot, key)
	if !persist {
		return false, nil
	}
	if err := m.store.Set(slot, key); err != nil {
		return false, fmt.Errorf("save %s key: %w", slot, err)
	}
	return true, nil
}

// Clear forgets the slot's key in the session and the store.
func (m *Manager) Clear(slot Slot) error {
	m.Use(slot, "")
	if err := m.store.Remove(slot); err != nil {
		return fmt.Errorf("clear %s key: %w", slot, err)
	}
	return nil
}

// Stored reports whether a key for slot is persisted.
func (m *Manager) Stored(slot Slot) (bool, error) {
	_, ok, err := m.store.Get(slot)
	return ok, err
}
