// Package session holds the single authenticated identity for the
// process. The manager is constructed explicitly and passed by reference
// to guards and stores; there is no ambient global.
package session

import (
	"sync"

	"jobportal/pkg/domain"
	"jobportal/pkg/store"
)

// currentUserKey is the blob key the persisted session token lives
// under, surviving process restarts until an explicit logout.
const currentUserKey = "currentUser"

// Manager tracks at most one authenticated identity and pushes changes
// to live observers. Set and Clear persist through the blob adapter so
// the session survives restarts.
type Manager struct {
	blob  store.Blob
	codec *TokenCodec

	mu      sync.RWMutex
	current *domain.Identity
	next    int
	subs    map[int]chan domain.Identity
}

// NewManager restores any persisted session. Expired or malformed
// tokens are ignored, which leaves the manager logged out.
func NewManager(blob store.Blob, codec *TokenCodec) (*Manager, error) {
	m := &Manager{
		blob:  blob,
		codec: codec,
		subs:  make(map[int]chan domain.Identity),
	}
	data, ok, err := blob.Get(currentUserKey)
	if err != nil {
		return nil, err
	}
	if ok {
		if id, valid := codec.Verify(string(data)); valid {
			m.current = &id
		}
	}
	return m, nil
}

// Current returns the authenticated identity, if any.
func (m *Manager) Current() (domain.Identity, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return domain.Identity{}, false
	}
	return *m.current, true
}

// Set installs a new identity, persists it, and notifies observers.
func (m *Manager) Set(id domain.Identity) error {
	token, err := m.codec.Sign(id)
	if err != nil {
		return err
	}
	if err := m.blob.Set(currentUserKey, []byte(token)); err != nil {
		return err
	}
	m.mu.Lock()
	m.current = &id
	m.mu.Unlock()
	m.notify(id)
	return nil
}

// Clear logs out: wipes the in-memory identity and the persisted token,
// then pushes the zero identity to observers.
func (m *Manager) Clear() error {
	if err := m.blob.Delete(currentUserKey); err != nil {
		return err
	}
	m.mu.Lock()
	m.current = nil
	m.mu.Unlock()
	m.notify(domain.Identity{})
	return nil
}

// Subscribe registers an observer. The channel receives each identity
// change; the zero identity signals logout. The cancel function detaches
// the observer and never blocks.
func (m *Manager) Subscribe() (<-chan domain.Identity, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.next
	m.next++
	ch := make(chan domain.Identity, 1)
	m.subs[id] = ch
	return ch, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subs, id)
	}
}

func (m *Manager) notify(id domain.Identity) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ch := range m.subs {
		// Coalesce: a slow observer keeps only the latest state.
		select {
		case ch <- id:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- id:
			default:
			}
		}
	}
}
