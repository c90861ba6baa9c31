package store

import (
	"sync"
	"time"
)

// subscriberBuffer is the channel capacity given to each subscriber.
const subscriberBuffer = 100

// MemoryStore is an in-memory implementation of [Store].
//
// MemoryStore keeps only the latest [View] and fans every update out to
// subscribers via buffered channels. Updates are sent non-blocking; if a
// subscriber's buffer is full, the update is dropped for that subscriber to
// prevent blocking the entire system.
type MemoryStore struct {
	mu      sync.Mutex
	current View
	hasView bool
	version uint64
	now     func() time.Time

	subscribers map[chan View]struct{}
	subMu       sync.RWMutex
}

// NewMemoryStore creates a new in-memory [Store] implementation.
//
// The store is immediately ready for use. No cleanup is required when done.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		subscribers: make(map[chan View]struct{}),
		now:         time.Now,
	}
}

// Update stores a [View] and notifies all subscribers.
//
// The store assigns Version and UpdatedAt. The servers slice is copied so
// later mutation by the caller cannot leak into stored state.
func (m *MemoryStore) Update(view View) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.version++
	view.Version = m.version
	view.UpdatedAt = m.now()
	view.Servers = copyServers(view.Servers)

	m.current = view
	m.hasView = true

	// notify while holding mu so subscribers see updates in Version order
	m.notifySubscribers(view)
}

// Current returns a copy of the latest view.
func (m *MemoryStore) Current() (View, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.hasView {
		return View{}, false
	}
	view := m.current
	view.Servers = copyServers(view.Servers)
	return view, true
}

// Subscribe creates a new subscription and returns a channel for receiving updates.
//
// The returned channel has a buffer of 100 messages. If the buffer fills
// (slow consumer), new updates are dropped for this subscriber.
//
// Caller must call [MemoryStore.Unsubscribe] when done to prevent resource leaks.
func (m *MemoryStore) Subscribe() <-chan View {
	ch := make(chan View, subscriberBuffer)

	m.subMu.Lock()
	m.subscribers[ch] = struct{}{}
	m.subMu.Unlock()

	return ch
}

// Unsubscribe removes a subscription and closes its channel.
//
// After calling Unsubscribe, the channel will be closed and no further
// updates will be sent. Safe to call multiple times or with an unknown channel.
func (m *MemoryStore) Unsubscribe(ch <-chan View) {
	m.subMu.Lock()
	defer m.subMu.Unlock()

	for subCh := range m.subscribers {
		if subCh == ch {
			delete(m.subscribers, subCh)
			close(subCh)
			break
		}
	}
}

// notifySubscribers sends the view to all active subscribers.
//
// This is non-blocking: if a subscriber's channel buffer is full, the message
// is dropped for that subscriber rather than blocking the update path.
func (m *MemoryStore) notifySubscribers(view View) {
	m.subMu.RLock()
	defer m.subMu.RUnlock()

	for ch := range m.subscribers {
		out := view
		out.Servers = copyServers(view.Servers)
		select {
		case ch <- out:
		default:
			// subscriber is slow, drop the message
		}
	}
}

func copyServers(servers []Server) []Server {
	if servers == nil {
		return nil
	}
	return append([]Server(nil), servers...)
}
