package session

import (
	"sync"
	"time"

	"github.com/jackrtech/jacks-telebot/internal/domain"
)

// Timeout is the single global inactivity window. There is no background
// sweep; expiry is checked lazily on the next interaction.
const Timeout = time.Hour

// Manager records last activity per user and answers expiry checks.
type Manager struct {
	mu      sync.RWMutex
	last    map[domain.UserID]time.Time
	timeout time.Duration
	now     func() time.Time
}

func NewManager() *Manager {
	return &Manager{
		last:    make(map[domain.UserID]time.Time),
		timeout: Timeout,
		now:     time.Now,
	}
}

// NewManagerWithClock is for tests that need to control time.
func NewManagerWithClock(timeout time.Duration, now func() time.Time) *Manager {
	return &Manager{
		last:    make(map[domain.UserID]time.Time),
		timeout: timeout,
		now:     now,
	}
}

// Touch records activity. Called by every state-mutating action.
func (m *Manager) Touch(user domain.UserID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.last[user] = m.now()
}

// Expired is true only when an activity record exists and is stale.
// A user never seen before is not expired.
func (m *Manager) Expired(user domain.UserID) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ts, ok := m.last[user]
	if !ok {
		return false
	}
	return m.now().Sub(ts) > m.timeout
}

// Forget drops the activity record, used on full session reset.
func (m *Manager) Forget(user domain.UserID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.last, user)
}
