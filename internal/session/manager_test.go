package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jackrtech/jacks-telebot/internal/domain"
)

const user = domain.UserID(99)

func TestExpired_NeverSeenUser(t *testing.T) {
	m := NewManager()

	assert.False(t, m.Expired(user), "no activity record means not expired")
}

func TestExpired_WithinAndBeyondTimeout(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }
	m := NewManagerWithClock(time.Hour, clock)

	m.Touch(user)
	assert.False(t, m.Expired(user))

	now = now.Add(time.Hour) // exactly the timeout is still fine
	assert.False(t, m.Expired(user))

	now = now.Add(time.Second) // strictly beyond expires
	assert.True(t, m.Expired(user))
}

func TestTouch_ResetsTheWindow(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }
	m := NewManagerWithClock(time.Hour, clock)

	m.Touch(user)
	now = now.Add(59 * time.Minute)
	m.Touch(user)
	now = now.Add(59 * time.Minute)

	assert.False(t, m.Expired(user))
}

func TestForget(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }
	m := NewManagerWithClock(time.Hour, clock)

	m.Touch(user)
	now = now.Add(2 * time.Hour)
	assert.True(t, m.Expired(user))

	m.Forget(user)
	assert.False(t, m.Expired(user))
}
