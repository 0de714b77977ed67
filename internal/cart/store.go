package cart

import (
	"sync"

	"github.com/jackrtech/jacks-telebot/internal/domain"
)

// Store holds per-user carts. Mutations for one user arrive serialized
// (one event at a time per user); the lock protects the user index.
type Store interface {
	Items(user domain.UserID) map[string]int
	Has(user domain.UserID) bool
	AddOne(user domain.UserID, name string)
	Increment(user domain.UserID, name string) bool
	Decrement(user domain.UserID, name string) bool
	Remove(user domain.UserID, name string)
	Clear(user domain.UserID)
	Destroy(user domain.UserID)
}

type MemoryStore struct {
	mu    sync.RWMutex
	carts map[domain.UserID]map[string]int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carts: make(map[domain.UserID]map[string]int)}
}

// Items returns a copy of the user's cart, nil if none exists.
func (s *MemoryStore) Items(user domain.UserID) map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cart, ok := s.carts[user]
	if !ok {
		return nil
	}
	out := make(map[string]int, len(cart))
	for k, v := range cart {
		out[k] = v
	}
	return out
}

func (s *MemoryStore) Has(user domain.UserID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.carts[user]
	return ok
}

// AddOne creates the cart on first use and bumps the quantity by one.
func (s *MemoryStore) AddOne(user domain.UserID, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cart, ok := s.carts[user]
	if !ok {
		cart = make(map[string]int)
		s.carts[user] = cart
	}
	cart[name]++
}

func (s *MemoryStore) Increment(user domain.UserID, name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	cart, ok := s.carts[user]
	if !ok {
		return false
	}
	if _, present := cart[name]; !present {
		return false
	}
	cart[name]++
	return true
}

// Decrement floors at 1; removal is always an explicit action.
func (s *MemoryStore) Decrement(user domain.UserID, name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	cart, ok := s.carts[user]
	if !ok {
		return false
	}
	qty, present := cart[name]
	if !present {
		return false
	}
	if qty > 1 {
		cart[name] = qty - 1
	}
	return true
}

func (s *MemoryStore) Remove(user domain.UserID, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cart, ok := s.carts[user]; ok {
		delete(cart, name)
	}
}

// Clear empties the cart without destroying it.
func (s *MemoryStore) Clear(user domain.UserID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.carts[user]; ok {
		s.carts[user] = make(map[string]int)
	}
}

func (s *MemoryStore) Destroy(user domain.UserID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, user)
}
