package checkout

import (
	"sync"

	"github.com/jackrtech/jacks-telebot/internal/domain"
)

// CartView is the only cart knowledge the engine needs.
type CartView interface {
	IsEmpty(user domain.UserID) bool
}

// Engine drives the per-user delivery form. Events for one user arrive
// serialized; the lock protects the user index.
type Engine struct {
	mu    sync.RWMutex
	forms map[domain.UserID]*domain.Form
	cart  CartView
}

func NewEngine(cart CartView) *Engine {
	return &Engine{
		forms: make(map[domain.UserID]*domain.Form),
		cart:  cart,
	}
}

// Begin starts (or restarts) the form at step 0 with empty answers.
// Re-beginning discards any in-progress answers.
func (e *Engine) Begin(user domain.UserID) error {
	if e.cart.IsEmpty(user) {
		return domain.ErrEmptyCart
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.forms[user] = domain.NewForm()
	return nil
}

// Form returns the user's live form. The caller owns the user's actor, so
// reading it without a copy is safe.
func (e *Engine) Form(user domain.UserID) (*domain.Form, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	f, ok := e.forms[user]
	return f, ok
}

func (e *Engine) Has(user domain.UserID) bool {
	_, ok := e.Form(user)
	return ok
}

// Submit validates raw input for the active field. On failure the cursor
// and answers stay exactly as they were.
func (e *Engine) Submit(user domain.UserID, raw string) error {
	f, ok := e.Form(user)
	if !ok {
		return domain.ErrNoActiveForm
	}
	if f.Status() != domain.FormCollecting {
		return domain.ErrNotReady
	}
	field := f.CurrentField()
	value, ok := Validate(field, raw)
	if !ok {
		return &domain.ValidationError{Field: field}
	}
	f.Answers[field] = value
	f.Step++
	return nil
}

// Back moves the cursor one step toward the start, keeping the answer of
// the field being revisited. Returns false at step 0.
func (e *Engine) Back(user domain.UserID) (bool, error) {
	f, ok := e.Form(user)
	if !ok {
		return false, domain.ErrNoActiveForm
	}
	if f.Step == 0 {
		return false, nil
	}
	f.Step--
	return true, nil
}

// EditAddress re-opens collection from the first field without clearing
// any captured answers. Only valid once the form is ready to confirm.
func (e *Engine) EditAddress(user domain.UserID) error {
	f, ok := e.Form(user)
	if !ok {
		return domain.ErrNoActiveForm
	}
	if f.Status() != domain.FormReadyToConfirm {
		return domain.ErrNotReady
	}
	f.Step = 0
	return nil
}

// Ready reports whether every field has been collected.
func (e *Engine) Ready(user domain.UserID) bool {
	f, ok := e.Form(user)
	return ok && f.Status() == domain.FormReadyToConfirm
}

func (e *Engine) Destroy(user domain.UserID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.forms, user)
}
