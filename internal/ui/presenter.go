package ui

import (
	"log"
	"sync"

	"github.com/jackrtech/jacks-telebot/internal/domain"
)

// liveMessage is a widget's current on-screen message and the content it
// was last rendered with.
type liveMessage struct {
	handle  Handle
	payload Payload
}

// Presenter reconciles rendered payloads against at most one live message
// per (user, widget), preferring in-place edits over new messages.
//
// The mutex guards only the handle tables; it is never held across a
// transport call, so one user's slow delivery cannot stall another's.
// Concurrent presents for the same user are the caller's problem: each
// user's events arrive serialized through their actor.
type Presenter struct {
	mu    sync.Mutex
	tr    Transport
	live  map[domain.UserID]map[Widget]liveMessage
	menus map[domain.UserID][]Handle
}

func NewPresenter(tr Transport) *Presenter {
	return &Presenter{
		tr:    tr,
		live:  make(map[domain.UserID]map[Widget]liveMessage),
		menus: make(map[domain.UserID][]Handle),
	}
}

// Present edits the widget's live message if one exists; when the edit
// fails (message deleted, too old) it sends fresh and abandons the stale
// handle. Rendering content identical to what is already on screen is a
// no-op: Telegram rejects unchanged edits, and falling back to a send
// there would duplicate the widget. Never leaves two live messages of the
// same kind for one user.
func (p *Presenter) Present(user domain.UserID, w Widget, chat domain.ChatID, payload Payload) error {
	p.mu.Lock()
	cur, hasLive := p.live[user][w]
	p.mu.Unlock()

	if hasLive {
		if payloadEqual(cur.payload, payload) {
			return nil
		}
		if err := p.tr.Edit(cur.handle, payload); err == nil {
			p.remember(user, w, liveMessage{handle: cur.handle, payload: payload})
			return nil
		}
	}

	h, err := p.tr.Send(chat, payload)
	if err != nil {
		return err
	}
	p.remember(user, w, liveMessage{handle: h, payload: payload})
	return nil
}

func (p *Presenter) remember(user domain.UserID, w Widget, m liveMessage) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.live[user] == nil {
		p.live[user] = make(map[Widget]liveMessage)
	}
	p.live[user][w] = m
}

// DropAll forgets every handle for the user, used on full session reset.
func (p *Presenter) DropAll(user domain.UserID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.live, user)
	delete(p.menus, user)
}

// RememberMenu tracks a browse listing. Menus are not reconciled; only the
// latest one is valid.
func (p *Presenter) RememberMenu(user domain.UserID, h Handle) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.menus[user] = append(p.menus[user], h)
}

// InvalidateMenus marks every previously issued browse message outdated.
// Edit failures are expected (old messages get deleted) and ignored.
func (p *Presenter) InvalidateMenus(user domain.UserID, outdated Payload) {
	p.mu.Lock()
	handles := p.menus[user]
	p.menus[user] = nil
	p.mu.Unlock()

	for _, h := range handles {
		if err := p.tr.Edit(h, outdated); err != nil {
			log.Printf("failed to mark menu outdated for user %d: %v", user, err)
		}
	}
}

func payloadEqual(a, b Payload) bool {
	if a.Text != b.Text || len(a.Buttons) != len(b.Buttons) {
		return false
	}
	for i := range a.Buttons {
		if len(a.Buttons[i]) != len(b.Buttons[i]) {
			return false
		}
		for j := range a.Buttons[i] {
			if a.Buttons[i][j] != b.Buttons[i][j] {
				return false
			}
		}
	}
	return true
}
