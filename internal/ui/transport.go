package ui

import "github.com/jackrtech/jacks-telebot/internal/domain"

// Widget kinds that keep exactly one live message per user.
type Widget string

const (
	WidgetCart     Widget = "cart"
	WidgetCheckout Widget = "checkout"
)

// Button is an inline action. Exactly one of Action/URL is set.
type Button struct {
	Label  string
	Action string // callback token
	URL    string
}

// Payload is a fully rendered display state: text plus button rows.
type Payload struct {
	Text    string
	Buttons [][]Button
}

func Text(s string) Payload {
	return Payload{Text: s}
}

// Handle points at the most recent message carrying a widget's render.
// It is a weak reference: when editing fails the handle is discarded.
type Handle struct {
	Chat      domain.ChatID
	MessageID int
}

// Transport is the narrow chat surface the core depends on.
type Transport interface {
	Send(chat domain.ChatID, p Payload) (Handle, error)
	Edit(h Handle, p Payload) error
	Delete(h Handle) error
	SendDocument(chat domain.ChatID, filename string, data []byte) error
}
