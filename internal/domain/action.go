package domain

import (
	"fmt"
	"strings"
)

// ActionKind is the closed vocabulary of callback buttons. Tokens with a
// payload use "kind:payload" on the wire.
type ActionKind string

const (
	ActionAdd              ActionKind = "add"
	ActionIncrement        ActionKind = "incr"
	ActionDecrement        ActionKind = "decr"
	ActionRemove           ActionKind = "remove"
	ActionOpenCart         ActionKind = "open_cart"
	ActionClearCart        ActionKind = "clear_cart"
	ActionContinueShopping ActionKind = "continue_shopping"
	ActionBeginCheckout    ActionKind = "begin_checkout"
	ActionBackStep         ActionKind = "back_step"
	ActionEditAddress      ActionKind = "edit_address"
	ActionConfirmDetails   ActionKind = "confirm_details"
	ActionCategories       ActionKind = "categories"
	ActionBrowseCategory   ActionKind = "cat"
)

// Action is a parsed callback token.
type Action struct {
	Kind    ActionKind
	Payload string // product name or category, when the kind carries one
}

func (a Action) Token() string {
	if a.Payload != "" {
		return string(a.Kind) + ":" + a.Payload
	}
	return string(a.Kind)
}

// ParseAction rejects anything outside the closed vocabulary.
func ParseAction(token string) (Action, error) {
	kind, payload, _ := strings.Cut(token, ":")
	switch ActionKind(kind) {
	case ActionAdd, ActionIncrement, ActionDecrement, ActionRemove, ActionBrowseCategory:
		if payload == "" {
			return Action{}, fmt.Errorf("token %q is missing its payload", token)
		}
		return Action{Kind: ActionKind(kind), Payload: payload}, nil
	case ActionOpenCart, ActionClearCart, ActionContinueShopping, ActionBeginCheckout,
		ActionBackStep, ActionEditAddress, ActionConfirmDetails, ActionCategories:
		if payload != "" {
			return Action{}, fmt.Errorf("token %q carries an unexpected payload", token)
		}
		return Action{Kind: ActionKind(kind)}, nil
	}
	return Action{}, fmt.Errorf("unknown callback token %q", token)
}
