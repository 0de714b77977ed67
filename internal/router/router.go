package router

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/jackrtech/jacks-telebot/internal/cart"
	"github.com/jackrtech/jacks-telebot/internal/catalog"
	"github.com/jackrtech/jacks-telebot/internal/checkout"
	"github.com/jackrtech/jacks-telebot/internal/config"
	"github.com/jackrtech/jacks-telebot/internal/domain"
	"github.com/jackrtech/jacks-telebot/internal/order"
	"github.com/jackrtech/jacks-telebot/internal/repository"
	"github.com/jackrtech/jacks-telebot/internal/session"
	"github.com/jackrtech/jacks-telebot/internal/ui"
)

const maintenanceMessage = "🛠 The shop is undergoing maintenance. Please try again later."

// Router is the single dispatch point for inbound chat events. Events for
// one user are processed one at a time; different users run concurrently.
type Router struct {
	cfg       *config.Config
	catalog   *catalog.Catalog
	carts     *cart.Service
	forms     *checkout.Engine
	sessions  *session.Manager
	presenter *ui.Presenter
	render    *ui.Renderer
	finalizer *order.Finalizer
	repo      repository.RepoInterface
	tr        ui.Transport

	maintenance atomic.Bool
	locks       sync.Map // domain.UserID -> *sync.Mutex
}

func New(
	cfg *config.Config,
	cat *catalog.Catalog,
	carts *cart.Service,
	forms *checkout.Engine,
	sessions *session.Manager,
	presenter *ui.Presenter,
	render *ui.Renderer,
	finalizer *order.Finalizer,
	repo repository.RepoInterface,
	tr ui.Transport,
) *Router {
	return &Router{
		cfg:       cfg,
		catalog:   cat,
		carts:     carts,
		forms:     forms,
		sessions:  sessions,
		presenter: presenter,
		render:    render,
		finalizer: finalizer,
		repo:      repo,
		tr:        tr,
	}
}

// lockFor serializes the per-user actor.
func (r *Router) lockFor(user domain.UserID) *sync.Mutex {
	v, _ := r.locks.LoadOrStore(user, &sync.Mutex{})
	return v.(*sync.Mutex)
}

// guard enforces lazy session expiry at every mutating entry point. When
// an expired user still holds active state, that state is destroyed, the
// user is told, ErrSessionExpired comes back and the triggering action
// must not be applied.
func (r *Router) guard(user domain.UserID, chat domain.ChatID) error {
	if !r.sessions.Expired(user) {
		return nil
	}
	if r.carts.IsEmpty(user) && !r.forms.Has(user) {
		return nil
	}
	r.reset(user)
	r.send(chat, ui.Text("⏰ Session expired. Please /order again."))
	return domain.ErrSessionExpired
}

// reset destroys all per-user conversational state.
func (r *Router) reset(user domain.UserID) {
	r.carts.Destroy(user)
	r.forms.Destroy(user)
	r.presenter.DropAll(user)
	r.sessions.Forget(user)
}

func (r *Router) send(chat domain.ChatID, p ui.Payload) {
	if _, err := r.tr.Send(chat, p); err != nil {
		log.Printf("failed to send message to chat %d: %v", chat, err)
	}
}

func (r *Router) blockedForMaintenance(user domain.UserID, chat domain.ChatID) bool {
	if r.maintenance.Load() && !r.cfg.IsAdmin(user) {
		r.send(chat, ui.Text(maintenanceMessage))
		return true
	}
	return false
}

// HandleCommand processes a slash command.
func (r *Router) HandleCommand(ctx context.Context, user domain.UserID, chat domain.ChatID, username, command, args string) {
	mu := r.lockFor(user)
	mu.Lock()
	defer mu.Unlock()

	switch command {
	case "start":
		r.send(chat, r.render.Welcome())
	case "help":
		r.send(chat, r.render.Help())
	case "ping":
		r.send(chat, ui.Text("🏓 pong"))
	case "whoami":
		r.send(chat, ui.Text(fmt.Sprintf("🪪 ID: `%d`\nUsername: @%s", user, username)))
	case "restart":
		r.reset(user)
		r.send(chat, ui.Text("🔄 Reset. Use /order to start again."))
	case "order":
		r.sessions.Touch(user)
		r.openMenu(user, chat)
	case "cart":
		if r.guard(user, chat) != nil {
			return
		}
		r.sessions.Touch(user)
		r.presentCart(user, chat)
	case "maintenance_on", "maintenance_off", "last_orders", "export_orders",
		"stats", "inventory", "broadcast":
		r.handleAdmin(ctx, user, chat, command, args)
	}
}

// openMenu invalidates every previously issued browse message and sends a
// fresh category listing. Only the latest menu is valid.
func (r *Router) openMenu(user domain.UserID, chat domain.ChatID) {
	r.presenter.InvalidateMenus(user, r.render.MenuOutdated())
	h, err := r.tr.Send(chat, r.render.Categories())
	if err != nil {
		log.Printf("failed to send menu to chat %d: %v", chat, err)
		return
	}
	r.presenter.RememberMenu(user, h)
}

// HandleCallback processes a button press. src is the message the button
// lives on; browse listings are edited in place through it. The returned
// string acknowledges the press (empty for a silent ack).
func (r *Router) HandleCallback(ctx context.Context, user domain.UserID, chat domain.ChatID, username string, src ui.Handle, token string) string {
	mu := r.lockFor(user)
	mu.Lock()
	defer mu.Unlock()

	action, err := domain.ParseAction(token)
	if err != nil {
		log.Printf("dropping callback from user %d: %v", user, err)
		return "Unknown action."
	}

	switch action.Kind {
	case domain.ActionCategories:
		if err := r.tr.Edit(src, r.render.Categories()); err != nil {
			log.Printf("failed to edit menu for user %d: %v", user, err)
		}
		return ""
	case domain.ActionBrowseCategory:
		if err := r.tr.Edit(src, r.render.CategoryProducts(action.Payload)); err != nil {
			log.Printf("failed to edit menu for user %d: %v", user, err)
		}
		return ""
	case domain.ActionOpenCart:
		r.presentCart(user, chat)
		return ""
	case domain.ActionContinueShopping:
		r.openMenu(user, chat)
		return ""
	}

	// everything below mutates state
	if r.maintenance.Load() && !r.cfg.IsAdmin(user) {
		return maintenanceMessage
	}
	if err := r.guard(user, chat); errors.Is(err, domain.ErrSessionExpired) {
		return "Session expired."
	}

	switch action.Kind {
	case domain.ActionAdd:
		if err := r.carts.Add(user, action.Payload); err != nil {
			if errors.Is(err, domain.ErrUnknownProduct) {
				return "Item not available. Use /order for the current menu."
			}
			return "Could not add item."
		}
		r.sessions.Touch(user)
		r.presentCart(user, chat)
		return "Added " + action.Payload
	case domain.ActionIncrement:
		if err := r.carts.Increment(user, action.Payload); err != nil {
			return "Item not in cart."
		}
		r.sessions.Touch(user)
		r.presentCart(user, chat)
		return "Updated."
	case domain.ActionDecrement:
		if err := r.carts.Decrement(user, action.Payload); err != nil {
			return "Item not in cart."
		}
		r.sessions.Touch(user)
		r.presentCart(user, chat)
		return "Updated."
	case domain.ActionRemove:
		r.carts.Remove(user, action.Payload)
		r.sessions.Touch(user)
		r.presentCart(user, chat)
		return "Updated."
	case domain.ActionClearCart:
		r.carts.Clear(user)
		r.sessions.Touch(user)
		r.presentCart(user, chat)
		return "Cart cleared."
	case domain.ActionBeginCheckout:
		if err := r.forms.Begin(user); err != nil {
			if errors.Is(err, domain.ErrEmptyCart) {
				r.send(chat, ui.Text("🛒 Your cart is empty. Use /order to add items."))
				return ""
			}
			return "Could not start checkout."
		}
		r.sessions.Touch(user)
		r.presentCheckout(user, chat)
		return ""
	case domain.ActionBackStep:
		moved, err := r.forms.Back(user)
		if err != nil {
			return "No active checkout."
		}
		if !moved {
			return "Already at first step."
		}
		r.sessions.Touch(user)
		r.presentCheckout(user, chat)
		return "Back"
	case domain.ActionEditAddress:
		if err := r.forms.EditAddress(user); err != nil {
			return "No active checkout."
		}
		r.sessions.Touch(user)
		r.presentCheckout(user, chat)
		return "Edit details"
	case domain.ActionConfirmDetails:
		return r.confirm(ctx, user, chat, username)
	}
	return ""
}

func (r *Router) confirm(ctx context.Context, user domain.UserID, chat domain.ChatID, username string) string {
	outcome, err := r.finalizer.Confirm(ctx, user, chat, username)
	switch {
	case errors.Is(err, domain.ErrNoActiveForm), errors.Is(err, domain.ErrNotReady), errors.Is(err, domain.ErrEmptyCart):
		return "Nothing to confirm."
	case err != nil:
		log.Printf("order confirmation failed for user %d: %v", user, err)
		r.send(chat, ui.Text("⚠️ Could not save your order. Please try again."))
		return "Error"
	}

	// full session reset; the cart and form are already gone
	r.presenter.DropAll(user)
	r.sessions.Forget(user)

	if outcome.PaymentErr != nil {
		r.send(chat, ui.Text(fmt.Sprintf(
			"✅ Order *%s* saved.\nPayment setup failed; we'll contact you to arrange payment.",
			outcome.Order.ID)))
	} else {
		r.send(chat, r.render.PayPrompt(outcome.Order.ID, outcome.Totals.Total, outcome.PayURL))
	}
	return "Order placed"
}

// HandleText processes free text. Inside a checkout it feeds the active
// field; outside it nudges toward the commands.
func (r *Router) HandleText(ctx context.Context, user domain.UserID, chat domain.ChatID, text string) {
	mu := r.lockFor(user)
	mu.Lock()
	defer mu.Unlock()

	if strings.HasPrefix(text, "/") {
		return
	}

	if !r.forms.Has(user) {
		r.send(chat, ui.Text("Use /order to browse stickers or /cart to view your basket."))
		return
	}

	if r.guard(user, chat) != nil {
		return
	}

	err := r.forms.Submit(user, text)
	var vErr *domain.ValidationError
	switch {
	case errors.As(err, &vErr):
		// same step, same live message; the warning is a separate note
		r.presentCheckout(user, chat)
		r.send(chat, ui.Text(fmt.Sprintf("⚠️ That doesn't look like a valid *%s*. Please try again.", vErr.Field)))
		return
	case errors.Is(err, domain.ErrNotReady):
		// stray text after the form completed; nothing to do
		return
	case err != nil:
		return
	}

	r.sessions.Touch(user)
	r.presentCheckout(user, chat)
}

func (r *Router) presentCart(user domain.UserID, chat domain.ChatID) {
	payload := r.render.Cart(r.carts.Items(user), r.carts.Totals(user))
	if err := r.presenter.Present(user, ui.WidgetCart, chat, payload); err != nil {
		log.Printf("failed to present cart for user %d: %v", user, err)
	}
}

func (r *Router) presentCheckout(user domain.UserID, chat domain.ChatID) {
	form, ok := r.forms.Form(user)
	if !ok {
		return
	}
	payload := r.render.Checkout(form, r.carts.Totals(user))
	if err := r.presenter.Present(user, ui.WidgetCheckout, chat, payload); err != nil {
		log.Printf("failed to present checkout for user %d: %v", user, err)
	}
}
