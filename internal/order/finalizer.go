package order

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackrtech/jacks-telebot/internal/cart"
	"github.com/jackrtech/jacks-telebot/internal/checkout"
	"github.com/jackrtech/jacks-telebot/internal/domain"
	"github.com/jackrtech/jacks-telebot/internal/payment"
)

// Store is the slice of persistence confirmation needs.
type Store interface {
	NextOrderID(ctx context.Context, now time.Time) (string, error)
	AppendOrder(ctx context.Context, order *domain.Order) error
}

// Notifier announces persisted orders; implementations must be best-effort.
type Notifier interface {
	OrderPlaced(order *domain.Order, totals domain.Totals)
}

// Outcome is what confirmation produced. PaymentErr being set does not
// invalidate the order; it stays persisted as pending.
type Outcome struct {
	Order      *domain.Order
	Totals     domain.Totals
	PayURL     string
	PaymentErr error
}

// Finalizer turns a ready checkout into a persisted order.
type Finalizer struct {
	store    Store
	carts    *cart.Service
	forms    *checkout.Engine
	notifier Notifier
	provider payment.Provider // nil when payment is not configured

	shopName   string
	currency   string
	successURL string
	cancelURL  string

	now func() time.Time
}

func NewFinalizer(
	store Store,
	carts *cart.Service,
	forms *checkout.Engine,
	notifier Notifier,
	provider payment.Provider,
	shopName, currency, successURL, cancelURL string,
) *Finalizer {
	return &Finalizer{
		store:      store,
		carts:      carts,
		forms:      forms,
		notifier:   notifier,
		provider:   provider,
		shopName:   shopName,
		currency:   currency,
		successURL: successURL,
		cancelURL:  cancelURL,
		now:        time.Now,
	}
}

// Confirm validates state, persists the order, fires the notification and
// optionally creates the payment intent. Persistence failure is fatal for
// the operation; notification and payment failures are not. On success the
// user's cart and form are destroyed regardless of the payment result.
func (f *Finalizer) Confirm(ctx context.Context, user domain.UserID, chat domain.ChatID, username string) (*Outcome, error) {
	form, ok := f.forms.Form(user)
	if !ok {
		return nil, domain.ErrNoActiveForm
	}
	if form.Status() != domain.FormReadyToConfirm {
		return nil, domain.ErrNotReady
	}
	// the cart could have been cleared since checkout began
	if f.carts.IsEmpty(user) {
		return nil, domain.ErrEmptyCart
	}

	totals := f.carts.Totals(user)
	now := f.now()

	orderID, err := f.store.NextOrderID(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("order confirmation failed: %w", err)
	}

	record := &domain.Order{
		ID:        orderID,
		Username:  username,
		ChatID:    chat,
		Items:     f.carts.Summary(user),
		Address:   form.Address(),
		Status:    domain.OrderStatusPending,
		CreatedAt: now,
		Total:     totals.Total,
		Currency:  f.currency,
	}

	if err := f.store.AppendOrder(ctx, record); err != nil {
		return nil, fmt.Errorf("order confirmation failed: %w", err)
	}

	// the order is final from here on
	f.notifier.OrderPlaced(record, totals)

	outcome := &Outcome{Order: record, Totals: totals}
	if f.provider != nil {
		payURL, payErr := f.provider.CreateCheckout(ctx, payment.Intent{
			OrderID:     orderID,
			AmountMinor: totals.Total.Shift(2).Round(0).IntPart(),
			Currency:    f.currency,
			Description: fmt.Sprintf("%s Order %s", f.shopName, orderID),
			SuccessURL:  f.successURL,
			CancelURL:   f.cancelURL,
			Metadata:    map[string]string{"telegram_user": username},
		})
		if payErr != nil {
			log.Printf("payment setup failed for order %s: %v", orderID, payErr)
			outcome.PaymentErr = payErr
		} else {
			outcome.PayURL = payURL
		}
	}

	f.carts.Destroy(user)
	f.forms.Destroy(user)
	return outcome, nil
}
