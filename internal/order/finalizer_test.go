package order

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jackrtech/jacks-telebot/internal/cart"
	"github.com/jackrtech/jacks-telebot/internal/catalog"
	"github.com/jackrtech/jacks-telebot/internal/checkout"
	"github.com/jackrtech/jacks-telebot/internal/domain"
	"github.com/jackrtech/jacks-telebot/internal/payment"
)

const (
	user = domain.UserID(42)
	chat = domain.ChatID(4200)
)

// mockStore implements Store, capturing appended orders.
type mockStore struct {
	m         sync.Mutex
	nextID    int
	idErr     error
	appendErr error
	appended  []*domain.Order
}

func (s *mockStore) NextOrderID(_ context.Context, _ time.Time) (string, error) {
	s.m.Lock()
	defer s.m.Unlock()
	if s.idErr != nil {
		return "", s.idErr
	}
	s.nextID++
	return fmt.Sprintf("ORD-260901-%02d", s.nextID), nil
}

func (s *mockStore) AppendOrder(_ context.Context, o *domain.Order) error {
	s.m.Lock()
	defer s.m.Unlock()
	if s.appendErr != nil {
		return s.appendErr
	}
	s.appended = append(s.appended, o)
	return nil
}

type mockNotifier struct {
	placed []*domain.Order
}

func (n *mockNotifier) OrderPlaced(o *domain.Order, _ domain.Totals) {
	n.placed = append(n.placed, o)
}

type mockProvider struct {
	url    string
	err    error
	intent *payment.Intent
}

func (p *mockProvider) CreateCheckout(_ context.Context, intent payment.Intent) (string, error) {
	p.intent = &intent
	if p.err != nil {
		return "", p.err
	}
	return p.url, nil
}

type fixture struct {
	store    *mockStore
	notifier *mockNotifier
	provider *mockProvider
	carts    *cart.Service
	forms    *checkout.Engine
	fin      *Finalizer
}

func setup(t *testing.T, provider payment.Provider) *fixture {
	t.Helper()
	cat := catalog.New([]domain.Product{
		{Name: "Sticker A", Category: "All", Price: decimal.RequireFromString("3.00")},
	})
	carts := cart.NewService(cart.NewMemoryStore(), cat,
		decimal.RequireFromString("2.50"), decimal.RequireFromString("10.00"))
	forms := checkout.NewEngine(carts)
	store := &mockStore{}
	notifier := &mockNotifier{}

	fin := NewFinalizer(store, carts, forms, notifier, provider,
		"Sticker Shop", "GBP", "https://shop.example/success", "https://shop.example/cancel")
	fin.now = func() time.Time { return time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC) }

	f := &fixture{store: store, notifier: notifier, carts: carts, forms: forms, fin: fin}
	if mp, ok := provider.(*mockProvider); ok {
		f.provider = mp
	}
	return f
}

func (f *fixture) readyToConfirm(t *testing.T) {
	t.Helper()
	require.NoError(t, f.carts.Add(user, "Sticker A"))
	require.NoError(t, f.carts.Add(user, "Sticker A"))
	require.NoError(t, f.forms.Begin(user))
	for _, input := range []string{"Jo Smith", "12a", "High Street", "Leeds", "LS1 4DT"} {
		require.NoError(t, f.forms.Submit(user, input))
	}
}

func TestConfirm_Success(t *testing.T) {
	f := setup(t, &mockProvider{url: "https://pay.example/s1"})
	f.readyToConfirm(t)

	outcome, err := f.fin.Confirm(context.Background(), user, chat, "jo_smith")

	require.NoError(t, err)
	require.Len(t, f.store.appended, 1)
	saved := f.store.appended[0]
	assert.Equal(t, "ORD-260901-01", saved.ID)
	assert.Equal(t, "jo_smith", saved.Username)
	assert.Equal(t, chat, saved.ChatID)
	assert.Equal(t, "2× Sticker A", saved.Items)
	assert.Equal(t, domain.OrderStatusPending, saved.Status)
	assert.Equal(t, "8.50", saved.Total.StringFixed(2))
	assert.Equal(t, "GBP", saved.Currency)

	assert.Equal(t, "https://pay.example/s1", outcome.PayURL)
	require.NotNil(t, f.provider.intent)
	assert.Equal(t, int64(850), f.provider.intent.AmountMinor)

	require.Len(t, f.notifier.placed, 1)

	// full session reset
	assert.True(t, f.carts.IsEmpty(user))
	assert.False(t, f.forms.Has(user))
}

func TestConfirm_RequiresReadyForm(t *testing.T) {
	f := setup(t, nil)

	_, err := f.fin.Confirm(context.Background(), user, chat, "jo_smith")
	assert.ErrorIs(t, err, domain.ErrNoActiveForm)

	require.NoError(t, f.carts.Add(user, "Sticker A"))
	require.NoError(t, f.forms.Begin(user))
	_, err = f.fin.Confirm(context.Background(), user, chat, "jo_smith")
	assert.ErrorIs(t, err, domain.ErrNotReady)
}

func TestConfirm_CartEmptiedConcurrently(t *testing.T) {
	f := setup(t, nil)
	f.readyToConfirm(t)
	f.carts.Clear(user) // cart emptied between ready and confirm

	_, err := f.fin.Confirm(context.Background(), user, chat, "jo_smith")

	assert.ErrorIs(t, err, domain.ErrEmptyCart)
	assert.Empty(t, f.store.appended)
}

func TestConfirm_PersistenceFailureIsFatal(t *testing.T) {
	f := setup(t, &mockProvider{url: "https://pay.example/s1"})
	f.readyToConfirm(t)
	f.store.appendErr = errors.New("disk full")

	_, err := f.fin.Confirm(context.Background(), user, chat, "jo_smith")

	require.Error(t, err)
	assert.Empty(t, f.notifier.placed, "no notification for an unsaved order")
	assert.Nil(t, f.provider.intent, "no payment intent for an unsaved order")
	assert.False(t, f.carts.IsEmpty(user), "state survives a failed confirmation")
	assert.True(t, f.forms.Ready(user))
}

func TestConfirm_CounterFailureIsFatal(t *testing.T) {
	f := setup(t, nil)
	f.readyToConfirm(t)
	f.store.idErr = errors.New("database is locked")

	_, err := f.fin.Confirm(context.Background(), user, chat, "jo_smith")

	require.Error(t, err)
	assert.Empty(t, f.store.appended)
}

func TestConfirm_ProviderFailureKeepsOrder(t *testing.T) {
	f := setup(t, &mockProvider{err: &payment.ProviderError{Reason: "api down"}})
	f.readyToConfirm(t)

	outcome, err := f.fin.Confirm(context.Background(), user, chat, "jo_smith")

	require.NoError(t, err, "payment failure is not an order failure")
	require.Len(t, f.store.appended, 1)
	assert.Equal(t, domain.OrderStatusPending, f.store.appended[0].Status)
	assert.Error(t, outcome.PaymentErr)
	assert.Empty(t, outcome.PayURL)

	// the session still resets
	assert.True(t, f.carts.IsEmpty(user))
	assert.False(t, f.forms.Has(user))
}

func TestConfirm_NoProviderConfigured(t *testing.T) {
	f := setup(t, nil)
	f.readyToConfirm(t)

	outcome, err := f.fin.Confirm(context.Background(), user, chat, "jo_smith")

	require.NoError(t, err)
	assert.Empty(t, outcome.PayURL)
	assert.NoError(t, outcome.PaymentErr)
}
