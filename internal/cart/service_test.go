package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jackrtech/jacks-telebot/internal/catalog"
	"github.com/jackrtech/jacks-telebot/internal/domain"
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	return catalog.New([]domain.Product{
		{Name: "Sticker A", Category: "All", Price: decimal.RequireFromString("3.00"), Emoji: "🌟"},
		{Name: "Sticker B", Category: "All", Price: decimal.RequireFromString("1.25")},
	})
}

func testService(t *testing.T) *Service {
	t.Helper()
	return NewService(NewMemoryStore(), testCatalog(t),
		decimal.RequireFromString("2.50"), decimal.RequireFromString("10.00"))
}

const user = domain.UserID(42)

func TestAdd_UnknownProduct(t *testing.T) {
	svc := testService(t)

	err := svc.Add(user, "Nonexistent")

	assert.ErrorIs(t, err, domain.ErrUnknownProduct)
	assert.True(t, svc.IsEmpty(user))
}

func TestAdd_CreatesCartAndAccumulates(t *testing.T) {
	svc := testService(t)

	require.NoError(t, svc.Add(user, "Sticker A"))
	require.NoError(t, svc.Add(user, "Sticker A"))
	require.NoError(t, svc.Add(user, "Sticker B"))

	assert.Equal(t, map[string]int{"Sticker A": 2, "Sticker B": 1}, svc.Items(user))
}

func TestDecrement_FloorsAtOne(t *testing.T) {
	svc := testService(t)
	require.NoError(t, svc.Add(user, "Sticker A"))

	require.NoError(t, svc.Decrement(user, "Sticker A"))
	require.NoError(t, svc.Decrement(user, "Sticker A"))

	assert.Equal(t, map[string]int{"Sticker A": 1}, svc.Items(user))
}

func TestIncrementDecrement_NotInCart(t *testing.T) {
	svc := testService(t)
	require.NoError(t, svc.Add(user, "Sticker A"))

	assert.ErrorIs(t, svc.Increment(user, "Sticker B"), ErrNotInCart)
	assert.ErrorIs(t, svc.Decrement(user, "Sticker B"), ErrNotInCart)
}

func TestRemove_DeletesKey(t *testing.T) {
	svc := testService(t)
	require.NoError(t, svc.Add(user, "Sticker A"))

	svc.Remove(user, "Sticker A")

	items := svc.Items(user)
	_, present := items["Sticker A"]
	assert.False(t, present, "removed product must not linger as a zero entry")

	// removing an absent item is a no-op
	svc.Remove(user, "Sticker A")
	assert.Empty(t, svc.Items(user))
}

func TestQuantities_NeverZero(t *testing.T) {
	svc := testService(t)
	require.NoError(t, svc.Add(user, "Sticker A"))
	require.NoError(t, svc.Add(user, "Sticker B"))
	require.NoError(t, svc.Increment(user, "Sticker A"))
	require.NoError(t, svc.Decrement(user, "Sticker A"))
	require.NoError(t, svc.Decrement(user, "Sticker B"))
	svc.Remove(user, "Sticker B")

	for name, qty := range svc.Items(user) {
		assert.GreaterOrEqual(t, qty, 1, "entry %s", name)
	}
}

func TestClear_EmptiesWithoutDestroying(t *testing.T) {
	store := NewMemoryStore()
	svc := NewService(store, testCatalog(t),
		decimal.RequireFromString("2.50"), decimal.RequireFromString("10.00"))
	require.NoError(t, svc.Add(user, "Sticker A"))

	svc.Clear(user)

	assert.True(t, svc.IsEmpty(user))
	assert.True(t, store.Has(user), "clear keeps the cart entity")

	svc.Destroy(user)
	assert.False(t, store.Has(user))
}

func TestTotals_ThresholdWaivesDelivery(t *testing.T) {
	svc := testService(t)

	// 2 × 3.00 = 6.00, under the 10.00 threshold
	require.NoError(t, svc.Add(user, "Sticker A"))
	require.NoError(t, svc.Add(user, "Sticker A"))

	totals := svc.Totals(user)
	assert.Equal(t, "6.00", totals.Subtotal.StringFixed(2))
	assert.Equal(t, "2.50", totals.Delivery.StringFixed(2))
	assert.Equal(t, "8.50", totals.Total.StringFixed(2))

	// 2 more → 12.00 subtotal, free delivery
	require.NoError(t, svc.Add(user, "Sticker A"))
	require.NoError(t, svc.Add(user, "Sticker A"))

	totals = svc.Totals(user)
	assert.Equal(t, "12.00", totals.Subtotal.StringFixed(2))
	assert.Equal(t, "0.00", totals.Delivery.StringFixed(2))
	assert.Equal(t, "12.00", totals.Total.StringFixed(2))
}

func TestTotals_SkipsStaleProducts(t *testing.T) {
	store := NewMemoryStore()
	svc := NewService(store, testCatalog(t),
		decimal.RequireFromString("2.50"), decimal.RequireFromString("10.00"))
	require.NoError(t, svc.Add(user, "Sticker A"))
	// simulate a product removed from the catalog after it was added
	store.AddOne(user, "Retired Sticker")

	totals := svc.Totals(user)

	assert.Equal(t, "3.00", totals.Subtotal.StringFixed(2))
	assert.Equal(t, "1× Sticker A", svc.Summary(user))
}

func TestTotals_EmptyCart(t *testing.T) {
	svc := testService(t)

	totals := svc.Totals(user)

	assert.Equal(t, "0.00", totals.Subtotal.StringFixed(2))
	assert.Equal(t, "2.50", totals.Delivery.StringFixed(2), "empty subtotal is under the threshold")
}

func TestSummary_Stable(t *testing.T) {
	svc := testService(t)
	require.NoError(t, svc.Add(user, "Sticker B"))
	require.NoError(t, svc.Add(user, "Sticker A"))
	require.NoError(t, svc.Add(user, "Sticker A"))

	assert.Equal(t, "2× Sticker A, 1× Sticker B", svc.Summary(user))
}
