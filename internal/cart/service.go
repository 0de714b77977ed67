package cart

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jackrtech/jacks-telebot/internal/catalog"
	"github.com/jackrtech/jacks-telebot/internal/domain"
)

var ErrNotInCart = errors.New("item is not in the cart")

// Service applies cart operations and derives prices. Products that have
// dropped out of the catalog since they were added are silently excluded
// from pricing, never an error.
type Service struct {
	store     Store
	catalog   *catalog.Catalog
	fee       decimal.Decimal
	threshold decimal.Decimal
}

func NewService(store Store, cat *catalog.Catalog, deliveryFee, freeThreshold decimal.Decimal) *Service {
	return &Service{
		store:     store,
		catalog:   cat,
		fee:       deliveryFee,
		threshold: freeThreshold,
	}
}

func (s *Service) Add(user domain.UserID, name string) error {
	if _, ok := s.catalog.Lookup(name); !ok {
		return domain.ErrUnknownProduct
	}
	s.store.AddOne(user, name)
	return nil
}

func (s *Service) Increment(user domain.UserID, name string) error {
	if !s.store.Increment(user, name) {
		return ErrNotInCart
	}
	return nil
}

func (s *Service) Decrement(user domain.UserID, name string) error {
	if !s.store.Decrement(user, name) {
		return ErrNotInCart
	}
	return nil
}

// Remove deletes the entry; removing an absent item is a no-op.
func (s *Service) Remove(user domain.UserID, name string) {
	s.store.Remove(user, name)
}

func (s *Service) Clear(user domain.UserID) {
	s.store.Clear(user)
}

func (s *Service) Destroy(user domain.UserID) {
	s.store.Destroy(user)
}

func (s *Service) Items(user domain.UserID) map[string]int {
	return s.store.Items(user)
}

func (s *Service) IsEmpty(user domain.UserID) bool {
	return len(s.store.Items(user)) == 0
}

// Totals recomputes subtotal, delivery fee and total from the live cart.
// Every money value is rounded to 2 decimal places, half up.
func (s *Service) Totals(user domain.UserID) domain.Totals {
	subtotal := decimal.Zero
	for name, qty := range s.store.Items(user) {
		p, ok := s.catalog.Lookup(name)
		if !ok {
			continue
		}
		line := p.Price.Mul(decimal.NewFromInt(int64(qty))).Round(2)
		subtotal = subtotal.Add(line)
	}
	subtotal = subtotal.Round(2)

	delivery := decimal.Zero.Round(2)
	if subtotal.LessThan(s.threshold) {
		delivery = s.fee
	}
	return domain.Totals{
		Subtotal: subtotal,
		Delivery: delivery,
		Total:    subtotal.Add(delivery).Round(2),
	}
}

// Summary renders the cart as an order line, e.g. "2× Sticker A, 1× Pack".
// Entries no longer in the catalog are skipped to match pricing.
func (s *Service) Summary(user domain.UserID) string {
	items := s.store.Items(user)
	names := make([]string, 0, len(items))
	for name := range items {
		if _, ok := s.catalog.Lookup(name); ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%d× %s", items[name], name))
	}
	return strings.Join(parts, ", ")
}
