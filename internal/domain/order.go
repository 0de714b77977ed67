package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending OrderStatus = "pending"
	OrderStatusPaid    OrderStatus = "paid"
)

// Order is immutable once appended; only the status may change later,
// driven by the payment provider callback.
type Order struct {
	ID        string
	Username  string
	ChatID    ChatID
	Items     string // "2× Sticker A, 1× Sticker B"
	Address   Address
	Status    OrderStatus
	CreatedAt time.Time
	Total     decimal.Decimal
	Currency  string
}

// Totals is the money breakdown of a cart. All values are rounded to
// 2 decimal places, half up.
type Totals struct {
	Subtotal decimal.Decimal
	Delivery decimal.Decimal
	Total    decimal.Decimal
}
