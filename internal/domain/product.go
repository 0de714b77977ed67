package domain

import "github.com/shopspring/decimal"

// UserID identifies a shopper across the whole system.
type UserID int64

// ChatID identifies a chat the transport can deliver messages to.
type ChatID int64

type Product struct {
	Name     string
	Category string
	Price    decimal.Decimal
	Emoji    string
}
