package notify

import (
	"fmt"
	"log"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jackrtech/jacks-telebot/internal/domain"
	"github.com/jackrtech/jacks-telebot/internal/ui"
)

// Notifier pushes new-order alerts to admins and the optional channel.
// Delivery is best-effort: failures are logged and never surfaced to the
// buyer or rolled back into the order flow.
type Notifier struct {
	tr      ui.Transport
	admins  []domain.UserID
	channel domain.ChatID
	symbol  string
}

func New(tr ui.Transport, admins []domain.UserID, channel domain.ChatID, symbol string) *Notifier {
	return &Notifier{tr: tr, admins: admins, channel: channel, symbol: symbol}
}

func (n *Notifier) money(d decimal.Decimal) string {
	return n.symbol + d.StringFixed(2)
}

// OrderPlaced announces a freshly persisted order.
func (n *Notifier) OrderPlaced(order *domain.Order, totals domain.Totals) {
	var b strings.Builder
	fmt.Fprintf(&b, "📦 *New order!* #%s\n👤 @%s\n\n%s\n\n", order.ID, order.Username, order.Items)
	fmt.Fprintf(&b, "Subtotal: %s\n🚚 Delivery: %s\n💰 Total: *%s*\n\n",
		n.money(totals.Subtotal), n.money(totals.Delivery), n.money(totals.Total))
	fmt.Fprintf(&b, "📍 Address:\n%s\n%s %s\n%s %s",
		order.Address.Name, order.Address.House, order.Address.Street,
		order.Address.City, order.Address.Postcode)

	payload := ui.Text(b.String())
	for _, admin := range n.admins {
		if _, err := n.tr.Send(domain.ChatID(admin), payload); err != nil {
			log.Printf("failed to notify admin %d about order %s: %v", admin, order.ID, err)
		}
	}
	if n.channel != 0 {
		if _, err := n.tr.Send(n.channel, payload); err != nil {
			log.Printf("failed to notify channel about order %s: %v", order.ID, err)
		}
	}
}

// OrderPaid announces a payment callback result to the buyer.
func (n *Notifier) OrderPaid(order *domain.Order) {
	text := fmt.Sprintf("💚 Payment received for order *%s*. Thank you!", order.ID)
	if _, err := n.tr.Send(order.ChatID, ui.Text(text)); err != nil {
		log.Printf("failed to notify buyer about paid order %s: %v", order.ID, err)
	}
}
