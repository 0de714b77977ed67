package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jackrtech/jacks-telebot/internal/catalog"
	"github.com/jackrtech/jacks-telebot/internal/domain"
)

var prompts = map[domain.Field]string{
	domain.FieldName:     "📝 (1/5) Enter your *Full Name*:",
	domain.FieldHouse:    "🏠 (2/5) Enter your *House Name/Number*:",
	domain.FieldStreet:   "📍 (3/5) Enter your *Street Name*:",
	domain.FieldCity:     "🏙️ (4/5) Enter your *City/Town*:",
	domain.FieldPostcode: "📮 (5/5) Enter your *Postcode*:",
}

// Renderer computes display payloads purely from state. It never talks to
// the transport, so rendering is idempotent and side-effect free.
type Renderer struct {
	shopName  string
	symbol    string
	fee       decimal.Decimal
	threshold decimal.Decimal
	catalog   *catalog.Catalog
}

func NewRenderer(shopName, symbol string, fee, threshold decimal.Decimal, cat *catalog.Catalog) *Renderer {
	return &Renderer{
		shopName:  shopName,
		symbol:    symbol,
		fee:       fee,
		threshold: threshold,
		catalog:   cat,
	}
}

func (r *Renderer) Money(d decimal.Decimal) string {
	return r.symbol + d.StringFixed(2)
}

func (r *Renderer) Welcome() Payload {
	return Text(fmt.Sprintf(
		"👋 Welcome to *%s*!\n\n🚚 Delivery %s — *free over %s*\n\nUse /order to browse or /cart to view your basket.",
		r.shopName, r.Money(r.fee), r.Money(r.threshold)))
}

func (r *Renderer) Help() Payload {
	return Text("Commands: /order, /cart, /restart, /help")
}

func (r *Renderer) MenuOutdated() Payload {
	return Text("❌ Menu outdated. Use /order.")
}

// Categories is the top-level browse listing.
func (r *Renderer) Categories() Payload {
	p := Payload{Text: "🛍 *Browse by Category:*\nChoose a category below."}
	for _, c := range r.catalog.Categories() {
		p.Buttons = append(p.Buttons, []Button{{
			Label:  "📁 " + c,
			Action: domain.Action{Kind: domain.ActionBrowseCategory, Payload: c}.Token(),
		}})
	}
	p.Buttons = append(p.Buttons, []Button{{
		Label:  "🛒 Open Cart",
		Action: domain.Action{Kind: domain.ActionOpenCart}.Token(),
	}})
	return p
}

// CategoryProducts lists one category's products as add buttons.
func (r *Renderer) CategoryProducts(category string) Payload {
	p := Payload{Text: fmt.Sprintf("📂 *%s*\nTap an item to add to cart.", category)}
	for _, prod := range r.catalog.InCategory(category) {
		p.Buttons = append(p.Buttons, []Button{{
			Label:  strings.TrimSpace(prod.Emoji + " " + prod.Name),
			Action: domain.Action{Kind: domain.ActionAdd, Payload: prod.Name}.Token(),
		}})
	}
	p.Buttons = append(p.Buttons, []Button{
		{Label: "📂 Categories", Action: domain.Action{Kind: domain.ActionCategories}.Token()},
		{Label: "🛒 Open Cart", Action: domain.Action{Kind: domain.ActionOpenCart}.Token()},
	})
	return p
}

// Cart renders the cart widget. Empty and non-empty carts differ in the
// actions they offer.
func (r *Renderer) Cart(items map[string]int, totals domain.Totals) Payload {
	if len(items) == 0 {
		return Payload{
			Text: "🛒 *Your Cart*\n\n(Empty)\nUse /order to add stickers.",
			Buttons: [][]Button{{
				{Label: "🛍 Continue Shopping", Action: domain.Action{Kind: domain.ActionContinueShopping}.Token()},
			}},
		}
	}

	names := make([]string, 0, len(items))
	for name := range items {
		if _, ok := r.catalog.Lookup(name); ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("🛒 *Your Cart*\n\n")
	count := 0
	for _, name := range names {
		prod, _ := r.catalog.Lookup(name)
		qty := items[name]
		line := prod.Price.Mul(decimal.NewFromInt(int64(qty))).Round(2)
		fmt.Fprintf(&b, "%d× %s — %s\n", qty, strings.TrimSpace(prod.Emoji+" "+name), r.Money(line))
		count += qty
	}

	dline := fmt.Sprintf("🚚 Delivery: %s", r.Money(totals.Delivery))
	if totals.Delivery.IsZero() {
		dline = fmt.Sprintf("🚚 *Free delivery* (over %s)", r.Money(r.threshold))
	}
	fmt.Fprintf(&b, "\nTotal items: %d\nSubtotal: %s\n%s\n💰 *Total: %s*",
		count, r.Money(totals.Subtotal), dline, r.Money(totals.Total))

	var rows [][]Button
	rows = append(rows, []Button{
		{Label: "✅ Checkout", Action: domain.Action{Kind: domain.ActionBeginCheckout}.Token()},
		{Label: "🛍 Continue Shopping", Action: domain.Action{Kind: domain.ActionContinueShopping}.Token()},
		{Label: "🗑 Clear Cart", Action: domain.Action{Kind: domain.ActionClearCart}.Token()},
	})
	return Payload{Text: b.String(), Buttons: rows}
}

// Checkout renders the single editable delivery message: running totals,
// fields captured so far, and either the active prompt or the confirm ask.
func (r *Renderer) Checkout(form *domain.Form, totals domain.Totals) Payload {
	var b strings.Builder
	fmt.Fprintf(&b, "🧾 *Order Summary:*\nSubtotal: %s | Delivery: %s | 💰 Total: *%s*\n\n",
		r.Money(totals.Subtotal), r.Money(totals.Delivery), r.Money(totals.Total))
	b.WriteString("📍 *Delivery Details (so far):*\n")
	for _, f := range domain.DeliveryFields {
		v, ok := form.Answer(f)
		if !ok {
			v = "—"
		}
		fmt.Fprintf(&b, "%s: %s\n", fieldLabel(f), v)
	}

	var rows [][]Button
	if form.Status() == domain.FormReadyToConfirm {
		b.WriteString("\n✅ If everything looks good, press *Confirm* to place your order.")
		rows = append(rows,
			[]Button{{Label: "✅ Confirm", Action: domain.Action{Kind: domain.ActionConfirmDetails}.Token()}},
			[]Button{{Label: "↩️ Back", Action: domain.Action{Kind: domain.ActionEditAddress}.Token()}},
		)
	} else {
		b.WriteString("\n" + prompts[form.CurrentField()])
		if form.Step > 0 {
			rows = append(rows, []Button{{Label: "↩️ Back", Action: domain.Action{Kind: domain.ActionBackStep}.Token()}})
		}
	}
	return Payload{Text: b.String(), Buttons: rows}
}

// PayPrompt is the post-confirmation message, with a pay button when a
// payment URL exists.
func (r *Renderer) PayPrompt(orderID string, total decimal.Decimal, payURL string) Payload {
	if payURL == "" {
		return Text(fmt.Sprintf("✅ Order *%s* saved.\nWe'll contact you to arrange payment.", orderID))
	}
	return Payload{
		Text:    fmt.Sprintf("✅ Order *%s* saved.\n💰 Total: %s\nTap to pay securely:", orderID, r.Money(total)),
		Buttons: [][]Button{{{Label: "💳 Pay Now", URL: payURL}}},
	}
}

func fieldLabel(f domain.Field) string {
	switch f {
	case domain.FieldName:
		return "Name"
	case domain.FieldHouse:
		return "House"
	case domain.FieldStreet:
		return "Street"
	case domain.FieldCity:
		return "City"
	case domain.FieldPostcode:
		return "Postcode"
	}
	return string(f)
}
