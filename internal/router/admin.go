package router

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/jackrtech/jacks-telebot/internal/domain"
	"github.com/jackrtech/jacks-telebot/internal/ui"
)

const broadcastReach = 200 // most recent distinct customer chats

// handleAdmin runs allowlisted commands. Non-admins get silence, matching
// how the shop has always hidden its back office.
func (r *Router) handleAdmin(ctx context.Context, user domain.UserID, chat domain.ChatID, command, args string) {
	if !r.cfg.IsAdmin(user) {
		return
	}

	switch command {
	case "maintenance_on":
		r.maintenance.Store(true)
		r.send(chat, ui.Text("⚙️ Maintenance mode *enabled*."))
	case "maintenance_off":
		r.maintenance.Store(false)
		r.send(chat, ui.Text("✅ Maintenance mode *disabled*."))
	case "last_orders":
		r.lastOrders(ctx, chat)
	case "export_orders":
		r.exportOrders(ctx, chat)
	case "stats":
		r.stats(ctx, chat)
	case "inventory":
		r.inventory(chat)
	case "broadcast":
		r.broadcast(ctx, chat, strings.TrimSpace(args))
	}
}

func (r *Router) lastOrders(ctx context.Context, chat domain.ChatID) {
	orders, err := r.repo.RecentOrders(ctx, 10)
	if err != nil {
		log.Printf("failed to list recent orders: %v", err)
		r.send(chat, ui.Text("⚠️ Could not read the order log."))
		return
	}
	if len(orders) == 0 {
		r.send(chat, ui.Text("No orders yet."))
		return
	}
	var b strings.Builder
	b.WriteString("🧾 *Recent Orders:*\n\n")
	for _, o := range orders {
		fmt.Fprintf(&b, "%s — %s — %s — %s\n", o.ID, o.Username, o.Status, r.render.Money(o.Total))
	}
	r.send(chat, ui.Text(b.String()))
}

func (r *Router) exportOrders(ctx context.Context, chat domain.ChatID) {
	data, err := r.repo.ExportCSV(ctx)
	if err != nil {
		log.Printf("failed to export orders: %v", err)
		r.send(chat, ui.Text("⚠️ Could not export the order log."))
		return
	}
	if err := r.tr.SendDocument(chat, "orders.csv", data); err != nil {
		log.Printf("failed to send order export: %v", err)
		r.send(chat, ui.Text("⚠️ Could not deliver the export."))
	}
}

func (r *Router) stats(ctx context.Context, chat domain.ChatID) {
	count, revenue, err := r.repo.Stats(ctx)
	if err != nil {
		log.Printf("failed to compute stats: %v", err)
		r.send(chat, ui.Text("⚠️ Could not compute stats."))
		return
	}
	r.send(chat, ui.Text(fmt.Sprintf("📈 Total orders: *%d*\n💰 Revenue: *%s*", count, r.render.Money(revenue))))
}

func (r *Router) inventory(chat domain.ChatID) {
	var b strings.Builder
	b.WriteString("*Inventory:*\n")
	for _, category := range r.catalog.Categories() {
		fmt.Fprintf(&b, "\n📂 *%s*\n", category)
		for _, p := range r.catalog.InCategory(category) {
			fmt.Fprintf(&b, "• %s — %s\n", strings.TrimSpace(p.Emoji+" "+p.Name), r.render.Money(p.Price))
		}
	}
	r.send(chat, ui.Text(b.String()))
}

func (r *Router) broadcast(ctx context.Context, chat domain.ChatID, text string) {
	if text == "" {
		r.send(chat, ui.Text("Usage: /broadcast Your message to send to recent customers"))
		return
	}
	chats, err := r.repo.CustomerChats(ctx, broadcastReach)
	if err != nil {
		log.Printf("failed to list customer chats: %v", err)
		r.send(chat, ui.Text("⚠️ Could not read the customer list."))
		return
	}
	sent := 0
	for _, target := range chats {
		if _, err := r.tr.Send(target, ui.Text(text)); err != nil {
			log.Printf("failed to broadcast to chat %d: %v", target, err)
			continue
		}
		sent++
	}
	r.send(chat, ui.Text(fmt.Sprintf("📣 Broadcast sent to %d customer(s).", sent)))
}
