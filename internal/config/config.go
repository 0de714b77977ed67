package config

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/jackrtech/jacks-telebot/internal/domain"
)

// Config is loaded once at startup and never mutated afterwards.
type Config struct {
	ShopName string
	Currency string // ISO code, e.g. "GBP"
	Symbol   string // display symbol, e.g. "£"

	DeliveryFee           decimal.Decimal
	FreeDeliveryThreshold decimal.Decimal

	AdminIDs        []domain.UserID
	NotifyChannelID domain.ChatID // 0 means no channel configured

	SuccessURL string
	CancelURL  string

	ListenAddr string // payment callback / health HTTP server
	DBPath     string

	BotToken  string
	StripeKey string // empty disables payment-intent creation

	Products []domain.Product // ordered: category, then name
}

func (c *Config) IsAdmin(uid domain.UserID) bool {
	for _, id := range c.AdminIDs {
		if id == uid {
			return true
		}
	}
	return false
}

// Load reads config.json plus secret files/env vars. Token files win over
// env vars, matching the deployment layout this bot has always used.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	v.SetDefault("shop_name", "Sticker Shop")
	v.SetDefault("currency", "GBP")
	v.SetDefault("symbol", "£")
	v.SetDefault("delivery_fee", "2.50")
	v.SetDefault("free_delivery_threshold", "10.00")
	v.SetDefault("success_url", "https://example.com/success")
	v.SetDefault("cancel_url", "https://example.com/cancel")
	v.SetDefault("listen_addr", ":8090")
	v.SetDefault("db_path", "shop.db")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	fee, err := decimal.NewFromString(v.GetString("delivery_fee"))
	if err != nil {
		return nil, fmt.Errorf("invalid delivery_fee: %w", err)
	}
	threshold, err := decimal.NewFromString(v.GetString("free_delivery_threshold"))
	if err != nil {
		return nil, fmt.Errorf("invalid free_delivery_threshold: %w", err)
	}

	products, err := parseCatalog(v.Get("catalog"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		ShopName:              v.GetString("shop_name"),
		Currency:              v.GetString("currency"),
		Symbol:                v.GetString("symbol"),
		DeliveryFee:           fee,
		FreeDeliveryThreshold: threshold,
		NotifyChannelID:       domain.ChatID(v.GetInt64("notify_channel_id")),
		SuccessURL:            v.GetString("success_url"),
		CancelURL:             v.GetString("cancel_url"),
		ListenAddr:            v.GetString("listen_addr"),
		DBPath:                v.GetString("db_path"),
		Products:              products,
	}

	for _, id := range v.GetIntSlice("admin_ids") {
		cfg.AdminIDs = append(cfg.AdminIDs, domain.UserID(id))
	}

	cfg.BotToken = firstLine("token.txt")
	if cfg.BotToken == "" {
		cfg.BotToken = strings.TrimSpace(os.Getenv("BOT_TOKEN"))
	}
	cfg.StripeKey = firstLine("stripe.txt")
	if cfg.StripeKey == "" {
		cfg.StripeKey = strings.TrimSpace(os.Getenv("STRIPE_API_KEY"))
	}

	return cfg, nil
}

// parseCatalog accepts both layouts config.json has shipped with: a flat
// product map, or products nested under category keys. Flat catalogs fall
// into the single implicit "All" category.
func parseCatalog(raw any) ([]domain.Product, error) {
	root, ok := raw.(map[string]any)
	if !ok || len(root) == 0 {
		return nil, fmt.Errorf("config has no catalog")
	}

	flat := false
	for _, v := range root {
		if m, ok := v.(map[string]any); ok {
			if _, has := m["price"]; has {
				flat = true
			}
		}
	}
	if flat {
		root = map[string]any{"All": mapOf(root)}
	}

	var products []domain.Product
	for category, items := range root {
		itemMap, ok := items.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("catalog category %q is not a product map", category)
		}
		for name, data := range itemMap {
			entry, ok := data.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("catalog product %q is malformed", name)
			}
			price, err := decimal.NewFromString(fmt.Sprintf("%v", entry["price"]))
			if err != nil {
				return nil, fmt.Errorf("catalog product %q has invalid price: %w", name, err)
			}
			if price.IsNegative() {
				return nil, fmt.Errorf("catalog product %q has negative price", name)
			}
			emoji, _ := entry["emoji"].(string)
			products = append(products, domain.Product{
				Name:     name,
				Category: category,
				Price:    price,
				Emoji:    emoji,
			})
		}
	}

	sort.Slice(products, func(i, j int) bool {
		if products[i].Category != products[j].Category {
			return products[i].Category < products[j].Category
		}
		return products[i].Name < products[j].Name
	})
	return products, nil
}

func mapOf(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// firstLine returns the first line of path if it exists, else "".
func firstLine(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()
	sc := bufio.NewScanner(f)
	if sc.Scan() {
		return strings.TrimSpace(sc.Text())
	}
	return ""
}
