package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jackrtech/jacks-telebot/internal/domain"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_CategorizedCatalog(t *testing.T) {
	path := writeConfig(t, `{
		"shop_name": "Jack's Stickers",
		"delivery_fee": "3.00",
		"free_delivery_threshold": "15.00",
		"admin_ids": [1, 99],
		"notify_channel_id": -1001234,
		"catalog": {
			"Animals": {
				"Fox": {"price": "2.50", "emoji": "🦊"},
				"Owl": {"price": "2.00"}
			},
			"Memes": {
				"Doge": {"price": "3.50"}
			}
		}
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Jack's Stickers", cfg.ShopName)
	assert.Equal(t, "GBP", cfg.Currency, "defaults fill the gaps")
	assert.True(t, cfg.DeliveryFee.Equal(decimal.RequireFromString("3.00")))
	assert.True(t, cfg.FreeDeliveryThreshold.Equal(decimal.RequireFromString("15.00")))
	assert.Equal(t, []domain.UserID{1, 99}, cfg.AdminIDs)
	assert.Equal(t, domain.ChatID(-1001234), cfg.NotifyChannelID)

	// ordered: category, then name
	require.Len(t, cfg.Products, 3)
	assert.Equal(t, "Fox", cfg.Products[0].Name)
	assert.Equal(t, "Animals", cfg.Products[0].Category)
	assert.Equal(t, "🦊", cfg.Products[0].Emoji)
	assert.Equal(t, "Owl", cfg.Products[1].Name)
	assert.Equal(t, "Doge", cfg.Products[2].Name)
	assert.Equal(t, "Memes", cfg.Products[2].Category)
}

func TestLoad_FlatCatalogFallsIntoAll(t *testing.T) {
	path := writeConfig(t, `{
		"catalog": {
			"Sticker A": {"price": "3.00"},
			"Sticker B": {"price": "1.25"}
		}
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Len(t, cfg.Products, 2)
	for _, p := range cfg.Products {
		assert.Equal(t, "All", p.Category)
	}
}

func TestLoad_MissingCatalog(t *testing.T) {
	path := writeConfig(t, `{"shop_name": "Empty Shop"}`)

	_, err := Load(path)
	assert.ErrorContains(t, err, "no catalog")
}

func TestLoad_InvalidPrice(t *testing.T) {
	path := writeConfig(t, `{"catalog": {"Bad": {"price": "free"}}}`)

	_, err := Load(path)
	assert.ErrorContains(t, err, "invalid price")
}

func TestLoad_NegativePrice(t *testing.T) {
	path := writeConfig(t, `{"catalog": {"Bad": {"price": "-1.00"}}}`)

	_, err := Load(path)
	assert.ErrorContains(t, err, "negative price")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestLoad_SecretsFromEnv(t *testing.T) {
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("STRIPE_API_KEY", "sk_test_x")
	path := writeConfig(t, `{"catalog": {"Sticker A": {"price": "3.00"}}}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "123:abc", cfg.BotToken)
	assert.Equal(t, "sk_test_x", cfg.StripeKey)
}

func TestIsAdmin(t *testing.T) {
	cfg := &Config{AdminIDs: []domain.UserID{7}}

	assert.True(t, cfg.IsAdmin(7))
	assert.False(t, cfg.IsAdmin(8))
}
