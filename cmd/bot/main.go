package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/jackrtech/jacks-telebot/internal/cart"
	"github.com/jackrtech/jacks-telebot/internal/catalog"
	"github.com/jackrtech/jacks-telebot/internal/checkout"
	"github.com/jackrtech/jacks-telebot/internal/config"
	"github.com/jackrtech/jacks-telebot/internal/notify"
	"github.com/jackrtech/jacks-telebot/internal/order"
	"github.com/jackrtech/jacks-telebot/internal/payment"
	"github.com/jackrtech/jacks-telebot/internal/repository"
	"github.com/jackrtech/jacks-telebot/internal/router"
	"github.com/jackrtech/jacks-telebot/internal/session"
	"github.com/jackrtech/jacks-telebot/internal/telegram"
	"github.com/jackrtech/jacks-telebot/internal/ui"
	"github.com/jackrtech/jacks-telebot/internal/webhook"
)

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	log.Println("sticker shop bot starting...")

	configPath := getEnv("CONFIG_PATH", "config.json")
	migrationsPath := getEnv("MIGRATIONS_PATH", "./internal/repository/migrations")

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.BotToken == "" {
		log.Fatalf("No Telegram token found. Put it in token.txt or set BOT_TOKEN.")
	}

	repo, err := repository.NewRepository(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer repo.Close()

	if err := repo.RunMigrations(migrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	bot, err := telegram.New(cfg.BotToken)
	if err != nil {
		log.Fatalf("Failed to connect to Telegram: %v", err)
	}
	log.Printf("Authorized as @%s", bot.Username())

	cat := catalog.New(cfg.Products)
	carts := cart.NewService(cart.NewMemoryStore(), cat, cfg.DeliveryFee, cfg.FreeDeliveryThreshold)
	forms := checkout.NewEngine(carts)
	sessions := session.NewManager()
	presenter := ui.NewPresenter(bot)
	render := ui.NewRenderer(cfg.ShopName, cfg.Symbol, cfg.DeliveryFee, cfg.FreeDeliveryThreshold, cat)
	notifier := notify.New(bot, cfg.AdminIDs, cfg.NotifyChannelID, cfg.Symbol)

	var provider payment.Provider
	if cfg.StripeKey != "" {
		provider = payment.NewStripeProvider(cfg.StripeKey)
		log.Println("Stripe checkout enabled")
	} else {
		log.Println("No Stripe key configured; orders will be saved without payment links")
	}

	finalizer := order.NewFinalizer(repo, carts, forms, notifier, provider,
		cfg.ShopName, cfg.Currency, cfg.SuccessURL, cfg.CancelURL)

	core := router.New(cfg, cat, carts, forms, sessions, presenter, render, finalizer, repo, bot)
	callbacks := webhook.NewServer(cfg.ListenAddr, repo, notifier)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return bot.Run(ctx, core) })
	g.Go(func() error { return callbacks.Run(ctx) })

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("Shutting down with error: %v", err)
	}
	log.Println("Sticker shop bot stopped")
}
