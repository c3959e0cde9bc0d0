package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"w3bbot/internal/adminpanel"
	"w3bbot/internal/config"
	"w3bbot/internal/intake"
	"w3bbot/internal/moderation"
	"w3bbot/internal/session"
	"w3bbot/internal/sheets"
	"w3bbot/internal/storage"
	"w3bbot/internal/telegram"
)

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := storage.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatal("failed to open database", zap.String("path", cfg.DatabasePath), zap.Error(err))
	}
	defer store.Close()

	for _, id := range cfg.AdminIDs {
		if err := store.SeedAdmin(ctx, id, "admin", "Admin"); err != nil {
			log.Warn("failed to seed admin", zap.Int64("telegram_id", id), zap.Error(err))
		}
	}
	if len(cfg.AdminIDs) == 0 {
		log.Warn("no admin ids configured, admin features will be unavailable")
	}

	mirror, err := sheets.New(ctx, cfg.GoogleCredentials, cfg.SpreadsheetID, log)
	if err != nil {
		log.Fatal("failed to initialize sheets client", zap.Error(err))
	}
	go func() {
		if err := mirror.EnsureHeaders(context.Background()); err != nil {
			log.Warn("failed to ensure sheet headers", zap.Error(err))
		}
	}()

	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		log.Fatal("failed to create bot api", zap.Error(err))
	}
	api.Debug = cfg.Debug
	log.Info("authorized on telegram", zap.String("account", api.Self.UserName))

	transport := telegram.NewTransport(api)
	machine := &intake.Machine{Channel: cfg.ChannelUsername, RulesURL: cfg.RulesURL}
	registry := session.NewRegistry()
	coordinator := moderation.NewCoordinator(store, mirror, transport, log)
	bot := telegram.New(api, transport, machine, registry, store, coordinator, log)

	panel := adminpanel.NewServer(store, mirror, log)
	httpSrv := &http.Server{Addr: cfg.ListenAddr, Handler: panel.Router()}
	go func() {
		log.Info("admin panel listening", zap.String("addr", cfg.ListenAddr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("admin panel failed", zap.Error(err))
		}
	}()

	go bot.Run(ctx)

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("admin panel shutdown failed", zap.Error(err))
	}
}
