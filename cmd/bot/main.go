package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/aliskhannn/adaptive-quiz/internal/app"
	"github.com/aliskhannn/adaptive-quiz/internal/config"
	"github.com/aliskhannn/adaptive-quiz/internal/delivery/telegram"
	"github.com/aliskhannn/adaptive-quiz/internal/logger"
	"github.com/aliskhannn/adaptive-quiz/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if err := cfg.RequireTelegram(); err != nil {
		log.Fatal(err)
	}

	lg, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatal(err)
	}

	bot, err := tgbotapi.NewBotAPI(cfg.TelegramAPIToken)
	if err != nil {
		lg.Fatal("init telegram bot", zap.Error(err))
	}

	// Set commands.
	commands := []tgbotapi.BotCommand{
		{
			Command:     "start",
			Description: "Start the bot",
		},
		{
			Command:     "subjects",
			Description: "List subjects and topics",
		},
		{
			Command:     "practice",
			Description: "Get a question (usage: /practice Mathematics [topic])",
		},
		{
			Command:     "report",
			Description: "Show mastery of a subject",
		},
		{
			Command:     "help",
			Description: "Help",
		},
	}

	if _, err = bot.Request(tgbotapi.NewSetMyCommands(commands...)); err != nil {
		lg.Warn("failed to set bot commands", zap.Error(err))
	}

	bot.Debug = cfg.Env != "production"
	lg.Info("authorized on account", zap.String("username", bot.Self.UserName))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, lg)
	if err != nil {
		lg.Fatal("init app", zap.Error(err))
	}
	defer func() { _ = application.Close() }()

	pending := storage.NewPendingStorage(cfg.Store.TTL)

	go func() {
		if err := application.Sweeper(pending).Start(ctx); err != nil {
			lg.Error("eviction sweeper failed", zap.Error(err))
		}
	}()

	handler := telegram.NewHandler(
		bot,
		lg,
		application.Practice,
		application.Reports,
		application.Bank,
		pending,
	)
	if err := handler.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		lg.Error("telegram handler stopped", zap.Error(err))
	}

	lg.Info("shutdown signal received")
}
