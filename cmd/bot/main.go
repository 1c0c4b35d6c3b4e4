package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/assistchatbot-debug/dnai-sales-sub000/internal/classifier"
	"github.com/assistchatbot-debug/dnai-sales-sub000/internal/company"
	"github.com/assistchatbot-debug/dnai-sales-sub000/internal/conversation/repository"
	"github.com/assistchatbot-debug/dnai-sales-sub000/internal/conversation/service"
	appevents "github.com/assistchatbot-debug/dnai-sales-sub000/internal/events"
	"github.com/assistchatbot-debug/dnai-sales-sub000/internal/oracle"
	"github.com/assistchatbot-debug/dnai-sales-sub000/internal/scheduler"
	"github.com/assistchatbot-debug/dnai-sales-sub000/internal/telegram"
	"github.com/assistchatbot-debug/dnai-sales-sub000/platform/config"
	"github.com/assistchatbot-debug/dnai-sales-sub000/platform/db"
	"github.com/assistchatbot-debug/dnai-sales-sub000/platform/events"
	"github.com/assistchatbot-debug/dnai-sales-sub000/platform/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)

	if cfg.GetDefaultBotToken() == "" {
		panic("TELEGRAM_BOT_TOKEN is required for the bot process")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	bot, err := tgbotapi.NewBotAPI(cfg.GetDefaultBotToken())
	if err != nil {
		log.Error("failed to initialize telegram bot", "error", err)
		panic("failed to initialize telegram bot: " + err.Error())
	}
	log.Info("telegram bot authorized", "username", bot.Self.UserName)

	eventBus := events.NewInMemoryBus(log)
	appevents.RegisterAuditLog(eventBus, log)

	var queue *scheduler.Client
	if cfg.GetRedisURL() != "" {
		queue, err = scheduler.NewClient(cfg)
		if err != nil {
			log.Error("failed to initialize dispatch queue client", "error", err)
			panic("failed to initialize dispatch queue client: " + err.Error())
		}
		defer queue.Close()
	} else {
		log.Warn("REDIS_URL not configured; lead notifications disabled")
	}

	oracleClient := oracle.New(cfg)
	tempClassifier := classifier.New(oracleClient, log)
	resolver := company.NewResolver(company.NewRepository(pool), company.Defaults{
		BotToken:      cfg.GetDefaultBotToken(),
		ManagerChatID: cfg.GetDefaultManagerChatID(),
		NotifyEmail:   cfg.GetDefaultNotifyEmail(),
		AIEndpoint:    cfg.GetOracleBaseURL(),
		AIKey:         cfg.GetOracleAPIKey(),
	})

	svc := service.New(repository.New(pool), oracleClient, tempClassifier, queue, resolver, eventBus, log)
	adapter := telegram.NewAdapter(bot, svc, cfg.GetTelegramCompanyID(), log)

	log.Info("bot long-poll loop starting", "company_id", cfg.GetTelegramCompanyID())
	adapter.Run(ctx)
	log.Info("bot stopped")
}
