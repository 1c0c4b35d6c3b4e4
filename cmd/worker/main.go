package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/assistchatbot-debug/dnai-sales-sub000/internal/company"
	"github.com/assistchatbot-debug/dnai-sales-sub000/internal/notify"
	"github.com/assistchatbot-debug/dnai-sales-sub000/internal/scheduler"
	"github.com/assistchatbot-debug/dnai-sales-sub000/platform/config"
	"github.com/assistchatbot-debug/dnai-sales-sub000/platform/db"
	"github.com/assistchatbot-debug/dnai-sales-sub000/platform/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting dispatch worker", "env", cfg.Env, "queue", cfg.GetAsynqQueueName())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	resolver := company.NewResolver(company.NewRepository(pool), company.Defaults{
		BotToken:      cfg.GetDefaultBotToken(),
		ManagerChatID: cfg.GetDefaultManagerChatID(),
		NotifyEmail:   cfg.GetDefaultNotifyEmail(),
		AIEndpoint:    cfg.GetOracleBaseURL(),
		AIKey:         cfg.GetOracleAPIKey(),
	})
	dispatcher := notify.NewDispatcher(resolver, notify.NewTelegramChannel(), notify.NewEmailChannel(cfg), log)

	worker, err := scheduler.NewWorker(cfg, pool, dispatcher, log)
	if err != nil {
		log.Error("failed to initialize worker", "error", err)
		panic("failed to initialize worker: " + err.Error())
	}

	worker.Run(ctx)
	log.Info("worker stopped")
}
