package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/assistchatbot-debug/dnai-sales-sub000/internal/classifier"
	"github.com/assistchatbot-debug/dnai-sales-sub000/internal/company"
	"github.com/assistchatbot-debug/dnai-sales-sub000/internal/conversation"
	appevents "github.com/assistchatbot-debug/dnai-sales-sub000/internal/events"
	apphttp "github.com/assistchatbot-debug/dnai-sales-sub000/internal/http"
	"github.com/assistchatbot-debug/dnai-sales-sub000/internal/http/router"
	"github.com/assistchatbot-debug/dnai-sales-sub000/internal/oracle"
	"github.com/assistchatbot-debug/dnai-sales-sub000/internal/scheduler"
	"github.com/assistchatbot-debug/dnai-sales-sub000/platform/config"
	"github.com/assistchatbot-debug/dnai-sales-sub000/platform/db"
	"github.com/assistchatbot-debug/dnai-sales-sub000/platform/events"
	"github.com/assistchatbot-debug/dnai-sales-sub000/platform/logger"
	"github.com/assistchatbot-debug/dnai-sales-sub000/platform/validator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting api server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, "migrations")
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	eventBus := events.NewInMemoryBus(log)
	appevents.RegisterAuditLog(eventBus, log)

	dispatchQueue, closeQueue := initDispatchQueue(cfg, log)
	if closeQueue != nil {
		defer closeQueue()
	}

	val := validator.New()

	oracleClient := oracle.New(cfg)
	tempClassifier := classifier.New(oracleClient, log)
	resolver := company.NewResolver(company.NewRepository(pool), company.Defaults{
		BotToken:      cfg.GetDefaultBotToken(),
		ManagerChatID: cfg.GetDefaultManagerChatID(),
		NotifyEmail:   cfg.GetDefaultNotifyEmail(),
		AIEndpoint:    cfg.GetOracleBaseURL(),
		AIKey:         cfg.GetOracleAPIKey(),
	})

	conversationModule := conversation.NewModule(
		pool, oracleClient, tempClassifier, dispatchQueue, resolver, eventBus,
		cfg.GetSessionSecret(), cfg.GetSessionTTL(), val, log,
	)

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		EventBus: eventBus,
		Modules: []apphttp.Module{
			conversationModule,
		},
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

// initDispatchQueue returns the asynq client, or a nil-safe client when
// redis is not configured (dispatch then silently no-ops, useful in dev).
func initDispatchQueue(cfg config.SchedulerConfig, log *logger.Logger) (*scheduler.Client, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; lead notifications disabled")
		return nil, nil
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize dispatch queue client", "error", err)
		return nil, nil
	}

	return client, func() {
		_ = client.Close()
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
