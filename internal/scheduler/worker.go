package scheduler

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/assistchatbot-debug/dnai-sales-sub000/internal/conversation/repository"
	"github.com/assistchatbot-debug/dnai-sales-sub000/internal/notify"
	"github.com/assistchatbot-debug/dnai-sales-sub000/platform/config"
	"github.com/assistchatbot-debug/dnai-sales-sub000/platform/logger"
)

// Dispatcher is the delivery capability the worker drives.
type Dispatcher interface {
	Dispatch(ctx context.Context, in notify.Input) error
}

type Worker struct {
	server     *asynq.Server
	mux        *asynq.ServeMux
	repo       *repository.Repository
	dispatcher Dispatcher
	log        *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, pool *pgxpool.Pool, dispatcher Dispatcher, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:     server,
		mux:        mux,
		repo:       repository.New(pool),
		dispatcher: dispatcher,
		log:        log,
	}

	mux.HandleFunc(TaskLeadConfirmedNotify, w.handleLeadConfirmedNotify)

	return w, nil
}

// handleLeadConfirmedNotify loads the confirmed lead with its own DB access
// and hands it to the dispatcher. A lead deleted between confirmation and
// dispatch (session reset) is dropped, not retried.
func (w *Worker) handleLeadConfirmedNotify(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseLeadConfirmedNotifyPayload(task)
	if err != nil {
		return err
	}

	leadID, err := uuid.Parse(payload.LeadID)
	if err != nil {
		return err
	}

	lead, err := w.repo.GetLeadByID(ctx, leadID)
	if errors.Is(err, repository.ErrNotFound) {
		w.log.Warn("lead gone before dispatch", "lead_id", payload.LeadID)
		return nil
	}
	if err != nil {
		return err
	}

	history, err := w.repo.LoadHistory(ctx, leadID, repository.DefaultHistoryLimit)
	if err != nil {
		return err
	}

	return w.dispatcher.Dispatch(ctx, notify.Input{
		CompanyID:   lead.CompanyID,
		LeadID:      lead.ID.String(),
		ContactName: lead.Contact.Name,
		Phone:       lead.Contact.Phone,
		Username:    lead.Contact.Username,
		Source:      lead.Source,
		Temperature: lead.Contact.Temperature,
		Summary:     payload.Summary,
		History:     history,
	})
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}
