// Package conversation is the lead-qualification bounded context: the store,
// the confirmation state machine, the orchestrator, and the web channel.
package conversation

import (
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/assistchatbot-debug/dnai-sales-sub000/internal/conversation/handler"
	"github.com/assistchatbot-debug/dnai-sales-sub000/internal/conversation/repository"
	"github.com/assistchatbot-debug/dnai-sales-sub000/internal/conversation/service"
	"github.com/assistchatbot-debug/dnai-sales-sub000/internal/conversation/token"
	"github.com/assistchatbot-debug/dnai-sales-sub000/internal/events"
	apphttp "github.com/assistchatbot-debug/dnai-sales-sub000/internal/http"
	"github.com/assistchatbot-debug/dnai-sales-sub000/platform/logger"
	"github.com/assistchatbot-debug/dnai-sales-sub000/platform/validator"
)

// Module is the conversation bounded context implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule wires the conversation module. The oracle, classifier, scheduler
// and credential resolver are passed in because they are shared with the
// Telegram adapter and the worker.
func NewModule(
	pool *pgxpool.Pool,
	o service.Oracle,
	c service.Classifier,
	s service.Scheduler,
	resolver service.CredentialResolver,
	bus events.Bus,
	sessionSecret string,
	sessionTTL time.Duration,
	val *validator.Validator,
	log *logger.Logger,
) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, o, c, s, resolver, bus, log)
	tokens := token.NewManager(sessionSecret, sessionTTL)
	h := handler.New(svc, tokens, val, log)

	return &Module{handler: h, service: svc}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "conversation"
}

// Service exposes the orchestrator for the Telegram adapter.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts the public chat routes with per-IP rate limiting.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	chat := ctx.V1.Group("/chat")
	chat.Use(ctx.ChatRateLimiter.RateLimit())
	m.handler.RegisterRoutes(chat)
}
