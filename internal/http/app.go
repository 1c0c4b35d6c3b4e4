// Package http provides HTTP server infrastructure including module
// registration for the widget-facing API.
package http

import (
	"context"

	"github.com/assistchatbot-debug/dnai-sales-sub000/internal/events"
	"github.com/assistchatbot-debug/dnai-sales-sub000/platform/config"
	"github.com/assistchatbot-debug/dnai-sales-sub000/platform/logger"
)

// RouterConfig is the configuration surface the router needs.
type RouterConfig interface {
	config.HTTPConfig
}

// HealthChecker exposes minimal functionality for readiness checks.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// App holds the fully initialized application dependencies. It is populated
// by main.go (the composition root) and passed to the router.
type App struct {
	Config   RouterConfig
	Logger   *logger.Logger
	Health   HealthChecker
	EventBus events.Bus
	Modules  []Module
}
