// Package events defines the application's domain events on top of the
// platform event bus.
package events

import (
	"github.com/google/uuid"

	"github.com/assistchatbot-debug/dnai-sales-sub000/internal/conversation/domain"
	"github.com/assistchatbot-debug/dnai-sales-sub000/platform/events"
)

// Re-exported so modules depend on one events package.
type (
	Event       = events.Event
	BaseEvent   = events.BaseEvent
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	Bus         = events.Bus
	InMemoryBus = events.InMemoryBus
)

var (
	NewBaseEvent   = events.NewBaseEvent
	NewInMemoryBus = events.NewInMemoryBus
)

const LeadConfirmedEvent = "lead.confirmed"

// LeadConfirmed fires after a lead wins the confirmation transition and its
// temperature has been persisted. Subscribers must not assume the
// notification has been delivered yet.
type LeadConfirmed struct {
	BaseEvent
	LeadID      uuid.UUID
	CompanyID   int64
	Temperature domain.Temperature
}

func (LeadConfirmed) EventName() string { return LeadConfirmedEvent }
