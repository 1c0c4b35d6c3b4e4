package events

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/assistchatbot-debug/dnai-sales-sub000/internal/conversation/domain"
	"github.com/assistchatbot-debug/dnai-sales-sub000/platform/logger"
)

func confirmedEvent() LeadConfirmed {
	return LeadConfirmed{
		BaseEvent:   NewBaseEvent(),
		LeadID:      uuid.New(),
		CompanyID:   7,
		Temperature: domain.TemperatureHot,
	}
}

func TestAuditHandlerAcceptsLeadConfirmed(t *testing.T) {
	h := NewAuditHandler(logger.New("development"))
	if err := h.Handle(context.Background(), confirmedEvent()); err != nil {
		t.Fatalf("Handle: %v", err)
	}
}

func TestAuditHandlerIgnoresOtherEvents(t *testing.T) {
	h := NewAuditHandler(logger.New("development"))
	if err := h.Handle(context.Background(), otherEvent{NewBaseEvent()}); err != nil {
		t.Fatalf("Handle on a foreign event: %v", err)
	}
}

type otherEvent struct{ BaseEvent }

func (otherEvent) EventName() string { return "other" }

// The bus must deliver LeadConfirmed to subscribers registered at startup.
func TestLeadConfirmedDeliveredThroughBus(t *testing.T) {
	bus := NewInMemoryBus(logger.New("development"))
	RegisterAuditLog(bus, logger.New("development"))

	var delivered int
	bus.Subscribe(LeadConfirmedEvent, HandlerFunc(func(context.Context, Event) error {
		delivered++
		return nil
	}))

	if err := bus.PublishSync(context.Background(), confirmedEvent()); err != nil {
		t.Fatalf("PublishSync: %v", err)
	}
	if delivered != 1 {
		t.Fatalf("delivered = %d, want 1", delivered)
	}
}
