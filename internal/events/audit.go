package events

import (
	"context"

	"github.com/assistchatbot-debug/dnai-sales-sub000/platform/logger"
)

// AuditHandler records every confirmed lead in the structured log, so a
// missed notification can be correlated with its confirmation after the fact.
type AuditHandler struct {
	log *logger.Logger
}

func NewAuditHandler(log *logger.Logger) *AuditHandler {
	return &AuditHandler{log: log}
}

func (h *AuditHandler) Handle(_ context.Context, event Event) error {
	confirmed, ok := event.(LeadConfirmed)
	if !ok {
		return nil
	}
	h.log.Info("lead confirmed",
		"lead_id", confirmed.LeadID.String(),
		"company_id", confirmed.CompanyID,
		"temperature", string(confirmed.Temperature),
	)
	return nil
}

// RegisterAuditLog subscribes the audit handler on the bus. Every binary
// that publishes LeadConfirmed registers it at startup.
func RegisterAuditLog(bus Bus, log *logger.Logger) {
	bus.Subscribe(LeadConfirmedEvent, NewAuditHandler(log))
}
