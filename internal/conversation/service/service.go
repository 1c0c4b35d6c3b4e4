// Package service hosts the conversation orchestrator, the single entry
// point invoked by the channel adapters for every inbound message.
package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/assistchatbot-debug/dnai-sales-sub000/internal/company"
	"github.com/assistchatbot-debug/dnai-sales-sub000/internal/conversation/domain"
	"github.com/assistchatbot-debug/dnai-sales-sub000/internal/conversation/flow"
	"github.com/assistchatbot-debug/dnai-sales-sub000/internal/conversation/repository"
	"github.com/assistchatbot-debug/dnai-sales-sub000/internal/events"
	"github.com/assistchatbot-debug/dnai-sales-sub000/internal/oracle"
	"github.com/assistchatbot-debug/dnai-sales-sub000/internal/scheduler"
	"github.com/assistchatbot-debug/dnai-sales-sub000/platform/apperr"
	"github.com/assistchatbot-debug/dnai-sales-sub000/platform/logger"
)

// msgServiceUnavailable is the only message a visitor sees when persistence
// fails mid-turn; the underlying error stays in the logs.
const msgServiceUnavailable = "Service temporarily unavailable"

// Repository is the conversation persistence the orchestrator consumes.
type Repository interface {
	GetOrCreateLead(ctx context.Context, companyID int64, userID, username, source string, reset bool) (domain.Lead, error)
	AppendInteraction(ctx context.Context, leadID uuid.UUID, typ domain.InteractionType, content, outcome string) (domain.Interaction, error)
	LoadHistory(ctx context.Context, leadID uuid.UUID, limit int) ([]domain.HistoryEntry, error)
	MergeContact(ctx context.Context, lead *domain.Lead, update domain.ContactUpdate) error
	UpdateContact(ctx context.Context, leadID uuid.UUID, contact domain.ContactInfo) error
	ConfirmLead(ctx context.Context, leadID uuid.UUID, contact domain.ContactInfo) (bool, error)
	SetTemperature(ctx context.Context, leadID uuid.UUID, temperature domain.Temperature) error
}

// Oracle is the chat-completion capability.
type Oracle interface {
	Complete(ctx context.Context, creds oracle.Credentials, system string, history []oracle.Message) (string, error)
}

// Classifier derives the temperature label for a finished conversation.
type Classifier interface {
	Classify(ctx context.Context, companyID int64, leadID string, creds oracle.Credentials, history []domain.HistoryEntry) (domain.Temperature, string)
}

// Scheduler enqueues the background notification dispatch.
type Scheduler interface {
	ScheduleLeadNotification(ctx context.Context, payload scheduler.LeadConfirmedNotifyPayload) error
}

// CredentialResolver yields effective tenant credentials.
type CredentialResolver interface {
	Resolve(ctx context.Context, companyID int64) (company.Credentials, error)
}

// Inbound is one message from any channel adapter.
type Inbound struct {
	CompanyID int64
	Channel   string // source tag: "telegram", "web", or a social channel id
	UserID    string // numeric chat id or opaque visitor token
	Username  string
	Text      string
	Voice     bool // inbound was a transcribed voice message
	Action    flow.Action
	Language  string // "ru" (default), "en", "kk"
	Reset     bool   // destructive new-session request
}

// Reply is what the channel adapter renders back to the visitor.
type Reply struct {
	Text      string
	UIHint    flow.UIHint
	Confirmed bool
}

type Service struct {
	repo       Repository
	oracle     Oracle
	classifier Classifier
	scheduler  Scheduler
	resolver   CredentialResolver
	bus        events.Bus
	log        *logger.Logger
}

func New(repo Repository, o Oracle, c Classifier, s Scheduler, resolver CredentialResolver, bus events.Bus, log *logger.Logger) *Service {
	return &Service{
		repo:       repo,
		oracle:     o,
		classifier: c,
		scheduler:  s,
		resolver:   resolver,
		bus:        bus,
		log:        log,
	}
}

// HandleMessage runs one full turn: load lead and history, step the state
// machine, produce the reply, persist, and schedule the notification when
// this turn won the confirmation transition. Side effects are ordered: the
// Interaction is persisted before dispatch is scheduled, and dispatch is
// scheduled only after the confirmed update committed and affected one row.
func (s *Service) HandleMessage(ctx context.Context, in Inbound) (Reply, error) {
	lang := in.Language
	if lang == "" {
		lang = "ru"
	}

	lead, err := s.repo.GetOrCreateLead(ctx, in.CompanyID, in.UserID, in.Username, in.Channel, in.Reset)
	if err != nil {
		s.log.DatabaseError("get or create lead", err)
		return Reply{}, apperr.Wrap(apperr.KindUnavailable, msgServiceUnavailable, err)
	}

	// Chat identities can gain a username after the lead was first created;
	// the merge is absent-only and a no-op when nothing is missing.
	if in.Username != "" {
		if err := s.repo.MergeContact(ctx, &lead, domain.ContactUpdate{Username: in.Username}); err != nil {
			s.log.DatabaseError("merge contact", err)
		}
	}

	// Voice turns are acknowledged without transcription but still recorded,
	// so the transcript shows that the visitor sent one.
	if in.Voice {
		replyText := voiceReply(lang)
		if _, err := s.repo.AppendInteraction(ctx, lead.ID, domain.InteractionVoice, in.Text, replyText); err != nil {
			s.log.DatabaseError("append interaction", err)
		}
		return Reply{Text: replyText}, nil
	}

	// A bare bootstrap or reset turn carries no text and no action; it only
	// (re)creates the lead and greets.
	if in.Text == "" && in.Action == flow.ActionNone {
		return Reply{Text: greetingReply(lang)}, nil
	}

	history, err := s.repo.LoadHistory(ctx, lead.ID, repository.DefaultHistoryLimit)
	if err != nil {
		s.log.DatabaseError("load history", err)
		history = nil
	}

	tr := flow.Next(lead.Contact, in.Text, in.Action)

	replyText := s.renderReply(ctx, in, lang, lead, tr, history)

	// A lost confirmation race downgrades this turn to a plain acknowledgement.
	won := false
	if tr.JustConfirmed {
		won, err = s.repo.ConfirmLead(ctx, lead.ID, tr.Contact)
		if err != nil {
			s.log.DatabaseError("confirm lead", err)
			return Reply{}, apperr.Wrap(apperr.KindUnavailable, msgServiceUnavailable, err)
		}
	} else if tr.ContactChanged {
		if err := s.repo.UpdateContact(ctx, lead.ID, tr.Contact); err != nil {
			s.log.DatabaseError("update contact", err)
			return Reply{}, apperr.Wrap(apperr.KindUnavailable, msgServiceUnavailable, err)
		}
	}

	content := in.Text
	if content == "" && in.Action != flow.ActionNone {
		content = domain.SentinelConfirmationRequest
	}
	if _, err := s.repo.AppendInteraction(ctx, lead.ID, domain.InteractionText, content, replyText); err != nil {
		s.log.DatabaseError("append interaction", err)
	}

	if won {
		s.finishConfirmed(ctx, in, lead, tr, history)
	}

	return Reply{Text: replyText, UIHint: tr.UIHint, Confirmed: tr.JustConfirmed}, nil
}

func (s *Service) renderReply(ctx context.Context, in Inbound, lang string, lead domain.Lead, tr flow.Transition, history []domain.HistoryEntry) string {
	switch tr.Reply {
	case flow.ReplyConfirmPrompt:
		return confirmationPrompt(lang, tr.Contact.Name, tr.Contact.Phone)
	case flow.ReplyAskName:
		return askNamePrompt(lang)
	case flow.ReplyAskPhone:
		return askPhonePrompt(lang)
	case flow.ReplyConfirmed:
		return confirmedReply(lang)
	default:
		return s.oracleReply(ctx, in, lang, lead, history)
	}
}

// oracleReply asks the tenant's model for an ordinary continuation. The
// rolling history ends with the latest user turn tagged with the language
// code; any failure degrades to the neutral fallback sentence.
func (s *Service) oracleReply(ctx context.Context, in Inbound, lang string, lead domain.Lead, history []domain.HistoryEntry) string {
	creds, err := s.resolver.Resolve(ctx, in.CompanyID)
	if err != nil {
		s.log.OracleError(in.CompanyID, lead.ID.String(), fmt.Errorf("resolve credentials: %w", err))
		return fallbackReply(lang)
	}

	messages := make([]oracle.Message, 0, len(history)+1)
	for _, e := range history {
		role := "user"
		if e.Sender == "bot" {
			role = "assistant"
		}
		messages = append(messages, oracle.Message{Role: role, Content: e.Text})
	}
	messages = append(messages, oracle.Message{
		Role:    "user",
		Content: fmt.Sprintf("[lang:%s] %s", lang, in.Text),
	})

	reply, err := s.oracle.Complete(ctx, oracleCreds(creds), systemPrompt(creds.CompanyName, lang), messages)
	if err != nil {
		s.log.OracleError(in.CompanyID, lead.ID.String(), err)
		return fallbackReply(lang)
	}
	return reply
}

// finishConfirmed runs exactly once per lead, on the turn that won the
// conditional confirmed update: classify, persist the temperature, publish
// the domain event, and enqueue the notification dispatch.
func (s *Service) finishConfirmed(ctx context.Context, in Inbound, lead domain.Lead, tr flow.Transition, history []domain.HistoryEntry) {
	creds, err := s.resolver.Resolve(ctx, in.CompanyID)
	if err != nil {
		s.log.OracleError(in.CompanyID, lead.ID.String(), fmt.Errorf("resolve credentials: %w", err))
		creds = company.Credentials{}
	}

	fullHistory := append(append([]domain.HistoryEntry{}, history...), domain.HistoryEntry{Sender: "user", Text: in.Text})
	temperature, summary := s.classifier.Classify(ctx, in.CompanyID, lead.ID.String(), oracleCreds(creds), fullHistory)

	if err := s.repo.SetTemperature(ctx, lead.ID, temperature); err != nil {
		s.log.DatabaseError("set temperature", err)
	}

	if s.bus != nil {
		s.bus.Publish(ctx, events.LeadConfirmed{
			BaseEvent:   events.NewBaseEvent(),
			LeadID:      lead.ID,
			CompanyID:   in.CompanyID,
			Temperature: temperature,
		})
	}

	err = s.scheduler.ScheduleLeadNotification(ctx, scheduler.LeadConfirmedNotifyPayload{
		LeadID:    lead.ID.String(),
		CompanyID: in.CompanyID,
		Summary:   summary,
	})
	if err != nil {
		s.log.DispatchError("queue", in.CompanyID, lead.ID.String(), err)
	}
}

func oracleCreds(creds company.Credentials) oracle.Credentials {
	return oracle.Credentials{BaseURL: creds.AIEndpoint, APIKey: creds.AIKey}
}
