// Package notify fans a lead-confirmation report out to the tenant's manager
// chat and notification email. The dispatcher tolerates partial failure and
// has no deduplication memory; exactly-once delivery is the caller's guard.
package notify

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/assistchatbot-debug/dnai-sales-sub000/internal/company"
	"github.com/assistchatbot-debug/dnai-sales-sub000/internal/conversation/domain"
	"github.com/assistchatbot-debug/dnai-sales-sub000/platform/logger"
)

// TelegramSender is the manager-chat delivery capability.
type TelegramSender interface {
	Send(ctx context.Context, token string, chatID int64, htmlText string) error
}

// EmailSender is the email delivery capability.
type EmailSender interface {
	Send(ctx context.Context, to, subject, textBody, htmlBody string) error
}

// CredentialResolver yields the effective per-tenant delivery credentials.
type CredentialResolver interface {
	Resolve(ctx context.Context, companyID int64) (company.Credentials, error)
}

// Input carries everything needed to render and deliver one report.
type Input struct {
	CompanyID   int64
	LeadID      string
	ContactName string
	Phone       string
	Username    string
	Source      string
	Temperature domain.Temperature
	Summary     string
	History     []domain.HistoryEntry
}

type Dispatcher struct {
	resolver CredentialResolver
	telegram TelegramSender
	email    EmailSender
	log      *logger.Logger
}

func NewDispatcher(resolver CredentialResolver, telegram TelegramSender, email EmailSender, log *logger.Logger) *Dispatcher {
	return &Dispatcher{resolver: resolver, telegram: telegram, email: email, log: log}
}

// Dispatch resolves the tenant credentials, renders the report, and sends it
// to both channels concurrently. A single channel failing is logged and
// swallowed; the call fails only when no channel delivered, so a queue retry
// cannot double-send to a channel that already succeeded alongside a dead one.
func (d *Dispatcher) Dispatch(ctx context.Context, in Input) error {
	creds, err := d.resolver.Resolve(ctx, in.CompanyID)
	if err != nil {
		return fmt.Errorf("resolve credentials: %w", err)
	}

	report := Report{
		CompanyName: creds.CompanyName,
		ContactName: in.ContactName,
		Phone:       in.Phone,
		Username:    in.Username,
		Source:      in.Source,
		Temperature: in.Temperature,
		Summary:     in.Summary,
		History:     in.History,
	}

	var telegramErr, emailErr error
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		telegramErr = d.telegram.Send(gctx, creds.BotToken, creds.ManagerChatID, report.TelegramHTML())
		if telegramErr != nil {
			d.log.DispatchError("telegram", in.CompanyID, in.LeadID, telegramErr)
		}
		return nil
	})
	g.Go(func() error {
		emailErr = d.email.Send(gctx, creds.NotifyEmail, report.Subject(), report.Text(), report.HTML())
		if emailErr != nil {
			d.log.DispatchError("email", in.CompanyID, in.LeadID, emailErr)
		}
		return nil
	})
	_ = g.Wait()

	if telegramErr != nil && emailErr != nil {
		return fmt.Errorf("all channels failed: telegram: %v; email: %v", telegramErr, emailErr)
	}
	return nil
}
