package notify

import (
	"context"
	"fmt"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const telegramSendTimeout = 10 * time.Second

// TelegramChannel delivers manager-chat notifications. A fresh bot client is
// built per send because the token is tenant-specific.
type TelegramChannel struct {
	httpClient *http.Client
}

func NewTelegramChannel() *TelegramChannel {
	return &TelegramChannel{
		httpClient: &http.Client{Timeout: telegramSendTimeout},
	}
}

func (t *TelegramChannel) Send(ctx context.Context, token string, chatID int64, htmlText string) error {
	if token == "" || chatID == 0 {
		return fmt.Errorf("telegram channel not configured")
	}

	bot, err := tgbotapi.NewBotAPIWithClient(token, tgbotapi.APIEndpoint, t.httpClient)
	if err != nil {
		return fmt.Errorf("telegram client: %w", err)
	}

	msg := tgbotapi.NewMessage(chatID, htmlText)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true

	done := make(chan error, 1)
	go func() {
		_, err := bot.Send(msg)
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("telegram send: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("telegram send: %w", ctx.Err())
	}
}
