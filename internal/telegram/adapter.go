// Package telegram is the long-poll channel adapter mapping Telegram
// messages and callback queries onto the conversation orchestrator.
package telegram

import (
	"context"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/assistchatbot-debug/dnai-sales-sub000/internal/conversation/flow"
	"github.com/assistchatbot-debug/dnai-sales-sub000/internal/conversation/service"
	"github.com/assistchatbot-debug/dnai-sales-sub000/platform/logger"
)

const (
	callbackConfirm   = "confirm"
	callbackEditName  = "edit_name"
	callbackEditPhone = "edit_phone"
)

// Orchestrator is the conversation entry point the adapter drives.
type Orchestrator interface {
	HandleMessage(ctx context.Context, in service.Inbound) (service.Reply, error)
}

type Adapter struct {
	bot       *tgbotapi.BotAPI
	svc       Orchestrator
	companyID int64
	log       *logger.Logger
}

func NewAdapter(bot *tgbotapi.BotAPI, svc Orchestrator, companyID int64, log *logger.Logger) *Adapter {
	return &Adapter{bot: bot, svc: svc, companyID: companyID, log: log}
}

// Run consumes the update channel until the context is cancelled.
func (a *Adapter) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := a.bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			a.bot.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			a.handleUpdate(ctx, update)
		}
	}
}

func (a *Adapter) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		a.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		a.handleMessage(ctx, update.Message)
	}
}

func (a *Adapter) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	in := service.Inbound{
		CompanyID: a.companyID,
		Channel:   "telegram",
		UserID:    strconv.FormatInt(chatID, 10),
		Username:  msg.From.UserName,
		Language:  language(msg.From),
	}

	switch {
	case msg.Voice != nil || msg.Audio != nil:
		// transcription is not wired; the orchestrator acknowledges and
		// records the voice turn
		in.Voice = true
	case msg.Contact != nil:
		in.Text = msg.Contact.PhoneNumber
	case msg.Text == "/start":
		in.Text = ""
	case msg.Text == "/new":
		in.Text = ""
		in.Reset = true
	default:
		in.Text = msg.Text
	}

	reply, err := a.svc.HandleMessage(ctx, in)
	if err != nil {
		a.log.Error("telegram turn failed", "chat_id", chatID, "error", err)
		return
	}
	a.sendText(chatID, reply.Text, reply.UIHint)
}

func (a *Adapter) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	if _, err := a.bot.Request(tgbotapi.NewCallback(cq.ID, "")); err != nil {
		a.log.Warn("callback ack failed", "error", err)
	}
	if cq.Message == nil {
		return
	}

	var action flow.Action
	switch cq.Data {
	case callbackConfirm:
		action = flow.ActionConfirm
	case callbackEditName:
		action = flow.ActionEditName
	case callbackEditPhone:
		action = flow.ActionEditPhone
	default:
		return
	}

	chatID := cq.Message.Chat.ID
	reply, err := a.svc.HandleMessage(ctx, service.Inbound{
		CompanyID: a.companyID,
		Channel:   "telegram",
		UserID:    strconv.FormatInt(chatID, 10),
		Username:  cq.From.UserName,
		Action:    action,
		Language:  language(cq.From),
	})
	if err != nil {
		a.log.Error("telegram action failed", "chat_id", chatID, "error", err)
		return
	}
	a.sendText(chatID, reply.Text, reply.UIHint)
}

func (a *Adapter) sendText(chatID int64, text string, hint flow.UIHint) {
	if text == "" {
		return
	}
	msg := tgbotapi.NewMessage(chatID, text)
	switch hint {
	case flow.HintConfirm:
		msg.ReplyMarkup = confirmKeyboard()
	case flow.HintContact:
		msg.ReplyMarkup = contactKeyboard()
	}
	if _, err := a.bot.Send(msg); err != nil {
		a.log.Error("telegram send failed", "chat_id", chatID, "error", err)
	}
}

func confirmKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Всё верно", callbackConfirm),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✏️ Изменить имя", callbackEditName),
			tgbotapi.NewInlineKeyboardButtonData("📱 Изменить телефон", callbackEditPhone),
		),
	)
}

func contactKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButtonContact("📱 Поделиться номером"),
		),
	)
	kb.OneTimeKeyboard = true
	kb.ResizeKeyboard = true
	return kb
}

func language(user *tgbotapi.User) string {
	if user == nil {
		return ""
	}
	switch user.LanguageCode {
	case "en", "kk":
		return user.LanguageCode
	default:
		return "ru"
	}
}

