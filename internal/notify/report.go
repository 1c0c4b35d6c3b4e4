package notify

import (
	"fmt"
	"html"
	"strings"

	"github.com/assistchatbot-debug/dnai-sales-sub000/internal/conversation/domain"
	"github.com/assistchatbot-debug/dnai-sales-sub000/platform/phone"
)

// maxReportExchanges bounds how many history lines appear in the report.
const maxReportExchanges = 20

// Report is the rendered lead-confirmation notification. The same content
// goes to the manager chat and the notification email.
type Report struct {
	CompanyName string
	ContactName string
	Phone       string
	Username    string
	Source      string
	Temperature domain.Temperature
	Summary     string
	History     []domain.HistoryEntry
}

// DisplayPhone returns the E.164 form when the number parses, the raw
// extracted digits otherwise.
func (r Report) DisplayPhone() string {
	return phone.NormalizeE164(r.Phone)
}

func (r Report) Subject() string {
	name := r.ContactName
	if name == "" {
		name = "без имени"
	}
	return fmt.Sprintf("Новый лид (%s): %s", temperatureLabel(r.Temperature), name)
}

// Text renders the plain-text body.
func (r Report) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Новый подтверждённый лид — %s\n\n", temperatureLabel(r.Temperature))
	if r.CompanyName != "" {
		fmt.Fprintf(&b, "Компания: %s\n", r.CompanyName)
	}
	fmt.Fprintf(&b, "Имя: %s\n", r.ContactName)
	fmt.Fprintf(&b, "Телефон: %s\n", r.DisplayPhone())
	if r.Username != "" {
		fmt.Fprintf(&b, "Username: @%s\n", strings.TrimPrefix(r.Username, "@"))
	}
	if r.Source != "" {
		fmt.Fprintf(&b, "Канал: %s\n", r.Source)
	}
	fmt.Fprintf(&b, "\nОценка диалога:\n%s\n", r.Summary)

	if len(r.History) > 0 {
		b.WriteString("\nПоследние сообщения:\n")
		for _, e := range tail(r.History, maxReportExchanges) {
			fmt.Fprintf(&b, "%s: %s\n", senderLabel(e.Sender), e.Text)
		}
	}
	return b.String()
}

// HTML renders the email HTML body.
func (r Report) HTML() string {
	var b strings.Builder
	b.WriteString("<html><body style=\"font-family:Arial,sans-serif;color:#1a1a1a\">")
	fmt.Fprintf(&b, "<h2>Новый подтверждённый лид — %s</h2>", html.EscapeString(temperatureLabel(r.Temperature)))
	b.WriteString("<table cellpadding=\"4\">")
	if r.CompanyName != "" {
		fmt.Fprintf(&b, "<tr><td><b>Компания</b></td><td>%s</td></tr>", html.EscapeString(r.CompanyName))
	}
	fmt.Fprintf(&b, "<tr><td><b>Имя</b></td><td>%s</td></tr>", html.EscapeString(r.ContactName))
	fmt.Fprintf(&b, "<tr><td><b>Телефон</b></td><td>%s</td></tr>", html.EscapeString(r.DisplayPhone()))
	if r.Username != "" {
		fmt.Fprintf(&b, "<tr><td><b>Username</b></td><td>@%s</td></tr>", html.EscapeString(strings.TrimPrefix(r.Username, "@")))
	}
	if r.Source != "" {
		fmt.Fprintf(&b, "<tr><td><b>Канал</b></td><td>%s</td></tr>", html.EscapeString(r.Source))
	}
	b.WriteString("</table>")
	fmt.Fprintf(&b, "<p><b>Оценка диалога:</b><br>%s</p>", html.EscapeString(r.Summary))

	if len(r.History) > 0 {
		b.WriteString("<p><b>Последние сообщения:</b></p><ul>")
		for _, e := range tail(r.History, maxReportExchanges) {
			fmt.Fprintf(&b, "<li><b>%s:</b> %s</li>", senderLabel(e.Sender), html.EscapeString(e.Text))
		}
		b.WriteString("</ul>")
	}
	b.WriteString("</body></html>")
	return b.String()
}

// TelegramHTML renders the manager-chat message using Telegram's limited
// HTML subset.
func (r Report) TelegramHTML() string {
	var b strings.Builder
	fmt.Fprintf(&b, "🔥 <b>Новый лид — %s</b>\n\n", html.EscapeString(temperatureLabel(r.Temperature)))
	fmt.Fprintf(&b, "<b>Имя:</b> %s\n", html.EscapeString(r.ContactName))
	fmt.Fprintf(&b, "<b>Телефон:</b> %s\n", html.EscapeString(r.DisplayPhone()))
	if r.Username != "" {
		fmt.Fprintf(&b, "<b>Username:</b> @%s\n", html.EscapeString(strings.TrimPrefix(r.Username, "@")))
	}
	if r.Source != "" {
		fmt.Fprintf(&b, "<b>Канал:</b> %s\n", html.EscapeString(r.Source))
	}
	fmt.Fprintf(&b, "\n%s\n", html.EscapeString(r.Summary))

	if len(r.History) > 0 {
		b.WriteString("\n<b>Последние сообщения:</b>\n")
		for _, e := range tail(r.History, maxReportExchanges) {
			fmt.Fprintf(&b, "%s: %s\n", senderLabel(e.Sender), html.EscapeString(e.Text))
		}
	}
	return b.String()
}

func temperatureLabel(t domain.Temperature) string {
	switch t {
	case domain.TemperatureHot:
		return "горячий"
	case domain.TemperatureCold:
		return "холодный"
	default:
		return "тёплый"
	}
}

func senderLabel(sender string) string {
	if sender == "bot" {
		return "Бот"
	}
	return "Клиент"
}

func tail(entries []domain.HistoryEntry, n int) []domain.HistoryEntry {
	if len(entries) > n {
		return entries[len(entries)-n:]
	}
	return entries
}
