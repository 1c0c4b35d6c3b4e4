// Package classifier derives the hot/warm/cold purchase-readiness label for
// a finished conversation. The AI oracle does the judgement; a keyword parse
// of its narrative picks the label, and any failure degrades to warm.
package classifier

import (
	"context"
	"fmt"
	"strings"

	"github.com/assistchatbot-debug/dnai-sales-sub000/internal/conversation/domain"
	"github.com/assistchatbot-debug/dnai-sales-sub000/internal/oracle"
	"github.com/assistchatbot-debug/dnai-sales-sub000/platform/logger"
)

// FallbackSummary replaces the oracle narrative when classification could
// not run.
const FallbackSummary = "Клиент оставил контактные данные. Автоматическая оценка диалога недоступна."

const systemPrompt = `Ты — аналитик отдела продаж. Тебе дают переписку потенциального клиента с чат-ботом компании.
Оцени готовность клиента к покупке по четырём признакам: скорость и полнота ответов, готовность оставить контактные данные, количество возражений, явные сигналы интереса (вопросы о цене, сроках, условиях).
Напиши короткое резюме диалога (2-4 предложения) и обязательно включи в него одно из слов: "горячий" (готов покупать сейчас), "тёплый" (интерес есть, решение не принято) или "холодный" (интереса почти нет).`

// Oracle is the completion capability the classifier consumes.
type Oracle interface {
	Complete(ctx context.Context, creds oracle.Credentials, system string, history []oracle.Message) (string, error)
}

type Classifier struct {
	oracle Oracle
	log    *logger.Logger
}

func New(o Oracle, log *logger.Logger) *Classifier {
	return &Classifier{oracle: o, log: log}
}

// Classify runs once per lead, at the moment of confirmation. Oracle failure
// or an unparseable narrative yields warm with the stock summary.
func (c *Classifier) Classify(ctx context.Context, companyID int64, leadID string, creds oracle.Credentials, history []domain.HistoryEntry) (domain.Temperature, string) {
	transcript := renderTranscript(history)
	narrative, err := c.oracle.Complete(ctx, creds, systemPrompt, []oracle.Message{
		{Role: "user", Content: transcript},
	})
	if err != nil {
		c.log.OracleError(companyID, leadID, fmt.Errorf("classify: %w", err))
		return domain.TemperatureWarm, FallbackSummary
	}

	return ParseTemperature(narrative), narrative
}

// hot and cold marker stems; the earliest match in the narrative wins,
// anything else means warm.
var (
	hotMarkers  = []string{"горяч", "hot", "ыстық"}
	coldMarkers = []string{"холод", "cold", "суық"}
)

// ParseTemperature scans a narrative for the first hot or cold marker.
// No marker means warm.
func ParseTemperature(text string) domain.Temperature {
	lower := strings.ToLower(text)

	hotAt := earliest(lower, hotMarkers)
	coldAt := earliest(lower, coldMarkers)

	switch {
	case hotAt >= 0 && (coldAt < 0 || hotAt < coldAt):
		return domain.TemperatureHot
	case coldAt >= 0:
		return domain.TemperatureCold
	default:
		return domain.TemperatureWarm
	}
}

func earliest(text string, markers []string) int {
	best := -1
	for _, m := range markers {
		if i := strings.Index(text, m); i >= 0 && (best < 0 || i < best) {
			best = i
		}
	}
	return best
}

func renderTranscript(history []domain.HistoryEntry) string {
	var b strings.Builder
	b.WriteString("Переписка:\n")
	for _, e := range history {
		switch e.Sender {
		case "bot":
			b.WriteString("Бот: ")
		default:
			b.WriteString("Клиент: ")
		}
		b.WriteString(e.Text)
		b.WriteByte('\n')
	}
	return b.String()
}
