package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/assistchatbot-debug/dnai-sales-sub000/internal/company"
	"github.com/assistchatbot-debug/dnai-sales-sub000/internal/conversation/domain"
	"github.com/assistchatbot-debug/dnai-sales-sub000/internal/oracle"
	"github.com/assistchatbot-debug/dnai-sales-sub000/internal/scheduler"
	"github.com/assistchatbot-debug/dnai-sales-sub000/platform/apperr"
	"github.com/assistchatbot-debug/dnai-sales-sub000/platform/logger"
)

// fakeRepo is an in-memory Repository good enough for single-goroutine tests.
type fakeRepo struct {
	lead         domain.Lead
	created      bool
	resets       int
	interactions []domain.Interaction
	confirms     int
	failGet      error
}

func (f *fakeRepo) GetOrCreateLead(_ context.Context, companyID int64, userID, username, source string, reset bool) (domain.Lead, error) {
	if f.failGet != nil {
		return domain.Lead{}, f.failGet
	}
	if reset {
		f.resets++
		f.created = false
		f.interactions = nil
	}
	if !f.created {
		contact := domain.ContactInfo{Username: username}
		external := ""
		if isDigits(userID) {
			external = userID
		} else {
			contact.VisitorID = userID
		}
		f.lead = domain.Lead{
			ID:             uuid.New(),
			CompanyID:      companyID,
			ExternalUserID: external,
			Contact:        contact,
			Status:         domain.StatusNew,
			Source:         source,
		}
		f.created = true
	}
	return f.lead, nil
}

func (f *fakeRepo) AppendInteraction(_ context.Context, leadID uuid.UUID, typ domain.InteractionType, content, outcome string) (domain.Interaction, error) {
	it := domain.Interaction{ID: int64(len(f.interactions) + 1), LeadID: leadID, Type: typ, Content: content, Outcome: outcome}
	f.interactions = append(f.interactions, it)
	return it, nil
}

func (f *fakeRepo) LoadHistory(_ context.Context, _ uuid.UUID, limit int) ([]domain.HistoryEntry, error) {
	var entries []domain.HistoryEntry
	for _, it := range f.interactions {
		if it.Content != "" && it.Content != domain.SentinelConfirmationRequest {
			entries = append(entries, domain.HistoryEntry{Sender: "user", Text: it.Content})
		}
		if it.Outcome != "" {
			entries = append(entries, domain.HistoryEntry{Sender: "bot", Text: it.Outcome})
		}
	}
	if len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	return entries, nil
}

func (f *fakeRepo) MergeContact(_ context.Context, lead *domain.Lead, update domain.ContactUpdate) error {
	if lead.Contact.Merge(update) {
		f.lead.Contact = lead.Contact
	}
	return nil
}

func (f *fakeRepo) UpdateContact(_ context.Context, _ uuid.UUID, contact domain.ContactInfo) error {
	f.lead.Contact = contact
	return nil
}

func (f *fakeRepo) ConfirmLead(_ context.Context, _ uuid.UUID, contact domain.ContactInfo) (bool, error) {
	if f.lead.Contact.ConfirmationStatus == domain.ConfirmationConfirmed {
		return false, nil
	}
	f.lead.Contact = contact
	f.lead.Contact.ConfirmationStatus = domain.ConfirmationConfirmed
	f.lead.Status = domain.StatusConfirmed
	f.confirms++
	return true, nil
}

func (f *fakeRepo) SetTemperature(_ context.Context, _ uuid.UUID, t domain.Temperature) error {
	f.lead.Contact.Temperature = t
	return nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

type fakeOracle struct {
	reply string
	err   error
	calls int
}

func (f *fakeOracle) Complete(context.Context, oracle.Credentials, string, []oracle.Message) (string, error) {
	f.calls++
	return f.reply, f.err
}

type fakeClassifier struct {
	temp  domain.Temperature
	calls int
}

func (f *fakeClassifier) Classify(context.Context, int64, string, oracle.Credentials, []domain.HistoryEntry) (domain.Temperature, string) {
	f.calls++
	return f.temp, "Клиент заинтересован."
}

type fakeScheduler struct {
	payloads []scheduler.LeadConfirmedNotifyPayload
	err      error
}

func (f *fakeScheduler) ScheduleLeadNotification(_ context.Context, p scheduler.LeadConfirmedNotifyPayload) error {
	f.payloads = append(f.payloads, p)
	return f.err
}

type fixedResolver struct{}

func (fixedResolver) Resolve(context.Context, int64) (company.Credentials, error) {
	return company.Credentials{CompanyName: "ТОО Климат"}, nil
}

type env struct {
	repo       *fakeRepo
	oracle     *fakeOracle
	classifier *fakeClassifier
	scheduler  *fakeScheduler
	svc        *Service
}

func newEnv() *env {
	e := &env{
		repo:       &fakeRepo{},
		oracle:     &fakeOracle{reply: "Подскажу с удовольствием!"},
		classifier: &fakeClassifier{temp: domain.TemperatureHot},
		scheduler:  &fakeScheduler{},
	}
	e.svc = New(e.repo, e.oracle, e.classifier, e.scheduler, fixedResolver{}, nil, logger.New("development"))
	return e
}

func send(t *testing.T, e *env, text string) Reply {
	t.Helper()
	reply, err := e.svc.HandleMessage(context.Background(), Inbound{
		CompanyID: 7,
		Channel:   "web",
		UserID:    "v_abc",
		Text:      text,
	})
	if err != nil {
		t.Fatalf("HandleMessage(%q): %v", text, err)
	}
	return reply
}

// The end-to-end web scenario: greeting, name, phone, confirmation. One
// classification, one scheduled dispatch, confirmed lead.
func TestHandleMessage_FullFunnel(t *testing.T) {
	e := newEnv()

	reply := send(t, e, "Здравствуйте, сколько стоит установка кондиционера?")
	if reply.Text != e.oracle.reply {
		t.Fatalf("greeting reply = %q, want oracle continuation", reply.Text)
	}

	send(t, e, "Meiramgul")
	if e.repo.lead.Contact.Name != "Meiramgul" {
		t.Fatalf("name not captured: %+v", e.repo.lead.Contact)
	}

	reply = send(t, e, "+77012345678")
	if !strings.Contains(reply.Text, "Meiramgul") || !strings.Contains(reply.Text, "+77012345678") {
		t.Fatalf("confirmation prompt must include both fields, got %q", reply.Text)
	}
	if reply.UIHint != "confirm" {
		t.Fatalf("ui hint = %q, want confirm", reply.UIHint)
	}
	if e.repo.lead.Contact.ConfirmationStatus != domain.ConfirmationPending {
		t.Fatalf("status = %q, want pending", e.repo.lead.Contact.ConfirmationStatus)
	}

	reply = send(t, e, "да")
	if !reply.Confirmed {
		t.Fatal("affirmative should confirm")
	}
	if e.repo.lead.Status != domain.StatusConfirmed {
		t.Fatalf("lead status = %q, want confirmed", e.repo.lead.Status)
	}
	if e.repo.lead.Contact.Temperature != domain.TemperatureHot {
		t.Fatalf("temperature not persisted: %+v", e.repo.lead.Contact)
	}
	if e.classifier.calls != 1 {
		t.Fatalf("classifier ran %d times, want exactly once", e.classifier.calls)
	}
	if len(e.scheduler.payloads) != 1 {
		t.Fatalf("%d dispatch tasks scheduled, want exactly one", len(e.scheduler.payloads))
	}
	if p := e.scheduler.payloads[0]; p.CompanyID != 7 || p.LeadID != e.repo.lead.ID.String() {
		t.Fatalf("unexpected payload: %+v", p)
	}
}

func TestHandleMessage_SecondAffirmativeDoesNotRedispatch(t *testing.T) {
	e := newEnv()
	send(t, e, "Meiramgul +77012345678")
	send(t, e, "да")
	send(t, e, "да")
	send(t, e, "спасибо, жду звонка")

	if e.classifier.calls != 1 {
		t.Fatalf("classifier ran %d times, want 1", e.classifier.calls)
	}
	if len(e.scheduler.payloads) != 1 {
		t.Fatalf("%d dispatch tasks, want 1", len(e.scheduler.payloads))
	}
	if e.repo.confirms != 1 {
		t.Fatalf("confirmed transition happened %d times, want 1", e.repo.confirms)
	}
}

func TestHandleMessage_RepeatedContactMessageDoesNotReprompt(t *testing.T) {
	e := newEnv()
	first := send(t, e, "Meiramgul +77012345678")
	if !strings.Contains(first.Text, "Meiramgul") {
		t.Fatalf("expected confirmation prompt, got %q", first.Text)
	}

	again := send(t, e, "Meiramgul +77012345678")
	if again.Text != e.oracle.reply {
		t.Fatalf("unchanged contact should get an ordinary reply, got %q", again.Text)
	}
}

func TestHandleMessage_EditPhoneFlow(t *testing.T) {
	e := newEnv()
	send(t, e, "Meiramgul +77012345678")

	reply, err := e.svc.HandleMessage(context.Background(), Inbound{
		CompanyID: 7, Channel: "web", UserID: "v_abc", Action: "edit_phone",
	})
	if err != nil {
		t.Fatalf("edit action: %v", err)
	}
	if !strings.Contains(reply.Text, "номер") {
		t.Fatalf("expected ask-phone prompt, got %q", reply.Text)
	}
	// the synthetic action turn is stored as the sentinel, not visitor text
	last := e.repo.interactions[len(e.repo.interactions)-1]
	if last.Content != domain.SentinelConfirmationRequest {
		t.Fatalf("action turn content = %q, want sentinel", last.Content)
	}

	reply = send(t, e, "87775554433")
	if !strings.Contains(reply.Text, "87775554433") && !strings.Contains(reply.Text, "+77775554433") {
		t.Fatalf("re-prompt should show the replacement phone, got %q", reply.Text)
	}
	if e.repo.lead.Contact.Phone != "87775554433" {
		t.Fatalf("phone not replaced: %+v", e.repo.lead.Contact)
	}
}

func TestHandleMessage_OracleFailureYieldsFallback(t *testing.T) {
	e := newEnv()
	e.oracle.err = errors.New("upstream timeout")

	reply := send(t, e, "расскажите про монтаж")
	if reply.Text == "" || strings.Contains(reply.Text, "timeout") {
		t.Fatalf("fallback must be a neutral sentence, got %q", reply.Text)
	}
	if !strings.Contains(reply.Text, "Попробуйте") {
		t.Fatalf("expected the russian fallback, got %q", reply.Text)
	}
}

func TestHandleMessage_SentinelExcludedFromHistory(t *testing.T) {
	e := newEnv()
	send(t, e, "Meiramgul +77012345678")
	if _, err := e.svc.HandleMessage(context.Background(), Inbound{
		CompanyID: 7, Channel: "web", UserID: "v_abc", Action: "confirm",
	}); err != nil {
		t.Fatalf("confirm action: %v", err)
	}

	history, _ := e.repo.LoadHistory(context.Background(), e.repo.lead.ID, 20)
	for _, h := range history {
		if h.Text == domain.SentinelConfirmationRequest {
			t.Fatalf("sentinel leaked into history: %+v", history)
		}
	}
}

func TestHandleMessage_ResetStartsFresh(t *testing.T) {
	e := newEnv()
	send(t, e, "Meiramgul +77012345678")
	send(t, e, "да")

	reply, err := e.svc.HandleMessage(context.Background(), Inbound{
		CompanyID: 7, Channel: "web", UserID: "v_abc", Text: "привет", Reset: true,
	})
	if err != nil {
		t.Fatalf("reset turn: %v", err)
	}
	if reply.Confirmed {
		t.Fatal("fresh lead cannot be confirmed")
	}
	if e.repo.lead.Contact.Name != "" || e.repo.lead.Contact.Phone != "" {
		t.Fatalf("reset must drop contact fields: %+v", e.repo.lead.Contact)
	}
	if e.repo.resets != 1 {
		t.Fatalf("resets = %d, want 1", e.repo.resets)
	}
}

func TestHandleMessage_EnglishLanguageTemplates(t *testing.T) {
	e := newEnv()
	reply, err := e.svc.HandleMessage(context.Background(), Inbound{
		CompanyID: 7, Channel: "web", UserID: "v_en",
		Text: "John +77012345678", Language: "en",
	})
	if err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	if !strings.Contains(reply.Text, "Is everything correct?") {
		t.Fatalf("expected english confirmation prompt, got %q", reply.Text)
	}
}

// A persistence failure surfaces as a typed unavailable error carrying only
// a generic message; the raw database text stays out of it.
func TestHandleMessage_PersistenceFailureIsTypedAndOpaque(t *testing.T) {
	e := newEnv()
	e.repo.failGet = errors.New("dial tcp 10.0.0.5:5432: connect: connection refused")

	_, err := e.svc.HandleMessage(context.Background(), Inbound{
		CompanyID: 7, Channel: "web", UserID: "v_abc", Text: "привет",
	})
	if err == nil {
		t.Fatal("expected an error when the repository fails")
	}
	var typed *apperr.Error
	if !errors.As(err, &typed) {
		t.Fatalf("error is not typed: %v", err)
	}
	if typed.Kind != apperr.KindUnavailable {
		t.Fatalf("kind = %v, want KindUnavailable", typed.Kind)
	}
	if strings.Contains(typed.Message, "refused") || strings.Contains(typed.Message, "5432") {
		t.Fatalf("message leaks internal detail: %q", typed.Message)
	}
}

func TestHandleMessage_VoiceTurnRecordedWithNotice(t *testing.T) {
	e := newEnv()
	reply, err := e.svc.HandleMessage(context.Background(), Inbound{
		CompanyID: 7, Channel: "telegram", UserID: "515451746", Voice: true,
	})
	if err != nil {
		t.Fatalf("voice turn: %v", err)
	}
	if !strings.Contains(reply.Text, "текстом") {
		t.Fatalf("reply = %q, want the voice notice", reply.Text)
	}
	if len(e.repo.interactions) != 1 {
		t.Fatalf("interactions = %d, want 1", len(e.repo.interactions))
	}
	it := e.repo.interactions[0]
	if it.Type != domain.InteractionVoice {
		t.Fatalf("interaction type = %q, want voice", it.Type)
	}
	if it.Outcome != reply.Text {
		t.Fatalf("outcome = %q, want the notice", it.Outcome)
	}
	if e.oracle.calls != 0 {
		t.Fatalf("oracle calls = %d, want 0 for a voice turn", e.oracle.calls)
	}
}

// A username arriving on a later turn is backfilled absent-only.
func TestHandleMessage_UsernameBackfill(t *testing.T) {
	e := newEnv()
	if _, err := e.svc.HandleMessage(context.Background(), Inbound{
		CompanyID: 7, Channel: "telegram", UserID: "515451746", Text: "Здравствуйте",
	}); err != nil {
		t.Fatalf("first turn: %v", err)
	}
	if e.repo.lead.Contact.Username != "" {
		t.Fatalf("username = %q, want empty after anonymous turn", e.repo.lead.Contact.Username)
	}

	if _, err := e.svc.HandleMessage(context.Background(), Inbound{
		CompanyID: 7, Channel: "telegram", UserID: "515451746", Username: "meirkhan", Text: "Ещё вопрос",
	}); err != nil {
		t.Fatalf("second turn: %v", err)
	}
	if e.repo.lead.Contact.Username != "meirkhan" {
		t.Fatalf("username = %q, want backfilled", e.repo.lead.Contact.Username)
	}

	if _, err := e.svc.HandleMessage(context.Background(), Inbound{
		CompanyID: 7, Channel: "telegram", UserID: "515451746", Username: "someone_else", Text: "И ещё",
	}); err != nil {
		t.Fatalf("third turn: %v", err)
	}
	if e.repo.lead.Contact.Username != "meirkhan" {
		t.Fatalf("username = %q, merge must not overwrite", e.repo.lead.Contact.Username)
	}
}
