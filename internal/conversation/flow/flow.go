// Package flow implements the confirmation state machine. Next is a pure
// function of the lead's contact document, the latest inbound message and an
// optional explicit UI action, so every transition is unit-testable without
// a database or an oracle.
package flow

import (
	"strings"

	"github.com/assistchatbot-debug/dnai-sales-sub000/internal/conversation/domain"
	"github.com/assistchatbot-debug/dnai-sales-sub000/internal/extract"
)

// Action is an explicit UI affordance selected by the visitor (inline button
// on Telegram, widget button on the web).
type Action string

const (
	ActionNone      Action = ""
	ActionConfirm   Action = "confirm"
	ActionEditName  Action = "edit_name"
	ActionEditPhone Action = "edit_phone"
)

// ReplyKind tells the orchestrator how to produce the outbound reply.
type ReplyKind int

const (
	// ReplyAI means an ordinary continuation generated by the oracle.
	ReplyAI ReplyKind = iota
	// ReplyConfirmPrompt is the deterministic prompt showing both contact
	// fields and the confirm / edit-name / edit-phone choices.
	ReplyConfirmPrompt
	// ReplyAskName asks for a replacement name during an edit.
	ReplyAskName
	// ReplyAskPhone asks for a replacement phone during an edit.
	ReplyAskPhone
	// ReplyConfirmed acknowledges the completed confirmation.
	ReplyConfirmed
)

// UIHint signals the channel adapter which affordance to render.
type UIHint string

const (
	HintNone    UIHint = ""
	HintConfirm UIHint = "confirm"
	HintContact UIHint = "contact"
)

// Transition is the outcome of one state machine step.
type Transition struct {
	Contact        domain.ContactInfo
	Reply          ReplyKind
	JustConfirmed  bool
	ContactChanged bool
	UIHint         UIHint
}

// affirmatives are whole-message confirmation tokens, language-agnostic.
var affirmatives = map[string]struct{}{
	"да": {}, "ага": {}, "угу": {}, "верно": {}, "правильно": {},
	"хорошо": {}, "ок": {}, "окей": {}, "подтверждаю": {},
	"yes": {}, "ok": {}, "okay": {}, "correct": {}, "right": {},
	"confirm": {}, "иә": {},
}

// Next evaluates one inbound message against the current contact document.
// Rules are applied in priority order: explicit actions first, then the
// status-specific handling, then ordinary extraction. A failed extraction is
// never an error; it simply leaves the state unchanged.
func Next(contact domain.ContactInfo, text string, action Action) Transition {
	t := Transition{Contact: contact, Reply: ReplyAI}

	switch action {
	case ActionConfirm:
		if contact.Complete() && contact.ConfirmationStatus != domain.ConfirmationConfirmed {
			return confirm(t)
		}
		// confirm without both fields falls through to ordinary handling
	case ActionEditName:
		t.Contact.ConfirmationStatus = domain.ConfirmationEditingName
		t.Reply = ReplyAskName
		t.ContactChanged = true
		return t
	case ActionEditPhone:
		t.Contact.ConfirmationStatus = domain.ConfirmationEditingPhone
		t.Reply = ReplyAskPhone
		t.ContactChanged = true
		return t
	}

	switch contact.ConfirmationStatus {
	case domain.ConfirmationPending:
		return nextPending(t, text)
	case domain.ConfirmationEditingName:
		if name, ok := extract.Name(text); ok {
			t.Contact.Name = name
			return reprompt(t)
		}
		return t
	case domain.ConfirmationEditingPhone:
		if phone, ok := extract.Phone(text); ok {
			t.Contact.Phone = phone
			return reprompt(t)
		}
		return t
	case domain.ConfirmationConfirmed:
		return t
	default:
		return nextCollecting(t, text)
	}
}

// nextPending handles messages while the confirmation prompt is outstanding.
func nextPending(t Transition, text string) Transition {
	if IsAffirmative(text) && t.Contact.Complete() {
		return confirm(t)
	}

	updated := false
	if name, ok := extract.Name(text); ok && name != t.Contact.Name {
		t.Contact.Name = name
		updated = true
	}
	if phone, ok := extract.Phone(text); ok && phone != t.Contact.Phone {
		t.Contact.Phone = phone
		updated = true
	}
	if updated {
		return reprompt(t)
	}

	// Same values or nothing extractable: keep pending, let the oracle answer.
	t.UIHint = HintConfirm
	return t
}

// nextCollecting runs ordinary extraction and fires the confirmation prompt
// the first time both fields become present.
func nextCollecting(t Transition, text string) Transition {
	update := domain.ContactUpdate{}
	if name, ok := extract.Name(text); ok {
		update.Name = name
	}
	if phone, ok := extract.Phone(text); ok {
		update.Phone = phone
	}

	t.ContactChanged = t.Contact.Merge(update)

	if t.Contact.Complete() {
		t.Contact.ConfirmationStatus = domain.ConfirmationPending
		t.Reply = ReplyConfirmPrompt
		t.ContactChanged = true
		t.UIHint = HintConfirm
		return t
	}

	if t.Contact.Phone == "" {
		t.UIHint = HintContact
	}
	return t
}

func confirm(t Transition) Transition {
	t.Contact.ConfirmationStatus = domain.ConfirmationConfirmed
	t.Reply = ReplyConfirmed
	t.JustConfirmed = true
	t.ContactChanged = true
	return t
}

func reprompt(t Transition) Transition {
	t.Contact.ConfirmationStatus = domain.ConfirmationPending
	t.Reply = ReplyConfirmPrompt
	t.ContactChanged = true
	t.UIHint = HintConfirm
	return t
}

// IsAffirmative reports whether the whole message is a confirmation token.
func IsAffirmative(text string) bool {
	normalized := strings.ToLower(strings.Trim(strings.TrimSpace(text), ".,!?"))
	_, ok := affirmatives[normalized]
	return ok
}
