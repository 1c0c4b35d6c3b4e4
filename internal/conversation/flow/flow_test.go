package flow

import (
	"testing"

	"github.com/assistchatbot-debug/dnai-sales-sub000/internal/conversation/domain"
)

func TestNext_CollectingNameOnly(t *testing.T) {
	tr := Next(domain.ContactInfo{}, "Meiramgul", ActionNone)

	if tr.Contact.Name != "Meiramgul" {
		t.Fatalf("name not merged: %+v", tr.Contact)
	}
	if tr.Contact.ConfirmationStatus != domain.ConfirmationNone {
		t.Fatalf("status should stay collecting, got %q", tr.Contact.ConfirmationStatus)
	}
	if tr.Reply != ReplyAI {
		t.Fatalf("reply should be AI continuation, got %d", tr.Reply)
	}
	if tr.UIHint != HintContact {
		t.Fatalf("missing phone should hint the contact affordance, got %q", tr.UIHint)
	}
}

func TestNext_BothFieldsTriggerPrompt(t *testing.T) {
	contact := domain.ContactInfo{Name: "Meiramgul"}
	tr := Next(contact, "+77012345678", ActionNone)

	if tr.Contact.Phone != "+77012345678" {
		t.Fatalf("phone not merged: %+v", tr.Contact)
	}
	if tr.Contact.ConfirmationStatus != domain.ConfirmationPending {
		t.Fatalf("want pending, got %q", tr.Contact.ConfirmationStatus)
	}
	if tr.Reply != ReplyConfirmPrompt {
		t.Fatalf("want confirmation prompt, got %d", tr.Reply)
	}
	if tr.UIHint != HintConfirm {
		t.Fatalf("want confirm hint, got %q", tr.UIHint)
	}
}

func TestNext_ResendingSameInfoDoesNotReprompt(t *testing.T) {
	contact := domain.ContactInfo{
		Name:               "Meiramgul",
		Phone:              "+77012345678",
		ConfirmationStatus: domain.ConfirmationPending,
	}
	tr := Next(contact, "Meiramgul +77012345678", ActionNone)

	if tr.Reply != ReplyAI {
		t.Fatalf("identical contact info must not re-trigger the prompt, got %d", tr.Reply)
	}
	if tr.Contact.ConfirmationStatus != domain.ConfirmationPending {
		t.Fatalf("status should remain pending")
	}
}

func TestNext_AffirmativeConfirms(t *testing.T) {
	contact := domain.ContactInfo{
		Name:               "Meiramgul",
		Phone:              "+77012345678",
		ConfirmationStatus: domain.ConfirmationPending,
	}

	for _, word := range []string{"да", "Да!", "yes", "верно", "ок"} {
		tr := Next(contact, word, ActionNone)
		if !tr.JustConfirmed {
			t.Fatalf("%q should confirm", word)
		}
		if tr.Contact.ConfirmationStatus != domain.ConfirmationConfirmed {
			t.Fatalf("%q: want confirmed, got %q", word, tr.Contact.ConfirmationStatus)
		}
		if tr.Reply != ReplyConfirmed {
			t.Fatalf("%q: want confirmed reply, got %d", word, tr.Reply)
		}
	}
}

func TestNext_AffirmativeWithoutBothFieldsDoesNotConfirm(t *testing.T) {
	contact := domain.ContactInfo{
		Name:               "Meiramgul",
		ConfirmationStatus: domain.ConfirmationPending,
	}
	tr := Next(contact, "да", ActionNone)
	if tr.JustConfirmed {
		t.Fatalf("confirmation requires both fields")
	}
}

func TestNext_PendingNewPhoneOverwritesAndReprompts(t *testing.T) {
	contact := domain.ContactInfo{
		Name:               "Meiramgul",
		Phone:              "+77012345678",
		ConfirmationStatus: domain.ConfirmationPending,
	}
	tr := Next(contact, "+77770001122", ActionNone)

	if tr.Contact.Phone != "+77770001122" {
		t.Fatalf("new phone should overwrite, got %q", tr.Contact.Phone)
	}
	if tr.Contact.ConfirmationStatus != domain.ConfirmationPending {
		t.Fatalf("should remain pending")
	}
	if tr.Reply != ReplyConfirmPrompt {
		t.Fatalf("should re-emit the confirmation prompt")
	}
}

func TestNext_ExplicitConfirmAction(t *testing.T) {
	contact := domain.ContactInfo{
		Name:               "Meiramgul",
		Phone:              "+77012345678",
		ConfirmationStatus: domain.ConfirmationPending,
	}
	tr := Next(contact, "", ActionConfirm)
	if !tr.JustConfirmed || tr.Contact.ConfirmationStatus != domain.ConfirmationConfirmed {
		t.Fatalf("explicit confirm should transition: %+v", tr)
	}
}

func TestNext_ConfirmActionIgnoredWhenIncomplete(t *testing.T) {
	tr := Next(domain.ContactInfo{Name: "Meiramgul"}, "", ActionConfirm)
	if tr.JustConfirmed {
		t.Fatalf("confirm without a phone must be ignored")
	}
}

func TestNext_EditNameCycle(t *testing.T) {
	contact := domain.ContactInfo{
		Name:               "Meiramgul",
		Phone:              "+77012345678",
		ConfirmationStatus: domain.ConfirmationPending,
	}

	tr := Next(contact, "", ActionEditName)
	if tr.Contact.ConfirmationStatus != domain.ConfirmationEditingName {
		t.Fatalf("want editing_name, got %q", tr.Contact.ConfirmationStatus)
	}
	if tr.Reply != ReplyAskName {
		t.Fatalf("want ask-name reply, got %d", tr.Reply)
	}

	tr = Next(tr.Contact, "Aigerim", ActionNone)
	if tr.Contact.Name != "Aigerim" {
		t.Fatalf("edited name not applied, got %q", tr.Contact.Name)
	}
	if tr.Contact.ConfirmationStatus != domain.ConfirmationPending {
		t.Fatalf("edit should return to pending, got %q", tr.Contact.ConfirmationStatus)
	}
	if tr.Reply != ReplyConfirmPrompt {
		t.Fatalf("edit should re-emit the prompt")
	}
}

func TestNext_EditPhoneWithUnparseableTextStays(t *testing.T) {
	contact := domain.ContactInfo{
		Name:               "Meiramgul",
		Phone:              "+77012345678",
		ConfirmationStatus: domain.ConfirmationEditingPhone,
	}
	tr := Next(contact, "завтра позвоню", ActionNone)

	if tr.Contact.ConfirmationStatus != domain.ConfirmationEditingPhone {
		t.Fatalf("failed extraction should leave state unchanged, got %q", tr.Contact.ConfirmationStatus)
	}
	if tr.Reply != ReplyAI {
		t.Fatalf("failed extraction should fall back to the AI reply")
	}
	if tr.Contact.Phone != "+77012345678" {
		t.Fatalf("phone must not change, got %q", tr.Contact.Phone)
	}
}

func TestNext_ConfirmedIsTerminal(t *testing.T) {
	contact := domain.ContactInfo{
		Name:               "Meiramgul",
		Phone:              "+77012345678",
		ConfirmationStatus: domain.ConfirmationConfirmed,
	}
	tr := Next(contact, "да", ActionNone)
	if tr.JustConfirmed {
		t.Fatalf("already-confirmed lead must not confirm again")
	}
	if tr.Reply != ReplyAI {
		t.Fatalf("confirmed leads get ordinary replies")
	}
}
