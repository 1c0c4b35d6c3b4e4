// Package domain holds the conversation funnel's core types: leads, their
// contact document, and the persisted interaction history.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// ConfirmationStatus tracks the contact-verification sub-dialog. It is
// distinct from the lead's coarse lifecycle Status.
type ConfirmationStatus string

const (
	ConfirmationNone         ConfirmationStatus = ""
	ConfirmationPending      ConfirmationStatus = "pending"
	ConfirmationEditingName  ConfirmationStatus = "editing_name"
	ConfirmationEditingPhone ConfirmationStatus = "editing_phone"
	ConfirmationConfirmed    ConfirmationStatus = "confirmed"
)

// Temperature is the coarse purchase-readiness estimate.
type Temperature string

const (
	TemperatureHot  Temperature = "hot"
	TemperatureWarm Temperature = "warm"
	TemperatureCold Temperature = "cold"
)

// Status is the lead's coarse lifecycle field.
type Status string

const (
	StatusNew       Status = "new"
	StatusConfirmed Status = "confirmed"
	StatusContacted Status = "contacted"
)

// ContactInfo is the semi-structured per-lead contact document. Empty string
// means the field is absent.
type ContactInfo struct {
	Name               string             `json:"name,omitempty"`
	Phone              string             `json:"phone,omitempty"`
	Username           string             `json:"username,omitempty"`
	VisitorID          string             `json:"visitor_id,omitempty"`
	ConfirmationStatus ConfirmationStatus `json:"confirmation_status,omitempty"`
	Temperature        Temperature        `json:"temperature,omitempty"`
}

// Complete reports whether both contact fields needed for confirmation exist.
func (c ContactInfo) Complete() bool {
	return c.Name != "" && c.Phone != ""
}

// ContactUpdate carries extracted contact fields proposed for a lead.
type ContactUpdate struct {
	Name     string
	Phone    string
	Username string
}

// Merge applies an update with absent-only semantics: a field is written only
// when the document does not already hold a value for it. Returns whether
// anything changed. Overwrites during an edit transition are done explicitly
// by the state machine, not here.
func (c *ContactInfo) Merge(update ContactUpdate) bool {
	changed := false
	if c.Name == "" && update.Name != "" {
		c.Name = update.Name
		changed = true
	}
	if c.Phone == "" && update.Phone != "" {
		c.Phone = update.Phone
		changed = true
	}
	if c.Username == "" && update.Username != "" {
		c.Username = update.Username
		changed = true
	}
	return changed
}

// Lead is one visitor's contact-and-intent record for one tenant. At most one
// non-deleted Lead exists per (CompanyID, external identity).
type Lead struct {
	ID             uuid.UUID
	CompanyID      int64
	ExternalUserID string // Telegram numeric id as string; empty for web visitors
	Contact        ContactInfo
	Status         Status
	Source         string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// InteractionType distinguishes typed text from transcribed voice input.
type InteractionType string

const (
	InteractionText  InteractionType = "text"
	InteractionVoice InteractionType = "voice"
)

// SentinelConfirmationRequest marks an interaction whose inbound side was a
// synthetic confirmation trigger rather than visitor text. Excluded when
// reconstructing human-readable history.
const SentinelConfirmationRequest = "[system: request confirmation]"

// Interaction is one persisted user/bot exchange unit.
type Interaction struct {
	ID        int64
	LeadID    uuid.UUID
	Type      InteractionType
	Content   string // inbound text or transcript
	Outcome   string // the engine's reply
	CreatedAt time.Time
}

// HistoryEntry is one line of reconstructed conversation history.
type HistoryEntry struct {
	Sender string // "user" or "bot"
	Text   string
}
