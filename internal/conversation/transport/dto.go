package transport

// ChatMessageRequest is the public widget message payload. Either Message or
// Action must be present; the handler enforces that.
type ChatMessageRequest struct {
	CompanyID    int64  `json:"companyId" validate:"required,gt=0"`
	Message      string `json:"message" validate:"max=4000"`
	SessionToken string `json:"sessionToken"`
	Action       string `json:"action" validate:"omitempty,oneof=confirm edit_name edit_phone"`
	Language     string `json:"language" validate:"omitempty,oneof=ru en kk"`
}

// ChatResetRequest starts a brand-new session, destroying the prior lead.
type ChatResetRequest struct {
	CompanyID    int64  `json:"companyId" validate:"required,gt=0"`
	SessionToken string `json:"sessionToken"`
	Language     string `json:"language" validate:"omitempty,oneof=ru en kk"`
}

// ChatMessageResponse carries the reply plus the (possibly freshly minted)
// session token. UIHint tells the widget which affordance to draw.
type ChatMessageResponse struct {
	Reply        string `json:"reply"`
	SessionToken string `json:"sessionToken"`
	UIHint       string `json:"uiHint,omitempty"`
	Confirmed    bool   `json:"confirmed,omitempty"`
}
