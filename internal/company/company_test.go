package company

import "testing"

func TestResolve_EmptyCompanyYieldsDefaults(t *testing.T) {
	defaults := Defaults{
		BotToken:      "default-token",
		ManagerChatID: 100,
		NotifyEmail:   "sales@default.example",
		AIEndpoint:    "https://api.openai.com/v1",
		AIKey:         "sk-default",
	}

	creds := Resolve(Company{}, defaults)

	if creds.BotToken != "default-token" {
		t.Fatalf("BotToken = %q, want default", creds.BotToken)
	}
	if creds.ManagerChatID != 100 {
		t.Fatalf("ManagerChatID = %d, want 100", creds.ManagerChatID)
	}
	if creds.NotifyEmail != "sales@default.example" {
		t.Fatalf("NotifyEmail = %q, want default", creds.NotifyEmail)
	}
	if creds.AIEndpoint != "https://api.openai.com/v1" || creds.AIKey != "sk-default" {
		t.Fatalf("AI credentials not defaulted: %+v", creds)
	}
}

func TestResolve_CompanyFieldsOverrideIndividually(t *testing.T) {
	defaults := Defaults{
		BotToken:      "default-token",
		ManagerChatID: 100,
		NotifyEmail:   "sales@default.example",
		AIEndpoint:    "https://api.openai.com/v1",
		AIKey:         "sk-default",
	}
	c := Company{
		ID:            7,
		Name:          "ТОО Климат",
		ManagerChatID: 555,
		AIKey:         "sk-tenant",
	}

	creds := Resolve(c, defaults)

	if creds.ManagerChatID != 555 {
		t.Fatalf("ManagerChatID = %d, want tenant's 555", creds.ManagerChatID)
	}
	if creds.AIKey != "sk-tenant" {
		t.Fatalf("AIKey = %q, want tenant's", creds.AIKey)
	}
	// untouched fields keep the defaults
	if creds.BotToken != "default-token" {
		t.Fatalf("BotToken = %q, want default", creds.BotToken)
	}
	if creds.AIEndpoint != "https://api.openai.com/v1" {
		t.Fatalf("AIEndpoint = %q, want default", creds.AIEndpoint)
	}
	if creds.CompanyName != "ТОО Климат" {
		t.Fatalf("CompanyName = %q", creds.CompanyName)
	}
}
