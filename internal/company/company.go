// Package company resolves per-tenant channel and AI credentials with
// fallback to process-wide defaults.
package company

// Company is the tenant record as stored. Empty fields mean "use the
// process-wide default".
type Company struct {
	ID                int64
	Name              string
	BotToken          string
	ManagerChatID     int64
	NotificationEmail string
	AIEndpoint        string
	AIKey             string
}

// Defaults holds the process-wide fallback credentials from config.
type Defaults struct {
	BotToken      string
	ManagerChatID int64
	NotifyEmail   string
	AIEndpoint    string
	AIKey         string
}

// Credentials is the effective, fully resolved credential set for one tenant.
type Credentials struct {
	CompanyName   string
	BotToken      string
	ManagerChatID int64
	NotifyEmail   string
	AIEndpoint    string
	AIKey         string
}

// Resolve merges a company record over the defaults, field by field.
// Pure; the empty Company yields exactly the defaults.
func Resolve(c Company, d Defaults) Credentials {
	creds := Credentials{
		CompanyName:   c.Name,
		BotToken:      d.BotToken,
		ManagerChatID: d.ManagerChatID,
		NotifyEmail:   d.NotifyEmail,
		AIEndpoint:    d.AIEndpoint,
		AIKey:         d.AIKey,
	}
	if c.BotToken != "" {
		creds.BotToken = c.BotToken
	}
	if c.ManagerChatID != 0 {
		creds.ManagerChatID = c.ManagerChatID
	}
	if c.NotificationEmail != "" {
		creds.NotifyEmail = c.NotificationEmail
	}
	if c.AIEndpoint != "" {
		creds.AIEndpoint = c.AIEndpoint
	}
	if c.AIKey != "" {
		creds.AIKey = c.AIKey
	}
	return creds
}
