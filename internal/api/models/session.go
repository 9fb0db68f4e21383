package models

// SessionResponse is returned by POST /v1/sessions.
type SessionResponse struct {
	SessionID string    `json:"sessionId"`
	Token     string    `json:"token"`
	TokenType string    `json:"tokenType"`
	ExpiresAt Timestamp `json:"expiresAt"`
}

// Quote is a random quote for the quotes screen.
type Quote struct {
	Text   string `json:"text"`
	Author string `json:"author"`
}
