package entities

// Service names the backend that produced a chat response.
type Service string

const (
	ServiceGemini   Service = "gemini"
	ServiceOpenAI   Service = "openai"
	ServiceFallback Service = "fallback"
)

// AuthContext is what the identity layer tells the chat core about the caller.
type AuthContext struct {
	UserID string // empty when the caller is not signed in
}

// Authenticated reports whether a user id is present.
func (a AuthContext) Authenticated() bool {
	return a.UserID != ""
}

// SanitizedMessage is user input that passed validation and may be forwarded to vendors.
type SanitizedMessage struct {
	Text string
}

// ChatResponse is returned to the caller of POST /api/chat.
type ChatResponse struct {
	Response         string  `json:"response"`
	HasCrisisContent bool    `json:"hasCrisisContent"`
	Service          Service `json:"service"`
}
