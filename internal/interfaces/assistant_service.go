package interfaces

import (
	"context"
)

// Message represents a single message in a chat conversation
type Message struct {
	// Role identifies the message sender: "user" or "assistant"
	Role string `json:"role"`

	// Content contains the text content of the message
	Content string `json:"content"`
}

// AssistantService defines chat completion against a configured LLM
// provider. Implementations exist for Anthropic Claude and Google Gemini;
// the active one is chosen by config.
type AssistantService interface {
	// Chat generates a completion for the user message given prior
	// conversation history in chronological order. The implementation
	// grounds the completion with current portfolio and queue state.
	Chat(ctx context.Context, message string, history []Message) (string, error)

	// Enabled reports whether a provider is configured with an API key
	Enabled() bool

	// Provider returns the active provider name ("claude" or "gemini")
	Provider() string

	// Close releases provider resources
	Close() error
}
