package assistant

import (
	"context"
	"errors"
	"fmt"

	"github.com/ternarybob/tradedeck/internal/interfaces"
)

// ErrDisabled is returned when no provider is configured with an API key
var ErrDisabled = errors.New("assistant is not configured")

// ProviderError wraps a completion failure so handlers can answer 502 with
// the provider named in the body.
type ProviderError struct {
	Provider string `json:"provider"`
	Message  string `json:"message"`
	Err      error  `json:"-"`
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s provider: %s", e.Provider, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Provider generates one chat completion. Implementations exist for
// Anthropic Claude and Google Gemini.
type Provider interface {
	// Complete answers the conversation. Messages are chronological and
	// end with the pending user message; system carries the grounding
	// context block.
	Complete(ctx context.Context, system string, messages []interfaces.Message) (string, error)

	Name() string

	Close() error
}
