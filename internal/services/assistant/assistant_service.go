// -------------------------------------------------------------------------
// Last Modified: Monday, 17th August 2026 4:47:02 pm
// Modified By: Bob McAllan
// -------------------------------------------------------------------------

package assistant

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/tradedeck/internal/common"
	"github.com/ternarybob/tradedeck/internal/interfaces"
)

const systemPrompt = `You are the trading dashboard's built-in assistant. Answer questions
about the user's portfolio, wallets, transactions and the background job
queues using the dashboard state below. Be concise. If the state does not
contain the answer, say so instead of guessing. Never invent prices or
queue numbers.`

var _ interfaces.AssistantService = (*Service)(nil)

// Service grounds chat completions with live portfolio and queue state.
// When no provider API key is configured the service stays disabled and
// the chat endpoint answers 404.
type Service struct {
	provider Provider
	monitor  interfaces.MonitorService
	wallets  interfaces.WalletService
	logger   arbor.ILogger
	timeout  time.Duration
	userID   string
	currency string
}

// NewService selects the provider from [llm] default_provider and builds
// it. A missing API key disables the assistant instead of failing startup.
func NewService(cfg *common.Config, kv interfaces.KeyValueStorage, monitor interfaces.MonitorService, wallets interfaces.WalletService, logger arbor.ILogger) *Service {
	s := &Service{
		monitor:  monitor,
		wallets:  wallets,
		logger:   logger,
		timeout:  2 * time.Minute,
		userID:   common.DefaultUserID,
		currency: cfg.MarketData.VsCurrency,
	}
	if s.currency == "" {
		s.currency = "usd"
	}

	providerName := cfg.LLM.DefaultProvider
	if providerName == "" {
		providerName = common.LLMProviderClaude
	}

	var (
		provider   Provider
		err        error
		rawTimeout string
	)
	switch providerName {
	case common.LLMProviderGemini:
		provider, err = newGeminiProvider(&cfg.Gemini, kv)
		rawTimeout = cfg.Gemini.Timeout
	default:
		provider, err = newClaudeProvider(&cfg.Claude, kv)
		rawTimeout = cfg.Claude.Timeout
	}
	if err != nil {
		logger.Info().
			Str("provider", string(providerName)).
			Msg("Assistant disabled, no API key configured")
		return s
	}

	if timeout, perr := time.ParseDuration(rawTimeout); perr == nil && timeout > 0 {
		s.timeout = timeout
	}
	s.provider = provider

	logger.Info().
		Str("provider", provider.Name()).
		Msg("Assistant enabled")
	return s
}

func (s *Service) Enabled() bool {
	return s.provider != nil
}

func (s *Service) Provider() string {
	if s.provider == nil {
		return ""
	}
	return s.provider.Name()
}

// Chat answers the user message, grounding the completion with a snapshot
// of portfolio and queue state assembled at call time.
func (s *Service) Chat(ctx context.Context, message string, history []interfaces.Message) (string, error) {
	if s.provider == nil {
		return "", ErrDisabled
	}
	if strings.TrimSpace(message) == "" {
		return "", errors.New("message is required")
	}

	system := systemPrompt
	if block := buildContextBlock(ctx, s.monitor, s.wallets, s.userID, s.currency); block != "" {
		system = systemPrompt + "\n\n" + block
	}

	messages := make([]interfaces.Message, 0, len(history)+1)
	messages = append(messages, history...)
	messages = append(messages, interfaces.Message{Role: "user", Content: message})

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	started := time.Now()
	text, err := s.provider.Complete(ctx, system, messages)
	if err != nil {
		s.logger.Warn().
			Str("provider", s.provider.Name()).
			Err(err).
			Msg("Assistant completion failed")
		return "", &ProviderError{
			Provider: s.provider.Name(),
			Message:  "completion failed",
			Err:      err,
		}
	}

	s.logger.Debug().
		Str("provider", s.provider.Name()).
		Int("history_len", len(history)).
		Int64("elapsed_ms", time.Since(started).Milliseconds()).
		Msg("Assistant completion served")
	return text, nil
}

func (s *Service) Close() error {
	if s.provider == nil {
		return nil
	}
	return s.provider.Close()
}
