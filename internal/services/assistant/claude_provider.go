package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/ternarybob/tradedeck/internal/common"
	"github.com/ternarybob/tradedeck/internal/interfaces"
)

// claudeProvider answers chat completions through the Anthropic API
type claudeProvider struct {
	client      anthropic.Client
	model       string
	maxTokens   int
	temperature float32
}

func newClaudeProvider(cfg *common.ClaudeConfig, kv interfaces.KeyValueStorage) (*claudeProvider, error) {
	apiKey, err := common.ResolveAPIKey(context.Background(), kv, "anthropic_api_key", cfg.APIKey)
	if err != nil {
		return nil, fmt.Errorf("anthropic api key required (set ANTHROPIC_API_KEY, TRADEDECK_CLAUDE_API_KEY, or claude.api_key): %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = "claude-haiku-3-5-20241022"
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	return &claudeProvider{
		client:      anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:       model,
		maxTokens:   maxTokens,
		temperature: cfg.Temperature,
	}, nil
}

func (p *claudeProvider) Complete(ctx context.Context, system string, messages []interfaces.Message) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: int64(p.maxTokens),
		Messages:  toClaudeMessages(messages),
	}
	if p.temperature > 0 {
		params.Temperature = anthropic.Float(float64(p.temperature))
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	resp, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return "", err
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return "", fmt.Errorf("empty response")
	}
	return text.String(), nil
}

func (p *claudeProvider) Name() string { return "claude" }

func (p *claudeProvider) Close() error { return nil }

// toClaudeMessages maps chat history onto Anthropic message params. Unknown
// roles count as user input.
func toClaudeMessages(messages []interfaces.Message) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case "assistant":
			out = append(out, anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)))
		default:
			out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		}
	}
	return out
}
