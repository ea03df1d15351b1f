package assistant

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/ternarybob/tradedeck/internal/common"
	"github.com/ternarybob/tradedeck/internal/interfaces"
)

// geminiProvider answers chat completions through the Google Gemini API
type geminiProvider struct {
	client      *genai.Client
	model       string
	temperature float32
}

func newGeminiProvider(cfg *common.GeminiConfig, kv interfaces.KeyValueStorage) (*geminiProvider, error) {
	ctx := context.Background()

	apiKey, err := common.ResolveAPIKey(ctx, kv, "gemini_api_key", cfg.APIKey)
	if err != nil {
		return nil, fmt.Errorf("gemini api key required (set TRADEDECK_GEMINI_API_KEY or gemini.api_key): %w", err)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = "gemini-3-flash-preview"
	}

	return &geminiProvider{
		client:      client,
		model:       model,
		temperature: cfg.Temperature,
	}, nil
}

func (p *geminiProvider) Complete(ctx context.Context, system string, messages []interfaces.Message) (string, error) {
	config := &genai.GenerateContentConfig{}
	if p.temperature > 0 {
		config.Temperature = genai.Ptr(p.temperature)
	}
	if system != "" {
		config.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	resp, err := p.client.Models.GenerateContent(ctx, p.model, toGeminiContents(messages), config)
	if err != nil {
		return "", err
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("empty response")
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty text in response")
	}
	return text, nil
}

func (p *geminiProvider) Name() string { return "gemini" }

func (p *geminiProvider) Close() error {
	p.client = nil
	return nil
}

// toGeminiContents maps chat history onto Gemini content parts. Unknown
// roles count as user input.
func toGeminiContents(messages []interfaces.Message) []*genai.Content {
	out := make([]*genai.Content, 0, len(messages))
	for _, msg := range messages {
		role := genai.RoleUser
		if msg.Role == "assistant" {
			role = genai.RoleModel
		}
		out = append(out, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{genai.NewPartFromText(msg.Content)},
		})
	}
	return out
}
