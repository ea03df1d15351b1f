package common

import (
	"testing"

	"github.com/ternarybob/arbor"
)

func TestReplaceKeyReferences(t *testing.T) {
	logger := arbor.NewLogger()
	kvMap := map[string]string{
		"anthropic-api-key":      "sk-ant-12345",
		"coinbase-client-secret": "cb-secret-999",
	}

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "single reference",
			input:    "{anthropic-api-key}",
			expected: "sk-ant-12345",
		},
		{
			name:     "reference embedded in text",
			input:    "key={anthropic-api-key};",
			expected: "key=sk-ant-12345;",
		},
		{
			name:     "multiple references",
			input:    "{anthropic-api-key}:{coinbase-client-secret}",
			expected: "sk-ant-12345:cb-secret-999",
		},
		{
			name:     "missing key left unchanged",
			input:    "{unknown-key}",
			expected: "{unknown-key}",
		},
		{
			name:     "no references",
			input:    "plain value",
			expected: "plain value",
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ReplaceKeyReferences(tt.input, kvMap, logger)
			if result != tt.expected {
				t.Errorf("ReplaceKeyReferences(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestReplaceInStruct(t *testing.T) {
	logger := arbor.NewLogger()
	kvMap := map[string]string{
		"anthropic-api-key": "sk-ant-12345",
		"coinbase-secret":   "cb-secret-999",
	}

	config := NewDefaultConfig()
	config.Claude.APIKey = "{anthropic-api-key}"
	config.Exchanges = map[string]ExchangeConfig{
		"coinbase": {
			TokenURL:     "https://api.coinbase.com/oauth/token",
			ClientID:     "client-1",
			ClientSecret: "{coinbase-secret}",
			Scopes:       []string{"wallet:accounts:read"},
		},
	}

	if err := ReplaceInStruct(config, kvMap, logger); err != nil {
		t.Fatalf("ReplaceInStruct failed: %v", err)
	}

	if config.Claude.APIKey != "sk-ant-12345" {
		t.Errorf("Claude.APIKey = %q, want %q", config.Claude.APIKey, "sk-ant-12345")
	}

	coinbase := config.Exchanges["coinbase"]
	if coinbase.ClientSecret != "cb-secret-999" {
		t.Errorf("Exchanges[coinbase].ClientSecret = %q, want %q", coinbase.ClientSecret, "cb-secret-999")
	}
	if coinbase.ClientID != "client-1" {
		t.Errorf("Exchanges[coinbase].ClientID = %q, want %q (should be untouched)", coinbase.ClientID, "client-1")
	}
}

func TestReplaceInStructRequiresPointer(t *testing.T) {
	logger := arbor.NewLogger()

	err := ReplaceInStruct(Config{}, map[string]string{}, logger)
	if err == nil {
		t.Error("expected error for non-pointer argument, got nil")
	}
}

func TestReplaceInStructSliceField(t *testing.T) {
	logger := arbor.NewLogger()
	kvMap := map[string]string{"scope-key": "wallet:read"}

	config := NewDefaultConfig()
	config.Exchanges = map[string]ExchangeConfig{
		"kraken": {
			Scopes: []string{"{scope-key}", "trade:read"},
		},
	}

	if err := ReplaceInStruct(config, kvMap, logger); err != nil {
		t.Fatalf("ReplaceInStruct failed: %v", err)
	}

	scopes := config.Exchanges["kraken"].Scopes
	if scopes[0] != "wallet:read" {
		t.Errorf("Scopes[0] = %q, want %q", scopes[0], "wallet:read")
	}
	if scopes[1] != "trade:read" {
		t.Errorf("Scopes[1] = %q, want %q", scopes[1], "trade:read")
	}
}
