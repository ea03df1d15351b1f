package common

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/tradedeck/internal/interfaces"
)

// Config represents the application configuration
type Config struct {
	Environment string           `toml:"environment"` // "development" or "production"
	Server      ServerConfig     `toml:"server"`
	Queue       QueueConfig      `toml:"queue"`
	Upstream    UpstreamConfig   `toml:"upstream"`
	MarketData  MarketDataConfig `toml:"marketdata"`
	Storage     StorageConfig    `toml:"storage"`
	Logging     LoggingConfig    `toml:"logging"`
	WebSocket   WebSocketConfig  `toml:"websocket"`
	Alerts      AlertsConfig     `toml:"alerts"`
	Reports     ReportsConfig    `toml:"reports"`
	Widgets     WidgetsConfig    `toml:"widgets"`
	Gemini      GeminiConfig     `toml:"gemini"`
	Claude      ClaudeConfig     `toml:"claude"`
	LLM         LLMConfig        `toml:"llm"`

	// Exchanges maps an exchange name (e.g. "coinbase") to its OAuth2 endpoints.
	// Used by the credential service to refresh oauth-kind credentials.
	Exchanges map[string]ExchangeConfig `toml:"exchanges"`
}

type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

// QueueConfig controls polling of the upstream queue engine
type QueueConfig struct {
	PollInterval     string `toml:"poll_interval"`     // e.g., "10s" - how often stats are polled
	SampleEvery      int    `toml:"sample_every"`      // append one historical point every N successful polls
	HistoryWindow    string `toml:"history_window"`    // e.g., "24h" - window served by historical-stats
	HistoryRetention string `toml:"history_retention"` // e.g., "168h" - points older than this are pruned
	DefaultStatus    string `toml:"default_status"`    // job listing status when none requested
}

// UpstreamConfig points at the queue engine bridge (BullMQ-style REST)
type UpstreamConfig struct {
	BaseURL        string        `toml:"base_url"`        // e.g., "http://localhost:3001"
	RequestTimeout time.Duration `toml:"request_timeout"` // HTTP request timeout
	RateLimit      time.Duration `toml:"rate_limit"`      // Minimum time between requests
}

// MarketDataConfig points at the spot price API (CoinGecko-compatible)
type MarketDataConfig struct {
	BaseURL        string        `toml:"base_url"`        // e.g., "https://api.coingecko.com/api/v3"
	RequestTimeout time.Duration `toml:"request_timeout"` // HTTP request timeout
	RateLimit      time.Duration `toml:"rate_limit"`      // Minimum time between requests
	CacheTTL       time.Duration `toml:"cache_ttl"`       // Spot price cache freshness
	VsCurrency     string        `toml:"vs_currency"`     // Quote currency for valuations (default: "usd")
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`             // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
}

type LoggingConfig struct {
	Level         string   `toml:"level"`           // "debug", "info", "warn", "error"
	Format        string   `toml:"format"`          // "json" or "text"
	Output        []string `toml:"output"`          // "stdout", "file"
	TimeFormat    string   `toml:"time_format"`     // Time format for logs (default: "15:04:05.000")
	MinEventLevel string   `toml:"min_event_level"` // Minimum log level to publish as events to UI
}

// WebSocketConfig contains configuration for WebSocket broadcasting
type WebSocketConfig struct {
	MinLevel        string   `toml:"min_level"`        // Minimum log level to broadcast ("debug", "info", "warn", "error")
	ExcludePatterns []string `toml:"exclude_patterns"` // Log message patterns to exclude from broadcasting
	// Whitelist of event types to broadcast via WebSocket. Empty list allows all events.
	// Example: ["queue.stats", "alert.triggered"]
	AllowedEvents []string `toml:"allowed_events"`
	// Throttle intervals for high-frequency events. Map of event type to duration string.
	// Example: {"queue.stats": "1s", "log": "500ms"}
	ThrottleIntervals map[string]string `toml:"throttle_intervals"`
}

// AlertsConfig controls periodic price alert evaluation
type AlertsConfig struct {
	Enabled  bool   `toml:"enabled"`
	Schedule string `toml:"schedule"` // cron expression or "@every 30s" descriptor
}

// ReportsConfig controls the scheduled portfolio report email
type ReportsConfig struct {
	Enabled   bool   `toml:"enabled"`
	Schedule  string `toml:"schedule"`  // cron expression, e.g. "0 7 * * *"
	Recipient string `toml:"recipient"` // destination address for scheduled reports
}

// WidgetsConfig contains configuration for the widget catalog
type WidgetsConfig struct {
	CatalogPath string `toml:"catalog_path"` // Optional YAML file overriding the embedded catalog
}

// GeminiConfig contains Google Gemini API configuration for the assistant
type GeminiConfig struct {
	APIKey      string  `toml:"api_key"`     // Google Gemini API key
	Model       string  `toml:"model"`       // Model for assistant operations (default: "gemini-3-flash-preview")
	Timeout     string  `toml:"timeout"`     // Operation timeout as duration string (default: "2m")
	RateLimit   string  `toml:"rate_limit"`  // Rate limit duration string (default: "4s" for 15 RPM)
	Temperature float32 `toml:"temperature"` // Chat completion temperature (default: 0.7)
}

// ClaudeConfig contains Anthropic Claude API configuration for the assistant
type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`     // Anthropic API key
	Model       string  `toml:"model"`       // Model for assistant operations (default: "claude-haiku-3-5-20241022")
	MaxTokens   int     `toml:"max_tokens"`  // Maximum tokens in response (default: 4096)
	Timeout     string  `toml:"timeout"`     // Operation timeout as duration string (default: "2m")
	RateLimit   string  `toml:"rate_limit"`  // Rate limit duration string (default: "1s")
	Temperature float32 `toml:"temperature"` // Completion temperature (default: 0.7)
}

// LLMProvider represents the AI provider type
type LLMProvider string

const (
	// LLMProviderGemini uses Google Gemini API
	LLMProviderGemini LLMProvider = "gemini"
	// LLMProviderClaude uses Anthropic Claude API
	LLMProviderClaude LLMProvider = "claude"
)

// LLMConfig contains unified configuration for all AI providers
type LLMConfig struct {
	DefaultProvider LLMProvider `toml:"default_provider"` // "gemini" or "claude" (default: "claude")
}

// ExchangeConfig describes one exchange's OAuth2 endpoints
type ExchangeConfig struct {
	AuthURL      string   `toml:"auth_url"`
	TokenURL     string   `toml:"token_url"`
	ClientID     string   `toml:"client_id"`
	ClientSecret string   `toml:"client_secret"`
	RedirectURL  string   `toml:"redirect_url"`
	Scopes       []string `toml:"scopes"`
}

// NewDefaultConfig creates a configuration with default values
// Technical parameters are hardcoded here for production stability.
// Only user-facing settings should be exposed in tradedeck.toml.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development", // Default to development mode
		Server: ServerConfig{
			Port: 8080,
			Host: "localhost",
		},
		Queue: QueueConfig{
			PollInterval:     "10s",
			SampleEvery:      5,      // one historical point per five successful polls
			HistoryWindow:    "24h",  // window served to the dashboard
			HistoryRetention: "168h", // 7 days
			DefaultStatus:    "waiting",
		},
		Upstream: UpstreamConfig{
			BaseURL:        "http://localhost:3001",
			RequestTimeout: 15 * time.Second,
			RateLimit:      100 * time.Millisecond,
		},
		MarketData: MarketDataConfig{
			BaseURL:        "https://api.coingecko.com/api/v3",
			RequestTimeout: 15 * time.Second,
			RateLimit:      2 * time.Second, // public tier is ~30 req/min
			CacheTTL:       60 * time.Second,
			VsCurrency:     "usd",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data",
			},
		},
		Logging: LoggingConfig{
			Level:         "info",                     // Info level for production (debug|info|warn|error)
			Format:        "text",                     // Human-readable text format (text|json)
			Output:        []string{"stdout", "file"}, // Log to both console and file
			MinEventLevel: "info",                     // Publish info and above as events to UI
		},
		WebSocket: WebSocketConfig{
			MinLevel: "info", // Default: info level and above
			ExcludePatterns: []string{
				"WebSocket client connected",
				"WebSocket client disconnected",
				"HTTP request",
				"HTTP response",
				"Publishing Event",
			},
			// Empty AllowedEvents allows all events
			AllowedEvents: []string{},
			// Throttle high-frequency events to prevent WebSocket flooding
			ThrottleIntervals: map[string]string{
				"queue.stats": "1s",    // Max 1 stats push per second
				"log":         "500ms", // Max 2 log pushes per second
			},
		},
		Alerts: AlertsConfig{
			Enabled:  true,
			Schedule: "@every 30s",
		},
		Reports: ReportsConfig{
			Enabled:  false,       // Disabled by default - user must configure a recipient
			Schedule: "0 7 * * *", // Daily at 07:00
		},
		Widgets: WidgetsConfig{
			CatalogPath: "", // Empty = embedded catalog
		},
		Gemini: GeminiConfig{
			APIKey:      "",                       // User must provide API key (no fallback)
			Model:       "gemini-3-flash-preview", // Model for assistant operations
			Timeout:     "2m",
			RateLimit:   "4s", // Default to 4s (15 RPM) for free tier
			Temperature: 0.7,
		},
		Claude: ClaudeConfig{
			APIKey:      "",                          // User must provide API key (ANTHROPIC_API_KEY or config)
			Model:       "claude-haiku-3-5-20241022", // Model for assistant operations
			MaxTokens:   4096,
			Timeout:     "2m",
			RateLimit:   "1s",
			Temperature: 0.7,
		},
		LLM: LLMConfig{
			DefaultProvider: LLMProviderClaude,
		},
		Exchanges: map[string]ExchangeConfig{},
	}
}

// LoadFromFile loads configuration with priority: default -> file -> env -> CLI
// Priority system: CLI flags > Environment variables > Config file > Defaults
// kvStorage can be nil (replacement will be skipped)
func LoadFromFile(kvStorage interfaces.KeyValueStorage, path string) (*Config, error) {
	if path == "" {
		return LoadFromFiles(kvStorage)
	}
	return LoadFromFiles(kvStorage, path)
}

// LoadFromFiles loads configuration from multiple files with priority: default -> file1 -> file2 -> ... -> env -> CLI
// Later files override earlier files.
// kvStorage can be nil (replacement will be skipped)
func LoadFromFiles(kvStorage interfaces.KeyValueStorage, paths ...string) (*Config, error) {
	// Start with defaults
	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier files)
	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		err = toml.Unmarshal(data, config)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	// Perform {key-name} replacement if KV storage is available
	if kvStorage != nil {
		ctx := context.Background()
		kvMap, err := kvStorage.GetAll(ctx)
		if err != nil {
			logger := arbor.NewLogger()
			logger.Warn().Err(err).Msg("Failed to fetch KV map for config replacement, skipping replacement")
		} else {
			logger := arbor.NewLogger()
			if err := ReplaceInStruct(config, kvMap, logger); err != nil {
				logger.Warn().Err(err).Msg("Failed to replace key references in config")
			}
		}
	}

	// Apply environment variables (overrides all file configs and replacements)
	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	// Environment configuration (highest priority: TRADEDECK_ENV, fallback: GO_ENV)
	if env := os.Getenv("TRADEDECK_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	// Server configuration
	if port := os.Getenv("TRADEDECK_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("TRADEDECK_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	// Queue configuration
	if pollInterval := os.Getenv("TRADEDECK_QUEUE_POLL_INTERVAL"); pollInterval != "" {
		config.Queue.PollInterval = pollInterval
	}
	if sampleEvery := os.Getenv("TRADEDECK_QUEUE_SAMPLE_EVERY"); sampleEvery != "" {
		if n, err := strconv.Atoi(sampleEvery); err == nil && n > 0 {
			config.Queue.SampleEvery = n
		}
	}
	if historyWindow := os.Getenv("TRADEDECK_QUEUE_HISTORY_WINDOW"); historyWindow != "" {
		config.Queue.HistoryWindow = historyWindow
	}
	if historyRetention := os.Getenv("TRADEDECK_QUEUE_HISTORY_RETENTION"); historyRetention != "" {
		config.Queue.HistoryRetention = historyRetention
	}
	if defaultStatus := os.Getenv("TRADEDECK_QUEUE_DEFAULT_STATUS"); defaultStatus != "" {
		config.Queue.DefaultStatus = defaultStatus
	}

	// Upstream configuration
	if baseURL := os.Getenv("TRADEDECK_UPSTREAM_BASE_URL"); baseURL != "" {
		config.Upstream.BaseURL = baseURL
	}
	if requestTimeout := os.Getenv("TRADEDECK_UPSTREAM_REQUEST_TIMEOUT"); requestTimeout != "" {
		if rt, err := time.ParseDuration(requestTimeout); err == nil {
			config.Upstream.RequestTimeout = rt
		}
	}
	if rateLimit := os.Getenv("TRADEDECK_UPSTREAM_RATE_LIMIT"); rateLimit != "" {
		if rl, err := time.ParseDuration(rateLimit); err == nil {
			config.Upstream.RateLimit = rl
		}
	}

	// Market data configuration
	if baseURL := os.Getenv("TRADEDECK_MARKETDATA_BASE_URL"); baseURL != "" {
		config.MarketData.BaseURL = baseURL
	}
	if requestTimeout := os.Getenv("TRADEDECK_MARKETDATA_REQUEST_TIMEOUT"); requestTimeout != "" {
		if rt, err := time.ParseDuration(requestTimeout); err == nil {
			config.MarketData.RequestTimeout = rt
		}
	}
	if rateLimit := os.Getenv("TRADEDECK_MARKETDATA_RATE_LIMIT"); rateLimit != "" {
		if rl, err := time.ParseDuration(rateLimit); err == nil {
			config.MarketData.RateLimit = rl
		}
	}
	if cacheTTL := os.Getenv("TRADEDECK_MARKETDATA_CACHE_TTL"); cacheTTL != "" {
		if ttl, err := time.ParseDuration(cacheTTL); err == nil {
			config.MarketData.CacheTTL = ttl
		}
	}
	if vsCurrency := os.Getenv("TRADEDECK_MARKETDATA_VS_CURRENCY"); vsCurrency != "" {
		config.MarketData.VsCurrency = vsCurrency
	}

	// Storage configuration
	if badgerPath := os.Getenv("TRADEDECK_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}
	if reset := os.Getenv("TRADEDECK_BADGER_RESET_ON_STARTUP"); reset != "" {
		if r, err := strconv.ParseBool(reset); err == nil {
			config.Storage.Badger.ResetOnStartup = r
		}
	}

	// Logging configuration
	if level := os.Getenv("TRADEDECK_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if format := os.Getenv("TRADEDECK_LOG_FORMAT"); format != "" {
		config.Logging.Format = format
	}
	if output := os.Getenv("TRADEDECK_LOG_OUTPUT"); output != "" {
		// Split comma-separated output types
		outputs := []string{}
		for _, o := range splitString(output, ",") {
			trimmed := trimSpace(o)
			if trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}
	if minEventLevel := os.Getenv("TRADEDECK_LOG_MIN_EVENT_LEVEL"); minEventLevel != "" {
		config.Logging.MinEventLevel = minEventLevel
	}

	// WebSocket configuration
	if minLevel := os.Getenv("TRADEDECK_WEBSOCKET_MIN_LEVEL"); minLevel != "" {
		config.WebSocket.MinLevel = minLevel
	}
	if excludePatterns := os.Getenv("TRADEDECK_WEBSOCKET_EXCLUDE_PATTERNS"); excludePatterns != "" {
		patterns := []string{}
		for _, p := range splitString(excludePatterns, ",") {
			trimmed := trimSpace(p)
			if trimmed != "" {
				patterns = append(patterns, trimmed)
			}
		}
		if len(patterns) > 0 {
			config.WebSocket.ExcludePatterns = patterns
		}
	}
	if allowedEvents := os.Getenv("TRADEDECK_WEBSOCKET_ALLOWED_EVENTS"); allowedEvents != "" {
		events := []string{}
		for _, e := range splitString(allowedEvents, ",") {
			trimmed := trimSpace(e)
			if trimmed != "" {
				events = append(events, trimmed)
			}
		}
		if len(events) > 0 {
			config.WebSocket.AllowedEvents = events
		}
	}
	if statsThrottle := os.Getenv("TRADEDECK_WEBSOCKET_THROTTLE_QUEUE_STATS"); statsThrottle != "" {
		if _, err := time.ParseDuration(statsThrottle); err == nil {
			if config.WebSocket.ThrottleIntervals == nil {
				config.WebSocket.ThrottleIntervals = make(map[string]string)
			}
			config.WebSocket.ThrottleIntervals["queue.stats"] = statsThrottle
		}
	}
	if logThrottle := os.Getenv("TRADEDECK_WEBSOCKET_THROTTLE_LOG"); logThrottle != "" {
		if _, err := time.ParseDuration(logThrottle); err == nil {
			if config.WebSocket.ThrottleIntervals == nil {
				config.WebSocket.ThrottleIntervals = make(map[string]string)
			}
			config.WebSocket.ThrottleIntervals["log"] = logThrottle
		}
	}

	// Alerts configuration
	if enabled := os.Getenv("TRADEDECK_ALERTS_ENABLED"); enabled != "" {
		if e, err := strconv.ParseBool(enabled); err == nil {
			config.Alerts.Enabled = e
		}
	}
	if schedule := os.Getenv("TRADEDECK_ALERTS_SCHEDULE"); schedule != "" {
		config.Alerts.Schedule = schedule
	}

	// Reports configuration
	if enabled := os.Getenv("TRADEDECK_REPORTS_ENABLED"); enabled != "" {
		if e, err := strconv.ParseBool(enabled); err == nil {
			config.Reports.Enabled = e
		}
	}
	if schedule := os.Getenv("TRADEDECK_REPORTS_SCHEDULE"); schedule != "" {
		config.Reports.Schedule = schedule
	}
	if recipient := os.Getenv("TRADEDECK_REPORTS_RECIPIENT"); recipient != "" {
		config.Reports.Recipient = recipient
	}

	// Widgets configuration
	if catalogPath := os.Getenv("TRADEDECK_WIDGETS_CATALOG_PATH"); catalogPath != "" {
		config.Widgets.CatalogPath = catalogPath
	}

	// Gemini configuration
	if apiKey := os.Getenv("TRADEDECK_GEMINI_API_KEY"); apiKey != "" {
		config.Gemini.APIKey = apiKey
	}
	if model := os.Getenv("TRADEDECK_GEMINI_MODEL"); model != "" {
		config.Gemini.Model = model
	}
	if timeout := os.Getenv("TRADEDECK_GEMINI_TIMEOUT"); timeout != "" {
		config.Gemini.Timeout = timeout
	}
	if rateLimit := os.Getenv("TRADEDECK_GEMINI_RATE_LIMIT"); rateLimit != "" {
		config.Gemini.RateLimit = rateLimit
	}
	if temperature := os.Getenv("TRADEDECK_GEMINI_TEMPERATURE"); temperature != "" {
		if t, err := strconv.ParseFloat(temperature, 32); err == nil {
			config.Gemini.Temperature = float32(t)
		}
	}

	// Claude configuration
	if apiKey := os.Getenv("ANTHROPIC_API_KEY"); apiKey != "" {
		config.Claude.APIKey = apiKey
	}
	if apiKey := os.Getenv("TRADEDECK_CLAUDE_API_KEY"); apiKey != "" {
		config.Claude.APIKey = apiKey // TRADEDECK_ prefix takes priority
	}
	if model := os.Getenv("TRADEDECK_CLAUDE_MODEL"); model != "" {
		config.Claude.Model = model
	}
	if maxTokens := os.Getenv("TRADEDECK_CLAUDE_MAX_TOKENS"); maxTokens != "" {
		if mt, err := strconv.Atoi(maxTokens); err == nil {
			config.Claude.MaxTokens = mt
		}
	}
	if timeout := os.Getenv("TRADEDECK_CLAUDE_TIMEOUT"); timeout != "" {
		config.Claude.Timeout = timeout
	}
	if rateLimit := os.Getenv("TRADEDECK_CLAUDE_RATE_LIMIT"); rateLimit != "" {
		config.Claude.RateLimit = rateLimit
	}
	if temperature := os.Getenv("TRADEDECK_CLAUDE_TEMPERATURE"); temperature != "" {
		if t, err := strconv.ParseFloat(temperature, 32); err == nil {
			config.Claude.Temperature = float32(t)
		}
	}

	// LLM provider configuration
	if provider := os.Getenv("TRADEDECK_LLM_DEFAULT_PROVIDER"); provider != "" {
		config.LLM.DefaultProvider = LLMProvider(provider)
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config
func ApplyFlagOverrides(config *Config, port int, host string) {
	// Command-line flags have highest priority
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// ResolveAPIKey resolves an API key by name with environment variable priority
// Resolution order: environment variables → KV store → config fallback → error
// This ensures TRADEDECK_* environment variables always take precedence
func ResolveAPIKey(ctx context.Context, kvStorage interfaces.KeyValueStorage, name string, configFallback string) (string, error) {
	keyToEnvMapping := map[string][]string{
		"gemini_api_key":    {"TRADEDECK_GEMINI_API_KEY"},
		"anthropic_api_key": {"TRADEDECK_CLAUDE_API_KEY"},
		"claude_api_key":    {"TRADEDECK_CLAUDE_API_KEY"},
	}

	// For Claude, also check the standard ANTHROPIC_API_KEY env var
	if name == "anthropic_api_key" || name == "claude_api_key" {
		if envValue := os.Getenv("ANTHROPIC_API_KEY"); envValue != "" {
			return envValue, nil
		}
	}

	// Check environment variables (highest priority)
	if envVarNames, hasMappedEnv := keyToEnvMapping[name]; hasMappedEnv {
		for _, envVarName := range envVarNames {
			if envValue := os.Getenv(envVarName); envValue != "" {
				return envValue, nil
			}
		}
	}

	// Try to resolve from KV store (medium priority - settings values)
	if kvStorage != nil {
		apiKey, err := kvStorage.Get(ctx, name)
		if err == nil && apiKey != "" {
			return apiKey, nil
		}
	}

	// Fallback to config value (lowest priority)
	if configFallback != "" {
		return configFallback, nil
	}

	return "", fmt.Errorf("API key '%s' not found in environment, KV store, or config", name)
}

// Helper functions for string manipulation
func splitString(s, sep string) []string {
	result := []string{}
	start := 0
	for i := 0; i < len(s); i++ {
		if i+len(sep) <= len(s) && s[i:i+len(sep)] == sep {
			result = append(result, s[start:i])
			start = i + len(sep)
			i = start - 1
		}
	}
	result = append(result, s[start:])
	return result
}

func trimSpace(s string) string {
	start := 0
	end := len(s)
	for start < end && (s[start] == ' ' || s[start] == '\t' || s[start] == '\n' || s[start] == '\r') {
		start++
	}
	for end > start && (s[end-1] == ' ' || s[end-1] == '\t' || s[end-1] == '\n' || s[end-1] == '\r') {
		end--
	}
	return s[start:end]
}

// ValidateSchedule validates a scheduler expression: either a standard 5-field
// cron expression (descriptors like "@daily" included) or an "@every <duration>"
// descriptor with a 10-second minimum interval.
func ValidateSchedule(schedule string) error {
	schedule = strings.TrimSpace(schedule)
	if schedule == "" {
		return fmt.Errorf("schedule is empty")
	}

	if strings.HasPrefix(schedule, "@every ") {
		d, err := time.ParseDuration(strings.TrimPrefix(schedule, "@every "))
		if err != nil {
			return fmt.Errorf("invalid @every duration: %w", err)
		}
		if d < 10*time.Second {
			return fmt.Errorf("schedule interval must be at least 10 seconds, got %s", d)
		}
		return nil
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if _, err := parser.Parse(schedule); err != nil {
		return fmt.Errorf("invalid cron expression: %w", err)
	}
	return nil
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

// DeepCloneConfig creates a deep copy of the Config struct
// Used by the status handler to redact secrets without mutating the original.
func DeepCloneConfig(c *Config) *Config {
	if c == nil {
		return nil
	}

	// Clone the config struct (shallow copy first)
	clone := *c

	// Deep clone slice and map fields to prevent shared memory
	if len(c.Logging.Output) > 0 {
		clone.Logging.Output = make([]string, len(c.Logging.Output))
		copy(clone.Logging.Output, c.Logging.Output)
	}

	if len(c.WebSocket.ExcludePatterns) > 0 {
		clone.WebSocket.ExcludePatterns = make([]string, len(c.WebSocket.ExcludePatterns))
		copy(clone.WebSocket.ExcludePatterns, c.WebSocket.ExcludePatterns)
	}

	if len(c.WebSocket.AllowedEvents) > 0 {
		clone.WebSocket.AllowedEvents = make([]string, len(c.WebSocket.AllowedEvents))
		copy(clone.WebSocket.AllowedEvents, c.WebSocket.AllowedEvents)
	}

	if len(c.WebSocket.ThrottleIntervals) > 0 {
		clone.WebSocket.ThrottleIntervals = make(map[string]string, len(c.WebSocket.ThrottleIntervals))
		for k, v := range c.WebSocket.ThrottleIntervals {
			clone.WebSocket.ThrottleIntervals[k] = v
		}
	}

	if len(c.Exchanges) > 0 {
		clone.Exchanges = make(map[string]ExchangeConfig, len(c.Exchanges))
		for k, v := range c.Exchanges {
			ex := v
			if len(v.Scopes) > 0 {
				ex.Scopes = make([]string, len(v.Scopes))
				copy(ex.Scopes, v.Scopes)
			}
			clone.Exchanges[k] = ex
		}
	}

	return &clone
}
