package llm

import (
	"fmt"
	"os"
	"time"
)

// Config selects and configures the LLM backend.
type Config struct {
	// Provider is one of "anthropic", "openai", "gemini", "openrouter"
	// or "mock".
	Provider string

	Anthropic  AnthropicConfig
	OpenAI     OpenAIConfig
	Gemini     GeminiConfig
	OpenRouter OpenAIConfig // OpenAI-compatible gateway
	Retry      RetryConfig

	// Timeout bounds one Generate call, retries included.
	Timeout time.Duration
}

type AnthropicConfig struct {
	APIKey  string
	Model   string
	BaseURL string // optional
}

// OpenAIConfig also serves OpenAI-compatible gateways through BaseURL.
type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string // optional
}

// RetryConfig shapes the backoff between attempts.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

const defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

// DefaultConfig uses the small model of each vendor.
func DefaultConfig() Config {
	return Config{
		Provider:   "anthropic",
		Anthropic:  AnthropicConfig{Model: "claude-haiku"},
		OpenAI:     OpenAIConfig{Model: "gpt-mini"},
		Gemini:     GeminiConfig{Model: "gemini-flash"},
		OpenRouter: OpenAIConfig{Model: "google/gemini-2.5-flash", BaseURL: defaultOpenRouterBaseURL},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: 500 * time.Millisecond,
			MaxWait:     5 * time.Second,
			Multiplier:  2,
		},
		Timeout: 20 * time.Second,
	}
}

// envString lists the LASTY_* variables that override string settings.
func (c *Config) envString() []struct {
	key string
	dst *string
} {
	return []struct {
		key string
		dst *string
	}{
		{"LASTY_LLM_PROVIDER", &c.Provider},
		{"LASTY_ANTHROPIC_API_KEY", &c.Anthropic.APIKey},
		{"LASTY_ANTHROPIC_MODEL", &c.Anthropic.Model},
		{"LASTY_OPENAI_API_KEY", &c.OpenAI.APIKey},
		{"LASTY_OPENAI_MODEL", &c.OpenAI.Model},
		{"LASTY_OPENAI_BASE_URL", &c.OpenAI.BaseURL},
		{"LASTY_GEMINI_API_KEY", &c.Gemini.APIKey},
		{"LASTY_GEMINI_MODEL", &c.Gemini.Model},
		{"LASTY_OPENROUTER_API_KEY", &c.OpenRouter.APIKey},
		{"LASTY_OPENROUTER_MODEL", &c.OpenRouter.Model},
	}
}

// ConfigFromEnv applies LASTY_* environment variables on top of
// DefaultConfig.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	for _, o := range cfg.envString() {
		if v := os.Getenv(o.key); v != "" {
			*o.dst = v
		}
	}
	if t := os.Getenv("LASTY_LLM_TIMEOUT"); t != "" {
		if d, err := time.ParseDuration(t); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}
	return cfg
}

// vendorKeys is the discovery order for the vendors' own variables.
var vendorKeys = []struct {
	env      string
	provider string
}{
	{"GEMINI_API_KEY", "gemini"},
	{"OPENAI_API_KEY", "openai"},
	{"ANTHROPIC_API_KEY", "anthropic"},
	{"OPENROUTER_API_KEY", "openrouter"},
}

// DiscoverConfig picks the first vendor whose standard API key variable is
// set. ok is false when none is.
func DiscoverConfig() (cfg Config, ok bool) {
	for _, v := range vendorKeys {
		key := os.Getenv(v.env)
		if key == "" {
			continue
		}
		cfg = DefaultConfig()
		cfg.Provider = v.provider
		cfg.setKey(key)
		return cfg, true
	}
	return Config{}, false
}

func (c *Config) setKey(key string) {
	switch c.Provider {
	case "anthropic":
		c.Anthropic.APIKey = key
	case "openai":
		c.OpenAI.APIKey = key
	case "gemini":
		c.Gemini.APIKey = key
	case "openrouter":
		c.OpenRouter.APIKey = key
	}
}

// Resolve returns the configuration to use: explicit LASTY_* settings when
// a provider was chosen, otherwise the first provider discovered from the
// standard vendor variables. ok is false when no provider is usable.
func Resolve() (cfg Config, ok bool) {
	if os.Getenv("LASTY_LLM_PROVIDER") != "" {
		cfg = ConfigFromEnv()
		return cfg, cfg.Validate() == nil
	}
	if cfg, ok = DiscoverConfig(); ok {
		cfg.Timeout = ConfigFromEnv().Timeout
		return cfg, true
	}
	return Config{}, false
}

// Validate checks that the selected provider is known and has a key.
func (c Config) Validate() error {
	var key string
	switch c.Provider {
	case "mock":
		return nil
	case "anthropic":
		key = c.Anthropic.APIKey
	case "openai":
		key = c.OpenAI.APIKey
	case "gemini":
		key = c.Gemini.APIKey
	case "openrouter":
		key = c.OpenRouter.APIKey
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if key == "" {
		return fmt.Errorf("an API key is required for the %s provider (set %s)", c.Provider, keyVar(c.Provider))
	}
	return nil
}

func keyVar(provider string) string {
	switch provider {
	case "anthropic":
		return "LASTY_ANTHROPIC_API_KEY"
	case "openai":
		return "LASTY_OPENAI_API_KEY"
	case "gemini":
		return "LASTY_GEMINI_API_KEY"
	}
	return "LASTY_OPENROUTER_API_KEY"
}

// modelAliases maps short names to the model IDs each vendor expects.
// Unknown names pass through unchanged.
var modelAliases = map[string]map[string]string{
	"anthropic": {
		"claude-haiku":  "claude-haiku-4-5-20251001",
		"claude-sonnet": "claude-sonnet-4-5-20250929",
	},
	"openai": {
		"gpt-mini": "gpt-4o-mini",
		"gpt":      "gpt-4o",
	},
	"gemini": {
		"gemini-flash":      "gemini-2.5-flash",
		"gemini-flash-lite": "gemini-2.5-flash-lite",
		"gemini-pro":        "gemini-2.5-pro",
	},
}

func resolveModel(provider, name string) string {
	if id, ok := modelAliases[provider][name]; ok {
		return id
	}
	return name
}
