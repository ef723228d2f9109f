package llm

import (
	"testing"
	"time"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"anthropic without key", Config{Provider: "anthropic"}, true},
		{"anthropic with key", Config{Provider: "anthropic", Anthropic: AnthropicConfig{APIKey: "sk-test"}}, false},
		{"openai without key", Config{Provider: "openai"}, true},
		{"openai with key", Config{Provider: "openai", OpenAI: OpenAIConfig{APIKey: "sk-test"}}, false},
		{"openrouter without key", Config{Provider: "openrouter"}, true},
		{"openrouter with key", Config{Provider: "openrouter", OpenRouter: OpenAIConfig{APIKey: "or-test"}}, false},
		{"gemini with key", Config{Provider: "gemini", Gemini: GeminiConfig{APIKey: "g-test"}}, false},
		{"mock needs no key", Config{Provider: "mock"}, false},
		{"unknown provider", Config{Provider: "llama"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func clearLLMEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"LASTY_LLM_PROVIDER", "LASTY_LLM_TIMEOUT",
		"LASTY_ANTHROPIC_API_KEY", "LASTY_ANTHROPIC_MODEL",
		"LASTY_OPENAI_API_KEY", "LASTY_OPENAI_MODEL", "LASTY_OPENAI_BASE_URL",
		"LASTY_GEMINI_API_KEY", "LASTY_GEMINI_MODEL",
		"LASTY_OPENROUTER_API_KEY", "LASTY_OPENROUTER_MODEL",
		"GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY",
	} {
		t.Setenv(k, "")
	}
}

func TestConfigFromEnv(t *testing.T) {
	clearLLMEnv(t)
	t.Setenv("LASTY_LLM_PROVIDER", "openrouter")
	t.Setenv("LASTY_OPENROUTER_API_KEY", "or-key")
	t.Setenv("LASTY_OPENROUTER_MODEL", "anthropic/claude-haiku-4.5")
	t.Setenv("LASTY_LLM_TIMEOUT", "not-a-duration")

	cfg := ConfigFromEnv()
	if cfg.Provider != "openrouter" || cfg.OpenRouter.APIKey != "or-key" || cfg.OpenRouter.Model != "anthropic/claude-haiku-4.5" {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.OpenRouter.BaseURL != defaultOpenRouterBaseURL {
		t.Errorf("base URL = %q", cfg.OpenRouter.BaseURL)
	}
	if cfg.Timeout != DefaultConfig().Timeout {
		t.Errorf("timeout = %s, want the default for an unparsable value", cfg.Timeout)
	}
	if cfg.Anthropic.Model != "claude-haiku" {
		t.Errorf("untouched settings must keep defaults, got %q", cfg.Anthropic.Model)
	}
}

func TestDiscoverConfig_Order(t *testing.T) {
	clearLLMEnv(t)
	if _, ok := DiscoverConfig(); ok {
		t.Fatal("expected nothing to discover")
	}

	t.Setenv("ANTHROPIC_API_KEY", "a-key")
	t.Setenv("OPENROUTER_API_KEY", "or-key")
	cfg, ok := DiscoverConfig()
	if !ok || cfg.Provider != "anthropic" || cfg.Anthropic.APIKey != "a-key" {
		t.Fatalf("cfg = %+v, ok=%v", cfg, ok)
	}

	t.Setenv("GEMINI_API_KEY", "g-key")
	cfg, _ = DiscoverConfig()
	if cfg.Provider != "gemini" || cfg.Gemini.APIKey != "g-key" {
		t.Fatalf("gemini must win, got %+v", cfg)
	}
	if cfg.Retry.MaxAttempts != 3 || cfg.Timeout != 20*time.Second {
		t.Errorf("discovered config lacks defaults: %+v", cfg)
	}
}
