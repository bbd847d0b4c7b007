package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/josephgoksu/muse/internal/llm"
	"github.com/spf13/viper"
)

// LoadLLMConfig loads LLM configuration from Viper and Environment variables.
// It handles precedence: Explicit Viper Config > Environment Variables > Defaults.
// A missing API key is not an error here: it surfaces per request as
// llm.ErrMissingCredential.
func LoadLLMConfig() (llm.Config, error) {
	// 1. Provider, inferred from the model name when only a model is set
	provider := viper.GetString("llm.provider")
	model := viper.GetString("llm.model")
	if provider == "" && model != "" {
		if p, ok := llm.InferProviderFromModel(model); ok {
			provider = string(p)
		}
	}
	if provider == "" {
		provider = string(llm.DefaultProvider)
	}

	llmProvider, err := llm.ValidateProvider(provider)
	if err != nil {
		return llm.Config{}, fmt.Errorf("invalid provider: %w", err)
	}

	// 2. Model
	if model == "" {
		model = llm.DefaultModelForProvider(string(llmProvider))
	}
	if llm.GetModel(model) == nil {
		slog.Debug("model not in registry, passing through to provider",
			"provider", llmProvider,
			"model", model,
			"known", llm.ModelsForProvider(llmProvider),
		)
	}

	// 3. Base URL
	baseURL := viper.GetString("llm.baseURL")
	if baseURL == "" && llmProvider == llm.ProviderOllama {
		baseURL = llm.DefaultOllamaURL
	}

	// 4. Answer limit
	maxTokens := viper.GetInt("llm.maxTokens")
	if maxTokens < 0 {
		return llm.Config{}, fmt.Errorf("llm.maxTokens must not be negative, got %d", maxTokens)
	}
	if maxTokens == 0 {
		maxTokens = llm.DefaultMaxTokens
	}

	return llm.Config{
		Provider:  llmProvider,
		Model:     model,
		APIKey:    ResolveAPIKey(llmProvider),
		BaseURL:   baseURL,
		MaxTokens: maxTokens,
	}, nil
}

// ResolveAPIKey returns the best API key for the given provider using
// per-provider config keys, provider-specific env vars, then legacy config.
func ResolveAPIKey(provider llm.Provider) string {
	keyFromViper := func(path string) string {
		if viper.IsSet(path) {
			return strings.TrimSpace(viper.GetString(path))
		}
		return ""
	}

	// 1) Per-provider config key (llm.apiKeys.<provider>)
	if key := keyFromViper(fmt.Sprintf("llm.apiKeys.%s", provider)); key != "" {
		return key
	}

	// 2) OpenAI keeps the legacy single key; other providers ignore it so a
	// key is never sent to the wrong vendor.
	if provider == llm.ProviderOpenAI {
		if key := keyFromViper("llm.apiKey"); key != "" {
			return key
		}
	}

	// 3) Provider-specific env vars
	return providerEnvKey(provider)
}

func providerEnvKey(provider llm.Provider) string {
	switch provider {
	case llm.ProviderOpenAI:
		return strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	case llm.ProviderAnthropic:
		return strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY"))
	case llm.ProviderGemini:
		key := strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
		if key == "" {
			key = strings.TrimSpace(os.Getenv("GOOGLE_API_KEY"))
		}
		return key
	default:
		return ""
	}
}
