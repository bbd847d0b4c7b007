package llm

import (
	"sort"
	"strings"
)

// Model describes a chat model the service can be pointed at.
type Model struct {
	ID         string   // Canonical model ID (e.g., "gpt-4o-mini")
	ProviderID Provider // Internal provider ID (e.g., "openai")
	Aliases    []string // Alternative IDs including dated versions
	IsDefault  bool     // Whether this is the default model for its provider
}

// ModelRegistry lists known chat models. Unknown model IDs are still accepted
// and passed through to the provider.
var ModelRegistry = []Model{
	// OpenAI
	{ID: "gpt-4o-mini", ProviderID: ProviderOpenAI, Aliases: []string{"gpt-4o-mini-2024-07-18"}, IsDefault: true},
	{ID: "gpt-4o", ProviderID: ProviderOpenAI, Aliases: []string{"gpt-4o-2024-08-06"}},
	{ID: "gpt-4.1-mini", ProviderID: ProviderOpenAI, Aliases: []string{"gpt-4.1-mini-2025-04-14"}},
	{ID: "gpt-3.5-turbo", ProviderID: ProviderOpenAI},

	// Anthropic
	{ID: "claude-3-5-sonnet-latest", ProviderID: ProviderAnthropic, Aliases: []string{"claude-3-5-sonnet-20241022"}, IsDefault: true},
	{ID: "claude-3-5-haiku-latest", ProviderID: ProviderAnthropic, Aliases: []string{"claude-3-5-haiku-20241022"}},

	// Google Gemini
	{ID: "gemini-2.0-flash", ProviderID: ProviderGemini, IsDefault: true},
	{ID: "gemini-2.5-flash", ProviderID: ProviderGemini},

	// Ollama (local)
	{ID: "llama3.2", ProviderID: ProviderOllama, IsDefault: true},
}

// modelIndex is built at init time for fast lookups
var modelIndex map[string]*Model

func init() {
	buildModelIndex()
}

func buildModelIndex() {
	modelIndex = make(map[string]*Model)
	for i := range ModelRegistry {
		m := &ModelRegistry[i]
		modelIndex[m.ID] = m
		for _, alias := range m.Aliases {
			modelIndex[alias] = m
		}
	}
}

// GetModel returns the model definition for a given model ID or alias.
// Returns nil if the model is not found.
func GetModel(modelID string) *Model {
	return modelIndex[modelID]
}

// GetDefaultModelID returns the default model ID for a provider.
func GetDefaultModelID(providerID string) string {
	for i := range ModelRegistry {
		m := &ModelRegistry[i]
		if string(m.ProviderID) == providerID && m.IsDefault {
			return m.ID
		}
	}
	return ""
}

// InferProvider attempts to determine the provider from a model name.
// Returns the provider ID and true if inference succeeded.
func InferProvider(modelID string) (Provider, bool) {
	if m := GetModel(modelID); m != nil {
		return m.ProviderID, true
	}

	switch {
	case strings.HasPrefix(modelID, "gpt-"), strings.HasPrefix(modelID, "o1-"), strings.HasPrefix(modelID, "o3-"):
		return ProviderOpenAI, true
	case strings.HasPrefix(modelID, "claude-"):
		return ProviderAnthropic, true
	case strings.HasPrefix(modelID, "gemini-"):
		return ProviderGemini, true
	case strings.HasPrefix(modelID, "llama"), strings.HasPrefix(modelID, "mistral"), strings.HasPrefix(modelID, "phi"):
		return ProviderOllama, true
	}

	return "", false
}

// ModelsForProvider returns the known model IDs for a provider, default first.
func ModelsForProvider(p Provider) []string {
	var models []Model
	for _, m := range ModelRegistry {
		if m.ProviderID == p {
			models = append(models, m)
		}
	}
	sort.SliceStable(models, func(i, j int) bool {
		if models[i].IsDefault != models[j].IsDefault {
			return models[i].IsDefault
		}
		return models[i].ID < models[j].ID
	})
	ids := make([]string, len(models))
	for i, m := range models {
		ids[i] = m.ID
	}
	return ids
}
