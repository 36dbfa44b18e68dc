package model

// AI provider names.
const (
	ProviderPerplexity = "perplexity"
	ProviderLMStudio   = "lmstudio"
)

// DefaultLMStudioURL is the base URL assumed for a local LM Studio instance
// when none has been configured.
const DefaultLMStudioURL = "http://localhost:1234/v1"

// AISettings is the per-owner AI provider configuration. The API key is
// never exposed in full on reads; handlers mask it.
type AISettings struct {
	Provider         string `json:"provider"`
	PerplexityAPIKey string `json:"perplexityApiKey,omitempty"`
	LMStudioURL      string `json:"lmstudioUrl,omitempty"`
	LMStudioModel    string `json:"lmstudioModel,omitempty"`
}

// ValidProvider reports whether p is a known AI provider.
func ValidProvider(p string) bool {
	return p == ProviderPerplexity || p == ProviderLMStudio
}
