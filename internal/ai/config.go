// Package ai talks to an OpenAI-compatible chat completions endpoint,
// either a local LM Studio instance or the Perplexity API, for label
// scanning and stock insights.
package ai

import "github.com/atelierlabs/makerstock/internal/model"

const (
	perplexityAPIURL     = "https://api.perplexity.ai/chat/completions"
	perplexityModel      = "llama-3.1-sonar-large-128k-online"
	defaultLMStudioModel = "local-model"
)

// Config is a resolved AI provider: endpoint, credentials and model.
type Config struct {
	Provider string
	APIURL   string
	APIKey   string
	Model    string
}

// Resolve picks a usable provider from the stored settings. The selected
// provider wins when it is fully configured; otherwise the other provider
// is tried as a fallback. Returns nil when neither is configured.
func Resolve(settings *model.AISettings) *Config {
	lmstudio := func() *Config {
		m := settings.LMStudioModel
		if m == "" {
			m = defaultLMStudioModel
		}
		return &Config{
			Provider: model.ProviderLMStudio,
			APIURL:   settings.LMStudioURL + "/chat/completions",
			Model:    m,
		}
	}
	perplexity := func() *Config {
		return &Config{
			Provider: model.ProviderPerplexity,
			APIURL:   perplexityAPIURL,
			APIKey:   settings.PerplexityAPIKey,
			Model:    perplexityModel,
		}
	}

	if settings.Provider == model.ProviderLMStudio && settings.LMStudioURL != "" {
		return lmstudio()
	}
	if settings.Provider == model.ProviderPerplexity && settings.PerplexityAPIKey != "" {
		return perplexity()
	}

	// Fallback to whichever provider happens to be configured.
	if settings.LMStudioURL != "" {
		return lmstudio()
	}
	if settings.PerplexityAPIKey != "" {
		return perplexity()
	}
	return nil
}
