package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/atelierlabs/makerstock/internal/model"
)

// Message is a chat message. Content is either a plain string or a slice
// of ContentPart for multimodal input.
type Message struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

// ContentPart is one element of a multimodal message.
type ContentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

// ImageURL wraps an image reference, typically a base64 data URL.
type ImageURL struct {
	URL string `json:"url"`
}

// TextPart builds a text content part.
func TextPart(text string) ContentPart {
	return ContentPart{Type: "text", Text: text}
}

// ImagePart builds an image content part from a data URL.
func ImagePart(dataURL string) ContentPart {
	return ContentPart{Type: "image_url", ImageURL: &ImageURL{URL: dataURL}}
}

// Client calls a single resolved provider.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient builds a client for the given provider config.
func NewClient(cfg Config) *Client {
	return &Client{
		cfg: cfg,
		// Vision calls against a local model can take a while.
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
}

// Provider returns the name of the provider this client talks to.
func (c *Client) Provider() string {
	return c.cfg.Provider
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Chat sends a chat completion request and returns the first choice's
// content.
func (c *Client) Chat(ctx context.Context, messages []Message, maxTokens int) (string, error) {
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	body, err := json.Marshal(chatRequest{
		Model:       c.cfg.Model,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: 0.1,
	})
	if err != nil {
		return "", fmt.Errorf("encoding chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling %s: %w", c.cfg.Provider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("%s returned %d: %s", c.cfg.Provider, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decoding %s response: %w", c.cfg.Provider, err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("%s returned no choices", c.cfg.Provider)
	}
	return parsed.Choices[0].Message.Content, nil
}

// TestResult is the outcome of a provider connectivity check.
type TestResult struct {
	OK       bool     `json:"ok"`
	Provider string   `json:"provider"`
	Models   []string `json:"models,omitempty"`
	Error    string   `json:"error,omitempty"`
}

// TestConnection probes the provider. LM Studio exposes a models listing,
// so that is checked directly; Perplexity gets a minimal one-token
// completion.
func (c *Client) TestConnection(ctx context.Context) *TestResult {
	result := &TestResult{Provider: c.cfg.Provider}

	if c.cfg.Provider == model.ProviderLMStudio {
		modelsURL := strings.TrimSuffix(c.cfg.APIURL, "/chat/completions") + "/models"
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, modelsURL, nil)
		if err != nil {
			result.Error = err.Error()
			return result
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			result.Error = err.Error()
			return result
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			result.Error = fmt.Sprintf("models endpoint returned %d", resp.StatusCode)
			return result
		}
		var listing struct {
			Data []struct {
				ID string `json:"id"`
			} `json:"data"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
			result.Error = fmt.Sprintf("decoding models listing: %v", err)
			return result
		}
		for _, m := range listing.Data {
			result.Models = append(result.Models, m.ID)
		}
		result.OK = true
		return result
	}

	_, err := c.Chat(ctx, []Message{{Role: "user", Content: "ping"}}, 1)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	result.OK = true
	return result
}
