package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/atelierlabs/makerstock/internal/model"
)

func TestResolvePrefersSelectedProvider(t *testing.T) {
	cfg := Resolve(&model.AISettings{
		Provider:         model.ProviderLMStudio,
		LMStudioURL:      "http://workshop:1234/v1",
		LMStudioModel:    "qwen2.5-vl",
		PerplexityAPIKey: "pplx-key",
	})
	if cfg == nil {
		t.Fatal("expected a config")
	}
	if cfg.Provider != model.ProviderLMStudio {
		t.Errorf("Provider = %q, want lmstudio", cfg.Provider)
	}
	if cfg.APIURL != "http://workshop:1234/v1/chat/completions" {
		t.Errorf("APIURL = %q", cfg.APIURL)
	}
	if cfg.Model != "qwen2.5-vl" {
		t.Errorf("Model = %q", cfg.Model)
	}
}

func TestResolveFallsBackToOtherProvider(t *testing.T) {
	// Perplexity selected but no key: LM Studio URL is still usable.
	cfg := Resolve(&model.AISettings{
		Provider:    model.ProviderPerplexity,
		LMStudioURL: "http://localhost:1234/v1",
	})
	if cfg == nil {
		t.Fatal("expected a fallback config")
	}
	if cfg.Provider != model.ProviderLMStudio {
		t.Errorf("Provider = %q, want lmstudio fallback", cfg.Provider)
	}
	if cfg.Model != defaultLMStudioModel {
		t.Errorf("Model = %q, want default", cfg.Model)
	}

	// LM Studio selected but no URL: fall back to Perplexity.
	cfg = Resolve(&model.AISettings{
		Provider:         model.ProviderLMStudio,
		PerplexityAPIKey: "pplx-key",
	})
	if cfg == nil {
		t.Fatal("expected a fallback config")
	}
	if cfg.Provider != model.ProviderPerplexity {
		t.Errorf("Provider = %q, want perplexity fallback", cfg.Provider)
	}
	if cfg.APIKey != "pplx-key" {
		t.Errorf("APIKey = %q", cfg.APIKey)
	}
}

func TestResolveUnconfigured(t *testing.T) {
	if cfg := Resolve(&model.AISettings{Provider: model.ProviderLMStudio}); cfg != nil {
		t.Errorf("expected nil config, got %+v", cfg)
	}
}

// chatServer fakes an OpenAI-compatible chat completions endpoint that
// always answers with content.
func chatServer(t *testing.T, content string, gotReq *chatRequest) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /chat/completions", func(w http.ResponseWriter, r *http.Request) {
		if gotReq != nil {
			if err := json.NewDecoder(r.Body).Decode(gotReq); err != nil {
				t.Errorf("decoding request: %v", err)
			}
		}
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": content}},
			},
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestChat(t *testing.T) {
	var got chatRequest
	srv := chatServer(t, "hello", &got)

	client := NewClient(Config{
		Provider: model.ProviderLMStudio,
		APIURL:   srv.URL + "/chat/completions",
		Model:    "test-model",
	})
	out, err := client.Chat(context.Background(), []Message{{Role: "user", Content: "hi"}}, 0)
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if out != "hello" {
		t.Errorf("content = %q, want hello", out)
	}
	if got.Model != "test-model" {
		t.Errorf("request model = %q", got.Model)
	}
	if got.MaxTokens != 1024 {
		t.Errorf("max_tokens = %d, want default 1024", got.MaxTokens)
	}
}

func TestChatErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	client := NewClient(Config{Provider: model.ProviderLMStudio, APIURL: srv.URL, Model: "m"})
	if _, err := client.Chat(context.Background(), []Message{{Role: "user", Content: "hi"}}, 0); err == nil {
		t.Error("expected error for non-200 response")
	}
}

func TestScanSpoolLabelParsesAndSuggestsTare(t *testing.T) {
	srv := chatServer(t, "```json\n{\"brand\":\"Sunlu\",\"material\":\"PLA\",\"color\":\"Black\",\"netWeightG\":1000,\"diameter\":1.75}\n```", nil)

	client := NewClient(Config{Provider: model.ProviderLMStudio, APIURL: srv.URL + "/chat/completions", Model: "m"})
	scan, err := client.ScanSpoolLabel(context.Background(), "data:image/jpeg;base64,AAAA")
	if err != nil {
		t.Fatalf("ScanSpoolLabel: %v", err)
	}
	if scan.Brand == nil || *scan.Brand != "Sunlu" {
		t.Errorf("Brand = %v, want Sunlu", scan.Brand)
	}
	if scan.NetWeightG == nil || *scan.NetWeightG != 1000 {
		t.Errorf("NetWeightG = %v, want 1000", scan.NetWeightG)
	}
	if scan.SuggestedTareG != 200 || scan.TareSource != "brand" {
		t.Errorf("tare = %v/%s, want 200/brand", scan.SuggestedTareG, scan.TareSource)
	}
}

func TestScanSpoolLabelUnparseableDegradesToNulls(t *testing.T) {
	srv := chatServer(t, "I could not read the label, sorry!", nil)

	client := NewClient(Config{Provider: model.ProviderLMStudio, APIURL: srv.URL + "/chat/completions", Model: "m"})
	scan, err := client.ScanSpoolLabel(context.Background(), "data:image/jpeg;base64,AAAA")
	if err != nil {
		t.Fatalf("ScanSpoolLabel: %v", err)
	}
	if scan.Brand != nil || scan.Material != nil || scan.NetWeightG != nil {
		t.Errorf("expected all-null scan, got %+v", scan)
	}
	// No brand means the default tare applies.
	if scan.SuggestedTareG != 220 || scan.TareSource != "default" {
		t.Errorf("tare = %v/%s, want 220/default", scan.SuggestedTareG, scan.TareSource)
	}
}

func TestScanLaserLabelNumericBarcode(t *testing.T) {
	srv := chatServer(t, `{"brand":null,"model":"YA001","barcode":6977252629702,"thicknessMm":3}`, nil)

	client := NewClient(Config{Provider: model.ProviderLMStudio, APIURL: srv.URL + "/chat/completions", Model: "m"})
	guess, err := client.ScanLaserLabel(context.Background(), "data:image/jpeg;base64,AAAA")
	if err != nil {
		t.Fatalf("ScanLaserLabel: %v", err)
	}
	if guess.Barcode != "6977252629702" {
		t.Errorf("Barcode = %q, want stringified number", guess.Barcode)
	}
	if guess.Model != "YA001" {
		t.Errorf("Model = %q", guess.Model)
	}
}

func TestEstimateInsightTruncated(t *testing.T) {
	long := make([]byte, 500)
	for i := range long {
		long[i] = 'a'
	}
	srv := chatServer(t, string(long), nil)

	client := NewClient(Config{Provider: model.ProviderLMStudio, APIURL: srv.URL + "/chat/completions", Model: "m"})
	insight, err := client.EstimateInsight(context.Background(), 650, 1000, 0.65)
	if err != nil {
		t.Fatalf("EstimateInsight: %v", err)
	}
	if len(insight) != insightMaxLen {
		t.Errorf("len = %d, want %d", len(insight), insightMaxLen)
	}
}

func TestEstimateInsightTruncatesOnRuneBoundary(t *testing.T) {
	// 100 three-byte runes; the byte cap falls mid-rune at offset 200.
	srv := chatServer(t, strings.Repeat("€", 100), nil)

	client := NewClient(Config{Provider: model.ProviderLMStudio, APIURL: srv.URL + "/chat/completions", Model: "m"})
	insight, err := client.EstimateInsight(context.Background(), 650, 1000, 0.65)
	if err != nil {
		t.Fatalf("EstimateInsight: %v", err)
	}
	if !utf8.ValidString(insight) {
		t.Errorf("truncated insight is not valid UTF-8: %q", insight[len(insight)-4:])
	}
	if want := strings.Repeat("€", 66); insight != want {
		t.Errorf("len = %d, want %d whole runes (%d bytes)", len(insight), 66, len(want))
	}
}

func TestTestConnectionLMStudio(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/models", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"id": "qwen2.5-vl"}, {"id": "llava"}},
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client := NewClient(Config{
		Provider: model.ProviderLMStudio,
		APIURL:   srv.URL + "/v1/chat/completions",
		Model:    "m",
	})
	result := client.TestConnection(context.Background())
	if !result.OK {
		t.Fatalf("expected OK, got error %q", result.Error)
	}
	if len(result.Models) != 2 || result.Models[0] != "qwen2.5-vl" {
		t.Errorf("Models = %v", result.Models)
	}
}

func TestTestConnectionFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	t.Cleanup(srv.Close)

	client := NewClient(Config{
		Provider: model.ProviderLMStudio,
		APIURL:   srv.URL + "/chat/completions",
		Model:    "m",
	})
	result := client.TestConnection(context.Background())
	if result.OK {
		t.Error("expected failure")
	}
	if result.Error == "" {
		t.Error("expected error message")
	}
}

func TestStripFences(t *testing.T) {
	cases := []struct{ in, want string }{
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
		{`{"a":1}`, `{"a":1}`},
	}
	for _, tc := range cases {
		if got := stripFences(tc.in); got != tc.want {
			t.Errorf("stripFences(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
