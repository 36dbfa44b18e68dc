package store

import (
	"context"
	"testing"
	"time"

	"github.com/atelierlabs/makerstock/internal/db"
	"github.com/atelierlabs/makerstock/internal/model"
)

func futureExpiry() time.Time {
	return time.Now().UTC().Add(time.Hour)
}

func TestGetJWTSecretStable(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	first, err := GetJWTSecret(ctx, database)
	if err != nil {
		t.Fatalf("GetJWTSecret: %v", err)
	}
	if len(first) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(first))
	}

	second, err := GetJWTSecret(ctx, database)
	if err != nil {
		t.Fatalf("GetJWTSecret: %v", err)
	}
	if first != second {
		t.Error("expected the same secret on repeated calls")
	}
}

func TestOwnerPasswordHash(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	hash, err := GetOwnerPasswordHash(ctx, database)
	if err != nil {
		t.Fatalf("GetOwnerPasswordHash: %v", err)
	}
	if hash != "" {
		t.Errorf("expected empty hash before initialization, got %q", hash)
	}

	if err := SetOwnerPasswordHash(ctx, database, "bcrypt-hash"); err != nil {
		t.Fatalf("SetOwnerPasswordHash: %v", err)
	}
	hash, _ = GetOwnerPasswordHash(ctx, database)
	if hash != "bcrypt-hash" {
		t.Errorf("hash = %q, want stored value", hash)
	}
}

func TestGetAISettingsDefaults(t *testing.T) {
	database := db.NewTestDB(t)

	settings, err := GetAISettings(context.Background(), database)
	if err != nil {
		t.Fatalf("GetAISettings: %v", err)
	}
	if settings.Provider != model.ProviderLMStudio {
		t.Errorf("Provider = %q, want lmstudio default", settings.Provider)
	}
	if settings.LMStudioURL != model.DefaultLMStudioURL {
		t.Errorf("LMStudioURL = %q, want %q", settings.LMStudioURL, model.DefaultLMStudioURL)
	}
	if settings.PerplexityAPIKey != "" {
		t.Errorf("PerplexityAPIKey = %q, want empty", settings.PerplexityAPIKey)
	}
}

func TestSaveAISettingsRoundTrip(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	key := "pplx-secret"
	err := SaveAISettings(ctx, database, AISettingsUpdate{
		Provider:         model.ProviderPerplexity,
		PerplexityAPIKey: &key,
		LMStudioURL:      "http://workshop:1234/v1",
		LMStudioModel:    "qwen2.5-vl",
	})
	if err != nil {
		t.Fatalf("SaveAISettings: %v", err)
	}

	settings, _ := GetAISettings(ctx, database)
	if settings.Provider != model.ProviderPerplexity {
		t.Errorf("Provider = %q, want perplexity", settings.Provider)
	}
	if settings.PerplexityAPIKey != "pplx-secret" {
		t.Errorf("PerplexityAPIKey = %q, want stored key", settings.PerplexityAPIKey)
	}
	if settings.LMStudioModel != "qwen2.5-vl" {
		t.Errorf("LMStudioModel = %q, want stored model", settings.LMStudioModel)
	}
}

func TestSaveAISettingsKeepsKeyWhenNil(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	key := "pplx-secret"
	SaveAISettings(ctx, database, AISettingsUpdate{
		Provider:         model.ProviderPerplexity,
		PerplexityAPIKey: &key,
		LMStudioURL:      model.DefaultLMStudioURL,
	})

	// A save without a key (the client only ever sees the masked value)
	// leaves the stored key alone.
	err := SaveAISettings(ctx, database, AISettingsUpdate{
		Provider:    model.ProviderLMStudio,
		LMStudioURL: model.DefaultLMStudioURL,
	})
	if err != nil {
		t.Fatalf("SaveAISettings: %v", err)
	}

	settings, _ := GetAISettings(ctx, database)
	if settings.PerplexityAPIKey != "pplx-secret" {
		t.Errorf("PerplexityAPIKey = %q, want preserved key", settings.PerplexityAPIKey)
	}
	if settings.Provider != model.ProviderLMStudio {
		t.Errorf("Provider = %q, want lmstudio", settings.Provider)
	}
}

func TestTokenRevocation(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	revoked, err := IsTokenRevoked(ctx, database, "jti-1")
	if err != nil {
		t.Fatalf("IsTokenRevoked: %v", err)
	}
	if revoked {
		t.Error("expected unknown jti to not be revoked")
	}

	if err := RevokeToken(ctx, database, "jti-1", futureExpiry()); err != nil {
		t.Fatalf("RevokeToken: %v", err)
	}
	revoked, _ = IsTokenRevoked(ctx, database, "jti-1")
	if !revoked {
		t.Error("expected jti to be revoked")
	}
}
