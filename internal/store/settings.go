package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"

	"github.com/atelierlabs/makerstock/internal/model"
)

// Settings keys.
const (
	keyJWTSecret        = "jwt_secret"
	keyOwnerPassword    = "owner_password_hash"
	keyAIProvider       = "ai_provider"
	keyPerplexityAPIKey = "perplexity_api_key"
	keyLMStudioURL      = "lmstudio_url"
	keyLMStudioModel    = "lmstudio_model"
)

// GetJWTSecret retrieves the JWT secret from the database.
// If no secret exists, it generates one, stores it, and returns it.
// Uses INSERT OR IGNORE + re-SELECT to avoid TOCTOU race on concurrent startup.
func GetJWTSecret(ctx context.Context, db *sql.DB) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating jwt secret: %w", err)
	}
	candidate := hex.EncodeToString(buf)

	_, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO settings (key, value) VALUES (?, ?)`,
		keyJWTSecret, candidate,
	)
	if err != nil {
		return "", fmt.Errorf("storing jwt secret: %w", err)
	}

	// Always read back (either our insert or the existing value).
	var secret string
	err = db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = ?`, keyJWTSecret,
	).Scan(&secret)
	if err != nil {
		return "", fmt.Errorf("querying jwt secret: %w", err)
	}

	return secret, nil
}

// GetOwnerPasswordHash returns the stored owner password hash, or "" if the
// owner account has not been initialized yet.
func GetOwnerPasswordHash(ctx context.Context, db *sql.DB) (string, error) {
	return getSetting(ctx, db, keyOwnerPassword)
}

// SetOwnerPasswordHash stores the owner password hash.
func SetOwnerPasswordHash(ctx context.Context, db *sql.DB, hash string) error {
	return setSetting(ctx, db, keyOwnerPassword, hash)
}

// GetAISettings loads the AI provider configuration. Missing values fall
// back to defaults (LM Studio on localhost), matching a fresh install.
func GetAISettings(ctx context.Context, db *sql.DB) (*model.AISettings, error) {
	settings := &model.AISettings{
		Provider:    model.ProviderLMStudio,
		LMStudioURL: model.DefaultLMStudioURL,
	}

	rows, err := db.QueryContext(ctx,
		`SELECT key, value FROM settings WHERE key IN (?, ?, ?, ?)`,
		keyAIProvider, keyPerplexityAPIKey, keyLMStudioURL, keyLMStudioModel,
	)
	if err != nil {
		return nil, fmt.Errorf("loading ai settings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scanning ai setting: %w", err)
		}
		switch key {
		case keyAIProvider:
			settings.Provider = value
		case keyPerplexityAPIKey:
			settings.PerplexityAPIKey = value
		case keyLMStudioURL:
			if value != "" {
				settings.LMStudioURL = value
			}
		case keyLMStudioModel:
			settings.LMStudioModel = value
		}
	}
	return settings, rows.Err()
}

// AISettingsUpdate holds a settings save. The API key is only overwritten
// when a new non-empty value is supplied, so reads can keep masking it.
type AISettingsUpdate struct {
	Provider         string
	PerplexityAPIKey *string
	LMStudioURL      string
	LMStudioModel    string
}

// SaveAISettings persists the AI provider configuration.
func SaveAISettings(ctx context.Context, db *sql.DB, upd AISettingsUpdate) error {
	if err := setSetting(ctx, db, keyAIProvider, upd.Provider); err != nil {
		return err
	}
	if err := setSetting(ctx, db, keyLMStudioURL, upd.LMStudioURL); err != nil {
		return err
	}
	if err := setSetting(ctx, db, keyLMStudioModel, upd.LMStudioModel); err != nil {
		return err
	}
	if upd.PerplexityAPIKey != nil {
		if err := setSetting(ctx, db, keyPerplexityAPIKey, *upd.PerplexityAPIKey); err != nil {
			return err
		}
	}
	return nil
}

func getSetting(ctx context.Context, db *sql.DB, key string) (string, error) {
	var value string
	err := db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = ?`, key,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("querying setting %q: %w", key, err)
	}
	return value, nil
}

func setSetting(ctx context.Context, db *sql.DB, key, value string) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT (key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("storing setting %q: %w", key, err)
	}
	return nil
}
