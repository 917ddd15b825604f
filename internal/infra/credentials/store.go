package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"artcreator/internal/infra"
	"artcreator/internal/sqlinline"
)

const (
	ProviderGemini = "gemini"
)

// Store reads and writes third-party API tokens kept in integration_tokens.
type Store struct {
	sql infra.SQLExecutor
}

func NewStore(sql infra.SQLExecutor) *Store {
	return &Store{sql: sql}
}

func (s *Store) GeminiAPIKey(ctx context.Context) (string, error) {
	return s.Token(ctx, ProviderGemini)
}

// Token returns the stored token for provider, or "" when none is stored.
func (s *Store) Token(ctx context.Context, provider string) (string, error) {
	row := s.sql.QueryRow(ctx, sqlinline.QSelectIntegrationToken, provider)
	var token string
	if err := row.Scan(&token); err != nil {
		if infra.IsNoRows(err) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(token), nil
}

func (s *Store) SetGeminiAPIKey(ctx context.Context, key string, props map[string]any) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("gemini api key is required")
	}
	return s.upsert(ctx, ProviderGemini, key, props)
}

func (s *Store) upsert(ctx context.Context, provider, token string, props map[string]any) error {
	payload := props
	if payload == nil {
		payload = map[string]any{}
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = s.sql.Exec(ctx, sqlinline.QUpsertIntegrationToken, provider, token, raw)
	return err
}

// KeySource resolves the Gemini key for each request. A non-empty envKey
// always wins; otherwise the stored key is read and cached for ttl.
type KeySource struct {
	store  *Store
	envKey string
	ttl    time.Duration
	now    func() time.Time

	mu        sync.Mutex
	cached    string
	expiresAt time.Time
}

func NewKeySource(store *Store, envKey string, ttl time.Duration) *KeySource {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &KeySource{store: store, envKey: strings.TrimSpace(envKey), ttl: ttl, now: time.Now}
}

// GeminiKey has the signature of a gemini key function.
func (k *KeySource) GeminiKey(ctx context.Context) (string, error) {
	if k.envKey != "" {
		return k.envKey, nil
	}
	if k.store == nil {
		return "", nil
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	now := k.now()
	if now.Before(k.expiresAt) {
		return k.cached, nil
	}
	key, err := k.store.GeminiAPIKey(ctx)
	if err != nil {
		if k.cached != "" {
			return k.cached, nil
		}
		return "", err
	}
	k.cached = key
	k.expiresAt = now.Add(k.ttl)
	return key, nil
}
