package services

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"assetverse-http-service/internal/infrastructure/config"
	"assetverse-http-service/internal/test/testdb"
)

// memoryCache 以 JSON 形式保存值，行为与 RedisService 一致
type memoryCache struct {
	mu   sync.Mutex
	data map[string][]byte
	hits int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: make(map[string][]byte)}
}

func (c *memoryCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = raw
	return nil
}

func (c *memoryCache) Get(_ context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.data[key]
	if !ok {
		return ErrCacheMiss
	}
	c.hits++
	return json.Unmarshal(raw, dest)
}

func (c *memoryCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

func (c *memoryCache) Ping(context.Context) error { return nil }

func (c *memoryCache) Enabled() bool { return true }

func testConfigWithSecret(secret string) *config.Config {
	cfg := testdb.Config()
	cfg.CheckoutWebhookSecret = secret
	return cfg
}

func TestResolveSessionRoles(t *testing.T) {
	db := testdb.New(t)
	cfg := testdb.Config()
	cache := newMemoryCache()
	sessions := NewSessionService(db, cfg, cache)
	users := NewUserService(db, cfg, sessions)
	ctx := context.Background()

	guest, err := sessions.Resolve(ctx, "", false)
	if err != nil || guest.Role != RoleGuest || guest.IsAuthenticated() {
		t.Fatalf("guest = %+v, %v", guest, err)
	}

	unresolved, err := sessions.Resolve(ctx, "New@Acme.io", true)
	if err != nil || unresolved.Role != RoleUnresolved || unresolved.Email != "new@acme.io" {
		t.Fatalf("unresolved = %+v, %v", unresolved, err)
	}

	if _, err := users.RegisterHR(ctx, RegisterInput{Name: "Nia", Email: "new@acme.io", Password: testPassword, CompanyName: "Acme"}); err != nil {
		t.Fatalf("RegisterHR: %v", err)
	}
	hr, err := sessions.Resolve(ctx, "new@acme.io", true)
	if err != nil || hr.Role != RoleHR || hr.CompanyName != "Acme" {
		t.Fatalf("hr = %+v, %v", hr, err)
	}

	cached, err := sessions.Resolve(ctx, "new@acme.io", true)
	if err != nil || cached != hr {
		t.Fatalf("cached = %+v, %v", cached, err)
	}
	if cache.hits != 1 {
		t.Fatalf("cache hits = %d, want 1", cache.hits)
	}

	name := "Nia Renamed"
	if _, err := users.UpdateProfile(ctx, "new@acme.io", ProfileUpdate{Name: &name}); err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	renamed, _ := sessions.Resolve(ctx, "new@acme.io", true)
	if renamed.Name != name {
		t.Fatalf("session name = %q after profile update, want %q", renamed.Name, name)
	}
}
