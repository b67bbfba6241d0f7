package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/roelfdiedericks/modelmeta/internal/catalog"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testCatalog() *catalog.ModelsConfig {
	return &catalog.ModelsConfig{
		Version: "2.0.0",
		Providers: map[string]catalog.ProviderConfig{
			"openai": {
				Name: "OpenAI",
				Models: map[string]catalog.ModelConfig{
					"gpt-4o": {
						Name:          "GPT-4o",
						APIType:       catalog.APITypeChatCompletions,
						ContextWindow: 128000,
						Pricing:       catalog.Pricing{Input: 2.5, Output: 10},
					},
				},
			},
		},
	}
}

func TestLoadEmpty(t *testing.T) {
	s := openTestStore(t)

	cfg, _, err := s.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg != nil {
		t.Errorf("expected no persisted catalog, got version %s", cfg.Version)
	}
}

func TestSaveAndLoad(t *testing.T) {
	s := openTestStore(t)

	fetchedAt := time.Now().Truncate(time.Millisecond)
	if err := s.Save(testCatalog(), fetchedAt); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	cfg, ts, err := s.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg == nil || cfg.Version != "2.0.0" {
		t.Fatalf("unexpected loaded catalog: %+v", cfg)
	}
	if !ts.Equal(fetchedAt) {
		t.Errorf("expected timestamp %v, got %v", fetchedAt, ts)
	}

	m := cfg.Providers["openai"].Models["gpt-4o"]
	if m.ContextWindow != 128000 || m.Pricing.Input != 2.5 {
		t.Errorf("model round-trip mismatch: %+v", m)
	}
}

func TestSaveReplaces(t *testing.T) {
	s := openTestStore(t)

	if err := s.Save(testCatalog(), time.Now()); err != nil {
		t.Fatalf("first save failed: %v", err)
	}

	updated := testCatalog()
	updated.Version = "3.0.0"
	if err := s.Save(updated, time.Now()); err != nil {
		t.Fatalf("second save failed: %v", err)
	}

	cfg, _, err := s.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Version != "3.0.0" {
		t.Errorf("expected replaced catalog 3.0.0, got %s", cfg.Version)
	}
}

func TestPurgeRemovesBothKeys(t *testing.T) {
	s := openTestStore(t)

	if err := s.Save(testCatalog(), time.Now()); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := s.Purge(); err != nil {
		t.Fatalf("purge failed: %v", err)
	}

	cfg, _, err := s.Load()
	if err != nil {
		t.Fatalf("load after purge failed: %v", err)
	}
	if cfg != nil {
		t.Error("expected no catalog after purge")
	}

	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM kv").Scan(&count); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected both keys removed, %d rows remain", count)
	}
}

func TestLoadMalformedCatalog(t *testing.T) {
	s := openTestStore(t)

	now := time.Now().UnixMilli()
	if _, err := s.db.Exec("INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)",
		keyConfig, "{not json", now); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if _, err := s.db.Exec("INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)",
		keyTime, "1234567890123", now); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	if _, _, err := s.Load(); err == nil {
		t.Error("expected an error for a malformed persisted catalog")
	}
}

func TestLoadMalformedTimestamp(t *testing.T) {
	s := openTestStore(t)

	if err := s.Save(testCatalog(), time.Now()); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if _, err := s.db.Exec("UPDATE kv SET value = 'not-a-number' WHERE key = ?", keyTime); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	if _, _, err := s.Load(); err == nil {
		t.Error("expected an error for a malformed persisted timestamp")
	}
}
