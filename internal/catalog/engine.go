package catalog

import (
	"context"
	"sync"
	"time"

	. "github.com/roelfdiedericks/modelmeta/internal/logging"
)

const (
	// DefaultTTL is the freshness window for a cached catalog.
	DefaultTTL = 10 * time.Minute
	// DefaultFetchTimeout bounds a single remote fetch.
	DefaultFetchTimeout = 5 * time.Second
)

// Store persists the last successfully fetched catalog across restarts.
// A (nil, zero, nil) Load result means no entry is persisted. Errors are
// absorbed by the engine; implementations never have to be reliable.
type Store interface {
	Load() (*ModelsConfig, time.Time, error)
	Save(cfg *ModelsConfig, fetchedAt time.Time) error
	Purge() error
	Close() error
}

// Engine is the config cache orchestrator. It holds the in-memory catalog
// entry, decides between memory, persisted, remote and default data, and
// writes successful fetches back to the store.
//
// Every public operation yields a usable *ModelsConfig; failures along the
// fetch path degrade through the fallback layers instead of surfacing.
type Engine struct {
	fetcher Fetcher
	store   Store // may be nil (persistence disabled)

	ttl          time.Duration
	fetchTimeout time.Duration

	mu    sync.RWMutex
	entry *cacheEntry

	sched     *Scheduler
	closeOnce sync.Once
}

// Options configures a new Engine. Fetcher is required; everything else
// falls back to defaults.
type Options struct {
	Fetcher      Fetcher
	Store        Store
	TTL          time.Duration
	FetchTimeout time.Duration
	// AutoRefresh starts a background scheduler that forces a refresh
	// every TTL interval until Close is called.
	AutoRefresh bool
}

// New creates an Engine, adopting fresh persisted state if present and
// purging stale persisted state.
func New(opts Options) *Engine {
	e := &Engine{
		fetcher:      opts.Fetcher,
		store:        opts.Store,
		ttl:          opts.TTL,
		fetchTimeout: opts.FetchTimeout,
	}
	if e.ttl <= 0 {
		e.ttl = DefaultTTL
	}
	if e.fetchTimeout <= 0 {
		e.fetchTimeout = DefaultFetchTimeout
	}

	e.loadPersisted()

	if opts.AutoRefresh {
		e.sched = NewScheduler(e, e.ttl)
		e.sched.Start()
	}

	return e
}

// loadPersisted promotes a fresh persisted entry to memory, or purges a
// stale one so the first Resolve re-fetches.
func (e *Engine) loadPersisted() {
	if e.store == nil {
		return
	}

	cfg, fetchedAt, err := e.store.Load()
	if err != nil {
		L_warn("catalog: failed to load persisted catalog", "error", err)
		return
	}
	if cfg == nil {
		L_debug("catalog: no persisted catalog")
		return
	}

	entry := &cacheEntry{config: cfg, fetchedAt: fetchedAt}
	if !entry.fresh(e.ttl, time.Now()) {
		L_debug("catalog: persisted catalog is stale, purging", "age", time.Since(fetchedAt).String())
		if err := e.store.Purge(); err != nil {
			L_warn("catalog: failed to purge stale catalog", "error", err)
		}
		return
	}

	e.entry = entry
	L_debug("catalog: adopted persisted catalog", "version", cfg.Version, "age", time.Since(fetchedAt).String())
}

// Resolve returns the current catalog. With force false a fresh memory entry
// is served without I/O; otherwise a bounded remote fetch is attempted, and
// on failure the existing entry (fresh or stale) or the default dataset is
// served. Resolve never fails.
func (e *Engine) Resolve(ctx context.Context, force bool) *ModelsConfig {
	if !force {
		e.mu.RLock()
		if e.entry != nil && e.entry.fresh(e.ttl, time.Now()) {
			cfg := e.entry.config
			e.mu.RUnlock()
			return cfg
		}
		e.mu.RUnlock()
	}

	fctx, cancel := context.WithTimeout(ctx, e.fetchTimeout)
	defer cancel()

	cfg, err := e.fetcher.Fetch(fctx)
	if err != nil {
		L_warn("catalog: fetch failed, serving fallback", "error", err)
		e.mu.RLock()
		defer e.mu.RUnlock()
		if e.entry != nil {
			return e.entry.config
		}
		return DefaultDataset()
	}

	now := time.Now()
	e.mu.Lock()
	e.entry = &cacheEntry{config: cfg, fetchedAt: now}
	e.mu.Unlock()

	if e.store != nil {
		if err := e.store.Save(cfg, now); err != nil {
			L_warn("catalog: failed to persist catalog", "error", err)
		}
	}

	L_debug("catalog: refreshed", "version", cfg.Version, "providers", len(cfg.Providers))
	return cfg
}

// Refresh forces a remote fetch regardless of freshness. Used by the manual
// refresh path and the auto-refresh scheduler.
func (e *Engine) Refresh(ctx context.Context) *ModelsConfig {
	return e.Resolve(ctx, true)
}

// Providers returns the provider map of the current catalog.
func (e *Engine) Providers(ctx context.Context) map[string]ProviderConfig {
	return e.Resolve(ctx, false).Providers
}

// ProviderModels returns the models of one provider. The second result is
// false if the provider is absent from the current catalog.
func (e *Engine) ProviderModels(ctx context.Context, providerID string) (map[string]ModelConfig, bool) {
	p, ok := e.Resolve(ctx, false).Providers[providerID]
	if !ok {
		return nil, false
	}
	return p.Models, true
}

// Model returns the configuration of one model under one provider.
func (e *Engine) Model(ctx context.Context, providerID, modelID string) (ModelConfig, bool) {
	p, ok := e.Resolve(ctx, false).Providers[providerID]
	if !ok {
		return ModelConfig{}, false
	}
	m, ok := p.Models[modelID]
	return m, ok
}

// findModel searches every provider for modelID. Used by queries that are
// keyed on model ID alone.
func (e *Engine) findModel(ctx context.Context, modelID string) (ModelConfig, bool) {
	for _, p := range e.Resolve(ctx, false).Providers {
		if m, ok := p.Models[modelID]; ok {
			return m, true
		}
	}
	return ModelConfig{}, false
}

// Close stops the auto-refresh scheduler and releases the store. Safe to
// call more than once.
func (e *Engine) Close() error {
	var err error
	e.closeOnce.Do(func() {
		if e.sched != nil {
			e.sched.Stop()
		}
		if e.store != nil {
			err = e.store.Close()
		}
	})
	return err
}
