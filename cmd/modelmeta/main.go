package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"github.com/roelfdiedericks/modelmeta/internal/catalog"
	"github.com/roelfdiedericks/modelmeta/internal/config"
	. "github.com/roelfdiedericks/modelmeta/internal/logging"
	"github.com/roelfdiedericks/modelmeta/internal/store"
)

const version = "0.1.0"

type cli struct {
	Debug bool   `help:"Enable debug logging." short:"d"`
	URL   string `help:"Override the catalog URL."`

	Providers providersCmd `cmd:"" help:"List known providers."`
	Models    modelsCmd    `cmd:"" help:"List models for a provider."`
	Model     modelCmd     `cmd:"" help:"Show one model's configuration."`
	Check     checkCmd     `cmd:"" help:"Answer capability queries for a model."`
	Refresh   refreshCmd   `cmd:"" help:"Force a catalog refresh."`
	Watch     watchCmd     `cmd:"" help:"Run with periodic auto-refresh until interrupted."`
	Version   versionCmd   `cmd:"" help:"Print the modelmeta version."`
}

// appEnv carries everything commands need to build an engine.
type appEnv struct {
	cfg *config.Config
}

// engine constructs the cache engine per the loaded config. A store open
// failure disables persistence but never blocks the CLI.
func (a *appEnv) engine(autoRefresh bool) *catalog.Engine {
	opts := catalog.Options{
		Fetcher:      catalog.NewHTTPFetcher(a.cfg.Catalog.URL),
		TTL:          msToDuration(a.cfg.Catalog.TTLMs),
		FetchTimeout: msToDuration(a.cfg.Catalog.FetchTimeoutMs),
		AutoRefresh:  autoRefresh,
	}

	cachePath, err := a.cfg.DefaultCachePath()
	if err != nil {
		L_warn("persistence disabled, cannot resolve cache path", "error", err)
	} else if st, err := store.NewSQLiteStore(cachePath); err != nil {
		L_warn("persistence disabled, cannot open cache database", "error", err)
	} else {
		opts.Store = st
	}

	return catalog.New(opts)
}

type providersCmd struct{}

func (c *providersCmd) Run(app *appEnv) error {
	eng := app.engine(false)
	defer eng.Close()

	providers := eng.Providers(context.Background())
	for _, id := range sortedKeys(providers) {
		p := providers[id]
		fmt.Printf("%-12s %s (%d models)\n", id, p.Name, len(p.Models))
	}
	return nil
}

type modelsCmd struct {
	Provider string `arg:"" help:"Provider ID (e.g. openai, anthropic, google)."`
}

func (c *modelsCmd) Run(app *appEnv) error {
	eng := app.engine(false)
	defer eng.Close()

	models, ok := eng.ProviderModels(context.Background(), c.Provider)
	if !ok {
		return fmt.Errorf("unknown provider: %s", c.Provider)
	}
	for _, id := range sortedKeys(models) {
		m := models[id]
		fmt.Printf("%-40s %-18s ctx=%d\n", id, m.APIType, m.ContextWindow)
	}
	return nil
}

type modelCmd struct {
	Provider string `arg:"" help:"Provider ID."`
	ID       string `arg:"" help:"Model ID."`
}

func (c *modelCmd) Run(app *appEnv) error {
	eng := app.engine(false)
	defer eng.Close()

	m, ok := eng.Model(context.Background(), c.Provider, c.ID)
	if !ok {
		return fmt.Errorf("unknown model: %s/%s", c.Provider, c.ID)
	}

	fmt.Printf("name:            %s\n", m.Name)
	fmt.Printf("api_type:        %s\n", m.APIType)
	fmt.Printf("context_window:  %d\n", m.ContextWindow)
	fmt.Printf("vision:          %v\n", m.SupportsVision)
	fmt.Printf("functions:       %v\n", m.SupportsFunctions)
	fmt.Printf("thinking:        %v\n", m.ThinkingEnabled())
	fmt.Printf("streaming:       %v\n", m.StreamingEnabled())
	fmt.Printf("pricing:         $%.2f in / $%.2f out per 1M tokens\n", m.Pricing.Input, m.Pricing.Output)
	return nil
}

type checkCmd struct {
	Provider string `arg:"" help:"Provider ID."`
	ID       string `arg:"" help:"Model ID."`
}

func (c *checkCmd) Run(app *appEnv) error {
	eng := app.engine(false)
	defer eng.Close()

	ctx := context.Background()
	fmt.Printf("responses_api:    %v\n", eng.IsResponsesAPI(ctx, c.ID))
	fmt.Printf("chat_completions: %v\n", eng.IsChatCompletionsAPI(ctx, c.ID))
	fmt.Printf("image_model:      %v\n", eng.IsImageModel(ctx, c.Provider, c.ID))
	fmt.Printf("streaming:        %v\n", eng.SupportsStreaming(ctx, c.Provider, c.ID))
	fmt.Printf("thinking:         %v\n", eng.IsThinkingModel(ctx, c.Provider, c.ID))
	return nil
}

type refreshCmd struct{}

func (c *refreshCmd) Run(app *appEnv) error {
	eng := app.engine(false)
	defer eng.Close()

	cfg := eng.Refresh(context.Background())
	fmt.Printf("catalog version %s, %d providers\n", cfg.Version, len(cfg.Providers))
	return nil
}

type watchCmd struct{}

func (c *watchCmd) Run(app *appEnv) error {
	eng := app.engine(true)
	defer eng.Close()

	eng.Resolve(context.Background(), false)
	L_info("watching catalog, press ctrl-c to stop", "url", app.cfg.Catalog.URL)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	L_info("shutting down")
	return nil
}

type versionCmd struct{}

func (c *versionCmd) Run(app *appEnv) error {
	fmt.Printf("modelmeta %s\n", version)
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func msToDuration(ms int64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

func main() {
	var c cli
	kctx := kong.Parse(&c,
		kong.Name("modelmeta"),
		kong.Description("Client-side capability registry for AI model providers."),
		kong.UsageOnError(),
	)

	logCfg := DefaultConfig()
	if c.Debug {
		logCfg.Level = LevelDebug
	}
	Init(logCfg)

	cfg, err := config.Load()
	if err != nil {
		L_fatal("failed to load config: %v", err)
	}
	if c.URL != "" {
		cfg.Catalog.URL = c.URL
	}

	err = kctx.Run(&appEnv{cfg: cfg})
	kctx.FatalIfErrorf(err)
}
