package catalog

import (
	_ "embed"
	"encoding/json"
	"sync"

	. "github.com/roelfdiedericks/modelmeta/internal/logging"
)

//go:embed defaults.json
var embeddedDefaults []byte

var (
	defaultsOnce sync.Once
	defaults     *ModelsConfig
)

// DefaultDataset returns the hardcoded last-resort catalog bundled with the
// binary. Callers must treat the result as read-only.
func DefaultDataset() *ModelsConfig {
	defaultsOnce.Do(func() {
		var cfg ModelsConfig
		if err := json.Unmarshal(embeddedDefaults, &cfg); err != nil {
			L_error("catalog: failed to parse embedded defaults.json", "error", err)
			cfg = ModelsConfig{Version: "1.0.0", Providers: map[string]ProviderConfig{}}
		}
		defaults = &cfg
	})
	return defaults
}
