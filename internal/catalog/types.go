// Package catalog provides the tiered model-capability registry: a remote
// models catalog cached in memory and on disk, with hardcoded defaults and
// per-query heuristics as the last fallback layers.
package catalog

import "time"

// APIType discriminates the wire-protocol dialect a model speaks.
type APIType string

const (
	// APITypeChatCompletions is the OpenAI chat-completions dialect.
	APITypeChatCompletions APIType = "chat_completions"
	// APITypeResponses is the OpenAI responses dialect.
	APITypeResponses APIType = "responses"
	// APITypeGenerateContent is the Google generate-content dialect.
	APITypeGenerateContent APIType = "generate_content"
)

// Known reports whether t is one of the dialects this code understands.
// Unrecognized values from newer catalog documents round-trip untouched.
func (t APIType) Known() bool {
	switch t {
	case APITypeChatCompletions, APITypeResponses, APITypeGenerateContent:
		return true
	}
	return false
}

// ModelsConfig is the root of the models catalog document. It is replaced
// wholesale on each successful refresh and never mutated in place.
type ModelsConfig struct {
	Version     string                    `json:"version"`
	LastUpdated string                    `json:"last_updated,omitempty"`
	Providers   map[string]ProviderConfig `json:"providers"`
}

// ProviderConfig describes one upstream model vendor.
type ProviderConfig struct {
	Name             string                 `json:"name"`
	Description      string                 `json:"description,omitempty"`
	SupportsThinking bool                   `json:"supports_thinking"`
	Models           map[string]ModelConfig `json:"models"`
}

// ModelConfig describes a single model offering and its capabilities.
type ModelConfig struct {
	Name              string  `json:"name"`
	Description       string  `json:"description,omitempty"`
	APIType           APIType `json:"api_type"`
	ContextWindow     int64   `json:"context_window"`
	SupportsVision    bool    `json:"supports_vision"`
	SupportsFunctions bool    `json:"supports_functions"`
	SupportsThinking  *bool   `json:"supports_thinking,omitempty"`
	SupportsStreaming *bool   `json:"supports_streaming,omitempty"`
	Pricing           Pricing `json:"pricing"`
}

// Pricing contains input/output cost per 1M tokens (USD).
type Pricing struct {
	Input  float64 `json:"input"`
	Output float64 `json:"output"`
}

// ThinkingEnabled resolves the optional supports_thinking flag, defaulting false.
func (m ModelConfig) ThinkingEnabled() bool {
	return m.SupportsThinking != nil && *m.SupportsThinking
}

// StreamingEnabled resolves the optional supports_streaming flag, defaulting false.
func (m ModelConfig) StreamingEnabled() bool {
	return m.SupportsStreaming != nil && *m.SupportsStreaming
}

// cacheEntry is the currently held catalog plus the time it was obtained.
type cacheEntry struct {
	config    *ModelsConfig
	fetchedAt time.Time
}

// fresh reports whether the entry is within the TTL window at time now.
// A stale entry is never discarded proactively - it stays usable as a
// fallback until successfully replaced.
func (e *cacheEntry) fresh(ttl time.Duration, now time.Time) bool {
	return now.Sub(e.fetchedAt) < ttl
}
