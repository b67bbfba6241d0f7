package catalog

import (
	"context"
	"errors"
	"testing"
	"time"
)

// queryEngine returns an engine holding a fresh catalog with a responses
// model, a chat model and a Google image model.
func queryEngine(t *testing.T) *Engine {
	t.Helper()

	streaming := true
	noStreaming := false
	thinking := true

	cfg := &ModelsConfig{
		Version: "2.0.0",
		Providers: map[string]ProviderConfig{
			"openai": {
				Name: "OpenAI",
				Models: map[string]ModelConfig{
					"gpt-4o": {
						Name:              "GPT-4o",
						APIType:           APITypeChatCompletions,
						SupportsStreaming: &streaming,
					},
					"chatgpt-4o-latest": {
						Name:    "ChatGPT-4o Latest",
						APIType: APITypeResponses,
					},
				},
			},
			"anthropic": {
				Name: "Anthropic",
				Models: map[string]ModelConfig{
					"claude-sonnet-4-5": {
						Name:              "Claude Sonnet 4.5",
						APIType:           APITypeChatCompletions,
						SupportsStreaming: &streaming,
						SupportsThinking:  &thinking,
					},
				},
			},
			"google": {
				Name: "Google",
				Models: map[string]ModelConfig{
					"gemini-2.5-flash": {
						Name:              "Gemini 2.5 Flash",
						APIType:           APITypeGenerateContent,
						SupportsStreaming: &streaming,
					},
					"gemini-2.5-flash-image": {
						Name:              "Gemini 2.5 Flash Image",
						APIType:           APITypeGenerateContent,
						SupportsStreaming: &noStreaming,
					},
				},
			},
		},
	}

	e := New(Options{Fetcher: &fakeFetcher{err: errors.New("offline")}})
	e.entry = &cacheEntry{config: cfg, fetchedAt: time.Now()}
	return e
}

// brokenEngine has no memory entry and a failing fetcher, so every query
// resolves against the default dataset and heuristics.
func brokenEngine() *Engine {
	return New(Options{Fetcher: &fakeFetcher{err: errors.New("offline")}})
}

func TestIsResponsesAPI(t *testing.T) {
	e := queryEngine(t)
	ctx := context.Background()

	if !e.IsResponsesAPI(ctx, "chatgpt-4o-latest") {
		t.Error("chatgpt-4o-latest is a responses model per catalog")
	}
	if e.IsResponsesAPI(ctx, "gpt-4o") {
		t.Error("gpt-4o is a chat-completions model per catalog")
	}

	// Absent from the catalog: heuristics take over.
	if !e.IsResponsesAPI(ctx, "gpt-4o-realtime-preview") {
		t.Error("gpt-4o-realtime-preview should match the static list")
	}
	if !e.IsResponsesAPI(ctx, "gpt-5.2-preview") {
		t.Error("gpt-5 family should match the prefix heuristic")
	}
	if e.IsResponsesAPI(ctx, "some-unknown-model") {
		t.Error("unknown models default to chat completions")
	}

	if !e.IsChatCompletionsAPI(ctx, "gpt-4o") {
		t.Error("IsChatCompletionsAPI must negate IsResponsesAPI")
	}
}

func TestIsImageModel(t *testing.T) {
	e := queryEngine(t)
	ctx := context.Background()

	if !e.IsImageModel(ctx, "google", "gemini-2.5-flash-image") {
		t.Error("gemini-2.5-flash-image is an image model")
	}
	if e.IsImageModel(ctx, "google", "gemini-2.5-flash") {
		t.Error("gemini-2.5-flash is not an image model")
	}

	// Not in the catalog: fragment heuristic.
	if !e.IsImageModel(ctx, "google", "imagen-3") {
		t.Error("imagen-3 should match the fragment heuristic")
	}
	if e.IsImageModel(ctx, "google", "gemini-pro-vision") {
		t.Error("vision models are not image models")
	}
}

func TestSupportsStreaming(t *testing.T) {
	e := queryEngine(t)
	ctx := context.Background()

	// Google rule applies without a catalog lookup.
	if e.SupportsStreaming(ctx, "google", "gemini-2.5-flash-image") {
		t.Error("google image models never stream")
	}
	if !e.SupportsStreaming(ctx, "google", "gemini-2.5-flash") {
		t.Error("non-image google models stream")
	}

	if !e.SupportsStreaming(ctx, "openai", "gpt-4o") {
		t.Error("gpt-4o streams per catalog flag")
	}
	if e.SupportsStreaming(ctx, "openai", "chatgpt-4o-latest") {
		t.Error("absent supports_streaming flag defaults to false")
	}
}

func TestSupportsStreamingHeuristics(t *testing.T) {
	e := brokenEngine()
	ctx := context.Background()

	if !e.SupportsStreaming(ctx, "openai", "any-model") {
		t.Error("openai defaults to streaming when the catalog has no entry")
	}
	if !e.SupportsStreaming(ctx, "anthropic", "any-model") {
		t.Error("anthropic defaults to streaming when the catalog has no entry")
	}
	if e.SupportsStreaming(ctx, "google", "unknown-image-model") {
		t.Error("google image heuristic applies even offline")
	}
	if e.SupportsStreaming(ctx, "mystery-vendor", "any-model") {
		t.Error("unknown providers default to no streaming")
	}
}

func TestIsThinkingModel(t *testing.T) {
	e := queryEngine(t)
	ctx := context.Background()

	if !e.IsThinkingModel(ctx, "anthropic", "claude-sonnet-4-5") {
		t.Error("claude-sonnet-4-5 is a thinking model per catalog")
	}
	if e.IsThinkingModel(ctx, "openai", "gpt-4o") {
		t.Error("absent supports_thinking flag defaults to false")
	}
	if e.IsThinkingModel(ctx, "openai", "not-in-catalog") {
		t.Error("thinking queries have no permissive fallback")
	}
}
