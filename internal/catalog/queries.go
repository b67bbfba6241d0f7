package catalog

import (
	"context"
	"strings"
)

// Capability queries answer yes/no questions about a model. Each query reads
// the resolved catalog first and falls back to a static heuristic only when
// the provider/model is absent from it - never merely because a flag is
// false. The heuristics keep model-selection surfaces usable for well-known
// models while the catalog endpoint is unreachable.

// responsesAPIModels lists model IDs known to speak the responses dialect,
// used when the catalog has no entry for the model.
var responsesAPIModels = map[string]bool{
	"chatgpt-4o-latest":                  true,
	"gpt-4o-realtime-preview":            true,
	"gpt-4o-realtime-preview-2024-10-01": true,
}

// imageModelFragments are name fragments of known image models, used when
// the catalog has no entry for the model.
var imageModelFragments = []string{"image", "imagen"}

// streamingProviderDefaults holds the per-provider streaming assumption used
// when the catalog has no entry for the model.
var streamingProviderDefaults = map[string]bool{
	"openai":    true,
	"anthropic": true,
}

// IsResponsesAPI reports whether the model speaks the responses-style
// dialect rather than chat completions.
func (e *Engine) IsResponsesAPI(ctx context.Context, modelID string) bool {
	if m, ok := e.findModel(ctx, modelID); ok {
		return m.APIType == APITypeResponses
	}
	if responsesAPIModels[modelID] {
		return true
	}
	// The o-series and gpt-5 family are responses-only.
	return strings.HasPrefix(modelID, "gpt-5") || strings.HasPrefix(modelID, "o3")
}

// IsChatCompletionsAPI is the negation of IsResponsesAPI.
func (e *Engine) IsChatCompletionsAPI(ctx context.Context, modelID string) bool {
	return !e.IsResponsesAPI(ctx, modelID)
}

// IsImageModel reports whether the model is an image-generation model.
func (e *Engine) IsImageModel(ctx context.Context, providerID, modelID string) bool {
	if m, ok := e.Model(ctx, providerID, modelID); ok {
		return strings.Contains(strings.ToLower(modelID), "image") ||
			strings.Contains(strings.ToLower(m.Name), "image")
	}
	lower := strings.ToLower(modelID)
	for _, frag := range imageModelFragments {
		if strings.Contains(lower, frag) {
			return true
		}
	}
	return false
}

// SupportsStreaming reports whether the model supports streamed responses.
// Google models stream unless they are image models; everything else goes by
// the catalog flag, defaulting false.
func (e *Engine) SupportsStreaming(ctx context.Context, providerID, modelID string) bool {
	if providerID == "google" {
		return !strings.Contains(strings.ToLower(modelID), "image")
	}
	if m, ok := e.Model(ctx, providerID, modelID); ok {
		return m.StreamingEnabled()
	}
	return streamingProviderDefaults[providerID]
}

// IsThinkingModel reports whether the model supports extended thinking,
// defaulting false.
func (e *Engine) IsThinkingModel(ctx context.Context, providerID, modelID string) bool {
	if m, ok := e.Model(ctx, providerID, modelID); ok {
		return m.ThinkingEnabled()
	}
	return false
}
