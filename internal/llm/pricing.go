package llm

import (
	"regexp"
	"strings"
)

// ModelCost is USD per one million tokens.
type ModelCost struct {
	InputPerMTok  float64
	OutputPerMTok float64
}

// Cost returns the USD cost of the given token counts.
func (c ModelCost) Cost(inputTokens, outputTokens int) float64 {
	return float64(inputTokens)*c.InputPerMTok/1_000_000 +
		float64(outputTokens)*c.OutputPerMTok/1_000_000
}

// datedSuffix matches snapshot suffixes such as -2024-07-18 or -20250514.
var datedSuffix = regexp.MustCompile(`-(\d{4}-\d{2}-\d{2}|\d{8})$`)

// LookupCost returns the pricing for a model ID, or nil if unknown.
// Provider prefixes ("openai/gpt-4o-mini") and dated snapshot suffixes
// are ignored when the exact ID is not listed.
func LookupCost(modelID string) *ModelCost {
	candidates := []string{modelID}
	if i := strings.LastIndex(modelID, "/"); i >= 0 {
		candidates = append(candidates, modelID[i+1:])
	}
	for _, id := range candidates {
		if c, ok := modelCosts[id]; ok {
			return &c
		}
		if trimmed := datedSuffix.ReplaceAllString(id, ""); trimmed != id {
			if c, ok := modelCosts[trimmed]; ok {
				return &c
			}
		}
	}
	return nil
}

// modelCosts lists list prices for the models Mate is configured with.
var modelCosts = map[string]ModelCost{
	// OpenAI
	"gpt-4o":       {2.5, 10},
	"gpt-4o-mini":  {0.15, 0.6},
	"gpt-4.1":      {2, 8},
	"gpt-4.1-mini": {0.4, 1.6},
	"gpt-4.1-nano": {0.1, 0.4},

	// Anthropic
	"claude-haiku-4-5":  {1, 5},
	"claude-sonnet-4":   {3, 15},
	"claude-sonnet-4-5": {3, 15},
	"claude-3-5-haiku":  {0.8, 4},

	// Google
	"gemini-2.0-flash":      {0.1, 0.4},
	"gemini-2.0-flash-lite": {0.075, 0.3},
	"gemini-2.5-flash":      {0.3, 2.5},
	"gemini-2.5-pro":        {1.25, 10},

	// Offline
	"mock": {0, 0},
}
