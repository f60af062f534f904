package models

import "github.com/rickchristie/reagent"

// Providers report usage under different keys in GenerationInfo.
var (
	inputTokenKeys  = []string{"PromptTokens", "InputTokens", "input_tokens"}
	outputTokenKeys = []string{"CompletionTokens", "OutputTokens", "output_tokens"}
)

func usageFrom(info map[string]any) *reagent.Usage {
	in := firstInt(info, inputTokenKeys)
	out := firstInt(info, outputTokenKeys)
	if in == 0 && out == 0 {
		return nil
	}
	return &reagent.Usage{InputTokens: in, OutputTokens: out}
}

func firstInt(info map[string]any, keys []string) int {
	for _, k := range keys {
		if v := toInt(info[k]); v > 0 {
			return v
		}
	}
	return 0
}

func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int32:
		return int(n)
	case int64:
		return int(n)
	case float32:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}
