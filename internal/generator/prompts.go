package generator

import (
	"encoding/json"
	"fmt"
)

// PromptKeys are the keys of a well-formed result, in display order.
var PromptKeys = []string{"english", "midjourney", "leonardo", "dalle", "ideogram", "firefly"}

// Prompts is the typed view of a generated result.
type Prompts struct {
	English    string `json:"english"`
	Midjourney string `json:"midjourney"`
	Leonardo   string `json:"leonardo"`
	Dalle      string `json:"dalle"`
	Ideogram   string `json:"ideogram"`
	Firefly    string `json:"firefly"`
}

// validatePrompts checks that obj has exactly the six prompt keys and that
// every value is a string.
func validatePrompts(obj map[string]any) error {
	if len(obj) != len(PromptKeys) {
		return fmt.Errorf("expected %d keys, got %d", len(PromptKeys), len(obj))
	}
	for _, k := range PromptKeys {
		v, ok := obj[k]
		if !ok {
			return fmt.Errorf("missing key %q", k)
		}
		if _, ok := v.(string); !ok {
			return fmt.Errorf("key %q is %T, not a string", k, v)
		}
	}
	return nil
}

// Prompts decodes the payload into its typed form. Keys the payload lacks
// stay empty.
func (g *Generation) Prompts() (Prompts, error) {
	var p Prompts
	if err := json.Unmarshal(g.Payload, &p); err != nil {
		return Prompts{}, fmt.Errorf("decode prompts: %w", err)
	}
	return p, nil
}
