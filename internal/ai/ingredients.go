package ai

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ingredientEntry accepts either a bare string or an object with a "name"
// field. Vision models return both shapes for the same prompt.
type ingredientEntry struct {
	Name string
}

func (e *ingredientEntry) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &e.Name)
	}
	var obj struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("ingredient entry is neither a string nor an object: %w", err)
	}
	e.Name = obj.Name
	return nil
}

type ingredientsEnvelope struct {
	Ingredients []ingredientEntry `json:"ingredients"`
}

// DecodeIngredients extracts the ingredient list from a model reply of the
// form {"ingredients": [...]}, tolerating code fences and surrounding prose.
// Blank entries are dropped.
func DecodeIngredients(raw string) ([]string, error) {
	body := cleanJSONText(raw)
	if body == "" {
		return nil, errors.New("no JSON object in model response")
	}

	var env ingredientsEnvelope
	if err := json.Unmarshal([]byte(body), &env); err != nil {
		return nil, fmt.Errorf("failed to parse ingredient JSON: %w", err)
	}

	out := make([]string, 0, len(env.Ingredients))
	for _, entry := range env.Ingredients {
		if name := strings.TrimSpace(entry.Name); name != "" {
			out = append(out, name)
		}
	}
	return out, nil
}

// cleanJSONText strips markdown code fences and returns the outermost
// {...} span of s, or "" when there is none.
func cleanJSONText(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}
