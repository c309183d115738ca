package promo

import (
	"encoding/json"
	"strings"
)

// ParseJudgments extracts judgments from a model reply without trusting
// its shape. Accepted forms, tried in order: a bare JSON array, then a
// wrapper object with a "results", "data" or "items" array. Anything else
// yields nil.
func ParseJudgments(content string) []RawJudgment {
	text := strings.TrimSpace(content)
	if text == "" {
		return nil
	}

	// Models wrap JSON in markdown fences often enough to handle it here.
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
		text = strings.TrimSpace(text)
	}

	if out, ok := tryArray(text); ok {
		return out
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &wrapper); err == nil {
		for _, key := range []string{"results", "data", "items"} {
			if raw, ok := wrapper[key]; ok {
				if out, ok := tryArray(string(raw)); ok {
					return out
				}
			}
		}
	}
	return nil
}

func tryArray(text string) ([]RawJudgment, bool) {
	var out []RawJudgment
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return nil, false
	}
	return out, true
}
