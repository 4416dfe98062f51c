package llm

import "strings"

// ExtractJSONObject returns the outermost {...} span of a model answer.
// Surrounding prose and markdown code fences are dropped.
func ExtractJSONObject(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}
