package prompt

import "strings"

// Clean strips markdown code fences from a model response and cuts it down
// to the span between the first '{' and the last '}'. Without such a span
// the trimmed text is returned. The result is not guaranteed to be valid JSON.
func Clean(raw string) string {
	text := strings.ReplaceAll(raw, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	text = strings.TrimSpace(text)

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		return text[start : end+1]
	}
	return text
}
