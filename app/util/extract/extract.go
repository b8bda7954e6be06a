// Package extract pulls a single JSON object out of free-form model output.
package extract

import (
	"encoding/json"
	"regexp"
	"strings"
)

var fenceRe = regexp.MustCompile("(?s)```[ \t]*([A-Za-z0-9_-]*)[ \t]*\r?\n?(.*?)```")

// Object returns the JSON object embedded in text, or nil when there is none
// or it does not parse.
func Object(text string) map[string]any {
	var out map[string]any
	if !Into(text, &out) {
		return nil
	}

	return out
}

// Into decodes the embedded JSON object into dst and reports success.
// dst must be a pointer.
func Into(text string, dst any) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}

	for _, candidate := range candidates(text) {
		if decodeObject(candidate, dst) {
			return true
		}
	}

	return false
}

// candidates lists spans to try in order: fenced block bodies first, then the
// balanced outer brace span, then the greedy first-to-last brace span.
func candidates(text string) []string {
	var result []string

	for _, m := range fenceRe.FindAllStringSubmatch(text, -1) {
		label := strings.ToLower(m[1])
		body := strings.TrimSpace(m[2])
		if label == "json" || (label == "" && strings.HasPrefix(body, "{")) {
			result = append(result, body)
		}
	}

	if span, ok := balancedSpan(text); ok {
		result = append(result, span)
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		result = append(result, text[start:end+1])
	}

	return result
}

// balancedSpan finds the first '{' and its matching '}', ignoring braces that
// appear inside string literals.
func balancedSpan(text string) (string, bool) {
	start := strings.Index(text, "{")
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(text); i++ {
		c := text[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}

	return "", false
}

func decodeObject(candidate string, dst any) bool {
	candidate = strings.TrimSpace(candidate)
	if !strings.HasPrefix(candidate, "{") || !json.Valid([]byte(candidate)) {
		return false
	}

	return json.Unmarshal([]byte(candidate), dst) == nil
}
