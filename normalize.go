package tlrouter

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	leadingFence  = regexp.MustCompile("^```(?i:json)?[ \t]*\r?\n?")
	trailingFence = regexp.MustCompile("\r?\n?```\\s*$")
)

// NormalizeAnalysis extracts a TranslationResult from a model payload that may
// be wrapped in prose or a markdown code fence. It never fails: a payload with
// no parsable object yields an empty result.
func NormalizeAnalysis(payload string) *TranslationResult {
	if result, ok := parseResult(payload); ok {
		return result
	}
	return &TranslationResult{}
}

// NormalizeTranslation extracts the translation string from a model payload.
// Unparsable payloads, or objects without a translation field, degrade to the
// trimmed payload itself.
func NormalizeTranslation(payload string) string {
	trimmed := strings.TrimSpace(payload)
	if result, ok := parseResult(trimmed); ok && strings.TrimSpace(result.Translation) != "" {
		return strings.TrimSpace(result.Translation)
	}
	return trimmed
}

// parseResult tries a strict parse of the fence-stripped payload, then the
// span between the first '{' and the last '}' of the trimmed payload.
func parseResult(payload string) (*TranslationResult, bool) {
	trimmed := strings.TrimSpace(payload)
	if trimmed == "" {
		return nil, false
	}

	if result, ok := decodeResult(stripFence(trimmed)); ok {
		return result, true
	}

	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start >= 0 && end > start {
		if result, ok := decodeResult(trimmed[start : end+1]); ok {
			return result, true
		}
	}

	return nil, false
}

func stripFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = leadingFence.ReplaceAllString(s, "")
	s = trailingFence.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

func decodeResult(s string) (*TranslationResult, bool) {
	var result TranslationResult
	if err := json.Unmarshal([]byte(s), &result); err != nil {
		return nil, false
	}
	return &result, true
}
