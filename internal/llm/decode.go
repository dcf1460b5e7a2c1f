package llm

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Decode parses a model response into v, tolerating markdown code fences
// and leading prose around the JSON payload.
func Decode(raw string, v interface{}) error {
	cleaned := StripFences(raw)
	if cleaned == "" {
		return fmt.Errorf("empty model response")
	}

	if err := json.Unmarshal([]byte(cleaned), v); err != nil {
		// Models sometimes wrap JSON in explanation text. Try to recover
		// the outermost object or array before giving up.
		if extracted := extractJSON(cleaned); extracted != "" {
			if err2 := json.Unmarshal([]byte(extracted), v); err2 == nil {
				return nil
			}
		}
		return fmt.Errorf("decode model response: %w", err)
	}
	return nil
}

// StripFences removes markdown code fences (``` or ```json) from a model
// response and trims surrounding whitespace.
func StripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```")
	// Drop a language tag like "json" on the opening fence
	if idx := strings.Index(s, "\n"); idx >= 0 {
		firstLine := strings.TrimSpace(s[:idx])
		if len(firstLine) <= 10 && !strings.ContainsAny(firstLine, "{[") {
			s = s[idx+1:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// extractJSON finds the outermost JSON object or array in s.
func extractJSON(s string) string {
	for _, pair := range [][2]byte{{'{', '}'}, {'[', ']'}} {
		start := strings.IndexByte(s, pair[0])
		end := strings.LastIndexByte(s, pair[1])
		if start >= 0 && end > start {
			return s[start : end+1]
		}
	}
	return ""
}

// confidenceWords maps the qualitative labels models emit instead of
// numbers. Values follow common analyst usage.
var confidenceWords = map[string]float64{
	"very high": 0.9,
	"high":      0.8,
	"strong":    0.8,
	"moderate":  0.6,
	"medium":    0.6,
	"low":       0.3,
	"weak":      0.3,
	"very low":  0.15,
	"unknown":   0.5,
	"uncertain": 0.5,
}

// ParseConfidence converts whatever a model put in a confidence field
// into a float in [0, 1]. It never fails: unparseable input maps to 0.5.
func ParseConfidence(v interface{}) float64 {
	switch val := v.(type) {
	case float64:
		return clamp01(val)
	case float32:
		return clamp01(float64(val))
	case int:
		return clampIntConfidence(float64(val))
	case int64:
		return clampIntConfidence(float64(val))
	case json.Number:
		if f, err := val.Float64(); err == nil {
			return clampIntConfidence(f)
		}
		return 0.5
	case string:
		return parseConfidenceString(val)
	case nil:
		return 0.5
	default:
		return 0.5
	}
}

func parseConfidenceString(s string) float64 {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0.5
	}

	// Percentage form: "85%" or "85 percent"
	if strings.HasSuffix(s, "%") {
		if f, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64); err == nil {
			return clamp01(f / 100)
		}
	}

	// Plain number, possibly with a trailing qualifier: "0.9 (strong)"
	fields := strings.Fields(s)
	if len(fields) > 0 {
		if f, err := strconv.ParseFloat(fields[0], 64); err == nil {
			return clampIntConfidence(f)
		}
	}

	// Qualitative labels, longest match first so "very high" wins over "high"
	if f, ok := confidenceWords[s]; ok {
		return f
	}
	for _, word := range []string{"very high", "very low", "high", "strong", "moderate", "medium", "low", "weak"} {
		if strings.Contains(s, word) {
			return confidenceWords[word]
		}
	}

	return 0.5
}

// clampIntConfidence handles models that answer on a 0-100 scale.
func clampIntConfidence(f float64) float64 {
	if f > 1 && f <= 100 {
		return clamp01(f / 100)
	}
	return clamp01(f)
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
