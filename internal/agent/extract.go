package agent

import (
	"encoding/json"
	"regexp"
	"strconv"
)

// parseDefaultConfidence applies when the engine's answer object carries no
// usable confidence value.
const parseDefaultConfidence = 70

// Delimited-block strategies, strictest first. Each captures a candidate
// JSON object body.
var extractionPatterns = []*regexp.Regexp{
	// <result>...</result> tags
	regexp.MustCompile(`(?s)<result>\s*(.*?)\s*</result>`),
	// ```json fenced block
	regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```"),
	// any fenced block
	regexp.MustCompile("(?s)```\\s*(.*?)\\s*```"),
}

// bareObjectPattern finds a flat JSON object mentioning "classification"
// anywhere in free text.
var bareObjectPattern = regexp.MustCompile(`(?s)\{[^{}]*"classification"[^{}]*\}`)

// extractAnswer searches engine text for a structured answer object,
// strict-to-loose. The first strategy yielding syntactically valid JSON
// wins; failure means the fallback path applies.
func extractAnswer(text string) (map[string]any, bool) {
	for _, pattern := range extractionPatterns {
		m := pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if obj, ok := parseObject(m[1]); ok {
			return obj, true
		}
	}

	if m := bareObjectPattern.FindString(text); m != "" {
		if obj, ok := parseObject(m); ok {
			return obj, true
		}
	}

	return parseObject(text)
}

func parseObject(s string) (map[string]any, bool) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(s), &obj); err != nil || obj == nil {
		return nil, false
	}
	return obj, true
}

// answerString reads a string field from the parsed answer.
func answerString(obj map[string]any, key string) (string, bool) {
	v, ok := obj[key].(string)
	return v, ok
}

// answerConfidence coerces the answer's confidence to an integer, accepting
// JSON numbers and numeric strings.
func answerConfidence(obj map[string]any) int {
	switch v := obj["confidence"].(type) {
	case float64:
		return int(v)
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return int(f)
		}
	}
	return parseDefaultConfidence
}
