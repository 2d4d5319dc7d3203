// Package interpret turns loosely structured generation results and human
// replies into field maps.
//
// Input may be an already structured value, a JSON document, or JSON wrapped
// in prose or markdown fences. Decoding never fails on non-empty input: text
// that cannot be decoded is returned as a single field so callers can keep
// going.
package interpret

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Fields is the structured form of one result.
type Fields map[string]any

// String returns the value under key as text. Non-string values are rendered
// with fmt; missing keys yield "".
func (f Fields) String(key string) string {
	v, ok := f[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Bool reports the value under key when it is a JSON boolean.
func (f Fields) Bool(key string) (value, ok bool) {
	v, present := f[key]
	if !present {
		return false, false
	}
	b, isBool := v.(bool)
	return b, isBool
}

// Interpret decodes raw into Fields. It returns nil only when raw carries no
// usable text. Undecodable text degrades to {fallbackKey: text}.
func Interpret(raw any, fallbackKey string) Fields {
	switch v := raw.(type) {
	case nil:
		return nil
	case Fields:
		return copyMap(v)
	case map[string]any:
		return copyMap(v)
	case map[string]string:
		out := make(Fields, len(v))
		for k, s := range v {
			out[k] = s
		}
		return nonEmpty(out)
	case string:
		return interpretText(v, fallbackKey)
	case []byte:
		return interpretText(string(v), fallbackKey)
	case fmt.Stringer:
		return interpretText(v.String(), fallbackKey)
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return interpretText(fmt.Sprint(v), fallbackKey)
		}
		return interpretText(string(data), fallbackKey)
	}
}

// Degraded reports whether f is the single-field fallback for key.
func Degraded(f Fields, fallbackKey string) bool {
	if len(f) != 1 {
		return false
	}
	_, ok := f[fallbackKey]
	return ok
}

func interpretText(text, fallbackKey string) Fields {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}

	candidate := ExtractJSON(trimmed)

	var obj map[string]any
	if err := json.Unmarshal([]byte(candidate), &obj); err == nil && len(obj) > 0 {
		return Fields(obj)
	}

	var str string
	if err := json.Unmarshal([]byte(candidate), &str); err == nil && strings.TrimSpace(str) != "" {
		return Fields{fallbackKey: strings.TrimSpace(str)}
	}

	return Fields{fallbackKey: StripFences(trimmed)}
}

// ExtractJSON returns the JSON payload of a model response: the body of the
// first fenced block if there is one, else the first balanced {...} span,
// else the text unchanged.
func ExtractJSON(text string) string {
	if body, ok := fencedBody(text); ok {
		return strings.TrimSpace(body)
	}

	start := strings.Index(text, "{")
	if start == -1 {
		return strings.TrimSpace(text)
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		switch {
		case escaped:
			escaped = false
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}

	return strings.TrimSpace(text)
}

// StripFences removes a surrounding markdown code fence, with or without a
// language tag. Text without a fence is returned trimmed.
func StripFences(text string) string {
	if body, ok := fencedBody(text); ok {
		return strings.TrimSpace(body)
	}
	return strings.TrimSpace(text)
}

func fencedBody(text string) (string, bool) {
	lines := strings.Split(text, "\n")
	inBlock := false
	var body []string

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			if inBlock {
				return strings.Join(body, "\n"), true
			}
			inBlock = true
			// ```{"a":1}``` on one line
			rest := strings.TrimPrefix(trimmed, "```")
			if strings.HasSuffix(rest, "```") && len(rest) >= 3 {
				return strings.TrimSuffix(rest, "```"), true
			}
			continue
		}
		if inBlock {
			body = append(body, line)
		}
	}

	// An unterminated fence still counts; models often drop the closing marker.
	if inBlock && len(body) > 0 {
		return strings.Join(body, "\n"), true
	}
	return "", false
}

func copyMap(m map[string]any) Fields {
	if len(m) == 0 {
		return nil
	}
	out := make(Fields, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func nonEmpty(f Fields) Fields {
	if len(f) == 0 {
		return nil
	}
	return f
}
