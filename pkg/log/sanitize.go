package log

import (
	"encoding/json"
	"reflect"
	"strings"
)

// RedactedValue replaces sensitive values in event payloads.
const RedactedValue = "[REDACTED]"

var sensitiveKeywords = []string{
	"password", "passwd", "pwd",
	"api_key", "apikey", "api-key",
	"token", "secret",
	"auth", "credential",
	"private_key", "privatekey",
	"dsn",
}

// IsSensitiveKey reports whether a field name looks like it carries a secret.
func IsSensitiveKey(key string) bool {
	lowerKey := strings.ToLower(key)
	for _, keyword := range sensitiveKeywords {
		if strings.Contains(lowerKey, keyword) {
			return true
		}
	}
	return false
}

// SanitizeField checks if the key contains sensitive keywords and sanitizes the value
func SanitizeField(key, value string) string {
	if value == "" {
		return value
	}

	lowerKey := strings.ToLower(key)
	if strings.Contains(lowerKey, "email") || strings.Contains(lowerKey, "mail") {
		return sanitizeEmail(value)
	}

	if IsSensitiveKey(key) {
		return sanitizeToken(value)
	}

	return value
}

// RedactPayload returns a deep copy of payload in which the value of every
// sensitive key is replaced by RedactedValue. Nested maps and slices are walked.
// The input is never modified.
func RedactPayload(payload map[string]any) map[string]any {
	if payload == nil {
		return nil
	}
	out := make(map[string]any, len(payload))
	for k, v := range payload {
		if IsSensitiveKey(k) {
			out[k] = RedactedValue
			continue
		}
		out[k] = redactValue(v)
	}
	return out
}

func redactValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return RedactPayload(val)
	case []any:
		items := make([]any, len(val))
		for i, item := range val {
			items[i] = redactValue(item)
		}
		return items
	case []map[string]any:
		items := make([]any, len(val))
		for i, item := range val {
			items[i] = RedactPayload(item)
		}
		return items
	default:
		if !isComposite(v) {
			return v
		}
		normalized, ok := normalize(v)
		if !ok {
			return RedactedValue
		}
		return redactValue(normalized)
	}
}

// isComposite reports whether v is a typed map, slice, struct or pointer whose
// contents cannot be walked without normalizing it first.
func isComposite(v any) bool {
	switch reflect.ValueOf(v).Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct, reflect.Pointer, reflect.Interface:
		return true
	default:
		return false
	}
}

// normalize converts v into the generic map[string]any / []any / scalar shape by
// way of its JSON encoding. Values that fail to encode are reported as not ok.
func normalize(v any) (any, bool) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, false
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, false
	}
	return out, true
}

// sanitizeToken masks a secret, keeping the first and last 4 characters of long values.
func sanitizeToken(value string) string {
	if len(value) <= 8 {
		if len(value) <= 2 {
			return strings.Repeat("*", len(value))
		}
		return string(value[0]) + strings.Repeat("*", len(value)-2) + string(value[len(value)-1])
	}

	return value[:4] + strings.Repeat("*", len(value)-8) + value[len(value)-4:]
}

// sanitizeEmail keeps the first 3 characters of the local part and the domain.
func sanitizeEmail(value string) string {
	local, domain, ok := strings.Cut(value, "@")
	if !ok || strings.Contains(domain, "@") {
		return strings.Repeat("*", len(value))
	}

	switch {
	case local == "":
		return "@" + domain
	case len(local) <= 3:
		return string(local[0]) + strings.Repeat("*", len(local)-1) + "@" + domain
	default:
		return local[:3] + "***@" + domain
	}
}
