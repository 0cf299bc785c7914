package masking

import "strings"

const maskToken = "****"

// MaskContact redacts an email or phone number while keeping enough to
// recognise it in an audit trail.
func MaskContact(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}
	if at := strings.LastIndex(trimmed, "@"); at > 0 {
		return trimmed[:1] + maskToken + trimmed[at:]
	}
	if len(trimmed) <= 4 {
		return maskToken
	}
	return maskToken + trimmed[len(trimmed)-4:]
}

// MaskFields returns a copy of input with the string values under keys
// masked. Nested maps are masked with the same keys.
func MaskFields(input map[string]any, keys ...string) map[string]any {
	if len(input) == 0 {
		return nil
	}
	sensitive := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		sensitive[strings.ToLower(key)] = struct{}{}
	}

	masked := make(map[string]any, len(input))
	for key, value := range input {
		trimmedKey := strings.TrimSpace(key)
		if trimmedKey == "" {
			continue
		}
		if _, ok := sensitive[strings.ToLower(trimmedKey)]; ok {
			if s, isString := value.(string); isString {
				masked[trimmedKey] = MaskContact(s)
				continue
			}
		}
		if nested, ok := value.(map[string]any); ok {
			masked[trimmedKey] = MaskFields(nested, keys...)
			continue
		}
		masked[trimmedKey] = value
	}
	return masked
}
