package provider

import "strings"

// urlKeys is the ordered key preference used when probing mappings for a
// result locator. Earlier keys win; a key whose value is itself a sequence
// or mapping is searched recursively before the next key is tried.
var urlKeys = []string{"url", "image", "output", "images", "src", "video", "audio", "result"}

// ExtractURL pulls a single result locator out of an arbitrarily shaped
// provider response that has been decoded from JSON. Provider responses
// share no schema: a bare string, a sequence, or a mapping are all common,
// so this is deliberately best-effort: it finds *a* plausible URL rather
// than validating a shape.
//
// The function is pure: it performs no I/O, and it pattern-matches on the
// decoded value with a type switch rather than reflection.
func ExtractURL(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		if strings.HasPrefix(v, "http://") || strings.HasPrefix(v, "https://") {
			return v, true
		}
		return "", false

	case []any:
		// Left-to-right, first qualifying element wins.
		for _, item := range v {
			if url, ok := ExtractURL(item); ok {
				return url, true
			}
		}
		return "", false

	case map[string]any:
		for _, key := range urlKeys {
			nested, present := v[key]
			if !present {
				continue
			}
			if url, ok := ExtractURL(nested); ok {
				return url, true
			}
		}
		return "", false

	default:
		// Numbers, booleans, null, unmatched shapes.
		return "", false
	}
}
