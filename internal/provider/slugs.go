package provider

import "strings"

// defaultSlugs maps catalog model identifiers to their hosted "owner/name"
// slugs. New hosted models normally need no entry at all: an identifier that
// already has the owner/name shape routes without one, and operators can
// override or extend this table through configuration.
var defaultSlugs = map[string]string{
	"STABLE_DIFFUSION_3_5": "stability-ai/stable-diffusion-3.5-large",
	"FLUX_PRO":             "black-forest-labs/flux-1.1-pro",
	"FLUX_PRO_ULTRA":       "black-forest-labs/flux-1.1-pro-ultra",
	"FLUX_DEV":             "black-forest-labs/flux-dev",
	"IDEOGRAM_V2":          "ideogram-ai/ideogram-v2",
	"RECRAFT_V3_SVG":       "recraft-ai/recraft-v3-svg",
	"HUNYUAN_VIDEO":        "tencent/hunyuan-video",
	"WAN_2_1":              "wan-video/wan-2.1-t2v-14b",
}

// NormalizeModelKey converts a model identifier into the normalized form
// used as a slug-table key: uppercase with every separator run replaced by
// a single underscore. "stable-diffusion-3.5" becomes
// "STABLE_DIFFUSION_3_5", which doubles as the suffix of the environment
// variable that overrides the slug.
func NormalizeModelKey(model string) string {
	var b strings.Builder
	b.Grow(len(model))
	lastUnderscore := false
	for _, r := range strings.ToUpper(model) {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	return strings.Trim(b.String(), "_")
}

// SlugTable resolves model identifiers to hosted slugs. Built-in defaults
// are consulted after operator-supplied overrides so that configuration can
// repoint a model without a code change.
type SlugTable struct {
	overrides map[string]string
}

// NewSlugTable builds a slug table from configuration overrides keyed by
// normalized model identifier. A nil or empty map leaves only the built-in
// defaults active.
func NewSlugTable(overrides map[string]string) *SlugTable {
	normalized := make(map[string]string, len(overrides))
	for key, slug := range overrides {
		normalized[NormalizeModelKey(key)] = slug
	}
	return &SlugTable{overrides: normalized}
}

// Lookup returns the hosted slug for a model identifier, if any. An
// identifier that already has the owner/name shape resolves to itself when
// no table entry says otherwise.
func (t *SlugTable) Lookup(model string) (string, bool) {
	key := NormalizeModelKey(model)
	if slug, ok := t.overrides[key]; ok {
		return slug, true
	}
	if slug, ok := defaultSlugs[key]; ok {
		return slug, true
	}
	return "", false
}
