// Package catalog holds the static model catalog: the set of known model
// identifiers and their relative cost units. The catalog is used for
// submission validation and the listing endpoint only; it never drives
// execution, which is the provider router's job.
package catalog

import (
	"sort"
	"strings"
)

// Model describes one catalog entry.
type Model struct {
	ID string `json:"id"`

	// Cost is the relative cost unit of one generation with this model.
	Cost int `json:"cost"`
}

// defaultCosts maps known model identifiers to relative cost units.
var defaultCosts = map[string]int{
	"stable-diffusion-3.5": 1,
	"dalle-3":              2,
	"imagen-3":             2,
	"imagen-3-fast":        1,
	"flux-pro":             3,
	"flux-pro-ultra":       4,
	"flux-dev":             1,
	"ideogram-v2":          2,
	"recraft-v3-svg":       2,
	"hunyuan-video":        8,
	"wan-2.1":              6,
}

// Catalog is an immutable model catalog. Construct with New or Default
// and inject where needed; routing tables are configuration, not
// ambient global state.
type Catalog struct {
	costs map[string]int
}

// Default returns a catalog populated with the built-in model costs.
func Default() *Catalog {
	return New(defaultCosts)
}

// New builds a catalog from the given cost table. The table is copied,
// so later mutation of the argument does not affect the catalog.
func New(costs map[string]int) *Catalog {
	copied := make(map[string]int, len(costs))
	for id, cost := range costs {
		copied[id] = cost
	}
	return &Catalog{costs: copied}
}

// Contains reports whether the model identifier is a catalog member.
func (c *Catalog) Contains(model string) bool {
	_, ok := c.costs[model]
	return ok
}

// Cost returns the relative cost unit for a model and whether it is known.
func (c *Catalog) Cost(model string) (int, bool) {
	cost, ok := c.costs[model]
	return cost, ok
}

// Accepts reports whether a model identifier may be submitted: either a
// catalog member, or structurally a hosted-model reference. Hosted
// references are accepted without a catalog entry because the hosted
// provider's population changes independently of this service.
func (c *Catalog) Accepts(model string) bool {
	return c.Contains(model) || IsHostedReference(model)
}

// List returns all catalog entries sorted by identifier.
func (c *Catalog) List() []Model {
	models := make([]Model, 0, len(c.costs))
	for id, cost := range c.costs {
		models = append(models, Model{ID: id, Cost: cost})
	}
	sort.Slice(models, func(i, j int) bool { return models[i].ID < models[j].ID })
	return models
}

// IsHostedReference reports whether the identifier has the two-part
// "owner/name" shape of a hosted model: exactly one separator with a
// non-empty owner and name on either side.
func IsHostedReference(model string) bool {
	owner, name, ok := strings.Cut(model, "/")
	if !ok || owner == "" || name == "" {
		return false
	}
	return !strings.Contains(name, "/")
}
