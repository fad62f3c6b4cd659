// Package catalog lists the models a user can chat with.
package catalog

import (
	"fmt"
	"sort"

	"nebula-hq/nebula/pkg/providers"
)

// Model describes one selectable model. ID is the logical id used for
// histories and the CLI; VendorModel is what the vendor API expects.
type Model struct {
	ID                string                `json:"id" yaml:"id"`
	Name              string                `json:"name" yaml:"name"`
	Description       string                `json:"description,omitempty" yaml:"description"`
	Provider          providers.ProviderTag `json:"provider" yaml:"provider"`
	VendorModel       string                `json:"vendor_model" yaml:"vendor_model"`
	SystemInstruction string                `json:"system_instruction,omitempty" yaml:"system_instruction"`
	ThinkingBudget    *int                  `json:"thinking_budget,omitempty" yaml:"thinking_budget"`
}

// Validate checks that m can be dispatched.
func (m Model) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("model id is required")
	}
	if !m.Provider.Valid() {
		return fmt.Errorf("model %q: %w", m.ID, &providers.UnsupportedProviderError{Provider: m.Provider.String()})
	}
	if m.VendorModel == "" {
		return fmt.Errorf("model %q: vendor_model is required", m.ID)
	}
	return nil
}

// clone returns a deep copy of m.
func (m Model) clone() Model {
	if m.ThinkingBudget != nil {
		budget := *m.ThinkingBudget
		m.ThinkingBudget = &budget
	}
	return m
}

// Catalog is an immutable, ordered set of models.
type Catalog struct {
	models []Model
	byID   map[string]int
}

// New builds a catalog from models, in order. Later duplicates of an id
// replace earlier ones in place.
func New(models ...Model) (*Catalog, error) {
	c := &Catalog{byID: make(map[string]int, len(models))}
	for _, m := range models {
		if err := m.Validate(); err != nil {
			return nil, err
		}
		if i, ok := c.byID[m.ID]; ok {
			c.models[i] = m.clone()
			continue
		}
		c.byID[m.ID] = len(c.models)
		c.models = append(c.models, m.clone())
	}
	return c, nil
}

// Default returns the built-in catalog extended with extra.
func Default(extra ...Model) (*Catalog, error) {
	return New(append(Builtin(), extra...)...)
}

// Get returns a copy of the model with id.
func (c *Catalog) Get(id string) (Model, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Model{}, false
	}
	return c.models[i].clone(), true
}

// MustGet is like Get but panics on an unknown id.
func (c *Catalog) MustGet(id string) Model {
	m, ok := c.Get(id)
	if !ok {
		panic(fmt.Sprintf("catalog: unknown model %q", id))
	}
	return m
}

// Models returns copies of all models in catalog order.
func (c *Catalog) Models() []Model {
	out := make([]Model, len(c.models))
	for i, m := range c.models {
		out[i] = m.clone()
	}
	return out
}

// ByProvider returns the models served by tag.
func (c *Catalog) ByProvider(tag providers.ProviderTag) []Model {
	var out []Model
	for _, m := range c.models {
		if m.Provider == tag {
			out = append(out, m.clone())
		}
	}
	return out
}

// IDs returns the sorted model ids.
func (c *Catalog) IDs() []string {
	ids := make([]string, 0, len(c.models))
	for _, m := range c.models {
		ids = append(ids, m.ID)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of models.
func (c *Catalog) Len() int {
	return len(c.models)
}
