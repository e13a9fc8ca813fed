package core

import (
	"sort"

	"annotcore/pkg/interval"
)

// Plugin describes an annotation extension that contributes rules and
// spatial payload decoders.
type Plugin interface {
	Name() string
	Version() string
	Register(registry *PluginRegistry) error
}

// PluginRegistry accumulates plugin contributions during registration.
type PluginRegistry struct {
	rules    []Rule
	decoders map[string]interval.SpatialDecoder
}

// NewPluginRegistry constructs a plugin registry.
func NewPluginRegistry() *PluginRegistry {
	return &PluginRegistry{decoders: make(map[string]interval.SpatialDecoder)}
}

// RegisterRule adds an in-transaction rule contributed by the plugin.
func (r *PluginRegistry) RegisterRule(rule Rule) {
	if rule == nil {
		return
	}
	r.rules = append(r.rules, rule)
}

// RegisterSpatialDecoder adds a decoder for a custom spatial payload tag.
func (r *PluginRegistry) RegisterSpatialDecoder(tag string, dec interval.SpatialDecoder) {
	if tag == "" || dec == nil {
		return
	}
	r.decoders[tag] = dec
}

// Rules returns a copy of registered rules.
func (r *PluginRegistry) Rules() []Rule {
	out := make([]Rule, len(r.rules))
	copy(out, r.rules)
	return out
}

// RuleNames returns the names of registered rules, sorted.
func (r *PluginRegistry) RuleNames() []string {
	out := make([]string, 0, len(r.rules))
	for _, rule := range r.rules {
		out = append(out, rule.Name())
	}
	sort.Strings(out)
	return out
}

// SpatialDecoders returns a copy of registered decoders keyed by tag.
func (r *PluginRegistry) SpatialDecoders() map[string]interval.SpatialDecoder {
	out := make(map[string]interval.SpatialDecoder, len(r.decoders))
	for tag, dec := range r.decoders {
		out[tag] = dec
	}
	return out
}

// SpatialTags returns the registered spatial tags, sorted.
func (r *PluginRegistry) SpatialTags() []string {
	out := make([]string, 0, len(r.decoders))
	for tag := range r.decoders {
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}

// PluginMetadata stores metadata describing an installed plugin.
type PluginMetadata struct {
	Name        string
	Version     string
	Rules       []string
	SpatialTags []string
}
