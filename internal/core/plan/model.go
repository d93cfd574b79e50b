package plan

import (
	"encoding/json"
	"sort"
)

// =============================================================================
// Model
// =============================================================================

// Model is a decoded terraform plan. The raw keyed structure is always
// available through Content; the accessors below cover the parts tests
// usually assert on.
type Model struct {
	content map[string]any
}

// NewModel wraps an already decoded plan document.
func NewModel(content map[string]any) *Model {
	if content == nil {
		content = map[string]any{}
	}
	return &Model{content: content}
}

// Content returns the decoded plan document.
func (m *Model) Content() map[string]any {
	return m.content
}

// MarshalJSON encodes the plan document as it was decoded.
func (m *Model) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.content)
}

// FormatVersion returns the plan JSON format version.
func (m *Model) FormatVersion() string {
	return stringAt(m.content, "format_version")
}

// TerraformVersion returns the version of terraform that rendered the plan.
func (m *Model) TerraformVersion() string {
	return stringAt(m.content, "terraform_version")
}

// Variables returns input variable values by name.
func (m *Model) Variables() map[string]any {
	vars := map[string]any{}
	for name, raw := range mapAt(m.content, "variables") {
		if v, ok := raw.(map[string]any); ok {
			vars[name] = v["value"]
		}
	}
	return vars
}

// =============================================================================
// Resource Changes
// =============================================================================

// ResourceChange is one entry of the plan's resource_changes list.
type ResourceChange struct {
	Address       string
	ModuleAddress string
	Mode          string
	Type          string
	Name          string
	ProviderName  string
	Actions       []string
	Before        map[string]any
	After         map[string]any
}

// Is reports whether the change performs exactly the given actions,
// e.g. Is("create") or Is("delete", "create") for a replacement.
func (c ResourceChange) Is(actions ...string) bool {
	if len(actions) != len(c.Actions) {
		return false
	}
	for i, a := range actions {
		if c.Actions[i] != a {
			return false
		}
	}
	return true
}

// ResourceFilter selects resource changes. Empty fields match anything.
type ResourceFilter struct {
	Type          string
	Name          string
	ModuleAddress string
}

func (f ResourceFilter) matches(c ResourceChange) bool {
	if f.Type != "" && f.Type != c.Type {
		return false
	}
	if f.Name != "" && f.Name != c.Name {
		return false
	}
	if f.ModuleAddress != "" && f.ModuleAddress != c.ModuleAddress {
		return false
	}
	return true
}

// ResourceChanges returns every planned resource change in plan order.
func (m *Model) ResourceChanges() []ResourceChange {
	raw, _ := m.content["resource_changes"].([]any)
	changes := make([]ResourceChange, 0, len(raw))
	for _, item := range raw {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		change := mapAt(entry, "change")
		changes = append(changes, ResourceChange{
			Address:       stringAt(entry, "address"),
			ModuleAddress: stringAt(entry, "module_address"),
			Mode:          stringAt(entry, "mode"),
			Type:          stringAt(entry, "type"),
			Name:          stringAt(entry, "name"),
			ProviderName:  stringAt(entry, "provider_name"),
			Actions:       stringsAt(change, "actions"),
			Before:        mapAt(change, "before"),
			After:         mapAt(change, "after"),
		})
	}
	return changes
}

// ResourceChangesMatching returns the resource changes selected by filter.
func (m *Model) ResourceChangesMatching(filter ResourceFilter) []ResourceChange {
	var matched []ResourceChange
	for _, c := range m.ResourceChanges() {
		if filter.matches(c) {
			matched = append(matched, c)
		}
	}
	return matched
}

// =============================================================================
// Output Changes
// =============================================================================

// OutputChange is one entry of the plan's output_changes map.
type OutputChange struct {
	Name           string
	Actions        []string
	Before         any
	After          any
	AfterUnknown   bool
	AfterSensitive bool
}

// OutputChange returns the planned change for the named root module output.
func (m *Model) OutputChange(name string) (OutputChange, bool) {
	raw, ok := mapAt(m.content, "output_changes")[name].(map[string]any)
	if !ok {
		return OutputChange{}, false
	}
	return OutputChange{
		Name:           name,
		Actions:        stringsAt(raw, "actions"),
		Before:         raw["before"],
		After:          raw["after"],
		AfterUnknown:   boolAt(raw, "after_unknown"),
		AfterSensitive: boolAt(raw, "after_sensitive"),
	}, true
}

// OutputNames returns the names of all outputs with planned changes.
func (m *Model) OutputNames() []string {
	outputs := mapAt(m.content, "output_changes")
	names := make([]string, 0, len(outputs))
	for name := range outputs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// =============================================================================
// Lookup Helpers
// =============================================================================

func stringAt(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func boolAt(m map[string]any, key string) bool {
	b, _ := m[key].(bool)
	return b
}

func mapAt(m map[string]any, key string) map[string]any {
	v, _ := m[key].(map[string]any)
	return v
}

func stringsAt(m map[string]any, key string) []string {
	raw, _ := m[key].([]any)
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
