// Package resourcewrapper provides helper methods to navigate FHIR resources decoded from JSON
// into a map[string]any, standing in for the protobuf reflection based wrapper a model with a
// generated Go SDK would use.
package resourcewrapper

import (
	"fmt"
	"reflect"
	"strings"
)

// Resource wraps a single decoded FHIR resource (or any data model instance expressed as a JSON
// object): a map from element name to raw decoded JSON value (string, float64, bool, nil,
// []any, or nested map[string]any).
type Resource struct {
	typeName string
	data     map[string]any
}

// New returns a Resource of the given type (e.g. "Patient", "Observation") wrapping data.
func New(typeName string, data map[string]any) *Resource {
	return &Resource{typeName: typeName, data: data}
}

// ResourceType returns the resource's data model type name.
func (r *Resource) ResourceType() string {
	if r == nil {
		return ""
	}
	return r.typeName
}

// ResourceID returns the resource's "id" element, or "" if absent.
func (r *Resource) ResourceID() string {
	if r == nil {
		return ""
	}
	id, _ := r.data["id"].(string)
	return id
}

// Data returns the resource's raw decoded element map. Callers should treat this as read-only.
func (r *Resource) Data() map[string]any {
	if r == nil {
		return nil
	}
	return r.data
}

// Equal reports whether r and o wrap the same type and an equal element map.
func (r *Resource) Equal(o *Resource) bool {
	if r == nil || o == nil {
		return r == o
	}
	return r.typeName == o.typeName && reflect.DeepEqual(r.data, o.data)
}

// GetField looks up a single, non-polymorphic element by name directly on the resource, returning
// ok=false if the element is absent or null.
func (r *Resource) GetField(name string) (any, bool) {
	if r == nil {
		return nil, false
	}
	v, ok := r.data[name]
	return v, ok && v != nil
}

// GetChoiceField resolves a FHIR "value[x]" style polymorphic element: base is the property name
// without its type suffix (e.g. "value" for "valueQuantity"/"valueString"/...). It scans the
// resource's keys for one that starts with base and whose remainder, capitalized, names a type,
// returning the first match's raw value and the matched type suffix (e.g. "Quantity").
func (r *Resource) GetChoiceField(base string) (value any, typeSuffix string, ok bool) {
	if r == nil {
		return nil, "", false
	}
	for k, v := range r.data {
		if v == nil {
			continue
		}
		if k == base {
			return v, "", true
		}
		if strings.HasPrefix(k, base) && len(k) > len(base) {
			suffix := k[len(base):]
			if suffix[0] >= 'A' && suffix[0] <= 'Z' {
				return v, suffix, true
			}
		}
	}
	return nil, "", false
}

// Path splits a dotted FHIRPath-style property path ("component.code.coding") into segments.
func Path(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, ".")
}

// Navigate walks path from the resource's top-level element map, descending through nested
// map[string]any and []any values. It returns an error only when an intermediate segment
// resolves to a value that cannot be navigated further (e.g. a scalar with more path remaining).
func (r *Resource) Navigate(path []string) (any, error) {
	if r == nil {
		return nil, nil
	}
	var cur any = r.data
	for i, seg := range path {
		next, err := navigateOne(cur, seg)
		if err != nil {
			return nil, fmt.Errorf("resource %s: %w at segment %d (%q)", r.typeName, err, i, seg)
		}
		cur = next
	}
	return cur, nil
}

func navigateOne(cur any, seg string) (any, error) {
	switch v := cur.(type) {
	case map[string]any:
		if val, ok := v[seg]; ok {
			return val, nil
		}
		if val, _, ok := choiceLookup(v, seg); ok {
			return val, nil
		}
		return nil, nil
	case []any:
		out := make([]any, 0, len(v))
		for _, elem := range v {
			next, err := navigateOne(elem, seg)
			if err != nil {
				return nil, err
			}
			if next != nil {
				out = append(out, next)
			}
		}
		return out, nil
	case nil:
		return nil, nil
	default:
		return nil, fmt.Errorf("cannot navigate into scalar value %v", v)
	}
}

func choiceLookup(m map[string]any, base string) (any, string, bool) {
	for k, v := range m {
		if v == nil || k == base {
			continue
		}
		if strings.HasPrefix(k, base) && len(k) > len(base) {
			suffix := k[len(base):]
			if suffix[0] >= 'A' && suffix[0] <= 'Z' {
				return v, suffix, true
			}
		}
	}
	return nil, "", false
}
