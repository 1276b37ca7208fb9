// Package modelinfo tracks the type hierarchy and property shapes of the data models (System and
// any "using" data model, e.g. FHIR) a library compiles against. Unlike the teacher's XML-backed
// ModelInfos, this registry is populated programmatically by a DataSource or by tests, since no
// ModelInfo XML schema is vendored here.
package modelinfo

import (
	"errors"
	"fmt"

	"github.com/example/cqlcore/types"
)

// ClassInfo describes one Named (data model) class: its properties and, for choice typed
// elements like FHIR's "value[x]", the set of element suffixes that substitute for [x].
type ClassInfo struct {
	// Name is the class's unqualified type name, e.g. "Patient".
	Name string
	// BaseType is the unqualified name of the parent class, or "" for a root class.
	BaseType string
	// Properties maps a property name to its declared type.
	Properties map[string]types.IType
	// ChoiceProperties maps a choice property's base name (e.g. "value" for "valueQuantity") to
	// its declared Choice type.
	ChoiceProperties map[string]*types.Choice
	// Retrievable reports whether the class may be the subject of a Retrieve expression.
	Retrievable bool
	// PrimaryCodePath is the property path used for code filtering when a Retrieve omits one.
	PrimaryCodePath string
}

// Registry is the type hierarchy and property catalogue for one evaluation. It always knows the
// System types; a DataSource registers its own classes (e.g. FHIR resources) on top.
type Registry struct {
	classes map[string]*ClassInfo
}

// New returns an empty Registry. Callers should register every class their DataSource can return
// before evaluation begins.
func New() *Registry {
	return &Registry{classes: make(map[string]*ClassInfo)}
}

// Register adds or replaces a class definition.
func (r *Registry) Register(ci *ClassInfo) {
	r.classes[ci.Name] = ci
}

// ErrTypeNotFound is returned when a Named type has no registered ClassInfo.
var ErrTypeNotFound = errors.New("not found in data model")

// ErrPropertyNotFound is returned when a property does not exist on a class or any of its
// ancestors.
var ErrPropertyNotFound = errors.New("property not found in data model")

// ClassOf returns the ClassInfo for a Named type.
func (r *Registry) ClassOf(n *types.Named) (*ClassInfo, error) {
	ci, ok := r.classes[n.Name]
	if !ok {
		return nil, fmt.Errorf("%s %w", n.Name, ErrTypeNotFound)
	}
	return ci, nil
}

// PropertyType resolves the declared type of a property on a Named class, walking up the BaseType
// chain. For a choice property the returned type is the *types.Choice.
func (r *Registry) PropertyType(className, property string) (types.IType, error) {
	for className != "" {
		ci, ok := r.classes[className]
		if !ok {
			return nil, fmt.Errorf("%s %w", className, ErrTypeNotFound)
		}
		if t, ok := ci.Properties[property]; ok {
			return t, nil
		}
		if t, ok := ci.ChoiceProperties[property]; ok {
			return t, nil
		}
		className = ci.BaseType
	}
	return nil, fmt.Errorf("%s %w", property, ErrPropertyNotFound)
}

// IsSubtype reports whether sub is the same type as, or a narrower type than, super — the
// semantics the `is`/`as` operators and implicit argument conversion both need. System numeric
// and temporal types widen (Integer < Decimal < Quantity, Date < DateTime); Named types widen
// along their registered BaseType chain; a List/Interval is a subtype of another List/Interval
// when its point/element type is; any type is a subtype of a Choice that includes it, and Any
// is a universal supertype.
func (r *Registry) IsSubtype(sub, super types.IType) bool {
	if sub == nil || super == nil {
		return false
	}
	if super.Equal(types.Any) {
		return true
	}
	if sub.Equal(super) {
		return true
	}
	if choice, ok := super.(*types.Choice); ok {
		for _, ct := range choice.ChoiceTypes {
			if r.IsSubtype(sub, ct) {
				return true
			}
		}
		return false
	}
	switch s := sub.(type) {
	case types.System:
		return r.isSystemSubtype(s, super)
	case *types.Named:
		sup, ok := super.(*types.Named)
		if !ok {
			return false
		}
		return r.isNamedSubtype(s.Name, sup.Name)
	case *types.List:
		sup, ok := super.(*types.List)
		if !ok || s.ElementType == nil || sup.ElementType == nil {
			return false
		}
		return r.IsSubtype(s.ElementType, sup.ElementType)
	case *types.Interval:
		sup, ok := super.(*types.Interval)
		if !ok || s.PointType == nil || sup.PointType == nil {
			return false
		}
		return r.IsSubtype(s.PointType, sup.PointType)
	default:
		return false
	}
}

var numericTower = map[types.System]int{
	types.Integer:  0,
	types.Decimal:  1,
	types.Quantity: 2,
}

var temporalTower = map[types.System]int{
	types.Date:     0,
	types.DateTime: 1,
}

func (r *Registry) isSystemSubtype(sub types.System, super types.IType) bool {
	sup, ok := super.(types.System)
	if !ok {
		return false
	}
	if si, sok := numericTower[sub]; sok {
		if ti, tok := numericTower[sup]; tok {
			return si <= ti
		}
	}
	if si, sok := temporalTower[sub]; sok {
		if ti, tok := temporalTower[sup]; tok {
			return si <= ti
		}
	}
	return false
}

func (r *Registry) isNamedSubtype(subName, superName string) bool {
	for subName != "" {
		if subName == superName {
			return true
		}
		ci, ok := r.classes[subName]
		if !ok {
			return false
		}
		subName = ci.BaseType
	}
	return false
}

// ConversionScore returns how "far" an implicit conversion from `from` to `to` is: 0 for an
// identical type, a positive number of increasing cost for a valid widening conversion, and ok
// false when no implicit conversion exists. Lower scores are preferred by overload resolution.
func (r *Registry) ConversionScore(from, to types.IType) (score int, ok bool) {
	if from == nil || to == nil {
		return 0, false
	}
	if from.Equal(to) {
		return 0, true
	}
	if to.Equal(types.Any) {
		return 100, true
	}
	if choice, isChoice := to.(*types.Choice); isChoice {
		best := -1
		for _, ct := range choice.ChoiceTypes {
			if s, ok := r.ConversionScore(from, ct); ok && (best == -1 || s < best) {
				best = s
			}
		}
		if best == -1 {
			return 0, false
		}
		return best + 1, true
	}
	if fs, ok := from.(types.System); ok {
		if ts, ok := to.(types.System); ok {
			if fi, fok := numericTower[fs]; fok {
				if ti, tok := numericTower[ts]; tok && fi <= ti {
					return ti - fi, true
				}
			}
			if fi, fok := temporalTower[fs]; fok {
				if ti, tok := temporalTower[ts]; tok && fi <= ti {
					return ti - fi, true
				}
			}
		}
		return 0, false
	}
	if fn, ok := from.(*types.Named); ok {
		if tn, ok := to.(*types.Named); ok && r.isNamedSubtype(fn.Name, tn.Name) {
			return 1, true
		}
		return 0, false
	}
	if fl, ok := from.(*types.List); ok {
		if tl, ok := to.(*types.List); ok {
			return r.ConversionScore(fl.ElementType, tl.ElementType)
		}
		return 0, false
	}
	if fi, ok := from.(*types.Interval); ok {
		if ti, ok := to.(*types.Interval); ok {
			return r.ConversionScore(fi.PointType, ti.PointType)
		}
		return 0, false
	}
	return 0, false
}
