// Copyright 2023 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package types holds a representation of CQL/FHIRPath types and related logic. It is used by
// both the model and interpreter packages.
package types

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// IType is an interface implemented by all CQL/FHIRPath type structs.
type IType interface {
	// Equal is a strict equal. X.Equal(Y) is true when X and Y are the exact same type.
	Equal(IType) bool

	// String returns a print friendly representation of the type and implements fmt.Stringer.
	String() string

	// MarshalJSON implements the json.Marshaler interface for the IType.
	MarshalJSON() ([]byte, error)
}

// System represents the primitive types defined by CQL
// (https://cql.hl7.org/09-b-cqlreference.html#types-2).
type System string

const (
	// Unset indicates that the result type was never set.
	Unset System = "System.UnsetType"
	// Any means the type could be anything, including a list, interval, named type, or null.
	Any System = "System.Any"
	// String is a CQL/FHIRPath String type.
	String System = "System.String"
	// Integer is a CQL/FHIRPath Integer type (spec.md collapses CQL's Integer/Long split into one
	// 64-bit Integer; see DESIGN.md).
	Integer System = "System.Integer"
	// Decimal is a CQL/FHIRPath Decimal type.
	Decimal System = "System.Decimal"
	// Quantity is a decimal value and unit pair.
	Quantity System = "System.Quantity"
	// Ratio is the type for a ratio of two quantities.
	Ratio System = "System.Ratio"
	// Boolean is a CQL/FHIRPath Boolean type.
	Boolean System = "System.Boolean"
	// DateTime is the CQL/FHIRPath DateTime type.
	DateTime System = "System.DateTime"
	// Date is the CQL/FHIRPath Date type.
	Date System = "System.Date"
	// Time is the CQL/FHIRPath Time type.
	Time System = "System.Time"
	// ValueSet is the CQL ValueSet type.
	ValueSet System = "System.ValueSet"
	// CodeSystem is a CQL CodeSystem, which contains external Code definitions.
	CodeSystem System = "System.CodeSystem"
	// Code is the CQL Code type.
	Code System = "System.Code"
	// Concept is the CQL Concept type.
	Concept System = "System.Concept"
	// Any resource loaded from the DataSource, before a more specific Named type is known.
	Resource System = "System.Resource"
)

// Equal returns true if a is the same System type.
func (s System) Equal(a IType) bool {
	o, ok := a.(System)
	if !ok {
		return false
	}
	return s == o
}

// String returns the print friendly name of the System type.
func (s System) String() string { return string(s) }

// MarshalJSON implements the json.Marshaler interface.
func (s System) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(s))
}

// Named is a type from the data model (e.g. "FHIR.Patient") rather than a CQL System type.
type Named struct {
	Name string
}

// Equal returns true if a is a Named type with the same Name.
func (n *Named) Equal(a IType) bool {
	o, ok := a.(*Named)
	if !ok {
		return false
	}
	return n.Name == o.Name
}

// String returns the print friendly name of the Named type.
func (n *Named) String() string { return n.Name }

// MarshalJSON implements the json.Marshaler interface.
func (n *Named) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.Name)
}

// Interval is a CQL Interval<T> type.
type Interval struct {
	PointType IType
}

// Equal returns true if a is an Interval type with an Equal PointType.
func (i *Interval) Equal(a IType) bool {
	o, ok := a.(*Interval)
	if !ok {
		return false
	}
	if i.PointType == nil || o.PointType == nil {
		return i.PointType == o.PointType
	}
	return i.PointType.Equal(o.PointType)
}

// String returns the print friendly name of the Interval type.
func (i *Interval) String() string {
	if i.PointType == nil {
		return "Interval<>"
	}
	return fmt.Sprintf("Interval<%v>", i.PointType)
}

// MarshalJSON implements the json.Marshaler interface.
func (i *Interval) MarshalJSON() ([]byte, error) { return json.Marshal(i.String()) }

// List is a CQL List<T> type.
type List struct {
	ElementType IType
}

// Equal returns true if a is a List type with an Equal ElementType.
func (l *List) Equal(a IType) bool {
	o, ok := a.(*List)
	if !ok {
		return false
	}
	if l.ElementType == nil || o.ElementType == nil {
		return l.ElementType == o.ElementType
	}
	return l.ElementType.Equal(o.ElementType)
}

// String returns the print friendly name of the List type.
func (l *List) String() string {
	if l.ElementType == nil {
		return "List<>"
	}
	return fmt.Sprintf("List<%v>", l.ElementType)
}

// MarshalJSON implements the json.Marshaler interface.
func (l *List) MarshalJSON() ([]byte, error) { return json.Marshal(l.String()) }

// Choice is a CQL Choice<T1, T2, ...> type, used for FHIR's value[x] style polymorphism.
type Choice struct {
	ChoiceTypes []IType
}

// Equal returns true if a is a Choice type with the same set of ChoiceTypes (order independent).
func (c *Choice) Equal(a IType) bool {
	o, ok := a.(*Choice)
	if !ok || len(c.ChoiceTypes) != len(o.ChoiceTypes) {
		return false
	}
	matched := make([]bool, len(o.ChoiceTypes))
	for _, ct := range c.ChoiceTypes {
		found := false
		for idx, oct := range o.ChoiceTypes {
			if matched[idx] {
				continue
			}
			if ct.Equal(oct) {
				matched[idx] = true
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// String returns the print friendly name of the Choice type.
func (c *Choice) String() string {
	return fmt.Sprintf("Choice<%v>", ToStrings(c.ChoiceTypes))
}

// MarshalJSON implements the json.Marshaler interface.
func (c *Choice) MarshalJSON() ([]byte, error) { return json.Marshal(c.String()) }

// Tuple is a CQL Tuple { name Type, ... } type.
type Tuple struct {
	ElementTypes map[string]IType
}

// Equal returns true if a is a Tuple type with the same element names and Equal types.
func (t *Tuple) Equal(a IType) bool {
	o, ok := a.(*Tuple)
	if !ok || len(t.ElementTypes) != len(o.ElementTypes) {
		return false
	}
	for k, v := range t.ElementTypes {
		ov, ok := o.ElementTypes[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

// String returns the print friendly name of the Tuple type.
func (t *Tuple) String() string {
	keys := make([]string, 0, len(t.ElementTypes))
	for k := range t.ElementTypes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%v %v", k, t.ElementTypes[k]))
	}
	return fmt.Sprintf("Tuple {%v}", strings.Join(parts, ", "))
}

// MarshalJSON implements the json.Marshaler interface.
func (t *Tuple) MarshalJSON() ([]byte, error) { return json.Marshal(t.String()) }

// ToStrings returns a comma joined string representation of a list of types.
func ToStrings(ts []IType) string {
	s := make([]string, 0, len(ts))
	for _, t := range ts {
		s = append(s, t.String())
	}
	return strings.Join(s, ", ")
}
