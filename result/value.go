package result

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/cqlcore/internal/datehelpers"
	"github.com/example/cqlcore/internal/resourcewrapper"
	"github.com/example/cqlcore/model"
	"github.com/example/cqlcore/types"
)

// Value is a CQL/FHIRPath value produced by the interpreter.
type Value struct {
	goValue     any
	runtimeType types.IType
	sourceExpr  model.IExpression
	sourceVals  []Value
}

// GolangValue returns the underlying Go representation of the value:
//
//	CQL Null returns Go nil
//	CQL Boolean returns Go bool
//	CQL String returns Go string
//	CQL Integer returns Go int64
//	CQL Decimal returns Go decimal.Decimal
//	CQL Quantity returns Go Quantity
//	CQL Ratio returns Go Ratio
//	CQL Date returns Go Date
//	CQL DateTime returns Go DateTime
//	CQL Time returns Go Time
//	CQL Interval returns Go Interval
//	CQL List returns Go List
//	CQL Tuple returns Go Tuple
//	CQL Resource (a type from the data model) returns Go Named
//	CQL CodeSystem returns Go CodeSystem
//	CQL ValueSet returns Go ValueSet
//	CQL Concept returns Go Concept
//	CQL Code returns Go Code
//
// Callers that need a specific type are encouraged to use the To* helpers in convert.go instead
// of type-switching on this directly.
func (v Value) GolangValue() any { return v.goValue }

// RuntimeType returns the type used by the `is` operator. This can differ from the statically
// inferred type: a Choice<String, Integer> static type resolves at runtime to whichever branch
// actually holds a value. When the runtime type cannot be inferred (an empty list, or an
// interval whose bounds are both null) this falls back to the static type recorded at
// construction.
func (v Value) RuntimeType() types.IType {
	switch t := v.goValue.(type) {
	case Interval:
		return inferIntervalType(t)
	case List:
		return inferListType(t.Value, t.StaticType)
	default:
		return v.runtimeType
	}
}

// SourceExpression is the model node that produced this value, e.g. the model.Less node for the
// result of "a < b".
func (v Value) SourceExpression() model.IExpression { return v.sourceExpr }

// SourceValues returns the values consumed by SourceExpression to produce this one; for "a < b"
// these are the evaluated a and b. Each source value carries its own SourceExpression/
// SourceValues, forming a trace tree back through the evaluation.
func (v Value) SourceValues() []Value { return v.sourceVals }

type simpleJSONMessage struct {
	Type  json.RawMessage `json:"@type"`
	Value any             `json:"value"`
}

// customJSONMarshaler lets compound value types control their own JSON shape.
type customJSONMarshaler interface {
	marshalJSON(json.RawMessage) ([]byte, error)
}

// MarshalJSON renders the value using the shape described by the CQL-Serialization spec
// (https://github.com/cqframework/clinical_quality_language/wiki/CQL-Serialization).
func (v Value) MarshalJSON() ([]byte, error) {
	rt, err := v.RuntimeType().MarshalJSON()
	if err != nil {
		return nil, err
	}

	switch gv := v.goValue.(type) {
	case customJSONMarshaler:
		return gv.marshalJSON(rt)
	case bool, string, int64, nil:
		return json.Marshal(simpleJSONMessage{Type: rt, Value: gv})
	case decimal.Decimal:
		return json.Marshal(simpleJSONMessage{Type: rt, Value: gv.String()})
	case Date:
		date, err := datehelpers.DateString(gv.Date, gv.Precision)
		if err != nil {
			return nil, err
		}
		return json.Marshal(simpleJSONMessage{Type: rt, Value: date})
	case DateTime:
		dt, err := datehelpers.DateTimeString(gv.Date, gv.Precision)
		if err != nil {
			return nil, err
		}
		return json.Marshal(simpleJSONMessage{Type: rt, Value: dt})
	case Time:
		t, err := datehelpers.TimeString(gv.Date, gv.Precision)
		if err != nil {
			return nil, err
		}
		return json.Marshal(simpleJSONMessage{Type: rt, Value: t})
	case List:
		return json.Marshal(gv.Value)
	case Tuple:
		return json.Marshal(gv.Value)
	default:
		return nil, fmt.Errorf("tried to marshal unsupported type %T, %w", gv, errUnsupportedType)
	}
}

// Equal is a deep structural comparison used primarily by cmp.Diff in tests. It is not CQL
// equality: it compares GolangValue and RuntimeType and ignores SourceExpression/SourceValues.
func (v Value) Equal(a Value) bool {
	if !v.RuntimeType().Equal(a.RuntimeType()) {
		return false
	}
	switch t := v.goValue.(type) {
	case decimal.Decimal:
		o, ok := a.GolangValue().(decimal.Decimal)
		return ok && t.Equal(o)
	case Date:
		o, ok := a.GolangValue().(Date)
		return ok && t.Equal(o)
	case DateTime:
		o, ok := a.GolangValue().(DateTime)
		return ok && t.Equal(o)
	case Time:
		o, ok := a.GolangValue().(Time)
		return ok && t.Equal(o)
	case Interval:
		o, ok := a.GolangValue().(Interval)
		return ok && t.Equal(o)
	case List:
		o, ok := a.GolangValue().(List)
		return ok && t.Equal(o)
	case Tuple:
		o, ok := a.GolangValue().(Tuple)
		return ok && t.Equal(o)
	case Named:
		o, ok := a.GolangValue().(Named)
		return ok && t.Equal(o)
	case ValueSet:
		o, ok := a.GolangValue().(ValueSet)
		return ok && t.Equal(o)
	case Concept:
		o, ok := a.GolangValue().(Concept)
		return ok && t.Equal(o)
	case Quantity:
		o, ok := a.GolangValue().(Quantity)
		return ok && t.Value.Equal(o.Value) && t.Unit == o.Unit
	case Ratio:
		o, ok := a.GolangValue().(Ratio)
		return ok && t.Numerator.Value.Equal(o.Numerator.Value) && t.Numerator.Unit == o.Numerator.Unit &&
			t.Denominator.Value.Equal(o.Denominator.Value) && t.Denominator.Unit == o.Denominator.Unit
	default:
		return v.GolangValue() == a.GolangValue()
	}
}

// errUnsupportedType is returned by New/MarshalJSON for a Go value with no CQL equivalent.
var errUnsupportedType = errors.New("unsupported type")

// New converts a Go value to a CQL Value. Use this at call sites that don't yet know the sources
// that produced the value; attach them afterward with WithSources, or use NewWithSources. See
// GolangValue for the full Go-to-CQL type mapping.
func New(val any) (Value, error) {
	if val == nil {
		return Value{runtimeType: types.Any, goValue: nil}, nil
	}
	switch v := val.(type) {
	case int:
		return Value{runtimeType: types.Integer, goValue: int64(v)}, nil
	case int64:
		return Value{runtimeType: types.Integer, goValue: v}, nil
	case decimal.Decimal:
		return Value{runtimeType: types.Decimal, goValue: v}, nil
	case Quantity:
		return Value{runtimeType: types.Quantity, goValue: v}, nil
	case Ratio:
		return Value{runtimeType: types.Ratio, goValue: v}, nil
	case bool:
		return Value{runtimeType: types.Boolean, goValue: v}, nil
	case string:
		return Value{runtimeType: types.String, goValue: v}, nil
	case Date:
		switch v.Precision {
		case model.YEAR, model.MONTH, model.DAY, model.UNSETDATETIMEPRECISION:
			return Value{runtimeType: types.Date, goValue: v}, nil
		}
		return Value{}, fmt.Errorf("unsupported precision in Date with value %v %w", v.Precision, datehelpers.ErrUnsupportedPrecision)
	case DateTime:
		switch v.Precision {
		case model.YEAR, model.MONTH, model.DAY, model.HOUR, model.MINUTE, model.SECOND, model.MILLISECOND, model.UNSETDATETIMEPRECISION:
			return Value{runtimeType: types.DateTime, goValue: v}, nil
		}
		return Value{}, fmt.Errorf("unsupported precision in DateTime with value %v %w", v.Precision, datehelpers.ErrUnsupportedPrecision)
	case Time:
		switch v.Precision {
		case model.HOUR, model.MINUTE, model.SECOND, model.MILLISECOND, model.UNSETDATETIMEPRECISION:
			if v.Date.Year() != 0 || v.Date.Month() != 1 || v.Date.Day() != 1 {
				return Value{}, fmt.Errorf("internal error - Time must be Year 0000, Month 01, Day 01, instead got %v", v.Date)
			}
			return Value{runtimeType: types.Time, goValue: v}, nil
		}
		return Value{}, fmt.Errorf("unsupported precision in Time with value %v %w", v.Precision, datehelpers.ErrUnsupportedPrecision)
	case Interval:
		// RuntimeType is inferred lazily by RuntimeType().
		return Value{goValue: v}, nil
	case List:
		// RuntimeType is inferred lazily by RuntimeType().
		return Value{goValue: v}, nil
	case Named:
		return Value{runtimeType: v.RuntimeType, goValue: v}, nil
	case Tuple:
		return Value{runtimeType: v.RuntimeType, goValue: v}, nil
	case CodeSystem:
		if v.ID == "" {
			return Value{}, fmt.Errorf("%v must have an ID", types.CodeSystem)
		}
		return Value{runtimeType: types.CodeSystem, goValue: v}, nil
	case Concept:
		if len(v.Codes) == 0 {
			return Value{}, fmt.Errorf("%v must have at least one %v", types.Concept, types.Code)
		}
		return Value{runtimeType: types.Concept, goValue: v}, nil
	case ValueSet:
		if v.ID == "" {
			return Value{}, fmt.Errorf("%v must have an ID", types.ValueSet)
		}
		return Value{runtimeType: types.ValueSet, goValue: v}, nil
	case Code:
		if v.Code == "" {
			return Value{}, fmt.Errorf("%v must have a Code", types.Code)
		}
		return Value{runtimeType: types.Code, goValue: v}, nil
	default:
		return Value{}, fmt.Errorf("%T %w", v, errUnsupportedType)
	}
}

// NewWithSources converts val to a CQL Value and attaches the given trace sources. See New and
// WithSources.
func NewWithSources(val any, sourceExp model.IExpression, sourceObjs ...Value) (Value, error) {
	o, err := New(val)
	if err != nil {
		return Value{}, err
	}
	return o.WithSources(sourceExp, sourceObjs...), nil
}

// WithSources returns a copy of v annotated with the given evaluation trace.
//
// If v carries no sources yet, sourceExp and sourceObjs are attached to v directly. Otherwise the
// returned copy gets sourceExp as its source expression and, as its source values, sourceObjs
// when any are passed (v's existing trace is then dropped) or v itself when none are passed, so
// a simple `returned.WithSources(callExpr)` keeps v's trace as one level of a trace tree.
func (v Value) WithSources(sourceExp model.IExpression, sourceObjs ...Value) Value {
	if v.sourceExpr == nil {
		v.sourceExpr = sourceExp
		v.sourceVals = sourceObjs
		return v
	}
	if len(sourceObjs) == 0 {
		return Value{runtimeType: v.runtimeType, goValue: v.goValue, sourceExpr: sourceExp, sourceVals: []Value{v}}
	}
	return Value{runtimeType: v.runtimeType, goValue: v.goValue, sourceExpr: sourceExp, sourceVals: sourceObjs}
}

// Quantity is a decimal value paired with a unit (a UCUM code or a calendar duration keyword).
type Quantity struct {
	Value decimal.Decimal
	Unit  string
}

func (q Quantity) marshalJSON(t json.RawMessage) ([]byte, error) {
	return json.Marshal(struct {
		Type  json.RawMessage `json:"@type"`
		Value string          `json:"value"`
		Unit  string          `json:"unit"`
	}{Type: t, Value: q.Value.String(), Unit: q.Unit})
}

// Ratio is a ratio of two quantities, e.g. "1:128".
type Ratio struct {
	Numerator   Quantity
	Denominator Quantity
}

func (r Ratio) marshalJSON(t json.RawMessage) ([]byte, error) {
	qt, err := types.Quantity.MarshalJSON()
	if err != nil {
		return nil, err
	}
	num, err := r.Numerator.marshalJSON(qt)
	if err != nil {
		return nil, err
	}
	den, err := r.Denominator.marshalJSON(qt)
	if err != nil {
		return nil, err
	}
	return json.Marshal(struct {
		Type        json.RawMessage `json:"@type"`
		Numerator   json.RawMessage `json:"numerator"`
		Denominator json.RawMessage `json:"denominator"`
	}{Type: t, Numerator: num, Denominator: den})
}

// Date is the Go representation of a CQL Date. CQL Dates carry no timezone offset, but
// time.Time requires a location, so the offset of the evaluation timestamp is used throughout.
// Precision is always Year, Month or Day.
type Date DateTime

// Equal reports whether d and v represent the same Date value and precision.
func (d Date) Equal(v Date) bool { return DateTime(d).Equal(DateTime(v)) }

// DateTime is the Go representation of a CQL DateTime. Precision ranges from Year to
// Millisecond.
type DateTime struct {
	Date      time.Time
	Precision model.DateTimePrecision
}

// Equal reports whether d and v represent the same DateTime value and precision.
func (d DateTime) Equal(v DateTime) bool {
	return d.Date.Equal(v.Date) && d.Precision == v.Precision
}

// Time is the Go representation of a CQL Time. CQL Times carry no date or timezone; the date
// 0000-01-01 and location UTC are used for every Time's underlying time.Time. Precision ranges
// from Hour to Millisecond.
type Time DateTime

// Equal reports whether t and v represent the same Time value and precision.
func (t Time) Equal(v Time) bool { return DateTime(t).Equal(DateTime(v)) }

// Interval is the Go representation of a CQL Interval<T>.
type Interval struct {
	Low           Value
	High          Value
	LowInclusive  bool
	HighInclusive bool
	// StaticType backs RuntimeType() when both Low and High are null, since in that case the
	// runtime type cannot be inferred from the bounds.
	StaticType *types.Interval
}

// Equal reports whether i and v have equal bounds, inclusivity and static type.
func (i Interval) Equal(v Interval) bool {
	if !i.StaticType.Equal(v.StaticType) {
		return false
	}
	return i.Low.Equal(v.Low) && i.High.Equal(v.High) && i.LowInclusive == v.LowInclusive && i.HighInclusive == v.HighInclusive
}

func inferIntervalType(i Interval) types.IType {
	if !IsNull(i.Low) {
		return &types.Interval{PointType: i.Low.RuntimeType()}
	}
	if !IsNull(i.High) {
		return &types.Interval{PointType: i.High.RuntimeType()}
	}
	return i.StaticType
}

func (i Interval) marshalJSON(t json.RawMessage) ([]byte, error) {
	low, err := i.Low.MarshalJSON()
	if err != nil {
		return nil, err
	}
	high, err := i.High.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return json.Marshal(struct {
		Type          json.RawMessage `json:"@type"`
		Low           json.RawMessage `json:"low"`
		High          json.RawMessage `json:"high"`
		LowInclusive  bool            `json:"lowClosed"`
		HighInclusive bool            `json:"highClosed"`
	}{Type: t, Low: low, High: high, LowInclusive: i.LowInclusive, HighInclusive: i.HighInclusive})
}

// List is the Go representation of a CQL List<T>.
type List struct {
	Value []Value
	// StaticType backs RuntimeType() when the list is empty.
	StaticType *types.List
}

// Equal reports whether l and v have the same static type and elementwise-equal values.
func (l List) Equal(v List) bool {
	if !l.StaticType.Equal(v.StaticType) || len(l.Value) != len(v.Value) {
		return false
	}
	for i, obj := range l.Value {
		if !obj.Equal(v.Value[i]) {
			return false
		}
	}
	return true
}

func inferListType(l []Value, staticType types.IType) types.IType {
	if len(l) == 0 {
		return staticType
	}
	return &types.List{ElementType: l[0].RuntimeType()}
}

// Named is the Go representation of a value from the active data model (e.g. a FHIR.Patient),
// backed by a decoded JSON resource rather than a generated struct.
type Named struct {
	Value *resourcewrapper.Resource
	// RuntimeType is often the same as the declared Named type, but for Choice-typed contexts
	// (e.g. Bundle.entry.resource) callers must resolve it to the actual resource type.
	RuntimeType *types.Named
}

func (n Named) marshalJSON(_ json.RawMessage) ([]byte, error) {
	v, err := json.Marshal(n.Value.Data())
	if err != nil {
		return nil, err
	}
	return json.Marshal(struct {
		Type  types.IType     `json:"@type"`
		Value json.RawMessage `json:"value"`
	}{Type: n.RuntimeType, Value: v})
}

// Equal reports whether n and v wrap the same runtime type and an equal resource.
func (n Named) Equal(v Named) bool {
	return n.RuntimeType.Equal(v.RuntimeType) && n.Value.Equal(v.Value)
}

// Tuple is the Go representation of a CQL Tuple (a CQL structured value).
type Tuple struct {
	Value map[string]Value
	// RuntimeType is either a *types.Tuple or, for Instance expressions, a *types.Named class
	// type.
	RuntimeType types.IType
}

// Equal reports whether t and vTuple have the same runtime type and elementwise-equal fields.
func (t Tuple) Equal(vTuple Tuple) bool {
	if !t.RuntimeType.Equal(vTuple.RuntimeType) || len(t.Value) != len(vTuple.Value) {
		return false
	}
	for k, v := range t.Value {
		if !v.Equal(vTuple.Value[k]) {
			return false
		}
	}
	return true
}

// ValueSet is the Go representation of a CQL ValueSet.
type ValueSet struct {
	ID          string
	Version     string
	CodeSystems []CodeSystem
}

// Equal reports whether v and a identify the same value set, ignoring CodeSystems ordering.
func (v ValueSet) Equal(a ValueSet) bool {
	if v.ID != a.ID || v.Version != a.Version || len(v.CodeSystems) != len(a.CodeSystems) {
		return false
	}
	vs, as := slices.Clone(v.CodeSystems), slices.Clone(a.CodeSystems)
	slices.SortFunc(vs, compareCodeSystem)
	slices.SortFunc(as, compareCodeSystem)
	for i, c := range as {
		if c != vs[i] {
			return false
		}
	}
	return true
}

func (v ValueSet) marshalJSON(runtimeType json.RawMessage) ([]byte, error) {
	var cs []byte
	if len(v.CodeSystems) > 0 {
		var err error
		if cs, err = json.Marshal(v.CodeSystems); err != nil {
			return nil, err
		}
	}
	return json.Marshal(struct {
		Type        json.RawMessage `json:"@type"`
		ID          string          `json:"id"`
		Version     string          `json:"version,omitempty"`
		CodeSystems json.RawMessage `json:"codesystems,omitempty"`
	}{Type: runtimeType, ID: v.ID, Version: v.Version, CodeSystems: cs})
}

// CodeSystem is the Go representation of a CQL CodeSystem.
type CodeSystem struct {
	ID      string
	Version string
}

func (c CodeSystem) marshalJSON(runtimeType json.RawMessage) ([]byte, error) {
	return json.Marshal(struct {
		Type    json.RawMessage `json:"@type"`
		ID      string          `json:"id"`
		Version string          `json:"version,omitempty"`
	}{Type: runtimeType, ID: c.ID, Version: c.Version})
}

func compareCodeSystem(a, b CodeSystem) int {
	if a.ID != b.ID {
		return strings.Compare(a.ID, b.ID)
	}
	return strings.Compare(a.Version, b.Version)
}

// Concept is the Go representation of a CQL Concept.
type Concept struct {
	Codes   []Code
	Display string
}

// Equal reports whether c and v have elementwise-equal codes (ignoring order) and Display.
func (c Concept) Equal(v Concept) bool {
	if len(c.Codes) != len(v.Codes) || c.Display != v.Display {
		return false
	}
	cs, vs := slices.Clone(c.Codes), slices.Clone(v.Codes)
	slices.SortFunc(cs, compareCode)
	slices.SortFunc(vs, compareCode)
	for i, code := range cs {
		if code != vs[i] {
			return false
		}
	}
	return true
}

func (c Concept) marshalJSON(runtimeType json.RawMessage) ([]byte, error) {
	codeType, err := types.Code.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var codes []json.RawMessage
	for _, code := range c.Codes {
		cj, err := code.marshalJSON(codeType)
		if err != nil {
			return nil, err
		}
		codes = append(codes, cj)
	}
	return json.Marshal(struct {
		Type    json.RawMessage   `json:"@type"`
		Codes   []json.RawMessage `json:"codes"`
		Display string            `json:"display,omitempty"`
	}{Type: runtimeType, Codes: codes, Display: c.Display})
}

// Code is the Go representation of a CQL Code.
type Code struct {
	Code    string
	Display string
	System  string
	Version string
}

func (c Code) marshalJSON(runtimeType json.RawMessage) ([]byte, error) {
	return json.Marshal(struct {
		Type    json.RawMessage `json:"@type"`
		Code    string          `json:"code"`
		Display string          `json:"display,omitempty"`
		System  string          `json:"system"`
		Version string          `json:"version,omitempty"`
	}{Type: runtimeType, Code: c.Code, Display: c.Display, System: c.System, Version: c.Version})
}

// compareCode orders Codes for Concept.Equal; CQL equality itself ignores Display but this
// ordering includes it so two concepts differing only in Display compare unequal overall.
func compareCode(a, b Code) int {
	if a.Code != b.Code {
		return strings.Compare(a.Code, b.Code)
	} else if a.System != b.System {
		return strings.Compare(a.System, b.System)
	} else if a.Version != b.Version {
		return strings.Compare(a.Version, b.Version)
	}
	return strings.Compare(a.Display, b.Display)
}
