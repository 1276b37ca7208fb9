package result

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/example/cqlcore/internal/resourcewrapper"
)

// ErrCannotConvert is returned when a Value cannot be converted to the requested Go type.
var ErrCannotConvert = errors.New("internal error - cannot convert")

// IsNull returns true if v is the CQL null value.
func IsNull(v Value) bool {
	return v.GolangValue() == nil
}

// ToBool takes a CQL Boolean and returns the underlying bool.
func ToBool(v Value) (bool, error) {
	b, ok := v.GolangValue().(bool)
	if !ok {
		return false, fmt.Errorf("%w %v to a boolean", ErrCannotConvert, v.RuntimeType())
	}
	return b, nil
}

// ToString takes a CQL String and returns the underlying string.
func ToString(v Value) (string, error) {
	s, ok := v.GolangValue().(string)
	if !ok {
		return "", fmt.Errorf("%w %v to a string", ErrCannotConvert, v.RuntimeType())
	}
	return s, nil
}

// ToInt64 takes a CQL Integer and returns the underlying int64.
func ToInt64(v Value) (int64, error) {
	i, ok := v.GolangValue().(int64)
	if !ok {
		return 0, fmt.Errorf("%w %v to an int64", ErrCannotConvert, v.RuntimeType())
	}
	return i, nil
}

// ToDecimal takes a CQL Decimal and returns the underlying decimal.Decimal.
func ToDecimal(v Value) (decimal.Decimal, error) {
	d, ok := v.GolangValue().(decimal.Decimal)
	if !ok {
		return decimal.Decimal{}, fmt.Errorf("%w %v to a decimal", ErrCannotConvert, v.RuntimeType())
	}
	return d, nil
}

// ToQuantity takes a CQL Quantity and returns the underlying Quantity.
func ToQuantity(v Value) (Quantity, error) {
	q, ok := v.GolangValue().(Quantity)
	if !ok {
		return Quantity{}, fmt.Errorf("%w %v to a Quantity", ErrCannotConvert, v.RuntimeType())
	}
	return q, nil
}

// ToRatio takes a CQL Ratio and returns the underlying Ratio.
func ToRatio(v Value) (Ratio, error) {
	r, ok := v.GolangValue().(Ratio)
	if !ok {
		return Ratio{}, fmt.Errorf("%w %v to a Ratio", ErrCannotConvert, v.RuntimeType())
	}
	return r, nil
}

// ToDateTime takes a CQL Date, Time or DateTime and returns it as a DateTime, since Date, Time
// and DateTime share the same underlying representation.
func ToDateTime(v Value) (DateTime, error) {
	switch t := v.GolangValue().(type) {
	case DateTime:
		return t, nil
	case Date:
		return DateTime(t), nil
	case Time:
		return DateTime(t), nil
	default:
		return DateTime{}, fmt.Errorf("%w %v to a DateTime", ErrCannotConvert, v.RuntimeType())
	}
}

// ToInterval takes a CQL Interval and returns the underlying Interval.
func ToInterval(v Value) (Interval, error) {
	i, ok := v.GolangValue().(Interval)
	if !ok {
		return Interval{}, fmt.Errorf("%w %v to an Interval", ErrCannotConvert, v.RuntimeType())
	}
	return i, nil
}

// ToSlice takes a CQL List and returns the underlying []Value.
func ToSlice(v Value) ([]Value, error) {
	l, ok := v.GolangValue().(List)
	if !ok {
		return nil, fmt.Errorf("%w %v to a []Value", ErrCannotConvert, v.RuntimeType())
	}
	return l.Value, nil
}

// ToTuple takes a CQL Tuple and returns the underlying map[string]Value.
func ToTuple(v Value) (map[string]Value, error) {
	t, ok := v.GolangValue().(Tuple)
	if !ok {
		return nil, fmt.Errorf("%w %v to a map[string]Value", ErrCannotConvert, v.RuntimeType())
	}
	return t.Value, nil
}

// ToResource takes a CQL Named (data model) value and returns the underlying *resourcewrapper.Resource.
func ToResource(v Value) (*resourcewrapper.Resource, error) {
	t, ok := v.GolangValue().(Named)
	if !ok {
		return nil, fmt.Errorf("%w %v to a resource", ErrCannotConvert, v.RuntimeType())
	}
	return t.Value, nil
}

// ToCodeSystem takes a CQL CodeSystem and returns the underlying CodeSystem.
func ToCodeSystem(v Value) (CodeSystem, error) {
	c, ok := v.GolangValue().(CodeSystem)
	if !ok {
		return CodeSystem{}, fmt.Errorf("%w %v to a CodeSystem", ErrCannotConvert, v.RuntimeType())
	}
	return c, nil
}

// ToValueSet takes a CQL ValueSet and returns the underlying ValueSet.
func ToValueSet(v Value) (ValueSet, error) {
	vs, ok := v.GolangValue().(ValueSet)
	if !ok {
		return ValueSet{}, fmt.Errorf("%w %v to a ValueSet", ErrCannotConvert, v.RuntimeType())
	}
	return vs, nil
}

// ToConcept takes a CQL Concept and returns the underlying Concept.
func ToConcept(v Value) (Concept, error) {
	c, ok := v.GolangValue().(Concept)
	if !ok {
		return Concept{}, fmt.Errorf("%w %v to a Concept", ErrCannotConvert, v.RuntimeType())
	}
	return c, nil
}

// ToCode takes a CQL Code and returns the underlying Code.
func ToCode(v Value) (Code, error) {
	c, ok := v.GolangValue().(Code)
	if !ok {
		return Code{}, fmt.Errorf("%w %v to a Code", ErrCannotConvert, v.RuntimeType())
	}
	return c, nil
}
