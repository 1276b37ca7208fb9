package interpreter

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/example/cqlcore/result"
	"github.com/example/cqlcore/ucum"
)

// commensurateQuantities converts b's value into a's unit so the two decimals can be compared or
// combined directly, returning an error if the units are not convertible.
func commensurateQuantities(a, b result.Quantity) (decimal.Decimal, decimal.Decimal, error) {
	if a.Unit == b.Unit {
		return a.Value, b.Value, nil
	}
	converted, err := ucum.ConvertUnit(b.Value.InexactFloat64(), b.Unit, a.Unit)
	if err != nil {
		return decimal.Decimal{}, decimal.Decimal{}, err
	}
	return a.Value, decimal.NewFromFloat(converted), nil
}

func (terp *interpreter) evalAdd(l, r result.Value) (result.Value, error) {
	if result.IsNull(l) || result.IsNull(r) {
		return result.New(nil)
	}
	switch l.GolangValue().(type) {
	case int64:
		lv, _ := result.ToInt64(l)
		rv, err := result.ToInt64(r)
		if err != nil {
			return result.Value{}, err
		}
		return result.New(lv + rv)
	case decimal.Decimal:
		lv, _ := result.ToDecimal(l)
		rv, err := result.ToDecimal(r)
		if err != nil {
			return result.Value{}, err
		}
		return result.New(lv.Add(rv))
	case string:
		lv, _ := result.ToString(l)
		rv, err := result.ToString(r)
		if err != nil {
			return result.Value{}, err
		}
		return result.New(lv + rv)
	case result.Quantity:
		lv, _ := result.ToQuantity(l)
		rv, err := result.ToQuantity(r)
		if err != nil {
			return result.Value{}, err
		}
		lc, rc, err := commensurateQuantities(lv, rv)
		if err != nil {
			return result.Value{}, err
		}
		return result.New(result.Quantity{Value: lc.Add(rc), Unit: lv.Unit})
	case result.Date, result.DateTime, result.Time:
		return terp.addDurationToTemporal(l, r)
	default:
		return result.Value{}, fmt.Errorf("Add is not supported for type %T", l.GolangValue())
	}
}

func (terp *interpreter) evalSubtract(l, r result.Value) (result.Value, error) {
	if result.IsNull(l) || result.IsNull(r) {
		return result.New(nil)
	}
	switch l.GolangValue().(type) {
	case int64:
		lv, _ := result.ToInt64(l)
		rv, err := result.ToInt64(r)
		if err != nil {
			return result.Value{}, err
		}
		return result.New(lv - rv)
	case decimal.Decimal:
		lv, _ := result.ToDecimal(l)
		rv, err := result.ToDecimal(r)
		if err != nil {
			return result.Value{}, err
		}
		return result.New(lv.Sub(rv))
	case result.Quantity:
		lv, _ := result.ToQuantity(l)
		rv, err := result.ToQuantity(r)
		if err != nil {
			return result.Value{}, err
		}
		lc, rc, err := commensurateQuantities(lv, rv)
		if err != nil {
			return result.Value{}, err
		}
		return result.New(result.Quantity{Value: lc.Sub(rc), Unit: lv.Unit})
	case result.Date, result.DateTime, result.Time:
		return terp.subtractFromTemporal(l, r)
	default:
		return result.Value{}, fmt.Errorf("Subtract is not supported for type %T", l.GolangValue())
	}
}

func (terp *interpreter) evalMultiply(l, r result.Value) (result.Value, error) {
	if result.IsNull(l) || result.IsNull(r) {
		return result.New(nil)
	}
	switch l.GolangValue().(type) {
	case int64:
		lv, _ := result.ToInt64(l)
		rv, err := result.ToInt64(r)
		if err != nil {
			return result.Value{}, err
		}
		return result.New(lv * rv)
	case decimal.Decimal:
		lv, _ := result.ToDecimal(l)
		rv, err := result.ToDecimal(r)
		if err != nil {
			return result.Value{}, err
		}
		return result.New(lv.Mul(rv))
	case result.Quantity:
		lv, _ := result.ToQuantity(l)
		rv, err := result.ToQuantity(r)
		if err != nil {
			return result.Value{}, err
		}
		return result.New(result.Quantity{Value: lv.Value.Mul(rv.Value), Unit: ucum.GetProductOfUnits(lv.Unit, rv.Unit)})
	default:
		return result.Value{}, fmt.Errorf("Multiply is not supported for type %T", l.GolangValue())
	}
}

func (terp *interpreter) evalDivide(l, r result.Value) (result.Value, error) {
	if result.IsNull(l) || result.IsNull(r) {
		return result.New(nil)
	}
	switch l.GolangValue().(type) {
	case decimal.Decimal:
		lv, _ := result.ToDecimal(l)
		rv, err := result.ToDecimal(r)
		if err != nil {
			return result.Value{}, err
		}
		if rv.IsZero() {
			return result.New(nil)
		}
		return result.New(lv.DivRound(rv, 28).Truncate(8))
	case result.Quantity:
		lv, _ := result.ToQuantity(l)
		rv, err := result.ToQuantity(r)
		if err != nil {
			return result.Value{}, err
		}
		if rv.Value.IsZero() {
			return result.New(nil)
		}
		return result.New(result.Quantity{Value: lv.Value.DivRound(rv.Value, 28).Truncate(8), Unit: ucum.GetQuotientOfUnits(lv.Unit, rv.Unit)})
	default:
		return result.Value{}, fmt.Errorf("Divide is not supported for type %T", l.GolangValue())
	}
}

func (terp *interpreter) evalModulo(l, r result.Value) (result.Value, error) {
	if result.IsNull(l) || result.IsNull(r) {
		return result.New(nil)
	}
	switch l.GolangValue().(type) {
	case int64:
		lv, _ := result.ToInt64(l)
		rv, err := result.ToInt64(r)
		if err != nil {
			return result.Value{}, err
		}
		if rv == 0 {
			return result.New(nil)
		}
		return result.New(lv % rv)
	case decimal.Decimal:
		lv, _ := result.ToDecimal(l)
		rv, err := result.ToDecimal(r)
		if err != nil {
			return result.Value{}, err
		}
		if rv.IsZero() {
			return result.New(nil)
		}
		return result.New(lv.Mod(rv))
	default:
		return result.Value{}, fmt.Errorf("Modulo is not supported for type %T", l.GolangValue())
	}
}

func (terp *interpreter) evalTruncatedDivide(l, r result.Value) (result.Value, error) {
	if result.IsNull(l) || result.IsNull(r) {
		return result.New(nil)
	}
	switch l.GolangValue().(type) {
	case int64:
		lv, _ := result.ToInt64(l)
		rv, err := result.ToInt64(r)
		if err != nil {
			return result.Value{}, err
		}
		if rv == 0 {
			return result.New(nil)
		}
		return result.New(lv / rv)
	case decimal.Decimal:
		lv, _ := result.ToDecimal(l)
		rv, err := result.ToDecimal(r)
		if err != nil {
			return result.Value{}, err
		}
		if rv.IsZero() {
			return result.New(nil)
		}
		return result.New(lv.Div(rv).Truncate(0))
	default:
		return result.Value{}, fmt.Errorf("TruncatedDivide is not supported for type %T", l.GolangValue())
	}
}

func (terp *interpreter) evalNegate(operand result.Value) (result.Value, error) {
	if result.IsNull(operand) {
		return result.New(nil)
	}
	switch v := operand.GolangValue().(type) {
	case int64:
		return result.New(-v)
	case decimal.Decimal:
		return result.New(v.Neg())
	case result.Quantity:
		return result.New(result.Quantity{Value: v.Value.Neg(), Unit: v.Unit})
	default:
		return result.Value{}, fmt.Errorf("Negate is not supported for type %T", v)
	}
}

func (terp *interpreter) evalTruncate(operand result.Value) (result.Value, error) {
	if result.IsNull(operand) {
		return result.New(nil)
	}
	switch v := operand.GolangValue().(type) {
	case decimal.Decimal:
		return result.New(v.Truncate(0).IntPart())
	case result.Quantity:
		return result.New(result.Quantity{Value: v.Value.Truncate(0), Unit: v.Unit})
	default:
		return result.Value{}, fmt.Errorf("Truncate is not supported for type %T", v)
	}
}

func (terp *interpreter) evalCanConvertQuantity(l, r result.Value) (result.Value, error) {
	if result.IsNull(l) || result.IsNull(r) {
		return result.New(nil)
	}
	q, err := result.ToQuantity(l)
	if err != nil {
		return result.Value{}, err
	}
	unit, err := result.ToString(r)
	if err != nil {
		return result.Value{}, err
	}
	_, convErr := ucum.ConvertUnit(1, q.Unit, unit)
	return result.New(convErr == nil)
}

// evalExcept, evalIntersect and evalUnion implement the List set operators, falling through to
// the Interval forms of §4.3 when Left is an Interval rather than a List. Distinctness and ordering of the List forms follow each operand's original relative
// order within Left.
func (terp *interpreter) evalExcept(l, r result.Value) (result.Value, error) {
	if liv, ok := l.GolangValue().(result.Interval); ok {
		if result.IsNull(r) {
			return result.New(nil)
		}
		riv, err := result.ToInterval(r)
		if err != nil {
			return result.Value{}, err
		}
		return terp.exceptIntervals(liv, riv)
	}
	if result.IsNull(l) {
		return result.New(nil)
	}
	ls, err := result.ToSlice(l)
	if err != nil {
		return result.Value{}, err
	}
	var rs []result.Value
	if !result.IsNull(r) {
		rs, err = result.ToSlice(r)
		if err != nil {
			return result.Value{}, err
		}
	}
	var out []result.Value
	for _, lv := range ls {
		if containsValue(rs, lv) || containsValue(out, lv) {
			continue
		}
		out = append(out, lv)
	}
	return result.New(result.List{Value: out})
}

func (terp *interpreter) evalIntersect(l, r result.Value) (result.Value, error) {
	if liv, ok := l.GolangValue().(result.Interval); ok {
		if result.IsNull(r) {
			return result.New(nil)
		}
		riv, err := result.ToInterval(r)
		if err != nil {
			return result.Value{}, err
		}
		return intersectIntervals(liv, riv)
	}
	if result.IsNull(l) || result.IsNull(r) {
		return result.New(nil)
	}
	ls, err := result.ToSlice(l)
	if err != nil {
		return result.Value{}, err
	}
	rs, err := result.ToSlice(r)
	if err != nil {
		return result.Value{}, err
	}
	var out []result.Value
	for _, lv := range ls {
		if containsValue(rs, lv) && !containsValue(out, lv) {
			out = append(out, lv)
		}
	}
	return result.New(result.List{Value: out})
}

func (terp *interpreter) evalUnion(l, r result.Value) (result.Value, error) {
	if liv, ok := l.GolangValue().(result.Interval); ok {
		riv, ok2 := r.GolangValue().(result.Interval)
		if !ok2 {
			return result.Value{}, fmt.Errorf("Union requires both operands to be Interval, got Interval and %T", r.GolangValue())
		}
		return terp.unionIntervals(liv, riv)
	}
	if result.IsNull(l) && result.IsNull(r) {
		return result.New(nil)
	}
	var out []result.Value
	for _, src := range [][]result.Value{mustSlice(l), mustSlice(r)} {
		for _, v := range src {
			if !containsValue(out, v) {
				out = append(out, v)
			}
		}
	}
	return result.New(result.List{Value: out})
}

func mustSlice(v result.Value) []result.Value {
	if result.IsNull(v) {
		return nil
	}
	s, err := result.ToSlice(v)
	if err != nil {
		return nil
	}
	return s
}

func containsValue(list []result.Value, v result.Value) bool {
	for _, e := range list {
		if e.Equal(v) {
			return true
		}
	}
	return false
}
