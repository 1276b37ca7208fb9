package interpreter

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/example/cqlcore/result"
)

// evalEqual implements three-valued equality: null propagates if either operand is null.
func (terp *interpreter) evalEqual(l, r result.Value) (result.Value, error) {
	if result.IsNull(l) || result.IsNull(r) {
		return result.New(nil)
	}
	return result.New(l.Equal(r))
}

// evalEquivalent implements two-valued, null-tolerant equivalence: two nulls are equivalent, a
// null and a non-null are not.
func (terp *interpreter) evalEquivalent(l, r result.Value) (result.Value, error) {
	if result.IsNull(l) && result.IsNull(r) {
		return result.New(true)
	}
	if result.IsNull(l) || result.IsNull(r) {
		return result.New(false)
	}
	return result.New(l.Equal(r))
}

// compareOrdered returns -1, 0 or 1 for l compared to r, following CQL's ordering over Integer,
// Decimal, String, Quantity, Date, DateTime and Time.
func compareOrdered(l, r result.Value) (int, error) {
	switch lv := l.GolangValue().(type) {
	case int64:
		rv, err := result.ToInt64(r)
		if err != nil {
			return 0, err
		}
		switch {
		case lv < rv:
			return -1, nil
		case lv > rv:
			return 1, nil
		default:
			return 0, nil
		}
	case decimal.Decimal:
		rv, err := result.ToDecimal(r)
		if err != nil {
			return 0, err
		}
		return lv.Cmp(rv), nil
	case string:
		rv, err := result.ToString(r)
		if err != nil {
			return 0, err
		}
		switch {
		case lv < rv:
			return -1, nil
		case lv > rv:
			return 1, nil
		default:
			return 0, nil
		}
	case result.Quantity:
		rv, err := result.ToQuantity(r)
		if err != nil {
			return 0, err
		}
		lc, rc, err := commensurateQuantities(lv, rv)
		if err != nil {
			return 0, err
		}
		return lc.Cmp(rc), nil
	case result.Date, result.DateTime, result.Time:
		lt, lp, err := asComparableTime(l)
		if err != nil {
			return 0, err
		}
		rt, rp, err := asComparableTime(r)
		if err != nil {
			return 0, err
		}
		if lp != rp {
			return 0, fmt.Errorf("cannot compare temporal values of differing precision %v and %v", lp, rp)
		}
		switch {
		case lt.Before(rt):
			return -1, nil
		case lt.After(rt):
			return 1, nil
		default:
			return 0, nil
		}
	default:
		return 0, fmt.Errorf("operands of type %T are not ordered", lv)
	}
}

func (terp *interpreter) evalLess(l, r result.Value) (result.Value, error) {
	return terp.comparisonOp(l, r, func(c int) bool { return c < 0 })
}

func (terp *interpreter) evalGreater(l, r result.Value) (result.Value, error) {
	return terp.comparisonOp(l, r, func(c int) bool { return c > 0 })
}

func (terp *interpreter) evalLessOrEqual(l, r result.Value) (result.Value, error) {
	return terp.comparisonOp(l, r, func(c int) bool { return c <= 0 })
}

func (terp *interpreter) evalGreaterOrEqual(l, r result.Value) (result.Value, error) {
	return terp.comparisonOp(l, r, func(c int) bool { return c >= 0 })
}

func (terp *interpreter) comparisonOp(l, r result.Value, test func(int) bool) (result.Value, error) {
	if result.IsNull(l) || result.IsNull(r) {
		return result.New(nil)
	}
	c, err := compareOrdered(l, r)
	if err != nil {
		return result.Value{}, err
	}
	return result.New(test(c))
}
