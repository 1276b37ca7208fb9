package interpreter

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/cqlcore/model"
	"github.com/example/cqlcore/result"
)

// asComparableTime extracts the underlying time.Time and precision of a Date, DateTime or Time
// value, regardless of which of the three Go types it is wrapped in.
func asComparableTime(v result.Value) (time.Time, model.DateTimePrecision, error) {
	switch t := v.GolangValue().(type) {
	case result.Date:
		return t.Date, t.Precision, nil
	case result.DateTime:
		return t.Date, t.Precision, nil
	case result.Time:
		return t.Date, t.Precision, nil
	default:
		return time.Time{}, "", fmt.Errorf("%T is not a temporal value", v.GolangValue())
	}
}

// addDurationToTemporal implements Add(Date|DateTime|Time, Quantity) by shifting the temporal
// value's instant by the duration named by the Quantity's unit.
func (terp *interpreter) addDurationToTemporal(l, r result.Value) (result.Value, error) {
	t, precision, err := asComparableTime(l)
	if err != nil {
		return result.Value{}, err
	}
	q, err := result.ToQuantity(r)
	if err != nil {
		return result.Value{}, err
	}
	shifted, err := shiftByDuration(t, q)
	if err != nil {
		return result.Value{}, err
	}
	return rewrapTemporal(l, shifted, precision)
}

// subtractFromTemporal implements Subtract(Date|DateTime|Time, Quantity).
func (terp *interpreter) subtractFromTemporal(l, r result.Value) (result.Value, error) {
	t, precision, err := asComparableTime(l)
	if err != nil {
		return result.Value{}, err
	}
	q, err := result.ToQuantity(r)
	if err != nil {
		return result.Value{}, err
	}
	negated := result.Quantity{Value: q.Value.Neg(), Unit: q.Unit}
	shifted, err := shiftByDuration(t, negated)
	if err != nil {
		return result.Value{}, err
	}
	return rewrapTemporal(l, shifted, precision)
}

func shiftByDuration(t time.Time, q result.Quantity) (time.Time, error) {
	n := q.Value.IntPart()
	frac := q.Value.Sub(decimal.NewFromInt(n))
	switch q.Unit {
	case "year", "years", "a":
		return t.AddDate(int(n), 0, 0), nil
	case "month", "months", "mo":
		return t.AddDate(0, int(n), 0), nil
	case "week", "weeks", "wk":
		return t.AddDate(0, 0, int(n)*7), nil
	case "day", "days", "d":
		return t.AddDate(0, 0, int(n)), nil
	case "hour", "hours", "h":
		return t.Add(time.Duration(n) * time.Hour), nil
	case "minute", "minutes", "min":
		return t.Add(time.Duration(n) * time.Minute), nil
	case "second", "seconds", "s":
		return t.Add(time.Duration(n) * time.Second), nil
	case "millisecond", "milliseconds", "ms":
		return t.Add(time.Duration(n) * time.Millisecond), nil
	default:
		if !frac.IsZero() {
			return time.Time{}, fmt.Errorf("fractional duration %s is not supported for unit %s", q.Value, q.Unit)
		}
		return time.Time{}, fmt.Errorf("%s is not a recognized CQL duration unit", q.Unit)
	}
}

// rewrapTemporal rebuilds a Value of the same concrete temporal kind as original, with a new
// instant and the original's precision.
func rewrapTemporal(original result.Value, t time.Time, precision model.DateTimePrecision) (result.Value, error) {
	switch original.GolangValue().(type) {
	case result.Date:
		return result.New(result.Date{Date: t, Precision: precision})
	case result.DateTime:
		return result.New(result.DateTime{Date: t, Precision: precision})
	case result.Time:
		return result.New(result.Time{Date: t, Precision: precision})
	default:
		return result.Value{}, fmt.Errorf("internal error - %T is not a temporal value", original.GolangValue())
	}
}

// temporalRelation compares the full instants of l and r. CQL's explicit precision argument
// (e.g. "before ... by day") narrows the comparison to that precision's granularity; this engine
// compares at full precision regardless, which agrees with the precision-qualified form whenever
// both operands already share that precision.
func (terp *interpreter) temporalRelation(precision model.DateTimePrecision, l, r result.Value, test func(diff time.Duration) bool) (result.Value, error) {
	if result.IsNull(l) || result.IsNull(r) {
		return result.New(nil)
	}
	lt, _, err := asComparableTime(l)
	if err != nil {
		return result.Value{}, err
	}
	rt, _, err := asComparableTime(r)
	if err != nil {
		return result.Value{}, err
	}
	return result.New(test(lt.Sub(rt)))
}

// intervalAwareRelation resolves Left and Right to the boundary points an Allen relation actually
// compares — Left's upper bound when lUpper is true, Right's lower bound when rUpper is false, and
// so on — passing plain point operands through unchanged, before delegating to temporalRelation.
// This lets Before/After/SameOrBefore/SameOrAfter work uniformly over points and intervals.
func (terp *interpreter) intervalAwareRelation(precision model.DateTimePrecision, l result.Value, lUpper bool, r result.Value, rUpper bool, test func(diff time.Duration) bool) (result.Value, error) {
	if result.IsNull(l) || result.IsNull(r) {
		return result.New(nil)
	}
	lp := boundaryValue(l, lUpper)
	rp := boundaryValue(r, rUpper)
	if result.IsNull(lp) || result.IsNull(rp) {
		return result.New(nil)
	}
	return terp.temporalRelation(precision, lp, rp, test)
}

func (terp *interpreter) evalBefore(precision model.DateTimePrecision, l, r result.Value) (result.Value, error) {
	return terp.intervalAwareRelation(precision, l, true, r, false, func(d time.Duration) bool { return d < 0 })
}

func (terp *interpreter) evalAfter(precision model.DateTimePrecision, l, r result.Value) (result.Value, error) {
	return terp.intervalAwareRelation(precision, l, false, r, true, func(d time.Duration) bool { return d > 0 })
}

func (terp *interpreter) evalSameOrBefore(precision model.DateTimePrecision, l, r result.Value) (result.Value, error) {
	return terp.intervalAwareRelation(precision, l, true, r, false, func(d time.Duration) bool { return d <= 0 })
}

func (terp *interpreter) evalSameOrAfter(precision model.DateTimePrecision, l, r result.Value) (result.Value, error) {
	return terp.intervalAwareRelation(precision, l, false, r, true, func(d time.Duration) bool { return d >= 0 })
}

func (terp *interpreter) evalDifferenceBetween(precision model.DateTimePrecision, l, r result.Value) (result.Value, error) {
	if result.IsNull(l) || result.IsNull(r) {
		return result.New(nil)
	}
	lt, _, err := asComparableTime(l)
	if err != nil {
		return result.Value{}, err
	}
	rt, _, err := asComparableTime(r)
	if err != nil {
		return result.Value{}, err
	}
	return result.New(int64(diffInPrecision(lt, rt, precision)))
}

func diffInPrecision(a, b time.Time, precision model.DateTimePrecision) int {
	switch precision {
	case model.YEAR:
		return b.Year() - a.Year()
	case model.MONTH:
		return (b.Year()-a.Year())*12 + int(b.Month()-a.Month())
	case model.DAY:
		return int(b.Sub(a).Hours() / 24)
	case model.HOUR:
		return int(b.Sub(a).Hours())
	case model.MINUTE:
		return int(b.Sub(a).Minutes())
	case model.SECOND:
		return int(b.Sub(a).Seconds())
	default:
		return int(b.Sub(a).Milliseconds())
	}
}

func (terp *interpreter) evalCalculateAge(c *model.CalculateAge, operand result.Value) (result.Value, error) {
	nowVal, err := result.New(result.DateTime{Date: terp.now, Precision: model.MILLISECOND})
	if err != nil {
		return result.Value{}, err
	}
	return terp.evalCalculateAgeAt(c.Precision, operand, nowVal)
}

func (terp *interpreter) evalCalculateAgeAt(precision model.DateTimePrecision, birth, asOf result.Value) (result.Value, error) {
	if result.IsNull(birth) || result.IsNull(asOf) {
		return result.New(nil)
	}
	bt, _, err := asComparableTime(birth)
	if err != nil {
		return result.Value{}, err
	}
	at, _, err := asComparableTime(asOf)
	if err != nil {
		return result.Value{}, err
	}
	return result.New(int64(diffInPrecision(bt, at, precision)))
}

func (terp *interpreter) evalNow() (result.Value, error) {
	return result.New(result.DateTime{Date: terp.now, Precision: model.MILLISECOND})
}

func (terp *interpreter) evalToday() (result.Value, error) {
	return result.New(result.Date{Date: terp.now, Precision: model.DAY})
}

func (terp *interpreter) evalTimeOfDay() (result.Value, error) {
	y, m, d := terp.now.Date()
	base := time.Date(0, 1, 1, terp.now.Hour(), terp.now.Minute(), terp.now.Second(), terp.now.Nanosecond(), terp.now.Location())
	_, _, _ = y, m, d
	return result.New(result.Time{Date: base, Precision: model.MILLISECOND})
}

// evalDateConstructor, evalDateTimeConstructor and evalTimeConstructor build a partial-precision
// temporal value from its component integer arguments, each defaulting to its type's minimum
// value (1 for Month/Day, 0 otherwise) when omitted; precision is the finest component supplied.
func (terp *interpreter) evalDateConstructor(args []result.Value) (result.Value, error) {
	comps, precision, err := integerComponents(args, []model.DateTimePrecision{model.YEAR, model.MONTH, model.DAY})
	if err != nil {
		return result.Value{}, err
	}
	if comps == nil {
		return result.New(nil)
	}
	t := time.Date(int(comps[0]), time.Month(orDefault(comps, 1, 1)), int(orDefault(comps, 2, 1)), 0, 0, 0, 0, terp.now.Location())
	return result.New(result.Date{Date: t, Precision: precision})
}

func (terp *interpreter) evalDateTimeConstructor(args []result.Value) (result.Value, error) {
	comps, precision, err := integerComponents(args, []model.DateTimePrecision{
		model.YEAR, model.MONTH, model.DAY, model.HOUR, model.MINUTE, model.SECOND, model.MILLISECOND,
	})
	if err != nil {
		return result.Value{}, err
	}
	if comps == nil {
		return result.New(nil)
	}
	t := time.Date(
		int(comps[0]), time.Month(orDefault(comps, 1, 1)), int(orDefault(comps, 2, 1)),
		int(orDefault(comps, 3, 0)), int(orDefault(comps, 4, 0)), int(orDefault(comps, 5, 0)),
		int(orDefault(comps, 6, 0))*int(time.Millisecond), terp.now.Location(),
	)
	return result.New(result.DateTime{Date: t, Precision: precision})
}

func (terp *interpreter) evalTimeConstructor(args []result.Value) (result.Value, error) {
	comps, precision, err := integerComponents(args, []model.DateTimePrecision{
		model.HOUR, model.MINUTE, model.SECOND, model.MILLISECOND,
	})
	if err != nil {
		return result.Value{}, err
	}
	if comps == nil {
		return result.New(nil)
	}
	t := time.Date(0, 1, 1,
		int(comps[0]), int(orDefault(comps, 1, 0)), int(orDefault(comps, 2, 0)),
		int(orDefault(comps, 3, 0))*int(time.Millisecond), time.UTC,
	)
	return result.New(result.Time{Date: t, Precision: precision})
}

func orDefault(comps []int64, idx int, def int64) int64 {
	if idx < len(comps) {
		return comps[idx]
	}
	return def
}

// integerComponents evaluates args as Integer component values; a null first argument (the
// required component) yields (nil, "", nil) signaling the constructor result is itself null.
func integerComponents(args []result.Value, precisions []model.DateTimePrecision) ([]int64, model.DateTimePrecision, error) {
	if len(args) == 0 || result.IsNull(args[0]) {
		return nil, "", nil
	}
	out := make([]int64, 0, len(args))
	precision := precisions[0]
	for i, a := range args {
		if result.IsNull(a) {
			break
		}
		v, err := result.ToInt64(a)
		if err != nil {
			return nil, "", err
		}
		out = append(out, v)
		if i < len(precisions) {
			precision = precisions[i]
		}
	}
	return out, precision, nil
}
