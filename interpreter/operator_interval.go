package interpreter

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/example/cqlcore/model"
	"github.com/example/cqlcore/result"
	"github.com/example/cqlcore/types"
)

// evalIntervalExpr evaluates an Interval constructor, resolving its (possibly expression valued)
// inclusivity flags.
func (terp *interpreter) evalIntervalExpr(e *model.Interval) (result.Value, error) {
	low, err := terp.evalExpression(e.Low)
	if err != nil {
		return result.Value{}, err
	}
	high, err := terp.evalExpression(e.High)
	if err != nil {
		return result.Value{}, err
	}
	lowInclusive, err := terp.resolveInclusive(e.LowClosedExpression, e.LowInclusive)
	if err != nil {
		return result.Value{}, err
	}
	highInclusive, err := terp.resolveInclusive(e.HighClosedExpression, e.HighInclusive)
	if err != nil {
		return result.Value{}, err
	}
	var staticType *types.Interval
	if it, ok := e.GetResultType().(*types.Interval); ok {
		staticType = it
	}
	return result.New(result.Interval{Low: low, High: high, LowInclusive: lowInclusive, HighInclusive: highInclusive, StaticType: staticType})
}

func (terp *interpreter) resolveInclusive(expr model.IExpression, fallback bool) (bool, error) {
	if expr == nil {
		return fallback, nil
	}
	v, err := terp.evalExpression(expr)
	if err != nil {
		return false, err
	}
	if result.IsNull(v) {
		return false, nil
	}
	return result.ToBool(v)
}

func (terp *interpreter) evalStart(operand result.Value) (result.Value, error) {
	if result.IsNull(operand) {
		return result.New(nil)
	}
	iv, err := result.ToInterval(operand)
	if err != nil {
		return result.Value{}, err
	}
	return iv.Low, nil
}

func (terp *interpreter) evalEnd(operand result.Value) (result.Value, error) {
	if result.IsNull(operand) {
		return result.New(nil)
	}
	iv, err := result.ToInterval(operand)
	if err != nil {
		return result.Value{}, err
	}
	return iv.High, nil
}

// evalPredecessor and evalSuccessor step a point value by the smallest meaningful unit of its
// type: 1 for Integer, one part-per-hundred-million for Decimal, and one unit of the operand's
// own precision for Date/DateTime/Time.
func (terp *interpreter) evalPredecessor(operand result.Value) (result.Value, error) {
	return terp.stepPoint(operand, -1)
}

func (terp *interpreter) evalSuccessor(operand result.Value) (result.Value, error) {
	return terp.stepPoint(operand, 1)
}

func (terp *interpreter) stepPoint(operand result.Value, dir int64) (result.Value, error) {
	if result.IsNull(operand) {
		return result.New(nil)
	}
	switch v := operand.GolangValue().(type) {
	case int64:
		return result.New(v + dir)
	case decimal.Decimal:
		return result.New(v.Add(decimal.New(dir, -8)))
	case result.Date, result.DateTime, result.Time:
		t, precision, err := asComparableTime(operand)
		if err != nil {
			return result.Value{}, err
		}
		unit := map[model.DateTimePrecision]string{
			model.YEAR: "year", model.MONTH: "month", model.DAY: "day",
			model.HOUR: "hour", model.MINUTE: "minute", model.SECOND: "second", model.MILLISECOND: "millisecond",
		}[precision]
		shifted, err := shiftByDuration(t, result.Quantity{Value: decimal.NewFromInt(dir), Unit: unit})
		if err != nil {
			return result.Value{}, err
		}
		return rewrapTemporal(operand, shifted, precision)
	default:
		return result.Value{}, fmt.Errorf("Predecessor/Successor is not supported for type %T", v)
	}
}

// boundaryValue extracts the endpoint of v relevant to an Allen-style temporal relation: the
// upper bound of an Interval when upper is true, the lower bound otherwise. A plain point value
// is returned unchanged.
func boundaryValue(v result.Value, upper bool) result.Value {
	iv, ok := v.GolangValue().(result.Interval)
	if !ok {
		return v
	}
	if upper {
		return iv.High
	}
	return iv.Low
}

// pointInInterval reports whether point falls within iv, honoring its inclusivity flags; a null
// bound means that side is unbounded.
func pointInInterval(point result.Value, iv result.Interval) (bool, error) {
	if !result.IsNull(iv.Low) {
		c, err := compareOrdered(point, iv.Low)
		if err != nil {
			return false, err
		}
		if c < 0 || (c == 0 && !iv.LowInclusive) {
			return false, nil
		}
	}
	if !result.IsNull(iv.High) {
		c, err := compareOrdered(point, iv.High)
		if err != nil {
			return false, err
		}
		if c > 0 || (c == 0 && !iv.HighInclusive) {
			return false, nil
		}
	}
	return true, nil
}

// evalIn implements "Left in Right" for Right an Interval or a List.
func (terp *interpreter) evalIn(precision model.DateTimePrecision, l, r result.Value) (result.Value, error) {
	if result.IsNull(l) || result.IsNull(r) {
		return result.New(nil)
	}
	switch r.GolangValue().(type) {
	case result.Interval:
		iv, err := result.ToInterval(r)
		if err != nil {
			return result.Value{}, err
		}
		in, err := pointInInterval(l, iv)
		if err != nil {
			return result.Value{}, err
		}
		return result.New(in)
	case result.List:
		items, err := result.ToSlice(r)
		if err != nil {
			return result.Value{}, err
		}
		return result.New(containsValue(items, l))
	default:
		return result.Value{}, fmt.Errorf("In is not supported against type %T", r.GolangValue())
	}
}

// evalIncludedIn is true when Left's interval lies entirely within Right's interval.
func (terp *interpreter) evalIncludedIn(precision model.DateTimePrecision, l, r result.Value) (result.Value, error) {
	if result.IsNull(l) || result.IsNull(r) {
		return result.New(nil)
	}
	if _, ok := l.GolangValue().(result.Interval); !ok {
		return terp.evalIn(precision, l, r)
	}
	liv, err := result.ToInterval(l)
	if err != nil {
		return result.Value{}, err
	}
	riv, err := result.ToInterval(r)
	if err != nil {
		return result.Value{}, err
	}
	lowOK, err := pointInInterval(liv.Low, riv)
	if err != nil {
		return result.Value{}, err
	}
	highOK, err := pointInInterval(liv.High, riv)
	if err != nil {
		return result.Value{}, err
	}
	return result.New(lowOK && highOK)
}

// evalContains is the inverse of In/IncludedIn: "Left contains Right".
func (terp *interpreter) evalContains(precision model.DateTimePrecision, l, r result.Value) (result.Value, error) {
	if result.IsNull(l) || result.IsNull(r) {
		return result.New(nil)
	}
	switch l.GolangValue().(type) {
	case result.Interval:
		if _, ok := r.GolangValue().(result.Interval); ok {
			return terp.evalIncludedIn(precision, r, l)
		}
		return terp.evalIn(precision, r, l)
	case result.List:
		items, err := result.ToSlice(l)
		if err != nil {
			return result.Value{}, err
		}
		return result.New(containsValue(items, r))
	default:
		return result.Value{}, fmt.Errorf("Contains is not supported for type %T", l.GolangValue())
	}
}

// evalIncludes is true if Left's interval or list contains every point of Right.
func (terp *interpreter) evalIncludes(precision model.DateTimePrecision, l, r result.Value) (result.Value, error) {
	return terp.evalIncludedIn(precision, r, l)
}

// evalProperIncludedIn is true if Left is included in Right and the two are not equal.
func (terp *interpreter) evalProperIncludedIn(precision model.DateTimePrecision, l, r result.Value) (result.Value, error) {
	included, err := terp.evalIncludedIn(precision, l, r)
	if err != nil || result.IsNull(included) {
		return included, err
	}
	in, _ := result.ToBool(included)
	if !in {
		return result.New(false)
	}
	return result.New(!l.Equal(r))
}

// evalProperIncludes is true if Left includes Right and the two are not equal.
func (terp *interpreter) evalProperIncludes(precision model.DateTimePrecision, l, r result.Value) (result.Value, error) {
	return terp.evalProperIncludedIn(precision, r, l)
}

// intervalEndBeforeStart reports whether a's interval ends strictly before b's begins: a.High is
// less than b.Low, or the two touch at a boundary that is open on at least one side. A null
// (unbounded) bound is never "before".
func intervalEndBeforeStart(a, b result.Interval) (bool, error) {
	if result.IsNull(a.High) || result.IsNull(b.Low) {
		return false, nil
	}
	c, err := compareOrdered(a.High, b.Low)
	if err != nil {
		return false, err
	}
	if c < 0 {
		return true, nil
	}
	return c == 0 && !(a.HighInclusive && b.LowInclusive), nil
}

// intervalsShareAPoint reports whether a and b's intervals overlap at one or more points.
func intervalsShareAPoint(a, b result.Interval) (bool, error) {
	aBefore, err := intervalEndBeforeStart(a, b)
	if err != nil {
		return false, err
	}
	if aBefore {
		return false, nil
	}
	bBefore, err := intervalEndBeforeStart(b, a)
	if err != nil {
		return false, err
	}
	return !bBefore, nil
}

// intervalsOverlapOrMeet reports whether a and b's intervals share a point or are immediately
// adjacent, i.e. whether their union is itself a single contiguous interval.
func (terp *interpreter) intervalsOverlapOrMeet(a, b result.Interval) (bool, error) {
	share, err := intervalsShareAPoint(a, b)
	if err != nil || share {
		return share, err
	}
	adjacent, err := terp.intervalsMeet(a, b)
	if err != nil {
		return false, err
	}
	if adjacent {
		return true, nil
	}
	return terp.intervalsMeet(b, a)
}

// intervalsMeet reports whether a ends exactly one granule before b begins, with no shared point.
func (terp *interpreter) intervalsMeet(a, b result.Interval) (bool, error) {
	if result.IsNull(a.High) || result.IsNull(b.Low) {
		return false, nil
	}
	succ, err := terp.stepPoint(a.High, 1)
	if err != nil {
		return false, err
	}
	return succ.Equal(b.Low), nil
}

// evalOverlaps is true if Left and Right's intervals share at least one point.
func (terp *interpreter) evalOverlaps(l, r result.Value) (result.Value, error) {
	if result.IsNull(l) || result.IsNull(r) {
		return result.New(nil)
	}
	liv, err := result.ToInterval(l)
	if err != nil {
		return result.Value{}, err
	}
	riv, err := result.ToInterval(r)
	if err != nil {
		return result.Value{}, err
	}
	share, err := intervalsShareAPoint(liv, riv)
	if err != nil {
		return result.Value{}, err
	}
	return result.New(share)
}

// evalOverlapsBefore is true if Left overlaps Right and Left starts no later than Right.
func (terp *interpreter) evalOverlapsBefore(l, r result.Value) (result.Value, error) {
	overlaps, err := terp.evalOverlaps(l, r)
	if err != nil || result.IsNull(overlaps) {
		return overlaps, err
	}
	if ov, _ := result.ToBool(overlaps); !ov {
		return result.New(false)
	}
	liv, err := result.ToInterval(l)
	if err != nil {
		return result.Value{}, err
	}
	riv, err := result.ToInterval(r)
	if err != nil {
		return result.Value{}, err
	}
	if result.IsNull(liv.Low) || result.IsNull(riv.Low) {
		return result.New(nil)
	}
	c, err := compareOrdered(liv.Low, riv.Low)
	if err != nil {
		return result.Value{}, err
	}
	return result.New(c <= 0)
}

// evalOverlapsAfter is true if Left overlaps Right and Left ends no earlier than Right.
func (terp *interpreter) evalOverlapsAfter(l, r result.Value) (result.Value, error) {
	overlaps, err := terp.evalOverlaps(l, r)
	if err != nil || result.IsNull(overlaps) {
		return overlaps, err
	}
	if ov, _ := result.ToBool(overlaps); !ov {
		return result.New(false)
	}
	liv, err := result.ToInterval(l)
	if err != nil {
		return result.Value{}, err
	}
	riv, err := result.ToInterval(r)
	if err != nil {
		return result.Value{}, err
	}
	if result.IsNull(liv.High) || result.IsNull(riv.High) {
		return result.New(nil)
	}
	c, err := compareOrdered(liv.High, riv.High)
	if err != nil {
		return result.Value{}, err
	}
	return result.New(c >= 0)
}

// evalMeetsBefore is true if Left ends immediately before Right begins, with no gap and no shared
// point.
func (terp *interpreter) evalMeetsBefore(l, r result.Value) (result.Value, error) {
	if result.IsNull(l) || result.IsNull(r) {
		return result.New(nil)
	}
	liv, err := result.ToInterval(l)
	if err != nil {
		return result.Value{}, err
	}
	riv, err := result.ToInterval(r)
	if err != nil {
		return result.Value{}, err
	}
	if result.IsNull(liv.High) || result.IsNull(riv.Low) {
		return result.New(nil)
	}
	meets, err := terp.intervalsMeet(liv, riv)
	if err != nil {
		return result.Value{}, err
	}
	return result.New(meets)
}

// evalMeetsAfter is true if Left begins immediately after Right ends.
func (terp *interpreter) evalMeetsAfter(l, r result.Value) (result.Value, error) {
	return terp.evalMeetsBefore(r, l)
}

// evalMeets is true if Left and Right's intervals are immediately adjacent, in either order.
func (terp *interpreter) evalMeets(l, r result.Value) (result.Value, error) {
	before, err := terp.evalMeetsBefore(l, r)
	if err != nil {
		return result.Value{}, err
	}
	after, err := terp.evalMeetsAfter(l, r)
	if err != nil {
		return result.Value{}, err
	}
	if result.IsNull(before) || result.IsNull(after) {
		return result.New(nil)
	}
	b, _ := result.ToBool(before)
	a, _ := result.ToBool(after)
	return result.New(b || a)
}

// equalBounds reports whether two interval boundary values are equal, treating two unbounded
// (null) sides as equal to each other and unequal to any bounded value.
func equalBounds(a, b result.Value) (bool, error) {
	if result.IsNull(a) || result.IsNull(b) {
		return result.IsNull(a) && result.IsNull(b), nil
	}
	c, err := compareOrdered(a, b)
	if err != nil {
		return false, err
	}
	return c == 0, nil
}

// evalStarts is true if Left and Right begin at the same point and Left ends no later than Right.
func (terp *interpreter) evalStarts(l, r result.Value) (result.Value, error) {
	if result.IsNull(l) || result.IsNull(r) {
		return result.New(nil)
	}
	liv, err := result.ToInterval(l)
	if err != nil {
		return result.Value{}, err
	}
	riv, err := result.ToInterval(r)
	if err != nil {
		return result.Value{}, err
	}
	sameStart, err := equalBounds(liv.Low, riv.Low)
	if err != nil {
		return result.Value{}, err
	}
	if !sameStart {
		return result.New(false)
	}
	if result.IsNull(liv.High) || result.IsNull(riv.High) {
		return result.New(nil)
	}
	c, err := compareOrdered(liv.High, riv.High)
	if err != nil {
		return result.Value{}, err
	}
	return result.New(c <= 0)
}

// evalEnds is true if Left and Right end at the same point and Left begins no earlier than Right.
func (terp *interpreter) evalEnds(l, r result.Value) (result.Value, error) {
	if result.IsNull(l) || result.IsNull(r) {
		return result.New(nil)
	}
	liv, err := result.ToInterval(l)
	if err != nil {
		return result.Value{}, err
	}
	riv, err := result.ToInterval(r)
	if err != nil {
		return result.Value{}, err
	}
	sameEnd, err := equalBounds(liv.High, riv.High)
	if err != nil {
		return result.Value{}, err
	}
	if !sameEnd {
		return result.New(false)
	}
	if result.IsNull(liv.Low) || result.IsNull(riv.Low) {
		return result.New(nil)
	}
	c, err := compareOrdered(liv.Low, riv.Low)
	if err != nil {
		return result.Value{}, err
	}
	return result.New(c >= 0)
}

// mergeIntervals returns the smallest interval spanning both a and b, used by Collapse and the
// interval form of Union. Callers establish that a and b overlap or meet before calling.
func mergeIntervals(a, b result.Interval) result.Interval {
	nullValue, _ := result.New(nil)
	var low, high result.Value
	var lowIncl, highIncl bool
	switch {
	case result.IsNull(a.Low) || result.IsNull(b.Low):
		low, lowIncl = nullValue, false
	default:
		low, lowIncl = a.Low, a.LowInclusive
		if c, _ := compareOrdered(a.Low, b.Low); c > 0 {
			low, lowIncl = b.Low, b.LowInclusive
		} else if c == 0 {
			lowIncl = a.LowInclusive || b.LowInclusive
		}
	}
	switch {
	case result.IsNull(a.High) || result.IsNull(b.High):
		high, highIncl = nullValue, false
	default:
		high, highIncl = a.High, a.HighInclusive
		if c, _ := compareOrdered(a.High, b.High); c < 0 {
			high, highIncl = b.High, b.HighInclusive
		} else if c == 0 {
			highIncl = a.HighInclusive || b.HighInclusive
		}
	}
	st := a.StaticType
	if st == nil {
		st = b.StaticType
	}
	return result.Interval{Low: low, High: high, LowInclusive: lowIncl, HighInclusive: highIncl, StaticType: st}
}

// evalCollapse merges an ordered list of intervals wherever they overlap or meet, returning the
// minimal set of disjoint intervals covering the same points.
func (terp *interpreter) evalCollapse(operand result.Value) (result.Value, error) {
	if result.IsNull(operand) {
		return result.New(nil)
	}
	items, err := result.ToSlice(operand)
	if err != nil {
		return result.Value{}, err
	}
	var ivs []result.Interval
	for _, item := range items {
		if result.IsNull(item) {
			continue
		}
		iv, err := result.ToInterval(item)
		if err != nil {
			return result.Value{}, err
		}
		ivs = append(ivs, iv)
	}
	sort.Slice(ivs, func(i, j int) bool {
		if result.IsNull(ivs[i].Low) != result.IsNull(ivs[j].Low) {
			return result.IsNull(ivs[i].Low)
		}
		if result.IsNull(ivs[i].Low) {
			return false
		}
		c, _ := compareOrdered(ivs[i].Low, ivs[j].Low)
		return c < 0
	})

	var out []result.Value
	have := false
	var cur result.Interval
	for _, iv := range ivs {
		if !have {
			cur, have = iv, true
			continue
		}
		merge, err := terp.intervalsOverlapOrMeet(cur, iv)
		if err != nil {
			return result.Value{}, err
		}
		if merge {
			cur = mergeIntervals(cur, iv)
			continue
		}
		v, err := result.New(cur)
		if err != nil {
			return result.Value{}, err
		}
		out = append(out, v)
		cur = iv
	}
	if have {
		v, err := result.New(cur)
		if err != nil {
			return result.Value{}, err
		}
		out = append(out, v)
	}
	return result.New(result.List{Value: out})
}

// maxExpandPoints bounds Expand's enumeration so an accidentally unbounded or huge interval
// cannot hang the evaluator.
const maxExpandPoints = 10000

// evalExpand enumerates every point of Left's interval (or list of intervals), stepping by the
// Quantity Right names as a count of Left's own granule (calendar unit for temporal types, 1 for
// Integer, one part-per-hundred-million for Decimal), or by a single granule if Right is nil.
// Expand does not honor a "per" Quantity whose unit differs from the operand's own granularity.
func (terp *interpreter) evalExpand(l, r result.Value) (result.Value, error) {
	if result.IsNull(l) {
		return result.New(nil)
	}
	var ivs []result.Interval
	if list, ok := l.GolangValue().(result.List); ok {
		for _, item := range list.Value {
			if result.IsNull(item) {
				continue
			}
			iv, err := result.ToInterval(item)
			if err != nil {
				return result.Value{}, err
			}
			ivs = append(ivs, iv)
		}
	} else {
		iv, err := result.ToInterval(l)
		if err != nil {
			return result.Value{}, err
		}
		ivs = append(ivs, iv)
	}

	step := int64(1)
	if !result.IsNull(r) {
		q, err := result.ToQuantity(r)
		if err != nil {
			return result.Value{}, err
		}
		step = q.Value.IntPart()
		if step <= 0 {
			return result.Value{}, fmt.Errorf("Expand per-quantity must be positive, got %s", q.Value)
		}
	}

	var out []result.Value
	for _, iv := range ivs {
		if result.IsNull(iv.Low) || result.IsNull(iv.High) {
			return result.Value{}, fmt.Errorf("Expand requires a bounded interval")
		}
		point := iv.Low
		if !iv.LowInclusive {
			next, err := terp.stepPoint(point, 1)
			if err != nil {
				return result.Value{}, err
			}
			point = next
		}
		for count := 0; count < maxExpandPoints; count++ {
			c, err := compareOrdered(point, iv.High)
			if err != nil {
				return result.Value{}, err
			}
			if c > 0 || (c == 0 && !iv.HighInclusive) {
				break
			}
			if !containsValue(out, point) {
				out = append(out, point)
			}
			next, err := terp.stepPoint(point, step)
			if err != nil {
				return result.Value{}, err
			}
			point = next
		}
	}
	return result.New(result.List{Value: out})
}

// evalWidth returns the difference between an interval's high and low boundaries.
func (terp *interpreter) evalWidth(operand result.Value) (result.Value, error) {
	if result.IsNull(operand) {
		return result.New(nil)
	}
	iv, err := result.ToInterval(operand)
	if err != nil {
		return result.Value{}, err
	}
	if result.IsNull(iv.Low) || result.IsNull(iv.High) {
		return result.New(nil)
	}
	return terp.evalSubtract(iv.High, iv.Low)
}

// evalSize returns an interval's width plus one granule, counting both of the interval's own
// endpoints (e.g. Size(Interval[1, 5]) is 5, not 4).
func (terp *interpreter) evalSize(operand result.Value) (result.Value, error) {
	width, err := terp.evalWidth(operand)
	if err != nil || result.IsNull(width) {
		return width, err
	}
	iv, err := result.ToInterval(operand)
	if err != nil {
		return result.Value{}, err
	}
	granuleHigh, err := terp.stepPoint(iv.Low, 1)
	if err != nil {
		return result.Value{}, err
	}
	granule, err := terp.evalSubtract(granuleHigh, iv.Low)
	if err != nil {
		return result.Value{}, err
	}
	return terp.evalAdd(width, granule)
}

// evalPointFrom returns an interval's sole point, erroring if Low and High are not equal.
func (terp *interpreter) evalPointFrom(operand result.Value) (result.Value, error) {
	if result.IsNull(operand) {
		return result.New(nil)
	}
	iv, err := result.ToInterval(operand)
	if err != nil {
		return result.Value{}, err
	}
	if result.IsNull(iv.Low) || result.IsNull(iv.High) {
		return result.Value{}, fmt.Errorf("PointFrom requires a bounded interval")
	}
	c, err := compareOrdered(iv.Low, iv.High)
	if err != nil {
		return result.Value{}, err
	}
	if c != 0 {
		return result.Value{}, fmt.Errorf("PointFrom requires an interval with exactly one point")
	}
	return iv.Low, nil
}

// unionIntervals returns the merged interval spanning a and b if they overlap or meet, or Null if
// they are disjoint (their union would not itself be a single Interval).
func (terp *interpreter) unionIntervals(a, b result.Interval) (result.Value, error) {
	merge, err := terp.intervalsOverlapOrMeet(a, b)
	if err != nil {
		return result.Value{}, err
	}
	if !merge {
		return result.New(nil)
	}
	return result.New(mergeIntervals(a, b))
}

// tighterLow returns the later (more restrictive) of two interval low bounds, per Intersect.
func tighterLow(aLow result.Value, aIncl bool, bLow result.Value, bIncl bool) (result.Value, bool, error) {
	if result.IsNull(aLow) {
		return bLow, bIncl, nil
	}
	if result.IsNull(bLow) {
		return aLow, aIncl, nil
	}
	c, err := compareOrdered(aLow, bLow)
	if err != nil {
		return result.Value{}, false, err
	}
	switch {
	case c > 0:
		return aLow, aIncl, nil
	case c < 0:
		return bLow, bIncl, nil
	default:
		return aLow, aIncl && bIncl, nil
	}
}

// tighterHigh returns the earlier (more restrictive) of two interval high bounds, per Intersect.
func tighterHigh(aHigh result.Value, aIncl bool, bHigh result.Value, bIncl bool) (result.Value, bool, error) {
	if result.IsNull(aHigh) {
		return bHigh, bIncl, nil
	}
	if result.IsNull(bHigh) {
		return aHigh, aIncl, nil
	}
	c, err := compareOrdered(aHigh, bHigh)
	if err != nil {
		return result.Value{}, false, err
	}
	switch {
	case c < 0:
		return aHigh, aIncl, nil
	case c > 0:
		return bHigh, bIncl, nil
	default:
		return aHigh, aIncl && bIncl, nil
	}
}

// intersectIntervals returns the overlapping region of a and b, or Null if they do not overlap.
func intersectIntervals(a, b result.Interval) (result.Value, error) {
	low, lowIncl, err := tighterLow(a.Low, a.LowInclusive, b.Low, b.LowInclusive)
	if err != nil {
		return result.Value{}, err
	}
	high, highIncl, err := tighterHigh(a.High, a.HighInclusive, b.High, b.HighInclusive)
	if err != nil {
		return result.Value{}, err
	}
	if !result.IsNull(low) && !result.IsNull(high) {
		c, err := compareOrdered(low, high)
		if err != nil {
			return result.Value{}, err
		}
		if c > 0 || (c == 0 && !(lowIncl && highIncl)) {
			return result.New(nil)
		}
	}
	st := a.StaticType
	if st == nil {
		st = b.StaticType
	}
	return result.New(result.Interval{Low: low, High: high, LowInclusive: lowIncl, HighInclusive: highIncl, StaticType: st})
}

// exceptIntervals returns the portion of a outside b, or Null if the result cannot be expressed
// as a single Interval: b may split a's interior into two disjoint pieces, or may cover all of a.
func (terp *interpreter) exceptIntervals(a, b result.Interval) (result.Value, error) {
	if result.IsNull(a.Low) || result.IsNull(a.High) || result.IsNull(b.Low) || result.IsNull(b.High) {
		return result.New(nil)
	}
	share, err := intervalsShareAPoint(a, b)
	if err != nil {
		return result.Value{}, err
	}
	if !share {
		return result.New(a)
	}
	bCoversALow, err := pointInInterval(a.Low, b)
	if err != nil {
		return result.Value{}, err
	}
	bCoversAHigh, err := pointInInterval(a.High, b)
	if err != nil {
		return result.Value{}, err
	}
	switch {
	case bCoversALow && bCoversAHigh:
		return result.New(nil)
	case bCoversALow:
		newLow, err := terp.stepPoint(b.High, 1)
		if err != nil {
			return result.Value{}, err
		}
		return result.New(result.Interval{Low: newLow, High: a.High, LowInclusive: true, HighInclusive: a.HighInclusive, StaticType: a.StaticType})
	case bCoversAHigh:
		newHigh, err := terp.stepPoint(b.Low, -1)
		if err != nil {
			return result.Value{}, err
		}
		return result.New(result.Interval{Low: a.Low, High: newHigh, LowInclusive: a.LowInclusive, HighInclusive: true, StaticType: a.StaticType})
	default:
		return result.New(nil)
	}
}
