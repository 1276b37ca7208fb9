package interpreter

import (
	"fmt"

	"github.com/example/cqlcore/model"
	"github.com/example/cqlcore/result"
)

// dispatchUnary routes a unary operator node to its implementation by name. Operand conversion
// already happened during overload resolution at compile time, so each operator function
// type-switches on the already-evaluated operand's GolangValue directly instead of matching
// against a declared overload table.
func (terp *interpreter) dispatchUnary(e model.IUnaryExpression, operand result.Value) (result.Value, error) {
	var v result.Value
	var err error
	switch e.GetName() {
	case "As":
		v, err = terp.evalAs(e.(*model.As), operand)
	case "Is":
		v, err = terp.evalIs(e.(*model.Is), operand)
	case "Negate":
		v, err = terp.evalNegate(operand)
	case "Truncate":
		v, err = terp.evalTruncate(operand)
	case "Exists":
		v, err = terp.evalExists(operand)
	case "Not":
		v, err = terp.evalNot(operand)
	case "First":
		v, err = terp.evalFirst(operand)
	case "Last":
		v, err = terp.evalLast(operand)
	case "SingletonFrom":
		v, err = terp.evalSingletonFrom(operand)
	case "Start":
		v, err = terp.evalStart(operand)
	case "End":
		v, err = terp.evalEnd(operand)
	case "Predecessor":
		v, err = terp.evalPredecessor(operand)
	case "Successor":
		v, err = terp.evalSuccessor(operand)
	case "IsNull":
		v, err = result.New(result.IsNull(operand))
	case "IsFalse":
		v, err = terp.evalIsFalse(operand)
	case "IsTrue":
		v, err = terp.evalIsTrue(operand)
	case "ToBoolean":
		v, err = terp.evalToBoolean(operand)
	case "ToDateTime":
		v, err = terp.evalToDateTime(operand)
	case "ToDate":
		v, err = terp.evalToDate(operand)
	case "ToDecimal":
		v, err = terp.evalToDecimal(operand)
	case "ToInteger":
		v, err = terp.evalToInteger(operand)
	case "ToQuantity":
		v, err = terp.evalToQuantity(operand)
	case "ToConcept":
		v, err = terp.evalToConcept(operand)
	case "ToString":
		v, err = terp.evalToString(operand)
	case "ToTime":
		v, err = terp.evalToTime(operand)
	case "AllTrue":
		v, err = terp.evalAllTrue(operand)
	case "Count":
		v, err = terp.evalCount(operand)
	case "CalculateAge":
		v, err = terp.evalCalculateAge(e.(*model.CalculateAge), operand)
	case "Width":
		v, err = terp.evalWidth(operand)
	case "Size":
		v, err = terp.evalSize(operand)
	case "PointFrom":
		v, err = terp.evalPointFrom(operand)
	case "Collapse":
		v, err = terp.evalCollapse(operand)
	default:
		return result.Value{}, fmt.Errorf("internal error - unsupported unary operator %s", e.GetName())
	}
	if err != nil {
		return result.Value{}, err
	}
	return v.WithSources(e, operand), nil
}

// dispatchBinary routes a binary operator node to its implementation by name.
func (terp *interpreter) dispatchBinary(e model.IBinaryExpression, left, right result.Value) (result.Value, error) {
	var v result.Value
	var err error
	switch e.GetName() {
	case "CanConvertQuantity":
		v, err = terp.evalCanConvertQuantity(left, right)
	case "Equal":
		v, err = terp.evalEqual(left, right)
	case "Equivalent":
		v, err = terp.evalEquivalent(left, right)
	case "Less":
		v, err = terp.evalLess(left, right)
	case "Greater":
		v, err = terp.evalGreater(left, right)
	case "LessOrEqual":
		v, err = terp.evalLessOrEqual(left, right)
	case "GreaterOrEqual":
		v, err = terp.evalGreaterOrEqual(left, right)
	case "And":
		v, err = terp.evalAnd(left, right)
	case "Or":
		v, err = terp.evalOr(left, right)
	case "XOr":
		v, err = terp.evalXOr(left, right)
	case "Implies":
		v, err = terp.evalImplies(left, right)
	case "Add":
		v, err = terp.evalAdd(left, right)
	case "Subtract":
		v, err = terp.evalSubtract(left, right)
	case "Multiply":
		v, err = terp.evalMultiply(left, right)
	case "Divide":
		v, err = terp.evalDivide(left, right)
	case "Modulo":
		v, err = terp.evalModulo(left, right)
	case "TruncatedDivide":
		v, err = terp.evalTruncatedDivide(left, right)
	case "Except":
		v, err = terp.evalExcept(left, right)
	case "Intersect":
		v, err = terp.evalIntersect(left, right)
	case "Union":
		v, err = terp.evalUnion(left, right)
	case "Before":
		v, err = terp.evalBefore(e.(*model.Before).Precision, left, right)
	case "After":
		v, err = terp.evalAfter(e.(*model.After).Precision, left, right)
	case "SameOrBefore":
		v, err = terp.evalSameOrBefore(e.(*model.SameOrBefore).Precision, left, right)
	case "SameOrAfter":
		v, err = terp.evalSameOrAfter(e.(*model.SameOrAfter).Precision, left, right)
	case "DifferenceBetween":
		v, err = terp.evalDifferenceBetween(e.(*model.DifferenceBetween).Precision, left, right)
	case "In":
		v, err = terp.evalIn(e.(*model.In).Precision, left, right)
	case "IncludedIn":
		v, err = terp.evalIncludedIn(e.(*model.IncludedIn).Precision, left, right)
	case "Contains":
		v, err = terp.evalContains(e.(*model.Contains).Precision, left, right)
	case "CalculateAgeAt":
		v, err = terp.evalCalculateAgeAt(e.(*model.CalculateAgeAt).Precision, left, right)
	case "InCodeSystem":
		v, err = terp.evalInCodeSystem(left, right)
	case "InValueSet":
		v, err = terp.evalInValueSet(left, right)
	case "Overlaps":
		v, err = terp.evalOverlaps(left, right)
	case "OverlapsBefore":
		v, err = terp.evalOverlapsBefore(left, right)
	case "OverlapsAfter":
		v, err = terp.evalOverlapsAfter(left, right)
	case "Meets":
		v, err = terp.evalMeets(left, right)
	case "MeetsBefore":
		v, err = terp.evalMeetsBefore(left, right)
	case "MeetsAfter":
		v, err = terp.evalMeetsAfter(left, right)
	case "Starts":
		v, err = terp.evalStarts(left, right)
	case "Ends":
		v, err = terp.evalEnds(left, right)
	case "Includes":
		v, err = terp.evalIncludes(e.(*model.Includes).Precision, left, right)
	case "ProperIncludes":
		v, err = terp.evalProperIncludes(e.(*model.ProperIncludes).Precision, left, right)
	case "ProperIncludedIn":
		v, err = terp.evalProperIncludedIn(e.(*model.ProperIncludedIn).Precision, left, right)
	case "Expand":
		v, err = terp.evalExpand(left, right)
	default:
		return result.Value{}, fmt.Errorf("internal error - unsupported binary operator %s", e.GetName())
	}
	if err != nil {
		return result.Value{}, err
	}
	return v.WithSources(e, left, right), nil
}

// dispatchNary routes an n-ary operator node to its implementation by name.
func (terp *interpreter) dispatchNary(e model.INaryExpression, args []result.Value) (result.Value, error) {
	var v result.Value
	var err error
	switch e.GetName() {
	case "Coalesce":
		v, err = terp.evalCoalesce(args)
	case "Concatenate":
		v, err = terp.evalConcatenate(args)
	case "Date":
		v, err = terp.evalDateConstructor(args)
	case "DateTime":
		v, err = terp.evalDateTimeConstructor(args)
	case "Now":
		v, err = terp.evalNow()
	case "TimeOfDay":
		v, err = terp.evalTimeOfDay()
	case "Time":
		v, err = terp.evalTimeConstructor(args)
	case "Today":
		v, err = terp.evalToday()
	default:
		return result.Value{}, fmt.Errorf("internal error - unsupported n-ary operator %s", e.GetName())
	}
	if err != nil {
		return result.Value{}, err
	}
	return v.WithSources(e, args...), nil
}
