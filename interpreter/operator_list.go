package interpreter

import (
	"errors"

	"github.com/example/cqlcore/model"
	"github.com/example/cqlcore/result"
	"github.com/example/cqlcore/types"
)

var errTooManyElements = errors.New("SingletonFrom operand has more than one element")

// evalListExpr evaluates every element expression of a List constructor in order.
func (terp *interpreter) evalListExpr(e *model.List) (result.Value, error) {
	vals := make([]result.Value, len(e.List))
	for i, elemExpr := range e.List {
		v, err := terp.evalExpression(elemExpr)
		if err != nil {
			return result.Value{}, err
		}
		vals[i] = v
	}
	var staticType *types.List
	if lt, ok := e.GetResultType().(*types.List); ok {
		staticType = lt
	}
	return result.New(result.List{Value: vals, StaticType: staticType})
}

func (terp *interpreter) evalExists(operand result.Value) (result.Value, error) {
	if result.IsNull(operand) {
		return result.New(false)
	}
	items, err := result.ToSlice(operand)
	if err != nil {
		return result.Value{}, err
	}
	return result.New(len(items) > 0)
}

func (terp *interpreter) evalFirst(operand result.Value) (result.Value, error) {
	if result.IsNull(operand) {
		return result.New(nil)
	}
	items, err := result.ToSlice(operand)
	if err != nil {
		return result.Value{}, err
	}
	if len(items) == 0 {
		return result.New(nil)
	}
	return items[0], nil
}

func (terp *interpreter) evalLast(operand result.Value) (result.Value, error) {
	if result.IsNull(operand) {
		return result.New(nil)
	}
	items, err := result.ToSlice(operand)
	if err != nil {
		return result.Value{}, err
	}
	if len(items) == 0 {
		return result.New(nil)
	}
	return items[len(items)-1], nil
}

func (terp *interpreter) evalSingletonFrom(operand result.Value) (result.Value, error) {
	if result.IsNull(operand) {
		return result.New(nil)
	}
	items, err := result.ToSlice(operand)
	if err != nil {
		return result.Value{}, err
	}
	switch len(items) {
	case 0:
		return result.New(nil)
	case 1:
		return items[0], nil
	default:
		return result.Value{}, result.NewEngineError("SingletonFrom", result.ErrEvaluationError,
			errTooManyElements)
	}
}

func (terp *interpreter) evalAllTrue(operand result.Value) (result.Value, error) {
	if result.IsNull(operand) {
		return result.New(true)
	}
	items, err := result.ToSlice(operand)
	if err != nil {
		return result.Value{}, err
	}
	for _, item := range items {
		b, err := asKleeneBool(item)
		if err != nil {
			return result.Value{}, err
		}
		if b != nil && !*b {
			return result.New(false)
		}
	}
	return result.New(true)
}

func (terp *interpreter) evalCount(operand result.Value) (result.Value, error) {
	if result.IsNull(operand) {
		return result.New(int64(0))
	}
	items, err := result.ToSlice(operand)
	if err != nil {
		return result.Value{}, err
	}
	count := int64(0)
	for _, item := range items {
		if !result.IsNull(item) {
			count++
		}
	}
	return result.New(count)
}

func (terp *interpreter) evalCoalesce(args []result.Value) (result.Value, error) {
	for _, a := range args {
		if !result.IsNull(a) {
			return a, nil
		}
	}
	return result.New(nil)
}

func (terp *interpreter) evalConcatenate(args []result.Value) (result.Value, error) {
	out := ""
	for _, a := range args {
		if result.IsNull(a) {
			return result.New(nil)
		}
		s, err := result.ToString(a)
		if err != nil {
			return result.Value{}, err
		}
		out += s
	}
	return result.New(out)
}
