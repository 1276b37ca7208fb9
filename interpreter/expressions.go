package interpreter

import (
	"fmt"

	"github.com/example/cqlcore/model"
	"github.com/example/cqlcore/result"
)

// evalExpression is the single entry point tree-walking every model.IExpression node. It is the
// only place that type-switches on the full node set; everything downstream (operators,
// property navigation, the query pipeline) is reached from here.
func (terp *interpreter) evalExpression(expr model.IExpression) (result.Value, error) {
	switch e := expr.(type) {
	case nil:
		return result.New(nil)
	case *literalValueExpr:
		return e.value, nil
	case *conceptDefExpr:
		return terp.evalConceptDef(e.def)
	case *model.Literal:
		return terp.evalLiteral(e)
	case *model.Quantity:
		return terp.evalQuantityLiteral(e)
	case *model.Ratio:
		return terp.evalRatioLiteral(e)
	case *model.Interval:
		return terp.evalIntervalExpr(e)
	case *model.List:
		return terp.evalListExpr(e)
	case *model.Code:
		return terp.evalCodeExpr(e)
	case *model.Concept:
		return terp.evalConceptExpr(e)
	case *model.Tuple:
		return terp.evalTupleExpr(e)
	case *model.Instance:
		return terp.evalInstanceExpr(e)
	case *model.Property:
		return terp.evalProperty(e)
	case *model.Query:
		return terp.evalQuery(e)
	case *model.AliasRef:
		return terp.evalAliasRef(e)
	case *model.QueryLetRef:
		return terp.evalQueryLetRef(e)
	case *model.OperandRef:
		return terp.evalOperandRef(e)
	case *model.ExpressionRef:
		return terp.resolveAndForce(e.LibraryName, e.Name)
	case *model.ParameterRef:
		return terp.resolveAndForce(e.LibraryName, e.Name)
	case *model.ValuesetRef:
		return terp.resolveAndForce(e.LibraryName, e.Name)
	case *model.CodeSystemRef:
		return terp.resolveAndForce(e.LibraryName, e.Name)
	case *model.ConceptRef:
		return terp.resolveAndForce(e.LibraryName, e.Name)
	case *model.CodeRef:
		return terp.resolveAndForce(e.LibraryName, e.Name)
	case *model.FunctionRef:
		return terp.evalFunctionRef(e)
	case *model.Retrieve:
		return terp.evalRetrieve(e)
	case *model.Case:
		return terp.evalCase(e)
	case *model.IfThenElse:
		return terp.evalIfThenElse(e)
	case *model.MaxValue:
		return terp.evalMaxValue(e)
	case *model.MinValue:
		return terp.evalMinValue(e)
	case *model.Message:
		return terp.evalMessage(e)
	}

	// Everything else is reached through one of the three generic operator shapes and dispatched
	// by operator name in operator_dispatcher.go.
	switch e := expr.(type) {
	case model.IUnaryExpression:
		operand, err := terp.evalExpression(e.GetOperand())
		if err != nil {
			return result.Value{}, err
		}
		return terp.dispatchUnary(e, operand)
	case model.IBinaryExpression:
		left, err := terp.evalExpression(e.Left())
		if err != nil {
			return result.Value{}, err
		}
		right, err := terp.evalExpression(e.Right())
		if err != nil {
			return result.Value{}, err
		}
		return terp.dispatchBinary(e, left, right)
	case model.INaryExpression:
		ops := e.GetOperands()
		args := make([]result.Value, len(ops))
		for i, op := range ops {
			v, err := terp.evalExpression(op)
			if err != nil {
				return result.Value{}, err
			}
			args[i] = v
		}
		return terp.dispatchNary(e, args)
	}

	return result.Value{}, fmt.Errorf("internal error - unsupported expression type %T", expr)
}

// resolveAndForce resolves name (optionally qualified by libraryName) to a defThunk and forces
// it, sharing the local/global resolution pattern common to every *Ref expression whose target
// is itself a lazily evaluated top level definition.
func (terp *interpreter) resolveAndForce(libraryName, name string) (result.Value, error) {
	var t *defThunk
	var err error
	if libraryName == "" {
		t, err = terp.refs.ResolveLocal(name)
	} else {
		t, err = terp.refs.ResolveGlobal(libraryName, name)
	}
	if err != nil {
		return result.Value{}, err
	}
	return terp.force(t)
}

func (terp *interpreter) evalAliasRef(a *model.AliasRef) (result.Value, error) {
	t, err := terp.refs.ResolveLocal(a.Name)
	if err != nil {
		return result.Value{}, err
	}
	return terp.force(t)
}

func (terp *interpreter) evalQueryLetRef(l *model.QueryLetRef) (result.Value, error) {
	t, err := terp.refs.ResolveLocal(l.Name)
	if err != nil {
		return result.Value{}, err
	}
	return terp.force(t)
}

func (terp *interpreter) evalOperandRef(o *model.OperandRef) (result.Value, error) {
	t, err := terp.refs.ResolveLocal(o.Name)
	if err != nil {
		return result.Value{}, err
	}
	return terp.force(t)
}
