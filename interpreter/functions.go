package interpreter

import (
	"fmt"

	"github.com/example/cqlcore/model"
	"github.com/example/cqlcore/result"
	"github.com/example/cqlcore/types"
)

// evalFunctionRef evaluates every operand eagerly, resolves f against either the engine's
// built-in registry or a user defined CQL function (local or, when LibraryName is set, in an
// included library), and invokes it. A user defined function's body runs with its own alias
// scope binding each OperandDef name to its already evaluated argument, and with the declaring
// library entered so the body's own references resolve against its own library, not the
// caller's.
func (terp *interpreter) evalFunctionRef(e *model.FunctionRef) (result.Value, error) {
	args := make([]result.Value, len(e.Operands))
	operandTypes := make([]types.IType, len(e.Operands))
	for i, op := range e.Operands {
		v, err := terp.evalExpression(op)
		if err != nil {
			return result.Value{}, err
		}
		args[i] = v
		operandTypes[i] = op.GetResultType()
	}

	var fn *funcDef
	var err error
	if e.LibraryName == "" {
		fn, err = terp.refs.ResolveExactLocalFunc(e.Name, operandTypes, false, terp.modelinfo)
	} else {
		fn, err = terp.refs.ResolveExactGlobalFunc(e.LibraryName, e.Name, operandTypes, false, terp.modelinfo)
	}
	if err != nil {
		return result.Value{}, err
	}
	if fn == nil {
		return result.Value{}, fmt.Errorf("internal error - function %s resolved to a nil definition", e.Name)
	}

	if fn.builtin != nil {
		return fn.builtin(terp, args)
	}
	return terp.invokeUserFunc(fn, args)
}

func (terp *interpreter) invokeUserFunc(fn *funcDef, args []result.Value) (result.Value, error) {
	d := fn.userDef
	if d.External {
		return result.Value{}, fmt.Errorf("function %s is declared external with no engine implementation", d.Name)
	}

	var restore func()
	if fn.declLib != nil {
		restore = terp.refs.EnterLibrary(fn.declLib)
		defer restore()
	}

	terp.refs.EnterScope()
	defer terp.refs.ExitScope()
	for i, operand := range d.Operands {
		if i >= len(args) {
			break
		}
		if err := terp.refs.Alias(operand.Name, evaluatedThunk(args[i])); err != nil {
			return result.Value{}, err
		}
	}
	return terp.evalExpression(d.Expression)
}
