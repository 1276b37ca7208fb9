package interpreter

import "github.com/example/cqlcore/result"

// asKleeneBool converts a Boolean-typed Value to a *bool, nil meaning the CQL null ("unknown").
func asKleeneBool(v result.Value) (*bool, error) {
	if result.IsNull(v) {
		return nil, nil
	}
	b, err := result.ToBool(v)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// evalAnd implements Kleene conjunction: false dominates regardless of the other operand's
// nullity; otherwise null propagates.
func (terp *interpreter) evalAnd(l, r result.Value) (result.Value, error) {
	lb, err := asKleeneBool(l)
	if err != nil {
		return result.Value{}, err
	}
	rb, err := asKleeneBool(r)
	if err != nil {
		return result.Value{}, err
	}
	if (lb != nil && !*lb) || (rb != nil && !*rb) {
		return result.New(false)
	}
	if lb == nil || rb == nil {
		return result.New(nil)
	}
	return result.New(*lb && *rb)
}

// evalOr implements Kleene disjunction: true dominates regardless of the other operand's
// nullity; otherwise null propagates.
func (terp *interpreter) evalOr(l, r result.Value) (result.Value, error) {
	lb, err := asKleeneBool(l)
	if err != nil {
		return result.Value{}, err
	}
	rb, err := asKleeneBool(r)
	if err != nil {
		return result.Value{}, err
	}
	if (lb != nil && *lb) || (rb != nil && *rb) {
		return result.New(true)
	}
	if lb == nil || rb == nil {
		return result.New(nil)
	}
	return result.New(*lb || *rb)
}

// evalXOr implements exclusive or; null propagates whenever either operand is null, since there
// is no dominating value.
func (terp *interpreter) evalXOr(l, r result.Value) (result.Value, error) {
	lb, err := asKleeneBool(l)
	if err != nil {
		return result.Value{}, err
	}
	rb, err := asKleeneBool(r)
	if err != nil {
		return result.Value{}, err
	}
	if lb == nil || rb == nil {
		return result.New(nil)
	}
	return result.New(*lb != *rb)
}

// evalImplies implements Kleene implication: "not l or r" with l's falsity dominating.
func (terp *interpreter) evalImplies(l, r result.Value) (result.Value, error) {
	lb, err := asKleeneBool(l)
	if err != nil {
		return result.Value{}, err
	}
	if lb != nil && !*lb {
		return result.New(true)
	}
	rb, err := asKleeneBool(r)
	if err != nil {
		return result.Value{}, err
	}
	if rb != nil && *rb {
		return result.New(true)
	}
	if lb == nil || rb == nil {
		return result.New(nil)
	}
	return result.New(false)
}

// evalNot inverts a three-valued Boolean; null input yields null output.
func (terp *interpreter) evalNot(operand result.Value) (result.Value, error) {
	b, err := asKleeneBool(operand)
	if err != nil {
		return result.Value{}, err
	}
	if b == nil {
		return result.New(nil)
	}
	return result.New(!*b)
}

// evalIsFalse reports whether operand is the Boolean false, never null.
func (terp *interpreter) evalIsFalse(operand result.Value) (result.Value, error) {
	b, err := asKleeneBool(operand)
	if err != nil {
		return result.Value{}, err
	}
	return result.New(b != nil && !*b)
}

// evalIsTrue reports whether operand is the Boolean true, never null.
func (terp *interpreter) evalIsTrue(operand result.Value) (result.Value, error) {
	b, err := asKleeneBool(operand)
	if err != nil {
		return result.Value{}, err
	}
	return result.New(b != nil && *b)
}
