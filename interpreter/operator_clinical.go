package interpreter

import (
	"fmt"

	"github.com/example/cqlcore/result"
)

// evalInCodeSystem reports whether Left, a Code, belongs to the CodeSystem Right, delegating
// membership to the configured terminology.Provider. A nil Provider means the library was
// evaluated without terminology support; any use of InCodeSystem then fails rather than
// silently returning false.
func (terp *interpreter) evalInCodeSystem(left, right result.Value) (result.Value, error) {
	if result.IsNull(left) || result.IsNull(right) {
		return result.New(nil)
	}
	if terp.terminology == nil {
		return result.Value{}, fmt.Errorf("InCodeSystem requires a terminology provider, none was configured")
	}
	code, err := result.ToCode(left)
	if err != nil {
		return result.Value{}, err
	}
	cs, err := result.ToCodeSystem(right)
	if err != nil {
		return result.Value{}, err
	}
	found, _, err := terp.terminology.Lookup(cs.ID, code.Code)
	if err != nil {
		return result.Value{}, err
	}
	return result.New(found != nil && (code.System == "" || code.System == cs.ID))
}

// evalInValueSet reports whether Left, a Code or Concept, belongs to the ValueSet Right.
func (terp *interpreter) evalInValueSet(left, right result.Value) (result.Value, error) {
	if result.IsNull(left) || result.IsNull(right) {
		return result.New(nil)
	}
	if terp.terminology == nil {
		return result.Value{}, fmt.Errorf("InValueSet requires a terminology provider, none was configured")
	}
	vs, err := result.ToValueSet(right)
	if err != nil {
		return result.Value{}, err
	}

	var codes []result.Code
	switch v := left.GolangValue().(type) {
	case result.Code:
		codes = []result.Code{v}
	case result.Concept:
		codes = v.Codes
	default:
		return result.Value{}, fmt.Errorf("InValueSet requires a Code or Concept operand, got %T", v)
	}
	for _, c := range codes {
		ok, err := terp.terminology.Contains(vs.ID, vs.Version, c.System, c.Code)
		if err != nil {
			return result.Value{}, err
		}
		if ok {
			return result.New(true)
		}
	}
	return result.New(false)
}
