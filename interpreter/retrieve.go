package interpreter

import (
	"fmt"

	"github.com/example/cqlcore/model"
	"github.com/example/cqlcore/result"
	"github.com/example/cqlcore/retriever"
	"github.com/example/cqlcore/types"
)

// evalRetrieve issues a Retrieve against the configured DataSource, resolving r.Codes (a Code,
// Concept, list of either, or a ValuesetRef) into the system+code pairs (or, for a ValuesetRef,
// the ValueSet URL) the DataSource filters on.
func (terp *interpreter) evalRetrieve(r *model.Retrieve) (result.Value, error) {
	if terp.dataSource == nil {
		return result.Value{}, fmt.Errorf("Retrieve of %s requires a configured DataSource", r.DataType)
	}

	q := retriever.Query{
		ResourceType: r.DataType,
		Context:      terp.contextResource,
		CodePath:     r.CodeProperty,
	}
	if r.Codes != nil {
		codes, valuesetURL, err := terp.retrieveFilter(r.Codes)
		if err != nil {
			return result.Value{}, err
		}
		q.Codes = codes
		q.ValuesetURL = valuesetURL
	}

	resources, err := terp.dataSource.Retrieve(terp.ctx, q)
	if err != nil {
		return result.Value{}, err
	}
	nt := &types.Named{Name: r.DataType}
	vals := make([]result.Value, len(resources))
	for i, res := range resources {
		v, err := result.New(result.Named{Value: res, RuntimeType: nt})
		if err != nil {
			return result.Value{}, err
		}
		vals[i] = v
	}
	return result.New(result.List{Value: vals, StaticType: &types.List{ElementType: nt}})
}

// retrieveFilter evaluates a Retrieve's Codes expression and reduces it to the system+code pairs
// (or ValueSet URL) the DataSource interface accepts.
func (terp *interpreter) retrieveFilter(expr model.IExpression) ([]retriever.Code, string, error) {
	if ref, ok := expr.(*model.ValuesetRef); ok {
		v, err := terp.resolveAndForce(ref.LibraryName, ref.Name)
		if err != nil {
			return nil, "", err
		}
		vs, err := result.ToValueSet(v)
		if err != nil {
			return nil, "", err
		}
		return nil, vs.ID, nil
	}

	v, err := terp.evalExpression(expr)
	if err != nil {
		return nil, "", err
	}
	return codesFromValue(v)
}

func codesFromValue(v result.Value) ([]retriever.Code, string, error) {
	if result.IsNull(v) {
		return nil, "", nil
	}
	switch t := v.GolangValue().(type) {
	case result.Code:
		return []retriever.Code{{System: t.System, Code: t.Code}}, "", nil
	case result.Concept:
		out := make([]retriever.Code, len(t.Codes))
		for i, c := range t.Codes {
			out[i] = retriever.Code{System: c.System, Code: c.Code}
		}
		return out, "", nil
	case result.ValueSet:
		return nil, t.ID, nil
	case result.List:
		var out []retriever.Code
		for _, item := range t.Value {
			codes, _, err := codesFromValue(item)
			if err != nil {
				return nil, "", err
			}
			out = append(out, codes...)
		}
		return out, "", nil
	default:
		return nil, "", fmt.Errorf("Retrieve terminology filter must be a Code, Concept or ValueSet, got %T", t)
	}
}
