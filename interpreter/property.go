package interpreter

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/example/cqlcore/internal/datehelpers"
	"github.com/example/cqlcore/internal/resourcewrapper"
	"github.com/example/cqlcore/model"
	"github.com/example/cqlcore/result"
	"github.com/example/cqlcore/types"
)

func decimalFromFloat(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

// evalProperty navigates Source.Path, following whichever of Tuple field access, Interval bound
// access, or data model path navigation applies to Source's runtime shape. A List source maps the
// property across every element, per FHIRPath's implicit collection semantics.
func (terp *interpreter) evalProperty(p *model.Property) (result.Value, error) {
	src, err := terp.evalExpression(p.Source)
	if err != nil {
		return result.Value{}, err
	}
	return terp.navigateProperty(src, p.Path, p.GetResultType())
}

func (terp *interpreter) navigateProperty(src result.Value, path string, resultType types.IType) (result.Value, error) {
	if result.IsNull(src) {
		return result.New(nil)
	}
	switch v := src.GolangValue().(type) {
	case result.List:
		mapped := make([]result.Value, len(v.Value))
		for i, elem := range v.Value {
			m, err := terp.navigateProperty(elem, path, resultType)
			if err != nil {
				return result.Value{}, err
			}
			mapped[i] = m
		}
		return result.New(result.List{Value: mapped})
	case result.Interval:
		switch path {
		case "low":
			return v.Low, nil
		case "high":
			return v.High, nil
		case "lowClosed":
			return result.New(v.LowInclusive)
		case "highClosed":
			return result.New(v.HighInclusive)
		default:
			return result.Value{}, fmt.Errorf("Interval has no property %q", path)
		}
	case result.Tuple:
		if val, ok := v.Value[path]; ok {
			return val, nil
		}
		return result.New(nil)
	case result.Named:
		return terp.navigateResource(v, path, resultType)
	default:
		return result.Value{}, fmt.Errorf("cannot navigate path %q on a value of type %T", path, v)
	}
}

func (terp *interpreter) navigateResource(n result.Named, path string, resultType types.IType) (result.Value, error) {
	raw, err := n.Value.Navigate(resourcewrapper.Path(path))
	if err != nil {
		return result.Value{}, err
	}
	return terp.decodeResourceValue(raw, resultType)
}

// decodeResourceValue converts a decoded-JSON element (as returned by resourcewrapper.Navigate)
// into a result.Value, guided by declaredType when known: a Named declared type wraps the
// element back into a Resource rather than a Tuple, and a List declared type maps every entry. A
// Choice declared type gets no special handling: the element resourcewrapper.Navigate's choice
// suffix lookup found is decoded by its JSON shape alone.
func (terp *interpreter) decodeResourceValue(raw any, declaredType types.IType) (result.Value, error) {
	if lt, ok := declaredType.(*types.List); ok {
		items, _ := raw.([]any)
		out := make([]result.Value, len(items))
		for i, item := range items {
			v, err := terp.decodeResourceValue(item, lt.ElementType)
			if err != nil {
				return result.Value{}, err
			}
			out[i] = v
		}
		return result.New(result.List{Value: out, StaticType: lt})
	}

	switch v := raw.(type) {
	case nil:
		return result.New(nil)
	case bool:
		return result.New(v)
	case string:
		return terp.decodeStringElement(v, declaredType)
	case float64:
		return terp.decodeNumberElement(v, declaredType)
	case []any:
		out := make([]result.Value, len(v))
		for i, item := range v {
			dv, err := terp.decodeResourceValue(item, nil)
			if err != nil {
				return result.Value{}, err
			}
			out[i] = dv
		}
		return result.New(result.List{Value: out})
	case map[string]any:
		if nt, ok := declaredType.(*types.Named); ok {
			return result.New(result.Named{Value: resourcewrapper.New(nt.Name, v), RuntimeType: nt})
		}
		return result.New(result.Tuple{Value: mapToTupleFields(v), RuntimeType: types.Any})
	default:
		return result.Value{}, fmt.Errorf("cannot decode value of Go type %T from resource data", v)
	}
}

func mapToTupleFields(m map[string]any) map[string]result.Value {
	fields := make(map[string]result.Value, len(m))
	for k, raw := range m {
		switch v := raw.(type) {
		case string:
			fields[k], _ = result.New(v)
		case float64:
			fields[k], _ = result.New(v)
		case bool:
			fields[k], _ = result.New(v)
		}
	}
	return fields
}

// decodeStringElement interprets a FHIR date/dateTime string per declaredType, falling back to a
// plain String when declaredType is anything other than Date or DateTime (Time included).
func (terp *interpreter) decodeStringElement(s string, declaredType types.IType) (result.Value, error) {
	switch declaredType {
	case types.Date:
		t, precision, err := datehelpers.ParseFHIRDateString(s, terp.now.Location())
		if err != nil {
			return result.New(nil)
		}
		return result.New(result.Date{Date: t, Precision: precision})
	case types.DateTime:
		t, precision, err := datehelpers.ParseFHIRDateString(s, terp.now.Location())
		if err != nil {
			return result.New(nil)
		}
		return result.New(result.DateTime{Date: t, Precision: precision})
	default:
		return result.New(s)
	}
}

func (terp *interpreter) decodeNumberElement(f float64, declaredType types.IType) (result.Value, error) {
	if declaredType == types.Integer {
		return result.New(int64(f))
	}
	return result.New(decimalFromFloat(f))
}
