package interpreter

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/example/cqlcore/internal/datehelpers"
	"github.com/example/cqlcore/model"
	"github.com/example/cqlcore/result"
	"github.com/example/cqlcore/types"
)

// evalLiteral parses a Literal's source text according to its static ResultType. CQL literals
// carry no timezone of their own; Date/DateTime/Time literals resolve against the evaluation
// timestamp's location, per the CQL specification.
func (terp *interpreter) evalLiteral(l *model.Literal) (result.Value, error) {
	switch l.GetResultType() {
	case types.Boolean:
		return result.New(l.Value == "true")
	case types.Integer:
		var n int64
		if _, err := fmt.Sscanf(l.Value, "%d", &n); err != nil {
			return result.Value{}, fmt.Errorf("invalid Integer literal %q: %w", l.Value, err)
		}
		return result.New(n)
	case types.Decimal:
		d, err := decimal.NewFromString(l.Value)
		if err != nil {
			return result.Value{}, fmt.Errorf("invalid Decimal literal %q: %w", l.Value, err)
		}
		return result.New(d)
	case types.String:
		return result.New(l.Value)
	case types.Date:
		t, precision, err := datehelpers.ParseDate(l.Value, terp.now.Location())
		if err != nil {
			return result.Value{}, err
		}
		return result.New(result.Date{Date: t, Precision: precision})
	case types.DateTime:
		t, precision, err := datehelpers.ParseDateTime(l.Value, terp.now.Location())
		if err != nil {
			return result.Value{}, err
		}
		return result.New(result.DateTime{Date: t, Precision: precision})
	case types.Time:
		t, precision, err := datehelpers.ParseTime(l.Value, terp.now.Location())
		if err != nil {
			return result.Value{}, err
		}
		return result.New(result.Time{Date: t, Precision: precision})
	case types.Any:
		return result.New(nil)
	default:
		return result.Value{}, fmt.Errorf("internal error - unsupported literal type %v", l.GetResultType())
	}
}

func (terp *interpreter) evalQuantityLiteral(q *model.Quantity) (result.Value, error) {
	d, err := decimal.NewFromString(q.Value)
	if err != nil {
		return result.Value{}, fmt.Errorf("invalid Quantity literal %q: %w", q.Value, err)
	}
	return result.New(result.Quantity{Value: d, Unit: q.Unit})
}

func (terp *interpreter) evalRatioLiteral(r *model.Ratio) (result.Value, error) {
	num, err := terp.evalQuantityLiteral(&r.Numerator)
	if err != nil {
		return result.Value{}, err
	}
	den, err := terp.evalQuantityLiteral(&r.Denominator)
	if err != nil {
		return result.Value{}, err
	}
	numQ, _ := result.ToQuantity(num)
	denQ, _ := result.ToQuantity(den)
	return result.New(result.Ratio{Numerator: numQ, Denominator: denQ})
}

func (terp *interpreter) evalCodeExpr(c *model.Code) (result.Value, error) {
	system := ""
	if c.System != nil {
		sv, err := terp.evalExpression(c.System)
		if err != nil {
			return result.Value{}, err
		}
		cs, err := result.ToCodeSystem(sv)
		if err != nil {
			return result.Value{}, err
		}
		system = cs.ID
	}
	return result.New(result.Code{Code: c.Code, Display: c.Display, System: system})
}

func (terp *interpreter) evalConceptExpr(c *model.Concept) (result.Value, error) {
	codes := make([]result.Code, 0, len(c.Codes))
	for _, codeExpr := range c.Codes {
		v, err := terp.evalExpression(codeExpr)
		if err != nil {
			return result.Value{}, err
		}
		code, err := result.ToCode(v)
		if err != nil {
			return result.Value{}, err
		}
		codes = append(codes, code)
	}
	return result.New(result.Concept{Codes: codes, Display: c.Display})
}

// evalConceptDef evaluates a ConceptDef's CodeRefs, resolving each through the definition
// resolver rather than re-parsing Code literals inline.
func (terp *interpreter) evalConceptDef(c *model.ConceptDef) (result.Value, error) {
	codes := make([]result.Code, 0, len(c.Codes))
	for _, codeRef := range c.Codes {
		v, err := terp.resolveAndForce(codeRef.LibraryName, codeRef.Name)
		if err != nil {
			return result.Value{}, err
		}
		code, err := result.ToCode(v)
		if err != nil {
			return result.Value{}, err
		}
		codes = append(codes, code)
	}
	return result.New(result.Concept{Codes: codes, Display: c.Display})
}

func (terp *interpreter) evalTupleExpr(t *model.Tuple) (result.Value, error) {
	fields := make(map[string]result.Value, len(t.Elements))
	for _, el := range t.Elements {
		v, err := terp.evalExpression(el.Value)
		if err != nil {
			return result.Value{}, err
		}
		fields[el.Name] = v
	}
	rt := t.GetResultType()
	return result.New(result.Tuple{Value: fields, RuntimeType: rt})
}

func (terp *interpreter) evalInstanceExpr(i *model.Instance) (result.Value, error) {
	fields := make(map[string]result.Value, len(i.Elements))
	for _, el := range i.Elements {
		v, err := terp.evalExpression(el.Value)
		if err != nil {
			return result.Value{}, err
		}
		fields[el.Name] = v
	}
	return result.New(result.Tuple{Value: fields, RuntimeType: i.ClassType})
}
