package interpreter

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/example/cqlcore/internal/datehelpers"
	"github.com/example/cqlcore/model"
	"github.com/example/cqlcore/result"
)

// evalAs implements the `as` type cast: null passes through; a non-null operand whose runtime
// type is not ResultType or a subtype of it fails evaluation (CQL "as" is strict, unlike the
// permissive "as" used only in pattern contexts).
func (terp *interpreter) evalAs(a *model.As, operand result.Value) (result.Value, error) {
	if result.IsNull(operand) {
		return operand, nil
	}
	if !terp.modelinfo.IsSubtype(operand.RuntimeType(), a.GetResultType()) {
		return result.Value{}, fmt.Errorf("cannot cast a value of type %v as %v", operand.RuntimeType(), a.GetResultType())
	}
	return operand, nil
}

// evalIs tests whether operand's runtime type is IsType or a subtype of it.
func (terp *interpreter) evalIs(i *model.Is, operand result.Value) (result.Value, error) {
	if result.IsNull(operand) {
		return result.New(false)
	}
	return result.New(terp.modelinfo.IsSubtype(operand.RuntimeType(), i.IsType))
}

func (terp *interpreter) evalToBoolean(operand result.Value) (result.Value, error) {
	if result.IsNull(operand) {
		return result.New(nil)
	}
	switch v := operand.GolangValue().(type) {
	case bool:
		return operand, nil
	case string:
		switch v {
		case "true", "t", "yes", "y", "1":
			return result.New(true)
		case "false", "f", "no", "n", "0":
			return result.New(false)
		default:
			return result.New(nil)
		}
	default:
		return result.New(nil)
	}
}

func (terp *interpreter) evalToDecimal(operand result.Value) (result.Value, error) {
	if result.IsNull(operand) {
		return result.New(nil)
	}
	switch v := operand.GolangValue().(type) {
	case decimal.Decimal:
		return operand, nil
	case int64:
		return result.New(decimal.NewFromInt(v))
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return result.New(nil)
		}
		return result.New(d)
	case bool:
		if v {
			return result.New(decimal.NewFromInt(1))
		}
		return result.New(decimal.NewFromInt(0))
	default:
		return result.New(nil)
	}
}

func (terp *interpreter) evalToInteger(operand result.Value) (result.Value, error) {
	if result.IsNull(operand) {
		return result.New(nil)
	}
	switch v := operand.GolangValue().(type) {
	case int64:
		return operand, nil
	case decimal.Decimal:
		return result.New(v.Truncate(0).IntPart())
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return result.New(nil)
		}
		return result.New(d.Truncate(0).IntPart())
	case bool:
		if v {
			return result.New(int64(1))
		}
		return result.New(int64(0))
	default:
		return result.New(nil)
	}
}

func (terp *interpreter) evalToString(operand result.Value) (result.Value, error) {
	if result.IsNull(operand) {
		return result.New(nil)
	}
	switch v := operand.GolangValue().(type) {
	case string:
		return operand, nil
	case int64:
		return result.New(fmt.Sprintf("%d", v))
	case decimal.Decimal:
		return result.New(v.String())
	case bool:
		if v {
			return result.New("true")
		}
		return result.New("false")
	case result.Quantity:
		return result.New(fmt.Sprintf("%s '%s'", v.Value.String(), v.Unit))
	case result.Date, result.DateTime, result.Time:
		t, precision, err := asComparableTime(operand)
		if err != nil {
			return result.Value{}, err
		}
		switch operand.GolangValue().(type) {
		case result.Date:
			s, err := datehelpers.DateString(t, precision)
			return result.New(errOr(s, err))
		case result.DateTime:
			s, err := datehelpers.DateTimeString(t, precision)
			return result.New(errOr(s, err))
		default:
			s, err := datehelpers.TimeString(t, precision)
			return result.New(errOr(s, err))
		}
	default:
		return result.New(fmt.Sprintf("%v", v))
	}
}

func errOr(s string, err error) string {
	if err != nil {
		return ""
	}
	return s
}

func (terp *interpreter) evalToDate(operand result.Value) (result.Value, error) {
	if result.IsNull(operand) {
		return result.New(nil)
	}
	switch v := operand.GolangValue().(type) {
	case result.Date:
		return operand, nil
	case result.DateTime:
		return result.New(result.Date{Date: v.Date, Precision: minPrecision(v.Precision, model.DAY)})
	case string:
		t, precision, err := datehelpers.ParseDate(v, terp.now.Location())
		if err != nil {
			return result.New(nil)
		}
		return result.New(result.Date{Date: t, Precision: precision})
	default:
		return result.New(nil)
	}
}

func (terp *interpreter) evalToDateTime(operand result.Value) (result.Value, error) {
	if result.IsNull(operand) {
		return result.New(nil)
	}
	switch v := operand.GolangValue().(type) {
	case result.DateTime:
		return operand, nil
	case result.Date:
		return result.New(result.DateTime{Date: v.Date, Precision: v.Precision})
	case string:
		t, precision, err := datehelpers.ParseDateTime(v, terp.now.Location())
		if err != nil {
			return result.New(nil)
		}
		return result.New(result.DateTime{Date: t, Precision: precision})
	default:
		return result.New(nil)
	}
}

func (terp *interpreter) evalToTime(operand result.Value) (result.Value, error) {
	if result.IsNull(operand) {
		return result.New(nil)
	}
	switch v := operand.GolangValue().(type) {
	case result.Time:
		return operand, nil
	case string:
		t, precision, err := datehelpers.ParseTime(v, terp.now.Location())
		if err != nil {
			return result.New(nil)
		}
		return result.New(result.Time{Date: t, Precision: precision})
	default:
		return result.New(nil)
	}
}

func minPrecision(a, b model.DateTimePrecision) model.DateTimePrecision {
	order := map[model.DateTimePrecision]int{
		model.YEAR: 0, model.MONTH: 1, model.DAY: 2, model.HOUR: 3, model.MINUTE: 4, model.SECOND: 5, model.MILLISECOND: 6,
	}
	if order[a] < order[b] {
		return a
	}
	return b
}

func (terp *interpreter) evalToQuantity(operand result.Value) (result.Value, error) {
	if result.IsNull(operand) {
		return result.New(nil)
	}
	switch v := operand.GolangValue().(type) {
	case result.Quantity:
		return operand, nil
	case int64:
		return result.New(result.Quantity{Value: decimal.NewFromInt(v), Unit: "1"})
	case decimal.Decimal:
		return result.New(result.Quantity{Value: v, Unit: "1"})
	case string:
		return result.New(nil)
	default:
		return result.New(nil)
	}
}

func (terp *interpreter) evalToConcept(operand result.Value) (result.Value, error) {
	if result.IsNull(operand) {
		return result.New(nil)
	}
	switch v := operand.GolangValue().(type) {
	case result.Concept:
		return operand, nil
	case result.Code:
		return result.New(result.Concept{Codes: []result.Code{v}})
	default:
		return result.New(nil)
	}
}
