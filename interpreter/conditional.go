package interpreter

import (
	"fmt"
	"math"
	"time"

	"github.com/golang/glog"
	"github.com/shopspring/decimal"

	"github.com/example/cqlcore/model"
	"github.com/example/cqlcore/result"
)

// evalCase evaluates a searched or comparand CASE, short-circuiting at the first matching
// CaseItem and never evaluating later branches.
func (terp *interpreter) evalCase(c *model.Case) (result.Value, error) {
	var comparand result.Value
	var err error
	if c.Comparand != nil {
		comparand, err = terp.evalExpression(c.Comparand)
		if err != nil {
			return result.Value{}, err
		}
	}
	for _, item := range c.CaseItem {
		when, err := terp.evalExpression(item.When)
		if err != nil {
			return result.Value{}, err
		}
		var matched bool
		if c.Comparand != nil {
			eq, err := terp.evalEqual(comparand, when)
			if err != nil {
				return result.Value{}, err
			}
			b, err := asKleeneBool(eq)
			if err != nil {
				return result.Value{}, err
			}
			matched = b != nil && *b
		} else {
			b, err := asKleeneBool(when)
			if err != nil {
				return result.Value{}, err
			}
			matched = b != nil && *b
		}
		if matched {
			return terp.evalExpression(item.Then)
		}
	}
	return terp.evalExpression(c.Else)
}

// evalIfThenElse evaluates Condition, treating a null condition as false.
func (terp *interpreter) evalIfThenElse(i *model.IfThenElse) (result.Value, error) {
	cond, err := terp.evalExpression(i.Condition)
	if err != nil {
		return result.Value{}, err
	}
	b, err := asKleeneBool(cond)
	if err != nil {
		return result.Value{}, err
	}
	if b != nil && *b {
		return terp.evalExpression(i.Then)
	}
	return terp.evalExpression(i.Else)
}

func (terp *interpreter) evalMaxValue(m *model.MaxValue) (result.Value, error) {
	switch m.ValueType.String() {
	case "System.Integer":
		return result.New(int64(math.MaxInt32))
	case "System.Decimal":
		return result.New(decimal.RequireFromString("99999999999999999999999999.99999999"))
	case "System.Date":
		return result.New(result.Date{Date: time.Date(9999, 12, 31, 0, 0, 0, 0, terp.now.Location()), Precision: model.DAY})
	case "System.DateTime":
		return result.New(result.DateTime{Date: time.Date(9999, 12, 31, 23, 59, 59, 999000000, terp.now.Location()), Precision: model.MILLISECOND})
	case "System.Time":
		return result.New(result.Time{Date: time.Date(0, 1, 1, 23, 59, 59, 999000000, time.UTC), Precision: model.MILLISECOND})
	default:
		return result.Value{}, fmt.Errorf("MaxValue is not supported for type %v", m.ValueType)
	}
}

func (terp *interpreter) evalMinValue(m *model.MinValue) (result.Value, error) {
	switch m.ValueType.String() {
	case "System.Integer":
		return result.New(int64(math.MinInt32))
	case "System.Decimal":
		return result.New(decimal.RequireFromString("-99999999999999999999999999.99999999"))
	case "System.Date":
		return result.New(result.Date{Date: time.Date(1, 1, 1, 0, 0, 0, 0, terp.now.Location()), Precision: model.DAY})
	case "System.DateTime":
		return result.New(result.DateTime{Date: time.Date(1, 1, 1, 0, 0, 0, 0, terp.now.Location()), Precision: model.MILLISECOND})
	case "System.Time":
		return result.New(result.Time{Date: time.Date(0, 1, 1, 0, 0, 0, 0, time.UTC), Precision: model.MILLISECOND})
	default:
		return result.Value{}, fmt.Errorf("MinValue is not supported for type %v", m.ValueType)
	}
}

// evalMessage passes Source through unchanged, logging (or, at MessageSeverityError, aborting
// evaluation) once Condition holds.
func (terp *interpreter) evalMessage(m *model.Message) (result.Value, error) {
	source, err := terp.evalExpression(m.Source)
	if err != nil {
		return result.Value{}, err
	}
	if m.Condition != nil {
		cond, err := terp.evalExpression(m.Condition)
		if err != nil {
			return result.Value{}, err
		}
		b, err := asKleeneBool(cond)
		if err != nil {
			return result.Value{}, err
		}
		if b == nil || !*b {
			return source, nil
		}
	}
	text, severity, err := terp.messageText(m)
	if err != nil {
		return result.Value{}, err
	}
	switch model.MessageSeverity(severity) {
	case model.MessageSeverityError:
		return result.Value{}, fmt.Errorf("CQL Message raised: %s", text)
	case model.MessageSeverityWarning:
		glog.Warning(text)
	case model.MessageSeverityTrace:
		glog.V(1).Info(text)
	default:
		glog.Info(text)
	}
	return source, nil
}

func (terp *interpreter) messageText(m *model.Message) (text, severity string, err error) {
	severity = string(model.MessageSeverityMessage)
	if m.Severity != nil {
		sv, err := terp.evalExpression(m.Severity)
		if err != nil {
			return "", "", err
		}
		if s, serr := result.ToString(sv); serr == nil {
			severity = s
		}
	}
	if m.Message == nil {
		return "", severity, nil
	}
	mv, err := terp.evalExpression(m.Message)
	if err != nil {
		return "", "", err
	}
	text, _ = result.ToString(mv)
	return text, severity, nil
}
