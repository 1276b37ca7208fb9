package main

import (
	"encoding/json"
	"fmt"

	"github.com/example/cqlcore/model"
	"github.com/example/cqlcore/types"
)

// compileELM is the CompileFunc this binary hands to library.Manager. google/cql's own model
// package describes itself as "an ELM-like intermediate representation" (model/model.go's package
// doc); this decoder takes that literally and reads source text as a small, explicitly scoped
// JSON document shaped like ELM rather than ANTLR-parsing real CQL concrete syntax, which is out
// of scope (the grammar/parser itself is not carried into this module). It covers enough node
// kinds to exercise every evaluator component end to end, not the whole CQL expression grammar;
// unsupported node kinds fail loudly rather than silently misbehaving.
func compileELM(source string) (*model.Library, error) {
	var doc elmLibrary
	if err := json.Unmarshal([]byte(source), &doc); err != nil {
		return nil, fmt.Errorf("elm: %w", err)
	}
	return doc.toModel()
}

type elmLibrary struct {
	Identifier  *elmLibraryID  `json:"identifier"`
	Includes    []elmInclude   `json:"includes"`
	Parameters  []elmParameter `json:"parameters"`
	ValueSets   []elmValueSet  `json:"valuesets"`
	CodeSystems []elmCodeSys   `json:"codesystems"`
	Defs        []elmDef       `json:"expressionDefs"`
}

type elmLibraryID struct {
	Qualified string `json:"qualified"`
	Version   string `json:"version"`
}

type elmInclude struct {
	Local     string `json:"localIdentifier"`
	Qualified string `json:"qualified"`
	Version   string `json:"version"`
}

type elmParameter struct {
	Name    string   `json:"name"`
	Public  bool     `json:"public"`
	Default *elmNode `json:"default"`
}

type elmValueSet struct {
	Name    string `json:"name"`
	ID      string `json:"id"`
	Version string `json:"version"`
	Public  bool   `json:"public"`
}

type elmCodeSys struct {
	Name    string `json:"name"`
	ID      string `json:"id"`
	Version string `json:"version"`
	Public  bool   `json:"public"`
}

type elmDef struct {
	Name       string  `json:"name"`
	Public     bool    `json:"public"`
	Expression elmNode `json:"expression"`
}

// elmNode is the recursive expression node shape. Kind selects which fields apply; an unsupported
// Kind is the single place a malformed or out-of-scope document is rejected.
type elmNode struct {
	Kind string `json:"kind"`

	Type string `json:"type"` // Literal: the System type name, e.g. "Integer".
	Value string `json:"value"`

	Operand  *elmNode  `json:"operand"`  // unary
	Operands []elmNode `json:"operands"` // binary/nary
	Elements []elmNode `json:"elements"` // List

	Name    string `json:"name"`    // Ref kinds
	Library string `json:"library"` // Ref kinds, qualifying library alias

	Source *elmNode `json:"source"` // Property
	Path   string   `json:"path"`   // Property

	DataType     string   `json:"dataType"`     // Retrieve
	CodeProperty string   `json:"codeProperty"` // Retrieve
	Codes        *elmNode `json:"codes"`        // Retrieve

	Condition *elmNode `json:"condition"` // If
	Then      *elmNode `json:"then"`      // If
	Else      *elmNode `json:"else"`      // If

	Query *elmQuery `json:"query"` // Query
}

type elmQuery struct {
	Source []elmAliasedSource `json:"source"`
	Where  *elmNode           `json:"where"`
	Return *elmNode           `json:"return"`
}

type elmAliasedSource struct {
	Alias  string  `json:"alias"`
	Source elmNode `json:"source"`
}

func (l *elmLibrary) toModel() (*model.Library, error) {
	lib := &model.Library{}
	if l.Identifier != nil {
		lib.Identifier = &model.LibraryIdentifier{
			Element:   &model.Element{},
			Qualified: l.Identifier.Qualified,
			Local:     l.Identifier.Qualified,
			Version:   l.Identifier.Version,
		}
	}
	for _, inc := range l.Includes {
		lib.Includes = append(lib.Includes, &model.Include{
			Element: &model.Element{},
			Identifier: &model.LibraryIdentifier{
				Element:   &model.Element{},
				Local:     inc.Local,
				Qualified: inc.Qualified,
				Version:   inc.Version,
			},
		})
	}
	for _, p := range l.Parameters {
		param := model.ParameterDef{Element: &model.Element{}, Name: p.Name, AccessLevel: accessLevel(p.Public)}
		if p.Default != nil {
			expr, err := p.Default.toModel()
			if err != nil {
				return nil, fmt.Errorf("parameter %q default: %w", p.Name, err)
			}
			param.Default = expr
		}
		lib.Parameters = append(lib.Parameters, &param)
	}
	for _, vs := range l.ValueSets {
		lib.Valuesets = append(lib.Valuesets, &model.ValuesetDef{
			Element: &model.Element{}, Name: vs.Name, ID: vs.ID, Version: vs.Version, AccessLevel: accessLevel(vs.Public),
		})
	}
	for _, cs := range l.CodeSystems {
		lib.CodeSystems = append(lib.CodeSystems, &model.CodeSystemDef{
			Element: &model.Element{}, Name: cs.Name, ID: cs.ID, Version: cs.Version, AccessLevel: accessLevel(cs.Public),
		})
	}

	stmts := &model.Statements{}
	for _, d := range l.Defs {
		expr, err := d.Expression.toModel()
		if err != nil {
			return nil, fmt.Errorf("expression def %q: %w", d.Name, err)
		}
		stmts.Defs = append(stmts.Defs, &model.ExpressionDef{
			Element: &model.Element{}, Name: d.Name, AccessLevel: accessLevel(d.Public), Expression: expr,
		})
	}
	lib.Statements = stmts
	return lib, nil
}

func accessLevel(public bool) model.AccessLevel {
	if public {
		return model.Public
	}
	return model.Private
}

func (n *elmNode) toModel() (model.IExpression, error) {
	switch n.Kind {
	case "Literal":
		t, err := systemType(n.Type)
		if err != nil {
			return nil, err
		}
		return &model.Literal{Expression: expr(t), Value: n.Value}, nil
	case "Null":
		return &model.Literal{Expression: expr(types.Any), Value: ""}, nil
	case "List":
		elems, err := n.children(n.Elements)
		if err != nil {
			return nil, err
		}
		return &model.List{Expression: expr(nil), List: elems}, nil
	case "ExpressionRef":
		return &model.ExpressionRef{Expression: expr(nil), Name: n.Name, LibraryName: n.Library}, nil
	case "ParameterRef":
		return &model.ParameterRef{Expression: expr(nil), Name: n.Name, LibraryName: n.Library}, nil
	case "ValuesetRef":
		return &model.ValuesetRef{Expression: expr(nil), Name: n.Name, LibraryName: n.Library}, nil
	case "Property":
		src, err := n.Source.toModel()
		if err != nil {
			return nil, err
		}
		return &model.Property{Expression: expr(nil), Source: src, Path: n.Path}, nil
	case "Retrieve":
		r := &model.Retrieve{Expression: expr(nil), DataType: n.DataType, CodeProperty: n.CodeProperty}
		if n.Codes != nil {
			codes, err := n.Codes.toModel()
			if err != nil {
				return nil, err
			}
			r.Codes = codes
		}
		return r, nil
	case "If":
		cond, err := n.Condition.toModel()
		if err != nil {
			return nil, err
		}
		then, err := n.Then.toModel()
		if err != nil {
			return nil, err
		}
		els, err := n.Else.toModel()
		if err != nil {
			return nil, err
		}
		return &model.IfThenElse{Expression: expr(nil), Condition: cond, Then: then, Else: els}, nil
	case "Not", "Exists", "IsNull", "Start", "End":
		operand, err := n.Operand.toModel()
		if err != nil {
			return nil, err
		}
		u := &model.UnaryExpression{Expression: expr(nil), Operand: operand}
		return wrapUnary(n.Kind, u)
	case "Query":
		return n.Query.toModel()
	default:
		binary, ok := binaryKinds[n.Kind]
		if !ok {
			return nil, fmt.Errorf("unsupported expression kind %q", n.Kind)
		}
		operands, err := n.children(n.Operands)
		if err != nil {
			return nil, err
		}
		if len(operands) != 2 {
			return nil, fmt.Errorf("%s requires exactly 2 operands, got %d", n.Kind, len(operands))
		}
		return binary(&model.BinaryExpression{Expression: expr(nil), Operands: operands})
	}
}

func (n *elmNode) children(nodes []elmNode) ([]model.IExpression, error) {
	out := make([]model.IExpression, len(nodes))
	for i := range nodes {
		v, err := nodes[i].toModel()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

var binaryKinds = map[string]func(*model.BinaryExpression) (model.IExpression, error){
	"Equal":           func(b *model.BinaryExpression) (model.IExpression, error) { return &model.Equal{BinaryExpression: b}, nil },
	"Equivalent":      func(b *model.BinaryExpression) (model.IExpression, error) { return &model.Equivalent{BinaryExpression: b}, nil },
	"Less":            func(b *model.BinaryExpression) (model.IExpression, error) { return &model.Less{BinaryExpression: b}, nil },
	"Greater":         func(b *model.BinaryExpression) (model.IExpression, error) { return &model.Greater{BinaryExpression: b}, nil },
	"LessOrEqual":     func(b *model.BinaryExpression) (model.IExpression, error) { return &model.LessOrEqual{BinaryExpression: b}, nil },
	"GreaterOrEqual":  func(b *model.BinaryExpression) (model.IExpression, error) { return &model.GreaterOrEqual{BinaryExpression: b}, nil },
	"And":             func(b *model.BinaryExpression) (model.IExpression, error) { return &model.And{BinaryExpression: b}, nil },
	"Or":              func(b *model.BinaryExpression) (model.IExpression, error) { return &model.Or{BinaryExpression: b}, nil },
	"XOr":             func(b *model.BinaryExpression) (model.IExpression, error) { return &model.XOr{BinaryExpression: b}, nil },
}

func wrapUnary(kind string, u *model.UnaryExpression) (model.IExpression, error) {
	switch kind {
	case "Not":
		return &model.Not{UnaryExpression: u}, nil
	case "Exists":
		return &model.Exists{UnaryExpression: u}, nil
	case "IsNull":
		return &model.IsNull{UnaryExpression: u}, nil
	case "Start":
		return &model.Start{UnaryExpression: u}, nil
	case "End":
		return &model.End{UnaryExpression: u}, nil
	default:
		return nil, fmt.Errorf("unsupported unary expression kind %q", kind)
	}
}

func (q *elmQuery) toModel() (model.IExpression, error) {
	query := &model.Query{Expression: expr(nil)}
	for _, src := range q.Source {
		s, err := src.Source.toModel()
		if err != nil {
			return nil, err
		}
		query.Source = append(query.Source, &model.AliasedSource{Expression: expr(nil), Alias: src.Alias, Source: s})
	}
	if q.Where != nil {
		w, err := q.Where.toModel()
		if err != nil {
			return nil, err
		}
		query.Where = w
	}
	if q.Return != nil {
		r, err := q.Return.toModel()
		if err != nil {
			return nil, err
		}
		query.Return = &model.ReturnClause{Element: &model.Element{}, Expression: r}
	}
	return query, nil
}

func expr(t types.IType) *model.Expression {
	return &model.Expression{Element: &model.Element{ResultType: t}}
}

func systemType(name string) (types.IType, error) {
	switch name {
	case "Boolean":
		return types.Boolean, nil
	case "Integer":
		return types.Integer, nil
	case "Decimal":
		return types.Decimal, nil
	case "String":
		return types.String, nil
	case "Date":
		return types.Date, nil
	case "DateTime":
		return types.DateTime, nil
	case "Time":
		return types.Time, nil
	case "Any":
		return types.Any, nil
	default:
		return nil, fmt.Errorf("unsupported literal type %q", name)
	}
}
