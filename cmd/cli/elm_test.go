package main

import (
	"context"
	"testing"

	"github.com/example/cqlcore/interpreter"
	"github.com/example/cqlcore/library"
	"github.com/example/cqlcore/model"
	"github.com/example/cqlcore/result"
)

func TestCompileELMDecodesLiteralExpression(t *testing.T) {
	source := `{
		"identifier": {"qualified": "Simple", "version": "1.0.0"},
		"expressionDefs": [
			{"name": "Answer", "public": true, "expression": {"kind": "Literal", "type": "Integer", "value": "42"}}
		]
	}`
	lib, err := compileELM(source)
	if err != nil {
		t.Fatalf("compileELM: %v", err)
	}
	if lib.Identifier.Qualified != "Simple" || lib.Identifier.Version != "1.0.0" {
		t.Fatalf("unexpected identifier: %+v", lib.Identifier)
	}
	if len(lib.Statements.Defs) != 1 || lib.Statements.Defs[0].GetName() != "Answer" {
		t.Fatalf("expected a single Answer def, got %+v", lib.Statements.Defs)
	}
}

func TestCompileELMRejectsUnsupportedKind(t *testing.T) {
	source := `{"expressionDefs": [{"name": "X", "expression": {"kind": "Interval"}}]}`
	if _, err := compileELM(source); err == nil {
		t.Fatal("expected an error for an unsupported expression kind")
	}
}

func TestCompileELMEvaluatesThroughInterpreter(t *testing.T) {
	source := `{
		"identifier": {"qualified": "Arith", "version": "1.0.0"},
		"expressionDefs": [
			{"name": "IsGreater", "public": true, "expression": {
				"kind": "Greater",
				"operands": [
					{"kind": "Literal", "type": "Integer", "value": "3"},
					{"kind": "Literal", "type": "Integer", "value": "2"}
				]
			}}
		]
	}`
	lib, err := compileELM(source)
	if err != nil {
		t.Fatalf("compileELM: %v", err)
	}

	libResults, err := interpreter.Eval(context.Background(), []*model.Library{lib}, interpreter.Config{})
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	v, ok := libResults[result.LibKey{Name: "Arith", Version: "1.0.0"}]["IsGreater"]
	if !ok {
		t.Fatalf("Arith.IsGreater not found in results: %+v", libResults)
	}
	b, err := result.ToBool(v)
	if err != nil || !b {
		t.Errorf("IsGreater = %v, %v; want true", b, err)
	}
}

func TestCompileELMIncludesRoundTripThroughManager(t *testing.T) {
	resolver := library.NewInMemoryResolver(map[string]string{
		"Common": `{
			"identifier": {"qualified": "Common", "version": "1.0.0"},
			"expressionDefs": [
				{"name": "True", "public": true, "expression": {"kind": "Literal", "type": "Boolean", "value": "true"}}
			]
		}`,
		"Main": `{
			"identifier": {"qualified": "Main", "version": "1.0.0"},
			"includes": [{"localIdentifier": "Common", "qualified": "Common", "version": "1.0.0"}],
			"expressionDefs": [
				{"name": "FromCommon", "public": true, "expression": {"kind": "ExpressionRef", "name": "True", "library": "Common"}}
			]
		}`,
	})
	mgr := library.NewManager(resolver, compileELM)
	libs, err := mgr.Resolve("Main")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	libResults, err := interpreter.Eval(context.Background(), libs, interpreter.Config{})
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	v, ok := libResults[result.LibKey{Name: "Main", Version: "1.0.0"}]["FromCommon"]
	if !ok {
		t.Fatalf("Main.FromCommon not found in results: %+v", libResults)
	}
	b, err := result.ToBool(v)
	if err != nil || !b {
		t.Errorf("FromCommon = %v, %v; want true", b, err)
	}
}
