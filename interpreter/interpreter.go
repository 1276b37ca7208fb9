// Package interpreter tree-walks a compiled model.Library set and produces result.Values. It has
// no knowledge of CQL concrete syntax; it consumes the same model.IExpression nodes a library
// resolver's compile hook would produce.
package interpreter

import (
	"context"
	"fmt"
	"time"

	"gopkg.in/gyuho/goraph.v2"

	"github.com/example/cqlcore/internal/modelinfo"
	"github.com/example/cqlcore/internal/reference"
	"github.com/example/cqlcore/internal/resourcewrapper"
	"github.com/example/cqlcore/model"
	"github.com/example/cqlcore/result"
	"github.com/example/cqlcore/retriever"
	"github.com/example/cqlcore/terminology"
	"github.com/example/cqlcore/types"
)

// Config carries everything an evaluation needs beyond the compiled libraries themselves.
type Config struct {
	// DataSource supplies the resources Retrieve expressions read. May be nil if no library in
	// the set issues a Retrieve.
	DataSource retriever.DataSource
	// Terminology resolves ValueSet/CodeSystem membership and hierarchy. May be nil if no
	// library in the set uses terminology operators.
	Terminology terminology.Provider
	// ModelInfo backs property resolution, `is`/`as`, and overload resolution. Must be populated
	// with every Named class a library's Retrieve or property navigation can reach.
	ModelInfo *modelinfo.Registry
	// EvaluationTimestamp is the instant Now()/Today()/TimeOfDay() and CalculateAge resolve
	// against. A zero value defaults to time.Now() at the start of Eval.
	EvaluationTimestamp time.Time
	// Parameters supplies caller-provided values for ParameterDefs, keyed by library and name.
	// A ParameterDef without an entry here falls back to its declared Default expression.
	Parameters map[result.DefKey]result.Value
	// ContextResource is the resource the "Patient" (or other single-patient) context is scoped
	// to, when known in advance by the caller. A library's Retrieve expressions collapse their
	// source Context automatically to this resource when it is non-nil.
	ContextResource *resourcewrapper.Resource
}

// Eval evaluates every public and private ExpressionDef of every library in libs, returning each
// definition's resulting Value keyed by library and name.
func Eval(ctx context.Context, libs []*model.Library, config Config) (result.Libraries, error) {
	sorted, err := sortByIncludeOrder(libs)
	if err != nil {
		return nil, result.NewEngineError("", result.ErrEvaluationError, err)
	}

	ts := config.EvaluationTimestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	reg := config.ModelInfo
	if reg == nil {
		reg = modelinfo.New()
	}

	terp := &interpreter{
		ctx:             ctx,
		refs:            reference.NewResolver[*defThunk, *funcDef](),
		modelinfo:       reg,
		dataSource:      config.DataSource,
		terminology:     config.Terminology,
		now:             ts,
		contextResource: config.ContextResource,
		parameters:      config.Parameters,
	}
	if err := registerBuiltins(terp.refs); err != nil {
		return nil, result.NewEngineError("", result.ErrEvaluationError, err)
	}

	for _, lib := range sorted {
		if err := terp.evalLibrary(lib); err != nil {
			name := "Unnamed Library"
			if lib.Identifier != nil {
				name = lib.Identifier.Qualified
			}
			return nil, result.NewEngineError(name, result.ErrEvaluationError, err)
		}
	}

	out := make(result.Libraries)
	defs, err := terp.refs.PublicAndPrivateDefs()
	if err != nil {
		return nil, result.NewEngineError("", result.ErrEvaluationError, err)
	}
	for libKey, byName := range defs {
		vals := make(map[string]result.Value, len(byName))
		for name, thunk := range byName {
			if thunk == nil || thunk.kind != thunkExpression {
				continue
			}
			v, err := terp.force(thunk)
			if err != nil {
				return nil, result.NewEngineError(fmt.Sprintf("%s.%s", libKey, name), result.ErrEvaluationError, err)
			}
			vals[name] = v
		}
		out[libKey] = vals
	}
	return out, nil
}

// interpreter holds the state threaded through one Eval call.
type interpreter struct {
	ctx         context.Context
	refs        *reference.Resolver[*defThunk, *funcDef]
	modelinfo   *modelinfo.Registry
	dataSource  retriever.DataSource
	terminology terminology.Provider
	now         time.Time

	// contextResource is the resource the current evaluation context (usually "Patient") is
	// scoped to. evalRetrieve and Property navigation of a bare context identifier both read it.
	contextResource *resourcewrapper.Resource
	parameters      map[result.DefKey]result.Value

	// currentLib mirrors the library reference.Resolver currently has selected, used to build
	// DefKeys for thunks and parameter overrides; unnamedCounter mirrors the Resolver's own
	// private unnamed-library counter so the two stay in lockstep.
	currentLib     result.LibKey
	unnamedCounter int
}

// thunkKind distinguishes what kind of top level definition a defThunk replays.
type thunkKind int

const (
	thunkExpression thunkKind = iota
	thunkParameter
	thunkValueset
	thunkCodeSystem
	thunkConcept
	thunkCode
)

// defThunk is a lazily evaluated, memoized definition. Forcing it twice returns the cached Value;
// forcing it while already in progress (directly or through a chain of other thunks) is a CQL
// "defined in terms of itself" error via Resolver.EnterDef.
type defThunk struct {
	key     result.DefKey
	kind    thunkKind
	expr    model.IExpression
	library *model.LibraryIdentifier

	evaluated bool
	value     result.Value
	err       error
}

// evaluatedThunk wraps an already computed Value (used for query aliases, let bindings, and
// function operands, none of which need laziness since CQL evaluates them eagerly).
func evaluatedThunk(v result.Value) *defThunk {
	return &defThunk{evaluated: true, value: v}
}

// force evaluates t's expression on first use and caches the result, guarding against
// self-referential definitions via Resolver.EnterDef.
func (terp *interpreter) force(t *defThunk) (result.Value, error) {
	if t.evaluated {
		return t.value, t.err
	}
	exit, err := terp.refs.EnterDef(t.key)
	if err != nil {
		return result.Value{}, err
	}
	defer exit()
	if t.library != nil {
		restore := terp.refs.EnterLibrary(t.library)
		defer restore()
	}
	v, err := terp.evalExpression(t.expr)
	t.evaluated = true
	t.value = v
	t.err = err
	return v, err
}

// funcDef is the value stored and resolved for every CQL function name: either an engine built-in
// (builtin non-nil) or a user defined CQL function body (userDef non-nil), each reached through
// the same FunctionRef evaluation path.
type funcDef struct {
	builtin  builtinFunc
	userDef  *model.FunctionDef
	declLib  *model.LibraryIdentifier
}

// builtinFunc implements one engine built-in function overload. args are already evaluated.
type builtinFunc func(terp *interpreter, args []result.Value) (result.Value, error)

// evalLibrary registers every top level definition of lib as a (lazy, for ExpressionDefs and
// FunctionDefs; eager, for everything else) thunk in terp.refs, in the order CQL requires:
// Includes first (so later definitions may reference them), then every other kind of definition.
// Usings are not registered.
func (terp *interpreter) evalLibrary(lib *model.Library) error {
	if lib.Identifier != nil {
		if err := terp.refs.SetCurrentLibrary(lib.Identifier); err != nil {
			return err
		}
		terp.currentLib = result.LibKeyFromModel(lib.Identifier)
	} else {
		terp.refs.SetCurrentUnnamed()
		terp.currentLib = result.LibKey{Name: fmt.Sprintf("UnnamedLibrary-%d", terp.unnamedCounter), Version: "1.0"}
		terp.unnamedCounter++
	}

	for _, inc := range lib.Includes {
		if err := terp.refs.IncludeLibrary(inc.Identifier, true); err != nil {
			return err
		}
	}

	for _, p := range lib.Parameters {
		expr := p.Default
		if v, ok := terp.parameters[result.DefKey{Name: p.Name, Library: terp.currentLib}]; ok {
			expr = &literalValueExpr{Element: &model.Element{}, value: v}
		}
		if err := terp.defineThunk(lib.Identifier, p.Name, thunkParameter, expr, p.AccessLevel == model.Public); err != nil {
			return err
		}
	}
	for _, cs := range lib.CodeSystems {
		if err := terp.defineCodeSystem(lib.Identifier, cs); err != nil {
			return err
		}
	}
	for _, c := range lib.Codes {
		if err := terp.defineCode(lib.Identifier, c); err != nil {
			return err
		}
	}
	for _, c := range lib.Concepts {
		if err := terp.defineConcept(lib.Identifier, c); err != nil {
			return err
		}
	}
	for _, vs := range lib.Valuesets {
		if err := terp.defineValueset(lib.Identifier, vs); err != nil {
			return err
		}
	}

	if lib.Statements != nil {
		for _, def := range lib.Statements.Defs {
			switch d := def.(type) {
			case *model.FunctionDef:
				if err := terp.refs.DefineFunc(&reference.Func[*funcDef]{
					Name:             d.Name,
					Operands:         operandTypes(d.Operands),
					Result:           &funcDef{userDef: d, declLib: lib.Identifier},
					IsPublic:         d.AccessLevel == model.Public,
					IsFluent:         d.Fluent,
					ValidateIsUnique: true,
				}); err != nil {
					return err
				}
			case *model.ExpressionDef:
				if err := terp.defineThunk(lib.Identifier, d.Name, thunkExpression, d.Expression, d.AccessLevel == model.Public); err != nil {
					return err
				}
			default:
				return fmt.Errorf("internal error - unexpected statement type %T", def)
			}
		}
	}
	return nil
}

func operandTypes(ops []model.OperandDef) []types.IType {
	out := make([]types.IType, len(ops))
	for i, op := range ops {
		out[i] = op.GetResultType()
	}
	return out
}

// defineThunk registers a lazily evaluated definition of the given kind. declLib is the
// identifier of the library that declares it (nil for an unnamed library), stashed on the thunk
// so force() can re-enter that library's scope even when forced while a different library is
// current (e.g. a cross-library ExpressionRef).
func (terp *interpreter) defineThunk(declLib *model.LibraryIdentifier, name string, kind thunkKind, expr model.IExpression, isPublic bool) error {
	t := &defThunk{key: result.DefKey{Name: name, Library: terp.currentLib}, kind: kind, expr: expr, library: declLib}
	return terp.refs.Define(&reference.Def[*defThunk]{
		Name: name, Result: t, IsPublic: isPublic, ValidateIsUnique: true,
	})
}

func (terp *interpreter) defineCodeSystem(declLib *model.LibraryIdentifier, cs *model.CodeSystemDef) error {
	v, err := result.New(result.CodeSystem{ID: cs.ID, Version: cs.Version})
	if err != nil {
		return err
	}
	return terp.defineThunk(declLib, cs.Name, thunkCodeSystem, &literalValueExpr{Element: &model.Element{}, value: v}, cs.AccessLevel == model.Public)
}

func (terp *interpreter) defineCode(declLib *model.LibraryIdentifier, c *model.CodeDef) error {
	system := ""
	if c.CodeSystem != nil {
		csThunk, err := terp.refs.ResolveLocal(c.CodeSystem.Name)
		if err == nil {
			if csVal, ferr := terp.force(csThunk); ferr == nil {
				if cs, cerr := result.ToCodeSystem(csVal); cerr == nil {
					system = cs.ID
				}
			}
		}
	}
	v, err := result.New(result.Code{Code: c.Code, Display: c.Display, System: system})
	if err != nil {
		return err
	}
	return terp.defineThunk(declLib, c.Name, thunkCode, &literalValueExpr{Element: &model.Element{}, value: v}, c.AccessLevel == model.Public)
}

func (terp *interpreter) defineConcept(declLib *model.LibraryIdentifier, c *model.ConceptDef) error {
	return terp.defineThunk(declLib, c.Name, thunkConcept, &conceptDefExpr{Element: &model.Element{}, def: c}, c.AccessLevel == model.Public)
}

func (terp *interpreter) defineValueset(declLib *model.LibraryIdentifier, vs *model.ValuesetDef) error {
	v, err := result.New(result.ValueSet{ID: vs.ID, Version: vs.Version})
	if err != nil {
		return err
	}
	return terp.defineThunk(declLib, vs.Name, thunkValueset, &literalValueExpr{Element: &model.Element{}, value: v}, vs.AccessLevel == model.Public)
}

// literalValueExpr is a synthetic model.IExpression wrapping an already computed Value, used for
// definitions (CodeSystemDef, ValuesetDef, CodeDef, a caller-overridden ParameterDef) whose value
// does not need tree-walking evaluation.
type literalValueExpr struct {
	*model.Element
	value result.Value
}

func (l *literalValueExpr) isExpression() {}

// conceptDefExpr evaluates a ConceptDef by resolving each of its CodeRefs, used instead of
// literalValueExpr since a Concept literal's codes are themselves definitions to force.
type conceptDefExpr struct {
	*model.Element
	def *model.ConceptDef
}

func (c *conceptDefExpr) isExpression() {}

// sortByIncludeOrder returns libs ordered so that every library appears after every library it
// includes, using a topological sort of the include graph.
func sortByIncludeOrder(libs []*model.Library) ([]*model.Library, error) {
	if len(libs) <= 1 {
		return libs, nil
	}
	graph := goraph.NewGraph()
	byKey := make(map[string]*model.Library, len(libs))
	keyOf := func(lib *model.Library) string {
		if lib.Identifier == nil {
			return fmt.Sprintf("unnamed-%p", lib)
		}
		return lib.Identifier.Qualified + " " + lib.Identifier.Version
	}
	for _, lib := range libs {
		k := keyOf(lib)
		byKey[k] = lib
		if ok := graph.AddNode(goraph.NewNode(k)); !ok {
			return nil, fmt.Errorf("library %q already imported", k)
		}
	}
	for _, lib := range libs {
		libNode := goraph.NewNode(keyOf(lib))
		for _, inc := range lib.Includes {
			var includedKey string
			for _, other := range libs {
				if other.Identifier != nil && other.Identifier.Qualified == inc.Identifier.Qualified &&
					(inc.Identifier.Version == "" || other.Identifier.Version == inc.Identifier.Version) {
					includedKey = keyOf(other)
					break
				}
			}
			if includedKey == "" {
				return nil, fmt.Errorf("included library %q could not be found among the libraries being evaluated", inc.Identifier.Qualified)
			}
			includedNode := goraph.NewNode(includedKey)
			if err := graph.AddEdge(includedNode.ID(), libNode.ID(), 1); err != nil {
				return nil, fmt.Errorf("failed to order library %q: %w", keyOf(lib), err)
			}
		}
	}
	sortedIDs, isValidDag := goraph.TopologicalSort(graph)
	if !isValidDag {
		return nil, fmt.Errorf("included cql libraries are not valid, found circular dependencies")
	}
	sorted := make([]*model.Library, 0, len(libs))
	for _, id := range sortedIDs {
		sorted = append(sorted, byKey[id.String()])
	}
	return sorted, nil
}
