// Package reference handles resolving references across CQL libraries and locally within a
// library for the expression compiler and the interpreter.
package reference

import (
	"errors"
	"fmt"

	"github.com/example/cqlcore/internal/convert"
	"github.com/example/cqlcore/internal/modelinfo"
	"github.com/example/cqlcore/model"
	"github.com/example/cqlcore/result"
	"github.com/example/cqlcore/types"
)

// Resolver tracks definitions (ExpressionDefs, ParameterDefs, ValueSetDefs...) and aliases across
// CQL libraries and locally within a CQL library. When a definition is created the resolver stores
// a result (for the compiler a model.IExpression, for the interpreter a result.Value). Resolvers
// should not be shared between the compiler and interpreter; each evaluation should start from a
// fresh one built by replaying Define/DefineFunc/IncludeLibrary from the compiled libraries.
type Resolver[T any, F any] struct {
	defs  map[defKey]exprDef[T]
	funcs map[defKey][]funcDef[F]

	// builtinFuncs holds every engine built-in function, keyed by name, independent of library.
	builtinFuncs map[string][]convert.Overload[F]

	// aliases works like a stack, scoped via EnterScope/ExitScope.
	aliases []map[aliasKey]T

	libs         map[namedLibKey]struct{}
	includedLibs map[includeKey]*model.LibraryIdentifier

	currLib      libKey
	unnamedCount int

	// inProgress tracks definitions currently being evaluated, so a self- or mutually-recursive
	// ExpressionRef chain is reported as an error instead of recursing forever.
	inProgress map[result.DefKey]struct{}
}

type exprDef[T any] struct {
	isPublic bool
	result   T
}

type funcDef[F any] struct {
	isPublic bool
	isFluent bool
	overload convert.Overload[F]
}

// NewResolver creates a blank resolver with zero global references. T is the type stored and
// resolved for definitions; F is the type stored and resolved for functions.
func NewResolver[T any, F any]() *Resolver[T, F] {
	return &Resolver[T, F]{
		defs:         make(map[defKey]exprDef[T]),
		funcs:        make(map[defKey][]funcDef[F]),
		builtinFuncs: make(map[string][]convert.Overload[F]),
		aliases:      make([]map[aliasKey]T, 0),
		libs:         make(map[namedLibKey]struct{}),
		includedLibs: make(map[includeKey]*model.LibraryIdentifier),
		inProgress:   make(map[result.DefKey]struct{}),
	}
}

// ClearDefs clears everything except built-in functions.
func (r *Resolver[T, F]) ClearDefs() {
	r.defs = make(map[defKey]exprDef[T])
	r.funcs = make(map[defKey][]funcDef[F])
	r.aliases = make([]map[aliasKey]T, 0)
	r.libs = make(map[namedLibKey]struct{})
	r.includedLibs = make(map[includeKey]*model.LibraryIdentifier)
	r.inProgress = make(map[result.DefKey]struct{})
}

// SetCurrentLibrary sets the current library. Either SetCurrentLibrary or SetCurrentUnnamed must
// be called before creating or resolving references.
func (r *Resolver[T, F]) SetCurrentLibrary(m *model.LibraryIdentifier) error {
	l := namedLibKey{qualified: m.Qualified, version: m.Version}
	if _, ok := r.libs[l]; ok {
		return fmt.Errorf("library %s %s already exists", m.Qualified, m.Version)
	}
	r.currLib = l
	r.libs[l] = struct{}{}
	return nil
}

// SetCurrentUnnamed should be called if the CQL library has no library definition. All
// definitions in unnamed libraries are private.
func (r *Resolver[T, F]) SetCurrentUnnamed() {
	r.currLib = unnamedLibKey{unnamedID: r.unnamedCount}
	r.unnamedCount++
}

// IncludeLibrary should be called for each include statement in the CQL library, before any
// reference into that library is resolved.
func (r *Resolver[T, F]) IncludeLibrary(m *model.LibraryIdentifier, validateIsUnique bool) error {
	if validateIsUnique {
		if err := r.isLocallyUnique(m.Local); err != nil {
			return err
		}
	}
	lib := namedLibKey{qualified: m.Qualified, version: m.Version}
	if _, ok := r.libs[lib]; !ok {
		return fmt.Errorf("library %s %s was included, but does not exist", m.Qualified, m.Version)
	}
	r.includedLibs[includeKey{localID: m.Local, includedBy: r.currLib}] = m
	return nil
}

// ResolveInclude takes the local name of an included library and returns its fully qualified
// identifier, or nil if the local name does not exist.
func (r *Resolver[T, F]) ResolveInclude(name string) *model.LibraryIdentifier {
	if i, ok := r.includedLibs[includeKey{localID: name, includedBy: r.currLib}]; ok {
		return i
	}
	return nil
}

// Def holds the information needed to create a definition.
type Def[T any] struct {
	Name             string
	Result           T
	IsPublic         bool
	ValidateIsUnique bool
}

// Define creates a new definition, returning an error if the name already exists in this
// library. Names must be unique regardless of definition kind (an ExpressionDef and a
// ParameterDef cannot share a name).
func (r *Resolver[T, F]) Define(d *Def[T]) error {
	if d.ValidateIsUnique {
		if err := r.isLocallyUnique(d.Name); err != nil {
			return err
		}
	}
	_, isUnnamed := r.currLib.(unnamedLibKey)
	r.defs[defKey{r.currLib, d.Name}] = exprDef[T]{isPublic: d.IsPublic && !isUnnamed, result: d.Result}
	return nil
}

// Func holds the information needed to create a function definition.
type Func[F any] struct {
	Name             string
	Operands         []types.IType
	Result           F
	IsPublic         bool
	IsFluent         bool
	ValidateIsUnique bool
}

// DefineFunc creates a new user defined function, returning an error if the name+operand
// signature already exists in this library. Functions can be overloaded by operand signature.
func (r *Resolver[T, F]) DefineFunc(f *Func[F]) error {
	if f.ValidateIsUnique {
		if err := r.isFuncLocallyUnique(f.Name, f.Operands); err != nil {
			return err
		}
	}
	dKey := defKey{r.currLib, f.Name}
	_, isUnnamed := r.currLib.(unnamedLibKey)
	r.funcs[dKey] = append(r.funcs[dKey], funcDef[F]{
		isPublic: f.IsPublic && !isUnnamed,
		isFluent: f.IsFluent,
		overload: convert.Overload[F]{Operands: f.Operands, Result: f.Result},
	})
	return nil
}

// DefineBuiltinFunc creates a new engine built-in function, returning an error if the signature
// already exists. All built-ins must be defined before any library is compiled.
func (r *Resolver[T, F]) DefineBuiltinFunc(name string, operands []types.IType, f F) error {
	if overloads, ok := r.builtinFuncs[name]; ok {
		for _, overload := range overloads {
			if exactMatch(operands, overload.Operands) {
				return fmt.Errorf("internal error - built-in function %s(%s) already exists", name, types.ToStrings(operands))
			}
		}
	}
	r.builtinFuncs[name] = append(r.builtinFuncs[name], convert.Overload[F]{Operands: operands, Result: f})
	return nil
}

// ResolveGlobal resolves a reference to a definition in an included CQL library.
func (r *Resolver[T, F]) ResolveGlobal(libName, defName string) (T, error) {
	qKey, ok := r.includedLibs[includeKey{localID: libName, includedBy: r.currLib}]
	if !ok {
		return zero[T](), fmt.Errorf("could not resolve the library name %s", libName)
	}
	dKey := defKey{namedLibKey{qualified: qKey.Qualified, version: qKey.Version}, defName}
	a, ok := r.defs[dKey]
	if !ok {
		return zero[T](), fmt.Errorf("could not resolve the reference to %s.%s", libName, defName)
	}
	if !a.isPublic {
		return zero[T](), fmt.Errorf("%s.%s is not public", libName, defName)
	}
	return a.result, nil
}

// ResolveGlobalFunc resolves a reference to a user defined function in an included CQL library.
func (r *Resolver[T, F]) ResolveGlobalFunc(libName, defName string, operands []types.IType, calledFluently bool, reg *modelinfo.Registry) (*convert.MatchedOverload[F], error) {
	qKey, ok := r.includedLibs[includeKey{localID: libName, includedBy: r.currLib}]
	if !ok {
		return nil, fmt.Errorf("could not resolve the library name %s", libName)
	}
	dKey := defKey{namedLibKey{qualified: qKey.Qualified, version: qKey.Version}, defName}
	overloads := fluentFilteredOverloads(r.funcs[dKey], calledFluently, true)
	ref, err := convert.OverloadMatch(operands, overloads, reg, fmt.Sprintf("%s.%s", libName, defName))
	if err != nil {
		return nil, err
	}
	return &ref, nil
}

// ResolveExactGlobalFunc resolves a reference to a user defined function in an included CQL
// library, preferring an overload whose operand types match exactly and otherwise falling back to
// implicit conversion scoring (see convert.ExactOverloadMatch).
func (r *Resolver[T, F]) ResolveExactGlobalFunc(libName, defName string, operands []types.IType, calledFluently bool, reg *modelinfo.Registry) (F, error) {
	qKey, ok := r.includedLibs[includeKey{localID: libName, includedBy: r.currLib}]
	if !ok {
		return zero[F](), fmt.Errorf("could not resolve the library name %s", libName)
	}
	dKey := defKey{namedLibKey{qualified: qKey.Qualified, version: qKey.Version}, defName}
	overloads := fluentFilteredOverloads(r.funcs[dKey], calledFluently, true)
	m, err := convert.ExactOverloadMatch(operands, overloads, reg, fmt.Sprintf("%s.%s", libName, defName))
	if err != nil {
		return zero[F](), err
	}
	return m.Result, nil
}

// ResolveLocal resolves a reference to a definition in the current CQL library, falling back to
// an alias in scope.
func (r *Resolver[T, F]) ResolveLocal(name string) (T, error) {
	if a, ok := r.defs[defKey{r.currLib, name}]; ok {
		return a.result, nil
	}
	if a, ok := r.findAlias(aliasKey{r.currLib, name}); ok {
		return a, nil
	}
	return zero[T](), fmt.Errorf("could not resolve the local reference to %s", name)
}

// ResolveLocalFunc resolves a reference to a user defined or built-in function in the current CQL
// library.
func (r *Resolver[T, F]) ResolveLocalFunc(name string, operands []types.IType, calledFluently bool, reg *modelinfo.Registry) (*convert.MatchedOverload[F], error) {
	overloads := append([]convert.Overload[F]{}, r.builtinFuncs[name]...)
	overloads = append(overloads, fluentFilteredOverloads(r.funcs[defKey{r.currLib, name}], calledFluently, false)...)
	ref, err := convert.OverloadMatch(operands, overloads, reg, name)
	if err != nil {
		return nil, err
	}
	return &ref, nil
}

// ResolveExactLocalFunc resolves a reference to a user defined or built-in function in the
// current CQL library, preferring an overload whose operand types match exactly and otherwise
// falling back to implicit conversion scoring (see convert.ExactOverloadMatch).
func (r *Resolver[T, F]) ResolveExactLocalFunc(name string, operands []types.IType, calledFluently bool, reg *modelinfo.Registry) (F, error) {
	overloads := append([]convert.Overload[F]{}, r.builtinFuncs[name]...)
	overloads = append(overloads, fluentFilteredOverloads(r.funcs[defKey{r.currLib, name}], calledFluently, false)...)
	m, err := convert.ExactOverloadMatch(operands, overloads, reg, name)
	if err != nil {
		return zero[F](), err
	}
	return m.Result, nil
}

func fluentFilteredOverloads[F any](defs []funcDef[F], calledFluently, requirePublic bool) []convert.Overload[F] {
	var overloads []convert.Overload[F]
	for _, fDef := range defs {
		if requirePublic && !fDef.isPublic {
			continue
		}
		if calledFluently && !fDef.isFluent {
			continue
		}
		overloads = append(overloads, fDef.overload)
	}
	return overloads
}

// EnterLibrary temporarily switches the current library to m for the duration of a cross-library
// function or definition evaluation, returning a restore func the caller must defer. Unlike
// SetCurrentLibrary, it does not register m as a new library and may be called repeatedly.
func (r *Resolver[T, F]) EnterLibrary(m *model.LibraryIdentifier) func() {
	prev := r.currLib
	r.currLib = namedLibKey{qualified: m.Qualified, version: m.Version}
	return func() { r.currLib = prev }
}

// EnterScope starts a new alias scope. ExitScope removes every alias defined since.
func (r *Resolver[T, F]) EnterScope() {
	r.aliases = append(r.aliases, make(map[aliasKey]T))
}

// ExitScope removes the aliases created since the matching EnterScope.
func (r *Resolver[T, F]) ExitScope() {
	if len(r.aliases) > 0 {
		r.aliases = r.aliases[:len(r.aliases)-1]
	}
}

// Alias creates a new alias in the current scope.
func (r *Resolver[T, F]) Alias(name string, a T) error {
	if len(r.aliases) == 0 {
		return errors.New("internal error - EnterScope must be called before creating an alias")
	}
	if err := r.isLocallyUnique(name); err != nil {
		return err
	}
	r.aliases[len(r.aliases)-1][aliasKey{r.currLib, name}] = a
	return nil
}

// EnterDef marks a definition as being evaluated, returning an error if it is already in
// progress (directly or transitively self-referential), and an exit func the caller must defer
// to clear the marker once evaluation completes.
func (r *Resolver[T, F]) EnterDef(d result.DefKey) (func(), error) {
	if _, ok := r.inProgress[d]; ok {
		return func() {}, fmt.Errorf("%s is defined in terms of itself", d)
	}
	r.inProgress[d] = struct{}{}
	return func() { delete(r.inProgress, d) }, nil
}

// PublicDefs returns every public definition, keyed by library.
func (r *Resolver[T, F]) PublicDefs() (map[result.LibKey]map[string]T, error) {
	defs := make(map[result.LibKey]map[string]T)
	for k, v := range r.defs {
		if !v.isPublic {
			continue
		}
		namedK, ok := k.library.(namedLibKey)
		if !ok {
			return nil, fmt.Errorf("internal error - %v is not a namedLibKey", k.library)
		}
		lKey := result.LibKey{Name: namedK.qualified, Version: namedK.version}
		if defs[lKey] == nil {
			defs[lKey] = make(map[string]T)
		}
		defs[lKey][k.name] = v.result
	}
	return defs, nil
}

// PublicAndPrivateDefs returns every definition, public and private, including unnamed
// libraries. Intended for tests and REPL-style tooling, not normal engine execution.
func (r *Resolver[T, F]) PublicAndPrivateDefs() (map[result.LibKey]map[string]T, error) {
	defs := make(map[result.LibKey]map[string]T)
	for k, v := range r.defs {
		var lKey result.LibKey
		switch tk := k.library.(type) {
		case namedLibKey:
			lKey = result.LibKey{Name: tk.qualified, Version: tk.version}
		case unnamedLibKey:
			lKey = result.LibKey{Name: fmt.Sprintf("UnnamedLibrary-%d", tk.unnamedID), Version: "1.0"}
		default:
			return nil, fmt.Errorf("internal error - %v is an unexpected key type", k.library)
		}
		if defs[lKey] == nil {
			defs[lKey] = make(map[string]T)
		}
		defs[lKey][k.name] = v.result
	}
	return defs, nil
}

func (r *Resolver[T, F]) isLocallyUnique(name string) error {
	if _, ok := r.defs[defKey{r.currLib, name}]; ok {
		return fmt.Errorf("identifier %s already exists in this CQL library", name)
	}
	if _, ok := r.includedLibs[includeKey{localID: name, includedBy: r.currLib}]; ok {
		return fmt.Errorf("identifier %s already exists in this CQL library", name)
	}
	if _, ok := r.findAlias(aliasKey{r.currLib, name}); ok {
		return fmt.Errorf("alias %s already exists", name)
	}
	return nil
}

func (r *Resolver[T, F]) isFuncLocallyUnique(name string, operands []types.IType) error {
	for _, overload := range r.builtinFuncs[name] {
		if exactMatch(operands, overload.Operands) {
			return fmt.Errorf("built-in function %s(%s) already exists", name, types.ToStrings(operands))
		}
	}
	for _, overload := range r.funcs[defKey{r.currLib, name}] {
		if exactMatch(operands, overload.overload.Operands) {
			return fmt.Errorf("function %s(%s) already exists", name, types.ToStrings(operands))
		}
	}
	return nil
}

func (r *Resolver[T, F]) findAlias(aKey aliasKey) (T, bool) {
	for i := len(r.aliases) - 1; i >= 0; i-- {
		if t, ok := r.aliases[i][aKey]; ok {
			return t, true
		}
	}
	return zero[T](), false
}

func exactMatch(ops1, ops2 []types.IType) bool {
	if len(ops1) != len(ops2) {
		return false
	}
	for i := range ops1 {
		if !ops1[i].Equal(ops2[i]) {
			return false
		}
	}
	return true
}

type libKey interface {
	isComparableLibKey()
}

type namedLibKey struct {
	qualified string
	version   string
}

func (namedLibKey) isComparableLibKey() {}

// unnamedLibKey identifies a library with no library declaration; all of its definitions are
// private.
type unnamedLibKey struct {
	unnamedID int
}

func (unnamedLibKey) isComparableLibKey() {}

type defKey struct {
	library libKey
	name    string
}

type includeKey struct {
	localID    string
	includedBy libKey
}

type aliasKey struct {
	library libKey
	name    string
}

func zero[T any]() T {
	var z T
	return z
}
