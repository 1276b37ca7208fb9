// Package result defines the evaluation results that can be returned by the CQL/FHIRPath engine.
package result

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pborman/uuid"

	"github.com/example/cqlcore/model"
)

// Libraries maps each evaluated CQL Library to the CQL Values of its Expression Definitions.
type Libraries map[LibKey]map[string]Value

type cqlLibJSON struct {
	Name    string           `json:"libName"`
	Version string           `json:"libVersion"`
	ExpDefs map[string]Value `json:"expressionDefinitions"`
}

// MarshalJSON returns the Libraries as a JSON array of library results.
func (l Libraries) MarshalJSON() ([]byte, error) {
	r := []cqlLibJSON{}
	for k, v := range l {
		r = append(r, cqlLibJSON{Name: k.Name, Version: k.Version, ExpDefs: v})
	}
	return json.Marshal(r)
}

// LibKey is the unique identifier for a CQL Library.
type LibKey struct {
	// Name is the fully qualified identifier of the CQL library.
	Name string
	// Version is empty if no version was specified.
	Version string
	// Unnamed libraries do not have a library identifier; all of their definitions are private.
	// Use UnnamedLibKey to construct one.
	IsUnnamed bool
}

// UnnamedLibKey returns a LibKey for a library without an identifier, using a random UUID to
// keep multiple unnamed libraries distinct.
func UnnamedLibKey() LibKey {
	return LibKey{Name: "Unnamed Library", Version: uuid.New(), IsUnnamed: true}
}

// LibKeyFromModel returns the LibKey for a model.LibraryIdentifier, or an UnnamedLibKey if lib is
// nil.
func LibKeyFromModel(lib *model.LibraryIdentifier) LibKey {
	if lib == nil {
		return UnnamedLibKey()
	}
	return LibKey{Name: lib.Qualified, Version: lib.Version}
}

// Key returns a unique string representation of the LibKey.
func (l LibKey) Key() string {
	if l.Version == "" {
		return l.Name
	}
	return l.Name + " " + l.Version
}

// String returns a printable representation of the LibKey.
func (l LibKey) String() string {
	if l.IsUnnamed {
		return "Unnamed Library"
	}
	return l.Key()
}

// DefKey is the unique identifier for a CQL Expression Definition, Parameter, ValueSet,
// CodeSystem or Concept, used as the key of the definition memoization cache.
type DefKey struct {
	Name    string
	Library LibKey
}

// String returns a printable representation of the DefKey.
func (d DefKey) String() string {
	return fmt.Sprintf("%s.%s", d.Library, d.Name)
}

// EngineErrorType distinguishes the phase of the engine pipeline an EngineError occurred in.
type EngineErrorType error

var (
	// ErrLibraryParsing is returned when a library could not be compiled.
	ErrLibraryParsing = errors.New("failed to compile library")
	// ErrParameterParsing is returned when a parameter value could not be parsed.
	ErrParameterParsing = errors.New("failed to parse parameter")
	// ErrEvaluationError is returned when a runtime error occurs during evaluation.
	ErrEvaluationError = errors.New("failed during evaluation")
	// ErrTerminologyError is returned when a terminology provider call fails.
	ErrTerminologyError = errors.New("failed during terminology resolution")
)

// EngineError is returned when the engine fails during compilation or evaluation.
type EngineError struct {
	Resource string
	ErrType  EngineErrorType
	Err      error
}

// NewEngineError returns a new EngineError. err is the nested error produced during compilation
// or evaluation.
func NewEngineError(resource string, errType EngineErrorType, err error) EngineError {
	return EngineError{Resource: resource, ErrType: errType, Err: err}
}

// Error implements the error interface.
func (e EngineError) Error() string {
	return fmt.Sprintf("%s: %s, %s", e.ErrType.Error(), e.Resource, e.Err.Error())
}

// Unwrap allows errors.Is/errors.As to see through to the nested error.
func (e EngineError) Unwrap() error {
	return e.Err
}
