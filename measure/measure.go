// Package measure evaluates a compiled CQL library as a clinical quality measure: it runs the
// library once per patient in context, reads off the standard population definitions, and
// aggregates the per-patient results into a scored, stratified report.
//
// google/cql stops at library/expression evaluation and has no measure evaluator of its own; this
// package is new code grounded directly on the population definitions and scoring formulas
// spec.md calls for, reusing the interpreter package's Eval the same way a single expression
// evaluation would.
package measure

import (
	"context"
	"fmt"

	"github.com/example/cqlcore/interpreter"
	"github.com/example/cqlcore/internal/resourcewrapper"
	"github.com/example/cqlcore/model"
	"github.com/example/cqlcore/result"
)

// PopulationCode names one of the standard measure population roles.
type PopulationCode string

const (
	InitialPopulation          PopulationCode = "initial-population"
	Denominator                PopulationCode = "denominator"
	DenominatorExclusion       PopulationCode = "denominator-exclusion"
	DenominatorException       PopulationCode = "denominator-exception"
	Numerator                  PopulationCode = "numerator"
	NumeratorExclusion         PopulationCode = "numerator-exclusion"
	MeasurePopulation          PopulationCode = "measure-population"
	MeasurePopulationExclusion PopulationCode = "measure-population-exclusion"
	MeasureObservation         PopulationCode = "measure-observation"
)

// Scoring names a measure's aggregation method.
type Scoring string

const (
	Proportion         Scoring = "proportion"
	Ratio              Scoring = "ratio"
	ContinuousVariable Scoring = "continuous-variable"
	Cohort             Scoring = "cohort"
)

// Definition describes one measure: which compiled library defines its populations, which
// ExpressionDef names implement each population role, and which Scoring formula aggregates them.
type Definition struct {
	// URL is the measure's canonical identifier, carried through to Report.Measure.
	URL string
	// Library is the library whose ExpressionDefs compute the population definitions and
	// stratifiers. It and every library it includes must be passed to Evaluator via Libs.
	Library result.LibKey
	// Scoring selects the aggregation formula applied in Aggregate.
	Scoring Scoring
	// Populations maps each population role this measure defines to the ExpressionDef name that
	// computes it. Not every role is required; an absent role contributes a zero count.
	Populations map[PopulationCode]string
	// Stratifiers maps a caller-chosen stratifier name to the ExpressionDef name whose value
	// becomes the stratum key for that stratifier.
	Stratifiers map[string]string
}

// Evaluator runs a Definition's library against a set of patients.
type Evaluator struct {
	Libs   []*model.Library
	Config interpreter.Config
	Def    Definition
}

// PatientResult holds one patient's population membership and stratifier values.
type PatientResult struct {
	Patient     *resourcewrapper.Resource
	Populations map[PopulationCode]bool
	Strata      map[string]result.Value
}

// Evaluate runs the measure's library once per patient (each with ContextResource set to that
// patient), reads off every configured population and stratifier, and aggregates the results into
// a Report per Def.Scoring.
func (e *Evaluator) Evaluate(ctx context.Context, patients []*resourcewrapper.Resource) (*Report, error) {
	perPatient := make([]PatientResult, 0, len(patients))
	for _, patient := range patients {
		pr, err := e.evaluatePatient(ctx, patient)
		if err != nil {
			return nil, fmt.Errorf("measure: evaluating patient %s: %w", patient.ResourceID(), err)
		}
		perPatient = append(perPatient, pr)
	}
	return e.aggregate(perPatient), nil
}

func (e *Evaluator) evaluatePatient(ctx context.Context, patient *resourcewrapper.Resource) (PatientResult, error) {
	cfg := e.Config
	cfg.ContextResource = patient
	libs, err := interpreter.Eval(ctx, e.Libs, cfg)
	if err != nil {
		return PatientResult{}, err
	}
	defs, ok := libs[e.Def.Library]
	if !ok {
		return PatientResult{}, fmt.Errorf("measure: library %s produced no results", e.Def.Library)
	}

	pr := PatientResult{
		Patient:     patient,
		Populations: make(map[PopulationCode]bool, len(e.Def.Populations)),
		Strata:      make(map[string]result.Value, len(e.Def.Stratifiers)),
	}
	for code, defName := range e.Def.Populations {
		v, ok := defs[defName]
		if !ok {
			return PatientResult{}, fmt.Errorf("measure: population %q references undefined expression %q", code, defName)
		}
		pr.Populations[code] = truthy(v)
	}
	for name, defName := range e.Def.Stratifiers {
		v, ok := defs[defName]
		if !ok {
			return PatientResult{}, fmt.Errorf("measure: stratifier %q references undefined expression %q", name, defName)
		}
		pr.Strata[name] = v
	}
	return pr, nil
}

// truthy coerces a population definition's result the way spec.md §4.10 requires: a list is
// truthy iff non-empty, Null is always false, any other Value uses its own boolean conversion.
func truthy(v result.Value) bool {
	if result.IsNull(v) {
		return false
	}
	if items, err := result.ToSlice(v); err == nil {
		return len(items) > 0
	}
	b, err := result.ToBool(v)
	if err != nil {
		return false
	}
	return b
}
