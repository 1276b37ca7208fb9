package measure

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/example/cqlcore/result"
)

// ReportType mirrors the MeasureReport.type value set spec.md §6.5 names.
type ReportType string

const (
	Summary     ReportType = "summary"
	SubjectList ReportType = "subject-list"
	Individual  ReportType = "individual"
)

// Population is one named population's count in a Report, following the field naming of
// MeasureReport.group.population in codeninja55-go-radx/fhir/r5/resources/measurereport.go.
type Population struct {
	Code  PopulationCode `json:"code"`
	Count int            `json:"count"`
}

// StratumPopulation repeats a population's count scoped to one stratifier value.
type StratumPopulation struct {
	Code  PopulationCode `json:"code"`
	Count int            `json:"count"`
}

// Stratum is one value of a stratifier together with the population counts restricted to
// patients whose stratifier expression evaluated to that value.
type Stratum struct {
	Value      string              `json:"value"`
	Population []StratumPopulation `json:"population"`
}

// Stratifier groups every Stratum produced for one configured stratifier.
type Stratifier struct {
	Name    string    `json:"code"`
	Stratum []Stratum `json:"stratum"`
}

// Group is a MeasureReport.group: the population counts and optional score for one measure
// (this package produces exactly one Group per Report, as it evaluates a single Definition).
type Group struct {
	Population   []Population `json:"population"`
	MeasureScore *float64     `json:"measureScore,omitempty"`
	Stratifier   []Stratifier `json:"stratifier,omitempty"`
}

// Report is the wire shape of a measure evaluation result, field-named after FHIR's
// MeasureReport resource (measure, status, type, group; stratifiers sit inside each Group). It
// has no date or period field.
type Report struct {
	Measure string     `json:"measure"`
	Status  string     `json:"status"`
	Type    ReportType `json:"type"`
	Group   []Group    `json:"group"`
}

// aggregate computes per-population counts across every patient, scores the result per
// e.Def.Scoring, and repeats the same counts per stratum value for every configured stratifier.
func (e *Evaluator) aggregate(patients []PatientResult) *Report {
	counts := countPopulations(patients)
	for code := range e.Def.Populations {
		if _, ok := counts[code]; !ok {
			counts[code] = 0
		}
	}
	score := e.score(counts)

	group := Group{Population: populationList(counts)}
	if score != nil {
		group.MeasureScore = score
	}
	for name := range e.Def.Stratifiers {
		group.Stratifier = append(group.Stratifier, e.stratify(patients, name))
	}

	return &Report{
		Measure: e.Def.URL,
		Status:  "complete",
		Type:    Summary,
		Group:   []Group{group},
	}
}

func countPopulations(patients []PatientResult) map[PopulationCode]int {
	counts := map[PopulationCode]int{}
	for _, p := range patients {
		for code, member := range p.Populations {
			if member {
				counts[code]++
			}
		}
	}
	return counts
}

func populationList(counts map[PopulationCode]int) []Population {
	// Always report every standard population role the measure references, even when its count
	// is zero, so a consumer sees a complete group shape.
	order := []PopulationCode{
		InitialPopulation, Denominator, DenominatorExclusion, DenominatorException,
		Numerator, NumeratorExclusion, MeasurePopulation, MeasurePopulationExclusion,
		MeasureObservation,
	}
	var out []Population
	for _, code := range order {
		if _, ok := counts[code]; ok {
			out = append(out, Population{Code: code, Count: counts[code]})
		}
	}
	return out
}

// score applies Def.Scoring's formula to the aggregated population counts, each per spec.md
// §4.10's "same skeleton" instruction: a numerator-like count over a denominator-like count,
// rounded to four fractional digits, Null (nil here) when the denominator is non-positive.
func (e *Evaluator) score(counts map[PopulationCode]int) *float64 {
	switch e.Def.Scoring {
	case Proportion:
		numerator := counts[Numerator] - counts[NumeratorExclusion]
		denominator := counts[Denominator] - counts[DenominatorExclusion] - counts[DenominatorException]
		return ratioScore(numerator, denominator)
	case Ratio:
		numerator := counts[Numerator] - counts[NumeratorExclusion]
		denominator := counts[Denominator] - counts[DenominatorExclusion]
		return ratioScore(numerator, denominator)
	case ContinuousVariable:
		numerator := counts[MeasureObservation]
		denominator := counts[MeasurePopulation] - counts[MeasurePopulationExclusion]
		return ratioScore(numerator, denominator)
	case Cohort:
		// Cohort measures report membership counts only; there is no ratio to score.
		return nil
	default:
		return nil
	}
}

func ratioScore(numerator, denominator int) *float64 {
	if denominator <= 0 {
		return nil
	}
	score, _ := decimal.NewFromInt(int64(numerator)).
		DivRound(decimal.NewFromInt(int64(denominator)), 4).
		Float64()
	return &score
}

// stratify partitions patients by the named stratifier's per-patient value and repeats the
// population counts within each partition.
func (e *Evaluator) stratify(patients []PatientResult, name string) Stratifier {
	byValue := map[string][]PatientResult{}
	var order []string
	for _, p := range patients {
		v, ok := p.Strata[name]
		if !ok {
			continue
		}
		key := stratumKey(v)
		if _, seen := byValue[key]; !seen {
			order = append(order, key)
		}
		byValue[key] = append(byValue[key], p)
	}

	strat := Stratifier{Name: name}
	for _, key := range order {
		counts := countPopulations(byValue[key])
		stratum := Stratum{Value: key}
		for code, count := range counts {
			stratum.Population = append(stratum.Population, StratumPopulation{Code: code, Count: count})
		}
		strat.Stratum = append(strat.Stratum, stratum)
	}
	return strat
}

func stratumKey(v result.Value) string {
	if result.IsNull(v) {
		return "null"
	}
	if s, err := result.ToString(v); err == nil {
		return s
	}
	return fmt.Sprintf("%v", v.GolangValue())
}
