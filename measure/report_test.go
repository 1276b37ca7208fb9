package measure

import (
	"testing"

	"github.com/example/cqlcore/result"
)

// syntheticPatients builds n PatientResults membered in each of the given populations (true for
// every listed code, false for every other standard role), mirroring the cohort sizes from
// spec.md's proportion scoring scenario (S6).
func syntheticPatients(n int, member ...PopulationCode) []PatientResult {
	set := map[PopulationCode]bool{}
	for _, c := range member {
		set[c] = true
	}
	out := make([]PatientResult, n)
	for i := range out {
		pops := make(map[PopulationCode]bool, len(set))
		for c, v := range set {
			pops[c] = v
		}
		out[i] = PatientResult{Populations: pops}
	}
	return out
}

func TestProportionScoring(t *testing.T) {
	// 100 patients: Denominator true in 80, Numerator true in 50, DenominatorExclusion true in 5,
	// DenominatorException true in 5, NumeratorExclusion true in 3.
	// measure_score = (50 - 3) / (80 - 5 - 5) = 47 / 70 = 0.6714.
	var patients []PatientResult
	patients = append(patients, syntheticPatients(3, Denominator, Numerator, NumeratorExclusion)...)
	patients = append(patients, syntheticPatients(47, Denominator, Numerator)...)
	patients = append(patients, syntheticPatients(5, Denominator, DenominatorExclusion)...)
	patients = append(patients, syntheticPatients(5, Denominator, DenominatorException)...)
	patients = append(patients, syntheticPatients(20)...) // not in the denominator at all.

	e := &Evaluator{Def: Definition{Scoring: Proportion}}
	report := e.aggregate(patients)

	group := report.Group[0]
	if group.MeasureScore == nil {
		t.Fatalf("MeasureScore is nil, want 0.6714")
	}
	if got, want := *group.MeasureScore, 0.6714; got != want {
		t.Errorf("MeasureScore = %v, want %v", got, want)
	}

	counts := map[PopulationCode]int{}
	for _, p := range group.Population {
		counts[p.Code] = p.Count
	}
	if counts[Denominator] != 80 {
		t.Errorf("Denominator count = %d, want 80", counts[Denominator])
	}
	if counts[Numerator] != 50 {
		t.Errorf("Numerator count = %d, want 50", counts[Numerator])
	}
}

func TestProportionScoringNullsOnEmptyDenominator(t *testing.T) {
	e := &Evaluator{Def: Definition{Scoring: Proportion}}
	report := e.aggregate(syntheticPatients(10))

	if score := report.Group[0].MeasureScore; score != nil {
		t.Errorf("MeasureScore = %v, want nil (Null) when the denominator is zero", *score)
	}
}

func TestCohortScoringReportsNoScore(t *testing.T) {
	e := &Evaluator{Def: Definition{Scoring: Cohort}}
	report := e.aggregate(syntheticPatients(5, InitialPopulation))

	if score := report.Group[0].MeasureScore; score != nil {
		t.Errorf("MeasureScore = %v, want nil for cohort scoring", *score)
	}
}

func TestStratifyPartitionsByStratumValue(t *testing.T) {
	maleVal, _ := result.New("male")
	femaleVal, _ := result.New("female")

	patients := []PatientResult{
		{Populations: map[PopulationCode]bool{Denominator: true, Numerator: true}, Strata: map[string]result.Value{"sex": maleVal}},
		{Populations: map[PopulationCode]bool{Denominator: true}, Strata: map[string]result.Value{"sex": maleVal}},
		{Populations: map[PopulationCode]bool{Denominator: true, Numerator: true}, Strata: map[string]result.Value{"sex": femaleVal}},
	}
	e := &Evaluator{Def: Definition{Scoring: Proportion, Stratifiers: map[string]string{"sex": "Sex"}}}

	strat := e.stratify(patients, "sex")
	if len(strat.Stratum) != 2 {
		t.Fatalf("got %d strata, want 2 (male, female)", len(strat.Stratum))
	}

	byValue := map[string]Stratum{}
	for _, s := range strat.Stratum {
		byValue[s.Value] = s
	}
	for _, code := range []string{"male", "female"} {
		if _, ok := byValue[code]; !ok {
			t.Errorf("missing stratum for %q", code)
		}
	}
}

func TestTruthyCoercion(t *testing.T) {
	nullVal, _ := result.New(nil)
	trueVal, _ := result.New(true)
	falseVal, _ := result.New(false)
	emptyList, _ := result.New(result.List{})
	nonEmptyList, _ := result.New(result.List{Value: []result.Value{trueVal}})

	tests := []struct {
		name string
		v    result.Value
		want bool
	}{
		{"null is false", nullVal, false},
		{"true value", trueVal, true},
		{"false value", falseVal, false},
		{"empty list is false", emptyList, false},
		{"non-empty list is true", nonEmptyList, true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := truthy(test.v); got != test.want {
				t.Errorf("truthy(%v) = %v, want %v", test.v, got, test.want)
			}
		})
	}
}
