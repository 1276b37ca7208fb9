// Package convert resolves which declared operand signature ("overload") of a function or
// operator an invocation with a particular set of argument types should bind to, following CQL's
// conversion precedence rules (exact match, subtype, implicit conversion).
package convert

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/example/cqlcore/internal/modelinfo"
	"github.com/example/cqlcore/types"
)

// ErrAmbiguousMatch is returned when two or more overloads were matched with the same score.
var ErrAmbiguousMatch = errors.New("ambiguous match")

// ErrNoMatch is returned when no overloads were matched.
var ErrNoMatch = errors.New("no matching overloads")

// Overload holds a function or operator's declared operand types and the value returned to the
// caller when an invocation matches it, e.g. a func(args []Value) (Value, error) for that arity.
type Overload[F any] struct {
	Operands []types.IType
	Result   F
}

// MatchedOverload is the result of a successful OverloadMatch.
type MatchedOverload[F any] struct {
	Result F
	// Score is the total conversion distance of the match, lower is closer.
	Score int
}

// OverloadMatch picks the overload whose declared operand types are implicitly convertible from
// invoked with the lowest total conversion score, following
// https://cql.hl7.org/03-developersguide.html#conversion-precedence. name is only used in error
// messages.
func OverloadMatch[F any](invoked []types.IType, overloads []Overload[F], reg *modelinfo.Registry, name string) (MatchedOverload[F], error) {
	if len(overloads) == 0 {
		return MatchedOverload[F]{}, fmt.Errorf("could not resolve %s(%s): %w", name, typesToString(invoked), ErrNoMatch)
	}

	ambiguous := false
	minScore := math.MaxInt
	var result MatchedOverload[F]
	for _, overload := range overloads {
		score, matched := scoreOperands(invoked, overload.Operands, reg)
		if !matched {
			continue
		}
		switch {
		case score == minScore:
			ambiguous = true
		case score < minScore:
			ambiguous = false
			minScore = score
			result = MatchedOverload[F]{Result: overload.Result, Score: score}
		}
	}
	if ambiguous {
		return result, fmt.Errorf("%s(%s): %w", name, typesToString(invoked), ErrAmbiguousMatch)
	}
	if minScore == math.MaxInt {
		var available strings.Builder
		for i, o := range overloads {
			if i > 0 {
				available.WriteString(", ")
			}
			available.WriteString(fmt.Sprintf("%s(%s)", name, typesToString(o.Operands)))
		}
		return MatchedOverload[F]{}, fmt.Errorf("could not resolve %s(%s): %w; available overloads: [%s]",
			name, typesToString(invoked), ErrNoMatch, available.String())
	}
	return result, nil
}

// ExactOverloadMatch picks the first overload whose declared operand types are identical to
// invoked. When no overload matches exactly it falls back to OverloadMatch, so an invocation that
// only matches through implicit conversion still resolves. It is used e.g. when resolving a
// FunctionRef against a library's declared FunctionDefs.
func ExactOverloadMatch[F any](invoked []types.IType, overloads []Overload[F], reg *modelinfo.Registry, name string) (MatchedOverload[F], error) {
	for _, overload := range overloads {
		if len(overload.Operands) != len(invoked) {
			continue
		}
		exact := true
		for i, t := range invoked {
			if t == nil || !t.Equal(overload.Operands[i]) {
				exact = false
				break
			}
		}
		if exact {
			return MatchedOverload[F]{Result: overload.Result, Score: 0}, nil
		}
	}
	return OverloadMatch[F](invoked, overloads, reg, name)
}

func scoreOperands(invoked, declared []types.IType, reg *modelinfo.Registry) (int, bool) {
	if len(invoked) != len(declared) {
		return 0, false
	}
	total := 0
	for i := range invoked {
		if invoked[i] == nil {
			// The null literal is compatible with any declared type.
			continue
		}
		s, ok := reg.ConversionScore(invoked[i], declared[i])
		if !ok {
			return 0, false
		}
		total += s
	}
	return total, true
}

func typesToString(ts []types.IType) string {
	parts := make([]string, 0, len(ts))
	for _, t := range ts {
		if t == nil {
			parts = append(parts, "null")
			continue
		}
		parts = append(parts, t.String())
	}
	return strings.Join(parts, ", ")
}
