package interpreter

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/example/cqlcore/internal/reference"
	"github.com/example/cqlcore/result"
	"github.com/example/cqlcore/types"
)

// registerBuiltins installs the engine's built-in function library: the CQL system-defined math,
// string and aggregate functions not already covered by a dedicated AST node, each resolved by
// operand signature through the same overload matching as a user defined function. MinValue and MaxValue are
// the two named exceptions - the engine resolves those to dedicated model.MinValue/model.MaxValue
// nodes carrying ValueType rather than routing them through this table.
func registerBuiltins(refs *reference.Resolver[*defThunk, *funcDef]) error {
	reg := func(name string, operands []types.IType, fn builtinFunc) error {
		return refs.DefineBuiltinFunc(name, operands, &funcDef{builtin: fn})
	}

	mathFns := []struct {
		name     string
		operands []types.IType
		fn       builtinFunc
	}{
		{"Abs", []types.IType{types.Integer}, builtinAbsInteger},
		{"Abs", []types.IType{types.Decimal}, builtinAbsDecimal},
		{"Ceiling", []types.IType{types.Decimal}, builtinCeiling},
		{"Floor", []types.IType{types.Decimal}, builtinFloor},
		{"Round", []types.IType{types.Decimal}, builtinRound},
		{"Ln", []types.IType{types.Decimal}, builtinLn},
		{"Exp", []types.IType{types.Decimal}, builtinExp},
		{"Log", []types.IType{types.Decimal, types.Decimal}, builtinLog},
		{"Power", []types.IType{types.Integer, types.Integer}, builtinPowerInteger},
		{"Power", []types.IType{types.Decimal, types.Decimal}, builtinPowerDecimal},
		{"Sqrt", []types.IType{types.Decimal}, builtinSqrt},
		{"Truncate", []types.IType{types.Decimal}, builtinTruncate},
		{"Precision", []types.IType{types.Decimal}, builtinPrecisionDecimal},
		{"Precision", []types.IType{types.DateTime}, builtinPrecisionDateTime},
		{"LowBoundary", []types.IType{types.Decimal, types.Integer}, builtinLowBoundary},
		{"HighBoundary", []types.IType{types.Decimal, types.Integer}, builtinHighBoundary},

		{"Upper", []types.IType{types.String}, builtinUpper},
		{"Lower", []types.IType{types.String}, builtinLower},
		{"Length", []types.IType{types.String}, builtinLength},
		{"Substring", []types.IType{types.String, types.Integer}, builtinSubstring2},
		{"Substring", []types.IType{types.String, types.Integer, types.Integer}, builtinSubstring3},
		{"IndexOf", []types.IType{types.String, types.String}, builtinIndexOf},
		{"StartsWith", []types.IType{types.String, types.String}, builtinStartsWith},
		{"EndsWith", []types.IType{types.String, types.String}, builtinEndsWith},
		{"Split", []types.IType{types.String, types.String}, builtinSplit},
		{"Combine", []types.IType{&types.List{ElementType: types.String}}, builtinCombine1},
		{"Combine", []types.IType{&types.List{ElementType: types.String}, types.String}, builtinCombine2},
		{"Matches", []types.IType{types.String, types.String}, builtinMatches},
		{"ReplaceMatches", []types.IType{types.String, types.String, types.String}, builtinReplaceMatches},
		{"Replace", []types.IType{types.String, types.String, types.String}, builtinReplace},
		{"Indexer", []types.IType{types.String, types.Integer}, builtinIndexerString},
		{"PositionOf", []types.IType{types.String, types.String}, builtinPositionOf},
		{"LastPositionOf", []types.IType{types.String, types.String}, builtinLastPositionOf},
		{"Trim", []types.IType{types.String}, builtinTrim},
		{"Contains", []types.IType{types.String, types.String}, builtinStringContains},

		{"Sum", []types.IType{&types.List{ElementType: types.Decimal}}, builtinSumDecimal},
		{"Sum", []types.IType{&types.List{ElementType: types.Integer}}, builtinSumInteger},
		{"Avg", []types.IType{&types.List{ElementType: types.Decimal}}, builtinAvg},
		{"Min", []types.IType{&types.List{ElementType: types.Decimal}}, builtinMin},
		{"Max", []types.IType{&types.List{ElementType: types.Decimal}}, builtinMax},
		{"Median", []types.IType{&types.List{ElementType: types.Decimal}}, builtinMedian},
		{"Mode", []types.IType{&types.List{ElementType: types.Decimal}}, builtinMode},
		{"Product", []types.IType{&types.List{ElementType: types.Decimal}}, builtinProduct},
		{"GeometricMean", []types.IType{&types.List{ElementType: types.Decimal}}, builtinGeometricMean},
		{"Variance", []types.IType{&types.List{ElementType: types.Decimal}}, builtinVariance},
		{"PopulationVariance", []types.IType{&types.List{ElementType: types.Decimal}}, builtinPopulationVariance},
		{"StdDev", []types.IType{&types.List{ElementType: types.Decimal}}, builtinStdDev},
		{"PopulationStdDev", []types.IType{&types.List{ElementType: types.Decimal}}, builtinPopulationStdDev},
		{"AnyTrue", []types.IType{&types.List{ElementType: types.Boolean}}, builtinAnyTrue},
		{"AllFalse", []types.IType{&types.List{ElementType: types.Boolean}}, builtinAllFalse},
		{"AnyFalse", []types.IType{&types.List{ElementType: types.Boolean}}, builtinAnyFalse},
	}
	for _, m := range mathFns {
		if err := reg(m.name, m.operands, m.fn); err != nil {
			return err
		}
	}
	return nil
}

func builtinAbsInteger(terp *interpreter, args []result.Value) (result.Value, error) {
	if result.IsNull(args[0]) {
		return result.New(nil)
	}
	n, err := result.ToInt64(args[0])
	if err != nil {
		return result.Value{}, err
	}
	if n < 0 {
		n = -n
	}
	return result.New(n)
}

func builtinAbsDecimal(terp *interpreter, args []result.Value) (result.Value, error) {
	return decimalUnary(args[0], func(d decimal.Decimal) decimal.Decimal { return d.Abs() })
}

func builtinCeiling(terp *interpreter, args []result.Value) (result.Value, error) {
	if result.IsNull(args[0]) {
		return result.New(nil)
	}
	d, err := result.ToDecimal(args[0])
	if err != nil {
		return result.Value{}, err
	}
	return result.New(d.Ceil().IntPart())
}

func builtinFloor(terp *interpreter, args []result.Value) (result.Value, error) {
	if result.IsNull(args[0]) {
		return result.New(nil)
	}
	d, err := result.ToDecimal(args[0])
	if err != nil {
		return result.Value{}, err
	}
	return result.New(d.Floor().IntPart())
}

func builtinRound(terp *interpreter, args []result.Value) (result.Value, error) {
	return decimalUnary(args[0], func(d decimal.Decimal) decimal.Decimal { return d.Round(0) })
}

func builtinLn(terp *interpreter, args []result.Value) (result.Value, error) {
	return decimalFloatUnary(args[0], math.Log)
}

func builtinExp(terp *interpreter, args []result.Value) (result.Value, error) {
	return decimalFloatUnary(args[0], math.Exp)
}

func builtinLog(terp *interpreter, args []result.Value) (result.Value, error) {
	if result.IsNull(args[0]) || result.IsNull(args[1]) {
		return result.New(nil)
	}
	x, err := result.ToDecimal(args[0])
	if err != nil {
		return result.Value{}, err
	}
	base, err := result.ToDecimal(args[1])
	if err != nil {
		return result.Value{}, err
	}
	v := math.Log(x.InexactFloat64()) / math.Log(base.InexactFloat64())
	return result.New(decimal.NewFromFloat(v))
}

func builtinPowerInteger(terp *interpreter, args []result.Value) (result.Value, error) {
	if result.IsNull(args[0]) || result.IsNull(args[1]) {
		return result.New(nil)
	}
	base, err := result.ToInt64(args[0])
	if err != nil {
		return result.Value{}, err
	}
	exp, err := result.ToInt64(args[1])
	if err != nil {
		return result.Value{}, err
	}
	return result.New(int64(math.Pow(float64(base), float64(exp))))
}

func builtinPowerDecimal(terp *interpreter, args []result.Value) (result.Value, error) {
	if result.IsNull(args[0]) || result.IsNull(args[1]) {
		return result.New(nil)
	}
	base, err := result.ToDecimal(args[0])
	if err != nil {
		return result.Value{}, err
	}
	exp, err := result.ToDecimal(args[1])
	if err != nil {
		return result.Value{}, err
	}
	v := math.Pow(base.InexactFloat64(), exp.InexactFloat64())
	return result.New(decimal.NewFromFloat(v))
}

func builtinSqrt(terp *interpreter, args []result.Value) (result.Value, error) {
	return decimalFloatUnary(args[0], math.Sqrt)
}

func decimalUnary(v result.Value, f func(decimal.Decimal) decimal.Decimal) (result.Value, error) {
	if result.IsNull(v) {
		return result.New(nil)
	}
	d, err := result.ToDecimal(v)
	if err != nil {
		return result.Value{}, err
	}
	return result.New(f(d))
}

func decimalFloatUnary(v result.Value, f func(float64) float64) (result.Value, error) {
	if result.IsNull(v) {
		return result.New(nil)
	}
	d, err := result.ToDecimal(v)
	if err != nil {
		return result.Value{}, err
	}
	return result.New(decimal.NewFromFloat(f(d.InexactFloat64())))
}

func builtinUpper(terp *interpreter, args []result.Value) (result.Value, error) {
	return stringUnary(args[0], strings.ToUpper)
}

func builtinLower(terp *interpreter, args []result.Value) (result.Value, error) {
	return stringUnary(args[0], strings.ToLower)
}

func stringUnary(v result.Value, f func(string) string) (result.Value, error) {
	if result.IsNull(v) {
		return result.New(nil)
	}
	s, err := result.ToString(v)
	if err != nil {
		return result.Value{}, err
	}
	return result.New(f(s))
}

func builtinLength(terp *interpreter, args []result.Value) (result.Value, error) {
	if result.IsNull(args[0]) {
		return result.New(nil)
	}
	s, err := result.ToString(args[0])
	if err != nil {
		return result.Value{}, err
	}
	return result.New(int64(len([]rune(s))))
}

func builtinSubstring2(terp *interpreter, args []result.Value) (result.Value, error) {
	return substring(args[0], args[1], result.Value{})
}

func builtinSubstring3(terp *interpreter, args []result.Value) (result.Value, error) {
	return substring(args[0], args[1], args[2])
}

func substring(sv, startv, lengthv result.Value) (result.Value, error) {
	if result.IsNull(sv) || result.IsNull(startv) {
		return result.New(nil)
	}
	s, err := result.ToString(sv)
	if err != nil {
		return result.Value{}, err
	}
	runes := []rune(s)
	start, err := result.ToInt64(startv)
	if err != nil {
		return result.Value{}, err
	}
	if start < 0 || int(start) > len(runes) {
		return result.New(nil)
	}
	end := int64(len(runes))
	if lengthv.GolangValue() != nil {
		l, err := result.ToInt64(lengthv)
		if err != nil {
			return result.Value{}, err
		}
		if start+l < end {
			end = start + l
		}
	}
	return result.New(string(runes[start:end]))
}

func builtinIndexOf(terp *interpreter, args []result.Value) (result.Value, error) {
	if result.IsNull(args[0]) || result.IsNull(args[1]) {
		return result.New(nil)
	}
	s, err := result.ToString(args[0])
	if err != nil {
		return result.Value{}, err
	}
	substr, err := result.ToString(args[1])
	if err != nil {
		return result.Value{}, err
	}
	return result.New(int64(strings.Index(s, substr)))
}

func builtinStartsWith(terp *interpreter, args []result.Value) (result.Value, error) {
	return stringBinaryPredicate(args[0], args[1], strings.HasPrefix)
}

func builtinEndsWith(terp *interpreter, args []result.Value) (result.Value, error) {
	return stringBinaryPredicate(args[0], args[1], strings.HasSuffix)
}

func stringBinaryPredicate(a, b result.Value, f func(string, string) bool) (result.Value, error) {
	if result.IsNull(a) || result.IsNull(b) {
		return result.New(nil)
	}
	s, err := result.ToString(a)
	if err != nil {
		return result.Value{}, err
	}
	t, err := result.ToString(b)
	if err != nil {
		return result.Value{}, err
	}
	return result.New(f(s, t))
}

func builtinSplit(terp *interpreter, args []result.Value) (result.Value, error) {
	if result.IsNull(args[0]) {
		return result.New(nil)
	}
	s, err := result.ToString(args[0])
	if err != nil {
		return result.Value{}, err
	}
	sep := ","
	if !result.IsNull(args[1]) {
		sep, err = result.ToString(args[1])
		if err != nil {
			return result.Value{}, err
		}
	}
	parts := strings.Split(s, sep)
	vals := make([]result.Value, len(parts))
	for i, p := range parts {
		vals[i], _ = result.New(p)
	}
	return result.New(result.List{Value: vals, StaticType: &types.List{ElementType: types.String}})
}

func aggregateDecimals(v result.Value) ([]decimal.Decimal, error) {
	if result.IsNull(v) {
		return nil, nil
	}
	items, err := result.ToSlice(v)
	if err != nil {
		return nil, err
	}
	out := make([]decimal.Decimal, 0, len(items))
	for _, item := range items {
		if result.IsNull(item) {
			continue
		}
		d, err := result.ToDecimal(item)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func builtinSumDecimal(terp *interpreter, args []result.Value) (result.Value, error) {
	ds, err := aggregateDecimals(args[0])
	if err != nil {
		return result.Value{}, err
	}
	sum := decimal.Zero
	for _, d := range ds {
		sum = sum.Add(d)
	}
	return result.New(sum)
}

func builtinSumInteger(terp *interpreter, args []result.Value) (result.Value, error) {
	if result.IsNull(args[0]) {
		return result.New(int64(0))
	}
	items, err := result.ToSlice(args[0])
	if err != nil {
		return result.Value{}, err
	}
	var sum int64
	for _, item := range items {
		if result.IsNull(item) {
			continue
		}
		n, err := result.ToInt64(item)
		if err != nil {
			return result.Value{}, err
		}
		sum += n
	}
	return result.New(sum)
}

func builtinAvg(terp *interpreter, args []result.Value) (result.Value, error) {
	ds, err := aggregateDecimals(args[0])
	if err != nil {
		return result.Value{}, err
	}
	if len(ds) == 0 {
		return result.New(nil)
	}
	sum := decimal.Zero
	for _, d := range ds {
		sum = sum.Add(d)
	}
	return result.New(sum.Div(decimal.NewFromInt(int64(len(ds)))))
}

func builtinMin(terp *interpreter, args []result.Value) (result.Value, error) {
	ds, err := aggregateDecimals(args[0])
	if err != nil {
		return result.Value{}, err
	}
	if len(ds) == 0 {
		return result.New(nil)
	}
	min := ds[0]
	for _, d := range ds[1:] {
		if d.LessThan(min) {
			min = d
		}
	}
	return result.New(min)
}

func builtinMax(terp *interpreter, args []result.Value) (result.Value, error) {
	ds, err := aggregateDecimals(args[0])
	if err != nil {
		return result.Value{}, err
	}
	if len(ds) == 0 {
		return result.New(nil)
	}
	max := ds[0]
	for _, d := range ds[1:] {
		if d.GreaterThan(max) {
			max = d
		}
	}
	return result.New(max)
}

func builtinTruncate(terp *interpreter, args []result.Value) (result.Value, error) {
	return terp.evalTruncate(args[0])
}

func builtinPrecisionDecimal(terp *interpreter, args []result.Value) (result.Value, error) {
	if result.IsNull(args[0]) {
		return result.New(nil)
	}
	d, err := result.ToDecimal(args[0])
	if err != nil {
		return result.Value{}, err
	}
	scale := -d.Exponent()
	if scale < 0 {
		scale = 0
	}
	return result.New(int64(scale))
}

func builtinPrecisionDateTime(terp *interpreter, args []result.Value) (result.Value, error) {
	if result.IsNull(args[0]) {
		return result.New(nil)
	}
	_, precision, err := asComparableTime(args[0])
	if err != nil {
		return result.Value{}, err
	}
	return result.New(string(precision))
}

// decimalBoundary computes the least (high=false) or greatest (high=true) decimal value consistent
// with argument once its digits are considered significant out to precision decimal places - the
// unstated trailing digits are treated as 0 for the low boundary and 9 for the high boundary.
func decimalBoundary(argument, precisionArg result.Value, high bool) (result.Value, error) {
	if result.IsNull(argument) || result.IsNull(precisionArg) {
		return result.New(nil)
	}
	d, err := result.ToDecimal(argument)
	if err != nil {
		return result.Value{}, err
	}
	precision, err := result.ToInt64(precisionArg)
	if err != nil {
		return result.Value{}, err
	}
	currentScale := int64(-d.Exponent())
	if currentScale < 0 {
		currentScale = 0
	}
	if !high || precision <= currentScale {
		return result.New(d)
	}
	gap := decimal.New(1, int32(-currentScale)).Sub(decimal.New(1, int32(-precision)))
	return result.New(d.Add(gap))
}

func builtinLowBoundary(terp *interpreter, args []result.Value) (result.Value, error) {
	return decimalBoundary(args[0], args[1], false)
}

func builtinHighBoundary(terp *interpreter, args []result.Value) (result.Value, error) {
	return decimalBoundary(args[0], args[1], true)
}

func builtinCombine1(terp *interpreter, args []result.Value) (result.Value, error) {
	return combine(args[0], result.Value{})
}

func builtinCombine2(terp *interpreter, args []result.Value) (result.Value, error) {
	return combine(args[0], args[1])
}

func combine(listv, sepv result.Value) (result.Value, error) {
	if result.IsNull(listv) {
		return result.New(nil)
	}
	items, err := result.ToSlice(listv)
	if err != nil {
		return result.Value{}, err
	}
	sep := ""
	if !result.IsNull(sepv) {
		sep, err = result.ToString(sepv)
		if err != nil {
			return result.Value{}, err
		}
	}
	parts := make([]string, 0, len(items))
	for _, item := range items {
		if result.IsNull(item) {
			continue
		}
		s, err := result.ToString(item)
		if err != nil {
			return result.Value{}, err
		}
		parts = append(parts, s)
	}
	return result.New(strings.Join(parts, sep))
}

func builtinMatches(terp *interpreter, args []result.Value) (result.Value, error) {
	if result.IsNull(args[0]) || result.IsNull(args[1]) {
		return result.New(nil)
	}
	s, err := result.ToString(args[0])
	if err != nil {
		return result.Value{}, err
	}
	pattern, err := result.ToString(args[1])
	if err != nil {
		return result.Value{}, err
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return result.Value{}, err
	}
	return result.New(re.MatchString(s))
}

func builtinReplaceMatches(terp *interpreter, args []result.Value) (result.Value, error) {
	if result.IsNull(args[0]) || result.IsNull(args[1]) || result.IsNull(args[2]) {
		return result.New(nil)
	}
	s, err := result.ToString(args[0])
	if err != nil {
		return result.Value{}, err
	}
	pattern, err := result.ToString(args[1])
	if err != nil {
		return result.Value{}, err
	}
	substitution, err := result.ToString(args[2])
	if err != nil {
		return result.Value{}, err
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return result.Value{}, err
	}
	return result.New(re.ReplaceAllString(s, substitution))
}

func builtinReplace(terp *interpreter, args []result.Value) (result.Value, error) {
	if result.IsNull(args[0]) || result.IsNull(args[1]) || result.IsNull(args[2]) {
		return result.New(nil)
	}
	s, err := result.ToString(args[0])
	if err != nil {
		return result.Value{}, err
	}
	pattern, err := result.ToString(args[1])
	if err != nil {
		return result.Value{}, err
	}
	substitution, err := result.ToString(args[2])
	if err != nil {
		return result.Value{}, err
	}
	return result.New(strings.ReplaceAll(s, pattern, substitution))
}

func builtinIndexerString(terp *interpreter, args []result.Value) (result.Value, error) {
	if result.IsNull(args[0]) || result.IsNull(args[1]) {
		return result.New(nil)
	}
	s, err := result.ToString(args[0])
	if err != nil {
		return result.Value{}, err
	}
	idx, err := result.ToInt64(args[1])
	if err != nil {
		return result.Value{}, err
	}
	runes := []rune(s)
	if idx < 0 || int(idx) >= len(runes) {
		return result.New(nil)
	}
	return result.New(string(runes[idx]))
}

func builtinPositionOf(terp *interpreter, args []result.Value) (result.Value, error) {
	if result.IsNull(args[0]) || result.IsNull(args[1]) {
		return result.New(nil)
	}
	pattern, err := result.ToString(args[0])
	if err != nil {
		return result.Value{}, err
	}
	s, err := result.ToString(args[1])
	if err != nil {
		return result.Value{}, err
	}
	return result.New(int64(strings.Index(s, pattern)))
}

func builtinLastPositionOf(terp *interpreter, args []result.Value) (result.Value, error) {
	if result.IsNull(args[0]) || result.IsNull(args[1]) {
		return result.New(nil)
	}
	pattern, err := result.ToString(args[0])
	if err != nil {
		return result.Value{}, err
	}
	s, err := result.ToString(args[1])
	if err != nil {
		return result.Value{}, err
	}
	return result.New(int64(strings.LastIndex(s, pattern)))
}

func builtinTrim(terp *interpreter, args []result.Value) (result.Value, error) {
	return stringUnary(args[0], strings.TrimSpace)
}

func builtinStringContains(terp *interpreter, args []result.Value) (result.Value, error) {
	return stringBinaryPredicate(args[0], args[1], strings.Contains)
}

func aggregateBooleans(v result.Value) ([]bool, error) {
	if result.IsNull(v) {
		return nil, nil
	}
	items, err := result.ToSlice(v)
	if err != nil {
		return nil, err
	}
	out := make([]bool, 0, len(items))
	for _, item := range items {
		if result.IsNull(item) {
			continue
		}
		b, err := result.ToBool(item)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

func builtinAnyTrue(terp *interpreter, args []result.Value) (result.Value, error) {
	bs, err := aggregateBooleans(args[0])
	if err != nil {
		return result.Value{}, err
	}
	for _, b := range bs {
		if b {
			return result.New(true)
		}
	}
	return result.New(false)
}

func builtinAllFalse(terp *interpreter, args []result.Value) (result.Value, error) {
	bs, err := aggregateBooleans(args[0])
	if err != nil {
		return result.Value{}, err
	}
	for _, b := range bs {
		if b {
			return result.New(false)
		}
	}
	return result.New(true)
}

func builtinAnyFalse(terp *interpreter, args []result.Value) (result.Value, error) {
	bs, err := aggregateBooleans(args[0])
	if err != nil {
		return result.Value{}, err
	}
	for _, b := range bs {
		if !b {
			return result.New(true)
		}
	}
	return result.New(false)
}

func builtinProduct(terp *interpreter, args []result.Value) (result.Value, error) {
	ds, err := aggregateDecimals(args[0])
	if err != nil {
		return result.Value{}, err
	}
	if len(ds) == 0 {
		return result.New(nil)
	}
	product := decimal.NewFromInt(1)
	for _, d := range ds {
		product = product.Mul(d)
	}
	return result.New(product)
}

func builtinGeometricMean(terp *interpreter, args []result.Value) (result.Value, error) {
	ds, err := aggregateDecimals(args[0])
	if err != nil {
		return result.Value{}, err
	}
	if len(ds) == 0 {
		return result.New(nil)
	}
	logSum := 0.0
	for _, d := range ds {
		f := d.InexactFloat64()
		if f <= 0 {
			return result.New(nil)
		}
		logSum += math.Log(f)
	}
	return result.New(decimal.NewFromFloat(math.Exp(logSum / float64(len(ds)))))
}

// variance computes the sum of squared deviations from the mean of ds, divided by sampleAdjust
// fewer terms than the count - len(ds)-1 for the sample variance, len(ds) for the population
// variance.
func variance(ds []decimal.Decimal, sampleAdjust int) (decimal.Decimal, bool) {
	n := len(ds)
	if n-sampleAdjust <= 0 {
		return decimal.Decimal{}, false
	}
	sum := decimal.Zero
	for _, d := range ds {
		sum = sum.Add(d)
	}
	mean := sum.Div(decimal.NewFromInt(int64(n)))
	sqSum := decimal.Zero
	for _, d := range ds {
		diff := d.Sub(mean)
		sqSum = sqSum.Add(diff.Mul(diff))
	}
	return sqSum.Div(decimal.NewFromInt(int64(n - sampleAdjust))), true
}

func builtinVariance(terp *interpreter, args []result.Value) (result.Value, error) {
	ds, err := aggregateDecimals(args[0])
	if err != nil {
		return result.Value{}, err
	}
	v, ok := variance(ds, 1)
	if !ok {
		return result.New(nil)
	}
	return result.New(v)
}

func builtinPopulationVariance(terp *interpreter, args []result.Value) (result.Value, error) {
	ds, err := aggregateDecimals(args[0])
	if err != nil {
		return result.Value{}, err
	}
	v, ok := variance(ds, 0)
	if !ok {
		return result.New(nil)
	}
	return result.New(v)
}

func builtinStdDev(terp *interpreter, args []result.Value) (result.Value, error) {
	ds, err := aggregateDecimals(args[0])
	if err != nil {
		return result.Value{}, err
	}
	v, ok := variance(ds, 1)
	if !ok {
		return result.New(nil)
	}
	return result.New(decimal.NewFromFloat(math.Sqrt(v.InexactFloat64())))
}

func builtinPopulationStdDev(terp *interpreter, args []result.Value) (result.Value, error) {
	ds, err := aggregateDecimals(args[0])
	if err != nil {
		return result.Value{}, err
	}
	v, ok := variance(ds, 0)
	if !ok {
		return result.New(nil)
	}
	return result.New(decimal.NewFromFloat(math.Sqrt(v.InexactFloat64())))
}

func builtinMode(terp *interpreter, args []result.Value) (result.Value, error) {
	ds, err := aggregateDecimals(args[0])
	if err != nil {
		return result.Value{}, err
	}
	if len(ds) == 0 {
		return result.New(nil)
	}
	sort.Slice(ds, func(i, j int) bool { return ds[i].LessThan(ds[j]) })
	best, bestCount := ds[0], 1
	runStart := 0
	for i := 1; i <= len(ds); i++ {
		if i < len(ds) && ds[i].Equal(ds[runStart]) {
			continue
		}
		if count := i - runStart; count > bestCount {
			best, bestCount = ds[runStart], count
		}
		runStart = i
	}
	return result.New(best)
}

func builtinMedian(terp *interpreter, args []result.Value) (result.Value, error) {
	ds, err := aggregateDecimals(args[0])
	if err != nil {
		return result.Value{}, err
	}
	if len(ds) == 0 {
		return result.New(nil)
	}
	sort.Slice(ds, func(i, j int) bool { return ds[i].LessThan(ds[j]) })
	mid := len(ds) / 2
	if len(ds)%2 == 1 {
		return result.New(ds[mid])
	}
	return result.New(ds[mid-1].Add(ds[mid]).Div(decimal.NewFromInt(2)))
}
