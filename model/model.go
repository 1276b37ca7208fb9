// Package model provides an ELM-like intermediate representation of CQL expressions. Nodes are
// produced by a library resolver's compile hook and consumed by the interpreter; this package has
// no knowledge of concrete syntax or grammar.
package model

import (
	"github.com/example/cqlcore/types"
	"github.com/kylelemons/godebug/pretty"
)

// Library represents a single compiled CQL library, typically compiled from one CQL source file.
type Library struct {
	Identifier  *LibraryIdentifier
	Usings      []*Using
	Includes    []*Include
	Parameters  []*ParameterDef
	CodeSystems []*CodeSystemDef
	Concepts    []*ConceptDef
	Valuesets   []*ValuesetDef
	Codes       []*CodeDef
	Statements  *Statements
}

// String returns a pretty printed representation of the Library, useful for debugging.
func (l *Library) String() string {
	return pretty.Sprint(l)
}

// IElement is implemented by every node in the model.
type IElement interface {
	Row() int
	Col() int
	GetResultType() types.IType
}

// Element is the base embedded in every model node.
type Element struct {
	ResultType types.IType
	row, col   int
}

// Row returns the element's row in the source the library was compiled from, or 0 if unknown.
func (e *Element) Row() int { return e.row }

// Col returns the element's column in the source the library was compiled from, or 0 if unknown.
func (e *Element) Col() int { return e.col }

// GetResultType returns the type of the result, which may be nil if unknown or not yet resolved.
func (e *Element) GetResultType() types.IType {
	if e == nil {
		return types.Unset
	}
	return e.ResultType
}

// SetLoc records the element's source location. Resolvers call this after constructing a node.
func (e *Element) SetLoc(row, col int) { e.row, e.col = row, col }

// DateTimePrecision is the precision of a Date, DateTime or Time value or operator. It is a string
// rather than an integer so its JSON-marshaled form stays readable.
type DateTimePrecision string

const (
	// UNSETDATETIMEPRECISION represents an unknown or unspecified precision.
	UNSETDATETIMEPRECISION DateTimePrecision = ""
	// YEAR is year precision.
	YEAR DateTimePrecision = "year"
	// MONTH is month precision.
	MONTH DateTimePrecision = "month"
	// WEEK is week precision. Not valid for Date/DateTime values, only for durations.
	WEEK DateTimePrecision = "week"
	// DAY is day precision.
	DAY DateTimePrecision = "day"
	// HOUR is hour precision.
	HOUR DateTimePrecision = "hour"
	// MINUTE is minute precision.
	MINUTE DateTimePrecision = "minute"
	// SECOND is second precision.
	SECOND DateTimePrecision = "second"
	// MILLISECOND is millisecond precision.
	MILLISECOND DateTimePrecision = "millisecond"
)

// AccessLevel is the access modifier for a definition (ExpressionDef, ParameterDef, ValuesetDef,
// ...). Definitions in an unnamed library are always treated as private regardless of this value.
type AccessLevel string

const (
	// Public definitions are visible to libraries that include this one.
	Public AccessLevel = "Public"
	// Private definitions are only visible within the library that declares them.
	Private AccessLevel = "Private"
)

// LibraryIdentifier names and versions a Library.
type LibraryIdentifier struct {
	*Element
	Local     string
	Qualified string
	Version   string
}

// Using declares the data model (and version) a library retrieves resources against, e.g. FHIR.
type Using struct {
	*Element
	LocalIdentifier string
	URI             string
	Version         string
}

// Include declares that a library depends on another, aliased library.
type Include struct {
	*Element
	Identifier *LibraryIdentifier
}

// Statements is the ordered set of definitions a library declares.
type Statements struct {
	Defs []IExpressionDef
}

// ValuesetDef declares a named reference to an external value set.
type ValuesetDef struct {
	*Element
	Name        string
	ID          string
	Version     string
	CodeSystems []*CodeSystemRef
	AccessLevel AccessLevel
}

// CodeSystemDef declares a named reference to an external code system.
type CodeSystemDef struct {
	*Element
	Name        string
	ID          string
	Version     string
	AccessLevel AccessLevel
}

// ConceptDef declares a named group of Codes.
type ConceptDef struct {
	*Element
	Name        string
	Codes       []*CodeRef
	Display     string
	AccessLevel AccessLevel
}

// CodeDef declares a single named Code literal.
type CodeDef struct {
	*Element
	Name        string
	Code        string
	CodeSystem  *CodeSystemRef
	Display     string
	AccessLevel AccessLevel
}

// ParameterDef declares a library parameter with an optional default expression.
type ParameterDef struct {
	*Element
	Name        string
	Default     IExpression
	AccessLevel AccessLevel
}

// IExpressionDef is implemented by every top level definition that evaluates to a value:
// ExpressionDef and FunctionDef.
type IExpressionDef interface {
	IElement
	GetName() string
	GetContext() string
	GetExpression() IExpression
	GetAccessLevel() AccessLevel
}

// ExpressionDef is a named, lazily evaluated CQL definition.
type ExpressionDef struct {
	*Element
	Name        string
	Context     string
	Expression  IExpression
	AccessLevel AccessLevel
}

// GetName returns the definition's name.
func (e *ExpressionDef) GetName() string { return e.Name }

// GetContext returns the evaluation context the definition declares, e.g. "Patient".
func (e *ExpressionDef) GetContext() string { return e.Context }

// GetExpression returns the definition's body.
func (e *ExpressionDef) GetExpression() IExpression { return e.Expression }

// GetAccessLevel returns the definition's access modifier.
func (e *ExpressionDef) GetAccessLevel() AccessLevel { return e.AccessLevel }

// FunctionDef is a named, possibly overloaded CQL function definition.
type FunctionDef struct {
	*ExpressionDef
	Operands []OperandDef
	Fluent   bool
	// External functions have no body; the interpreter returns an error when one is called.
	External bool
}

// OperandDef names and types one operand of a FunctionDef.
type OperandDef struct {
	*Expression
	Name string
}

// IExpression is implemented by every node that can appear as a sub-expression.
type IExpression interface {
	IElement
	isExpression()
}

// Expression is the base embedded in every expression node.
type Expression struct {
	*Element
}

func (e *Expression) isExpression() {}

// Literal is a typed literal value, stored as its source text; the interpreter parses Value
// according to ResultType at evaluation time.
type Literal struct {
	*Expression
	Value string
}

// Interval constructs an Interval<T> value from low/high bounds and inclusivity flags.
type Interval struct {
	*Expression
	Low  IExpression
	High IExpression

	// Either LowClosedExpression or LowInclusive is set.
	LowClosedExpression IExpression
	LowInclusive        bool

	// Either HighClosedExpression or HighInclusive is set.
	HighClosedExpression IExpression
	HighInclusive        bool
}

// Quantity is a decimal value and unit literal.
type Quantity struct {
	*Expression
	Value string
	Unit  string
}

// Ratio is a literal ratio of two quantities.
type Ratio struct {
	*Expression
	Numerator   Quantity
	Denominator Quantity
}

// List constructs a List<T> value from its element expressions.
type List struct {
	*Expression
	List []IExpression
}

// Code is a literal terminology Code.
type Code struct {
	*Expression
	System  *CodeSystemRef
	Code    string
	Display string
}

// Concept is a literal Concept grouping one or more codes.
type Concept struct {
	*Expression
	Codes   []IExpression
	Display string
}

// Tuple constructs a Tuple value from named element expressions.
type Tuple struct {
	*Expression
	Elements []*TupleElement
}

// TupleElement is one named value of a Tuple.
type TupleElement struct {
	Name  string
	Value IExpression
}

// Instance constructs a value of a named data model class from named element expressions.
type Instance struct {
	*Expression
	ClassType types.IType
	Elements  []*InstanceElement
}

// InstanceElement is one named value of an Instance.
type InstanceElement struct {
	Name  string
	Value IExpression
}

// MessageSeverity controls how the Message operator reports its Message text.
type MessageSeverity string

const (
	// MessageSeverityMessage logs at an informational level and does not affect control flow.
	MessageSeverityMessage MessageSeverity = "Message"
	// MessageSeverityTrace logs at a trace level and does not affect control flow.
	MessageSeverityTrace MessageSeverity = "Trace"
	// MessageSeverityWarning logs at a warning level and does not affect control flow.
	MessageSeverityWarning MessageSeverity = "Warning"
	// MessageSeverityError aborts evaluation of the enclosing expression with an error.
	MessageSeverityError MessageSeverity = "Error"
)

// Message conditionally logs (or raises) diagnostic text while passing Source through unchanged.
type Message struct {
	*Expression
	Source    IExpression
	Condition IExpression
	Code      IExpression
	Severity  IExpression
	Message   IExpression
}

// SortDirection controls ascending vs descending ordering in a SortClause.
type SortDirection string

const (
	// ASCENDING sorts in ascending order. This is the default.
	ASCENDING SortDirection = "ASC"
	// DESCENDING sorts in descending order.
	DESCENDING SortDirection = "DESC"
)

// Query is the query expression: a cross product of sources followed by let, with/without,
// where, one of aggregate or return, and sort clauses, in that evaluation order.
type Query struct {
	*Expression
	Source       []*AliasedSource
	Let          []*LetClause
	Relationship []IRelationshipClause
	Where        IExpression
	Sort         *SortClause
	// Only one of Aggregate or Return may be set.
	Aggregate *AggregateClause
	Return    *ReturnClause
}

// AliasedSource is one source of a query's cross product, aliased for reference by later clauses.
type AliasedSource struct {
	*Expression
	Alias  string
	Source IExpression
}

// LetClause binds Identifier to Expression, evaluated once per row of the source cross product.
type LetClause struct {
	*Element
	Expression IExpression
	Identifier string
}

// IRelationshipClause is implemented by With and Without.
type IRelationshipClause interface {
	IElement
	GetExpression() IExpression
	GetAlias() string
	GetSuchThat() IExpression
	isRelationshipClause()
}

// RelationshipClause is the base for With and Without: a semi-join (or anti-join) against
// Expression, aliased as Alias, filtered by SuchThat.
type RelationshipClause struct {
	*Element
	Expression IExpression
	Alias      string
	SuchThat   IExpression
}

// GetExpression returns the relationship's source expression.
func (r *RelationshipClause) GetExpression() IExpression { return r.Expression }

// GetAlias returns the relationship's alias.
func (r *RelationshipClause) GetAlias() string { return r.Alias }

// GetSuchThat returns the relationship's such-that condition.
func (r *RelationshipClause) GetSuchThat() IExpression { return r.SuchThat }

func (r *RelationshipClause) isRelationshipClause() {}

// With keeps rows that have at least one matching related row.
type With struct{ *RelationshipClause }

// Without keeps rows that have no matching related row.
type Without struct{ *RelationshipClause }

// SortClause orders the query's result rows.
type SortClause struct {
	*Element
	ByItems []ISortByItem
}

// ISortByItem is implemented by SortByItem (sort by the row value itself) and SortByColumn
// (sort by a named property of the row value).
type ISortByItem interface {
	IElement
	GetDirection() SortDirection
	isSortByItem()
}

// SortByItem sorts by the row value itself.
type SortByItem struct {
	*Element
	Direction SortDirection
}

// GetDirection returns the sort direction.
func (s *SortByItem) GetDirection() SortDirection { return s.Direction }

func (s *SortByItem) isSortByItem() {}

// SortByColumn sorts by a named property path of the row value.
type SortByColumn struct {
	*SortByItem
	Path string
}

// AggregateClause folds the query's rows into a single value, seeded with Starting and bound to
// Identifier on each iteration.
type AggregateClause struct {
	*Element
	Expression IExpression
	Starting   IExpression
	Identifier string
	Distinct   bool
}

// ReturnClause projects each row of the query through Expression.
type ReturnClause struct {
	*Element
	Expression IExpression
	Distinct   bool
}

// Property navigates from Source along Path, following the path navigation rules of the active
// data model for Resource-typed sources and struct field access otherwise.
type Property struct {
	*Expression
	Source IExpression
	Path   string
}

// Retrieve is a [DataType: Codes] or [DataType] retrieve expression, resolved by the active
// DataSource.
type Retrieve struct {
	*Expression
	DataType     string
	TemplateID   string
	CodeProperty string
	// Codes is an expression that evaluates to a list of Code or Concept values, or nil to
	// retrieve every resource of DataType.
	Codes IExpression
}

// Case is a searched or comparand CASE expression.
type Case struct {
	*Expression
	// Comparand, if set, is compared for equality against each CaseItem's When. If unset, each
	// When must evaluate to a Boolean.
	Comparand IExpression
	CaseItem  []*CaseItem
	// Else is always set; a CASE with no explicit else branch has an inserted null literal.
	Else IExpression
}

// CaseItem is one branch of a Case.
type CaseItem struct {
	*Element
	When IExpression
	Then IExpression
}

// IfThenElse evaluates Condition and returns Then or Else. A null Condition is treated as false.
type IfThenElse struct {
	*Expression
	Condition IExpression
	Then      IExpression
	Else      IExpression
}

// MaxValue returns the maximum representable value of ValueType.
type MaxValue struct {
	*Expression
	ValueType types.IType
}

// MinValue returns the minimum representable value of ValueType.
type MinValue struct {
	*Expression
	ValueType types.IType
}

// IUnaryExpression is implemented by every expression with exactly one operand.
type IUnaryExpression interface {
	IExpression
	GetName() string
	GetOperand() IExpression
	SetOperand(IExpression)
	isUnaryExpression()
}

// UnaryExpression is the base for every expression with exactly one operand.
type UnaryExpression struct {
	*Expression
	Operand IExpression
}

// GetOperand returns the UnaryExpression's operand.
func (u *UnaryExpression) GetOperand() IExpression { return u.Operand }

// SetOperand sets the UnaryExpression's operand.
func (u *UnaryExpression) SetOperand(o IExpression) { u.Operand = o }

func (u *UnaryExpression) isUnaryExpression() {}

// As is a type cast: it fails evaluation if Operand is not ResultType or a subtype of it.
type As struct{ *UnaryExpression }

func (a *As) GetName() string { return "As" }

// Is tests whether Operand is of a given type.
type Is struct {
	*UnaryExpression
	// IsType is the type being tested for. It is carried separately from ResultType, which is
	// always System.Boolean for this node.
	IsType types.IType
}

func (i *Is) GetName() string { return "Is" }

// Negate arithmetically negates Operand.
type Negate struct{ *UnaryExpression }

func (n *Negate) GetName() string { return "Negate" }

// Truncate discards the fractional part of a Decimal or Quantity.
type Truncate struct{ *UnaryExpression }

func (t *Truncate) GetName() string { return "Truncate" }

// Exists is true if Operand is a non-empty, non-null list.
type Exists struct{ *UnaryExpression }

func (e *Exists) GetName() string { return "Exists" }

// Not inverts a three-valued Boolean.
type Not struct{ *UnaryExpression }

func (n *Not) GetName() string { return "Not" }

// First returns the first element of a list.
type First struct{ *UnaryExpression }

func (f *First) GetName() string { return "First" }

// Last returns the last element of a list.
type Last struct{ *UnaryExpression }

func (l *Last) GetName() string { return "Last" }

// SingletonFrom returns the single element of a zero-or-one-element list, or null, erroring if
// the list has more than one element.
type SingletonFrom struct{ *UnaryExpression }

func (s *SingletonFrom) GetName() string { return "SingletonFrom" }

// Start returns the low boundary of an interval.
type Start struct{ *UnaryExpression }

func (s *Start) GetName() string { return "Start" }

// End returns the high boundary of an interval.
type End struct{ *UnaryExpression }

func (e *End) GetName() string { return "End" }

// Predecessor returns the value immediately preceding Operand.
type Predecessor struct{ *UnaryExpression }

func (p *Predecessor) GetName() string { return "Predecessor" }

// Successor returns the value immediately following Operand.
type Successor struct{ *UnaryExpression }

func (s *Successor) GetName() string { return "Successor" }

// IsNull is true if Operand is null. Unlike most operators this never itself returns null.
type IsNull struct{ *UnaryExpression }

func (i *IsNull) GetName() string { return "IsNull" }

// IsFalse is true if Operand is the Boolean false.
type IsFalse struct{ *UnaryExpression }

func (i *IsFalse) GetName() string { return "IsFalse" }

// IsTrue is true if Operand is the Boolean true.
type IsTrue struct{ *UnaryExpression }

func (i *IsTrue) GetName() string { return "IsTrue" }

// ToBoolean converts Operand to Boolean.
type ToBoolean struct{ *UnaryExpression }

func (t *ToBoolean) GetName() string { return "ToBoolean" }

// ToDateTime converts Operand to DateTime.
type ToDateTime struct{ *UnaryExpression }

func (t *ToDateTime) GetName() string { return "ToDateTime" }

// ToDate converts Operand to Date.
type ToDate struct{ *UnaryExpression }

func (t *ToDate) GetName() string { return "ToDate" }

// ToDecimal converts Operand to Decimal.
type ToDecimal struct{ *UnaryExpression }

func (t *ToDecimal) GetName() string { return "ToDecimal" }

// ToInteger converts Operand to Integer.
type ToInteger struct{ *UnaryExpression }

func (t *ToInteger) GetName() string { return "ToInteger" }

// ToQuantity converts Operand to Quantity.
type ToQuantity struct{ *UnaryExpression }

func (t *ToQuantity) GetName() string { return "ToQuantity" }

// ToConcept converts Operand to Concept.
type ToConcept struct{ *UnaryExpression }

func (t *ToConcept) GetName() string { return "ToConcept" }

// ToString converts Operand to String.
type ToString struct{ *UnaryExpression }

func (t *ToString) GetName() string { return "ToString" }

// ToTime converts Operand to Time.
type ToTime struct{ *UnaryExpression }

func (t *ToTime) GetName() string { return "ToTime" }

// AllTrue is true unless some element of a list of Booleans is false; null elements are ignored,
// and an empty or null list gives true.
type AllTrue struct{ *UnaryExpression }

func (a *AllTrue) GetName() string { return "AllTrue" }

// Count returns the number of non-null elements in Operand.
type Count struct{ *UnaryExpression }

func (c *Count) GetName() string { return "Count" }

// CalculateAge returns the age, at Precision, of a Date/DateTime Operand as of the evaluation
// timestamp.
type CalculateAge struct {
	*UnaryExpression
	Precision DateTimePrecision
}

func (c *CalculateAge) GetName() string { return "CalculateAge" }

// IBinaryExpression is implemented by every expression with exactly two operands.
type IBinaryExpression interface {
	IExpression
	GetName() string
	Left() IExpression
	Right() IExpression
	SetOperands(left, right IExpression)
	isBinaryExpression()
}

// BinaryExpression is the base for every expression with exactly two operands.
type BinaryExpression struct {
	*Expression
	Operands []IExpression
}

// Left returns the first operand, or nil if not set.
func (b *BinaryExpression) Left() IExpression {
	if len(b.Operands) < 1 {
		return nil
	}
	return b.Operands[0]
}

// Right returns the second operand, or nil if not set.
func (b *BinaryExpression) Right() IExpression {
	if len(b.Operands) < 2 {
		return nil
	}
	return b.Operands[1]
}

// SetOperands sets both operands of the BinaryExpression.
func (b *BinaryExpression) SetOperands(left, right IExpression) {
	b.Operands = []IExpression{left, right}
}

func (b *BinaryExpression) isBinaryExpression() {}

// CanConvertQuantity tests whether Left can be converted to the unit named by Right.
type CanConvertQuantity struct{ *BinaryExpression }

func (c *CanConvertQuantity) GetName() string { return "CanConvertQuantity" }

// Equal is three-valued equality.
type Equal struct{ *BinaryExpression }

func (e *Equal) GetName() string { return "Equal" }

// Equivalent is two-valued, null-tolerant equivalence.
type Equivalent struct{ *BinaryExpression }

func (e *Equivalent) GetName() string { return "Equivalent" }

// Less is three-valued ordering.
type Less struct{ *BinaryExpression }

func (l *Less) GetName() string { return "Less" }

// Greater is three-valued ordering.
type Greater struct{ *BinaryExpression }

func (g *Greater) GetName() string { return "Greater" }

// LessOrEqual is three-valued ordering.
type LessOrEqual struct{ *BinaryExpression }

func (l *LessOrEqual) GetName() string { return "LessOrEqual" }

// GreaterOrEqual is three-valued ordering.
type GreaterOrEqual struct{ *BinaryExpression }

func (g *GreaterOrEqual) GetName() string { return "GreaterOrEqual" }

// And is Kleene conjunction.
type And struct{ *BinaryExpression }

func (a *And) GetName() string { return "And" }

// Or is Kleene disjunction.
type Or struct{ *BinaryExpression }

func (o *Or) GetName() string { return "Or" }

// XOr is exclusive or.
type XOr struct{ *BinaryExpression }

func (x *XOr) GetName() string { return "XOr" }

// Implies is Kleene implication.
type Implies struct{ *BinaryExpression }

func (i *Implies) GetName() string { return "Implies" }

// Add is arithmetic addition, also used for Quantity and temporal-plus-duration addition.
type Add struct{ *BinaryExpression }

func (a *Add) GetName() string { return "Add" }

// Subtract is arithmetic subtraction.
type Subtract struct{ *BinaryExpression }

func (s *Subtract) GetName() string { return "Subtract" }

// Multiply is arithmetic multiplication.
type Multiply struct{ *BinaryExpression }

func (m *Multiply) GetName() string { return "Multiply" }

// Divide is arithmetic division.
type Divide struct{ *BinaryExpression }

func (d *Divide) GetName() string { return "Divide" }

// Modulo is arithmetic remainder.
type Modulo struct{ *BinaryExpression }

func (m *Modulo) GetName() string { return "Modulo" }

// TruncatedDivide is integer division.
type TruncatedDivide struct{ *BinaryExpression }

func (t *TruncatedDivide) GetName() string { return "TruncatedDivide" }

// Except returns the elements of Left not present in Right.
type Except struct{ *BinaryExpression }

func (e *Except) GetName() string { return "Except" }

// Intersect returns the elements present in both Left and Right.
type Intersect struct{ *BinaryExpression }

func (i *Intersect) GetName() string { return "Intersect" }

// Union returns the distinct elements present in either Left or Right.
type Union struct{ *BinaryExpression }

func (u *Union) GetName() string { return "Union" }

// BinaryExpressionWithPrecision is a BinaryExpression with an associated temporal precision.
type BinaryExpressionWithPrecision struct {
	*BinaryExpression
	Precision DateTimePrecision
}

// Before is true if Left's interval or point entirely precedes Right's, at Precision.
type Before struct{ *BinaryExpressionWithPrecision }

func (b *Before) GetName() string { return "Before" }

// After is true if Left's interval or point entirely follows Right's, at Precision.
type After struct{ *BinaryExpressionWithPrecision }

func (a *After) GetName() string { return "After" }

// SameOrBefore is true if Left is Before or equal to Right, at Precision.
type SameOrBefore struct{ *BinaryExpressionWithPrecision }

func (s *SameOrBefore) GetName() string { return "SameOrBefore" }

// SameOrAfter is true if Left is After or equal to Right, at Precision.
type SameOrAfter struct{ *BinaryExpressionWithPrecision }

func (s *SameOrAfter) GetName() string { return "SameOrAfter" }

// DifferenceBetween returns the signed number of Precision boundaries crossed between Left and
// Right.
type DifferenceBetween struct{ *BinaryExpressionWithPrecision }

func (d *DifferenceBetween) GetName() string { return "DifferenceBetween" }

// In is true if Left is a member of the interval or list Right, at Precision.
type In struct{ *BinaryExpressionWithPrecision }

func (i *In) GetName() string { return "In" }

// IncludedIn is true if Left's interval is fully contained within Right's, at Precision.
type IncludedIn struct{ *BinaryExpressionWithPrecision }

func (i *IncludedIn) GetName() string { return "IncludedIn" }

// Contains is true if Left's interval or list contains Right, at Precision.
type Contains struct{ *BinaryExpressionWithPrecision }

func (c *Contains) GetName() string { return "Contains" }

// CalculateAgeAt returns the age, at Precision, of Left as of the DateTime Right.
type CalculateAgeAt struct{ *BinaryExpressionWithPrecision }

func (c *CalculateAgeAt) GetName() string { return "CalculateAgeAt" }

// InCodeSystem is true if the Code Left belongs to the CodeSystem Right, resolved through the
// active terminology provider.
type InCodeSystem struct{ *BinaryExpression }

func (i *InCodeSystem) GetName() string { return "InCodeSystem" }

// InValueSet is true if the Code or Concept Left belongs to the ValueSet Right, resolved through
// the active terminology provider.
type InValueSet struct{ *BinaryExpression }

func (i *InValueSet) GetName() string { return "InValueSet" }

// Overlaps is true if Left and Right's intervals share at least one point.
type Overlaps struct{ *BinaryExpressionWithPrecision }

func (o *Overlaps) GetName() string { return "Overlaps" }

// OverlapsBefore is true if Left overlaps Right and Left starts no later than Right.
type OverlapsBefore struct{ *BinaryExpressionWithPrecision }

func (o *OverlapsBefore) GetName() string { return "OverlapsBefore" }

// OverlapsAfter is true if Left overlaps Right and Left ends no earlier than Right.
type OverlapsAfter struct{ *BinaryExpressionWithPrecision }

func (o *OverlapsAfter) GetName() string { return "OverlapsAfter" }

// Meets is true if Left's interval is immediately adjacent to Right's, in either order, with no
// gap and no shared point.
type Meets struct{ *BinaryExpressionWithPrecision }

func (m *Meets) GetName() string { return "Meets" }

// MeetsBefore is true if Left ends immediately before Right begins.
type MeetsBefore struct{ *BinaryExpressionWithPrecision }

func (m *MeetsBefore) GetName() string { return "MeetsBefore" }

// MeetsAfter is true if Left begins immediately after Right ends.
type MeetsAfter struct{ *BinaryExpressionWithPrecision }

func (m *MeetsAfter) GetName() string { return "MeetsAfter" }

// Starts is true if Left and Right begin at the same point and Left ends no later than Right.
type Starts struct{ *BinaryExpressionWithPrecision }

func (s *Starts) GetName() string { return "Starts" }

// Ends is true if Left and Right end at the same point and Left begins no earlier than Right.
type Ends struct{ *BinaryExpressionWithPrecision }

func (e *Ends) GetName() string { return "Ends" }

// Includes is true if Left's interval or list contains every point of Right, at Precision. Unlike
// Contains, Right may itself be an interval or list rather than a single point.
type Includes struct{ *BinaryExpressionWithPrecision }

func (i *Includes) GetName() string { return "Includes" }

// ProperIncludes is true if Left includes Right and the two are not equal.
type ProperIncludes struct{ *BinaryExpressionWithPrecision }

func (p *ProperIncludes) GetName() string { return "ProperIncludes" }

// ProperIncludedIn is true if Left is included in Right and the two are not equal.
type ProperIncludedIn struct{ *BinaryExpressionWithPrecision }

func (p *ProperIncludedIn) GetName() string { return "ProperIncludedIn" }

// Expand enumerates every point of Left's interval (or list of intervals), stepping by the
// Quantity Right names, or by Left's own granule if Right is nil.
type Expand struct{ *BinaryExpression }

func (e *Expand) GetName() string { return "Expand" }

// Width returns the difference between an interval's high and low boundaries.
type Width struct{ *UnaryExpression }

func (w *Width) GetName() string { return "Width" }

// Size returns the count of values an interval spans, including both endpoints.
type Size struct{ *UnaryExpression }

func (s *Size) GetName() string { return "Size" }

// PointFrom returns the sole point of a single-point interval, erroring if Low and High differ.
type PointFrom struct{ *UnaryExpression }

func (p *PointFrom) GetName() string { return "PointFrom" }

// Collapse merges an ordered list of intervals wherever they overlap or meet, returning the
// minimal set of disjoint intervals covering the same points.
type Collapse struct{ *UnaryExpression }

func (c *Collapse) GetName() string { return "Collapse" }

// INaryExpression is implemented by every expression taking any number of operands, including
// zero.
type INaryExpression interface {
	IExpression
	GetName() string
	GetOperands() []IExpression
	SetOperands([]IExpression)
	isNaryExpression()
}

// NaryExpression is the base for every expression taking any number of operands.
type NaryExpression struct {
	*Expression
	Operands []IExpression
}

// GetOperands returns the NaryExpression's operands.
func (n *NaryExpression) GetOperands() []IExpression { return n.Operands }

// SetOperands sets the NaryExpression's operands.
func (n *NaryExpression) SetOperands(ops []IExpression) { n.Operands = ops }

func (n *NaryExpression) isNaryExpression() {}

// Coalesce returns the first non-null operand, or null if all operands are null.
type Coalesce struct{ *NaryExpression }

func (c *Coalesce) GetName() string { return "Coalesce" }

// Concatenate concatenates its String operands, returning null if any operand is null.
type Concatenate struct{ *NaryExpression }

func (c *Concatenate) GetName() string { return "Concatenate" }

// Date constructs a Date value from component operands (year, month, day).
type Date struct{ *NaryExpression }

func (d *Date) GetName() string { return "Date" }

// DateTime constructs a DateTime value from component operands.
type DateTime struct{ *NaryExpression }

func (d *DateTime) GetName() string { return "DateTime" }

// Now returns the evaluation timestamp as a DateTime.
type Now struct{ *NaryExpression }

func (n *Now) GetName() string { return "Now" }

// TimeOfDay returns the time-of-day component of the evaluation timestamp.
type TimeOfDay struct{ *NaryExpression }

func (t *TimeOfDay) GetName() string { return "TimeOfDay" }

// Time constructs a Time value from component operands.
type Time struct{ *NaryExpression }

func (t *Time) GetName() string { return "Time" }

// Today returns the date component of the evaluation timestamp.
type Today struct{ *NaryExpression }

func (t *Today) GetName() string { return "Today" }

// ParameterRef references a ParameterDef, by name, optionally qualified by an included library.
type ParameterRef struct {
	*Expression
	Name        string
	LibraryName string
}

// ValuesetRef references a ValuesetDef, by name, optionally qualified by an included library.
type ValuesetRef struct {
	*Expression
	Name        string
	LibraryName string
}

// CodeSystemRef references a CodeSystemDef, by name, optionally qualified by an included library.
type CodeSystemRef struct {
	*Expression
	Name        string
	LibraryName string
}

// ConceptRef references a ConceptDef, by name, optionally qualified by an included library.
type ConceptRef struct {
	*Expression
	Name        string
	LibraryName string
}

// CodeRef references a CodeDef, by name, optionally qualified by an included library.
type CodeRef struct {
	*Expression
	Name        string
	LibraryName string
}

// ExpressionRef references an ExpressionDef, by name, optionally qualified by an included
// library.
type ExpressionRef struct {
	*Expression
	Name        string
	LibraryName string
}

// FunctionRef invokes a FunctionDef (or a registry function), by name, with the given operand
// expressions, optionally qualified by an included library.
type FunctionRef struct {
	*Expression
	Name        string
	LibraryName string
	Operands    []IExpression
}

// OperandRef references a FunctionDef's OperandDef, by name, from within the function body.
type OperandRef struct {
	*Expression
	Name string
}

// AliasRef references a query's AliasedSource, by alias, from within a later query clause.
type AliasRef struct {
	*Expression
	Name string
}

// QueryLetRef references a query's LetClause binding, by identifier, from within a later query
// clause.
type QueryLetRef struct {
	*Expression
	Name string
}
