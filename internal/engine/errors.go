package engine

import (
	"errors"
	"strconv"
)

// Structural errors are raised directly to the caller of Sheet.SetCell /
// ClearCell; the sheet is guaranteed unchanged when one of these is
// returned. They are distinct from FormulaError, which is an evaluation-time
// value captured inside a cell rather than raised to a caller.
var (
	// ErrInvalidPosition is returned when a Position fails Valid().
	ErrInvalidPosition = errors.New("invalid cell position")
	// ErrParse is returned when a formula fails to lex or parse.
	ErrParse = errors.New("formula parse error")
	// ErrCircularDependency is returned when committing a formula would
	// introduce a cycle in the reference graph.
	ErrCircularDependency = errors.New("circular dependency")
)

// FormulaErrorKind is the closed set of evaluation-time failures a formula
// can produce. Unlike the structural errors above, a FormulaErrorKind never
// escapes as a Go error from the Sheet and Cell methods — there it is
// captured as the Err field of a CellValue and propagates through any
// formula that references the failing cell. The lower-level Evaluate and
// FormulaAST.Evaluate return it as a FormulaError error value.
type FormulaErrorKind int

const (
	// ErrRef marks a reference to an out-of-bounds or otherwise invalid
	// Position.
	ErrRef FormulaErrorKind = iota
	// ErrValue marks a non-numeric text value used where a number was
	// required.
	ErrValue
	// ErrDiv0 marks division by zero or any other non-finite result
	// (NaN or +/-Inf).
	ErrDiv0
)

// FormulaError wraps a FormulaErrorKind so it satisfies error, letting the
// evaluator propagate it with ordinary Go error-return plumbing.
type FormulaError struct {
	Kind FormulaErrorKind
}

// Error implements the error interface, returning the cell-display spelling.
func (e FormulaError) Error() string {
	switch e.Kind {
	case ErrRef:
		return "#REF!"
	case ErrValue:
		return "#VALUE!"
	case ErrDiv0:
		return "#DIV/0!"
	default:
		return "#ERROR!"
	}
}

// CellValueKind tags the variant held by a CellValue.
type CellValueKind int

const (
	// ValueText marks a CellValue holding raw text.
	ValueText CellValueKind = iota
	// ValueNumber marks a CellValue holding a finite number.
	ValueNumber
	// ValueError marks a CellValue holding a FormulaError.
	ValueError
)

// CellValue is a tagged union of the three things a cell can evaluate to:
// raw text, a finite number, or a FormulaError.
type CellValue struct {
	Kind CellValueKind
	Text string
	Num  float64
	Err  FormulaError
}

// TextValue constructs a CellValue::Text.
func TextValue(s string) CellValue { return CellValue{Kind: ValueText, Text: s} }

// NumberValue constructs a CellValue::Number.
func NumberValue(n float64) CellValue { return CellValue{Kind: ValueNumber, Num: n} }

// ErrorValue constructs a CellValue::Error.
func ErrorValue(e FormulaError) CellValue { return CellValue{Kind: ValueError, Err: e} }

// String renders the value the way Sheet.PrintValues displays it: numbers
// in default decimal form, errors as their spelling, text as its raw
// content.
func (v CellValue) String() string {
	switch v.Kind {
	case ValueNumber:
		return formatNumber(v.Num)
	case ValueError:
		return v.Err.Error()
	default:
		return v.Text
	}
}

// formatNumber renders a finite float64 in the shortest round-tripping
// decimal form, e.g. 7 (not 7.0), 2.5, 1e+21.
func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'g', -1, 64)
}
