package ast

// Operation enumerates the binary/unary operators the lowering driver and
// expression evaluator understand. It mirrors the operator set codegen.rs
// matches on: the five arithmetic operators plus the six comparisons.
// Negate and Not only ever appear as unary operators and are rewritten by
// the driver before they reach the evaluator (see visit_unary in
// spec.md's §4.1).
type Operation int

const (
	Add Operation = iota
	Subtract
	Multiply
	Divide
	Modulo

	GreaterThan
	LessThan
	GreaterThanOrEquals
	LessThanOrEquals
	CheckEquals
	NotEquals

	Negate
	Not
)

// IsCompoundAssignable reports whether op is valid as the operator of an
// `x op= e` compound assignment. Anything else reaching OpAssign lowering
// is an internal invariant violation the validator should have caught.
func (op Operation) IsCompoundAssignable() bool {
	switch op {
	case Add, Subtract, Multiply, Divide, Modulo:
		return true
	default:
		return false
	}
}

// IsComparison reports whether op lowers via the subtract-then-range-check
// scheme instead of a single in-place arithmetic primitive.
func (op Operation) IsComparison() bool {
	switch op {
	case GreaterThan, LessThan, GreaterThanOrEquals, LessThanOrEquals, CheckEquals, NotEquals:
		return true
	default:
		return false
	}
}

func (op Operation) String() string {
	switch op {
	case Add:
		return "+"
	case Subtract:
		return "-"
	case Multiply:
		return "*"
	case Divide:
		return "/"
	case Modulo:
		return "%"
	case GreaterThan:
		return ">"
	case LessThan:
		return "<"
	case GreaterThanOrEquals:
		return ">="
	case LessThanOrEquals:
		return "<="
	case CheckEquals:
		return "=="
	case NotEquals:
		return "!="
	case Negate:
		return "-(unary)"
	case Not:
		return "!"
	default:
		return "?"
	}
}
