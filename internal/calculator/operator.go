package calculator

import (
	"fmt"
	"math"
)

// Operator is a pending binary operation. The zero value means none is pending.
type Operator int

const (
	OpNone Operator = iota
	OpAdd
	OpSubtract
	OpMultiply
	OpDivide
)

// String returns the operator symbol used on the display and in history entries.
func (o Operator) String() string {
	switch o {
	case OpAdd:
		return "+"
	case OpSubtract:
		return "-"
	case OpMultiply:
		return "*"
	case OpDivide:
		return "/"
	default:
		return ""
	}
}

// Name is the lowercase operation name used for metric and span attributes.
func (o Operator) Name() string {
	switch o {
	case OpAdd:
		return "add"
	case OpSubtract:
		return "subtract"
	case OpMultiply:
		return "multiply"
	case OpDivide:
		return "divide"
	default:
		return "none"
	}
}

// ParseOperator accepts the four operator symbols, their typographic aliases
// and the operation names.
func ParseOperator(s string) (Operator, error) {
	switch s {
	case "+", "add":
		return OpAdd, nil
	case "-", "−", "subtract":
		return OpSubtract, nil
	case "*", "x", "×", "multiply":
		return OpMultiply, nil
	case "/", "÷", "divide":
		return OpDivide, nil
	}
	return OpNone, fmt.Errorf("unknown operator %q", s)
}

// Apply performs one IEEE-754 double operation. Division by zero yields NaN
// and OpNone yields right unchanged.
func Apply(left, right float64, op Operator) float64 {
	switch op {
	case OpAdd:
		return left + right
	case OpSubtract:
		return left - right
	case OpMultiply:
		return left * right
	case OpDivide:
		if right == 0 {
			return math.NaN()
		}
		return left / right
	default:
		return right
	}
}

// IsFinite reports whether v is neither NaN nor an infinity.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
