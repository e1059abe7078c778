package calculator

import (
	"strings"
)

// ErrorDisplay is the display sentinel for a failed calculation or AI request.
const ErrorDisplay = "Error"

// State is a complete calculator snapshot. Every transition returns a new
// State and leaves its receiver untouched.
type State struct {
	Display string
	// PreviousValue is the banked left operand. It is only meaningful while
	// Operator is not OpNone.
	PreviousValue     string
	Operator          Operator
	WaitingForOperand bool
	History           History
	LastExplanation   string
	AIProcessing      bool
}

// New returns the session-start state.
func New() State {
	return State{Display: "0"}
}

// Pending reports whether a binary operation awaits its second operand.
func (s State) Pending() bool {
	return s.Operator != OpNone
}

// IsError reports whether the display shows the error sentinel.
func (s State) IsError() bool {
	return s.Display == ErrorDisplay
}

func (s State) blank() bool {
	return strings.TrimSpace(s.Display) == ""
}

// Digit enters one decimal digit. A lone "0" is replaced rather than extended,
// and the error sentinel or a waiting state starts a fresh number.
func (s State) Digit(d byte) State {
	if s.AIProcessing || d < '0' || d > '9' {
		return s
	}
	if s.IsError() || s.WaitingForOperand {
		s.Display = string(d)
		s.WaitingForOperand = false
		return s
	}
	if s.Display == "0" {
		s.Display = string(d)
		return s
	}
	s.Display += string(d)
	return s
}

// Decimal adds a decimal point, at most once per number.
func (s State) Decimal() State {
	if s.AIProcessing || s.IsError() {
		return s
	}
	if s.WaitingForOperand {
		s.Display = "0."
		s.WaitingForOperand = false
		return s
	}
	if !strings.Contains(s.Display, ".") {
		s.Display += "."
	}
	return s
}

// PressOperator makes op the pending operator. Pressed twice before a second
// operand it replaces the pending one; pressed after a second operand it
// first evaluates the pending operation.
func (s State) PressOperator(op Operator) State {
	if s.AIProcessing || s.IsError() || s.blank() || op == OpNone {
		return s
	}
	if s.Pending() && s.WaitingForOperand {
		s.Operator = op
		return s
	}
	if !s.Pending() {
		s.PreviousValue = s.Display
		s.Operator = op
		s.WaitingForOperand = true
		return s
	}

	s, ok := s.evaluate()
	if !ok {
		return s
	}
	s.PreviousValue = s.Display
	s.Operator = op
	return s
}

// Equals evaluates the pending operation. Without a pending operator it does
// nothing; with no second operand typed the display doubles as the right
// operand, so "5 + =" gives 10.
func (s State) Equals() State {
	if s.AIProcessing || s.IsError() || s.blank() || !s.Pending() {
		return s
	}
	s, ok := s.evaluate()
	if !ok {
		return s
	}
	s.PreviousValue = ""
	s.Operator = OpNone
	return s
}

// evaluate applies the pending operator to PreviousValue and Display,
// records the history entry and leaves the formatted result on the display.
// A non-finite result moves to the error state and reports false.
func (s State) evaluate() (State, bool) {
	result := Apply(ParseOperand(s.PreviousValue), ParseOperand(s.Display), s.Operator)
	if !IsFinite(result) {
		return s.fail(), false
	}

	formatted := FormatResult(result)
	s.History = s.History.Push(calculationEntry(s.PreviousValue, s.Operator, s.Display, formatted))
	s.Display = formatted
	s.WaitingForOperand = true
	return s, true
}

func (s State) fail() State {
	s.Display = ErrorDisplay
	s.PreviousValue = ""
	s.Operator = OpNone
	return s
}

// Clear resets the entry and the pending operation. History survives.
func (s State) Clear() State {
	s.Display = "0"
	s.PreviousValue = ""
	s.Operator = OpNone
	s.WaitingForOperand = false
	s.LastExplanation = ""
	return s
}

// BeginAIRequest freezes arithmetic input until the request resolves.
func (s State) BeginAIRequest() State {
	s.AIProcessing = true
	return s
}

// IngestAIResult shows a resolved AI answer and records the query.
func (s State) IngestAIResult(prompt, result, explanation string) State {
	s.Display = result
	s.LastExplanation = explanation
	s.AIProcessing = false
	s.WaitingForOperand = true
	s.History = s.History.Push(aiEntry(prompt, result))
	return s
}

// FailAIRequest shows the error sentinel after a failed AI request. The
// pending operation and history are kept.
func (s State) FailAIRequest() State {
	s.Display = ErrorDisplay
	s.AIProcessing = false
	return s
}

// SelectHistory loads the value of a history entry onto the display. The
// pending operation is not restored.
func (s State) SelectHistory(entry string) State {
	s.Display = EntryValue(entry)
	s.WaitingForOperand = true
	return s
}
