package calculator

// Event is one input to the state machine. Session pipelines and key scripts
// feed Events through Reduce.
type Event interface {
	// Name identifies the event kind in logs, spans and metrics.
	Name() string
	apply(State) State
}

// Reduce applies e to s and returns the resulting state. A nil event leaves s
// unchanged.
func Reduce(s State, e Event) State {
	if e == nil {
		return s
	}
	return e.apply(s)
}

// DigitEvent presses one digit key ('0' to '9').
type DigitEvent struct{ Digit byte }

func (DigitEvent) Name() string { return "digit" }
func (e DigitEvent) apply(s State) State { return s.Digit(e.Digit) }

// DecimalEvent presses the decimal point.
type DecimalEvent struct{}

func (DecimalEvent) Name() string { return "decimal" }
func (DecimalEvent) apply(s State) State { return s.Decimal() }

// OperatorEvent presses an operator key.
type OperatorEvent struct{ Op Operator }

func (OperatorEvent) Name() string { return "operator" }
func (e OperatorEvent) apply(s State) State { return s.PressOperator(e.Op) }

// EqualsEvent evaluates the pending operation.
type EqualsEvent struct{}

func (EqualsEvent) Name() string { return "equals" }
func (EqualsEvent) apply(s State) State { return s.Equals() }

// ClearEvent resets the entry and pending operation.
type ClearEvent struct{}

func (ClearEvent) Name() string { return "clear" }
func (ClearEvent) apply(s State) State { return s.Clear() }

// BeginAIEvent marks an AI request as outstanding.
type BeginAIEvent struct{}

func (BeginAIEvent) Name() string { return "ai_begin" }
func (BeginAIEvent) apply(s State) State { return s.BeginAIRequest() }

// AIResultEvent carries a resolved AI answer back into the pipeline.
type AIResultEvent struct {
	Prompt      string
	Result      string
	Explanation string
}

func (AIResultEvent) Name() string { return "ai_result" }
func (e AIResultEvent) apply(s State) State {
	return s.IngestAIResult(e.Prompt, e.Result, e.Explanation)
}

// AIFailureEvent reports a failed AI request.
type AIFailureEvent struct{ Err error }

func (AIFailureEvent) Name() string { return "ai_failure" }
func (AIFailureEvent) apply(s State) State { return s.FailAIRequest() }

// SelectHistoryEvent loads a history entry onto the display.
type SelectHistoryEvent struct{ Entry string }

func (SelectHistoryEvent) Name() string { return "select_history" }
func (e SelectHistoryEvent) apply(s State) State { return s.SelectHistory(e.Entry) }
