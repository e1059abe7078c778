package calculator

// ApplyRequest is the JSON body for POST /calculator/apply.
type ApplyRequest struct {
	A  float64 `json:"a"`
	B  float64 `json:"b"`
	Op string  `json:"op"` // "+", "-", "*", "/" or the operation name
}

// ApplyResponse is the JSON response for POST /calculator/apply.
type ApplyResponse struct {
	Operation string  `json:"operation"`
	A         float64 `json:"a"`
	B         float64 `json:"b"`
	Result    string  `json:"result"` // formatted as the display would show it
}

// EvaluateRequest is the JSON body for POST /calculator/evaluate.
type EvaluateRequest struct {
	Keys string `json:"keys"` // key script, e.g. "12+7={Escape}"
}

// HistoryEntry is one rendered history line.
type HistoryEntry struct {
	Entry string    `json:"entry"`
	Kind  EntryKind `json:"kind"`
	Value string    `json:"value"`
}

// Snapshot is the rendered form of a State.
type Snapshot struct {
	ID                string         `json:"id,omitempty"`
	Display           string         `json:"display"`
	PreviousValue     *string        `json:"previous_value"`
	Operator          *string        `json:"operator"`
	WaitingForOperand bool           `json:"waiting_for_operand"`
	History           []string       `json:"history"`
	HistoryEntries    []HistoryEntry `json:"history_entries"`
	LastExplanation   *string        `json:"last_explanation"`
	AIProcessing      bool           `json:"ai_processing"`
	Panel             Panel          `json:"panel"`
}

// NewSnapshot renders s with the given open panel.
func NewSnapshot(s State, panel Panel) Snapshot {
	if panel == "" {
		panel = PanelNone
	}
	snap := Snapshot{
		Display:           s.Display,
		WaitingForOperand: s.WaitingForOperand,
		History:           make([]string, 0, len(s.History)),
		HistoryEntries:    make([]HistoryEntry, 0, len(s.History)),
		AIProcessing:      s.AIProcessing,
		Panel:             panel,
	}
	if s.Pending() {
		prev, op := s.PreviousValue, s.Operator.String()
		snap.PreviousValue = &prev
		snap.Operator = &op
	}
	if s.LastExplanation != "" {
		explanation := s.LastExplanation
		snap.LastExplanation = &explanation
	}
	for _, entry := range s.History {
		snap.History = append(snap.History, entry)
		snap.HistoryEntries = append(snap.HistoryEntries, HistoryEntry{
			Entry: entry,
			Kind:  KindOf(entry),
			Value: EntryValue(entry),
		})
	}
	return snap
}
