package session

// DigitRequest is the JSON body for POST /sessions/{id}/digit.
type DigitRequest struct {
	Digit string `json:"digit"` // a single character "0"-"9"
}

// OperatorRequest is the JSON body for POST /sessions/{id}/operator.
type OperatorRequest struct {
	Op string `json:"op"` // "+", "-", "*", "/"
}

// KeysRequest is the JSON body for POST /sessions/{id}/keys.
type KeysRequest struct {
	Keys string `json:"keys"` // key script, e.g. "12+7{Enter}"
}

// SolveRequest is the JSON body for POST /sessions/{id}/solve.
type SolveRequest struct {
	Prompt string `json:"prompt"`
}

// SelectHistoryRequest is the JSON body for POST /sessions/{id}/history/select.
// Either Index (0 is the newest entry) or a literal Entry is given.
type SelectHistoryRequest struct {
	Index *int   `json:"index,omitempty"`
	Entry string `json:"entry,omitempty"`
}

// PanelRequest is the JSON body for POST /sessions/{id}/panel.
type PanelRequest struct {
	Panel string `json:"panel"` // "ai", "history" or "none"
}
