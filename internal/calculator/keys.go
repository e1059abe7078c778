package calculator

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Named keys understood by MapKey besides single characters.
const (
	KeyEnter  = "Enter"
	KeyEscape = "Escape"
)

// Panel is the overlay currently covering the keypad.
type Panel string

const (
	PanelNone     Panel = "none"
	PanelAIPrompt Panel = "ai"
	PanelHistory  Panel = "history"
)

// ParsePanel accepts "none", "ai" and "history". The empty string is PanelNone.
func ParsePanel(s string) (Panel, error) {
	switch Panel(strings.ToLower(strings.TrimSpace(s))) {
	case PanelNone, "":
		return PanelNone, nil
	case PanelAIPrompt:
		return PanelAIPrompt, nil
	case PanelHistory:
		return PanelHistory, nil
	}
	return PanelNone, fmt.Errorf("unknown panel %q", s)
}

// KeyAction is what a key press resolves to: a state machine event, a request
// to close the open panel, or nothing.
type KeyAction struct {
	Event      Event
	ClosePanel bool
}

// Ignored reports whether the key had no effect.
func (a KeyAction) Ignored() bool {
	return a.Event == nil && !a.ClosePanel
}

// MapKey resolves a key press given the open panel. Only digits, ".", the four
// operators, Enter, "=" and Escape are bound. While the AI prompt is open only
// Escape is handled, closing it; Escape otherwise closes the open panel or,
// with no panel open, clears.
func MapKey(key string, panel Panel) KeyAction {
	if key == KeyEscape {
		if panel != PanelNone && panel != "" {
			return KeyAction{ClosePanel: true}
		}
		return KeyAction{Event: ClearEvent{}}
	}
	if panel == PanelAIPrompt {
		return KeyAction{}
	}

	switch key {
	case KeyEnter, "=":
		return KeyAction{Event: EqualsEvent{}}
	case ".":
		return KeyAction{Event: DecimalEvent{}}
	case "+", "-", "*", "/":
		op, _ := ParseOperator(key)
		return KeyAction{Event: OperatorEvent{Op: op}}
	}
	if len(key) == 1 && key[0] >= '0' && key[0] <= '9' {
		return KeyAction{Event: DigitEvent{Digit: key[0]}}
	}
	return KeyAction{}
}

// ParseKeys splits a key script into key names. Each character is one key,
// named keys are written in braces ("{Enter}", "{Escape}") and whitespace is
// skipped, so "12 + 7 {Enter}" yields 1, 2, +, 7, Enter.
func ParseKeys(script string) ([]string, error) {
	var keys []string
	rest := script
	for rest != "" {
		r, size := utf8.DecodeRuneInString(rest)

		switch {
		case unicode.IsSpace(r):
			rest = rest[size:]
		case r == '{':
			end := strings.IndexByte(rest, '}')
			if end < 0 {
				return nil, fmt.Errorf("unterminated key name in %q", script)
			}
			name, err := namedKey(rest[1:end])
			if err != nil {
				return nil, err
			}
			keys = append(keys, name)
			rest = rest[end+1:]
		default:
			keys = append(keys, string(r))
			rest = rest[size:]
		}
	}
	return keys, nil
}

func namedKey(name string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "enter", "return":
		return KeyEnter, nil
	case "escape", "esc":
		return KeyEscape, nil
	}
	return "", fmt.Errorf("unknown key name %q", name)
}
