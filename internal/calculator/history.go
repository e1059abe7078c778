package calculator

import (
	"strings"
)

// HistoryLimit is the number of entries a History keeps.
const HistoryLimit = 5

const aiArrow = "→"

// History is an immutable, most-recent-first log of completed calculations
// and AI queries.
type History []string

// Push returns a new History with entry at index 0, evicting the oldest
// entry once HistoryLimit is reached.
func (h History) Push(entry string) History {
	n := len(h) + 1
	if n > HistoryLimit {
		n = HistoryLimit
	}
	out := make(History, 0, n)
	out = append(out, entry)
	return append(out, h[:n-1]...)
}

// EntryKind classifies a history entry for rendering.
type EntryKind string

const (
	KindCalculation EntryKind = "calculation"
	KindAI          EntryKind = "ai"
)

// KindOf reports whether entry records an AI query or a calculation.
func KindOf(entry string) EntryKind {
	if strings.Contains(entry, aiArrow) {
		return KindAI
	}
	return KindCalculation
}

func calculationEntry(left string, op Operator, right, result string) string {
	return left + " " + op.String() + " " + right + " = " + result
}

func aiEntry(prompt, result string) string {
	return `"` + prompt + `" ` + aiArrow + " " + result
}

// EntryValue extracts the value a history entry loads onto the display: the
// trimmed text after whichever of "=" or "→" occurs last. Entries with
// neither delimiter yield the whole trimmed entry.
func EntryValue(entry string) string {
	cut := -1
	if i := strings.LastIndex(entry, "="); i >= 0 {
		cut = i + 1
	}
	if i := strings.LastIndex(entry, aiArrow); i >= 0 && i+len(aiArrow) > cut {
		cut = i + len(aiArrow)
	}
	if cut < 0 {
		return strings.TrimSpace(entry)
	}
	return strings.TrimSpace(entry[cut:])
}
