package state

import (
	"errors"
	"time"

	"debtwatch/src/model"
)

// ErrNoteRequired marks a wontfix resolution attempted without a note.
// The note is the only durable record of why an issue was dismissed.
var ErrNoteRequired = errors.New("resolving as wontfix requires --note")

// ErrNoMatch marks a resolve pattern that selected no findings
var ErrNoMatch = errors.New("no findings match the pattern")

// ApplyResolution sets a human-chosen status on the given findings.
// It mutates the state in place and returns how many findings changed;
// on any error the state is untouched.
func ApplyResolution(st *model.ScanState, ids []string, status model.Status, note string, now time.Time) (int, error) {
	if status == model.StatusWontfix && note == "" {
		return 0, ErrNoteRequired
	}
	if len(ids) == 0 {
		return 0, ErrNoMatch
	}

	for _, id := range ids {
		if _, ok := st.Findings[id]; !ok {
			return 0, ErrNoMatch
		}
	}
	for _, id := range ids {
		f := st.Findings[id]
		f.Status = status
		if note != "" {
			f.Note = note
		}
		f.UpdatedAt = now
	}
	return len(ids), nil
}
