package model

import "time"

// Tier classifies the effort to address a finding, ascending T1-T4
type Tier int

const (
	Tier1 Tier = 1
	Tier2 Tier = 2
	Tier3 Tier = 3
	Tier4 Tier = 4
)

// Label returns the human-readable effort label for a tier
func (t Tier) Label() string {
	switch t {
	case Tier1:
		return "mechanical cleanup"
	case Tier2:
		return "quick fix"
	case Tier3:
		return "moderate refactor"
	case Tier4:
		return "major refactor"
	default:
		return "unknown"
	}
}

// Status is the lifecycle state of a persisted finding
type Status string

const (
	StatusOpen          Status = "open"
	StatusFixed         Status = "fixed"
	StatusWontfix       Status = "wontfix"
	StatusFalsePositive Status = "false_positive"
)

// ValidStatus reports whether s names a known lifecycle status
func ValidStatus(s string) bool {
	switch Status(s) {
	case StatusOpen, StatusFixed, StatusWontfix, StatusFalsePositive:
		return true
	}
	return false
}

// HumanSet reports whether the status is set by a person rather than by
// reconciliation. Human-set statuses never regress automatically.
func (s Status) HumanSet() bool {
	return s == StatusWontfix || s == StatusFalsePositive
}

// RawFinding is a detector's ephemeral per-scan output, before identity
// assignment. SignatureParts is the location-independent content
// signature the identity engine hashes; it must never contain line
// numbers.
type RawFinding struct {
	Detector       string         `json:"detector"`
	File           string         `json:"file"`
	StartLine      int            `json:"start_line"`
	EndLine        int            `json:"end_line"`
	UnitName       string         `json:"unit_name,omitempty"`
	Tier           Tier           `json:"tier"`
	Message        string         `json:"message"`
	Evidence       map[string]any `json:"evidence,omitempty"`
	SignatureParts []string       `json:"-"`
}

// Finding is the persisted, identity-tracked record of an issue. It is
// owned by the state store and mutated only through reconciliation or
// resolve operations.
type Finding struct {
	ID            string         `json:"id"`
	Detector      string         `json:"detector"`
	Tier          Tier           `json:"tier"`
	File          string         `json:"file"`
	StartLine     int            `json:"start_line"`
	EndLine       int            `json:"end_line"`
	UnitName      string         `json:"unit_name,omitempty"`
	Message       string         `json:"message"`
	Evidence      map[string]any `json:"evidence,omitempty"`
	Status        Status         `json:"status"`
	Note          string         `json:"note,omitempty"`
	FirstSeenScan int            `json:"first_seen_scan"`
	LastSeenScan  int            `json:"last_seen_scan"`
	ReopenCount   int            `json:"reopen_count,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// Clone returns a deep copy of the finding
func (f *Finding) Clone() *Finding {
	c := *f
	if f.Evidence != nil {
		c.Evidence = make(map[string]any, len(f.Evidence))
		for k, v := range f.Evidence {
			c.Evidence[k] = v
		}
	}
	return &c
}
