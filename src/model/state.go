package model

import (
	"sort"
	"time"
)

// StateVersion is the persisted state format version
const StateVersion = 1

// ScanSummary is one entry in the persisted scan history
type ScanSummary struct {
	Scan       int       `json:"scan"`
	RunID      string    `json:"run_id"`
	At         time.Time `json:"at"`
	New        int       `json:"new"`
	Reopened   int       `json:"reopened"`
	Fixed      int       `json:"fixed"`
	Open       int       `json:"open"`
	Weighted   float64   `json:"weighted"`
	Strict     float64   `json:"strict"`
	Incomplete bool      `json:"incomplete,omitempty"`
}

// ScanState is the durable record of all findings ever seen for one
// language under one root. It is the sole cross-invocation state and is
// never implicitly deleted; individual findings only transition status.
type ScanState struct {
	Version    int                 `json:"version"`
	Language   string              `json:"language"`
	Root       string              `json:"root"`
	ScanCount  int                 `json:"scan_count"`
	LastScanID string              `json:"last_scan_id,omitempty"`
	LastScanAt time.Time           `json:"last_scan_at"`
	Incomplete bool                `json:"incomplete,omitempty"`
	Findings   map[string]*Finding `json:"findings"`
	History    []ScanSummary       `json:"history,omitempty"`
}

// NewScanState creates an empty state for a language under a root
func NewScanState(language, root string) *ScanState {
	return &ScanState{
		Version:  StateVersion,
		Language: language,
		Root:     root,
		Findings: make(map[string]*Finding),
	}
}

// Clone returns a deep copy; reconciliation operates on copies so the
// prior state is never mutated.
func (s *ScanState) Clone() *ScanState {
	c := *s
	c.Findings = make(map[string]*Finding, len(s.Findings))
	for id, f := range s.Findings {
		c.Findings[id] = f.Clone()
	}
	c.History = append([]ScanSummary(nil), s.History...)
	return &c
}

// SortedFindings returns all findings ordered by ID for deterministic
// iteration.
func (s *ScanState) SortedFindings() []*Finding {
	out := make([]*Finding, 0, len(s.Findings))
	for _, f := range s.Findings {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// CountByStatus tallies findings per lifecycle status
func (s *ScanState) CountByStatus() map[Status]int {
	counts := make(map[Status]int)
	for _, f := range s.Findings {
		counts[f.Status]++
	}
	return counts
}

// OpenCount returns the number of open findings
func (s *ScanState) OpenCount() int {
	return s.CountByStatus()[StatusOpen]
}
