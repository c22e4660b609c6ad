package model

import "time"

// DetectorRun records one detector's execution during a scan
type DetectorRun struct {
	Name       string `json:"name"`
	Findings   int    `json:"findings"`
	DurationMS int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
}

// ReconcileStats summarizes what reconciliation did in one scan
type ReconcileStats struct {
	Observed  int `json:"observed"`
	New       int `json:"new"`
	Reopened  int `json:"reopened"`
	Refreshed int `json:"refreshed"`
	Fixed     int `json:"fixed"`
	Frozen    int `json:"frozen"`
	Merged    int `json:"merged"`
}

// DimensionScore carries the per-detector scoring breakdown
type DimensionScore struct {
	Weighted      float64 `json:"weighted"`
	Strict        float64 `json:"strict"`
	Open          int     `json:"open"`
	Fixed         int     `json:"fixed"`
	Wontfix       int     `json:"wontfix"`
	FalsePositive int     `json:"false_positive"`
}

// TierCounts tallies finding statuses within one tier
type TierCounts struct {
	Open          int `json:"open"`
	Fixed         int `json:"fixed"`
	Wontfix       int `json:"wontfix"`
	FalsePositive int `json:"false_positive"`
}

// Scorecard is the full scoring output: overall weighted and strict
// scores plus per-detector and per-tier breakdowns.
type Scorecard struct {
	Weighted   float64                   `json:"weighted"`
	Strict     float64                   `json:"strict"`
	ByDetector map[string]DimensionScore `json:"by_detector"`
	ByTier     map[Tier]TierCounts       `json:"by_tier"`
}

// ScanReport is the structured result of one scan invocation
type ScanReport struct {
	RunID        string           `json:"run_id"`
	Language     string           `json:"language"`
	Root         string           `json:"root"`
	Scan         int              `json:"scan"`
	StartedAt    time.Time        `json:"started_at"`
	FinishedAt   time.Time        `json:"finished_at"`
	Files        int              `json:"files"`
	Units        int              `json:"units"`
	Edges        int              `json:"edges"`
	Detectors    []DetectorRun    `json:"detectors"`
	Stats        ReconcileStats   `json:"stats"`
	Score        Scorecard        `json:"score"`
	OpenCount    int              `json:"open_count"`
	OpenFindings []*Finding       `json:"open_findings"`
	Warnings     []ExtractWarning `json:"warnings,omitempty"`
	Incomplete   bool             `json:"incomplete,omitempty"`
}

// QueryResult is the machine-readable record emitted by query commands
type QueryResult struct {
	Pattern  string     `json:"pattern,omitempty"`
	Tier     Tier       `json:"tier,omitempty"`
	Status   Status     `json:"status,omitempty"`
	Count    int        `json:"count"`
	Findings []*Finding `json:"findings"`
}

// StatusReport is the structured result of the status command
type StatusReport struct {
	Language   string         `json:"language"`
	Root       string         `json:"root"`
	ScanCount  int            `json:"scan_count"`
	LastRunID  string         `json:"last_run_id,omitempty"`
	LastScanAt time.Time      `json:"last_scan_at"`
	Incomplete bool           `json:"incomplete,omitempty"`
	Score      Scorecard      `json:"score"`
	ByStatus   map[Status]int `json:"by_status"`
	History    []ScanSummary  `json:"history,omitempty"`
}

// PlanGroup is one tier's worth of open findings in a plan
type PlanGroup struct {
	Tier       Tier           `json:"tier"`
	Label      string         `json:"label"`
	Count      int            `json:"count"`
	ByDetector map[string]int `json:"by_detector"`
	Items      []*Finding     `json:"items"`
}

// PlanReport groups open findings by descending tier for an
// orchestrating caller or fixer to work through.
type PlanReport struct {
	GeneratedAt time.Time   `json:"generated_at"`
	Language    string      `json:"language"`
	Root        string      `json:"root"`
	OpenTotal   int         `json:"open_total"`
	Groups      []PlanGroup `json:"groups"`
}
