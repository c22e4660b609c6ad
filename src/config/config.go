package config

import "time"

// Config is the root configuration structure
type Config struct {
	Agent       AgentConfig       `yaml:"agent"`
	Scan        ScanConfig        `yaml:"scan"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	Detectors   DetectorsConfig   `yaml:"detectors"`
	Exclusions  ExclusionsConfig  `yaml:"exclusions"`
	State       StateConfig       `yaml:"state"`
	Scoring     ScoringConfig     `yaml:"scoring"`
	Output      OutputConfig      `yaml:"output"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// AgentConfig contains tool metadata
type AgentConfig struct {
	Name        string `yaml:"name"`
	Version     string `yaml:"version"`
	Description string `yaml:"description"`
}

// ScanConfig controls source discovery and adapter selection
type ScanConfig struct {
	Language     string `yaml:"language"` // auto, typescript, go
	IncludeTests bool   `yaml:"include_tests"`
}

// ConcurrencyConfig contains concurrency settings
type ConcurrencyConfig struct {
	ExtractWorkers       int           `yaml:"extract_workers"`
	MaxParallelDetectors int           `yaml:"max_parallel_detectors"`
	DetectorTimeout      time.Duration `yaml:"detector_timeout"`
}

// DetectorsConfig contains settings for all detectors
type DetectorsConfig struct {
	FailFast      bool                `yaml:"fail_fast"`
	Dupes         DupesConfig         `yaml:"dupes"`
	Cycles        CyclesConfig        `yaml:"cycles"`
	Coupling      CouplingConfig      `yaml:"coupling"`
	Structure     StructureConfig     `yaml:"structure"`
	Orphans       OrphansConfig       `yaml:"orphans"`
	Naming        NamingConfig        `yaml:"naming"`
	SingleUse     SingleUseConfig     `yaml:"single_use"`
	Passthrough   PassthroughConfig   `yaml:"passthrough"`
	MixedConcerns MixedConcernsConfig `yaml:"mixed_concerns"`
}

// DupesConfig contains duplicate detector settings. The similarity
// threshold and shingle size are deliberately tunable; tests pin them
// explicitly rather than relying on defaults.
type DupesConfig struct {
	Enabled             bool    `yaml:"enabled"`
	ShingleSize         int     `yaml:"shingle_size"`
	SimilarityThreshold float64 `yaml:"similarity_threshold"`
	MinTokens           int     `yaml:"min_tokens"`
	MinLines            int     `yaml:"min_lines"`
}

// CyclesConfig contains cycle detector settings
type CyclesConfig struct {
	Enabled            bool `yaml:"enabled"`
	SmallCycleMaxFiles int  `yaml:"small_cycle_max_files"`
}

// CouplingConfig contains coupling detector settings
type CouplingConfig struct {
	Enabled        bool    `yaml:"enabled"`
	MaxFanIn       int     `yaml:"max_fan_in"`
	MaxFanOut      int     `yaml:"max_fan_out"`
	HubScoreFactor float64 `yaml:"hub_score_factor"` // multiple of mean PageRank
}

// StructureConfig contains composite size/complexity detector settings
type StructureConfig struct {
	Enabled       bool    `yaml:"enabled"`
	MaxUnitLines  int     `yaml:"max_unit_lines"`
	MaxParams     int     `yaml:"max_params"`
	MaxBranches   int     `yaml:"max_branches"`
	MaxNesting    int     `yaml:"max_nesting"`
	MaxMethods    int     `yaml:"max_methods"`
	MaxFields     int     `yaml:"max_fields"`
	MaxClassLines int     `yaml:"max_class_lines"`
	MaxFileLines  int     `yaml:"max_file_lines"`
	MaxFileUnits  int     `yaml:"max_file_units"`
	Tier2Band     float64 `yaml:"tier2_band"`
	Tier3Band     float64 `yaml:"tier3_band"`
	Tier4Band     float64 `yaml:"tier4_band"`
}

// OrphansConfig contains dead-file detector settings
type OrphansConfig struct {
	Enabled       bool     `yaml:"enabled"`
	EntryPatterns []string `yaml:"entry_patterns"`
}

// NamingConfig contains naming smell detector settings
type NamingConfig struct {
	Enabled       bool     `yaml:"enabled"`
	GenericNames  []string `yaml:"generic_names"`
	MaxNameLength int      `yaml:"max_name_length"`
}

// SingleUseConfig contains single-use abstraction detector settings
type SingleUseConfig struct {
	Enabled          bool `yaml:"enabled"`
	SuppressMinLines int  `yaml:"suppress_min_lines"`
	SuppressMaxLines int  `yaml:"suppress_max_lines"`
}

// PassthroughConfig contains pass-through wrapper detector settings
type PassthroughConfig struct {
	Enabled bool `yaml:"enabled"`
}

// MixedConcernsConfig contains mixed-concerns detector settings
type MixedConcernsConfig struct {
	Enabled   bool `yaml:"enabled"`
	MinUnits  int  `yaml:"min_units"`
	MinGroups int  `yaml:"min_groups"`
}

// ExclusionsConfig contains exclusion patterns
type ExclusionsConfig struct {
	FilePatterns []string `yaml:"file_patterns"`
	Files        []string `yaml:"files"`
	UnitPatterns []string `yaml:"unit_patterns"`
}

// StateConfig controls the persisted state store
type StateConfig struct {
	Dir               string `yaml:"dir"` // relative to the scanned root
	HistoryLimit      int    `yaml:"history_limit"`
	OnMissingDetector string `yaml:"on_missing_detector"` // freeze, resolve
}

// ScoringConfig contains scoring settings
type ScoringConfig struct {
	TierWeights map[int]float64 `yaml:"tier_weights"`
}

// OutputConfig contains output settings
type OutputConfig struct {
	Formats   []string `yaml:"formats"`
	OutputDir string   `yaml:"output_dir"`
	MaxItems  int      `yaml:"max_items"` // cap on findings listed per plan group / markdown
	Color     bool     `yaml:"color"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level            string `yaml:"level"`
	Format           string `yaml:"format"` // text, json
	File             string `yaml:"file"`
	IncludeTimestamp bool   `yaml:"include_timestamp"`
}
