package config

import "time"

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Agent: AgentConfig{
			Name:        "debtwatch",
			Version:     "1.0.0",
			Description: "Structural technical debt tracker",
		},
		Scan: ScanConfig{
			Language:     "auto",
			IncludeTests: false,
		},
		Concurrency: ConcurrencyConfig{
			ExtractWorkers:       8,
			MaxParallelDetectors: 4,
			DetectorTimeout:      30 * time.Second,
		},
		Detectors: DetectorsConfig{
			FailFast: false,
			Dupes: DupesConfig{
				Enabled:             true,
				ShingleSize:         5,
				SimilarityThreshold: 0.8,
				MinTokens:           40,
				MinLines:            8,
			},
			Cycles: CyclesConfig{
				Enabled:            true,
				SmallCycleMaxFiles: 3,
			},
			Coupling: CouplingConfig{
				Enabled:        true,
				MaxFanIn:       25,
				MaxFanOut:      20,
				HubScoreFactor: 3.0,
			},
			Structure: StructureConfig{
				Enabled:       true,
				MaxUnitLines:  80,
				MaxParams:     5,
				MaxBranches:   12,
				MaxNesting:    4,
				MaxMethods:    20,
				MaxFields:     15,
				MaxClassLines: 300,
				MaxFileLines:  600,
				MaxFileUnits:  25,
				Tier2Band:     1.0,
				Tier3Band:     2.0,
				Tier4Band:     3.0,
			},
			Orphans: OrphansConfig{
				Enabled: true,
				EntryPatterns: []string{
					"main*", "index*", "cmd/**", "*_test*", "**/main.go",
				},
			},
			Naming: NamingConfig{
				Enabled: true,
				GenericNames: []string{
					"data", "info", "util", "utils", "helper", "manager",
					"temp", "stuff", "misc", "obj", "thing",
				},
				MaxNameLength: 45,
			},
			SingleUse: SingleUseConfig{
				Enabled:          true,
				SuppressMinLines: 50,
				SuppressMaxLines: 200,
			},
			Passthrough: PassthroughConfig{
				Enabled: true,
			},
			MixedConcerns: MixedConcernsConfig{
				Enabled:   true,
				MinUnits:  8,
				MinGroups: 4,
			},
		},
		Exclusions: ExclusionsConfig{
			FilePatterns: []string{
				"**/node_modules/**", "**/vendor/**", "**/generated/**",
				"**/dist/**", "**/build/**",
			},
			UnitPatterns: []string{"^Test", "^Mock", "Stub$"},
		},
		State: StateConfig{
			Dir:               ".debtwatch",
			HistoryLimit:      50,
			OnMissingDetector: "freeze",
		},
		Scoring: ScoringConfig{
			TierWeights: map[int]float64{1: 1, 2: 2, 3: 3, 4: 4},
		},
		Output: OutputConfig{
			Formats:   []string{"json"},
			OutputDir: ".",
			MaxItems:  25,
			Color:     true,
		},
		Logging: LoggingConfig{
			Level:            "info",
			Format:           "text",
			IncludeTimestamp: false,
		},
	}
}
