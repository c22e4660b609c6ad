package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"debtwatch/src/config"
	"debtwatch/src/util"
)

// errFindingsRemain marks a successful run that still surfaced open
// debt. It maps to exit code 1; real failures map to exit code 2.
var errFindingsRemain = errors.New("open findings remain")

// Handler handles CLI commands
type Handler struct {
	cfg        *config.Config
	configPath string
	lang       string
	rootCmd    *cobra.Command
}

// New creates a new CLI handler
func New() *Handler {
	h := &Handler{}
	h.setupCommands()
	return h
}

func (h *Handler) setupCommands() {
	h.rootCmd = &cobra.Command{
		Use:   "debtwatch",
		Short: "Structural technical debt tracker",
		Long: "Scans a codebase for structural debt, tracks each finding across\n" +
			"scans under a stable identity, and scores the repo's health.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return h.loadConfig()
		},
	}

	// Global flags
	h.rootCmd.PersistentFlags().StringVarP(&h.configPath, "config", "c", "",
		"Path to configuration file")
	h.rootCmd.PersistentFlags().StringVarP(&h.lang, "lang", "l", "",
		"Language to analyze (auto, typescript, go)")

	// Add subcommands
	h.rootCmd.AddCommand(h.scanCmd())
	h.rootCmd.AddCommand(h.statusCmd())
	h.rootCmd.AddCommand(h.showCmd())
	h.rootCmd.AddCommand(h.nextCmd())
	h.rootCmd.AddCommand(h.resolveCmd())
	h.rootCmd.AddCommand(h.detectCmd())
	h.rootCmd.AddCommand(h.planCmd())
	h.rootCmd.AddCommand(h.versionCmd())
	h.rootCmd.AddCommand(h.detectorsCmd())
}

func (h *Handler) loadConfig() error {
	loader := config.NewLoader()
	cfg, err := loader.Load(h.configPath)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	h.cfg = cfg

	// Initialize logger from config
	util.SetDefaultLogger(cfg.Logging)
	util.Debug("Configuration loaded successfully")
	util.Debug("Log level set to: %s", cfg.Logging.Level)

	if !cfg.Output.Color {
		color.NoColor = true
	}

	return nil
}

// language returns the flag override or the configured default
func (h *Handler) language() string {
	if h.lang != "" {
		return h.lang
	}
	return h.cfg.Scan.Language
}

// rootArg returns the positional path argument, defaulting to cwd
func rootArg(args []string, idx int) string {
	if len(args) > idx {
		return args[idx]
	}
	return "."
}

// Execute runs the CLI
func (h *Handler) Execute() error {
	return h.rootCmd.Execute()
}

// Run is the main entry point. Exit codes: 0 on success, 1 when open
// findings remain, 2 on any real failure.
func Run() {
	handler := New()
	if err := handler.Execute(); err != nil {
		if errors.Is(err, errFindingsRemain) {
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
}
