package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (h *Handler) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s %s\n", h.cfg.Agent.Name, h.cfg.Agent.Version)
		},
	}
}

func (h *Handler) detectorsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "detectors",
		Short: "List available detectors",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("Available detectors:")
			fmt.Println("  - dupes          : Duplicate and near-duplicate code clusters")
			fmt.Println("  - cycles         : Dependency cycles between modules")
			fmt.Println("  - coupling       : Hub, sprawling, and choke-point modules")
			fmt.Println("  - structure      : Oversized units, god classes, long files")
			fmt.Println("  - orphans        : Modules nothing imports")
			fmt.Println("  - naming         : Single-char, generic, numbered, run-on names")
			fmt.Println("  - single_use     : Abstractions with exactly one caller")
			fmt.Println("  - passthrough    : Wrappers that only forward their arguments")
			fmt.Println("  - mixed_concerns : Files mixing too many concern groups")
		},
	}
}
