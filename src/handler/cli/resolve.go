package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"debtwatch/src/controller"
	"debtwatch/src/model"
)

func (h *Handler) resolveCmd() *cobra.Command {
	var (
		note    string
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "resolve <status> <pattern> [path]",
		Short: "Set a lifecycle status on every finding matching a pattern",
		Long: "Marks findings as open, fixed, wontfix, or false_positive. Human\n" +
			"judgments (wontfix, false_positive) survive future scans; wontfix\n" +
			"requires --note explaining the call.",
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl := controller.NewFindingsController(h.cfg)
			res, err := ctrl.Resolve(rootArg(args, 2), h.language(), args[0], args[1], note)
			if err != nil {
				return err
			}

			if jsonOut {
				return printJSON(res)
			}
			fmt.Printf("Resolved %d finding(s) as %s\n", res.Count, res.Status)
			printFindings(os.Stdout, res.Findings)
			return nil
		},
	}

	cmd.Flags().StringVar(&note, "note", "", "Reason for the judgment (required for wontfix)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the resolved findings as JSON")
	return cmd
}

func (h *Handler) detectCmd() *cobra.Command {
	var (
		jsonOut bool
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "detect <detector> [path]",
		Short: "Run one detector without touching persisted state",
		Long: "Extracts the symbol model and runs a single detector, printing its\n" +
			"raw findings. Nothing is read from or written to state; identities\n" +
			"are not assigned.",
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()

			ctrl := controller.NewScanController(h.cfg)
			raws, err := ctrl.Detect(ctx, controller.DetectRequest{
				Root:     rootArg(args, 1),
				Language: h.language(),
				Detector: args[0],
			})
			if err != nil {
				return err
			}

			if jsonOut {
				if err := printJSON(raws); err != nil {
					return err
				}
			} else {
				fmt.Printf("%s: %d finding(s)\n", args[0], len(raws))
				for _, raw := range raws {
					printRawFinding(os.Stdout, raw)
				}
			}

			if len(raws) > 0 {
				return errFindingsRemain
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the raw findings as JSON")
	cmd.Flags().DurationVarP(&timeout, "timeout", "t", 10*time.Minute, "Detection timeout")
	return cmd
}

func printRawFinding(w io.Writer, raw model.RawFinding) {
	loc := fmt.Sprintf("%s:%d", raw.File, raw.StartLine)
	if raw.EndLine > raw.StartLine {
		loc = fmt.Sprintf("%s:%d-%d", raw.File, raw.StartLine, raw.EndLine)
	}
	fmt.Fprintf(w, "  %s %s\n       %s\n", tierBadge(raw.Tier), loc, raw.Message)
}
