package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"debtwatch/src/controller"
	"debtwatch/src/util"
)

func (h *Handler) scanCmd() *cobra.Command {
	var (
		resetState bool
		outputDir  string
		format     string
		jsonOut    bool
		timeout    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "scan [path]",
		Short: "Scan a codebase and reconcile findings against prior state",
		Long: "Runs the full pipeline: extract, detect, assign identities, reconcile\n" +
			"against persisted state, score, and report.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := rootArg(args, 0)
			util.Info("Scanning %s (timeout: %v)", root, timeout)

			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()

			scanCtrl := controller.NewScanController(h.cfg)
			rep, err := scanCtrl.Scan(ctx, controller.ScanRequest{
				Root:       root,
				Language:   h.language(),
				ResetState: resetState,
			})
			if err != nil {
				util.Error("Scan failed: %v", err)
				return err
			}

			switch {
			case outputDir != "":
				h.cfg.Output.OutputDir = outputDir
				if format != "" {
					h.cfg.Output.Formats = []string{format}
				}
				reportCtrl := controller.NewReportController(h.cfg)
				paths, err := reportCtrl.WriteReports(rep)
				if err != nil {
					return fmt.Errorf("generating reports: %w", err)
				}
				for _, path := range paths {
					fmt.Printf("Report written to %s\n", path)
				}
				printScanSummary(os.Stderr, rep)
			case jsonOut:
				if err := printJSON(rep); err != nil {
					return err
				}
				printScanSummary(os.Stderr, rep)
			case format != "":
				reportCtrl := controller.NewReportController(h.cfg)
				output, err := reportCtrl.GenerateToString(rep, format)
				if err != nil {
					return err
				}
				fmt.Println(output)
				printScanSummary(os.Stderr, rep)
			default:
				printScanSummary(os.Stdout, rep)
			}

			if rep.OpenCount > 0 {
				return errFindingsRemain
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&resetState, "reset-state", false, "Discard persisted state and start fresh")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Directory to write report files to")
	cmd.Flags().StringVarP(&format, "format", "f", "", "Report format (json, markdown, sarif)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the scan report as JSON")
	cmd.Flags().DurationVarP(&timeout, "timeout", "t", 10*time.Minute, "Scan timeout")

	return cmd
}
