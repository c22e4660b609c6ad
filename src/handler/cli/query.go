package cli

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"debtwatch/src/controller"
	"debtwatch/src/model"
	"debtwatch/src/service/query"
)

func (h *Handler) statusCmd() *cobra.Command {
	var (
		jsonOut    bool
		recordPath string
	)

	cmd := &cobra.Command{
		Use:   "status [path]",
		Short: "Show debt scores, finding counts, and scan history",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl := controller.NewFindingsController(h.cfg)
			status, err := ctrl.Status(rootArg(args, 0), h.language())
			if err != nil {
				return err
			}

			if recordPath != "" {
				if err := writeRecord(recordPath, status); err != nil {
					return err
				}
			}
			if jsonOut {
				if err := printJSON(status); err != nil {
					return err
				}
			} else {
				printStatus(status)
			}

			if status.ByStatus[model.StatusOpen] > 0 {
				return errFindingsRemain
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the status report as JSON")
	cmd.Flags().StringVarP(&recordPath, "output", "o", "", "Also write the status report to a JSON file")
	return cmd
}

func printStatus(st *model.StatusReport) {
	if st.ScanCount == 0 {
		fmt.Printf("No scans recorded for %s yet (run scan first)\n", st.Language)
		return
	}

	fmt.Printf("%s: %d scan(s), last %s\n", st.Language, st.ScanCount, st.LastScanAt.Format("2006-01-02 15:04"))
	if st.Incomplete {
		fmt.Printf("  %s\n", dimStyle.Sprint("last scan was incomplete"))
	}
	fmt.Printf("  open %d  fixed %d  wontfix %d  false_positive %d\n",
		st.ByStatus[model.StatusOpen], st.ByStatus[model.StatusFixed],
		st.ByStatus[model.StatusWontfix], st.ByStatus[model.StatusFalsePositive])
	printScores(os.Stdout, st.Score)

	for tier := model.Tier4; tier >= model.Tier1; tier-- {
		counts, ok := st.Score.ByTier[tier]
		if !ok {
			continue
		}
		fmt.Printf("  %s %s: %d open, %d fixed\n", tierBadge(tier), tier.Label(), counts.Open, counts.Fixed)
	}

	if len(st.History) > 0 {
		fmt.Println("Recent scans:")
		for _, s := range st.History {
			fmt.Printf("  #%-3d %s  new %d  fixed %d  open %d  weighted %.1f\n",
				s.Scan, s.At.Format("2006-01-02 15:04"), s.New, s.Fixed, s.Open, s.Weighted)
		}
	}
}

func (h *Handler) showCmd() *cobra.Command {
	var (
		tier       int
		status     string
		jsonOut    bool
		recordPath string
	)

	cmd := &cobra.Command{
		Use:   "show <pattern> [path]",
		Short: "List findings matching an ID, detector, file, directory, or glob",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if status != "" && !model.ValidStatus(status) {
				return fmt.Errorf("invalid status %q (want open, fixed, wontfix or false_positive)", status)
			}

			ctrl := controller.NewFindingsController(h.cfg)
			res, err := ctrl.Show(rootArg(args, 1), h.language(), args[0], query.Filter{
				Tier:   model.Tier(tier),
				Status: model.Status(status),
			})
			if err != nil {
				return err
			}

			if recordPath != "" {
				if err := writeRecord(recordPath, res); err != nil {
					return err
				}
			}
			if jsonOut {
				if err := printJSON(res); err != nil {
					return err
				}
			} else {
				fmt.Printf("%d finding(s) match %q\n", res.Count, res.Pattern)
				printFindings(os.Stdout, res.Findings)
			}

			for _, f := range res.Findings {
				if f.Status == model.StatusOpen {
					return errFindingsRemain
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&tier, "tier", 0, "Only findings of this tier (1-4)")
	cmd.Flags().StringVar(&status, "status", "", "Only findings with this status")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the matches as JSON")
	cmd.Flags().StringVarP(&recordPath, "output", "o", "", "Also write the matches to a JSON file")
	return cmd
}

func (h *Handler) nextCmd() *cobra.Command {
	var (
		count      int
		tier       int
		jsonOut    bool
		recordPath string
	)

	cmd := &cobra.Command{
		Use:   "next [path]",
		Short: "Show the open findings to work on first",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl := controller.NewFindingsController(h.cfg)
			res, err := ctrl.Next(rootArg(args, 0), h.language(), count, model.Tier(tier))
			if err != nil {
				return err
			}

			if recordPath != "" {
				if err := writeRecord(recordPath, res); err != nil {
					return err
				}
			}
			if jsonOut {
				if err := printJSON(res); err != nil {
					return err
				}
			} else if res.Count == 0 {
				fmt.Println("Nothing open. Well done.")
			} else {
				fmt.Printf("Next %d finding(s):\n", res.Count)
				printFindings(os.Stdout, res.Findings)
			}

			if res.Count > 0 {
				return errFindingsRemain
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 5, "How many findings to show")
	cmd.Flags().IntVar(&tier, "tier", 0, "Only findings of this tier (1-4)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the findings as JSON")
	cmd.Flags().StringVarP(&recordPath, "output", "o", "", "Also write the findings to a JSON file")
	return cmd
}

func (h *Handler) planCmd() *cobra.Command {
	var (
		jsonOut    bool
		recordPath string
	)

	cmd := &cobra.Command{
		Use:   "plan [path]",
		Short: "Group open findings by tier into a work plan",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl := controller.NewFindingsController(h.cfg)
			plan, err := ctrl.Plan(rootArg(args, 0), h.language())
			if err != nil {
				return err
			}

			if recordPath != "" {
				if err := writeRecord(recordPath, plan); err != nil {
					return err
				}
			}
			if jsonOut {
				if err := printJSON(plan); err != nil {
					return err
				}
			} else {
				printPlan(plan)
			}

			if plan.OpenTotal > 0 {
				return errFindingsRemain
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the plan as JSON")
	cmd.Flags().StringVarP(&recordPath, "output", "o", "", "Also write the plan to a JSON file")
	return cmd
}

func printPlan(plan *model.PlanReport) {
	if plan.OpenTotal == 0 {
		fmt.Println("Nothing open. Well done.")
		return
	}

	fmt.Printf("%d open finding(s) in %s:\n", plan.OpenTotal, plan.Root)
	for _, group := range plan.Groups {
		fmt.Printf("\n%s %s (%d)\n", tierBadge(group.Tier), group.Label, group.Count)
		dets := make([]string, 0, len(group.ByDetector))
		for det := range group.ByDetector {
			dets = append(dets, det)
		}
		sort.Strings(dets)
		for _, det := range dets {
			fmt.Printf("  %s\n", dimStyle.Sprintf("%s: %d", det, group.ByDetector[det]))
		}
		printFindings(os.Stdout, group.Items)
		if rest := group.Count - len(group.Items); rest > 0 {
			fmt.Printf("  %s\n", dimStyle.Sprintf("and %d more", rest))
		}
	}
}
