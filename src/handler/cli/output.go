package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"

	"debtwatch/src/model"
)

var (
	tier4Style = color.New(color.FgRed, color.Bold)
	tier3Style = color.New(color.FgYellow, color.Bold)
	tier2Style = color.New(color.FgCyan)
	tier1Style = color.New(color.FgGreen)

	scoreStyle = color.New(color.Bold)
	dimStyle   = color.New(color.Faint)
)

func tierBadge(t model.Tier) string {
	switch t {
	case model.Tier4:
		return tier4Style.Sprint("[T4]")
	case model.Tier3:
		return tier3Style.Sprint("[T3]")
	case model.Tier2:
		return tier2Style.Sprint("[T2]")
	default:
		return tier1Style.Sprint("[T1]")
	}
}

// printJSON writes the structured record for machine consumption
func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

// writeRecord saves a structured record to a file as indented JSON
func writeRecord(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("writing record: %w", err)
	}
	return nil
}

func location(f *model.Finding) string {
	if f.EndLine > f.StartLine {
		return fmt.Sprintf("%s:%d-%d", f.File, f.StartLine, f.EndLine)
	}
	return fmt.Sprintf("%s:%d", f.File, f.StartLine)
}

func printFinding(w io.Writer, f *model.Finding) {
	fmt.Fprintf(w, "  %s %s  %s\n", tierBadge(f.Tier), f.ID, location(f))
	fmt.Fprintf(w, "       %s\n", f.Message)
	if f.Status != model.StatusOpen {
		fmt.Fprintf(w, "       %s\n", dimStyle.Sprintf("status: %s", f.Status))
	}
	if f.Note != "" {
		fmt.Fprintf(w, "       %s\n", dimStyle.Sprintf("note: %s", f.Note))
	}
}

func printFindings(w io.Writer, findings []*model.Finding) {
	for _, f := range findings {
		printFinding(w, f)
	}
}

func printScores(w io.Writer, card model.Scorecard) {
	fmt.Fprintf(w, "  %s   strict %.1f/100\n",
		scoreStyle.Sprintf("weighted %.1f/100", card.Weighted), card.Strict)
}

const summaryTopFindings = 5

func printScanSummary(w io.Writer, rep *model.ScanReport) {
	fmt.Fprintf(w, "Scan #%d (%s): %d files, %d units, %d edges\n",
		rep.Scan, rep.Language, rep.Files, rep.Units, rep.Edges)
	fmt.Fprintf(w, "  new %d  reopened %d  fixed %d  open %d\n",
		rep.Stats.New, rep.Stats.Reopened, rep.Stats.Fixed, rep.OpenCount)
	printScores(w, rep.Score)

	for _, run := range rep.Detectors {
		if run.Error != "" {
			fmt.Fprintf(w, "  detector %s failed: %s\n", run.Name, run.Error)
		}
	}
	if len(rep.Warnings) > 0 {
		fmt.Fprintf(w, "  %d file(s) skipped during extraction\n", len(rep.Warnings))
	}
	if rep.Incomplete {
		fmt.Fprintf(w, "  %s\n", dimStyle.Sprint("results are incomplete"))
	}

	if len(rep.OpenFindings) > 0 {
		fmt.Fprintf(w, "Top open findings:\n")
		top := rep.OpenFindings
		if len(top) > summaryTopFindings {
			top = top[:summaryTopFindings]
		}
		printFindings(w, top)
		if rest := len(rep.OpenFindings) - len(top); rest > 0 {
			fmt.Fprintf(w, "  %s\n", dimStyle.Sprintf("and %d more (use show or next)", rest))
		}
	}
}
