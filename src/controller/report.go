package controller

import (
	"debtwatch/src/config"
	"debtwatch/src/model"
	"debtwatch/src/service/report"
	"debtwatch/src/util"
)

// ReportController handles report generation
type ReportController struct {
	cfg *config.Config
}

// NewReportController creates a new report controller
func NewReportController(cfg *config.Config) *ReportController {
	return &ReportController{cfg: cfg}
}

// WriteReports renders the scan report in every configured format and
// writes the files under the output directory.
func (c *ReportController) WriteReports(rep *model.ScanReport) ([]string, error) {
	util.Debug("Generating reports for %d formats: %v", len(c.cfg.Output.Formats), c.cfg.Output.Formats)
	gen := report.NewGenerator(c.cfg.Output)

	var paths []string
	for _, format := range c.cfg.Output.Formats {
		path, err := gen.Write(rep, format, c.cfg.Output.OutputDir)
		if err != nil {
			util.Error("Failed to generate %s report: %v", format, err)
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// GenerateToString renders the scan report in one format to a string
func (c *ReportController) GenerateToString(rep *model.ScanReport, format string) (string, error) {
	return report.NewGenerator(c.cfg.Output).Generate(rep, format)
}
