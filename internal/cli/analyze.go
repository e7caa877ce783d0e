// internal/cli/analyze.go
package vigil

import (
	"encoding/json"
	"fmt"

	"github.com/fatih/color"
	"github.com/jsandlin/vigil/internal/eventlog"
	"github.com/jsandlin/vigil/internal/policy"
	"github.com/jsandlin/vigil/internal/report"
	"github.com/jsandlin/vigil/internal/util"
	"github.com/spf13/cobra"
)

var (
	analyzeJSONOut string
	analyzeHTMLOut string
	analyzeFile    string
)

// analyzeCmd builds an analysis of the latest test run, printing a
// summary and optionally writing JSON or HTML artifacts.
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze the latest test run and report failures",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		if cfg == nil {
			return fmt.Errorf("configuration not loaded")
		}

		opts := eventlog.ParseOptions{ValidateSchema: cfg.ValidateRecords}
		var run *eventlog.TestRunData
		var err error
		if analyzeFile != "" {
			info, findErr := eventlog.FindLogFile(cfg.LogsDirPath(), analyzeFile)
			if findErr != nil {
				return findErr
			}
			run, err = eventlog.ParseFileWith(info.Path, opts)
		} else {
			run, err = eventlog.LoadLatest(cfg.LogsDirPath(), opts)
		}
		if err != nil {
			return err
		}

		table, err := policy.LoadTable(cfg.PolicyTable)
		if err != nil {
			return err
		}

		analysis := report.Build(run, cfg.StrictValidation, table)
		printAnalysis(analysis)

		if analyzeJSONOut != "" {
			payload, err := json.MarshalIndent(analysis, "", "  ")
			if err != nil {
				return err
			}
			if err := util.WriteFile(analyzeJSONOut, payload); err != nil {
				return err
			}
			fmt.Printf("Wrote %s\n", analyzeJSONOut)
		}
		if analyzeHTMLOut != "" {
			html, err := report.RenderHTML(analysis)
			if err != nil {
				return err
			}
			if err := util.WriteFile(analyzeHTMLOut, []byte(html)); err != nil {
				return err
			}
			fmt.Printf("Wrote %s\n", analyzeHTMLOut)
		}
		return nil
	},
}

func printAnalysis(a report.Analysis) {
	heading := color.New(color.FgCyan, color.Bold)
	pass := color.New(color.FgGreen)
	fail := color.New(color.FgRed)

	heading.Println("Run summary")
	fmt.Printf("  Tests:     %d\n", a.Summary.TotalTests)
	pass.Printf("  Passed:    %d\n", a.Summary.Passed)
	fail.Printf("  Failed:    %d\n", a.Summary.Failed)
	fmt.Printf("  Pass rate: %s\n", util.FormatPercent(a.Summary.PassRatePercent))
	fmt.Printf("  Latency:   %s avg\n", util.FormatLatency(a.Performance.AvgLatencyMillis))
	fmt.Printf("  Cost:      %s total\n", util.FormatCost(a.Performance.TotalCostUSD))
	fmt.Printf("  Tokens:    %s\n", util.FormatTokens(a.Performance.TotalTokens))

	if len(a.Categories) > 0 {
		heading.Println("\nCategories")
		for _, cat := range a.Categories {
			fmt.Printf("  %-24s %-20s %3d/%3d  %s\n", cat.Category, cat.PolicyArea, cat.Passed, cat.Total, util.FormatPercent(cat.PassRatePercent))
		}
	}

	if len(a.Failures) > 0 {
		heading.Println("\nFailures")
		for _, f := range a.Failures {
			name := f.TestName
			if name == "" {
				name = f.TestID
			}
			fail.Printf("  [%s] %s\n", f.Kind, name)
			fmt.Printf("      %s\n", f.Reason)
		}
	}
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeJSONOut, "json", "", "write the analysis as JSON to this path")
	analyzeCmd.Flags().StringVar(&analyzeHTMLOut, "html", "", "write an HTML report to this path")
	analyzeCmd.Flags().StringVar(&analyzeFile, "file", "", "analyze a single log file instead of the latest run")
	rootCmd.AddCommand(analyzeCmd)
}
