// internal/cli/logs.go
package vigil

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/jsandlin/vigil/internal/eventlog"
	"github.com/jsandlin/vigil/internal/util"
	"github.com/spf13/cobra"
)

// logsCmd lists the discovered test log files, newest first.
var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "List safeguard test log files",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		if cfg == nil {
			return fmt.Errorf("configuration not loaded")
		}

		files, err := eventlog.ListLogFiles(cfg.LogsDirPath())
		if errors.Is(err, eventlog.ErrNoData) {
			fmt.Printf("No test logs found in %s\n", cfg.LogsDirPath())
			return nil
		}
		if err != nil {
			return err
		}

		latest := map[string]string{}
		for _, info := range eventlog.LatestPerCategory(files) {
			latest[info.Category] = info.Name
		}

		header := color.New(color.FgCyan, color.Bold)
		marker := color.New(color.FgGreen)
		header.Printf("%-52s %-18s %-20s %s\n", "FILE", "CATEGORY", "TIMESTAMP", "SIZE")
		for _, f := range files {
			line := fmt.Sprintf("%-52s %-18s %-20s %s", f.Name, f.Category, f.Timestamp.Format("2006-01-02 15:04:05"), util.FormatTokens(int(f.SizeBytes)))
			if latest[f.Category] == f.Name {
				marker.Printf("%s  (latest)\n", line)
			} else {
				fmt.Println(line)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logsCmd)
}
