// internal/cli/show_config.go
package vigil

import (
	"fmt"

	"github.com/k0kubun/pp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// showConfigCmd prints the merged configuration: file values overridden
// by flags accordingly.
var showConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Show config settings",
	Long:  `Show config settings ensuring that the JSON configs are loaded properly and overriden by flags accordingly.`,
	Run: func(cmd *cobra.Command, args []string) {
		file := viper.ConfigFileUsed()
		if file == "" {
			fmt.Println("No config file loaded (using defaults).")
		} else {
			fmt.Printf("Config file: %s\n\n", file)
		}

		cfg := GetConfig()
		fmt.Println("Current configuration:")
		fmt.Printf("  Debug:             %v\n", viper.GetBool("debug"))
		fmt.Printf("  Strict validation: %v\n", viper.GetBool("strictValidation"))
		fmt.Printf("  Validate records:  %v\n", viper.GetBool("validateRecords"))
		if cfg != nil {
			fmt.Printf("  Logs dir:          %s\n", cfg.LogsDirPath())
			fmt.Printf("  Listen address:    %s\n", cfg.Addr())
			fmt.Printf("  Cache TTL:         %s\n", cfg.CacheTTL())
			fmt.Printf("  Consent CSV:       %s\n", cfg.ConsentCSVPath())
		}

		if DebugEnabled() && cfg != nil {
			fmt.Println()
			pp.Println(*cfg)
		}
	},
}

func init() {
	showCmd.AddCommand(showConfigCmd)
}
