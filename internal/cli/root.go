// internal/cli/root.go
package vigil

import (
	"fmt"
	"os"
	"strconv"

	"github.com/jsandlin/vigil/internal/appconfig"
	"github.com/jsandlin/vigil/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile       string
	currentConfig *appconfig.Config
)

var rootCmd = &cobra.Command{
	Use:   "vigil",
	Short: "vigil — dashboard and tooling for AI safety test logs",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// 1) Load config (file or defaults)
		if err := ensureConfigLoaded(); err != nil {
			return err
		}

		// 2) If user did NOT set a flag, copy the config value into the flag so
		//    both pflags and viper reflect the same, final value.
		for _, name := range []string{"debug", "strictValidation", "validateRecords"} {
			if !cmd.Flags().Changed(name) {
				val := viper.GetBool(name)
				_ = cmd.Flags().Set(name, strconv.FormatBool(val))
			}
		}
		if !cmd.Flags().Changed("logsDir") {
			if val := viper.GetString("logsDir"); val != "" {
				_ = cmd.Flags().Set("logsDir", val)
			}
		}

		// 3) Materialize the fully merged configuration into currentConfig
		//    (flags > config > defaults). This gives other packages a stable snapshot.
		var cfg appconfig.Config
		if err := viper.Unmarshal(&cfg); err != nil {
			return fmt.Errorf("unmarshal config: %w", err)
		}
		cfg.ConfigPath = viper.ConfigFileUsed()
		currentConfig = &cfg

		return logging.Init(cfg.LogFilePath())
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Close()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", appconfig.DefaultConfigPath, "config file (e.g., config/config.json)")

	// Persistent flags available to all commands
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().Bool("strictValidation", false, "require policy citations in reasoning for a pass")
	rootCmd.PersistentFlags().Bool("validateRecords", false, "schema-validate each inference record during ingestion")
	rootCmd.PersistentFlags().String("logsDir", "", "directory containing safeguard test logs")

	// Bind flags to Viper keys (flags override config)
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("strictValidation", rootCmd.PersistentFlags().Lookup("strictValidation"))
	_ = viper.BindPFlag("validateRecords", rootCmd.PersistentFlags().Lookup("validateRecords"))
	_ = viper.BindPFlag("logsDir", rootCmd.PersistentFlags().Lookup("logsDir"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}
}

// ensureConfigLoaded reads the config and sets safe defaults.
func ensureConfigLoaded() error {
	viper.SetDefault("debug", false)
	viper.SetDefault("strictValidation", false)
	viper.SetDefault("validateRecords", false)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// No file: fine, we'll use defaults/flags
			return nil
		}
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to load config: %w", err)
	}
	return nil
}

// GetConfig returns the loaded application configuration for other packages.
func GetConfig() *appconfig.Config {
	return currentConfig
}

// Helper accessors (reflect merged Viper state)
func DebugEnabled() bool            { return viper.GetBool("debug") }
func StrictValidationEnabled() bool { return viper.GetBool("strictValidation") }
