package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile      string
	verbose      bool
	knowledgeDir string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "servvia-trust",
	Short: "ServVia Trust - Evidence-graded verification of home remedy advice",
	Long: `ServVia Trust verifies home remedy advice against a curated,
evidence-graded knowledge base.

It does not produce medical advice. It takes remedy text - yours or a
model's - finds every herb suggestion in it, and grades each one:
evidence tier, documented mechanism, study count, drug interactions
against the user's medications, and contraindications against their
conditions. Suggestions with no evidence behind them are flagged, not
polished.

Emergency queries are never graded; they get routed to professional help.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number and build information for ServVia Trust.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("servvia-trust v0.3.0")
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.servvia/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&knowledgeDir, "knowledge-dir", "", "load evidence tables from a directory instead of the embedded defaults")

	// Bind flags to viper
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("knowledge.dir", rootCmd.PersistentFlags().Lookup("knowledge-dir"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		// Search for config in home directory
		viper.AddConfigPath(home + "/.servvia")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match SERVVIA_*
	viper.SetEnvPrefix("SERVVIA")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}
