// Package cmd provides the CLI commands for vdi-cost.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"vdi-cost/db"
	"vdi-cost/internal/config"
	"vdi-cost/internal/logging"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "vdi-cost",
	Short: "Estimate virtual desktop infrastructure costs",
	Long: `vdi-cost sizes and prices a virtual desktop deployment from a small
set of demand parameters: concurrent users, workload intensity, storage
tier, and billing term.

Examples:
  vdi-cost estimate --region eastus --users 100 --workload medium
  vdi-cost pricing refresh
  vdi-cost scenario list`,
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.vdi-cost.json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	rootCmd.AddCommand(estimateCmd)
	rootCmd.AddCommand(pricingCmd)
	rootCmd.AddCommand(scenarioCmd)
	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	if cfgFile != "" {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
		config.Set(cfg)
	}

	cfg := config.Get()
	if verbose {
		cfg.Logging.Level = "debug"
	}
	if err := logging.Initialize(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
	}
}

// openStore connects to the configured database
func openStore() (*db.Store, error) {
	dsn := config.Get().DatabaseURL()
	if dsn == "" {
		return nil, fmt.Errorf("no database configured: set DATABASE_URL or database.url in the config file")
	}
	return db.NewStore(dsn)
}

// versionCmd prints version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("vdi-cost version 1.0.0")
	},
}
