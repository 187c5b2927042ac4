// Package cmd - estimate command
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"vdi-cost/core/engine"
	"vdi-cost/core/types"
	"vdi-cost/internal/config"
	"vdi-cost/internal/logging"
)

var (
	estRegion    string
	estUsers     int
	estWorkload  string
	estTier      string
	estTerm      string
	estDB        bool
	estDBSize    string
	estDBStorage int
)

// estimateCmd represents the estimate command
var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Estimate monthly costs for a deployment",
	Long: `Size and price a virtual desktop deployment against the catalog.

Requires a refreshed price catalog (see "vdi-cost pricing refresh").

Examples:
  vdi-cost estimate --region eastus --users 100 --workload medium
  vdi-cost estimate --region westus2 --users 500 --workload heavy --tier Premium --term 1year
  vdi-cost estimate --region eastus --users 50 --workload light --database --db-size small`,
	RunE: runEstimate,
}

func init() {
	estimateCmd.Flags().StringVarP(&estRegion, "region", "r", "", "deployment region (required)")
	estimateCmd.Flags().IntVarP(&estUsers, "users", "u", 0, "concurrent users (required)")
	estimateCmd.Flags().StringVarP(&estWorkload, "workload", "w", "medium", "workload intensity (light, medium, heavy)")
	estimateCmd.Flags().StringVar(&estTier, "tier", "Standard", "storage tier (Standard, Premium)")
	estimateCmd.Flags().StringVar(&estTerm, "term", "3year", "billing term (payg, 1year, 3year)")
	estimateCmd.Flags().BoolVar(&estDB, "database", false, "include a managed database")
	estimateCmd.Flags().StringVar(&estDBSize, "db-size", "small", "database size (small, medium, large)")
	estimateCmd.Flags().IntVar(&estDBStorage, "db-storage", 0, "database storage GB (default from config)")

	estimateCmd.MarkFlagRequired("region")
	estimateCmd.MarkFlagRequired("users")
}

func runEstimate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	database := types.DatabaseDisabled()
	if estDB {
		database = types.DatabaseEnabled(types.DatabaseSize(estDBSize), estDBStorage)
	}

	input := types.DemandInput{
		Region:          estRegion,
		ConcurrentUsers: estUsers,
		Workload:        types.Workload(estWorkload),
		StorageTier:     types.StorageTier(estTier),
		Term:            types.Term(estTerm),
		Database:        database,
	}

	eng := engine.New(store, config.Get().Sizing, logging.Logger)
	result, err := eng.Estimate(ctx, input)
	if err != nil {
		return err
	}

	printEstimate(input, result)
	return nil
}

func printEstimate(input types.DemandInput, result *types.EstimateResult) {
	fmt.Printf("Deployment: %d users, %s workload, %s region, %s term\n",
		input.ConcurrentUsers, input.Workload, input.Region, input.Term)
	fmt.Printf("Sizing: %d session hosts (%d users/VM), %d TiB profile storage\n",
		result.Sizing.VMCount, result.Sizing.UsersPerVM, result.Sizing.StorageCapacityTiB)
	fmt.Println()

	fmt.Printf("%-48s %10s %12s %14s\n", "Item", "Qty", "Unit $/mo", "Monthly $")
	for _, item := range result.LineItems {
		fmt.Printf("%-48s %10s %12s %14s\n",
			item.Name,
			item.Quantity.String(),
			item.UnitPrice.StringFixed(2),
			item.MonthlyPrice.StringFixed(2))
	}

	fmt.Println()
	fmt.Printf("%-72s %14s\n", "Total monthly", result.TotalMonthly.StringFixed(2))
	fmt.Printf("%-72s %14s\n", "Total annual", result.TotalAnnual.StringFixed(2))
}
