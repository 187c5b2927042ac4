// Package cmd - pricing commands
package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"vdi-cost/db/feed"
	"vdi-cost/internal/config"
	"vdi-cost/internal/logging"
)

var (
	refreshRegions     []string
	refreshConcurrency int
)

var pricingCmd = &cobra.Command{
	Use:   "pricing",
	Short: "Price catalog management",
}

var pricingRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Refresh the price catalog from the retail prices feed",
	Long: `Fetch current retail prices for every SKU the estimator needs and
upsert them into the catalog. Regions are fetched concurrently; a
failed region is skipped, the rest still refresh.

Examples:
  vdi-cost pricing refresh
  vdi-cost pricing refresh --regions eastus,westus2`,
	RunE: runPricingRefresh,
}

var pricingListCmd = &cobra.Command{
	Use:   "list <region>",
	Short: "List catalog entries for a region",
	Args:  cobra.ExactArgs(1),
	RunE:  runPricingList,
}

func init() {
	pricingCmd.AddCommand(pricingRefreshCmd)
	pricingCmd.AddCommand(pricingListCmd)

	pricingRefreshCmd.Flags().StringSliceVar(&refreshRegions, "regions", nil, "regions to refresh (default from config)")
	pricingRefreshCmd.Flags().IntVar(&refreshConcurrency, "concurrency", 0, "concurrent region fetches (default from config)")
}

func runPricingRefresh(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	cfg := config.Get()

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	regions := cfg.Refresh.Regions
	if len(refreshRegions) > 0 {
		regions = refreshRegions
	}
	concurrency := cfg.Refresh.Concurrency
	if refreshConcurrency > 0 {
		concurrency = refreshConcurrency
	}

	fmt.Printf("Refreshing %d regions (concurrency %d)...\n", len(regions), concurrency)
	start := time.Now()

	refresher := feed.NewRefresher(
		feed.NewClient(logging.Logger), store, cfg.Sizing,
		regions, concurrency, logging.Logger)
	result := refresher.RefreshAll(ctx)

	fmt.Printf("Wrote %d entries for %d/%d regions in %s\n",
		result.Total, len(result.Regions), len(regions),
		time.Since(start).Round(time.Second))
	if len(result.Regions) > 0 {
		fmt.Printf("Refreshed: %s\n", strings.Join(result.Regions, ", "))
	}
	if len(result.Regions) < len(regions) {
		return fmt.Errorf("%d regions failed to refresh", len(regions)-len(result.Regions))
	}
	return nil
}

func runPricingList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	region := args[0]

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.PricesByRegion(ctx, region)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Printf("No catalog entries for %s; run \"vdi-cost pricing refresh\" first\n", region)
		return nil
	}

	fmt.Printf("%-28s %-12s %-10s %14s %-14s\n", "SKU", "Model", "Term", "Unit Price", "Unit")
	for _, entry := range entries {
		term := entry.Key.Term
		if term == "" {
			term = "-"
		}
		fmt.Printf("%-28s %-12s %-10s %14s %-14s\n",
			entry.Key.SKU, entry.Key.Model, term,
			entry.UnitPrice.StringFixed(6), entry.UnitOfMeasure)
	}
	return nil
}
