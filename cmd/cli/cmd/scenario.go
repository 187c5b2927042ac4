// Package cmd - scenario commands
package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"vdi-cost/core/export"
)

var scenarioExportOut string

var scenarioCmd = &cobra.Command{
	Use:   "scenario",
	Short: "Saved scenario management",
}

var scenarioListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved scenarios",
	RunE:  runScenarioList,
}

var scenarioExportCmd = &cobra.Command{
	Use:   "export <id>",
	Short: "Export a scenario's estimate as CSV",
	Args:  cobra.ExactArgs(1),
	RunE:  runScenarioExport,
}

func init() {
	scenarioCmd.AddCommand(scenarioListCmd)
	scenarioCmd.AddCommand(scenarioExportCmd)

	scenarioExportCmd.Flags().StringVarP(&scenarioExportOut, "output", "o", "", "output file (default stdout)")
}

func runScenarioList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	scenarios, err := store.ListScenarios(ctx)
	if err != nil {
		return err
	}
	if len(scenarios) == 0 {
		fmt.Println("No saved scenarios")
		return nil
	}

	fmt.Printf("%-6s %-28s %-14s %6s %-8s %14s %-16s\n",
		"ID", "Name", "Region", "Users", "Term", "Monthly $", "Updated")
	for _, s := range scenarios {
		monthly := "-"
		if s.Result != nil {
			monthly = s.Result.TotalMonthly.StringFixed(2)
		}
		fmt.Printf("%-6d %-28s %-14s %6d %-8s %14s %-16s\n",
			s.ID, s.Name, s.Input.Region, s.Input.ConcurrentUsers, s.Input.Term,
			monthly, s.UpdatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func runScenarioExport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid scenario id: %q", args[0])
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	scenario, err := store.GetScenario(ctx, id)
	if err != nil {
		return err
	}

	out := os.Stdout
	if scenarioExportOut != "" {
		f, err := os.Create(scenarioExportOut)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	if err := export.WriteCSV(out, scenario); err != nil {
		return err
	}
	if scenarioExportOut != "" {
		fmt.Printf("Wrote %s\n", scenarioExportOut)
	}
	return nil
}
