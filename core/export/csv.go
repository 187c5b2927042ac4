// Package export renders a priced scenario as a CSV document suitable
// for spreadsheet import.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"vdi-cost/core/types"
	"vdi-cost/internal/errors"
)

// WriteCSV writes the scenario's estimate to w as CSV. The layout is a
// header block with the scenario parameters, the derived sizing figures,
// the line-item table, and the totals. Money renders with two decimal
// places.
func WriteCSV(w io.Writer, s *types.Scenario) error {
	if s.Result == nil {
		return errors.Input("scenario has no computed estimate")
	}

	cw := csv.NewWriter(w)

	header := [][]string{
		{"Scenario", s.Name},
		{"Region", s.Input.Region},
		{"Concurrent Users", strconv.Itoa(s.Input.ConcurrentUsers)},
		{"Workload", string(s.Input.Workload)},
		{"Storage Tier", string(s.Input.StorageTier)},
		{"Term", string(s.Input.Term)},
		{},
		{"Session Host VMs", strconv.Itoa(s.Result.Sizing.VMCount)},
		{"Users per VM", strconv.Itoa(s.Result.Sizing.UsersPerVM)},
		{"Storage Capacity (TiB)", strconv.Itoa(s.Result.Sizing.StorageCapacityTiB)},
		{},
		{"Item", "SKU", "Quantity", "Unit Price ($/month)", "Monthly Total ($)"},
	}
	for _, row := range header {
		if err := cw.Write(row); err != nil {
			return errors.Internal("csv write failed", err)
		}
	}

	for _, item := range s.Result.LineItems {
		row := []string{
			item.Name,
			item.SKU,
			item.Quantity.String(),
			item.UnitPrice.StringFixed(2),
			item.MonthlyPrice.StringFixed(2),
		}
		if err := cw.Write(row); err != nil {
			return errors.Internal("csv write failed", err)
		}
	}

	totals := [][]string{
		{},
		{"Total Monthly", "", "", "", s.Result.TotalMonthly.StringFixed(2)},
		{"Total Annual", "", "", "", s.Result.TotalAnnual.StringFixed(2)},
	}
	for _, row := range totals {
		if err := cw.Write(row); err != nil {
			return errors.Internal("csv write failed", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.Internal("csv flush failed", err)
	}
	return nil
}

// Filename returns the attachment filename for a scenario export
func Filename(s *types.Scenario) string {
	return fmt.Sprintf("scenario-%d.csv", s.ID)
}
