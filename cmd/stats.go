package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/bisegni/invscan/pkg/database"
	"github.com/bisegni/invscan/pkg/parser"
	"github.com/bisegni/invscan/pkg/planner"
	"github.com/bisegni/invscan/pkg/query"
)

var statsGroups []string

var statsCmd = &cobra.Command{
	Use:   "stats [file|-]",
	Short: "Show statistics about an inventory file",
	Long: `Display statistics about an inventory file: row and record counts and,
per location, disk type and RAM size, the number of servers and their price range.

Supports:
  - File paths: invscan stats servers.xlsx
  - Stdin: cat servers.csv | invscan stats

Examples:
  invscan stats servers.xlsx
  invscan stats servers.xlsx --by storage,model
  cat servers.csv | invscan stats`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStats,
}

func init() {
	statsCmd.Flags().StringSliceVar(&statsGroups, "by", []string{"location", "hdisk", "ram"}, "Columns to group by (location, hdisk, ram, storage, model)")
	statsCmd.Flags().IntVar(&filterChunkSize, "chunk-size", 0, "Rows decoded per window (default from config, 200)")
}

func runStats(cmd *cobra.Command, args []string) error {
	filename := "-"
	if len(args) > 0 {
		filename = args[0]
	}

	table, err := database.OpenSheetTable(filename, cmd.InOrStdin())
	if err != nil {
		return err
	}
	defer table.Close()

	return printStats(cmd.OutOrStdout(), filename, table, statsGroups)
}

func printStats(w io.Writer, filename string, table *database.SheetTable, groups []string) error {
	format, err := parser.DetectFormat(table.Path())
	if err != nil {
		return err
	}
	total, err := table.TotalRows()
	if err != nil {
		return err
	}

	chunk := newScanner(filterChunkSize).ChunkSize()
	all, err := planner.CreateAggregate(query.Criteria{}, table, chunk, "").Run()
	if err != nil {
		return err
	}
	records := 0
	if len(all) > 0 {
		records = all[0].Count
	}

	if filename == "-" {
		fmt.Fprintf(w, "File: <stdin>\n")
	} else {
		fmt.Fprintf(w, "File: %s\n", filename)
	}
	fmt.Fprintf(w, "Format: %s\n", format)
	fmt.Fprintf(w, "Total rows: %d\n", total)
	fmt.Fprintf(w, "Records: %d\n", records)
	if total > 0 {
		fmt.Fprintf(w, "Empty rows: %d\n", total-1-records)
	}

	for _, by := range groups {
		result, err := planner.CreateAggregate(query.Criteria{}, table, chunk, by).Run()
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "\nBy %s:\n", by)
		for _, g := range result {
			fmt.Fprintf(w, "  %s: %d (%.1f%%)", g.Key, g.Count, float64(g.Count)/float64(records)*100)
			if g.MaxPrice > 0 {
				fmt.Fprintf(w, "  price %.2f-%.2f avg %.2f", g.MinPrice, g.MaxPrice, g.AvgPrice)
			}
			fmt.Fprintln(w)
		}
	}
	return nil
}
