package cmd

import (
	"github.com/spf13/cobra"

	"github.com/bisegni/invscan/pkg/database"
	"github.com/bisegni/invscan/pkg/planner"
	"github.com/bisegni/invscan/pkg/query"
)

var (
	convertOutput string
	convertPretty bool
	convertLimit  int
)

var convertCmd = &cobra.Command{
	Use:   "convert [file|-]",
	Short: "Convert an inventory spreadsheet to JSON or JSONL",
	Long: `Convert every record of an inventory file to JSON or JSONL.
Only the recognized columns (Model, RAM, HDD, Location, Price) are written,
empty rows are dropped and no cursor trailers are added.
Examples:
  invscan convert servers.xlsx --to jsonl
  invscan convert servers.csv --to json --pretty=false
  invscan convert servers.xlsx --to jsonl --limit 100`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().StringVarP(&convertOutput, "to", "t", "", "Target format (json or jsonl)")
	convertCmd.Flags().BoolVar(&convertPretty, "pretty", true, "Pretty print output")
	convertCmd.Flags().IntVarP(&convertLimit, "limit", "n", 0, "Write at most this many records (0 for all)")
	convertCmd.MarkFlagRequired("to")
}

func runConvert(cmd *cobra.Command, args []string) error {
	filename := "-"
	if len(args) > 0 {
		filename = args[0]
	}

	table, err := database.OpenSheetTable(filename, cmd.InOrStdin())
	if err != nil {
		return err
	}
	defer table.Close()

	records, err := collectRecords(table, newScanner(0).ChunkSize(), convertLimit)
	if err != nil {
		return err
	}

	// Output in target format
	return writeRecords(cmd.OutOrStdout(), records, convertOutput, convertPretty)
}

// collectRecords runs the plan of every record, capped at limit when it is
// positive.
func collectRecords(table database.Table, chunkSize, limit int) ([]database.OrderedMap, error) {
	p := planner.CreateFullPlan(query.Criteria{}, table, chunkSize)
	if limit > 0 {
		p = planner.CreatePlan(query.Criteria{Limit: limit}, table, chunkSize)
	}
	it, err := p.Execute()
	if err != nil {
		return nil, err
	}
	defer it.Close()

	var records []database.OrderedMap
	for it.Next() {
		records = append(records, it.Row().Record.OrderedMap())
	}
	if err := it.Error(); err != nil {
		return nil, err
	}
	return records, nil
}
