package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/bisegni/invscan/pkg/database"
	"github.com/bisegni/invscan/pkg/plan"
	"github.com/bisegni/invscan/pkg/query"
)

const maxReportedRows = 5

var validateStrict bool

var validateCmd = &cobra.Command{
	Use:   "validate [file|-]",
	Short: "Check an inventory file for cells the filters cannot read",
	Long: `Validate that every record of an inventory file can be matched by the
filters: the RAM cell must start with <n>GB and the HDD cell must look like
<count>x<size><GB|TB><type>. Rows with an empty Model are reported and skipped.

Supports:
  - File paths: invscan validate servers.xlsx
  - Stdin: cat servers.csv | invscan validate

Examples:
  invscan validate servers.xlsx
  invscan validate servers.xlsx --strict
  cat servers.csv | invscan validate`,
	Args: cobra.MaximumNArgs(1),
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().BoolVar(&validateStrict, "strict", false, "Fail when any record has a malformed cell")
}

// validationReport counts records the filters would reject whatever the criteria
type validationReport struct {
	Rows         int
	Records      int
	EmptyRows    []int
	PartialRows  []int
	MalformedRAM []int
	MalformedHDD []int
}

func (r *validationReport) Valid() bool {
	return len(r.MalformedRAM) == 0 && len(r.MalformedHDD) == 0 && len(r.PartialRows) == 0
}

func runValidate(cmd *cobra.Command, args []string) error {
	filename := "-"
	if len(args) > 0 {
		filename = args[0]
	}

	table, err := database.OpenSheetTable(filename, cmd.InOrStdin())
	if err != nil {
		return err
	}
	defer table.Close()

	out := cmd.OutOrStdout()
	report, err := validateTable(table, newScanner(0).ChunkSize())
	if err != nil {
		fmt.Fprintf(out, "❌ Validation failed: %v\n", err)
		return err
	}

	printReport(out, report)
	if validateStrict && !report.Valid() {
		return fmt.Errorf("%d malformed record(s)", len(report.MalformedRAM)+len(report.MalformedHDD)+len(report.PartialRows))
	}
	return nil
}

func validateTable(table database.Table, chunkSize int) (*validationReport, error) {
	scan := &plan.WindowScanNode{Table: table, Start: database.FirstDataRow, ChunkSize: chunkSize}
	it, err := scan.Execute()
	if err != nil {
		return nil, err
	}
	defer it.Close()

	report := &validationReport{}
	for it.Next() {
		row := it.Row()
		report.Rows++
		if row.Empty() {
			report.EmptyRows = append(report.EmptyRows, row.Index)
			continue
		}
		report.Records++

		r := row.Record
		if r.Price == "" {
			report.PartialRows = append(report.PartialRows, row.Index)
		}
		if _, ok := query.RAMToken(r.RAM); !ok {
			report.MalformedRAM = append(report.MalformedRAM, row.Index)
		}
		if _, ok := query.ParseCapacity(r.HDD); !ok {
			report.MalformedHDD = append(report.MalformedHDD, row.Index)
		}
	}
	if err := it.Error(); err != nil {
		return nil, err
	}
	return report, nil
}

func printReport(w io.Writer, r *validationReport) {
	if r.Valid() {
		fmt.Fprintf(w, "✅ Valid inventory with %d record(s)\n", r.Records)
	} else {
		fmt.Fprintf(w, "⚠️  Inventory with %d record(s) has unreadable cells\n", r.Records)
	}
	fmt.Fprintf(w, "Data rows: %d\n", r.Rows)
	printRows(w, "Empty rows (skipped)", r.EmptyRows)
	printRows(w, "Partial rows (a cell before Price is empty)", r.PartialRows)
	printRows(w, "Malformed RAM", r.MalformedRAM)
	printRows(w, "Malformed HDD", r.MalformedHDD)
}

func printRows(w io.Writer, label string, rows []int) {
	if len(rows) == 0 {
		return
	}
	shown := rows
	if len(shown) > maxReportedRows {
		shown = shown[:maxReportedRows]
	}
	fmt.Fprintf(w, "%s: %d, rows %v", label, len(rows), shown)
	if len(rows) > len(shown) {
		fmt.Fprint(w, " ...")
	}
	fmt.Fprintln(w)
}
