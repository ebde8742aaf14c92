package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bisegni/invscan/pkg/query"
)

var queryCmd = &cobra.Command{
	Use:   "query [file|-] <expression>",
	Short: "Filter with a criteria expression",
	Long: `Filter an inventory file using a criteria expression instead of flags.

Fields: storage, ram, hdisk (or disk), location, limit, offset.
Clauses are joined with AND (optional); ram also accepts IN (...).
Values containing spaces must be quoted.

Supports:
  - File paths: invscan query servers.xlsx "hdisk = SSD"
  - Stdin: cat servers.csv | invscan query "hdisk = SSD"

Examples:
  invscan query servers.xlsx "storage = 1TB-4TB and ram in (16GB, 32GB)"
  invscan query servers.xlsx "location = 'AmsterdamAMS-01' limit = 5 offset = 42"
  invscan query servers.xlsx "ram = 64GB" --explain`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var filename, expression string
		if len(args) == 2 {
			filename, expression = args[0], args[1]
		} else {
			// One arg: the expression, with data on stdin
			if !hasStdin(cmd.InOrStdin()) {
				return fmt.Errorf("an inventory file or stdin input is required")
			}
			filename, expression = "-", args[0]
		}

		c, err := query.ParseCriteria(expression)
		if err != nil {
			return fmt.Errorf("failed to parse criteria: %w", err)
		}

		return RunFilter(cmd, filename, FilterOptions{
			Criteria:  c,
			ChunkSize: filterChunkSize,
			Format:    strings.ToLower(filterFormat),
			Pretty:    filterPretty,
			All:       filterAll,
			Explain:   filterExplain,
		})
	},
}

func init() {
	addOutputFlags(queryCmd.Flags())
}
