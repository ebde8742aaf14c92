package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/bisegni/invscan/pkg/database"
	"github.com/bisegni/invscan/pkg/engine"
	"github.com/bisegni/invscan/pkg/plan"
	"github.com/bisegni/invscan/pkg/planner"
	"github.com/bisegni/invscan/pkg/query"
)

var (
	filterStorage   string
	filterRAM       []string
	filterHDisk     string
	filterLocation  string
	filterLimit     int
	filterOffset    int
	filterChunkSize int
	filterFormat    string
	filterPretty    bool
	filterAll       bool
	filterExplain   bool
)

// FilterOptions controls one filter run
type FilterOptions struct {
	Criteria query.Criteria
	// ChunkSize of 0 uses the configured window size.
	ChunkSize int
	Format    string
	Pretty    bool
	// All follows the cursor until the source is exhausted.
	All     bool
	Explain bool
}

func addFilterFlags(fs *pflag.FlagSet) {
	fs.StringVar(&filterStorage, "storage", "", "Total capacity, exact (4TB) or range (1TB-4TB)")
	fs.StringSliceVar(&filterRAM, "ram", nil, "RAM size, one or more (16GB,32GB)")
	fs.StringVar(&filterHDisk, "hdisk", "", "Disk type (SAS, SATA2, SSD)")
	fs.StringVar(&filterLocation, "location", "", "Exact location (AmsterdamAMS-01)")
	fs.IntVarP(&filterLimit, "limit", "n", 0, "Records per page (default from config, 30)")
	fs.IntVarP(&filterOffset, "offset", "o", 1, "Row to start or resume from (the previous startrow)")
	addOutputFlags(fs)
}

// addOutputFlags registers the flags shared by every command that prints pages
func addOutputFlags(fs *pflag.FlagSet) {
	fs.IntVar(&filterChunkSize, "chunk-size", 0, "Rows decoded per window (default from config, 200)")
	fs.StringVarP(&filterFormat, "format", "f", "json", "Output format (json or jsonl)")
	fs.BoolVar(&filterPretty, "pretty", false, "Pretty print output")
	fs.BoolVar(&filterAll, "all", false, "Follow the cursor and print every match as one page")
	fs.BoolVar(&filterExplain, "explain", false, "Print the scan plan instead of running it")
}

func filterOptionsFromFlags() (FilterOptions, error) {
	format := strings.ToLower(filterFormat)
	if format != "json" && format != "jsonl" {
		return FilterOptions{}, fmt.Errorf("unsupported output format %q (json or jsonl)", filterFormat)
	}
	ram := make([]string, 0, len(filterRAM))
	for _, r := range filterRAM {
		if r = strings.TrimSpace(r); r != "" {
			ram = append(ram, r)
		}
	}
	return FilterOptions{
		Criteria: query.Criteria{
			Storage:  filterStorage,
			RAM:      strings.Join(ram, ","),
			HDisk:    filterHDisk,
			Location: filterLocation,
			Limit:    filterLimit,
			Offset:   filterOffset,
		},
		ChunkSize: filterChunkSize,
		Format:    format,
		Pretty:    filterPretty,
		All:       filterAll,
		Explain:   filterExplain,
	}, nil
}

// RunFilter scans filename with opts and writes one page to the command output
func RunFilter(cmd *cobra.Command, filename string, opts FilterOptions) error {
	table, err := database.OpenSheetTable(filename, cmd.InOrStdin())
	if err != nil {
		return err
	}
	defer table.Close()

	opts.Criteria = withConfiguredLimit(opts.Criteria)
	scanner := newScanner(opts.ChunkSize)

	if opts.Explain {
		p := planner.CreatePlan(opts.Criteria, table, scanner.ChunkSize())
		fmt.Fprintln(cmd.OutOrStdout(), "Execution Plan:")
		fmt.Fprint(cmd.OutOrStdout(), plan.FormatPlan(p))
		return nil
	}

	var page *engine.Page
	if opts.All {
		page, err = scanner.ScanAll(table, opts.Criteria)
	} else {
		page, err = scanner.Scan(table, opts.Criteria)
	}
	if err != nil {
		return err
	}
	return writePage(cmd.OutOrStdout(), page, opts.Format, opts.Pretty)
}

// withConfiguredLimit fills an unset page limit from the configuration
func withConfiguredLimit(c query.Criteria) query.Criteria {
	if c.Limit <= 0 {
		c.Limit = appConfig.Scan.Limit
	}
	return c
}

// newScanner builds a scanner with chunkSize, or the configured size when 0
func newScanner(chunkSize int) *engine.Scanner {
	if chunkSize <= 0 {
		chunkSize = appConfig.Scan.ChunkSize
	}
	return engine.NewScanner(
		engine.WithChunkSize(chunkSize),
		engine.WithLogger(appLogger),
	)
}
