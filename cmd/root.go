package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/bisegni/invscan/pkg/config"
	"github.com/bisegni/invscan/pkg/logger"
)

var (
	ConfigPath      string
	LogLevel        string
	LogFormat       string
	InteractiveMode bool

	appConfig *config.Config
	appLogger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "invscan [file|-]",
	Short: "Server inventory spreadsheet filter",
	Long: `invscan filters a server inventory spreadsheet (xlsx, csv or tsv) by
storage, RAM, disk type and location, one page at a time.
If no command is provided, it filters the specified file.

Columns are read from the first sheet: A=Model, B=RAM, C=HDD, D=Location,
E=Price, with a header on row 1. Each page ends with {"rowIndex": n} and
{"startrow": n}; pass startrow back as --offset to get the next page.

Supports:
  - File paths: invscan servers.xlsx --ram 64GB
  - Stdin: cat servers.csv | invscan --hdisk SSD  (or use "-" as filename)

Examples:
  invscan servers.xlsx --storage 1TB-4TB --limit 5
  invscan servers.xlsx --ram 16GB,32GB --location AmsterdamAMS-01 --offset 42
  invscan servers.xlsx --all --format jsonl
  invscan query servers.xlsx "ram in (16GB, 32GB) and hdisk = SSD"
  invscan stats servers.xlsx
  invscan serve --config invscan.yaml`,
	Args: cobra.MaximumNArgs(1),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup(cmd)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 && !hasStdin(cmd.InOrStdin()) {
			return cmd.Help()
		}
		filename, err := resolveInput(cmd, args)
		if err != nil {
			return err
		}

		if InteractiveMode {
			return RunInteractive(cmd, filename)
		}

		opts, err := filterOptionsFromFlags()
		if err != nil {
			return err
		}
		return RunFilter(cmd, filename, opts)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&ConfigPath, "config", "", "Config file (yaml, json or toml)")
	rootCmd.PersistentFlags().StringVar(&LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&LogFormat, "log-format", "", "Log format (text or json)")
	rootCmd.Flags().BoolVarP(&InteractiveMode, "interactive", "i", false, "Interactive REPL mode")
	addFilterFlags(rootCmd.Flags())

	// Subcommands that still make sense as separate actions
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(serveCmd)
}

// setup loads the configuration and initializes the global logger.
// Flags win over the config file and the environment.
func setup(cmd *cobra.Command) error {
	cfg, err := config.Load(ConfigPath)
	if err != nil {
		return err
	}
	if LogLevel != "" {
		cfg.Log.Level = LogLevel
	}
	if LogFormat != "" {
		cfg.Log.Format = LogFormat
	}

	appConfig = cfg
	appLogger = logger.Init(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cmd.ErrOrStderr(),
	})
	return nil
}

// resolveInput returns the file argument, or "-" when data is piped in
func resolveInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if hasStdin(cmd.InOrStdin()) {
		return "-", nil
	}
	return "", fmt.Errorf("an inventory file or stdin input is required")
}

func hasStdin(in io.Reader) bool {
	f, ok := in.(*os.File)
	if !ok {
		return in != nil
	}
	stat, err := f.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}
