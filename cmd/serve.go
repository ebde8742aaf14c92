package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bisegni/invscan/pkg/database"
	"github.com/bisegni/invscan/pkg/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve /filterResult over HTTP",
	Long: `Start the HTTP filter service.

Inventory files found in data.dir and upload.dir are served by file name:
  GET /filterResult?file=servers.xlsx&ram=64GB&limit=5 (header filter-api-key)
A form POST with task[...] fields and a task[uploadFile] spreadsheet is
stored in upload.dir and filtered in the same request.

Also exposes GET /healthz, GET /metrics and GET /datasets.

Examples:
  invscan serve --addr :8080
  INVSCAN_API_KEY=secret invscan serve --config invscan.yaml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if serveAddr != "" {
			appConfig.Server.Addr = serveAddr
		}

		s, err := server.New(appConfig, database.NewCatalog(), newScanner(0), appLogger)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return s.Run(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config, :8080)")
}
