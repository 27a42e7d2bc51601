package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/fragmentgrid/pkg/api"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		backend string
		dsn     string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the layout API over HTTP",
		Long: `Serve the layout API over HTTP.

Routes:
  GET    /healthz
  POST   /v1/layout                      lay out a posted document
  GET    /v1/convert/pixel               grid position to pixel offset
  GET    /v1/convert/grid                pixel offset to grid position
  GET    /v1/fragments                   list stored fragments
  POST   /v1/fragments                   save fragments
  POST   /v1/fragments/layout            lay out the store and persist the patch
  DELETE /v1/fragments/{id}              delete a fragment
  POST   /v1/fragments/{id}/positions    move a fragment

The server stops gracefully on interrupt.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if !cmd.Flags().Changed("addr") {
				addr = c.Config.Server.Addr
			}

			st, err := c.newStore(ctx, backend, dsn)
			if err != nil {
				return err
			}
			defer st.Close()

			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			srv := api.NewServer(runner, st, c.Logger)
			srv.Defaults = c.pipelineOptions()

			printInfo("Serving on http://%s", addr)
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", defaultAddr, "listen address")
	cmd.Flags().StringVar(&backend, "store", "", "store backend: memory, file, sqlite, mongo")
	cmd.Flags().StringVar(&dsn, "dsn", "", "store path or connection URI")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}
