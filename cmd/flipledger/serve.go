package main

import (
	"fmt"

	"flipledger/internal/interfaces/router"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func (c *cli) serveCmd() *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()
			if err := c.svc.Verify(ctx); err != nil {
				return fmt.Errorf("startup check: %w", err)
			}
			if port == "" {
				port = c.svc.Config.Port
			}
			log.Info().Msgf("Server running at http://localhost:%s", port)
			return router.Serve(ctx, router.CreateApp(c.svc), ":"+port)
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "Port to listen on (PORT)")
	return cmd
}
