package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"flipledger/internal/app"
	"flipledger/internal/config"
	"flipledger/internal/pkg/logging"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// cli carries state shared by every subcommand.
type cli struct {
	jsonOut bool
	svc     *app.Services
}

func newRootCmd() (*cobra.Command, *cli) {
	c := &cli{}
	root := &cobra.Command{
		Use:           "flipledger",
		Short:         "Track PC builds bought for resale",
		Long:          "flipledger records the parts, costs and sale of assembled PCs and reports their profit.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logging.Setup(cfg.LogLevel, cfg.IsProduction())
			s, err := app.Wire(cfg)
			if err != nil {
				return err
			}
			c.svc = s
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.String("data-dir", "", "Directory holding the store, registry and images (DATA_DIR)")
	flags.String("store", "", "Build store: json, sqlite or postgres (STORE_DRIVER)")
	flags.String("registry", "", "SKU registry: json or redis (REGISTRY_DRIVER)")
	flags.String("log-level", "", "Log level (LOG_LEVEL)")
	flags.BoolVar(&c.jsonOut, "json", false, "Print JSON instead of text")
	bind := map[string]string{
		"DATA_DIR":        "data-dir",
		"STORE_DRIVER":    "store",
		"REGISTRY_DRIVER": "registry",
		"LOG_LEVEL":       "log-level",
	}
	for key, flag := range bind {
		_ = viper.BindPFlag(key, flags.Lookup(flag))
	}

	root.AddCommand(
		c.serveCmd(),
		c.listCmd(),
		c.showCmd(),
		c.createCmd(),
		c.sellCmd(),
		c.costsCmd(),
		c.deleteCmd(),
		c.imageCmd(),
	)
	return root, c
}

// execute runs root and then releases the services it wired, whether or not
// the command succeeded.
func execute(root *cobra.Command, c *cli) error {
	defer c.close()
	return root.Execute()
}

func (c *cli) close() {
	if c.svc != nil {
		c.svc.Close()
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
