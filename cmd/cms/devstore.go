package main

import (
	"context"
	"errors"

	cms "github.com/flxbl-dev/kickass-cms-sub000"
	"github.com/flxbl-dev/kickass-cms-sub000/internal/cli"
	"github.com/flxbl-dev/kickass-cms-sub000/internal/logging"
	"github.com/flxbl-dev/kickass-cms-sub000/internal/presentation/tui"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var devstoreCmd = &cobra.Command{
	Use:   "devstore",
	Short: "Run an in-memory graph store for local development",
	Long:  `Starts an in-memory store speaking the remote HTTP surface. Data is lost on exit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		level, _ := logging.ParseLevel(cfg.LogLevel)
		logger := logging.NewWithFormat(cfg.LogFormat, level)

		addr, _ := cmd.Flags().GetString("addr")
		envelope, _ := cmd.Flags().GetBool("envelope")
		seed, _ := cmd.Flags().GetBool("seed")

		if quiet, _ := cmd.Flags().GetBool("quiet"); !quiet {
			tui.PrintBanner(cmd.ErrOrStderr(), cms.Version)
		}

		sc := cli.NewSignalContext(cmd.Context())
		defer sc.Cancel()

		app, err := cli.NewApp(cfg)
		if err != nil {
			return err
		}

		g, ctx := errgroup.WithContext(sc)
		g.Go(func() error {
			return cli.ServeDevStore(ctx, cli.DevStoreOptions{Addr: addr, Token: cfg.Token, Envelope: envelope, Seed: seed}, logger)
		})
		g.Go(func() error { return app.ServeMetrics(ctx) })
		if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		if sig := sc.Signal(); sig != nil {
			logger.Info("stopped", "signal", sig.String())
		}
		return nil
	},
}

func init() {
	devstoreCmd.Flags().String("addr", ":8080", "Address to listen on")
	devstoreCmd.Flags().Bool("envelope", false, "Wrap list responses in {data, pagination}")
	devstoreCmd.Flags().BoolP("quiet", "q", false, "Do not print the banner")
	devstoreCmd.Flags().Bool("seed", true, "Create the built-in workflow states")
	rootCmd.AddCommand(devstoreCmd)
}
