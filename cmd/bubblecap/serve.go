package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vanderheijden86/bubblecap/pkg/config"
	"github.com/vanderheijden86/bubblecap/pkg/loader"
	"github.com/vanderheijden86/bubblecap/pkg/server"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var (
		addr    string
		noWatch bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the company filter endpoint over HTTP",
		Long: `Serves GET /api/company (name, nse and bse filters), GET /healthz and
GET /api/events, a server-sent event stream announcing dataset reloads.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg, !noWatch)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address; overrides server.addr")
	cmd.Flags().BoolVar(&noWatch, "no-watch", false, "do not reload the dataset when the file changes")
	return cmd
}

func runServe(ctx context.Context, cfg *config.Config, watch bool) error {
	log := commandLogger(cfg, os.Stdout)

	path, res, err := loadDataset(ctx, cfg, log)
	if err != nil {
		return err
	}
	srv := server.New(server.Config{Addr: cfg.Server.Addr, AllowAll: cfg.Server.AllowAllOrigins}, res.Dataset, log)

	g, gctx := errgroup.WithContext(ctx)
	if watch {
		w, err := loader.NewWatcher(loader.WatcherConfig{Path: path, Logger: log})
		if err != nil {
			return err
		}
		if err := w.Start(); err != nil {
			return err
		}
		defer w.Stop()
		g.Go(func() error {
			forwardReloads(gctx, w.Events(), nil, srv)
			return nil
		})
	}
	g.Go(func() error { return srv.ListenAndServe(gctx) })
	return g.Wait()
}
