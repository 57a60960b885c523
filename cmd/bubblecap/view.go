package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/vanderheijden86/bubblecap/pkg/config"
	"github.com/vanderheijden86/bubblecap/pkg/loader"
	"github.com/vanderheijden86/bubblecap/pkg/logger"
	"github.com/vanderheijden86/bubblecap/pkg/server"
	"github.com/vanderheijden86/bubblecap/pkg/ui"
)

func newViewCmd(root *rootOptions) *cobra.Command {
	var (
		noWatch bool
		serve   bool
	)
	cmd := &cobra.Command{
		Use:   "view",
		Short: "Browse the bubble chart in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !term.IsTerminal(int(os.Stdout.Fd())) {
				return fmt.Errorf("view needs an interactive terminal; try `bubblecap export` instead")
			}
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			return runView(cmd.Context(), cfg, !noWatch, serve)
		},
	}
	cmd.Flags().BoolVar(&noWatch, "no-watch", false, "do not reload the dataset when the file changes")
	cmd.Flags().BoolVar(&serve, "serve", false, "also serve the HTTP endpoint on server.addr")
	return cmd
}

func runView(ctx context.Context, cfg *config.Config, watch, serve bool) error {
	logFile, err := logger.OpenFile(cfg.Log.File)
	if err != nil {
		return err
	}
	defer logFile.Close()
	log := logger.New(logger.Config{Level: cfg.Log.Level, Output: logFile})
	logger.SetGlobalLogger(log)

	path, res, err := loadDataset(ctx, cfg, log)
	if err != nil {
		return err
	}

	var srv *server.Server
	if serve {
		srv = server.New(server.Config{Addr: cfg.Server.Addr, AllowAll: cfg.Server.AllowAllOrigins}, res.Dataset, log)
	}

	var reloads chan loader.Reload
	var w *loader.Watcher
	if watch {
		w, err = loader.NewWatcher(loader.WatcherConfig{Path: path, Logger: log})
		if err != nil {
			return err
		}
		if err := w.Start(); err != nil {
			return err
		}
		defer w.Stop()
		reloads = make(chan loader.Reload, 1)
	}

	m := ui.NewModel(res.Dataset, ui.Options{
		Title:          "bubblecap",
		Padding:        cfg.Padding,
		LabelThreshold: cfg.LabelThreshold,
		Debounce:       cfg.Debounce,
		Transition:     cfg.Transition,
		Logger:         log,
		Reloads:        reloads,
	})
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion(), tea.WithContext(gctx))

	if w != nil {
		g.Go(func() error {
			defer close(reloads)
			forwardReloads(gctx, w.Events(), reloads, srv)
			return nil
		})
	}
	if srv != nil {
		g.Go(func() error { return srv.ListenAndServe(gctx) })
	}
	g.Go(func() error {
		defer cancel()
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("running bubblecap: %w", err)
		}
		return nil
	})
	return g.Wait()
}

// forwardReloads copies watcher reloads to the UI and swaps the server's
// dataset, until ctx ends or the watcher stops.
func forwardReloads(ctx context.Context, events <-chan loader.Reload, out chan<- loader.Reload, srv *server.Server) {
	for {
		select {
		case <-ctx.Done():
			return
		case r, ok := <-events:
			if !ok {
				return
			}
			if r.Err == nil && srv != nil && r.Result != nil {
				srv.SetDataset(r.Result.Dataset, r.Hash)
			}
			if out == nil {
				continue
			}
			select {
			case out <- r:
			case <-ctx.Done():
				return
			}
		}
	}
}
