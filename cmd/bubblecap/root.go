package main

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/vanderheijden86/bubblecap/pkg/config"
	"github.com/vanderheijden86/bubblecap/pkg/loader"
	"github.com/vanderheijden86/bubblecap/pkg/logger"
)

// Version is set at build time with -ldflags "-X main.Version=...".
var Version = "dev"

type rootOptions struct {
	configPath string
	dataset    string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "bubblecap",
		Short: "Market-cap bubble chart for listed companies",
		Long: `bubblecap packs every listed company into a circle sized by market
capitalisation. Browse the chart in the terminal with the mouse and a fuzzy
search box, serve the dataset over HTTP, or export SVG/PNG snapshots.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", config.DefaultPath, "config file path")
	cmd.PersistentFlags().StringVar(&opts.dataset, "dataset", "", "dataset file (.json, .db, .sqlite); overrides the config")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")

	cmd.AddCommand(
		newViewCmd(opts),
		newServeCmd(opts),
		newExportCmd(opts),
		newStatsCmd(opts),
		newConfigCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

// loadConfig reads the config file and applies command-line overrides.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.dataset != "" {
		cfg.Dataset = o.dataset
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// loadDataset resolves and loads the configured dataset.
func loadDataset(ctx context.Context, cfg *config.Config, log zerolog.Logger) (string, *loader.Result, error) {
	path, ok := config.ResolveDataset(cfg)
	if !ok {
		return "", nil, fmt.Errorf("no dataset found: pass --dataset or place one of %v in this directory or ./data", config.DatasetNames)
	}
	res, err := loader.LoadFile(ctx, path)
	if err != nil {
		return "", nil, fmt.Errorf("loading %s: %w", path, err)
	}
	if len(res.Skipped) > 0 {
		log.Warn().Strs("ids", res.Skipped).Msg("Skipped entries that are not company objects")
	}
	log.Info().Str("path", path).Int("companies", res.Dataset.Len()).Msg("Dataset loaded")
	return path, res, nil
}

// commandLogger logs to w in the configured format.
func commandLogger(cfg *config.Config, w io.Writer) zerolog.Logger {
	return logger.New(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty, Output: w})
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "bubblecap %s\n", Version)
		},
	}
}
