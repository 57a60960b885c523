package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vanderheijden86/bubblecap/pkg/export"
	"github.com/vanderheijden86/bubblecap/pkg/layout"
)

func newExportCmd(root *rootOptions) *cobra.Command {
	var (
		out           string
		focus         string
		width, height int
	)
	cmd := &cobra.Command{
		Use:       "export svg|png",
		Short:     "Write a snapshot of the chart to a file",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(export.FormatSVG), string(export.FormatPNG)},
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := export.ParseFormat(args[0])
			if err != nil {
				return err
			}
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			log := commandLogger(cfg, os.Stderr)

			_, res, err := loadDataset(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			scene, err := export.Snapshot(res.Dataset, export.Options{
				Size:           layout.Size{Width: float64(width), Height: float64(height)},
				Padding:        cfg.Padding,
				LabelThreshold: cfg.LabelThreshold,
				Focus:          focus,
			})
			if err != nil {
				return err
			}

			if out == "" {
				out = export.DefaultFilename(focus, format, time.Now())
			}
			if err := export.WriteFile(out, format, scene); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d bubbles)\n", out, len(scene.Circles))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default: auto-generated name)")
	cmd.Flags().StringVar(&focus, "focus", "", "frame this company (identifier or name) instead of the whole chart")
	cmd.Flags().IntVar(&width, "width", int(export.DefaultSize.Width), "image width")
	cmd.Flags().IntVar(&height, "height", int(export.DefaultSize.Height), "image height")
	return cmd
}
