package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vanderheijden86/bubblecap/pkg/stats"
)

func newStatsCmd(root *rootOptions) *cobra.Command {
	var (
		top    int
		asJSON bool
		raw    bool
	)
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarise market caps by company and sector",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			log := commandLogger(cfg, os.Stderr)

			path, res, err := loadDataset(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			summary := stats.Summarize(res.Dataset, top)
			w := cmd.OutOrStdout()

			if asJSON {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(summary)
			}

			md := stats.Markdown(summary, "Market caps: "+filepath.Base(path), time.Now())
			if raw {
				_, err := fmt.Fprint(w, md)
				return err
			}
			out, err := stats.Render(md, terminalWidth())
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(w, out)
			return err
		},
	}
	cmd.Flags().IntVar(&top, "top", stats.DefaultTopN, "number of largest companies to list")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the summary as JSON")
	cmd.Flags().BoolVar(&raw, "raw", false, "print unrendered markdown")
	return cmd
}

func terminalWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return 80
	}
	w, _, err := term.GetSize(fd)
	if err != nil || w <= 0 {
		return 80
	}
	return min(w, 120)
}
