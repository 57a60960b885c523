package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vanderheijden86/bubblecap/pkg/config"
)

func newConfigCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := root.configPath
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := config.DefaultConfig().Save(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "dataset:          %s\n", cfg.Dataset)
			fmt.Fprintf(w, "padding:          %g\n", cfg.Padding)
			fmt.Fprintf(w, "label_threshold:  %g\n", cfg.LabelThreshold)
			fmt.Fprintf(w, "debounce:         %s\n", cfg.Debounce)
			fmt.Fprintf(w, "transition:       %s\n", cfg.Transition)
			fmt.Fprintf(w, "server.addr:      %s\n", cfg.Server.Addr)
			fmt.Fprintf(w, "log.level:        %s\n", cfg.Log.Level)
			fmt.Fprintf(w, "log.file:         %s\n", cfg.Log.File)
			return nil
		},
	}

	cmd.AddCommand(initCmd, showCmd)
	return cmd
}
