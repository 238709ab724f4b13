package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vango-dev/signalstate/internal/config"
	"github.com/vango-dev/signalstate/internal/errors"
)

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Write or check the configuration file",
	}

	cmd.AddCommand(configInitCmd(), configCheckCmd())

	return cmd
}

func configInitCmd() *cobra.Command {
	var (
		format string
		force  bool
	)

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Write a configuration file with the defaults",
		Long: `Write signalstate.json (or signalstate.yaml with --format=yaml)
holding the default configuration.

Examples:
  signalstate config init
  signalstate config init ./service --format=yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}

			name := config.JSONFileName
			switch format {
			case "json":
			case "yaml", "yml":
				name = config.YAMLFileName
			default:
				return errors.New("E103").
					WithSuggestion("Use --format=json or --format=yaml")
			}

			out := cmd.OutOrStdout()
			if config.Exists(dir) && !force {
				warn(out, "A configuration file already exists in %s", dir)
				info(out, "Use --force to overwrite it")
				return nil
			}

			if err := os.MkdirAll(dir, 0755); err != nil {
				return err
			}
			path := filepath.Join(dir, name)
			if err := config.New().SaveTo(path); err != nil {
				return err
			}

			success(out, "Wrote %s", path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "File format: json or yaml")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")

	return cmd
}

func configCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if cfg.Path() == "" {
				warn(out, "No configuration file found; using defaults")
			} else {
				success(out, "%s is valid", cfg.Path())
			}
			info(out, "scheduler: %s (%s)", cfg.Scheduler, cfg.FrameDuration())
			info(out, "integrity: %s, prod mode: %t", cfg.Integrity, cfg.ProdMode)
			info(out, "inspector: %s", cfg.Inspector.Address)
			return nil
		},
	}
}
