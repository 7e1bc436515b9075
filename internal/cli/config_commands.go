package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"jobboard/internal/config"
)

func (a *app) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Create or inspect the configuration file",
	}
	cmd.AddCommand(a.configInitCommand(), a.configShowCommand())
	return cmd
}

func (a *app) configInitCommand() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with default values",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			path := strings.TrimSpace(a.configPath)
			if path == "" {
				path = config.DefaultPath
			}
			written, err := config.WriteDefault(path, force)
			if err != nil {
				return err
			}
			if a.jsonOut {
				return printJSON(a.stdout, map[string]any{"path": path, "written": written})
			}
			if !written {
				fmt.Fprintf(a.stdout, "config exists: %s (use --force to overwrite)\n", path)
				return nil
			}
			fmt.Fprintf(a.stdout, "wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

func (a *app) configShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration (file, env and defaults merged)",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, _, err := a.loadConfig()
			if err != nil {
				return err
			}
			if a.jsonOut {
				return printJSON(a.stdout, cfg)
			}
			data, err := config.Encode(cfg)
			if err != nil {
				return err
			}
			_, err = a.stdout.Write(data)
			return err
		},
	}
}
