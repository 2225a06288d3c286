package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/GRUUUUDD/dublicate/internal/config"
)

// NewConfigCmd creates the config command and its subcommands.
func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change the configuration",
	}

	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigGetCmd())
	cmd.AddCommand(newConfigSetCmd())

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(getConfigFlag(cmd))
			if err != nil && cfg == nil {
				return err
			}
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v, showing defaults\n", err)
			}

			out := cmd.OutOrStdout()
			if cfg.ConfigFilePath != "" {
				fmt.Fprintf(out, "# loaded from %s\n", cfg.ConfigFilePath)
			} else {
				fmt.Fprintln(out, "# built-in defaults")
			}
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("failed to encode configuration: %w", err)
			}
			_, err = out.Write(data)
			return err
		},
	}
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print one configuration option",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(getConfigFlag(cmd))
			if err != nil && cfg == nil {
				return err
			}
			value, err := cfg.Get(args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), value)
			return nil
		},
	}
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change one configuration option and save the file",
		Long: `Set changes one option and writes the configuration back. The value is
parsed as YAML, so lists and numbers work:

  dupman config set hash_algorithm sha256
  dupman config set min_file_size 1024
  dupman config set exclude_extensions "[.tmp, .bak]"

Without --config the file in use is updated, or
$XDG_CONFIG_HOME/dupman/config.yaml is created.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(getConfigFlag(cmd))
			if err != nil {
				// A broken file must not be overwritten with defaults.
				return err
			}
			if err := cfg.Set(args[0], args[1]); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("configuration error: %w", err)
			}

			path := cfg.ConfigFilePath
			if path == "" {
				path = filepath.Join(config.XDGConfigDir(), config.UserConfigFile)
			}
			if err := cfg.Save(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Set %s in %s\n", args[0], path)
			return nil
		},
	}
}
