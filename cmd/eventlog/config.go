package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/eventlog/internal/config"
	"github.com/jmylchreest/eventlog/internal/theme"
)

var configOpts struct {
	init     bool
	themes   bool
	validate bool
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or initialize the configuration",
	Long: `Print the effective configuration as TOML.

The config file is validated when loaded; --validate prints only the
verdict. Use --init to write the defaults to the config path and --themes to
list available themes.`,
	RunE: runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)

	configCmd.Flags().BoolVar(&configOpts.init, "init", false,
		"Write the default configuration to the config path")
	configCmd.Flags().BoolVar(&configOpts.themes, "themes", false,
		"List user and bundled themes")
	configCmd.Flags().BoolVar(&configOpts.validate, "validate", false,
		"Only report whether the config file is valid")
}

func runConfig(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if configOpts.themes {
		loader := theme.NewLoader("", logger)
		for _, name := range loader.ListThemes() {
			fmt.Fprintln(out, name)
		}
		return nil
	}

	if configOpts.init {
		path := globalOpts.configPath
		if path == "" {
			path = config.ConfigPath()
		}
		if err := config.DefaultConfig().Save(path); err != nil {
			return err
		}
		fmt.Fprintf(out, "Wrote default configuration to %s\n", path)
		return nil
	}

	if configOpts.validate {
		// PersistentPreRunE already failed on an invalid file.
		fmt.Fprintln(out, "configuration is valid")
		return nil
	}

	data, err := getConfig().Marshal()
	if err != nil {
		return err
	}
	_, err = out.Write(data)
	return err
}
