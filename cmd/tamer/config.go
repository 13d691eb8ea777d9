package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/tamer/internal/config"
	"github.com/jackzampolin/tamer/internal/home"
	"github.com/jackzampolin/tamer/internal/output"
)

var configInitForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default config to ~/.tamer/config.yaml",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := home.New(homeDir)
		if err != nil {
			return err
		}
		if err := h.EnsureExists(); err != nil {
			return err
		}

		path := h.ConfigPath()
		if cfgFile != "" {
			path = cfgFile
		}
		if err := config.WriteDefault(path, configInitForce); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Long: `Print the configuration after applying defaults, the config file, .env
files and TAMER_* environment variables. Literal API keys are masked.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(cmd)
		if err != nil {
			return err
		}

		masked := a.cfg.Masked()
		if a.out.Format().IsStructured() {
			return output.To(a.out.Writer(), a.out.Format(), masked)
		}

		source := a.cfgFile
		if source == "" {
			source = "(defaults and environment only)"
		}
		w := a.out.Writer()
		fmt.Fprintf(w, "# source: %s\n", source)
		if _, err := a.cfg.ResolveAPIKey(); err != nil {
			fmt.Fprintf(w, "# warning: %v\n", err)
		}
		return output.To(w, output.FormatYAML, masked)
	},
}

var configKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List configuration keys with defaults",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := output.ParseFormat(outputFormat)
		if err != nil {
			return err
		}
		p := output.NewPrinter(cmd.OutOrStdout(), format)
		entries := config.DefaultEntries()
		return p.Print(entries, func(w io.Writer) error {
			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, []string{e.Key, fmt.Sprint(e.Value), e.Description})
			}
			_, err := fmt.Fprintln(w, p.Table([]string{"Key", "Default", "Description"}, rows, nil))
			return err
		})
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "overwrite an existing config file")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configKeysCmd)
	rootCmd.AddCommand(configCmd)
}
